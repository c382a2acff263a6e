package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/username/receiptcheck/backend/src/logger"
	"github.com/username/receiptcheck/backend/src/services"
	"github.com/username/receiptcheck/backend/src/utils"
)

type QRCodeHandler struct {
	ingestService services.IngestService
}

func NewQRCodeHandler(ingestService services.IngestService) *QRCodeHandler {
	return &QRCodeHandler{ingestService: ingestService}
}

// HandleScan ingests one scanned receipt. The body is the raw QR text as a
// JSON-encoded string, exactly as the scanner page posts it. Ingestion
// failures are reported in the envelope, not as HTTP errors.
func (h *QRCodeHandler) HandleScan(w http.ResponseWriter, r *http.Request) {
	var rawPayload string
	if err := json.NewDecoder(r.Body).Decode(&rawPayload); err != nil {
		utils.SendJSONError(w, "request body must be a JSON string", http.StatusBadRequest)
		return
	}

	logger.L.Info("Handling QR code scan", "payload", rawPayload)

	result, err := h.ingestService.IngestScan(r.Context(), rawPayload)
	if err != nil {
		logger.L.Warn("Failed to ingest ticket", "error", err)
		utils.WriteJSON(w, http.StatusOK, errorReply(err.Error()))
		return
	}

	if result.Duplicate {
		logger.L.Info("Ticket already exists.", "key", result.Key)
	}
	utils.WriteJSON(w, http.StatusOK, successReply())
}
