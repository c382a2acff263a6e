package handlers

import (
	"net/http"

	"github.com/username/receiptcheck/backend/src/logger"
	"github.com/username/receiptcheck/backend/src/services"
	"github.com/username/receiptcheck/backend/src/utils"
)

type TicketHandler struct {
	ticketService services.TicketService
}

func NewTicketHandler(ticketService services.TicketService) *TicketHandler {
	return &TicketHandler{ticketService: ticketService}
}

// HandleListTickets returns every persisted line with its category join.
func (h *TicketHandler) HandleListTickets(w http.ResponseWriter, r *http.Request) {
	logger.L.Info("Request ticket list")

	lines, err := h.ticketService.ListTicketItems()
	if err != nil {
		logger.L.Warn("Failed to read ticket items", "error", err)
		utils.WriteJSON(w, http.StatusOK, errorReply(err.Error()))
		return
	}

	items := make([]ticketLineReply, 0, len(lines))
	for _, line := range lines {
		items = append(items, newTicketLineReply(line))
	}
	utils.WriteJSON(w, http.StatusOK, listReply{Success: true, Items: items})
}

// HandleClearTickets deletes every persisted line.
func (h *TicketHandler) HandleClearTickets(w http.ResponseWriter, r *http.Request) {
	logger.L.Info("Request tickets clear")

	if err := h.ticketService.ClearTicketItems(); err != nil {
		logger.L.Warn("Failed to clear ticket items", "error", err)
		utils.WriteJSON(w, http.StatusOK, errorReply(err.Error()))
		return
	}
	utils.WriteJSON(w, http.StatusOK, successReply())
}
