package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/username/receiptcheck/backend/src/logger"
	"github.com/username/receiptcheck/backend/src/security/validation"
	"github.com/username/receiptcheck/backend/src/services"
	"github.com/username/receiptcheck/backend/src/utils"
)

type CategoryHandler struct {
	categoryService services.CategoryService
}

func NewCategoryHandler(categoryService services.CategoryService) *CategoryHandler {
	return &CategoryHandler{categoryService: categoryService}
}

type categoryUpdateRequest struct {
	Product  string `json:"product"`
	Category string `json:"category"`
	Name     string `json:"name"`
}

// HandleListCategories returns every product seen in a ticket with its
// category assignment, NULL columns rendered as empty strings.
func (h *CategoryHandler) HandleListCategories(w http.ResponseWriter, r *http.Request) {
	logger.L.Info("Request categories")

	products, err := h.categoryService.ListProducts()
	if err != nil {
		logger.L.Warn("Failed to read product categories", "error", err)
		utils.WriteJSON(w, http.StatusOK, errorReply(err.Error()))
		return
	}

	items := make([]productReply, 0, len(products))
	for _, product := range products {
		items = append(items, newProductReply(product))
	}
	utils.WriteJSON(w, http.StatusOK, listReply{Success: true, Items: items})
}

// HandleUpdateCategory assigns a category and display name to one product.
func (h *CategoryHandler) HandleUpdateCategory(w http.ResponseWriter, r *http.Request) {
	var request categoryUpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		utils.SendJSONError(w, "invalid category update request body", http.StatusBadRequest)
		return
	}
	request.Product = validation.SanitizeLabel(request.Product)
	request.Category = validation.SanitizeLabel(request.Category)
	request.Name = validation.SanitizeLabel(request.Name)
	if request.Product == "" {
		utils.SendJSONError(w, "product must not be empty", http.StatusBadRequest)
		return
	}

	logger.L.Info("Request category update", "product", request.Product)

	if err := h.categoryService.Assign(request.Product, request.Category, request.Name); err != nil {
		logger.L.Warn("Failed to save category", "error", err)
		utils.WriteJSON(w, http.StatusOK, errorReply(err.Error()))
		return
	}
	utils.WriteJSON(w, http.StatusOK, successReply())
}

// HandleUncategorized returns the products that have appeared in a ticket but
// carry no category assignment yet.
func (h *CategoryHandler) HandleUncategorized(w http.ResponseWriter, r *http.Request) {
	logger.L.Info("Request uncategorized products")

	products, err := h.categoryService.UncategorizedProducts()
	if err != nil {
		logger.L.Warn("Failed to read uncategorized products", "error", err)
		utils.WriteJSON(w, http.StatusOK, errorReply(err.Error()))
		return
	}
	if products == nil {
		products = []string{}
	}
	utils.WriteJSON(w, http.StatusOK, listReply{Success: true, Items: products})
}
