package controller

import (
	"net/http"

	domainErrors "github.com/brocantio/checkout/internal/domain/errors"
	"github.com/brocantio/checkout/internal/service"
)

// TransactionController handles the transaction history endpoints.
type TransactionController struct {
	transactionService *service.TransactionService
}

// NewTransactionController creates a new TransactionController.
func NewTransactionController(transactionService *service.TransactionService) *TransactionController {
	return &TransactionController{transactionService: transactionService}
}

// Own handles GET /api/v1/transactions/own
func (h *TransactionController) Own(w http.ResponseWriter, r *http.Request) {
	userID, credential, ok := identity(r)
	if !ok {
		writeError(w, domainErrors.ErrUnauthorized)
		return
	}

	overview, err := h.transactionService.Overview(r.Context(), userID, credential)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, FromOverview(overview))
}
