package controller

import (
	"errors"
	"net/http"

	domainErrors "github.com/brocantio/checkout/internal/domain/errors"
	customMW "github.com/brocantio/checkout/internal/middleware"
	"github.com/brocantio/checkout/internal/service"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

// CheckoutController handles the checkout session HTTP endpoints.
type CheckoutController struct {
	checkoutService *service.CheckoutService
}

// NewCheckoutController creates a new CheckoutController.
func NewCheckoutController(checkoutService *service.CheckoutService) *CheckoutController {
	return &CheckoutController{checkoutService: checkoutService}
}

// identity reads the authenticated user and their forwarded credential from
// the request context.
func identity(r *http.Request) (string, string, bool) {
	userID, ok := customMW.GetUserID(r.Context())
	if !ok {
		return "", "", false
	}
	credential, ok := customMW.GetCredential(r.Context())
	return userID, credential, ok
}

func sessionID(r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	return id, err == nil
}

// Open handles POST /api/v1/checkout
func (h *CheckoutController) Open(w http.ResponseWriter, r *http.Request) {
	userID, credential, ok := identity(r)
	if !ok {
		writeError(w, domainErrors.ErrUnauthorized)
		return
	}

	var req OpenCheckoutRequest
	if err := decodeAndValidate(r, &req); err != nil {
		writeError(w, err)
		return
	}

	sess, err := h.checkoutService.Open(r.Context(), req.ProductID, userID, credential)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, FromSession(sess.Snapshot()))
}

// Get handles GET /api/v1/checkout/{id}
func (h *CheckoutController) Get(w http.ResponseWriter, r *http.Request) {
	userID, _, ok := identity(r)
	if !ok {
		writeError(w, domainErrors.ErrUnauthorized)
		return
	}

	id, ok := sessionID(r)
	if !ok {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "invalid session id", Code: "invalid_id"})
		return
	}

	sess, err := h.checkoutService.Get(r.Context(), id, userID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, FromSession(sess.Snapshot()))
}

// UpdateField handles PUT /api/v1/checkout/{id}/fields
func (h *CheckoutController) UpdateField(w http.ResponseWriter, r *http.Request) {
	userID, _, ok := identity(r)
	if !ok {
		writeError(w, domainErrors.ErrUnauthorized)
		return
	}

	id, ok := sessionID(r)
	if !ok {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "invalid session id", Code: "invalid_id"})
		return
	}

	var req UpdateFieldRequest
	if err := decodeAndValidate(r, &req); err != nil {
		writeError(w, err)
		return
	}

	sess, err := h.checkoutService.UpdateField(r.Context(), id, userID, req.Field, req.Value)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, FromSession(sess.Snapshot()))
}

// Advance handles POST /api/v1/checkout/{id}/advance
func (h *CheckoutController) Advance(w http.ResponseWriter, r *http.Request) {
	userID, _, ok := identity(r)
	if !ok {
		writeError(w, domainErrors.ErrUnauthorized)
		return
	}

	id, ok := sessionID(r)
	if !ok {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "invalid session id", Code: "invalid_id"})
		return
	}

	sess, err := h.checkoutService.Advance(r.Context(), id, userID)
	if err != nil {
		h.writeStepError(w, r, id, userID, err)
		return
	}

	writeJSON(w, http.StatusOK, FromSession(sess.Snapshot()))
}

// Retreat handles POST /api/v1/checkout/{id}/retreat
func (h *CheckoutController) Retreat(w http.ResponseWriter, r *http.Request) {
	userID, _, ok := identity(r)
	if !ok {
		writeError(w, domainErrors.ErrUnauthorized)
		return
	}

	id, ok := sessionID(r)
	if !ok {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "invalid session id", Code: "invalid_id"})
		return
	}

	sess, err := h.checkoutService.Retreat(r.Context(), id, userID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, FromSession(sess.Snapshot()))
}

// Submit handles POST /api/v1/checkout/{id}/submit
func (h *CheckoutController) Submit(w http.ResponseWriter, r *http.Request) {
	userID, credential, ok := identity(r)
	if !ok {
		writeError(w, domainErrors.ErrUnauthorized)
		return
	}

	id, ok := sessionID(r)
	if !ok {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "invalid session id", Code: "invalid_id"})
		return
	}

	result, err := h.checkoutService.Submit(r.Context(), id, userID, credential)
	if err != nil {
		h.writeStepError(w, r, id, userID, err)
		return
	}

	writeJSON(w, http.StatusOK, SubmitResponse{
		TransactionID: result.TransactionID,
		Redirect:      result.RedirectTo,
		Message:       result.Message,
		Description:   result.Description,
	})
}

// Cancel handles DELETE /api/v1/checkout/{id}
func (h *CheckoutController) Cancel(w http.ResponseWriter, r *http.Request) {
	userID, _, ok := identity(r)
	if !ok {
		writeError(w, domainErrors.ErrUnauthorized)
		return
	}

	id, ok := sessionID(r)
	if !ok {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "invalid session id", Code: "invalid_id"})
		return
	}

	if err := h.checkoutService.Cancel(r.Context(), id, userID); err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "cancelled"})
}

// writeStepError enriches step-incomplete failures with the per-field
// messages recorded on the session.
func (h *CheckoutController) writeStepError(w http.ResponseWriter, r *http.Request, id uuid.UUID, userID string, err error) {
	if !errors.Is(err, domainErrors.ErrStepIncomplete) {
		writeError(w, err)
		return
	}

	resp := ErrorResponse{Error: err.Error(), Code: "step_incomplete"}
	if sess, getErr := h.checkoutService.Get(r.Context(), id, userID); getErr == nil {
		resp.FieldErrors = sess.Snapshot().FieldErrors
	}
	writeJSON(w, http.StatusUnprocessableEntity, resp)
}
