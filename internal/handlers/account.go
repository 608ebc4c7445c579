package handlers

import (
	"net/http"

	"couple-backend/internal/middleware"
	"couple-backend/internal/services"
)

// AccountHandler handles account lifecycle requests
type AccountHandler struct {
	accountService *services.AccountService
}

// NewAccountHandler creates a new account handler
func NewAccountHandler(accountService *services.AccountService) *AccountHandler {
	return &AccountHandler{accountService: accountService}
}

// DeleteAccount handles POST /v1/deleteAccount. It only ever deletes the caller.
func (h *AccountHandler) DeleteAccount(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := middleware.GetUserID(ctx)
	if userID == "" {
		respondServiceError(w, services.ErrUnauthenticated)
		return
	}

	result, err := h.accountService.DeleteAccount(ctx, userID)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, SuccessResponse{
		Success: result.Success,
		Message: result.Message,
	})
}
