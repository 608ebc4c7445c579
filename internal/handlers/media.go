package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"

	"couple-backend/internal/middleware"
	"couple-backend/internal/services"

	"github.com/rs/zerolog/log"
)

// MediaHandler handles image upload signing and deletion
type MediaHandler struct {
	uploads *services.UploadService
	cleaner *services.MediaCleaner
}

// NewMediaHandler creates a new media handler
func NewMediaHandler(uploads *services.UploadService, cleaner *services.MediaCleaner) *MediaHandler {
	return &MediaHandler{
		uploads: uploads,
		cleaner: cleaner,
	}
}

// UploadSignatureRequest represents the request body for signing an upload
type UploadSignatureRequest struct {
	PublicID string `json:"publicId"`
	Folder   string `json:"folder"`
}

// DeleteMediaRequest represents the request body for deleting an image
type DeleteMediaRequest struct {
	PublicID string `json:"publicId"`
}

// GenerateUploadSignature handles POST /v1/generateUploadSignature
func (h *MediaHandler) GenerateUploadSignature(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	if userID == "" {
		respondServiceError(w, services.ErrUnauthenticated)
		return
	}

	var req UploadSignatureRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondServiceError(w, services.ErrInvalidArgument)
		return
	}

	sig, err := h.uploads.SignUpload(req.PublicID, req.Folder)
	if err != nil {
		log.Error().Err(err).Str("user_id", userID).Msg("Failed to sign upload")
		respondServiceError(w, err)
		return
	}

	log.Info().
		Str("user_id", userID).
		Str("public_id", req.PublicID).
		Str("folder", req.Folder).
		Msg("Upload signature issued")

	respondJSON(w, http.StatusOK, sig)
}

// DeleteMedia handles POST /v1/deleteMedia
func (h *MediaHandler) DeleteMedia(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := middleware.GetUserID(ctx)
	if userID == "" {
		respondServiceError(w, services.ErrUnauthenticated)
		return
	}

	var req DeleteMediaRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondServiceError(w, services.ErrInvalidArgument)
		return
	}

	if err := h.cleaner.DeleteByPublicID(ctx, req.PublicID); err != nil {
		log.Error().
			Err(err).
			Str("user_id", userID).
			Str("public_id", req.PublicID).
			Msg("Failed to delete image")
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, SuccessResponse{
		Success: true,
		Message: fmt.Sprintf("Image %s deleted.", req.PublicID),
	})
}
