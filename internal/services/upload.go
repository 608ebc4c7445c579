package services

import (
	"fmt"

	"couple-backend/internal/media"
)

// UploadService issues signatures for direct client uploads
type UploadService struct {
	signer *media.Signer
}

// NewUploadService creates a new upload service
func NewUploadService(signer *media.Signer) *UploadService {
	return &UploadService{signer: signer}
}

// SignUpload signs an upload of publicID into folder; both are required
func (s *UploadService) SignUpload(publicID, folder string) (media.UploadSignature, error) {
	if publicID == "" || folder == "" {
		return media.UploadSignature{}, fmt.Errorf("%w: missing publicId or folder", ErrInvalidArgument)
	}
	return s.signer.SignUpload(publicID, folder)
}
