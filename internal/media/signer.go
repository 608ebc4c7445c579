package media

import (
	"fmt"
	"net/url"
	"strconv"
	"time"

	"github.com/cloudinary/cloudinary-go/v2/api"
)

// UploadSignature lets a client upload directly to the hosting service
type UploadSignature struct {
	Signature string `json:"signature"`
	Timestamp int64  `json:"timestamp"`
	APIKey    string `json:"api_key"`
}

// Signer signs upload parameters with the account's API secret
type Signer struct {
	apiKey       string
	apiSecret    string
	uploadPreset string
	now          func() time.Time
}

// NewSigner creates a new upload signer
func NewSigner(apiKey, apiSecret, uploadPreset string) *Signer {
	return &Signer{
		apiKey:       apiKey,
		apiSecret:    apiSecret,
		uploadPreset: uploadPreset,
		now:          time.Now,
	}
}

// SignUpload signs an upload of publicID into folder
func (s *Signer) SignUpload(publicID, folder string) (UploadSignature, error) {
	timestamp := s.now().Unix()
	signature, err := Sign(map[string]string{
		"public_id":     publicID,
		"timestamp":     strconv.FormatInt(timestamp, 10),
		"upload_preset": s.uploadPreset,
		"folder":        folder,
	}, s.apiSecret)
	if err != nil {
		return UploadSignature{}, err
	}
	return UploadSignature{
		Signature: signature,
		Timestamp: timestamp,
		APIKey:    s.apiKey,
	}, nil
}

// Sign signs the non-empty params the way the upload API verifies them
func Sign(params map[string]string, secret string) (string, error) {
	values := url.Values{}
	for k, v := range params {
		if v != "" {
			values.Set(k, v)
		}
	}
	signature, err := api.SignParameters(values, secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign parameters: %w", err)
	}
	return signature, nil
}
