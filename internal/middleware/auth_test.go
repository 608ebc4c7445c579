package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"couple-backend/internal/identity"
	"couple-backend/internal/identity/identitytest"

	"github.com/stretchr/testify/assert"
)

func TestAuthMiddleware(t *testing.T) {
	verifier := identity.NewVerifier("test-secret", "")
	token := identitytest.Token(t, "test-secret", "", "alice")
	otherToken := identitytest.Token(t, "other-secret", "", "alice")

	tests := []struct {
		name       string
		header     string
		wantStatus int
		wantUser   string
	}{
		{"valid token", "Bearer " + token, http.StatusOK, "alice"},
		{"missing header", "", http.StatusUnauthorized, ""},
		{"wrong scheme", "Basic " + token, http.StatusUnauthorized, ""},
		{"empty token", "Bearer ", http.StatusUnauthorized, ""},
		{"foreign signature", "Bearer " + otherToken, http.StatusUnauthorized, ""},
		{"garbage", "Bearer not.a.jwt", http.StatusUnauthorized, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var gotUser string
			next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				gotUser = GetUserID(r.Context())
				w.WriteHeader(http.StatusOK)
			})

			req := httptest.NewRequest(http.MethodPost, "/v1/deleteAccount", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()

			AuthMiddleware(verifier)(next).ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Equal(t, tt.wantUser, gotUser)
			if tt.wantStatus == http.StatusUnauthorized {
				assert.JSONEq(t, `{"error":"User not authenticated."}`, rec.Body.String())
			}
		})
	}
}
