// Package identitytest signs caller ID tokens for tests.
package identitytest

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
)

// Token signs an HS256 ID token for uid the way the authentication provider
// does. An empty issuer leaves the iss claim out.
func Token(t testing.TB, secret, issuer, uid string) string {
	t.Helper()

	now := time.Now()
	claims := jwt.MapClaims{
		"user_id": uid,
		"sub":     uid,
		"exp":     now.Add(time.Hour).Unix(),
		"iat":     now.Unix(),
	}
	if issuer != "" {
		claims["iss"] = issuer
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	require.NoError(t, err)
	return signed
}
