package identity

import (
	"context"
	"testing"
	"time"

	"couple-backend/internal/identity/identitytest"

	"github.com/golang-jwt/jwt/v5"
	pgxmock "github.com/pashagolub/pgxmock/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVerifier_RoundTrip(t *testing.T) {
	v := NewVerifier("secret", "couple-backend")

	uid, err := v.Verify(identitytest.Token(t, "secret", "couple-backend", "u1"))
	require.NoError(t, err)
	assert.Equal(t, "u1", uid)
}

func TestVerifier_Rejects(t *testing.T) {
	v := NewVerifier("secret", "")

	sign := func(claims jwt.MapClaims, method jwt.SigningMethod, key interface{}) string {
		s, err := jwt.NewWithClaims(method, claims).SignedString(key)
		require.NoError(t, err)
		return s
	}
	exp := time.Now().Add(time.Hour).Unix()

	tests := []struct {
		name  string
		token string
	}{
		{"garbage", "not-a-token"},
		{"wrong secret", sign(jwt.MapClaims{"user_id": "u1", "exp": exp}, jwt.SigningMethodHS256, []byte("other"))},
		{"expired", sign(jwt.MapClaims{"user_id": "u1", "exp": time.Now().Add(-time.Hour).Unix()}, jwt.SigningMethodHS256, []byte("secret"))},
		{"no subject", sign(jwt.MapClaims{"exp": exp}, jwt.SigningMethodHS256, []byte("secret"))},
		{"wrong algorithm", sign(jwt.MapClaims{"user_id": "u1", "exp": exp}, jwt.SigningMethodHS512, []byte("secret"))},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := v.Verify(tt.token)
			assert.ErrorIs(t, err, ErrInvalidToken)
		})
	}
}

func TestVerifier_IssuerMismatch(t *testing.T) {
	token := identitytest.Token(t, "secret", "someone-else", "u1")

	_, err := NewVerifier("secret", "couple-backend").Verify(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerifier_SubjectFallback(t *testing.T) {
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": "u9",
		"exp": time.Now().Add(time.Hour).Unix(),
	}).SignedString([]byte("secret"))
	require.NoError(t, err)

	uid, err := NewVerifier("secret", "").Verify(token)
	require.NoError(t, err)
	assert.Equal(t, "u9", uid)
}

func TestMemoryRegistry(t *testing.T) {
	ctx := context.Background()
	r := NewMemoryRegistry()

	require.NoError(t, r.Create(ctx, "u1"))
	ok, err := r.Exists(ctx, "u1")
	require.NoError(t, err)
	assert.True(t, ok)

	require.NoError(t, r.Delete(ctx, "u1"))
	require.NoError(t, r.Delete(ctx, "u1"))
	ok, err = r.Exists(ctx, "u1")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestPostgresRegistry(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectExec(`DELETE FROM identities`).
		WithArgs("u1").
		WillReturnResult(pgxmock.NewResult("DELETE", 0))

	r := NewPostgresRegistry(mock)
	require.NoError(t, r.Delete(context.Background(), "u1"), "missing identity still succeeds")
	assert.NoError(t, mock.ExpectationsWereMet())
}
