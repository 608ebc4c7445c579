package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"couple-backend/internal/docstore"
	"couple-backend/internal/identity"
	"couple-backend/internal/identity/identitytest"
	"couple-backend/internal/media"
	"couple-backend/internal/models"
	"couple-backend/internal/repository"
	"couple-backend/internal/services"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubMedia struct {
	result media.DestroyResult
	err    error
}

func (s *stubMedia) Destroy(ctx context.Context, publicID string) (media.DestroyResult, error) {
	return s.result, s.err
}

type testServer struct {
	handler    http.Handler
	users      *repository.UserRepository
	identities *identity.MemoryRegistry
	media      *stubMedia
}

const testSecret = "handler-secret"

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	store := docstore.NewMemoryStore()
	users := repository.NewUserRepository(store)
	couples := repository.NewCoupleRepository(store)
	identities := identity.NewMemoryRegistry()
	deleter := services.NewBatchDeleter(store)
	stub := &stubMedia{result: media.ResultOK}
	cleaner := services.NewMediaCleaner(stub, "res.cloudinary.com")

	unlinker := services.NewCoupleUnlinker(couples, users, repository.NewChatRepository(store), deleter)
	accounts := services.NewAccountService(
		users, couples, repository.NewCoupleCodeRepository(store), identities,
		unlinker, cleaner, deleter,
	)

	verifier := identity.NewVerifier(testSecret, "")
	return &testServer{
		handler:    NewRouter(verifier, NewMediaHandler(services.NewUploadService(media.NewSigner("key", "secret", "unsigned_uploads")), cleaner), NewAccountHandler(accounts)),
		users:      users,
		identities: identities,
		media:      stub,
	}
}

func (s *testServer) call(t *testing.T, path, userID, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if userID != "" {
		req.Header.Set("Authorization", "Bearer "+identitytest.Token(t, testSecret, "", userID))
	}
	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)
	return rec
}

func TestGenerateUploadSignature(t *testing.T) {
	srv := newTestServer(t)

	tests := []struct {
		name       string
		userID     string
		body       string
		wantStatus int
	}{
		{"signed", "alice", `{"publicId":"alice","folder":"profiles"}`, http.StatusOK},
		{"unauthenticated", "", `{"publicId":"alice","folder":"profiles"}`, http.StatusUnauthorized},
		{"missing folder", "alice", `{"publicId":"alice"}`, http.StatusBadRequest},
		{"missing public id", "alice", `{"folder":"profiles"}`, http.StatusBadRequest},
		{"malformed body", "alice", `{`, http.StatusBadRequest},
		{"non-string folder", "alice", `{"publicId":"alice","folder":7}`, http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := srv.call(t, "/v1/generateUploadSignature", tt.userID, tt.body)
			assert.Equal(t, tt.wantStatus, rec.Code)
			switch tt.wantStatus {
			case http.StatusBadRequest:
				assert.JSONEq(t, `{"error":"Invalid request."}`, rec.Body.String())
				return
			case http.StatusUnauthorized:
				return
			}

			var sig media.UploadSignature
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &sig))
			assert.Equal(t, "key", sig.APIKey)
			assert.NotZero(t, sig.Timestamp)
			assert.Len(t, sig.Signature, 40)
		})
	}
}

func TestDeleteMedia(t *testing.T) {
	tests := []struct {
		name       string
		userID     string
		body       string
		media      stubMedia
		wantStatus int
		wantBody   string
	}{
		{"deleted", "alice", `{"publicId":"profiles/alice"}`, stubMedia{result: media.ResultOK}, http.StatusOK,
			`{"success":true,"message":"Image profiles/alice deleted."}`},
		{"already gone", "alice", `{"publicId":"profiles/alice"}`, stubMedia{result: media.ResultNotFound}, http.StatusOK,
			`{"success":true,"message":"Image profiles/alice deleted."}`},
		{"unauthenticated", "", `{"publicId":"profiles/alice"}`, stubMedia{}, http.StatusUnauthorized,
			`{"error":"User not authenticated."}`},
		{"non-string id", "alice", `{"publicId":42}`, stubMedia{}, http.StatusBadRequest,
			`{"error":"Invalid request."}`},
		{"empty id", "alice", `{"publicId":""}`, stubMedia{}, http.StatusBadRequest,
			`{"error":"Invalid request."}`},
		{"host refused", "alice", `{"publicId":"profiles/alice"}`, stubMedia{result: "error"}, http.StatusBadGateway,
			`{"error":"Media service failed to delete image."}`},
		{"host unreachable", "alice", `{"publicId":"profiles/alice"}`, stubMedia{err: errors.New("dial tcp: refused")}, http.StatusBadGateway,
			`{"error":"Media service failed to delete image."}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := newTestServer(t)
			*srv.media = tt.media

			rec := srv.call(t, "/v1/deleteMedia", tt.userID, tt.body)
			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.JSONEq(t, tt.wantBody, rec.Body.String())
		})
	}
}

func TestDeleteAccount(t *testing.T) {
	ctx := context.Background()
	srv := newTestServer(t)
	uid := uuid.NewString()

	require.NoError(t, srv.users.Create(ctx, &models.User{ID: uid}))
	require.NoError(t, srv.identities.Create(ctx, uid))
	require.NoError(t, srv.users.Create(ctx, &models.User{ID: "bystander"}))

	rec := srv.call(t, "/v1/deleteAccount", uid, `{"uid":"bystander"}`)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"success":true,"message":"Account deleted successfully."}`, rec.Body.String())

	exists, err := srv.users.Exists(ctx, uid)
	require.NoError(t, err)
	assert.False(t, exists)

	exists, err = srv.users.Exists(ctx, "bystander")
	require.NoError(t, err)
	assert.True(t, exists, "only the caller is deleted")

	rec = srv.call(t, "/v1/deleteAccount", uid, "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"success":true,"message":"Auth user deleted."}`, rec.Body.String())

	rec = srv.call(t, "/v1/deleteAccount", "", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRespondServiceError(t *testing.T) {
	tests := []struct {
		err        error
		wantStatus int
	}{
		{services.ErrUnauthenticated, http.StatusUnauthorized},
		{services.ErrInvalidArgument, http.StatusBadRequest},
		{services.ErrMediaDeleteFailed, http.StatusBadGateway},
		{services.ErrAccountDeletionFailed, http.StatusInternalServerError},
		{errors.New("pq: connection reset"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		rec := httptest.NewRecorder()
		respondServiceError(rec, tt.err)
		assert.Equal(t, tt.wantStatus, rec.Code)
		assert.NotContains(t, rec.Body.String(), "connection reset")
	}
}

func TestHealth(t *testing.T) {
	srv := newTestServer(t)
	rec := httptest.NewRecorder()
	srv.handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}
