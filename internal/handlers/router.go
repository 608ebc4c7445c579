package handlers

import (
	"net/http"

	"couple-backend/internal/middleware"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
)

// NewRouter mounts the callable endpoints behind bearer authentication
func NewRouter(verifier middleware.TokenVerifier, mediaHandler *MediaHandler, accountHandler *AccountHandler) http.Handler {
	r := chi.NewRouter()

	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(chiMiddleware.Logger)
	r.Use(chiMiddleware.Recoverer)
	r.Use(corsMiddleware)

	r.Get("/healthz", Health)

	r.Route("/v1", func(r chi.Router) {
		r.Use(middleware.AuthMiddleware(verifier))
		r.Post("/generateUploadSignature", mediaHandler.GenerateUploadSignature)
		r.Post("/deleteMedia", mediaHandler.DeleteMedia)
		r.Post("/deleteAccount", accountHandler.DeleteAccount)
	})

	return r
}

// corsMiddleware handles CORS
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Authorization, Content-Type")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}
