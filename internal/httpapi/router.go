package httpapi

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/rs/cors"
)

// NewRouter wires the session API under /api/v1/placement, the same
// subrouter + CORS shape as the teacher's cmd/server/main.go.
func NewRouter(h *Handler) http.Handler {
	r := mux.NewRouter()

	r.HandleFunc("/health", h.Health).Methods(http.MethodGet)

	api := r.PathPrefix("/api/v1/placement").Subrouter()
	api.HandleFunc("/sessions", h.CreateSession).Methods(http.MethodPost)
	api.HandleFunc("/sessions/{id}/next", h.Next).Methods(http.MethodGet)
	api.HandleFunc("/sessions/{id}/answer", h.SubmitAnswer).Methods(http.MethodPost)
	api.HandleFunc("/sessions/{id}/report", h.Report).Methods(http.MethodGet)
	api.HandleFunc("/sessions/{id}/debug", h.Debug).Methods(http.MethodGet)

	c := cors.New(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders:   []string{"Content-Type", "Authorization"},
		AllowCredentials: false,
	})

	return c.Handler(r)
}
