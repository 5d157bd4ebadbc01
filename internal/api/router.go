package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/starford/recvault/internal/vault"
)

// NewRouter creates a chi router with all API routes mounted.
// sseHandler, if non-nil, is mounted at GET /events.
func NewRouter(svc *vault.Service, sseHandler http.Handler) chi.Router {
	h := NewHandler(svc)

	r := chi.NewRouter()
	r.Use(Recoverer)

	// Records CRUD.
	r.Get("/records", h.ListRecords)
	r.Post("/records", h.AddRecord)
	r.Put("/records/{id}", h.UpdateRecord)
	r.Delete("/records/{id}", h.DeleteRecord)

	// Queries.
	r.Get("/search", h.Search)
	r.Get("/sort", h.Sort)
	r.Get("/stats", h.Stats)

	// Files.
	r.Get("/export", h.Export)
	r.Post("/backup", h.Backup)

	if sseHandler != nil {
		r.Get("/events", sseHandler.ServeHTTP)
	}

	return r
}
