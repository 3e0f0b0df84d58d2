package attachments

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// FolderRoutes returns the folder-scoped endpoints. Mount it under a route
// that defines the {id} URL param as the folder id.
func FolderRoutes(h *Handler) http.Handler {
	r := chi.NewRouter()
	r.Get("/", h.list)
	r.Post("/", h.upload)
	return r
}

// Routes returns the attachment-scoped endpoints.
func Routes(h *Handler) http.Handler {
	r := chi.NewRouter()
	r.Route("/{id}", func(r chi.Router) {
		r.Put("/", h.retag)
		r.Delete("/", h.delete)
		r.Get("/download", h.download)
	})
	return r
}
