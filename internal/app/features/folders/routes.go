package folders

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// Routes returns a router with the folder endpoints. files, when non-nil, is
// mounted at /{id}/files and reads the folder id from the same URL param.
func Routes(h *Handler, files http.Handler) http.Handler {
	r := chi.NewRouter()
	r.Get("/", h.list)
	r.Post("/", h.create)

	r.Route("/{id}", func(r chi.Router) {
		r.Get("/", h.get)
		r.Put("/", h.update)
		r.Delete("/", h.delete)
		r.Get("/detail", h.detail)
		if files != nil {
			r.Mount("/files", files)
		}
	})
	return r
}
