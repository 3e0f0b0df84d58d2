// Package categories provides the category registry endpoints of the JSON API.
//
// Endpoints (mounted at /api/categories):
//   - GET    /      list by name
//   - POST   /      create; JSON {"name": string}
//   - PUT    /{id}  rename; attachments tagged with the old name follow
//   - DELETE /{id}  delete the registry entry; attachments keep their tag
package categories

import (
	"net/http"

	errorsfeature "github.com/dalemusser/stratafolders/internal/app/features/errors"
	"github.com/dalemusser/stratafolders/internal/app/projects"
	"github.com/dalemusser/stratafolders/internal/app/system/inputval"
	"github.com/dalemusser/stratafolders/internal/app/system/jsonutil"
	"github.com/dalemusser/stratafolders/internal/app/system/normalize"
	"github.com/dalemusser/stratafolders/internal/app/system/timeouts"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// Handler serves category requests.
type Handler struct {
	cats   *projects.Categories
	errLog *errorsfeature.ErrorLogger
	logger *zap.Logger
}

// NewHandler creates a new categories Handler.
func NewHandler(cats *projects.Categories, errLog *errorsfeature.ErrorLogger, logger *zap.Logger) *Handler {
	return &Handler{cats: cats, errLog: errLog, logger: logger}
}

// Routes returns a router with the category endpoints.
func Routes(h *Handler) http.Handler {
	r := chi.NewRouter()
	r.Get("/", h.list)
	r.Post("/", h.create)
	r.Put("/{id}", h.rename)
	r.Delete("/{id}", h.delete)
	return r
}

type nameRequest struct {
	Name string `json:"name" validate:"required,max=100" label:"Category name"`
}

func decodeName(w http.ResponseWriter, r *http.Request) (string, bool) {
	var req nameRequest
	if err := jsonutil.Decode(r, &req); err != nil {
		jsonutil.BadRequest(w, err.Error())
		return "", false
	}
	req.Name = normalize.Name(req.Name)
	if res := inputval.Validate(req); res.HasErrors() {
		jsonutil.Invalid(w, res.First(), res.Fields())
		return "", false
	}
	return req.Name, true
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Read(), h.logger, "categories.list")
	defer cancel()

	out, err := h.cats.List(ctx)
	if err != nil {
		h.errLog.Respond(w, r, "list categories failed", err)
		return
	}
	jsonutil.OK(w, out)
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	name, ok := decodeName(w, r)
	if !ok {
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Write(), h.logger, "categories.create")
	defer cancel()

	c, err := h.cats.Create(ctx, name)
	if err != nil {
		h.errLog.Respond(w, r, "create category failed", err)
		return
	}
	jsonutil.Created(w, c)
}

func (h *Handler) rename(w http.ResponseWriter, r *http.Request) {
	id, ok := jsonutil.PathID(w, r, "id", "category")
	if !ok {
		return
	}
	name, ok := decodeName(w, r)
	if !ok {
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Write(), h.logger, "categories.rename")
	defer cancel()

	c, err := h.cats.Rename(ctx, id, name)
	if err != nil {
		h.errLog.Respond(w, r, "rename category failed", err, zap.String("category_id", id.Hex()))
		return
	}
	jsonutil.OK(w, c)
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	id, ok := jsonutil.PathID(w, r, "id", "category")
	if !ok {
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Write(), h.logger, "categories.delete")
	defer cancel()

	if err := h.cats.Delete(ctx, id); err != nil {
		h.errLog.Respond(w, r, "delete category failed", err, zap.String("category_id", id.Hex()))
		return
	}
	jsonutil.NoContent(w)
}
