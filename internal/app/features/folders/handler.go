// Package folders provides the folder endpoints of the JSON API.
//
// Endpoints (mounted at /api/folders):
//   - GET    /              list, newest first; ?search= filters by client, site or code
//   - POST   /              create; responds {id, projectCode}
//   - GET    /{id}          one folder
//   - GET    /{id}/detail   folder with attachments grouped by category
//   - PUT    /{id}          full replace of the mutable fields
//   - DELETE /{id}          cascade delete (attachments, blobs, folder)
package folders

import (
	"net/http"

	errorsfeature "github.com/dalemusser/stratafolders/internal/app/features/errors"
	"github.com/dalemusser/stratafolders/internal/app/projects"
	"github.com/dalemusser/stratafolders/internal/app/system/inputval"
	"github.com/dalemusser/stratafolders/internal/app/system/jsonutil"
	"github.com/dalemusser/stratafolders/internal/app/system/normalize"
	"github.com/dalemusser/stratafolders/internal/app/system/timeouts"
	"go.uber.org/zap"
)

// Handler serves folder requests.
type Handler struct {
	svc    *projects.Service
	errLog *errorsfeature.ErrorLogger
	logger *zap.Logger
}

// NewHandler creates a new folders Handler.
func NewHandler(svc *projects.Service, errLog *errorsfeature.ErrorLogger, logger *zap.Logger) *Handler {
	return &Handler{svc: svc, errLog: errLog, logger: logger}
}

// folderRequest is the body of create and update. Fields left out are
// written as empty on update.
type folderRequest struct {
	ProjectCode      string `json:"projectCode"`
	ClientName       string `json:"clientName"`
	ConstructionSite string `json:"constructionSite"`
	Description      string `json:"description"`
	ProjectRef       string `json:"projectRef"`
	Phone            string `json:"phone"`
	ThirdParty       string `json:"thirdParty"`
	ProjectDate      string `json:"projectDate"`
	Notes            string `json:"notes"`
	Status           string `json:"status" validate:"folderstatus" label:"Status"`
}

func (req folderRequest) input() projects.FolderInput {
	return projects.FolderInput{
		ProjectCode:      normalize.ProjectCode(req.ProjectCode),
		ClientName:       req.ClientName,
		ConstructionSite: req.ConstructionSite,
		Description:      req.Description,
		ProjectRef:       req.ProjectRef,
		Phone:            req.Phone,
		ThirdParty:       req.ThirdParty,
		ProjectDate:      req.ProjectDate,
		Notes:            req.Notes,
		Status:           normalize.Status(req.Status),
	}
}

// decode reads and validates a folder body, writing a 400 on failure.
func decode(w http.ResponseWriter, r *http.Request) (folderRequest, bool) {
	var req folderRequest
	if err := jsonutil.Decode(r, &req); err != nil {
		jsonutil.BadRequest(w, err.Error())
		return req, false
	}
	if res := inputval.Validate(req); res.HasErrors() {
		jsonutil.Invalid(w, res.First(), res.Fields())
		return req, false
	}
	return req, true
}

type createResponse struct {
	ID          string `json:"id"`
	ProjectCode string `json:"projectCode"`
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Read(), h.logger, "folders.list")
	defer cancel()

	out, err := h.svc.Folders.List(ctx, normalize.QueryParam(r.URL.Query().Get("search")))
	if err != nil {
		h.errLog.Respond(w, r, "list folders failed", err)
		return
	}
	jsonutil.OK(w, out)
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	req, ok := decode(w, r)
	if !ok {
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Write(), h.logger, "folders.create")
	defer cancel()

	fo, err := h.svc.Folders.Create(ctx, req.input())
	if err != nil {
		h.errLog.Respond(w, r, "create folder failed", err)
		return
	}
	jsonutil.Created(w, createResponse{ID: fo.ID.Hex(), ProjectCode: fo.ProjectCode})
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	id, ok := jsonutil.PathID(w, r, "id", "folder")
	if !ok {
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Read(), h.logger, "folders.get")
	defer cancel()

	fo, err := h.svc.Folders.Get(ctx, id)
	if err != nil {
		h.errLog.Respond(w, r, "get folder failed", err, zap.String("folder_id", id.Hex()))
		return
	}
	jsonutil.OK(w, fo)
}

func (h *Handler) detail(w http.ResponseWriter, r *http.Request) {
	id, ok := jsonutil.PathID(w, r, "id", "folder")
	if !ok {
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Read(), h.logger, "folders.detail")
	defer cancel()

	d, err := h.svc.FolderDetail(ctx, id)
	if err != nil {
		h.errLog.Respond(w, r, "folder detail failed", err, zap.String("folder_id", id.Hex()))
		return
	}
	jsonutil.OK(w, d)
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	id, ok := jsonutil.PathID(w, r, "id", "folder")
	if !ok {
		return
	}
	req, ok := decode(w, r)
	if !ok {
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Write(), h.logger, "folders.update")
	defer cancel()

	fo, err := h.svc.Folders.Update(ctx, id, req.input())
	if err != nil {
		h.errLog.Respond(w, r, "update folder failed", err, zap.String("folder_id", id.Hex()))
		return
	}
	jsonutil.OK(w, fo)
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	id, ok := jsonutil.PathID(w, r, "id", "folder")
	if !ok {
		return
	}

	// Removes every attachment blob, so it gets the transfer budget.
	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Transfer(), h.logger, "folders.delete")
	defer cancel()

	if err := h.svc.Folders.Delete(ctx, id); err != nil {
		h.errLog.Respond(w, r, "delete folder failed", err, zap.String("folder_id", id.Hex()))
		return
	}
	jsonutil.NoContent(w)
}
