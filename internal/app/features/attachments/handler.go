// Package attachments provides the attachment endpoints of the JSON API.
//
// Folder-scoped (mounted under /api/folders/{id}/files):
//   - GET  /   attachments of the folder, oldest first
//   - POST /   multipart upload: part "file", optional fields "category", "name"
//
// Attachment-scoped (mounted at /api/files):
//   - PUT    /{id}           retag; JSON {"name"?: string, "category"?: string}
//   - DELETE /{id}           delete blob then record
//   - GET    /{id}/download  stream the bytes
package attachments

import (
	"errors"
	"io"
	"mime"
	"net/http"
	"strconv"
	"strings"

	errorsfeature "github.com/dalemusser/stratafolders/internal/app/features/errors"
	"github.com/dalemusser/stratafolders/internal/app/projects"
	"github.com/dalemusser/stratafolders/internal/app/system/jsonutil"
	"github.com/dalemusser/stratafolders/internal/app/system/normalize"
	"github.com/dalemusser/stratafolders/internal/app/system/timeouts"
	"go.uber.org/zap"
)

// DefaultMaxUpload caps an upload request body when no limit is configured.
const DefaultMaxUpload int64 = 32 << 20

// multipartMemory is how much of a multipart body is kept in memory before
// spilling file parts to disk.
const multipartMemory = 8 << 20

// Handler serves attachment requests.
type Handler struct {
	atts      *projects.Attachments
	errLog    *errorsfeature.ErrorLogger
	logger    *zap.Logger
	maxUpload int64
}

// NewHandler creates a new attachments Handler. maxUpload <= 0 selects
// DefaultMaxUpload.
func NewHandler(atts *projects.Attachments, errLog *errorsfeature.ErrorLogger, maxUpload int64, logger *zap.Logger) *Handler {
	if maxUpload <= 0 {
		maxUpload = DefaultMaxUpload
	}
	return &Handler{atts: atts, errLog: errLog, logger: logger, maxUpload: maxUpload}
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	folderID, ok := jsonutil.PathID(w, r, "id", "folder")
	if !ok {
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Read(), h.logger, "attachments.list")
	defer cancel()

	out, err := h.atts.ListByFolder(ctx, folderID)
	if err != nil {
		h.errLog.Respond(w, r, "list attachments failed", err, zap.String("folder_id", folderID.Hex()))
		return
	}
	jsonutil.OK(w, out)
}

func (h *Handler) upload(w http.ResponseWriter, r *http.Request) {
	folderID, ok := jsonutil.PathID(w, r, "id", "folder")
	if !ok {
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, h.maxUpload)
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var tooBig *http.MaxBytesError
		if errors.As(err, &tooBig) {
			jsonutil.Error(w, http.StatusRequestEntityTooLarge,
				"file too large (max "+strconv.FormatInt(h.maxUpload>>20, 10)+" MB)")
			return
		}
		jsonutil.BadRequest(w, "invalid multipart form")
		return
	}
	defer r.MultipartForm.RemoveAll()

	var (
		blob *projects.Blob
		name = r.FormValue("name")
	)
	upload, header, err := r.FormFile("file")
	switch {
	case err == nil:
		defer upload.Close()
		blob = &projects.Blob{Reader: upload, ContentType: header.Header.Get("Content-Type")}
		if strings.TrimSpace(name) == "" {
			name = header.Filename
		}
	case errors.Is(err, http.ErrMissingFile):
		// Upload reports the missing file as a validation error.
	default:
		jsonutil.BadRequest(w, "invalid file part")
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Transfer(), h.logger, "attachments.upload")
	defer cancel()

	att, err := h.atts.Upload(ctx, folderID, name, normalize.Name(r.FormValue("category")), blob)
	if err != nil {
		h.errLog.Respond(w, r, "upload failed", err, zap.String("folder_id", folderID.Hex()))
		return
	}
	jsonutil.Created(w, att)
}

type retagRequest struct {
	Name     *string `json:"name"`
	Category *string `json:"category"`
}

func (h *Handler) retag(w http.ResponseWriter, r *http.Request) {
	id, ok := jsonutil.PathID(w, r, "id", "attachment")
	if !ok {
		return
	}
	var req retagRequest
	if err := jsonutil.Decode(r, &req); err != nil {
		jsonutil.BadRequest(w, err.Error())
		return
	}
	if req.Category != nil {
		c := normalize.Name(*req.Category)
		req.Category = &c
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Write(), h.logger, "attachments.retag")
	defer cancel()

	att, err := h.atts.Retag(ctx, id, projects.AttachmentPatch{Name: req.Name, Category: req.Category})
	if err != nil {
		h.errLog.Respond(w, r, "retag failed", err, zap.String("attachment_id", id.Hex()))
		return
	}
	jsonutil.OK(w, att)
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	id, ok := jsonutil.PathID(w, r, "id", "attachment")
	if !ok {
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Transfer(), h.logger, "attachments.delete")
	defer cancel()

	if err := h.atts.Delete(ctx, id); err != nil {
		h.errLog.Respond(w, r, "delete attachment failed", err, zap.String("attachment_id", id.Hex()))
		return
	}
	jsonutil.NoContent(w)
}

func (h *Handler) download(w http.ResponseWriter, r *http.Request) {
	id, ok := jsonutil.PathID(w, r, "id", "attachment")
	if !ok {
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Transfer(), h.logger, "attachments.download")
	defer cancel()

	att, rc, err := h.atts.Open(ctx, id)
	if err != nil {
		h.errLog.Respond(w, r, "open attachment failed", err, zap.String("attachment_id", id.Hex()))
		return
	}
	defer rc.Close()

	w.Header().Set("Content-Type", att.Type)
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": att.Name}))
	if att.Size > 0 {
		w.Header().Set("Content-Length", strconv.FormatInt(att.Size, 10))
	}

	// Headers are already sent; a failed copy can only be logged.
	if _, err := io.Copy(w, rc); err != nil {
		h.logger.Warn("failed to stream attachment",
			zap.String("attachment_id", id.Hex()),
			zap.String("path", att.Path),
			zap.Error(err))
	}
}
