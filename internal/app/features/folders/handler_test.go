package folders

import (
	"net/http"
	"strings"
	"testing"

	"github.com/dalemusser/stratafolders/internal/app/features/attachments"
	errorsfeature "github.com/dalemusser/stratafolders/internal/app/features/errors"
	"github.com/dalemusser/stratafolders/internal/app/projects"
	"github.com/dalemusser/stratafolders/internal/domain/models"
	"github.com/dalemusser/stratafolders/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type env struct {
	svc    *projects.Service
	mem    *testutil.MemoryBlobs
	router http.Handler
}

func setup(t *testing.T) *env {
	t.Helper()
	db := testutil.SetupTestDB(t)
	mem := testutil.NewMemoryBlobs()
	logger := zap.NewNop()
	svc := projects.New(db, mem, logger)
	errLog := errorsfeature.NewErrorLogger(logger)

	files := attachments.FolderRoutes(attachments.NewHandler(svc.Attachments, errLog, 0, logger))
	return &env{
		svc:    svc,
		mem:    mem,
		router: Routes(NewHandler(svc, errLog, logger), files),
	}
}

func (e *env) create(t *testing.T, body map[string]string) createResponse {
	t.Helper()
	rec := testutil.Serve(e.router, testutil.NewJSONRequest(http.MethodPost, "/", body))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var out createResponse
	rec.DecodeJSON(t, &out)
	return out
}

func TestCreate(t *testing.T) {
	e := setup(t)

	first := e.create(t, map[string]string{"clientName": "Rossi"})
	second := e.create(t, map[string]string{"clientName": "Bianchi", "status": "In Corso"})

	assert.NotEmpty(t, first.ID)
	assert.Equal(t, "#0001", first.ProjectCode)
	assert.Equal(t, "#0002", second.ProjectCode)
}

func TestCreate_ExplicitCode(t *testing.T) {
	e := setup(t)

	out := e.create(t, map[string]string{"projectCode": " #0100 "})
	assert.Equal(t, "#0100", out.ProjectCode)

	rec := testutil.Serve(e.router, testutil.NewJSONRequest(http.MethodPost, "/", map[string]string{"projectCode": "#0100"}))
	rec.AssertStatus(t, http.StatusBadRequest)
}

func TestCreate_BadInput(t *testing.T) {
	e := setup(t)

	tests := []struct {
		name string
		body any
		want string
	}{
		{"unknown status", map[string]string{"status": "done"}, "Status must be one of"},
		{"legacy status on write", map[string]string{"status": "aperta"}, "Status must be one of"},
		{"unknown field", `{"client":"x"}`, "invalid JSON payload"},
		{"empty body", "", "request body is empty"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := testutil.Serve(e.router, testutil.NewJSONRequest(http.MethodPost, "/", tt.body))
			rec.AssertStatus(t, http.StatusBadRequest)
			assert.Contains(t, rec.ErrorMessage(), tt.want)
		})
	}
}

func TestCreate_ValidationNamesTheField(t *testing.T) {
	e := setup(t)

	rec := testutil.Serve(e.router, testutil.NewJSONRequest(http.MethodPost, "/", map[string]string{"status": "done"}))
	rec.AssertStatus(t, http.StatusBadRequest)

	var body struct {
		Error  string            `json:"error"`
		Fields map[string]string `json:"fields"`
	}
	rec.DecodeJSON(t, &body)
	assert.Contains(t, body.Error, "Status must be one of")
	assert.Equal(t, body.Error, body.Fields["status"])
}

func TestList_Search(t *testing.T) {
	e := setup(t)
	e.create(t, map[string]string{"clientName": "Rossi Costruzioni"})
	e.create(t, map[string]string{"clientName": "Bianchi", "constructionSite": "Via Roma"})

	rec := testutil.Serve(e.router, testutil.NewRequest(http.MethodGet, "/?search=+rossi+"))
	rec.AssertStatus(t, http.StatusOK)
	var got []models.Folder
	rec.DecodeJSON(t, &got)
	require.Len(t, got, 1)
	assert.Equal(t, "Rossi Costruzioni", got[0].ClientName)

	rec = testutil.Serve(e.router, testutil.NewRequest(http.MethodGet, "/"))
	rec.DecodeJSON(t, &got)
	require.Len(t, got, 2)
	assert.Equal(t, "Bianchi", got[0].ClientName, "newest first")
}

func TestList_EmptyIsArray(t *testing.T) {
	e := setup(t)

	rec := testutil.Serve(e.router, testutil.NewRequest(http.MethodGet, "/"))
	rec.AssertStatus(t, http.StatusOK)
	assert.Equal(t, "[]", strings.TrimSpace(rec.Body.String()))
}

func TestGet(t *testing.T) {
	e := setup(t)
	out := e.create(t, map[string]string{"clientName": "Rossi", "notes": "piano terra"})

	rec := testutil.Serve(e.router, testutil.NewRequest(http.MethodGet, "/"+out.ID))
	rec.AssertStatus(t, http.StatusOK)
	var got models.Folder
	rec.DecodeJSON(t, &got)
	assert.Equal(t, out.ProjectCode, got.ProjectCode)
	assert.Equal(t, "piano terra", got.Notes)
	assert.Equal(t, "Da Iniziare", got.Status)
}

func TestGet_NotFound(t *testing.T) {
	e := setup(t)

	for _, path := range []string{"/not-an-id", "/507f1f77bcf86cd799439011"} {
		rec := testutil.Serve(e.router, testutil.NewRequest(http.MethodGet, path))
		rec.AssertStatus(t, http.StatusNotFound)
		assert.Contains(t, rec.ErrorMessage(), "folder")
	}
}

func TestUpdate_FullReplace(t *testing.T) {
	e := setup(t)
	out := e.create(t, map[string]string{"clientName": "Rossi", "phone": "0212345"})

	rec := testutil.Serve(e.router, testutil.NewJSONRequest(http.MethodPut, "/"+out.ID,
		map[string]string{"clientName": "Rossi Srl", "status": "Finita"}))
	rec.AssertStatus(t, http.StatusOK)

	var got models.Folder
	rec.DecodeJSON(t, &got)
	assert.Equal(t, "Rossi Srl", got.ClientName)
	assert.Equal(t, "", got.Phone, "omitted fields are cleared")
	assert.Equal(t, "Finita", got.Status)
	assert.Equal(t, out.ProjectCode, got.ProjectCode, "code is not editable")
}

func TestUpdate_NotFound(t *testing.T) {
	e := setup(t)

	rec := testutil.Serve(e.router, testutil.NewJSONRequest(http.MethodPut, "/507f1f77bcf86cd799439011",
		map[string]string{"clientName": "x"}))
	rec.AssertStatus(t, http.StatusNotFound)
}

func TestDetail_GroupsAttachments(t *testing.T) {
	e := setup(t)
	out := e.create(t, map[string]string{"clientName": "Rossi"})

	for _, up := range []struct{ name, cat string }{
		{"pianta.pdf", "Disegni"},
		{"foto1.jpg", "Foto"},
		{"note.txt", ""},
	} {
		rec := testutil.Serve(e.router, testutil.NewMultipartRequest("/"+out.ID+"/files",
			&testutil.Upload{Filename: up.name, Content: []byte("x")},
			map[string]string{"category": up.cat}))
		rec.AssertStatus(t, http.StatusCreated)
	}

	rec := testutil.Serve(e.router, testutil.NewRequest(http.MethodGet, "/"+out.ID+"/detail"))
	rec.AssertStatus(t, http.StatusOK)

	var got projects.FolderDetail
	rec.DecodeJSON(t, &got)
	assert.Equal(t, out.ProjectCode, got.Folder.ProjectCode)
	require.Len(t, got.Groups, 3)
	assert.Equal(t, "Disegni", got.Groups[0].Category)
	assert.Equal(t, "Foto", got.Groups[1].Category)
	assert.Equal(t, "", got.Groups[2].Category, "uncategorized last")
}

func TestDelete_Cascades(t *testing.T) {
	e := setup(t)
	out := e.create(t, map[string]string{"clientName": "Rossi"})

	rec := testutil.Serve(e.router, testutil.NewMultipartRequest("/"+out.ID+"/files",
		&testutil.Upload{Filename: "a.pdf", Content: []byte("%PDF")}, nil))
	rec.AssertStatus(t, http.StatusCreated)
	require.Len(t, e.mem.Paths(), 1)

	rec = testutil.Serve(e.router, testutil.NewRequest(http.MethodDelete, "/"+out.ID))
	rec.AssertStatus(t, http.StatusNoContent)
	assert.Empty(t, e.mem.Paths())

	rec = testutil.Serve(e.router, testutil.NewRequest(http.MethodGet, "/"+out.ID))
	rec.AssertStatus(t, http.StatusNotFound)
}

func TestDelete_StorageFailure(t *testing.T) {
	e := setup(t)
	out := e.create(t, map[string]string{"clientName": "Rossi"})
	rec := testutil.Serve(e.router, testutil.NewMultipartRequest("/"+out.ID+"/files",
		&testutil.Upload{Filename: "a.pdf", Content: []byte("%PDF")}, nil))
	rec.AssertStatus(t, http.StatusCreated)

	e.mem.DeleteErr = assert.AnError
	rec = testutil.Serve(e.router, testutil.NewRequest(http.MethodDelete, "/"+out.ID))
	rec.AssertStatus(t, http.StatusBadGateway)
	assert.Equal(t, "file storage unavailable", rec.ErrorMessage())

	e.mem.DeleteErr = nil
	rec = testutil.Serve(e.router, testutil.NewRequest(http.MethodGet, "/"+out.ID))
	rec.AssertStatus(t, http.StatusOK)
}
