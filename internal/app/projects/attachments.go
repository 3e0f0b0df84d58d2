package projects

import (
	"context"
	"errors"
	"io"
	"strings"
	"time"

	"github.com/dalemusser/stratafolders/internal/app/store/file"
	"github.com/dalemusser/stratafolders/internal/app/store/folder"
	"github.com/dalemusser/stratafolders/internal/app/system/blobs"
	"github.com/dalemusser/stratafolders/internal/domain"
	"github.com/dalemusser/stratafolders/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Blob is the byte source of an upload.
type Blob struct {
	Reader      io.Reader
	ContentType string // empty means application/octet-stream
}

// AttachmentPatch holds the fields Retag may change. Nil means unchanged.
type AttachmentPatch struct {
	Name     *string
	Category *string
}

// Attachments binds stored blobs to attachment records.
//
// Blob and record live in two stores with no shared commit. Writes go blob
// first, deletes go blob first too, so a failure part-way leaves an orphaned
// blob (reclaimed by the sweeper) and never a record without bytes.
type Attachments struct {
	folders *folder.Store
	files   *file.Store
	blobs   *blobs.Store
	log     *zap.Logger
	now     func() time.Time
}

// Upload stores blob under a generated name and records it on the folder.
func (a *Attachments) Upload(ctx context.Context, folderID primitive.ObjectID, displayName, category string, blob *Blob) (*models.FileAttachment, error) {
	ok, err := a.folders.Exists(ctx, folderID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, domain.NotFound("folder", folderID.Hex())
	}
	if blob == nil || blob.Reader == nil {
		return nil, domain.Invalid("no file uploaded")
	}
	if strings.TrimSpace(displayName) == "" {
		return nil, domain.Invalid("file name is required")
	}

	contentType := blob.ContentType
	if contentType == "" {
		contentType = blobs.DefaultContentType
	}
	path := blobs.StorageName(displayName, a.now())

	size, err := a.blobs.Save(ctx, path, blob.Reader, contentType)
	if err != nil {
		return nil, domain.Storage("put", path, err)
	}

	rec, err := a.files.Create(ctx, file.CreateInput{
		FolderID: folderID,
		Name:     displayName,
		Path:     path,
		Type:     contentType,
		Size:     size,
		Category: strings.TrimSpace(category),
	})
	if err != nil {
		if _, rmErr := a.blobs.Remove(ctx, path); rmErr != nil {
			a.log.Warn("orphaned blob after failed record insert",
				zap.String("path", path),
				zap.Error(rmErr))
		}
		return nil, err
	}

	a.log.Info("attachment uploaded",
		zap.String("attachment_id", rec.ID.Hex()),
		zap.String("folder_id", folderID.Hex()),
		zap.String("path", path),
		zap.Int64("size", size))
	return rec, nil
}

// Retag changes the display name and/or category of an attachment. The
// storage path never changes.
func (a *Attachments) Retag(ctx context.Context, id primitive.ObjectID, patch AttachmentPatch) (*models.FileAttachment, error) {
	if patch.Name == nil && patch.Category == nil {
		return nil, domain.Invalid("nothing to update: supply name or category")
	}
	var in file.UpdateInput
	if patch.Name != nil {
		name := strings.TrimSpace(*patch.Name)
		if name == "" {
			return nil, domain.Invalid("file name cannot be empty")
		}
		in.Name = &name
	}
	if patch.Category != nil {
		cat := strings.TrimSpace(*patch.Category)
		in.Category = &cat
	}

	if err := a.files.Update(ctx, id, in); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.NotFound("attachment", id.Hex())
		}
		return nil, err
	}
	return a.files.GetByID(ctx, id)
}

// Delete removes the attachment's blob, then its record. A blob that is
// already gone is not an error. Any other blob failure keeps the record.
func (a *Attachments) Delete(ctx context.Context, id primitive.ObjectID) error {
	rec, err := a.files.GetByID(ctx, id)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return domain.NotFound("attachment", id.Hex())
	}
	if err != nil {
		return err
	}
	return a.remove(ctx, rec)
}

func (a *Attachments) remove(ctx context.Context, rec *models.FileAttachment) error {
	if err := a.removeBlob(ctx, rec); err != nil {
		return err
	}
	if err := a.files.Delete(ctx, rec.ID); err != nil && !errors.Is(err, mongo.ErrNoDocuments) {
		return err
	}
	a.log.Info("attachment deleted",
		zap.String("attachment_id", rec.ID.Hex()),
		zap.String("folder_id", rec.FolderID.Hex()))
	return nil
}

// removeBlob deletes the bytes behind rec. A blob that is already gone is
// logged and tolerated.
func (a *Attachments) removeBlob(ctx context.Context, rec *models.FileAttachment) error {
	missing, err := a.blobs.Remove(ctx, rec.Path)
	if err != nil {
		return domain.Storage("delete", rec.Path, err)
	}
	if missing {
		a.log.Warn("attachment blob already missing",
			zap.String("attachment_id", rec.ID.Hex()),
			zap.String("path", rec.Path))
	}
	return nil
}

// ListByFolder returns the attachments of a folder.
func (a *Attachments) ListByFolder(ctx context.Context, folderID primitive.ObjectID) ([]models.FileAttachment, error) {
	ok, err := a.folders.Exists(ctx, folderID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, domain.NotFound("folder", folderID.Hex())
	}
	return a.files.ListByFolder(ctx, folderID)
}

// Open returns an attachment record and a reader over its bytes. The caller
// closes the reader.
func (a *Attachments) Open(ctx context.Context, id primitive.ObjectID) (*models.FileAttachment, io.ReadCloser, error) {
	rec, err := a.files.GetByID(ctx, id)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil, domain.NotFound("attachment", id.Hex())
	}
	if err != nil {
		return nil, nil, err
	}

	rc, err := a.blobs.Open(ctx, rec.Path)
	if blobs.IsNotFound(err) {
		return nil, nil, domain.NotFound("blob", rec.Path)
	}
	if err != nil {
		return nil, nil, domain.Storage("get", rec.Path, err)
	}
	return rec, rc, nil
}
