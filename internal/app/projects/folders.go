package projects

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/dalemusser/stratafolders/internal/app/store/counter"
	"github.com/dalemusser/stratafolders/internal/app/store/file"
	"github.com/dalemusser/stratafolders/internal/app/store/folder"
	"github.com/dalemusser/stratafolders/internal/app/system/status"
	"github.com/dalemusser/stratafolders/internal/app/system/txn"
	"github.com/dalemusser/stratafolders/internal/domain"
	"github.com/dalemusser/stratafolders/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// maxCodeAttempts bounds project code generation when generated codes collide
// with codes already present (explicit or legacy).
const maxCodeAttempts = 5

// FolderInput is the complete intended state of a folder. On update every
// field is written; empty means empty, not unchanged. ProjectCode is only
// read by Create.
type FolderInput struct {
	ProjectCode      string
	ClientName       string
	ConstructionSite string
	Description      string
	ProjectRef       string
	Phone            string
	ThirdParty       string
	ProjectDate      string
	Notes            string
	Status           string
}

func (in FolderInput) fields() (folder.Fields, error) {
	st, ok := status.Canonicalize(strings.TrimSpace(in.Status))
	if !ok {
		return folder.Fields{}, domain.Invalid("unknown status %q", in.Status)
	}
	return folder.Fields{
		ClientName:       in.ClientName,
		ConstructionSite: in.ConstructionSite,
		Description:      in.Description,
		ProjectRef:       in.ProjectRef,
		Phone:            in.Phone,
		ThirdParty:       in.ThirdParty,
		ProjectDate:      in.ProjectDate,
		Notes:            in.Notes,
		Status:           st,
	}, nil
}

// Folders is the folder repository.
//
// Project codes come from the project_code sequence in the counters
// collection, backed by a unique index on folders.project_code. Deriving the
// next code from the latest row instead would hand the same code to two
// concurrent creates.
type Folders struct {
	db          *mongo.Database
	folders     *folder.Store
	files       *file.Store
	counters    *counter.Store
	attachments *Attachments
	log         *zap.Logger
}

// Create inserts a folder. An empty ProjectCode gets the next generated code.
func (f *Folders) Create(ctx context.Context, in FolderInput) (*models.Folder, error) {
	fields, err := in.fields()
	if err != nil {
		return nil, err
	}

	code := strings.TrimSpace(in.ProjectCode)
	var created *models.Folder
	if code != "" {
		created, err = f.createWithCode(ctx, code, fields)
	} else {
		created, err = f.createGenerated(ctx, fields)
	}
	if err != nil {
		return nil, err
	}

	f.log.Info("folder created",
		zap.String("folder_id", created.ID.Hex()),
		zap.String("project_code", created.ProjectCode))
	return created, nil
}

func (f *Folders) createWithCode(ctx context.Context, code string, fields folder.Fields) (*models.Folder, error) {
	created, err := f.folders.Create(ctx, folder.CreateInput{ProjectCode: code, Fields: fields})
	if errors.Is(err, folder.ErrDuplicateCode) {
		return nil, domain.Invalid("project code %q already exists", code)
	}
	if err != nil {
		return nil, err
	}
	// Keep generated codes ahead of explicit ones.
	if n := folder.CodeNumber(code); n > 0 {
		if _, err := f.counters.AtLeast(ctx, counter.ProjectCode, n); err != nil {
			f.log.Warn("failed to advance project code sequence",
				zap.String("project_code", code),
				zap.Error(err))
		}
	}
	return created, nil
}

func (f *Folders) createGenerated(ctx context.Context, fields folder.Fields) (*models.Folder, error) {
	for attempt := 1; attempt <= maxCodeAttempts; attempt++ {
		n, err := f.counters.Next(ctx, counter.ProjectCode)
		if err != nil {
			return nil, fmt.Errorf("next project code: %w", err)
		}
		code := folder.FormatCode(n)

		created, err := f.folders.Create(ctx, folder.CreateInput{ProjectCode: code, Fields: fields})
		if err == nil {
			return created, nil
		}
		if !errors.Is(err, folder.ErrDuplicateCode) {
			return nil, err
		}

		f.log.Warn("generated project code already taken, resyncing sequence",
			zap.String("project_code", code),
			zap.Int("attempt", attempt))
		if err := f.SyncProjectCodeSequence(ctx); err != nil {
			return nil, err
		}
	}
	return nil, fmt.Errorf("could not allocate a project code after %d attempts", maxCodeAttempts)
}

// Get returns a folder with its status in canonical form.
func (f *Folders) Get(ctx context.Context, id primitive.ObjectID) (*models.Folder, error) {
	fo, err := f.folders.GetByID(ctx, id)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, domain.NotFound("folder", id.Hex())
	}
	return fo, err
}

// List returns folders newest first, optionally filtered by a
// case-insensitive substring of client name, construction site or code.
func (f *Folders) List(ctx context.Context, search string) ([]models.Folder, error) {
	return f.folders.List(ctx, search)
}

// Update replaces every mutable field of a folder with in.
func (f *Folders) Update(ctx context.Context, id primitive.ObjectID, in FolderInput) (*models.Folder, error) {
	fields, err := in.fields()
	if err != nil {
		return nil, err
	}
	if err := f.folders.Replace(ctx, id, fields); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.NotFound("folder", id.Hex())
		}
		return nil, err
	}
	f.log.Info("folder updated", zap.String("folder_id", id.Hex()))
	return f.Get(ctx, id)
}

// Delete removes a folder and everything attached to it.
//
// Every blob goes first. Only then are the attachment records and the folder
// removed in one transaction, so a reader never sees the folder while its
// records are partly gone. If a blob cannot be removed the folder stays, the
// records whose blobs are already gone are dropped together, and the storage
// error is returned.
func (f *Folders) Delete(ctx context.Context, id primitive.ObjectID) error {
	if _, err := f.Get(ctx, id); err != nil {
		return err
	}

	atts, err := f.files.ListByFolder(ctx, id)
	if err != nil {
		return err
	}

	removed := make([]primitive.ObjectID, 0, len(atts))
	for i := range atts {
		if err := f.attachments.removeBlob(ctx, &atts[i]); err != nil {
			f.dropRecords(ctx, id, removed)
			return fmt.Errorf("delete folder %s: %w", id.Hex(), err)
		}
		removed = append(removed, atts[i].ID)
	}

	var dropped int64
	err = txn.Run(ctx, f.db, f.log, func(ctx context.Context) error {
		var err error
		if dropped, err = f.files.DeleteByFolderID(ctx, id); err != nil {
			return err
		}
		return f.folders.Delete(ctx, id)
	})
	if errors.Is(err, mongo.ErrNoDocuments) {
		return domain.NotFound("folder", id.Hex())
	}
	if err != nil {
		return err
	}

	if dropped > int64(len(atts)) {
		// Uploads that landed during the delete; their blobs are left to the sweeper.
		f.log.Warn("folder delete dropped records added while it ran",
			zap.String("folder_id", id.Hex()),
			zap.Int64("extra_records", dropped-int64(len(atts))))
	}
	f.log.Info("folder deleted",
		zap.String("folder_id", id.Hex()),
		zap.Int("attachments", len(atts)))
	return nil
}

// dropRecords removes the records of attachments whose blobs were already
// deleted when a folder delete stopped part-way.
func (f *Folders) dropRecords(ctx context.Context, folderID primitive.ObjectID, ids []primitive.ObjectID) {
	if len(ids) == 0 {
		return
	}
	err := txn.Run(ctx, f.db, f.log, func(ctx context.Context) error {
		_, err := f.files.DeleteByIDs(ctx, ids)
		return err
	})
	if err != nil {
		f.log.Warn("attachment records left without blobs",
			zap.String("folder_id", folderID.Hex()),
			zap.Int("records", len(ids)),
			zap.Error(err))
		return
	}
	f.log.Info("folder delete stopped part-way",
		zap.String("folder_id", folderID.Hex()),
		zap.Int("attachments_removed", len(ids)))
}

// UpdateCategoryName retags every attachment carrying oldName. Pass the
// transaction context when called as part of a category rename.
func (f *Folders) UpdateCategoryName(ctx context.Context, oldName, newName string) (int64, error) {
	return f.files.RenameCategory(ctx, oldName, newName)
}

// SyncProjectCodeSequence raises the project code sequence to the highest
// code already stored, so generated codes never collide with existing rows.
func (f *Folders) SyncProjectCodeSequence(ctx context.Context) error {
	max, err := f.folders.MaxCodeNumber(ctx)
	if err != nil {
		return fmt.Errorf("scan project codes: %w", err)
	}
	if _, err := f.counters.AtLeast(ctx, counter.ProjectCode, max); err != nil {
		return fmt.Errorf("advance project code sequence: %w", err)
	}
	return nil
}
