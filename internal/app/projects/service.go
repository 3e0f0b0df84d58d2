// Package projects keeps folders, their attachments and the category registry
// consistent with each other and with the blob store.
//
// Callers get typed errors from internal/domain: ValidationError for bad
// input, NotFoundError for unknown ids and StorageError for blob failures.
// Anything else is an infrastructure failure.
package projects

import (
	"context"
	"sort"
	"time"

	"github.com/dalemusser/stratafolders/internal/app/store/category"
	"github.com/dalemusser/stratafolders/internal/app/store/counter"
	"github.com/dalemusser/stratafolders/internal/app/store/file"
	"github.com/dalemusser/stratafolders/internal/app/store/folder"
	"github.com/dalemusser/stratafolders/internal/app/system/blobs"
	"github.com/dalemusser/stratafolders/internal/app/system/status"
	"github.com/dalemusser/stratafolders/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Service wires the three components together and answers the cross-cutting
// read queries.
type Service struct {
	Categories  *Categories
	Attachments *Attachments
	Folders     *Folders

	folders *folder.Store
	cats    *category.Store
}

// New builds a Service over db and a blob backend.
func New(db *mongo.Database, backend blobs.Backend, logger *zap.Logger) *Service {
	folderStore := folder.New(db)
	fileStore := file.New(db)
	catStore := category.New(db)

	atts := &Attachments{
		folders: folderStore,
		files:   fileStore,
		blobs:   blobs.New(backend),
		log:     logger,
		now:     time.Now,
	}
	folders := &Folders{
		db:          db,
		folders:     folderStore,
		files:       fileStore,
		counters:    counter.New(db),
		attachments: atts,
		log:         logger,
	}
	cats := &Categories{
		db:      db,
		cats:    catStore,
		folders: folders,
		log:     logger,
	}

	return &Service{
		Categories:  cats,
		Attachments: atts,
		Folders:     folders,
		folders:     folderStore,
		cats:        catStore,
	}
}

// StatsSummary counts folders per canonical status. Legacy values count in
// their canonical bucket; unrecognized values count only toward Total.
func (s *Service) StatsSummary(ctx context.Context) (models.Stats, error) {
	raw, err := s.folders.CountByStatus(ctx)
	if err != nil {
		return models.Stats{}, err
	}

	var st models.Stats
	for value, n := range raw {
		st.Total += n
		switch status.LegacyToCanonical(value) {
		case status.DaIniziare:
			st.DaIniziare += n
		case status.InCorso:
			st.InCorso += n
		case status.Finita:
			st.Finita += n
		case status.Sospese:
			st.Sospese += n
		}
	}
	return st, nil
}

// UncategorizedLabel is the display label of the group of attachments that
// carry no category.
const UncategorizedLabel = "Altro"

// CategoryGroup is the attachments of one folder sharing a category tag.
type CategoryGroup struct {
	Category    string                  `json:"category"`   // "" for uncategorized
	Label       string                  `json:"label"`      // Category, or UncategorizedLabel
	Registered  bool                    `json:"registered"` // the registry still offers this name
	Attachments []models.FileAttachment `json:"attachments"`
}

// FolderDetail is a folder with its attachments grouped for display.
type FolderDetail struct {
	Folder models.Folder   `json:"folder"`
	Groups []CategoryGroup `json:"groups"`
}

// FolderDetail returns the folder and its attachments grouped by category.
// Groups are ordered by name with the uncategorized group last.
func (s *Service) FolderDetail(ctx context.Context, id primitive.ObjectID) (*FolderDetail, error) {
	fo, err := s.Folders.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	atts, err := s.Folders.files.ListByFolder(ctx, id)
	if err != nil {
		return nil, err
	}
	registered, err := s.cats.Names(ctx)
	if err != nil {
		return nil, err
	}

	byCat := map[string][]models.FileAttachment{}
	for _, a := range atts {
		byCat[a.Category] = append(byCat[a.Category], a)
	}

	groups := make([]CategoryGroup, 0, len(byCat))
	for name, list := range byCat {
		label := name
		if name == "" {
			label = UncategorizedLabel
		}
		groups = append(groups, CategoryGroup{
			Category:    name,
			Label:       label,
			Registered:  registered[name],
			Attachments: list,
		})
	}
	sort.Slice(groups, func(i, j int) bool {
		a, b := groups[i].Category, groups[j].Category
		if (a == "") != (b == "") {
			return b == ""
		}
		return a < b
	})

	return &FolderDetail{Folder: *fo, Groups: groups}, nil
}
