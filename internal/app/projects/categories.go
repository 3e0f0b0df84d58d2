package projects

import (
	"context"
	"errors"
	"strings"

	"github.com/dalemusser/stratafolders/internal/app/store/category"
	"github.com/dalemusser/stratafolders/internal/app/system/txn"
	"github.com/dalemusser/stratafolders/internal/domain"
	"github.com/dalemusser/stratafolders/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Categories is the category registry. Attachments carry a category name as a
// plain tag, so the registry only has to propagate renames.
type Categories struct {
	db      *mongo.Database
	cats    *category.Store
	folders *Folders
	log     *zap.Logger
}

// List returns every registered category ordered by name.
func (c *Categories) List(ctx context.Context) ([]models.Category, error) {
	return c.cats.List(ctx)
}

// Create registers a new category.
func (c *Categories) Create(ctx context.Context, name string) (*models.Category, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, domain.Invalid("category name is required")
	}

	cat, err := c.cats.Create(ctx, name)
	if errors.Is(err, category.ErrDuplicateName) {
		return nil, domain.Invalid("category %q already exists", name)
	}
	if err != nil {
		return nil, err
	}

	c.log.Info("category created",
		zap.String("category_id", cat.ID.Hex()),
		zap.String("name", cat.Name))
	return cat, nil
}

// Rename renames a category and retags every attachment that carried the old
// name. Both writes run in one transaction, so no reader sees attachments
// tagged with a name the registry no longer has.
func (c *Categories) Rename(ctx context.Context, id primitive.ObjectID, newName string) (*models.Category, error) {
	newName = strings.TrimSpace(newName)
	if newName == "" {
		return nil, domain.Invalid("category name is required")
	}

	var (
		oldName  string
		retagged int64
	)
	err := txn.Run(ctx, c.db, c.log, func(ctx context.Context) error {
		cat, err := c.cats.GetByID(ctx, id)
		if err != nil {
			return err
		}
		oldName = cat.Name
		if oldName == newName {
			return nil
		}
		if err := c.cats.Rename(ctx, id, newName); err != nil {
			return err
		}
		retagged, err = c.folders.UpdateCategoryName(ctx, oldName, newName)
		return err
	})
	switch {
	case errors.Is(err, mongo.ErrNoDocuments):
		return nil, domain.NotFound("category", id.Hex())
	case errors.Is(err, category.ErrDuplicateName):
		return nil, domain.Invalid("category %q already exists", newName)
	case err != nil:
		return nil, err
	}

	c.log.Info("category renamed",
		zap.String("category_id", id.Hex()),
		zap.String("from", oldName),
		zap.String("to", newName),
		zap.Int64("attachments_retagged", retagged))

	return c.cats.GetByID(ctx, id)
}

// Delete removes the category record only. Attachments keep the tag as text;
// how many still carry it is logged.
func (c *Categories) Delete(ctx context.Context, id primitive.ObjectID) error {
	cat, err := c.cats.GetByID(ctx, id)
	if err == nil {
		err = c.cats.Delete(ctx, id)
	}
	if errors.Is(err, mongo.ErrNoDocuments) {
		return domain.NotFound("category", id.Hex())
	}
	if err != nil {
		return err
	}

	tagged, err := c.folders.files.CountByCategory(ctx, cat.Name)
	if err != nil {
		c.log.Warn("could not count attachments still tagged",
			zap.String("category", cat.Name),
			zap.Error(err))
	}
	c.log.Info("category deleted",
		zap.String("category_id", id.Hex()),
		zap.String("name", cat.Name),
		zap.Int64("attachments_still_tagged", tagged))
	return nil
}
