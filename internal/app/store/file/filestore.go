// Package file provides storage for attachment records.
package file

import (
	"context"
	"time"

	"github.com/dalemusser/stratafolders/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Store provides access to the files collection.
type Store struct {
	c *mongo.Collection
}

// New creates a new file store.
func New(db *mongo.Database) *Store {
	return &Store{
		c: db.Collection("files"),
	}
}

// CreateInput contains the input for creating an attachment record.
type CreateInput struct {
	FolderID primitive.ObjectID
	Name     string
	Path     string
	Type     string
	Size     int64
	Category string
}

// Create inserts a new attachment record.
func (s *Store) Create(ctx context.Context, input CreateInput) (*models.FileAttachment, error) {
	now := time.Now().UTC()
	f := models.FileAttachment{
		ID:        primitive.NewObjectID(),
		FolderID:  input.FolderID,
		Name:      input.Name,
		Path:      input.Path,
		Type:      input.Type,
		Size:      input.Size,
		Category:  input.Category,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if _, err := s.c.InsertOne(ctx, f); err != nil {
		return nil, err
	}
	return &f, nil
}

// GetByID retrieves an attachment by ID. Returns mongo.ErrNoDocuments if
// absent.
func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (*models.FileAttachment, error) {
	var f models.FileAttachment
	if err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&f); err != nil {
		return nil, err
	}
	return &f, nil
}

// UpdateInput contains the retaggable fields. Nil fields are left unchanged.
// The storage path is never updated.
type UpdateInput struct {
	Name     *string
	Category *string
}

// Update applies the non-nil fields of input. Returns mongo.ErrNoDocuments if
// absent.
func (s *Store) Update(ctx context.Context, id primitive.ObjectID, input UpdateInput) error {
	set := bson.M{"updated_at": time.Now().UTC()}
	if input.Name != nil {
		set["name"] = *input.Name
	}
	if input.Category != nil {
		set["category"] = *input.Category
	}

	res, err := s.c.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": set})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}

// Delete deletes an attachment record. Returns mongo.ErrNoDocuments if absent.
func (s *Store) Delete(ctx context.Context, id primitive.ObjectID) error {
	res, err := s.c.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}

// ListByFolder returns the attachments of a folder, oldest first.
func (s *Store) ListByFolder(ctx context.Context, folderID primitive.ObjectID) ([]models.FileAttachment, error) {
	findOpts := options.Find().SetSort(bson.D{
		{Key: "created_at", Value: 1},
		{Key: "_id", Value: 1},
	})

	cur, err := s.c.Find(ctx, bson.M{"folder_id": folderID}, findOpts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	files := []models.FileAttachment{}
	if err := cur.All(ctx, &files); err != nil {
		return nil, err
	}
	return files, nil
}

// DeleteByFolderID deletes every attachment record of a folder.
func (s *Store) DeleteByFolderID(ctx context.Context, folderID primitive.ObjectID) (int64, error) {
	res, err := s.c.DeleteMany(ctx, bson.M{"folder_id": folderID})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

// DeleteByIDs deletes the given attachment records in one statement and
// returns how many were removed.
func (s *Store) DeleteByIDs(ctx context.Context, ids []primitive.ObjectID) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	res, err := s.c.DeleteMany(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

// RenameCategory retags every attachment whose category equals oldName and
// returns how many were changed.
func (s *Store) RenameCategory(ctx context.Context, oldName, newName string) (int64, error) {
	res, err := s.c.UpdateMany(ctx,
		bson.M{"category": oldName},
		bson.M{"$set": bson.M{"category": newName, "updated_at": time.Now().UTC()}},
	)
	if err != nil {
		return 0, err
	}
	return res.ModifiedCount, nil
}

// CountByCategory returns how many attachments carry the given tag.
func (s *Store) CountByCategory(ctx context.Context, name string) (int64, error) {
	return s.c.CountDocuments(ctx, bson.M{"category": name})
}

// HasPath reports whether any record references the storage path.
func (s *Store) HasPath(ctx context.Context, path string) (bool, error) {
	n, err := s.c.CountDocuments(ctx, bson.M{"path": path}, options.Count().SetLimit(1))
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
