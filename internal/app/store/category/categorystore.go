// Package category provides storage for the attachment category registry.
package category

import (
	"context"
	"errors"
	"time"

	"github.com/dalemusser/stratafolders/internal/domain/models"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"github.com/dalemusser/waffle/pantry/text"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ErrDuplicateName is returned when a category with the same name already
// exists. Names are compared exactly (case-sensitive).
var ErrDuplicateName = errors.New("a category with this name already exists")

// Store provides access to the categories collection.
type Store struct {
	c *mongo.Collection
}

// New creates a new category store.
func New(db *mongo.Database) *Store {
	return &Store{
		c: db.Collection("categories"),
	}
}

// Create inserts a category. Returns ErrDuplicateName if name is taken.
func (s *Store) Create(ctx context.Context, name string) (*models.Category, error) {
	now := time.Now().UTC()
	cat := models.Category{
		ID:        primitive.NewObjectID(),
		Name:      name,
		NameCI:    text.Fold(name),
		CreatedAt: now,
		UpdatedAt: now,
	}

	if _, err := s.c.InsertOne(ctx, cat); err != nil {
		if wafflemongo.IsDup(err) {
			return nil, ErrDuplicateName
		}
		return nil, err
	}
	return &cat, nil
}

// GetByID retrieves a category by ID. Returns mongo.ErrNoDocuments if absent.
func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Category, error) {
	var cat models.Category
	if err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&cat); err != nil {
		return nil, err
	}
	return &cat, nil
}

// List returns all categories ordered by name, ignoring case.
func (s *Store) List(ctx context.Context) ([]models.Category, error) {
	findOpts := options.Find().SetSort(bson.D{
		{Key: "name_ci", Value: 1},
		{Key: "_id", Value: 1},
	})

	cur, err := s.c.Find(ctx, bson.M{}, findOpts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	cats := []models.Category{}
	if err := cur.All(ctx, &cats); err != nil {
		return nil, err
	}
	return cats, nil
}

// Names returns the set of registered category names.
func (s *Store) Names(ctx context.Context) (map[string]bool, error) {
	cats, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	names := make(map[string]bool, len(cats))
	for _, c := range cats {
		names[c.Name] = true
	}
	return names, nil
}

// Rename changes a category's name. Returns mongo.ErrNoDocuments if absent
// and ErrDuplicateName if the new name is taken by another category.
func (s *Store) Rename(ctx context.Context, id primitive.ObjectID, name string) error {
	res, err := s.c.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{
		"name":       name,
		"name_ci":    text.Fold(name),
		"updated_at": time.Now().UTC(),
	}})
	if err != nil {
		if wafflemongo.IsDup(err) {
			return ErrDuplicateName
		}
		return err
	}
	if res.MatchedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}

// Delete deletes a category record. Returns mongo.ErrNoDocuments if absent.
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
