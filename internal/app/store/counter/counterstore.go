// Package counter provides named, monotonically increasing sequences.
//
// Each sequence is a single document in the counters collection and every
// operation is one atomic FindOneAndUpdate, so values are unique across
// goroutines and across server processes sharing the database.
package counter

import (
	"context"

	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ProjectCode is the sequence backing folder project codes.
const ProjectCode = "project_code"

// Store provides access to the counters collection.
type Store struct {
	c *mongo.Collection
}

// New creates a new counter store.
func New(db *mongo.Database) *Store {
	return &Store{
		c: db.Collection("counters"),
	}
}

type counterDoc struct {
	Name  string `bson:"_id"`
	Value int64  `bson:"value"`
}

// Next increments the named sequence and returns the new value. A sequence
// that does not exist yet starts at 1.
func (s *Store) Next(ctx context.Context, name string) (int64, error) {
	return s.apply(ctx, name, bson.M{"$inc": bson.M{"value": int64(1)}})
}

// AtLeast raises the named sequence to n if it is currently lower, and
// returns the resulting value. It never lowers a sequence.
func (s *Store) AtLeast(ctx context.Context, name string, n int64) (int64, error) {
	return s.apply(ctx, name, bson.M{"$max": bson.M{"value": n}})
}

func (s *Store) apply(ctx context.Context, name string, update bson.M) (int64, error) {
	opts := options.FindOneAndUpdate().
		SetUpsert(true).
		SetReturnDocument(options.After)

	var doc counterDoc
	err := s.c.FindOneAndUpdate(ctx, bson.M{"_id": name}, update, opts).Decode(&doc)
	if wafflemongo.IsDup(err) {
		// Two first-time upserts raced on _id; the document exists now.
		err = s.c.FindOneAndUpdate(ctx, bson.M{"_id": name}, update, opts).Decode(&doc)
	}
	if err != nil {
		return 0, err
	}
	return doc.Value, nil
}
