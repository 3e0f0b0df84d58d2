package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Category is a named tag for grouping attachments. Attachments copy the name,
// so deleting a category leaves existing tags in place.
type Category struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name      string             `bson:"name"          json:"name"` // Unique, case-sensitive
	NameCI    string             `bson:"name_ci"       json:"-"`    // Folded, for ordering
	CreatedAt time.Time          `bson:"created_at"    json:"createdAt"`
	UpdatedAt time.Time          `bson:"updated_at"    json:"updatedAt"`
}
