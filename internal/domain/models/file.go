package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// FileAttachment binds a display name, type, size, and category tag to a blob
// stored under Path.
type FileAttachment struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	FolderID  primitive.ObjectID `bson:"folder_id"     json:"folderId"`
	Name      string             `bson:"name"          json:"name"` // Original filename, verbatim
	Path      string             `bson:"path"          json:"path"` // Generated storage name
	Type      string             `bson:"type"          json:"type"` // MIME type captured at upload
	Size      int64              `bson:"size"          json:"size"` // Bytes written at upload
	Category  string             `bson:"category"      json:"category"`
	CreatedAt time.Time          `bson:"created_at"    json:"createdAt"`
	UpdatedAt time.Time          `bson:"updated_at"    json:"updatedAt"`
}

// IsUncategorized returns true if the attachment carries no category tag.
func (f *FileAttachment) IsUncategorized() bool {
	return f.Category == ""
}
