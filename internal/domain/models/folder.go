package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Folder is a project folder: descriptive metadata plus a workflow status.
// Attachments reference it through FileAttachment.FolderID.
type Folder struct {
	ID               primitive.ObjectID `bson:"_id,omitempty"     json:"id"`
	ProjectCode      string             `bson:"project_code"      json:"projectCode"` // "#0042"; unique
	ClientName       string             `bson:"client_name"       json:"clientName"`
	ConstructionSite string             `bson:"construction_site" json:"constructionSite"`
	Description      string             `bson:"description"       json:"description"`
	ProjectRef       string             `bson:"project_ref"       json:"projectRef"`
	Phone            string             `bson:"phone"             json:"phone"`
	ThirdParty       string             `bson:"third_party"       json:"thirdParty"`
	ProjectDate      string             `bson:"project_date"      json:"projectDate"` // free text, as entered
	Notes            string             `bson:"notes"             json:"notes"`
	Status           string             `bson:"status"            json:"status"` // canonical on every read
	CreatedAt        time.Time          `bson:"created_at"        json:"createdAt"`
	UpdatedAt        time.Time          `bson:"updated_at"        json:"updatedAt"`
}

// Stats counts folders per canonical status.
type Stats struct {
	Total      int64 `json:"total"`
	DaIniziare int64 `json:"daIniziare"`
	InCorso    int64 `json:"inCorso"`
	Finita     int64 `json:"finita"`
	Sospese    int64 `json:"sospese"`
}
