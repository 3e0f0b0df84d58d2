// Package folder provides storage for project folders.
package folder

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/dalemusser/stratafolders/internal/app/system/status"
	"github.com/dalemusser/stratafolders/internal/domain/models"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ErrDuplicateCode is returned when a folder with the same project code
// already exists.
var ErrDuplicateCode = errors.New("a folder with this project code already exists")

// Store provides access to the folders collection.
type Store struct {
	c *mongo.Collection
}

// New creates a new folder store.
func New(db *mongo.Database) *Store {
	return &Store{
		c: db.Collection("folders"),
	}
}

// Fields holds the mutable folder fields. Status must already be canonical.
type Fields struct {
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

func (f Fields) set(m bson.M) {
	m["client_name"] = f.ClientName
	m["construction_site"] = f.ConstructionSite
	m["description"] = f.Description
	m["project_ref"] = f.ProjectRef
	m["phone"] = f.Phone
	m["third_party"] = f.ThirdParty
	m["project_date"] = f.ProjectDate
	m["notes"] = f.Notes
	m["status"] = f.Status
}

// CreateInput contains the input for creating a folder.
type CreateInput struct {
	ProjectCode string
	Fields
}

// Create inserts a new folder. Returns ErrDuplicateCode if the project code
// is taken.
func (s *Store) Create(ctx context.Context, input CreateInput) (*models.Folder, error) {
	now := time.Now().UTC()
	f := models.Folder{
		ID:               primitive.NewObjectID(),
		ProjectCode:      input.ProjectCode,
		ClientName:       input.ClientName,
		ConstructionSite: input.ConstructionSite,
		Description:      input.Description,
		ProjectRef:       input.ProjectRef,
		Phone:            input.Phone,
		ThirdParty:       input.ThirdParty,
		ProjectDate:      input.ProjectDate,
		Notes:            input.Notes,
		Status:           input.Status,
		CreatedAt:        now,
		UpdatedAt:        now,
	}

	if _, err := s.c.InsertOne(ctx, f); err != nil {
		if wafflemongo.IsDup(err) {
			return nil, ErrDuplicateCode
		}
		return nil, err
	}
	return &f, nil
}

// GetByID retrieves a folder by ID with its status in canonical form.
// Returns mongo.ErrNoDocuments if absent.
func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Folder, error) {
	var f models.Folder
	if err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&f); err != nil {
		return nil, err
	}
	f.Status = status.LegacyToCanonical(f.Status)
	return &f, nil
}

// Exists reports whether a folder with id exists.
func (s *Store) Exists(ctx context.Context, id primitive.ObjectID) (bool, error) {
	n, err := s.c.CountDocuments(ctx, bson.M{"_id": id}, options.Count().SetLimit(1))
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// List returns folders newest first. A non-empty search restricts the result
// to folders whose client name, construction site or project code contains it,
// ignoring case.
func (s *Store) List(ctx context.Context, search string) ([]models.Folder, error) {
	filter := bson.M{}
	if q := strings.TrimSpace(search); q != "" {
		re := primitive.Regex{Pattern: regexp.QuoteMeta(q), Options: "i"}
		filter["$or"] = bson.A{
			bson.M{"client_name": re},
			bson.M{"construction_site": re},
			bson.M{"project_code": re},
		}
	}

	findOpts := options.Find().SetSort(bson.D{
		{Key: "created_at", Value: -1},
		{Key: "_id", Value: -1},
	})

	cur, err := s.c.Find(ctx, filter, findOpts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	folders := []models.Folder{}
	if err := cur.All(ctx, &folders); err != nil {
		return nil, err
	}
	for i := range folders {
		folders[i].Status = status.LegacyToCanonical(folders[i].Status)
	}
	return folders, nil
}

// Replace overwrites every mutable field of the folder. Project code and
// creation time are kept. Returns mongo.ErrNoDocuments if absent.
func (s *Store) Replace(ctx context.Context, id primitive.ObjectID, fields Fields) error {
	set := bson.M{"updated_at": time.Now().UTC()}
	fields.set(set)

	res, err := s.c.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": set})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}

// Delete deletes a folder record. Returns mongo.ErrNoDocuments if absent.
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

// MaxCodeNumber scans every project code and returns the highest numeric
// value found (see CodeNumber), or 0 if there are no folders.
func (s *Store) MaxCodeNumber(ctx context.Context) (int64, error) {
	findOpts := options.Find().SetProjection(bson.M{"project_code": 1, "_id": 0})
	cur, err := s.c.Find(ctx, bson.M{}, findOpts)
	if err != nil {
		return 0, err
	}
	defer cur.Close(ctx)

	var max int64
	for cur.Next(ctx) {
		var row struct {
			ProjectCode string `bson:"project_code"`
		}
		if err := cur.Decode(&row); err != nil {
			return 0, err
		}
		if n := CodeNumber(row.ProjectCode); n > max {
			max = n
		}
	}
	return max, cur.Err()
}

// CountByStatus returns folder counts keyed by the raw stored status value.
func (s *Store) CountByStatus(ctx context.Context) (map[string]int64, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$group", Value: bson.M{
			"_id":   "$status",
			"count": bson.M{"$sum": 1},
		}}},
	}

	cur, err := s.c.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var rows []struct {
		Status string `bson:"_id"`
		Count  int64  `bson:"count"`
	}
	if err := cur.All(ctx, &rows); err != nil {
		return nil, err
	}

	out := make(map[string]int64, len(rows))
	for _, r := range rows {
		out[r.Status] += r.Count
	}
	return out, nil
}

// CodeNumber extracts the numeric part of a project code by dropping every
// non-digit. Codes without digits, or too large to parse, yield 0.
func CodeNumber(code string) int64 {
	var b strings.Builder
	for _, r := range code {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	n, err := strconv.ParseInt(b.String(), 10, 64)
	if err != nil {
		return 0
	}
	return n
}

// FormatCode renders n as a project code: "#" plus at least four digits.
func FormatCode(n int64) string {
	return fmt.Sprintf("#%04d", n)
}
