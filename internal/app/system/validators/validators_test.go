package validators

import (
	"errors"
	"testing"
	"time"

	"github.com/dalemusser/stratafolders/internal/testutil"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

func TestEnsureAll(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	if err := EnsureAll(ctx, db); err != nil {
		t.Fatalf("EnsureAll() error = %v", err)
	}

	for _, coll := range []string{"folders", "files", "categories", "counters"} {
		exists, err := collectionExists(ctx, db, coll)
		if err != nil {
			t.Errorf("collectionExists(%s) error = %v", coll, err)
			continue
		}
		if !exists {
			t.Errorf("collection %s should exist after EnsureAll", coll)
		}
	}
}

func TestEnsureAll_Idempotent(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	if err := EnsureAll(ctx, db); err != nil {
		t.Fatalf("First EnsureAll() error = %v", err)
	}
	if err := EnsureAll(ctx, db); err != nil {
		t.Fatalf("Second EnsureAll() error = %v", err)
	}
}

func TestFoldersSchema_RejectsNonCanonicalStatus(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	if err := EnsureAll(ctx, db); err != nil {
		t.Fatalf("EnsureAll() error = %v", err)
	}

	c := db.Collection("folders")
	now := time.Now().UTC()

	_, err := c.InsertOne(ctx, bson.M{"project_code": "#0001", "status": "Finita", "created_at": now})
	if err != nil {
		t.Fatalf("insert canonical status: %v", err)
	}

	_, err = c.InsertOne(ctx, bson.M{"project_code": "#0002", "status": "aperta", "created_at": now})
	if err == nil {
		t.Fatal("expected validator to reject legacy status on write")
	}

	// Legacy rows can still exist when written around the validator.
	_, err = c.InsertOne(ctx,
		bson.M{"project_code": "#0003", "status": "aperta", "created_at": now},
		options.InsertOne().SetBypassDocumentValidation(true))
	if err != nil {
		t.Fatalf("bypass insert: %v", err)
	}
}

func TestCollectionExists(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	exists, err := collectionExists(ctx, db, "nonexistent_collection")
	if err != nil {
		t.Fatalf("collectionExists() error = %v", err)
	}
	if exists {
		t.Error("collectionExists() should return false for nonexistent collection")
	}

	if err := db.CreateCollection(ctx, "test_collection"); err != nil {
		t.Fatalf("CreateCollection() error = %v", err)
	}

	exists, err = collectionExists(ctx, db, "test_collection")
	if err != nil {
		t.Fatalf("collectionExists() error = %v", err)
	}
	if !exists {
		t.Error("collectionExists() should return true for existing collection")
	}
}

func TestEnsureCollection(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	created, err := ensureCollection(ctx, db, "new_collection")
	if err != nil {
		t.Fatalf("First ensureCollection() error = %v", err)
	}
	if !created {
		t.Error("First ensureCollection() should return created=true")
	}

	created, err = ensureCollection(ctx, db, "new_collection")
	if err != nil {
		t.Fatalf("Second ensureCollection() error = %v", err)
	}
	if created {
		t.Error("Second ensureCollection() should return created=false")
	}
}

func TestErrorClassifiers(t *testing.T) {
	tests := []struct {
		name string
		fn   func(error) bool
		err  error
		want bool
	}{
		{"namespace nil", isNamespaceExistsErr, nil, false},
		{"namespace generic", isNamespaceExistsErr, errors.New("some error"), false},
		{"namespace message", isNamespaceExistsErr, errors.New("collection already exists"), true},
		{"namespace upper", isNamespaceExistsErr, errors.New("NAMESPACE EXISTS"), true},
		{"namespace code 48", isNamespaceExistsErr, mongo.CommandError{Code: 48, Message: "x"}, true},
		{"nosuch message", isNoSuchCommand, errors.New("no such command"), true},
		{"nosuch code 59", isNoSuchCommand, mongo.CommandError{Code: 59, Message: "x"}, true},
		{"nosuch generic", isNoSuchCommand, errors.New("boom"), false},
		{"notimpl message", isNotImplemented, errors.New("not implemented"), true},
		{"notimpl supported", isNotImplemented, errors.New("Not Supported"), true},
		{"notimpl code 115", isNotImplemented, mongo.CommandError{Code: 115, Message: "x"}, true},
		{"notimpl generic", isNotImplemented, errors.New("boom"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.fn(tt.err); got != tt.want {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestFoldersSchema(t *testing.T) {
	schema, ok := foldersSchema()["$jsonSchema"].(bson.M)
	if !ok {
		t.Fatal("foldersSchema() should have a $jsonSchema bson.M")
	}
	props, ok := schema["properties"].(bson.M)
	if !ok {
		t.Fatal("schema should have properties")
	}
	st, ok := props["status"].(bson.M)
	if !ok {
		t.Fatal("schema should constrain status")
	}
	enum, ok := st["enum"].(bson.A)
	if !ok || len(enum) != 4 {
		t.Errorf("status enum = %v, want the four canonical values", st["enum"])
	}
}
