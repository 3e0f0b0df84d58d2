package file

import (
	"testing"

	"github.com/dalemusser/stratafolders/internal/testutil"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

func strPtr(s string) *string { return &s }

func TestNew(t *testing.T) {
	db := testutil.SetupTestDB(t)
	if New(db) == nil {
		t.Fatal("New() returned nil")
	}
}

func TestStore_Create(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	input := CreateInput{
		FolderID: primitive.NewObjectID(),
		Name:     "Pianta.pdf",
		Path:     "1700000000-abcd1234-Pianta.pdf",
		Type:     "application/pdf",
		Size:     1024,
		Category: "Disegni",
	}

	f, err := store.Create(ctx, input)
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if f.ID.IsZero() {
		t.Error("ID should not be zero")
	}
	if f.FolderID != input.FolderID {
		t.Errorf("FolderID = %v, want %v", f.FolderID, input.FolderID)
	}
	if f.Path != input.Path || f.Size != input.Size || f.Type != input.Type {
		t.Errorf("Create() = %+v, want fields from %+v", f, input)
	}
}

func TestStore_Create_DuplicatePath(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	in := CreateInput{FolderID: primitive.NewObjectID(), Name: "a", Path: "same"}
	if _, err := store.Create(ctx, in); err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if _, err := store.Create(ctx, in); err == nil {
		t.Error("second Create() with the same path should fail")
	}
}

func TestStore_GetByID(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	created, _ := store.Create(ctx, CreateInput{FolderID: primitive.NewObjectID(), Name: "a.txt", Path: "p1"})

	got, err := store.GetByID(ctx, created.ID)
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}
	if got.Name != "a.txt" {
		t.Errorf("Name = %q, want a.txt", got.Name)
	}

	if _, err := store.GetByID(ctx, primitive.NewObjectID()); err != mongo.ErrNoDocuments {
		t.Errorf("GetByID(unknown) error = %v, want ErrNoDocuments", err)
	}
}

func TestStore_Update(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	created, _ := store.Create(ctx, CreateInput{
		FolderID: primitive.NewObjectID(), Name: "old.txt", Path: "p1", Category: "A",
	})

	if err := store.Update(ctx, created.ID, UpdateInput{Category: strPtr("B")}); err != nil {
		t.Fatalf("Update() error = %v", err)
	}
	got, _ := store.GetByID(ctx, created.ID)
	if got.Category != "B" || got.Name != "old.txt" {
		t.Errorf("after category update: %+v", got)
	}

	if err := store.Update(ctx, created.ID, UpdateInput{Name: strPtr("new.txt")}); err != nil {
		t.Fatalf("Update() error = %v", err)
	}
	got, _ = store.GetByID(ctx, created.ID)
	if got.Name != "new.txt" || got.Category != "B" {
		t.Errorf("after name update: %+v", got)
	}
	if got.Path != "p1" {
		t.Errorf("Path = %q, must never change", got.Path)
	}

	if err := store.Update(ctx, primitive.NewObjectID(), UpdateInput{Name: strPtr("x")}); err != mongo.ErrNoDocuments {
		t.Errorf("Update(unknown) error = %v, want ErrNoDocuments", err)
	}
}

func TestStore_Delete(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	created, _ := store.Create(ctx, CreateInput{FolderID: primitive.NewObjectID(), Name: "a", Path: "p1"})

	if err := store.Delete(ctx, created.ID); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if _, err := store.GetByID(ctx, created.ID); err != mongo.ErrNoDocuments {
		t.Errorf("GetByID after Delete() error = %v, want ErrNoDocuments", err)
	}
	if err := store.Delete(ctx, created.ID); err != mongo.ErrNoDocuments {
		t.Errorf("second Delete() error = %v, want ErrNoDocuments", err)
	}
}

func TestStore_ListByFolder(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	folderA := primitive.NewObjectID()
	folderB := primitive.NewObjectID()
	store.Create(ctx, CreateInput{FolderID: folderA, Name: "1", Path: "a1"})
	store.Create(ctx, CreateInput{FolderID: folderA, Name: "2", Path: "a2"})
	store.Create(ctx, CreateInput{FolderID: folderB, Name: "3", Path: "b1"})

	got, err := store.ListByFolder(ctx, folderA)
	if err != nil {
		t.Fatalf("ListByFolder() error = %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("ListByFolder() len = %d, want 2", len(got))
	}
	if got[0].Name != "1" || got[1].Name != "2" {
		t.Errorf("ListByFolder() order = %s,%s; want oldest first", got[0].Name, got[1].Name)
	}

	empty, err := store.ListByFolder(ctx, primitive.NewObjectID())
	if err != nil {
		t.Fatalf("ListByFolder(empty) error = %v", err)
	}
	if empty == nil || len(empty) != 0 {
		t.Errorf("ListByFolder(empty) = %v, want empty non-nil slice", empty)
	}
}

func TestStore_DeleteByFolderID(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	folderA := primitive.NewObjectID()
	folderB := primitive.NewObjectID()
	store.Create(ctx, CreateInput{FolderID: folderA, Name: "1", Path: "a1"})
	store.Create(ctx, CreateInput{FolderID: folderA, Name: "2", Path: "a2"})
	store.Create(ctx, CreateInput{FolderID: folderB, Name: "3", Path: "b1"})

	n, err := store.DeleteByFolderID(ctx, folderA)
	if err != nil {
		t.Fatalf("DeleteByFolderID() error = %v", err)
	}
	if n != 2 {
		t.Errorf("DeleteByFolderID() = %d, want 2", n)
	}
	if left, _ := store.ListByFolder(ctx, folderB); len(left) != 1 {
		t.Errorf("other folder lost attachments: %d left", len(left))
	}
}

func TestStore_DeleteByIDs(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	folderID := primitive.NewObjectID()
	a, _ := store.Create(ctx, CreateInput{FolderID: folderID, Name: "1", Path: "p1"})
	b, _ := store.Create(ctx, CreateInput{FolderID: folderID, Name: "2", Path: "p2"})
	c, _ := store.Create(ctx, CreateInput{FolderID: folderID, Name: "3", Path: "p3"})

	if n, err := store.DeleteByIDs(ctx, nil); err != nil || n != 0 {
		t.Errorf("DeleteByIDs(nil) = (%d, %v), want (0, nil)", n, err)
	}

	n, err := store.DeleteByIDs(ctx, []primitive.ObjectID{a.ID, c.ID, primitive.NewObjectID()})
	if err != nil {
		t.Fatalf("DeleteByIDs() error = %v", err)
	}
	if n != 2 {
		t.Errorf("DeleteByIDs() = %d, want 2", n)
	}
	left, _ := store.ListByFolder(ctx, folderID)
	if len(left) != 1 || left[0].ID != b.ID {
		t.Errorf("remaining = %+v, want only %s", left, b.ID.Hex())
	}
}

func TestStore_RenameCategory(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	folder := primitive.NewObjectID()
	store.Create(ctx, CreateInput{FolderID: folder, Name: "1", Path: "p1", Category: "Foto"})
	store.Create(ctx, CreateInput{FolderID: folder, Name: "2", Path: "p2", Category: "Foto"})
	store.Create(ctx, CreateInput{FolderID: folder, Name: "3", Path: "p3", Category: "foto"})

	n, err := store.RenameCategory(ctx, "Foto", "Immagini")
	if err != nil {
		t.Fatalf("RenameCategory() error = %v", err)
	}
	if n != 2 {
		t.Errorf("RenameCategory() changed %d, want 2", n)
	}

	if c, _ := store.CountByCategory(ctx, "Foto"); c != 0 {
		t.Errorf("CountByCategory(Foto) = %d, want 0", c)
	}
	if c, _ := store.CountByCategory(ctx, "Immagini"); c != 2 {
		t.Errorf("CountByCategory(Immagini) = %d, want 2", c)
	}
	// Match is exact, so differently-cased tags are untouched.
	if c, _ := store.CountByCategory(ctx, "foto"); c != 1 {
		t.Errorf("CountByCategory(foto) = %d, want 1", c)
	}
}

func TestStore_HasPath(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	store.Create(ctx, CreateInput{FolderID: primitive.NewObjectID(), Name: "1", Path: "known"})

	if ok, err := store.HasPath(ctx, "known"); err != nil || !ok {
		t.Errorf("HasPath(known) = (%v, %v), want (true, nil)", ok, err)
	}
	if ok, err := store.HasPath(ctx, "unknown"); err != nil || ok {
		t.Errorf("HasPath(unknown) = (%v, %v), want (false, nil)", ok, err)
	}
}
