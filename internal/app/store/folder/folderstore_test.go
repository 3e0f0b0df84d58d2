package folder

import (
	"errors"
	"testing"
	"time"

	"github.com/dalemusser/stratafolders/internal/app/system/status"
	"github.com/dalemusser/stratafolders/internal/testutil"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

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
		ProjectCode: "#0001",
		Fields: Fields{
			ClientName:       "Rossi Costruzioni",
			ConstructionSite: "Via Roma 12",
			Status:           status.InCorso,
		},
	}

	f, err := store.Create(ctx, input)
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if f.ID.IsZero() {
		t.Error("ID should not be zero")
	}
	if f.ProjectCode != "#0001" {
		t.Errorf("ProjectCode = %q, want #0001", f.ProjectCode)
	}
	if f.ClientName != input.ClientName {
		t.Errorf("ClientName = %q, want %q", f.ClientName, input.ClientName)
	}
	if f.CreatedAt.IsZero() {
		t.Error("CreatedAt should be set")
	}
}

func TestStore_Create_DuplicateCode(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	in := CreateInput{ProjectCode: "#0007", Fields: Fields{Status: status.DaIniziare}}
	if _, err := store.Create(ctx, in); err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if _, err := store.Create(ctx, in); !errors.Is(err, ErrDuplicateCode) {
		t.Errorf("second Create() error = %v, want ErrDuplicateCode", err)
	}
}

func TestStore_GetByID(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	created, _ := store.Create(ctx, CreateInput{ProjectCode: "#0001", Fields: Fields{Notes: "n", Status: status.Finita}})

	got, err := store.GetByID(ctx, created.ID)
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}
	if got.Notes != "n" || got.Status != status.Finita {
		t.Errorf("GetByID() = %+v", got)
	}

	if _, err := store.GetByID(ctx, primitive.NewObjectID()); err != mongo.ErrNoDocuments {
		t.Errorf("GetByID(unknown) error = %v, want ErrNoDocuments", err)
	}
}

func TestStore_GetByID_TranslatesLegacyStatus(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	cases := map[string]string{
		"aperta":     status.DaIniziare,
		"chiusa":     status.Finita,
		"archiviata": status.Sospese,
	}
	i := 0
	for stored, want := range cases {
		i++
		id := primitive.NewObjectID()
		_, err := db.Collection("folders").InsertOne(ctx, bson.M{
			"_id":          id,
			"project_code": FormatCode(int64(i)),
			"status":       stored,
			"created_at":   time.Now(),
		})
		if err != nil {
			t.Fatalf("insert legacy row: %v", err)
		}

		got, err := store.GetByID(ctx, id)
		if err != nil {
			t.Fatalf("GetByID() error = %v", err)
		}
		if got.Status != want {
			t.Errorf("stored %q read back as %q, want %q", stored, got.Status, want)
		}
	}
}

func TestStore_List_NewestFirst(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	for _, code := range []string{"#0001", "#0002", "#0003"} {
		if _, err := store.Create(ctx, CreateInput{ProjectCode: code, Fields: Fields{Status: status.DaIniziare}}); err != nil {
			t.Fatalf("Create(%s) error = %v", code, err)
		}
	}

	got, err := store.List(ctx, "")
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("List() len = %d, want 3", len(got))
	}
	if got[0].ProjectCode != "#0003" || got[2].ProjectCode != "#0001" {
		t.Errorf("List() order = %s,%s,%s; want newest first",
			got[0].ProjectCode, got[1].ProjectCode, got[2].ProjectCode)
	}
}

func TestStore_List_Search(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	seed := []CreateInput{
		{ProjectCode: "#0001", Fields: Fields{ClientName: "Bianchi Srl", ConstructionSite: "Milano"}},
		{ProjectCode: "#0002", Fields: Fields{ClientName: "Verdi", ConstructionSite: "Cantiere BIANCHI"}},
		{ProjectCode: "#0003", Fields: Fields{ClientName: "Neri", ConstructionSite: "Torino"}},
		{ProjectCode: "#0.04", Fields: Fields{ClientName: "Punto", ConstructionSite: "Roma"}},
	}
	for _, in := range seed {
		in.Status = status.DaIniziare
		if _, err := store.Create(ctx, in); err != nil {
			t.Fatalf("Create() error = %v", err)
		}
	}

	tests := []struct {
		search string
		want   int
	}{
		{"bianchi", 2},
		{"TORINO", 1},
		{"#0003", 1},
		{"000", 3},
		{"nessuno", 0},
		{".", 1}, // regex metacharacters match literally
		{"  ", 4},
	}
	for _, tt := range tests {
		got, err := store.List(ctx, tt.search)
		if err != nil {
			t.Fatalf("List(%q) error = %v", tt.search, err)
		}
		if len(got) != tt.want {
			t.Errorf("List(%q) len = %d, want %d", tt.search, len(got), tt.want)
		}
	}
}

func TestStore_Replace(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	created, _ := store.Create(ctx, CreateInput{
		ProjectCode: "#0001",
		Fields:      Fields{ClientName: "Old", Notes: "keep?", Status: status.DaIniziare},
	})

	err := store.Replace(ctx, created.ID, Fields{ClientName: "New", Status: status.Sospese})
	if err != nil {
		t.Fatalf("Replace() error = %v", err)
	}

	got, _ := store.GetByID(ctx, created.ID)
	if got.ClientName != "New" || got.Status != status.Sospese {
		t.Errorf("Replace() did not apply: %+v", got)
	}
	if got.Notes != "" {
		t.Errorf("Notes = %q, want cleared by full replace", got.Notes)
	}
	if got.ProjectCode != "#0001" {
		t.Errorf("ProjectCode changed to %q", got.ProjectCode)
	}

	if err := store.Replace(ctx, primitive.NewObjectID(), Fields{}); err != mongo.ErrNoDocuments {
		t.Errorf("Replace(unknown) error = %v, want ErrNoDocuments", err)
	}
}

func TestStore_Delete(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	created, _ := store.Create(ctx, CreateInput{ProjectCode: "#0001", Fields: Fields{Status: status.DaIniziare}})

	if err := store.Delete(ctx, created.ID); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if ok, _ := store.Exists(ctx, created.ID); ok {
		t.Error("folder still exists after Delete()")
	}
	if err := store.Delete(ctx, created.ID); err != mongo.ErrNoDocuments {
		t.Errorf("second Delete() error = %v, want ErrNoDocuments", err)
	}
}

func TestStore_MaxCodeNumber(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	n, err := store.MaxCodeNumber(ctx)
	if err != nil || n != 0 {
		t.Fatalf("MaxCodeNumber() on empty = (%d, %v), want (0, nil)", n, err)
	}

	for _, code := range []string{"#0009", "P-0120", "#0042", "legacy"} {
		store.Create(ctx, CreateInput{ProjectCode: code, Fields: Fields{Status: status.DaIniziare}})
	}

	n, err = store.MaxCodeNumber(ctx)
	if err != nil {
		t.Fatalf("MaxCodeNumber() error = %v", err)
	}
	if n != 120 {
		t.Errorf("MaxCodeNumber() = %d, want 120", n)
	}
}

func TestStore_CountByStatus(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	for i, st := range []string{"aperta", "aperta", status.InCorso} {
		db.Collection("folders").InsertOne(ctx, bson.M{
			"project_code": FormatCode(int64(i + 1)),
			"status":       st,
			"created_at":   time.Now(),
		})
	}

	got, err := store.CountByStatus(ctx)
	if err != nil {
		t.Fatalf("CountByStatus() error = %v", err)
	}
	if got["aperta"] != 2 || got[status.InCorso] != 1 {
		t.Errorf("CountByStatus() = %v", got)
	}
}

func TestCodeNumber(t *testing.T) {
	tests := []struct {
		code string
		want int64
	}{
		{"#0042", 42},
		{"#0000", 0},
		{"#12345", 12345},
		{"P-7/b", 7},
		{"", 0},
		{"#", 0},
		{"#99999999999999999999999", 0},
	}
	for _, tt := range tests {
		if got := CodeNumber(tt.code); got != tt.want {
			t.Errorf("CodeNumber(%q) = %d, want %d", tt.code, got, tt.want)
		}
	}
}

func TestFormatCode(t *testing.T) {
	tests := []struct {
		n    int64
		want string
	}{
		{1, "#0001"},
		{42, "#0042"},
		{9999, "#9999"},
		{10000, "#10000"},
	}
	for _, tt := range tests {
		if got := FormatCode(tt.n); got != tt.want {
			t.Errorf("FormatCode(%d) = %q, want %q", tt.n, got, tt.want)
		}
	}
}
