package store

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/starford/jarvis/internal/models"
)

func tempDB(t *testing.T) *SQLite {
	t.Helper()
	db, err := OpenSQLite(filepath.Join(t.TempDir(), "store.db"))
	if err != nil {
		t.Fatalf("OpenSQLite: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func tempCache(t *testing.T) *FS {
	t.Helper()
	fs, err := NewFS(t.TempDir())
	if err != nil {
		t.Fatalf("NewFS: %v", err)
	}
	return fs
}

func sample() *models.UserData {
	return &models.UserData{
		Tasks:  []models.Task{{ID: "1", Title: "Ship it", Priority: models.PriorityHigh}},
		Memory: []string{"likes tea"},
	}
}

func TestSQLiteRoundTrip(t *testing.T) {
	db := tempDB(t)
	ctx := context.Background()

	got, err := db.Load(ctx, "tony")
	if err != nil || got != nil {
		t.Fatalf("Load absent = %v, %v; want nil, nil", got, err)
	}
	if err := db.Save(ctx, "tony", sample()); err != nil {
		t.Fatalf("Save: %v", err)
	}
	got, err = db.Load(ctx, "tony")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(got.Tasks) != 1 || got.Tasks[0].Title != "Ship it" {
		t.Errorf("tasks = %+v", got.Tasks)
	}
}

func updatedAt(t *testing.T, db *SQLite, userKey string) time.Time {
	t.Helper()
	var at time.Time
	err := db.conn.QueryRow(`SELECT updated_at FROM user_data WHERE username = ?`, userKey).Scan(&at)
	if err != nil {
		t.Fatal(err)
	}
	return at
}

func TestSQLiteSkipsUnchangedWrite(t *testing.T) {
	db := tempDB(t)
	ctx := context.Background()
	if err := db.Save(ctx, "tony", sample()); err != nil {
		t.Fatal(err)
	}
	first := updatedAt(t, db, "tony")
	if err := db.Save(ctx, "tony", sample()); err != nil {
		t.Fatal(err)
	}
	second := updatedAt(t, db, "tony")
	if !first.Equal(second) {
		t.Errorf("updated_at changed on identical save: %v -> %v", first, second)
	}

	changed := sample()
	changed.Memory = append(changed.Memory, "new fact")
	before, _ := db.Checksum(ctx, "tony")
	if err := db.Save(ctx, "tony", changed); err != nil {
		t.Fatal(err)
	}
	after, _ := db.Checksum(ctx, "tony")
	if before == after {
		t.Error("checksum unchanged after a real change")
	}
}

func TestFSRoundTripAndAtomicity(t *testing.T) {
	fs := tempCache(t)
	ctx := context.Background()
	if err := fs.Save(ctx, "pepper", sample()); err != nil {
		t.Fatalf("Save: %v", err)
	}
	got, err := fs.Load(ctx, "pepper")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(got.Memory) != 1 {
		t.Errorf("memory = %v", got.Memory)
	}

	entries, _ := os.ReadDir(fs.root)
	for _, e := range entries {
		if filepath.Ext(e.Name()) != ".json" {
			t.Errorf("leftover temp file %s", e.Name())
		}
	}
}

func TestFSRejectsTraversal(t *testing.T) {
	fs := tempCache(t)
	for _, key := range []string{"../escape", "a/b", "..", ""} {
		if err := fs.Save(context.Background(), key, sample()); err == nil {
			t.Errorf("Save(%q) succeeded, want error", key)
		}
	}
}

type failing struct{}

func (failing) Load(context.Context, string) (*models.UserData, error) {
	return nil, errors.New("remote down")
}

func (failing) Save(context.Context, string, *models.UserData) error {
	return errors.New("remote down")
}

func TestCachedFallsBackToLocal(t *testing.T) {
	local := tempCache(t)
	log := slog.New(slog.NewJSONHandler(io.Discard, nil))
	c := NewCached(failing{}, local, log)
	ctx := context.Background()

	if err := c.Save(ctx, "tony", sample()); err == nil {
		t.Error("Save error = nil, want remote failure")
	}
	got, err := c.Load(ctx, "tony")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got == nil || len(got.Tasks) != 1 {
		t.Fatalf("Load = %+v, want local copy", got)
	}
}

func TestCachedBacksUpRemote(t *testing.T) {
	remote := tempDB(t)
	local := tempCache(t)
	ctx := context.Background()
	if err := remote.Save(ctx, "tony", sample()); err != nil {
		t.Fatal(err)
	}

	c := NewCached(remote, local, nil)
	if _, err := c.Load(ctx, "tony"); err != nil {
		t.Fatal(err)
	}
	backup, err := local.Load(ctx, "tony")
	if err != nil || backup == nil {
		t.Fatalf("local backup = %v, %v", backup, err)
	}
}
