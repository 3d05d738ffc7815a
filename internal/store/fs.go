package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/starford/jarvis/internal/models"
)

// FS is the local JSON cache: one file per user key under root.
type FS struct {
	root string
}

var _ Provider = (*FS)(nil)

// NewFS creates a cache rooted at dir, creating it if needed.
func NewFS(dir string) (*FS, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("store: resolve root: %w", err)
	}
	if err := os.MkdirAll(abs, 0o755); err != nil {
		return nil, fmt.Errorf("store: mkdir root: %w", err)
	}
	return &FS{root: abs}, nil
}

// path maps a user key to its cache file and rejects anything that would
// escape root.
func (f *FS) path(userKey string) (string, error) {
	if err := ValidateUserKey(userKey); err != nil {
		return "", fmt.Errorf("store: user key %q: %w", userKey, err)
	}
	abs := filepath.Join(f.root, userKey+".json")
	if !strings.HasPrefix(abs, f.root+string(os.PathSeparator)) {
		return "", fmt.Errorf("store: path escapes cache root: %s", userKey)
	}
	return abs, nil
}

// Load implements Provider.
func (f *FS) Load(_ context.Context, userKey string) (*models.UserData, error) {
	p, err := f.path(userKey)
	if err != nil {
		return nil, err
	}
	raw, err := os.ReadFile(p)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("store: read %s: %w", userKey, err)
	}
	var d models.UserData
	if err := json.Unmarshal(raw, &d); err != nil {
		return nil, fmt.Errorf("store: decode %s: %w", userKey, err)
	}
	return &d, nil
}

// Save implements Provider with an atomic tmp, fsync, rename write.
func (f *FS) Save(_ context.Context, userKey string, data *models.UserData) error {
	p, err := f.path(userKey)
	if err != nil {
		return err
	}
	raw, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return fmt.Errorf("store: encode %s: %w", userKey, err)
	}

	tmp, err := os.CreateTemp(f.root, ".jarvis-tmp-*")
	if err != nil {
		return fmt.Errorf("store: create temp: %w", err)
	}
	tmpName := tmp.Name()
	success := false
	defer func() {
		if !success {
			_ = tmp.Close()
			_ = os.Remove(tmpName)
		}
	}()

	if _, err := tmp.Write(raw); err != nil {
		return fmt.Errorf("store: write temp: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		return fmt.Errorf("store: fsync: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("store: close temp: %w", err)
	}
	if err := os.Rename(tmpName, p); err != nil {
		return fmt.Errorf("store: rename: %w", err)
	}
	success = true
	return nil
}
