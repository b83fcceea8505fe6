// Package manifest resolves the official mod list of a modpack version from
// the release manifests and the asset catalogue kept on GitHub.
package manifest

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/vmihailenco/msgpack/v5"

	"github.com/crashscope/core/internal/models"
)

// Bump when snapshotPayload changes shape.
const snapshotSchema uint16 = 1

type snapshotPayload struct {
	Schema uint16
	Assets models.Assets
}

// Snapshot keeps a local msgpack copy of the asset catalogue between runs.
type Snapshot struct {
	path string
}

func NewSnapshot(path string) *Snapshot {
	return &Snapshot{path: path}
}

// Load returns ok=false when there is no snapshot or it was written with an
// older schema.
func (s *Snapshot) Load() (*models.Assets, bool, error) {
	f, err := os.Open(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, false, nil
		}
		return nil, false, err
	}
	defer f.Close()

	var payload snapshotPayload
	if err := msgpack.NewDecoder(f).Decode(&payload); err != nil {
		return nil, false, fmt.Errorf("decode snapshot %s: %w", s.path, err)
	}
	if payload.Schema != snapshotSchema {
		return nil, false, nil
	}
	return &payload.Assets, true, nil
}

// Save writes the snapshot atomically.
func (s *Snapshot) Save(assets *models.Assets) error {
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	f, err := os.CreateTemp(dir, "assets-*.tmp")
	if err != nil {
		return err
	}
	defer os.Remove(f.Name())

	if err := msgpack.NewEncoder(f).Encode(&snapshotPayload{Schema: snapshotSchema, Assets: *assets}); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	return os.Rename(f.Name(), s.path)
}
