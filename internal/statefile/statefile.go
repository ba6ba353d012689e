// Package statefile persists strategy snapshots as structured JSON files.
// It is the external persistence collaborator of the engine, which itself
// performs no file I/O.
package statefile

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"gridsim/internal/engine"
)

// Save writes a snapshot atomically: the file is fully written to a temp
// path, then renamed into place.
func Save(path string, snap engine.Snapshot) error {
	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal snapshot: %w", err)
	}
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(dir, ".state-*.json")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return err
	}
	return os.Rename(tmpName, path)
}

// Load reads a snapshot written by Save.
func Load(path string) (engine.Snapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return engine.Snapshot{}, err
	}
	var snap engine.Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return engine.Snapshot{}, fmt.Errorf("parse state file: %w", err)
	}
	return snap, nil
}
