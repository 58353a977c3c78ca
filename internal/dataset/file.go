// Package dataset reads and writes persisted DatasetSnapshots: the bundled
// JSON file produced by the refresh job and the copy kept in the cache.
package dataset

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/ndewijer/ETF-Dashboard-Backend/internal/model"
)

// ReadFile decodes the snapshot stored at path.
func ReadFile(path string) (model.DatasetSnapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return model.DatasetSnapshot{}, fmt.Errorf("failed to read dataset file: %w", err)
	}
	var snap model.DatasetSnapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return model.DatasetSnapshot{}, fmt.Errorf("failed to parse dataset file %s: %w", path, err)
	}
	return snap, nil
}

// WriteFile writes snap to path as indented JSON. The file is replaced
// atomically so readers never see a partial document.
func WriteFile(path string, snap model.DatasetSnapshot) error {
	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode dataset: %w", err)
	}
	data = append(data, '\n')

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create dataset directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temporary dataset file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write dataset: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to write dataset: %w", err)
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		return fmt.Errorf("failed to set dataset permissions: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("failed to replace dataset file: %w", err)
	}
	return nil
}

// FileFallback loads the bundled dataset file.
type FileFallback struct {
	Path string
}

// LoadFallback implements service.FallbackLoader.
func (f FileFallback) LoadFallback(ctx context.Context) (model.DatasetSnapshot, error) {
	if err := ctx.Err(); err != nil {
		return model.DatasetSnapshot{}, err
	}
	return ReadFile(f.Path)
}
