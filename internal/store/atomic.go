// Package store persists the monitor's and bot's on-disk state: the locale
// catalog, per-locale update lists, the fingerprint ledger, the trigger
// document, the subscriber list, and the delivery ledger. Every write goes
// through writeAtomic so that no reader ever observes a partially written
// file (spec §5, §8).
package store

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// writeAtomic marshals v as indented JSON and writes it to path by writing
// to a sibling temp file, flushing, and renaming over the destination,
// the same write-temp-then-rename discipline the teacher repo's storage
// package uses for its Cloud Storage and local-filesystem writers.
func writeAtomic(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal %s: %w", path, err)
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create directory %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp file for %s: %w", path, err)
	}
	tmpPath := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
		return fmt.Errorf("write temp file for %s: %w", path, err)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
		return fmt.Errorf("sync temp file for %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("close temp file for %s: %w", path, err)
	}

	if err := os.Rename(tmpPath, path); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("rename temp file into %s: %w", path, err)
	}
	return nil
}

// readJSON loads path into v. A missing file is reported via the returned
// error satisfying os.IsNotExist; callers that treat "not yet created" as
// an empty value should check that explicitly.
func readJSON(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("unmarshal %s: %w", path, err)
	}
	return nil
}
