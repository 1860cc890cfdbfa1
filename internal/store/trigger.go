package store

import (
	"errors"
	"os"
	"path/filepath"

	"crazyones/internal/applecore"
)

// TriggerStore manages the transient trigger document (spec §3, §4.4, §6).
// Single producer (monitor), single consumer (bot): create, consume,
// delete.
type TriggerStore struct {
	dir string
}

// NewTriggerStore creates a trigger accessor rooted at dataDir.
func NewTriggerStore(dataDir string) *TriggerStore {
	return &TriggerStore{dir: dataDir}
}

func (t *TriggerStore) path() string {
	return filepath.Join(t.dir, "new_updates_trigger.json")
}

// Write atomically creates the trigger document. Callers must only invoke
// this with a non-empty trigger (spec §4.4: an empty novelty set writes no
// file).
func (t *TriggerStore) Write(trigger applecore.Trigger) error {
	return writeAtomic(t.path(), trigger)
}

// Read loads the trigger document, if present. ok is false when no trigger
// exists (nothing new to deliver) or when the file fails to parse: the
// bot treats a partial/invalid read as "not ready, retry next tick" (spec
// §5) rather than an error.
func (t *TriggerStore) Read() (trigger applecore.Trigger, ok bool) {
	trigger = applecore.Trigger{}
	if err := readJSON(t.path(), &trigger); err != nil {
		return nil, false
	}
	return trigger, true
}

// Delete removes the trigger document. Deletion is idempotent: a missing
// file is not an error.
func (t *TriggerStore) Delete() error {
	if err := os.Remove(t.path()); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}
