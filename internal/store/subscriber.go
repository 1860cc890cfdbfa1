package store

import (
	"errors"
	"os"
	"path/filepath"
	"sync"

	"crazyones/internal/applecore"
)

// SubscriberStore persists the subscriber list (subscribers.json).
// Exclusively written by the bot; every mutation is serialized behind mu
// and fsynced before the caller is told it succeeded (spec §5).
type SubscriberStore struct {
	dir string
	mu  sync.Mutex
}

// NewSubscriberStore creates a subscriber accessor rooted at dataDir.
func NewSubscriberStore(dataDir string) *SubscriberStore {
	return &SubscriberStore{dir: dataDir}
}

func (s *SubscriberStore) path() string {
	return filepath.Join(s.dir, "subscribers.json")
}

func (s *SubscriberStore) load() ([]*applecore.Subscriber, error) {
	var subs []*applecore.Subscriber
	if err := readJSON(s.path(), &subs); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return []*applecore.Subscriber{}, nil
		}
		return nil, err
	}
	return subs, nil
}

// All returns a read-only snapshot of every subscriber, active or not.
func (s *SubscriberStore) All() ([]*applecore.Subscriber, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load()
}

// ByChatID returns the subscriber for chatID, if one exists.
func (s *SubscriberStore) ByChatID(chatID int64) (*applecore.Subscriber, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	subs, err := s.load()
	if err != nil {
		return nil, false, err
	}
	for _, sub := range subs {
		if sub.ChatID == chatID {
			return sub, true, nil
		}
	}
	return nil, false, nil
}

// Upsert inserts or replaces the subscriber matching sub.ChatID and
// persists the result.
func (s *SubscriberStore) Upsert(sub *applecore.Subscriber) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	subs, err := s.load()
	if err != nil {
		return err
	}

	replaced := false
	for i, existing := range subs {
		if existing.ChatID == sub.ChatID {
			subs[i] = sub
			replaced = true
			break
		}
	}
	if !replaced {
		subs = append(subs, sub)
	}

	return writeAtomic(s.path(), subs)
}

// Deactivate flips the active flag for chatID to false. A subscriber that
// doesn't exist is a no-op.
func (s *SubscriberStore) Deactivate(chatID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	subs, err := s.load()
	if err != nil {
		return err
	}

	found := false
	for _, sub := range subs {
		if sub.ChatID == chatID {
			sub.Active = false
			found = true
			break
		}
	}
	if !found {
		return nil
	}

	return writeAtomic(s.path(), subs)
}
