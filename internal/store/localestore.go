package store

import (
	"errors"
	"os"
	"path/filepath"

	"crazyones/internal/applecore"
)

// LocaleStore persists the ordered SecurityUpdate list for one locale
// (spec §3, §4.3). Exclusively written by the monitor.
type LocaleStore struct {
	dir string
}

// NewLocaleStore creates a locale-store accessor rooted at dataDir.
func NewLocaleStore(dataDir string) *LocaleStore {
	return &LocaleStore{dir: dataDir}
}

func (s *LocaleStore) path(locale string) string {
	return filepath.Join(s.dir, "updates", locale+".json")
}

// Load returns the current records for a locale, newest-first (source
// order). A missing file yields an empty, non-nil slice.
func (s *LocaleStore) Load(locale string) ([]applecore.SecurityUpdate, error) {
	var records []applecore.SecurityUpdate
	if err := readJSON(s.path(locale), &records); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return []applecore.SecurityUpdate{}, nil
		}
		return nil, err
	}
	return records, nil
}

// Save atomically persists records for a locale.
func (s *LocaleStore) Save(locale string, records []applecore.SecurityUpdate) error {
	return writeAtomic(s.path(locale), records)
}

// AssignIDs merges a freshly parsed record list against the existing store
// for one locale, implementing the id-assigner described in spec §4.3.
//
// Matching prefers an exact content-identity (name, target, date). When an
// existing record's date is still the sentinel (spec §7,
// date-parse-failure) but a freshly parsed record shares its (name, target)
// with a real date, that existing record is treated as the same identity so
// the date can be refreshed without minting a new id.
//
// The returned slice places every record seen in the current fetch first,
// in fetch order, followed by any previously stored record absent from the
// current fetch (spec's mandated retention policy, in their prior relative
// order). The returned novelty slice holds the ids newly allocated in this
// call, in allocation order.
func AssignIDs(existing []applecore.SecurityUpdate, parsed []applecore.SecurityUpdate) (merged []applecore.SecurityUpdate, novelty []int) {
	consumed := make([]bool, len(existing))
	exactIndex := make(map[applecore.ContentKey]int, len(existing))
	looseIndex := make(map[[2]string]int, len(existing))

	maxID := 0
	for i, e := range existing {
		if e.ID > maxID {
			maxID = e.ID
		}
		exactIndex[e.Key()] = i
		if e.Date == applecore.SentinelDate {
			looseIndex[[2]string{e.Name, e.Target}] = i
		}
	}

	current := make([]applecore.SecurityUpdate, 0, len(parsed))
	for _, p := range parsed {
		if idx, ok := exactIndex[p.Key()]; ok && !consumed[idx] {
			consumed[idx] = true
			reused := existing[idx]
			if p.URL != "" {
				reused.URL = p.URL
			}
			current = append(current, reused)
			continue
		}

		if idx, ok := looseIndex[[2]string{p.Name, p.Target}]; ok && !consumed[idx] {
			consumed[idx] = true
			reused := existing[idx]
			if p.Date != applecore.SentinelDate {
				reused.Date = p.Date
			}
			if p.URL != "" {
				reused.URL = p.URL
			}
			current = append(current, reused)
			continue
		}

		maxID++
		fresh := p
		fresh.ID = maxID
		current = append(current, fresh)
		novelty = append(novelty, maxID)
	}

	preserved := make([]applecore.SecurityUpdate, 0)
	for i, e := range existing {
		if !consumed[i] {
			preserved = append(preserved, e)
		}
	}

	merged = append(current, preserved...)
	return merged, novelty
}
