package store

import (
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"sort"

	"crazyones/internal/applecore"
	"crazyones/internal/locales"
)

// CatalogStore persists the locale catalog (language_urls.json) and the
// cosmetic display-name cache (language_names.json). Exclusively written by
// the monitor; read by both processes (spec §3).
type CatalogStore struct {
	dir    string
	logger *slog.Logger
}

// NewCatalogStore creates a catalog store rooted at dataDir.
func NewCatalogStore(dataDir string, logger *slog.Logger) *CatalogStore {
	return &CatalogStore{dir: dataDir, logger: logger}
}

func (c *CatalogStore) urlsPath() string  { return filepath.Join(c.dir, "language_urls.json") }
func (c *CatalogStore) namesPath() string { return filepath.Join(c.dir, "language_names.json") }

// LoadURLs loads the current locale -> URL mapping. A missing file yields
// an empty, non-nil map (first run, per spec §4.1).
func (c *CatalogStore) LoadURLs() (map[string]string, error) {
	urls := make(map[string]string)
	if err := readJSON(c.urlsPath(), &urls); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return map[string]string{}, nil
		}
		return nil, err
	}
	return urls, nil
}

// SaveURLs atomically persists the locale -> URL mapping.
func (c *CatalogStore) SaveURLs(urls map[string]string) error {
	return writeAtomic(c.urlsPath(), urls)
}

// LoadNames loads the locale -> display-name cache. Missing file yields an
// empty map.
func (c *CatalogStore) LoadNames() (map[string]string, error) {
	names := make(map[string]string)
	if err := readJSON(c.namesPath(), &names); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return map[string]string{}, nil
		}
		return nil, err
	}
	return names, nil
}

// SaveNames atomically persists the locale -> display-name cache.
func (c *CatalogStore) SaveNames(names map[string]string) error {
	return writeAtomic(c.namesPath(), names)
}

// Locales returns the catalog as a sorted slice of applecore.Locale,
// joining URLs with display names (falling back to the code itself).
func (c *CatalogStore) Locales() ([]applecore.Locale, error) {
	urls, err := c.LoadURLs()
	if err != nil {
		return nil, err
	}
	names, err := c.LoadNames()
	if err != nil {
		return nil, err
	}

	result := make([]applecore.Locale, 0, len(urls))
	for code, url := range urls {
		name := names[code]
		if name == "" {
			if fallback, ok := locales.FallbackName(code); ok {
				name = fallback
			} else {
				name = code
			}
		}
		result = append(result, applecore.Locale{Code: code, URL: url, DisplayName: name})
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Code < result[j].Code })
	return result, nil
}
