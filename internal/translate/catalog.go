// Package translate loads and renders the bot's UI chrome strings (spec
// §4.9). Only the chrome is localized; update content itself is never
// translated (spec Non-goals).
package translate

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// DefaultLanguage is the fallback UI language used when a subscriber's
// chosen language has no catalog or is missing a key.
const DefaultLanguage = "en-us"

// Catalog holds every loaded UI-language's flat key -> template mapping.
type Catalog struct {
	byLang map[string]map[string]string
	logger *slog.Logger
}

// Load reads every `<lang>.json` file in dir into a Catalog. Each file is a
// flat JSON object of key -> template string, with positional placeholders
// `{0}`, `{1}`, ... (spec §4.9).
func Load(dir string, logger *slog.Logger) (*Catalog, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read translations dir: %w", err)
	}

	byLang := make(map[string]map[string]string)
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".json" {
			continue
		}
		lang := strings.TrimSuffix(entry.Name(), ".json")
		raw, err := os.ReadFile(filepath.Join(dir, entry.Name()))
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", entry.Name(), err)
		}
		var strs map[string]string
		if err := json.Unmarshal(raw, &strs); err != nil {
			return nil, fmt.Errorf("parse %s: %w", entry.Name(), err)
		}
		byLang[lang] = strs
	}

	return &Catalog{byLang: byLang, logger: logger}, nil
}

// Has reports whether a catalog was loaded for lang.
func (c *Catalog) Has(lang string) bool {
	_, ok := c.byLang[lang]
	return ok
}

// Render resolves key in lang, falling back to DefaultLanguage, then to the
// raw key itself (logged when that happens), and substitutes args
// positionally into `{0}`, `{1}`, ... placeholders.
func (c *Catalog) Render(lang, key string, args ...any) string {
	template, ok := c.byLang[lang][key]
	if !ok {
		template, ok = c.byLang[DefaultLanguage][key]
	}
	if !ok {
		if c.logger != nil {
			c.logger.Warn("missing translation key, falling back to raw key", "lang", lang, "key", key)
		}
		template = key
	}
	return substitute(template, args)
}

func substitute(template string, args []any) string {
	for i, arg := range args {
		placeholder := "{" + strconv.Itoa(i) + "}"
		template = strings.ReplaceAll(template, placeholder, fmt.Sprint(arg))
	}
	return template
}
