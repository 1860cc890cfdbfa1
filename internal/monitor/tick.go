package monitor

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"golang.org/x/sync/semaphore"

	"crazyones/internal/applecore"
	"crazyones/internal/locales"
	"crazyones/internal/scraper"
	"crazyones/internal/store"
)

// defaultConcurrency bounds simultaneous locale fetches (spec §5).
const defaultConcurrency = 4

// Monitor runs one tick of the pipeline described in spec §2: reconcile the
// locale index, fetch and parse whichever locale pages changed, assign ids,
// persist, and announce novelty via the trigger document.
type Monitor struct {
	client      *scraper.Client
	catalog     *store.CatalogStore
	fingerprint *store.FingerprintStore
	locales     *store.LocaleStore
	trigger     *store.TriggerStore
	logger      *slog.Logger
	indexURL    string
	concurrency int64
}

// New constructs a Monitor. concurrency <= 0 uses the spec's default of 4.
func New(client *scraper.Client, dataDir, indexURL string, concurrency int, logger *slog.Logger) *Monitor {
	if concurrency <= 0 {
		concurrency = defaultConcurrency
	}
	return &Monitor{
		client:      client,
		catalog:     store.NewCatalogStore(dataDir, logger),
		fingerprint: store.NewFingerprintStore(dataDir),
		locales:     store.NewLocaleStore(dataDir),
		trigger:     store.NewTriggerStore(dataDir),
		logger:      logger,
		indexURL:    indexURL,
		concurrency: int64(concurrency),
	}
}

// fetchResult is one locale's outcome from the concurrent fetch fan-out.
type fetchResult struct {
	locale      string
	url         string
	updates     []applecore.SecurityUpdate
	fingerprint string
	unchanged   bool
	err         error
}

// Tick runs a single pipeline iteration and returns the trigger that was
// written, if any new records were observed.
func (m *Monitor) Tick(ctx context.Context) (applecore.Trigger, error) {
	priorURLs, err := m.catalog.LoadURLs()
	if err != nil {
		return nil, fmt.Errorf("load locale catalog: %w", err)
	}

	freshURLs, err := m.client.IndexLocales(ctx, m.indexURL)
	if err != nil {
		return nil, fmt.Errorf("fetch locale index: %w", err)
	}

	reconciliation := Reconcile(priorURLs, freshURLs)
	m.logger.Info("locale index reconciled",
		"added", len(reconciliation.Added),
		"removed", len(reconciliation.Removed),
		"updated", len(reconciliation.Updated),
		"unchanged", len(reconciliation.Unchanged))

	if err := m.catalog.SaveURLs(reconciliation.Catalog); err != nil {
		return nil, fmt.Errorf("save locale catalog: %w", err)
	}
	if err := m.catalog.SaveNames(displayNames(reconciliation.Catalog)); err != nil {
		return nil, fmt.Errorf("save locale names: %w", err)
	}

	fingerprints, err := m.fingerprint.Load()
	if err != nil {
		return nil, fmt.Errorf("load fingerprints: %w", err)
	}

	toFetch := append(append([]string{}, reconciliation.Added...), reconciliation.Updated...)
	toFetch = append(toFetch, reconciliation.Unchanged...)

	results := m.fetchLocales(ctx, toFetch, reconciliation.Catalog, fingerprints)

	trigger := applecore.Trigger{}
	var processed []string
	for _, res := range results {
		if res.err != nil {
			m.logger.Error("locale fetch/parse failed, leaving fingerprint untouched for retry",
				"locale", res.locale, "url", res.url, "error", res.err)
			continue
		}
		if res.unchanged {
			continue
		}

		existing, err := m.locales.Load(res.locale)
		if err != nil {
			m.logger.Error("failed to load existing locale store, leaving fingerprint untouched for retry", "locale", res.locale, "error", err)
			continue
		}

		merged, novelty := store.AssignIDs(existing, res.updates)
		if err := m.locales.Save(res.locale, merged); err != nil {
			m.logger.Error("failed to save locale store, aborting tick", "locale", res.locale, "error", err)
			return nil, fmt.Errorf("save locale store for %s: %w", res.locale, err)
		}

		// The fingerprint only advances once the records it describes are
		// durably on disk (spec §7, §8): a save failure above aborts the
		// tick before this line ever runs, leaving the digest untouched.
		fingerprints[res.url] = res.fingerprint
		processed = append(processed, res.locale)

		if len(novelty) > 0 {
			trigger[res.locale] = novelty
		}
	}

	if err := m.fingerprint.Save(fingerprints); err != nil {
		return nil, fmt.Errorf("save fingerprints: %w", err)
	}
	m.logger.Info("locales processed", "locales", processed)

	if len(trigger) == 0 {
		return nil, nil
	}
	if err := m.trigger.Write(trigger); err != nil {
		return nil, fmt.Errorf("write trigger: %w", err)
	}
	m.logger.Info("trigger written", "locales", len(trigger))
	return trigger, nil
}

// displayNames filters the static fallback table down to the locale codes
// the index page actually declares, the same "only include what's currently
// live" policy the original generate_language_names.py script applied when
// producing language_names.json from a freshly scraped language_urls.json.
func displayNames(catalog map[string]string) map[string]string {
	names := make(map[string]string, len(catalog))
	for code := range catalog {
		if name, ok := locales.FallbackName(code); ok {
			names[code] = name
		}
	}
	return names
}

// fetchLocales fetches and parses every locale in codes with bounded
// concurrency (spec §5). The id-assigner and trigger writer run afterward,
// serially, in Tick, never interleaved with these fetches.
func (m *Monitor) fetchLocales(ctx context.Context, codes []string, catalog map[string]string, fingerprints map[string]string) []fetchResult {
	sem := semaphore.NewWeighted(m.concurrency)
	results := make([]fetchResult, len(codes))
	var wg sync.WaitGroup

	for i, code := range codes {
		url := catalog[code]
		if err := sem.Acquire(ctx, 1); err != nil {
			results[i] = fetchResult{locale: code, url: url, err: err}
			continue
		}
		wg.Add(1)
		go func(i int, code, url string) {
			defer wg.Done()
			defer sem.Release(1)

			updates, fp, err := m.client.FetchReleases(ctx, url, fingerprints[url])
			switch {
			case errors.Is(err, scraper.ErrUnchanged):
				results[i] = fetchResult{locale: code, url: url, unchanged: true}
			case err != nil:
				results[i] = fetchResult{locale: code, url: url, err: err}
			default:
				results[i] = fetchResult{locale: code, url: url, updates: updates, fingerprint: fp}
			}
		}(i, code, url)
	}

	wg.Wait()
	return results
}
