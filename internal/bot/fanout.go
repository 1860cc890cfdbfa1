package bot

import (
	"context"
	"errors"
	"log/slog"
	"math/rand"
	"sort"
	"time"

	retry "github.com/codeGROOVE-dev/retry-go"

	"crazyones/internal/applecore"
	"crazyones/internal/store"
	"crazyones/internal/translate"
)

// pollInterval is how often the watcher checks for a trigger document
// (spec §4.8).
const pollInterval = 30 * time.Second

// defaultMaxSendAttempts bounds retries of a transient send failure before
// the watcher gives up on the rest of that subscriber's batch (spec §4.8
// default).
const defaultMaxSendAttempts = 5

// shutdownGrace bounds how long an in-flight send is allowed to finish
// after a shutdown signal arrives (spec §5(b)).
const shutdownGrace = 30 * time.Second

// withShutdownGrace returns a context that outlives parent's cancellation
// by shutdownGrace, the bot package's counterpart to the monitor's
// monitor.WithShutdownGrace: callers stop starting new work as soon as
// parent is done, while whatever's already running against the returned
// context gets a bounded grace period instead of an instant kill.
func withShutdownGrace(parent context.Context) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.WithoutCancel(parent))
	stop := context.AfterFunc(parent, func() {
		time.AfterFunc(shutdownGrace, cancel)
	})
	return ctx, func() {
		stop()
		cancel()
	}
}

// Watcher polls for the monitor's trigger document and fans newly observed
// updates out to the subscribers watching each locale (spec §4.8).
type Watcher struct {
	trigger      *store.TriggerStore
	locales      *store.LocaleStore
	subscribers  *store.SubscriberStore
	ledger       *store.DeliveryLedger
	translations *translate.Catalog
	transport    Transport
	logger       *slog.Logger
	maxAttempts  uint
}

// NewWatcher constructs a Watcher over the given stores and transport.
func NewWatcher(trigger *store.TriggerStore, locales *store.LocaleStore, subscribers *store.SubscriberStore, ledger *store.DeliveryLedger, translations *translate.Catalog, transport Transport, logger *slog.Logger) *Watcher {
	return &Watcher{
		trigger:      trigger,
		locales:      locales,
		subscribers:  subscribers,
		ledger:       ledger,
		translations: translations,
		transport:    transport,
		logger:       logger,
		maxAttempts:  defaultMaxSendAttempts,
	}
}

// Run polls every pollInterval until ctx is canceled. Earlier triggers are
// always fully processed (and deleted) before the next poll begins, so
// triggers consumed in sequence never interleave (spec §5).
func (w *Watcher) Run(ctx context.Context) error {
	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			pollCtx, cancelPoll := withShutdownGrace(ctx)
			w.poll(pollCtx)
			cancelPoll()
		}
	}
}

func (w *Watcher) poll(ctx context.Context) {
	trigger, ok := w.trigger.Read()
	if !ok || len(trigger) == 0 {
		return
	}

	locales := make([]string, 0, len(trigger))
	for locale := range trigger {
		locales = append(locales, locale)
	}
	sort.Strings(locales)

	for _, locale := range locales {
		ids := append([]int{}, trigger[locale]...)
		sort.Ints(ids)
		w.fanOutLocale(ctx, locale, ids)
	}

	if err := w.trigger.Delete(); err != nil {
		w.logger.Error("delete trigger failed", "error", err)
	}
}

func (w *Watcher) fanOutLocale(ctx context.Context, locale string, ids []int) {
	records, err := w.locales.Load(locale)
	if err != nil {
		w.logger.Error("load locale store for fan-out failed", "locale", locale, "error", err)
		return
	}
	byID := make(map[int]applecore.SecurityUpdate, len(records))
	for _, r := range records {
		byID[r.ID] = r
	}

	subs, err := w.subscribers.All()
	if err != nil {
		w.logger.Error("load subscribers for fan-out failed", "error", err)
		return
	}

	for _, sub := range subs {
		if !sub.Active || sub.Locale != locale {
			continue
		}
		w.fanOutSubscriber(ctx, sub, locale, ids, byID)
	}
}

// fanOutSubscriber sends every id in ids not already delivered to sub, in
// ascending order, stopping early on any send failure that retries did not
// overcome (spec §4.8,
// §5: ascending-id order per trigger consumption). A header announcing the
// batch precedes the first record actually sent.
func (w *Watcher) fanOutSubscriber(ctx context.Context, sub *applecore.Subscriber, locale string, ids []int, byID map[int]applecore.SecurityUpdate) {
	delivered, err := w.ledger.Delivered(sub.ChatID, locale)
	if err != nil {
		w.logger.Error("load delivery ledger failed", "chat_id", sub.ChatID, "error", err)
		return
	}

	pending := make([]int, 0, len(ids))
	for _, id := range ids {
		if !delivered[id] {
			if _, ok := byID[id]; ok {
				pending = append(pending, id)
			}
		}
	}
	if len(pending) == 0 {
		return
	}

	if err := w.sendHeader(ctx, sub); err != nil {
		w.handleSendFailure(sub, locale, 0, err)
		return
	}

	for _, id := range pending {
		if err := w.sendWithRetry(ctx, sub, byID[id]); err != nil {
			w.handleSendFailure(sub, locale, id, err)
			return
		}

		if err := w.ledger.Record(sub.ChatID, locale, id); err != nil {
			w.logger.Error("record delivery failed", "chat_id", sub.ChatID, "locale", locale, "update_id", id, "error", err)
			return
		}
	}
}

// handleSendFailure deactivates sub on a permanent block, or just logs and
// gives up on the rest of this subscriber's batch otherwise.
func (w *Watcher) handleSendFailure(sub *applecore.Subscriber, locale string, updateID int, err error) {
	blocked, _ := classifySendError(err)
	if blocked {
		w.logger.Warn("subscriber blocked, deactivating", "chat_id", sub.ChatID, "error", err)
		if deErr := w.subscribers.Deactivate(sub.ChatID); deErr != nil {
			w.logger.Error("deactivate blocked subscriber failed", "chat_id", sub.ChatID, "error", deErr)
		}
		return
	}
	w.logger.Error("send failed permanently, skipping subscriber", "chat_id", sub.ChatID, "locale", locale, "update_id", updateID, "error", err)
}

// maxBackoffDelay caps the generic exponential-backoff path only. An
// explicit rate-limit retry-after bypasses it entirely, per spec §4.8's
// requirement to honor that duration exactly.
const maxBackoffDelay = 30 * time.Second

// sendWithRetry sends one record to sub, retrying transient failures with
// backoff up to maxAttempts and honoring an explicit rate-limit
// retry-after exactly (spec §4.8).
func (w *Watcher) sendWithRetry(ctx context.Context, sub *applecore.Subscriber, record applecore.SecurityUpdate) error {
	return w.sendTextWithRetry(ctx, sub, formatUpdate(w.translations, sub.UILang, record))
}

// sendHeader announces the batch of new updates about to follow, once per
// fanOutSubscriber call rather than once per record.
func (w *Watcher) sendHeader(ctx context.Context, sub *applecore.Subscriber) error {
	return w.sendTextWithRetry(ctx, sub, w.translations.Render(sub.UILang, "new_updates_header"))
}

func (w *Watcher) sendTextWithRetry(ctx context.Context, sub *applecore.Subscriber, text string) error {
	return retry.Do(
		func() error {
			_, err := w.transport.Send(ctx, sub.ChatID, text, nil)
			return err
		},
		retry.Attempts(w.maxAttempts),
		retry.Context(ctx),
		retry.RetryIf(func(err error) bool {
			blocked, _ := classifySendError(err)
			if blocked {
				return false
			}
			return isTransient(err)
		}),
		retry.DelayType(func(n uint, err error, config *retry.Config) time.Duration {
			var rle *RateLimitError
			if errors.As(err, &rle) {
				return rle.RetryAfter
			}
			delay := retry.BackOffDelay(n, err, config)
			if delay > maxBackoffDelay {
				delay = maxBackoffDelay
			}
			return delay + randomJitter()
		}),
		retry.OnRetry(func(n uint, err error) {
			w.logger.Info("retrying send", "attempt", n, "chat_id", sub.ChatID, "error", err)
		}),
	)
}

// randomJitter adds up to 2s of jitter to the generic backoff path, the
// same spread retry.MaxJitter would have added before it was dropped in
// favor of hand-capping only the backoff branch.
func randomJitter() time.Duration {
	return time.Duration(rand.Int63n(int64(2 * time.Second)))
}
