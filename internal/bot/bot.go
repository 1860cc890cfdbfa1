package bot

import (
	"context"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"crazyones/internal/store"
	"crazyones/internal/translate"
)

// Bot wires the command dispatcher and the trigger watcher together over
// the shared subscriber store and delivery ledger (spec §2, §5). The two
// run concurrently; Run blocks until ctx is canceled or either fails.
type Bot struct {
	transport  Transport
	dispatcher *Dispatcher
	watcher    *Watcher
	logger     *slog.Logger
}

// New constructs a Bot rooted at dataDir, using transport for all Telegram
// I/O and translations for UI chrome.
func New(dataDir string, transport Transport, translations *translate.Catalog, logger *slog.Logger) *Bot {
	subscribers := store.NewSubscriberStore(dataDir)
	catalog := store.NewCatalogStore(dataDir, logger)
	locales := store.NewLocaleStore(dataDir)
	ledger := store.NewDeliveryLedger(dataDir)
	trigger := store.NewTriggerStore(dataDir)

	return &Bot{
		transport:  transport,
		dispatcher: NewDispatcher(subscribers, catalog, locales, translations, transport, logger),
		watcher:    NewWatcher(trigger, locales, subscribers, ledger, translations, transport, logger),
		logger:     logger,
	}
}

// Run drives the command dispatcher (event-driven on transport updates) and
// the trigger watcher (periodic polling) as two cooperating tasks sharing
// the same writer-serialized stores (spec §5).
func (b *Bot) Run(ctx context.Context) error {
	group, ctx := errgroup.WithContext(ctx)

	group.Go(func() error {
		for upd := range b.transport.Updates(ctx) {
			handleCtx, cancel := withShutdownGrace(ctx)
			b.dispatcher.Handle(handleCtx, upd)
			cancel()
		}
		return ctx.Err()
	})

	group.Go(func() error {
		return b.watcher.Run(ctx)
	})

	err := group.Wait()
	if err != nil && ctx.Err() != nil {
		return nil
	}
	return err
}
