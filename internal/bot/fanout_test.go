package bot

import (
	"context"
	"testing"
	"time"

	"crazyones/internal/applecore"
	"crazyones/internal/store"
	"crazyones/internal/translate"
)

type watcherFixture struct {
	watcher     *Watcher
	transport   *fakeTransport
	trigger     *store.TriggerStore
	locales     *store.LocaleStore
	subscribers *store.SubscriberStore
	ledger      *store.DeliveryLedger
}

func newWatcherFixture(t *testing.T) watcherFixture {
	t.Helper()
	dataDir := t.TempDir()
	logger := testLogger()

	translations, err := translate.Load(writeTestTranslations(t), logger)
	if err != nil {
		t.Fatalf("translate.Load() error: %v", err)
	}

	trigger := store.NewTriggerStore(dataDir)
	locales := store.NewLocaleStore(dataDir)
	subscribers := store.NewSubscriberStore(dataDir)
	ledger := store.NewDeliveryLedger(dataDir)
	transport := newFakeTransport()

	watcher := NewWatcher(trigger, locales, subscribers, ledger, translations, transport, logger)
	watcher.maxAttempts = 1

	return watcherFixture{
		watcher:     watcher,
		transport:   transport,
		trigger:     trigger,
		locales:     locales,
		subscribers: subscribers,
		ledger:      ledger,
	}
}

func mustUpsert(t *testing.T, subs *store.SubscriberStore, sub *applecore.Subscriber) {
	t.Helper()
	if err := subs.Upsert(sub); err != nil {
		t.Fatalf("Upsert() error: %v", err)
	}
}

func TestWatcherFanOutSendsToMatchingSubscriberAndRecordsLedger(t *testing.T) {
	f := newWatcherFixture(t)
	mustUpsert(t, f.subscribers, &applecore.Subscriber{ChatID: 1, Locale: "en-us", UILang: "en-us", Active: true, Since: time.Now()})

	if err := f.locales.Save("en-us", []applecore.SecurityUpdate{
		{ID: 1, Name: "iOS 17.4", Target: "iPhone", Date: "2024-03-01"},
	}); err != nil {
		t.Fatalf("Save() error: %v", err)
	}
	if err := f.trigger.Write(applecore.Trigger{"en-us": {1}}); err != nil {
		t.Fatalf("Write() error: %v", err)
	}

	f.watcher.poll(context.Background())

	msgs := f.transport.messagesTo(1)
	if len(msgs) != 2 {
		t.Fatalf("got %d messages, want 2 (header + one record)", len(msgs))
	}

	delivered, err := f.ledger.Delivered(1, "en-us")
	if err != nil {
		t.Fatalf("Delivered() error: %v", err)
	}
	if !delivered[1] {
		t.Fatal("update id 1 not recorded in delivery ledger")
	}

	if _, ok := f.trigger.Read(); ok {
		t.Fatal("trigger document still exists after fan-out")
	}
}

func TestWatcherSkipsInactiveAndWrongLocaleSubscribers(t *testing.T) {
	f := newWatcherFixture(t)
	mustUpsert(t, f.subscribers, &applecore.Subscriber{ChatID: 1, Locale: "en-us", UILang: "en-us", Active: false, Since: time.Now()})
	mustUpsert(t, f.subscribers, &applecore.Subscriber{ChatID: 2, Locale: "es-es", UILang: "es-es", Active: true, Since: time.Now()})

	if err := f.locales.Save("en-us", []applecore.SecurityUpdate{{ID: 1, Name: "iOS 17.4", Target: "iPhone", Date: "2024-03-01"}}); err != nil {
		t.Fatalf("Save() error: %v", err)
	}
	if err := f.trigger.Write(applecore.Trigger{"en-us": {1}}); err != nil {
		t.Fatalf("Write() error: %v", err)
	}

	f.watcher.poll(context.Background())

	if len(f.transport.messagesTo(1)) != 0 {
		t.Error("inactive subscriber should not receive a message")
	}
	if len(f.transport.messagesTo(2)) != 0 {
		t.Error("subscriber on a different locale should not receive a message")
	}
}

func TestWatcherDuplicateTriggerConsumptionSendsAtMostOnce(t *testing.T) {
	f := newWatcherFixture(t)
	mustUpsert(t, f.subscribers, &applecore.Subscriber{ChatID: 1, Locale: "en-us", UILang: "en-us", Active: true, Since: time.Now()})
	if err := f.locales.Save("en-us", []applecore.SecurityUpdate{{ID: 1, Name: "iOS 17.4", Target: "iPhone", Date: "2024-03-01"}}); err != nil {
		t.Fatalf("Save() error: %v", err)
	}

	trigger := applecore.Trigger{"en-us": {1}}
	if err := f.trigger.Write(trigger); err != nil {
		t.Fatalf("Write() error: %v", err)
	}
	f.watcher.poll(context.Background())
	if len(f.transport.messagesTo(1)) != 2 {
		t.Fatalf("first poll sent %d messages, want 2 (header + one record)", len(f.transport.messagesTo(1)))
	}

	// Simulate a crash before deletion: the same trigger reappears.
	if err := f.trigger.Write(trigger); err != nil {
		t.Fatalf("re-write trigger error: %v", err)
	}
	f.watcher.poll(context.Background())

	if len(f.transport.messagesTo(1)) != 2 {
		t.Fatalf("after duplicate trigger, got %d total messages, want still 2", len(f.transport.messagesTo(1)))
	}
}

func TestWatcherBlockedSubscriberIsDeactivated(t *testing.T) {
	f := newWatcherFixture(t)
	mustUpsert(t, f.subscribers, &applecore.Subscriber{ChatID: 1, Locale: "es-es", UILang: "es-es", Active: true, Since: time.Now()})
	if err := f.locales.Save("es-es", []applecore.SecurityUpdate{{ID: 1, Name: "iOS 17.4", Target: "iPhone", Date: "2024-03-01"}}); err != nil {
		t.Fatalf("Save() error: %v", err)
	}
	if err := f.trigger.Write(applecore.Trigger{"es-es": {1}}); err != nil {
		t.Fatalf("Write() error: %v", err)
	}

	f.transport.queueFailure(1, &BlockedError{Reason: "bot was blocked by the user"})

	f.watcher.poll(context.Background())

	sub, ok, err := f.subscribers.ByChatID(1)
	if err != nil {
		t.Fatalf("ByChatID() error: %v", err)
	}
	if !ok || sub.Active {
		t.Fatalf("subscriber = %+v, want deactivated", sub)
	}

	delivered, err := f.ledger.Delivered(1, "es-es")
	if err != nil {
		t.Fatalf("Delivered() error: %v", err)
	}
	if delivered[1] {
		t.Fatal("ledger should not record a delivery that failed permanently")
	}
}
