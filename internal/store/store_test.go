package store

import (
	"log/slog"
	"io"
	"testing"

	"crazyones/internal/applecore"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestCatalogStoreRoundTrip(t *testing.T) {
	dir := t.TempDir()
	cs := NewCatalogStore(dir, testLogger())

	urls, err := cs.LoadURLs()
	if err != nil {
		t.Fatalf("LoadURLs() on empty dir: %v", err)
	}
	if len(urls) != 0 {
		t.Fatalf("LoadURLs() on empty dir = %v, want empty", urls)
	}

	want := map[string]string{"en-us": "https://support.apple.com/en-us/100100"}
	if err := cs.SaveURLs(want); err != nil {
		t.Fatalf("SaveURLs() error: %v", err)
	}

	got, err := cs.LoadURLs()
	if err != nil {
		t.Fatalf("LoadURLs() error: %v", err)
	}
	if got["en-us"] != want["en-us"] {
		t.Errorf("LoadURLs() = %v, want %v", got, want)
	}
}

func TestCatalogStoreLocalesFallsBackToCode(t *testing.T) {
	dir := t.TempDir()
	cs := NewCatalogStore(dir, testLogger())

	if err := cs.SaveURLs(map[string]string{"xx-yy": "https://example.com/xx-yy"}); err != nil {
		t.Fatalf("SaveURLs() error: %v", err)
	}

	locales, err := cs.Locales()
	if err != nil {
		t.Fatalf("Locales() error: %v", err)
	}
	if len(locales) != 1 || locales[0].DisplayName != "xx-yy" {
		t.Errorf("Locales() = %+v, want display name falling back to code", locales)
	}
}

func TestFingerprintStoreRoundTrip(t *testing.T) {
	dir := t.TempDir()
	fs := NewFingerprintStore(dir)

	empty, err := fs.Load()
	if err != nil || len(empty) != 0 {
		t.Fatalf("Load() on empty dir = %v, %v", empty, err)
	}

	want := map[string]string{"https://support.apple.com/en-us/100100": "deadbeef"}
	if err := fs.Save(want); err != nil {
		t.Fatalf("Save() error: %v", err)
	}
	got, err := fs.Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if got["https://support.apple.com/en-us/100100"] != "deadbeef" {
		t.Errorf("Load() = %v, want %v", got, want)
	}
}

func TestLocaleStoreRoundTrip(t *testing.T) {
	dir := t.TempDir()
	ls := NewLocaleStore(dir)

	records := []applecore.SecurityUpdate{
		{ID: 1, Name: "macOS Sequoia 15.1", Target: "macOS Sequoia", Date: "2024-10-28"},
	}
	if err := ls.Save("en-us", records); err != nil {
		t.Fatalf("Save() error: %v", err)
	}

	got, err := ls.Load("en-us")
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if len(got) != 1 || got[0].ID != 1 {
		t.Errorf("Load() = %+v, want %+v", got, records)
	}
}

func TestLocaleStoreLoadMissingLocaleIsEmpty(t *testing.T) {
	dir := t.TempDir()
	ls := NewLocaleStore(dir)

	got, err := ls.Load("nope-nope")
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("Load() for missing locale = %v, want empty", got)
	}
}

func TestTriggerStoreWriteReadDelete(t *testing.T) {
	dir := t.TempDir()
	ts := NewTriggerStore(dir)

	if _, ok := ts.Read(); ok {
		t.Fatalf("Read() before Write() reported ok")
	}

	trigger := applecore.Trigger{"en-us": {6}}
	if err := ts.Write(trigger); err != nil {
		t.Fatalf("Write() error: %v", err)
	}

	got, ok := ts.Read()
	if !ok {
		t.Fatalf("Read() after Write() reported not ok")
	}
	if len(got["en-us"]) != 1 || got["en-us"][0] != 6 {
		t.Errorf("Read() = %v, want %v", got, trigger)
	}

	if err := ts.Delete(); err != nil {
		t.Fatalf("Delete() error: %v", err)
	}
	if _, ok := ts.Read(); ok {
		t.Fatalf("Read() after Delete() reported ok")
	}

	// Deleting again must be a no-op, not an error.
	if err := ts.Delete(); err != nil {
		t.Fatalf("second Delete() error: %v", err)
	}
}

func TestSubscriberStoreUpsertAndDeactivate(t *testing.T) {
	dir := t.TempDir()
	ss := NewSubscriberStore(dir)

	sub := &applecore.Subscriber{ChatID: 42, Locale: "en-us", UILang: "en-us", Active: true}
	if err := ss.Upsert(sub); err != nil {
		t.Fatalf("Upsert() error: %v", err)
	}

	got, ok, err := ss.ByChatID(42)
	if err != nil || !ok {
		t.Fatalf("ByChatID() = %v, %v, %v", got, ok, err)
	}
	if !got.Active {
		t.Errorf("subscriber should be active after Upsert()")
	}

	if err := ss.Deactivate(42); err != nil {
		t.Fatalf("Deactivate() error: %v", err)
	}
	got, _, _ = ss.ByChatID(42)
	if got.Active {
		t.Errorf("subscriber should be inactive after Deactivate()")
	}

	all, err := ss.All()
	if err != nil || len(all) != 1 {
		t.Fatalf("All() = %v, %v", all, err)
	}
}

func TestDeliveryLedgerRecordAndQuery(t *testing.T) {
	dir := t.TempDir()
	dl := NewDeliveryLedger(dir)

	delivered, err := dl.Delivered(42, "en-us")
	if err != nil || len(delivered) != 0 {
		t.Fatalf("Delivered() on empty ledger = %v, %v", delivered, err)
	}

	if err := dl.Record(42, "en-us", 6); err != nil {
		t.Fatalf("Record() error: %v", err)
	}
	// Recording the same id twice must not duplicate it.
	if err := dl.Record(42, "en-us", 6); err != nil {
		t.Fatalf("second Record() error: %v", err)
	}

	delivered, err = dl.Delivered(42, "en-us")
	if err != nil {
		t.Fatalf("Delivered() error: %v", err)
	}
	if len(delivered) != 1 || !delivered[6] {
		t.Errorf("Delivered() = %v, want {6: true}", delivered)
	}

	// A different locale must not see the delivery.
	otherLocale, _ := dl.Delivered(42, "es-es")
	if len(otherLocale) != 0 {
		t.Errorf("Delivered() for unrelated locale = %v, want empty", otherLocale)
	}
}
