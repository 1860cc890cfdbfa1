package scraper

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
)

const sampleIndexPage = `<!DOCTYPE html>
<html><head>
<link rel="alternate" hreflang="en-us" href="https://support.apple.com/en-us/100100">
<link rel="alternate" hreflang="es-es" href="/es-es/100100">
<link rel="canonical" href="https://support.apple.com/en-us/100100">
</head><body></body></html>`

func newTestClient(t *testing.T, handler http.HandlerFunc) (*Client, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return New(srv.Client(), slog.New(slog.NewTextHandler(io.Discard, nil))), srv
}

func TestIndexLocalesExtractsAndResolvesLinks(t *testing.T) {
	client, srv := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(sampleIndexPage))
	})

	locales, err := client.IndexLocales(context.Background(), srv.URL+"/en-us/100100")
	if err != nil {
		t.Fatalf("IndexLocales() error: %v", err)
	}
	if len(locales) != 2 {
		t.Fatalf("len(locales) = %d, want 2", len(locales))
	}
	if locales["en-us"] != "https://support.apple.com/en-us/100100" {
		t.Errorf("en-us = %q, want absolute passthrough", locales["en-us"])
	}
	if locales["es-es"] != srv.URL+"/es-es/100100" {
		t.Errorf("es-es = %q, want resolved against base %q", locales["es-es"], srv.URL)
	}
}

func TestFetchRetriesOnServerError(t *testing.T) {
	attempts := 0
	client, srv := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		attempts++
		if attempts < 2 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.Write([]byte(sampleIndexPage))
	})

	locales, err := client.IndexLocales(context.Background(), srv.URL)
	if err != nil {
		t.Fatalf("IndexLocales() error after retry: %v", err)
	}
	if attempts < 2 {
		t.Errorf("attempts = %d, want at least 2 (one failure then a retry)", attempts)
	}
	if len(locales) != 2 {
		t.Errorf("len(locales) = %d, want 2 after eventual success", len(locales))
	}
}
