// Package scraper fetches and parses Apple's security-releases pages: the
// canonical locale index and each locale's releases table (spec §4.1, §4.2).
package scraper

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	retry "github.com/codeGROOVE-dev/retry-go"
)

// localeCodePattern matches a genuine language-region hreflang tag like
// "en-us" or "zh-hans-cn". It excludes bare language tags ("en") and
// meta-values like "x-default" that Apple's index page sometimes carries
// alongside the real locale links.
var localeCodePattern = regexp.MustCompile(`^[a-z]{2,3}-[a-z]{2}`)

const (
	userAgent    = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/131.0.0.0 Safari/537.36"
	fetchTimeout = 30 * time.Second
)

// HTTPStatusError is returned when a fetch completes with a non-200 status.
type HTTPStatusError struct {
	URL        string
	StatusCode int
}

func (e *HTTPStatusError) Error() string {
	return fmt.Sprintf("HTTP %d fetching %s", e.StatusCode, e.URL)
}

// Client fetches Apple's pages over HTTP with Chrome-like headers, a bounded
// deadline, and retry-with-backoff, exactly as the rest of this codebase's
// lineage fetches pages it doesn't control.
type Client struct {
	http   *http.Client
	logger *slog.Logger
}

// New creates a fetch client. httpClient may be nil to use http.DefaultClient.
func New(httpClient *http.Client, logger *slog.Logger) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{http: httpClient, logger: logger}
}

// IndexLocales fetches the canonical locale index at indexURL and extracts
// every `<link rel="alternate" hreflang="xx-yy">` entry, keyed by locale tag,
// values resolved to absolute URLs (spec §4.1).
func (c *Client) IndexLocales(ctx context.Context, indexURL string) (map[string]string, error) {
	body, err := c.fetch(ctx, indexURL)
	if err != nil {
		return nil, err
	}
	defer body.Close()

	doc, err := goquery.NewDocumentFromReader(body)
	if err != nil {
		return nil, fmt.Errorf("parse index page: %w", err)
	}

	base, err := url.Parse(indexURL)
	if err != nil {
		return nil, fmt.Errorf("parse index base url: %w", err)
	}

	locales := make(map[string]string)
	doc.Find(`link[rel="alternate"]`).Each(func(_ int, sel *goquery.Selection) {
		code, hasCode := sel.Attr("hreflang")
		href, hasHref := sel.Attr("href")
		if !hasCode || !hasHref || code == "" || href == "" {
			return
		}
		code = strings.ToLower(code)
		if !localeCodePattern.MatchString(code) {
			c.logger.Warn("skipping hreflang that does not look like a locale code", "hreflang", code)
			return
		}
		resolved := resolve(base, href)
		if prior, seen := locales[code]; seen && prior != resolved {
			c.logger.Warn("duplicate hreflang with differing url, last occurrence wins",
				"locale", code, "prior_url", prior, "new_url", resolved)
		}
		locales[code] = resolved
	})
	return locales, nil
}

func resolve(base *url.URL, href string) string {
	if strings.HasPrefix(href, "http") {
		return href
	}
	ref, err := url.Parse(href)
	if err != nil {
		return href
	}
	return base.ResolveReference(ref).String()
}

// fetch performs a GET with retry/backoff and returns the body, unread.
// Callers must close the returned ReadCloser.
func (c *Client) fetch(ctx context.Context, target string) (io.ReadCloser, error) {
	var body io.ReadCloser

	err := retry.Do(
		func() error {
			reqCtx, cancel := context.WithTimeout(ctx, fetchTimeout)
			defer cancel()

			req, err := http.NewRequestWithContext(reqCtx, http.MethodGet, target, http.NoBody)
			if err != nil {
				return retry.Unrecoverable(fmt.Errorf("create request: %w", err))
			}
			setHeaders(req)

			resp, err := c.http.Do(req)
			if err != nil {
				c.logger.Warn("fetch failed, will retry", "url", target, "error", err)
				return err
			}

			if resp.StatusCode != http.StatusOK {
				resp.Body.Close()
				statusErr := &HTTPStatusError{URL: target, StatusCode: resp.StatusCode}
				c.logger.Warn("fetch returned non-200 status", "url", target, "status", resp.StatusCode)
				return statusErr
			}

			buf, err := io.ReadAll(resp.Body)
			resp.Body.Close()
			if err != nil {
				return fmt.Errorf("read body: %w", err)
			}
			body = io.NopCloser(strings.NewReader(string(buf)))
			return nil
		},
		retry.Attempts(5),
		retry.Delay(time.Second),
		retry.MaxDelay(30*time.Second),
		retry.MaxJitter(2*time.Second),
		retry.Context(ctx),
		retry.OnRetry(func(n uint, err error) {
			c.logger.Info("retrying fetch", "attempt", n, "url", target, "error", err)
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", target, err)
	}
	return body, nil
}

func setHeaders(req *http.Request) {
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")
	req.Header.Set("Cache-Control", "max-age=0")
}
