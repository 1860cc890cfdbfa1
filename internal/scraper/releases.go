package scraper

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"crazyones/internal/applecore"
	"crazyones/internal/dateparse"
)

// ErrUnchanged is returned by FetchReleases when the page's body fingerprint
// matches priorFingerprint: the caller should skip parsing entirely (spec
// §4.2).
var ErrUnchanged = fmt.Errorf("page unchanged since last fingerprint")

// FetchReleases fetches pageURL, and if its SHA-256 fingerprint differs from
// priorFingerprint, parses its releases table. Returns the parsed records,
// the new fingerprint, and ErrUnchanged (wrapping nothing else) when the
// fingerprint is identical; callers check errors.Is(err, ErrUnchanged).
func (c *Client) FetchReleases(ctx context.Context, pageURL, priorFingerprint string) ([]applecore.SecurityUpdate, string, error) {
	body, err := c.fetch(ctx, pageURL)
	if err != nil {
		return nil, "", err
	}
	defer body.Close()

	raw, err := io.ReadAll(body)
	if err != nil {
		return nil, "", fmt.Errorf("read page body: %w", err)
	}

	digest := sha256.Sum256(raw)
	fingerprint := hex.EncodeToString(digest[:])
	if fingerprint == priorFingerprint {
		return nil, fingerprint, ErrUnchanged
	}

	updates, err := parseReleasesTable(raw, pageURL)
	if err != nil {
		return nil, "", fmt.Errorf("parse releases table: %w", err)
	}
	return updates, fingerprint, nil
}

// parseReleasesTable locates the security-updates table and extracts every
// data row's name (+ optional deep link), target, and date (spec §4.2). The
// table is found by column shape rather than by locale-specific header text,
// since the header copy varies per locale while the structure doesn't.
func parseReleasesTable(html []byte, pageURL string) ([]applecore.SecurityUpdate, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(string(html)))
	if err != nil {
		return nil, err
	}

	base, err := url.Parse(pageURL)
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}

	table := findReleasesTable(doc)
	if table == nil {
		return nil, fmt.Errorf("no releases table found")
	}

	var updates []applecore.SecurityUpdate
	table.Find("tr").Each(func(_ int, row *goquery.Selection) {
		if row.Find("th").Length() > 0 {
			return
		}
		cells := row.Find("td")
		if cells.Length() < 3 {
			return
		}

		nameCell := cells.Eq(0)
		name := strings.TrimSpace(nameCell.Text())
		if name == "" {
			return
		}

		var deepLink string
		if href, ok := nameCell.Find("a").First().Attr("href"); ok && href != "" {
			deepLink = resolve(base, href)
		}

		target := strings.TrimSpace(cells.Eq(1).Text())
		rawDate := strings.TrimSpace(cells.Eq(2).Text())

		updates = append(updates, applecore.SecurityUpdate{
			Name:   name,
			URL:    deepLink,
			Target: target,
			Date:   dateparse.ParseToISO(rawDate),
		})
	})

	if len(updates) == 0 {
		return nil, fmt.Errorf("releases table had no data rows")
	}
	return updates, nil
}

// findReleasesTable identifies the table whose rows look like
// (name[+link], target, date): at least one data row with three-or-more
// cells and no header cells. Apple's markup puts exactly one such table per
// page, immediately following the "security updates" heading, but matching
// on shape rather than the heading's (locale-dependent) text is more
// robust.
func findReleasesTable(doc *goquery.Document) *goquery.Selection {
	var found *goquery.Selection
	doc.Find("table").EachWithBreak(func(_ int, table *goquery.Selection) bool {
		dataRows := 0
		table.Find("tr").Each(func(_ int, row *goquery.Selection) {
			if row.Find("th").Length() > 0 {
				return
			}
			if row.Find("td").Length() >= 3 {
				dataRows++
			}
		})
		if dataRows > 0 {
			sel := table
			found = sel
			return false
		}
		return true
	})
	return found
}
