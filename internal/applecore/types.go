// Package applecore contains the core domain types shared by the monitor
// and the bot: locales, security updates, subscribers, and the trigger
// document that hands new releases from one process to the other.
package applecore

import "time"

// SentinelDate is stored in place of a date that could not be parsed from
// the locale's human-readable grammar (spec §7, date-parse-failure).
const SentinelDate = "0000-00-00"

// SecurityUpdate is one row parsed from a locale's releases table.
type SecurityUpdate struct {
	Name   string `json:"name"`
	URL    string `json:"url,omitempty"`
	Target string `json:"target"`
	Date   string `json:"date"`
	ID     int    `json:"id"`
}

// ContentKey is the tuple that identifies a SecurityUpdate across fetches,
// independent of its assigned id.
type ContentKey struct {
	Name   string
	Target string
	Date   string
}

// Key returns the content-identity of u.
func (u SecurityUpdate) Key() ContentKey {
	return ContentKey{Name: u.Name, Target: u.Target, Date: u.Date}
}

// Locale is an Apple-published locale, identified by an `xx-yy` tag.
type Locale struct {
	Code        string
	URL         string
	DisplayName string
}

// Subscriber is a Telegram chat subscribed to notifications for one locale.
type Subscriber struct {
	Since    time.Time `json:"since"`
	ChatID   int64     `json:"chat_id"`
	Locale   string    `json:"locale"`
	UILang   string    `json:"ui_lang"`
	Active   bool      `json:"active"`
}

// Trigger enumerates the update ids newly observed in the monitor's most
// recent tick, keyed by locale. It is the sole inter-process handoff
// document (spec §4.4, §4.8): single producer (monitor), single consumer
// (bot), created then consumed then deleted.
type Trigger map[string][]int
