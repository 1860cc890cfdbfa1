// Package config loads and validates config.json (spec §6).
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"regexp"
)

var tokenPattern = regexp.MustCompile(`^[0-9]{8,10}:[A-Za-z0-9_-]{35,}$`)

// Config is the fixed schema of config.json. Three fields, kept flat: too
// small a surface to justify a layered config-management library.
type Config struct {
	Version          string `json:"version"`
	AppleUpdatesURL  string `json:"apple_updates_url"`
	TelegramBotToken string `json:"telegram_bot_token"`
}

// InvalidTokenError is returned when the configured Telegram bot token
// doesn't match the expected `<digits>:<secret>` shape. Callers exit with a
// distinct, non-zero status for this case (spec §6).
type InvalidTokenError struct{}

func (InvalidTokenError) Error() string {
	return "telegram_bot_token does not match the expected format"
}

// Load reads and validates the config file at path.
func Load(path string) (*Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var cfg Config
	if err := json.Unmarshal(raw, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	if !tokenPattern.MatchString(cfg.TelegramBotToken) {
		return nil, InvalidTokenError{}
	}
	if cfg.AppleUpdatesURL == "" {
		return nil, fmt.Errorf("config: apple_updates_url is required")
	}

	return &cfg, nil
}
