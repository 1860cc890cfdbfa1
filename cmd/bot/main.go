// Command bot runs the long-lived Telegram notifier: the command
// dispatcher and the trigger watcher described in spec §2, §4.6-§4.9.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"crazyones/internal/applog"
	"crazyones/internal/bot"
	"crazyones/internal/config"
	"crazyones/internal/translate"
)

const version = "1.0.0"

const (
	exitOK          = 0
	exitConfigError = 1
)

func main() {
	os.Exit(run())
}

func run() int {
	var (
		translationsDir = flag.String("translations", "translations", "directory of per-language UI string catalogs")
		showVers        = flag.Bool("version", false, "print the version and exit")
	)
	flag.Parse()

	if *showVers {
		fmt.Println(version)
		return exitOK
	}

	dataDir := "data"
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		fmt.Fprintln(os.Stderr, fmt.Errorf("create data directory: %w", err))
		return exitConfigError
	}

	logger, err := applog.New(filepath.Join(dataDir, "bot.log"))
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return exitConfigError
	}

	cfg, err := config.Load("config.json")
	if err != nil {
		logger.Error("failed to load config.json", "error", err)
		return exitConfigError
	}

	translations, err := translate.Load(*translationsDir, logger)
	if err != nil {
		logger.Error("failed to load translations", "error", err)
		return exitConfigError
	}

	transport, err := bot.NewTelegramTransport(cfg.TelegramBotToken, logger)
	if err != nil {
		logger.Error("failed to create telegram transport", "error", err)
		return exitConfigError
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	b := bot.New(dataDir, transport, translations, logger)
	if err := b.Run(ctx); err != nil {
		logger.Error("bot exited with error", "error", err)
		return exitConfigError
	}
	return exitOK
}
