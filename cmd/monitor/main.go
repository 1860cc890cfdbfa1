// Command monitor runs the periodic multi-locale scraper described in
// spec §2, §4.5: reconcile Apple's locale index, fetch and parse whichever
// locale pages changed, persist the result, and announce new releases via
// the trigger document the bot process consumes.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"crazyones/internal/applog"
	"crazyones/internal/config"
	"crazyones/internal/monitor"
	"crazyones/internal/scraper"
)

// version is the monitor's reported build version (spec §6, --version).
const version = "1.0.0"

// exit codes per spec §6.
const (
	exitOK             = 0
	exitConfigError    = 1
	exitNetworkFailure = 2
	exitInterrupted    = 130
)

// signalContext returns a context canceled on SIGINT or SIGTERM, the same
// shutdown hookup the importer command in the retrieved pack uses.
func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
}

func main() {
	os.Exit(run())
}

func run() int {
	var (
		token    = flag.String("token", "", "Telegram bot token override (carried through config.json; unused by the fetch pipeline itself)")
		url      = flag.String("url", "", "Apple locale-index URL override")
		daemon   = flag.Bool("daemon", false, "run continuously on --interval instead of a single tick")
		interval = flag.Int("interval", int(monitor.DefaultInterval.Seconds()), "tick interval in seconds, when --daemon is set")
		showLog  = flag.Bool("log", false, "print the last 100 log lines and exit")
		showVers = flag.Bool("version", false, "print the version and exit")
	)
	flag.Parse()

	if *showVers {
		fmt.Println(version)
		return exitOK
	}

	dataDir := "data"
	logPath := filepath.Join(dataDir, "monitor.log")

	if *showLog {
		lines, err := applog.Tail(logPath, 100)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return exitConfigError
		}
		for _, line := range lines {
			fmt.Println(line)
		}
		return exitOK
	}

	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		fmt.Fprintln(os.Stderr, fmt.Errorf("create data directory: %w", err))
		return exitConfigError
	}

	logger, err := applog.New(logPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return exitConfigError
	}

	cfg, err := config.Load("config.json")
	if err != nil {
		var invalidToken config.InvalidTokenError
		if errors.As(err, &invalidToken) {
			logger.Error("invalid telegram bot token in config.json", "error", err)
		} else {
			logger.Error("failed to load config.json", "error", err)
		}
		return exitConfigError
	}

	indexURL := cfg.AppleUpdatesURL
	if *url != "" {
		indexURL = *url
	}
	if *token != "" {
		cfg.TelegramBotToken = *token
	}
	if indexURL == "" {
		logger.Error("no apple_updates_url configured")
		return exitConfigError
	}

	ctx, stop := signalContext()
	defer stop()

	client := scraper.New(&http.Client{Timeout: 60 * time.Second}, logger)
	mon := monitor.New(client, dataDir, indexURL, 0, logger)

	if !*daemon {
		tickCtx, cancelTick := monitor.WithShutdownGrace(ctx)
		_, tickErr := mon.Tick(tickCtx)
		cancelTick()
		if tickErr != nil {
			logger.Error("tick failed", "error", tickErr)
			if ctx.Err() != nil {
				return exitInterrupted
			}
			if isNetworkError(tickErr) {
				return exitNetworkFailure
			}
			return exitConfigError
		}
		return exitOK
	}

	sched := monitor.NewScheduler(mon, filepath.Join(dataDir, "monitor.lock"), time.Duration(*interval)*time.Second, logger)
	if err := sched.Run(ctx); err != nil {
		logger.Error("scheduler exited with error", "error", err)
		return exitConfigError
	}
	if ctx.Err() != nil {
		return exitInterrupted
	}
	return exitOK
}

// isNetworkError reports whether err is purely a fetch/transport failure,
// as opposed to a local disk or parse failure (spec §6, exit code 2).
func isNetworkError(err error) bool {
	var httpErr *scraper.HTTPStatusError
	if errors.As(err, &httpErr) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr)
}
