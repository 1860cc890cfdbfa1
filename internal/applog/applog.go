// Package applog sets up the JSON structured logger both processes share
// and supports the monitor's `--log` flag (spec §6): replay the last N
// lines of the persisted log file.
package applog

import (
	"bufio"
	"fmt"
	"io"
	"log/slog"
	"os"
)

// New creates a slog.Logger that writes JSON records to both stdout and
// path, mirroring the teacher's `slog.New(slog.NewJSONHandler(...))` setup
// in main.go, extended with a file sink so `--log` has something to read.
func New(path string) (*slog.Logger, error) {
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open log file %s: %w", path, err)
	}
	handler := slog.NewJSONHandler(io.MultiWriter(os.Stdout, f), &slog.HandlerOptions{Level: slog.LevelInfo})
	return slog.New(handler), nil
}

// Tail returns the last n lines of the log file at path, oldest first.
func Tail(path string, n int) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open log file %s: %w", path, err)
	}
	defer f.Close()

	var lines []string
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
		if len(lines) > n {
			lines = lines[1:]
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan log file %s: %w", path, err)
	}
	return lines, nil
}
