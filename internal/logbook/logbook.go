package logbook

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// Logbook persists client activity to a log file under the data directory.
// The TUI tails it for the log panel, and every outbound HTTP exchange is
// recorded here for diagnostics.
type Logbook struct {
	path string
	file *os.File
	log  zerolog.Logger
	mu   sync.Mutex
}

// New creates a logbook that writes to the provided path.
func New(path string) (*Logbook, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("logbook: ensure log dir: %w", err)
	}
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("logbook: open log file: %w", err)
	}
	writer := zerolog.ConsoleWriter{
		Out:        file,
		NoColor:    true,
		TimeFormat: time.RFC3339,
	}
	logger := zerolog.New(writer).With().Timestamp().Logger()
	return &Logbook{path: path, file: file, log: logger}, nil
}

// Path returns the file backing this logbook.
func (l *Logbook) Path() string {
	if l == nil {
		return ""
	}
	return l.path
}

// Close releases the underlying file handle.
func (l *Logbook) Close() error {
	if l == nil || l.file == nil {
		return nil
	}
	return l.file.Close()
}

// Info appends an informational entry.
func (l *Logbook) Info(format string, args ...any) {
	if l == nil {
		return
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.log.Info().Msg(strings.TrimSpace(fmt.Sprintf(format, args...)))
}

// Warn appends a warning entry.
func (l *Logbook) Warn(format string, args ...any) {
	if l == nil {
		return
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.log.Warn().Msg(strings.TrimSpace(fmt.Sprintf(format, args...)))
}

// Error appends an error entry.
func (l *Logbook) Error(format string, args ...any) {
	if l == nil {
		return
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.log.Error().Msg(strings.TrimSpace(fmt.Sprintf(format, args...)))
}

// Request records one outbound HTTP exchange.
func (l *Logbook) Request(method, path, requestID string, status int, elapsed time.Duration, err error) {
	if l == nil {
		return
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	event := l.log.Info()
	if err != nil || status >= 400 {
		event = l.log.Warn()
	}
	if err != nil {
		event = event.Err(err)
	}
	event.
		Str("method", method).
		Str("path", path).
		Str("request_id", requestID).
		Int("status", status).
		Dur("elapsed", elapsed).
		Msg("api request")
}

// Tail returns up to maxLines of the most recent log entries.
func (l *Logbook) Tail(maxLines int) []string {
	if l == nil || maxLines <= 0 {
		return nil
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	file, err := os.Open(l.path)
	if err != nil {
		return nil
	}
	defer file.Close()

	var lines []string
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
	}
	if len(lines) == 0 {
		return nil
	}
	if len(lines) > maxLines {
		lines = lines[len(lines)-maxLines:]
	}
	return lines
}
