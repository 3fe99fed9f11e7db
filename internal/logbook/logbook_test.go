package logbook

import (
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestTailReturnsRecentLines(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "lonboard.log")
	book, err := New(path)
	if err != nil {
		t.Fatalf("new logbook: %v", err)
	}
	defer book.Close()
	for i := 0; i < 5; i++ {
		book.Info("entry-%d", i)
	}
	lines := book.Tail(3)
	if len(lines) != 3 {
		t.Fatalf("len(lines) = %d, want 3", len(lines))
	}
	for idx, want := range []string{"entry-2", "entry-3", "entry-4"} {
		if !strings.Contains(lines[idx], want) {
			t.Fatalf("line %d = %q, missing %s", idx, lines[idx], want)
		}
	}
}

func TestRequestEntryCarriesDiagnostics(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "lonboard.log")
	book, err := New(path)
	if err != nil {
		t.Fatalf("new logbook: %v", err)
	}
	defer book.Close()
	book.Request("GET", "/api/projects/", "req-1", 200, 40*time.Millisecond, nil)
	book.Request("POST", "/api/tasks/", "req-2", 0, time.Millisecond, errors.New("connection refused"))
	lines := book.Tail(10)
	if len(lines) != 2 {
		t.Fatalf("len(lines) = %d, want 2", len(lines))
	}
	if !strings.Contains(lines[0], "/api/projects/") || !strings.Contains(lines[0], "req-1") {
		t.Fatalf("first line missing request fields: %q", lines[0])
	}
	if !strings.Contains(lines[1], "connection refused") {
		t.Fatalf("transport error not recorded: %q", lines[1])
	}
}
