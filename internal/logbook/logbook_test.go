package logbook

import (
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestTailReturnsRecentLinesAndTotal(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "journey.log")
	book, err := New(path)
	if err != nil {
		t.Fatalf("new logbook: %v", err)
	}
	for i := 0; i < 5; i++ {
		book.Info("entry-%d", i)
	}
	lines, total := book.Tail(3)
	if total != 5 {
		t.Fatalf("total lines = %d, want 5", total)
	}
	if len(lines) != 3 {
		t.Fatalf("len(lines) = %d, want 3", len(lines))
	}
	for idx, want := range []string{"entry-2", "entry-3", "entry-4"} {
		if !strings.Contains(lines[idx], want) {
			t.Fatalf("line %d = %q, missing %s", idx, lines[idx], want)
		}
	}
}

func TestTailMissingFile(t *testing.T) {
	book, err := New(filepath.Join(t.TempDir(), "logs", "journey.log"))
	if err != nil {
		t.Fatal(err)
	}
	lines, total := book.Tail(8)
	if lines != nil || total != 0 {
		t.Fatalf("expected empty tail, got %v / %d", lines, total)
	}
}

func TestRecentParsesLevels(t *testing.T) {
	book, err := New(filepath.Join(t.TempDir(), "journey.log"))
	if err != nil {
		t.Fatal(err)
	}
	fixed := time.Date(2026, 10, 16, 9, 0, 0, 0, time.UTC)
	book.clock = func() time.Time { return fixed }
	book.Info("Loaded %d department(s)", 3)
	book.Warn("slow response")
	book.Error("Error scheduling meeting:\n  boom")

	entries := book.Recent(10)
	if len(entries) != 3 {
		t.Fatalf("len(entries) = %d, want 3", len(entries))
	}
	want := []Entry{
		{Time: fixed, Level: LevelInfo, Message: "Loaded 3 department(s)"},
		{Time: fixed, Level: LevelWarn, Message: "slow response"},
		{Time: fixed, Level: LevelError, Message: "Error scheduling meeting: boom"},
	}
	for i := range want {
		if !entries[i].Time.Equal(want[i].Time) || entries[i].Level != want[i].Level || entries[i].Message != want[i].Message {
			t.Fatalf("entry %d = %+v, want %+v", i, entries[i], want[i])
		}
	}
}

func TestParseLineFallback(t *testing.T) {
	got := ParseLine("garbage without a timestamp")
	if got.Level != LevelInfo || got.Message != "garbage without a timestamp" {
		t.Fatalf("unexpected fallback %+v", got)
	}
}
