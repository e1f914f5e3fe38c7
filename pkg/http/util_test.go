package http

import (
	"testing"
	"time"
)

func TestParseIntDefault(t *testing.T) {
	if got := ParseIntDefault("25", 100); got != 25 {
		t.Fatalf("expected 25, got %d", got)
	}
	if got := ParseIntDefault("", 100); got != 100 {
		t.Fatalf("empty input: expected default 100, got %d", got)
	}
	if got := ParseIntDefault("abc", 100); got != 100 {
		t.Fatalf("invalid input: expected default 100, got %d", got)
	}
}

func TestParseTimeDefault(t *testing.T) {
	def := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

	got := ParseTimeDefault("2025-06-01T12:00:00Z", def)
	if got.Equal(def) {
		t.Fatal("valid RFC3339 input must not fall back to default")
	}

	if got := ParseTimeDefault("not-a-time", def); !got.Equal(def) {
		t.Fatalf("invalid input: expected default, got %v", got)
	}
}

func TestParseTimeUnixSeconds(t *testing.T) {
	got, ok := ParseTime("1700000000")
	if !ok {
		t.Fatal("unix seconds input not parsed")
	}
	if got.Unix() != 1700000000 {
		t.Fatalf("expected unix 1700000000, got %d", got.Unix())
	}
}
