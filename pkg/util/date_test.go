package util

import (
	"strconv"
	"testing"
	"time"
)

func TestParseTimeRFC3339(t *testing.T) {
	s := "2025-08-10T10:10:10Z"
	got, ok := ParseTime(s)
	if !ok {
		t.Fatalf("expected ok")
	}
	if got.UTC().Format(time.RFC3339) != s {
		t.Fatalf("unexpected time %v", got)
	}
}

func TestParseTimeUnix(t *testing.T) {
	ts := time.Date(2025, 8, 10, 10, 10, 10, 0, time.UTC).Unix()
	got, ok := ParseTime(strconv.FormatInt(ts, 10))
	if !ok {
		t.Fatalf("expected ok")
	}
	if got.Unix() != ts {
		t.Fatalf("unexpected unix %v", got.Unix())
	}
}

func TestSameDay(t *testing.T) {
	a := time.Date(2025, 8, 10, 1, 0, 0, 0, time.UTC)
	b := time.Date(2025, 8, 10, 23, 59, 0, 0, time.UTC)
	if !SameDay(a, b) {
		t.Fatalf("expected same day")
	}
	if SameDay(a, b.Add(time.Minute)) {
		t.Fatalf("expected day rollover")
	}
}

func TestAlignTime(t *testing.T) {
	ts := time.Date(2025, 8, 10, 13, 47, 12, 0, time.UTC)
	if got := AlignTime(ts, "1h"); got.Minute() != 0 || got.Hour() != 13 {
		t.Fatalf("unexpected alignment %v", got)
	}
	if got := AlignTime(ts, "15m"); got.Minute() != 45 {
		t.Fatalf("unexpected alignment %v", got)
	}
}
