package news

import (
	"testing"

	"TradePulse/internal/domain/models"
)

func TestScorePositive(t *testing.T) {
	p, crisis := Score("Bitcoin breakout continues as adoption grows")
	if crisis {
		t.Fatal("unexpected crisis flag")
	}
	if p <= 0 {
		t.Fatalf("expected positive polarity, got %v", p)
	}
}

func TestScoreNegative(t *testing.T) {
	p, crisis := Score("Markets plunge after regulator warning")
	if crisis {
		t.Fatal("unexpected crisis flag")
	}
	if p >= 0 {
		t.Fatalf("expected negative polarity, got %v", p)
	}
}

func TestScoreCrisisOverridesPositives(t *testing.T) {
	p, crisis := Score("Exchange hacked despite record growth and rally")
	if !crisis {
		t.Fatal("expected crisis flag")
	}
	if p != -1.0 {
		t.Fatalf("crisis polarity must be -1, got %v", p)
	}
}

func TestScoreNeutral(t *testing.T) {
	p, crisis := Score("Weekly market report published")
	if crisis || p != 0 {
		t.Fatalf("expected neutral, got %v crisis=%v", p, crisis)
	}
}

func TestSummarize(t *testing.T) {
	headlines := []models.Headline{
		{Title: "a", Polarity: 0.5},
		{Title: "b", Polarity: -1.0, IsCrisis: true},
		{Title: "c", Polarity: 0},
	}
	s := Summarize(headlines)
	if s.CrisisAlerts != 1 {
		t.Fatalf("crisis alerts %d", s.CrisisAlerts)
	}
	want := (0.5 - 1.0) / 3
	if s.Score != want {
		t.Fatalf("score %v, want %v", s.Score, want)
	}
	if s.Overall != "negative" {
		t.Fatalf("overall %s", s.Overall)
	}
}

func TestSummarizeEmpty(t *testing.T) {
	s := Summarize(nil)
	if s.Score != 0 || s.Overall != "neutral" {
		t.Fatalf("empty summary not neutral: %+v", s)
	}
}

func TestBaseAsset(t *testing.T) {
	if got := baseAsset("ETHUSDT"); got != "ETH" {
		t.Fatalf("got %s", got)
	}
	if got := baseAsset(""); got != "BTC" {
		t.Fatalf("got %s", got)
	}
}
