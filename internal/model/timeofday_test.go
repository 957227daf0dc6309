package model

import (
	"errors"
	"testing"
	"time"
)

func TestParseTimeOfDay(t *testing.T) {
	got, err := ParseTimeOfDay("05:30")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if got != DefaultMorningTime || got.String() != "05:30" {
		t.Fatalf("unexpected time of day: %+v", got)
	}
	for _, raw := range []string{"24:00", "12:60", "noon", "1230", ""} {
		if _, err := ParseTimeOfDay(raw); !errors.Is(err, ErrInvalidTimeOfDay) {
			t.Fatalf("expected ErrInvalidTimeOfDay for %q, got %v", raw, err)
		}
	}
}

func TestTimeOfDayNextAfter(t *testing.T) {
	at := TimeOfDay{Hour: 16, Minute: 30}
	from := time.Date(2026, 2, 9, 10, 0, 0, 0, time.UTC)
	if got := at.NextAfter(from); got.Format("2006-01-02 15:04") != "2026-02-09 16:30" {
		t.Fatalf("expected same day, got %s", got)
	}

	from = time.Date(2026, 2, 9, 16, 30, 0, 0, time.UTC)
	if got := at.NextAfter(from); got.Format("2006-01-02 15:04") != "2026-02-10 16:30" {
		t.Fatalf("expected next day when equal, got %s", got)
	}

	from = time.Date(2026, 12, 31, 23, 0, 0, 0, time.UTC)
	if got := at.NextAfter(from); got.Format("2006-01-02 15:04") != "2027-01-01 16:30" {
		t.Fatalf("expected year rollover, got %s", got)
	}
}
