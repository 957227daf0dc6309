package model

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

var ErrInvalidTimeOfDay = errors.New("model: invalid time of day")

var (
	DefaultMorningTime = TimeOfDay{Hour: 5, Minute: 30}
	DefaultEveningTime = TimeOfDay{Hour: 16, Minute: 30}
)

// TimeOfDay is a wall-clock hour and minute with no date attached.
type TimeOfDay struct {
	Hour   int
	Minute int
}

func ParseTimeOfDay(raw string) (TimeOfDay, error) {
	parts := strings.Split(strings.TrimSpace(raw), ":")
	if len(parts) != 2 {
		return TimeOfDay{}, fmt.Errorf("%w: %q", ErrInvalidTimeOfDay, raw)
	}
	h, err := strconv.Atoi(parts[0])
	if err != nil {
		return TimeOfDay{}, fmt.Errorf("%w: %q", ErrInvalidTimeOfDay, raw)
	}
	m, err := strconv.Atoi(parts[1])
	if err != nil {
		return TimeOfDay{}, fmt.Errorf("%w: %q", ErrInvalidTimeOfDay, raw)
	}
	out := TimeOfDay{Hour: h, Minute: m}
	if err := out.Validate(); err != nil {
		return TimeOfDay{}, err
	}
	return out, nil
}

func (t TimeOfDay) Validate() error {
	if t.Hour < 0 || t.Hour > 23 || t.Minute < 0 || t.Minute > 59 {
		return fmt.Errorf("%w: %02d:%02d", ErrInvalidTimeOfDay, t.Hour, t.Minute)
	}
	return nil
}

func (t TimeOfDay) String() string {
	return fmt.Sprintf("%02d:%02d", t.Hour, t.Minute)
}

// On returns the instant t occurs on date d in loc.
func (t TimeOfDay) On(d Date, loc *time.Location) time.Time {
	if loc == nil {
		loc = time.Local
	}
	return time.Date(d.Year, d.Month, d.Day, t.Hour, t.Minute, 0, 0, loc)
}

// NextAfter returns the first occurrence of t strictly after from, in from's
// location. Day stepping goes through the calendar so DST shifts keep the
// wall-clock time.
func (t TimeOfDay) NextAfter(from time.Time) time.Time {
	day := DateOf(from)
	candidate := t.On(day, from.Location())
	if !candidate.After(from) {
		candidate = t.On(day.AddDays(1), from.Location())
	}
	return candidate
}
