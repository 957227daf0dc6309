package model

import (
	"errors"
	"fmt"
	"time"
)

var ErrInvalidRoutine = errors.New("model: invalid routine type")

type RoutineType string

const (
	RoutineMorning RoutineType = "morning"
	RoutineEvening RoutineType = "evening"
)

// RoutineTypes lists every routine in display order.
var RoutineTypes = []RoutineType{RoutineMorning, RoutineEvening}

func (r RoutineType) IsValid() bool {
	switch r {
	case RoutineMorning, RoutineEvening:
		return true
	default:
		return false
	}
}

func ParseRoutineType(raw string) (RoutineType, error) {
	r := RoutineType(raw)
	if !r.IsValid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidRoutine, raw)
	}
	return r, nil
}

// DailyRecord is the durable completion state of one calendar day.
type DailyRecord struct {
	Date        Date      `json:"date"`
	MorningDone bool      `json:"morning_done"`
	EveningDone bool      `json:"evening_done"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func (r DailyRecord) Done(routine RoutineType) bool {
	switch routine {
	case RoutineMorning:
		return r.MorningDone
	case RoutineEvening:
		return r.EveningDone
	default:
		return false
	}
}

// Complete reports whether both routines were finished on the day.
func (r DailyRecord) Complete() bool {
	return r.MorningDone && r.EveningDone
}

func (r DailyRecord) Validate() error {
	if r.Date.IsZero() {
		return errors.New("model: record date is required")
	}
	if r.Date.Month < time.January || r.Date.Month > time.December || r.Date.Day < 1 || r.Date.Day > 31 {
		return fmt.Errorf("%w: %s", ErrInvalidDate, r.Date)
	}
	if !NewDate(r.Date.Year, r.Date.Month, r.Date.Day).Equal(r.Date) {
		return fmt.Errorf("%w: %s", ErrInvalidDate, r.Date)
	}
	return nil
}
