package model

import (
	"errors"
	"fmt"
	"strings"
)

// Item is one remembrance in a routine, recited Repeat times.
type Item struct {
	Title  string `yaml:"title" json:"title"`
	Text   string `yaml:"text" json:"text"`
	Repeat int    `yaml:"repeat" json:"repeat"`
}

// Routine is the fixed ordered item list for one routine type.
type Routine struct {
	Type  RoutineType `json:"type"`
	Items []Item      `json:"items"`
}

// RequiredCount is the number of items that must be marked before the
// routine counts as done for the day.
func (r Routine) RequiredCount() int {
	return len(r.Items)
}

func (r Routine) Validate() error {
	if !r.Type.IsValid() {
		return fmt.Errorf("%w: %q", ErrInvalidRoutine, r.Type)
	}
	if len(r.Items) == 0 {
		return fmt.Errorf("model: %s routine has no items", r.Type)
	}
	for i, item := range r.Items {
		if strings.TrimSpace(item.Title) == "" {
			return fmt.Errorf("model: %s item %d title is required", r.Type, i)
		}
		if item.Repeat <= 0 {
			return fmt.Errorf("model: %s item %d repeat must be positive", r.Type, i)
		}
	}
	return nil
}

var ErrInvalidReminder = errors.New("model: invalid reminder")

// Reminder is an installed daily reminder for a routine.
type Reminder struct {
	ID      string
	Routine RoutineType
	At      TimeOfDay
	Title   string
	Body    string
}

func (r Reminder) Validate() error {
	if strings.TrimSpace(r.ID) == "" {
		return fmt.Errorf("%w: id is required", ErrInvalidReminder)
	}
	if !r.Routine.IsValid() {
		return fmt.Errorf("%w: %q", ErrInvalidRoutine, r.Routine)
	}
	return r.At.Validate()
}
