package clock

import (
	"time"

	"github.com/sandeepkv93/wird/internal/model"
)

type Window string

const (
	WindowMorning   Window = "morning"
	WindowAfternoon Window = "afternoon"
	WindowEvening   Window = "evening"
	WindowNight     Window = "night"
)

type windowBounds struct {
	window    Window
	startHour int
	endHour   int
}

var windows = []windowBounds{
	{window: WindowMorning, startHour: 4, endHour: 12},
	{window: WindowAfternoon, startHour: 12, endHour: 17},
	{window: WindowEvening, startHour: 17, endHour: 21},
}

// WindowAt classifies the wall-clock hour of t.
func WindowAt(t time.Time) Window {
	h := t.Hour()
	for _, w := range windows {
		if h >= w.startHour && h < w.endHour {
			return w.window
		}
	}
	return WindowNight
}

// Routine is the routine a user would be prompted for during the window.
// The evening routine stays active from the afternoon through the night.
func (w Window) Routine() model.RoutineType {
	if w == WindowMorning {
		return model.RoutineMorning
	}
	return model.RoutineEvening
}

func (w Window) Greeting() string {
	switch w {
	case WindowMorning:
		return "Good morning"
	case WindowAfternoon:
		return "Good afternoon"
	case WindowEvening:
		return "Good evening"
	default:
		return "Good night"
	}
}
