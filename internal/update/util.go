package update

import (
	"fmt"
	"time"
)

func levelFromError(isErr bool) string {
	if isErr {
		return "error"
	}
	return "info"
}

func doneText(done bool) string {
	if done {
		return "done"
	}
	return "-"
}

func pluralTimes(n int) string {
	return fmt.Sprintf("%d times", n)
}

func progressRatio(done, required int) float64 {
	if required <= 0 {
		return 0
	}
	r := float64(done) / float64(required)
	if r > 1 {
		return 1
	}
	return r
}

// untilNextMinute is the delay to the next wall-clock minute boundary.
func untilNextMinute(now time.Time) time.Duration {
	next := now.Truncate(time.Minute).Add(time.Minute)
	return next.Sub(now)
}
