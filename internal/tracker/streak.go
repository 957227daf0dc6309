package tracker

import (
	"sort"

	"github.com/sandeepkv93/wird/internal/model"
)

// ComputeStreak walks records in ascending date order. A fully completed
// day extends the streak, an incomplete past day resets it and an
// incomplete today leaves it alone so the user can still finish. A date
// with no record counts as an incomplete day, so a gap before today breaks
// the streak.
func ComputeStreak(records []model.DailyRecord, today model.Date) int {
	current := 0
	var prev model.Date
	for _, rec := range sortedRecords(records) {
		if !prev.IsZero() && missedBefore(prev, rec.Date, today) {
			current = 0
		}
		switch {
		case rec.Complete():
			current++
		case rec.Date.Before(today):
			current = 0
		}
		prev = rec.Date
	}
	if !prev.IsZero() && missedBefore(prev, today.AddDays(1), today) {
		current = 0
	}
	return current
}

// missedBefore reports whether a day strictly between prev and next is
// missing and falls before today.
func missedBefore(prev, next, today model.Date) bool {
	first := prev.AddDays(1)
	return first.Before(next) && first.Before(today)
}

// LongestStreak is the longest run of complete days, counting only
// consecutive calendar dates.
func LongestStreak(records []model.DailyRecord) int {
	longest, run := 0, 0
	var prev model.Date
	for _, rec := range sortedRecords(records) {
		if !rec.Complete() {
			run = 0
			continue
		}
		if run > 0 && !prev.AddDays(1).Equal(rec.Date) {
			run = 0
		}
		run++
		prev = rec.Date
		if run > longest {
			longest = run
		}
	}
	return longest
}

// DayCell is one column of the weekly grid.
type DayCell struct {
	Date        model.Date
	MorningDone bool
	EveningDone bool
	Today       bool
}

// WeekGrid returns the seven days ending at today. Days with no record are
// reported as not done.
func WeekGrid(records []model.DailyRecord, today model.Date) []DayCell {
	byDate := make(map[model.Date]model.DailyRecord, len(records))
	for _, rec := range records {
		byDate[rec.Date] = rec
	}
	out := make([]DayCell, 0, 7)
	for i := 6; i >= 0; i-- {
		d := today.AddDays(-i)
		rec := byDate[d]
		out = append(out, DayCell{
			Date:        d,
			MorningDone: rec.MorningDone,
			EveningDone: rec.EveningDone,
			Today:       i == 0,
		})
	}
	return out
}

func sortedRecords(records []model.DailyRecord) []model.DailyRecord {
	out := make([]model.DailyRecord, len(records))
	copy(out, records)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Date.Before(out[j].Date)
	})
	return out
}
