package storage

import (
	"time"

	"github.com/sandeepkv93/wird/internal/model"
)

// Reminder is an installed reminder row.
type Reminder struct {
	ID        string
	Routine   string
	Hour      int
	Minute    int
	Title     string
	Body      string
	CreatedAt time.Time
}

func (r Reminder) Model() model.Reminder {
	return model.Reminder{
		ID:      r.ID,
		Routine: model.RoutineType(r.Routine),
		At:      model.TimeOfDay{Hour: r.Hour, Minute: r.Minute},
		Title:   r.Title,
		Body:    r.Body,
	}
}

type RecordListFilter struct {
	From  model.Date
	To    model.Date
	Limit int
}
