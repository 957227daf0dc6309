package server

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/sandeepkv93/wird/internal/model"
	"github.com/sandeepkv93/wird/internal/storage"
	"github.com/sandeepkv93/wird/internal/tracker"
)

type recordJSON struct {
	Date        string    `json:"date"`
	MorningDone bool      `json:"morning_done"`
	EveningDone bool      `json:"evening_done"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func toRecordJSON(rec model.DailyRecord) recordJSON {
	return recordJSON{
		Date:        rec.Date.String(),
		MorningDone: rec.MorningDone,
		EveningDone: rec.EveningDone,
		UpdatedAt:   rec.UpdatedAt,
	}
}

func (s *Server) handleListRecords(w http.ResponseWriter, r *http.Request) {
	var filter storage.RecordListFilter
	q := r.URL.Query()
	if raw := q.Get("from"); raw != "" {
		d, err := model.ParseDate(raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid from date")
			return
		}
		filter.From = d
	}
	if raw := q.Get("to"); raw != "" {
		d, err := model.ParseDate(raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid to date")
			return
		}
		filter.To = d
	}
	if raw := q.Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			writeError(w, http.StatusBadRequest, "invalid limit")
			return
		}
		filter.Limit = n
	}

	records, err := s.repo.ListRecords(r.Context(), filter)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	out := make([]recordJSON, 0, len(records))
	for _, rec := range records {
		out = append(out, toRecordJSON(rec))
	}
	writeJSON(w, http.StatusOK, map[string]any{"records": out})
}

func (s *Server) handleStreak(w http.ResponseWriter, r *http.Request) {
	snap, err := s.tracker.Snapshot(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"today":       snap.Today.String(),
		"streak":      snap.Streak,
		"longest":     snap.Longest,
		"window":      string(snap.Window),
		"active":      string(snap.Active),
		"active_done": snap.ActiveDone,
	})
}

func (s *Server) handleWeek(w http.ResponseWriter, r *http.Request) {
	snap, err := s.tracker.Snapshot(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	type cell struct {
		Date        string `json:"date"`
		Weekday     string `json:"weekday"`
		MorningDone bool   `json:"morning_done"`
		EveningDone bool   `json:"evening_done"`
		Today       bool   `json:"today"`
	}
	out := make([]cell, 0, len(snap.Week))
	for _, c := range snap.Week {
		out = append(out, cell{
			Date:        c.Date.String(),
			Weekday:     c.Date.Weekday().String()[:3],
			MorningDone: c.MorningDone,
			EveningDone: c.EveningDone,
			Today:       c.Today,
		})
	}
	writeJSON(w, http.StatusOK, map[string]any{"week": out})
}

func (s *Server) handleReconcile(w http.ResponseWriter, r *http.Request) {
	res, err := s.tracker.Reconcile(r.Context(), s.tracker.Today())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	inserted := make([]string, 0, len(res.Inserted))
	for _, d := range res.Inserted {
		inserted = append(inserted, d.String())
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"inserted": inserted,
		"skewed":   res.Skewed,
		"latest":   res.Latest.String(),
	})
}

func (s *Server) handleCompleteItem(w http.ResponseWriter, r *http.Request) {
	routine, err := model.ParseRoutineType(chi.URLParam(r, "routine"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	index, err := strconv.Atoi(chi.URLParam(r, "index"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "index must be an integer")
		return
	}

	// The caller may pin the day it started on so a write crossing midnight
	// is rejected instead of landing on the new day.
	var req struct {
		Date string `json:"date"`
	}
	if r.Body != nil {
		body, err := io.ReadAll(r.Body)
		if err != nil {
			writeError(w, http.StatusBadRequest, "read body failed")
			return
		}
		if len(body) > 0 {
			if err := json.Unmarshal(body, &req); err != nil {
				writeError(w, http.StatusBadRequest, "invalid json")
				return
			}
		}
	}
	date := s.tracker.Today()
	if req.Date != "" {
		date, err = model.ParseDate(req.Date)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
	}

	res, err := s.tracker.MarkItemComplete(r.Context(), routine, date, index)
	switch {
	case errors.Is(err, tracker.ErrInvalidItem):
		writeError(w, http.StatusBadRequest, err.Error())
		return
	case err != nil:
		s.logger.Error("complete item failed", "routine", string(routine), "index", index, "err", err)
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	status := http.StatusOK
	if res.Status == tracker.StatusStaleDay {
		status = http.StatusConflict
	}
	writeJSON(w, status, map[string]any{
		"status":   string(res.Status),
		"routine":  string(res.Routine),
		"date":     res.Date.String(),
		"done":     res.Done,
		"required": res.Required,
		"streak":   res.Streak,
	})
}

func (s *Server) handleProgress(w http.ResponseWriter, r *http.Request) {
	routine, err := model.ParseRoutineType(chi.URLParam(r, "routine"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	p, err := s.tracker.Progress(r.Context(), routine, s.tracker.Today())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"routine":  string(p.Routine),
		"date":     p.Date.String(),
		"done":     p.Done,
		"required": p.Required,
		"marked":   p.Marked,
		"day_done": p.DayDone,
	})
}

func (s *Server) handleMirror(w http.ResponseWriter, r *http.Request) {
	date, err := model.ParseDate(chi.URLParam(r, "date"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	var req struct {
		Date        string    `json:"date"`
		MorningDone bool      `json:"morning_done"`
		EveningDone bool      `json:"evening_done"`
		UpdatedAt   time.Time `json:"updated_at"`
		Device      string    `json:"device"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}
	if req.Date != "" && req.Date != date.String() {
		writeError(w, http.StatusBadRequest, "body date does not match path")
		return
	}

	merged, err := s.tracker.ApplyMirror(r.Context(), model.DailyRecord{
		Date:        date,
		MorningDone: req.MorningDone,
		EveningDone: req.EveningDone,
		UpdatedAt:   req.UpdatedAt,
	})
	if errors.Is(err, tracker.ErrFutureDate) {
		writeError(w, http.StatusConflict, err.Error())
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.logger.Info("mirror: record applied", "date", date.String(), "device", req.Device)
	writeJSON(w, http.StatusOK, toRecordJSON(merged))
}
