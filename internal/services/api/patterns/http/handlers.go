// Package http serves the read-only pattern endpoints
package http

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"tripline/internal/core/signal"
	perr "tripline/internal/platform/errors"
	"tripline/internal/platform/net/httpx"
	patdom "tripline/internal/services/patterns/domain"
)

type handlers struct {
	reader patdom.ReaderPort
}

// Register mounts the pattern routes
func Register(r chi.Router, reader patdom.ReaderPort) {
	h := &handlers{reader: reader}

	r.Get("/api/patterns", h.list)
	r.Get("/api/patterns/summary", h.summary)
}

// PatternDTO is the wire shape of one persisted pattern
type PatternDTO struct {
	ID             int64     `json:"id"`
	Type           string    `json:"pattern_type"`
	Key            string    `json:"pattern_key"`
	Data           any       `json:"data"`
	Confidence     float64   `json:"confidence"`
	FirstDetected  time.Time `json:"first_detected"`
	LastDetected   time.Time `json:"last_detected"`
	DetectionCount int       `json:"detection_count"`
	Status         string    `json:"status"`
}

func (h *handlers) list(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	f := patdom.Filter{
		Type:   signal.Type(q.Get("type")),
		Status: signal.Status(q.Get("status")),
	}
	if f.Type != "" && !f.Type.Valid() {
		httpx.RespondError(w, r, perr.InvalidArgf("unknown pattern type %q", f.Type))
		return
	}
	if s := q.Get("limit"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n < 0 {
			httpx.RespondError(w, r, perr.InvalidArgf("bad limit %q", s))
			return
		}
		f.Limit = n
	}

	rows, err := h.reader.List(r.Context(), f)
	if err != nil {
		httpx.RespondError(w, r, err)
		return
	}

	out := make([]PatternDTO, 0, len(rows))
	for _, p := range rows {
		out = append(out, PatternDTO{
			ID:             p.ID,
			Type:           string(p.Type),
			Key:            p.Key,
			Data:           p.Data,
			Confidence:     p.Confidence,
			FirstDetected:  p.FirstDetected,
			LastDetected:   p.LastDetected,
			DetectionCount: p.DetectionCount,
			Status:         string(p.Status),
		})
	}
	httpx.RespondOK(w, r, out)
}

// SummaryDTO is today's per-type pattern counts
type SummaryDTO struct {
	Day    string         `json:"day"`
	Counts map[string]int `json:"counts"`
}

func (h *handlers) summary(w http.ResponseWriter, r *http.Request) {
	day := time.Now().UTC()

	counts, err := h.reader.Summary(r.Context(), day)
	if err != nil {
		httpx.RespondError(w, r, err)
		return
	}

	dto := SummaryDTO{
		Day:    day.Format("2006-01-02"),
		Counts: map[string]int{},
	}
	for _, c := range counts {
		dto.Counts[string(c.Type)] = c.Count
	}
	httpx.RespondOK(w, r, dto)
}
