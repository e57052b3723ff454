// Package engine implements the adaptive mastery and scheduling core: pure,
// stateless computations over fully-materialized snapshots of questions,
// attempts, mastery rows and missions. Persistence and transport live with the
// callers; every function here returns records for the caller to upsert.
package engine

import (
	"math"
	"math/rand"
	"time"
)

// Engine bundles the tuning constants with a random source. The random source
// is injected so mission generation is deterministic under test; passing nil
// yields a time-seeded source for production use.
type Engine struct {
	tuning Tuning
	rng    *rand.Rand
}

func New(tuning Tuning, rng *rand.Rand) *Engine {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &Engine{tuning: tuning, rng: rng}
}

// NewDefault returns an engine with production tuning and a time-seeded
// random source.
func NewDefault() *Engine {
	return New(DefaultTuning(), nil)
}

func (e *Engine) Tuning() Tuning {
	return e.tuning
}

// clamp bounds v into [lo, hi].
func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func round(v float64) int {
	return int(math.Round(v))
}

// DayKey formats a timestamp as the date key missions are stored under.
func DayKey(t time.Time) string {
	return t.Format("2006-01-02")
}

// WeekStart returns the Monday of the week containing t, as a day key.
func WeekStart(t time.Time) string {
	offset := (int(t.Weekday()) + 6) % 7
	return DayKey(t.AddDate(0, 0, -offset))
}
