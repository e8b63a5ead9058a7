package allocator

import (
	"time"

	"github.com/hotelops-dev/sector-scheduler/backend/internal/domain"
)

// Metrics is the running per-worker state of one allocation pass. It
// lives only for the pass; nothing here is entity state.
type Metrics struct {
	HoursAssigned   float64
	DaysAssigned    int
	ConsecutiveDays int
	TemplateCounts  map[string]int
	Templates       []string
	LastShiftEnd    time.Time

	lastDayAssigned time.Time
}

// arena maps worker id to run metrics, rebuilt at the start of every
// pass.
type arena map[int64]*Metrics

func newArena(workers []*domain.Worker) arena {
	a := make(arena, len(workers))
	for _, w := range workers {
		a[w.ID] = &Metrics{
			TemplateCounts: make(map[string]int),
		}
	}
	return a
}

// meanHours is the mean assigned hours across every worker in the
// pass, including workers with nothing assigned yet.
func (a arena) meanHours() float64 {
	if len(a) == 0 {
		return 0
	}
	total := 0.0
	for _, m := range a {
		total += m.HoursAssigned
	}
	return total / float64(len(a))
}

// record credits an assigned slot to the worker's metrics.
func (m *Metrics) record(slot *domain.ShiftSlot, end time.Time) {
	m.HoursAssigned += slot.WorkedHours
	m.TemplateCounts[slot.TemplateName]++
	m.Templates = append(m.Templates, slot.TemplateName)

	if !sameDay(m.lastDayAssigned, slot.Date) {
		m.DaysAssigned++
		if sameDay(m.lastDayAssigned.AddDate(0, 0, 1), slot.Date) {
			m.ConsecutiveDays++
		} else {
			m.ConsecutiveDays = 1
		}
		m.lastDayAssigned = slot.Date
	}

	if end.After(m.LastShiftEnd) {
		m.LastShiftEnd = end
	}
}

// MetricsSummary is the portion of the arena worth returning to the
// caller once the pass ends.
type MetricsSummary struct {
	WorkerID        int64    `json:"workerID"`
	HoursAssigned   float64  `json:"hoursAssigned"`
	DaysAssigned    int      `json:"daysAssigned"`
	ConsecutiveDays int      `json:"consecutiveDays"`
	Templates       []string `json:"templates"`
}

func (a arena) summaries() map[int64]MetricsSummary {
	out := make(map[int64]MetricsSummary, len(a))
	for id, m := range a {
		out[id] = MetricsSummary{
			WorkerID:        id,
			HoursAssigned:   m.HoursAssigned,
			DaysAssigned:    m.DaysAssigned,
			ConsecutiveDays: m.ConsecutiveDays,
			Templates:       m.Templates,
		}
	}
	return out
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}
