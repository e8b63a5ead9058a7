package allocator

import (
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/hotelops-dev/sector-scheduler/backend/internal/domain"
	"github.com/hotelops-dev/sector-scheduler/backend/internal/rules"
)

// Scoring weights. Lower scores win; the hour-cap overflow dominates,
// the contract preference only breaks ties.
const (
	overCapWeight        = 100.0
	repeatTemplateWeight = 20.0
	dayOffPenalty        = 10.0
	loadBalanceWeight    = 2.0
	permanentBonus       = 5.0
)

// Allocator runs one greedy allocation pass over the open slots of a
// (sector, week) pair. Pure in-memory: the caller loads constraints,
// workers and slots and persists the fill plan afterwards.
type Allocator struct {
	constraints map[string]float64
	workers     []*domain.Worker
	slots       []*domain.ShiftSlot
	weekStart   time.Time
}

func New(constraints map[string]float64, workers []*domain.Worker, slots []*domain.ShiftSlot, weekStart time.Time) *Allocator {
	return &Allocator{
		constraints: constraints,
		workers:     workers,
		slots:       slots,
		weekStart:   weekStart,
	}
}

type Assignment struct {
	SlotID   int64   `json:"slotID"`
	WorkerID int64   `json:"workerID"`
	Score    float64 `json:"score"`
}

type UnassignedSlot struct {
	SlotID int64  `json:"slotID"`
	Reason string `json:"reason"`
}

// FillPlan is the outcome of one pass: a partial fill plus everything
// the caller needs to explain it. The pass never blocks on a business
// outcome.
type FillPlan struct {
	PassID      uuid.UUID                `json:"passID"`
	Assignments []Assignment             `json:"assignments"`
	Unassigned  []UnassignedSlot         `json:"unassigned"`
	Violations  []string                 `json:"violations"`
	Warnings    []string                 `json:"warnings"`
	Trace       []string                 `json:"trace"`
	Metrics     map[int64]MetricsSummary `json:"metrics"`
}

// Run executes the pass. Already-assigned slots are skipped but still
// credited to their worker's metrics, so re-running after a partial
// commit is safe against an unmodified slot set.
func (a *Allocator) Run() *FillPlan {
	plan := &FillPlan{
		PassID:      uuid.New(),
		Assignments: []Assignment{},
		Unassigned:  []UnassignedSlot{},
		Violations:  []string{},
		Warnings:    []string{},
		Trace:       []string{},
	}

	metrics := newArena(a.workers)
	a.creditExistingAssignments(metrics, plan)

	for day := 0; day < 7; day++ {
		date := a.weekStart.AddDate(0, 0, day)
		daySlots := a.slotsOn(date)
		if len(daySlots) == 0 {
			continue
		}

		// cover the high-cost slots before fragmenting the pool
		sort.SliceStable(daySlots, func(i, j int) bool {
			if daySlots[i].WorkedHours != daySlots[j].WorkedHours {
				return daySlots[i].WorkedHours > daySlots[j].WorkedHours
			}
			return daySlots[i].ID < daySlots[j].ID
		})

		for _, slot := range daySlots {
			if slot.Assigned {
				plan.Trace = append(plan.Trace, fmt.Sprintf("slot %d (%s %s): already assigned, skipped", slot.ID, slot.TemplateName, date.Format("2006-01-02")))
				continue
			}
			a.fillSlot(slot, date, metrics, plan)
		}
	}

	plan.Metrics = metrics.summaries()
	return plan
}

func (a *Allocator) fillSlot(slot *domain.ShiftSlot, date time.Time, metrics arena, plan *FillPlan) {
	eligible := a.eligibleOn(date, metrics)
	if len(eligible) == 0 {
		reason := "no eligible workers on " + date.Format("2006-01-02")
		plan.Unassigned = append(plan.Unassigned, UnassignedSlot{SlotID: slot.ID, Reason: reason})
		plan.Violations = append(plan.Violations, fmt.Sprintf("slot %d (%s): %s", slot.ID, slot.TemplateName, reason))
		return
	}

	type candidate struct {
		worker *domain.Worker
		score  float64
	}

	mean := metrics.meanHours()
	candidates := make([]candidate, 0, len(eligible))
	for _, w := range eligible {
		candidates = append(candidates, candidate{worker: w, score: a.score(w, slot, metrics[w.ID], mean)})
	}
	sort.SliceStable(candidates, func(i, j int) bool {
		if candidates[i].score != candidates[j].score {
			return candidates[i].score < candidates[j].score
		}
		return candidates[i].worker.ID < candidates[j].worker.ID
	})

	slotStart, err := slot.StartAt()
	if err != nil {
		plan.Unassigned = append(plan.Unassigned, UnassignedSlot{SlotID: slot.ID, Reason: "invalid slot time: " + err.Error()})
		plan.Violations = append(plan.Violations, fmt.Sprintf("slot %d: invalid time %q", slot.ID, slot.StartTime))
		return
	}
	slotEnd, err := slot.EndAt()
	if err != nil {
		plan.Unassigned = append(plan.Unassigned, UnassignedSlot{SlotID: slot.ID, Reason: "invalid slot time: " + err.Error()})
		plan.Violations = append(plan.Violations, fmt.Sprintf("slot %d: invalid time %q", slot.ID, slot.EndTime))
		return
	}

	minRest := a.constraints[rules.KeyMinRestHours]

	// hard feasibility gate: only the rest gap blocks here; hour caps
	// act in the filter and the score, so one slot may still push a
	// worker over cap and the overage is reported below.
	for _, c := range candidates {
		m := metrics[c.worker.ID]
		if !m.LastShiftEnd.IsZero() {
			gap := slotStart.Sub(m.LastShiftEnd).Hours()
			if gap < minRest {
				plan.Trace = append(plan.Trace, fmt.Sprintf("slot %d: worker %d rejected, rest gap %.2fh < %.2fh", slot.ID, c.worker.ID, gap, minRest))
				continue
			}
		}

		slot.AssignedWorkerID = &c.worker.ID
		slot.Assigned = true
		m.record(slot, slotEnd)

		plan.Assignments = append(plan.Assignments, Assignment{SlotID: slot.ID, WorkerID: c.worker.ID, Score: c.score})
		plan.Trace = append(plan.Trace, fmt.Sprintf("slot %d (%s %s, %.1fh): assigned worker %d, score %.1f", slot.ID, slot.TemplateName, date.Format("2006-01-02"), slot.WorkedHours, c.worker.ID, c.score))

		if capHours := a.weeklyCap(c.worker); m.HoursAssigned > capHours {
			plan.Warnings = append(plan.Warnings, fmt.Sprintf("worker %d over weekly cap by %.2fh after slot %d", c.worker.ID, m.HoursAssigned-capHours, slot.ID))
		}
		return
	}

	reason := "no candidate satisfies the minimum rest gap"
	plan.Unassigned = append(plan.Unassigned, UnassignedSlot{SlotID: slot.ID, Reason: reason})
	plan.Violations = append(plan.Violations, fmt.Sprintf("slot %d (%s): %s", slot.ID, slot.TemplateName, reason))
}

// eligibleOn applies the day-level filter: weekly cap reached,
// consecutive-day limit reached, blocked date or vacation.
func (a *Allocator) eligibleOn(date time.Time, metrics arena) []*domain.Worker {
	maxConsecutive := int(a.constraints[rules.KeyMaxConsecutiveDays])

	eligible := make([]*domain.Worker, 0, len(a.workers))
	for _, w := range a.workers {
		m := metrics[w.ID]
		if m.HoursAssigned >= a.weeklyCap(w) {
			continue
		}
		if m.ConsecutiveDays >= maxConsecutive && !sameDay(m.lastDayAssigned, date) {
			continue
		}
		if w.UnavailableOn(date) {
			continue
		}
		eligible = append(eligible, w)
	}
	return eligible
}

func (a *Allocator) score(w *domain.Worker, slot *domain.ShiftSlot, m *Metrics, mean float64) float64 {
	score := 0.0

	if over := m.HoursAssigned + slot.WorkedHours - a.weeklyCap(w); over > 0 {
		score += overCapWeight * over
	}

	score += repeatTemplateWeight * float64(m.TemplateCounts[slot.TemplateName])

	if w.PrefersDayOff(slot.Date) {
		score += dayOffPenalty
	}

	// reward under-loaded workers, penalize over-loaded ones
	score += loadBalanceWeight * (m.HoursAssigned - mean)

	if w.ContractKind == domain.ContractPermanent {
		score -= permanentBonus
	}

	return score
}

// weeklyCap is the worker's own cap bounded by the sector constraint.
func (a *Allocator) weeklyCap(w *domain.Worker) float64 {
	sectorCap := a.constraints[rules.KeyMaxWeeklyHours]
	if w.WeeklyHourCap > 0 && w.WeeklyHourCap < sectorCap {
		return w.WeeklyHourCap
	}
	return sectorCap
}

func (a *Allocator) slotsOn(date time.Time) []*domain.ShiftSlot {
	out := []*domain.ShiftSlot{}
	for _, s := range a.slots {
		if sameDay(s.Date, date) {
			out = append(out, s)
		}
	}
	return out
}

// Audit drives the finished plan through the rule engine's
// conflict-resolved iteration: every applicable rule's declared bounds
// are re-checked against the pass outcome, mandatory failures are
// appended to Violations and the rest degrade to Warnings.
func (a *Allocator) Audit(engine *rules.Engine, ctx rules.Context, plan *FillPlan) *rules.ApplyResult {
	result := engine.Apply(ctx, func(rule *domain.Rule) error {
		return a.checkRule(rule, plan)
	})
	plan.Violations = append(plan.Violations, result.Violations...)
	plan.Warnings = append(plan.Warnings, result.Warnings...)
	return result
}

func (a *Allocator) checkRule(rule *domain.Rule, plan *FillPlan) error {
	if bound, ok := rules.DeclaredParameter(rule, rules.KeyMaxWeeklyHours); ok {
		for _, id := range sortedWorkerIDs(plan.Metrics) {
			if m := plan.Metrics[id]; m.HoursAssigned > bound {
				return fmt.Errorf("worker %d holds %.2fh against a weekly bound of %.2fh", id, m.HoursAssigned, bound)
			}
		}
	}
	if bound, ok := rules.DeclaredParameter(rule, rules.KeyMaxDailyHours); ok {
		for _, s := range a.slots {
			if s.Assigned && s.WorkedHours > bound {
				return fmt.Errorf("slot %d runs %.2fh against a daily bound of %.2fh", s.ID, s.WorkedHours, bound)
			}
		}
	}
	if bound, ok := rules.DeclaredParameter(rule, rules.KeyMaxConsecutiveDays); ok {
		for _, id := range sortedWorkerIDs(plan.Metrics) {
			if m := plan.Metrics[id]; float64(m.ConsecutiveDays) > bound {
				return fmt.Errorf("worker %d works %d consecutive days against a bound of %.0f", id, m.ConsecutiveDays, bound)
			}
		}
	}
	if bound, ok := rules.DeclaredParameter(rule, rules.KeyMinRestHours); ok {
		return a.checkRestGaps(bound)
	}
	return nil
}

// checkRestGaps re-verifies the rest gap over the committed slot set.
// Slots with unparseable times are skipped here; fillSlot already
// reports them.
func (a *Allocator) checkRestGaps(minRest float64) error {
	byWorker := map[int64][]*domain.ShiftSlot{}
	for _, s := range a.slots {
		if s.Assigned && s.AssignedWorkerID != nil {
			byWorker[*s.AssignedWorkerID] = append(byWorker[*s.AssignedWorkerID], s)
		}
	}

	ids := make([]int64, 0, len(byWorker))
	for id := range byWorker {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	for _, id := range ids {
		shifts := byWorker[id]
		sort.SliceStable(shifts, func(i, j int) bool {
			if !sameDay(shifts[i].Date, shifts[j].Date) {
				return shifts[i].Date.Before(shifts[j].Date)
			}
			return shifts[i].StartTime < shifts[j].StartTime
		})

		var prevEnd time.Time
		for _, s := range shifts {
			start, err := s.StartAt()
			if err != nil {
				continue
			}
			if !prevEnd.IsZero() {
				if gap := start.Sub(prevEnd).Hours(); gap < minRest {
					return fmt.Errorf("worker %d rests %.2fh before slot %d, below %.2fh", id, gap, s.ID, minRest)
				}
			}
			if end, err := s.EndAt(); err == nil && end.After(prevEnd) {
				prevEnd = end
			}
		}
	}
	return nil
}

func sortedWorkerIDs(metrics map[int64]MetricsSummary) []int64 {
	ids := make([]int64, 0, len(metrics))
	for id := range metrics {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// creditExistingAssignments replays already-committed assignments into
// the arena so a re-run sees accurate hours and rest gaps.
func (a *Allocator) creditExistingAssignments(metrics arena, plan *FillPlan) {
	assigned := []*domain.ShiftSlot{}
	for _, s := range a.slots {
		if s.Assigned && s.AssignedWorkerID != nil {
			assigned = append(assigned, s)
		}
	}
	sort.SliceStable(assigned, func(i, j int) bool {
		if !sameDay(assigned[i].Date, assigned[j].Date) {
			return assigned[i].Date.Before(assigned[j].Date)
		}
		return assigned[i].StartTime < assigned[j].StartTime
	})

	for _, s := range assigned {
		m, exists := metrics[*s.AssignedWorkerID]
		if !exists {
			plan.Warnings = append(plan.Warnings, fmt.Sprintf("slot %d assigned to worker %d outside the roster", s.ID, *s.AssignedWorkerID))
			continue
		}
		end, err := s.EndAt()
		if err != nil {
			continue
		}
		m.record(s, end)
	}
}
