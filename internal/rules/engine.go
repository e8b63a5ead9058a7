package rules

import (
	"fmt"
	"sort"
	"time"

	"github.com/hotelops-dev/sector-scheduler/backend/internal/domain"
)

// Context scopes every rule resolution to one sector and one reference
// date. It is passed explicitly instead of living in package state.
type Context struct {
	SectorID      int64
	ReferenceDate time.Time
}

// Engine computes over a pre-fetched rule set. Like the allocator it is
// a pure in-memory component: the caller loads the rows and feeds them
// in.
type Engine struct {
	rules []*domain.Rule
}

func NewEngine(rules []*domain.Rule) *Engine {
	return &Engine{rules: rules}
}

var kindRank = map[domain.RuleKind]int{
	domain.RuleKindLabor:       1,
	domain.RuleKindOperational: 2,
	domain.RuleKindCalculation: 3,
	domain.RuleKindSystem:      4,
}

var rigidityRank = map[domain.RuleRigidity]int{
	domain.RigidityMandatory: 1,
	domain.RigidityDesirable: 2,
	domain.RigidityFlexible:  3,
}

// Grouped is an ordered view of the applicable rules. Ordered holds the
// evaluation order: kind rank, then rigidity rank, then ascending
// priority. Mandatory labor rules always come first.
type Grouped struct {
	Ordered []*domain.Rule
	ByKind  map[domain.RuleKind]map[domain.RuleRigidity][]*domain.Rule
}

// Fetch returns the rules applying to the context's sector (sector
// scoped plus global), grouped and in evaluation order. Soft-deleted
// rules are always excluded; when activeOnly is set the active flag and
// the activation window are enforced against the reference date.
func (e *Engine) Fetch(ctx Context, activeOnly bool) *Grouped {
	g := &Grouped{
		Ordered: make([]*domain.Rule, 0, len(e.rules)),
		ByKind:  make(map[domain.RuleKind]map[domain.RuleRigidity][]*domain.Rule),
	}

	for _, r := range e.rules {
		if r.DeletedAt != nil {
			continue
		}
		if r.SectorID != nil && *r.SectorID != ctx.SectorID {
			continue
		}
		if activeOnly && !r.ActiveOn(ctx.ReferenceDate) {
			continue
		}
		g.Ordered = append(g.Ordered, r)
	}

	sort.SliceStable(g.Ordered, func(i, j int) bool {
		a, b := g.Ordered[i], g.Ordered[j]
		if kindRank[a.Kind] != kindRank[b.Kind] {
			return kindRank[a.Kind] < kindRank[b.Kind]
		}
		if rigidityRank[a.Rigidity] != rigidityRank[b.Rigidity] {
			return rigidityRank[a.Rigidity] < rigidityRank[b.Rigidity]
		}
		return a.Priority < b.Priority
	})

	for _, r := range g.Ordered {
		if _, exists := g.ByKind[r.Kind]; !exists {
			g.ByKind[r.Kind] = make(map[domain.RuleRigidity][]*domain.Rule)
		}
		g.ByKind[r.Kind][r.Rigidity] = append(g.ByKind[r.Kind][r.Rigidity], r)
	}

	return g
}

// ValidateConsistency flags duplicate (rigidity, priority) pairs within
// one kind. A data-integrity check for administrators, not a runtime
// failure.
func (e *Engine) ValidateConsistency(ctx Context, kind domain.RuleKind) (bool, []string) {
	seen := map[string][]string{}
	for _, r := range e.Fetch(ctx, false).Ordered {
		if r.Kind != kind {
			continue
		}
		key := fmt.Sprintf("%s/%d", r.Rigidity, r.Priority)
		seen[key] = append(seen[key], r.Code)
	}

	errs := []string{}
	for key, codes := range seen {
		if len(codes) > 1 {
			errs = append(errs, fmt.Sprintf("rules %v share rigidity/priority %s within kind %s", codes, key, kind))
		}
	}
	sort.Strings(errs)

	return len(errs) == 0, errs
}

// ApplyResult collects the outcome of one conflict-resolved iteration
// over the rule set.
type ApplyResult struct {
	Applied    []string `json:"applied"`
	Violations []string `json:"violations"`
	Warnings   []string `json:"warnings"`
}

// Blocking reports whether any mandatory rule was violated.
func (r *ApplyResult) Blocking() bool {
	return len(r.Violations) > 0
}

// Apply invokes fn against every applicable rule in evaluation order.
// A failed MANDATORY rule is recorded as a violation and the rule does
// not count as applied; failures on DESIRABLE and FLEXIBLE rules
// degrade to warnings. Processing never stops early.
func (e *Engine) Apply(ctx Context, fn func(rule *domain.Rule) error) *ApplyResult {
	result := &ApplyResult{
		Applied:    []string{},
		Violations: []string{},
		Warnings:   []string{},
	}

	for _, r := range e.Fetch(ctx, true).Ordered {
		err := fn(r)
		if err == nil {
			result.Applied = append(result.Applied, r.Code)
			continue
		}

		msg := fmt.Sprintf("rule %s: %s", r.Code, err.Error())
		if r.Rigidity == domain.RigidityMandatory {
			result.Violations = append(result.Violations, msg)
		} else {
			result.Warnings = append(result.Warnings, msg)
		}
	}

	return result
}
