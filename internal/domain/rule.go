package domain

import "time"

type RuleKind string

const (
	RuleKindLabor       RuleKind = "LABOR"
	RuleKindOperational RuleKind = "OPERATIONAL"
	RuleKindCalculation RuleKind = "CALCULATION"
	RuleKindSystem      RuleKind = "SYSTEM"
)

type RuleRigidity string

const (
	RigidityMandatory RuleRigidity = "MANDATORY"
	RigidityDesirable RuleRigidity = "DESIRABLE"
	RigidityFlexible  RuleRigidity = "FLEXIBLE"
)

// Rule is a declarative scheduling rule. SectorID nil means the rule is
// global. Parameters holds structured values keyed by constraint name;
// free-text answers are only consulted when a key is absent here.
type Rule struct {
	ID         int64          `json:"id"`
	SectorID   *int64         `json:"sectorID"`
	Kind       RuleKind       `json:"kind"`
	Rigidity   RuleRigidity   `json:"rigidity"`
	Priority   int32          `json:"priority"`
	Code       string         `json:"code"`
	Question   string         `json:"question"`
	Answer     string         `json:"answer"`
	Parameters map[string]any `json:"parameters"`
	ValidFrom  *time.Time     `json:"validFrom"`
	ValidUntil *time.Time     `json:"validUntil"`
	Active     bool           `json:"active"`
	DeletedAt  *time.Time     `json:"-"`
	CreatedAt  time.Time      `json:"createdAt"`
	Version    int32          `json:"-"`
}

// ActiveOn reports whether the rule applies on the reference date:
// flagged active, not soft-deleted and inside the activation window.
func (r *Rule) ActiveOn(ref time.Time) bool {
	if !r.Active || r.DeletedAt != nil {
		return false
	}
	if r.ValidFrom != nil && ref.Before(*r.ValidFrom) {
		return false
	}
	if r.ValidUntil != nil && ref.After(*r.ValidUntil) {
		return false
	}
	return true
}
