package rules

import "github.com/hotelops-dev/sector-scheduler/backend/internal/domain"

// Constraint keys shared by the rule engine, the allocator and the
// convocation lifecycle.
const (
	KeyMaxWeeklyHours            = "max_weekly_hours"
	KeyMaxDailyHours             = "max_daily_hours"
	KeyMinRestHours              = "min_rest_hours"
	KeyAdvanceNoticeHours        = "advance_notice_hours"
	KeyMaxConsecutiveDays        = "max_consecutive_days"
	KeyUtilizationTarget         = "utilization_target"
	KeyBufferPercent             = "buffer_percent"
	KeyHolidayFactor             = "holiday_factor"
	KeyMaxDaysWithoutFullWeekOff = "max_days_without_full_week_off"
)

// BaselineConstraints returns the documented defaults used when no rule
// overrides a key. 44h/week and 72h advance notice follow intermittent
// labor contracts; the rest are house operational policy.
func BaselineConstraints() map[string]float64 {
	return map[string]float64{
		KeyMaxWeeklyHours:            44,
		KeyMaxDailyHours:             8,
		KeyMinRestHours:              11,
		KeyAdvanceNoticeHours:        72,
		KeyMaxConsecutiveDays:        6,
		KeyUtilizationTarget:         0.85,
		KeyBufferPercent:             10,
		KeyHolidayFactor:             2.0,
		KeyMaxDaysWithoutFullWeekOff: 42,
	}
}

// ConstraintSet is the resolved numeric constraint map for one sector
// plus the codes of the rules that contributed to it.
type ConstraintSet struct {
	Values           map[string]float64 `json:"values"`
	AppliedRuleCodes []string           `json:"appliedRuleCodes"`
}

// overlayKinds is the overlay order: later kinds win on key collision.
var overlayKinds = []domain.RuleKind{
	domain.RuleKindLabor,
	domain.RuleKindOperational,
	domain.RuleKindCalculation,
}

// Constraints starts from the baseline map and overlays resolved
// parameters from LABOR, then OPERATIONAL, then CALCULATION rules, each
// kind in evaluation order. Only keys a rule declares in its parameter
// map are overlaid; free-text extraction serves explicit per-key
// ResolveParameter lookups. Re-applying the same rule set is
// idempotent.
func (e *Engine) Constraints(ctx Context) *ConstraintSet {
	set := &ConstraintSet{
		Values:           BaselineConstraints(),
		AppliedRuleCodes: []string{},
	}

	grouped := e.Fetch(ctx, true)
	for _, kind := range overlayKinds {
		for _, r := range grouped.Ordered {
			if r.Kind != kind {
				continue
			}
			contributed := false
			for key := range set.Values {
				if v, ok := DeclaredParameter(r, key); ok {
					set.Values[key] = v
					contributed = true
				}
			}
			if contributed {
				set.AppliedRuleCodes = append(set.AppliedRuleCodes, r.Code)
			}
		}
	}

	return set
}
