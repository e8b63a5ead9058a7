package rules

import (
	"testing"
	"time"

	"github.com/hotelops-dev/sector-scheduler/backend/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func int64Ptr(v int64) *int64 { return &v }

func timePtr(t time.Time) *time.Time { return &t }

func newRule(id int64, kind domain.RuleKind, rigidity domain.RuleRigidity, priority int32) *domain.Rule {
	return &domain.Rule{
		ID:       id,
		Kind:     kind,
		Rigidity: rigidity,
		Priority: priority,
		Code:     string(kind)[:3] + "-" + string(rigidity)[:3],
		Active:   true,
	}
}

func TestFetchOrdersByKindRigidityPriority(t *testing.T) {
	ref := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)

	system := newRule(1, domain.RuleKindSystem, domain.RigidityMandatory, 1)
	calcFlexible := newRule(2, domain.RuleKindCalculation, domain.RigidityFlexible, 1)
	laborDesirable := newRule(3, domain.RuleKindLabor, domain.RigidityDesirable, 1)
	laborMandatoryLate := newRule(4, domain.RuleKindLabor, domain.RigidityMandatory, 9)
	laborMandatoryEarly := newRule(5, domain.RuleKindLabor, domain.RigidityMandatory, 1)
	operational := newRule(6, domain.RuleKindOperational, domain.RigidityMandatory, 1)

	engine := NewEngine([]*domain.Rule{system, calcFlexible, laborDesirable, laborMandatoryLate, laborMandatoryEarly, operational})
	grouped := engine.Fetch(Context{SectorID: 1, ReferenceDate: ref}, true)

	ids := make([]int64, 0, len(grouped.Ordered))
	for _, r := range grouped.Ordered {
		ids = append(ids, r.ID)
	}

	assert.Equal(t, []int64{5, 4, 3, 6, 2, 1}, ids)
}

func TestFetchScopesSectorAndWindow(t *testing.T) {
	ref := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)

	global := newRule(1, domain.RuleKindLabor, domain.RigidityMandatory, 1)
	mine := newRule(2, domain.RuleKindLabor, domain.RigidityMandatory, 2)
	mine.SectorID = int64Ptr(1)
	other := newRule(3, domain.RuleKindLabor, domain.RigidityMandatory, 3)
	other.SectorID = int64Ptr(2)
	expired := newRule(4, domain.RuleKindLabor, domain.RigidityMandatory, 4)
	expired.ValidUntil = timePtr(ref.AddDate(0, 0, -1))
	future := newRule(5, domain.RuleKindLabor, domain.RigidityMandatory, 5)
	future.ValidFrom = timePtr(ref.AddDate(0, 0, 1))
	deleted := newRule(6, domain.RuleKindLabor, domain.RigidityMandatory, 6)
	deleted.DeletedAt = timePtr(ref)
	inactive := newRule(7, domain.RuleKindLabor, domain.RigidityMandatory, 7)
	inactive.Active = false

	engine := NewEngine([]*domain.Rule{global, mine, other, expired, future, deleted, inactive})

	grouped := engine.Fetch(Context{SectorID: 1, ReferenceDate: ref}, true)
	ids := make([]int64, 0)
	for _, r := range grouped.Ordered {
		ids = append(ids, r.ID)
	}
	assert.Equal(t, []int64{1, 2}, ids)

	// inactive and out-of-window rules come back without activeOnly,
	// soft-deleted ones never do
	all := engine.Fetch(Context{SectorID: 1, ReferenceDate: ref}, false)
	assert.Len(t, all.Ordered, 5)
	for _, r := range all.Ordered {
		assert.NotEqual(t, int64(6), r.ID)
	}
}

func TestValidateConsistencyFlagsDuplicatePairs(t *testing.T) {
	ref := time.Now()
	a := newRule(1, domain.RuleKindLabor, domain.RigidityMandatory, 1)
	a.Code = "LAB-A"
	b := newRule(2, domain.RuleKindLabor, domain.RigidityMandatory, 1)
	b.Code = "LAB-B"
	c := newRule(3, domain.RuleKindLabor, domain.RigidityDesirable, 1)
	c.Code = "LAB-C"

	engine := NewEngine([]*domain.Rule{a, b, c})

	ok, errs := engine.ValidateConsistency(Context{SectorID: 1, ReferenceDate: ref}, domain.RuleKindLabor)
	assert.False(t, ok)
	require.Len(t, errs, 1)
	assert.Contains(t, errs[0], "LAB-A")
	assert.Contains(t, errs[0], "LAB-B")

	ok, errs = engine.ValidateConsistency(Context{SectorID: 1, ReferenceDate: ref}, domain.RuleKindOperational)
	assert.True(t, ok)
	assert.Empty(t, errs)
}

func TestConstraintsOverlayAndIdempotence(t *testing.T) {
	ref := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)

	labor := newRule(1, domain.RuleKindLabor, domain.RigidityMandatory, 1)
	labor.Code = "LAB-CAP"
	labor.Parameters = map[string]any{KeyMaxWeeklyHours: 40}

	calc := newRule(2, domain.RuleKindCalculation, domain.RigidityFlexible, 1)
	calc.Code = "CALC-HOL"
	calc.Parameters = map[string]any{KeyHolidayFactor: 1.5}

	system := newRule(3, domain.RuleKindSystem, domain.RigidityMandatory, 1)
	system.Code = "SYS-X"
	system.Parameters = map[string]any{KeyMaxWeeklyHours: 10}

	engine := NewEngine([]*domain.Rule{labor, calc, system})
	ctx := Context{SectorID: 1, ReferenceDate: ref}

	set := engine.Constraints(ctx)
	assert.Equal(t, 40.0, set.Values[KeyMaxWeeklyHours])
	assert.Equal(t, 1.5, set.Values[KeyHolidayFactor])
	// untouched keys keep the baseline
	assert.Equal(t, 11.0, set.Values[KeyMinRestHours])
	// SYSTEM rules never overlay constraints
	assert.Equal(t, []string{"LAB-CAP", "CALC-HOL"}, set.AppliedRuleCodes)

	again := engine.Constraints(ctx)
	assert.Equal(t, set.Values, again.Values)
	assert.Equal(t, set.AppliedRuleCodes, again.AppliedRuleCodes)
}

func TestConstraintsOverlayOnlyDeclaredKeys(t *testing.T) {
	ref := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)

	weekly := newRule(1, domain.RuleKindLabor, domain.RigidityMandatory, 1)
	weekly.Code = "LAB-CAP"
	weekly.Answer = "Intermittent contracts are capped at 44 hours per week."
	weekly.Parameters = map[string]any{KeyMaxWeeklyHours: 44}

	rest := newRule(2, domain.RuleKindLabor, domain.RigidityMandatory, 2)
	rest.Code = "LAB-REST"
	rest.Answer = "At least 11 hours between the end of one shift and the start of the next."
	rest.Parameters = map[string]any{KeyMinRestHours: 11}

	textOnly := newRule(3, domain.RuleKindLabor, domain.RigidityMandatory, 3)
	textOnly.Code = "LAB-TEXT"
	textOnly.Answer = "Night work is limited to 10 hours."

	engine := NewEngine([]*domain.Rule{weekly, rest, textOnly})
	set := engine.Constraints(Context{SectorID: 1, ReferenceDate: ref})

	// an answer mentioning hours only touches the keys its rule declares
	assert.Equal(t, 44.0, set.Values[KeyMaxWeeklyHours])
	assert.Equal(t, 11.0, set.Values[KeyMinRestHours])
	assert.Equal(t, 8.0, set.Values[KeyMaxDailyHours])
	assert.Equal(t, 72.0, set.Values[KeyAdvanceNoticeHours])
	assert.Equal(t, []string{"LAB-CAP", "LAB-REST"}, set.AppliedRuleCodes)
}

func TestConstraintsLaterKindWinsOnCollision(t *testing.T) {
	ref := time.Now()

	labor := newRule(1, domain.RuleKindLabor, domain.RigidityMandatory, 1)
	labor.Code = "LAB"
	labor.Parameters = map[string]any{KeyBufferPercent: 5}

	ops := newRule(2, domain.RuleKindOperational, domain.RigidityDesirable, 1)
	ops.Code = "OPS"
	ops.Parameters = map[string]any{KeyBufferPercent: 20}

	engine := NewEngine([]*domain.Rule{ops, labor})
	set := engine.Constraints(Context{SectorID: 1, ReferenceDate: ref})

	assert.Equal(t, 20.0, set.Values[KeyBufferPercent])
	assert.Equal(t, []string{"LAB", "OPS"}, set.AppliedRuleCodes)
}
