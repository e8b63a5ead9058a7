package rules

import (
	"testing"
	"time"

	"github.com/hotelops-dev/sector-scheduler/backend/internal/domain"
	"github.com/stretchr/testify/assert"
)

func ruleWithAnswer(answer string) *domain.Rule {
	return &domain.Rule{Answer: answer}
}

func TestResolveParameterPrefersStructuredValue(t *testing.T) {
	rule := &domain.Rule{
		Answer:     "the cap is 40 hours",
		Parameters: map[string]any{KeyMaxWeeklyHours: 44},
	}

	assert.Equal(t, 44.0, ResolveParameter(rule, KeyMaxWeeklyHours, 0))
}

func TestDeclaredParameterRequiresDeclaredKey(t *testing.T) {
	rule := &domain.Rule{
		Answer:     "At least 11 hours between shifts.",
		Parameters: map[string]any{KeyMinRestHours: 11},
	}

	v, ok := DeclaredParameter(rule, KeyMinRestHours)
	assert.True(t, ok)
	assert.Equal(t, 11.0, v)

	// the hours in the answer never reach undeclared keys
	_, ok = DeclaredParameter(rule, KeyMaxWeeklyHours)
	assert.False(t, ok)

	// a declared key keeps the text fallback when its value is not numeric
	fuzzy := &domain.Rule{
		Answer:     "Cap the week at 40 hours.",
		Parameters: map[string]any{KeyMaxWeeklyHours: "see answer"},
	}
	v, ok = DeclaredParameter(fuzzy, KeyMaxWeeklyHours)
	assert.True(t, ok)
	assert.Equal(t, 40.0, v)
}

func TestResolveParameterCoercesStructuredTypes(t *testing.T) {
	cases := []struct {
		name string
		raw  any
		want float64
	}{
		{"int", 44, 44},
		{"int64", int64(8), 8},
		{"float", 0.85, 0.85},
		{"string", "11", 11},
		{"comma decimal string", "2,5", 2.5},
		{"bool", true, 1},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rule := &domain.Rule{Parameters: map[string]any{KeyMaxDailyHours: tc.raw}}
			assert.Equal(t, tc.want, ResolveParameter(rule, KeyMaxDailyHours, -1))
		})
	}
}

func TestResolveParameterFromAnswerText(t *testing.T) {
	cases := []struct {
		name   string
		answer string
		key    string
		want   float64
	}{
		{"hours with unit", "workers may work up to 44 hours per week", KeyMaxWeeklyHours, 44},
		{"abbreviated hours", "at least 11h of rest", KeyMinRestHours, 11},
		{"comma decimal hours", "no more than 7,5 hrs per day", KeyMaxDailyHours, 7.5},
		{"percent", "keep a 15% staffing buffer", KeyBufferPercent, 15},
		{"utilization from percent", "target 85% utilization", KeyUtilizationTarget, 0.85},
		{"utilization as fraction", "0.9", KeyUtilizationTarget, 0.9},
		{"holiday factor", "holidays count with a factor of 2.0", KeyHolidayFactor, 2},
		{"consecutive days", "at most 6 consecutive days", KeyMaxConsecutiveDays, 6},
		{"lone number for hour key", "44", KeyMaxWeeklyHours, 44},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, ResolveParameter(ruleWithAnswer(tc.answer), tc.key, -1))
		})
	}
}

func TestResolveParameterAmbiguousTextFallsBack(t *testing.T) {
	cases := []struct {
		name   string
		answer string
		key    string
	}{
		{"two bare numbers", "between 40 and 44", KeyMaxWeeklyHours},
		{"no number", "as agreed with the sector head", KeyMaxWeeklyHours},
		{"number without percent for buffer", "keep a buffer of twelve", KeyBufferPercent},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, 99.0, ResolveParameter(ruleWithAnswer(tc.answer), tc.key, 99))
		})
	}
}

func TestApplySeparatesViolationsFromWarnings(t *testing.T) {
	mandatory := newRule(1, domain.RuleKindLabor, domain.RigidityMandatory, 1)
	mandatory.Code = "LAB-HARD"
	desirable := newRule(2, domain.RuleKindOperational, domain.RigidityDesirable, 1)
	desirable.Code = "OPS-SOFT"
	fine := newRule(3, domain.RuleKindCalculation, domain.RigidityFlexible, 1)
	fine.Code = "CALC-OK"

	engine := NewEngine([]*domain.Rule{mandatory, desirable, fine})

	result := engine.Apply(Context{SectorID: 1, ReferenceDate: time.Now()}, func(r *domain.Rule) error {
		if r.Code == "CALC-OK" {
			return nil
		}
		return assert.AnError
	})

	assert.True(t, result.Blocking())
	assert.Equal(t, []string{"CALC-OK"}, result.Applied)
	assert.Len(t, result.Violations, 1)
	assert.Contains(t, result.Violations[0], "LAB-HARD")
	assert.Len(t, result.Warnings, 1)
	assert.Contains(t, result.Warnings[0], "OPS-SOFT")
}
