package seed

import (
	"testing"
	"time"

	"github.com/hotelops-dev/sector-scheduler/backend/internal/rules"
	"github.com/stretchr/testify/assert"
)

func TestDemoRulesContributeConstraints(t *testing.T) {
	engine := rules.NewEngine(demoRules([]int64{1, 2, 3}))
	set := engine.Constraints(rules.Context{SectorID: 1, ReferenceDate: time.Now()})

	assert.Equal(t, 44.0, set.Values[rules.KeyMaxWeeklyHours])
	assert.Equal(t, 11.0, set.Values[rules.KeyMinRestHours])
	assert.Equal(t, 15.0, set.Values[rules.KeyBufferPercent])
	assert.Equal(t, 2.0, set.Values[rules.KeyHolidayFactor])

	// keys no demo rule declares keep the baseline; in particular the
	// rest-gap answer's "11 hours" stays out of the other hour keys
	assert.Equal(t, 8.0, set.Values[rules.KeyMaxDailyHours])
	assert.Equal(t, 72.0, set.Values[rules.KeyAdvanceNoticeHours])

	assert.Equal(t,
		[]string{"LAB-WEEKLY-CAP", "LAB-REST-GAP", "OPS-FRONT-BUFFER", "CALC-HOLIDAY"},
		set.AppliedRuleCodes)
}

func TestDemoBufferRuleScopesToFrontDesk(t *testing.T) {
	engine := rules.NewEngine(demoRules([]int64{1, 2, 3}))
	set := engine.Constraints(rules.Context{SectorID: 2, ReferenceDate: time.Now()})

	assert.Equal(t, 10.0, set.Values[rules.KeyBufferPercent])
	assert.NotContains(t, set.AppliedRuleCodes, "OPS-FRONT-BUFFER")
}
