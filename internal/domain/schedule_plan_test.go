package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestShiftHours(t *testing.T) {
	tests := []struct {
		name      string
		startTime string
		endTime   string
		want      float64
	}{
		{"regular shift", "09:00:00", "17:00:00", 8},
		{"half hour granularity", "14:00:00", "18:30:00", 4.5},
		{"overnight rolls to next day", "22:00:00", "06:00:00", 8},
		{"equal times count as a full day", "08:00:00", "08:00:00", 24},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ShiftHours(tt.startTime, tt.endTime)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestShiftHoursRejectsBadClock(t *testing.T) {
	_, err := ShiftHours("9am", "17:00:00")
	assert.Error(t, err)
}

func TestISOWeekday(t *testing.T) {
	monday := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, int32(1), ISOWeekday(monday))
	assert.Equal(t, int32(6), ISOWeekday(monday.AddDate(0, 0, 5)))
	assert.Equal(t, int32(7), ISOWeekday(monday.AddDate(0, 0, 6)))
}

func TestUnavailableOn(t *testing.T) {
	monday := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)
	vacStart := monday.AddDate(0, 0, 14)
	vacEnd := monday.AddDate(0, 0, 20)

	w := &Worker{
		UnavailableWeekdays: []int32{7},
		UnavailableDates:    []time.Time{monday.AddDate(0, 0, 2)},
		VacationStart:       &vacStart,
		VacationEnd:         &vacEnd,
	}

	assert.False(t, w.UnavailableOn(monday))
	assert.True(t, w.UnavailableOn(monday.AddDate(0, 0, 6)), "blocked weekday")
	assert.True(t, w.UnavailableOn(monday.AddDate(0, 0, 2)), "blocked date")
	assert.True(t, w.UnavailableOn(vacStart), "vacation start is inclusive")
	assert.True(t, w.UnavailableOn(vacEnd), "vacation end is inclusive")
	assert.False(t, w.UnavailableOn(vacEnd.AddDate(0, 0, 1)))
}

func TestAuthorizedFor(t *testing.T) {
	w := &Worker{Activities: []string{"reception", "bar"}}
	assert.True(t, w.AuthorizedFor(""))
	assert.True(t, w.AuthorizedFor("bar"))
	assert.False(t, w.AuthorizedFor("kitchen"))
}
