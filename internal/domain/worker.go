package domain

import (
	"slices"
	"time"
)

type ContractKind string

const (
	ContractIntermittent ContractKind = "INTERMITTENT"
	ContractPermanent    ContractKind = "PERMANENT"
)

type Worker struct {
	ID                  int64        `json:"id"`
	SectorID            int64        `json:"sectorID"`
	FullName            string       `json:"fullName"`
	Email               string       `json:"email"`
	ContractKind        ContractKind `json:"contractKind"`
	WeeklyHourCap       float64      `json:"weeklyHourCap"`
	UnavailableWeekdays []int32      `json:"unavailableWeekdays"` // 1 = Monday ... 7 = Sunday
	UnavailableDates    []time.Time  `json:"unavailableDates"`
	PreferredDaysOff    []int32      `json:"preferredDaysOff"`
	VacationStart       *time.Time   `json:"vacationStart"`
	VacationEnd         *time.Time   `json:"vacationEnd"`
	LastFullWeekOff     *time.Time   `json:"lastFullWeekOff"`
	Activities          []string     `json:"activities"`
	Active              bool         `json:"active"`
	HiredAt             time.Time    `json:"hiredAt"`
	CreatedAt           time.Time    `json:"createdAt"`
	Version             int32        `json:"-"`
}

// ISOWeekday returns the day of week of t with Monday = 1 and Sunday = 7.
func ISOWeekday(t time.Time) int32 {
	wd := int32(t.Weekday())
	if wd == 0 {
		wd = 7
	}
	return wd
}

// UnavailableOn reports whether the worker cannot work on the given
// date: recurring weekday block, specific blocked date or vacation.
func (w *Worker) UnavailableOn(date time.Time) bool {
	if slices.Contains(w.UnavailableWeekdays, ISOWeekday(date)) {
		return true
	}
	for _, d := range w.UnavailableDates {
		if sameDay(d, date) {
			return true
		}
	}
	if w.VacationStart != nil && w.VacationEnd != nil &&
		!date.Before(*w.VacationStart) && !date.After(*w.VacationEnd) {
		return true
	}
	return false
}

// PrefersDayOff reports whether the worker asked not to be scheduled on
// the date's weekday. A preference, not a block.
func (w *Worker) PrefersDayOff(date time.Time) bool {
	return slices.Contains(w.PreferredDaysOff, ISOWeekday(date))
}

// AuthorizedFor reports whether the worker may perform the activity.
// An empty activity never restricts.
func (w *Worker) AuthorizedFor(activity string) bool {
	if activity == "" {
		return true
	}
	return slices.Contains(w.Activities, activity)
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}
