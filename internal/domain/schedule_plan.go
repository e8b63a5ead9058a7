package domain

import "time"

type SchedulePlanStatus string

const (
	PlanStatusDraft     SchedulePlanStatus = "DRAFT"
	PlanStatusValidated SchedulePlanStatus = "VALIDATED"
	PlanStatusPublished SchedulePlanStatus = "PUBLISHED"
)

// SchedulePlan is the weekly container of shift slots for one sector.
// Its status gates reallocation: only DRAFT plans may be allocated, a
// completed pass moves the plan to VALIDATED, and PUBLISHED plans are
// immutable.
type SchedulePlan struct {
	ID          int64              `json:"id"`
	SectorID    int64              `json:"sectorID"`
	Name        string             `json:"name"`
	Description string             `json:"description"`
	WeekStart   time.Time          `json:"weekStart"` // Monday of the ISO week
	Status      SchedulePlanStatus `json:"status"`
	CreatedAt   time.Time          `json:"createdAt"`
	Version     int32              `json:"-"`
}

// ShiftSlot is one open position on one date. Start and end times use
// the "15:04:05" wall-clock format; an end time earlier than the start
// rolls over to the next day.
type ShiftSlot struct {
	ID               int64     `json:"id"`
	SchedulePlanID   int64     `json:"schedulePlanID"`
	Date             time.Time `json:"date"`
	StartTime        string    `json:"startTime"`
	EndTime          string    `json:"endTime"`
	WorkedHours      float64   `json:"workedHours"`
	TemplateName     string    `json:"templateName"`
	Activity         string    `json:"activity"`
	AssignedWorkerID *int64    `json:"assignedWorkerID"`
	Assigned         bool      `json:"assigned"`
	Version          int32     `json:"-"`
}

const wallClockLayout = "15:04:05"

// CombineDateTime anchors a "15:04:05" wall-clock string on a date.
func CombineDateTime(date time.Time, clock string) (time.Time, error) {
	t, err := time.Parse(wallClockLayout, clock)
	if err != nil {
		return time.Time{}, err
	}
	return time.Date(date.Year(), date.Month(), date.Day(),
		t.Hour(), t.Minute(), t.Second(), 0, date.Location()), nil
}

// ShiftHours returns the worked hours between two wall-clock strings,
// rolling overnight shifts to the next day.
func ShiftHours(startTime, endTime string) (float64, error) {
	start, err := time.Parse(wallClockLayout, startTime)
	if err != nil {
		return 0, err
	}
	end, err := time.Parse(wallClockLayout, endTime)
	if err != nil {
		return 0, err
	}
	if !end.After(start) {
		end = end.Add(24 * time.Hour)
	}
	return end.Sub(start).Hours(), nil
}

// StartAt returns the slot's start as a point in time.
func (s *ShiftSlot) StartAt() (time.Time, error) {
	return CombineDateTime(s.Date, s.StartTime)
}

// EndAt returns the slot's end as a point in time, rolling overnight
// shifts to the next day.
func (s *ShiftSlot) EndAt() (time.Time, error) {
	start, err := s.StartAt()
	if err != nil {
		return time.Time{}, err
	}
	end, err := CombineDateTime(s.Date, s.EndTime)
	if err != nil {
		return time.Time{}, err
	}
	if !end.After(start) {
		end = end.Add(24 * time.Hour)
	}
	return end, nil
}
