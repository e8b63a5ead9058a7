package domain

import "time"

type ConvocationStatus string

const (
	ConvocationPending   ConvocationStatus = "PENDING"
	ConvocationAccepted  ConvocationStatus = "ACCEPTED"
	ConvocationDeclined  ConvocationStatus = "DECLINED"
	ConvocationExpired   ConvocationStatus = "EXPIRED"
	ConvocationCancelled ConvocationStatus = "CANCELLED"
)

type ConvocationOrigin string

const (
	OriginBaseline   ConvocationOrigin = "BASELINE"
	OriginAdjustment ConvocationOrigin = "ADJUSTMENT"
	OriginReschedule ConvocationOrigin = "RESCHEDULE"
	OriginManual     ConvocationOrigin = "MANUAL"
)

// Convocation is a formal, time-bound work offer to a worker. Once a
// terminal status is reached the row is history, except for the
// replacement link set when a reschedule succeeds.
type Convocation struct {
	ID               int64             `json:"id"`
	WorkerID         int64             `json:"workerID"`
	SectorID         int64             `json:"sectorID"`
	Date             time.Time         `json:"date"`
	StartTime        string            `json:"startTime"`
	EndTime          string            `json:"endTime"`
	TotalHours       float64           `json:"totalHours"`
	Activity         string            `json:"activity"`
	Status           ConvocationStatus `json:"status"`
	Origin           ConvocationOrigin `json:"origin"`
	ResponseDeadline time.Time         `json:"responseDeadline"`
	RespondedAt      *time.Time        `json:"respondedAt"`
	ResponseReason   string            `json:"responseReason"`
	LegalCheckPassed bool              `json:"legalCheckPassed"`
	LegalCheckNotes  []string          `json:"legalCheckNotes"`
	ReplacesID       *int64            `json:"replacesID"`
	ReplacedByID     *int64            `json:"replacedByID"`
	CreatedAt        time.Time         `json:"createdAt"`
	Version          int32             `json:"-"`
}

// Terminal reports whether the status admits no further transition.
func (s ConvocationStatus) Terminal() bool {
	return s != ConvocationPending
}

// StartAt returns the offered shift's start as a point in time.
func (c *Convocation) StartAt() (time.Time, error) {
	return CombineDateTime(c.Date, c.StartTime)
}
