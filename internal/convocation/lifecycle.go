package convocation

import (
	"errors"
	"fmt"
	"time"

	"github.com/hotelops-dev/sector-scheduler/backend/internal/domain"
)

// Lifecycle owns the convocation state machine:
// PENDING -> ACCEPTED | DECLINED | EXPIRED | CANCELLED, all terminal.
// Business outcomes come back as Result values; an error return means a
// storage or unexpected failure.
type Lifecycle struct {
	store               Store
	constraints         ConstraintsFunc
	responseWindow      time.Duration
	rescheduleOnDecline bool
	now                 func() time.Time
}

func NewLifecycle(store Store, constraints ConstraintsFunc, responseWindow time.Duration, rescheduleOnDecline bool) *Lifecycle {
	return &Lifecycle{
		store:               store,
		constraints:         constraints,
		responseWindow:      responseWindow,
		rescheduleOnDecline: rescheduleOnDecline,
		now:                 time.Now,
	}
}

type Result struct {
	Success     bool                `json:"success"`
	Convocation *domain.Convocation `json:"convocation"`
	Errors      []string            `json:"errors"`
}

func failure(errs ...string) *Result {
	return &Result{Success: false, Errors: errs}
}

type CreateRequest struct {
	WorkerID   int64
	SectorID   int64
	Date       time.Time
	StartTime  string
	EndTime    string
	Activity   string
	Origin     domain.ConvocationOrigin
	ReplacesID *int64
}

// Create validates and persists a new offer. A failed legal validation
// blocks creation and returns the findings; on success the validation
// outcome is recorded on the row for audit.
func (l *Lifecycle) Create(req CreateRequest) (*Result, error) {
	worker, err := l.store.GetWorkerByID(req.WorkerID)
	if err != nil {
		return nil, err
	}
	if !worker.Active {
		return failure(fmt.Sprintf("worker %d is not active", worker.ID)), nil
	}
	if req.Activity != "" && !worker.AuthorizedFor(req.Activity) {
		return failure(fmt.Sprintf("worker %d is not authorized for activity %q", worker.ID, req.Activity)), nil
	}

	totalHours, err := domain.ShiftHours(req.StartTime, req.EndTime)
	if err != nil {
		return failure("invalid shift times: " + err.Error()), nil
	}

	cons, err := l.constraints(req.SectorID, req.Date)
	if err != nil {
		return nil, err
	}

	findings, err := l.validateLegal(worker, req.Date, req.StartTime, totalHours, cons)
	if err != nil {
		return nil, err
	}
	if len(findings) > 0 {
		return failure(findings...), nil
	}

	origin := req.Origin
	if origin == "" {
		origin = domain.OriginManual
	}

	c := &domain.Convocation{
		WorkerID:         req.WorkerID,
		SectorID:         req.SectorID,
		Date:             req.Date,
		StartTime:        req.StartTime,
		EndTime:          req.EndTime,
		TotalHours:       totalHours,
		Activity:         req.Activity,
		Status:           domain.ConvocationPending,
		Origin:           origin,
		ResponseDeadline: l.now().Add(l.responseWindow),
		LegalCheckPassed: true,
		LegalCheckNotes:  []string{},
		ReplacesID:       req.ReplacesID,
	}

	if err := l.store.CreateConvocation(c); err != nil {
		return nil, err
	}

	return &Result{Success: true, Convocation: c, Errors: []string{}}, nil
}

// Accept moves a pending offer to ACCEPTED. Past the response deadline
// the offer flips to EXPIRED instead and the call reports failure.
func (l *Lifecycle) Accept(id int64) (*Result, error) {
	c, err := l.store.GetConvocationByID(id)
	if err != nil {
		return nil, err
	}
	if c.Status != domain.ConvocationPending {
		return failure(fmt.Sprintf("convocation is %s; only pending offers can be accepted", c.Status)), nil
	}

	now := l.now()
	if now.After(c.ResponseDeadline) {
		expired, err := l.store.TransitionConvocation(id, domain.ConvocationPending, domain.ConvocationExpired, nil, "response deadline elapsed")
		if errors.Is(err, ErrStaleTransition) {
			return failure("convocation was updated concurrently, please retry"), nil
		}
		if err != nil {
			return nil, err
		}
		return &Result{
			Success:     false,
			Convocation: expired,
			Errors:      []string{"the response deadline has passed; the convocation expired"},
		}, nil
	}

	updated, err := l.store.TransitionConvocation(id, domain.ConvocationPending, domain.ConvocationAccepted, &now, "")
	if errors.Is(err, ErrStaleTransition) {
		return failure("convocation was updated concurrently, please retry"), nil
	}
	if err != nil {
		return nil, err
	}

	return &Result{Success: true, Convocation: updated, Errors: []string{}}, nil
}

type DeclineResult struct {
	Result
	Reschedule *RescheduleOutcome `json:"reschedule"`
}

// Decline records the refusal and, unless suppressed by configuration,
// immediately runs the reschedule cascade.
func (l *Lifecycle) Decline(id int64, reason string) (*DeclineResult, error) {
	c, err := l.store.GetConvocationByID(id)
	if err != nil {
		return nil, err
	}
	if c.Status != domain.ConvocationPending {
		return &DeclineResult{Result: *failure(fmt.Sprintf("convocation is %s; only pending offers can be declined", c.Status))}, nil
	}

	now := l.now()
	updated, err := l.store.TransitionConvocation(id, domain.ConvocationPending, domain.ConvocationDeclined, &now, reason)
	if errors.Is(err, ErrStaleTransition) {
		return &DeclineResult{Result: *failure("convocation was updated concurrently, please retry")}, nil
	}
	if err != nil {
		return nil, err
	}

	res := &DeclineResult{Result: Result{Success: true, Convocation: updated, Errors: []string{}}}

	if l.rescheduleOnDecline {
		outcome, err := l.RescheduleFrom(id)
		if err != nil {
			return nil, err
		}
		res.Reschedule = outcome
	}

	return res, nil
}

// Cancel withdraws a pending or accepted offer. Never cascades.
func (l *Lifecycle) Cancel(id int64, reason string) (*Result, error) {
	c, err := l.store.GetConvocationByID(id)
	if err != nil {
		return nil, err
	}
	if c.Status != domain.ConvocationPending && c.Status != domain.ConvocationAccepted {
		return failure(fmt.Sprintf("convocation is %s; only pending or accepted offers can be cancelled", c.Status)), nil
	}

	now := l.now()
	updated, err := l.store.TransitionConvocation(id, c.Status, domain.ConvocationCancelled, &now, reason)
	if errors.Is(err, ErrStaleTransition) {
		return failure("convocation was updated concurrently, please retry"), nil
	}
	if err != nil {
		return nil, err
	}

	return &Result{Success: true, Convocation: updated, Errors: []string{}}, nil
}

type SweepItem struct {
	ConvocationID int64              `json:"convocationID"`
	Expired       bool               `json:"expired"`
	Error         string             `json:"error,omitempty"`
	Reschedule    *RescheduleOutcome `json:"reschedule,omitempty"`
}

type SweepResult struct {
	Processed int         `json:"processed"`
	Items     []SweepItem `json:"items"`
}

// ExpirePending sweeps every pending offer past its deadline. Rows are
// independent: one row's failure (stale transition, failed cascade) is
// recorded on its item and never aborts the sweep.
func (l *Lifecycle) ExpirePending() (*SweepResult, error) {
	pending, err := l.store.ListPendingPastDeadline(l.now())
	if err != nil {
		return nil, err
	}

	result := &SweepResult{Items: make([]SweepItem, 0, len(pending))}
	for _, c := range pending {
		item := SweepItem{ConvocationID: c.ID}

		_, err := l.store.TransitionConvocation(c.ID, domain.ConvocationPending, domain.ConvocationExpired, nil, "response deadline elapsed")
		if err != nil {
			item.Error = err.Error()
			result.Items = append(result.Items, item)
			continue
		}
		item.Expired = true
		result.Processed++

		outcome, err := l.RescheduleFrom(c.ID)
		if err != nil {
			item.Error = err.Error()
		} else {
			item.Reschedule = outcome
		}
		result.Items = append(result.Items, item)
	}

	return result, nil
}
