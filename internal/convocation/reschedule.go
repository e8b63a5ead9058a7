package convocation

import (
	"fmt"
	"sort"

	"github.com/hotelops-dev/sector-scheduler/backend/internal/domain"
)

type CandidateAttempt struct {
	WorkerID int64    `json:"workerID"`
	Errors   []string `json:"errors"`
}

// RescheduleOutcome is always structured: the cascade never silently
// drops a gap. Either Replacement is set, or EligibleEmployeesFound is
// zero, or every attempt is listed with its failure reasons.
type RescheduleOutcome struct {
	OriginConvocationID    int64               `json:"originConvocationID"`
	EligibleEmployeesFound int                 `json:"eligibleEmployeesFound"`
	Attempts               []CandidateAttempt  `json:"attempts"`
	Replacement            *domain.Convocation `json:"replacement"`
}

// RescheduleFrom searches active intermittent workers of the origin's
// sector (excluding the original worker) for one who passes the same
// legal validation for the same date, times and activity. Candidates
// are tried least-loaded first; the first successful replacement is
// linked to the original and ends the search.
func (l *Lifecycle) RescheduleFrom(originID int64) (*RescheduleOutcome, error) {
	origin, err := l.store.GetConvocationByID(originID)
	if err != nil {
		return nil, err
	}

	outcome := &RescheduleOutcome{
		OriginConvocationID: originID,
		Attempts:            []CandidateAttempt{},
	}

	if origin.Status != domain.ConvocationDeclined && origin.Status != domain.ConvocationExpired {
		outcome.Attempts = append(outcome.Attempts, CandidateAttempt{
			Errors: []string{fmt.Sprintf("convocation is %s; only declined or expired offers can be rescheduled", origin.Status)},
		})
		return outcome, nil
	}
	if origin.ReplacedByID != nil {
		outcome.Attempts = append(outcome.Attempts, CandidateAttempt{
			Errors: []string{fmt.Sprintf("convocation is already replaced by %d", *origin.ReplacedByID)},
		})
		return outcome, nil
	}

	workers, err := l.store.ListActiveWorkersBySector(origin.SectorID, domain.ContractIntermittent)
	if err != nil {
		return nil, err
	}

	candidates := make([]*domain.Worker, 0, len(workers))
	for _, w := range workers {
		if w.ID == origin.WorkerID || !w.Active {
			continue
		}
		if origin.Activity != "" && !w.AuthorizedFor(origin.Activity) {
			continue
		}
		candidates = append(candidates, w)
	}
	outcome.EligibleEmployeesFound = len(candidates)
	if len(candidates) == 0 {
		return outcome, nil
	}

	ordered, err := l.orderLeastLoaded(candidates, origin)
	if err != nil {
		return nil, err
	}

	for _, w := range ordered {
		res, err := l.Create(CreateRequest{
			WorkerID:   w.ID,
			SectorID:   origin.SectorID,
			Date:       origin.Date,
			StartTime:  origin.StartTime,
			EndTime:    origin.EndTime,
			Activity:   origin.Activity,
			Origin:     domain.OriginReschedule,
			ReplacesID: &origin.ID,
		})
		if err != nil {
			return nil, err
		}
		if !res.Success {
			outcome.Attempts = append(outcome.Attempts, CandidateAttempt{WorkerID: w.ID, Errors: res.Errors})
			continue
		}

		if err := l.store.LinkReplacement(origin.ID, res.Convocation.ID); err != nil {
			return nil, err
		}
		outcome.Replacement = res.Convocation
		return outcome, nil
	}

	return outcome, nil
}

// orderLeastLoaded sorts candidates by their open hours in the target
// ISO week, then by id for determinism.
func (l *Lifecycle) orderLeastLoaded(candidates []*domain.Worker, origin *domain.Convocation) ([]*domain.Worker, error) {
	weekStart := weekStartOf(origin.Date)
	load := make(map[int64]float64, len(candidates))

	for _, w := range candidates {
		open, err := l.store.ListWorkerConvocationsBetween(w.ID, weekStart, weekStart.AddDate(0, 0, 7),
			[]domain.ConvocationStatus{domain.ConvocationPending, domain.ConvocationAccepted})
		if err != nil {
			return nil, err
		}
		for _, c := range open {
			load[w.ID] += c.TotalHours
		}
	}

	ordered := make([]*domain.Worker, len(candidates))
	copy(ordered, candidates)
	sort.SliceStable(ordered, func(i, j int) bool {
		if load[ordered[i].ID] != load[ordered[j].ID] {
			return load[ordered[i].ID] < load[ordered[j].ID]
		}
		return ordered[i].ID < ordered[j].ID
	})

	return ordered, nil
}
