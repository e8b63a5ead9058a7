package convocation

import (
	"errors"
	"time"

	"github.com/hotelops-dev/sector-scheduler/backend/internal/domain"
)

// ErrStaleTransition is returned by Store implementations when a status
// transition finds the row no longer in the expected state. The caller
// failed a race (e.g. accept vs expire) and must not double-apply.
var ErrStaleTransition = errors.New("convocation status changed concurrently")

// Store is the persistence surface the lifecycle needs. The repository
// implements it; tests use an in-memory fake.
type Store interface {
	GetConvocationByID(id int64) (*domain.Convocation, error)
	GetWorkerByID(id int64) (*domain.Worker, error)
	ListActiveWorkersBySector(sectorID int64, contract domain.ContractKind) ([]*domain.Worker, error)
	// ListWorkerConvocationsBetween returns the worker's convocations
	// with one of the given statuses whose date falls in [from, to).
	ListWorkerConvocationsBetween(workerID int64, from, to time.Time, statuses []domain.ConvocationStatus) ([]*domain.Convocation, error)
	CreateConvocation(c *domain.Convocation) error
	// TransitionConvocation applies from -> to only if the row is still
	// in the from status, inside one transaction, and returns the
	// updated row. A stale row yields ErrStaleTransition.
	TransitionConvocation(id int64, from, to domain.ConvocationStatus, respondedAt *time.Time, reason string) (*domain.Convocation, error)
	LinkReplacement(originalID, replacementID int64) error
	ListPendingPastDeadline(now time.Time) ([]*domain.Convocation, error)
}

// ConstraintsFunc resolves the sector's constraint map for a reference
// date. Wired to the rule engine (with caching) by the handler layer.
type ConstraintsFunc func(sectorID int64, referenceDate time.Time) (map[string]float64, error)
