package convocation

import (
	"testing"
	"time"

	"github.com/hotelops-dev/sector-scheduler/backend/internal/domain"
	"github.com/hotelops-dev/sector-scheduler/backend/internal/rules"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeStore is an in-memory Store for lifecycle tests.
type fakeStore struct {
	workers      map[int64]*domain.Worker
	convocations map[int64]*domain.Convocation
	nextID       int64
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		workers:      map[int64]*domain.Worker{},
		convocations: map[int64]*domain.Convocation{},
		nextID:       1,
	}
}

func (s *fakeStore) addWorker(w *domain.Worker) *domain.Worker {
	s.workers[w.ID] = w
	return w
}

func (s *fakeStore) GetConvocationByID(id int64) (*domain.Convocation, error) {
	c, ok := s.convocations[id]
	if !ok {
		return nil, assert.AnError
	}
	cp := *c
	return &cp, nil
}

func (s *fakeStore) GetWorkerByID(id int64) (*domain.Worker, error) {
	w, ok := s.workers[id]
	if !ok {
		return nil, assert.AnError
	}
	return w, nil
}

func (s *fakeStore) ListActiveWorkersBySector(sectorID int64, contract domain.ContractKind) ([]*domain.Worker, error) {
	out := []*domain.Worker{}
	for _, w := range s.workers {
		if w.SectorID == sectorID && w.Active && w.ContractKind == contract {
			out = append(out, w)
		}
	}
	return out, nil
}

func (s *fakeStore) ListWorkerConvocationsBetween(workerID int64, from, to time.Time, statuses []domain.ConvocationStatus) ([]*domain.Convocation, error) {
	out := []*domain.Convocation{}
	for _, c := range s.convocations {
		if c.WorkerID != workerID {
			continue
		}
		if c.Date.Before(from) || !c.Date.Before(to) {
			continue
		}
		for _, st := range statuses {
			if c.Status == st {
				out = append(out, c)
				break
			}
		}
	}
	return out, nil
}

func (s *fakeStore) CreateConvocation(c *domain.Convocation) error {
	c.ID = s.nextID
	s.nextID++
	c.CreatedAt = time.Now()
	cp := *c
	s.convocations[c.ID] = &cp
	return nil
}

func (s *fakeStore) TransitionConvocation(id int64, from, to domain.ConvocationStatus, respondedAt *time.Time, reason string) (*domain.Convocation, error) {
	c, ok := s.convocations[id]
	if !ok || c.Status != from {
		return nil, ErrStaleTransition
	}
	c.Status = to
	c.RespondedAt = respondedAt
	c.ResponseReason = reason
	cp := *c
	return &cp, nil
}

func (s *fakeStore) LinkReplacement(originalID, replacementID int64) error {
	s.convocations[originalID].ReplacedByID = &replacementID
	s.convocations[replacementID].ReplacesID = &originalID
	return nil
}

func (s *fakeStore) ListPendingPastDeadline(now time.Time) ([]*domain.Convocation, error) {
	out := []*domain.Convocation{}
	for _, c := range s.convocations {
		if c.Status == domain.ConvocationPending && now.After(c.ResponseDeadline) {
			cp := *c
			out = append(out, &cp)
		}
	}
	return out, nil
}

func baselineConstraints(sectorID int64, referenceDate time.Time) (map[string]float64, error) {
	return rules.BaselineConstraints(), nil
}

var testNow = time.Date(2026, 3, 2, 12, 0, 0, 0, time.UTC) // Monday noon

func newTestLifecycle(store *fakeStore, reschedule bool) *Lifecycle {
	l := NewLifecycle(store, baselineConstraints, 24*time.Hour, reschedule)
	l.now = func() time.Time { return testNow }
	return l
}

func intermittentWorker(id int64) *domain.Worker {
	return &domain.Worker{
		ID:           id,
		SectorID:     1,
		ContractKind: domain.ContractIntermittent,
		Active:       true,
		HiredAt:      testNow.AddDate(0, -1, 0),
	}
}

func offerRequest(workerID int64, daysAhead int) CreateRequest {
	return CreateRequest{
		WorkerID:  workerID,
		SectorID:  1,
		Date:      testNow.AddDate(0, 0, daysAhead).Truncate(24 * time.Hour),
		StartTime: "12:00:00",
		EndTime:   "18:00:00",
	}
}

func TestCreateHappyPath(t *testing.T) {
	store := newFakeStore()
	store.addWorker(intermittentWorker(1))
	l := newTestLifecycle(store, false)

	res, err := l.Create(offerRequest(1, 4))
	require.NoError(t, err)
	require.True(t, res.Success)

	c := res.Convocation
	assert.Equal(t, domain.ConvocationPending, c.Status)
	assert.Equal(t, domain.OriginManual, c.Origin)
	assert.Equal(t, 6.0, c.TotalHours)
	assert.True(t, c.LegalCheckPassed)
	assert.Equal(t, testNow.Add(24*time.Hour), c.ResponseDeadline)
}

func TestCreateAdvanceNoticeBoundary(t *testing.T) {
	store := newFakeStore()
	store.addWorker(intermittentWorker(1))
	l := newTestLifecycle(store, false)

	// shift starting exactly 72h out passes the inclusive boundary
	exact := CreateRequest{
		WorkerID:  1,
		SectorID:  1,
		Date:      testNow.AddDate(0, 0, 3).Truncate(24 * time.Hour),
		StartTime: "12:00:00",
		EndTime:   "18:00:00",
	}
	res, err := l.Create(exact)
	require.NoError(t, err)
	assert.True(t, res.Success)

	// one hour closer fails
	short := exact
	short.Date = testNow.AddDate(0, 0, 2).Truncate(24 * time.Hour)
	short.StartTime = "12:00:00"
	res, err = l.Create(short)
	require.NoError(t, err)
	require.False(t, res.Success)
	assert.Contains(t, res.Errors[0], "advance notice")
}

func TestCreateRejectsOverDailyLimit(t *testing.T) {
	store := newFakeStore()
	store.addWorker(intermittentWorker(1))
	l := newTestLifecycle(store, false)

	req := offerRequest(1, 4)
	req.StartTime = "08:00:00"
	req.EndTime = "18:00:00" // 10h > 8h daily limit
	res, err := l.Create(req)
	require.NoError(t, err)
	require.False(t, res.Success)
	assert.Contains(t, res.Errors[0], "daily limit")
}

func TestCreateRejectsSameDayDuplicate(t *testing.T) {
	store := newFakeStore()
	store.addWorker(intermittentWorker(1))
	l := newTestLifecycle(store, false)

	first, err := l.Create(offerRequest(1, 4))
	require.NoError(t, err)
	require.True(t, first.Success)

	dup := offerRequest(1, 4)
	dup.StartTime = "19:00:00"
	dup.EndTime = "21:00:00"
	res, err := l.Create(dup)
	require.NoError(t, err)
	require.False(t, res.Success)
	assert.Contains(t, res.Errors[0], "already has an open convocation")
}

func TestCreateRejectsWeeklyCapOverflow(t *testing.T) {
	store := newFakeStore()
	w := intermittentWorker(1)
	w.WeeklyHourCap = 10
	store.addWorker(w)
	l := newTestLifecycle(store, false)

	first, err := l.Create(offerRequest(1, 4))
	require.NoError(t, err)
	require.True(t, first.Success)

	res, err := l.Create(offerRequest(1, 5))
	require.NoError(t, err)
	require.False(t, res.Success)
	assert.Contains(t, res.Errors[0], "exceed the cap")
}

func TestCreateRejectsUnauthorizedActivity(t *testing.T) {
	store := newFakeStore()
	w := intermittentWorker(1)
	w.Activities = []string{"housekeeping"}
	store.addWorker(w)
	l := newTestLifecycle(store, false)

	req := offerRequest(1, 4)
	req.Activity = "bar"
	res, err := l.Create(req)
	require.NoError(t, err)
	require.False(t, res.Success)
	assert.Contains(t, res.Errors[0], "not authorized")
}

func TestAcceptPendingOffer(t *testing.T) {
	store := newFakeStore()
	store.addWorker(intermittentWorker(1))
	l := newTestLifecycle(store, false)

	created, err := l.Create(offerRequest(1, 4))
	require.NoError(t, err)

	res, err := l.Accept(created.Convocation.ID)
	require.NoError(t, err)
	require.True(t, res.Success)
	assert.Equal(t, domain.ConvocationAccepted, res.Convocation.Status)
	require.NotNil(t, res.Convocation.RespondedAt)
	assert.Equal(t, testNow, *res.Convocation.RespondedAt)
}

func TestAcceptPastDeadlineExpires(t *testing.T) {
	store := newFakeStore()
	store.addWorker(intermittentWorker(1))
	l := newTestLifecycle(store, false)

	created, err := l.Create(offerRequest(1, 4))
	require.NoError(t, err)

	l.now = func() time.Time { return testNow.Add(25 * time.Hour) }

	res, err := l.Accept(created.Convocation.ID)
	require.NoError(t, err)
	require.False(t, res.Success)
	require.NotNil(t, res.Convocation)
	assert.Equal(t, domain.ConvocationExpired, res.Convocation.Status)
}

func TestAcceptNonPendingFails(t *testing.T) {
	store := newFakeStore()
	store.addWorker(intermittentWorker(1))
	l := newTestLifecycle(store, false)

	created, err := l.Create(offerRequest(1, 4))
	require.NoError(t, err)

	_, err = l.Cancel(created.Convocation.ID, "plan withdrawn")
	require.NoError(t, err)

	res, err := l.Accept(created.Convocation.ID)
	require.NoError(t, err)
	assert.False(t, res.Success)
	assert.Contains(t, res.Errors[0], "CANCELLED")
}

func TestDeclineTriggersRescheduleCascade(t *testing.T) {
	store := newFakeStore()
	store.addWorker(intermittentWorker(1))
	store.addWorker(intermittentWorker(2))
	store.addWorker(intermittentWorker(3))
	l := newTestLifecycle(store, true)

	// load worker 2 with an accepted offer so worker 3 is least loaded
	busy, err := l.Create(offerRequest(2, 5))
	require.NoError(t, err)
	require.True(t, busy.Success)
	_, err = l.Accept(busy.Convocation.ID)
	require.NoError(t, err)

	created, err := l.Create(offerRequest(1, 4))
	require.NoError(t, err)

	res, err := l.Decline(created.Convocation.ID, "family emergency")
	require.NoError(t, err)
	require.True(t, res.Success)
	assert.Equal(t, domain.ConvocationDeclined, res.Convocation.Status)
	assert.Equal(t, "family emergency", res.Convocation.ResponseReason)

	require.NotNil(t, res.Reschedule)
	assert.Equal(t, 2, res.Reschedule.EligibleEmployeesFound)
	require.NotNil(t, res.Reschedule.Replacement)
	assert.Equal(t, int64(3), res.Reschedule.Replacement.WorkerID)
	assert.Equal(t, domain.OriginReschedule, res.Reschedule.Replacement.Origin)

	origin, err := store.GetConvocationByID(created.Convocation.ID)
	require.NoError(t, err)
	require.NotNil(t, origin.ReplacedByID)
	assert.Equal(t, res.Reschedule.Replacement.ID, *origin.ReplacedByID)
	require.NotNil(t, res.Reschedule.Replacement.ReplacesID)
	assert.Equal(t, origin.ID, *res.Reschedule.Replacement.ReplacesID)
}

func TestDeclineWithoutCascadeWhenDisabled(t *testing.T) {
	store := newFakeStore()
	store.addWorker(intermittentWorker(1))
	store.addWorker(intermittentWorker(2))
	l := newTestLifecycle(store, false)

	created, err := l.Create(offerRequest(1, 4))
	require.NoError(t, err)

	res, err := l.Decline(created.Convocation.ID, "")
	require.NoError(t, err)
	require.True(t, res.Success)
	assert.Nil(t, res.Reschedule)
}

func TestRescheduleWithNoEligibleWorkers(t *testing.T) {
	store := newFakeStore()
	store.addWorker(intermittentWorker(1))
	l := newTestLifecycle(store, true)

	created, err := l.Create(offerRequest(1, 4))
	require.NoError(t, err)

	res, err := l.Decline(created.Convocation.ID, "sick")
	require.NoError(t, err)
	require.True(t, res.Success)

	require.NotNil(t, res.Reschedule)
	assert.Equal(t, 0, res.Reschedule.EligibleEmployeesFound)
	assert.Nil(t, res.Reschedule.Replacement)
}

func TestRescheduleRecordsFailedAttempts(t *testing.T) {
	store := newFakeStore()
	store.addWorker(intermittentWorker(1))
	capped := intermittentWorker(2)
	capped.WeeklyHourCap = 4 // below the offered 6h
	store.addWorker(capped)
	l := newTestLifecycle(store, true)

	created, err := l.Create(offerRequest(1, 4))
	require.NoError(t, err)

	res, err := l.Decline(created.Convocation.ID, "sick")
	require.NoError(t, err)

	require.NotNil(t, res.Reschedule)
	assert.Equal(t, 1, res.Reschedule.EligibleEmployeesFound)
	assert.Nil(t, res.Reschedule.Replacement)
	require.Len(t, res.Reschedule.Attempts, 1)
	assert.Equal(t, int64(2), res.Reschedule.Attempts[0].WorkerID)
}

func TestRescheduleRefusesAlreadyReplacedOrigin(t *testing.T) {
	store := newFakeStore()
	store.addWorker(intermittentWorker(1))
	store.addWorker(intermittentWorker(2))
	l := newTestLifecycle(store, true)

	created, err := l.Create(offerRequest(1, 4))
	require.NoError(t, err)

	res, err := l.Decline(created.Convocation.ID, "sick")
	require.NoError(t, err)
	require.NotNil(t, res.Reschedule.Replacement)

	again, err := l.RescheduleFrom(created.Convocation.ID)
	require.NoError(t, err)
	assert.Nil(t, again.Replacement)
	require.NotEmpty(t, again.Attempts)
	assert.Contains(t, again.Attempts[0].Errors[0], "already replaced")
}

func TestCancelAcceptedOffer(t *testing.T) {
	store := newFakeStore()
	store.addWorker(intermittentWorker(1))
	l := newTestLifecycle(store, false)

	created, err := l.Create(offerRequest(1, 4))
	require.NoError(t, err)
	_, err = l.Accept(created.Convocation.ID)
	require.NoError(t, err)

	res, err := l.Cancel(created.Convocation.ID, "demand dropped")
	require.NoError(t, err)
	require.True(t, res.Success)
	assert.Equal(t, domain.ConvocationCancelled, res.Convocation.Status)
}

func TestExpirePendingSweep(t *testing.T) {
	store := newFakeStore()
	store.addWorker(intermittentWorker(1))
	store.addWorker(intermittentWorker(2))
	l := newTestLifecycle(store, true)

	first, err := l.Create(offerRequest(1, 4))
	require.NoError(t, err)
	second, err := l.Create(offerRequest(2, 5))
	require.NoError(t, err)

	l.now = func() time.Time { return testNow.Add(25 * time.Hour) }

	sweep, err := l.ExpirePending()
	require.NoError(t, err)
	assert.Equal(t, 2, sweep.Processed)
	require.Len(t, sweep.Items, 2)
	for _, item := range sweep.Items {
		assert.True(t, item.Expired)
		assert.NotNil(t, item.Reschedule)
	}

	for _, id := range []int64{first.Convocation.ID, second.Convocation.ID} {
		c, err := store.GetConvocationByID(id)
		require.NoError(t, err)
		assert.Equal(t, domain.ConvocationExpired, c.Status)
	}
}

func TestExpirePendingLeavesFreshOffersAlone(t *testing.T) {
	store := newFakeStore()
	store.addWorker(intermittentWorker(1))
	l := newTestLifecycle(store, false)

	created, err := l.Create(offerRequest(1, 4))
	require.NoError(t, err)

	sweep, err := l.ExpirePending()
	require.NoError(t, err)
	assert.Zero(t, sweep.Processed)
	assert.Empty(t, sweep.Items)

	c, err := store.GetConvocationByID(created.Convocation.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.ConvocationPending, c.Status)
}
