package convocation

import (
	"fmt"
	"time"

	"github.com/hotelops-dev/sector-scheduler/backend/internal/domain"
	"github.com/hotelops-dev/sector-scheduler/backend/internal/rules"
)

// weekStartOf returns the Monday of the date's ISO week, at midnight.
func weekStartOf(date time.Time) time.Time {
	d := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, date.Location())
	return d.AddDate(0, 0, -int(domain.ISOWeekday(d)-1))
}

// validateLegal runs the legal checks gating creation of an offer.
// Returns human-readable findings; empty means the offer may be made.
func (l *Lifecycle) validateLegal(w *domain.Worker, date time.Time, startTime string, totalHours float64, cons map[string]float64) ([]string, error) {
	findings := []string{}
	now := l.now()

	startAt, err := domain.CombineDateTime(date, startTime)
	if err != nil {
		return nil, fmt.Errorf("invalid start time %q: %w", startTime, err)
	}

	// advance notice, boundary inclusive
	minNotice := cons[rules.KeyAdvanceNoticeHours]
	if notice := startAt.Sub(now).Hours(); notice < minNotice {
		findings = append(findings, fmt.Sprintf("advance notice %.2fh is below the legal minimum of %.2fh", notice, minNotice))
	}

	maxDaily := cons[rules.KeyMaxDailyHours]
	if totalHours <= 0 {
		findings = append(findings, "offered hours must be positive")
	} else if totalHours > maxDaily {
		findings = append(findings, fmt.Sprintf("offered %.2fh exceed the daily limit of %.2fh", totalHours, maxDaily))
	}

	weekStart := weekStartOf(date)
	open, err := l.store.ListWorkerConvocationsBetween(w.ID, weekStart, weekStart.AddDate(0, 0, 7),
		[]domain.ConvocationStatus{domain.ConvocationPending, domain.ConvocationAccepted})
	if err != nil {
		return nil, err
	}

	weekHours := totalHours
	for _, c := range open {
		weekHours += c.TotalHours
		if sameDay(c.Date, date) {
			findings = append(findings, fmt.Sprintf("worker already has an open convocation on %s", date.Format("2006-01-02")))
		}
	}

	weeklyCap := cons[rules.KeyMaxWeeklyHours]
	if w.WeeklyHourCap > 0 && w.WeeklyHourCap < weeklyCap {
		weeklyCap = w.WeeklyHourCap
	}
	if weekHours > weeklyCap {
		findings = append(findings, fmt.Sprintf("projected %.2fh in the week exceed the cap of %.2fh", weekHours, weeklyCap))
	}

	maxWithoutWeekOff := cons[rules.KeyMaxDaysWithoutFullWeekOff]
	lastOff := w.HiredAt
	if w.LastFullWeekOff != nil {
		lastOff = *w.LastFullWeekOff
	}
	if !lastOff.IsZero() && date.Sub(lastOff).Hours()/24 > maxWithoutWeekOff {
		findings = append(findings, fmt.Sprintf("a full week off is overdue (last one ended %s)", lastOff.Format("2006-01-02")))
	}

	return findings, nil
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}
