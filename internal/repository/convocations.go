package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"github.com/hotelops-dev/sector-scheduler/backend/internal/convocation"
	"github.com/hotelops-dev/sector-scheduler/backend/internal/domain"
)

const convocationColumns = `
	id, worker_id, sector_id, date, start_time, end_time, total_hours, activity,
	status, origin, response_deadline, responded_at, response_reason,
	legal_check_passed, legal_check_notes, replaces_id, replaced_by_id,
	created_at, version
`

func scanConvocation(scan func(dst ...any) error) (*domain.Convocation, error) {
	c := &domain.Convocation{}
	var notes []byte

	dst := []any{
		&c.ID, &c.WorkerID, &c.SectorID, &c.Date, &c.StartTime, &c.EndTime, &c.TotalHours, &c.Activity,
		&c.Status, &c.Origin, &c.ResponseDeadline, &c.RespondedAt, &c.ResponseReason,
		&c.LegalCheckPassed, &notes, &c.ReplacesID, &c.ReplacedByID,
		&c.CreatedAt, &c.Version,
	}
	if err := scan(dst...); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(notes, &c.LegalCheckNotes); err != nil {
		return nil, err
	}

	return c, nil
}

func (r *Repository) CreateConvocation(c *domain.Convocation) error {
	notes, err := json.Marshal(c.LegalCheckNotes)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO convocations (worker_id, sector_id, date, start_time, end_time, total_hours, activity,
			status, origin, response_deadline, legal_check_passed, legal_check_notes, replaces_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		RETURNING id, created_at, version
	`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	args := []any{
		c.WorkerID, c.SectorID, c.Date, c.StartTime, c.EndTime, c.TotalHours, c.Activity,
		c.Status, c.Origin, c.ResponseDeadline, c.LegalCheckPassed, notes, c.ReplacesID,
	}
	if err := r.dbpool.QueryRowContext(ctx, query, args...).Scan(&c.ID, &c.CreatedAt, &c.Version); err != nil {
		return err
	}

	return nil
}

func (r *Repository) GetConvocationByID(id int64) (*domain.Convocation, error) {
	query := `SELECT ` + convocationColumns + ` FROM convocations WHERE id = $1`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	row := r.dbpool.QueryRowContext(ctx, query, id)
	return scanConvocation(row.Scan)
}

func (r *Repository) GetConvocationsBySector(sectorID int64) ([]*domain.Convocation, error) {
	query := `SELECT ` + convocationColumns + ` FROM convocations WHERE sector_id = $1 ORDER BY date DESC, id DESC`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	rows, err := r.dbpool.QueryContext(ctx, query, sectorID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	convocations := []*domain.Convocation{}
	for rows.Next() {
		c, err := scanConvocation(rows.Scan)
		if err != nil {
			return nil, err
		}
		convocations = append(convocations, c)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return convocations, nil
}

func (r *Repository) ListWorkerConvocationsBetween(workerID int64, from, to time.Time, statuses []domain.ConvocationStatus) ([]*domain.Convocation, error) {
	query := `SELECT ` + convocationColumns + `
		FROM convocations
		WHERE worker_id = $1 AND date >= $2 AND date < $3 AND status = ANY($4)
		ORDER BY date, id
	`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	statusStrings := make([]string, len(statuses))
	for i, s := range statuses {
		statusStrings[i] = string(s)
	}

	rows, err := r.dbpool.QueryContext(ctx, query, workerID, from, to, statusStrings)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	convocations := []*domain.Convocation{}
	for rows.Next() {
		c, err := scanConvocation(rows.Scan)
		if err != nil {
			return nil, err
		}
		convocations = append(convocations, c)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return convocations, nil
}

// TransitionConvocation applies a guarded status transition. The WHERE
// clause re-checks the current status inside the same statement, so a
// concurrent transition makes this one fail with ErrStaleTransition
// instead of double-applying.
func (r *Repository) TransitionConvocation(id int64, from, to domain.ConvocationStatus, respondedAt *time.Time, reason string) (*domain.Convocation, error) {
	query := `
		UPDATE convocations
		SET status = $1, responded_at = $2, response_reason = $3, version = version + 1
		WHERE id = $4 AND status = $5
		RETURNING ` + convocationColumns

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	row := r.dbpool.QueryRowContext(ctx, query, to, respondedAt, reason, id, from)
	c, err := scanConvocation(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, convocation.ErrStaleTransition
	}
	if err != nil {
		return nil, err
	}

	return c, nil
}

// LinkReplacement sets the bidirectional original <-> replacement link.
func (r *Repository) LinkReplacement(originalID, replacementID int64) error {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.TransactionTimeout)*time.Second)
	defer cancel()

	tx, err := r.dbpool.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if _, err := tx.ExecContext(ctx, `UPDATE convocations SET replaced_by_id = $1, version = version + 1 WHERE id = $2`, replacementID, originalID); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, `UPDATE convocations SET replaces_id = $1, version = version + 1 WHERE id = $2`, originalID, replacementID); err != nil {
		return err
	}

	return tx.Commit()
}

func (r *Repository) ListPendingPastDeadline(now time.Time) ([]*domain.Convocation, error) {
	query := `SELECT ` + convocationColumns + `
		FROM convocations
		WHERE status = $1 AND response_deadline < $2
		ORDER BY response_deadline, id
	`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	rows, err := r.dbpool.QueryContext(ctx, query, domain.ConvocationPending, now)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	convocations := []*domain.Convocation{}
	for rows.Next() {
		c, err := scanConvocation(rows.Scan)
		if err != nil {
			return nil, err
		}
		convocations = append(convocations, c)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return convocations, nil
}
