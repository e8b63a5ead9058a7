package repository

import (
	"context"
	"encoding/json"
	"time"

	"github.com/hotelops-dev/sector-scheduler/backend/internal/domain"
)

// workerColumns matches scanWorker below.
const workerColumns = `
	id, sector_id, full_name, email, contract_kind, weekly_hour_cap,
	unavailable_weekdays, unavailable_dates, preferred_days_off,
	vacation_start, vacation_end, last_full_week_off, activities,
	active, hired_at, created_at, version
`

func scanWorker(scan func(dst ...any) error) (*domain.Worker, error) {
	w := &domain.Worker{}
	var weekdays, dates, daysOff, activities []byte

	dst := []any{
		&w.ID, &w.SectorID, &w.FullName, &w.Email, &w.ContractKind, &w.WeeklyHourCap,
		&weekdays, &dates, &daysOff,
		&w.VacationStart, &w.VacationEnd, &w.LastFullWeekOff, &activities,
		&w.Active, &w.HiredAt, &w.CreatedAt, &w.Version,
	}
	if err := scan(dst...); err != nil {
		return nil, err
	}

	if err := json.Unmarshal(weekdays, &w.UnavailableWeekdays); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(dates, &w.UnavailableDates); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(daysOff, &w.PreferredDaysOff); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(activities, &w.Activities); err != nil {
		return nil, err
	}

	return w, nil
}

func (r *Repository) CreateWorker(w *domain.Worker) error {
	weekdays, err := json.Marshal(w.UnavailableWeekdays)
	if err != nil {
		return err
	}
	dates, err := json.Marshal(w.UnavailableDates)
	if err != nil {
		return err
	}
	daysOff, err := json.Marshal(w.PreferredDaysOff)
	if err != nil {
		return err
	}
	activities, err := json.Marshal(w.Activities)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO workers (sector_id, full_name, email, contract_kind, weekly_hour_cap,
			unavailable_weekdays, unavailable_dates, preferred_days_off,
			vacation_start, vacation_end, last_full_week_off, activities, active, hired_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		RETURNING id, created_at, version
	`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	args := []any{
		w.SectorID, w.FullName, w.Email, w.ContractKind, w.WeeklyHourCap,
		weekdays, dates, daysOff,
		w.VacationStart, w.VacationEnd, w.LastFullWeekOff, activities, w.Active, w.HiredAt,
	}
	if err := r.dbpool.QueryRowContext(ctx, query, args...).Scan(&w.ID, &w.CreatedAt, &w.Version); err != nil {
		return err
	}

	return nil
}

func (r *Repository) GetWorkerByID(id int64) (*domain.Worker, error) {
	query := `SELECT ` + workerColumns + ` FROM workers WHERE id = $1`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	row := r.dbpool.QueryRowContext(ctx, query, id)
	return scanWorker(row.Scan)
}

func (r *Repository) GetWorkersBySector(sectorID int64) ([]*domain.Worker, error) {
	query := `SELECT ` + workerColumns + ` FROM workers WHERE sector_id = $1 ORDER BY id`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	rows, err := r.dbpool.QueryContext(ctx, query, sectorID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	workers := make([]*domain.Worker, 0)
	for rows.Next() {
		w, err := scanWorker(rows.Scan)
		if err != nil {
			return nil, err
		}
		workers = append(workers, w)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return workers, nil
}

func (r *Repository) ListActiveWorkersBySector(sectorID int64, contract domain.ContractKind) ([]*domain.Worker, error) {
	query := `SELECT ` + workerColumns + ` FROM workers WHERE sector_id = $1 AND contract_kind = $2 AND active ORDER BY id`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	rows, err := r.dbpool.QueryContext(ctx, query, sectorID, contract)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	workers := make([]*domain.Worker, 0)
	for rows.Next() {
		w, err := scanWorker(rows.Scan)
		if err != nil {
			return nil, err
		}
		workers = append(workers, w)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return workers, nil
}

func (r *Repository) UpdateWorker(w *domain.Worker) error {
	weekdays, err := json.Marshal(w.UnavailableWeekdays)
	if err != nil {
		return err
	}
	dates, err := json.Marshal(w.UnavailableDates)
	if err != nil {
		return err
	}
	daysOff, err := json.Marshal(w.PreferredDaysOff)
	if err != nil {
		return err
	}
	activities, err := json.Marshal(w.Activities)
	if err != nil {
		return err
	}

	query := `
		UPDATE workers
		SET
			contract_kind = $1,
			weekly_hour_cap = $2,
			unavailable_weekdays = $3,
			unavailable_dates = $4,
			preferred_days_off = $5,
			vacation_start = $6,
			vacation_end = $7,
			last_full_week_off = $8,
			activities = $9,
			active = $10,
			version = version + 1
		WHERE id = $11 AND version = $12
		RETURNING version
	`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	args := []any{
		w.ContractKind, w.WeeklyHourCap, weekdays, dates, daysOff,
		w.VacationStart, w.VacationEnd, w.LastFullWeekOff, activities, w.Active,
		w.ID, w.Version,
	}
	if err := r.dbpool.QueryRowContext(ctx, query, args...).Scan(&w.Version); err != nil {
		return err
	}

	return nil
}
