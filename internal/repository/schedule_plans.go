package repository

import (
	"context"
	"time"

	"github.com/hotelops-dev/sector-scheduler/backend/internal/allocator"
	"github.com/hotelops-dev/sector-scheduler/backend/internal/domain"
)

func (r *Repository) CreateSchedulePlan(plan *domain.SchedulePlan) error {
	query := `
		INSERT INTO schedule_plans (sector_id, name, description, week_start, status)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at, version
	`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	args := []any{plan.SectorID, plan.Name, plan.Description, plan.WeekStart, plan.Status}
	if err := r.dbpool.QueryRowContext(ctx, query, args...).Scan(&plan.ID, &plan.CreatedAt, &plan.Version); err != nil {
		return err
	}

	return nil
}

func (r *Repository) GetSchedulePlanByID(id int64) (*domain.SchedulePlan, error) {
	query := `
		SELECT sector_id, name, description, week_start, status, created_at, version
		FROM schedule_plans WHERE id = $1
	`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	plan := &domain.SchedulePlan{
		ID: id,
	}

	dst := []any{&plan.SectorID, &plan.Name, &plan.Description, &plan.WeekStart, &plan.Status, &plan.CreatedAt, &plan.Version}
	if err := r.dbpool.QueryRowContext(ctx, query, id).Scan(dst...); err != nil {
		return nil, err
	}

	return plan, nil
}

func (r *Repository) GetSchedulePlansBySector(sectorID int64) ([]*domain.SchedulePlan, error) {
	query := `
		SELECT id, sector_id, name, description, week_start, status, created_at, version
		FROM schedule_plans
		WHERE sector_id = $1
		ORDER BY week_start DESC
	`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	rows, err := r.dbpool.QueryContext(ctx, query, sectorID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	plans := []*domain.SchedulePlan{}
	for rows.Next() {
		var plan domain.SchedulePlan
		dst := []any{&plan.ID, &plan.SectorID, &plan.Name, &plan.Description, &plan.WeekStart, &plan.Status, &plan.CreatedAt, &plan.Version}
		if err := rows.Scan(dst...); err != nil {
			return nil, err
		}
		plans = append(plans, &plan)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return plans, nil
}

// UpdateSchedulePlanStatus moves the plan between statuses with an
// optimistic check on the current one, so two concurrent passes cannot
// both validate the same plan.
func (r *Repository) UpdateSchedulePlanStatus(plan *domain.SchedulePlan, from, to domain.SchedulePlanStatus) error {
	query := `
		UPDATE schedule_plans
		SET status = $1, version = version + 1
		WHERE id = $2 AND status = $3 AND version = $4
		RETURNING version
	`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	if err := r.dbpool.QueryRowContext(ctx, query, to, plan.ID, from, plan.Version).Scan(&plan.Version); err != nil {
		return err
	}
	plan.Status = to

	return nil
}

func (r *Repository) DeleteSchedulePlan(id int64) error {
	query := `
		DELETE FROM schedule_plans WHERE id = $1
	`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	if _, err := r.dbpool.ExecContext(ctx, query, id); err != nil {
		return err
	}

	return nil
}

func (r *Repository) CreateShiftSlots(planID int64, slots []*domain.ShiftSlot) error {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.TransactionTimeout)*time.Second)
	defer cancel()

	tx, err := r.dbpool.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Rollback()
	}()

	query := `
		INSERT INTO shift_slots (schedule_plan_id, date, start_time, end_time, worked_hours, template_name, activity)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, version
	`

	for _, slot := range slots {
		slot.SchedulePlanID = planID
		args := []any{planID, slot.Date, slot.StartTime, slot.EndTime, slot.WorkedHours, slot.TemplateName, slot.Activity}
		if err := tx.QueryRowContext(ctx, query, args...).Scan(&slot.ID, &slot.Version); err != nil {
			return err
		}
	}

	return tx.Commit()
}

func (r *Repository) GetShiftSlotsByPlan(planID int64) ([]*domain.ShiftSlot, error) {
	query := `
		SELECT id, schedule_plan_id, date, start_time, end_time, worked_hours, template_name, activity, assigned_worker_id, assigned, version
		FROM shift_slots
		WHERE schedule_plan_id = $1
		ORDER BY date, start_time, id
	`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	rows, err := r.dbpool.QueryContext(ctx, query, planID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	slots := []*domain.ShiftSlot{}
	for rows.Next() {
		var slot domain.ShiftSlot
		dst := []any{&slot.ID, &slot.SchedulePlanID, &slot.Date, &slot.StartTime, &slot.EndTime, &slot.WorkedHours, &slot.TemplateName, &slot.Activity, &slot.AssignedWorkerID, &slot.Assigned, &slot.Version}
		if err := rows.Scan(dst...); err != nil {
			return nil, err
		}
		slots = append(slots, &slot)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return slots, nil
}

// ApplyFillPlan commits a pass outcome in one transaction: every slot
// assignment plus the plan's DRAFT -> VALIDATED transition. Any failure
// rolls the whole pass back.
func (r *Repository) ApplyFillPlan(plan *domain.SchedulePlan, assignments []allocator.Assignment) error {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.TransactionTimeout)*time.Second)
	defer cancel()

	tx, err := r.dbpool.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Rollback()
	}()

	query := `
		UPDATE shift_slots
		SET assigned_worker_id = $1, assigned = TRUE, version = version + 1
		WHERE id = $2 AND schedule_plan_id = $3 AND assigned = FALSE
	`

	for _, a := range assignments {
		if _, err := tx.ExecContext(ctx, query, a.WorkerID, a.SlotID, plan.ID); err != nil {
			return err
		}
	}

	statusQuery := `
		UPDATE schedule_plans
		SET status = $1, version = version + 1
		WHERE id = $2 AND status = $3 AND version = $4
		RETURNING version
	`
	if err := tx.QueryRowContext(ctx, statusQuery, domain.PlanStatusValidated, plan.ID, domain.PlanStatusDraft, plan.Version).Scan(&plan.Version); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return err
	}
	plan.Status = domain.PlanStatusValidated

	return nil
}
