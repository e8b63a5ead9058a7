package handler

import (
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/hotelops-dev/sector-scheduler/backend/internal/allocator"
	"github.com/hotelops-dev/sector-scheduler/backend/internal/domain"
	"github.com/hotelops-dev/sector-scheduler/backend/internal/rules"
)

func (h *Handler) CreateSchedulePlan(w http.ResponseWriter, r *http.Request) {
	var req struct {
		SectorID    int64     `json:"sectorID" validate:"required"`
		Name        string    `json:"name" validate:"required"`
		Description string    `json:"description"`
		WeekStart   time.Time `json:"weekStart" validate:"required"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	if domain.ISOWeekday(req.WeekStart) != 1 {
		h.errorResponse(w, r, "weekStart must be a Monday")
		return
	}

	if _, err := h.repository.GetSectorByID(req.SectorID); err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			h.errorResponse(w, r, "sector not found")
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	plan := &domain.SchedulePlan{
		SectorID:    req.SectorID,
		Name:        req.Name,
		Description: req.Description,
		WeekStart:   req.WeekStart,
		Status:      domain.PlanStatusDraft,
	}

	if err := h.repository.CreateSchedulePlan(plan); err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "schedule plan created", plan)
}

func (h *Handler) GetSchedulePlanByID(w http.ResponseWriter, r *http.Request) {
	plan := r.Context().Value(SchedulePlanCtx).(*domain.SchedulePlan)
	h.successResponse(w, r, "schedule plan fetched", plan)
}

func (h *Handler) DeleteSchedulePlan(w http.ResponseWriter, r *http.Request) {
	plan := r.Context().Value(SchedulePlanCtx).(*domain.SchedulePlan)

	if plan.Status == domain.PlanStatusPublished {
		h.errorResponse(w, r, "a published plan cannot be deleted")
		return
	}

	if err := h.repository.DeleteSchedulePlan(plan.ID); err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "schedule plan deleted", nil)
}

func (h *Handler) GetShiftSlots(w http.ResponseWriter, r *http.Request) {
	plan := r.Context().Value(SchedulePlanCtx).(*domain.SchedulePlan)

	slots, err := h.repository.GetShiftSlotsByPlan(plan.ID)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "shift slots fetched", slots)
}

func (h *Handler) GenerateShiftSlots(w http.ResponseWriter, r *http.Request) {
	plan := r.Context().Value(SchedulePlanCtx).(*domain.SchedulePlan)

	if plan.Status != domain.PlanStatusDraft {
		h.errorResponse(w, r, "slots can only be generated on a draft plan")
		return
	}

	var req struct {
		Templates []struct {
			TemplateName string  `json:"templateName" validate:"required"`
			Weekdays     []int32 `json:"weekdays" validate:"required,min=1,dive,gte=1,lte=7"`
			StartTime    string  `json:"startTime" validate:"required"`
			EndTime      string  `json:"endTime" validate:"required"`
			Activity     string  `json:"activity"`
			Headcount    int     `json:"headcount" validate:"required,gte=1"`
		} `json:"templates" validate:"required,min=1,dive"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	slots := make([]*domain.ShiftSlot, 0)
	for _, tpl := range req.Templates {
		hours, err := domain.ShiftHours(tpl.StartTime, tpl.EndTime)
		if err != nil {
			h.badRequest(w, r, fmt.Errorf("template %s: %w", tpl.TemplateName, err))
			return
		}

		for day := 0; day < 7; day++ {
			date := plan.WeekStart.AddDate(0, 0, day)
			for _, weekday := range tpl.Weekdays {
				if weekday != domain.ISOWeekday(date) {
					continue
				}
				for i := 0; i < tpl.Headcount; i++ {
					slots = append(slots, &domain.ShiftSlot{
						SchedulePlanID: plan.ID,
						Date:           date,
						StartTime:      tpl.StartTime,
						EndTime:        tpl.EndTime,
						WorkedHours:    hours,
						TemplateName:   tpl.TemplateName,
						Activity:       tpl.Activity,
					})
				}
			}
		}
	}

	if err := h.repository.CreateShiftSlots(plan.ID, slots); err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "shift slots generated", slots)
}

func (h *Handler) RunAllocationPass(w http.ResponseWriter, r *http.Request) {
	plan := r.Context().Value(SchedulePlanCtx).(*domain.SchedulePlan)

	if plan.Status != domain.PlanStatusDraft {
		h.errorResponse(w, r, "only a draft plan can be allocated")
		return
	}

	// one pass per plan at a time
	lockKey := fmt.Sprintf("allocation_lock_%d", plan.ID)
	lockExpiration := time.Duration(h.config.Allocation.LockExpiration) * time.Second

	ctx, cancel := redisOperationContext(h.config.Redis.OperationExpiration)
	defer cancel()

	locked, err := h.redisClient.SetNX(ctx, lockKey, "1", lockExpiration).Result()
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}
	if !locked {
		h.errorResponse(w, r, "an allocation pass is already running for this plan")
		return
	}
	defer h.redisClient.Del(ctx, lockKey)

	constraints, err := h.sectorConstraints(plan.SectorID, plan.WeekStart)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	sectorWorkers, err := h.repository.GetWorkersBySector(plan.SectorID)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}
	workers := make([]*domain.Worker, 0, len(sectorWorkers))
	for _, worker := range sectorWorkers {
		if worker.Active {
			workers = append(workers, worker)
		}
	}

	slots, err := h.repository.GetShiftSlotsByPlan(plan.ID)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}
	if len(slots) == 0 {
		h.errorResponse(w, r, "the plan has no shift slots to allocate")
		return
	}

	sectorRules, err := h.repository.GetRulesForSector(plan.SectorID)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	alloc := allocator.New(constraints, workers, slots, plan.WeekStart)
	fill := alloc.Run()
	alloc.Audit(rules.NewEngine(sectorRules), rules.Context{SectorID: plan.SectorID, ReferenceDate: plan.WeekStart}, fill)

	if len(fill.Assignments) > 0 {
		if err := h.repository.ApplyFillPlan(plan, fill.Assignments); err != nil {
			switch {
			case errors.Is(err, sql.ErrNoRows):
				h.errorResponse(w, r, "the plan changed during the pass, please retry")
			default:
				h.internalServerError(w, r, err)
			}
			return
		}
	}

	h.successResponse(w, r, "allocation pass completed", fill)
}

func (h *Handler) PublishSchedulePlan(w http.ResponseWriter, r *http.Request) {
	plan := r.Context().Value(SchedulePlanCtx).(*domain.SchedulePlan)

	if err := h.repository.UpdateSchedulePlanStatus(plan, domain.PlanStatusValidated, domain.PlanStatusPublished); err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			h.errorResponse(w, r, "only a validated plan can be published")
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	slots, err := h.repository.GetShiftSlotsByPlan(plan.ID)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	// every assigned slot becomes a pending convocation offer
	created := make([]*domain.Convocation, 0)
	failed := make([]map[string]any, 0)
	for _, slot := range slots {
		if !slot.Assigned || slot.AssignedWorkerID == nil {
			continue
		}

		result, err := h.lifecycle.Create(convocationCreateRequestFromSlot(plan, slot))
		if err != nil {
			h.internalServerError(w, r, err)
			return
		}
		if !result.Success {
			failed = append(failed, map[string]any{
				"slotID": slot.ID,
				"errors": result.Errors,
			})
			continue
		}

		created = append(created, result.Convocation)
		h.sendConvocationOffer(result.Convocation)
	}

	h.successResponse(w, r, "schedule plan published", map[string]any{
		"plan":         plan,
		"convocations": created,
		"failed":       failed,
	})
}
