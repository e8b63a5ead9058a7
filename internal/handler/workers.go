package handler

import (
	"database/sql"
	"errors"
	"net/http"
	"time"

	"github.com/hotelops-dev/sector-scheduler/backend/internal/domain"
)

func (h *Handler) GetWorker(w http.ResponseWriter, r *http.Request) {
	worker := r.Context().Value(WorkerCtx).(*domain.Worker)
	h.successResponse(w, r, "worker fetched", worker)
}

func (h *Handler) UpdateWorker(w http.ResponseWriter, r *http.Request) {
	var req struct {
		FullName            *string      `json:"fullName"`
		Email               *string      `json:"email" validate:"omitempty,email"`
		ContractKind        *string      `json:"contractKind" validate:"omitempty,oneof=INTERMITTENT PERMANENT"`
		WeeklyHourCap       *float64     `json:"weeklyHourCap" validate:"omitempty,gte=0"`
		UnavailableWeekdays []int32      `json:"unavailableWeekdays" validate:"omitempty,dive,gte=1,lte=7"`
		UnavailableDates    []time.Time  `json:"unavailableDates"`
		PreferredDaysOff    []int32      `json:"preferredDaysOff" validate:"omitempty,dive,gte=1,lte=7"`
		VacationStart       *time.Time   `json:"vacationStart"`
		VacationEnd         *time.Time   `json:"vacationEnd"`
		LastFullWeekOff     *time.Time   `json:"lastFullWeekOff"`
		Activities          []string     `json:"activities"`
		Active              *bool        `json:"active"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	worker := r.Context().Value(WorkerCtx).(*domain.Worker)

	if req.FullName != nil {
		worker.FullName = *req.FullName
	}
	if req.Email != nil {
		worker.Email = *req.Email
	}
	if req.ContractKind != nil {
		worker.ContractKind = domain.ContractKind(*req.ContractKind)
	}
	if req.WeeklyHourCap != nil {
		worker.WeeklyHourCap = *req.WeeklyHourCap
	}
	if req.UnavailableWeekdays != nil {
		worker.UnavailableWeekdays = req.UnavailableWeekdays
	}
	if req.UnavailableDates != nil {
		worker.UnavailableDates = req.UnavailableDates
	}
	if req.PreferredDaysOff != nil {
		worker.PreferredDaysOff = req.PreferredDaysOff
	}
	if req.VacationStart != nil {
		worker.VacationStart = req.VacationStart
	}
	if req.VacationEnd != nil {
		worker.VacationEnd = req.VacationEnd
	}
	if req.LastFullWeekOff != nil {
		worker.LastFullWeekOff = req.LastFullWeekOff
	}
	if req.Activities != nil {
		worker.Activities = req.Activities
	}
	if req.Active != nil {
		worker.Active = *req.Active
	}

	if worker.VacationStart != nil && worker.VacationEnd != nil && worker.VacationEnd.Before(*worker.VacationStart) {
		h.errorResponse(w, r, "vacation ends before it starts")
		return
	}

	if err := h.repository.UpdateWorker(worker); err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			h.errorResponse(w, r, "worker was modified concurrently, please retry")
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	h.successResponse(w, r, "worker updated", worker)
}
