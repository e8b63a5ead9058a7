package handler

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/hotelops-dev/sector-scheduler/backend/internal/convocation"
	"github.com/hotelops-dev/sector-scheduler/backend/internal/domain"
)

func convocationCreateRequestFromSlot(plan *domain.SchedulePlan, slot *domain.ShiftSlot) convocation.CreateRequest {
	return convocation.CreateRequest{
		WorkerID:  *slot.AssignedWorkerID,
		SectorID:  plan.SectorID,
		Date:      slot.Date,
		StartTime: slot.StartTime,
		EndTime:   slot.EndTime,
		Activity:  slot.Activity,
		Origin:    domain.OriginBaseline,
	}
}

// sendConvocationOffer enqueues the offer email. Queue failures are
// logged and swallowed: the offer row already exists and the worker can
// still respond through the API.
func (h *Handler) sendConvocationOffer(c *domain.Convocation) {
	worker, err := h.repository.GetWorkerByID(c.WorkerID)
	if err != nil {
		slog.Error("failed to load worker for offer mail", "convocation_id", c.ID, "error", err)
		return
	}

	sectorName := fmt.Sprintf("sector %d", c.SectorID)
	if sector, err := h.repository.GetSectorByID(c.SectorID); err == nil {
		sectorName = sector.Name
	}

	msg := domain.MailMessage{
		Type: "convocation_offer",
		To:   worker.Email,
		Data: domain.ConvocationOfferMailData{
			FullName:         worker.FullName,
			SectorName:       sectorName,
			Date:             c.Date.Format("2006-01-02"),
			StartTime:        c.StartTime,
			EndTime:          c.EndTime,
			TotalHours:       fmt.Sprintf("%.1f", c.TotalHours),
			ResponseDeadline: c.ResponseDeadline.Format("2006-01-02 15:04"),
		},
	}

	if err := h.publishMail(msg); err != nil {
		slog.Error("failed to enqueue offer mail", "convocation_id", c.ID, "error", err)
	}
}

func (h *Handler) sendConvocationCancelled(c *domain.Convocation, reason string) {
	worker, err := h.repository.GetWorkerByID(c.WorkerID)
	if err != nil {
		slog.Error("failed to load worker for cancellation mail", "convocation_id", c.ID, "error", err)
		return
	}

	msg := domain.MailMessage{
		Type: "convocation_cancelled",
		To:   worker.Email,
		Data: domain.ConvocationCancelledMailData{
			FullName: worker.FullName,
			Date:     c.Date.Format("2006-01-02"),
			Reason:   reason,
		},
	}

	if err := h.publishMail(msg); err != nil {
		slog.Error("failed to enqueue cancellation mail", "convocation_id", c.ID, "error", err)
	}
}

func (h *Handler) CreateConvocation(w http.ResponseWriter, r *http.Request) {
	var req struct {
		WorkerID  int64     `json:"workerID" validate:"required"`
		SectorID  int64     `json:"sectorID" validate:"required"`
		Date      time.Time `json:"date" validate:"required"`
		StartTime string    `json:"startTime" validate:"required"`
		EndTime   string    `json:"endTime" validate:"required"`
		Activity  string    `json:"activity"`
		Origin    string    `json:"origin" validate:"omitempty,oneof=BASELINE ADJUSTMENT RESCHEDULE MANUAL"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	result, err := h.lifecycle.Create(convocation.CreateRequest{
		WorkerID:  req.WorkerID,
		SectorID:  req.SectorID,
		Date:      req.Date,
		StartTime: req.StartTime,
		EndTime:   req.EndTime,
		Activity:  req.Activity,
		Origin:    domain.ConvocationOrigin(req.Origin),
	})
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	if !result.Success {
		h.writeJSON(w, r, http.StatusOK, Response{Success: false, Message: "convocation rejected", Data: result})
		return
	}

	h.sendConvocationOffer(result.Convocation)

	h.successResponse(w, r, "convocation created", result)
}

func (h *Handler) GetConvocation(w http.ResponseWriter, r *http.Request) {
	c := r.Context().Value(ConvocationCtx).(*domain.Convocation)
	h.successResponse(w, r, "convocation fetched", c)
}

func (h *Handler) AcceptConvocation(w http.ResponseWriter, r *http.Request) {
	c := r.Context().Value(ConvocationCtx).(*domain.Convocation)

	result, err := h.lifecycle.Accept(c.ID)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	if !result.Success {
		h.writeJSON(w, r, http.StatusOK, Response{Success: false, Message: "convocation not accepted", Data: result})
		return
	}

	h.successResponse(w, r, "convocation accepted", result)
}

func (h *Handler) DeclineConvocation(w http.ResponseWriter, r *http.Request) {
	c := r.Context().Value(ConvocationCtx).(*domain.Convocation)

	var req struct {
		Reason string `json:"reason"`
	}
	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	result, err := h.lifecycle.Decline(c.ID, req.Reason)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	if !result.Success {
		h.writeJSON(w, r, http.StatusOK, Response{Success: false, Message: "convocation not declined", Data: result})
		return
	}

	if result.Reschedule != nil && result.Reschedule.Replacement != nil {
		h.sendConvocationOffer(result.Reschedule.Replacement)
	}

	h.successResponse(w, r, "convocation declined", result)
}

func (h *Handler) CancelConvocation(w http.ResponseWriter, r *http.Request) {
	c := r.Context().Value(ConvocationCtx).(*domain.Convocation)

	var req struct {
		Reason string `json:"reason" validate:"required"`
	}
	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	result, err := h.lifecycle.Cancel(c.ID, req.Reason)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	if !result.Success {
		h.writeJSON(w, r, http.StatusOK, Response{Success: false, Message: "convocation not cancelled", Data: result})
		return
	}

	h.sendConvocationCancelled(result.Convocation, req.Reason)

	h.successResponse(w, r, "convocation cancelled", result)
}

func (h *Handler) RescheduleConvocation(w http.ResponseWriter, r *http.Request) {
	c := r.Context().Value(ConvocationCtx).(*domain.Convocation)

	outcome, err := h.lifecycle.RescheduleFrom(c.ID)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	if outcome.Replacement != nil {
		h.sendConvocationOffer(outcome.Replacement)
	}

	h.successResponse(w, r, "reschedule cascade completed", outcome)
}

func (h *Handler) ExpirePendingConvocations(w http.ResponseWriter, r *http.Request) {
	sweep, err := h.lifecycle.ExpirePending()
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	for _, item := range sweep.Items {
		if item.Reschedule != nil && item.Reschedule.Replacement != nil {
			h.sendConvocationOffer(item.Reschedule.Replacement)
		}
	}

	h.successResponse(w, r, "pending convocations swept", sweep)
}
