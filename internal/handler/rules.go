package handler

import (
	"database/sql"
	"errors"
	"net/http"
	"time"

	"github.com/hotelops-dev/sector-scheduler/backend/internal/domain"
)

func (h *Handler) CreateRule(w http.ResponseWriter, r *http.Request) {
	var req struct {
		SectorID   *int64         `json:"sectorID"`
		Kind       string         `json:"kind" validate:"required,oneof=LABOR OPERATIONAL CALCULATION SYSTEM"`
		Rigidity   string         `json:"rigidity" validate:"required,oneof=MANDATORY DESIRABLE FLEXIBLE"`
		Priority   int32          `json:"priority" validate:"gte=0"`
		Code       string         `json:"code" validate:"required"`
		Question   string         `json:"question" validate:"required"`
		Answer     string         `json:"answer" validate:"required"`
		Parameters map[string]any `json:"parameters"`
		ValidFrom  *time.Time     `json:"validFrom"`
		ValidUntil *time.Time     `json:"validUntil"`
		Active     *bool          `json:"active"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	if req.ValidFrom != nil && req.ValidUntil != nil && req.ValidUntil.Before(*req.ValidFrom) {
		h.errorResponse(w, r, "activation window ends before it starts")
		return
	}

	rule := &domain.Rule{
		SectorID:   req.SectorID,
		Kind:       domain.RuleKind(req.Kind),
		Rigidity:   domain.RuleRigidity(req.Rigidity),
		Priority:   req.Priority,
		Code:       req.Code,
		Question:   req.Question,
		Answer:     req.Answer,
		Parameters: req.Parameters,
		ValidFrom:  req.ValidFrom,
		ValidUntil: req.ValidUntil,
		Active:     true,
	}
	if req.Active != nil {
		rule.Active = *req.Active
	}

	if err := h.repository.CreateRule(rule); err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.invalidateSectorConstraints(rule.SectorID)

	h.successResponse(w, r, "rule created", rule)
}

func (h *Handler) GetRule(w http.ResponseWriter, r *http.Request) {
	rule := r.Context().Value(RuleCtx).(*domain.Rule)
	h.successResponse(w, r, "rule fetched", rule)
}

func (h *Handler) UpdateRule(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Rigidity   *string        `json:"rigidity" validate:"omitempty,oneof=MANDATORY DESIRABLE FLEXIBLE"`
		Priority   *int32         `json:"priority" validate:"omitempty,gte=0"`
		Question   *string        `json:"question"`
		Answer     *string        `json:"answer"`
		Parameters map[string]any `json:"parameters"`
		ValidFrom  *time.Time     `json:"validFrom"`
		ValidUntil *time.Time     `json:"validUntil"`
		Active     *bool          `json:"active"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	rule := r.Context().Value(RuleCtx).(*domain.Rule)

	if req.Rigidity != nil {
		rule.Rigidity = domain.RuleRigidity(*req.Rigidity)
	}
	if req.Priority != nil {
		rule.Priority = *req.Priority
	}
	if req.Question != nil {
		rule.Question = *req.Question
	}
	if req.Answer != nil {
		rule.Answer = *req.Answer
	}
	if req.Parameters != nil {
		rule.Parameters = req.Parameters
	}
	if req.ValidFrom != nil {
		rule.ValidFrom = req.ValidFrom
	}
	if req.ValidUntil != nil {
		rule.ValidUntil = req.ValidUntil
	}
	if req.Active != nil {
		rule.Active = *req.Active
	}

	if rule.ValidFrom != nil && rule.ValidUntil != nil && rule.ValidUntil.Before(*rule.ValidFrom) {
		h.errorResponse(w, r, "activation window ends before it starts")
		return
	}

	if err := h.repository.UpdateRule(rule); err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			h.errorResponse(w, r, "rule was modified concurrently, please retry")
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	h.invalidateSectorConstraints(rule.SectorID)

	h.successResponse(w, r, "rule updated", rule)
}

func (h *Handler) DeleteRule(w http.ResponseWriter, r *http.Request) {
	rule := r.Context().Value(RuleCtx).(*domain.Rule)

	if err := h.repository.SoftDeleteRule(rule.ID); err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.invalidateSectorConstraints(rule.SectorID)

	h.successResponse(w, r, "rule deleted", nil)
}
