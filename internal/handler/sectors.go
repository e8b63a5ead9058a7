package handler

import (
	"net/http"
	"time"

	"github.com/hotelops-dev/sector-scheduler/backend/internal/domain"
	"github.com/hotelops-dev/sector-scheduler/backend/internal/rules"
)

func (h *Handler) GetAllSectors(w http.ResponseWriter, r *http.Request) {
	sectors, err := h.repository.GetAllSectors()
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "sectors fetched", sectors)
}

func (h *Handler) GetSector(w http.ResponseWriter, r *http.Request) {
	sector := r.Context().Value(SectorCtx).(*domain.Sector)
	h.successResponse(w, r, "sector fetched", sector)
}

func (h *Handler) GetSectorWorkers(w http.ResponseWriter, r *http.Request) {
	sector := r.Context().Value(SectorCtx).(*domain.Sector)

	workers, err := h.repository.GetWorkersBySector(sector.ID)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "sector workers fetched", workers)
}

func (h *Handler) GetSectorSchedulePlans(w http.ResponseWriter, r *http.Request) {
	sector := r.Context().Value(SectorCtx).(*domain.Sector)

	plans, err := h.repository.GetSchedulePlansBySector(sector.ID)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "sector schedule plans fetched", plans)
}

func (h *Handler) GetSectorConvocations(w http.ResponseWriter, r *http.Request) {
	sector := r.Context().Value(SectorCtx).(*domain.Sector)

	convocations, err := h.repository.GetConvocationsBySector(sector.ID)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "sector convocations fetched", convocations)
}

func (h *Handler) GetSectorRules(w http.ResponseWriter, r *http.Request) {
	sector := r.Context().Value(SectorCtx).(*domain.Sector)

	sectorRules, err := h.repository.GetRulesForSector(sector.ID)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	engine := rules.NewEngine(sectorRules)
	grouped := engine.Fetch(rules.Context{SectorID: sector.ID, ReferenceDate: time.Now()}, false)

	h.successResponse(w, r, "sector rules fetched", grouped)
}

func (h *Handler) CheckSectorRuleConsistency(w http.ResponseWriter, r *http.Request) {
	sector := r.Context().Value(SectorCtx).(*domain.Sector)

	sectorRules, err := h.repository.GetRulesForSector(sector.ID)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	engine := rules.NewEngine(sectorRules)
	ctx := rules.Context{SectorID: sector.ID, ReferenceDate: time.Now()}

	report := map[string]any{}
	for _, kind := range []domain.RuleKind{
		domain.RuleKindLabor,
		domain.RuleKindOperational,
		domain.RuleKindCalculation,
		domain.RuleKindSystem,
	} {
		ok, errs := engine.ValidateConsistency(ctx, kind)
		report[string(kind)] = map[string]any{
			"consistent": ok,
			"errors":     errs,
		}
	}

	h.successResponse(w, r, "rule consistency checked", report)
}

func (h *Handler) GetSectorConstraints(w http.ResponseWriter, r *http.Request) {
	sector := r.Context().Value(SectorCtx).(*domain.Sector)

	sectorRules, err := h.repository.GetRulesForSector(sector.ID)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	engine := rules.NewEngine(sectorRules)
	set := engine.Constraints(rules.Context{SectorID: sector.ID, ReferenceDate: time.Now()})

	h.successResponse(w, r, "sector constraints resolved", set)
}
