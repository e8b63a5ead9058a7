package seed

import (
	"log/slog"
	"time"

	"github.com/hotelops-dev/sector-scheduler/backend/internal/domain"
	"github.com/hotelops-dev/sector-scheduler/backend/internal/repository"
	"github.com/hotelops-dev/sector-scheduler/backend/internal/utils"
)

var demoSectors = []domain.Sector{
	{Name: "Front Desk", Description: "Reception, check-in and guest services"},
	{Name: "Housekeeping", Description: "Rooms, floors and laundry"},
	{Name: "Food & Beverage", Description: "Restaurant, bar and room service"},
}

func int64Ptr(v int64) *int64 { return &v }

// demoRules mirrors the questionnaire-style rules administrators enter:
// a free-text answer plus optional structured parameters.
func demoRules(sectorIDs []int64) []*domain.Rule {
	return []*domain.Rule{
		{
			Kind:     domain.RuleKindLabor,
			Rigidity: domain.RigidityMandatory,
			Priority: 1,
			Code:     "LAB-WEEKLY-CAP",
			Question: "What is the maximum number of hours a worker may work per week?",
			Answer:   "Intermittent contracts are capped at 44 hours per week.",
			Parameters: map[string]any{
				"max_weekly_hours": 44,
			},
			Active: true,
		},
		{
			Kind:     domain.RuleKindLabor,
			Rigidity: domain.RigidityMandatory,
			Priority: 2,
			Code:     "LAB-REST-GAP",
			Question: "How many hours of rest are required between two shifts?",
			Answer:   "At least 11 hours between the end of one shift and the start of the next.",
			Parameters: map[string]any{
				"min_rest_hours": 11,
			},
			Active: true,
		},
		{
			Kind:     domain.RuleKindOperational,
			Rigidity: domain.RigidityDesirable,
			Priority: 1,
			SectorID: int64Ptr(sectorIDs[0]),
			Code:     "OPS-FRONT-BUFFER",
			Question: "How much staffing buffer does the front desk need?",
			Answer:   "Keep a 15% buffer over forecast demand at the front desk.",
			Parameters: map[string]any{
				"buffer_percent": 15,
			},
			Active: true,
		},
		{
			Kind:     domain.RuleKindCalculation,
			Rigidity: domain.RigidityFlexible,
			Priority: 1,
			Code:     "CALC-HOLIDAY",
			Question: "How are public holidays weighted in demand calculations?",
			Answer:   "Public holidays count with a factor of 2.0.",
			Parameters: map[string]any{
				"holiday_factor": 2.0,
			},
			Active: true,
		},
	}
}

// nextMonday returns the Monday of the following ISO week.
func nextMonday(now time.Time) time.Time {
	day := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	offset := 8 - int(domain.ISOWeekday(day))
	return day.AddDate(0, 0, offset)
}

// SeedDemoData loads a small demo hotel: sectors, their rules, a staff
// of workers per sector and one draft plan for the coming week.
func SeedDemoData(r *repository.Repository, workersPerSector int, emailDomain string) {
	sectorIDs := make([]int64, 0, len(demoSectors))
	for i := range demoSectors {
		sector := demoSectors[i]
		if err := r.CreateSector(&sector); err != nil {
			slog.Error("failed to insert sector", "name", sector.Name, "error", err)
			return
		}
		sectorIDs = append(sectorIDs, sector.ID)
	}

	for _, rule := range demoRules(sectorIDs) {
		if err := r.CreateRule(rule); err != nil {
			slog.Error("failed to insert rule", "code", rule.Code, "error", err)
			return
		}
	}

	for _, sectorID := range sectorIDs {
		for i := 0; i < workersPerSector; i++ {
			worker := utils.GenerateRandomWorker(sectorID, emailDomain)
			worker.HiredAt = time.Now().AddDate(0, -6, 0)
			if err := r.CreateWorker(worker); err != nil {
				slog.Error("failed to insert worker", "error", err)
				continue
			}
		}
	}

	weekStart := nextMonday(time.Now())
	plan := &domain.SchedulePlan{
		SectorID:    sectorIDs[0],
		Name:        "Front Desk " + weekStart.Format("2006-01-02"),
		Description: "Demo weekly plan",
		WeekStart:   weekStart,
		Status:      domain.PlanStatusDraft,
	}
	if err := r.CreateSchedulePlan(plan); err != nil {
		slog.Error("failed to insert schedule plan", "error", err)
		return
	}

	slog.Info("demo data seeded",
		"sectors", len(sectorIDs),
		"workers_per_sector", workersPerSector,
		"plan_id", plan.ID,
	)
}
