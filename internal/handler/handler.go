package handler

import (
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"
	"github.com/hotelops-dev/sector-scheduler/backend/internal/config"
	"github.com/hotelops-dev/sector-scheduler/backend/internal/convocation"
	"github.com/hotelops-dev/sector-scheduler/backend/internal/domain"
	"github.com/hotelops-dev/sector-scheduler/backend/internal/repository"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/redis/go-redis/v9"
)

type Handler struct {
	validate    *validator.Validate
	config      *config.Config
	repository  *repository.Repository
	translator  ut.Translator
	mailChannel *amqp.Channel
	redisClient *redis.Client
	lifecycle   *convocation.Lifecycle

	Mux *chi.Mux
}

func NewHandler(cfg *config.Config, repo *repository.Repository, mailCh *amqp.Channel, rdb *redis.Client) (*Handler, error) {
	validate := validator.New(validator.WithRequiredStructEnabled())
	enLocale := en.New()
	uni := ut.New(enLocale, enLocale)
	trans, _ := uni.GetTranslator("en")
	if err := en_translations.RegisterDefaultTranslations(validate, trans); err != nil {
		return nil, err
	}

	h := &Handler{
		validate:    validate,
		config:      cfg,
		repository:  repo,
		translator:  trans,
		mailChannel: mailCh,
		redisClient: rdb,

		Mux: chi.NewRouter(),
	}

	h.lifecycle = convocation.NewLifecycle(
		repo,
		h.sectorConstraints,
		time.Duration(cfg.Convocation.ResponseWindowHours)*time.Hour,
		cfg.Convocation.RescheduleOnDecline,
	)

	return h, nil
}

func (h *Handler) RegisterRoutes() {
	h.Mux.Use(h.logger)
	h.Mux.Use(h.recoverer)

	// authentication
	h.Mux.Route("/auth", func(r chi.Router) {
		r.Post("/login", h.Login)
		r.Post("/logout", h.Logout)
		r.Route("/reset-password", func(r chi.Router) {
			r.Post("/require", h.RequireResetPassword)
			r.Post("/confirm", h.ConfirmResetPassword)
		})
	})

	// everything below requires a logged-in account
	h.Mux.Group(func(r chi.Router) {
		r.Use(h.auth)

		r.Route("/my-info", func(r chi.Router) {
			r.Use(h.myInfo)
			r.Get("/", h.GetMyInfo)
			r.Patch("/password", h.UpdateMyPassword)
		})

		r.Route("/users", func(r chi.Router) {
			r.Use(h.RequiredRole([]domain.Role{domain.RoleAdmin}))
			r.Post("/", h.CreateUser)
			r.Get("/", h.GetAllUserInfo)
			r.Route("/{id}", func(r chi.Router) {
				r.Use(h.userInfo)
				r.Get("/", h.GetUserInfo)
				r.With(h.preventOperateInitialAdmin).Patch("/", h.UpdateUser)
				r.With(h.preventOperateInitialAdmin).Patch("/password", h.UpdateUserPassword)
				r.With(h.preventOperateInitialAdmin).Delete("/", h.DeleteUser)
			})
		})

		r.Route("/sectors", func(r chi.Router) {
			r.Get("/", h.GetAllSectors)
			r.Route("/{id}", func(r chi.Router) {
				r.Use(h.sectorCtx)
				r.Get("/", h.GetSector)
				r.Get("/workers", h.GetSectorWorkers)
				r.Get("/schedule-plans", h.GetSectorSchedulePlans)
				r.Get("/convocations", h.GetSectorConvocations)
				r.Get("/rules", h.GetSectorRules)
				r.Get("/rules/consistency", h.CheckSectorRuleConsistency)
				r.Get("/constraints", h.GetSectorConstraints)
			})
		})

		r.Route("/workers/{id}", func(r chi.Router) {
			r.Use(h.workerCtx)
			r.Get("/", h.GetWorker)
			r.With(h.RequiredRole([]domain.Role{domain.RoleSupervisor, domain.RoleAdmin})).Patch("/", h.UpdateWorker)
		})

		r.Route("/rules", func(r chi.Router) {
			r.Use(h.RequiredRole([]domain.Role{domain.RoleAdmin}))
			r.Post("/", h.CreateRule)
			r.Route("/{id}", func(r chi.Router) {
				r.Use(h.ruleCtx)
				r.Get("/", h.GetRule)
				r.Patch("/", h.UpdateRule)
				r.Delete("/", h.DeleteRule)
			})
		})

		r.Route("/schedule-plans", func(r chi.Router) {
			supervisors := h.RequiredRole([]domain.Role{domain.RoleSupervisor, domain.RoleAdmin})
			r.With(supervisors).Post("/", h.CreateSchedulePlan)
			r.Route("/{id}", func(r chi.Router) {
				r.Use(h.schedulePlan)
				r.Get("/", h.GetSchedulePlanByID)
				r.With(supervisors).Delete("/", h.DeleteSchedulePlan)
				r.Get("/slots", h.GetShiftSlots)
				r.With(supervisors).Post("/slots", h.GenerateShiftSlots)
				r.With(supervisors).Post("/allocate", h.RunAllocationPass)
				r.With(supervisors).Post("/publish", h.PublishSchedulePlan)
			})
		})

		r.Route("/convocations", func(r chi.Router) {
			supervisors := h.RequiredRole([]domain.Role{domain.RoleSupervisor, domain.RoleAdmin})
			r.With(supervisors).Post("/", h.CreateConvocation)
			r.With(h.RequiredRole([]domain.Role{domain.RoleAdmin})).Post("/expire-sweep", h.ExpirePendingConvocations)
			r.Route("/{id}", func(r chi.Router) {
				r.Use(h.convocationCtx)
				r.Get("/", h.GetConvocation)
				r.Post("/accept", h.AcceptConvocation)
				r.Post("/decline", h.DeclineConvocation)
				r.With(supervisors).Post("/cancel", h.CancelConvocation)
				r.With(supervisors).Post("/reschedule", h.RescheduleConvocation)
			})
		})
	})
}
