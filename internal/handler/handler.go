package handler

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-playground/locales/zh"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	zh_translations "github.com/go-playground/validator/v10/translations/zh"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/redis/go-redis/v9"
	"github.com/safari-ops/entry-scheduler/backend/internal/config"
	"github.com/safari-ops/entry-scheduler/backend/internal/domain"
	"github.com/safari-ops/entry-scheduler/backend/internal/repository"
)

type Handler struct {
	validate    *validator.Validate
	config      *config.Config
	repository  *repository.Repository
	translator  ut.Translator
	mailChannel *amqp.Channel
	redisClient *redis.Client

	Mux *chi.Mux
}

func newValidator() (*validator.Validate, ut.Translator, error) {
	validate := validator.New(validator.WithRequiredStructEnabled())
	zh := zh.New()
	uni := ut.New(zh, zh)
	trans, _ := uni.GetTranslator("zh")
	if err := zh_translations.RegisterDefaultTranslations(validate, trans); err != nil {
		return nil, nil, err
	}
	return validate, trans, nil
}

func NewHandler(cfg *config.Config, repo *repository.Repository, mailCh *amqp.Channel, rdb *redis.Client) (*Handler, error) {
	validate, trans, err := newValidator()
	if err != nil {
		return nil, err
	}

	return &Handler{
		validate:    validate,
		config:      cfg,
		repository:  repo,
		translator:  trans,
		mailChannel: mailCh,
		redisClient: rdb,

		Mux: chi.NewRouter(),
	}, nil
}

func (h *Handler) RegisterRoutes() {
	h.Mux.Use(h.logger)
	h.Mux.Use(h.recoverer)

	h.Mux.Get("/health", h.Health)

	// 认证相关
	h.Mux.Route("/auth", func(r chi.Router) {
		r.Post("/login", h.Login)
		r.Post("/logout", h.Logout)
		r.Route("/reset-password", func(r chi.Router) {
			r.Post("/require", h.RequireResetPassword)
			r.Post("/confirm", h.ConfirmResetPassword)
		})
	})

	// 以下 API 必须要在登录后才允许调用
	h.Mux.Group(func(r chi.Router) {
		r.Use(h.auth)
		r.Use(h.myInfo)

		r.Route("/my-info", func(r chi.Router) {
			r.Get("/", h.GetMyInfo)
			r.Patch("/password", h.UpdateMyPassword)
			r.Route("/update-email", func(r chi.Router) {
				r.Post("/require", h.RequireUpdateEmail)
				r.Post("/confirm", h.ConfirmUpdateEmail)
			})
		})

		r.Route("/users", func(r chi.Router) {
			r.With(h.RequiredRole(domain.RoleAdmin)).Post("/", h.CreateUser)
			r.Get("/", h.GetAllUserInfo)
			r.Route("/{id}", func(r chi.Router) {
				r.Use(h.userInfo)
				r.Get("/", h.GetUserInfo)
				r.Group(func(r chi.Router) {
					r.Use(h.RequiredRole(domain.RoleAdmin))
					r.With(h.preventOperateInitialAdmin).Patch("/", h.UpdateUser)
					r.With(h.preventOperateInitialAdmin).Delete("/", h.DeleteUser)
					r.Patch("/password", h.UpdateUserPassword)
				})
			})
		})

		r.Route("/drivers", func(r chi.Router) {
			r.Post("/", h.RegisterDriver)
			r.Get("/", h.GetAllDrivers)
			r.Route("/{id}", func(r chi.Router) {
				r.Use(h.driver)
				r.Get("/", h.GetDriver)
				r.Get("/qr-code", h.GetDriverQRCode)
			})
		})

		r.Route("/trips", func(r chi.Router) {
			r.Post("/", h.CreateTrip)
			r.Get("/", h.GetTrips)
			r.Post("/start", h.StartTrip)
			r.Post("/end", h.EndTrip)
			r.Route("/{id}", func(r chi.Router) {
				r.Use(h.trip)
				r.Get("/", h.GetTrip)
				r.Patch("/telemetry", h.UpdateTripTelemetry)
			})
		})

		r.Route("/optimizations", func(r chi.Router) {
			r.Post("/", h.CreateOptimization)
			r.Get("/", h.GetAllOptimizationRuns)
			r.Get("/latest", h.GetLatestOptimizationRun)
			r.Route("/{id}", func(r chi.Router) {
				r.Use(h.optimizationRun)
				r.Get("/", h.GetOptimizationRun)
				r.With(h.RequiredRole(domain.RoleAdmin)).Post("/publish", h.PublishOptimizationRun)
			})
		})
	})
}
