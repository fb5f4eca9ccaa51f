package handler

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-playground/locales/zh"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	zh_translations "github.com/go-playground/validator/v10/translations/zh"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/sysu-ecnc-dev/activity-scheduler/backend/internal/config"
	"github.com/sysu-ecnc-dev/activity-scheduler/backend/internal/repository"
	"github.com/sysu-ecnc-dev/activity-scheduler/backend/internal/runstore"
	"golang.org/x/crypto/bcrypt"
)

type Handler struct {
	validate          *validator.Validate
	config            *config.Config
	repository        *repository.Repository
	translator        ut.Translator
	runChannel        *amqp.Channel
	runStore          *runstore.Store
	adminPasswordHash []byte

	Mux *chi.Mux
}

func NewHandler(cfg *config.Config, repo *repository.Repository, runCh *amqp.Channel, store *runstore.Store) (*Handler, error) {
	validate := validator.New(validator.WithRequiredStructEnabled())
	zh := zh.New()
	uni := ut.New(zh, zh)
	trans, _ := uni.GetTranslator("zh")
	if err := zh_translations.RegisterDefaultTranslations(validate, trans); err != nil {
		return nil, err
	}

	// 管理员只有一个，密码来自配置，启动时计算一次哈希即可
	passwordHash, err := bcrypt.GenerateFromPassword([]byte(cfg.Admin.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	return &Handler{
		validate:          validate,
		config:            cfg,
		repository:        repo,
		translator:        trans,
		runChannel:        runCh,
		runStore:          store,
		adminPasswordHash: passwordHash,

		Mux: chi.NewRouter(),
	}, nil
}

func (h *Handler) RegisterRoutes() {
	h.Mux.Use(h.logger)
	h.Mux.Use(h.recoverer)

	// 认证相关
	h.Mux.Route("/auth", func(r chi.Router) {
		r.Post("/login", h.Login)
		r.Post("/logout", h.Logout)
	})

	// 以下 API 必须要在登录后才允许调用
	h.Mux.Group(func(r chi.Router) {
		r.Use(h.auth)

		r.Route("/catalogs", func(r chi.Router) {
			r.Post("/", h.CreateCatalog)
			r.Get("/", h.GetAllCatalogs)
			r.Route("/{id}", func(r chi.Router) {
				r.Use(h.catalog)
				r.Get("/", h.GetCatalog)
				r.Put("/", h.UpdateCatalog)
				r.Delete("/", h.DeleteCatalog)
				r.Post("/scheduling-result/generate", h.GenerateSchedulingResult)
				r.Post("/runs", h.EnqueueSchedulingRun)
			})
		})

		r.Get("/runs/{runID}", h.GetSchedulingRun)
		r.Delete("/runs/{runID}", h.DeleteSchedulingRun)

		// 计算给定课表的适应度，不需要访问数据库
		r.Post("/schedules/evaluate", h.EvaluateSchedule)
	})
}
