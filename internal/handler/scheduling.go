package handler

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/sysu-ecnc-dev/activity-scheduler/backend/internal/domain"
	"github.com/sysu-ecnc-dev/activity-scheduler/backend/internal/runstore"
	"github.com/sysu-ecnc-dev/activity-scheduler/backend/internal/scheduler"
)

// schedulingRequest 中未填写的参数使用配置中的默认值
type schedulingRequest struct {
	Generations    int32    `json:"generations" validate:"omitempty,min=1"`
	PopulationSize int32    `json:"populationSize" validate:"omitempty,min=2"`
	MutationRate   *float64 `json:"mutationRate" validate:"omitempty,min=0,max=1"`
	Elitism        *bool    `json:"elitism"`
	Seed           uint64   `json:"seed"`
	NotifyEmail    string   `json:"notifyEmail" validate:"omitempty,email"`
}

func (h *Handler) readSchedulingRequest(w http.ResponseWriter, r *http.Request) (*schedulingRequest, error) {
	req := &schedulingRequest{}
	// 允许不带请求体，此时全部使用默认值
	if err := h.readJSON(w, r, req); err != nil && !errors.Is(err, io.EOF) {
		return nil, err
	}
	if err := h.validate.Struct(req); err != nil {
		return nil, err
	}
	return req, nil
}

func (h *Handler) parameters(req *schedulingRequest) *scheduler.Parameters {
	parameters := scheduler.ParametersFromConfig(&h.config.Scheduler)
	if req.Generations > 0 {
		parameters.MaxGenerations = req.Generations
	}
	if req.PopulationSize > 0 {
		parameters.PopulationSize = req.PopulationSize
	}
	if req.MutationRate != nil {
		parameters.MutationRate = *req.MutationRate
	}
	if req.Elitism != nil {
		parameters.Elitism = *req.Elitism
	}
	if req.Seed != 0 {
		parameters.Seed = req.Seed
	}
	return parameters
}

type schedulingResult struct {
	BestFitness float64                    `json:"bestFitness"`
	Schedule    []domain.ScheduledActivity `json:"schedule"`
	History     domain.FitnessHistory      `json:"history"`
	Generations int                        `json:"generations"`
	Stopped     bool                       `json:"stopped"`
}

// GenerateSchedulingResult 同步运行遗传算法，超过 SCHEDULER_RUN_TIMEOUT 时返回目前为止的最优结果
func (h *Handler) GenerateSchedulingResult(w http.ResponseWriter, r *http.Request) {
	catalog := r.Context().Value(CatalogCtx).(*domain.Catalog)

	req, err := h.readSchedulingRequest(w, r)
	if err != nil {
		h.badRequest(w, r, err)
		return
	}

	s, err := scheduler.New(h.parameters(req), catalog, slog.Default())
	if err != nil {
		switch {
		case scheduler.IsConfigurationError(err):
			h.badRequest(w, r, err)
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), time.Duration(h.config.Scheduler.RunTimeout)*time.Second)
	defer cancel()

	res, err := s.Schedule(ctx)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "自动排课成功", schedulingResult{
		BestFitness: res.BestFitness,
		Schedule:    res.Schedule,
		History:     res.History,
		Generations: res.Generations,
		Stopped:     res.Stopped,
	})
}

// EnqueueSchedulingRun 把排课任务投递到消息队列中，由 worker 异步执行
func (h *Handler) EnqueueSchedulingRun(w http.ResponseWriter, r *http.Request) {
	catalog := r.Context().Value(CatalogCtx).(*domain.Catalog)

	req, err := h.readSchedulingRequest(w, r)
	if err != nil {
		h.badRequest(w, r, err)
		return
	}

	// 提前检查参数，避免把必然失败的任务放进队列
	parameters := h.parameters(req)
	if _, err := scheduler.New(parameters, catalog, slog.Default()); err != nil {
		switch {
		case scheduler.IsConfigurationError(err):
			h.badRequest(w, r, err)
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	runRequest := &domain.SchedulingRunRequest{
		RunID:          uuid.NewString(),
		CatalogID:      catalog.ID,
		Generations:    parameters.MaxGenerations,
		PopulationSize: parameters.PopulationSize,
		MutationRate:   parameters.MutationRate,
		Elitism:        parameters.Elitism,
		Seed:           parameters.Seed,
		NotifyEmail:    req.NotifyEmail,
		CreatedAt:      time.Now(),
	}

	run := domain.NewSchedulingRun(runRequest)
	if err := h.runStore.Save(run); err != nil {
		h.internalServerError(w, r, err)
		return
	}

	body, err := json.Marshal(runRequest)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(h.config.RabbitMQ.PublishTimeout)*time.Second)
	defer cancel()

	if err := h.runChannel.PublishWithContext(
		ctx,
		"",
		h.config.RabbitMQ.QueueName,
		true,
		false,
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			Body:         body,
		},
	); err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "排课任务已提交", run)
}

func (h *Handler) GetSchedulingRun(w http.ResponseWriter, r *http.Request) {
	run, err := h.runStore.Get(chi.URLParam(r, "runID"))
	if err != nil {
		switch {
		case errors.Is(err, runstore.ErrRunNotFound):
			h.errorResponse(w, r, "排课任务不存在或已过期")
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	h.successResponse(w, r, "获取排课任务成功", run)
}

// DeleteSchedulingRun 清除已经结束的排课任务的状态
func (h *Handler) DeleteSchedulingRun(w http.ResponseWriter, r *http.Request) {
	runID := chi.URLParam(r, "runID")

	run, err := h.runStore.Get(runID)
	if err != nil {
		switch {
		case errors.Is(err, runstore.ErrRunNotFound):
			h.errorResponse(w, r, "排课任务不存在或已过期")
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	if !run.Finished() {
		h.errorResponse(w, r, "排课任务尚未结束")
		return
	}

	if err := h.runStore.Delete(runID); err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "删除排课任务成功", nil)
}

// EvaluateSchedule 计算给定课表在给定目录下的适应度
func (h *Handler) EvaluateSchedule(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Catalog  *domain.Catalog            `json:"catalog" validate:"required"`
		Schedule []domain.ScheduledActivity `json:"schedule" validate:"required"`
	}

	if err := h.readJSON(w, r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	problem, err := scheduler.Compile(req.Catalog)
	if err != nil {
		h.badRequest(w, r, err)
		return
	}

	ch, err := problem.Encode(req.Schedule)
	if err != nil {
		h.badRequest(w, r, err)
		return
	}

	fitness, err := problem.Evaluate(ch)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "计算适应度成功", map[string]float64{"fitness": fitness})
}
