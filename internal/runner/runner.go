package runner

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/sysu-ecnc-dev/activity-scheduler/backend/internal/domain"
	"github.com/sysu-ecnc-dev/activity-scheduler/backend/internal/scheduler"
)

type CatalogSource interface {
	GetCatalogByID(id int64) (*domain.Catalog, error)
}

type RunRecorder interface {
	Save(run *domain.SchedulingRun) error
}

type Notifier interface {
	Notify(to string, run *domain.SchedulingRun, result *scheduler.Result) error
}

// Runner 执行从消息队列中取出的排课任务，并把状态写回 RunRecorder
type Runner struct {
	catalogs CatalogSource
	runs     RunRecorder
	notifier Notifier
	timeout  time.Duration
	workers  int
	logger   *slog.Logger
}

// New 创建 Runner，notifier 为 nil 时不发送通知
func New(catalogs CatalogSource, runs RunRecorder, notifier Notifier, timeout time.Duration, workers int, logger *slog.Logger) *Runner {
	if logger == nil {
		logger = slog.Default()
	}
	return &Runner{
		catalogs: catalogs,
		runs:     runs,
		notifier: notifier,
		timeout:  timeout,
		workers:  workers,
		logger:   logger,
	}
}

func DecodeRequest(body []byte) (*domain.SchedulingRunRequest, error) {
	req := &domain.SchedulingRunRequest{}
	if err := json.Unmarshal(body, req); err != nil {
		return nil, err
	}
	if req.RunID == "" {
		return nil, errors.New("排课任务缺少 runID")
	}
	return req, nil
}

// Handle 运行一次排课任务，返回的错误表示任务失败，此时失败原因已经写入任务状态
func (r *Runner) Handle(ctx context.Context, req *domain.SchedulingRunRequest) error {
	run := domain.NewSchedulingRun(req)
	if run.CreatedAt.IsZero() {
		run.CreatedAt = time.Now()
	}
	run.MarkRunning()
	if err := r.runs.Save(run); err != nil {
		return err
	}

	result, err := r.schedule(ctx, req)
	if err != nil {
		run.MarkFailed(err, time.Now())
		if saveErr := r.runs.Save(run); saveErr != nil {
			r.logger.Error("无法保存排课任务状态", "runID", run.ID, "error", saveErr)
		}
		return err
	}

	run.MarkCompleted(result.BestFitness, result.Schedule, result.History, result.Stopped, time.Now())
	if err := r.runs.Save(run); err != nil {
		return err
	}

	r.logger.Info("排课任务完成",
		"runID", run.ID,
		"catalogID", run.CatalogID,
		"bestFitness", result.BestFitness,
		"generations", result.Generations,
		"stopped", result.Stopped,
	)

	// 通知失败不影响任务本身的结果
	if req.NotifyEmail != "" && r.notifier != nil {
		if err := r.notifier.Notify(req.NotifyEmail, run, result); err != nil {
			r.logger.Error("无法发送排课结果通知", "runID", run.ID, "to", req.NotifyEmail, "error", err)
		}
	}

	return nil
}

func (r *Runner) schedule(ctx context.Context, req *domain.SchedulingRunRequest) (*scheduler.Result, error) {
	catalog, err := r.catalogs.GetCatalogByID(req.CatalogID)
	if err != nil {
		return nil, fmt.Errorf("无法获取排课目录 %d: %w", req.CatalogID, err)
	}

	parameters := &scheduler.Parameters{
		PopulationSize: req.PopulationSize,
		MaxGenerations: req.Generations,
		MutationRate:   req.MutationRate,
		Elitism:        req.Elitism,
		Workers:        r.workers,
		Seed:           req.Seed,
	}

	s, err := scheduler.New(parameters, catalog, r.logger)
	if err != nil {
		return nil, err
	}

	if r.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}

	return s.Schedule(ctx)
}
