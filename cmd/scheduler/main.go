package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sysu-ecnc-dev/activity-scheduler/backend/internal/config"
	"github.com/sysu-ecnc-dev/activity-scheduler/backend/internal/report"
	"github.com/sysu-ecnc-dev/activity-scheduler/backend/internal/scheduler"
	"github.com/sysu-ecnc-dev/activity-scheduler/backend/internal/seed"
)

func main() {
	var verbose bool

	flag.BoolVar(&verbose, "v", false, "输出每一代的统计信息")
	flag.Parse()

	/**********************************************
	 * 创建 logger
	 **********************************************/
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	// 课表输出到 stdout，日志输出到 stderr
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	if err := run(logger); err != nil {
		logger.Error("排课失败", "error", err)
		os.Exit(1)
	}
}

func run(logger *slog.Logger) error {
	/**********************************************
	 * 加载配置
	 **********************************************/
	cfg, err := config.LoadSchedulerConfig()
	if err != nil {
		return fmt.Errorf("无法加载配置: %w", err)
	}

	catalog, err := seed.LoadCatalog(cfg.CatalogFile)
	if err != nil {
		return fmt.Errorf("无法加载排课目录 %q: %w", cfg.CatalogFile, err)
	}

	/**********************************************
	 * 运行遗传算法
	 **********************************************/
	s, err := scheduler.New(scheduler.ParametersFromConfig(cfg), catalog, logger)
	if err != nil {
		return fmt.Errorf("无法创建排课器: %w", err)
	}

	// CTRL+C 时在当前这一代结束后停止，并输出目前为止的最优结果
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.RunTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, time.Duration(cfg.RunTimeout)*time.Second)
		defer cancel()
	}

	start := time.Now()
	logger.Info("开始排课",
		"catalog", catalog.Name,
		"activities", len(catalog.Activities),
		"generations", cfg.Generations,
		"populationSize", cfg.PopulationSize,
	)

	result, err := s.Schedule(ctx)
	if err != nil {
		return err
	}

	logger.Info("排课完成",
		"bestFitness", result.BestFitness,
		"generations", result.Generations,
		"stopped", result.Stopped,
		"duration", time.Since(start),
	)

	/**********************************************
	 * 输出结果
	 **********************************************/
	if err := report.WriteSchedule(os.Stdout, result); err != nil {
		return fmt.Errorf("无法输出课表: %w", err)
	}

	if cfg.PlotFile != "" {
		if err := report.PlotHistory(&result.History, cfg.PlotFile); err != nil {
			return fmt.Errorf("无法绘制适应度曲线 %q: %w", cfg.PlotFile, err)
		}
		logger.Info("适应度曲线已保存", "file", cfg.PlotFile)
	}

	if result.Stopped && errors.Is(ctx.Err(), context.DeadlineExceeded) {
		logger.Warn("排课超过了 SCHEDULER_RUN_TIMEOUT，结果可能不是最优的")
	}

	return nil
}
