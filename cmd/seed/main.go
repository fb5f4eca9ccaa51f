package main

import (
	"context"
	"database/sql"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/sysu-ecnc-dev/activity-scheduler/backend/internal/config"
	"github.com/sysu-ecnc-dev/activity-scheduler/backend/internal/repository"
	"github.com/sysu-ecnc-dev/activity-scheduler/backend/internal/seed"

	_ "github.com/jackc/pgx/v5/stdlib"
)

func main() {
	var file string

	flag.StringVar(&file, "file", "", "要导入的排课目录文件 (YAML 或 JSON)，为空时导入内置的默认目录")
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	if err := run(logger, file); err != nil {
		logger.Error("导入排课目录失败", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

func run(logger *slog.Logger, file string) error {
	// 读取配置文件
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("无法读取配置文件: %w", err)
	}

	// 创建数据库连接池
	dbpool, err := sql.Open("pgx", cfg.Database.DSN)
	if err != nil {
		return fmt.Errorf("无法创建数据库连接池: %w", err)
	}
	defer dbpool.Close()

	dbpool.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	dbpool.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	dbpool.SetConnMaxIdleTime(time.Duration(cfg.Database.MaxIdleTime) * time.Second)

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.Database.ConnectTimeout)*time.Second)
	defer cancel()

	// sql.Open 只是创建数据库连接池对象，并不会立即连接到数据库，因此需要显式地 ping 一下
	if err := dbpool.PingContext(ctx); err != nil {
		return fmt.Errorf("无法连接到数据库: %w", err)
	}

	// 创建 repository
	repo := repository.NewRepository(cfg, dbpool)

	if file == "" {
		if err := seed.SeedDefaultCatalog(repo); err != nil {
			return fmt.Errorf("无法写入默认排课目录: %w", err)
		}
		logger.Info("成功导入默认排课目录")
		return nil
	}

	catalog, err := seed.LoadCatalogFile(file)
	if err != nil {
		return fmt.Errorf("无法读取排课目录文件 %q: %w", file, err)
	}

	if err := repo.CreateCatalog(catalog); err != nil {
		return fmt.Errorf("无法写入排课目录: %w", err)
	}

	logger.Info("成功导入排课目录", slog.Int64("id", catalog.ID), slog.String("name", catalog.Name))
	return nil
}
