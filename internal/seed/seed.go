package seed

import (
	"database/sql"
	"errors"
	"log/slog"

	"github.com/sysu-ecnc-dev/activity-scheduler/backend/internal/repository"
	"github.com/sysu-ecnc-dev/activity-scheduler/backend/internal/utils"
)

// SeedDefaultCatalog 把默认排课目录写入数据库，已经存在同名目录时跳过
func SeedDefaultCatalog(r *repository.Repository) error {
	catalog := DefaultCatalog()
	if err := utils.ValidateCatalog(catalog); err != nil {
		return err
	}

	existing, err := r.GetCatalogByName(catalog.Name)
	switch {
	case err == nil:
		slog.Info("默认排课目录已存在，跳过", "id", existing.ID, "name", existing.Name)
		return nil
	case errors.Is(err, sql.ErrNoRows):
		// 不存在，继续插入
	default:
		return err
	}

	if err := r.CreateCatalog(catalog); err != nil {
		return err
	}

	slog.Info("成功写入默认排课目录", "id", catalog.ID, "name", catalog.Name)
	return nil
}
