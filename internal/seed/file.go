package seed

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/sysu-ecnc-dev/activity-scheduler/backend/internal/domain"
	"github.com/sysu-ecnc-dev/activity-scheduler/backend/internal/utils"
	"gopkg.in/yaml.v3"
)

// LoadCatalogFile 从 YAML 或 JSON 文件中读取排课目录，并完成校验
func LoadCatalogFile(path string) (*domain.Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	catalog := &domain.Catalog{}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, catalog); err != nil {
			return nil, fmt.Errorf("无法解析排课目录文件 %s: %w", path, err)
		}
	case ".json":
		if err := json.Unmarshal(data, catalog); err != nil {
			return nil, fmt.Errorf("无法解析排课目录文件 %s: %w", path, err)
		}
	default:
		return nil, fmt.Errorf("不支持的排课目录文件格式: %s", path)
	}

	if err := utils.ValidateCatalog(catalog); err != nil {
		return nil, err
	}

	return catalog, nil
}

// LoadCatalog 在 path 为空时返回默认排课目录
func LoadCatalog(path string) (*domain.Catalog, error) {
	if path == "" {
		return DefaultCatalog(), nil
	}
	return LoadCatalogFile(path)
}
