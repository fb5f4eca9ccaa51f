package utils

import (
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/sysu-ecnc-dev/activity-scheduler/backend/internal/domain"
)

// ValidateCatalog 检查排课目录是否可以用于排课，所有错误都以 *domain.ConfigurationError 返回
func ValidateCatalog(c *domain.Catalog) error {
	if c == nil {
		return domain.NewConfigurationError("排课目录为空")
	}

	// 先检查各个类别是否为空，这几种情况下遗传算法根本无法运行
	switch {
	case len(c.Activities) == 0:
		return domain.NewConfigurationError("没有任何课程")
	case len(c.Rooms) == 0:
		return domain.NewConfigurationError("没有任何教室")
	case len(c.TimeSlots) == 0:
		return domain.NewConfigurationError("没有任何时间段")
	case len(c.Facilitators) == 0:
		return domain.NewConfigurationError("没有任何导师")
	}

	validate := validator.New(validator.WithRequiredStructEnabled())
	if err := validate.Struct(c); err != nil {
		var validationErrors validator.ValidationErrors
		if errors.As(err, &validationErrors) {
			// 只返回第一个错误使得信息更清晰
			fe := validationErrors[0]
			return domain.NewConfigurationError("字段 %s 不满足约束 %s", fe.Namespace(), fe.Tag())
		}
		return domain.NewConfigurationError("%s", err.Error())
	}

	if err := checkUniqueIDs("课程", c.ActivityIDs()); err != nil {
		return err
	}
	if err := checkUniqueIDs("教室", c.RoomIDs()); err != nil {
		return err
	}
	if err := checkUniqueIDs("时间段", c.TimeSlotIDs()); err != nil {
		return err
	}
	if err := checkUniqueIDs("导师", c.FacilitatorIDs()); err != nil {
		return err
	}

	// 时间段的顺序必须连续递增，相邻、间隔一格等规则按顺序之差计算
	for i := 1; i < len(c.TimeSlots); i++ {
		if c.TimeSlots[i].Order != c.TimeSlots[i-1].Order+1 {
			return domain.NewConfigurationError("时间段 %s 的顺序必须比前一个时间段 %s 大 1", c.TimeSlots[i].ID, c.TimeSlots[i-1].ID)
		}
	}

	// 课程偏好中出现的导师必须存在于目录中
	for _, activity := range c.Activities {
		for _, id := range activity.Preferred {
			if _, ok := c.Facilitator(id); !ok {
				return domain.NewConfigurationError("课程 %s 的首选导师 %s 不存在", activity.ID, id)
			}
		}
		for _, id := range activity.Other {
			if _, ok := c.Facilitator(id); !ok {
				return domain.NewConfigurationError("课程 %s 的备选导师 %s 不存在", activity.ID, id)
			}
		}
	}

	// 平行班必须引用存在的课程，且一门课只能出现在一个平行班组中
	seen := make(map[string]bool)
	for i, pair := range c.SectionPairs {
		for _, id := range []string{pair.First, pair.Second} {
			if _, ok := c.Activity(id); !ok {
				return domain.NewConfigurationError("第 %d 组平行班中的课程 %s 不存在", i+1, id)
			}
			if seen[id] {
				return domain.NewConfigurationError("课程 %s 出现在多组平行班中", id)
			}
			seen[id] = true
		}
	}

	for _, building := range c.DistantBuildings {
		if strings.TrimSpace(building) == "" {
			return domain.NewConfigurationError("偏远教学楼名称不能为空")
		}
	}

	return nil
}

func checkUniqueIDs(kind string, ids []string) error {
	seen := make(map[string]bool, len(ids))
	for _, id := range ids {
		if seen[id] {
			return domain.NewConfigurationError("%s %s 重复", kind, id)
		}
		seen[id] = true
	}
	return nil
}
