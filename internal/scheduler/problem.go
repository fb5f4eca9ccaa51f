package scheduler

import (
	"fmt"
	"slices"

	"github.com/sysu-ecnc-dev/activity-scheduler/backend/internal/domain"
	"github.com/sysu-ecnc-dev/activity-scheduler/backend/internal/utils"
)

type preferenceLevel int8

const (
	preferenceNone preferenceLevel = iota
	preferenceOther
	preferencePreferred
)

// Problem 是编译后的排课目录，所有字符串 ID 都被替换成下标，供遗传算法反复使用
// 编译完成后只读，可以被多个 goroutine 同时访问
type Problem struct {
	catalog *domain.Catalog

	enrollment  []float64           // [activity]
	preference  [][]preferenceLevel // [activity][facilitator]
	capacity    []float64           // [room]
	distantRoom []bool              // [room]
	timeOrder   []int               // [time]
	minLoad     []int               // [facilitator]
	maxLoad     int

	sectionPairs [][2]int // 平行班中两门课的下标
}

// Compile 校验排课目录并构建下标形式的问题描述
func Compile(catalog *domain.Catalog) (*Problem, error) {
	if err := utils.ValidateCatalog(catalog); err != nil {
		return nil, err
	}

	p := &Problem{
		catalog:     catalog,
		enrollment:  make([]float64, len(catalog.Activities)),
		preference:  make([][]preferenceLevel, len(catalog.Activities)),
		capacity:    make([]float64, len(catalog.Rooms)),
		distantRoom: make([]bool, len(catalog.Rooms)),
		timeOrder:   make([]int, len(catalog.TimeSlots)),
		minLoad:     make([]int, len(catalog.Facilitators)),
		maxLoad:     int(catalog.EffectiveMaxFacilitatorLoad()),
	}

	facilitatorIndex := make(map[string]int, len(catalog.Facilitators))
	for i := range catalog.Facilitators {
		facilitatorIndex[catalog.Facilitators[i].ID] = i
		p.minLoad[i] = int(catalog.Facilitators[i].EffectiveMinLoad())
	}

	activityIndex := make(map[string]int, len(catalog.Activities))
	for i, activity := range catalog.Activities {
		activityIndex[activity.ID] = i
		p.enrollment[i] = float64(activity.Enrollment)

		p.preference[i] = make([]preferenceLevel, len(catalog.Facilitators))
		// 先写备选再写首选，同时出现在两个列表中的导师按首选处理
		for _, id := range activity.Other {
			p.preference[i][facilitatorIndex[id]] = preferenceOther
		}
		for _, id := range activity.Preferred {
			p.preference[i][facilitatorIndex[id]] = preferencePreferred
		}
	}

	distant := make(map[string]bool, len(catalog.DistantBuildings))
	for _, building := range catalog.DistantBuildings {
		distant[building] = true
	}
	for i := range catalog.Rooms {
		p.capacity[i] = float64(catalog.Rooms[i].Capacity)
		p.distantRoom[i] = distant[catalog.Rooms[i].BuildingName()]
	}

	for i, slot := range catalog.TimeSlots {
		p.timeOrder[i] = int(slot.Order)
	}

	for _, pair := range catalog.SectionPairs {
		p.sectionPairs = append(p.sectionPairs, [2]int{activityIndex[pair.First], activityIndex[pair.Second]})
	}

	return p, nil
}

func (p *Problem) Catalog() *domain.Catalog {
	return p.catalog
}

func (p *Problem) NumActivities() int {
	return len(p.enrollment)
}

// Validate 检查染色体是否覆盖了全部课程，且每个下标都在目录范围内
func (p *Problem) Validate(ch Chromosome) error {
	if len(ch) != p.NumActivities() {
		return &InvariantViolationError{
			Reason: fmt.Sprintf("包含 %d 个基因，但目录中有 %d 门课", len(ch), p.NumActivities()),
		}
	}

	for i, a := range ch {
		switch {
		case a.Room < 0 || a.Room >= len(p.capacity):
			return &InvariantViolationError{Reason: fmt.Sprintf("课程 %s 的教室下标 %d 越界", p.catalog.Activities[i].ID, a.Room)}
		case a.Time < 0 || a.Time >= len(p.timeOrder):
			return &InvariantViolationError{Reason: fmt.Sprintf("课程 %s 的时间段下标 %d 越界", p.catalog.Activities[i].ID, a.Time)}
		case a.Facilitator < 0 || a.Facilitator >= len(p.minLoad):
			return &InvariantViolationError{Reason: fmt.Sprintf("课程 %s 的导师下标 %d 越界", p.catalog.Activities[i].ID, a.Facilitator)}
		}
	}

	return nil
}

// Decode 把染色体还原成以 ID 表示的课表，顺序与目录中的课程顺序一致
func (p *Problem) Decode(ch Chromosome) ([]domain.ScheduledActivity, error) {
	if err := p.Validate(ch); err != nil {
		return nil, err
	}

	schedule := make([]domain.ScheduledActivity, len(ch))
	for i, a := range ch {
		schedule[i] = domain.ScheduledActivity{
			Activity:    p.catalog.Activities[i].ID,
			Room:        p.catalog.Rooms[a.Room].ID,
			TimeSlot:    p.catalog.TimeSlots[a.Time].ID,
			Facilitator: p.catalog.Facilitators[a.Facilitator].ID,
		}
	}

	return schedule, nil
}

// Encode 是 Decode 的逆过程，主要用于根据已知课表构造染色体
func (p *Problem) Encode(schedule []domain.ScheduledActivity) (Chromosome, error) {
	if len(schedule) != p.NumActivities() {
		return nil, &InvariantViolationError{
			Reason: fmt.Sprintf("课表包含 %d 门课，但目录中有 %d 门课", len(schedule), p.NumActivities()),
		}
	}

	ch := make(Chromosome, len(schedule))
	for i, item := range schedule {
		if item.Activity != p.catalog.Activities[i].ID {
			return nil, &InvariantViolationError{
				Reason: fmt.Sprintf("第 %d 项应为课程 %s，实际为 %s", i+1, p.catalog.Activities[i].ID, item.Activity),
			}
		}

		room := slices.Index(p.catalog.RoomIDs(), item.Room)
		if room < 0 {
			return nil, &InvariantViolationError{Reason: fmt.Sprintf("课程 %s 的教室 %s 不存在", item.Activity, item.Room)}
		}
		slot := slices.Index(p.catalog.TimeSlotIDs(), item.TimeSlot)
		if slot < 0 {
			return nil, &InvariantViolationError{Reason: fmt.Sprintf("课程 %s 的时间段 %s 不存在", item.Activity, item.TimeSlot)}
		}
		facilitator := slices.Index(p.catalog.FacilitatorIDs(), item.Facilitator)
		if facilitator < 0 {
			return nil, &InvariantViolationError{Reason: fmt.Sprintf("课程 %s 的导师 %s 不存在", item.Activity, item.Facilitator)}
		}

		ch[i] = Assignment{Room: room, Time: slot, Facilitator: facilitator}
	}

	if err := p.Validate(ch); err != nil {
		return nil, err
	}

	return ch, nil
}
