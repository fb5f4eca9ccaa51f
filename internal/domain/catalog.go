package domain

import (
	"strings"
	"time"
)

const (
	// 未单独配置最低工作量的导师，默认至少需要带 3 门课
	DefaultMinFacilitatorLoad int32 = 3
	// 导师带课数量超过该值时视为过载
	DefaultMaxFacilitatorLoad int32 = 4
)

type Activity struct {
	ID         string   `json:"id" yaml:"id" validate:"required"`
	Enrollment int32    `json:"enrollment" yaml:"enrollment" validate:"gte=0"`
	Preferred  []string `json:"preferred" yaml:"preferred" validate:"dive,required"`
	Other      []string `json:"other" yaml:"other" validate:"dive,required"`
}

type Room struct {
	ID       string `json:"id" yaml:"id" validate:"required"`
	Capacity int32  `json:"capacity" yaml:"capacity" validate:"required,gt=0"`
	Building string `json:"building,omitempty" yaml:"building,omitempty"` // 为空时取 ID 的第一个单词，如 "Roman 216" -> "Roman"
}

// BuildingName 返回教室所在的楼
func (r *Room) BuildingName() string {
	if r.Building != "" {
		return r.Building
	}
	fields := strings.Fields(r.ID)
	if len(fields) == 0 {
		return ""
	}
	return fields[0]
}

type TimeSlot struct {
	ID    string `json:"id" yaml:"id" validate:"required"`
	Order int32  `json:"order" yaml:"order"` // 用于计算两个时间段之间的距离，如 10 AM -> 10，1 PM -> 13
}

type Facilitator struct {
	ID      string `json:"id" yaml:"id" validate:"required"`
	MinLoad int32  `json:"minLoad,omitempty" yaml:"minLoad,omitempty" validate:"gte=0"` // 为 0 时使用 DefaultMinFacilitatorLoad
}

func (f *Facilitator) EffectiveMinLoad() int32 {
	if f.MinLoad > 0 {
		return f.MinLoad
	}
	return DefaultMinFacilitatorLoad
}

// SectionPair 表示同一门课的两个平行班
type SectionPair struct {
	First  string `json:"first" yaml:"first" validate:"required"`
	Second string `json:"second" yaml:"second" validate:"required,nefield=First"`
}

type Catalog struct {
	ID                 int64         `json:"id" yaml:"-"`
	Name               string        `json:"name" yaml:"name" validate:"required"`
	Activities         []Activity    `json:"activities" yaml:"activities" validate:"required,max=1000,dive"`
	Rooms              []Room        `json:"rooms" yaml:"rooms" validate:"required,max=1000,dive"`
	TimeSlots          []TimeSlot    `json:"timeSlots" yaml:"timeSlots" validate:"required,max=1000,dive"`
	Facilitators       []Facilitator `json:"facilitators" yaml:"facilitators" validate:"required,max=1000,dive"`
	SectionPairs       []SectionPair `json:"sectionPairs" yaml:"sectionPairs" validate:"max=500,dive"`
	DistantBuildings   []string      `json:"distantBuildings" yaml:"distantBuildings" validate:"dive,required"`
	MaxFacilitatorLoad int32         `json:"maxFacilitatorLoad,omitempty" yaml:"maxFacilitatorLoad,omitempty" validate:"gte=0"` // 为 0 时使用 DefaultMaxFacilitatorLoad
	CreatedAt          time.Time     `json:"createdAt" yaml:"-"`
	Version            int32         `json:"-" yaml:"-"`
}

func (c *Catalog) EffectiveMaxFacilitatorLoad() int32 {
	if c.MaxFacilitatorLoad > 0 {
		return c.MaxFacilitatorLoad
	}
	return DefaultMaxFacilitatorLoad
}

func (c *Catalog) Activity(id string) (*Activity, bool) {
	for i := range c.Activities {
		if c.Activities[i].ID == id {
			return &c.Activities[i], true
		}
	}
	return nil, false
}

func (c *Catalog) Room(id string) (*Room, bool) {
	for i := range c.Rooms {
		if c.Rooms[i].ID == id {
			return &c.Rooms[i], true
		}
	}
	return nil, false
}

func (c *Catalog) TimeSlot(id string) (*TimeSlot, bool) {
	for i := range c.TimeSlots {
		if c.TimeSlots[i].ID == id {
			return &c.TimeSlots[i], true
		}
	}
	return nil, false
}

func (c *Catalog) Facilitator(id string) (*Facilitator, bool) {
	for i := range c.Facilitators {
		if c.Facilitators[i].ID == id {
			return &c.Facilitators[i], true
		}
	}
	return nil, false
}

// ActivityIDs 按目录中的顺序返回所有课程 ID，这个顺序就是染色体的基因顺序
func (c *Catalog) ActivityIDs() []string {
	ids := make([]string, len(c.Activities))
	for i, a := range c.Activities {
		ids[i] = a.ID
	}
	return ids
}

func (c *Catalog) RoomIDs() []string {
	ids := make([]string, len(c.Rooms))
	for i, r := range c.Rooms {
		ids[i] = r.ID
	}
	return ids
}

func (c *Catalog) TimeSlotIDs() []string {
	ids := make([]string, len(c.TimeSlots))
	for i, t := range c.TimeSlots {
		ids[i] = t.ID
	}
	return ids
}

func (c *Catalog) FacilitatorIDs() []string {
	ids := make([]string, len(c.Facilitators))
	for i, f := range c.Facilitators {
		ids[i] = f.ID
	}
	return ids
}
