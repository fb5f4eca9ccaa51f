package seed

import "github.com/sysu-ecnc-dev/activity-scheduler/backend/internal/domain"

var slaIntroFacilitators = struct {
	preferred []string
	other     []string
}{
	preferred: []string{"Glen", "Lock", "Banks"},
	other:     []string{"Numen", "Richards", "Shaw", "Singer"},
}

// DefaultCatalog 返回 SLA 课程的默认排课目录
// 每次调用都会构造一个新的值，调用方可以放心修改
func DefaultCatalog() *domain.Catalog {
	intro := func(id string, enrollment int32) domain.Activity {
		return domain.Activity{
			ID:         id,
			Enrollment: enrollment,
			Preferred:  append([]string{}, slaIntroFacilitators.preferred...),
			Other:      append([]string{}, slaIntroFacilitators.other...),
		}
	}

	return &domain.Catalog{
		Name: "SLA 默认排课目录",
		Activities: []domain.Activity{
			intro("SLA101A", 40),
			intro("SLA101B", 35),
			intro("SLA191A", 45),
			intro("SLA191B", 40),
			{
				ID:         "SLA201",
				Enrollment: 60,
				Preferred:  []string{"Glen", "Banks", "Zeldin", "Lock", "Singer"},
				Other:      []string{"Richards", "Uther", "Shaw"},
			},
			{
				ID:         "SLA291",
				Enrollment: 50,
				Preferred:  []string{"Glen", "Banks", "Zeldin", "Lock", "Singer"},
				Other:      []string{"Richards", "Uther", "Shaw"},
			},
			{
				ID:         "SLA303",
				Enrollment: 25,
				Preferred:  []string{"Glen", "Zeldin"},
				Other:      []string{"Banks"},
			},
			{
				ID:         "SLA304",
				Enrollment: 20,
				Preferred:  []string{"Singer", "Uther"},
				Other:      []string{"Richards"},
			},
			{
				ID:         "SLA394",
				Enrollment: 15,
				Preferred:  []string{"Tyler", "Singer"},
				Other:      []string{"Richards", "Zeldin"},
			},
			{
				// Zeldin 同时出现在首选和备选中，首选优先
				ID:         "SLA449",
				Enrollment: 30,
				Preferred:  []string{"Tyler", "Zeldin", "Uther"},
				Other:      []string{"Zeldin", "Shaw"},
			},
			{
				ID:         "SLA451",
				Enrollment: 90,
				Preferred:  []string{"Lock", "Banks", "Zeldin"},
				Other:      []string{"Tyler", "Singer", "Shaw", "Glen"},
			},
		},
		Rooms: []domain.Room{
			{ID: "Beach 201", Capacity: 18, Building: "Beach"},
			{ID: "Beach 301", Capacity: 25, Building: "Beach"},
			{ID: "Frank 119", Capacity: 95, Building: "Frank"},
			{ID: "Loft 206", Capacity: 55, Building: "Loft"},
			{ID: "Loft 310", Capacity: 48, Building: "Loft"},
			{ID: "James 325", Capacity: 110, Building: "James"},
			{ID: "Roman 201", Capacity: 40, Building: "Roman"},
			{ID: "Roman 216", Capacity: 80, Building: "Roman"},
			{ID: "Slater 003", Capacity: 32, Building: "Slater"},
		},
		TimeSlots: []domain.TimeSlot{
			{ID: "10 AM", Order: 10},
			{ID: "11 AM", Order: 11},
			{ID: "12 PM", Order: 12},
			{ID: "1 PM", Order: 13},
			{ID: "2 PM", Order: 14},
			{ID: "3 PM", Order: 15},
		},
		Facilitators: []domain.Facilitator{
			{ID: "Lock"},
			{ID: "Glen"},
			{ID: "Banks"},
			{ID: "Richards"},
			{ID: "Shaw"},
			{ID: "Singer"},
			{ID: "Uther"},
			{ID: "Tyler", MinLoad: 2}, // Tyler 的课程本来就少，带 2 门课即可
			{ID: "Numen"},
			{ID: "Zeldin"},
		},
		SectionPairs: []domain.SectionPair{
			{First: "SLA101A", Second: "SLA101B"},
			{First: "SLA191A", Second: "SLA191B"},
		},
		DistantBuildings:   []string{"Roman", "Beach"},
		MaxFacilitatorLoad: domain.DefaultMaxFacilitatorLoad,
	}
}
