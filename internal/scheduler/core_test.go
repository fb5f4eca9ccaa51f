package scheduler

import (
	"fmt"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/sysu-ecnc-dev/activity-scheduler/backend/internal/domain"
	"github.com/sysu-ecnc-dev/activity-scheduler/backend/internal/seed"
	"github.com/sysu-ecnc-dev/activity-scheduler/backend/internal/utils"
)

const tolerance = 1e-9

func mustCompile(t *testing.T, catalog *domain.Catalog) *Problem {
	t.Helper()
	p, err := Compile(catalog)
	require.NoError(t, err)
	return p
}

func mustEvaluate(t *testing.T, p *Problem, ch Chromosome) float64 {
	t.Helper()
	fit, err := p.Evaluate(ch)
	require.NoError(t, err)
	return fit
}

func mustEncode(t *testing.T, p *Problem, schedule []domain.ScheduledActivity) Chromosome {
	t.Helper()
	ch, err := p.Encode(schedule)
	require.NoError(t, err)
	return ch
}

// plainCatalog 构造一个所有课程人数都为 enrollment、没有任何导师偏好的小目录
// 这样容量项固定为 +0.3、偏好项固定为 -0.1，方便单独检查其他项
func plainCatalog(activities, rooms, times int, facilitators []domain.Facilitator) *domain.Catalog {
	c := &domain.Catalog{
		Name:         "test",
		Facilitators: facilitators,
	}
	for i := 0; i < activities; i++ {
		c.Activities = append(c.Activities, domain.Activity{ID: string(rune('A' + i)), Enrollment: 10})
	}
	for i := 0; i < rooms; i++ {
		c.Rooms = append(c.Rooms, domain.Room{ID: "Room " + string(rune('a'+i)), Capacity: 10})
	}
	for i := 0; i < times; i++ {
		c.TimeSlots = append(c.TimeSlots, domain.TimeSlot{ID: string(rune('0' + i)), Order: int32(i)})
	}
	return c
}

func TestEvaluateCapacityThresholds(t *testing.T) {
	cases := []struct {
		capacity int32
		want     float64
	}{
		{capacity: 39, want: -0.5},
		{capacity: 40, want: 0.3},
		{capacity: 60, want: 0.3},
		{capacity: 61, want: -0.2},
		{capacity: 65, want: -0.2},
		{capacity: 110, want: -0.2},
		{capacity: 120, want: -0.2},
		{capacity: 121, want: -0.4},
	}

	for _, tc := range cases {
		catalog := &domain.Catalog{
			Name:         "capacity",
			Activities:   []domain.Activity{{ID: "SLA101A", Enrollment: 40, Preferred: []string{"Glen"}}},
			Rooms:        []domain.Room{{ID: "Roman 216", Capacity: tc.capacity}},
			TimeSlots:    []domain.TimeSlot{{ID: "10 AM", Order: 10}},
			Facilitators: []domain.Facilitator{{ID: "Glen", MinLoad: 1}},
		}
		p := mustCompile(t, catalog)

		// 首选导师 +0.5，其余各项均为 0
		fit := mustEvaluate(t, p, Chromosome{{Room: 0, Time: 0, Facilitator: 0}})
		assert.InDelta(t, tc.want, fit-0.5, tolerance, "capacity %d", tc.capacity)
	}
}

func TestEvaluateFacilitatorPreference(t *testing.T) {
	p := mustCompile(t, seed.DefaultCatalog())
	catalog := p.Catalog()

	base := make([]domain.ScheduledActivity, len(catalog.Activities))
	for i, a := range catalog.Activities {
		base[i] = domain.ScheduledActivity{Activity: a.ID, Room: "Frank 119", TimeSlot: "10 AM", Facilitator: "Tyler"}
	}

	// SLA101A 的首选是 Glen，备选是 Numen，Tyler 两者都不是
	score := func(facilitator string) float64 {
		schedule := append([]domain.ScheduledActivity{}, base...)
		schedule[0].Facilitator = facilitator
		return mustEvaluate(t, p, mustEncode(t, p, schedule))
	}

	preferred := score("Glen")
	other := score("Numen")
	neither := score("Uther")

	// 除偏好项外，其余项在三种情况下相同（Glen、Numen、Uther 都只带 1 门课）
	assert.InDelta(t, 0.3, preferred-other, tolerance)
	assert.InDelta(t, 0.3, other-neither, tolerance)
}

func TestEvaluatePreferredWinsOverOther(t *testing.T) {
	p := mustCompile(t, seed.DefaultCatalog())
	// SLA449 的首选和备选中都有 Zeldin
	assert.Equal(t, preferencePreferred, p.preference[9][9])
}

func TestEvaluateRoomConflict(t *testing.T) {
	p := mustCompile(t, seed.DefaultCatalog())

	base := []domain.ScheduledActivity{
		{Activity: "SLA101A", Room: "Loft 206", TimeSlot: "10 AM", Facilitator: "Glen"},
		{Activity: "SLA101B", Room: "Loft 310", TimeSlot: "3 PM", Facilitator: "Lock"},
		{Activity: "SLA191A", Room: "Frank 119", TimeSlot: "12 PM", Facilitator: "Banks"},
		{Activity: "SLA191B", Room: "Loft 206", TimeSlot: "1 PM", Facilitator: "Numen"},
		{Activity: "SLA201", Room: "Roman 216", TimeSlot: "11 AM", Facilitator: "Zeldin"},
		{Activity: "SLA291", Room: "Roman 216", TimeSlot: "10 AM", Facilitator: "Singer"},
		{Activity: "SLA303", Room: "Beach 301", TimeSlot: "2 PM", Facilitator: "Richards"},
		{Activity: "SLA304", Room: "Beach 201", TimeSlot: "12 PM", Facilitator: "Uther"},
		{Activity: "SLA394", Room: "Beach 201", TimeSlot: "11 AM", Facilitator: "Tyler"},
		{Activity: "SLA449", Room: "Slater 003", TimeSlot: "2 PM", Facilitator: "Shaw"},
		{Activity: "SLA451", Room: "James 325", TimeSlot: "3 PM", Facilitator: "Glen"},
	}
	conflict := append([]domain.ScheduledActivity{}, base...)
	conflict[4].TimeSlot = "10 AM" // SLA201 和 SLA291 同时在 Roman 216

	withoutConflict := mustEvaluate(t, p, mustEncode(t, p, base))
	withConflict := mustEvaluate(t, p, mustEncode(t, p, conflict))

	// 两门课各扣 0.5
	assert.InDelta(t, -1.0, withConflict-withoutConflict, tolerance)
}

func TestEvaluateFacilitatorTimeConflict(t *testing.T) {
	facilitators := []domain.Facilitator{{ID: "F", MinLoad: 1}, {ID: "G", MinLoad: 1}}
	p := mustCompile(t, plainCatalog(3, 3, 3, facilitators))

	// 三门课都由 F 负责，分别在不同的时间段和教室
	base := Chromosome{
		{Room: 0, Time: 0, Facilitator: 0},
		{Room: 1, Time: 1, Facilitator: 0},
		{Room: 2, Time: 2, Facilitator: 0},
	}
	twoWay := Chromosome{
		{Room: 0, Time: 0, Facilitator: 0},
		{Room: 1, Time: 0, Facilitator: 0},
		{Room: 2, Time: 2, Facilitator: 0},
	}
	threeWay := Chromosome{
		{Room: 0, Time: 0, Facilitator: 0},
		{Room: 1, Time: 0, Facilitator: 0},
		{Room: 2, Time: 0, Facilitator: 0},
	}

	baseFit := mustEvaluate(t, p, base)
	assert.InDelta(t, 3*0.2, baseFit, tolerance)

	// 冲突组中的每门课都扣 0.2 * 冲突数量
	assert.InDelta(t, -0.2*2*2, mustEvaluate(t, p, twoWay)-baseFit, tolerance)
	assert.InDelta(t, -0.2*3*3, mustEvaluate(t, p, threeWay)-baseFit, tolerance)
}

func TestEvaluateFacilitatorWorkload(t *testing.T) {
	facilitators := []domain.Facilitator{
		{ID: "F"},             // 默认至少 3 门
		{ID: "T", MinLoad: 2}, // 至少 2 门
		{ID: "U"},             // 不带课，不参与计算
	}
	p := mustCompile(t, plainCatalog(6, 6, 6, facilitators))

	build := func(owners ...int) Chromosome {
		ch := make(Chromosome, len(owners))
		for i, f := range owners {
			ch[i] = Assignment{Room: i, Time: i, Facilitator: f}
		}
		return ch
	}

	// 6 门课的容量和偏好项合计 6 * (0.3 - 0.1) = 1.2
	cases := []struct {
		name   string
		owners []int
		want   float64
	}{
		{name: "F 过载且 T 过少", owners: []int{0, 0, 0, 0, 0, 1}, want: 1.2 - 0.5 - 0.4},
		{name: "F 带 4 门且 T 带 2 门", owners: []int{0, 0, 0, 0, 1, 1}, want: 1.2},
		{name: "F 过少", owners: []int{0, 0, 1, 1, 1, 1}, want: 1.2 - 0.4},
		{name: "F 带 3 门且 T 带 3 门", owners: []int{0, 0, 0, 1, 1, 1}, want: 1.2},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.InDelta(t, tc.want, mustEvaluate(t, p, build(tc.owners...)), tolerance)
		})
	}
}

func TestEvaluateSectionPairs(t *testing.T) {
	catalog := &domain.Catalog{
		Name: "pairs",
		Activities: []domain.Activity{
			{ID: "P1a", Enrollment: 10},
			{ID: "P1b", Enrollment: 10},
			{ID: "P2a", Enrollment: 10},
			{ID: "P2b", Enrollment: 10},
		},
		Rooms: []domain.Room{
			{ID: "Near 1", Capacity: 10},
			{ID: "Near 2", Capacity: 10},
			{ID: "Far 1", Capacity: 10},
			{ID: "Far 2", Capacity: 10},
		},
		Facilitators: []domain.Facilitator{
			{ID: "A", MinLoad: 1}, {ID: "B", MinLoad: 1}, {ID: "C", MinLoad: 1}, {ID: "D", MinLoad: 1},
		},
		SectionPairs: []domain.SectionPair{
			{First: "P1a", Second: "P1b"},
			{First: "P2a", Second: "P2b"},
		},
		DistantBuildings: []string{"Far"},
	}
	for i := 0; i < 8; i++ {
		catalog.TimeSlots = append(catalog.TimeSlots, domain.TimeSlot{ID: string(rune('0' + i)), Order: int32(i)})
	}
	p := mustCompile(t, catalog)

	const (
		near1 = iota
		near2
		far1
		far2
	)
	build := func(slots [4]int, rooms [4]int) Chromosome {
		ch := make(Chromosome, 4)
		for i := range ch {
			ch[i] = Assignment{Room: rooms[i], Time: slots[i], Facilitator: i}
		}
		return ch
	}

	// 四门课的容量和偏好项合计 4 * 0.2 = 0.8
	cases := []struct {
		name  string
		slots [4]int
		rooms [4]int
		want  float64
	}{
		{
			// 第一组同一时间 -0.5，第二组相隔 5 格 +0.5，两个相邻且跨楼的组合各 +0.1
			name:  "同时段与远间隔",
			slots: [4]int{0, 0, 6, 1},
			rooms: [4]int{near1, near2, far1, far2},
			want:  0.8 - 0.5 + 0.5 + 0.1 + 0.1,
		},
		{
			// 相邻且跨楼 +0.1 两次，相隔 2 格 +0.25 一次
			name:  "相邻与相隔两格",
			slots: [4]int{2, 4, 3, 0},
			rooms: [4]int{near1, near2, far1, far2},
			want:  0.8 + 0.1 + 0.25 + 0.1,
		},
		{
			name:  "跨组同时段",
			slots: [4]int{3, 5, 3, 5},
			rooms: [4]int{near1, near2, far1, far2},
			want:  0.8 - 0.25 - 0.25 + 0.25 + 0.25,
		},
		{
			// 相邻的两门课都在偏远教学楼时不扣分
			name:  "相邻且同在偏远教学楼",
			slots: [4]int{1, 7, 2, 7},
			rooms: [4]int{far1, near1, far2, near2},
			want:  0.8 + 0.5 + 0.5 + 0.5 - 0.25,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.InDelta(t, tc.want, mustEvaluate(t, p, build(tc.slots, tc.rooms)), tolerance)
		})
	}
}

func TestEvaluateIsDeterministic(t *testing.T) {
	p := mustCompile(t, seed.DefaultCatalog())
	rng := utils.NewRand(7)

	for i := 0; i < 50; i++ {
		ch := p.GenerateRandom(rng)
		first := mustEvaluate(t, p, ch)
		second := mustEvaluate(t, p, ch)
		assert.Equal(t, first, second)
	}
}

func TestGenerateAndEvaluateAreReproducible(t *testing.T) {
	p := mustCompile(t, seed.DefaultCatalog())

	run := func() (Population, []float64) {
		rng := utils.NewRand(20240501)
		pop := p.GeneratePopulation(30, rng)
		fits, err := p.FitnessVector(pop)
		require.NoError(t, err)
		return pop, fits
	}

	pop1, fits1 := run()
	pop2, fits2 := run()

	assert.Equal(t, pop1, pop2)
	assert.Equal(t, fits1, fits2)
}

func TestGenerateRandomCoversEveryActivity(t *testing.T) {
	p := mustCompile(t, seed.DefaultCatalog())
	rng := utils.NewRand(1)

	for _, ch := range p.GeneratePopulation(100, rng) {
		require.Len(t, ch, len(p.Catalog().Activities))
		require.NoError(t, p.Validate(ch))
	}
}

func TestEvaluateRejectsMalformedChromosome(t *testing.T) {
	p := mustCompile(t, seed.DefaultCatalog())
	rng := utils.NewRand(3)

	short := p.GenerateRandom(rng)[:5]
	_, err := p.Evaluate(short)
	var invariantErr *InvariantViolationError
	require.ErrorAs(t, err, &invariantErr)

	outOfRange := p.GenerateRandom(rng)
	outOfRange[0].Room = 100
	_, err = p.Evaluate(outOfRange)
	require.ErrorAs(t, err, &invariantErr)
}

func TestDecodeEncodeRoundTrip(t *testing.T) {
	p := mustCompile(t, seed.DefaultCatalog())
	ch := p.GenerateRandom(utils.NewRand(11))

	schedule, err := p.Decode(ch)
	require.NoError(t, err)
	require.Len(t, schedule, 11)
	assert.Equal(t, "SLA101A", schedule[0].Activity)
	assert.Equal(t, "SLA451", schedule[10].Activity)

	assert.Equal(t, ch, mustEncode(t, p, schedule))
}

func TestCompileRejectsEmptyCategories(t *testing.T) {
	mutations := map[string]func(c *domain.Catalog){
		"没有课程": func(c *domain.Catalog) { c.Activities = nil },
		"没有教室": func(c *domain.Catalog) { c.Rooms = nil },
		"没有时间": func(c *domain.Catalog) { c.TimeSlots = nil },
		"没有导师": func(c *domain.Catalog) { c.Facilitators = nil },
	}

	for name, mutate := range mutations {
		t.Run(name, func(t *testing.T) {
			catalog := seed.DefaultCatalog()
			mutate(catalog)

			_, err := Compile(catalog)
			var configErr *domain.ConfigurationError
			require.ErrorAs(t, err, &configErr)
		})
	}
}

func TestEvaluateMemoryDoesNotGrowWithRoomsAndTimes(t *testing.T) {
	catalog := &domain.Catalog{
		Name:         "wide",
		Activities:   []domain.Activity{{ID: "SLA101A", Enrollment: 10}},
		Facilitators: []domain.Facilitator{{ID: "Glen", MinLoad: 1}},
	}
	for i := 0; i < 1000; i++ {
		catalog.Rooms = append(catalog.Rooms, domain.Room{ID: fmt.Sprintf("Hall %d", i), Capacity: 10})
		catalog.TimeSlots = append(catalog.TimeSlots, domain.TimeSlot{ID: fmt.Sprintf("T%d", i), Order: int32(i)})
	}
	p := mustCompile(t, catalog)
	ch := Chromosome{{Room: 999, Time: 999, Facilitator: 0}}

	var before, after runtime.MemStats
	runtime.ReadMemStats(&before)
	fit := mustEvaluate(t, p, ch)
	runtime.ReadMemStats(&after)

	assert.InDelta(t, 0.3-0.1, fit, tolerance)
	// 只有一门课时，统计冲突用到的内存与教室数、时间段数无关
	assert.Less(t, after.TotalAlloc-before.TotalAlloc, uint64(64<<10))
}
