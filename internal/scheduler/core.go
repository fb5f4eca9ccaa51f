package scheduler

import (
	"math/rand/v2"
)

// randomAssignment 独立且均匀地随机选择教室、时间段和导师
func (p *Problem) randomAssignment(rng *rand.Rand) Assignment {
	return Assignment{
		Room:        rng.IntN(len(p.capacity)),
		Time:        rng.IntN(len(p.timeOrder)),
		Facilitator: rng.IntN(len(p.minLoad)),
	}
}

// GenerateRandom 随机初始化一个染色体
func (p *Problem) GenerateRandom(rng *rand.Rand) Chromosome {
	ch := make(Chromosome, p.NumActivities())
	for i := range ch {
		ch[i] = p.randomAssignment(rng)
	}
	return ch
}

// GeneratePopulation 随机生成 size 个染色体作为初始种群
func (p *Problem) GeneratePopulation(size int, rng *rand.Rand) Population {
	pop := make(Population, size)
	for i := range pop {
		pop[i] = p.GenerateRandom(rng)
	}
	return pop
}

/**
 * 计算染色体的适应度
 * fitness 由以下几部分直接相加得到，不做归一化：
 * 		1. 教室容量是否合适
 * 		2. 导师是否为课程的首选/备选导师
 * 		3. 同一教室同一时间是否安排了多门课
 * 		4. 同一导师同一时间是否需要上多门课
 * 		5. 导师的工作量是否过多或过少
 * 		6. 同一门课的两个平行班之间的时间间隔
 * 		7. 不同平行班组之间的时间间隔以及教学楼距离
 */
func (p *Problem) Evaluate(ch Chromosome) (float64, error) {
	if err := p.Validate(ch); err != nil {
		return 0, err
	}

	fitness := 0.0

	// 教室容量 + 导师偏好
	for i, a := range ch {
		capacity := p.capacity[a.Room]
		need := p.enrollment[i]

		switch {
		case capacity < need:
			fitness -= 0.5
		case capacity > 3*need:
			fitness -= 0.4
		case capacity > 1.5*need:
			fitness -= 0.2
		default:
			fitness += 0.3
		}

		switch p.preference[i][a.Facilitator] {
		case preferencePreferred:
			fitness += 0.5
		case preferenceOther:
			fitness += 0.2
		default:
			fitness -= 0.1
		}
	}

	// 统计 (教室, 时间段)、(导师, 时间段) 以及导师总工作量
	roomTimeCnt := make(map[slotKey]int, len(ch))
	facilitatorTimeCnt := make(map[slotKey]int, len(ch))
	facilitatorTotal := make([]int, len(p.minLoad))

	for _, a := range ch {
		roomTimeCnt[slotKey{a.Room, a.Time}]++
		facilitatorTimeCnt[slotKey{a.Facilitator, a.Time}]++
		facilitatorTotal[a.Facilitator]++
	}

	for _, a := range ch {
		// 教室冲突：每门涉及冲突的课扣一次分
		if roomTimeCnt[slotKey{a.Room, a.Time}] > 1 {
			fitness -= 0.5
		}
		// 导师时间冲突：每门涉及冲突的课按冲突组的大小扣分
		if cnt := facilitatorTimeCnt[slotKey{a.Facilitator, a.Time}]; cnt > 1 {
			fitness -= 0.2 * float64(cnt)
		}
	}

	// 导师工作量：没有被安排任何课程的导师不参与计算
	for f, total := range facilitatorTotal {
		switch {
		case total == 0:
			continue
		case total > p.maxLoad:
			fitness -= 0.5
		case total < p.minLoad[f]:
			fitness -= 0.4
		}
	}

	// 同一门课的两个平行班
	for _, pair := range p.sectionPairs {
		d := p.timeDistance(ch[pair[0]], ch[pair[1]])
		if d == 0 {
			fitness -= 0.5
		}
		if d > 4 {
			fitness += 0.5
		}
	}

	// 不同平行班组之间的组合
	for i := 0; i < len(p.sectionPairs); i++ {
		for j := i + 1; j < len(p.sectionPairs); j++ {
			for _, x := range p.sectionPairs[i] {
				for _, y := range p.sectionPairs[j] {
					fitness += p.crossSectionScore(ch[x], ch[y])
				}
			}
		}
	}

	return fitness, nil
}

func (p *Problem) crossSectionScore(x, y Assignment) float64 {
	switch p.timeDistance(x, y) {
	case 0:
		return -0.25
	case 1:
		score := 0.5
		// 相邻时间段的两门课只有一门在偏远教学楼时，学生来不及赶路
		if p.distantRoom[x.Room] != p.distantRoom[y.Room] {
			score -= 0.4
		}
		return score
	case 2:
		return 0.25
	default:
		return 0
	}
}

// slotKey 表示某个教室或导师在某个时间段的占用
type slotKey struct {
	owner int
	time  int
}
