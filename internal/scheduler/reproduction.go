package scheduler

import (
	"fmt"
	"math/rand/v2"
)

// crossoverPoint 在 [1, n-2] 中均匀选择交叉点，保证交叉点位于染色体内部
func crossoverPoint(n int, rng *rand.Rand) int {
	if n < 3 {
		return min(n, 1)
	}
	return 1 + rng.IntN(n-2)
}

// Crossover 单点交叉
func Crossover(p1, p2 Chromosome, rng *rand.Rand) (Chromosome, Chromosome, error) {
	if len(p1) != len(p2) {
		return nil, nil, &InvariantViolationError{
			Reason: fmt.Sprintf("父代长度不一致: %d 和 %d", len(p1), len(p2)),
		}
	}
	return CrossoverAt(p1, p2, crossoverPoint(len(p1), rng))
}

// CrossoverAt 在固定的交叉点 point 处交叉
// 子代 1 的 [0, point) 来自父代 1，[point, n) 来自父代 2；子代 2 恰好相反
// 父代本身不会被修改
func CrossoverAt(p1, p2 Chromosome, point int) (Chromosome, Chromosome, error) {
	if len(p1) != len(p2) {
		return nil, nil, &InvariantViolationError{
			Reason: fmt.Sprintf("父代长度不一致: %d 和 %d", len(p1), len(p2)),
		}
	}
	if point < 0 || point > len(p1) {
		return nil, nil, fmt.Errorf("交叉点 %d 超出范围 [0, %d]", point, len(p1))
	}

	length := len(p1)
	c1 := make(Chromosome, length)
	c2 := make(Chromosome, length)

	copy(c1[:point], p1[:point])
	copy(c1[point:], p2[point:])
	copy(c2[:point], p2[:point])
	copy(c2[point:], p1[point:])

	return c1, c2, nil
}

// Mutate 以 rate 的概率随机选择一门课，重新随机安排它的教室、时间段和导师
// 每次调用最多只改变一门课；没有发生变异时原样返回 ch
func (p *Problem) Mutate(ch Chromosome, rate float64, rng *rand.Rand) Chromosome {
	if len(ch) == 0 || rng.Float64() >= rate {
		return ch
	}

	mutated := ch.Clone()
	mutated[rng.IntN(len(mutated))] = p.randomAssignment(rng)
	return mutated
}
