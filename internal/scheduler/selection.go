package scheduler

import (
	"fmt"
	"math"
	"math/rand/v2"

	"gonum.org/v1/gonum/floats"
)

// FitnessVector 依次计算种群中每个染色体的适应度，顺序与种群一致
func (p *Problem) FitnessVector(pop Population) ([]float64, error) {
	fits := make([]float64, len(pop))
	for i, ch := range pop {
		fit, err := p.Evaluate(ch)
		if err != nil {
			return nil, err
		}
		fits[i] = fit
	}
	return fits, nil
}

// ToProbabilities 使用 softmax 把适应度转换为概率分布
// 先减去最大值再取指数，避免适应度过大时溢出
func ToProbabilities(fits []float64) []float64 {
	if len(fits) == 0 {
		return nil
	}

	maxFit := floats.Max(fits)
	probs := make([]float64, len(fits))
	for i, fit := range fits {
		probs[i] = math.Exp(fit - maxFit)
	}

	// 最大值对应的项为 exp(0) = 1，所以 sum >= 1，不会出现除以 0
	sum := floats.Sum(probs)
	floats.Scale(1/sum, probs)

	return probs
}

// SampleParentIndices 按概率不放回地抽取两个不同的下标
func SampleParentIndices(probs []float64, rng *rand.Rand) (int, int, error) {
	if len(probs) < 2 {
		return 0, 0, &InsufficientPopulationError{Size: len(probs)}
	}

	first := sampleIndex(probs, -1, floats.Sum(probs), rng)

	// 去掉第一个之后，剩余的概率重新归一化再抽取第二个
	rest := 0.0
	for i, prob := range probs {
		if i != first {
			rest += prob
		}
	}

	var second int
	if rest <= 0 {
		// 剩余个体的概率全部下溢为 0，此时在剩余个体中均匀抽取
		second = rng.IntN(len(probs) - 1)
		if second >= first {
			second++
		}
	} else {
		second = sampleIndex(probs, first, rest, rng)
	}

	return first, second, nil
}

// sampleIndex 轮盘赌：在除 skip 以外的下标中按概率抽取一个，total 为参与抽取的概率之和
func sampleIndex(probs []float64, skip int, total float64, rng *rand.Rand) int {
	pick := rng.Float64() * total
	partial := 0.0
	last := -1

	for i, prob := range probs {
		if i == skip {
			continue
		}
		partial += prob
		last = i
		if partial > pick {
			return i
		}
	}

	// 浮点误差导致没有命中时返回最后一个候选
	return last
}

// SampleParentPair 按概率从种群中选出两个不同的父代
func SampleParentPair(pop Population, probs []float64, rng *rand.Rand) (Chromosome, Chromosome, error) {
	if len(pop) < 2 {
		return nil, nil, &InsufficientPopulationError{Size: len(pop)}
	}
	if len(pop) != len(probs) {
		return nil, nil, fmt.Errorf("种群大小 %d 与概率数量 %d 不一致", len(pop), len(probs))
	}

	i, j, err := SampleParentIndices(probs, rng)
	if err != nil {
		return nil, nil, err
	}

	return pop[i], pop[j], nil
}
