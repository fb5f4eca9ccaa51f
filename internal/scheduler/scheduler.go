package scheduler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"math/rand/v2"
	"runtime"

	"github.com/sysu-ecnc-dev/activity-scheduler/backend/internal/domain"
	"github.com/sysu-ecnc-dev/activity-scheduler/backend/internal/utils"
	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

type Scheduler struct {
	parameters *Parameters
	problem    *Problem
	workers    int
	logger     *slog.Logger
	rng        *rand.Rand
}

func New(parameters *Parameters, catalog *domain.Catalog, logger *slog.Logger) (*Scheduler, error) {
	if parameters == nil {
		parameters = DefaultParameters()
	}
	if logger == nil {
		logger = slog.Default()
	}

	if parameters.PopulationSize < 2 {
		return nil, &InsufficientPopulationError{Size: int(parameters.PopulationSize)}
	}
	if parameters.MaxGenerations < 1 {
		return nil, domain.NewConfigurationError("迭代次数必须大于 0，当前为 %d", parameters.MaxGenerations)
	}
	if parameters.MutationRate < 0 || parameters.MutationRate > 1 {
		return nil, domain.NewConfigurationError("变异概率必须在 [0, 1] 之间，当前为 %f", parameters.MutationRate)
	}

	problem, err := Compile(catalog)
	if err != nil {
		return nil, err
	}

	workers := parameters.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	s := &Scheduler{
		parameters: parameters,
		problem:    problem,
		workers:    workers,
		logger:     logger,
		rng:        utils.NewRand(parameters.Seed),
	}

	// 每一代通过交叉得到的子代数量为奇数时，最后一对子代中的第二个会被丢弃
	if s.offspringSlots()%2 == 1 {
		logger.Info("子代数量为奇数，每一代最后一对子代中的第二个将被丢弃",
			"populationSize", parameters.PopulationSize,
			"elitism", parameters.Elitism,
		)
	}

	return s, nil
}

func (s *Scheduler) Problem() *Problem {
	return s.problem
}

// offspringSlots 返回每一代中需要通过繁殖填充的位置数量
func (s *Scheduler) offspringSlots() int {
	slots := int(s.parameters.PopulationSize)
	if s.parameters.Elitism {
		slots--
	}
	return slots
}

// Schedule 运行遗传算法
// ctx 只在每一代开始前检查一次，被取消时返回目前为止的最优结果而不是错误
func (s *Scheduler) Schedule(ctx context.Context) (*Result, error) {
	// 生成初始种群
	pop := s.problem.GeneratePopulation(int(s.parameters.PopulationSize), s.rng)

	maxGenerations := int(s.parameters.MaxGenerations)
	result := &Result{
		BestFitness: math.Inf(-1),
		History: domain.FitnessHistory{
			Best:    make([]float64, 0, maxGenerations),
			Average: make([]float64, 0, maxGenerations),
			Worst:   make([]float64, 0, maxGenerations),
		},
	}

	for gen := 0; gen < maxGenerations; gen++ {
		// 至少完成一代，保证总能返回一个结果
		if gen > 0 {
			if err := ctx.Err(); err != nil {
				s.logger.Info("排课被提前终止", "generation", gen, "reason", err)
				result.Stopped = true
				break
			}
		}

		fits, err := s.evaluatePopulation(pop)
		if err != nil {
			return nil, err
		}

		stats := computeStats(fits)
		result.History.Best = append(result.History.Best, stats.Best)
		result.History.Average = append(result.History.Average, stats.Average)
		result.History.Worst = append(result.History.Worst, stats.Worst)

		// 只有严格更优时才更新，相同适应度保留最早找到的那个
		// MaxIdx 在有多个最大值时返回第一个
		bestIndex := floats.MaxIdx(fits)
		if fits[bestIndex] > result.BestFitness {
			result.BestFitness = fits[bestIndex]
			// 种群会被整体替换，这里复制一份防止之后被修改
			result.Best = pop[bestIndex].Clone()
		}

		s.logger.Debug("完成一代进化",
			"generation", gen,
			"best", stats.Best,
			"average", stats.Average,
			"worst", stats.Worst,
			"bestEver", result.BestFitness,
		)

		// 最后一代不需要再繁殖
		if gen == maxGenerations-1 {
			break
		}

		pop, err = s.nextGeneration(pop, fits, result.Best)
		if err != nil {
			return nil, err
		}
	}

	result.Generations = result.History.Len()

	schedule, err := s.problem.Decode(result.Best)
	if err != nil {
		return nil, err
	}
	result.Schedule = schedule

	return result, nil
}

// evaluatePopulation 并行计算每个染色体的适应度
// 每个 goroutine 只写自己对应的下标，结果顺序与种群一致
func (s *Scheduler) evaluatePopulation(pop Population) ([]float64, error) {
	fits := make([]float64, len(pop))

	var g errgroup.Group
	g.SetLimit(s.workers)

	for i := range pop {
		g.Go(func() error {
			fit, err := s.problem.Evaluate(pop[i])
			if err != nil {
				return err
			}
			fits[i] = fit
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	return fits, nil
}

// nextGeneration 通过选择、交叉和变异产生下一代
// 每一对子代使用由 (本代种子, 子代对序号) 派生出的独立随机数流，
// 因此在固定种子下结果与 workers 的数量无关
func (s *Scheduler) nextGeneration(pop Population, fits []float64, best Chromosome) (Population, error) {
	size := len(pop)
	probs := ToProbabilities(fits)
	next := make(Population, size)

	offset := 0
	if s.parameters.Elitism && best != nil {
		next[0] = best.Clone()
		offset = 1
	}

	pairs := (size - offset + 1) / 2
	generationSeed := s.rng.Uint64()

	var g errgroup.Group
	g.SetLimit(s.workers)

	for i := 0; i < pairs; i++ {
		g.Go(func() error {
			rng := utils.DeriveRand(generationSeed, uint64(i))

			p1, p2, err := SampleParentPair(pop, probs, rng)
			if err != nil {
				return err
			}

			c1, c2, err := Crossover(p1, p2, rng)
			if err != nil {
				return err
			}

			pos := offset + 2*i
			next[pos] = s.problem.Mutate(c1, s.parameters.MutationRate, rng)
			// 子代数量为奇数时，最后一对只保留第一个子代
			if pos+1 < size {
				next[pos+1] = s.problem.Mutate(c2, s.parameters.MutationRate, rng)
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	for i, ch := range next {
		if ch == nil {
			return nil, &InvariantViolationError{Reason: fmt.Sprintf("下一代第 %d 个位置没有染色体", i)}
		}
	}

	return next, nil
}

func computeStats(fits []float64) GenerationStats {
	return GenerationStats{
		Best:    floats.Max(fits),
		Average: stat.Mean(fits, nil),
		Worst:   floats.Min(fits),
	}
}

// IsConfigurationError 判断 err 是否由排课目录或参数不合法导致
func IsConfigurationError(err error) bool {
	var configErr *domain.ConfigurationError
	var populationErr *InsufficientPopulationError
	return errors.As(err, &configErr) || errors.As(err, &populationErr)
}
