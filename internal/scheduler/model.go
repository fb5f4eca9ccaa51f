package scheduler

import (
	"runtime"
	"slices"

	"github.com/sysu-ecnc-dev/activity-scheduler/backend/internal/config"
	"github.com/sysu-ecnc-dev/activity-scheduler/backend/internal/domain"
)

// Assignment: 某一门课的排课决策，三个字段都是编译后目录中的下标
type Assignment struct {
	Room        int
	Time        int
	Facilitator int
}

// Chromosome: 整个课表，第 i 个基因对应目录中第 i 门课
// 因为课程和基因按下标一一对应，所以任何长度正确的染色体都天然满足“每门课恰好出现一次”
type Chromosome []Assignment

func (ch Chromosome) Clone() Chromosome {
	return slices.Clone(ch)
}

// Population: 一代中的所有染色体，大小在整个进化过程中保持不变
type Population []Chromosome

// 遗传算法参数
type Parameters struct {
	PopulationSize int32   // 种群大小
	MaxGenerations int32   // 迭代次数
	MutationRate   float64 // 变异概率
	Elitism        bool    // 是否把历史最优个体直接放入下一代
	Workers        int     // 并行计算适应度和繁殖时使用的 goroutine 数量，<= 0 时使用 CPU 核数
	Seed           uint64  // 随机种子，为 0 时使用随机种子
}

func DefaultParameters() *Parameters {
	return &Parameters{
		PopulationSize: 250,
		MaxGenerations: 500,
		MutationRate:   0.1,
		Elitism:        false,
		Workers:        runtime.NumCPU(),
		Seed:           0,
	}
}

// ParametersFromConfig 根据环境变量中的配置构造遗传算法参数
func ParametersFromConfig(cfg *config.SchedulerConfig) *Parameters {
	parameters := DefaultParameters()
	parameters.MaxGenerations = cfg.Generations
	parameters.PopulationSize = cfg.PopulationSize
	parameters.MutationRate = cfg.MutationRate
	parameters.Elitism = cfg.Elitism
	parameters.Seed = cfg.Seed
	if cfg.Workers > 0 {
		parameters.Workers = cfg.Workers
	}
	return parameters
}

// GenerationStats: 一代种群的适应度统计
type GenerationStats struct {
	Best    float64
	Average float64
	Worst   float64
}

type Result struct {
	Best        Chromosome                 // 历史最优染色体
	BestFitness float64                    // 历史最优适应度
	Schedule    []domain.ScheduledActivity // 历史最优染色体解码后的课表
	History     domain.FitnessHistory      // 每一代的统计数据
	Generations int                        // 实际完成的代数
	Stopped     bool                       // 是否因为 ctx 被取消而提前结束
}
