package scheduler

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/sysu-ecnc-dev/activity-scheduler/backend/internal/config"
	"github.com/sysu-ecnc-dev/activity-scheduler/backend/internal/domain"
	"github.com/sysu-ecnc-dev/activity-scheduler/backend/internal/seed"
	"gonum.org/v1/gonum/floats"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testParameters() *Parameters {
	return &Parameters{
		PopulationSize: 20,
		MaxGenerations: 5,
		MutationRate:   0.1,
		Workers:        4,
		Seed:           42,
	}
}

func mustNew(t *testing.T, parameters *Parameters) *Scheduler {
	t.Helper()
	s, err := New(parameters, seed.DefaultCatalog(), discardLogger())
	require.NoError(t, err)
	return s
}

func TestNewRejectsInvalidParameters(t *testing.T) {
	t.Run("种群过小", func(t *testing.T) {
		parameters := testParameters()
		parameters.PopulationSize = 1

		_, err := New(parameters, seed.DefaultCatalog(), discardLogger())
		var populationErr *InsufficientPopulationError
		require.ErrorAs(t, err, &populationErr)
		assert.Equal(t, 1, populationErr.Size)
		assert.True(t, IsConfigurationError(err))
	})

	t.Run("迭代次数为 0", func(t *testing.T) {
		parameters := testParameters()
		parameters.MaxGenerations = 0

		_, err := New(parameters, seed.DefaultCatalog(), discardLogger())
		var configErr *domain.ConfigurationError
		require.ErrorAs(t, err, &configErr)
	})

	t.Run("变异概率超出范围", func(t *testing.T) {
		parameters := testParameters()
		parameters.MutationRate = 1.5

		_, err := New(parameters, seed.DefaultCatalog(), discardLogger())
		assert.True(t, IsConfigurationError(err))
	})

	t.Run("目录没有教室", func(t *testing.T) {
		catalog := seed.DefaultCatalog()
		catalog.Rooms = nil

		_, err := New(testParameters(), catalog, discardLogger())
		assert.True(t, IsConfigurationError(err))
	})
}

func TestScheduleDefaultCatalog(t *testing.T) {
	s := mustNew(t, testParameters())

	result, err := s.Schedule(context.Background())
	require.NoError(t, err)

	assert.False(t, result.Stopped)
	assert.Equal(t, 5, result.Generations)
	require.Equal(t, 5, result.History.Len())
	require.Len(t, result.History.Average, 5)
	require.Len(t, result.History.Worst, 5)

	for g := 0; g < result.History.Len(); g++ {
		assert.GreaterOrEqual(t, result.History.Best[g], result.History.Average[g])
		assert.GreaterOrEqual(t, result.History.Average[g], result.History.Worst[g])
		assert.GreaterOrEqual(t, result.BestFitness, result.History.Best[g])
	}
	assert.Equal(t, floats.Max(result.History.Best), result.BestFitness)

	fit, err := s.Problem().Evaluate(result.Best)
	require.NoError(t, err)
	assert.Equal(t, result.BestFitness, fit)

	require.Len(t, result.Schedule, 11)
	for i, item := range result.Schedule {
		assert.Equal(t, s.Problem().Catalog().Activities[i].ID, item.Activity)
	}
}

func TestScheduleIsReproducible(t *testing.T) {
	run := func(workers int) *Result {
		parameters := testParameters()
		parameters.Workers = workers
		parameters.MaxGenerations = 10

		result, err := mustNew(t, parameters).Schedule(context.Background())
		require.NoError(t, err)
		return result
	}

	single := run(1)
	parallel := run(8)
	again := run(8)

	// 固定种子时，结果与 goroutine 数量无关
	assert.Equal(t, single.Best, parallel.Best)
	assert.Equal(t, single.History, parallel.History)
	assert.Equal(t, parallel.Schedule, again.Schedule)
}

func TestScheduleWithElitismNeverLosesBest(t *testing.T) {
	parameters := testParameters()
	parameters.Elitism = true
	parameters.MaxGenerations = 20

	result, err := mustNew(t, parameters).Schedule(context.Background())
	require.NoError(t, err)

	for g := 1; g < result.History.Len(); g++ {
		assert.GreaterOrEqual(t, result.History.Best[g], result.History.Best[g-1])
	}
}

func TestScheduleStopsWhenCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	parameters := testParameters()
	parameters.MaxGenerations = 100

	result, err := mustNew(t, parameters).Schedule(ctx)
	require.NoError(t, err)

	// 第一代总会完成
	assert.True(t, result.Stopped)
	assert.Equal(t, 1, result.Generations)
	assert.Len(t, result.Schedule, 11)
}

func TestNextGenerationKeepsPopulationSize(t *testing.T) {
	for _, tc := range []struct {
		size    int32
		elitism bool
	}{
		{size: 20, elitism: false},
		{size: 7, elitism: false},
		{size: 7, elitism: true},
		{size: 2, elitism: false},
		{size: 2, elitism: true},
	} {
		parameters := testParameters()
		parameters.PopulationSize = tc.size
		parameters.Elitism = tc.elitism
		s := mustNew(t, parameters)

		pop := s.problem.GeneratePopulation(int(tc.size), s.rng)
		for g := 0; g < 10; g++ {
			fits, err := s.evaluatePopulation(pop)
			require.NoError(t, err)

			best := pop[floats.MaxIdx(fits)]
			pop, err = s.nextGeneration(pop, fits, best)
			require.NoError(t, err)

			require.Len(t, pop, int(tc.size))
			for _, ch := range pop {
				require.NoError(t, s.problem.Validate(ch))
			}
			if tc.elitism {
				assert.Equal(t, best, pop[0])
			}
		}
	}
}

func TestEvaluatePopulationMatchesSequential(t *testing.T) {
	s := mustNew(t, testParameters())
	pop := s.problem.GeneratePopulation(50, s.rng)

	parallel, err := s.evaluatePopulation(pop)
	require.NoError(t, err)
	sequential, err := s.problem.FitnessVector(pop)
	require.NoError(t, err)

	assert.Equal(t, sequential, parallel)
}

func TestParametersFromConfig(t *testing.T) {
	parameters := ParametersFromConfig(&config.SchedulerConfig{
		Generations:    50,
		PopulationSize: 31,
		MutationRate:   0.25,
		Elitism:        true,
		Seed:           1234,
	})

	assert.Equal(t, int32(50), parameters.MaxGenerations)
	assert.Equal(t, int32(31), parameters.PopulationSize)
	assert.InDelta(t, 0.25, parameters.MutationRate, 1e-12)
	assert.True(t, parameters.Elitism)
	assert.Equal(t, uint64(1234), parameters.Seed)
	// 没有配置 workers 时使用默认值
	assert.Equal(t, DefaultParameters().Workers, parameters.Workers)
}
