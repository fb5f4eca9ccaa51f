package report

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/sysu-ecnc-dev/activity-scheduler/backend/internal/domain"
	"github.com/sysu-ecnc-dev/activity-scheduler/backend/internal/scheduler"
)

func sampleResult() *scheduler.Result {
	return &scheduler.Result{
		BestFitness: 7.25,
		Generations: 3,
		Schedule: []domain.ScheduledActivity{
			{Activity: "SLA101A", Room: "Roman 216", TimeSlot: "10 AM", Facilitator: "Glen"},
			{Activity: "SLA101B", Room: "Loft 310", TimeSlot: "3 PM", Facilitator: "Lock"},
		},
		History: domain.FitnessHistory{
			Best:    []float64{3.1, 5.4, 7.25},
			Average: []float64{-2.0, 0.3, 1.9},
			Worst:   []float64{-9.5, -6.2, -4.0},
		},
	}
}

func TestWriteSchedule(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteSchedule(&buf, sampleResult()))

	out := buf.String()
	assert.Contains(t, out, "最佳适应度: 7.2500")
	assert.Contains(t, out, "完成代数: 3")
	assert.NotContains(t, out, "提前终止")

	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 6)
	assert.Equal(t, []string{"SLA101A", "Roman", "216", "10", "AM", "Glen"}, strings.Fields(lines[4]))
	assert.Equal(t, []string{"SLA101B", "Loft", "310", "3", "PM", "Lock"}, strings.Fields(lines[5]))
}

func TestWriteScheduleMarksStoppedRuns(t *testing.T) {
	result := sampleResult()
	result.Stopped = true

	var buf bytes.Buffer
	require.NoError(t, WriteSchedule(&buf, result))
	assert.Contains(t, buf.String(), "提前终止")
}

func TestPlotHistory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fitness.png")
	result := sampleResult()

	require.NoError(t, PlotHistory(&result.History, path))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Greater(t, info.Size(), int64(0))
}

func TestPlotHistoryRejectsEmptyHistory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fitness.png")
	require.Error(t, PlotHistory(&domain.FitnessHistory{}, path))
}
