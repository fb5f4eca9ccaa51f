package domain

import "time"

type ScheduledActivity struct {
	Activity    string `json:"activity"`
	Room        string `json:"room"`
	TimeSlot    string `json:"timeSlot"`
	Facilitator string `json:"facilitator"`
}

// FitnessHistory 记录每一代的最佳、平均、最差适应度，三个数组长度始终相同
type FitnessHistory struct {
	Best    []float64 `json:"best"`
	Average []float64 `json:"average"`
	Worst   []float64 `json:"worst"`
}

func (h *FitnessHistory) Len() int {
	return len(h.Best)
}

type SchedulingRunStatus string

const (
	SchedulingRunPending   SchedulingRunStatus = "pending"
	SchedulingRunRunning   SchedulingRunStatus = "running"
	SchedulingRunCompleted SchedulingRunStatus = "completed"
	SchedulingRunFailed    SchedulingRunStatus = "failed"
)

// SchedulingRunRequest 是投递到消息队列中的排课任务
type SchedulingRunRequest struct {
	RunID          string    `json:"runID"`
	CatalogID      int64     `json:"catalogID"`
	Generations    int32     `json:"generations"`
	PopulationSize int32     `json:"populationSize"`
	MutationRate   float64   `json:"mutationRate"`
	Elitism        bool      `json:"elitism"`
	Seed           uint64    `json:"seed"`
	NotifyEmail    string    `json:"notifyEmail,omitempty"`
	CreatedAt      time.Time `json:"createdAt"`
}

// SchedulingRun 是排课任务的运行状态，只在 redis 中短暂保存
type SchedulingRun struct {
	ID          string              `json:"id"`
	CatalogID   int64               `json:"catalogID"`
	Status      SchedulingRunStatus `json:"status"`
	Error       string              `json:"error,omitempty"`
	BestFitness *float64            `json:"bestFitness,omitempty"`
	Schedule    []ScheduledActivity `json:"schedule,omitempty"`
	History     *FitnessHistory     `json:"history,omitempty"`
	Stopped     bool                `json:"stopped"`
	CreatedAt   time.Time           `json:"createdAt"`
	FinishedAt  *time.Time          `json:"finishedAt,omitempty"`
}

// NewSchedulingRun 的创建时间取自任务投递时记录的时间
func NewSchedulingRun(req *SchedulingRunRequest) *SchedulingRun {
	return &SchedulingRun{
		ID:        req.RunID,
		CatalogID: req.CatalogID,
		Status:    SchedulingRunPending,
		CreatedAt: req.CreatedAt,
	}
}

func (r *SchedulingRun) MarkRunning() {
	r.Status = SchedulingRunRunning
}

func (r *SchedulingRun) MarkCompleted(bestFitness float64, schedule []ScheduledActivity, history FitnessHistory, stopped bool, now time.Time) {
	r.Status = SchedulingRunCompleted
	r.Error = ""
	r.BestFitness = &bestFitness
	r.Schedule = schedule
	r.History = &history
	r.Stopped = stopped
	r.FinishedAt = &now
}

func (r *SchedulingRun) MarkFailed(err error, now time.Time) {
	r.Status = SchedulingRunFailed
	r.Error = err.Error()
	r.FinishedAt = &now
}

// Finished 表示任务已经结束，不会再被更新
func (r *SchedulingRun) Finished() bool {
	return r.Status == SchedulingRunCompleted || r.Status == SchedulingRunFailed
}
