package runstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sysu-ecnc-dev/activity-scheduler/backend/internal/domain"
)

var ErrRunNotFound = errors.New("排课任务不存在或已过期")

// Store 在 redis 中保存排课任务的状态，过期后自动删除
type Store struct {
	rdb        *redis.Client
	expiration time.Duration
	timeout    time.Duration
}

func New(rdb *redis.Client, expiration, timeout time.Duration) *Store {
	return &Store{
		rdb:        rdb,
		expiration: expiration,
		timeout:    timeout,
	}
}

func runKey(id string) string {
	return fmt.Sprintf("scheduling_run_%s", id)
}

func (s *Store) Save(run *domain.SchedulingRun) error {
	data, err := json.Marshal(run)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	return s.rdb.Set(ctx, runKey(run.ID), data, s.expiration).Err()
}

func (s *Store) Get(id string) (*domain.SchedulingRun, error) {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	data, err := s.rdb.Get(ctx, runKey(id)).Bytes()
	if err != nil {
		switch {
		case errors.Is(err, redis.Nil):
			return nil, ErrRunNotFound
		default:
			return nil, err
		}
	}

	run := &domain.SchedulingRun{}
	if err := json.Unmarshal(data, run); err != nil {
		return nil, err
	}

	return run, nil
}

func (s *Store) Delete(id string) error {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	return s.rdb.Del(ctx, runKey(id)).Err()
}
