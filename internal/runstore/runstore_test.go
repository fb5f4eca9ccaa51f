package runstore

import (
	"errors"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/sysu-ecnc-dev/activity-scheduler/backend/internal/domain"
)

func TestRunKey(t *testing.T) {
	assert.Equal(t, "scheduling_run_4f1c", runKey("4f1c"))
}

func TestStoreReportsConnectionErrors(t *testing.T) {
	// 端口 1 上没有 redis，连接会立即失败
	rdb := redis.NewClient(&redis.Options{Addr: "127.0.0.1:1", MaxRetries: -1})
	defer rdb.Close()

	store := New(rdb, time.Minute, 500*time.Millisecond)

	_, err := store.Get("missing")
	require.Error(t, err)
	assert.False(t, errors.Is(err, ErrRunNotFound))

	run := domain.NewSchedulingRun(&domain.SchedulingRunRequest{RunID: "missing", CatalogID: 1, CreatedAt: time.Now()})
	require.Error(t, store.Save(run))
	require.Error(t, store.Delete("missing"))
}
