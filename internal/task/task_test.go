package task_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gitlab.yctc.tech/zhiting/strportal.git/internal/task"
	"gitlab.yctc.tech/zhiting/strportal.git/internal/types"
)

type recordTask struct {
	mu   *sync.Mutex
	seen *[]int
	num  int
	fail bool
}

func (t *recordTask) ExecTask() error {
	if t.fail {
		return errors.New("insert failed")
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	*t.seen = append(*t.seen, t.num)
	return nil
}

func TestRunOnceInOrder(t *testing.T) {
	var (
		mu   sync.Mutex
		seen []int
	)
	manager := task.NewManager(time.Hour)
	for i := 0; i < 5; i++ {
		manager.Add(types.TaskAuthEvent, fmt.Sprintf("%d", i), &recordTask{mu: &mu, seen: &seen, num: i})
	}
	for manager.RunOnce() {
	}
	assert.Equal(t, []int{0, 1, 2, 3, 4}, seen)
	assert.Empty(t, manager.List())
}

func TestFailedTaskWaitsForRestart(t *testing.T) {
	var (
		mu   sync.Mutex
		seen []int
	)
	manager := task.NewManager(time.Hour)
	failing := &recordTask{mu: &mu, seen: &seen, num: 1, fail: true}
	key := manager.Add(types.TaskAuthEvent, "1", failing)

	assert.False(t, manager.RunOnce())
	info, ok := manager.GetTaskInfoByKey(key)
	require.True(t, ok)
	assert.Equal(t, types.TaskFailed, info.Status)
	assert.Equal(t, 1, info.Attempts)
	assert.Equal(t, "insert failed", info.LastError)

	// skipped while failed
	assert.False(t, manager.RunOnce())

	failing.fail = false
	require.True(t, manager.RestartByKey(key))
	assert.True(t, manager.RunOnce())
	assert.Equal(t, []int{1}, seen)
	_, ok = manager.GetTaskInfo(types.TaskAuthEvent, "1")
	assert.False(t, ok)
}

func TestDelByKey(t *testing.T) {
	manager := task.NewManager(time.Hour)
	key := manager.Add(types.TaskAuthEvent, "", &recordTask{fail: true})
	manager.DelByKey(key)
	assert.False(t, manager.RunOnce())
	assert.False(t, manager.RestartByKey(key))
}

func TestStartDrainsQueue(t *testing.T) {
	var (
		mu   sync.Mutex
		seen []int
	)
	manager := task.NewManager(10 * time.Millisecond)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go manager.Start(ctx)

	for i := 0; i < 3; i++ {
		manager.Add(types.TaskAuthEvent, fmt.Sprintf("%d", i), &recordTask{mu: &mu, seen: &seen, num: i})
	}
	assert.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(seen) == 3
	}, time.Second, 5*time.Millisecond)
}
