package task

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"sync"
	"time"

	"gitlab.yctc.tech/zhiting/strportal.git/internal/config"
	"gitlab.yctc.tech/zhiting/strportal.git/internal/types"
)

type DetailInterface interface {
	ExecTask() error
}

// Detail task state
type Detail struct {
	Key             string          `json:"key"`
	Topic           string          `json:"topic"` // task type
	DetailInterface DetailInterface `json:"-"`
	Sign            string          `json:"sign"`     // unique within the topic
	Status          int             `json:"status"`   // 0 failed | 1 on going | 2 not started
	Attempts        int             `json:"attempts"` // executions so far
	LastError       string          `json:"last_error,omitempty"`
}

var taskManager *Manager
var _once sync.Once

func GetTaskManager() *Manager {
	_once.Do(func() {
		taskManager = NewManager(time.Second)
	})
	return taskManager
}

func NewManager(interval time.Duration) *Manager {
	return &Manager{
		Tasks:    make(map[string]*Detail),
		interval: interval,
		wake:     make(chan struct{}, 1),
	}
}

// Manager runs queued tasks one at a time, re-queueing the ones that fail.
type Manager struct {
	m         sync.Mutex
	Tasks     map[string]*Detail
	TaskSlice []string
	interval  time.Duration
	wake      chan struct{}
}

// Add queues a task. An empty sign gets a time based one.
func (manager *Manager) Add(topic string, sign string, detailInterface DetailInterface) string {
	manager.m.Lock()
	defer manager.m.Unlock()

	if sign == "" {
		sign = strconv.FormatInt(time.Now().UnixNano(), 10)
	}

	key := fmt.Sprintf("%s_%s", topic, sign)

	manager.Tasks[key] = &Detail{
		Key:             key,
		Topic:           topic,
		Sign:            sign,
		DetailInterface: detailInterface,
		Status:          types.TaskOnGoing,
	}
	manager.TaskSlice = append(manager.TaskSlice, key)

	select {
	case manager.wake <- struct{}{}:
	default:
	}
	return key
}

// Start processes the queue until ctx is done.
func (manager *Manager) Start(ctx context.Context) {
	ticker := time.NewTicker(manager.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		case <-manager.wake:
		}
		for manager.RunOnce() {
		}
	}
}

// RunOnce executes the next runnable task. It returns false when nothing ran.
func (manager *Manager) RunOnce() bool {
	key, task, ok := manager.next()
	if !ok {
		return false
	}

	err := task.DetailInterface.ExecTask()

	manager.m.Lock()
	defer manager.m.Unlock()
	current, exists := manager.Tasks[key]
	if !exists || current != task {
		// deleted while running
		return true
	}
	task.Attempts++
	if err != nil {
		config.Logger.Errorf("task %s failed: %v", key, err)
		task.Status = types.TaskFailed
		task.LastError = err.Error()
		manager.TaskSlice = append(manager.TaskSlice, key)
		return false
	}
	config.Logger.Debugf("task %s done", key)
	delete(manager.Tasks, key)
	return true
}

// next pops keys until it finds an on-going task. Failed tasks are skipped until an
// operator restarts them; paused ones go back on the queue.
func (manager *Manager) next() (string, *Detail, bool) {
	manager.m.Lock()
	defer manager.m.Unlock()

	for n := len(manager.TaskSlice); n > 0; n-- {
		key := manager.TaskSlice[0]
		manager.TaskSlice = manager.TaskSlice[1:]
		task, ok := manager.Tasks[key]
		if !ok {
			continue
		}
		if task.Status != types.TaskOnGoing {
			manager.TaskSlice = append(manager.TaskSlice, key)
			continue
		}
		return key, task, true
	}
	return "", nil, false
}

// GetTaskInfo returns the task of topic/sign
func (manager *Manager) GetTaskInfo(topic string, sign string) (Detail, bool) {
	return manager.GetTaskInfoByKey(fmt.Sprintf("%s_%s", topic, sign))
}

// GetTaskInfoByKey returns a copy of the task stored under key
func (manager *Manager) GetTaskInfoByKey(key string) (Detail, bool) {
	manager.m.Lock()
	defer manager.m.Unlock()
	task, ok := manager.Tasks[key]
	if !ok {
		return Detail{}, false
	}
	return *task, true
}

// List returns copies of every pending task ordered by key
func (manager *Manager) List() []Detail {
	manager.m.Lock()
	defer manager.m.Unlock()
	list := make([]Detail, 0, len(manager.Tasks))
	for _, t := range manager.Tasks {
		list = append(list, *t)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].Key < list[j].Key })
	return list
}

// DelByKey drops a task
func (manager *Manager) DelByKey(key string) {
	manager.m.Lock()
	defer manager.m.Unlock()
	delete(manager.Tasks, key)
}

// RestartByKey puts a failed task back into the running state
func (manager *Manager) RestartByKey(key string) bool {
	manager.m.Lock()
	defer manager.m.Unlock()
	task, ok := manager.Tasks[key]
	if !ok {
		return false
	}
	task.Status = types.TaskOnGoing
	select {
	case manager.wake <- struct{}{}:
	default:
	}
	return true
}
