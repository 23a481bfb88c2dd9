package task_test

import (
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gitlab.yctc.tech/zhiting/strportal.git/internal/api/apitest"
	"gitlab.yctc.tech/zhiting/strportal.git/internal/task"
	"gitlab.yctc.tech/zhiting/strportal.git/internal/types"
)

type failingWrite struct{}

func (failingWrite) ExecTask() error { return errors.New("database is locked") }

func TestTaskEndpoints(t *testing.T) {
	p := apitest.NewPortal(t, apitest.NewBackend(t))
	admin := p.Login(t, "admin")

	manager := task.GetTaskManager()
	for manager.RunOnce() {
	}
	key := manager.Add(types.TaskAuthEvent, "failing-write", failingWrite{})
	for manager.RunOnce() {
	}
	info, ok := manager.GetTaskInfoByKey(key)
	require.True(t, ok)
	require.Equal(t, types.TaskFailed, info.Status)

	resp, body := p.Do(t, admin, http.MethodGet, "/api/tasks", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	list := body["data"].(map[string]interface{})["list"].([]interface{})
	found := false
	for _, item := range list {
		if item.(map[string]interface{})["key"] == key {
			found = true
			assert.Equal(t, "database is locked", item.(map[string]interface{})["last_error"])
		}
	}
	assert.True(t, found)

	resp, _ = p.Do(t, admin, http.MethodPut, "/api/tasks/"+key, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	info, _ = manager.GetTaskInfoByKey(key)
	assert.Equal(t, types.TaskOnGoing, info.Status)

	// running tasks cannot be dropped
	resp, _ = p.Do(t, admin, http.MethodDelete, "/api/tasks/"+key, nil)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	manager.RunOnce()
	resp, _ = p.Do(t, admin, http.MethodDelete, "/api/tasks/"+key, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	_, ok = manager.GetTaskInfoByKey(key)
	assert.False(t, ok)

	resp, _ = p.Do(t, admin, http.MethodDelete, "/api/tasks/"+key, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestTaskEndpointsAdminOnly(t *testing.T) {
	p := apitest.NewPortal(t, apitest.NewBackend(t))

	resp, _ := p.Do(t, p.Login(t, "compliance"), http.MethodGet, "/api/tasks", nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}
