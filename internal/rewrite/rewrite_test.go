package rewrite_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taskforge/task-gateway/internal/rewrite"
)

func TestRewrite_DefaultTableRoutes(t *testing.T) {
	table := rewrite.DefaultTable()

	tests := []struct {
		name       string
		method     rewrite.Method
		path       string
		params     map[string]string
		wantMethod rewrite.Method
		wantPath   string
		converted  bool
	}{
		{
			name:   "create task gains trailing slash",
			method: rewrite.MethodPost, path: "tasks",
			wantMethod: rewrite.MethodPost, wantPath: "tasks/",
		},
		{
			name:   "list tasks gains trailing slash",
			method: rewrite.MethodGet, path: "tasks",
			wantMethod: rewrite.MethodGet, wantPath: "tasks/",
		},
		{
			name:   "query converts POST to GET",
			method: rewrite.MethodPost, path: "tasks/query",
			wantMethod: rewrite.MethodGet, wantPath: "tasks/", converted: true,
		},
		{
			name:   "update substitutes task_id",
			method: rewrite.MethodPut, path: "tasks/{task_id}",
			params:     map[string]string{"task_id": "7c9e6679-7425-40de-944b-e07fc1f90ae7"},
			wantMethod: rewrite.MethodPut, wantPath: "tasks/7c9e6679-7425-40de-944b-e07fc1f90ae7/",
		},
		{
			name:   "complete becomes PUT on the task resource",
			method: rewrite.MethodPost, path: "tasks/{task_id}/complete",
			params:     map[string]string{"task_id": "7c9e6679-7425-40de-944b-e07fc1f90ae7"},
			wantMethod: rewrite.MethodPut, wantPath: "tasks/7c9e6679-7425-40de-944b-e07fc1f90ae7/", converted: true,
		},
		{
			name:   "top3 query converts to GET",
			method: rewrite.MethodPost, path: "tasks/top3/query",
			wantMethod: rewrite.MethodGet, wantPath: "tasks/top3/", converted: true,
		},
		{
			name:   "focus status maps to the sessions resource",
			method: rewrite.MethodPost, path: "tasks/focus-status",
			wantMethod: rewrite.MethodPost, wantPath: "focus/sessions/",
		},
		{
			name:   "pomodoro count maps to the counter resource",
			method: rewrite.MethodGet, path: "tasks/pomodoro-count",
			wantMethod: rewrite.MethodGet, wantPath: "pomodoros/count/",
		},
		{
			name:   "daily substitutes date",
			method: rewrite.MethodGet, path: "tasks/daily/{date}",
			params:     map[string]string{"date": "2026-08-31"},
			wantMethod: rewrite.MethodGet, wantPath: "tasks/daily/2026-08-31/",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			target, err := table.Rewrite(tt.method, tt.path, tt.params)
			require.NoError(t, err)
			assert.Equal(t, tt.wantMethod, target.Method)
			assert.Equal(t, tt.wantPath, target.Path)
			assert.Equal(t, tt.converted, target.Converted)
		})
	}
}

func TestRewrite_LookupMissPassesThrough(t *testing.T) {
	table := rewrite.DefaultTable()

	target, err := table.Rewrite(rewrite.MethodGet, "rewards/summary", nil)
	require.NoError(t, err)
	assert.Equal(t, rewrite.MethodGet, target.Method)
	assert.Equal(t, "rewards/summary", target.Path)
	assert.False(t, target.Converted)
}

func TestRewrite_ConcretePathMatchesTemplate(t *testing.T) {
	table := rewrite.DefaultTable()

	// Callers may pass the already-substituted path instead of the template.
	target, err := table.Rewrite(rewrite.MethodDelete, "tasks/7c9e6679-7425-40de-944b-e07fc1f90ae7", nil)
	require.NoError(t, err)
	assert.Equal(t, rewrite.MethodDelete, target.Method)
	assert.Equal(t, "tasks/7c9e6679-7425-40de-944b-e07fc1f90ae7/", target.Path)
}

func TestRewrite_ExactMatchWinsOverTemplate(t *testing.T) {
	table := rewrite.DefaultTable()

	// "tasks/pomodoro-count" also matches the tasks/{task_id} template;
	// the literal entry must win.
	target, err := table.Rewrite(rewrite.MethodGet, "tasks/pomodoro-count", nil)
	require.NoError(t, err)
	assert.Equal(t, "pomodoros/count/", target.Path)
}

func TestRewrite_MissingParamFailsFast(t *testing.T) {
	table := rewrite.DefaultTable()

	_, err := table.Rewrite(rewrite.MethodPut, "tasks/{task_id}", nil)
	require.Error(t, err)
	var missing *rewrite.MissingParamError
	require.ErrorAs(t, err, &missing)
	assert.Equal(t, "task_id", missing.Param)
}

func TestRewrite_LeadingSlashTolerated(t *testing.T) {
	table := rewrite.DefaultTable()

	target, err := table.Rewrite(rewrite.MethodPost, "/tasks", nil)
	require.NoError(t, err)
	assert.Equal(t, "tasks/", target.Path)
}

func TestNewTable_RejectsUnboundTargetParam(t *testing.T) {
	_, err := rewrite.NewTable([]rewrite.Entry{
		{
			Key:    rewrite.RouteKey{Method: rewrite.MethodGet, Path: "tasks"},
			Target: rewrite.RouteTarget{Method: rewrite.MethodGet, Path: "tasks/{task_id}/"},
		},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "task_id")
}

func TestNewTable_RejectsDuplicateRoutes(t *testing.T) {
	entry := rewrite.Entry{
		Key:    rewrite.RouteKey{Method: rewrite.MethodGet, Path: "tasks"},
		Target: rewrite.RouteTarget{Method: rewrite.MethodGet, Path: "tasks/"},
	}
	_, err := rewrite.NewTable([]rewrite.Entry{entry, entry})
	require.Error(t, err)
}
