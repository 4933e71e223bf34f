//nolint:testpackage // Tests require internal access for thorough testing
package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	log "github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abatilo/taskmaster/internal/ai"
	"github.com/abatilo/taskmaster/internal/app"
	"github.com/abatilo/taskmaster/internal/storage"
	"github.com/abatilo/taskmaster/internal/task"
)

type stubEnricher struct {
	steps []string
}

func (s stubEnricher) Breakdown(context.Context, string, string) []string { return s.steps }

func (s stubEnricher) DailyQuote(context.Context) ai.Quote {
	return ai.Quote{Quote: "Stay hungry.", Author: "Steve Jobs"}
}

func newTestServer(t *testing.T) (*echo.Echo, *app.Service, *test.Hook) {
	t.Helper()
	logger, hook := test.NewNullLogger()
	logger.SetLevel(log.DebugLevel)
	store := storage.Open(context.Background(), storage.NewFileKV(t.TempDir()), storage.WithLogger(logger))
	svc := app.New(store, stubEnricher{steps: []string{"One", "Two", "Three"}}, logger)

	e := New(svc, logger, time.Sunday)
	return e, svc, hook
}

func do(e *echo.Echo, method, target, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func TestCreateAndListTasks(t *testing.T) {
	e, _, _ := newTestServer(t)

	rec := do(e, http.MethodPost, "/api/tasks", `{"title": "Buy milk", "priority": "high", "category": "购物", "dueDate": "2024-03-15"}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	created := decode[task.Task](t, rec)
	assert.NotEmpty(t, created.ID)
	assert.Equal(t, task.PriorityHigh, created.Priority)
	assert.Equal(t, task.CategoryShopping, created.Category)
	assert.Empty(t, created.SubTasks)

	rec = do(e, http.MethodPost, "/api/tasks", `{"title": "Write report"}`)
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = do(e, http.MethodGet, "/api/tasks", "")
	require.Equal(t, http.StatusOK, rec.Code)
	all := decode[[]task.Task](t, rec)
	assert.Len(t, all, 2)

	rec = do(e, http.MethodGet, "/api/tasks?category=Shopping&search=MILK", "")
	filtered := decode[[]task.Task](t, rec)
	require.Len(t, filtered, 1)
	assert.Equal(t, created.ID, filtered[0].ID)

	rec = do(e, http.MethodGet, "/api/tasks?priority=bogus", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCreateTaskValidation(t *testing.T) {
	e, svc, _ := newTestServer(t)

	tests := []struct {
		name string
		body string
		want int
	}{
		{"blank title", `{"title": "   "}`, http.StatusUnprocessableEntity},
		{"bad date", `{"title": "x", "dueDate": "2024-02-30"}`, http.StatusBadRequest},
		{"bad priority", `{"title": "x", "priority": "urgent"}`, http.StatusBadRequest},
		{"bad category", `{"title": "x", "category": "hobby"}`, http.StatusBadRequest},
		{"unknown field", `{"title": "x", "owner": "me"}`, http.StatusBadRequest},
		{"not json", `nope`, http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(e, http.MethodPost, "/api/tasks", tt.body)
			assert.Equal(t, tt.want, rec.Code, rec.Body.String())
		})
	}
	assert.Empty(t, svc.Store().Tasks())
}

func TestToggleAndDelete(t *testing.T) {
	e, svc, _ := newTestServer(t)
	created, err := svc.Store().Create(task.Input{Title: "Walk dog"})
	require.NoError(t, err)

	rec := do(e, http.MethodPost, "/api/tasks/"+created.ID+"/toggle", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, decode[task.Task](t, rec).Completed)

	rec = do(e, http.MethodPost, "/api/tasks/missing/toggle", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = do(e, http.MethodDelete, "/api/tasks/"+created.ID, "")
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Empty(t, svc.Store().Tasks())

	rec = do(e, http.MethodDelete, "/api/tasks/"+created.ID, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestBreakdownAndSubTaskToggle(t *testing.T) {
	e, svc, _ := newTestServer(t)
	created, err := svc.Store().Create(task.Input{Title: "Plan party"})
	require.NoError(t, err)

	rec := do(e, http.MethodPost, "/api/tasks/"+created.ID+"/breakdown?wait=true", "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	got := decode[task.Task](t, rec)
	require.Len(t, got.SubTasks, 3)
	assert.Equal(t, "One", got.SubTasks[0].Text)

	rec = do(e, http.MethodPost, "/api/tasks/"+created.ID+"/breakdown", "")
	assert.Equal(t, http.StatusConflict, rec.Code, "tasks with sub-tasks cannot be broken down again")

	rec = do(e, http.MethodPost, "/api/tasks/"+created.ID+"/subtasks/"+got.SubTasks[1].ID+"/toggle", "")
	require.Equal(t, http.StatusOK, rec.Code)
	toggled := decode[task.Task](t, rec)
	assert.False(t, toggled.SubTasks[0].Completed)
	assert.True(t, toggled.SubTasks[1].Completed)

	rec = do(e, http.MethodPost, "/api/tasks/"+created.ID+"/subtasks/nope/toggle", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = do(e, http.MethodPost, "/api/tasks/missing/breakdown", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestBreakdownAsync(t *testing.T) {
	e, svc, _ := newTestServer(t)
	created, err := svc.Store().Create(task.Input{Title: "Async"})
	require.NoError(t, err)

	rec := do(e, http.MethodPost, "/api/tasks/"+created.ID+"/breakdown", "")
	require.Equal(t, http.StatusAccepted, rec.Code)
	assert.Equal(t, created.ID, decode[breakdownResponse](t, rec).ID)

	require.Eventually(t, func() bool {
		got, _ := svc.Store().Get(created.ID)
		return len(got.SubTasks) == 3 && !svc.Thinking()
	}, 2*time.Second, 10*time.Millisecond)

	rec = do(e, http.MethodGet, "/api/status", "")
	assert.False(t, decode[statusResponse](t, rec).Thinking)
}

func TestStatsInsightsQuote(t *testing.T) {
	e, svc, _ := newTestServer(t)
	a, _ := svc.Store().Create(task.Input{Title: "A", Priority: task.PriorityHigh})
	_, _ = svc.Store().Create(task.Input{Title: "B"})
	svc.Store().ToggleComplete(a.ID)

	rec := do(e, http.MethodGet, "/api/stats", "")
	require.Equal(t, http.StatusOK, rec.Code)
	stats := decode[map[string]any](t, rec)
	assert.InDelta(t, 2, stats["total"], 0)
	assert.InDelta(t, 50, stats["completionRate"], 0)
	assert.InDelta(t, 1, stats["urgent"], 0)

	rec = do(e, http.MethodGet, "/api/insights", "")
	require.Equal(t, http.StatusOK, rec.Code)
	insights := decode[map[string]any](t, rec)
	assert.Len(t, insights["suggestions"], 2)

	rec = do(e, http.MethodGet, "/api/quote", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Steve Jobs", decode[ai.Quote](t, rec).Author)
}

func TestCalendarEndpoint(t *testing.T) {
	e, svc, _ := newTestServer(t)
	_, err := svc.Store().Create(task.Input{Title: "Dentist", DueDate: "2024-03-15"})
	require.NoError(t, err)

	rec := do(e, http.MethodGet, "/api/calendar?year=2024&month=3", "")
	require.Equal(t, http.StatusOK, rec.Code)
	grid := decode[struct {
		Days    int `json:"days"`
		Leading int `json:"leading"`
		Weeks   [][]struct {
			Day   int         `json:"day"`
			Tasks []task.Task `json:"tasks"`
		} `json:"weeks"`
	}](t, rec)
	assert.Equal(t, 31, grid.Days)
	assert.Equal(t, 5, grid.Leading)

	var due []task.Task
	for _, w := range grid.Weeks {
		for _, c := range w {
			if c.Day == 15 {
				due = c.Tasks
			}
		}
	}
	require.Len(t, due, 1)
	assert.Equal(t, "Dentist", due[0].Title)

	rec = do(e, http.MethodGet, "/api/calendar?year=2024&month=13", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHealthzAndRequestLogging(t *testing.T) {
	e, _, hook := newTestServer(t)

	rec := do(e, http.MethodGet, "/healthz", "")
	assert.Equal(t, http.StatusOK, rec.Code)

	entry := hook.LastEntry()
	require.NotNil(t, entry)
	assert.Equal(t, "http.request", entry.Message)
	assert.Equal(t, http.StatusOK, entry.Data["status"])
	assert.Equal(t, "/healthz", entry.Data["path"])

	rec = do(e, http.MethodGet, "/api/tasks/missing", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, log.WarnLevel, hook.LastEntry().Level)
}
