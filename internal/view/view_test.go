package view_test

import (
	"fmt"
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abatilo/taskmaster/internal/task"
	"github.com/abatilo/taskmaster/internal/view"
)

func randomTasks(r *rand.Rand, n int) []task.Task {
	priorities := task.Priorities()
	categories := task.Categories()
	tasks := make([]task.Task, n)
	for i := range tasks {
		tasks[i] = task.Task{
			ID:          fmt.Sprintf("t%d", i),
			Title:       fmt.Sprintf("Task %d", i),
			Description: "details",
			Completed:   r.IntN(2) == 0,
			Priority:    priorities[r.IntN(len(priorities))],
			Category:    categories[r.IntN(len(categories))],
			CreatedAt:   int64(r.IntN(1000)),
		}
	}
	return tasks
}

func TestStatsInvariants(t *testing.T) {
	r := rand.New(rand.NewPCG(1, 2))
	for _, n := range []int{0, 1, 7, 50} {
		t.Run(fmt.Sprintf("%d tasks", n), func(t *testing.T) {
			tasks := randomTasks(r, n)
			s := view.Stats(tasks)

			assert.Equal(t, n, s.Total)
			assert.Equal(t, s.Total, s.Completed+s.Pending)

			completed := 0
			for _, tk := range tasks {
				if tk.Completed {
					completed++
				}
			}
			assert.Equal(t, completed, s.Completed)

			require.Len(t, s.PriorityBreakdown, 3)
			require.Len(t, s.CategoryBreakdown, 6)
			sum := 0
			for _, v := range s.PriorityBreakdown {
				sum += v
			}
			assert.Equal(t, s.Total, sum)
			sum = 0
			for _, v := range s.CategoryBreakdown {
				sum += v
			}
			assert.Equal(t, s.Total, sum)
		})
	}
}

func TestStatsEmptyHasAllKeys(t *testing.T) {
	s := view.Stats(nil)
	for _, p := range task.Priorities() {
		v, ok := s.PriorityBreakdown[p]
		assert.True(t, ok, "missing priority %s", p)
		assert.Zero(t, v)
	}
	for _, c := range task.Categories() {
		_, ok := s.CategoryBreakdown[c]
		assert.True(t, ok, "missing category %s", c)
	}
	assert.Equal(t, 0, s.CompletionRate())
}

func TestCompletionRateRounds(t *testing.T) {
	s := view.Statistics{Total: 3, Completed: 2}
	assert.Equal(t, 67, s.CompletionRate())
	s = view.Statistics{Total: 8, Completed: 1}
	assert.Equal(t, 13, s.CompletionRate())
}

func TestBuyMilkScenario(t *testing.T) {
	tasks := []task.Task{{
		ID: "m", Title: "Buy milk", Priority: task.PriorityMedium, Category: task.CategoryShopping, CreatedAt: 1,
	}}

	s := view.Stats(tasks)
	assert.Equal(t, 1, s.Total)
	assert.Equal(t, 0, s.Completed)
	assert.Equal(t, 1, s.Pending)
	assert.Equal(t, 1, s.PriorityBreakdown[task.PriorityMedium])
	assert.Equal(t, 1, s.CategoryBreakdown[task.CategoryShopping])

	got := view.Filter(tasks, view.DefaultCriteria())
	require.Len(t, got, 1)
	assert.Equal(t, "Buy milk", got[0].Title)
}

func TestFilterDefaultSortsNewestFirst(t *testing.T) {
	tasks := []task.Task{
		{ID: "a", Title: "A", CreatedAt: 100},
		{ID: "c", Title: "C", CreatedAt: 300},
		{ID: "b", Title: "B", CreatedAt: 200},
	}
	got := view.Filter(tasks, view.DefaultCriteria())
	assert.Equal(t, []string{"C", "B", "A"}, titles(got))

	again := view.Filter(got, view.DefaultCriteria())
	assert.Equal(t, got, again, "re-filtering must be idempotent")

	// Zero-value criteria behave like "all".
	assert.Equal(t, got, view.Filter(tasks, view.Criteria{}))
}

func TestFilterStableForEqualTimestamps(t *testing.T) {
	tasks := []task.Task{
		{ID: "1", Title: "first", CreatedAt: 5},
		{ID: "2", Title: "second", CreatedAt: 5},
		{ID: "3", Title: "newer", CreatedAt: 9},
	}
	assert.Equal(t, []string{"newer", "first", "second"}, titles(view.Filter(tasks, view.Criteria{})))
}

func TestFilterCriteria(t *testing.T) {
	tasks := []task.Task{
		{ID: "1", Title: "Quarterly report", Priority: task.PriorityHigh, Category: task.CategoryWork, CreatedAt: 1},
		{ID: "2", Title: "Groceries", Description: "milk, EGGS", Priority: task.PriorityLow, Category: task.CategoryShopping, CreatedAt: 2},
		{ID: "3", Title: "Gym", Priority: task.PriorityHigh, Category: task.CategoryHealth, CreatedAt: 3},
	}

	tests := []struct {
		name     string
		criteria view.Criteria
		want     []string
	}{
		{"category", view.Criteria{Category: task.CategoryWork, Priority: view.All}, []string{"Quarterly report"}},
		{"priority", view.Criteria{Category: view.All, Priority: task.PriorityHigh}, []string{"Gym", "Quarterly report"}},
		{"both", view.Criteria{Category: task.CategoryHealth, Priority: task.PriorityLow}, []string{}},
		{"search title case-insensitive", view.Criteria{Search: "REPORT"}, []string{"Quarterly report"}},
		{"search description", view.Criteria{Search: "eggs"}, []string{"Groceries"}},
		{"search misses", view.Criteria{Search: "zebra"}, []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, titles(view.Filter(tasks, tt.criteria)))
		})
	}
}

func TestFilterAbsentSearchIsEmpty(t *testing.T) {
	r := rand.New(rand.NewPCG(3, 4))
	tasks := randomTasks(r, 40)
	assert.Empty(t, view.Filter(tasks, view.Criteria{Search: "not-in-any-task"}))
}

func TestCreatedInSequenceScenario(t *testing.T) {
	// The store prepends, so B sits before A; the sort agrees.
	tasks := []task.Task{
		{ID: "b", Title: "B", CreatedAt: 2000},
		{ID: "a", Title: "A", CreatedAt: 1000},
	}
	assert.Equal(t, []string{"B", "A"}, titles(view.Filter(tasks, view.DefaultCriteria())))
}

func TestInsights(t *testing.T) {
	s := view.Stats([]task.Task{
		{ID: "1", Priority: task.PriorityHigh, Category: task.CategoryWork, Completed: true},
		{ID: "2", Priority: task.PriorityHigh, Category: task.CategoryWork},
		{ID: "3", Priority: task.PriorityLow, Category: task.CategoryOther},
	})
	in := view.Insights(s)
	assert.Equal(t, 1, in.Completed)
	assert.Equal(t, 33, in.CompletionRate)
	assert.Equal(t, 2, in.Urgent)
	require.Len(t, in.Suggestions, 2)
	assert.Contains(t, in.Suggestions[0], "2 unfinished")
}

func titles(tasks []task.Task) []string {
	out := make([]string, 0, len(tasks))
	for _, t := range tasks {
		out = append(out, t.Title)
	}
	return out
}
