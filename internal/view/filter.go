package view

import (
	"cmp"
	"slices"
	"strings"

	"github.com/abatilo/taskmaster/internal/task"
)

// All disables the category or priority constraint of a Criteria.
const All = "all"

// Criteria selects which tasks the overview shows. An empty field behaves like All.
type Criteria struct {
	Category task.Category `json:"category"`
	Priority task.Priority `json:"priority"`
	Search   string        `json:"search"`
}

// DefaultCriteria matches every task.
func DefaultCriteria() Criteria {
	return Criteria{Category: All, Priority: All}
}

// Matches reports whether t passes every constraint of c.
func (c Criteria) Matches(t task.Task) bool {
	if c.Category != "" && c.Category != All && t.Category != c.Category {
		return false
	}
	if c.Priority != "" && c.Priority != All && t.Priority != c.Priority {
		return false
	}
	if c.Search == "" {
		return true
	}
	needle := strings.ToLower(c.Search)
	return strings.Contains(strings.ToLower(t.Title), needle) ||
		strings.Contains(strings.ToLower(t.Description), needle)
}

// Filter returns the tasks matching c, most recently created first. Tasks
// with equal creation times keep their list order.
func Filter(tasks []task.Task, c Criteria) []task.Task {
	out := make([]task.Task, 0, len(tasks))
	for _, t := range tasks {
		if c.Matches(t) {
			out = append(out, t)
		}
	}
	slices.SortStableFunc(out, func(a, b task.Task) int {
		return cmp.Compare(b.CreatedAt, a.CreatedAt)
	})
	return out
}
