// Package view computes the read-only projections of the task list shown to
// the user. Everything here is a pure function of its inputs.
package view

import (
	"math"

	"github.com/abatilo/taskmaster/internal/task"
)

// Statistics aggregates counts over a task list.
type Statistics struct {
	Total             int                   `json:"total"`
	Completed         int                   `json:"completed"`
	Pending           int                   `json:"pending"`
	PriorityBreakdown map[task.Priority]int `json:"priorityBreakdown"`
	CategoryBreakdown map[task.Category]int `json:"categoryBreakdown"`
}

// Stats counts tasks overall, by completion, by priority and by category.
// Every priority and category key is present even when its count is zero.
func Stats(tasks []task.Task) Statistics {
	s := Statistics{
		Total:             len(tasks),
		PriorityBreakdown: make(map[task.Priority]int, len(task.Priorities())),
		CategoryBreakdown: make(map[task.Category]int, len(task.Categories())),
	}
	for _, p := range task.Priorities() {
		s.PriorityBreakdown[p] = 0
	}
	for _, c := range task.Categories() {
		s.CategoryBreakdown[c] = 0
	}

	for _, t := range tasks {
		if t.Completed {
			s.Completed++
		}
		s.PriorityBreakdown[t.Priority]++
		s.CategoryBreakdown[t.Category]++
	}
	s.Pending = s.Total - s.Completed
	return s
}

// CompletionRate returns the completed share as a rounded percentage.
// An empty list has a rate of 0.
func (s Statistics) CompletionRate() int {
	total := max(s.Total, 1)
	return int(math.Round(float64(s.Completed) / float64(total) * 100)) //nolint:mnd // percent
}

// Urgent returns the number of high-priority tasks.
func (s Statistics) Urgent() int {
	return s.PriorityBreakdown[task.PriorityHigh]
}
