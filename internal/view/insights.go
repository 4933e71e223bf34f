package view

import "fmt"

// Insight summarizes productivity figures with short suggestions.
type Insight struct {
	Completed      int      `json:"completed"`
	CompletionRate int      `json:"completionRate"`
	Urgent         int      `json:"urgent"`
	Suggestions    []string `json:"suggestions"`
}

// Insights derives the insights panel from statistics.
func Insights(s Statistics) Insight {
	return Insight{
		Completed:      s.Completed,
		CompletionRate: s.CompletionRate(),
		Urgent:         s.Urgent(),
		Suggestions: []string{
			fmt.Sprintf(
				"You have %d unfinished task(s). Tackle high-priority work during your high-energy morning hours.",
				s.Pending,
			),
			"Use task breakdown to split large goals into smaller, actionable steps.",
		},
	}
}
