package output

import (
	"github.com/abatilo/taskmaster/internal/ai"
	"github.com/abatilo/taskmaster/internal/calendar"
	"github.com/abatilo/taskmaster/internal/task"
	"github.com/abatilo/taskmaster/internal/view"
)

// Formatter defines the interface for output formatting.
type Formatter interface {
	FormatTask(t task.Task) string
	FormatTaskList(tasks []task.Task) string
	FormatStats(s view.Statistics) string
	FormatInsights(in view.Insight) string
	FormatCalendar(g calendar.Grid) string
	FormatQuote(q ai.Quote) string
	FormatError(err error) string
	FormatMessage(msg string) string
}

// New returns the JSON formatter when jsonOut is set, the human one otherwise.
func New(jsonOut bool) Formatter {
	if jsonOut {
		return NewJSONFormatter()
	}
	return NewHumanFormatter()
}

// ShortID returns the leading characters of an ID used in compact listings.
func ShortID(id string) string {
	const n = 8
	if len(id) <= n {
		return id
	}
	return id[:n]
}
