package output

import (
	"encoding/json"

	"github.com/abatilo/taskmaster/internal/ai"
	"github.com/abatilo/taskmaster/internal/calendar"
	"github.com/abatilo/taskmaster/internal/task"
	"github.com/abatilo/taskmaster/internal/view"
)

// JSONFormatter formats output as JSON.
type JSONFormatter struct{}

// marshalJSON marshals a value to indented JSON with a trailing newline.
func marshalJSON(v any) string {
	data, _ := json.MarshalIndent(v, "", "  ")
	return string(data) + "\n"
}

// NewJSONFormatter creates a new JSONFormatter.
func NewJSONFormatter() *JSONFormatter {
	return &JSONFormatter{}
}

// FormatTask formats a single task as JSON using the persisted field names.
func (f *JSONFormatter) FormatTask(t task.Task) string {
	return marshalJSON(t)
}

// FormatTaskList formats a list of tasks as JSON. An empty list is [].
func (f *JSONFormatter) FormatTaskList(tasks []task.Task) string {
	if tasks == nil {
		tasks = []task.Task{}
	}
	return marshalJSON(tasks)
}

// StatsJSON adds the derived figures to the raw counts.
type StatsJSON struct {
	view.Statistics

	CompletionRate int `json:"completionRate"`
	Urgent         int `json:"urgent"`
}

// ToStatsJSON computes the derived figures for s.
func ToStatsJSON(s view.Statistics) StatsJSON {
	return StatsJSON{Statistics: s, CompletionRate: s.CompletionRate(), Urgent: s.Urgent()}
}

// FormatStats formats statistics as JSON.
func (f *JSONFormatter) FormatStats(s view.Statistics) string {
	return marshalJSON(ToStatsJSON(s))
}

// FormatInsights formats the insights panel as JSON.
func (f *JSONFormatter) FormatInsights(in view.Insight) string {
	return marshalJSON(in)
}

// CalendarJSON is the JSON representation of a month grid.
type CalendarJSON struct {
	calendar.Grid

	Trailing int               `json:"trailing"`
	Weeks    [][]calendar.Cell `json:"weeks"`
}

// ToCalendarJSON flattens a grid into its serializable form.
func ToCalendarJSON(g calendar.Grid) CalendarJSON {
	return CalendarJSON{Grid: g, Trailing: g.Trailing(), Weeks: g.Weeks()}
}

// FormatCalendar formats a month grid as JSON.
func (f *JSONFormatter) FormatCalendar(g calendar.Grid) string {
	return marshalJSON(ToCalendarJSON(g))
}

// FormatQuote formats a quote as JSON.
func (f *JSONFormatter) FormatQuote(q ai.Quote) string {
	return marshalJSON(q)
}

// errorJSON is the JSON representation of an error.
type errorJSON struct {
	Error string `json:"error"`
}

// FormatError formats an error as JSON.
func (f *JSONFormatter) FormatError(err error) string {
	return marshalJSON(errorJSON{Error: err.Error()})
}

// messageJSON is the JSON representation of a message.
type messageJSON struct {
	Message string `json:"message"`
}

// FormatMessage formats a simple message as JSON.
func (f *JSONFormatter) FormatMessage(msg string) string {
	return marshalJSON(messageJSON{Message: msg})
}
