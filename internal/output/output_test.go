//nolint:testpackage // Tests require internal access for thorough testing
package output

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/abatilo/taskmaster/internal/ai"
	"github.com/abatilo/taskmaster/internal/calendar"
	"github.com/abatilo/taskmaster/internal/task"
	"github.com/abatilo/taskmaster/internal/view"
)

func sampleTask() task.Task {
	return task.Task{
		ID:          "0f8fad5b-d9cb-469f-a165-70867728950e",
		Title:       "File taxes",
		Description: "Gather receipts",
		Priority:    task.PriorityHigh,
		Category:    task.CategoryFinance,
		DueDate:     "2024-04-15",
		CreatedAt:   time.Date(2024, time.March, 1, 9, 0, 0, 0, time.UTC).UnixMilli(),
		SubTasks: []task.SubTask{
			{ID: "s1", Text: "Collect forms", Completed: true},
			{ID: "s2", Text: "Fill return"},
		},
	}
}

func TestNewSelectsFormatter(t *testing.T) {
	if _, ok := New(true).(*JSONFormatter); !ok {
		t.Error("New(true) should return a JSONFormatter")
	}
	if _, ok := New(false).(*HumanFormatter); !ok {
		t.Error("New(false) should return a HumanFormatter")
	}
}

func TestShortID(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"0f8fad5b-d9cb-469f", "0f8fad5b"},
		{"abc", "abc"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := ShortID(tt.in); got != tt.want {
			t.Errorf("ShortID(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestHumanFormatTask(t *testing.T) {
	out := NewHumanFormatter().FormatTask(sampleTask())

	for _, want := range []string{
		"File taxes",
		"0f8fad5b-d9cb-469f-a165-70867728950e",
		"High",
		"Finance",
		"2024-04-15",
		"Gather receipts",
		"1. [X]",
		"2. [ ] Fill return",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("FormatTask output missing %q:\n%s", want, out)
		}
	}
}

func TestHumanFormatTaskList(t *testing.T) {
	f := NewHumanFormatter()

	if got := f.FormatTaskList(nil); got != "No tasks found.\n" {
		t.Errorf("empty list = %q", got)
	}

	out := f.FormatTaskList([]task.Task{sampleTask()})
	for _, want := range []string{"[ ]", "[0f8fad5b]", "File taxes", "due 2024-04-15", "1/2 steps"} {
		if !strings.Contains(out, want) {
			t.Errorf("FormatTaskList output missing %q:\n%s", want, out)
		}
	}
	if strings.Count(out, "\n") != 1 {
		t.Errorf("expected one line per task, got:\n%s", out)
	}
}

func TestHumanFormatStats(t *testing.T) {
	tasks := []task.Task{sampleTask(), {ID: "b", Priority: task.PriorityLow, Category: task.CategoryWork, Completed: true}}
	out := NewHumanFormatter().FormatStats(view.Stats(tasks))

	for _, want := range []string{"Total:      2", "Completed:  1", "Pending:    1", "Rate:       50%", "Shopping", "Other"} {
		if !strings.Contains(out, want) {
			t.Errorf("FormatStats output missing %q:\n%s", want, out)
		}
	}
}

func TestHumanFormatCalendar(t *testing.T) {
	today := time.Date(2024, time.April, 2, 10, 0, 0, 0, time.Local)
	g := calendar.Build([]task.Task{sampleTask()}, 2024, time.April, today, time.Sunday)
	out := NewHumanFormatter().FormatCalendar(g)

	for _, want := range []string{"April 2024", "Su", "Sa", "15 (1)", "30", "2024-04-15 [ ] [0f8fad5b]"} {
		if !strings.Contains(out, want) {
			t.Errorf("FormatCalendar output missing %q:\n%s", want, out)
		}
	}
}

func TestHumanFormatQuoteAndError(t *testing.T) {
	f := NewHumanFormatter()

	q := f.FormatQuote(ai.FallbackQuote())
	if !strings.Contains(q, "Walt Disney") || !strings.Contains(q, "quit talking") {
		t.Errorf("FormatQuote = %q", q)
	}

	e := f.FormatError(errors.New("boom"))
	if !strings.Contains(e, "Error:") || !strings.HasSuffix(e, "boom\n") {
		t.Errorf("FormatError = %q", e)
	}
}

func TestJSONFormatTaskUsesPersistedFieldNames(t *testing.T) {
	out := NewJSONFormatter().FormatTask(sampleTask())

	var got map[string]any
	if err := json.Unmarshal([]byte(out), &got); err != nil {
		t.Fatalf("invalid JSON: %v\n%s", err, out)
	}
	for _, key := range []string{"id", "title", "description", "completed", "priority", "category", "dueDate", "createdAt", "subTasks"} {
		if _, ok := got[key]; !ok {
			t.Errorf("missing key %q in %s", key, out)
		}
	}
}

func TestJSONFormatTaskListEmpty(t *testing.T) {
	if got := NewJSONFormatter().FormatTaskList(nil); got != "[]\n" {
		t.Errorf("FormatTaskList(nil) = %q, want %q", got, "[]\n")
	}
}

func TestJSONFormatStats(t *testing.T) {
	out := NewJSONFormatter().FormatStats(view.Stats([]task.Task{sampleTask()}))

	var got struct {
		Total             int            `json:"total"`
		CompletionRate    int            `json:"completionRate"`
		Urgent            int            `json:"urgent"`
		PriorityBreakdown map[string]int `json:"priorityBreakdown"`
	}
	if err := json.Unmarshal([]byte(out), &got); err != nil {
		t.Fatalf("invalid JSON: %v\n%s", err, out)
	}
	if got.Total != 1 || got.CompletionRate != 0 || got.Urgent != 1 {
		t.Errorf("unexpected stats: %+v", got)
	}
	if len(got.PriorityBreakdown) != 3 {
		t.Errorf("priorityBreakdown = %v, want 3 keys", got.PriorityBreakdown)
	}
}

func TestJSONFormatCalendar(t *testing.T) {
	g := calendar.Build([]task.Task{sampleTask()}, 2024, time.April, time.Time{}, time.Sunday)
	out := NewJSONFormatter().FormatCalendar(g)

	var got struct {
		Year    int `json:"year"`
		Month   int `json:"month"`
		Days    int `json:"days"`
		Leading int `json:"leading"`
		Weeks   [][]struct {
			Day   int         `json:"day"`
			Tasks []task.Task `json:"tasks"`
		} `json:"weeks"`
	}
	if err := json.Unmarshal([]byte(out), &got); err != nil {
		t.Fatalf("invalid JSON: %v\n%s", err, out)
	}
	if got.Year != 2024 || got.Month != 4 || got.Days != 30 || got.Leading != 1 {
		t.Errorf("unexpected geometry: %+v", got)
	}
	found := false
	for _, week := range got.Weeks {
		if len(week) != 7 {
			t.Errorf("week has %d cells", len(week))
		}
		for _, c := range week {
			if c.Day == 15 && len(c.Tasks) == 1 {
				found = true
			}
		}
	}
	if !found {
		t.Error("task due 2024-04-15 not placed on day 15")
	}
}

func TestJSONFormatErrorAndMessage(t *testing.T) {
	f := NewJSONFormatter()
	if got := f.FormatError(errors.New("boom")); !strings.Contains(got, `"error": "boom"`) {
		t.Errorf("FormatError = %q", got)
	}
	if got := f.FormatMessage("ok"); !strings.Contains(got, `"message": "ok"`) {
		t.Errorf("FormatMessage = %q", got)
	}
}
