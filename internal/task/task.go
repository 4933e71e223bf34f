package task

import (
	"strings"
	"time"
)

// DateLayout is the layout of a task due date.
const DateLayout = "2006-01-02"

// Priority represents the importance level of a task.
type Priority string

const (
	PriorityLow    Priority = "Low"
	PriorityMedium Priority = "Medium"
	PriorityHigh   Priority = "High"
)

// Priorities lists every priority in display order.
func Priorities() []Priority {
	return []Priority{PriorityLow, PriorityMedium, PriorityHigh}
}

// Category represents the area of life a task belongs to.
type Category string

const (
	CategoryPersonal Category = "Personal"
	CategoryWork     Category = "Work"
	CategoryShopping Category = "Shopping"
	CategoryHealth   Category = "Health"
	CategoryFinance  Category = "Finance"
	CategoryOther    Category = "Other"
)

// Categories lists every category in display order.
func Categories() []Category {
	return []Category{
		CategoryPersonal,
		CategoryWork,
		CategoryShopping,
		CategoryHealth,
		CategoryFinance,
		CategoryOther,
	}
}

// Labels written by the browser build of the app. Accepted on input only.
//
//nolint:gochecknoglobals // read-only lookup tables
var (
	legacyPriorities = map[string]Priority{
		"低": PriorityLow,
		"中": PriorityMedium,
		"高": PriorityHigh,
	}
	legacyCategories = map[string]Category{
		"个人": CategoryPersonal,
		"工作": CategoryWork,
		"购物": CategoryShopping,
		"健康": CategoryHealth,
		"金融": CategoryFinance,
		"其他": CategoryOther,
	}
)

// ParsePriority maps a label to its canonical Priority.
func ParsePriority(s string) (Priority, bool) {
	s = strings.TrimSpace(s)
	for _, p := range Priorities() {
		if strings.EqualFold(s, string(p)) {
			return p, true
		}
	}
	p, ok := legacyPriorities[s]
	return p, ok
}

// ParseCategory maps a label to its canonical Category.
func ParseCategory(s string) (Category, bool) {
	s = strings.TrimSpace(s)
	for _, c := range Categories() {
		if strings.EqualFold(s, string(c)) {
			return c, true
		}
	}
	c, ok := legacyCategories[s]
	return c, ok
}

// IsValidPriority checks if a priority is one of the canonical values.
func IsValidPriority(p Priority) bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return true
	default:
		return false
	}
}

// IsValidCategory checks if a category is one of the canonical values.
func IsValidCategory(c Category) bool {
	switch c {
	case CategoryPersonal, CategoryWork, CategoryShopping, CategoryHealth, CategoryFinance, CategoryOther:
		return true
	default:
		return false
	}
}

// IsValidDueDate reports whether s is empty or a YYYY-MM-DD calendar date.
func IsValidDueDate(s string) bool {
	if s == "" {
		return true
	}
	d, err := time.Parse(DateLayout, s)
	return err == nil && d.Format(DateLayout) == s
}

// SubTask is a single step under a task.
type SubTask struct {
	ID        string `json:"id"`
	Text      string `json:"text"`
	Completed bool   `json:"completed"`
}

// Task represents a tracked work item.
type Task struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Completed   bool      `json:"completed"`
	Priority    Priority  `json:"priority"`
	Category    Category  `json:"category"`
	DueDate     string    `json:"dueDate"`
	CreatedAt   int64     `json:"createdAt"` // milliseconds since epoch
	SubTasks    []SubTask `json:"subTasks"`
}

// Created returns CreatedAt as a time.
func (t Task) Created() time.Time {
	return time.UnixMilli(t.CreatedAt)
}

// Clone returns a copy that shares no sub-task storage with t.
func (t Task) Clone() Task {
	c := t
	c.SubTasks = make([]SubTask, len(t.SubTasks))
	copy(c.SubTasks, t.SubTasks)
	return c
}

// CanBreakDown reports whether AI breakdown is offered for the task.
func (t Task) CanBreakDown() bool {
	return !t.Completed && len(t.SubTasks) == 0
}

// Input carries the fields a user supplies when creating a task.
type Input struct {
	Title       string
	Description string
	Priority    Priority
	Category    Category
	DueDate     string
}

// Normalize canonicalizes the enumeration fields of a decoded task.
// It returns false if any field holds a value outside its enumeration.
func (t *Task) Normalize() bool {
	p, ok := ParsePriority(string(t.Priority))
	if !ok {
		return false
	}
	c, ok := ParseCategory(string(t.Category))
	if !ok {
		return false
	}
	if !IsValidDueDate(t.DueDate) {
		return false
	}
	t.Priority = p
	t.Category = c
	if t.SubTasks == nil {
		t.SubTasks = []SubTask{}
	}
	return true
}
