// Package calendar lays tasks out on a month grid by due date.
package calendar

import (
	"fmt"
	"strings"
	"time"

	"github.com/abatilo/taskmaster/internal/task"
)

const daysPerWeek = 7

// Grid is one displayed month: its geometry and the tasks due on each day.
type Grid struct {
	Year      int          `json:"year"`
	Month     time.Month   `json:"month"`
	Days      int          `json:"days"`
	Leading   int          `json:"leading"`
	WeekStart time.Weekday `json:"weekStart"`

	buckets map[int][]task.Task
	today   time.Time
}

// Cell is one square of the 7-column grid. Day is 0 for padding cells.
type Cell struct {
	Day   int         `json:"day"`
	Today bool        `json:"today,omitempty"`
	Tasks []task.Task `json:"tasks,omitempty"`
}

// Build indexes tasks into the grid for the given month. A task lands on a
// day only if its due date equals that day's YYYY-MM-DD string exactly.
// today is compared against each day to mark the current date.
func Build(tasks []task.Task, year int, month time.Month, today time.Time, weekStart time.Weekday) Grid {
	first := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	g := Grid{
		Year:      first.Year(),
		Month:     first.Month(),
		Days:      DaysIn(first.Year(), first.Month()),
		Leading:   (int(first.Weekday()) - int(weekStart) + daysPerWeek) % daysPerWeek,
		WeekStart: weekStart,
		buckets:   make(map[int][]task.Task),
		today:     today,
	}

	byDate := make(map[string]int, g.Days)
	for d := 1; d <= g.Days; d++ {
		byDate[DateString(g.Year, g.Month, d)] = d
	}
	for _, t := range tasks {
		if d, ok := byDate[t.DueDate]; ok {
			g.buckets[d] = append(g.buckets[d], t)
		}
	}
	return g
}

// DaysIn returns the number of days in a month.
func DaysIn(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// DateString formats a calendar date in the due-date layout.
func DateString(year int, month time.Month, day int) string {
	return fmt.Sprintf("%04d-%02d-%02d", year, int(month), day)
}

// TasksOn returns the tasks due on a day of the month, in list order.
func (g Grid) TasksOn(day int) []task.Task {
	return g.buckets[day]
}

// IsToday reports whether the day of this month is the current date.
func (g Grid) IsToday(day int) bool {
	y, m, d := g.today.Date()
	return y == g.Year && m == g.Month && d == day
}

// Trailing returns the padding cells needed after the last day to complete the final week.
func (g Grid) Trailing() int {
	return (daysPerWeek - (g.Leading+g.Days)%daysPerWeek) % daysPerWeek
}

// Cells returns every grid square in row-major order: leading padding,
// the days of the month, then trailing padding.
func (g Grid) Cells() []Cell {
	cells := make([]Cell, 0, g.Leading+g.Days+g.Trailing())
	for range g.Leading {
		cells = append(cells, Cell{})
	}
	for d := 1; d <= g.Days; d++ {
		cells = append(cells, Cell{Day: d, Today: g.IsToday(d), Tasks: g.buckets[d]})
	}
	for range g.Trailing() {
		cells = append(cells, Cell{})
	}
	return cells
}

// Weeks splits Cells into rows of seven.
func (g Grid) Weeks() [][]Cell {
	cells := g.Cells()
	weeks := make([][]Cell, 0, len(cells)/daysPerWeek)
	for i := 0; i < len(cells); i += daysPerWeek {
		weeks = append(weeks, cells[i:i+daysPerWeek])
	}
	return weeks
}

// Prev returns the month before the given one.
func Prev(year int, month time.Month) (int, time.Month) {
	d := time.Date(year, month-1, 1, 0, 0, 0, 0, time.UTC)
	return d.Year(), d.Month()
}

// Next returns the month after the given one.
func Next(year int, month time.Month) (int, time.Month) {
	d := time.Date(year, month+1, 1, 0, 0, 0, 0, time.UTC)
	return d.Year(), d.Month()
}

// ParseMonth parses a YYYY-MM string.
func ParseMonth(s string) (int, time.Month, error) {
	d, err := time.Parse("2006-01", s)
	if err != nil {
		return 0, 0, err
	}
	return d.Year(), d.Month(), nil
}

// ParseWeekday parses a weekday name such as "sunday" or "Mon".
func ParseWeekday(s string) (time.Weekday, bool) {
	s = strings.TrimSpace(s)
	if len(s) < 3 { //nolint:mnd // shortest unambiguous weekday prefix
		return time.Sunday, false
	}
	for d := time.Sunday; d <= time.Saturday; d++ {
		name := d.String()
		if len(s) <= len(name) && strings.EqualFold(s, name[:len(s)]) {
			return d, true
		}
	}
	return time.Sunday, false
}
