package output

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/abatilo/taskmaster/internal/ai"
	"github.com/abatilo/taskmaster/internal/calendar"
	"github.com/abatilo/taskmaster/internal/task"
	"github.com/abatilo/taskmaster/internal/view"
)

var (
	titleStyle = lipgloss.NewStyle().Bold(true)
	doneStyle  = lipgloss.NewStyle().Faint(true).Strikethrough(true)
	mutedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("243"))
	errorStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("160")).Bold(true)
	todayStyle = lipgloss.NewStyle().Reverse(true)

	priorityStyles = map[task.Priority]lipgloss.Style{
		task.PriorityHigh:   lipgloss.NewStyle().Foreground(lipgloss.Color("196")),
		task.PriorityMedium: lipgloss.NewStyle().Foreground(lipgloss.Color("214")),
		task.PriorityLow:    lipgloss.NewStyle().Foreground(lipgloss.Color("42")),
	}
)

// HumanFormatter formats output for human-readable terminal display.
type HumanFormatter struct{}

// NewHumanFormatter creates a new HumanFormatter.
func NewHumanFormatter() *HumanFormatter {
	return &HumanFormatter{}
}

// FormatTask formats a single task for display.
func (f *HumanFormatter) FormatTask(t task.Task) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "%s %s\n", f.statusIcon(t.Completed), f.title(t))
	fmt.Fprintf(&sb, "  ID:       %s\n", t.ID)
	fmt.Fprintf(&sb, "  Priority: %s\n", f.priority(t.Priority))
	fmt.Fprintf(&sb, "  Category: %s\n", t.Category)
	if t.DueDate != "" {
		fmt.Fprintf(&sb, "  Due:      %s\n", t.DueDate)
	}
	fmt.Fprintf(&sb, "  Created:  %s\n", t.Created().Format("2006-01-02 15:04"))

	if t.Description != "" {
		sb.WriteString("\n")
		sb.WriteString(t.Description)
		sb.WriteString("\n")
	}

	if len(t.SubTasks) > 0 {
		sb.WriteString("\n")
		for i, st := range t.SubTasks {
			text := st.Text
			if st.Completed {
				text = doneStyle.Render(text)
			}
			fmt.Fprintf(&sb, "  %d. %s %s\n", i+1, f.statusIcon(st.Completed), text)
		}
	}

	return sb.String()
}

// FormatTaskList formats a list of tasks for display.
func (f *HumanFormatter) FormatTaskList(tasks []task.Task) string {
	if len(tasks) == 0 {
		return "No tasks found.\n"
	}

	var sb strings.Builder
	for _, t := range tasks {
		sb.WriteString(f.formatTaskLine(t))
	}
	return sb.String()
}

// formatTaskLine formats a single task as a compact one-liner.
func (f *HumanFormatter) formatTaskLine(t task.Task) string {
	meta := []string{string(t.Category)}
	if t.DueDate != "" {
		meta = append(meta, "due "+t.DueDate)
	}
	if n := len(t.SubTasks); n > 0 {
		done := 0
		for _, st := range t.SubTasks {
			if st.Completed {
				done++
			}
		}
		meta = append(meta, fmt.Sprintf("%d/%d steps", done, n))
	}
	return fmt.Sprintf("%s %s [%s] %s %s\n",
		f.statusIcon(t.Completed),
		f.priority(t.Priority),
		ShortID(t.ID),
		f.title(t),
		mutedStyle.Render("("+strings.Join(meta, ", ")+")"),
	)
}

func (f *HumanFormatter) statusIcon(completed bool) string {
	if completed {
		return "[X]"
	}
	return "[ ]"
}

func (f *HumanFormatter) title(t task.Task) string {
	if t.Completed {
		return doneStyle.Render(t.Title)
	}
	return titleStyle.Render(t.Title)
}

func (f *HumanFormatter) priority(p task.Priority) string {
	label := fmt.Sprintf("%-6s", p)
	if style, ok := priorityStyles[p]; ok {
		return style.Render(label)
	}
	return label
}

// FormatStats formats the statistics dashboard.
func (f *HumanFormatter) FormatStats(s view.Statistics) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "Total:      %d\n", s.Total)
	fmt.Fprintf(&sb, "Completed:  %d\n", s.Completed)
	fmt.Fprintf(&sb, "Pending:    %d\n", s.Pending)
	fmt.Fprintf(&sb, "Rate:       %d%%\n", s.CompletionRate())

	sb.WriteString("\nBy priority:\n")
	for _, p := range task.Priorities() {
		fmt.Fprintf(&sb, "  %s %d\n", f.priority(p), s.PriorityBreakdown[p])
	}
	sb.WriteString("\nBy category:\n")
	for _, c := range task.Categories() {
		fmt.Fprintf(&sb, "  %-9s %d\n", c, s.CategoryBreakdown[c])
	}

	return sb.String()
}

// FormatInsights formats the insights panel.
func (f *HumanFormatter) FormatInsights(in view.Insight) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "%s\n", titleStyle.Render("Productivity insights"))
	fmt.Fprintf(&sb, "  Completed:       %d\n", in.Completed)
	fmt.Fprintf(&sb, "  Completion rate: %d%%\n", in.CompletionRate)
	fmt.Fprintf(&sb, "  Urgent:          %d\n", in.Urgent)
	sb.WriteString("\n")
	for _, s := range in.Suggestions {
		fmt.Fprintf(&sb, "  - %s\n", s)
	}

	return sb.String()
}

// FormatCalendar renders the month as a 7-column grid followed by the tasks
// due in it. Days with tasks show their count.
func (f *HumanFormatter) FormatCalendar(g calendar.Grid) string {
	headers := make([]string, 0, 7)
	for i := range 7 {
		day := time.Weekday((int(g.WeekStart) + i) % 7)
		headers = append(headers, day.String()[:2])
	}

	rows := make([][]string, 0, 6)
	for _, week := range g.Weeks() {
		row := make([]string, 0, len(week))
		for _, c := range week {
			row = append(row, f.calendarCell(c))
		}
		rows = append(rows, row)
	}

	grid := table.New().
		Border(lipgloss.NormalBorder()).
		Headers(headers...).
		Rows(rows...).
		String()

	var sb strings.Builder
	fmt.Fprintf(&sb, "%s\n%s\n", titleStyle.Render(fmt.Sprintf("%s %d", g.Month, g.Year)), grid)

	for day := 1; day <= g.Days; day++ {
		for _, t := range g.TasksOn(day) {
			fmt.Fprintf(&sb, "%s %s [%s] %s\n",
				calendar.DateString(g.Year, g.Month, day), f.statusIcon(t.Completed), ShortID(t.ID), f.title(t))
		}
	}

	return sb.String()
}

func (f *HumanFormatter) calendarCell(c calendar.Cell) string {
	if c.Day == 0 {
		return ""
	}
	s := strconv.Itoa(c.Day)
	if n := len(c.Tasks); n > 0 {
		s += fmt.Sprintf(" (%d)", n)
	}
	if c.Today {
		s = todayStyle.Render(s)
	}
	return s
}

// FormatQuote formats a quote with its attribution.
func (f *HumanFormatter) FormatQuote(q ai.Quote) string {
	return fmt.Sprintf("\"%s\"\n  %s\n", q.Quote, mutedStyle.Render("- "+q.Author))
}

// FormatError formats an error for display.
func (f *HumanFormatter) FormatError(err error) string {
	return errorStyle.Render("Error:") + " " + err.Error() + "\n"
}

// FormatMessage formats a simple message.
func (f *HumanFormatter) FormatMessage(msg string) string {
	return msg + "\n"
}
