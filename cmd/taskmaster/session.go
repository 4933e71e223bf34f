package main

import (
	"bufio"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/abatilo/taskmaster/internal/calendar"
	tmerrors "github.com/abatilo/taskmaster/internal/errors"
	"github.com/abatilo/taskmaster/internal/session"
	"github.com/abatilo/taskmaster/internal/task"
	"github.com/abatilo/taskmaster/internal/view"
)

func addCriteriaFlags(cmd *cobra.Command, category, priority, search *string) {
	cmd.Flags().StringVarP(category, "category", "c", "", "Category to show, or 'all'")
	cmd.Flags().StringVarP(priority, "priority", "p", "", "Priority to show, or 'all'")
	cmd.Flags().StringVarP(search, "search", "s", "", "Case-insensitive text in title or description")
}

// applyCriteriaFlags overrides c with every criteria flag the user set.
func applyCriteriaFlags(cmd *cobra.Command, c view.Criteria, category, priority, search string) view.Criteria {
	if cmd.Flags().Changed("category") {
		c.Category = view.All
		if category != view.All {
			parsed, ok := task.ParseCategory(category)
			if !ok {
				printError(tmerrors.InvalidCategoryError{Value: category})
			}
			c.Category = parsed
		}
	}
	if cmd.Flags().Changed("priority") {
		c.Priority = view.All
		if priority != view.All {
			parsed, ok := task.ParsePriority(priority)
			if !ok {
				printError(tmerrors.InvalidPriorityError{Value: priority})
			}
			c.Priority = parsed
		}
	}
	if cmd.Flags().Changed("search") {
		c.Search = search
	}
	return c
}

func describeCriteria(c view.Criteria) string {
	desc := fmt.Sprintf("category=%s priority=%s", orAll(string(c.Category)), orAll(string(c.Priority)))
	if c.Search != "" {
		desc += fmt.Sprintf(" search=%q", c.Search)
	}
	return desc
}

func orAll(s string) string {
	if s == "" {
		return view.All
	}
	return s
}

// filterCmd implements 'taskmaster filter'.
func filterCmd() *cobra.Command {
	var category, priority, search string
	var reset bool
	cmd := &cobra.Command{
		Use:   "filter",
		Short: "Show or change the saved list filter",
		Run: func(cmd *cobra.Command, _ []string) {
			if reset {
				if err := session.Delete(cfg.DataDir); err != nil {
					printError(err)
				}
			}
			sess := session.LoadOrDefault(cfg.DataDir)
			criteria := applyCriteriaFlags(cmd, sess.Criteria(), category, priority, search)

			sess.SetCriteria(criteria)
			if err := session.Save(cfg.DataDir, sess); err != nil {
				printError(err)
			}
			printOutput(formatter.FormatMessage("Filter: " + describeCriteria(criteria)))
		},
	}
	addCriteriaFlags(cmd, &category, &priority, &search)
	cmd.Flags().BoolVar(&reset, "reset", false, "Delete all saved view state before applying other flags")
	return cmd
}

// calendarCmd implements 'taskmaster calendar'.
func calendarCmd() *cobra.Command {
	var prev, next, today bool
	var month string
	cmd := &cobra.Command{
		Use:   "calendar",
		Short: "Show tasks on a month grid by due date",
		Run: func(cmd *cobra.Command, _ []string) {
			now := time.Now()
			sess := session.LoadOrDefault(cfg.DataDir)
			year, mon := sess.CalendarMonth(now)

			switch {
			case month != "":
				y, m, err := calendar.ParseMonth(month)
				if err != nil {
					printError(tmerrors.InvalidMonthError{Value: month})
				}
				year, mon = y, m
			case today:
				year, mon = now.Year(), now.Month()
			case prev:
				year, mon = calendar.Prev(year, mon)
			case next:
				year, mon = calendar.Next(year, mon)
			}

			sess.SetCalendarMonth(year, mon)
			if err := session.Save(cfg.DataDir, sess); err != nil {
				logger.WithError(err).Warn("session.save.failed")
			}

			svc, closeFn := getService(cmd.Context())
			defer closeFn()

			g := calendar.Build(svc.Store().Tasks(), year, mon, now, cfg.WeekStart())
			printOutput(formatter.FormatCalendar(g))
		},
	}
	cmd.Flags().BoolVar(&prev, "prev", false, "Move to the previous month")
	cmd.Flags().BoolVar(&next, "next", false, "Move to the next month")
	cmd.Flags().BoolVar(&today, "today", false, "Jump to the current month")
	cmd.Flags().StringVarP(&month, "month", "m", "", "Show a specific month (YYYY-MM)")
	cmd.MarkFlagsMutuallyExclusive("prev", "next", "today", "month")
	return cmd
}

// quoteCmd implements 'taskmaster quote'.
func quoteCmd() *cobra.Command {
	var refresh bool
	cmd := &cobra.Command{
		Use:   "quote",
		Short: "Show today's motivational quote",
		Run: func(cmd *cobra.Command, _ []string) {
			day := time.Now().Format(task.DateLayout)
			sess := session.LoadOrDefault(cfg.DataDir)
			if q, ok := sess.CachedQuote(day); ok && !refresh {
				printOutput(formatter.FormatQuote(q))
				return
			}

			svc, closeFn := getService(cmd.Context())
			defer closeFn()

			q := svc.DailyQuote(cmd.Context())
			sess.SetQuote(q, day)
			if err := session.Save(cfg.DataDir, sess); err != nil {
				logger.WithError(err).Warn("session.save.failed")
			}
			printOutput(formatter.FormatQuote(q))
		},
	}
	cmd.Flags().BoolVar(&refresh, "refresh", false, "Fetch a new quote even if one was shown today")
	return cmd
}

// confirm asks a yes/no question on w and reads the answer from r.
// Anything but y or yes declines.
func confirm(r io.Reader, w io.Writer, question string) bool {
	fmt.Fprintf(w, "%s [y/N] ", question)
	answer, err := bufio.NewReader(r).ReadString('\n')
	if err != nil && answer == "" {
		return false
	}
	switch strings.ToLower(strings.TrimSpace(answer)) {
	case "y", "yes":
		return true
	default:
		return false
	}
}
