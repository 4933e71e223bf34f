package server

import (
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/bytedance/sonic"
	"github.com/labstack/echo/v4"

	"github.com/abatilo/taskmaster/internal/ai"
	"github.com/abatilo/taskmaster/internal/calendar"
	tmerrors "github.com/abatilo/taskmaster/internal/errors"
	"github.com/abatilo/taskmaster/internal/output"
	"github.com/abatilo/taskmaster/internal/task"
	"github.com/abatilo/taskmaster/internal/view"
)

type errorResponse struct {
	Error string `json:"error"`
}

type createTaskRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Priority    string `json:"priority"`
	Category    string `json:"category"`
	DueDate     string `json:"dueDate"`
}

type breakdownResponse struct {
	ID    string `json:"id"`
	State string `json:"state"`
}

type statusResponse struct {
	Thinking bool `json:"thinking"`
}

func healthz(c echo.Context) error {
	return c.String(http.StatusOK, "ok")
}

func (s *Server) listTasks(c echo.Context) error {
	criteria, err := criteriaFromQuery(c)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, view.Filter(s.svc.Store().Tasks(), criteria))
}

func criteriaFromQuery(c echo.Context) (view.Criteria, error) {
	criteria := view.DefaultCriteria()
	criteria.Search = c.QueryParam("search")

	if v := c.QueryParam("category"); v != "" && v != view.All {
		cat, ok := task.ParseCategory(v)
		if !ok {
			return criteria, tmerrors.InvalidCategoryError{Value: v}
		}
		criteria.Category = cat
	}
	if v := c.QueryParam("priority"); v != "" && v != view.All {
		p, ok := task.ParsePriority(v)
		if !ok {
			return criteria, tmerrors.InvalidPriorityError{Value: v}
		}
		criteria.Priority = p
	}
	return criteria, nil
}

func (s *Server) createTask(c echo.Context) error {
	var req createTaskRequest
	dec := sonic.ConfigStd.NewDecoder(io.LimitReader(c.Request().Body, createTaskMaxSize))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid body"})
	}

	in := task.Input{Title: req.Title, Description: req.Description, DueDate: req.DueDate}
	if req.Priority != "" {
		p, ok := task.ParsePriority(req.Priority)
		if !ok {
			return respondError(c, tmerrors.InvalidPriorityError{Value: req.Priority})
		}
		in.Priority = p
	}
	if req.Category != "" {
		cat, ok := task.ParseCategory(req.Category)
		if !ok {
			return respondError(c, tmerrors.InvalidCategoryError{Value: req.Category})
		}
		in.Category = cat
	}

	t, err := s.svc.Store().Create(in)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusCreated, t)
}

func (s *Server) getTask(c echo.Context) error {
	t, ok := s.svc.Store().Get(c.Param("id"))
	if !ok {
		return respondError(c, tmerrors.TaskNotFoundError{ID: c.Param("id")})
	}
	return c.JSON(http.StatusOK, t)
}

func (s *Server) toggleTask(c echo.Context) error {
	id := c.Param("id")
	if !s.svc.Store().ToggleComplete(id) {
		return respondError(c, tmerrors.TaskNotFoundError{ID: id})
	}
	return s.getTask(c)
}

func (s *Server) deleteTask(c echo.Context) error {
	id := c.Param("id")
	if !s.svc.Store().Delete(id) {
		return respondError(c, tmerrors.TaskNotFoundError{ID: id})
	}
	return c.NoContent(http.StatusNoContent)
}

func (s *Server) toggleSubTask(c echo.Context) error {
	id, subID := c.Param("id"), c.Param("subId")
	if !s.svc.Store().ToggleSubTask(id, subID) {
		if _, ok := s.svc.Store().Get(id); !ok {
			return respondError(c, tmerrors.TaskNotFoundError{ID: id})
		}
		return respondError(c, tmerrors.SubTaskNotFoundError{TaskID: id, Ref: subID})
	}
	return s.getTask(c)
}

func (s *Server) breakdown(c echo.Context) error {
	id := c.Param("id")
	call, err := s.svc.Breakdown(c.Request().Context(), id)
	if err != nil {
		return respondError(c, err)
	}

	if wait, _ := strconv.ParseBool(c.QueryParam("wait")); !wait {
		return c.JSON(http.StatusAccepted, breakdownResponse{ID: id, State: call.State().String()})
	}
	if _, err = call.Wait(c.Request().Context()); err != nil {
		return c.JSON(http.StatusAccepted, breakdownResponse{ID: id, State: ai.Pending.String()})
	}
	return s.getTask(c)
}

func (s *Server) status(c echo.Context) error {
	return c.JSON(http.StatusOK, statusResponse{Thinking: s.svc.Thinking()})
}

func (s *Server) stats(c echo.Context) error {
	return c.JSON(http.StatusOK, output.ToStatsJSON(view.Stats(s.svc.Store().Tasks())))
}

func (s *Server) insights(c echo.Context) error {
	return c.JSON(http.StatusOK, view.Insights(view.Stats(s.svc.Store().Tasks())))
}

func (s *Server) calendar(c echo.Context) error {
	now := s.now()
	year, month := now.Year(), now.Month()

	if v := c.QueryParam("year"); v != "" {
		y, err := strconv.Atoi(v)
		if err != nil || y < 1 {
			return c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid year " + strconv.Quote(v)})
		}
		year = y
	}
	if v := c.QueryParam("month"); v != "" {
		m, err := strconv.Atoi(v)
		if err != nil || m < 1 || m > 12 {
			return respondError(c, tmerrors.InvalidMonthError{Value: v})
		}
		month = time.Month(m)
	}

	g := calendar.Build(s.svc.Store().Tasks(), year, month, now, s.weekStart)
	return c.JSON(http.StatusOK, output.ToCalendarJSON(g))
}

func (s *Server) quote(c echo.Context) error {
	return c.JSON(http.StatusOK, s.svc.DailyQuote(c.Request().Context()))
}

// respondError maps typed domain errors to HTTP status codes.
func respondError(c echo.Context, err error) error {
	return c.JSON(statusFor(err), errorResponse{Error: err.Error()})
}

func statusFor(err error) int {
	var (
		notFound    tmerrors.TaskNotFoundError
		subNotFound tmerrors.SubTaskNotFoundError
		emptyTitle  tmerrors.EmptyTitleError
		unavailable tmerrors.BreakdownUnavailableError
		inFlight    tmerrors.BreakdownInFlightError
		badPrio     tmerrors.InvalidPriorityError
		badCat      tmerrors.InvalidCategoryError
		badDate     tmerrors.InvalidDueDateError
		badMonth    tmerrors.InvalidMonthError
	)
	switch {
	case errors.As(err, &notFound), errors.As(err, &subNotFound):
		return http.StatusNotFound
	case errors.As(err, &emptyTitle):
		return http.StatusUnprocessableEntity
	case errors.As(err, &unavailable), errors.As(err, &inFlight):
		return http.StatusConflict
	case errors.As(err, &badPrio), errors.As(err, &badCat), errors.As(err, &badDate), errors.As(err, &badMonth):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
