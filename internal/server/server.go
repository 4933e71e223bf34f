// Package server exposes the task manager over a JSON HTTP API.
package server

import (
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	log "github.com/sirupsen/logrus"

	"github.com/abatilo/taskmaster/internal/app"
)

const createTaskMaxSize = 64 << 10

// Server holds the dependencies shared by the HTTP handlers.
type Server struct {
	svc       *app.Service
	logger    *log.Logger
	weekStart time.Weekday
	now       func() time.Time
}

// New creates an echo instance with middleware and every route registered.
func New(svc *app.Service, logger *log.Logger, weekStart time.Weekday) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Use(middleware.Recover())
	e.Use(middleware.RequestID())
	e.Use(RequestLogger(logger))

	Register(e, &Server{svc: svc, logger: logger, weekStart: weekStart, now: time.Now})
	return e
}

// Register mounts the API routes on e.
func Register(e *echo.Echo, s *Server) {
	api := e.Group("/api")
	api.GET("/tasks", s.listTasks)
	api.POST("/tasks", s.createTask)
	api.GET("/tasks/:id", s.getTask)
	api.POST("/tasks/:id/toggle", s.toggleTask)
	api.DELETE("/tasks/:id", s.deleteTask)
	api.POST("/tasks/:id/subtasks/:subId/toggle", s.toggleSubTask)
	api.POST("/tasks/:id/breakdown", s.breakdown)
	api.GET("/status", s.status)
	api.GET("/stats", s.stats)
	api.GET("/insights", s.insights)
	api.GET("/calendar", s.calendar)
	api.GET("/quote", s.quote)

	e.GET("/healthz", healthz)
}

// RequestLogger logs one entry per request with its outcome and latency.
func RequestLogger(logger *log.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)
			if err != nil {
				c.Error(err)
			}

			entry := logger.WithFields(log.Fields{
				"method":     c.Request().Method,
				"path":       c.Path(),
				"status":     c.Response().Status,
				"latency_ms": time.Since(start).Milliseconds(),
				"request_id": c.Response().Header().Get(echo.HeaderXRequestID),
			})
			switch status := c.Response().Status; {
			case status >= 500:
				entry.Error("http.request")
			case status >= 400:
				entry.Warn("http.request")
			default:
				entry.Info("http.request")
			}
			return nil
		}
	}
}
