// Package app coordinates the task store with AI enrichment.
package app

import (
	"context"
	"sync"
	"sync/atomic"

	log "github.com/sirupsen/logrus"

	"github.com/abatilo/taskmaster/internal/ai"
	tmerrors "github.com/abatilo/taskmaster/internal/errors"
	"github.com/abatilo/taskmaster/internal/storage"
	"github.com/abatilo/taskmaster/internal/task"
)

// Service runs AI breakdowns against the store and tracks which are pending.
type Service struct {
	store    *storage.Store
	enricher ai.Enricher
	logger   *log.Logger

	mu       sync.Mutex
	inflight map[string]*ai.Call[[]string]
	thinking atomic.Int32

	quoteMu sync.Mutex
	quote   *ai.Quote
}

// New creates a Service.
func New(store *storage.Store, enricher ai.Enricher, logger *log.Logger) *Service {
	if logger == nil {
		logger = log.StandardLogger()
	}
	return &Service{
		store:    store,
		enricher: enricher,
		logger:   logger,
		inflight: make(map[string]*ai.Call[[]string]),
	}
}

// Store returns the underlying task store.
func (s *Service) Store() *storage.Store {
	return s.store
}

// Breakdown starts an AI breakdown of the task and returns the pending call.
// The result replaces the task's sub-tasks when it settles, unless the task
// was deleted in the meantime. The call outlives ctx cancellation. If the
// enricher panics the call settles with FallbackSteps but the task is left
// unchanged.
func (s *Service) Breakdown(ctx context.Context, id string) (*ai.Call[[]string], error) {
	// Eligibility is read under s.mu so a breakdown that settles between the
	// read and registration cannot be applied twice.
	s.mu.Lock()
	t, ok := s.store.Get(id)
	if !ok {
		s.mu.Unlock()
		return nil, tmerrors.TaskNotFoundError{ID: id}
	}
	if err := eligible(t); err != nil {
		s.mu.Unlock()
		return nil, err
	}
	if _, busy := s.inflight[id]; busy {
		s.mu.Unlock()
		return nil, tmerrors.BreakdownInFlightError{ID: id}
	}
	logger := s.logger.WithField("task", id)
	call := ai.NewCall[[]string]().OnPanic(func(r any) {
		logger.WithField("panic", r).Error("breakdown.panicked")
	})
	s.inflight[id] = call
	s.mu.Unlock()

	s.thinking.Add(1)
	detached := context.WithoutCancel(ctx)
	logger.Debug("breakdown.started")

	call.Start(func() []string {
		defer s.finish(id)
		steps := s.enricher.Breakdown(detached, t.Title, t.Description)
		if !s.store.ApplyBreakdown(id, steps) {
			logger.Info("breakdown.discarded")
			return steps
		}
		logger.WithField("steps", len(steps)).Debug("breakdown.applied")
		return steps
	}, ai.FallbackSteps())

	return call, nil
}

func (s *Service) finish(id string) {
	s.mu.Lock()
	delete(s.inflight, id)
	s.mu.Unlock()
	s.thinking.Add(-1)
}

func eligible(t task.Task) error {
	switch {
	case t.Completed:
		return tmerrors.BreakdownUnavailableError{ID: t.ID, Reason: "task is completed"}
	case len(t.SubTasks) > 0:
		return tmerrors.BreakdownUnavailableError{ID: t.ID, Reason: "task already has sub-tasks"}
	default:
		return nil
	}
}

// Thinking reports whether any breakdown is pending.
func (s *Service) Thinking() bool {
	return s.thinking.Load() > 0
}

// Pending reports whether a breakdown is pending for the task.
func (s *Service) Pending(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.inflight[id]
	return ok
}

// DailyQuote returns the quote fetched on first use; later calls reuse it.
func (s *Service) DailyQuote(ctx context.Context) ai.Quote {
	s.quoteMu.Lock()
	defer s.quoteMu.Unlock()

	if s.quote == nil {
		q := s.enricher.DailyQuote(ctx)
		s.quote = &q
	}
	return *s.quote
}
