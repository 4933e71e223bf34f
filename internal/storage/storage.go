package storage

import (
	"context"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	tmerrors "github.com/abatilo/taskmaster/internal/errors"
	"github.com/abatilo/taskmaster/internal/task"
)

const defaultWriteTimeout = 5 * time.Second

// Store owns the canonical task list and persists it after every change.
// The list is only changed through Create, ToggleComplete, Delete,
// ToggleSubTask and ApplyBreakdown.
type Store struct {
	mu    sync.Mutex
	tasks []task.Task

	kv           KV
	key          string
	logger       *log.Logger
	now          func() time.Time
	newID        func() string
	writeTimeout time.Duration

	defaultPriority task.Priority
	defaultCategory task.Category
}

// Option configures a Store.
type Option func(*Store)

// WithKey sets the key the task list is stored under.
func WithKey(key string) Option {
	return func(s *Store) { s.key = key }
}

// WithLogger sets the logger load and persistence failures are reported to.
func WithLogger(l *log.Logger) Option {
	return func(s *Store) { s.logger = l }
}

// WithClock overrides the creation timestamp source.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// WithIDGenerator overrides task and sub-task ID generation.
func WithIDGenerator(fn func() string) Option {
	return func(s *Store) { s.newID = fn }
}

// WithDefaults sets the priority and category used when creation input omits them.
func WithDefaults(p task.Priority, c task.Category) Option {
	return func(s *Store) {
		if task.IsValidPriority(p) {
			s.defaultPriority = p
		}
		if task.IsValidCategory(c) {
			s.defaultCategory = c
		}
	}
}

// Open creates a Store and loads the persisted list from kv. A missing or
// unreadable value yields an empty store; the failure is logged, never returned.
func Open(ctx context.Context, kv KV, opts ...Option) *Store {
	s := &Store{
		kv:              kv,
		key:             DefaultKey,
		logger:          log.StandardLogger(),
		now:             time.Now,
		newID:           uuid.NewString,
		writeTimeout:    defaultWriteTimeout,
		defaultPriority: task.PriorityLow,
		defaultCategory: task.CategoryPersonal,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.tasks = s.load(ctx)
	return s
}

func (s *Store) load(ctx context.Context) []task.Task {
	data, ok, err := s.kv.Get(ctx, s.key)
	if err != nil {
		s.logger.WithError(err).WithField("key", s.key).Warn("storage.load.failed")
		return []task.Task{}
	}
	if !ok {
		return []task.Task{}
	}
	tasks, err := DecodeTasks(s.key, data)
	if err != nil {
		s.logger.WithError(err).WithField("key", s.key).Warn("storage.load.corrupt")
		return []task.Task{}
	}
	s.logger.WithFields(log.Fields{"key": s.key, "tasks": len(tasks)}).Debug("storage.load.ok")
	return tasks
}

// commit persists the current list. The caller is never told the outcome;
// failures are logged. Must be called with s.mu held.
func (s *Store) commit() {
	data, err := EncodeTasks(s.tasks)
	if err != nil {
		s.logger.WithError(err).Error("storage.encode.failed")
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), s.writeTimeout)
	defer cancel()
	if err = s.kv.Set(ctx, s.key, data); err != nil {
		s.logger.WithError(err).WithField("key", s.key).Error("storage.persist.failed")
	}
}

// Tasks returns a snapshot of the list in store order (newest first).
func (s *Store) Tasks() []task.Task {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]task.Task, len(s.tasks))
	for i, t := range s.tasks {
		out[i] = t.Clone()
	}
	return out
}

// Get returns a copy of the task with the given ID.
func (s *Store) Get(id string) (task.Task, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if i := s.indexOf(id); i >= 0 {
		return s.tasks[i].Clone(), true
	}
	return task.Task{}, false
}

// Resolve maps a full task ID or a unique ID prefix to a task ID.
func (s *Store) Resolve(ref string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ref = strings.TrimSpace(ref)
	if ref == "" {
		return "", tmerrors.TaskNotFoundError{ID: ref}
	}
	var matches []string
	for _, t := range s.tasks {
		if t.ID == ref {
			return t.ID, nil
		}
		if strings.HasPrefix(t.ID, ref) {
			matches = append(matches, t.ID)
		}
	}
	switch len(matches) {
	case 0:
		return "", tmerrors.TaskNotFoundError{ID: ref}
	case 1:
		return matches[0], nil
	default:
		return "", tmerrors.AmbiguousIDError{Prefix: ref, Matches: matches}
	}
}

// ResolveSubTask maps a 1-based position or an ID prefix to a sub-task ID.
func (s *Store) ResolveSubTask(taskID, ref string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(taskID)
	if i < 0 {
		return "", tmerrors.TaskNotFoundError{ID: taskID}
	}
	subs := s.tasks[i].SubTasks
	if n, err := strconv.Atoi(ref); err == nil && n >= 1 && n <= len(subs) {
		return subs[n-1].ID, nil
	}
	var matches []string
	for _, st := range subs {
		if st.ID == ref {
			return st.ID, nil
		}
		if ref != "" && strings.HasPrefix(st.ID, ref) {
			matches = append(matches, st.ID)
		}
	}
	switch len(matches) {
	case 0:
		return "", tmerrors.SubTaskNotFoundError{TaskID: taskID, Ref: ref}
	case 1:
		return matches[0], nil
	default:
		return "", tmerrors.AmbiguousIDError{Prefix: ref, Matches: matches}
	}
}

// Create adds a new task at the front of the list. A blank title or a
// malformed due date leaves the store untouched.
func (s *Store) Create(in task.Input) (task.Task, error) {
	if strings.TrimSpace(in.Title) == "" {
		return task.Task{}, tmerrors.EmptyTitleError{}
	}
	if !task.IsValidDueDate(in.DueDate) {
		return task.Task{}, tmerrors.InvalidDueDateError{Value: in.DueDate}
	}
	priority := in.Priority
	if priority == "" {
		priority = s.defaultPriority
	}
	if !task.IsValidPriority(priority) {
		return task.Task{}, tmerrors.InvalidPriorityError{Value: string(priority)}
	}
	category := in.Category
	if category == "" {
		category = s.defaultCategory
	}
	if !task.IsValidCategory(category) {
		return task.Task{}, tmerrors.InvalidCategoryError{Value: string(category)}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	t := task.Task{
		ID:          s.uniqueID(),
		Title:       in.Title,
		Description: in.Description,
		Priority:    priority,
		Category:    category,
		DueDate:     in.DueDate,
		CreatedAt:   s.now().UnixMilli(),
		SubTasks:    []task.SubTask{},
	}
	s.tasks = append([]task.Task{t}, s.tasks...)
	s.commit()
	return t.Clone(), nil
}

// ToggleComplete flips the completed flag of a task. It reports whether the task exists.
func (s *Store) ToggleComplete(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(id)
	if i < 0 {
		return false
	}
	s.tasks[i].Completed = !s.tasks[i].Completed
	s.commit()
	return true
}

// Delete removes a task permanently. It reports whether the task existed.
func (s *Store) Delete(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(id)
	if i < 0 {
		return false
	}
	s.tasks = append(s.tasks[:i:i], s.tasks[i+1:]...)
	s.commit()
	return true
}

// ToggleSubTask flips the completed flag of one sub-task. It reports whether
// both the task and the sub-task exist.
func (s *Store) ToggleSubTask(taskID, subTaskID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(taskID)
	if i < 0 {
		return false
	}
	subs := s.tasks[i].SubTasks
	for j := range subs {
		if subs[j].ID == subTaskID {
			subs[j].Completed = !subs[j].Completed
			s.commit()
			return true
		}
	}
	return false
}

// ApplyBreakdown replaces a task's sub-tasks with fresh ones built from texts,
// in order. It reports whether the task exists; a vanished task is a no-op.
func (s *Store) ApplyBreakdown(taskID string, texts []string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(taskID)
	if i < 0 {
		return false
	}
	subs := make([]task.SubTask, 0, len(texts))
	for _, text := range texts {
		subs = append(subs, task.SubTask{ID: s.newID(), Text: text})
	}
	s.tasks[i].SubTasks = subs
	s.commit()
	return true
}

func (s *Store) indexOf(id string) int {
	for i := range s.tasks {
		if s.tasks[i].ID == id {
			return i
		}
	}
	return -1
}

// uniqueID draws IDs until one is unused. Must be called with s.mu held.
func (s *Store) uniqueID() string {
	for {
		id := s.newID()
		if s.indexOf(id) < 0 {
			return id
		}
	}
}
