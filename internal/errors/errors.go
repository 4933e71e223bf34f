//nolint:revive // Package name intentionally matches stdlib for domain clarity
package errors

import "fmt"

// TaskNotFoundError indicates no task matches the given ID.
type TaskNotFoundError struct {
	ID string
}

func (e TaskNotFoundError) Error() string {
	return fmt.Sprintf("task not found: %s", e.ID)
}

// SubTaskNotFoundError indicates no sub-task of the task matches the reference.
type SubTaskNotFoundError struct {
	TaskID string
	Ref    string
}

func (e SubTaskNotFoundError) Error() string {
	return fmt.Sprintf("sub-task %s not found in task %s", e.Ref, e.TaskID)
}

// AmbiguousIDError indicates an ID prefix matches more than one task.
type AmbiguousIDError struct {
	Prefix  string
	Matches []string
}

func (e AmbiguousIDError) Error() string {
	return fmt.Sprintf("id prefix %s is ambiguous: %v", e.Prefix, e.Matches)
}

// EmptyTitleError indicates creation was attempted with a blank title.
type EmptyTitleError struct{}

func (e EmptyTitleError) Error() string {
	return "title is required"
}

// InvalidPriorityError indicates an invalid priority value.
type InvalidPriorityError struct {
	Value string
}

func (e InvalidPriorityError) Error() string {
	return fmt.Sprintf("invalid priority: %s (valid: low, medium, high)", e.Value)
}

// InvalidCategoryError indicates an invalid category value.
type InvalidCategoryError struct {
	Value string
}

func (e InvalidCategoryError) Error() string {
	return fmt.Sprintf(
		"invalid category: %s (valid: personal, work, shopping, health, finance, other)",
		e.Value,
	)
}

// InvalidDueDateError indicates a due date not in YYYY-MM-DD form.
type InvalidDueDateError struct {
	Value string
}

func (e InvalidDueDateError) Error() string {
	return fmt.Sprintf("invalid due date: %s (expected YYYY-MM-DD)", e.Value)
}

// InvalidMonthError indicates a calendar month that cannot be displayed.
type InvalidMonthError struct {
	Value string
}

func (e InvalidMonthError) Error() string {
	return fmt.Sprintf("invalid month: %s (expected YYYY-MM)", e.Value)
}

// BreakdownUnavailableError indicates the task is not eligible for AI breakdown.
type BreakdownUnavailableError struct {
	ID     string
	Reason string
}

func (e BreakdownUnavailableError) Error() string {
	return fmt.Sprintf("task %s cannot be broken down: %s", e.ID, e.Reason)
}

// BreakdownInFlightError indicates a breakdown for the task is already pending.
type BreakdownInFlightError struct {
	ID string
}

func (e BreakdownInFlightError) Error() string {
	return fmt.Sprintf("task %s is already being broken down", e.ID)
}

// DeleteNotConfirmedError indicates the user declined a delete confirmation.
type DeleteNotConfirmedError struct {
	ID string
}

func (e DeleteNotConfirmedError) Error() string {
	return fmt.Sprintf("delete of task %s not confirmed", e.ID)
}

// UnknownBackendError indicates a storage backend name that is not supported.
type UnknownBackendError struct {
	Name string
}

func (e UnknownBackendError) Error() string {
	return fmt.Sprintf("unknown storage backend: %s (valid: file, redis)", e.Name)
}
