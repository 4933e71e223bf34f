package storage

import (
	"github.com/bytedance/sonic"

	"github.com/abatilo/taskmaster/internal/task"
)

// EncodeTasks serializes the task list to its persisted JSON form.
func EncodeTasks(tasks []task.Task) (string, error) {
	if tasks == nil {
		tasks = []task.Task{}
	}
	return sonic.ConfigStd.MarshalToString(tasks)
}

// DecodeTasks parses a persisted task list. Enumeration labels are
// canonicalized; any value outside the model is reported as corrupt.
func DecodeTasks(key, data string) ([]task.Task, error) {
	var tasks []task.Task
	if err := sonic.ConfigStd.UnmarshalFromString(data, &tasks); err != nil {
		return nil, CorruptStateError{Key: key, Reason: err.Error()}
	}

	seen := make(map[string]bool, len(tasks))
	for i := range tasks {
		t := &tasks[i]
		if t.ID == "" {
			return nil, CorruptStateError{Key: key, Reason: "task without id"}
		}
		if seen[t.ID] {
			return nil, CorruptStateError{Key: key, Reason: "duplicate task id " + t.ID}
		}
		seen[t.ID] = true
		if !t.Normalize() {
			return nil, CorruptStateError{Key: key, Reason: "task " + t.ID + " has invalid fields"}
		}
	}
	if tasks == nil {
		tasks = []task.Task{}
	}
	return tasks, nil
}
