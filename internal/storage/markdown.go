package storage

import (
	"bytes"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/abatilo/taskmaster/internal/task"
)

const frontmatterDelimiter = "---"

// taskFrontmatter is the YAML-serializable portion of an exported task.
type taskFrontmatter struct {
	ID        string          `yaml:"id"`
	Title     string          `yaml:"title"`
	Completed bool            `yaml:"completed"`
	Priority  task.Priority   `yaml:"priority"`
	Category  task.Category   `yaml:"category"`
	DueDate   string          `yaml:"due_date,omitempty"`
	CreatedAt string          `yaml:"created_at"`
	SubTasks  []subTaskMatter `yaml:"sub_tasks,omitempty"`
}

type subTaskMatter struct {
	ID        string `yaml:"id"`
	Text      string `yaml:"text"`
	Completed bool   `yaml:"completed"`
}

// SerializeMarkdown renders a Task as markdown with YAML frontmatter.
func SerializeMarkdown(t task.Task) ([]byte, error) {
	fm := taskFrontmatter{
		ID:        t.ID,
		Title:     t.Title,
		Completed: t.Completed,
		Priority:  t.Priority,
		Category:  t.Category,
		DueDate:   t.DueDate,
		CreatedAt: t.Created().UTC().Format(time.RFC3339Nano),
	}
	for _, st := range t.SubTasks {
		fm.SubTasks = append(fm.SubTasks, subTaskMatter(st))
	}

	var buf bytes.Buffer
	buf.WriteString(frontmatterDelimiter + "\n")

	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(fm); err != nil {
		return nil, err
	}
	enc.Close()

	buf.WriteString(frontmatterDelimiter + "\n")

	if t.Description != "" {
		buf.WriteString("\n")
		buf.WriteString(t.Description)
		buf.WriteString("\n")
	}

	return buf.Bytes(), nil
}

// ExportMarkdown writes each task to <dir>/<id>.md and returns the number written.
func ExportMarkdown(dir string, tasks []task.Task) (int, error) {
	//nolint:gosec // G301: 0755 is appropriate for a user export directory
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return 0, err
	}
	for i, t := range tasks {
		content, err := SerializeMarkdown(t)
		if err != nil {
			return i, err
		}
		//nolint:gosec // G306: 0644 is appropriate for user-readable exports
		if err = os.WriteFile(filepath.Join(dir, SanitizeKey(t.ID)+".md"), content, 0o644); err != nil {
			return i, err
		}
	}
	return len(tasks), nil
}
