package domain

import "strings"

// Subtask is one checkable item of a task.
type Subtask struct {
	Title       string
	IsCompleted bool
}

// Task is a unit of work owned by the column whose status it carries.
type Task struct {
	ID          string
	Title       string
	Description string
	Status      string
	Subtasks    []Subtask
}

// TaskInput holds the values accepted by NewTask.
type TaskInput struct {
	ID          string
	Title       string
	Description string
	Status      string
	Subtasks    []Subtask
}

// NewTask validates input and constructs a task. Blank subtasks are dropped.
func NewTask(in TaskInput) (Task, error) {
	in.ID = strings.TrimSpace(in.ID)
	in.Title = strings.TrimSpace(in.Title)
	in.Description = strings.TrimSpace(in.Description)
	in.Status = strings.TrimSpace(in.Status)

	if in.ID == "" {
		return Task{}, ErrInvalidID
	}
	if in.Title == "" {
		return Task{}, ErrInvalidTitle
	}
	if in.Status == "" {
		return Task{}, ErrInvalidStatus
	}

	return Task{
		ID:          in.ID,
		Title:       in.Title,
		Description: in.Description,
		Status:      in.Status,
		Subtasks:    normalizeSubtasks(in.Subtasks),
	}, nil
}

// DefaultTaskDraft returns the blank task a new-task form starts from.
func DefaultTaskDraft() Task {
	return Task{
		Subtasks: []Subtask{{}},
	}
}

// Clone returns a deep copy of the task.
func (t Task) Clone() Task {
	out := t
	out.Subtasks = append([]Subtask(nil), t.Subtasks...)
	return out
}

// ToggleSubtask flips the completion flag of one subtask.
func (t *Task) ToggleSubtask(idx int) bool {
	if idx < 0 || idx >= len(t.Subtasks) {
		return false
	}
	t.Subtasks[idx].IsCompleted = !t.Subtasks[idx].IsCompleted
	return true
}

// CompletedCount returns how many subtasks are complete.
func (t Task) CompletedCount() int {
	count := 0
	for _, sub := range t.Subtasks {
		if sub.IsCompleted {
			count++
		}
	}
	return count
}

// Normalize trims fields and drops blank subtasks in place.
func (t *Task) Normalize() {
	t.ID = strings.TrimSpace(t.ID)
	t.Title = strings.TrimSpace(t.Title)
	t.Description = strings.TrimSpace(t.Description)
	t.Status = strings.TrimSpace(t.Status)
	t.Subtasks = normalizeSubtasks(t.Subtasks)
}

// normalizeSubtasks trims titles and drops blank entries.
func normalizeSubtasks(in []Subtask) []Subtask {
	out := make([]Subtask, 0, len(in))
	for _, sub := range in {
		sub.Title = strings.TrimSpace(sub.Title)
		if sub.Title == "" {
			continue
		}
		out = append(out, sub)
	}
	return out
}
