package domain

import "strings"

// MaxColumns caps the number of columns one board can hold.
const MaxColumns = 6

// Column represents one status-tagged task list within a board.
type Column struct {
	ID     string
	Name   string
	Status string
	Tasks  []Task
}

// NewColumn constructs a column. An empty status defaults to the column name.
func NewColumn(id, name, status string) (Column, error) {
	id = strings.TrimSpace(id)
	name = strings.TrimSpace(name)
	status = strings.TrimSpace(status)
	if id == "" {
		return Column{}, ErrInvalidID
	}
	if name == "" {
		return Column{}, ErrInvalidName
	}
	if status == "" {
		status = name
	}
	return Column{
		ID:     id,
		Name:   name,
		Status: status,
	}, nil
}

// Rename renames the column. The status tag follows the name when it tracked the old name.
func (c *Column) Rename(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return ErrInvalidName
	}
	if c.Status == c.Name {
		c.Status = name
	}
	c.Name = name
	return nil
}

// Clone returns a deep copy of the column.
func (c Column) Clone() Column {
	out := c
	out.Tasks = make([]Task, 0, len(c.Tasks))
	for _, task := range c.Tasks {
		out.Tasks = append(out.Tasks, task.Clone())
	}
	return out
}

// TaskIndex returns the position of the task with the given id, or -1.
func (c Column) TaskIndex(id string) int {
	id = strings.TrimSpace(id)
	if id == "" {
		return -1
	}
	for idx, task := range c.Tasks {
		if task.ID == id {
			return idx
		}
	}
	return -1
}
