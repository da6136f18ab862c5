package domain

import (
	"fmt"
	"strings"
)

// Board is a named, ordered collection of columns. The name is the board's identity.
type Board struct {
	Name    string
	Columns []Column
}

// NewBoard constructs a board from a name and its columns.
func NewBoard(name string, columns []Column) (Board, error) {
	b := Board{
		Name:    strings.TrimSpace(name),
		Columns: columns,
	}
	if err := b.Validate(); err != nil {
		return Board{}, err
	}
	return b.Clone(), nil
}

// DefaultBoardDraft returns the blank board an add-board form starts from.
func DefaultBoardDraft(columnNames []string) Board {
	b := Board{Columns: make([]Column, 0, len(columnNames))}
	for _, name := range columnNames {
		name = strings.TrimSpace(name)
		if name == "" || len(b.Columns) == MaxColumns {
			continue
		}
		b.Columns = append(b.Columns, Column{Name: name, Status: name})
	}
	return b
}

// Validate checks name, column count, column fields and status uniqueness.
func (b Board) Validate() error {
	if strings.TrimSpace(b.Name) == "" {
		return ErrInvalidName
	}
	if len(b.Columns) > MaxColumns {
		return ErrTooManyColumns
	}
	seen := make(map[string]struct{}, len(b.Columns))
	for _, column := range b.Columns {
		if strings.TrimSpace(column.ID) == "" {
			return ErrInvalidID
		}
		if strings.TrimSpace(column.Name) == "" {
			return ErrInvalidName
		}
		status := strings.TrimSpace(column.Status)
		if status == "" {
			return ErrInvalidStatus
		}
		if _, ok := seen[status]; ok {
			return ErrDuplicateColumn
		}
		seen[status] = struct{}{}
		for _, task := range column.Tasks {
			if strings.TrimSpace(task.ID) == "" {
				return ErrInvalidID
			}
			if strings.TrimSpace(task.Title) == "" {
				return ErrInvalidTitle
			}
		}
	}
	return nil
}

// Clone returns a deep copy suitable for use as a draft.
func (b Board) Clone() Board {
	out := Board{
		Name:    b.Name,
		Columns: make([]Column, 0, len(b.Columns)),
	}
	for _, column := range b.Columns {
		out.Columns = append(out.Columns, column.Clone())
	}
	return out
}

// CanAddColumn reports whether another column fits on the board.
func (b Board) CanAddColumn() bool {
	return len(b.Columns) < MaxColumns
}

// ColumnByStatus returns the index of the column carrying status, or -1.
func (b Board) ColumnByStatus(status string) int {
	status = strings.TrimSpace(status)
	for idx, column := range b.Columns {
		if column.Status == status {
			return idx
		}
	}
	return -1
}

// Statuses lists column status tags in board order.
func (b Board) Statuses() []string {
	out := make([]string, 0, len(b.Columns))
	for _, column := range b.Columns {
		out = append(out, column.Status)
	}
	return out
}

// TaskCount returns the total number of tasks across all columns.
func (b Board) TaskCount() int {
	total := 0
	for _, column := range b.Columns {
		total += len(column.Tasks)
	}
	return total
}

// RetagTasks sets every task's status to the status of the column holding it.
func (b *Board) RetagTasks() {
	for colIdx := range b.Columns {
		status := b.Columns[colIdx].Status
		for taskIdx := range b.Columns[colIdx].Tasks {
			b.Columns[colIdx].Tasks[taskIdx].Status = status
		}
	}
}

// CheckUniqueIDs reports ErrDuplicateID when two columns or two tasks across
// boards share an id. Column and task ids are separate namespaces.
func CheckUniqueIDs(boards []Board) error {
	columns := map[string]string{}
	tasks := map[string]string{}
	for _, board := range boards {
		for _, column := range board.Columns {
			if owner, ok := columns[column.ID]; ok {
				return fmt.Errorf("column id %q on boards %q and %q: %w", column.ID, owner, board.Name, ErrDuplicateID)
			}
			columns[column.ID] = board.Name
			for _, task := range column.Tasks {
				if owner, ok := tasks[task.ID]; ok {
					return fmt.Errorf("task id %q on boards %q and %q: %w", task.ID, owner, board.Name, ErrDuplicateID)
				}
				tasks[task.ID] = board.Name
			}
		}
	}
	return nil
}
