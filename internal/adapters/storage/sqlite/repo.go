package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"time"

	"github.com/hylla/kanboard/internal/app"
	"github.com/hylla/kanboard/internal/domain"
	_ "modernc.org/sqlite"
)

// driverName defines a package constant value.
const driverName = "sqlite"

// memoryDBSeq keeps in-memory databases opened by one process apart.
var memoryDBSeq atomic.Int64

// Repository persists board state in sqlite.
type Repository struct {
	db *sql.DB
}

// Open opens the database at path, creating parent directories and schema.
func Open(path string) (*Repository, error) {
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("sqlite path is required")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create sqlite dir: %w", err)
	}
	db, err := sql.Open(driverName, path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	return newRepository(db)
}

// OpenInMemory opens a private in-memory database.
func OpenInMemory() (*Repository, error) {
	dsn := fmt.Sprintf("file:kanboard-mem-%d?mode=memory&cache=shared", memoryDBSeq.Add(1))
	db, err := sql.Open(driverName, dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite memory: %w", err)
	}
	return newRepository(db)
}

func newRepository(db *sql.DB) (*Repository, error) {
	db.SetMaxOpenConns(1)
	repo := &Repository{db: db}
	if err := repo.migrate(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return repo, nil
}

// Close closes the underlying database.
func (r *Repository) Close() error {
	return r.db.Close()
}

// migrate handles migrate.
func (r *Repository) migrate(ctx context.Context) error {
	stmts := []string{
		`PRAGMA foreign_keys = ON;`,
		`PRAGMA busy_timeout = 5000;`,
		`CREATE TABLE IF NOT EXISTS state_meta (
			id INTEGER PRIMARY KEY CHECK (id = 1),
			revision INTEGER NOT NULL
		);`,
		`INSERT OR IGNORE INTO state_meta(id, revision) VALUES(1, 0);`,
		`CREATE TABLE IF NOT EXISTS boards (
			name TEXT PRIMARY KEY,
			position INTEGER NOT NULL,
			is_active INTEGER NOT NULL DEFAULT 0,
			updated_at TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS board_columns (
			id TEXT PRIMARY KEY,
			board_name TEXT NOT NULL,
			position INTEGER NOT NULL,
			name TEXT NOT NULL,
			status TEXT NOT NULL,
			FOREIGN KEY(board_name) REFERENCES boards(name) ON DELETE CASCADE ON UPDATE CASCADE
		);`,
		`CREATE TABLE IF NOT EXISTS tasks (
			id TEXT PRIMARY KEY,
			column_id TEXT NOT NULL,
			position INTEGER NOT NULL,
			title TEXT NOT NULL,
			description TEXT NOT NULL DEFAULT '',
			status TEXT NOT NULL,
			FOREIGN KEY(column_id) REFERENCES board_columns(id) ON DELETE CASCADE
		);`,
		`CREATE TABLE IF NOT EXISTS subtasks (
			task_id TEXT NOT NULL,
			position INTEGER NOT NULL,
			title TEXT NOT NULL,
			is_completed INTEGER NOT NULL DEFAULT 0,
			PRIMARY KEY(task_id, position),
			FOREIGN KEY(task_id) REFERENCES tasks(id) ON DELETE CASCADE
		);`,
		`CREATE TABLE IF NOT EXISTS action_history (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			kind TEXT NOT NULL,
			board_name TEXT NOT NULL DEFAULT '',
			summary TEXT NOT NULL DEFAULT '',
			created_at TEXT NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_board_columns_board_position ON board_columns(board_name, position);`,
		`CREATE INDEX IF NOT EXISTS idx_tasks_column_position ON tasks(column_id, position);`,
		`CREATE INDEX IF NOT EXISTS idx_action_history_created_at ON action_history(created_at DESC, id DESC);`,
	}
	for _, stmt := range stmts {
		if _, err := r.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migrate sqlite: %w", err)
		}
	}
	return nil
}

// LoadState reads every board in position order together with the active selection.
func (r *Repository) LoadState(ctx context.Context) (app.State, error) {
	state := app.State{}
	// Read first: a write landing mid-load bumps the revision past this one.
	if err := r.db.QueryRowContext(ctx, `SELECT revision FROM state_meta WHERE id = 1`).Scan(&state.Revision); err != nil {
		return app.State{}, fmt.Errorf("read revision: %w", err)
	}
	rows, err := r.db.QueryContext(ctx, `SELECT name, is_active FROM boards ORDER BY position ASC, name ASC`)
	if err != nil {
		return app.State{}, err
	}
	for rows.Next() {
		var (
			name   string
			active int
		)
		if err := rows.Scan(&name, &active); err != nil {
			_ = rows.Close()
			return app.State{}, err
		}
		state.Boards = append(state.Boards, domain.Board{Name: name})
		if active != 0 {
			state.Active = name
		}
	}
	if err := rows.Close(); err != nil {
		return app.State{}, err
	}
	if err := rows.Err(); err != nil {
		return app.State{}, err
	}

	for idx := range state.Boards {
		columns, err := r.listColumns(ctx, state.Boards[idx].Name)
		if err != nil {
			return app.State{}, fmt.Errorf("load board %q: %w", state.Boards[idx].Name, err)
		}
		state.Boards[idx].Columns = columns
	}
	return state, nil
}

// SaveState replaces the stored board collection with s in one transaction.
// It fails with app.ErrStaleState unless the stored revision is s.Revision.
func (r *Repository) SaveState(ctx context.Context, s app.State) (err error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	res, err := tx.ExecContext(ctx, `
		UPDATE state_meta SET revision = revision + 1
		WHERE id = 1 AND revision = ?
	`, s.Revision)
	if err != nil {
		return fmt.Errorf("bump revision: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("bump revision: %w", err)
	}
	if n != 1 {
		err = fmt.Errorf("revision %d: %w", s.Revision, app.ErrStaleState)
		return err
	}

	for _, stmt := range []string{
		`DELETE FROM subtasks`,
		`DELETE FROM tasks`,
		`DELETE FROM board_columns`,
		`DELETE FROM boards`,
	} {
		if _, err = tx.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("clear state: %w", err)
		}
	}

	now := ts(time.Now())
	for boardPos, board := range s.Boards {
		active := 0
		if board.Name == s.Active {
			active = 1
		}
		if _, err = tx.ExecContext(ctx, `
			INSERT INTO boards(name, position, is_active, updated_at)
			VALUES(?, ?, ?, ?)
		`, board.Name, boardPos, active, now); err != nil {
			return fmt.Errorf("insert board %q: %w", board.Name, err)
		}
		for colPos, column := range board.Columns {
			if _, err = tx.ExecContext(ctx, `
				INSERT INTO board_columns(id, board_name, position, name, status)
				VALUES(?, ?, ?, ?, ?)
			`, column.ID, board.Name, colPos, column.Name, column.Status); err != nil {
				return fmt.Errorf("insert column %q: %w", column.Name, err)
			}
			for taskPos, task := range column.Tasks {
				if err = insertTask(ctx, tx, column.ID, taskPos, task); err != nil {
					return err
				}
			}
		}
	}

	err = tx.Commit()
	return err
}

// AppendHistory records one committed action.
func (r *Repository) AppendHistory(ctx context.Context, entry app.HistoryEntry) error {
	occurredAt := entry.OccurredAt
	if occurredAt.IsZero() {
		occurredAt = time.Now()
	}
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO action_history(kind, board_name, summary, created_at)
		VALUES(?, ?, ?, ?)
	`, string(entry.Kind), strings.TrimSpace(entry.BoardName), strings.TrimSpace(entry.Summary), ts(occurredAt))
	return err
}

// ListHistory lists up to limit history entries, newest first.
func (r *Repository) ListHistory(ctx context.Context, limit int) ([]app.HistoryEntry, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, kind, board_name, summary, created_at
		FROM action_history
		ORDER BY created_at DESC, id DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]app.HistoryEntry, 0)
	for rows.Next() {
		var (
			entry     app.HistoryEntry
			kind      string
			createdAt string
		)
		if err := rows.Scan(&entry.ID, &kind, &entry.BoardName, &entry.Summary, &createdAt); err != nil {
			return nil, err
		}
		entry.Kind = app.ActionKind(kind)
		entry.OccurredAt = parseTS(createdAt)
		out = append(out, entry)
	}
	return out, rows.Err()
}

// listColumns loads the columns of one board with their tasks.
func (r *Repository) listColumns(ctx context.Context, boardName string) ([]domain.Column, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, name, status
		FROM board_columns
		WHERE board_name = ?
		ORDER BY position ASC
	`, boardName)
	if err != nil {
		return nil, err
	}
	columns := make([]domain.Column, 0)
	for rows.Next() {
		var c domain.Column
		if err := rows.Scan(&c.ID, &c.Name, &c.Status); err != nil {
			_ = rows.Close()
			return nil, err
		}
		columns = append(columns, c)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for idx := range columns {
		tasks, err := r.listTasks(ctx, columns[idx].ID)
		if err != nil {
			return nil, err
		}
		columns[idx].Tasks = tasks
	}
	return columns, nil
}

// listTasks loads the tasks of one column with their subtasks.
func (r *Repository) listTasks(ctx context.Context, columnID string) ([]domain.Task, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, title, description, status
		FROM tasks
		WHERE column_id = ?
		ORDER BY position ASC
	`, columnID)
	if err != nil {
		return nil, err
	}
	tasks := make([]domain.Task, 0)
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			_ = rows.Close()
			return nil, err
		}
		tasks = append(tasks, task)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for idx := range tasks {
		subtasks, err := r.listSubtasks(ctx, tasks[idx].ID)
		if err != nil {
			return nil, err
		}
		tasks[idx].Subtasks = subtasks
	}
	return tasks, nil
}

func (r *Repository) listSubtasks(ctx context.Context, taskID string) ([]domain.Subtask, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT title, is_completed
		FROM subtasks
		WHERE task_id = ?
		ORDER BY position ASC
	`, taskID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]domain.Subtask, 0)
	for rows.Next() {
		var (
			sub       domain.Subtask
			completed int
		)
		if err := rows.Scan(&sub.Title, &completed); err != nil {
			return nil, err
		}
		sub.IsCompleted = completed != 0
		out = append(out, sub)
	}
	return out, rows.Err()
}

// execerContext is the subset of *sql.Tx used by insert helpers.
type execerContext interface {
	ExecContext(context.Context, string, ...any) (sql.Result, error)
}

// insertTask writes one task row and its subtasks.
func insertTask(ctx context.Context, execer execerContext, columnID string, position int, task domain.Task) error {
	if _, err := execer.ExecContext(ctx, `
		INSERT INTO tasks(id, column_id, position, title, description, status)
		VALUES(?, ?, ?, ?, ?, ?)
	`, task.ID, columnID, position, task.Title, task.Description, task.Status); err != nil {
		return fmt.Errorf("insert task %q: %w", task.Title, err)
	}
	for subPos, sub := range task.Subtasks {
		completed := 0
		if sub.IsCompleted {
			completed = 1
		}
		if _, err := execer.ExecContext(ctx, `
			INSERT INTO subtasks(task_id, position, title, is_completed)
			VALUES(?, ?, ?, ?)
		`, task.ID, subPos, sub.Title, completed); err != nil {
			return fmt.Errorf("insert subtask %q: %w", sub.Title, err)
		}
	}
	return nil
}

// scanner is implemented by *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanTask(s scanner) (domain.Task, error) {
	var t domain.Task
	if err := s.Scan(&t.ID, &t.Title, &t.Description, &t.Status); err != nil {
		return domain.Task{}, err
	}
	return t, nil
}

// ts formats a timestamp for storage.
func ts(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

// parseTS parses input into a normalized form.
func parseTS(v string) time.Time {
	ts, err := time.Parse(time.RFC3339Nano, v)
	if err != nil {
		return time.Time{}
	}
	return ts.UTC()
}
