package app

import (
	"context"
	"time"
)

// Repository persists the board collection and the dispatch history.
// SaveState stores s as revision s.Revision+1 and returns ErrStaleState when
// the stored revision is no longer s.Revision.
type Repository interface {
	LoadState(context.Context) (State, error)
	SaveState(context.Context, State) error
	AppendHistory(context.Context, HistoryEntry) error
	ListHistory(context.Context, int) ([]HistoryEntry, error)
}

// Logger receives store diagnostics.
type Logger interface {
	Debug(msg string, keyvals ...any)
	Error(msg string, keyvals ...any)
}

// HistoryEntry records one committed action.
type HistoryEntry struct {
	ID         int64
	Kind       ActionKind
	BoardName  string
	Summary    string
	OccurredAt time.Time
}
