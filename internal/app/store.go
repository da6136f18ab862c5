package app

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/hylla/kanboard/internal/domain"
)

// IDGenerator returns unique identifiers for new entities.
type IDGenerator func() string

// Clock returns the current time.
type Clock func() time.Time

// StoreConfig holds optional collaborators for a store.
type StoreConfig struct {
	IDGen  IDGenerator
	Clock  Clock
	Logger Logger
}

// Store owns the canonical board state and is mutated only through Dispatch.
type Store struct {
	mu     sync.Mutex
	repo   Repository
	idGen  IDGenerator
	clock  Clock
	logger Logger
	state  State

	nextSubID   int
	subscribers map[int]func(State)
}

// NewStore constructs a store. A nil repository keeps state in memory only.
func NewStore(repo Repository, cfg StoreConfig) *Store {
	if cfg.IDGen == nil {
		cfg.IDGen = func() string { return "" }
	}
	if cfg.Clock == nil {
		cfg.Clock = time.Now
	}
	if cfg.Logger == nil {
		cfg.Logger = nopLogger{}
	}
	return &Store{
		repo:        repo,
		idGen:       cfg.IDGen,
		clock:       cfg.Clock,
		logger:      cfg.Logger,
		subscribers: map[int]func(State){},
	}
}

// Load replaces the in-memory state with the persisted one.
func (s *Store) Load(ctx context.Context) (State, error) {
	if s.repo == nil {
		return s.State(), nil
	}
	loaded, err := s.repo.LoadState(ctx)
	if err != nil {
		return State{}, fmt.Errorf("load state: %w", err)
	}
	loaded.normalizeActive()

	s.mu.Lock()
	s.state = loaded.Clone()
	subs := s.subscriberList()
	s.mu.Unlock()

	s.notify(subs, loaded)
	return loaded.Clone(), nil
}

// State returns a copy of the current state.
func (s *Store) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Clone()
}

// Dispatch reduces one action into the state, persists the result and notifies subscribers.
// On any failure the previous state is kept, unless the stored state had moved
// on, in which case the reloaded state is kept.
func (s *Store) Dispatch(ctx context.Context, action Action) (State, error) {
	if err := ctx.Err(); err != nil {
		return State{}, err
	}
	if action == nil {
		return State{}, fmt.Errorf("nil action: %w", ErrInvalidAction)
	}
	action = s.assignIDs(action)

	s.mu.Lock()
	before := s.state.Revision
	next, err := s.commitLocked(ctx, func(current State) (State, error) {
		return Reduce(current, action)
	})
	reloaded := s.state.Revision != before
	current := s.state.Clone()
	subs := s.subscriberList()
	s.mu.Unlock()

	if err != nil {
		s.logger.Error("dispatch rejected", "action", action.Kind(), "err", err)
		if reloaded {
			s.notify(subs, current)
		}
		return State{}, err
	}
	s.logger.Debug("dispatched action", "action", action.Kind(), "board", actionBoardName(action))
	s.recordHistory(ctx, action)
	s.notify(subs, next)
	return next.Clone(), nil
}

// commitLocked applies fn to the current state and persists the result. When
// another writer saved since the last load, the stored state is reloaded and
// fn is applied once more. Callers must hold s.mu.
func (s *Store) commitLocked(ctx context.Context, fn func(State) (State, error)) (State, error) {
	next, err := fn(s.state)
	if err != nil {
		return State{}, err
	}
	if s.repo == nil {
		s.state = next
		return next, nil
	}
	err = s.repo.SaveState(ctx, next)
	if errors.Is(err, ErrStaleState) {
		s.logger.Debug("stored state changed, reloading", "revision", s.state.Revision)
		loaded, loadErr := s.repo.LoadState(ctx)
		if loadErr != nil {
			return State{}, fmt.Errorf("reload state: %w", loadErr)
		}
		if loaded.BoardIndex(s.state.Active) >= 0 {
			loaded.Active = s.state.Active
		}
		loaded.normalizeActive()
		s.state = loaded
		if next, err = fn(loaded); err != nil {
			return State{}, err
		}
		err = s.repo.SaveState(ctx, next)
	}
	if err != nil {
		return State{}, fmt.Errorf("save state: %w", err)
	}
	next.Revision++
	s.state = next
	return next, nil
}

// Subscribe registers fn to receive every committed state. The returned func unsubscribes.
func (s *Store) Subscribe(fn func(State)) func() {
	if fn == nil {
		return func() {}
	}
	s.mu.Lock()
	id := s.nextSubID
	s.nextSubID++
	s.subscribers[id] = fn
	s.mu.Unlock()
	return func() {
		s.mu.Lock()
		delete(s.subscribers, id)
		s.mu.Unlock()
	}
}

// History lists the most recent committed actions, newest first.
func (s *Store) History(ctx context.Context, limit int) ([]HistoryEntry, error) {
	if s.repo == nil {
		return nil, nil
	}
	if limit <= 0 {
		limit = 50
	}
	return s.repo.ListHistory(ctx, limit)
}

// recordHistory appends a history entry; failures are logged and not returned.
func (s *Store) recordHistory(ctx context.Context, action Action) {
	if s.repo == nil || action.Kind() == ActionSetActiveBoard {
		return
	}
	entry := HistoryEntry{
		Kind:       action.Kind(),
		BoardName:  strings.TrimSpace(actionBoardName(action)),
		Summary:    actionSummary(action),
		OccurredAt: s.clock().UTC(),
	}
	if err := s.repo.AppendHistory(ctx, entry); err != nil {
		s.logger.Error("append history failed", "action", action.Kind(), "err", err)
	}
}

// assignIDs fills missing column and task ids on drafts carried by action.
func (s *Store) assignIDs(action Action) Action {
	switch a := action.(type) {
	case AddBoard:
		a.Board = s.boardWithIDs(a.Board)
		return a
	case EditBoardAndSave:
		a.Board = s.boardWithIDs(a.Board)
		return a
	case AddTask:
		if strings.TrimSpace(a.Task.ID) == "" {
			a.Task = a.Task.Clone()
			a.Task.ID = s.idGen()
		}
		return a
	default:
		return action
	}
}

func (s *Store) boardWithIDs(in domain.Board) domain.Board {
	board := in.Clone()
	for colIdx := range board.Columns {
		if strings.TrimSpace(board.Columns[colIdx].ID) == "" {
			board.Columns[colIdx].ID = s.idGen()
		}
		for taskIdx := range board.Columns[colIdx].Tasks {
			if strings.TrimSpace(board.Columns[colIdx].Tasks[taskIdx].ID) == "" {
				board.Columns[colIdx].Tasks[taskIdx].ID = s.idGen()
			}
		}
	}
	return board
}

// subscriberList snapshots subscribers; callers must hold s.mu.
func (s *Store) subscriberList() []func(State) {
	out := make([]func(State), 0, len(s.subscribers))
	for _, fn := range s.subscribers {
		out = append(out, fn)
	}
	return out
}

func (s *Store) notify(subs []func(State), state State) {
	for _, fn := range subs {
		fn(state.Clone())
	}
}

type nopLogger struct{}

func (nopLogger) Debug(string, ...any) {}
func (nopLogger) Error(string, ...any) {}
