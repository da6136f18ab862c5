package app

import (
	"strings"

	"github.com/hylla/kanboard/internal/domain"
)

// State is the canonical board collection plus the active selection.
// Revision is the persisted revision the state was loaded from or last saved as.
type State struct {
	Boards   []domain.Board
	Active   string
	Revision int64
}

// Clone returns a deep copy of the state.
func (s State) Clone() State {
	out := State{
		Boards:   make([]domain.Board, 0, len(s.Boards)),
		Active:   s.Active,
		Revision: s.Revision,
	}
	for _, board := range s.Boards {
		out.Boards = append(out.Boards, board.Clone())
	}
	return out
}

// BoardIndex returns the position of the named board, or -1.
func (s State) BoardIndex(name string) int {
	name = strings.TrimSpace(name)
	if name == "" {
		return -1
	}
	for idx, board := range s.Boards {
		if board.Name == name {
			return idx
		}
	}
	return -1
}

// Board returns a copy of the named board.
func (s State) Board(name string) (domain.Board, bool) {
	idx := s.BoardIndex(name)
	if idx < 0 {
		return domain.Board{}, false
	}
	return s.Boards[idx].Clone(), true
}

// BoardNames lists board names in collection order.
func (s State) BoardNames() []string {
	out := make([]string, 0, len(s.Boards))
	for _, board := range s.Boards {
		out = append(out, board.Name)
	}
	return out
}

// ActiveBoard returns a copy of the active board, or false when none is selected.
func ActiveBoard(s State) (domain.Board, bool) {
	return s.Board(s.Active)
}

// normalizeActive keeps the active selection pointing at an existing board.
func (s *State) normalizeActive() {
	if len(s.Boards) == 0 {
		s.Active = ""
		return
	}
	if s.BoardIndex(s.Active) < 0 {
		s.Active = s.Boards[0].Name
	}
}
