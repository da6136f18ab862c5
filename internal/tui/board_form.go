package tui

import (
	"strings"

	"charm.land/bubbles/v2/textinput"
	tea "charm.land/bubbletea/v2"
	"github.com/hylla/kanboard/internal/app"
	"github.com/hylla/kanboard/internal/domain"
)

// boardFormMode selects between adding and editing a board.
type boardFormMode int

// boardFormMode values.
const (
	boardFormAdd boardFormMode = iota
	boardFormEdit
)

// columnRow is one editable column name. origin indexes the draft's columns, -1 for new rows.
type columnRow struct {
	input  textinput.Model
	origin int
}

// boardForm edits a board draft's name and columns.
type boardForm struct {
	mode    boardFormMode
	base    domain.Board
	name    textinput.Model
	columns []columnRow
	focus   int
	err     string
}

func (f boardForm) kind() modalKind {
	if f.mode == boardFormEdit {
		return modalEditBoard
	}
	return modalAddBoard
}

// newBoardForm builds a form over a copy of the draft and focuses the name field.
func newBoardForm(mode boardFormMode, draft domain.Board) (boardForm, tea.Cmd) {
	f := boardForm{
		mode: mode,
		base: draft.Clone(),
		name: newModalInput("", "e.g. Web Design", draft.Name, 80),
	}
	for i, col := range draft.Columns {
		f.columns = append(f.columns, columnRow{
			input:  newModalInput("", "e.g. Todo", col.Name, 40),
			origin: i,
		})
	}
	cmd := f.focusField(0)
	return f, cmd
}

// titles returns the heading and submit label.
func (f boardForm) titles() (string, string) {
	if f.mode == boardFormEdit {
		return "Edit Board", "Save Changes"
	}
	return "Add new board", "Create New Board"
}

// fieldCount returns the number of focusable fields.
func (f boardForm) fieldCount() int {
	return 1 + len(f.columns)
}

// focusField focuses one field and blurs the rest.
func (f *boardForm) focusField(idx int) tea.Cmd {
	idx = clamp(idx, 0, f.fieldCount()-1)
	f.focus = idx
	f.name.Blur()
	for i := range f.columns {
		f.columns[i].input.Blur()
	}
	if idx == 0 {
		return f.name.Focus()
	}
	return f.columns[idx-1].input.Focus()
}

// canAddColumn reports whether another column row fits.
func (f boardForm) canAddColumn() bool {
	return len(f.columns) < domain.MaxColumns
}

// addColumn appends a blank column row and focuses it.
func (f *boardForm) addColumn() tea.Cmd {
	if !f.canAddColumn() {
		return nil
	}
	f.columns = append(f.columns, columnRow{
		input:  newModalInput("", "e.g. Review", "", 40),
		origin: -1,
	})
	return f.focusField(len(f.columns))
}

// removeFocusedColumn drops the focused column row.
func (f *boardForm) removeFocusedColumn() tea.Cmd {
	idx := f.focus - 1
	if idx < 0 || idx >= len(f.columns) {
		return nil
	}
	f.columns = append(f.columns[:idx:idx], f.columns[idx+1:]...)
	return f.focusField(f.focus)
}

// board assembles the edited board. Existing rows keep their tasks and IDs.
func (f boardForm) board() domain.Board {
	out := domain.Board{Name: strings.TrimSpace(f.name.Value())}
	for _, row := range f.columns {
		name := strings.TrimSpace(row.input.Value())
		if row.origin < 0 || row.origin >= len(f.base.Columns) {
			out.Columns = append(out.Columns, domain.Column{Name: name})
			continue
		}
		col := f.base.Columns[row.origin].Clone()
		if err := col.Rename(name); err != nil {
			col.Name = name
		}
		out.Columns = append(out.Columns, col)
	}
	return out
}

// update forwards a message to the focused input.
func (f boardForm) update(msg tea.Msg) (boardForm, tea.Cmd) {
	var cmd tea.Cmd
	if f.focus == 0 {
		f.name, cmd = f.name.Update(msg)
		return f, cmd
	}
	idx := f.focus - 1
	if idx < len(f.columns) {
		f.columns[idx].input, cmd = f.columns[idx].input.Update(msg)
	}
	return f, cmd
}

// handleBoardFormKey handles keys for the add and edit board forms.
func (m Model) handleBoardFormKey(f boardForm, msg tea.KeyPressMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		if f.mode == boardFormAdd {
			m.newBoardDraft = f.board()
		}
		m.closeModal()
		return m, nil
	case "enter":
		board := f.board()
		if f.mode == boardFormAdd {
			m.newBoardDraft = board
			m.modal = f
			return m, m.dispatch(app.AddBoard{Board: board}, "The board added")
		}
		m.editBoardDraft = board
		m.modal = f
		return m, m.dispatch(app.EditBoardAndSave{Board: board, Original: f.base.Name}, "The board edited")
	case "tab", "down":
		cmd := f.focusField((f.focus + 1) % f.fieldCount())
		m.modal = f
		return m, cmd
	case "shift+tab", "up":
		cmd := f.focusField((f.focus - 1 + f.fieldCount()) % f.fieldCount())
		m.modal = f
		return m, cmd
	case "ctrl+n":
		cmd := f.addColumn()
		m.modal = f
		return m, cmd
	case "ctrl+x":
		cmd := f.removeFocusedColumn()
		m.modal = f
		return m, cmd
	}
	next, cmd := f.update(msg)
	m.modal = next
	return m, cmd
}
