package tui

import "charm.land/bubbles/v2/key"

// keyMap holds board-mode bindings.
type keyMap struct {
	quit          key.Binding
	toggleHelp    key.Binding
	moveLeft      key.Binding
	moveRight     key.Binding
	moveUp        key.Binding
	moveDown      key.Binding
	openTask      key.Binding
	editTask      key.Binding
	addTask       key.Binding
	deleteTask    key.Binding
	newBoard      key.Binding
	editBoard     key.Binding
	newColumn     key.Binding
	deleteBoard   key.Binding
	nextBoard     key.Binding
	prevBoard     key.Binding
	toggleSidebar key.Binding
}

// newKeyMap constructs key map.
func newKeyMap() keyMap {
	return keyMap{
		quit:          key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
		toggleHelp:    key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "toggle help")),
		moveLeft:      key.NewBinding(key.WithKeys("h", "left"), key.WithHelp("h/←", "column left")),
		moveRight:     key.NewBinding(key.WithKeys("l", "right"), key.WithHelp("l/→", "column right")),
		moveUp:        key.NewBinding(key.WithKeys("k", "up"), key.WithHelp("k/↑", "task up")),
		moveDown:      key.NewBinding(key.WithKeys("j", "down"), key.WithHelp("j/↓", "task down")),
		openTask:      key.NewBinding(key.WithKeys("enter", "i"), key.WithHelp("enter", "open")),
		editTask:      key.NewBinding(key.WithKeys("e"), key.WithHelp("e", "edit task")),
		addTask:       key.NewBinding(key.WithKeys("n"), key.WithHelp("n", "new task")),
		deleteTask:    key.NewBinding(key.WithKeys("d"), key.WithHelp("d", "delete task")),
		newBoard:      key.NewBinding(key.WithKeys("N", "shift+n"), key.WithHelp("N", "new board")),
		editBoard:     key.NewBinding(key.WithKeys("E", "shift+e"), key.WithHelp("E", "edit board")),
		newColumn:     key.NewBinding(key.WithKeys("c"), key.WithHelp("c", "new column")),
		deleteBoard:   key.NewBinding(key.WithKeys("X", "shift+x"), key.WithHelp("X", "delete board")),
		nextBoard:     key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "next board")),
		prevBoard:     key.NewBinding(key.WithKeys("shift+tab"), key.WithHelp("shift+tab", "previous board")),
		toggleSidebar: key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "toggle sidebar")),
	}
}

// ShortHelp handles short help.
func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{
		k.openTask, k.addTask, k.newBoard, k.editBoard, k.newColumn, k.toggleHelp, k.quit,
	}
}

// FullHelp handles full help.
func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.openTask, k.editTask, k.addTask, k.deleteTask},
		{k.newBoard, k.editBoard, k.newColumn, k.deleteBoard},
		{k.moveLeft, k.moveRight, k.moveUp, k.moveDown},
		{k.nextBoard, k.prevBoard, k.toggleSidebar, k.toggleHelp, k.quit},
	}
}
