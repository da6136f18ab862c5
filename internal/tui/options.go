package tui

import (
	"strings"
	"time"

	"github.com/atotto/clipboard"
)

// Option configures a Model.
type Option func(*Model)

// ClipboardWriter copies text to the system clipboard.
type ClipboardWriter func(string) error

// defaultToastDuration is how long a success notification stays visible.
const defaultToastDuration = 3 * time.Second

// WithDefaultColumns sets the column names a new-board draft starts with.
func WithDefaultColumns(names []string) Option {
	return func(m *Model) {
		out := make([]string, 0, len(names))
		for _, name := range names {
			if name = strings.TrimSpace(name); name != "" {
				out = append(out, name)
			}
		}
		m.defaultColumns = out
	}
}

// WithSidebar sets whether the board list starts visible.
func WithSidebar(show bool) Option {
	return func(m *Model) {
		m.showSidebar = show
	}
}

// WithToastDuration sets how long success notifications stay visible.
func WithToastDuration(d time.Duration) Option {
	return func(m *Model) {
		if d > 0 {
			m.toastDuration = d
		}
	}
}

// WithConfirmDelete sets whether deletes ask for confirmation first.
func WithConfirmDelete(confirm bool) Option {
	return func(m *Model) {
		m.confirmDelete = confirm
	}
}

// WithClipboardWriter replaces the system clipboard writer.
func WithClipboardWriter(write ClipboardWriter) Option {
	return func(m *Model) {
		if write != nil {
			m.copyText = write
		}
	}
}

// systemClipboard writes through the OS clipboard.
func systemClipboard(text string) error {
	return clipboard.WriteAll(text)
}
