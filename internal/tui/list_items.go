package tui

import (
	"notes-frontend/internal/model"

	"github.com/charmbracelet/bubbles/list"
)

type noteItem struct {
	note     model.Note
	deleting bool
}

func (i noteItem) FilterValue() string { return i.note.Title }

func newList(items []list.Item) list.Model {
	l := list.New(items, newNoteCardDelegate(), 0, 0)
	// We render our own header and footer, so keep list chrome minimal.
	l.SetShowTitle(false)
	l.SetShowHelp(false)
	l.SetShowStatusBar(false)
	l.SetShowPagination(false)
	// Letter keys are dashboard actions; filtering would swallow them.
	l.SetFilteringEnabled(false)
	l.KeyMap.Quit.SetEnabled(false)
	// Emacs-style navigation aliases.
	l.KeyMap.CursorUp.SetKeys(append(l.KeyMap.CursorUp.Keys(), "ctrl+p")...)
	l.KeyMap.CursorDown.SetKeys(append(l.KeyMap.CursorDown.Keys(), "ctrl+n")...)
	return l
}

// setNotes replaces the list's items, keeping the selection on the same note
// when it still exists.
func setNotes(l *list.Model, notes []model.Note, deletingID string) {
	curID := ""
	if it, ok := l.SelectedItem().(noteItem); ok {
		curID = it.note.ID
	}
	items := make([]list.Item, 0, len(notes))
	for _, n := range notes {
		items = append(items, noteItem{note: n, deleting: n.ID == deletingID})
	}
	l.SetItems(items)
	if curID != "" {
		selectListItemByID(l, curID)
	}
}

func selectListItemByID(l *list.Model, id string) {
	for i, it := range l.Items() {
		if n, ok := it.(noteItem); ok && n.note.ID == id {
			l.Select(i)
			return
		}
	}
}

func selectedNote(l list.Model) (model.Note, bool) {
	it, ok := l.SelectedItem().(noteItem)
	if !ok {
		return model.Note{}, false
	}
	return it.note, true
}
