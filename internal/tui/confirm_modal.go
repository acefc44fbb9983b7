package tui

import (
	"strings"

	"notes-frontend/internal/dashboard"

	"github.com/charmbracelet/lipgloss"
)

type confirmModalFocus int

const (
	confirmFocusCancel confirmModalFocus = iota
	confirmFocusConfirm
)

func (f confirmModalFocus) next() confirmModalFocus {
	if f == confirmFocusCancel {
		return confirmFocusConfirm
	}
	return confirmFocusCancel
}

func renderConfirmModal(width int, c dashboard.ConfirmView, focus confirmModalFocus) string {
	// Avoid borders here: some terminals show background artifacts when nesting bordered
	// components inside a modal.
	btnBase := lipgloss.NewStyle().
		Padding(0, 1).
		Foreground(colorSurfaceFg).
		Background(colorControlBg)
	btnActive := btnBase.
		Foreground(colorSelectedFg).
		Background(colorSelectedBg).
		Bold(true)
	btnDanger := btnActive.
		Foreground(colorAccentFg).
		Background(colorDanger)

	confirm := btnBase.Render(c.ConfirmLabel)
	cancel := btnBase.Render(c.CancelLabel)
	if focus == confirmFocusConfirm {
		confirm = btnDanger.Render(c.ConfirmLabel)
	}
	if focus == confirmFocusCancel {
		cancel = btnActive.Render(c.CancelLabel)
	}
	if c.Busy {
		confirm = styleMuted().Render(c.ConfirmLabel)
		cancel = styleMuted().Render(c.CancelLabel)
	}

	controls := lipgloss.JoinHorizontal(lipgloss.Top, cancel, " ", confirm)

	bodyW := modalBodyWidth(width)
	body := lipgloss.NewStyle().Width(bodyW).Render(c.Message)
	help := styleMuted().Width(bodyW).Render("tab: focus   enter: select   y/n   esc: cancel")

	content := strings.Join([]string{
		body,
		"",
		controls,
		"",
		help,
	}, "\n")
	return renderModalBox(width, c.Title, content)
}
