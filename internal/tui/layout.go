package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	xansi "github.com/charmbracelet/x/ansi"
)

// normalizePane forces s to be exactly width columns wide (ANSI-aware) and height
// lines tall. This makes split-pane rendering stable when using lipgloss.JoinHorizontal.
func normalizePane(s string, width, height int) string {
	if width < 0 {
		width = 0
	}
	if height < 0 {
		height = 0
	}

	lines := strings.Split(s, "\n")

	if height > 0 {
		if len(lines) > height {
			lines = lines[:height]
		}
		for len(lines) < height {
			lines = append(lines, "")
		}
	}

	for i, ln := range lines {
		w := xansi.StringWidth(ln)
		if w > width {
			ln = truncateToWidth(ln, width)
			w = xansi.StringWidth(ln)
		}
		if w < width {
			ln += strings.Repeat(" ", width-w)
		}
		lines[i] = ln
	}

	return strings.Join(lines, "\n")
}

// truncateToWidth cuts s to width columns, marking the cut with an ellipsis.
func truncateToWidth(s string, width int) string {
	switch {
	case width <= 0:
		return ""
	case xansi.StringWidth(s) <= width:
		return s
	case width == 1:
		return xansi.Cut(s, 0, 1)
	}
	return xansi.Cut(s, 0, width-1) + "…"
}

const (
	modalMinWidth = 32
	modalPadX     = 2
)

// modalBoxWidth clamps the modal's preferred column count to the screen. A
// preferred width of 0 fills the screen.
func modalBoxWidth(screenW, preferred int) int {
	w := preferred
	if w <= 0 || w > screenW-4 {
		w = screenW - 4
	}
	if w < modalMinWidth {
		w = modalMinWidth
	}
	return w
}

// modalBodyWidth is the usable content width inside a modal box.
func modalBodyWidth(boxW int) int {
	w := boxW - 2 - 2*modalPadX
	if w < 10 {
		w = 10
	}
	return w
}

// renderModalBox draws a titled, bordered box width columns wide.
func renderModalBox(width int, title string, content string) string {
	bodyW := modalBodyWidth(width)
	header := lipgloss.NewStyle().
		Bold(true).
		Width(bodyW).
		Foreground(colorModalHeaderFg).
		Background(colorModalHeaderBg).
		Render(truncateToWidth(title, bodyW))

	box := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(colorAccent).
		Padding(1, modalPadX).
		Width(width - 2)
	return box.Render(header + "\n\n" + content)
}

// placeCenter centers block on a width x height screen.
func placeCenter(width, height int, block string) string {
	if width <= 0 || height <= 0 {
		return block
	}
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, block)
}
