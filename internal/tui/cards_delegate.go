package tui

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	xansi "github.com/charmbracelet/x/ansi"
)

// noteCardDelegate renders each note as a bordered card: title, a one-line
// excerpt, and the creation date.
type noteCardDelegate struct {
	normalCard   lipgloss.Style
	selectedCard lipgloss.Style
	deletingCard lipgloss.Style

	titleStyle lipgloss.Style
	metaStyle  lipgloss.Style
	badgeStyle lipgloss.Style
}

func newNoteCardDelegate() noteCardDelegate {
	base := lipgloss.NewStyle().
		Width(0). // Set per-render.
		Padding(0, 1, 0, 2).
		Border(lipgloss.RoundedBorder()).
		BorderForeground(colorCardBorder).
		Foreground(colorSurfaceFg)

	return noteCardDelegate{
		normalCard:   base,
		selectedCard: base.BorderForeground(colorAccent),
		deletingCard: base.BorderForeground(colorDanger),
		titleStyle:   lipgloss.NewStyle().Bold(true).Foreground(colorSurfaceFg),
		metaStyle:    lipgloss.NewStyle().Foreground(colorCardMeta),
		badgeStyle:   lipgloss.NewStyle().Foreground(colorAccent),
	}
}

func (d noteCardDelegate) Height() int  { return 5 } // 3 inner lines + border top/bottom
func (d noteCardDelegate) Spacing() int { return 0 }
func (d noteCardDelegate) Update(_ tea.Msg, _ *list.Model) tea.Cmd {
	return nil
}

func (d noteCardDelegate) Render(w io.Writer, m list.Model, index int, item list.Item) {
	it, ok := item.(noteItem)
	totalW := m.Width()
	if !ok || totalW < 12 {
		fmt.Fprint(w, "")
		return
	}

	card := d.normalCard
	if index == m.Index() {
		card = d.selectedCard
	}
	if it.deleting {
		card = d.deletingCard
	}
	innerW := totalW - card.GetHorizontalFrameSize()
	if innerW < 1 {
		innerW = 1
	}
	card = card.Width(innerW)

	title := strings.TrimSpace(it.note.Title)
	if title == "" {
		title = "(untitled)"
	}
	badge := ""
	if it.note.WasUpdated() {
		badge = " " + d.badgeStyle.Render("Updated")
	}
	excerpt := oneLine(it.note.Excerpt(120))
	if excerpt == "" {
		excerpt = "(no content)"
	}
	meta := it.note.CreatedLabel()
	if it.deleting {
		meta = "Deleting..."
	}

	lines := []string{
		d.titleStyle.Render(truncateToWidth(title, innerW-xansi.StringWidth(badge))) + badge,
		d.metaStyle.Render(truncateToWidth(excerpt, innerW)),
		d.metaStyle.Render(meta),
	}
	for i := range lines {
		lines[i] = padOrCutANSI(lines[i], innerW)
	}
	fmt.Fprint(w, card.Render(strings.Join(lines, "\n")))
}

func oneLine(s string) string {
	return strings.TrimSpace(strings.Join(strings.Fields(s), " "))
}

func padOrCutANSI(s string, w int) string {
	cur := xansi.StringWidth(s)
	switch {
	case cur < w:
		return s + strings.Repeat(" ", w-cur)
	case cur > w:
		return xansi.Cut(s, 0, w) + "\x1b[0m"
	default:
		return s
	}
}
