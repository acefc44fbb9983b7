package tui

import (
	"fmt"
	"strings"

	"notes-frontend/internal/dashboard"
	"notes-frontend/internal/model"
	"notes-frontend/internal/toast"

	"github.com/charmbracelet/lipgloss"
)

// bannerHeight is the number of rows above and below the note list.
const bannerHeight = 9

func (m appModel) View() string {
	switch m.screen {
	case screenLogin:
		return m.viewLogin()
	case screenDashboard:
		if m.dash != nil {
			return m.viewDashboard(m.dash.View())
		}
	}
	return placeCenter(m.screenWidth(), m.screenHeight(), styleMuted().Render("Loading..."))
}

func (m appModel) viewDashboard(v dashboard.View) string {
	if v.Modal != dashboard.ModalNone {
		return m.viewModal(v)
	}
	w := m.screenWidth()

	header := lipgloss.NewStyle().Bold(true).Render("Welcome back!")
	if v.User != nil {
		header += "  " + styleMuted().Render(fmt.Sprintf("%s · %s", v.User.Email, v.User.Role))
	}

	var top []string
	top = append(top, header, renderPlanBanner(v, w))
	if v.CanInvite() {
		top = append(top, lipgloss.NewStyle().Foreground(colorAccent).Render("Admin Dashboard")+
			styleMuted().Render("  i: Invite User"))
	}
	stats := fmt.Sprintf("Total Notes: %d", len(v.Notes))
	if v.CreateDisabled() {
		stats += styleMuted().Render("   (Create New Note unavailable)")
	} else {
		stats += styleMuted().Render("   n: Create New Note")
	}
	top = append(top, stats)
	if v.LimitReached() {
		top = append(top, lipgloss.NewStyle().Foreground(colorWarn).Render(
			"You've reached your Free plan limit! Upgrade to Pro to create unlimited notes."))
	}
	if v.Error != "" {
		top = append(top, styleError().Render(v.Error))
	}

	bodyH := max(5, m.screenHeight()-bannerHeight)
	listW, previewW := m.paneWidths()
	var body string
	switch {
	case v.LoadingNotes && len(v.Notes) == 0:
		body = normalizePane(styleMuted().Render("Loading your notes..."), w, bodyH)
	case len(v.Notes) == 0:
		empty := lipgloss.NewStyle().Bold(true).Render("No notes yet") + "\n" +
			styleMuted().Render("Press n to create your first note.")
		body = normalizePane(empty, w, bodyH)
	default:
		l := m.notes
		l.SetSize(listW, bodyH)
		left := normalizePane(l.View(), listW, bodyH)
		right := normalizePane(m.renderPreview(previewW-2, bodyH), previewW, bodyH)
		body = lipgloss.JoinHorizontal(lipgloss.Top, left, " ", right)
	}

	footer := styleMuted().Render(helpLine(v))
	parts := append(top, "", body, renderToasts(m.dash.Toasts().Active(m.now())), footer)
	return strings.Join(parts, "\n")
}

func renderPlanBanner(v dashboard.View, width int) string {
	plan := model.PlanFree
	if v.Tenant != nil {
		plan = v.Tenant.PlanOrFree()
	}
	label := strings.ToUpper(string(plan)) + " Plan"
	if v.IsProPlan() {
		return lipgloss.NewStyle().Bold(true).Foreground(colorPro).Render(label) +
			"  Unlimited notes available"
	}

	meterW := max(10, min(30, width/4))
	filled := v.UsagePercent() * meterW / 100
	meter := lipgloss.NewStyle().Foreground(colorAccent).Render(strings.Repeat("█", filled)) +
		styleMuted().Render(strings.Repeat("░", meterW-filled))
	line := fmt.Sprintf("%s  %d of %d notes remaining  %s",
		lipgloss.NewStyle().Bold(true).Render(label),
		v.RemainingNotes(), model.FreePlanNoteLimit, meter)
	switch {
	case v.Upgrading:
		line += "  " + lipgloss.NewStyle().Foreground(colorPro).Render("Upgrading...")
	case v.CanUpgrade():
		line += "  " + lipgloss.NewStyle().Foreground(colorPro).Render("u: Upgrade to Pro")
	}
	return line
}

func (m appModel) renderPreview(width, height int) string {
	n, ok := selectedNote(m.notes)
	if !ok {
		return styleMuted().Render("No note selected.")
	}
	head := lipgloss.NewStyle().Bold(true).Render(n.Title)
	if n.WasUpdated() {
		head += "  " + lipgloss.NewStyle().Foreground(colorAccent).Render("Updated")
	}
	meta := styleMuted().Render(n.CreatedLabel())
	content := renderMarkdown(n.Content, width)
	if content == "" {
		content = styleMuted().Render("(no content)")
	}
	return strings.Join([]string{head, meta, "", content}, "\n")
}

func renderToasts(ts []toast.Toast) string {
	if len(ts) == 0 {
		return ""
	}
	// Newest last; show at most two.
	if len(ts) > 2 {
		ts = ts[len(ts)-2:]
	}
	lines := make([]string, 0, len(ts))
	for _, t := range ts {
		if t.Kind == toast.KindError {
			lines = append(lines, lipgloss.NewStyle().Foreground(colorDanger).Render("✗ "+t.Message))
			continue
		}
		lines = append(lines, lipgloss.NewStyle().Foreground(colorSuccess).Render("✓ "+t.Message))
	}
	return strings.Join(lines, "\n")
}

func helpLine(v dashboard.View) string {
	keys := []string{"↑/↓: select", "e: edit", "d: delete"}
	if !v.CreateDisabled() {
		keys = append(keys, "n: new")
	}
	if v.CanInvite() {
		keys = append(keys, "i: invite")
	}
	if v.CanUpgrade() {
		keys = append(keys, "u: upgrade")
	}
	keys = append(keys, "r: refresh", "L: logout", "q: quit")
	return strings.Join(keys, "  ")
}
