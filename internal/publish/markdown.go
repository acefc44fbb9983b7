package publish

import (
	"bytes"
	"fmt"
	"sort"
	"strings"
	"time"

	"notes-frontend/internal/model"
)

// RenderNoteMarkdown renders one note as a standalone markdown page.
func RenderNoteMarkdown(n model.Note) string {
	var buf bytes.Buffer
	writeLn := func(s string) {
		buf.WriteString(s)
		buf.WriteString("\n")
	}

	writeLn("# " + strings.TrimSpace(n.Title))
	writeLn("")
	writeLn("## Meta")
	writeLn("")
	writeLn("- ID: " + n.ID)
	if !n.CreatedAt.IsZero() {
		writeLn("- Created: " + n.CreatedAt.UTC().Format(time.RFC3339))
	}
	if n.WasUpdated() {
		writeLn("- Updated: " + n.UpdatedAt.UTC().Format(time.RFC3339))
	}

	if body := strings.TrimSpace(n.Content); body != "" {
		writeLn("")
		writeLn("## Content")
		writeLn("")
		writeLn(body)
	}
	return buf.String()
}

// RenderIndexMarkdown lists notes newest first, linking each page.
func RenderIndexMarkdown(t *model.Tenant, notes []model.Note) string {
	var buf bytes.Buffer
	writeLn := func(s string) {
		buf.WriteString(s)
		buf.WriteString("\n")
	}

	title := "Notes"
	if t != nil {
		name := strings.TrimSpace(t.Name)
		if name == "" {
			name = t.Slug
		}
		if name != "" {
			title = "Notes: " + name
		}
	}
	writeLn("# " + title)
	writeLn("")
	if t != nil {
		writeLn(fmt.Sprintf("- Plan: %s", strings.ToUpper(string(t.PlanOrFree()))))
	}
	writeLn(fmt.Sprintf("- Notes: %d", len(notes)))
	writeLn("")

	if len(notes) == 0 {
		writeLn("_No notes yet._")
		return buf.String()
	}

	sorted := append([]model.Note(nil), notes...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].CreatedAt.After(sorted[j].CreatedAt)
	})
	for _, n := range sorted {
		line := fmt.Sprintf("- [%s](notes/%s.md)", escapeLinkText(n.Title), n.ID)
		if label := n.CreatedLabel(); label != "" {
			line += " (" + label + ")"
		}
		writeLn(line)
	}
	return buf.String()
}

func escapeLinkText(s string) string {
	s = strings.TrimSpace(s)
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, "[", `\[`)
	return strings.ReplaceAll(s, "]", `\]`)
}
