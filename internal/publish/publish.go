// Package publish exports a tenant's notes as a folder of markdown files.
package publish

import (
	"errors"
	"os"
	"path/filepath"
	"strings"

	"notes-frontend/internal/model"
)

type WriteOptions struct {
	Overwrite bool
}

type WriteResult struct {
	Written []string `json:"written"`
}

// WriteNotes writes <toDir>/index.md and one <toDir>/notes/<id>.md per note.
// It stops at the first error.
func WriteNotes(t *model.Tenant, notes []model.Note, toDir string, opt WriteOptions) (WriteResult, error) {
	toDir = strings.TrimSpace(toDir)
	if toDir == "" {
		return WriteResult{}, errors.New("missing --to")
	}
	toDir = filepath.Clean(toDir)

	notesDir := filepath.Join(toDir, "notes")
	if err := os.MkdirAll(notesDir, 0o755); err != nil {
		return WriteResult{}, err
	}

	indexPath := filepath.Join(toDir, "index.md")
	if err := writeFile(indexPath, []byte(RenderIndexMarkdown(t, notes)), opt.Overwrite); err != nil {
		return WriteResult{}, err
	}

	written := []string{indexPath}
	for _, n := range notes {
		id := strings.TrimSpace(n.ID)
		if id == "" || strings.ContainsAny(id, `/\`) || id == "." || id == ".." {
			return WriteResult{}, errors.New("note has an unusable id: " + n.ID)
		}
		p := filepath.Join(notesDir, id+".md")
		if err := writeFile(p, []byte(RenderNoteMarkdown(n)), opt.Overwrite); err != nil {
			return WriteResult{}, err
		}
		written = append(written, p)
	}
	return WriteResult{Written: written}, nil
}

func writeFile(path string, b []byte, overwrite bool) error {
	if !overwrite {
		if _, err := os.Stat(path); err == nil {
			return errors.New("file exists (use --overwrite): " + path)
		}
	}
	return os.WriteFile(path, b, 0o644)
}
