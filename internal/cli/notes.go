package cli

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"notes-frontend/internal/dashboard"
	"notes-frontend/internal/forms"
	"notes-frontend/internal/model"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"
)

func newNotesCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "notes",
		Short: "List and manage your tenant's notes",
	}
	cmd.AddCommand(newNotesListCmd(app))
	cmd.AddCommand(newNotesShowCmd(app))
	cmd.AddCommand(newNotesCreateCmd(app))
	cmd.AddCommand(newNotesUpdateCmd(app))
	cmd.AddCommand(newNotesDeleteCmd(app))
	return cmd
}

func newNotesListCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List notes",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			err := withBackend(ctx, app, func(b *backend) error {
				d, err := mountDashboard(ctx, app, b)
				if err != nil {
					return err
				}
				v := d.View()
				hints := []string{"notes notes show <id>"}
				if v.LimitReached() {
					hints = append(hints, "notes tenant upgrade")
				} else {
					hints = append(hints, "notes notes create --title <title>")
				}
				return writeOut(cmd, app, v.Notes, hints...)
			})
			if err != nil {
				return writeErr(cmd, err)
			}
			return nil
		},
	}
}

func newNotesShowCmd(app *App) *cobra.Command {
	var render bool
	cmd := &cobra.Command{
		Use:   "show <note-id>",
		Short: "Show one note",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			err := withBackend(ctx, app, func(b *backend) error {
				n, err := b.findNote(ctx, args[0])
				if err != nil {
					return err
				}
				if render {
					return renderNote(cmd.OutOrStdout(), n)
				}
				return writeOut(cmd, app, n, "notes notes update "+n.ID, "notes notes delete "+n.ID)
			})
			if err != nil {
				return writeErr(cmd, err)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&render, "render", false, "Render the note as styled markdown instead of JSON")
	return cmd
}

func renderNote(w io.Writer, n model.Note) error {
	md := "# " + n.Title + "\n\n"
	if label := n.CreatedLabel(); label != "" {
		md += "_" + label + "_\n\n"
	}
	md += n.Content + "\n"
	out, err := glamour.Render(md, "auto")
	if err != nil {
		return err
	}
	_, err = io.WriteString(w, out)
	return err
}

// readContent resolves --content / --content-file; "-" reads stdin.
func readContent(cmd *cobra.Command, content, file string) (string, error) {
	if file == "" {
		return content, nil
	}
	if content != "" {
		return "", errors.New("use either --content or --content-file, not both")
	}
	var b []byte
	var err error
	if file == "-" {
		b, err = io.ReadAll(cmd.InOrStdin())
	} else {
		b, err = os.ReadFile(file)
	}
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func newNotesCreateCmd(app *App) *cobra.Command {
	var title, content, contentFile string
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a note",
		Example: strings.TrimSpace(`
notes notes create --title "Groceries" --content "milk, eggs"
echo "body" | notes notes create --title "From stdin" --content-file -
`),
		RunE: func(cmd *cobra.Command, args []string) error {
			body, err := readContent(cmd, content, contentFile)
			if err != nil {
				return writeErr(cmd, err)
			}
			ctx := cmd.Context()
			err = withBackend(ctx, app, func(b *backend) error {
				d, err := mountDashboard(ctx, app, b)
				if err != nil {
					return err
				}
				if err := d.OpenCreate(); err != nil {
					if errors.Is(err, dashboard.ErrNoteLimit) {
						return fmt.Errorf("You've reached your Free plan limit! Upgrade to Pro to create unlimited notes. (%d of %d notes used)", len(d.View().Notes), model.FreePlanNoteLimit)
					}
					return err
				}
				d.ChangeNote(forms.FieldTitle, title)
				d.ChangeNote(forms.FieldContent, body)
				if err := d.SubmitNote(ctx); err != nil {
					if errors.Is(err, forms.ErrInvalid) {
						return noteFormError(d.View())
					}
					return actionError(d, err)
				}
				n, ok := newestNote(d.View().Notes, strings.TrimSpace(title))
				if !ok {
					n = model.Note{Title: strings.TrimSpace(title), Content: strings.TrimSpace(body)}
				}
				return writeOut(cmd, app, n, "notes notes list")
			})
			if err != nil {
				return writeErr(cmd, err)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&title, "title", "", "Note title (3-100 characters)")
	cmd.Flags().StringVar(&content, "content", "", "Note content (up to 2000 characters)")
	cmd.Flags().StringVar(&contentFile, "content-file", "", "Read content from a file (- for stdin)")
	return cmd
}

// newestNote finds the most recently created note with title.
func newestNote(notes []model.Note, title string) (model.Note, bool) {
	var out model.Note
	found := false
	for _, n := range notes {
		if n.Title != title {
			continue
		}
		if !found || n.CreatedAt.After(out.CreatedAt) {
			out, found = n, true
		}
	}
	return out, found
}

func newNotesUpdateCmd(app *App) *cobra.Command {
	var title, content, contentFile string
	cmd := &cobra.Command{
		Use:   "update <note-id>",
		Short: "Edit a note's title or content",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id := strings.TrimSpace(args[0])
			titleSet := cmd.Flags().Changed("title")
			contentSet := cmd.Flags().Changed("content") || cmd.Flags().Changed("content-file")
			if !titleSet && !contentSet {
				return writeErr(cmd, errors.New("nothing to update: pass --title and/or --content"))
			}
			body, err := readContent(cmd, content, contentFile)
			if err != nil {
				return writeErr(cmd, err)
			}
			ctx := cmd.Context()
			err = withBackend(ctx, app, func(b *backend) error {
				d, err := mountDashboard(ctx, app, b)
				if err != nil {
					return err
				}
				if err := d.OpenEdit(id); err != nil {
					if errors.Is(err, dashboard.ErrNotFound) {
						return errNotFound("note", id)
					}
					return err
				}
				if titleSet {
					d.ChangeNote(forms.FieldTitle, title)
				}
				if contentSet {
					d.ChangeNote(forms.FieldContent, body)
				}
				if err := d.SubmitNote(ctx); err != nil {
					if errors.Is(err, forms.ErrInvalid) {
						return noteFormError(d.View())
					}
					return actionError(d, err)
				}
				n, ok := d.Note(id)
				if !ok {
					return errNotFound("note", id)
				}
				return writeOut(cmd, app, n, "notes notes show "+id)
			})
			if err != nil {
				return writeErr(cmd, err)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&title, "title", "", "New title")
	cmd.Flags().StringVar(&content, "content", "", "New content")
	cmd.Flags().StringVar(&contentFile, "content-file", "", "Read new content from a file (- for stdin)")
	return cmd
}

func newNotesDeleteCmd(app *App) *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "delete <note-id>",
		Short: "Delete a note",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id := strings.TrimSpace(args[0])
			ctx := cmd.Context()
			err := withBackend(ctx, app, func(b *backend) error {
				d, err := mountDashboard(ctx, app, b)
				if err != nil {
					return err
				}
				if err := d.RequestDelete(id); err != nil {
					if errors.Is(err, dashboard.ErrNotFound) {
						return errNotFound("note", id)
					}
					return err
				}
				if !yes {
					ok, err := confirmDelete(cmd, d.View().Confirm)
					if err != nil {
						d.CancelDelete()
						return err
					}
					if !ok {
						d.CancelDelete()
						return writeOut(cmd, app, map[string]any{"id": id, "deleted": false})
					}
				}
				if err := d.ConfirmDelete(ctx); err != nil {
					return actionError(d, err)
				}
				return writeOut(cmd, app, map[string]any{"id": id, "deleted": true}, "notes notes list")
			})
			if err != nil {
				return writeErr(cmd, err)
			}
			return nil
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Delete without asking")
	return cmd
}

func confirmDelete(cmd *cobra.Command, c *dashboard.ConfirmView) (bool, error) {
	if c == nil {
		return false, dashboard.ErrNoDeleteSet
	}
	if !interactive(cmd) {
		return false, errors.New("refusing to delete without confirmation; pass --yes")
	}
	confirmed := false
	form := huh.NewForm(huh.NewGroup(
		huh.NewConfirm().
			Title(c.Title).
			Description(c.Message).
			Affirmative(c.ConfirmLabel).
			Negative(c.CancelLabel).
			Value(&confirmed),
	))
	if err := form.Run(); err != nil {
		return false, fmt.Errorf("prompt failed: %w", err)
	}
	return confirmed, nil
}
