package cli

import (
	"io"
	"strings"

	"notes-frontend/internal/docs"

	"github.com/charmbracelet/glamour"
	"github.com/spf13/cobra"
)

func newDocsCmd(app *App) *cobra.Command {
	var raw bool
	cmd := &cobra.Command{
		Use:   "docs [topic]",
		Short: "Show built-in documentation",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				return writeOut(cmd, app, docs.Topics(), "notes docs <topic>")
			}
			md, ok := docs.Get(args[0])
			if !ok {
				return writeErr(cmd, errNotFound("docs topic", args[0]))
			}
			if raw {
				_, err := io.WriteString(cmd.OutOrStdout(), md)
				return err
			}
			out, err := glamour.Render(md, "auto")
			if err != nil {
				return writeErr(cmd, err)
			}
			_, err = io.WriteString(cmd.OutOrStdout(), strings.TrimLeft(out, "\n"))
			return err
		},
	}
	cmd.Flags().BoolVar(&raw, "raw", false, "Print the markdown source")
	return cmd
}
