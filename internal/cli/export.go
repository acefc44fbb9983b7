package cli

import (
	"notes-frontend/internal/publish"

	"github.com/spf13/cobra"
)

func newExportCmd(app *App) *cobra.Command {
	var to string
	var overwrite bool
	cmd := &cobra.Command{
		Use:     "export",
		Short:   "Write every note to a folder of markdown files",
		Example: "notes export --to ./notes-backup",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			err := withBackend(ctx, app, func(b *backend) error {
				d, err := mountDashboard(ctx, app, b)
				if err != nil {
					return err
				}
				v := d.View()
				res, err := publish.WriteNotes(v.Tenant, v.Notes, to, publish.WriteOptions{Overwrite: overwrite})
				if err != nil {
					return err
				}
				return writeOut(cmd, app, res)
			})
			if err != nil {
				return writeErr(cmd, err)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&to, "to", "", "Output directory")
	cmd.Flags().BoolVar(&overwrite, "overwrite", false, "Replace files that already exist")
	return cmd
}
