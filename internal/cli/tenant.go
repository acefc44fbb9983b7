package cli

import (
	"errors"
	"fmt"
	"strings"

	"notes-frontend/internal/dashboard"
	"notes-frontend/internal/forms"
	"notes-frontend/internal/model"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"
)

type planStatus struct {
	Tenant       *model.Tenant `json:"tenant,omitempty"`
	Plan         model.Plan    `json:"plan"`
	NoteCount    int           `json:"noteCount"`
	NoteLimit    *int          `json:"noteLimit"`
	Remaining    *int          `json:"remaining"`
	LimitReached bool          `json:"limitReached"`
	CanUpgrade   bool          `json:"canUpgrade"`
}

func planStatusFor(v dashboard.View) planStatus {
	out := planStatus{
		Tenant:       v.Tenant,
		Plan:         model.PlanPro,
		NoteCount:    len(v.Notes),
		LimitReached: v.LimitReached(),
		CanUpgrade:   v.CanUpgrade(),
	}
	if v.IsFreePlan() {
		limit, remaining := model.FreePlanNoteLimit, v.RemainingNotes()
		out.Plan = model.PlanFree
		out.NoteLimit = &limit
		out.Remaining = &remaining
	}
	return out
}

func newTenantCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tenant",
		Short: "Show or upgrade your tenant's plan",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Show the plan and note usage",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			err := withBackend(ctx, app, func(b *backend) error {
				d, err := mountDashboard(ctx, app, b)
				if err != nil {
					return err
				}
				st := planStatusFor(d.View())
				var hints []string
				if st.CanUpgrade {
					hints = append(hints, "notes tenant upgrade")
				}
				return writeOut(cmd, app, st, hints...)
			})
			if err != nil {
				return writeErr(cmd, err)
			}
			return nil
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "upgrade",
		Short: "Upgrade a free tenant to Pro (admins only)",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			err := withBackend(ctx, app, func(b *backend) error {
				d, err := mountDashboard(ctx, app, b)
				if err != nil {
					return err
				}
				if err := d.Upgrade(ctx); err != nil {
					v := d.View()
					switch {
					case !errors.Is(err, dashboard.ErrForbidden):
						return actionError(d, err)
					case !v.User.IsAdmin():
						return errAdminOnly("upgrade the subscription", v.User.Email)
					case v.IsProPlan():
						return errors.New("tenant is already on the Pro plan")
					default:
						return errors.New("tenant info is unavailable; try again")
					}
				}
				return writeOut(cmd, app, planStatusFor(d.View()), "notes notes create --title <title>")
			})
			if err != nil {
				return writeErr(cmd, err)
			}
			return nil
		},
	})
	return cmd
}

func newInviteCmd(app *App) *cobra.Command {
	var role string
	cmd := &cobra.Command{
		Use:   "invite <email>",
		Short: "Invite a user to your tenant (admins only)",
		Args:  cobra.ExactArgs(1),
		Example: strings.TrimSpace(`
notes invite new.person@acme.test
notes invite lead@acme.test --role admin
`),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("role") && interactive(cmd) {
				picked, err := promptRole()
				if err != nil {
					return writeErr(cmd, err)
				}
				role = picked
			}
			r := model.Role(strings.ToLower(strings.TrimSpace(role)))
			if !r.Valid() {
				return writeErr(cmd, fmt.Errorf("unknown --role %q (want member or admin)", role))
			}
			ctx := cmd.Context()
			err := withBackend(ctx, app, func(b *backend) error {
				d, err := mountDashboard(ctx, app, b)
				if err != nil {
					return err
				}
				if err := d.OpenInvite(); err != nil {
					if errors.Is(err, dashboard.ErrForbidden) {
						return errAdminOnly("invite users", d.View().User.Email)
					}
					return err
				}
				d.ChangeInviteEmail(args[0])
				if err := d.SetInviteRole(r); err != nil {
					return err
				}
				if err := d.SubmitInvite(ctx); err != nil {
					v := d.View()
					if errors.Is(err, forms.ErrInvalid) && v.InviteForm != nil && v.InviteForm.Error != "" {
						return errors.New(v.InviteForm.Error)
					}
					if v.InviteForm != nil && v.InviteForm.SubmitError != "" {
						return errors.New(v.InviteForm.SubmitError)
					}
					return actionError(d, err)
				}
				email := strings.TrimSpace(args[0])
				return writeOut(cmd, app, map[string]any{
					"email":   email,
					"role":    r,
					"message": fmt.Sprintf("Invitation sent successfully to %s!", email),
				})
			})
			if err != nil {
				return writeErr(cmd, err)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&role, "role", string(model.RoleMember), "Role for the new user (member|admin)")
	return cmd
}

func promptRole() (string, error) {
	role := string(model.RoleMember)
	opts := make([]huh.Option[string], 0, 2)
	for _, o := range forms.RoleOptions() {
		opts = append(opts, huh.NewOption(o.Label+": "+o.Description, string(o.Value)))
	}
	form := huh.NewForm(huh.NewGroup(
		huh.NewSelect[string]().Title("Role").Options(opts...).Value(&role),
	))
	if err := form.Run(); err != nil {
		return "", fmt.Errorf("prompt failed: %w", err)
	}
	return role, nil
}
