package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/curaious/taskdesk/internal/services/auth"
	"github.com/curaious/taskdesk/internal/services/tenant"
	"github.com/curaious/taskdesk/internal/views"
)

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Sign in",
	RunE: func(cmd *cobra.Command, args []string) error {
		d, err := newDashboard(cmd, false)
		if err != nil {
			return err
		}
		defer d.Close()

		req := auth.LoginRequest{}
		req.Email, _ = cmd.Flags().GetString("email")
		req.Password, _ = cmd.Flags().GetString("password")
		req.TenantSubdomain, _ = cmd.Flags().GetString("tenant")

		if err := d.session.Login(cmd.Context(), req); err != nil {
			return err
		}
		printProfile(d)
		return nil
	},
}

var registerCmd = &cobra.Command{
	Use:   "register",
	Short: "Register a new tenant and its first admin",
	RunE: func(cmd *cobra.Command, args []string) error {
		d, err := newDashboard(cmd, false)
		if err != nil {
			return err
		}
		defer d.Close()

		req := tenant.RegisterTenantRequest{}
		req.TenantName, _ = cmd.Flags().GetString("tenant-name")
		req.Subdomain, _ = cmd.Flags().GetString("subdomain")
		req.AdminEmail, _ = cmd.Flags().GetString("email")
		req.AdminPassword, _ = cmd.Flags().GetString("password")
		req.AdminFullName, _ = cmd.Flags().GetString("name")

		if err := d.session.RegisterTenant(cmd.Context(), req); err != nil {
			return err
		}
		printProfile(d)
		return nil
	},
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Sign out and forget the saved session",
	RunE: withDashboard(func(ctx context.Context, d *dashboard, _ *cobra.Command, _ []string) error {
		if err := d.session.Logout(ctx); err != nil {
			return err
		}
		fmt.Fprintln(d.out, "Signed out")
		return nil
	}),
}

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the signed-in user",
	RunE: withDashboard(func(_ context.Context, d *dashboard, _ *cobra.Command, _ []string) error {
		printProfile(d)
		return nil
	}),
}

var themeCmd = &cobra.Command{
	Use:   "theme [light|dark]",
	Short: "Show or set the preferred theme",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		d, err := newDashboard(cmd, false)
		if err != nil {
			return err
		}
		defer d.Close()

		if err := d.session.Restore(cmd.Context()); err != nil {
			return err
		}
		if len(args) == 0 {
			fmt.Fprintln(d.out, d.session.Theme())
			return nil
		}
		return d.session.SetTheme(cmd.Context(), args[0])
	},
}

var overviewCmd = &cobra.Command{
	Use:   "overview",
	Short: "Show the dashboard summary",
	RunE: withDashboard(func(ctx context.Context, d *dashboard, _ *cobra.Command, _ []string) error {
		v := views.NewDashboard(d.session, d.client)
		defer v.Close()

		if err := v.Load(ctx); err != nil {
			return err
		}

		s := v.Stats()
		w := d.table("METRIC", "VALUE")
		if s.TenantName != "" {
			fmt.Fprintf(w, "Tenant\t%s\n", s.TenantName)
			fmt.Fprintf(w, "Plan\t%s\n", s.Plan)
			fmt.Fprintf(w, "Projects\t%d\n", s.Projects)
			fmt.Fprintf(w, "Tasks\t%d\n", s.Tasks)
		}
		if s.Users > 0 {
			fmt.Fprintf(w, "Users\t%d\n", s.Users)
		}
		if s.Tenants > 0 {
			fmt.Fprintf(w, "Tenants\t%d\n", s.Tenants)
		}
		_ = w.Flush()

		if actions := v.QuickActions(); len(actions) > 0 {
			fmt.Fprintln(d.out, "\nQuick actions:")
			for _, a := range actions {
				fmt.Fprintf(d.out, "  %-16s %s\n", a.Label, a.Command)
			}
		}
		return nil
	}),
}

func printProfile(d *dashboard) {
	p := d.session.Profile()
	if p == nil {
		return
	}
	w := d.table("NAME", "EMAIL", "ROLE", "TENANT")
	tenantName := "-"
	if p.Tenant != nil {
		tenantName = fmt.Sprintf("%s (%s)", p.Tenant.Name, p.Tenant.Subdomain)
	}
	fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", p.FullName, p.Email, p.Role, tenantName)
	_ = w.Flush()
}

func init() {
	loginCmd.Flags().StringP("email", "e", "", "Email address")
	loginCmd.Flags().StringP("password", "p", "", "Password")
	loginCmd.Flags().StringP("tenant", "t", "", "Tenant subdomain")
	_ = loginCmd.MarkFlagRequired("email")
	_ = loginCmd.MarkFlagRequired("password")

	registerCmd.Flags().String("tenant-name", "", "Company name")
	registerCmd.Flags().String("subdomain", "", "Unique tenant subdomain")
	registerCmd.Flags().String("email", "", "Admin email")
	registerCmd.Flags().String("password", "", "Admin password (8 characters or more)")
	registerCmd.Flags().String("name", "", "Admin full name")
}
