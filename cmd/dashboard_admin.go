package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/curaious/taskdesk/internal/pagination"
	"github.com/curaious/taskdesk/internal/rbac"
	"github.com/curaious/taskdesk/internal/services/tenant"
	"github.com/curaious/taskdesk/internal/services/user"
	"github.com/curaious/taskdesk/internal/views"
)

var usersCmd = &cobra.Command{
	Use:   "users",
	Short: "List users",
	RunE: withDashboard(func(ctx context.Context, d *dashboard, cmd *cobra.Command, _ []string) error {
		v := views.NewUsers(d.session, d.client, d)
		defer v.Close()

		search, _ := cmd.Flags().GetString("search")

		items := []user.User(nil)
		var info *pagination.Info
		if page, ok := pageFlags(cmd, 50); ok {
			if err := d.listAllowed(rbac.KindUser); err != nil {
				return err
			}
			var err error
			if items, info, err = d.client.ListUsersPage(ctx, search, page); err != nil {
				return err
			}
		} else {
			if err := v.Load(ctx, search); err != nil {
				return err
			}
			items = v.Items()
		}

		w := d.table("ID", "NAME", "EMAIL", "ROLE", "ACTIVE", "ACTIONS")
		for _, u := range items {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%t\t%s\n", u.ID, u.FullName, u.Email, u.Role, u.IsActive, joinActions(v.Actions(&u)))
		}
		if err := w.Flush(); err != nil {
			return err
		}
		d.pageFooter(info, "users")
		return nil
	}),
}

var usersCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Add a user to your tenant",
	RunE: withDashboard(func(ctx context.Context, d *dashboard, cmd *cobra.Command, _ []string) error {
		v := views.NewUsers(d.session, d.client, d)
		defer v.Close()

		req := user.CreateUserRequest{}
		req.Email, _ = cmd.Flags().GetString("email")
		req.Password, _ = cmd.Flags().GetString("password")
		req.FullName, _ = cmd.Flags().GetString("name")
		role, _ := cmd.Flags().GetString("role")
		req.Role = rbac.Role(strings.ToUpper(role))

		u, err := v.Create(ctx, req)
		if err != nil {
			return err
		}
		fmt.Fprintf(d.out, "Created user %s (%s)\n", u.Email, u.ID)
		return nil
	}),
}

var usersUpdateCmd = &cobra.Command{
	Use:   "update <id>",
	Short: "Update a user",
	Args:  cobra.ExactArgs(1),
	RunE: withDashboard(func(ctx context.Context, d *dashboard, cmd *cobra.Command, args []string) error {
		v := views.NewUsers(d.session, d.client, d)
		defer v.Close()

		req := user.UpdateUserRequest{}
		if cmd.Flags().Changed("email") {
			email, _ := cmd.Flags().GetString("email")
			req.Email = &email
		}
		if cmd.Flags().Changed("name") {
			name, _ := cmd.Flags().GetString("name")
			req.FullName = &name
		}
		if cmd.Flags().Changed("password") {
			password, _ := cmd.Flags().GetString("password")
			req.Password = &password
		}
		if cmd.Flags().Changed("role") {
			raw, _ := cmd.Flags().GetString("role")
			role := rbac.Role(strings.ToUpper(raw))
			req.Role = &role
		}
		if cmd.Flags().Changed("active") {
			active, _ := cmd.Flags().GetBool("active")
			req.IsActive = &active
		}

		u, err := v.Update(ctx, args[0], req)
		if err != nil {
			d.notice(v.TakeNotice())
			return err
		}
		fmt.Fprintf(d.out, "Updated user %s\n", u.Email)
		return nil
	}),
}

var usersDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a user",
	Args:  cobra.ExactArgs(1),
	RunE: withDashboard(func(ctx context.Context, d *dashboard, _ *cobra.Command, args []string) error {
		v := views.NewUsers(d.session, d.client, d)
		defer v.Close()

		if err := v.Load(ctx, ""); err != nil {
			return err
		}
		if err := v.Delete(ctx, args[0]); err != nil {
			d.notice(v.TakeNotice())
			return err
		}
		fmt.Fprintln(d.out, "User deleted")
		return nil
	}),
}

var tenantsCmd = &cobra.Command{
	Use:   "tenants",
	Short: "List tenants",
	RunE: withDashboard(func(ctx context.Context, d *dashboard, cmd *cobra.Command, _ []string) error {
		v := views.NewTenants(d.session, d.client)
		defer v.Close()

		items := []tenant.Tenant(nil)
		var info *pagination.Info
		if page, ok := pageFlags(cmd, 10); ok {
			if err := d.listAllowed(rbac.KindTenant); err != nil {
				return err
			}
			var err error
			if items, info, err = d.client.ListTenantsPage(ctx, page); err != nil {
				return err
			}
		} else {
			if err := v.Load(ctx); err != nil {
				return err
			}
			items = v.Items()
		}

		w := d.table("ID", "NAME", "SUBDOMAIN", "PLAN", "STATUS", "USERS", "PROJECTS")
		for _, t := range items {
			users, projects := fmt.Sprint(t.MaxUsers), fmt.Sprint(t.MaxProjects)
			if t.Stats != nil {
				users = fmt.Sprintf("%d/%d", t.Stats.TotalUsers, t.MaxUsers)
				projects = fmt.Sprintf("%d/%d", t.Stats.TotalProjects, t.MaxProjects)
			}
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\t%s\n", t.ID, t.Name, t.Subdomain, t.SubscriptionPlan, t.Status, users, projects)
		}
		if err := w.Flush(); err != nil {
			return err
		}
		d.pageFooter(info, "tenants")
		return nil
	}),
}

var tenantsSetPlanCmd = &cobra.Command{
	Use:   "set-plan <id> <FREE|PRO|ENTERPRISE>",
	Short: "Change a tenant's subscription plan",
	Args:  cobra.ExactArgs(2),
	RunE: withDashboard(func(ctx context.Context, d *dashboard, _ *cobra.Command, args []string) error {
		v := views.NewTenants(d.session, d.client)
		defer v.Close()

		plan := tenant.Plan(strings.ToUpper(args[1]))
		if !plan.Valid() {
			return fmt.Errorf("unknown plan %q", args[1])
		}

		notice, err := v.ChangePlan(ctx, args[0], plan)
		if err != nil {
			return err
		}
		fmt.Fprintln(d.out, notice)
		return nil
	}),
}

var tenantsUpdateCmd = &cobra.Command{
	Use:   "update <id>",
	Short: "Rename a tenant or change its status",
	Args:  cobra.ExactArgs(1),
	RunE: withDashboard(func(ctx context.Context, d *dashboard, cmd *cobra.Command, args []string) error {
		v := views.NewTenants(d.session, d.client)
		defer v.Close()

		req := tenant.UpdateTenantRequest{}
		if cmd.Flags().Changed("name") {
			name, _ := cmd.Flags().GetString("name")
			req.Name = &name
		}
		if cmd.Flags().Changed("status") {
			raw, _ := cmd.Flags().GetString("status")
			status := tenant.Status(strings.ToUpper(raw))
			req.Status = &status
		}

		t, err := v.Update(ctx, args[0], req)
		if err != nil {
			return err
		}
		fmt.Fprintf(d.out, "Updated tenant %s\n", t.Name)
		return nil
	}),
}

func init() {
	usersCmd.Flags().StringP("search", "s", "", "Filter by name or email")

	usersCreateCmd.Flags().String("email", "", "Email address")
	usersCreateCmd.Flags().String("password", "", "Initial password (8 characters or more)")
	usersCreateCmd.Flags().String("name", "", "Full name")
	usersCreateCmd.Flags().String("role", "USER", "USER or TENANT_ADMIN")
	_ = usersCreateCmd.MarkFlagRequired("email")
	_ = usersCreateCmd.MarkFlagRequired("password")

	usersUpdateCmd.Flags().String("email", "", "Email address")
	usersUpdateCmd.Flags().String("name", "", "Full name")
	usersUpdateCmd.Flags().String("password", "", "New password (8 characters or more)")
	usersUpdateCmd.Flags().String("role", "", "USER or TENANT_ADMIN")
	usersUpdateCmd.Flags().Bool("active", true, "Whether the account may sign in")

	usersCmd.AddCommand(usersCreateCmd, usersUpdateCmd, usersDeleteCmd)

	tenantsUpdateCmd.Flags().String("name", "", "Tenant name")
	tenantsUpdateCmd.Flags().String("status", "", "ACTIVE, SUSPENDED or INACTIVE")

	tenantsCmd.AddCommand(tenantsSetPlanCmd, tenantsUpdateCmd)
}
