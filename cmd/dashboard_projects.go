package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/curaious/taskdesk/internal/pagination"
	"github.com/curaious/taskdesk/internal/rbac"
	"github.com/curaious/taskdesk/internal/services/project"
	"github.com/curaious/taskdesk/internal/services/task"
	"github.com/curaious/taskdesk/internal/views"
)

var projectsCmd = &cobra.Command{
	Use:   "projects",
	Short: "List projects",
	RunE: withDashboard(func(ctx context.Context, d *dashboard, cmd *cobra.Command, _ []string) error {
		v := views.NewProjects(d.session, d.client, d)
		defer v.Close()

		items := []project.Project(nil)
		var info *pagination.Info
		if page, ok := pageFlags(cmd, 20); ok {
			if err := d.listAllowed(rbac.KindProject); err != nil {
				return err
			}
			var err error
			if items, info, err = d.client.ListProjectsPage(ctx, page); err != nil {
				return err
			}
		} else {
			if err := v.Load(ctx); err != nil {
				return err
			}
			items = v.Items()
		}

		w := d.table("ID", "NAME", "STATUS", "TASKS", "ACTIONS")
		for _, p := range items {
			fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%s\n", p.ID, p.Name, p.Status, p.TaskCount, joinActions(v.Actions(&p)))
		}
		if err := w.Flush(); err != nil {
			return err
		}
		d.pageFooter(info, "projects")
		return nil
	}),
}

var projectsCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a project",
	RunE: withDashboard(func(ctx context.Context, d *dashboard, cmd *cobra.Command, _ []string) error {
		v := views.NewProjects(d.session, d.client, d)
		defer v.Close()

		req := project.CreateProjectRequest{}
		req.Name, _ = cmd.Flags().GetString("name")
		req.Description, _ = cmd.Flags().GetString("description")
		status, _ := cmd.Flags().GetString("status")
		req.Status = project.Status(strings.ToUpper(status))

		p, err := v.Create(ctx, req)
		if err != nil {
			return err
		}
		fmt.Fprintf(d.out, "Created project %s (%s)\n", p.Name, p.ID)
		return nil
	}),
}

var projectsUpdateCmd = &cobra.Command{
	Use:   "update <id>",
	Short: "Update a project",
	Args:  cobra.ExactArgs(1),
	RunE: withDashboard(func(ctx context.Context, d *dashboard, cmd *cobra.Command, args []string) error {
		v := views.NewProjects(d.session, d.client, d)
		defer v.Close()

		req := project.UpdateProjectRequest{}
		if cmd.Flags().Changed("name") {
			name, _ := cmd.Flags().GetString("name")
			req.Name = &name
		}
		if cmd.Flags().Changed("description") {
			desc, _ := cmd.Flags().GetString("description")
			req.Description = &desc
		}
		if cmd.Flags().Changed("status") {
			raw, _ := cmd.Flags().GetString("status")
			status := project.Status(strings.ToUpper(raw))
			req.Status = &status
		}

		p, err := v.Update(ctx, args[0], req)
		if err != nil {
			d.notice(v.TakeNotice())
			return err
		}
		fmt.Fprintf(d.out, "Updated project %s\n", p.Name)
		return nil
	}),
}

var projectsDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a project and its tasks",
	Args:  cobra.ExactArgs(1),
	RunE: withDashboard(func(ctx context.Context, d *dashboard, _ *cobra.Command, args []string) error {
		v := views.NewProjects(d.session, d.client, d)
		defer v.Close()

		// Load first so the confirmation can name the project.
		if err := v.Load(ctx); err != nil {
			return err
		}
		if err := v.Delete(ctx, args[0]); err != nil {
			d.notice(v.TakeNotice())
			return err
		}
		fmt.Fprintln(d.out, "Project deleted")
		return nil
	}),
}

// projectCmd shows one project, and manages its tasks with
// `project <id> tasks <create|update|delete|status> ...`.
var projectCmd = &cobra.Command{
	Use:   "project <id> [tasks <create|update|delete|status> [task-id] [status]]",
	Short: "Show a project's task board or manage its tasks",
	Args:  cobra.MinimumNArgs(1),
	RunE: withDashboard(func(ctx context.Context, d *dashboard, cmd *cobra.Command, args []string) error {
		v := views.NewProjectDetails(d.session, d.client, d, args[0])
		defer v.Close()

		if err := v.Load(ctx); err != nil {
			return err
		}

		if len(args) == 1 {
			printBoard(d, v)
			return nil
		}
		if args[1] != "tasks" || len(args) < 3 {
			return fmt.Errorf("unknown arguments %q, expected `tasks <create|update|delete|status>`", strings.Join(args[1:], " "))
		}
		return runTaskVerb(ctx, d, v, cmd, args[2], args[3:])
	}),
}

func runTaskVerb(ctx context.Context, d *dashboard, v *views.ProjectDetails, cmd *cobra.Command, verb string, rest []string) error {
	needID := func() (string, error) {
		if len(rest) == 0 {
			return "", fmt.Errorf("tasks %s needs a task id", verb)
		}
		return rest[0], nil
	}

	switch verb {
	case "create":
		req, err := taskFields(cmd)
		if err != nil {
			return err
		}
		t, err := v.CreateTask(ctx, task.CreateTaskRequest(req))
		if err != nil {
			return err
		}
		fmt.Fprintf(d.out, "Created task %s (%s)\n", t.Title, t.ID)

	case "update":
		id, err := needID()
		if err != nil {
			return err
		}
		req, err := taskFields(cmd)
		if err != nil {
			return err
		}
		t, err := v.UpdateTask(ctx, id, req)
		if err != nil {
			d.notice(v.TakeNotice())
			return err
		}
		fmt.Fprintf(d.out, "Updated task %s\n", t.Title)

	case "status":
		id, err := needID()
		if err != nil {
			return err
		}
		if len(rest) < 2 {
			return fmt.Errorf("tasks status needs a status: TODO, IN_PROGRESS or COMPLETED")
		}
		t, err := v.SetStatus(ctx, id, task.Status(strings.ToUpper(rest[1])))
		if err != nil {
			d.notice(v.TakeNotice())
			return err
		}
		fmt.Fprintf(d.out, "Task %s is now %s\n", t.Title, t.Status)

	case "delete":
		id, err := needID()
		if err != nil {
			return err
		}
		if err := v.DeleteTask(ctx, id); err != nil {
			d.notice(v.TakeNotice())
			return err
		}
		fmt.Fprintln(d.out, "Task deleted")

	default:
		return fmt.Errorf("unknown task command %q", verb)
	}
	return nil
}

// taskFields reads the task flags into a full task payload. Update
// requests replace every field.
func taskFields(cmd *cobra.Command) (task.UpdateTaskRequest, error) {
	var req task.UpdateTaskRequest
	req.Title, _ = cmd.Flags().GetString("title")
	req.Description, _ = cmd.Flags().GetString("description")

	status, _ := cmd.Flags().GetString("status")
	req.Status = task.Status(strings.ToUpper(status))
	priority, _ := cmd.Flags().GetString("priority")
	req.Priority = task.Priority(strings.ToUpper(priority))

	if assignee, _ := cmd.Flags().GetString("assignee"); assignee != "" {
		req.AssignedToID = &assignee
	}
	if due, _ := cmd.Flags().GetString("due"); due != "" {
		date, err := task.ParseDate(due)
		if err != nil {
			return req, fmt.Errorf("invalid --due %q, expected YYYY-MM-DD", due)
		}
		req.DueDate = &date
	}
	return req, nil
}

func printBoard(d *dashboard, v *views.ProjectDetails) {
	p := v.Project()
	fmt.Fprintf(d.out, "%s [%s]\n", p.Name, p.Status)
	if p.Description != "" {
		fmt.Fprintln(d.out, p.Description)
	}

	for _, col := range v.Columns() {
		fmt.Fprintf(d.out, "\n%s (%d)\n", col.Status, len(col.Tasks))
		w := d.table("  ID", "TITLE", "PRIORITY", "ASSIGNEE", "DUE")
		for _, t := range col.Tasks {
			assignee, due := "-", "-"
			if t.AssignedTo != nil {
				assignee = t.AssignedTo.FullName
			}
			if t.DueDate != nil {
				due = t.DueDate.String()
			}
			fmt.Fprintf(w, "  %s\t%s\t%s\t%s\t%s\n", t.ID, t.Title, t.Priority, assignee, due)
		}
		_ = w.Flush()
	}

	if opts := v.AssigneeOptions(); len(opts) > 0 {
		fmt.Fprintln(d.out, "\nAssignable users:")
		for _, u := range opts {
			fmt.Fprintf(d.out, "  %s  %s <%s>\n", u.ID, u.FullName, u.Email)
		}
	}
}

func joinActions[T ~string](actions []T) string {
	if len(actions) == 0 {
		return "-"
	}
	parts := make([]string, len(actions))
	for i, a := range actions {
		parts[i] = string(a)
	}
	return strings.Join(parts, ",")
}

func init() {
	projectsCreateCmd.Flags().String("name", "", "Project name")
	projectsCreateCmd.Flags().String("description", "", "Project description")
	projectsCreateCmd.Flags().String("status", "", "ACTIVE, COMPLETED or ARCHIVED")
	_ = projectsCreateCmd.MarkFlagRequired("name")

	projectsUpdateCmd.Flags().String("name", "", "Project name")
	projectsUpdateCmd.Flags().String("description", "", "Project description")
	projectsUpdateCmd.Flags().String("status", "", "ACTIVE, COMPLETED or ARCHIVED")

	projectsCmd.AddCommand(projectsCreateCmd, projectsUpdateCmd, projectsDeleteCmd)

	projectCmd.Flags().String("title", "", "Task title")
	projectCmd.Flags().String("description", "", "Task description")
	projectCmd.Flags().String("status", "", "TODO, IN_PROGRESS or COMPLETED")
	projectCmd.Flags().String("priority", "", "LOW, MEDIUM or HIGH")
	projectCmd.Flags().String("assignee", "", "ID of the user to assign")
	projectCmd.Flags().String("due", "", "Due date, YYYY-MM-DD")
}
