package views

import (
	"context"
	"errors"

	"github.com/curaious/taskdesk/internal/collections"
	"github.com/curaious/taskdesk/internal/perrors"
	"github.com/curaious/taskdesk/internal/rbac"
	"github.com/curaious/taskdesk/internal/services/project"
	"github.com/curaious/taskdesk/internal/services/task"
	"github.com/curaious/taskdesk/internal/services/user"
)

type Column struct {
	Status task.Status
	Tasks  []task.Task
}

// ProjectDetails shows one project with its tasks grouped by status.
type ProjectDetails struct {
	session   Session
	api       API
	confirm   collections.Confirmer
	projectID string

	project *project.Project
	tasks   *collections.Tasks
	users   *collections.Users
}

func NewProjectDetails(session Session, api API, confirm collections.Confirmer, projectID string) *ProjectDetails {
	return &ProjectDetails{session: session, api: api, confirm: confirm, projectID: projectID}
}

// Load fetches the project, then its tasks and, for admins, the tenant's
// users as assignee options.
func (v *ProjectDetails) Load(ctx context.Context) error {
	projects := collections.NewProjects(v.api, v.session, nil)
	proj, err := projects.Get(ctx, v.projectID)
	if err != nil {
		return loadError("project", err)
	}
	v.project = proj

	if v.tasks != nil {
		v.tasks.Detach()
	}
	v.tasks = collections.NewTasks(v.api, v.session, v.confirm, proj.ID, proj.TenantID)

	loaders := []func(context.Context) error{v.tasks.Reload}
	if scope, ok := rbac.ListScope(principalOf(v.session), rbac.KindUser); ok && scope.Contains(proj.TenantID) {
		if v.users == nil {
			v.users = collections.NewUsers(v.api, v.session, nil)
		}
		loaders = append(loaders, v.users.Reload)
	}
	return loadAll(ctx, "project", loaders...)
}

func (v *ProjectDetails) Project() *project.Project {
	return v.project
}

// Columns returns TODO, IN_PROGRESS and COMPLETED in that order.
func (v *ProjectDetails) Columns() []Column {
	if v.tasks == nil {
		return nil
	}
	grouped := v.tasks.ByStatus()
	out := make([]Column, 0, len(task.Statuses))
	for _, s := range task.Statuses {
		out = append(out, Column{Status: s, Tasks: grouped[s]})
	}
	return out
}

// AssigneeOptions lists the active users of the project's tenant.
func (v *ProjectDetails) AssigneeOptions() []user.User {
	if v.users == nil || v.project == nil {
		return nil
	}
	var out []user.User
	for _, u := range v.users.Items() {
		if u.IsActive && u.TenantID == v.project.TenantID {
			out = append(out, u)
		}
	}
	return out
}

func (v *ProjectDetails) taskResource(id string) rbac.Resource {
	tenantID := ""
	if v.project != nil {
		tenantID = v.project.TenantID
	}
	return rbac.Resource{Kind: rbac.KindTask, ID: id, TenantID: tenantID}
}

// idle reports whether the task list is loaded and nothing is loading or
// being submitted.
func (v *ProjectDetails) idle() bool {
	if v.tasks == nil {
		return false
	}
	if v.users != nil && busy(v.users) {
		return false
	}
	return !busy(v.tasks)
}

func (v *ProjectDetails) CanManageTasks() bool {
	return v.idle() && rbac.Can(principalOf(v.session), rbac.ActionCreate, v.taskResource(""))
}

func (v *ProjectDetails) CanChangeStatus(id string) bool {
	return v.idle() && rbac.Can(principalOf(v.session), rbac.ActionChangeStatus, v.taskResource(id))
}

func (v *ProjectDetails) TakeNotice() string {
	if v.tasks == nil {
		return ""
	}
	return v.tasks.TakeNotice()
}

func (v *ProjectDetails) CreateTask(ctx context.Context, req task.CreateTaskRequest) (*task.Task, error) {
	if err := v.ensureLoaded(); err != nil {
		return nil, err
	}
	return v.tasks.Create(ctx, req)
}

func (v *ProjectDetails) UpdateTask(ctx context.Context, id string, req task.UpdateTaskRequest) (*task.Task, error) {
	if err := v.ensureLoaded(); err != nil {
		return nil, err
	}
	return v.tasks.Update(ctx, id, req)
}

func (v *ProjectDetails) SetStatus(ctx context.Context, id string, status task.Status) (*task.Task, error) {
	if err := v.ensureLoaded(); err != nil {
		return nil, err
	}
	return v.tasks.SetStatus(ctx, id, status)
}

func (v *ProjectDetails) DeleteTask(ctx context.Context, id string) error {
	if err := v.ensureLoaded(); err != nil {
		return err
	}
	return v.tasks.Delete(ctx, id)
}

func (v *ProjectDetails) ensureLoaded() error {
	if v.tasks == nil {
		return perrors.New(perrors.ErrCodeInvalidRequest, "Load the project first", errors.New("project not loaded"))
	}
	return nil
}

func (v *ProjectDetails) Close() {
	if v.tasks != nil {
		v.tasks.Detach()
	}
	if v.users != nil {
		v.users.Detach()
	}
}
