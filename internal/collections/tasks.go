package collections

import (
	"context"
	"errors"

	"github.com/curaious/taskdesk/internal/perrors"
	"github.com/curaious/taskdesk/internal/rbac"
	"github.com/curaious/taskdesk/internal/services/task"
)

type TaskAPI interface {
	ListTasks(ctx context.Context, projectID string) ([]task.Task, error)
	CreateTask(ctx context.Context, projectID string, req task.CreateTaskRequest) (*task.Task, error)
	UpdateTask(ctx context.Context, id string, req task.UpdateTaskRequest) (*task.Task, error)
	SetTaskStatus(ctx context.Context, id string, status task.Status) (*task.Task, error)
	DeleteTask(ctx context.Context, id string) error
}

// Tasks is the task list of a single project. Every task carries the
// project's tenant.
type Tasks struct {
	*Collection[task.Task]
	api       TaskAPI
	confirm   Confirmer
	projectID string
	tenantID  string
}

func NewTasks(api TaskAPI, identity Identity, confirm Confirmer, projectID, tenantID string) *Tasks {
	t := &Tasks{api: api, confirm: confirm, projectID: projectID, tenantID: tenantID}
	t.Collection = newCollection(rbac.KindTask, identity, func(x task.Task) string { return x.ID }, t.load)
	return t
}

func (t *Tasks) resource(id string) rbac.Resource {
	return rbac.Resource{Kind: rbac.KindTask, ID: id, TenantID: t.tenantID}
}

func (t *Tasks) load(ctx context.Context) ([]task.Task, error) {
	if err := t.authorize(ctx, rbac.ActionView, t.resource("")); err != nil {
		return nil, err
	}
	return t.api.ListTasks(ctx, t.projectID)
}

func (t *Tasks) Create(ctx context.Context, req task.CreateTaskRequest) (*task.Task, error) {
	if err := t.authorize(ctx, rbac.ActionCreate, t.resource("")); err != nil {
		return nil, err
	}

	var out *task.Task
	err := t.submit(ctx, "Failed to create task", func(ctx context.Context) (err error) {
		out, err = t.api.CreateTask(ctx, t.projectID, req)
		return err
	})
	return out, err
}

func (t *Tasks) Update(ctx context.Context, id string, req task.UpdateTaskRequest) (*task.Task, error) {
	if err := t.authorize(ctx, rbac.ActionUpdate, t.resource(id)); err != nil {
		return nil, err
	}

	var out *task.Task
	err := t.submit(ctx, "Failed to update task", func(ctx context.Context) (err error) {
		out, err = t.api.UpdateTask(ctx, id, req)
		return err
	})
	return out, err
}

// SetStatus moves a task to status. Any status may follow any other.
func (t *Tasks) SetStatus(ctx context.Context, id string, status task.Status) (*task.Task, error) {
	if err := t.authorize(ctx, rbac.ActionChangeStatus, t.resource(id)); err != nil {
		return nil, err
	}
	if !status.Valid() {
		return nil, perrors.New(perrors.ErrCodeValidationFailed, "Invalid status", errors.New("Invalid status"))
	}

	var out *task.Task
	err := t.submit(ctx, "Failed to update task status", func(ctx context.Context) (err error) {
		out, err = t.api.SetTaskStatus(ctx, id, status)
		return err
	})
	return out, err
}

func (t *Tasks) Delete(ctx context.Context, id string) error {
	if err := t.authorize(ctx, rbac.ActionDelete, t.resource(id)); err != nil {
		return err
	}

	label := "this task"
	if cached, ok := t.Find(id); ok {
		label = cached.Title
	}
	if err := t.askConfirm(t.confirm, "Delete task "+label+"?"); err != nil {
		return err
	}

	return t.submit(ctx, "Failed to delete task", func(ctx context.Context) error {
		return t.api.DeleteTask(ctx, id)
	})
}

// ByStatus groups the loaded tasks into one column per status.
func (t *Tasks) ByStatus() map[task.Status][]task.Task {
	out := make(map[task.Status][]task.Task, len(task.Statuses))
	for _, s := range task.Statuses {
		out[s] = nil
	}
	for _, it := range t.Items() {
		out[it.Status] = append(out[it.Status], it)
	}
	return out
}
