package apiclient

import (
	"context"
	"net/url"
	"strconv"

	"github.com/valyala/fasthttp"

	"github.com/curaious/taskdesk/internal/pagination"
	"github.com/curaious/taskdesk/internal/services/auth"
	"github.com/curaious/taskdesk/internal/services/project"
	"github.com/curaious/taskdesk/internal/services/task"
	"github.com/curaious/taskdesk/internal/services/tenant"
	"github.com/curaious/taskdesk/internal/services/user"
)

// listPath appends the search filter and page window to path.
func listPath(path, search string, page pagination.Page) string {
	q := url.Values{}
	if search != "" {
		q.Set("search", search)
	}
	if page.Number > 0 {
		q.Set("page", strconv.Itoa(page.Number))
	}
	if page.Limit > 0 {
		q.Set("limit", strconv.Itoa(page.Limit))
	}
	if len(q) == 0 {
		return path
	}
	return path + "?" + q.Encode()
}

// Auth

func (c *Client) Login(ctx context.Context, req auth.LoginRequest) (*auth.Session, error) {
	var out auth.Session
	if err := c.do(ctx, fasthttp.MethodPost, "/auth/login", req, &out, "Login failed"); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) RegisterTenant(ctx context.Context, req tenant.RegisterTenantRequest) (*auth.Session, error) {
	var out auth.Session
	if err := c.do(ctx, fasthttp.MethodPost, "/auth/register-tenant", req, &out, "Registration failed"); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Me(ctx context.Context) (*auth.Profile, error) {
	var out auth.Profile
	if err := c.do(ctx, fasthttp.MethodGet, "/auth/me", nil, &out, "Failed to load profile"); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Logout(ctx context.Context) error {
	return c.do(ctx, fasthttp.MethodPost, "/auth/logout", nil, nil, "Logout failed")
}

// Tenants

// ListTenants reads every tenant, page by page.
func (c *Client) ListTenants(ctx context.Context) ([]tenant.Tenant, error) {
	return listAll[tenant.Tenant](ctx, c, "/tenants", "", "Failed to load tenants")
}

func (c *Client) ListTenantsPage(ctx context.Context, page pagination.Page) ([]tenant.Tenant, *pagination.Info, error) {
	return listPage[tenant.Tenant](ctx, c, "/tenants", "", page, "Failed to load tenants")
}

func (c *Client) GetTenant(ctx context.Context, id string) (*tenant.Tenant, error) {
	var out tenant.Tenant
	if err := c.do(ctx, fasthttp.MethodGet, "/tenants/"+url.PathEscape(id), nil, &out, "Failed to load tenant"); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) UpdateTenant(ctx context.Context, id string, req tenant.UpdateTenantRequest) (*tenant.Tenant, error) {
	var out tenant.Tenant
	if err := c.do(ctx, fasthttp.MethodPut, "/tenants/"+url.PathEscape(id), req, &out, "Failed to update tenant"); err != nil {
		return nil, err
	}
	return &out, nil
}

// Users

// ListUsers lists the users visible to the caller, optionally filtered by
// name or email.
func (c *Client) ListUsers(ctx context.Context, search string) ([]user.User, error) {
	return listAll[user.User](ctx, c, "/users", search, "Failed to load users")
}

func (c *Client) ListUsersPage(ctx context.Context, search string, page pagination.Page) ([]user.User, *pagination.Info, error) {
	return listPage[user.User](ctx, c, "/users", search, page, "Failed to load users")
}

func (c *Client) ListTenantUsers(ctx context.Context, tenantID, search string) ([]user.User, error) {
	return listAll[user.User](ctx, c, "/tenants/"+url.PathEscape(tenantID)+"/users", search, "Failed to load users")
}

func (c *Client) GetUser(ctx context.Context, id string) (*user.User, error) {
	var out user.User
	if err := c.do(ctx, fasthttp.MethodGet, "/users/"+url.PathEscape(id), nil, &out, "Failed to load user"); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) CreateUser(ctx context.Context, tenantID string, req user.CreateUserRequest) (*user.User, error) {
	var out user.User
	if err := c.do(ctx, fasthttp.MethodPost, "/tenants/"+url.PathEscape(tenantID)+"/users", req, &out, "Failed to create user"); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) UpdateUser(ctx context.Context, id string, req user.UpdateUserRequest) (*user.User, error) {
	var out user.User
	if err := c.do(ctx, fasthttp.MethodPut, "/users/"+url.PathEscape(id), req, &out, "Failed to update user"); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) DeleteUser(ctx context.Context, id string) error {
	return c.do(ctx, fasthttp.MethodDelete, "/users/"+url.PathEscape(id), nil, nil, "Failed to delete user")
}

// Projects

func (c *Client) ListProjects(ctx context.Context) ([]project.Project, error) {
	return listAll[project.Project](ctx, c, "/projects", "", "Failed to load projects")
}

func (c *Client) ListProjectsPage(ctx context.Context, page pagination.Page) ([]project.Project, *pagination.Info, error) {
	return listPage[project.Project](ctx, c, "/projects", "", page, "Failed to load projects")
}

func (c *Client) GetProject(ctx context.Context, id string) (*project.Project, error) {
	var out project.Project
	if err := c.do(ctx, fasthttp.MethodGet, "/projects/"+url.PathEscape(id), nil, &out, "Failed to load project"); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) CreateProject(ctx context.Context, req project.CreateProjectRequest) (*project.Project, error) {
	var out project.Project
	if err := c.do(ctx, fasthttp.MethodPost, "/projects", req, &out, "Failed to create project"); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) UpdateProject(ctx context.Context, id string, req project.UpdateProjectRequest) (*project.Project, error) {
	var out project.Project
	if err := c.do(ctx, fasthttp.MethodPut, "/projects/"+url.PathEscape(id), req, &out, "Failed to update project"); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) DeleteProject(ctx context.Context, id string) error {
	return c.do(ctx, fasthttp.MethodDelete, "/projects/"+url.PathEscape(id), nil, nil, "Failed to delete project")
}

// Tasks

func (c *Client) ListTasks(ctx context.Context, projectID string) ([]task.Task, error) {
	return listAll[task.Task](ctx, c, "/projects/"+url.PathEscape(projectID)+"/tasks", "", "Failed to load tasks")
}

func (c *Client) GetTask(ctx context.Context, id string) (*task.Task, error) {
	var out task.Task
	if err := c.do(ctx, fasthttp.MethodGet, "/tasks/"+url.PathEscape(id), nil, &out, "Failed to load task"); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) CreateTask(ctx context.Context, projectID string, req task.CreateTaskRequest) (*task.Task, error) {
	var out task.Task
	if err := c.do(ctx, fasthttp.MethodPost, "/projects/"+url.PathEscape(projectID)+"/tasks", req, &out, "Failed to create task"); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) UpdateTask(ctx context.Context, id string, req task.UpdateTaskRequest) (*task.Task, error) {
	var out task.Task
	if err := c.do(ctx, fasthttp.MethodPut, "/tasks/"+url.PathEscape(id), req, &out, "Failed to update task"); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) SetTaskStatus(ctx context.Context, id string, status task.Status) (*task.Task, error) {
	var out task.Task
	if err := c.do(ctx, fasthttp.MethodPatch, "/tasks/"+url.PathEscape(id)+"/status", task.SetStatusRequest{Status: status}, &out, "Failed to update task status"); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) DeleteTask(ctx context.Context, id string) error {
	return c.do(ctx, fasthttp.MethodDelete, "/tasks/"+url.PathEscape(id), nil, nil, "Failed to delete task")
}
