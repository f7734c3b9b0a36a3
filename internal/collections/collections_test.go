package collections

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/curaious/taskdesk/internal/perrors"
	"github.com/curaious/taskdesk/internal/rbac"
	"github.com/curaious/taskdesk/internal/services/project"
	"github.com/curaious/taskdesk/internal/services/task"
	"github.com/curaious/taskdesk/internal/services/tenant"
	"github.com/curaious/taskdesk/internal/services/user"
)

type fixedIdentity rbac.Principal

func (f fixedIdentity) CurrentPrincipal() (rbac.Principal, bool) {
	return rbac.Principal(f), f.ID != ""
}

var (
	superAdmin  = fixedIdentity{ID: "sa", Role: rbac.RoleSuperAdmin, IsActive: true}
	adminA      = fixedIdentity{ID: "ta-a", TenantID: "A", Role: rbac.RoleTenantAdmin, IsActive: true}
	memberA     = fixedIdentity{ID: "u-a", TenantID: "A", Role: rbac.RoleUser, IsActive: true}
	anonymous   = fixedIdentity{}
	notFoundErr = perrors.FromStatus(404, "Project not found", "Failed to update project", true)
)

// fakeAPI is an in-memory backend covering every collection's API.
type fakeAPI struct {
	mu       sync.Mutex
	calls    map[string]int
	tenants  []tenant.Tenant
	users    []user.User
	projects []project.Project
	tasks    []task.Task

	gate             chan struct{}
	listGates        []chan struct{}
	failNext         error
	lastTenantUpdate tenant.UpdateTenantRequest
}

func newFakeAPI() *fakeAPI {
	return &fakeAPI{
		calls: map[string]int{},
		tenants: []tenant.Tenant{
			{ID: "A", Name: "Acme", SubscriptionPlan: tenant.PlanFree, MaxUsers: 5, MaxProjects: 3},
			{ID: "B", Name: "Bolt", SubscriptionPlan: tenant.PlanPro, MaxUsers: 25, MaxProjects: 15},
		},
		users: []user.User{
			{ID: "ta-a", TenantID: "A", Email: "admin@acme.io", Role: rbac.RoleTenantAdmin, IsActive: true},
			{ID: "u-a", TenantID: "A", Email: "ann@acme.io", Role: rbac.RoleUser, IsActive: true},
			{ID: "u-b", TenantID: "B", Email: "bob@bolt.io", Role: rbac.RoleUser, IsActive: true},
		},
		projects: []project.Project{
			{ID: "p1", TenantID: "A", Name: "Apollo", Status: project.StatusActive},
		},
		tasks: []task.Task{
			{ID: "t1", ProjectID: "p1", TenantID: "A", Title: "Design", Status: task.StatusTodo, Priority: task.PriorityMedium},
		},
	}
}

func (f *fakeAPI) record(name string) error {
	f.mu.Lock()
	f.calls[name]++
	err := f.failNext
	f.failNext = nil
	gate := f.gate
	f.mu.Unlock()
	if gate != nil {
		<-gate
	}
	return err
}

func (f *fakeAPI) count(name string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[name]
}

func (f *fakeAPI) gatesDrained() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.listGates) == 0
}

func (f *fakeAPI) total() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, c := range f.calls {
		n += c
	}
	return n
}

func (f *fakeAPI) ListTenants(_ context.Context) ([]tenant.Tenant, error) {
	if err := f.record("ListTenants"); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]tenant.Tenant(nil), f.tenants...), nil
}

func (f *fakeAPI) GetTenant(_ context.Context, id string) (*tenant.Tenant, error) {
	if err := f.record("GetTenant"); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, t := range f.tenants {
		if t.ID == id {
			return &t, nil
		}
	}
	return nil, perrors.FromStatus(404, "Tenant not found", "Failed to load tenant", true)
}

func (f *fakeAPI) UpdateTenant(_ context.Context, id string, req tenant.UpdateTenantRequest) (*tenant.Tenant, error) {
	if err := f.record("UpdateTenant"); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lastTenantUpdate = req
	for i := range f.tenants {
		if f.tenants[i].ID != id {
			continue
		}
		if req.Name != nil {
			f.tenants[i].Name = *req.Name
		}
		if req.SubscriptionPlan != nil {
			f.tenants[i].SubscriptionPlan = *req.SubscriptionPlan
			f.tenants[i].MaxUsers, f.tenants[i].MaxProjects = req.SubscriptionPlan.Limits()
		}
		out := f.tenants[i]
		return &out, nil
	}
	return nil, perrors.FromStatus(404, "Tenant not found", "Failed to update tenant", true)
}

func (f *fakeAPI) ListUsers(_ context.Context, _ string) ([]user.User, error) {
	if err := f.record("ListUsers"); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]user.User(nil), f.users...), nil
}

func (f *fakeAPI) ListTenantUsers(_ context.Context, tenantID, _ string) ([]user.User, error) {
	if err := f.record("ListTenantUsers"); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []user.User
	for _, u := range f.users {
		if u.TenantID == tenantID {
			out = append(out, u)
		}
	}
	return out, nil
}

func (f *fakeAPI) GetUser(_ context.Context, id string) (*user.User, error) {
	if err := f.record("GetUser"); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.ID == id {
			return &u, nil
		}
	}
	return nil, perrors.FromStatus(404, "User not found", "Failed to load user", true)
}

func (f *fakeAPI) CreateUser(_ context.Context, tenantID string, req user.CreateUserRequest) (*user.User, error) {
	if err := f.record("CreateUser"); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	u := user.User{ID: "new-" + req.Email, TenantID: tenantID, Email: req.Email, Role: rbac.RoleUser, IsActive: true}
	f.users = append(f.users, u)
	return &u, nil
}

func (f *fakeAPI) UpdateUser(_ context.Context, id string, _ user.UpdateUserRequest) (*user.User, error) {
	if err := f.record("UpdateUser"); err != nil {
		return nil, err
	}
	return f.GetUser(context.Background(), id)
}

func (f *fakeAPI) DeleteUser(_ context.Context, _ string) error {
	return f.record("DeleteUser")
}

func (f *fakeAPI) ListProjects(_ context.Context) ([]project.Project, error) {
	f.mu.Lock()
	var gate chan struct{}
	if len(f.listGates) > 0 {
		gate, f.listGates = f.listGates[0], f.listGates[1:]
	}
	snapshot := append([]project.Project(nil), f.projects...)
	f.mu.Unlock()

	if gate != nil {
		<-gate
	}
	if err := f.record("ListProjects"); err != nil {
		return nil, err
	}
	return snapshot, nil
}

func (f *fakeAPI) GetProject(_ context.Context, id string) (*project.Project, error) {
	if err := f.record("GetProject"); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, p := range f.projects {
		if p.ID == id {
			return &p, nil
		}
	}
	return nil, notFoundErr
}

func (f *fakeAPI) CreateProject(_ context.Context, req project.CreateProjectRequest) (*project.Project, error) {
	if err := f.record("CreateProject"); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	p := project.Project{ID: "p-" + req.Name, TenantID: "A", Name: req.Name, Status: project.StatusActive}
	f.projects = append(f.projects, p)
	return &p, nil
}

func (f *fakeAPI) UpdateProject(_ context.Context, id string, _ project.UpdateProjectRequest) (*project.Project, error) {
	if err := f.record("UpdateProject"); err != nil {
		return nil, err
	}
	return f.GetProject(context.Background(), id)
}

func (f *fakeAPI) DeleteProject(_ context.Context, id string) error {
	if err := f.record("DeleteProject"); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	for i, p := range f.projects {
		if p.ID == id {
			f.projects = append(f.projects[:i], f.projects[i+1:]...)
			return nil
		}
	}
	return notFoundErr
}

func (f *fakeAPI) ListTasks(_ context.Context, projectID string) ([]task.Task, error) {
	if err := f.record("ListTasks"); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []task.Task
	for _, t := range f.tasks {
		if t.ProjectID == projectID {
			out = append(out, t)
		}
	}
	return out, nil
}

func (f *fakeAPI) CreateTask(_ context.Context, projectID string, req task.CreateTaskRequest) (*task.Task, error) {
	if err := f.record("CreateTask"); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	t := task.Task{ID: "t-" + req.Title, ProjectID: projectID, TenantID: "A", Title: req.Title, Status: task.StatusTodo, Priority: task.PriorityMedium}
	f.tasks = append(f.tasks, t)
	return &t, nil
}

func (f *fakeAPI) UpdateTask(_ context.Context, id string, req task.UpdateTaskRequest) (*task.Task, error) {
	if err := f.record("UpdateTask"); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.tasks {
		if f.tasks[i].ID == id {
			f.tasks[i].Title = req.Title
			out := f.tasks[i]
			return &out, nil
		}
	}
	return nil, perrors.FromStatus(404, "Task not found", "Failed to update task", true)
}

func (f *fakeAPI) SetTaskStatus(_ context.Context, id string, status task.Status) (*task.Task, error) {
	if err := f.record("SetTaskStatus"); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.tasks {
		if f.tasks[i].ID == id {
			f.tasks[i].Status = status
			out := f.tasks[i]
			return &out, nil
		}
	}
	return nil, perrors.FromStatus(404, "Task not found", "Failed to update task status", true)
}

func (f *fakeAPI) DeleteTask(_ context.Context, _ string) error {
	return f.record("DeleteTask")
}

func TestProjects_MemberCreateDeniedLocally(t *testing.T) {
	api := newFakeAPI()
	projects := NewProjects(api, memberA, AlwaysConfirm)
	require.NoError(t, projects.Reload(context.Background()))
	before := projects.Items()
	calls := api.total()

	_, err := projects.Create(context.Background(), project.CreateProjectRequest{Name: "Zeus"})

	require.Error(t, err)
	assert.True(t, perrors.Is(err, perrors.ErrCodeUnauthorized))
	assert.Equal(t, "You are not authorized to create project", err.Error())
	assert.Equal(t, calls, api.total())
	assert.Equal(t, before, projects.Items())
	assert.Equal(t, StatusReady, projects.Status())
}

func TestProjects_CreateReloads(t *testing.T) {
	api := newFakeAPI()
	projects := NewProjects(api, adminA, AlwaysConfirm)
	require.NoError(t, projects.Reload(context.Background()))

	created, err := projects.Create(context.Background(), project.CreateProjectRequest{Name: "Zeus"})
	require.NoError(t, err)

	assert.Equal(t, "Zeus", created.Name)
	assert.Equal(t, 2, api.count("ListProjects"))
	assert.Len(t, projects.Items(), 2)
}

func TestProjects_SuperAdminListDenied(t *testing.T) {
	api := newFakeAPI()
	projects := NewProjects(api, superAdmin, AlwaysConfirm)

	err := projects.Reload(context.Background())

	assert.True(t, perrors.Is(err, perrors.ErrCodeUnauthorized))
	assert.Equal(t, StatusErrored, projects.Status())
	assert.Zero(t, api.count("ListProjects"))
}

func TestProjects_DeleteNotConfirmed(t *testing.T) {
	api := newFakeAPI()
	asked := ""
	projects := NewProjects(api, adminA, ConfirmFunc(func(prompt string) bool {
		asked = prompt
		return false
	}))
	require.NoError(t, projects.Reload(context.Background()))

	err := projects.Delete(context.Background(), "p1")

	assert.ErrorIs(t, err, ErrNotConfirmed)
	assert.True(t, perrors.Is(err, perrors.ErrCodeNotConfirmed))
	assert.Equal(t, "Delete project Apollo and all of its tasks?", asked)
	assert.Zero(t, api.count("DeleteProject"))
	assert.Len(t, projects.Items(), 1)
}

func TestProjects_DeleteDeniedBeforeConfirm(t *testing.T) {
	api := newFakeAPI()
	asked := false
	projects := NewProjects(api, memberA, ConfirmFunc(func(string) bool {
		asked = true
		return true
	}))
	require.NoError(t, projects.Reload(context.Background()))

	err := projects.Delete(context.Background(), "p1")

	assert.True(t, perrors.Is(err, perrors.ErrCodeUnauthorized))
	assert.False(t, asked)
	assert.Zero(t, api.count("DeleteProject"))
}

func TestMutationsDeniedWithEmptyCache(t *testing.T) {
	api := newFakeAPI()
	ctx := context.Background()
	projects := NewProjects(api, memberA, AlwaysConfirm)
	users := NewUsers(api, memberA, AlwaysConfirm)

	err := projects.Delete(ctx, "p1")
	assert.True(t, perrors.Is(err, perrors.ErrCodeUnauthorized))

	name := "Renamed"
	_, err = projects.Update(ctx, "p1", project.UpdateProjectRequest{Name: &name})
	assert.True(t, perrors.Is(err, perrors.ErrCodeUnauthorized))

	err = users.Delete(ctx, "u-b")
	assert.True(t, perrors.Is(err, perrors.ErrCodeUnauthorized))

	_, err = NewProjects(api, superAdmin, AlwaysConfirm).Get(ctx, "p1")
	assert.True(t, perrors.Is(err, perrors.ErrCodeUnauthorized))

	assert.Zero(t, api.total())
}

func TestProjects_NotFoundReloadsWithNotice(t *testing.T) {
	api := newFakeAPI()
	projects := NewProjects(api, adminA, AlwaysConfirm)
	require.NoError(t, projects.Reload(context.Background()))

	api.mu.Lock()
	api.projects = nil
	api.mu.Unlock()

	_, err := projects.Update(context.Background(), "p1", project.UpdateProjectRequest{})

	assert.True(t, perrors.Is(err, perrors.ErrCodeNotFound))
	assert.Equal(t, 2, api.count("ListProjects"))
	assert.Empty(t, projects.Items())
	assert.Equal(t, "That project no longer exists. The list has been refreshed.", projects.TakeNotice())
	assert.Empty(t, projects.TakeNotice())
}

func TestProjects_OneSubmissionAtATime(t *testing.T) {
	api := newFakeAPI()
	projects := NewProjects(api, adminA, AlwaysConfirm)
	require.NoError(t, projects.Reload(context.Background()))

	api.mu.Lock()
	api.gate = make(chan struct{})
	gate := api.gate
	api.mu.Unlock()

	done := make(chan error)
	go func() {
		_, err := projects.Create(context.Background(), project.CreateProjectRequest{Name: "Zeus"})
		done <- err
	}()
	require.Eventually(t, projects.Submitting, time.Second, 5*time.Millisecond)

	_, err := projects.Create(context.Background(), project.CreateProjectRequest{Name: "Hera"})
	assert.ErrorIs(t, err, ErrSubmissionInFlight)
	assert.True(t, perrors.Is(err, perrors.ErrCodeSubmissionInFlight))

	api.mu.Lock()
	api.gate = nil
	api.mu.Unlock()
	close(gate)

	require.NoError(t, <-done)
	assert.Equal(t, 1, api.count("CreateProject"))
	assert.False(t, projects.Submitting())
}

func TestCollection_SupersededReloadDiscarded(t *testing.T) {
	api := newFakeAPI()
	projects := NewProjects(api, adminA, AlwaysConfirm)

	slow := make(chan struct{})
	api.listGates = []chan struct{}{slow}

	done := make(chan error)
	go func() { done <- projects.Reload(context.Background()) }()
	require.Eventually(t, api.gatesDrained, time.Second, 5*time.Millisecond)

	api.mu.Lock()
	api.projects = append(api.projects, project.Project{ID: "p2", TenantID: "A", Name: "Zeus"})
	api.mu.Unlock()
	require.NoError(t, projects.Reload(context.Background()))
	require.Len(t, projects.Items(), 2)

	close(slow)
	require.NoError(t, <-done)
	assert.Len(t, projects.Items(), 2)
	assert.Equal(t, StatusReady, projects.Status())
}

func TestCollection_DetachIgnoresLateResponses(t *testing.T) {
	api := newFakeAPI()
	projects := NewProjects(api, adminA, AlwaysConfirm)

	slow := make(chan struct{})
	api.listGates = []chan struct{}{slow}

	done := make(chan error)
	go func() { done <- projects.Reload(context.Background()) }()
	require.Eventually(t, api.gatesDrained, time.Second, 5*time.Millisecond)

	projects.Detach()
	close(slow)
	require.NoError(t, <-done)

	assert.Empty(t, projects.Items())
	assert.Equal(t, StatusLoading, projects.Status())
}

func TestCollection_ErroredKeepsLastItems(t *testing.T) {
	api := newFakeAPI()
	projects := NewProjects(api, adminA, AlwaysConfirm)
	require.NoError(t, projects.Reload(context.Background()))

	api.mu.Lock()
	api.failNext = perrors.New(perrors.ErrCodeNetworkFailure, "Failed to load projects", errors.New("connection refused"))
	api.mu.Unlock()

	err := projects.Reload(context.Background())

	assert.True(t, perrors.Is(err, perrors.ErrCodeNetworkFailure))
	assert.Equal(t, StatusErrored, projects.Status())
	assert.Equal(t, err, projects.Err())
	assert.Len(t, projects.Items(), 1)
}

func TestUsers_TenantAdminSeesOwnTenantOnly(t *testing.T) {
	api := newFakeAPI()
	users := NewUsers(api, adminA, AlwaysConfirm)

	items, err := users.List(context.Background())
	require.NoError(t, err)

	require.Len(t, items, 2)
	for _, u := range items {
		assert.Equal(t, "A", u.TenantID)
	}
	assert.Zero(t, api.count("ListUsers"))
	assert.Equal(t, 1, api.count("ListTenantUsers"))
}

func TestUsers_MemberCannotList(t *testing.T) {
	api := newFakeAPI()
	users := NewUsers(api, memberA, AlwaysConfirm)

	_, err := users.List(context.Background())

	assert.True(t, perrors.Is(err, perrors.ErrCodeUnauthorized))
	assert.Zero(t, api.total())
}

func TestUsers_SuperAdminListsGlobally(t *testing.T) {
	api := newFakeAPI()
	users := NewUsers(api, superAdmin, AlwaysConfirm)

	items, err := users.List(context.Background())
	require.NoError(t, err)
	assert.Len(t, items, 3)
	assert.Equal(t, 1, api.count("ListUsers"))
}

func TestUsers_SelfDeleteDenied(t *testing.T) {
	api := newFakeAPI()
	users := NewUsers(api, adminA, AlwaysConfirm)
	require.NoError(t, users.Reload(context.Background()))

	err := users.Delete(context.Background(), "ta-a")

	assert.True(t, perrors.Is(err, perrors.ErrCodeUnauthorized))
	assert.Zero(t, api.count("DeleteUser"))
}

func TestUsers_CreateInOwnTenant(t *testing.T) {
	api := newFakeAPI()
	users := NewUsers(api, adminA, AlwaysConfirm)

	created, err := users.Create(context.Background(), user.CreateUserRequest{Email: "cy@acme.io", Password: "secret123", FullName: "Cy"})
	require.NoError(t, err)

	assert.Equal(t, "A", created.TenantID)
	assert.Len(t, users.Items(), 3)
}

func TestTenants_ChangePlan(t *testing.T) {
	api := newFakeAPI()
	tenants := NewTenants(api, superAdmin)
	require.NoError(t, tenants.Reload(context.Background()))
	projectsBefore := append([]project.Project(nil), api.projects...)
	usersBefore := append([]user.User(nil), api.users...)

	updated, err := tenants.ChangePlan(context.Background(), "A", tenant.PlanPro)
	require.NoError(t, err)

	assert.Equal(t, tenant.PlanPro, updated.SubscriptionPlan)
	got, ok := tenants.Find("A")
	require.True(t, ok)
	assert.Equal(t, tenant.PlanPro, got.SubscriptionPlan)
	assert.Equal(t, 25, got.MaxUsers)

	assert.Nil(t, api.lastTenantUpdate.Name)
	assert.Nil(t, api.lastTenantUpdate.Status)
	assert.Equal(t, projectsBefore, api.projects)
	assert.Equal(t, usersBefore, api.users)
}

func TestTenants_AdminCannotChangePlan(t *testing.T) {
	api := newFakeAPI()
	tenants := NewTenants(api, adminA)

	_, err := tenants.ChangePlan(context.Background(), "A", tenant.PlanEnterprise)

	assert.True(t, perrors.Is(err, perrors.ErrCodeUnauthorized))
	assert.Zero(t, api.total())
}

func TestTenants_UpdateNeverSendsPlan(t *testing.T) {
	api := newFakeAPI()
	tenants := NewTenants(api, superAdmin)
	name := "Acme Corp"
	plan := tenant.PlanEnterprise

	_, err := tenants.Update(context.Background(), "A", tenant.UpdateTenantRequest{Name: &name, SubscriptionPlan: &plan})
	require.NoError(t, err)

	assert.Nil(t, api.lastTenantUpdate.SubscriptionPlan)
	assert.Equal(t, "Acme Corp", *api.lastTenantUpdate.Name)
}

func TestTasks_SetStatusIdempotent(t *testing.T) {
	api := newFakeAPI()
	tasks := NewTasks(api, memberA, AlwaysConfirm, "p1", "A")

	for range 2 {
		got, err := tasks.SetStatus(context.Background(), "t1", task.StatusTodo)
		require.NoError(t, err)
		assert.Equal(t, task.StatusTodo, got.Status)
	}
	assert.Equal(t, 2, api.count("SetTaskStatus"))
}

func TestTasks_AnyTransition(t *testing.T) {
	api := newFakeAPI()
	tasks := NewTasks(api, adminA, AlwaysConfirm, "p1", "A")

	for _, s := range []task.Status{task.StatusCompleted, task.StatusTodo, task.StatusInProgress, task.StatusCompleted} {
		_, err := tasks.SetStatus(context.Background(), "t1", s)
		require.NoError(t, err)
	}
	cols := tasks.ByStatus()
	assert.Len(t, cols[task.StatusCompleted], 1)
	assert.Empty(t, cols[task.StatusTodo])
	assert.Contains(t, cols, task.StatusInProgress)
}

func TestTasks_InvalidStatusRejectedLocally(t *testing.T) {
	api := newFakeAPI()
	tasks := NewTasks(api, adminA, AlwaysConfirm, "p1", "A")

	_, err := tasks.SetStatus(context.Background(), "t1", task.Status("BLOCKED"))

	assert.True(t, perrors.Is(err, perrors.ErrCodeValidationFailed))
	assert.Zero(t, api.total())
}

func TestTasks_CrossTenantDenied(t *testing.T) {
	api := newFakeAPI()
	tasks := NewTasks(api, adminA, AlwaysConfirm, "p9", "B")

	_, err := tasks.List(context.Background())
	assert.True(t, perrors.Is(err, perrors.ErrCodeUnauthorized))

	_, err = tasks.SetStatus(context.Background(), "t9", task.StatusCompleted)
	assert.True(t, perrors.Is(err, perrors.ErrCodeUnauthorized))

	assert.Zero(t, api.total())
}

func TestTasks_MemberCannotCreateOrDelete(t *testing.T) {
	api := newFakeAPI()
	tasks := NewTasks(api, memberA, AlwaysConfirm, "p1", "A")

	_, err := tasks.Create(context.Background(), task.CreateTaskRequest{Title: "Ship"})
	assert.True(t, perrors.Is(err, perrors.ErrCodeUnauthorized))

	err = tasks.Delete(context.Background(), "t1")
	assert.True(t, perrors.Is(err, perrors.ErrCodeUnauthorized))

	assert.Zero(t, api.total())
}

func TestAnonymousDeniedEverything(t *testing.T) {
	api := newFakeAPI()

	_, err := NewProjects(api, anonymous, AlwaysConfirm).List(context.Background())
	assert.True(t, perrors.Is(err, perrors.ErrCodeUnauthorized))

	_, err = NewTenants(api, anonymous).List(context.Background())
	assert.True(t, perrors.Is(err, perrors.ErrCodeUnauthorized))

	assert.Zero(t, api.total())
}
