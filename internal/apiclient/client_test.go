package apiclient

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/valyala/fasthttp"
	"github.com/valyala/fasthttp/fasthttputil"

	"github.com/curaious/taskdesk/internal/pagination"
	"github.com/curaious/taskdesk/internal/perrors"
	"github.com/curaious/taskdesk/internal/rbac"
	"github.com/curaious/taskdesk/internal/services/auth"
	"github.com/curaious/taskdesk/internal/services/project"
	"github.com/curaious/taskdesk/internal/services/task"
)

type staticToken string

func (s staticToken) Token() string { return string(s) }

type recorded struct {
	method string
	path   string
	query  string
	auth   string
	body   string
}

// newTestClient serves handler over an in-memory listener and returns a
// client dialing it.
func newTestClient(t *testing.T, handler fasthttp.RequestHandler) (*Client, *[]recorded) {
	t.Helper()

	var calls []recorded
	ln := fasthttputil.NewInmemoryListener()
	srv := &fasthttp.Server{Handler: func(ctx *fasthttp.RequestCtx) {
		calls = append(calls, recorded{
			method: string(ctx.Method()),
			path:   string(ctx.Path()),
			query:  string(ctx.QueryArgs().QueryString()),
			auth:   string(ctx.Request.Header.Peek("Authorization")),
			body:   string(ctx.PostBody()),
		})
		handler(ctx)
	}}
	go func() { _ = srv.Serve(ln) }()
	t.Cleanup(func() {
		_ = srv.Shutdown()
		_ = ln.Close()
	})

	hc := &fasthttp.Client{Dial: func(string) (net.Conn, error) { return ln.Dial() }}
	return New("http://taskdesk.test/api", time.Second, WithHTTPClient(hc)), &calls
}

func reply(status int, body string) fasthttp.RequestHandler {
	return func(ctx *fasthttp.RequestCtx) {
		ctx.SetStatusCode(status)
		ctx.SetContentType("application/json")
		ctx.SetBodyString(body)
	}
}

func TestLogin_DecodesSession(t *testing.T) {
	c, calls := newTestClient(t, reply(200, `{"message":"Login successful","status":200,"data":{"token":"tok","expiresIn":86400,"user":{"id":"u1","tenantId":"t1","email":"ann@acme.io","fullName":"Ann","role":"TENANT_ADMIN","isActive":true,"tenant":{"id":"t1","name":"Acme","subdomain":"acme","status":"ACTIVE","subscriptionPlan":"FREE","maxUsers":5,"maxProjects":3}}}}`))

	s, err := c.Login(context.Background(), auth.LoginRequest{Email: "ann@acme.io", Password: "secret123"})
	require.NoError(t, err)

	assert.Equal(t, "tok", s.Token)
	assert.Equal(t, rbac.RoleTenantAdmin, s.User.Role)
	require.NotNil(t, s.User.Tenant)
	assert.Equal(t, "acme", s.User.Tenant.Subdomain)

	require.Len(t, *calls, 1)
	assert.Equal(t, "POST", (*calls)[0].method)
	assert.Equal(t, "/api/auth/login", (*calls)[0].path)
	assert.Empty(t, (*calls)[0].auth)
	assert.Contains(t, (*calls)[0].body, `"email":"ann@acme.io"`)
}

func TestLogin_RejectedCredentials(t *testing.T) {
	c, _ := newTestClient(t, reply(401, `{"message":"Invalid email or password","error":true,"status":401}`))

	_, err := c.Login(context.Background(), auth.LoginRequest{Email: "ann@acme.io", Password: "nope"})

	require.Error(t, err)
	assert.True(t, perrors.Is(err, perrors.ErrCodeInvalidCredentials))
	assert.Equal(t, "Invalid email or password", ServerMessage(err))
}

func TestDo_SendsBearerToken(t *testing.T) {
	c, calls := newTestClient(t, reply(200, `{"message":"success","status":200,"data":[]}`))
	c.SetTokenSource(staticToken("abc"))

	projects, err := c.ListProjects(context.Background())
	require.NoError(t, err)
	assert.Empty(t, projects)
	assert.Equal(t, "Bearer abc", (*calls)[0].auth)
}

func TestDo_ExpiredSessionNotifies(t *testing.T) {
	c, _ := newTestClient(t, reply(401, `{"message":"Authentication required","error":true,"status":401}`))
	c.SetTokenSource(staticToken("stale"))
	expired := 0
	c.OnAuthExpired(func() { expired++ })

	_, err := c.ListProjects(context.Background())

	require.Error(t, err)
	assert.True(t, perrors.Is(err, perrors.ErrCodeAuthenticationExpired))
	assert.Equal(t, 1, expired)
}

func TestDo_StatusMapping(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		code   perrors.ErrCode
		msg    string
	}{
		{"forbidden", 403, `{"message":"You are not authorized to create project"}`, perrors.ErrCodeUnauthorized, "You are not authorized to create project"},
		{"not found", 404, `{"message":"Project not found"}`, perrors.ErrCodeNotFound, "Project not found"},
		{"conflict", 409, `{"message":"Project name already exists"}`, perrors.ErrCodeConflict, "Project name already exists"},
		{"limit", 422, `{"message":"Project limit reached"}`, perrors.ErrCodeValidationFailed, "Project limit reached"},
		{"server without message", 500, ``, perrors.ErrCodeInternalServer, "Failed to create project"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, _ := newTestClient(t, reply(tt.status, tt.body))
			c.SetTokenSource(staticToken("abc"))

			_, err := c.CreateProject(context.Background(), project.CreateProjectRequest{Name: "Apollo"})

			require.Error(t, err)
			assert.True(t, perrors.Is(err, tt.code))
			assert.Equal(t, tt.msg, ServerMessage(err))
		})
	}
}

func TestDo_TransportFailure(t *testing.T) {
	hc := &fasthttp.Client{Dial: func(string) (net.Conn, error) { return nil, net.ErrClosed }}
	c := New("http://taskdesk.test/api", time.Second, WithHTTPClient(hc))

	_, err := c.ListTenants(context.Background())

	require.Error(t, err)
	assert.True(t, perrors.Is(err, perrors.ErrCodeNetworkFailure))
}

func TestDo_CancelledContext(t *testing.T) {
	c, calls := newTestClient(t, reply(200, `{}`))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := c.DeleteProject(ctx, "p1")

	assert.True(t, perrors.Is(err, perrors.ErrCodeNetworkFailure))
	assert.Empty(t, *calls)
}

func TestSetTaskStatus_Path(t *testing.T) {
	c, calls := newTestClient(t, reply(200, `{"message":"ok","data":{"id":"t9","status":"COMPLETED","assignedTo":null,"dueDate":"2026-11-01"}}`))

	got, err := c.SetTaskStatus(context.Background(), "t9", task.StatusCompleted)
	require.NoError(t, err)

	assert.Equal(t, task.StatusCompleted, got.Status)
	assert.Nil(t, got.AssignedTo)
	require.NotNil(t, got.DueDate)
	assert.Equal(t, "2026-11-01", got.DueDate.String())

	assert.Equal(t, "PATCH", (*calls)[0].method)
	assert.Equal(t, "/api/tasks/t9/status", (*calls)[0].path)
	assert.JSONEq(t, `{"status":"COMPLETED"}`, (*calls)[0].body)
}

func TestListTenantUsers_Search(t *testing.T) {
	c, calls := newTestClient(t, reply(200, `{"data":[{"id":"u1","email":"ann@acme.io","role":"USER","isActive":true}]}`))

	users, err := c.ListTenantUsers(context.Background(), "t1", "ann smith")
	require.NoError(t, err)
	require.Len(t, users, 1)

	assert.Equal(t, "/api/tenants/t1/users", (*calls)[0].path)
	assert.Equal(t, "limit=100&page=1&search=ann+smith", (*calls)[0].query)
}

func TestListProjects_WalksPages(t *testing.T) {
	c, calls := newTestClient(t, func(ctx *fasthttp.RequestCtx) {
		ctx.SetContentType("application/json")
		if string(ctx.QueryArgs().Peek("page")) == "1" {
			ctx.SetBodyString(`{"data":[{"id":"p1"}],"pagination":{"currentPage":1,"totalPages":2,"total":2,"limit":100}}`)
			return
		}
		ctx.SetBodyString(`{"data":[{"id":"p2"}],"pagination":{"currentPage":2,"totalPages":2,"total":2,"limit":100}}`)
	})

	projects, err := c.ListProjects(context.Background())
	require.NoError(t, err)
	require.Len(t, projects, 2)
	assert.Equal(t, "p2", projects[1].ID)

	require.Len(t, *calls, 2)
	assert.Equal(t, "limit=100&page=2", (*calls)[1].query)
}

func TestListProjectsPage(t *testing.T) {
	c, calls := newTestClient(t, reply(200, `{"data":[{"id":"p3"}],"pagination":{"currentPage":3,"totalPages":4,"total":61,"limit":20}}`))

	projects, info, err := c.ListProjectsPage(context.Background(), pagination.New(3, 20, 20))
	require.NoError(t, err)
	require.Len(t, projects, 1)
	assert.Equal(t, &pagination.Info{CurrentPage: 3, TotalPages: 4, Total: 61, Limit: 20}, info)
	assert.Equal(t, "limit=20&page=3", (*calls)[0].query)
}
