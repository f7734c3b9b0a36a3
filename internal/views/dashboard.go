package views

import (
	"context"

	"github.com/curaious/taskdesk/internal/collections"
	"github.com/curaious/taskdesk/internal/rbac"
	"github.com/curaious/taskdesk/internal/services/tenant"
)

type Stats struct {
	Projects int
	Tasks    int
	// Users is only counted for principals allowed to list users.
	Users      int
	Tenants    int
	TenantName string
	Plan       tenant.Plan
}

type QuickAction struct {
	Label   string
	Command string
}

type Dashboard struct {
	session  Session
	projects *collections.Projects
	users    *collections.Users
	tenants  *collections.Tenants
}

func NewDashboard(session Session, api API) *Dashboard {
	return &Dashboard{
		session:  session,
		projects: collections.NewProjects(api, session, nil),
		users:    collections.NewUsers(api, session, nil),
		tenants:  collections.NewTenants(api, session),
	}
}

// Load fetches every list the principal may see.
func (d *Dashboard) Load(ctx context.Context) error {
	p := principalOf(d.session)

	var loaders []func(context.Context) error
	if _, ok := rbac.ListScope(p, rbac.KindProject); ok {
		loaders = append(loaders, d.projects.Reload)
	}
	if _, ok := rbac.ListScope(p, rbac.KindUser); ok {
		loaders = append(loaders, d.users.Reload)
	}
	if _, ok := rbac.ListScope(p, rbac.KindTenant); ok {
		loaders = append(loaders, d.tenants.Reload)
	}
	return loadAll(ctx, "dashboard", loaders...)
}

func (d *Dashboard) Stats() Stats {
	var s Stats
	for _, proj := range d.projects.Items() {
		s.Projects++
		s.Tasks += proj.TaskCount
	}
	s.Users = len(d.users.Items())
	s.Tenants = len(d.tenants.Items())

	if prof := d.session.Profile(); prof != nil && prof.Tenant != nil {
		s.TenantName = prof.Tenant.Name
		s.Plan = prof.Tenant.SubscriptionPlan
	}
	return s
}

// QuickActions lists the shortcuts the principal is allowed to use.
func (d *Dashboard) QuickActions() []QuickAction {
	if busy(d.projects, d.users, d.tenants) {
		return nil
	}
	p := principalOf(d.session)

	var out []QuickAction
	if rbac.Can(p, rbac.ActionCreate, rbac.Resource{Kind: rbac.KindProject, TenantID: p.TenantID}) {
		out = append(out, QuickAction{Label: "Create project", Command: "taskdesk dashboard projects create"})
	}
	if _, ok := rbac.ListScope(p, rbac.KindProject); ok {
		out = append(out, QuickAction{Label: "View projects", Command: "taskdesk dashboard projects"})
	}
	if rbac.Can(p, rbac.ActionCreate, rbac.Resource{Kind: rbac.KindUser, TenantID: p.TenantID}) {
		out = append(out, QuickAction{Label: "Add user", Command: "taskdesk dashboard users create"})
	}
	if _, ok := rbac.ListScope(p, rbac.KindTenant); ok {
		out = append(out, QuickAction{Label: "Manage tenants", Command: "taskdesk dashboard tenants"})
	}
	return out
}

func (d *Dashboard) Close() {
	detachAll(d.projects, d.users, d.tenants)
}
