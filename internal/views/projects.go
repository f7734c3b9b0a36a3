package views

import (
	"context"

	"github.com/curaious/taskdesk/internal/collections"
	"github.com/curaious/taskdesk/internal/rbac"
	"github.com/curaious/taskdesk/internal/services/project"
)

type Projects struct {
	session  Session
	projects *collections.Projects
}

func NewProjects(session Session, api API, confirm collections.Confirmer) *Projects {
	return &Projects{session: session, projects: collections.NewProjects(api, session, confirm)}
}

func (v *Projects) Load(ctx context.Context) error {
	return loadAll(ctx, "projects", v.projects.Reload)
}

func (v *Projects) Items() []project.Project {
	return v.projects.Items()
}

func (v *Projects) Status() collections.Status {
	return v.projects.Status()
}

func (v *Projects) TakeNotice() string {
	return v.projects.TakeNotice()
}

func (v *Projects) CanCreate() bool {
	p := principalOf(v.session)
	return !busy(v.projects) &&
		rbac.Can(p, rbac.ActionCreate, rbac.Resource{Kind: rbac.KindProject, TenantID: p.TenantID})
}

// Actions lists the row actions the principal may take on proj.
func (v *Projects) Actions(proj *project.Project) []rbac.Action {
	if busy(v.projects) {
		return nil
	}
	var out []rbac.Action
	for _, a := range rbac.Allowed(principalOf(v.session), proj.Resource()) {
		if a != rbac.ActionView && a != rbac.ActionCreate {
			out = append(out, a)
		}
	}
	return out
}

func (v *Projects) Create(ctx context.Context, req project.CreateProjectRequest) (*project.Project, error) {
	return v.projects.Create(ctx, req)
}

func (v *Projects) Update(ctx context.Context, id string, req project.UpdateProjectRequest) (*project.Project, error) {
	return v.projects.Update(ctx, id, req)
}

func (v *Projects) Delete(ctx context.Context, id string) error {
	return v.projects.Delete(ctx, id)
}

func (v *Projects) Close() {
	detachAll(v.projects)
}
