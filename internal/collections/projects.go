package collections

import (
	"context"

	"github.com/curaious/taskdesk/internal/rbac"
	"github.com/curaious/taskdesk/internal/services/project"
)

type ProjectAPI interface {
	ListProjects(ctx context.Context) ([]project.Project, error)
	GetProject(ctx context.Context, id string) (*project.Project, error)
	CreateProject(ctx context.Context, req project.CreateProjectRequest) (*project.Project, error)
	UpdateProject(ctx context.Context, id string, req project.UpdateProjectRequest) (*project.Project, error)
	DeleteProject(ctx context.Context, id string) error
}

type Projects struct {
	*Collection[project.Project]
	api     ProjectAPI
	confirm Confirmer
}

func NewProjects(api ProjectAPI, identity Identity, confirm Confirmer) *Projects {
	p := &Projects{api: api, confirm: confirm}
	p.Collection = newCollection(rbac.KindProject, identity, func(x project.Project) string { return x.ID }, p.load)
	return p
}

func (p *Projects) load(ctx context.Context) ([]project.Project, error) {
	if _, err := p.listScope(ctx); err != nil {
		return nil, err
	}
	return p.api.ListProjects(ctx)
}

func (p *Projects) resource(ctx context.Context, action rbac.Action, id string) (rbac.Resource, error) {
	if err := p.precheck(ctx, action); err != nil {
		return rbac.Resource{}, err
	}
	if cached, ok := p.Find(id); ok {
		return cached.Resource(), nil
	}
	fetched, err := p.api.GetProject(ctx, id)
	if err != nil {
		return rbac.Resource{}, err
	}
	return fetched.Resource(), nil
}

func (p *Projects) Get(ctx context.Context, id string) (*project.Project, error) {
	if err := p.precheck(ctx, rbac.ActionView); err != nil {
		return nil, err
	}
	proj, err := p.api.GetProject(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := p.authorize(ctx, rbac.ActionView, proj.Resource()); err != nil {
		return nil, err
	}
	return proj, nil
}

func (p *Projects) Create(ctx context.Context, req project.CreateProjectRequest) (*project.Project, error) {
	if err := p.authorize(ctx, rbac.ActionCreate, rbac.Resource{Kind: rbac.KindProject, TenantID: p.principal().TenantID}); err != nil {
		return nil, err
	}

	var out *project.Project
	err := p.submit(ctx, "Failed to create project", func(ctx context.Context) (err error) {
		out, err = p.api.CreateProject(ctx, req)
		return err
	})
	return out, err
}

func (p *Projects) Update(ctx context.Context, id string, req project.UpdateProjectRequest) (*project.Project, error) {
	res, err := p.resource(ctx, rbac.ActionUpdate, id)
	if err != nil {
		return nil, err
	}
	if err := p.authorize(ctx, rbac.ActionUpdate, res); err != nil {
		return nil, err
	}

	var out *project.Project
	err = p.submit(ctx, "Failed to update project", func(ctx context.Context) (err error) {
		out, err = p.api.UpdateProject(ctx, id, req)
		return err
	})
	return out, err
}

func (p *Projects) Delete(ctx context.Context, id string) error {
	res, err := p.resource(ctx, rbac.ActionDelete, id)
	if err != nil {
		return err
	}
	if err := p.authorize(ctx, rbac.ActionDelete, res); err != nil {
		return err
	}

	label := "this project"
	if cached, ok := p.Find(id); ok {
		label = cached.Name
	}
	if err := p.askConfirm(p.confirm, "Delete project "+label+" and all of its tasks?"); err != nil {
		return err
	}

	return p.submit(ctx, "Failed to delete project", func(ctx context.Context) error {
		return p.api.DeleteProject(ctx, id)
	})
}
