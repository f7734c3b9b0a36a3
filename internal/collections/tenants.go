package collections

import (
	"context"

	"github.com/curaious/taskdesk/internal/rbac"
	"github.com/curaious/taskdesk/internal/services/tenant"
)

type TenantAPI interface {
	ListTenants(ctx context.Context) ([]tenant.Tenant, error)
	GetTenant(ctx context.Context, id string) (*tenant.Tenant, error)
	UpdateTenant(ctx context.Context, id string, req tenant.UpdateTenantRequest) (*tenant.Tenant, error)
}

type Tenants struct {
	*Collection[tenant.Tenant]
	api TenantAPI
}

func NewTenants(api TenantAPI, identity Identity) *Tenants {
	t := &Tenants{api: api}
	t.Collection = newCollection(rbac.KindTenant, identity, func(x tenant.Tenant) string { return x.ID }, t.load)
	return t
}

func (t *Tenants) load(ctx context.Context) ([]tenant.Tenant, error) {
	if _, err := t.listScope(ctx); err != nil {
		return nil, err
	}
	return t.api.ListTenants(ctx)
}

func tenantResource(id string) rbac.Resource {
	return rbac.Resource{Kind: rbac.KindTenant, ID: id, TenantID: id}
}

func (t *Tenants) Get(ctx context.Context, id string) (*tenant.Tenant, error) {
	if err := t.authorize(ctx, rbac.ActionView, tenantResource(id)); err != nil {
		return nil, err
	}
	return t.api.GetTenant(ctx, id)
}

// Update changes a tenant's name or status. Plan changes go through
// ChangePlan.
func (t *Tenants) Update(ctx context.Context, id string, req tenant.UpdateTenantRequest) (*tenant.Tenant, error) {
	req.SubscriptionPlan = nil
	if err := t.authorize(ctx, rbac.ActionUpdate, tenantResource(id)); err != nil {
		return nil, err
	}

	var out *tenant.Tenant
	err := t.submit(ctx, "Failed to update tenant", func(ctx context.Context) (err error) {
		out, err = t.api.UpdateTenant(ctx, id, req)
		return err
	})
	return out, err
}

// ChangePlan moves a tenant to plan. The server recomputes its limits.
func (t *Tenants) ChangePlan(ctx context.Context, id string, plan tenant.Plan) (*tenant.Tenant, error) {
	if err := t.authorize(ctx, rbac.ActionManageTenantPlan, tenantResource(id)); err != nil {
		return nil, err
	}

	var out *tenant.Tenant
	err := t.submit(ctx, "Failed to update tenant plan", func(ctx context.Context) (err error) {
		out, err = t.api.UpdateTenant(ctx, id, tenant.UpdateTenantRequest{SubscriptionPlan: &plan})
		return err
	})
	return out, err
}
