package views

import (
	"context"
	"fmt"

	"github.com/curaious/taskdesk/internal/collections"
	"github.com/curaious/taskdesk/internal/services/tenant"
)

type Tenants struct {
	session Session
	tenants *collections.Tenants
}

func NewTenants(session Session, api API) *Tenants {
	return &Tenants{session: session, tenants: collections.NewTenants(api, session)}
}

func (v *Tenants) Load(ctx context.Context) error {
	return loadAll(ctx, "tenants", v.tenants.Reload)
}

func (v *Tenants) Items() []tenant.Tenant {
	return v.tenants.Items()
}

// ChangePlan moves a tenant to plan and returns the success notice.
func (v *Tenants) ChangePlan(ctx context.Context, id string, plan tenant.Plan) (string, error) {
	updated, err := v.tenants.ChangePlan(ctx, id, plan)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("Updated %s to %s plan", updated.Name, updated.SubscriptionPlan), nil
}

func (v *Tenants) Update(ctx context.Context, id string, req tenant.UpdateTenantRequest) (*tenant.Tenant, error) {
	return v.tenants.Update(ctx, id, req)
}

func (v *Tenants) TakeNotice() string {
	return v.tenants.TakeNotice()
}

func (v *Tenants) Close() {
	detachAll(v.tenants)
}
