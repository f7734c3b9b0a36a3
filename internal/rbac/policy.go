// Package rbac holds the tenant-scoped authorization policy shared by the
// dashboard client and the API server. Every "may this principal do X"
// question in the module is answered here.
package rbac

type Role string

const (
	RoleSuperAdmin  Role = "SUPER_ADMIN"
	RoleTenantAdmin Role = "TENANT_ADMIN"
	RoleUser        Role = "USER"
)

// Valid reports whether r is one of the three known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleSuperAdmin, RoleTenantAdmin, RoleUser:
		return true
	}
	return false
}

// Rank orders roles from most (3) to least (1) privileged; unknown roles rank 0.
func (r Role) Rank() int {
	switch r {
	case RoleSuperAdmin:
		return 3
	case RoleTenantAdmin:
		return 2
	case RoleUser:
		return 1
	}
	return 0
}

type Action string

const (
	ActionView             Action = "view"
	ActionCreate           Action = "create"
	ActionUpdate           Action = "update"
	ActionDelete           Action = "delete"
	ActionChangeStatus     Action = "changeStatus"
	ActionManageTenantPlan Action = "manageTenantPlan"
)

type Kind string

const (
	KindTenant  Kind = "tenant"
	KindUser    Kind = "user"
	KindProject Kind = "project"
	KindTask    Kind = "task"
)

// Principal is the authenticated actor. TenantID is empty for SUPER_ADMIN.
type Principal struct {
	ID       string `json:"id"`
	TenantID string `json:"tenantId,omitempty"`
	Role     Role   `json:"role"`
	IsActive bool   `json:"isActive"`
}

// Resource identifies the target of an action. TenantID is the owning
// tenant; for tasks it is the tenant of the task's project, for tenants it is
// the tenant's own ID. ID may be empty for create.
type Resource struct {
	Kind     Kind
	ID       string
	TenantID string
}

// scope says where a verdict applies relative to the principal's tenant.
type scope int

const (
	scopeNone   scope = iota
	scopeAny          // any tenant, including none
	scopeTenant       // resource must belong to the principal's tenant
	scopeSelf         // resource must be the principal's own user record
)

type rule struct {
	kind   Kind
	action Action
}

// decisions is the role x (kind, action) table. Missing entries deny.
var decisions = map[Role]map[rule]scope{
	RoleSuperAdmin: {
		{KindTenant, ActionView}:             scopeAny,
		{KindTenant, ActionUpdate}:           scopeAny,
		{KindTenant, ActionManageTenantPlan}: scopeAny,
		{KindUser, ActionView}:               scopeAny,
	},
	RoleTenantAdmin: {
		{KindTenant, ActionView}:       scopeTenant,
		{KindUser, ActionView}:         scopeTenant,
		{KindUser, ActionCreate}:       scopeTenant,
		{KindUser, ActionUpdate}:       scopeTenant,
		{KindUser, ActionDelete}:       scopeTenant,
		{KindProject, ActionView}:      scopeTenant,
		{KindProject, ActionCreate}:    scopeTenant,
		{KindProject, ActionUpdate}:    scopeTenant,
		{KindProject, ActionDelete}:    scopeTenant,
		{KindTask, ActionView}:         scopeTenant,
		{KindTask, ActionCreate}:       scopeTenant,
		{KindTask, ActionUpdate}:       scopeTenant,
		{KindTask, ActionDelete}:       scopeTenant,
		{KindTask, ActionChangeStatus}: scopeTenant,
	},
	RoleUser: {
		{KindTenant, ActionView}:       scopeTenant,
		{KindUser, ActionView}:         scopeSelf,
		{KindProject, ActionView}:      scopeTenant,
		{KindTask, ActionView}:         scopeTenant,
		{KindTask, ActionChangeStatus}: scopeTenant,
	},
}

// Can decides whether p may perform a on r.
func Can(p Principal, a Action, r Resource) bool {
	if !p.Role.Valid() || p.ID == "" {
		return false
	}

	// Nobody deletes their own user record.
	if r.Kind == KindUser && a == ActionDelete && r.ID == p.ID {
		return false
	}

	if !p.IsActive {
		return a == ActionView && isSelf(p, r)
	}

	s, ok := decisions[p.Role][rule{r.Kind, a}]
	if !ok {
		return false
	}

	switch s {
	case scopeAny:
		return true
	case scopeTenant:
		return sameTenant(p, r)
	case scopeSelf:
		return isSelf(p, r) && sameTenant(p, r)
	}
	return false
}

func sameTenant(p Principal, r Resource) bool {
	return p.TenantID != "" && p.TenantID == r.TenantID
}

func isSelf(p Principal, r Resource) bool {
	return r.Kind == KindUser && r.ID != "" && r.ID == p.ID
}

// MayEver reports whether some resource of kind exists on which p could
// perform a. It lets callers deny before they know which resource is meant.
func MayEver(p Principal, kind Kind, a Action) bool {
	if !p.Role.Valid() || p.ID == "" {
		return false
	}
	if !p.IsActive {
		return a == ActionView && kind == KindUser
	}
	_, ok := decisions[p.Role][rule{kind, a}]
	return ok
}

// Allowed lists every action p may perform on r, in declaration order.
func Allowed(p Principal, r Resource) []Action {
	var out []Action
	for _, a := range []Action{ActionView, ActionCreate, ActionUpdate, ActionDelete, ActionChangeStatus, ActionManageTenantPlan} {
		if Can(p, a, r) {
			out = append(out, a)
		}
	}
	return out
}
