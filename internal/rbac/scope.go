package rbac

// Scope is the tenant filter applied to a listing. It is always derived from
// the principal, never taken from caller input.
type Scope struct {
	Global   bool
	TenantID string
}

// ListScope returns the listing scope of kind for p, or false when p may not
// enumerate that kind at all. Tasks are listed per project: use
// Can(p, ActionView, Resource{Kind: KindTask, TenantID: projectTenant}).
func ListScope(p Principal, kind Kind) (Scope, bool) {
	if !p.Role.Valid() || !p.IsActive {
		return Scope{}, false
	}

	switch kind {
	case KindTenant:
		if p.Role == RoleSuperAdmin {
			return Scope{Global: true}, true
		}
	case KindUser:
		switch p.Role {
		case RoleSuperAdmin:
			return Scope{Global: true}, true
		case RoleTenantAdmin:
			if p.TenantID != "" {
				return Scope{TenantID: p.TenantID}, true
			}
		}
	case KindProject:
		if Can(p, ActionView, Resource{Kind: KindProject, TenantID: p.TenantID}) {
			return Scope{TenantID: p.TenantID}, true
		}
	}

	return Scope{}, false
}

// Contains reports whether a resource owned by tenantID falls inside s.
func (s Scope) Contains(tenantID string) bool {
	return s.Global || (s.TenantID != "" && s.TenantID == tenantID)
}
