package auth

import (
	"github.com/curaious/taskdesk/internal/rbac"
	"github.com/curaious/taskdesk/internal/services/tenant"
	"github.com/curaious/taskdesk/internal/services/user"
)

// Profile is the signed-in user together with their tenant. SUPER_ADMIN
// profiles carry no tenant.
type Profile struct {
	user.User
	Tenant *tenant.Tenant `json:"tenant,omitempty"`
}

func (p *Profile) Principal() rbac.Principal {
	return p.User.Principal()
}

// Session is returned by login and tenant registration.
type Session struct {
	Token     string  `json:"token"`
	ExpiresIn int64   `json:"expiresIn"`
	User      Profile `json:"user"`
}

type LoginRequest struct {
	Email           string `json:"email"`
	Password        string `json:"password"`
	TenantSubdomain string `json:"tenantSubdomain,omitempty"`
}
