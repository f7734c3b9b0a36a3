package user

import (
	"time"

	"github.com/curaious/taskdesk/internal/pagination"
	"github.com/curaious/taskdesk/internal/rbac"
)

type User struct {
	ID           string    `db:"id" json:"id"`
	TenantID     string    `db:"tenant_id" json:"tenantId,omitempty"`
	Email        string    `db:"email" json:"email"`
	FullName     string    `db:"full_name" json:"fullName"`
	PasswordHash string    `db:"password_hash" json:"-"`
	Role         rbac.Role `db:"role" json:"role"`
	IsActive     bool      `db:"is_active" json:"isActive"`
	CreatedAt    time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt    time.Time `db:"updated_at" json:"updatedAt"`
}

// Principal returns the authorization identity of u.
func (u *User) Principal() rbac.Principal {
	return rbac.Principal{
		ID:       u.ID,
		TenantID: u.TenantID,
		Role:     u.Role,
		IsActive: u.IsActive,
	}
}

// Resource describes u as a policy target.
func (u *User) Resource() rbac.Resource {
	return rbac.Resource{Kind: rbac.KindUser, ID: u.ID, TenantID: u.TenantID}
}

// CreateUserRequest captures payload for adding a user to a tenant
type CreateUserRequest struct {
	Email    string    `json:"email"`
	Password string    `json:"password"`
	FullName string    `json:"fullName"`
	Role     rbac.Role `json:"role,omitempty"`
}

// UpdateUserRequest captures payload for updating a user; nil fields are left unchanged
type UpdateUserRequest struct {
	Email    *string    `json:"email,omitempty"`
	FullName *string    `json:"fullName,omitempty"`
	Password *string    `json:"password,omitempty"`
	Role     *rbac.Role `json:"role,omitempty"`
	IsActive *bool      `json:"isActive,omitempty"`
}

// ListFilter narrows a user listing. An empty TenantID lists every tenant.
// A zero Page reads the first MaxLimit rows.
type ListFilter struct {
	TenantID string
	Search   string
	Page     pagination.Page
}
