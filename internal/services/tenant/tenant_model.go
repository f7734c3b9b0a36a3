package tenant

import (
	"time"

	"github.com/curaious/taskdesk/internal/rbac"
)

type Plan string

const (
	PlanFree       Plan = "FREE"
	PlanPro        Plan = "PRO"
	PlanEnterprise Plan = "ENTERPRISE"
)

func (p Plan) Valid() bool {
	switch p {
	case PlanFree, PlanPro, PlanEnterprise:
		return true
	}
	return false
}

// Limits returns the user and project caps that come with p.
func (p Plan) Limits() (maxUsers, maxProjects int) {
	switch p {
	case PlanPro:
		return 25, 15
	case PlanEnterprise:
		return 100, 50
	default:
		return 5, 3
	}
}

type Status string

const (
	StatusActive    Status = "ACTIVE"
	StatusSuspended Status = "SUSPENDED"
	StatusInactive  Status = "INACTIVE"
)

func (s Status) Valid() bool {
	switch s {
	case StatusActive, StatusSuspended, StatusInactive:
		return true
	}
	return false
}

type Stats struct {
	TotalUsers    int `json:"totalUsers"`
	TotalProjects int `json:"totalProjects"`
}

// Tenant is an isolated customer organization
type Tenant struct {
	ID               string    `db:"id" json:"id"`
	Name             string    `db:"name" json:"name"`
	Subdomain        string    `db:"subdomain" json:"subdomain"`
	Status           Status    `db:"status" json:"status"`
	SubscriptionPlan Plan      `db:"subscription_plan" json:"subscriptionPlan"`
	MaxUsers         int       `db:"max_users" json:"maxUsers"`
	MaxProjects      int       `db:"max_projects" json:"maxProjects"`
	CreatedAt        time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt        time.Time `db:"updated_at" json:"updatedAt"`
	Stats            *Stats    `db:"-" json:"stats,omitempty"`
}

func (t *Tenant) Resource() rbac.Resource {
	return rbac.Resource{Kind: rbac.KindTenant, ID: t.ID, TenantID: t.ID}
}

// RegisterTenantRequest creates a tenant together with its first admin
type RegisterTenantRequest struct {
	TenantName    string `json:"tenantName"`
	Subdomain     string `json:"subdomain"`
	AdminEmail    string `json:"adminEmail"`
	AdminPassword string `json:"adminPassword"`
	AdminFullName string `json:"adminFullName"`
}

// UpdateTenantRequest captures payload for updating a tenant; the subdomain is immutable
type UpdateTenantRequest struct {
	Name             *string `json:"name,omitempty"`
	Status           *Status `json:"status,omitempty"`
	SubscriptionPlan *Plan   `json:"subscriptionPlan,omitempty"`
}
