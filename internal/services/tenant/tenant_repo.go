package tenant

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/curaious/taskdesk/internal/pagination"
	"github.com/curaious/taskdesk/internal/rbac"
	"github.com/curaious/taskdesk/internal/services/user"
)

var ErrTenantNotFound = errors.New("tenant not found")

const tenantColumns = `t.id, t.name, t.subdomain, t.status, t.subscription_plan, t.max_users, t.max_projects, t.created_at, t.updated_at,
	(SELECT COUNT(*) FROM users u WHERE u.tenant_id = t.id) AS total_users,
	(SELECT COUNT(*) FROM projects p WHERE p.tenant_id = t.id) AS total_projects`

type tenantRow struct {
	Tenant
	TotalUsers    int `db:"total_users"`
	TotalProjects int `db:"total_projects"`
}

func (r tenantRow) toTenant() *Tenant {
	t := r.Tenant
	t.Stats = &Stats{TotalUsers: r.TotalUsers, TotalProjects: r.TotalProjects}
	return &t
}

// TenantRepo handles database operations for tenants
type TenantRepo struct {
	db    *sqlx.DB
	users *user.UserRepo
}

func NewTenantRepo(db *sqlx.DB, users *user.UserRepo) *TenantRepo {
	return &TenantRepo{db: db, users: users}
}

// Register inserts a tenant and its first admin in one transaction.
func (r *TenantRepo) Register(ctx context.Context, req *RegisterTenantRequest, adminHash string) (*Tenant, *user.User, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to begin registration: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	maxUsers, maxProjects := PlanFree.Limits()

	var id string
	err = tx.GetContext(ctx, &id, `
		INSERT INTO tenants (name, subdomain, status, subscription_plan, max_users, max_projects)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id
	`, req.TenantName, req.Subdomain, StatusActive, PlanFree, maxUsers, maxProjects)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create tenant: %w", err)
	}

	admin, err := r.users.CreateTx(ctx, tx, id, &user.CreateUserRequest{
		Email:    req.AdminEmail,
		FullName: req.AdminFullName,
		Role:     rbac.RoleTenantAdmin,
	}, adminHash)
	if err != nil {
		return nil, nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, nil, fmt.Errorf("failed to commit registration: %w", err)
	}

	t, err := r.GetByID(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	return t, admin, nil
}

func (r *TenantRepo) GetByID(ctx context.Context, id string) (*Tenant, error) {
	query := `SELECT ` + tenantColumns + ` FROM tenants t WHERE t.id = $1`

	var row tenantRow
	if err := r.db.GetContext(ctx, &row, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrTenantNotFound
		}
		return nil, fmt.Errorf("failed to get tenant: %w", err)
	}
	return row.toTenant(), nil
}

func (r *TenantRepo) GetBySubdomain(ctx context.Context, subdomain string) (*Tenant, error) {
	query := `SELECT ` + tenantColumns + ` FROM tenants t WHERE t.subdomain = $1`

	var row tenantRow
	if err := r.db.GetContext(ctx, &row, query, subdomain); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrTenantNotFound
		}
		return nil, fmt.Errorf("failed to get tenant: %w", err)
	}
	return row.toTenant(), nil
}

// List returns one page of tenants ordered by creation date and the total
// tenant count.
func (r *TenantRepo) List(ctx context.Context, page pagination.Page) ([]*Tenant, int, error) {
	var total int
	if err := r.db.GetContext(ctx, &total, `SELECT COUNT(*) FROM tenants`); err != nil {
		return nil, 0, fmt.Errorf("failed to count tenants: %w", err)
	}

	query := `SELECT ` + tenantColumns + ` FROM tenants t ORDER BY t.created_at DESC LIMIT $1 OFFSET $2`

	var rows []tenantRow
	if err := r.db.SelectContext(ctx, &rows, query, page.Limit, page.Offset()); err != nil {
		return nil, 0, fmt.Errorf("failed to list tenants: %w", err)
	}

	tenants := make([]*Tenant, 0, len(rows))
	for _, row := range rows {
		tenants = append(tenants, row.toTenant())
	}
	return tenants, total, nil
}

// Update applies the non-nil fields of req. A plan change also resets the plan limits.
func (r *TenantRepo) Update(ctx context.Context, id string, req *UpdateTenantRequest) (*Tenant, error) {
	setParts := []string{}
	args := []interface{}{}

	if req.Name != nil {
		args = append(args, *req.Name)
		setParts = append(setParts, fmt.Sprintf("name = $%d", len(args)))
	}
	if req.Status != nil {
		args = append(args, *req.Status)
		setParts = append(setParts, fmt.Sprintf("status = $%d", len(args)))
	}
	if req.SubscriptionPlan != nil {
		maxUsers, maxProjects := req.SubscriptionPlan.Limits()
		args = append(args, *req.SubscriptionPlan, maxUsers, maxProjects)
		setParts = append(setParts,
			fmt.Sprintf("subscription_plan = $%d", len(args)-2),
			fmt.Sprintf("max_users = $%d", len(args)-1),
			fmt.Sprintf("max_projects = $%d", len(args)),
		)
	}

	if len(setParts) == 0 {
		return r.GetByID(ctx, id)
	}

	setParts = append(setParts, "updated_at = NOW()")
	args = append(args, id)

	query := fmt.Sprintf(`UPDATE tenants SET %s WHERE id = $%d`, strings.Join(setParts, ", "), len(args))

	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to update tenant: %w", err)
	}
	if n, err := result.RowsAffected(); err == nil && n == 0 {
		return nil, ErrTenantNotFound
	}

	return r.GetByID(ctx, id)
}
