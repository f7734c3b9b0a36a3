package user

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/curaious/taskdesk/internal/pagination"
)

var ErrUserNotFound = errors.New("user not found")

const userColumns = `id, COALESCE(tenant_id::text, '') AS tenant_id, email, full_name, password_hash, role, is_active, created_at, updated_at`

type UserRepo struct {
	db *sqlx.DB
}

func NewUserRepo(db *sqlx.DB) *UserRepo {
	return &UserRepo{db: db}
}

// DB exposes the connection so callers can open transactions spanning repos.
func (r *UserRepo) DB() *sqlx.DB {
	return r.db
}

func (r *UserRepo) GetByID(ctx context.Context, id string) (*User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`

	var user User
	err := r.db.GetContext(ctx, &user, query, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return &user, nil
}

// GetByEmail looks a user up inside one tenant.
func (r *UserRepo) GetByEmail(ctx context.Context, tenantID, email string) (*User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE tenant_id = $1 AND LOWER(email) = LOWER($2)`

	var user User
	err := r.db.GetContext(ctx, &user, query, tenantID, email)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return &user, nil
}

// FindByEmail looks a user up across all tenants, oldest account first.
func (r *UserRepo) FindByEmail(ctx context.Context, email string) (*User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE LOWER(email) = LOWER($1) ORDER BY created_at ASC LIMIT 1`

	var user User
	err := r.db.GetContext(ctx, &user, query, email)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return &user, nil
}

// List returns one page of users matching filter and the number of matches.
func (r *UserRepo) List(ctx context.Context, filter ListFilter) ([]*User, int, error) {
	where := []string{}
	args := []interface{}{}

	if filter.TenantID != "" {
		args = append(args, filter.TenantID)
		where = append(where, fmt.Sprintf("tenant_id = $%d", len(args)))
	}
	if filter.Search != "" {
		args = append(args, "%"+strings.ToLower(filter.Search)+"%")
		where = append(where, fmt.Sprintf("(LOWER(full_name) LIKE $%d OR LOWER(email) LIKE $%d)", len(args), len(args)))
	}

	cond := ""
	if len(where) > 0 {
		cond = " WHERE " + strings.Join(where, " AND ")
	}

	var total int
	if err := r.db.GetContext(ctx, &total, `SELECT COUNT(*) FROM users`+cond, args...); err != nil {
		return nil, 0, fmt.Errorf("failed to count users: %w", err)
	}

	page := filter.Page
	if page.Limit == 0 {
		page = pagination.New(1, pagination.MaxLimit, pagination.MaxLimit)
	}
	query := `SELECT ` + userColumns + ` FROM users` + cond +
		fmt.Sprintf(" ORDER BY created_at ASC LIMIT $%d OFFSET $%d", len(args)+1, len(args)+2)

	users := []*User{}
	if err := r.db.SelectContext(ctx, &users, query, append(args, page.Limit, page.Offset())...); err != nil {
		return nil, 0, fmt.Errorf("failed to list users: %w", err)
	}
	return users, total, nil
}

func (r *UserRepo) CountByTenant(ctx context.Context, tenantID string) (int, error) {
	var count int
	if err := r.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM users WHERE tenant_id = $1`, tenantID); err != nil {
		return 0, fmt.Errorf("failed to count users: %w", err)
	}
	return count, nil
}

// Create inserts a user. An empty tenantID stores a platform-level user.
func (r *UserRepo) Create(ctx context.Context, tenantID string, req *CreateUserRequest, passwordHash string) (*User, error) {
	return r.create(ctx, r.db, tenantID, req, passwordHash)
}

// CreateTx inserts a user inside an existing transaction.
func (r *UserRepo) CreateTx(ctx context.Context, tx *sqlx.Tx, tenantID string, req *CreateUserRequest, passwordHash string) (*User, error) {
	return r.create(ctx, tx, tenantID, req, passwordHash)
}

func (r *UserRepo) create(ctx context.Context, q sqlx.QueryerContext, tenantID string, req *CreateUserRequest, passwordHash string) (*User, error) {
	query := `
		INSERT INTO users (tenant_id, email, full_name, password_hash, role, is_active)
		VALUES (NULLIF($1, '')::uuid, $2, $3, $4, $5, TRUE)
		RETURNING ` + userColumns

	var user User
	if err := sqlx.GetContext(ctx, q, &user, query, tenantID, req.Email, req.FullName, passwordHash, req.Role); err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	return &user, nil
}

// Update applies the non-nil fields of req. passwordHash replaces the stored hash when non-empty.
func (r *UserRepo) Update(ctx context.Context, id string, req *UpdateUserRequest, passwordHash string) (*User, error) {
	setParts := []string{}
	args := []interface{}{}

	if req.Email != nil {
		args = append(args, *req.Email)
		setParts = append(setParts, fmt.Sprintf("email = $%d", len(args)))
	}
	if req.FullName != nil {
		args = append(args, *req.FullName)
		setParts = append(setParts, fmt.Sprintf("full_name = $%d", len(args)))
	}
	if passwordHash != "" {
		args = append(args, passwordHash)
		setParts = append(setParts, fmt.Sprintf("password_hash = $%d", len(args)))
	}
	if req.Role != nil {
		args = append(args, *req.Role)
		setParts = append(setParts, fmt.Sprintf("role = $%d", len(args)))
	}
	if req.IsActive != nil {
		args = append(args, *req.IsActive)
		setParts = append(setParts, fmt.Sprintf("is_active = $%d", len(args)))
	}

	if len(setParts) == 0 {
		return r.GetByID(ctx, id)
	}

	setParts = append(setParts, "updated_at = NOW()")
	args = append(args, id)

	query := fmt.Sprintf(`UPDATE users SET %s WHERE id = $%d RETURNING %s`, strings.Join(setParts, ", "), len(args), userColumns)

	var user User
	if err := r.db.GetContext(ctx, &user, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to update user: %w", err)
	}
	return &user, nil
}

func (r *UserRepo) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return ErrUserNotFound
	}
	return nil
}
