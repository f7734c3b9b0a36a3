package project

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/curaious/taskdesk/internal/pagination"
)

var ErrProjectNotFound = errors.New("project not found")

const projectColumns = `p.id, p.tenant_id, p.name, COALESCE(p.description, '') AS description, p.status,
	COALESCE(p.created_by::text, '') AS created_by,
	(SELECT COUNT(*) FROM tasks t WHERE t.project_id = p.id) AS task_count,
	p.created_at, p.updated_at`

// ProjectRepo handles database operations for projects
type ProjectRepo struct {
	db *sqlx.DB
}

// NewProjectRepo creates a new project repository
func NewProjectRepo(db *sqlx.DB) *ProjectRepo {
	return &ProjectRepo{db: db}
}

// Create creates a new project
func (r *ProjectRepo) Create(ctx context.Context, tenantID, createdBy string, req *CreateProjectRequest) (*Project, error) {
	var id string
	err := r.db.GetContext(ctx, &id, `
        INSERT INTO projects (tenant_id, name, description, status, created_by)
        VALUES ($1, $2, $3, $4, NULLIF($5, '')::uuid)
        RETURNING id
    `, tenantID, req.Name, req.Description, req.Status, createdBy)
	if err != nil {
		return nil, fmt.Errorf("failed to create project: %w", err)
	}

	return r.GetByID(ctx, id)
}

// GetByID retrieves a project by ID
func (r *ProjectRepo) GetByID(ctx context.Context, id string) (*Project, error) {
	query := `SELECT ` + projectColumns + ` FROM projects p WHERE p.id = $1`

	var project Project
	err := r.db.GetContext(ctx, &project, query, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrProjectNotFound
		}
		return nil, fmt.Errorf("failed to get project: %w", err)
	}

	return &project, nil
}

// GetByName retrieves a project by name within a tenant
func (r *ProjectRepo) GetByName(ctx context.Context, tenantID, name string) (*Project, error) {
	query := `SELECT ` + projectColumns + ` FROM projects p WHERE p.tenant_id = $1 AND p.name = $2`

	var project Project
	err := r.db.GetContext(ctx, &project, query, tenantID, name)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrProjectNotFound
		}
		return nil, fmt.Errorf("failed to get project: %w", err)
	}

	return &project, nil
}

// ListByTenant retrieves one page of the tenant's projects ordered by
// creation date, with the tenant's total project count.
func (r *ProjectRepo) ListByTenant(ctx context.Context, tenantID string, page pagination.Page) ([]*Project, int, error) {
	total, err := r.CountByTenant(ctx, tenantID)
	if err != nil {
		return nil, 0, err
	}

	query := `SELECT ` + projectColumns + ` FROM projects p WHERE p.tenant_id = $1 ORDER BY p.created_at DESC LIMIT $2 OFFSET $3`

	projects := []*Project{}
	err = r.db.SelectContext(ctx, &projects, query, tenantID, page.Limit, page.Offset())
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list projects: %w", err)
	}

	return projects, total, nil
}

func (r *ProjectRepo) CountByTenant(ctx context.Context, tenantID string) (int, error) {
	var count int
	if err := r.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM projects WHERE tenant_id = $1`, tenantID); err != nil {
		return 0, fmt.Errorf("failed to count projects: %w", err)
	}
	return count, nil
}

// Update updates project fields
func (r *ProjectRepo) Update(ctx context.Context, id string, req *UpdateProjectRequest) (*Project, error) {
	setParts := []string{}
	args := []interface{}{}

	if req.Name != nil {
		setParts = append(setParts, fmt.Sprintf("name = $%d", len(args)+1))
		args = append(args, *req.Name)
	}

	if req.Description != nil {
		setParts = append(setParts, fmt.Sprintf("description = $%d", len(args)+1))
		args = append(args, *req.Description)
	}

	if req.Status != nil {
		setParts = append(setParts, fmt.Sprintf("status = $%d", len(args)+1))
		args = append(args, *req.Status)
	}

	if len(setParts) == 0 {
		return r.GetByID(ctx, id)
	}

	setParts = append(setParts, "updated_at = NOW()")
	args = append(args, id)

	query := fmt.Sprintf(`
        UPDATE projects
        SET %s
        WHERE id = $%d
    `, strings.Join(setParts, ", "), len(args))

	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to update project: %w", err)
	}
	if n, err := result.RowsAffected(); err == nil && n == 0 {
		return nil, ErrProjectNotFound
	}

	return r.GetByID(ctx, id)
}

// Delete removes a project and, through the foreign key cascade, its tasks
func (r *ProjectRepo) Delete(ctx context.Context, id string) error {
	query := `DELETE FROM projects WHERE id = $1`

	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to delete project: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return ErrProjectNotFound
	}

	return nil
}
