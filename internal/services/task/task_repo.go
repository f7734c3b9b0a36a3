package task

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/curaious/taskdesk/internal/pagination"
)

var ErrTaskNotFound = errors.New("task not found")

const taskSelect = `SELECT t.id, t.project_id, t.tenant_id, t.title, COALESCE(t.description, '') AS description,
	t.status, t.priority, t.due_date, t.created_at, t.updated_at,
	u.id::text AS assignee_id, u.full_name AS assignee_name, u.email AS assignee_email
	FROM tasks t
	LEFT JOIN users u ON u.id = t.assigned_to`

type taskRow struct {
	ID            string         `db:"id"`
	ProjectID     string         `db:"project_id"`
	TenantID      string         `db:"tenant_id"`
	Title         string         `db:"title"`
	Description   string         `db:"description"`
	Status        Status         `db:"status"`
	Priority      Priority       `db:"priority"`
	DueDate       sql.NullTime   `db:"due_date"`
	CreatedAt     time.Time      `db:"created_at"`
	UpdatedAt     time.Time      `db:"updated_at"`
	AssigneeID    sql.NullString `db:"assignee_id"`
	AssigneeName  sql.NullString `db:"assignee_name"`
	AssigneeEmail sql.NullString `db:"assignee_email"`
}

func (r taskRow) toTask() *Task {
	t := &Task{
		ID:          r.ID,
		ProjectID:   r.ProjectID,
		TenantID:    r.TenantID,
		Title:       r.Title,
		Description: r.Description,
		Status:      r.Status,
		Priority:    r.Priority,
		CreatedAt:   r.CreatedAt,
		UpdatedAt:   r.UpdatedAt,
	}
	if r.AssigneeID.Valid {
		t.AssignedTo = &Assignee{
			ID:       r.AssigneeID.String,
			FullName: r.AssigneeName.String,
			Email:    r.AssigneeEmail.String,
		}
	}
	if r.DueDate.Valid {
		d := NewDate(r.DueDate.Time.Date())
		t.DueDate = &d
	}
	return t
}

func nullableDate(d *Date) interface{} {
	if d == nil {
		return nil
	}
	return d.String()
}

func nullableID(id *string) interface{} {
	if id == nil || *id == "" {
		return nil
	}
	return *id
}

// TaskRepo handles database operations for tasks
type TaskRepo struct {
	db *sqlx.DB
}

func NewTaskRepo(db *sqlx.DB) *TaskRepo {
	return &TaskRepo{db: db}
}

func (r *TaskRepo) Create(ctx context.Context, projectID, tenantID string, req *CreateTaskRequest) (*Task, error) {
	var id string
	err := r.db.GetContext(ctx, &id, `
        INSERT INTO tasks (project_id, tenant_id, title, description, status, priority, assigned_to, due_date)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
        RETURNING id
    `, projectID, tenantID, req.Title, req.Description, req.Status, req.Priority, nullableID(req.AssignedToID), nullableDate(req.DueDate))
	if err != nil {
		return nil, fmt.Errorf("failed to create task: %w", err)
	}

	return r.GetByID(ctx, id)
}

func (r *TaskRepo) GetByID(ctx context.Context, id string) (*Task, error) {
	var row taskRow
	err := r.db.GetContext(ctx, &row, taskSelect+` WHERE t.id = $1`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrTaskNotFound
		}
		return nil, fmt.Errorf("failed to get task: %w", err)
	}
	return row.toTask(), nil
}

// ListByProject returns one page of a project's tasks, newest first, and the
// project's total task count.
func (r *TaskRepo) ListByProject(ctx context.Context, projectID string, page pagination.Page) ([]*Task, int, error) {
	var total int
	if err := r.db.GetContext(ctx, &total, `SELECT COUNT(*) FROM tasks WHERE project_id = $1`, projectID); err != nil {
		return nil, 0, fmt.Errorf("failed to count tasks: %w", err)
	}

	var rows []taskRow
	err := r.db.SelectContext(ctx, &rows, taskSelect+` WHERE t.project_id = $1 ORDER BY t.created_at DESC LIMIT $2 OFFSET $3`, projectID, page.Limit, page.Offset())
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list tasks: %w", err)
	}

	tasks := make([]*Task, 0, len(rows))
	for _, row := range rows {
		tasks = append(tasks, row.toTask())
	}
	return tasks, total, nil
}

// Replace overwrites every editable column of a task.
func (r *TaskRepo) Replace(ctx context.Context, id string, req *UpdateTaskRequest) (*Task, error) {
	result, err := r.db.ExecContext(ctx, `
        UPDATE tasks
        SET title = $1, description = $2, status = $3, priority = $4, assigned_to = $5, due_date = $6, updated_at = NOW()
        WHERE id = $7
    `, req.Title, req.Description, req.Status, req.Priority, nullableID(req.AssignedToID), nullableDate(req.DueDate), id)
	if err != nil {
		return nil, fmt.Errorf("failed to update task: %w", err)
	}
	if n, err := result.RowsAffected(); err == nil && n == 0 {
		return nil, ErrTaskNotFound
	}
	return r.GetByID(ctx, id)
}

func (r *TaskRepo) SetStatus(ctx context.Context, id string, status Status) (*Task, error) {
	result, err := r.db.ExecContext(ctx, `UPDATE tasks SET status = $1, updated_at = NOW() WHERE id = $2`, status, id)
	if err != nil {
		return nil, fmt.Errorf("failed to update task status: %w", err)
	}
	if n, err := result.RowsAffected(); err == nil && n == 0 {
		return nil, ErrTaskNotFound
	}
	return r.GetByID(ctx, id)
}

func (r *TaskRepo) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM tasks WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete task: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return ErrTaskNotFound
	}
	return nil
}
