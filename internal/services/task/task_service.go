package task

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/curaious/taskdesk/internal/pagination"
	"github.com/curaious/taskdesk/internal/services/user"
)

var (
	ErrTitleRequired   = errors.New("task title is required")
	ErrInvalidStatus   = errors.New("invalid task status")
	ErrInvalidPriority = errors.New("invalid task priority")
	ErrInvalidAssignee = errors.New("invalid assigned user")
)

// UserLookup resolves assignees.
type UserLookup interface {
	GetByID(ctx context.Context, id string) (*user.User, error)
}

// TaskService contains business logic for tasks
type TaskService struct {
	repo  *TaskRepo
	users UserLookup
}

func NewTaskService(repo *TaskRepo, users UserLookup) *TaskService {
	return &TaskService{repo: repo, users: users}
}

// checkAssignee requires the assignee, when present, to belong to tenantID.
func (s *TaskService) checkAssignee(ctx context.Context, tenantID string, assigneeID *string) error {
	if assigneeID == nil || *assigneeID == "" {
		return nil
	}
	u, err := s.users.GetByID(ctx, *assigneeID)
	if err != nil {
		if errors.Is(err, user.ErrUserNotFound) {
			return ErrInvalidAssignee
		}
		return fmt.Errorf("failed to validate assignee: %w", err)
	}
	if u.TenantID != tenantID {
		return ErrInvalidAssignee
	}
	return nil
}

// Create adds a task to projectID. Status defaults to TODO and priority to MEDIUM.
func (s *TaskService) Create(ctx context.Context, projectID, tenantID string, req *CreateTaskRequest) (*Task, error) {
	req.Title = strings.TrimSpace(req.Title)
	if req.Title == "" {
		return nil, ErrTitleRequired
	}
	if req.Status == "" {
		req.Status = StatusTodo
	}
	if req.Priority == "" {
		req.Priority = PriorityMedium
	}
	if !req.Status.Valid() {
		return nil, ErrInvalidStatus
	}
	if !req.Priority.Valid() {
		return nil, ErrInvalidPriority
	}
	if err := s.checkAssignee(ctx, tenantID, req.AssignedToID); err != nil {
		return nil, err
	}

	return s.repo.Create(ctx, projectID, tenantID, req)
}

func (s *TaskService) GetByID(ctx context.Context, id string) (*Task, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *TaskService) ListByProject(ctx context.Context, projectID string, page pagination.Page) ([]*Task, *pagination.Info, error) {
	tasks, total, err := s.repo.ListByProject(ctx, projectID, page)
	if err != nil {
		return nil, nil, err
	}
	return tasks, page.Info(total), nil
}

// Update replaces the task's editable fields.
func (s *TaskService) Update(ctx context.Context, id string, req *UpdateTaskRequest) (*Task, error) {
	existing, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	req.Title = strings.TrimSpace(req.Title)
	if req.Title == "" {
		return nil, ErrTitleRequired
	}
	if req.Status == "" {
		req.Status = existing.Status
	}
	if req.Priority == "" {
		req.Priority = existing.Priority
	}
	if !req.Status.Valid() {
		return nil, ErrInvalidStatus
	}
	if !req.Priority.Valid() {
		return nil, ErrInvalidPriority
	}
	if err := s.checkAssignee(ctx, existing.TenantID, req.AssignedToID); err != nil {
		return nil, err
	}

	return s.repo.Replace(ctx, id, req)
}

func (s *TaskService) SetStatus(ctx context.Context, id string, status Status) (*Task, error) {
	if !status.Valid() {
		return nil, ErrInvalidStatus
	}
	return s.repo.SetStatus(ctx, id, status)
}

func (s *TaskService) Delete(ctx context.Context, id string) error {
	return s.repo.Delete(ctx, id)
}
