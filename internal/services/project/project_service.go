package project

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/curaious/taskdesk/internal/pagination"
)

var (
	ErrProjectAlreadyExists = errors.New("project already exists")
	ErrProjectLimitReached  = errors.New("project limit reached")
	ErrNameRequired         = errors.New("project name is required")
	ErrInvalidStatus        = errors.New("invalid project status")
)

// ProjectService contains business logic for projects
type ProjectService struct {
	repo *ProjectRepo
}

// NewProjectService constructs a new ProjectService
func NewProjectService(repo *ProjectRepo) *ProjectService {
	return &ProjectService{repo: repo}
}

// Create registers a new project ensuring name uniqueness within the tenant
// and the tenant's project cap.
func (s *ProjectService) Create(ctx context.Context, tenantID, createdBy string, maxProjects int, req *CreateProjectRequest) (*Project, error) {
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		return nil, ErrNameRequired
	}
	if req.Status == "" {
		req.Status = StatusActive
	}
	if !req.Status.Valid() {
		return nil, ErrInvalidStatus
	}

	count, err := s.repo.CountByTenant(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	if count >= maxProjects {
		return nil, ErrProjectLimitReached
	}

	if _, err := s.repo.GetByName(ctx, tenantID, req.Name); err == nil {
		return nil, fmt.Errorf("%w: %s", ErrProjectAlreadyExists, req.Name)
	} else if !errors.Is(err, ErrProjectNotFound) {
		return nil, fmt.Errorf("failed to validate project name: %w", err)
	}

	project, err := s.repo.Create(ctx, tenantID, createdBy, req)
	if err != nil {
		return nil, fmt.Errorf("failed to create project: %w", err)
	}

	return project, nil
}

// GetByID fetches a project by its identifier
func (s *ProjectService) GetByID(ctx context.Context, id string) (*Project, error) {
	project, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrProjectNotFound) {
			return nil, ErrProjectNotFound
		}
		return nil, fmt.Errorf("failed to get project: %w", err)
	}

	return project, nil
}

// List returns one page of the tenant's projects ordered by creation time
func (s *ProjectService) List(ctx context.Context, tenantID string, page pagination.Page) ([]*Project, *pagination.Info, error) {
	projects, total, err := s.repo.ListByTenant(ctx, tenantID, page)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to list projects: %w", err)
	}

	return projects, page.Info(total), nil
}

// Update modifies mutable project fields
func (s *ProjectService) Update(ctx context.Context, id string, req *UpdateProjectRequest) (*Project, error) {
	existing, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrProjectNotFound) {
			return nil, ErrProjectNotFound
		}
		return nil, fmt.Errorf("failed to get project: %w", err)
	}

	if req.Status != nil && !req.Status.Valid() {
		return nil, ErrInvalidStatus
	}

	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return nil, ErrNameRequired
		}
		req.Name = &name
		if name != existing.Name {
			if _, err := s.repo.GetByName(ctx, existing.TenantID, name); err == nil {
				return nil, fmt.Errorf("%w: %s", ErrProjectAlreadyExists, name)
			} else if !errors.Is(err, ErrProjectNotFound) {
				return nil, fmt.Errorf("failed to validate project name: %w", err)
			}
		}
	}

	project, err := s.repo.Update(ctx, id, req)
	if err != nil {
		if errors.Is(err, ErrProjectNotFound) {
			return nil, ErrProjectNotFound
		}
		return nil, fmt.Errorf("failed to update project: %w", err)
	}

	return project, nil
}

// Delete removes a project by ID
func (s *ProjectService) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, ErrProjectNotFound) {
			return ErrProjectNotFound
		}
		return fmt.Errorf("failed to delete project: %w", err)
	}

	return nil
}
