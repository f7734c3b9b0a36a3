package tenant

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/curaious/taskdesk/internal/pagination"
	"github.com/curaious/taskdesk/internal/services/user"
)

var (
	ErrSubdomainExists = errors.New("subdomain already exists")
	ErrEmailExists     = errors.New("email already exists")
	ErrInvalidInput    = errors.New("invalid input")
	ErrInvalidPlan     = errors.New("invalid subscription plan")
	ErrInvalidStatus   = errors.New("invalid tenant status")
)

var subdomainPattern = regexp.MustCompile(`^[a-z0-9]([a-z0-9-]{0,61}[a-z0-9])?$`)

// TenantService contains business logic for tenants
type TenantService struct {
	repo  *TenantRepo
	users *user.UserService
}

func NewTenantService(repo *TenantRepo, users *user.UserService) *TenantService {
	return &TenantService{repo: repo, users: users}
}

// Register creates a FREE tenant and its TENANT_ADMIN atomically.
func (s *TenantService) Register(ctx context.Context, req *RegisterTenantRequest) (*Tenant, *user.User, error) {
	req.TenantName = strings.TrimSpace(req.TenantName)
	req.Subdomain = strings.ToLower(strings.TrimSpace(req.Subdomain))
	req.AdminEmail = strings.TrimSpace(req.AdminEmail)
	req.AdminFullName = strings.TrimSpace(req.AdminFullName)

	if req.TenantName == "" || req.AdminEmail == "" || req.AdminFullName == "" ||
		len(req.AdminPassword) < user.MinPasswordLength || !subdomainPattern.MatchString(req.Subdomain) {
		return nil, nil, ErrInvalidInput
	}

	if _, err := s.repo.GetBySubdomain(ctx, req.Subdomain); err == nil {
		return nil, nil, fmt.Errorf("%w: %s", ErrSubdomainExists, req.Subdomain)
	} else if !errors.Is(err, ErrTenantNotFound) {
		return nil, nil, fmt.Errorf("failed to validate subdomain: %w", err)
	}

	taken, err := s.users.EmailTaken(ctx, req.AdminEmail)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to validate email: %w", err)
	}
	if taken {
		return nil, nil, fmt.Errorf("%w: %s", ErrEmailExists, req.AdminEmail)
	}

	hash, err := user.HashPassword(req.AdminPassword)
	if err != nil {
		return nil, nil, err
	}

	return s.repo.Register(ctx, req, hash)
}

func (s *TenantService) GetByID(ctx context.Context, id string) (*Tenant, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *TenantService) GetBySubdomain(ctx context.Context, subdomain string) (*Tenant, error) {
	return s.repo.GetBySubdomain(ctx, strings.ToLower(strings.TrimSpace(subdomain)))
}

func (s *TenantService) List(ctx context.Context, page pagination.Page) ([]*Tenant, *pagination.Info, error) {
	tenants, total, err := s.repo.List(ctx, page)
	if err != nil {
		return nil, nil, err
	}
	return tenants, page.Info(total), nil
}

func (s *TenantService) Update(ctx context.Context, id string, req *UpdateTenantRequest) (*Tenant, error) {
	if req.Name != nil && strings.TrimSpace(*req.Name) == "" {
		return nil, ErrInvalidInput
	}
	if req.SubscriptionPlan != nil && !req.SubscriptionPlan.Valid() {
		return nil, ErrInvalidPlan
	}
	if req.Status != nil && !req.Status.Valid() {
		return nil, ErrInvalidStatus
	}
	return s.repo.Update(ctx, id, req)
}
