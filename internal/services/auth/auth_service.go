package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/curaious/taskdesk/internal/services/tenant"
	"github.com/curaious/taskdesk/internal/services/user"
)

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrAccountInactive    = errors.New("account is inactive")
	ErrTenantInactive     = errors.New("tenant is not active")
	ErrTenantNotFound     = errors.New("tenant not found")
	ErrMissingCredentials = errors.New("email and password are required")
)

type AuthService struct {
	users   *user.UserService
	tenants *tenant.TenantService
}

func NewAuthService(users *user.UserService, tenants *tenant.TenantService) *AuthService {
	return &AuthService{users: users, tenants: tenants}
}

// Login verifies credentials. A subdomain pins the lookup to that tenant;
// without one the oldest account with the email wins.
func (s *AuthService) Login(ctx context.Context, req *LoginRequest) (*Profile, error) {
	req.Email = strings.TrimSpace(req.Email)
	if req.Email == "" || req.Password == "" {
		return nil, ErrMissingCredentials
	}

	var tenantID string
	if sub := strings.TrimSpace(req.TenantSubdomain); sub != "" {
		t, err := s.tenants.GetBySubdomain(ctx, sub)
		if err != nil {
			if errors.Is(err, tenant.ErrTenantNotFound) {
				return nil, ErrTenantNotFound
			}
			return nil, err
		}
		tenantID = t.ID
	}

	u, err := s.users.Authenticate(ctx, tenantID, req.Email, req.Password)
	if err != nil {
		if errors.Is(err, user.ErrUserNotFound) || errors.Is(err, user.ErrInvalidPassword) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to authenticate: %w", err)
	}

	if !u.IsActive {
		return nil, ErrAccountInactive
	}

	profile, err := s.profileOf(ctx, u)
	if err != nil {
		return nil, err
	}
	if profile.Tenant != nil && profile.Tenant.Status != tenant.StatusActive {
		return nil, ErrTenantInactive
	}

	return profile, nil
}

// Me reloads the profile of an authenticated user.
func (s *AuthService) Me(ctx context.Context, userID string) (*Profile, error) {
	u, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.profileOf(ctx, u)
}

// Register creates a tenant with its first admin and returns the admin profile.
func (s *AuthService) Register(ctx context.Context, req *tenant.RegisterTenantRequest) (*Profile, error) {
	t, admin, err := s.tenants.Register(ctx, req)
	if err != nil {
		return nil, err
	}
	return &Profile{User: *admin, Tenant: t}, nil
}

func (s *AuthService) profileOf(ctx context.Context, u *user.User) (*Profile, error) {
	profile := &Profile{User: *u}
	if u.TenantID == "" {
		return profile, nil
	}

	t, err := s.tenants.GetByID(ctx, u.TenantID)
	if err != nil {
		return nil, fmt.Errorf("failed to load tenant: %w", err)
	}
	profile.Tenant = t
	return profile, nil
}
