package user

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/curaious/taskdesk/internal/pagination"
	"github.com/curaious/taskdesk/internal/rbac"
)

const MinPasswordLength = 8

var (
	ErrEmailAlreadyExists = errors.New("email already exists")
	ErrUserLimitReached   = errors.New("user limit reached")
	ErrPasswordTooShort   = errors.New("password must be at least 8 characters")
	ErrInvalidPassword    = errors.New("invalid password")
	ErrInvalidRole        = errors.New("invalid role")
	ErrMissingFields      = errors.New("email, password and full name are required")
)

type UserService struct {
	repo *UserRepo
}

func NewUserService(repo *UserRepo) *UserService {
	return &UserService{repo: repo}
}

// HashPassword returns the bcrypt hash stored for password.
func HashPassword(password string) (string, error) {
	if len(password) < MinPasswordLength {
		return "", ErrPasswordTooShort
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hashed), nil
}

// Authenticate checks credentials. With an empty tenantID the email is looked
// up across tenants, which is how the platform super admin signs in.
func (s *UserService) Authenticate(ctx context.Context, tenantID, email, password string) (*User, error) {
	var (
		user *User
		err  error
	)
	if tenantID != "" {
		user, err = s.repo.GetByEmail(ctx, tenantID, email)
	} else {
		user, err = s.repo.FindByEmail(ctx, email)
	}
	if err != nil {
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidPassword
	}

	return user, nil
}

func (s *UserService) GetByID(ctx context.Context, id string) (*User, error) {
	return s.repo.GetByID(ctx, id)
}

// EmailTaken reports whether email is registered anywhere on the platform.
func (s *UserService) EmailTaken(ctx context.Context, email string) (bool, error) {
	_, err := s.repo.FindByEmail(ctx, email)
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, ErrUserNotFound):
		return false, nil
	default:
		return false, err
	}
}

func (s *UserService) List(ctx context.Context, filter ListFilter) ([]*User, *pagination.Info, error) {
	users, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, err
	}
	page := filter.Page
	if page.Limit == 0 {
		page = pagination.New(1, pagination.MaxLimit, pagination.MaxLimit)
	}
	return users, page.Info(total), nil
}

func (s *UserService) CountByTenant(ctx context.Context, tenantID string) (int, error) {
	return s.repo.CountByTenant(ctx, tenantID)
}

// Create adds a user to tenantID, refusing once maxUsers accounts exist.
func (s *UserService) Create(ctx context.Context, tenantID string, maxUsers int, req *CreateUserRequest) (*User, error) {
	req.Email = strings.TrimSpace(req.Email)
	req.FullName = strings.TrimSpace(req.FullName)
	if req.Email == "" || req.FullName == "" || req.Password == "" {
		return nil, ErrMissingFields
	}
	if req.Role == "" {
		req.Role = rbac.RoleUser
	}
	// Tenant users are never platform administrators.
	if req.Role != rbac.RoleUser && req.Role != rbac.RoleTenantAdmin {
		return nil, ErrInvalidRole
	}

	count, err := s.repo.CountByTenant(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	if count >= maxUsers {
		return nil, ErrUserLimitReached
	}

	if _, err := s.repo.GetByEmail(ctx, tenantID, req.Email); err == nil {
		return nil, fmt.Errorf("%w: %s", ErrEmailAlreadyExists, req.Email)
	} else if !errors.Is(err, ErrUserNotFound) {
		return nil, err
	}

	hash, err := HashPassword(req.Password)
	if err != nil {
		return nil, err
	}

	return s.repo.Create(ctx, tenantID, req, hash)
}

func (s *UserService) Update(ctx context.Context, id string, req *UpdateUserRequest) (*User, error) {
	existing, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Email != nil && !strings.EqualFold(*req.Email, existing.Email) {
		other, err := s.repo.GetByEmail(ctx, existing.TenantID, *req.Email)
		if err == nil && other.ID != id {
			return nil, fmt.Errorf("%w: %s", ErrEmailAlreadyExists, *req.Email)
		} else if err != nil && !errors.Is(err, ErrUserNotFound) {
			return nil, err
		}
	}

	if req.Role != nil && *req.Role != rbac.RoleUser && *req.Role != rbac.RoleTenantAdmin {
		return nil, ErrInvalidRole
	}

	var hash string
	if req.Password != nil && *req.Password != "" {
		hash, err = HashPassword(*req.Password)
		if err != nil {
			return nil, err
		}
	}

	return s.repo.Update(ctx, id, req, hash)
}

func (s *UserService) Delete(ctx context.Context, id string) error {
	return s.repo.Delete(ctx, id)
}
