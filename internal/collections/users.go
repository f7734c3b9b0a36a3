package collections

import (
	"context"
	"sync"

	"github.com/curaious/taskdesk/internal/rbac"
	"github.com/curaious/taskdesk/internal/services/user"
)

type UserAPI interface {
	ListUsers(ctx context.Context, search string) ([]user.User, error)
	ListTenantUsers(ctx context.Context, tenantID, search string) ([]user.User, error)
	GetUser(ctx context.Context, id string) (*user.User, error)
	CreateUser(ctx context.Context, tenantID string, req user.CreateUserRequest) (*user.User, error)
	UpdateUser(ctx context.Context, id string, req user.UpdateUserRequest) (*user.User, error)
	DeleteUser(ctx context.Context, id string) error
}

type Users struct {
	*Collection[user.User]
	api     UserAPI
	confirm Confirmer

	searchMu sync.Mutex
	search   string
}

func NewUsers(api UserAPI, identity Identity, confirm Confirmer) *Users {
	u := &Users{api: api, confirm: confirm}
	u.Collection = newCollection(rbac.KindUser, identity, func(x user.User) string { return x.ID }, u.load)
	return u
}

// SetSearch filters the next reload by name or email.
func (u *Users) SetSearch(search string) {
	u.searchMu.Lock()
	defer u.searchMu.Unlock()
	u.search = search
}

func (u *Users) load(ctx context.Context) ([]user.User, error) {
	scope, err := u.listScope(ctx)
	if err != nil {
		return nil, err
	}

	u.searchMu.Lock()
	search := u.search
	u.searchMu.Unlock()

	if scope.Global {
		return u.api.ListUsers(ctx, search)
	}
	return u.api.ListTenantUsers(ctx, scope.TenantID, search)
}

// resource locates id in the cache, falling back to the API.
func (u *Users) resource(ctx context.Context, action rbac.Action, id string) (rbac.Resource, error) {
	if err := u.precheck(ctx, action); err != nil {
		return rbac.Resource{}, err
	}
	if cached, ok := u.Find(id); ok {
		return cached.Resource(), nil
	}
	fetched, err := u.api.GetUser(ctx, id)
	if err != nil {
		return rbac.Resource{}, err
	}
	return fetched.Resource(), nil
}

func (u *Users) Get(ctx context.Context, id string) (*user.User, error) {
	res, err := u.resource(ctx, rbac.ActionView, id)
	if err != nil {
		return nil, err
	}
	if err := u.authorize(ctx, rbac.ActionView, res); err != nil {
		return nil, err
	}
	return u.api.GetUser(ctx, id)
}

// Create adds a user to the caller's own tenant.
func (u *Users) Create(ctx context.Context, req user.CreateUserRequest) (*user.User, error) {
	tenantID := u.principal().TenantID
	if err := u.authorize(ctx, rbac.ActionCreate, rbac.Resource{Kind: rbac.KindUser, TenantID: tenantID}); err != nil {
		return nil, err
	}

	var out *user.User
	err := u.submit(ctx, "Failed to create user", func(ctx context.Context) (err error) {
		out, err = u.api.CreateUser(ctx, tenantID, req)
		return err
	})
	return out, err
}

func (u *Users) Update(ctx context.Context, id string, req user.UpdateUserRequest) (*user.User, error) {
	res, err := u.resource(ctx, rbac.ActionUpdate, id)
	if err != nil {
		return nil, err
	}
	if err := u.authorize(ctx, rbac.ActionUpdate, res); err != nil {
		return nil, err
	}

	var out *user.User
	err = u.submit(ctx, "Failed to update user", func(ctx context.Context) (err error) {
		out, err = u.api.UpdateUser(ctx, id, req)
		return err
	})
	return out, err
}

func (u *Users) Delete(ctx context.Context, id string) error {
	res, err := u.resource(ctx, rbac.ActionDelete, id)
	if err != nil {
		return err
	}
	if err := u.authorize(ctx, rbac.ActionDelete, res); err != nil {
		return err
	}

	label := "this user"
	if cached, ok := u.Find(id); ok {
		label = cached.Email
	}
	if err := u.askConfirm(u.confirm, "Delete user "+label+"?"); err != nil {
		return err
	}

	return u.submit(ctx, "Failed to delete user", func(ctx context.Context) error {
		return u.api.DeleteUser(ctx, id)
	})
}
