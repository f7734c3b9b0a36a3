package views

import (
	"context"

	"github.com/curaious/taskdesk/internal/collections"
	"github.com/curaious/taskdesk/internal/rbac"
	"github.com/curaious/taskdesk/internal/services/user"
)

type Users struct {
	session Session
	users   *collections.Users
}

func NewUsers(session Session, api API, confirm collections.Confirmer) *Users {
	return &Users{session: session, users: collections.NewUsers(api, session, confirm)}
}

// Load lists users, filtered by name or email when search is not empty.
func (v *Users) Load(ctx context.Context, search string) error {
	v.users.SetSearch(search)
	return loadAll(ctx, "users", v.users.Reload)
}

func (v *Users) Items() []user.User {
	return v.users.Items()
}

func (v *Users) TakeNotice() string {
	return v.users.TakeNotice()
}

func (v *Users) CanCreate() bool {
	p := principalOf(v.session)
	return !busy(v.users) && rbac.Can(p, rbac.ActionCreate, rbac.Resource{Kind: rbac.KindUser, TenantID: p.TenantID})
}

func (v *Users) Actions(u *user.User) []rbac.Action {
	if busy(v.users) {
		return nil
	}
	var out []rbac.Action
	for _, a := range rbac.Allowed(principalOf(v.session), u.Resource()) {
		if a != rbac.ActionView && a != rbac.ActionCreate {
			out = append(out, a)
		}
	}
	return out
}

func (v *Users) Create(ctx context.Context, req user.CreateUserRequest) (*user.User, error) {
	return v.users.Create(ctx, req)
}

func (v *Users) Update(ctx context.Context, id string, req user.UpdateUserRequest) (*user.User, error) {
	return v.users.Update(ctx, id, req)
}

func (v *Users) Delete(ctx context.Context, id string) error {
	return v.users.Delete(ctx, id)
}

func (v *Users) Close() {
	detachAll(v.users)
}
