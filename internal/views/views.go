// Package views composes collections with the policy into the screens of
// the dashboard: what to show, and which actions to offer.
package views

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/curaious/taskdesk/internal/collections"
	"github.com/curaious/taskdesk/internal/perrors"
	"github.com/curaious/taskdesk/internal/rbac"
	"github.com/curaious/taskdesk/internal/services/auth"
)

// Session is the identity a view renders for.
type Session interface {
	CurrentPrincipal() (rbac.Principal, bool)
	Profile() *auth.Profile
}

// API is everything the views fetch through.
type API interface {
	collections.TenantAPI
	collections.UserAPI
	collections.ProjectAPI
	collections.TaskAPI
}

func principalOf(s Session) rbac.Principal {
	p, _ := s.CurrentPrincipal()
	return p
}

// loadAll runs the loaders concurrently. Any failure fails the whole load
// with a single error naming the view.
func loadAll(ctx context.Context, view string, loaders ...func(context.Context) error) error {
	var g errgroup.Group
	for _, load := range loaders {
		g.Go(func() error { return load(ctx) })
	}
	if err := g.Wait(); err != nil {
		return loadError(view, err)
	}
	return nil
}

func loadError(view string, err error) error {
	code, ok := perrors.CodeOf(err)
	if !ok {
		code = perrors.ErrCodeInternalServer
	}
	return perrors.New(code, "Failed to load "+view, err)
}

// activity is the part of a collection that decides whether its actions
// may be offered.
type activity interface {
	Status() collections.Status
	Submitting() bool
}

// busy reports whether any of as is loading or has a submission in flight.
// No action is offered while busy.
func busy(as ...activity) bool {
	for _, a := range as {
		if a.Status() == collections.StatusLoading || a.Submitting() {
			return true
		}
	}
	return false
}

type detacher interface {
	Detach()
}

func detachAll(ds ...detacher) {
	for _, d := range ds {
		if d != nil {
			d.Detach()
		}
	}
}
