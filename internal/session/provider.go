// Package session owns the identity of the current dashboard user. A single
// Provider is created at startup and passed by reference to every
// collection and view.
package session

import (
	"context"
	"log/slog"
	"sync"

	"github.com/curaious/taskdesk/internal/perrors"
	"github.com/curaious/taskdesk/internal/rbac"
	"github.com/curaious/taskdesk/internal/services/auth"
	"github.com/curaious/taskdesk/internal/services/tenant"
)

type State int

const (
	StateLoading State = iota
	StateAnonymous
	StateAuthenticated
)

func (s State) String() string {
	switch s {
	case StateLoading:
		return "loading"
	case StateAnonymous:
		return "anonymous"
	case StateAuthenticated:
		return "authenticated"
	}
	return "unknown"
}

// AuthAPI is the part of the API client the provider talks to.
type AuthAPI interface {
	Login(ctx context.Context, req auth.LoginRequest) (*auth.Session, error)
	RegisterTenant(ctx context.Context, req tenant.RegisterTenantRequest) (*auth.Session, error)
	Me(ctx context.Context) (*auth.Profile, error)
	Logout(ctx context.Context) error
}

type Provider struct {
	mu      sync.RWMutex
	api     AuthAPI
	store   Store
	state   State
	token   string
	profile *auth.Profile
	theme   string
}

// NewProvider returns a provider in the loading state; call Restore to
// settle it.
func NewProvider(api AuthAPI, store Store) *Provider {
	return &Provider{api: api, store: store, state: StateLoading}
}

func (p *Provider) State() State {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.state
}

// Token returns the bearer token, or "" when not authenticated.
func (p *Provider) Token() string {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.token
}

// CurrentPrincipal returns the signed-in principal. ok is false unless the
// session is authenticated.
func (p *Provider) CurrentPrincipal() (rbac.Principal, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.state != StateAuthenticated || p.profile == nil {
		return rbac.Principal{}, false
	}
	return p.profile.Principal(), true
}

// Profile returns a copy of the signed-in user's profile, or nil.
func (p *Provider) Profile() *auth.Profile {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.profile == nil {
		return nil
	}
	cp := *p.profile
	return &cp
}

func (p *Provider) Theme() string {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.theme
}

func (p *Provider) SetTheme(ctx context.Context, theme string) error {
	p.mu.Lock()
	p.theme = theme
	snap := p.snapshotLocked()
	p.mu.Unlock()

	return p.store.Save(ctx, snap)
}

func (p *Provider) Login(ctx context.Context, creds auth.LoginRequest) error {
	p.begin()

	s, err := p.api.Login(ctx, creds)
	if err != nil {
		p.settleAnonymous(ctx, false)
		slog.WarnContext(ctx, "Login failed", slog.String("email", creds.Email), slog.Any("error", err))
		return err
	}

	return p.settleAuthenticated(ctx, s.Token, &s.User)
}

// RegisterTenant creates a tenant and signs in as its first admin.
func (p *Provider) RegisterTenant(ctx context.Context, req tenant.RegisterTenantRequest) error {
	p.begin()

	s, err := p.api.RegisterTenant(ctx, req)
	if err != nil {
		p.settleAnonymous(ctx, false)
		slog.WarnContext(ctx, "Registration failed", slog.String("subdomain", req.Subdomain), slog.Any("error", err))
		return perrors.New(perrors.ErrCodeRegistrationFailed, "Registration failed", err)
	}

	return p.settleAuthenticated(ctx, s.Token, &s.User)
}

// Logout asks the server to revoke the token and then forgets the session
// whatever the server answered.
func (p *Provider) Logout(ctx context.Context) error {
	if p.Token() != "" {
		if err := p.api.Logout(ctx); err != nil {
			slog.WarnContext(ctx, "Server logout failed, clearing local session anyway", slog.Any("error", err))
		}
	}

	p.mu.Lock()
	p.state = StateAnonymous
	p.token = ""
	p.profile = nil
	snap := p.snapshotLocked()
	p.mu.Unlock()

	return p.store.Save(ctx, snap)
}

// Restore loads the persisted session and confirms it with the server.
// A session the server rejects is erased; one that cannot be checked
// because the server is unreachable is kept for the next run.
func (p *Provider) Restore(ctx context.Context) error {
	p.mu.Lock()
	p.state = StateLoading
	p.mu.Unlock()

	snap, err := p.store.Load(ctx)
	if err != nil {
		slog.WarnContext(ctx, "Unable to read persisted session", slog.Any("error", err))
		p.settleAnonymous(ctx, false)
		return nil
	}
	if snap == nil {
		p.settleAnonymous(ctx, false)
		return nil
	}

	p.mu.Lock()
	p.theme = snap.Theme
	p.token = snap.Token
	p.mu.Unlock()

	if snap.Token == "" {
		p.settleAnonymous(ctx, false)
		return nil
	}

	profile, err := p.api.Me(ctx)
	if err != nil {
		if perrors.Is(err, perrors.ErrCodeNetworkFailure) {
			p.mu.Lock()
			p.state = StateAnonymous
			p.token = ""
			p.mu.Unlock()
			return err
		}
		p.settleAnonymous(ctx, true)
		return nil
	}

	return p.settleAuthenticated(ctx, snap.Token, profile)
}

// Expire drops an authenticated session the server no longer accepts.
func (p *Provider) Expire() {
	p.mu.Lock()
	if p.token == "" && p.profile == nil {
		p.mu.Unlock()
		return
	}
	p.state = StateAnonymous
	p.token = ""
	p.profile = nil
	snap := p.snapshotLocked()
	p.mu.Unlock()

	slog.Warn("Session expired")
	if err := p.store.Save(context.Background(), snap); err != nil {
		slog.Error("Unable to clear persisted session", slog.Any("error", err))
	}
}

func (p *Provider) begin() {
	p.mu.Lock()
	p.state = StateLoading
	p.token = ""
	p.profile = nil
	p.mu.Unlock()
}

func (p *Provider) settleAuthenticated(ctx context.Context, token string, profile *auth.Profile) error {
	p.mu.Lock()
	p.state = StateAuthenticated
	p.token = token
	p.profile = profile
	snap := p.snapshotLocked()
	p.mu.Unlock()

	if err := p.store.Save(ctx, snap); err != nil {
		slog.ErrorContext(ctx, "Unable to persist session", slog.Any("error", err))
	}
	return nil
}

// settleAnonymous ends in the anonymous state. erase also removes the
// persisted token.
func (p *Provider) settleAnonymous(ctx context.Context, erase bool) {
	p.mu.Lock()
	p.state = StateAnonymous
	p.token = ""
	p.profile = nil
	snap := p.snapshotLocked()
	p.mu.Unlock()

	if !erase {
		return
	}
	if err := p.store.Save(ctx, snap); err != nil {
		slog.ErrorContext(ctx, "Unable to clear persisted session", slog.Any("error", err))
	}
}

func (p *Provider) snapshotLocked() *Snapshot {
	return &Snapshot{Token: p.token, Profile: p.profile, Theme: p.theme}
}
