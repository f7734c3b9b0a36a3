package session

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/curaious/taskdesk/internal/perrors"
	"github.com/curaious/taskdesk/internal/rbac"
	"github.com/curaious/taskdesk/internal/services/auth"
	"github.com/curaious/taskdesk/internal/services/tenant"
	"github.com/curaious/taskdesk/internal/services/user"
)

type fakeAPI struct {
	loginSession *auth.Session
	loginErr     error
	loginGate    chan struct{}
	registerErr  error
	me           *auth.Profile
	meErr        error
	logoutErr    error
	logoutCalls  int
}

func (f *fakeAPI) Login(_ context.Context, _ auth.LoginRequest) (*auth.Session, error) {
	if f.loginGate != nil {
		<-f.loginGate
	}
	return f.loginSession, f.loginErr
}

func (f *fakeAPI) RegisterTenant(_ context.Context, _ tenant.RegisterTenantRequest) (*auth.Session, error) {
	return f.loginSession, f.registerErr
}

func (f *fakeAPI) Me(_ context.Context) (*auth.Profile, error) {
	return f.me, f.meErr
}

func (f *fakeAPI) Logout(_ context.Context) error {
	f.logoutCalls++
	return f.logoutErr
}

type memStore struct {
	mu    sync.Mutex
	snap  *Snapshot
	saves int
}

func (m *memStore) Load(_ context.Context) (*Snapshot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.snap, nil
}

func (m *memStore) Save(_ context.Context, snap *Snapshot) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.saves++
	if snap.empty() {
		m.snap = nil
		return nil
	}
	cp := *snap
	m.snap = &cp
	return nil
}

func adminProfile() *auth.Profile {
	return &auth.Profile{
		User:   user.User{ID: "u1", TenantID: "t1", Email: "ann@acme.io", FullName: "Ann", Role: rbac.RoleTenantAdmin, IsActive: true},
		Tenant: &tenant.Tenant{ID: "t1", Name: "Acme", Subdomain: "acme", Status: tenant.StatusActive, SubscriptionPlan: tenant.PlanFree},
	}
}

func TestProvider_StartsLoading(t *testing.T) {
	p := NewProvider(&fakeAPI{}, &memStore{})

	assert.Equal(t, StateLoading, p.State())
	_, ok := p.CurrentPrincipal()
	assert.False(t, ok)
}

func TestRestore_NothingPersisted(t *testing.T) {
	p := NewProvider(&fakeAPI{}, &memStore{})

	require.NoError(t, p.Restore(context.Background()))
	assert.Equal(t, StateAnonymous, p.State())
}

func TestLogin_Success(t *testing.T) {
	store := &memStore{}
	p := NewProvider(&fakeAPI{loginSession: &auth.Session{Token: "tok", User: *adminProfile()}}, store)

	require.NoError(t, p.Login(context.Background(), auth.LoginRequest{Email: "ann@acme.io", Password: "secret123"}))

	assert.Equal(t, StateAuthenticated, p.State())
	assert.Equal(t, "tok", p.Token())
	pr, ok := p.CurrentPrincipal()
	require.True(t, ok)
	assert.Equal(t, rbac.Principal{ID: "u1", TenantID: "t1", Role: rbac.RoleTenantAdmin, IsActive: true}, pr)

	require.NotNil(t, store.snap)
	assert.Equal(t, "tok", store.snap.Token)
	assert.Equal(t, "acme", store.snap.Profile.Tenant.Subdomain)
}

func TestLogin_LoadingWhileInFlight(t *testing.T) {
	api := &fakeAPI{loginSession: &auth.Session{Token: "tok", User: *adminProfile()}, loginGate: make(chan struct{})}
	p := NewProvider(api, &memStore{})
	require.NoError(t, p.Restore(context.Background()))

	done := make(chan error)
	go func() { done <- p.Login(context.Background(), auth.LoginRequest{Email: "a", Password: "b"}) }()

	assert.Eventually(t, func() bool { return p.State() == StateLoading }, time.Second, 5*time.Millisecond)
	close(api.loginGate)
	require.NoError(t, <-done)
	assert.Equal(t, StateAuthenticated, p.State())
}

func TestLogin_InvalidCredentials(t *testing.T) {
	store := &memStore{}
	p := NewProvider(&fakeAPI{loginErr: perrors.FromStatus(401, "Invalid email or password", "Login failed", false)}, store)

	err := p.Login(context.Background(), auth.LoginRequest{Email: "ann@acme.io", Password: "nope"})

	require.Error(t, err)
	assert.True(t, perrors.Is(err, perrors.ErrCodeInvalidCredentials))
	assert.Equal(t, "Invalid email or password", err.Error())
	assert.Equal(t, StateAnonymous, p.State())
	assert.Nil(t, store.snap)
}

func TestRegisterTenant_DuplicateSubdomain(t *testing.T) {
	p := NewProvider(&fakeAPI{registerErr: perrors.FromStatus(409, "Subdomain already exists", "Registration failed", false)}, &memStore{})

	err := p.RegisterTenant(context.Background(), tenant.RegisterTenantRequest{TenantName: "Acme", Subdomain: "acme"})

	require.Error(t, err)
	assert.True(t, perrors.Is(err, perrors.ErrCodeRegistrationFailed))
	assert.True(t, perrors.Is(err, perrors.ErrCodeConflict))
	assert.Equal(t, "Subdomain already exists", err.Error())
	assert.Equal(t, StateAnonymous, p.State())
	_, ok := p.CurrentPrincipal()
	assert.False(t, ok)
}

func TestRegisterTenant_SignsIn(t *testing.T) {
	p := NewProvider(&fakeAPI{loginSession: &auth.Session{Token: "tok", User: *adminProfile()}}, &memStore{})

	require.NoError(t, p.RegisterTenant(context.Background(), tenant.RegisterTenantRequest{TenantName: "Acme", Subdomain: "acme"}))

	assert.Equal(t, StateAuthenticated, p.State())
	assert.Equal(t, "Acme", p.Profile().Tenant.Name)
}

func TestLogout_ClearsEvenWhenServerFails(t *testing.T) {
	store := &memStore{snap: &Snapshot{Token: "tok", Profile: adminProfile(), Theme: "dark"}}
	api := &fakeAPI{me: adminProfile(), logoutErr: errors.New("connection refused")}
	p := NewProvider(api, store)
	require.NoError(t, p.Restore(context.Background()))
	require.Equal(t, StateAuthenticated, p.State())

	require.NoError(t, p.Logout(context.Background()))

	assert.Equal(t, 1, api.logoutCalls)
	assert.Equal(t, StateAnonymous, p.State())
	assert.Empty(t, p.Token())
	require.NotNil(t, store.snap)
	assert.Empty(t, store.snap.Token)
	assert.Nil(t, store.snap.Profile)
	assert.Equal(t, "dark", store.snap.Theme)
}

func TestRestore_RefreshesProfile(t *testing.T) {
	fresh := adminProfile()
	fresh.FullName = "Ann Smith"
	store := &memStore{snap: &Snapshot{Token: "tok", Profile: adminProfile()}}
	p := NewProvider(&fakeAPI{me: fresh}, store)

	require.NoError(t, p.Restore(context.Background()))

	assert.Equal(t, StateAuthenticated, p.State())
	assert.Equal(t, "Ann Smith", p.Profile().FullName)
	assert.Equal(t, "Ann Smith", store.snap.Profile.FullName)
}

func TestRestore_RejectedTokenIsErased(t *testing.T) {
	store := &memStore{snap: &Snapshot{Token: "old", Profile: adminProfile()}}
	p := NewProvider(&fakeAPI{meErr: perrors.FromStatus(401, "Authentication required", "Failed to load profile", true)}, store)

	require.NoError(t, p.Restore(context.Background()))

	assert.Equal(t, StateAnonymous, p.State())
	assert.Nil(t, store.snap)
}

func TestRestore_UnreachableServerKeepsStore(t *testing.T) {
	store := &memStore{snap: &Snapshot{Token: "tok", Profile: adminProfile()}}
	p := NewProvider(&fakeAPI{meErr: perrors.New(perrors.ErrCodeNetworkFailure, "Failed to load profile", errors.New("dial tcp: refused"))}, store)

	err := p.Restore(context.Background())

	assert.True(t, perrors.Is(err, perrors.ErrCodeNetworkFailure))
	assert.Equal(t, StateAnonymous, p.State())
	require.NotNil(t, store.snap)
	assert.Equal(t, "tok", store.snap.Token)
}

func TestExpire(t *testing.T) {
	store := &memStore{}
	p := NewProvider(&fakeAPI{loginSession: &auth.Session{Token: "tok", User: *adminProfile()}}, store)
	require.NoError(t, p.Login(context.Background(), auth.LoginRequest{Email: "a", Password: "b"}))
	require.NoError(t, p.SetTheme(context.Background(), "light"))

	p.Expire()

	assert.Equal(t, StateAnonymous, p.State())
	assert.Empty(t, p.Token())
	assert.Nil(t, p.Profile())
	assert.Equal(t, "light", store.snap.Theme)
	assert.Empty(t, store.snap.Token)

	saves := store.saves
	p.Expire()
	assert.Equal(t, saves, store.saves)
}

func TestFileStore(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "session.json")
	fs := NewFileStore(path)
	ctx := context.Background()

	snap, err := fs.Load(ctx)
	require.NoError(t, err)
	assert.Nil(t, snap)

	require.NoError(t, fs.Save(ctx, &Snapshot{Token: "tok", Profile: adminProfile(), Theme: "dark"}))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	snap, err = fs.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, "tok", snap.Token)
	assert.Equal(t, rbac.RoleTenantAdmin, snap.Profile.Role)

	require.NoError(t, fs.Save(ctx, &Snapshot{}))
	_, err = os.Stat(path)
	assert.True(t, os.IsNotExist(err))
}
