package session_test

import (
	"context"
	"encoding/json"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vsgo/appcore/domain"
	"github.com/vsgo/appcore/internal/infrastructure/cache"
	"github.com/vsgo/appcore/internal/session"
)

// fakeAuth records every remote call and serves canned identities.
type fakeAuth struct {
	signUpCalls    int
	signInCalls    int
	anonymousCalls int

	signUpErr    error
	signInErr    error
	anonymousErr error

	expiresAt time.Time
	anonUID   string
}

func (f *fakeAuth) SignUp(ctx context.Context, email, password string) (*domain.Identity, error) {
	f.signUpCalls++
	if f.signUpErr != nil {
		return nil, f.signUpErr
	}
	return &domain.Identity{UID: "new-" + email, Token: "t", ExpiresAt: f.expiresAt}, nil
}

func (f *fakeAuth) SignInWithPassword(ctx context.Context, email, password string) (*domain.Identity, error) {
	f.signInCalls++
	if f.signInErr != nil {
		return nil, f.signInErr
	}
	return &domain.Identity{UID: "uid-" + email, Token: "t-" + email, ExpiresAt: f.expiresAt}, nil
}

func (f *fakeAuth) SignInAnonymously(ctx context.Context) (*domain.Identity, error) {
	f.anonymousCalls++
	if f.anonymousErr != nil {
		return nil, f.anonymousErr
	}
	uid := f.anonUID
	if uid == "" {
		uid = fmt.Sprintf("anon-%d", f.anonymousCalls)
	}
	return &domain.Identity{UID: uid, Token: "anon-token", ExpiresAt: f.expiresAt, Anonymous: true}, nil
}

func newTestCache(t *testing.T) *cache.Store {
	t.Helper()
	store, err := cache.Open(filepath.Join(t.TempDir(), "session.db"), "session")
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func TestLoginShapesAndCachesUser(t *testing.T) {
	auth := &fakeAuth{expiresAt: time.Now().Add(time.Hour)}
	store := newTestCache(t)
	mgr := session.New(auth, store, nil)

	var events []bool
	unsubscribe := mgr.Subscribe(func(signedIn bool) { events = append(events, signedIn) })
	defer unsubscribe()

	user, err := mgr.Login(context.Background(), "budi@example.com", "rahasia")
	require.NoError(t, err)

	assert.Equal(t, "budi", user.Username, "username derives from the email local-part")
	assert.Equal(t, "budi@example.com", user.Email)
	assert.Equal(t, "uid-budi@example.com", user.UID)
	assert.Equal(t, []bool{true}, events)

	raw, found, err := store.Get("user")
	require.NoError(t, err)
	require.True(t, found, "login must persist the user record")
	var cached domain.User
	require.NoError(t, json.Unmarshal(raw, &cached))
	assert.Equal(t, "budi", cached.Username)

	current, ok := mgr.Current()
	require.True(t, ok)
	assert.Equal(t, user.UID, current.UID)
}

func TestLoginFailureIsUnauthenticated(t *testing.T) {
	auth := &fakeAuth{signInErr: fmt.Errorf("invalid credentials")}
	mgr := session.New(auth, newTestCache(t), nil)

	_, err := mgr.Login(context.Background(), "budi@example.com", "salah")
	require.Error(t, err)
	assert.True(t, domain.IsDomainError(err, domain.ErrCodeUnauthenticated))

	_, ok := mgr.Current()
	assert.False(t, ok)
}

func TestRegisterPasswordMismatchSkipsRemote(t *testing.T) {
	auth := &fakeAuth{}
	mgr := session.New(auth, newTestCache(t), nil)

	err := mgr.Register(context.Background(), "budi", "budi@example.com", "satu", "dua")
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrPasswordMismatch)
	assert.Zero(t, auth.signUpCalls, "mismatch must be caught before any remote call")
}

func TestRegisterForcesLogin(t *testing.T) {
	auth := &fakeAuth{expiresAt: time.Now().Add(time.Hour)}
	store := newTestCache(t)
	mgr := session.New(auth, store, nil)

	// Start from a signed-in state to prove registration tears it down.
	_, err := mgr.Login(context.Background(), "lama@example.com", "pw")
	require.NoError(t, err)

	var events []bool
	unsubscribe := mgr.Subscribe(func(signedIn bool) { events = append(events, signedIn) })
	defer unsubscribe()

	require.NoError(t, mgr.Register(context.Background(), "baru", "baru@example.com", "pw123456", "pw123456"))

	assert.Equal(t, 1, auth.signUpCalls)
	assert.Equal(t, []bool{false}, events)

	_, ok := mgr.Current()
	assert.False(t, ok, "no usable session after registration")
	_, ok = mgr.Identity()
	assert.False(t, ok)

	_, found, err := store.Get("user")
	require.NoError(t, err)
	assert.False(t, found, "registration must clear the cached record")
}

func TestLogoutIsIdempotent(t *testing.T) {
	auth := &fakeAuth{expiresAt: time.Now().Add(time.Hour)}
	mgr := session.New(auth, newTestCache(t), nil)

	_, err := mgr.Login(context.Background(), "budi@example.com", "pw")
	require.NoError(t, err)

	var events []bool
	unsubscribe := mgr.Subscribe(func(signedIn bool) { events = append(events, signedIn) })
	defer unsubscribe()

	require.NoError(t, mgr.Logout(context.Background()))
	require.NoError(t, mgr.Logout(context.Background()))

	assert.Equal(t, []bool{false}, events, "second logout must not notify again")
	_, ok := mgr.Current()
	assert.False(t, ok)
}

func TestEnsureIdentityBootstrapsAnonymously(t *testing.T) {
	auth := &fakeAuth{expiresAt: time.Now().Add(time.Hour), anonUID: "anon-1"}
	mgr := session.New(auth, newTestCache(t), nil)

	ident := mgr.EnsureIdentity(context.Background())
	require.NotNil(t, ident)
	assert.True(t, ident.Anonymous)
	assert.Equal(t, "anon-1", ident.UID)

	// Second call reuses the held identity.
	again := mgr.EnsureIdentity(context.Background())
	require.NotNil(t, again)
	assert.Equal(t, ident.UID, again.UID)
	assert.Equal(t, 1, auth.anonymousCalls)
}

func TestEnsureIdentityFailureIsNonFatal(t *testing.T) {
	auth := &fakeAuth{anonymousErr: fmt.Errorf("auth service down")}
	mgr := session.New(auth, newTestCache(t), nil)

	assert.Nil(t, mgr.EnsureIdentity(context.Background()))
	assert.Equal(t, 1, auth.anonymousCalls)
}

func TestRestoreLoadsCachedUser(t *testing.T) {
	store := newTestCache(t)
	payload, err := json.Marshal(domain.User{ID: "u1", Username: "budi", Email: "budi@example.com", UID: "u1"})
	require.NoError(t, err)
	require.NoError(t, store.Set("user", payload))

	mgr := session.New(&fakeAuth{}, store, nil)
	mgr.Restore(context.Background())

	user, ok := mgr.Current()
	require.True(t, ok)
	assert.Equal(t, "budi", user.Username)

	// Restore never resurrects a remote identity.
	_, ok = mgr.Identity()
	assert.False(t, ok)
}

func TestRestoreDiscardsCorruptRecord(t *testing.T) {
	store := newTestCache(t)
	require.NoError(t, store.Set("user", []byte("{not json")))

	mgr := session.New(&fakeAuth{}, store, nil)
	mgr.Restore(context.Background())

	_, ok := mgr.Current()
	assert.False(t, ok)

	_, found, err := store.Get("user")
	require.NoError(t, err)
	assert.False(t, found, "corrupt record must be purged")
}

func TestReauthenticateRefreshesExpiringAnonymous(t *testing.T) {
	auth := &fakeAuth{expiresAt: time.Now().Add(30 * time.Second)}
	mgr := session.New(auth, newTestCache(t), nil)

	require.NotNil(t, mgr.EnsureIdentity(context.Background()))
	require.Equal(t, 1, auth.anonymousCalls)

	auth.expiresAt = time.Now().Add(time.Hour)
	mgr.Reauthenticate(context.Background(), 5*time.Minute)

	assert.Equal(t, 2, auth.anonymousCalls, "expiring anonymous identity is re-established")
	ident, ok := mgr.Identity()
	require.True(t, ok)
	assert.True(t, ident.Anonymous)
}

func TestReauthenticateSignsOutExpiredRealIdentity(t *testing.T) {
	auth := &fakeAuth{expiresAt: time.Now().Add(-time.Minute)}
	store := newTestCache(t)
	mgr := session.New(auth, store, nil)

	_, err := mgr.Login(context.Background(), "budi@example.com", "pw")
	require.NoError(t, err)

	var events []bool
	unsubscribe := mgr.Subscribe(func(signedIn bool) { events = append(events, signedIn) })
	defer unsubscribe()

	mgr.Reauthenticate(context.Background(), time.Minute)

	assert.Equal(t, []bool{false}, events)
	_, ok := mgr.Current()
	assert.False(t, ok)
	_, found, err := store.Get("user")
	require.NoError(t, err)
	assert.False(t, found)
}

func TestReauthenticateLeavesFreshIdentityAlone(t *testing.T) {
	auth := &fakeAuth{expiresAt: time.Now().Add(2 * time.Hour)}
	mgr := session.New(auth, newTestCache(t), nil)

	require.NotNil(t, mgr.EnsureIdentity(context.Background()))
	mgr.Reauthenticate(context.Background(), 5*time.Minute)

	assert.Equal(t, 1, auth.anonymousCalls, "fresh identity must not trigger a refresh")
}
