package session

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/vsgo/appcore/domain"
)

// userCacheKey is the single key holding the serialized User record.
const userCacheKey = "user"

// AuthProvider abstracts the remote auth service.
type AuthProvider interface {
	SignUp(ctx context.Context, email, password string) (*domain.Identity, error)
	SignInWithPassword(ctx context.Context, email, password string) (*domain.Identity, error)
	SignInAnonymously(ctx context.Context) (*domain.Identity, error)
}

// Cache abstracts the device-local key-value storage holding the
// shaped User record between cold starts.
type Cache interface {
	Get(key string) ([]byte, bool, error)
	Set(key string, value []byte) error
	Remove(key string) error
}

// Observer is notified whenever the signed-in state changes.
type Observer func(signedIn bool)

// Manager owns the process-wide identity. All mutation goes through
// its methods; the mutex makes the single-writer contract real instead
// of assumed.
type Manager struct {
	auth   AuthProvider
	cache  Cache
	logger *zap.Logger
	now    func() time.Time

	mu        sync.Mutex
	identity  *domain.Identity
	user      *domain.User
	observers map[int]Observer
	nextID    int
}

// New creates a session manager.
func New(auth AuthProvider, cache Cache, logger *zap.Logger) *Manager {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Manager{
		auth:      auth,
		cache:     cache,
		logger:    logger,
		now:       time.Now,
		observers: make(map[int]Observer),
	}
}

// Restore loads the cached User record on cold start so the UI can be
// painted as logged-in immediately. The remote identity is not
// restored; it is re-established lazily by EnsureIdentity.
func (m *Manager) Restore(ctx context.Context) {
	raw, found, err := m.cache.Get(userCacheKey)
	if err != nil {
		m.logger.Warn("session cache read failed", zap.Error(err))
		return
	}
	if !found {
		return
	}

	var user domain.User
	if err := json.Unmarshal(raw, &user); err != nil {
		m.logger.Warn("discarding corrupt cached user record", zap.Error(err))
		_ = m.cache.Remove(userCacheKey)
		return
	}

	m.mu.Lock()
	m.user = &user
	m.mu.Unlock()
	m.logger.Info("restored cached session", zap.String("uid", user.UID))
}

// EnsureIdentity returns the current identity, attempting an anonymous
// bootstrap when none is held. Bootstrap failure is non-fatal: the
// caller gets nil and proceeds unauthenticated.
func (m *Manager) EnsureIdentity(ctx context.Context) *domain.Identity {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.identity != nil && !m.identity.IsExpired(m.now()) {
		ident := *m.identity
		return &ident
	}

	identity, err := m.auth.SignInAnonymously(ctx)
	if err != nil {
		m.logger.Warn("anonymous sign-in failed, continuing without auth", zap.Error(err))
		return nil
	}

	m.identity = identity
	m.logger.Info("anonymous session established", zap.String("uid", identity.UID))
	ident := *identity
	return &ident
}

// Login authenticates against the remote provider, shapes the User
// record and persists it to the local cache.
func (m *Manager) Login(ctx context.Context, email, password string) (*domain.User, error) {
	m.mu.Lock()
	identity, err := m.auth.SignInWithPassword(ctx, email, password)
	if err != nil {
		m.mu.Unlock()
		return nil, domain.WrapError(domain.ErrCodeUnauthenticated, "gagal login", err)
	}

	user := domain.NewUserFromLogin(identity.UID, email)
	if payload, err := json.Marshal(user); err == nil {
		if err := m.cache.Set(userCacheKey, payload); err != nil {
			m.logger.Warn("failed to persist user record", zap.Error(err))
		}
	}

	m.identity = identity
	m.user = user
	m.mu.Unlock()

	m.notify(true)
	m.logger.Info("login successful", zap.String("uid", identity.UID))
	return user, nil
}

// Register creates the remote account and then signs out, forcing the
// user through the login path to verify the credentials. The password
// confirmation is checked locally before any remote call.
func (m *Manager) Register(ctx context.Context, username, email, password, confirmPassword string) error {
	if password != confirmPassword {
		return domain.ErrPasswordMismatch
	}

	m.mu.Lock()
	if _, err := m.auth.SignUp(ctx, email, password); err != nil {
		m.mu.Unlock()
		return domain.WrapError(domain.ErrCodeUnauthenticated, "gagal mendaftar", err)
	}

	// No usable session after registration.
	m.identity = nil
	m.user = nil
	if err := m.cache.Remove(userCacheKey); err != nil {
		m.logger.Warn("failed to clear session cache", zap.Error(err))
	}
	m.mu.Unlock()

	m.notify(false)
	m.logger.Info("registration successful", zap.String("email", email), zap.String("username", username))
	return nil
}

// Logout clears the in-memory identity and the local cache. It is
// idempotent.
func (m *Manager) Logout(ctx context.Context) error {
	m.mu.Lock()
	wasSignedIn := m.identity != nil || m.user != nil
	m.identity = nil
	m.user = nil
	err := m.cache.Remove(userCacheKey)
	m.mu.Unlock()

	if err != nil {
		return domain.WrapError(domain.ErrCodeStorage, "gagal menghapus sesi", err)
	}
	if wasSignedIn {
		m.notify(false)
	}
	return nil
}

// Current returns the shaped User record, if one is set.
func (m *Manager) Current() (*domain.User, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.user == nil {
		return nil, false
	}
	user := *m.user
	return &user, true
}

// Identity returns the raw identity, if one is held.
func (m *Manager) Identity() (*domain.Identity, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.identity == nil {
		return nil, false
	}
	ident := *m.identity
	return &ident, true
}

// Subscribe registers an observer for sign-in state changes and
// returns its unsubscribe function. Observers run outside the session
// lock.
func (m *Manager) Subscribe(fn Observer) func() {
	m.mu.Lock()
	id := m.nextID
	m.nextID++
	m.observers[id] = fn
	m.mu.Unlock()

	return func() {
		m.mu.Lock()
		delete(m.observers, id)
		m.mu.Unlock()
	}
}

// Reauthenticate reconciles the held identity with its expiry: an
// anonymous identity about to expire is re-established, an expired
// real identity is signed out so observers learn about it. Invoked on
// a schedule by the refresher service.
func (m *Manager) Reauthenticate(ctx context.Context, leeway time.Duration) {
	m.mu.Lock()
	identity := m.identity
	if identity == nil {
		m.mu.Unlock()
		return
	}

	deadline := m.now().Add(leeway)
	if identity.ExpiresAt.IsZero() || identity.ExpiresAt.After(deadline) {
		m.mu.Unlock()
		return
	}

	if identity.Anonymous {
		fresh, err := m.auth.SignInAnonymously(ctx)
		if err != nil {
			m.logger.Warn("anonymous refresh failed", zap.Error(err))
			m.identity = nil
			m.mu.Unlock()
			return
		}
		m.identity = fresh
		m.mu.Unlock()
		m.logger.Debug("anonymous session refreshed", zap.String("uid", fresh.UID))
		return
	}

	// Real identity expired out-of-band: treat as remote sign-out.
	m.identity = nil
	m.user = nil
	if err := m.cache.Remove(userCacheKey); err != nil {
		m.logger.Warn("failed to clear session cache", zap.Error(err))
	}
	m.mu.Unlock()

	m.notify(false)
	m.logger.Info("session expired, signed out")
}

func (m *Manager) notify(signedIn bool) {
	m.mu.Lock()
	observers := make([]Observer, 0, len(m.observers))
	for _, fn := range m.observers {
		observers = append(observers, fn)
	}
	m.mu.Unlock()

	for _, fn := range observers {
		fn(signedIn)
	}
}
