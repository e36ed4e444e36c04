package session

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/IGedeRyandikaPramudiaWardana/uts-billing-frontend-1/internal/domain"
	"github.com/IGedeRyandikaPramudiaWardana/uts-billing-frontend-1/internal/metrics"
	"github.com/IGedeRyandikaPramudiaWardana/uts-billing-frontend-1/internal/tokenstore"
	"github.com/jonboulle/clockwork"
)

// storeTimeout bounds credential cleanup, which runs without a caller context.
const storeTimeout = 5 * time.Second

// loginPath is where ForceLogout steers navigation.
const loginPath = "/login"

// State is the session lifecycle position.
type State string

const (
	StateUninitialized State = "uninitialized"
	StateHydrating     State = "hydrating"
	StateAuthenticated State = "authenticated"
	StateAnonymous     State = "anonymous"
)

// ProfileClient is the slice of the billing API the manager needs: profile
// refresh during hydration and best-effort server-side token invalidation.
type ProfileClient interface {
	Profile(ctx context.Context) (*domain.User, error)
	Logout(ctx context.Context) error
}

// Snapshot is an immutable view of the session at one point in time.
// User is non-nil whenever Token is non-empty and hydration has completed.
type Snapshot struct {
	User    *domain.User
	Token   string
	Loading bool
	At      time.Time
}

// IsAuthenticated reports whether a token is present. Token format and expiry
// are never validated here; an expired token surfaces as a failed API call.
func (s Snapshot) IsAuthenticated() bool {
	return s.Token != ""
}

// Subscriber receives a snapshot after every session transition.
type Subscriber func(Snapshot)

// Manager owns the session state. All mutation goes through Initialize,
// Login, Logout, and ForceLogout.
type Manager struct {
	store tokenstore.Store
	api   ProfileClient
	clock clockwork.Clock

	mu          sync.Mutex
	user        *domain.User
	token       string
	loading     bool
	initialized bool
	at          time.Time

	// gen increments on every mutation. An async result (the hydration
	// profile fetch) is discarded when the generation moved underneath it,
	// so a stale response can never clobber a newer login or logout.
	gen uint64

	subscribers []Subscriber
	navigate    func(path string)
}

// NewManager creates an anonymous, uninitialized Manager.
func NewManager(store tokenstore.Store, api ProfileClient, clock clockwork.Clock) *Manager {
	return &Manager{
		store:    store,
		api:      api,
		clock:    clock,
		navigate: func(string) {},
	}
}

// OnNavigate registers the navigation hook invoked by ForceLogout. The HTTP
// layer cannot push navigation to a browser, so the default is a no-op; the
// next guarded request redirects regardless.
func (m *Manager) OnNavigate(fn func(path string)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.navigate = fn
}

// Subscribe registers fn to be called after every session transition,
// including the one made by Initialize.
func (m *Manager) Subscribe(fn Subscriber) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.subscribers = append(m.subscribers, fn)
}

// Snapshot returns the current session state.
func (m *Manager) Snapshot() Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.snapshotLocked()
}

// IsAuthenticated reports whether a token is currently present.
func (m *Manager) IsAuthenticated() bool {
	return m.Snapshot().IsAuthenticated()
}

// Loading reports whether startup hydration is still in flight.
func (m *Manager) Loading() bool {
	return m.Snapshot().Loading
}

// State returns the lifecycle position, for logging and health reporting.
func (m *Manager) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()

	switch {
	case !m.initialized:
		return StateUninitialized
	case m.loading:
		return StateHydrating
	case m.token != "":
		return StateAuthenticated
	default:
		return StateAnonymous
	}
}

// Initialize hydrates the session from the persisted credential record. It
// runs once per process lifetime; later calls are no-ops. With no persisted
// token it settles to anonymous without touching the network. With one, the
// profile is refreshed against the API: success stores the fresh user record
// both in memory and back to the credential store, any failure forces a full
// logout. Either way loading is false when Initialize returns.
func (m *Manager) Initialize(ctx context.Context) {
	m.mu.Lock()
	if m.initialized {
		m.mu.Unlock()
		return
	}
	m.initialized = true
	m.mu.Unlock()

	token, ok, err := m.store.Get(ctx, tokenstore.KeyAuthToken)
	if err != nil {
		// Storage trouble is treated as "no credential": the session starts
		// anonymous instead of failing startup.
		slog.Warn("Credential store unavailable during hydration, starting anonymous", "error", err)
		ok = false
	}

	if !ok {
		m.mu.Lock()
		m.loading = false
		m.at = m.clock.Now()
		snapshot := m.snapshotLocked()
		subs := m.subscribersLocked()
		m.mu.Unlock()

		metrics.SessionState.Set(0)
		notify(subs, snapshot)
		return
	}

	m.mu.Lock()
	m.token = token
	m.loading = true
	m.at = m.clock.Now()
	gen := m.gen
	snapshot := m.snapshotLocked()
	subs := m.subscribersLocked()
	m.mu.Unlock()

	metrics.SessionState.Set(1)
	notify(subs, snapshot)

	user, err := m.api.Profile(ctx)
	if err != nil {
		slog.Info("Persisted token rejected, clearing session", "error", err)
		m.forceLogout("hydration_failed", gen)
		return
	}

	m.mu.Lock()
	if m.gen != gen {
		// A login or logout won the race; drop the stale profile.
		m.mu.Unlock()
		return
	}
	m.user = user
	m.loading = false
	m.at = m.clock.Now()
	snapshot = m.snapshotLocked()
	subs = m.subscribersLocked()
	m.mu.Unlock()

	m.persistUser(ctx, user)

	metrics.SessionState.Set(2)
	notify(subs, snapshot)
}

// Login installs an authenticated session. The caller has already exchanged
// credentials with the API; inputs are trusted as-is. Synchronous: the
// in-memory state is authenticated when Login returns, persistence failures
// are logged but do not undo it.
func (m *Manager) Login(user *domain.User, token string) {
	m.mu.Lock()
	m.user = user
	m.token = token
	m.loading = false
	m.initialized = true
	m.gen++
	m.at = m.clock.Now()
	snapshot := m.snapshotLocked()
	subs := m.subscribersLocked()
	m.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), storeTimeout)
	defer cancel()

	if err := m.store.Set(ctx, tokenstore.KeyAuthToken, token); err != nil {
		slog.Warn("Failed to persist token", "error", err)
	}
	m.persistUser(ctx, user)

	metrics.SessionState.Set(2)
	notify(subs, snapshot)
}

// Logout tells the API to invalidate the token, then clears local state. The
// server call is best effort: a dead API must never leave the client looking
// authenticated.
func (m *Manager) Logout(ctx context.Context) {
	if err := m.api.Logout(ctx); err != nil {
		slog.Info("Server-side logout failed, clearing local session anyway", "error", err)
	}
	m.ForceLogout()
}

// ForceLogout clears the in-memory session, removes both persisted keys, and
// steers navigation to the login entry point. Idempotent.
func (m *Manager) ForceLogout() {
	m.forceLogout("forced", 0)
}

func (m *Manager) forceLogout(reason string, staleGen uint64) {
	m.mu.Lock()
	if reason == "hydration_failed" && m.gen != staleGen {
		// The failed hydration was already superseded; leave the newer
		// session alone.
		m.mu.Unlock()
		return
	}
	m.user = nil
	m.token = ""
	m.loading = false
	m.initialized = true
	m.gen++
	m.at = m.clock.Now()
	snapshot := m.snapshotLocked()
	subs := m.subscribersLocked()
	nav := m.navigate
	m.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), storeTimeout)
	defer cancel()

	if err := m.store.Remove(ctx, tokenstore.KeyAuthToken); err != nil {
		slog.Warn("Failed to remove persisted token", "error", err)
	}
	if err := m.store.Remove(ctx, tokenstore.KeyAuthUser); err != nil {
		slog.Warn("Failed to remove persisted user", "error", err)
	}

	metrics.SessionState.Set(0)
	metrics.ForcedLogoutsTotal.WithLabelValues(reason).Inc()

	notify(subs, snapshot)
	nav(loginPath)
}

func (m *Manager) persistUser(ctx context.Context, user *domain.User) {
	encoded, err := json.Marshal(user)
	if err != nil {
		slog.Warn("Failed to encode user for persistence", "error", err)
		return
	}
	if err := m.store.Set(ctx, tokenstore.KeyAuthUser, string(encoded)); err != nil {
		slog.Warn("Failed to persist user", "error", err)
	}
}

func (m *Manager) snapshotLocked() Snapshot {
	return Snapshot{
		User:    m.user,
		Token:   m.token,
		Loading: m.loading,
		At:      m.at,
	}
}

func (m *Manager) subscribersLocked() []Subscriber {
	subs := make([]Subscriber, len(m.subscribers))
	copy(subs, m.subscribers)
	return subs
}

func notify(subs []Subscriber, snapshot Snapshot) {
	for _, fn := range subs {
		fn(snapshot)
	}
}
