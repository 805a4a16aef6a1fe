package session

import (
	"context"
	"sync"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"

	"github.com/veridocs/go-kyc-console/api"
	"github.com/veridocs/go-kyc-console/credentials"
	"github.com/veridocs/go-kyc-console/internal/config"
	apperrors "github.com/veridocs/go-kyc-console/internal/errors"
	"github.com/veridocs/go-kyc-console/internal/poll"
	"github.com/veridocs/go-kyc-console/internal/utils"
	"github.com/veridocs/go-kyc-console/users"
)

const refreshFlightKey = "refresh"

// AuthAPI is the slice of the console API the session consumes.
type AuthAPI interface {
	Login(ctx context.Context, username, password string) (*api.LoginResult, error)
	RefreshToken(ctx context.Context, refreshToken string) (*api.TokenPair, error)
	Logout(ctx context.Context, accessToken string) error
}

// Deps holds all collaborator dependencies for the Manager.
type Deps struct {
	Store     credentials.Store // Persists the session tuple between runs
	API       AuthAPI           // Auth endpoints of the console API
	Navigator Navigator         // Console shell routing
}

// Manager owns the session state and its transitions. All mutations are
// applied atomically: a reader never observes a fresh token next to a stale
// user.
type Manager struct {
	deps    Deps
	log     zerolog.Logger
	nowTime func() time.Time

	defaultRefreshInterval time.Duration
	minRefreshInterval     time.Duration

	mu           sync.RWMutex
	state        State
	user         *users.User
	accessToken  string
	refreshToken string

	refreshGroup singleflight.Group
	loop         *poll.Runner
}

var _ api.Authority = (*Manager)(nil)

// ManagerOption defines a function type to modify the Manager instance.
type ManagerOption func(*Manager)

// WithNowTime sets the now time function (primarily for testing)
func WithNowTime(nowFunc func() time.Time) ManagerOption {
	return func(m *Manager) {
		m.nowTime = nowFunc
	}
}

// WithLogger sets the session logger.
func WithLogger(log zerolog.Logger) ManagerOption {
	return func(m *Manager) {
		m.log = log
	}
}

// WithRefreshInterval sets the refresh cadence used when the access token
// carries no readable expiry.
func WithRefreshInterval(interval time.Duration) ManagerOption {
	return func(m *Manager) {
		m.defaultRefreshInterval = interval
	}
}

// NewManager initializes a Manager with required dependencies. Optional
// configuration can be provided via options (e.g. WithNowTime for testing).
func NewManager(deps Deps, options ...ManagerOption) (*Manager, error) {
	if deps.Store == nil {
		return nil, errors.New("[NewManager] Store is required")
	}
	if deps.API == nil {
		return nil, errors.New("[NewManager] API is required")
	}
	if deps.Navigator == nil {
		return nil, errors.New("[NewManager] Navigator is required")
	}

	cfg := config.Session{}
	manager := &Manager{
		deps:                   deps,
		log:                    zerolog.Nop(),
		nowTime:                time.Now,
		defaultRefreshInterval: cfg.GetDefaultRefreshInterval(),
		minRefreshInterval:     cfg.GetMinRefreshInterval(),
		state:                  StateUninitialized,
	}
	for _, opt := range options {
		opt(manager)
	}
	manager.loop = poll.New(manager.log)
	return manager, nil
}

// Bootstrap loads the persisted session, if any. It runs once; repeat calls
// are no-ops, so bootstrapping twice over unchanged storage yields the same
// state as bootstrapping once. The session always leaves the loading state,
// whatever the store held.
func (m *Manager) Bootstrap() {
	m.mu.Lock()
	if m.state != StateUninitialized {
		m.mu.Unlock()
		return
	}

	record, err := m.deps.Store.Load()
	if err != nil {
		m.log.Warn().Err(err).Msg("credential store unavailable, starting anonymous")
		record = credentials.Record{}
	}

	if record.User != nil && record.Consistent() {
		m.user = record.User
		m.accessToken = record.AccessToken
		m.refreshToken = record.RefreshToken
		m.state = StateAuthenticated
		m.mu.Unlock()
		m.log.Info().Str("user", record.User.Username).Msg("session restored")
		m.startRefreshLoop()
		return
	}

	m.state = StateAnonymous
	m.mu.Unlock()

	if !record.Empty() {
		// Half-written tuple: a user without a token or vice versa. Force a
		// clean slate rather than trusting it.
		m.log.Warn().Msg("persisted session inconsistent, clearing")
		if err := m.deps.Store.Clear(); err != nil {
			m.log.Warn().Err(err).Msg("failed to clear inconsistent session")
		}
	}
}

// Login exchanges credentials for a session, persists it, and navigates to
// the authenticated landing page. Every failure - network, non-2xx, malformed
// payload - collapses into the same generic invalid-credentials error so the
// response never reveals whether a username exists. Session state is left
// untouched on failure.
func (m *Manager) Login(ctx context.Context, username, password string) error {
	result, err := m.deps.API.Login(ctx, username, password)
	if err != nil {
		m.log.Debug().Err(err).Msg("login rejected")
		return errors.Wrap(apperrors.ErrInvalidCredentials, "[Manager.Login]")
	}
	if result.UserID == "" || result.AccessToken == "" {
		m.log.Debug().Msg("login response malformed")
		return errors.Wrap(apperrors.ErrInvalidCredentials, "[Manager.Login]")
	}

	user := &users.User{
		ID:          result.UserID,
		Username:    username,
		Name:        result.Name,
		Email:       result.Email,
		Roles:       normalize(result.Roles),
		Permissions: normalize(result.Permissions),
	}

	m.mu.Lock()
	m.user = user
	m.accessToken = result.AccessToken
	m.refreshToken = result.RefreshToken
	m.state = StateAuthenticated
	record := m.recordLocked()
	m.mu.Unlock()

	m.persist(record)
	m.log.Info().Str("user", username).Msg("logged in")
	m.startRefreshLoop()
	m.deps.Navigator.Navigate(LandingRoute)
	return nil
}

// Logout clears the session and the credential store, stops the refresh loop
// and navigates to the login entry point. It never fails and is idempotent:
// logging out an anonymous session is harmless. Server-side invalidation is
// best effort and does not block the local cleanup.
func (m *Manager) Logout() {
	m.mu.Lock()
	wasAuthenticated := m.state == StateAuthenticated
	// Capture the token before clearing: the server needs it to know which
	// session to invalidate, and local teardown erases it.
	invalidateToken := m.accessToken
	m.user = nil
	m.accessToken = ""
	m.refreshToken = ""
	m.state = StateAnonymous
	m.mu.Unlock()

	// Cancel rather than Stop: a refresh failure inside the loop's own task
	// lands here, and waiting for that task would deadlock.
	m.loop.Cancel()

	if err := m.deps.Store.Clear(); err != nil {
		m.log.Warn().Err(err).Msg("failed to clear credential store on logout")
	}

	if wasAuthenticated {
		go func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := m.deps.API.Logout(ctx, invalidateToken); err != nil {
				m.log.Debug().Err(err).Msg("server-side logout failed")
			}
		}()
		m.log.Info().Msg("logged out")
	}

	m.deps.Navigator.Navigate(LoginRoute)
}

// ForceLogout implements api.Authority. The API client calls it when a
// request stays unauthorized after a refresh.
func (m *Manager) ForceLogout() { m.Logout() }

// Close stops background work and waits for it to finish. For application
// teardown; the session itself remains usable.
func (m *Manager) Close() {
	m.loop.Stop()
}

// RefreshSession rotates the access token using the refresh token. Concurrent
// calls - the scheduled loop and a 401-intercepting request - are coalesced
// into a single network call whose outcome every caller receives. A rejected
// refresh ends the session.
func (m *Manager) RefreshSession(ctx context.Context) error {
	m.mu.RLock()
	authenticated := m.state == StateAuthenticated
	m.mu.RUnlock()
	if !authenticated {
		return errors.Wrap(apperrors.ErrNotAuthenticated, "[Manager.RefreshSession]")
	}

	_, err, _ := m.refreshGroup.Do(refreshFlightKey, func() (interface{}, error) {
		return nil, m.doRefresh(ctx)
	})
	return err
}

func (m *Manager) doRefresh(ctx context.Context) error {
	m.mu.RLock()
	refreshToken := m.refreshToken
	authenticated := m.state == StateAuthenticated
	m.mu.RUnlock()
	if !authenticated || refreshToken == "" {
		return errors.Wrap(apperrors.ErrNotAuthenticated, "[Manager.doRefresh]")
	}

	pair, err := m.deps.API.RefreshToken(ctx, refreshToken)
	if err != nil {
		m.log.Warn().Err(err).Msg("token refresh rejected, ending session")
		m.Logout()
		return errors.Wrap(apperrors.ErrSessionExpired, "[Manager.doRefresh]")
	}

	m.mu.Lock()
	if m.state != StateAuthenticated {
		// Logged out while the refresh was in flight; discard the new tokens.
		m.mu.Unlock()
		return errors.Wrap(apperrors.ErrNotAuthenticated, "[Manager.doRefresh]")
	}
	m.accessToken = pair.AccessToken
	if rotated := utils.Value(pair.RefreshToken); rotated != "" {
		m.refreshToken = rotated
	}
	record := m.recordLocked()
	m.mu.Unlock()

	m.persist(record)
	m.log.Debug().Msg("access token refreshed")
	// The rotated token may carry a different lifetime; reschedule from it.
	m.startRefreshLoop()
	return nil
}

// AccessToken implements api.Authority.
func (m *Manager) AccessToken() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.accessToken
}

// Snapshot returns an atomic view of the session.
func (m *Manager) Snapshot() Snapshot {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return Snapshot{
		State:       m.state,
		User:        m.user.Clone(),
		AccessToken: m.accessToken,
	}
}

// State returns the current lifecycle state.
func (m *Manager) State() State {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.state
}

// User returns a copy of the current user, or nil when anonymous.
func (m *Manager) User() *users.User {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.user.Clone()
}

// recordLocked builds the persistable tuple. Callers hold m.mu.
func (m *Manager) recordLocked() credentials.Record {
	return credentials.Record{
		Version:      credentials.RecordVersion,
		User:         m.user.Clone(),
		AccessToken:  m.accessToken,
		RefreshToken: m.refreshToken,
	}
}

// persist writes the tuple to the store. Storage trouble degrades the session
// to memory-only for this process; it never invalidates the in-memory state.
func (m *Manager) persist(record credentials.Record) {
	if err := m.deps.Store.Save(record); err != nil {
		m.log.Warn().Err(err).Msg("session not persisted, continuing in memory only")
	}
}

func normalize(values []string) []string {
	if values == nil {
		return []string{}
	}
	return values
}
