package session

import (
	"context"
	"sync"

	"github.com/rs/zerolog"

	"github.com/expertchat/expertchat/internal/domain/user"
	"github.com/expertchat/expertchat/internal/utils/apperrors"
)

// Manager is the injectable session service. It holds the single Session of
// the running client and serializes every mutation behind one mutex.
// Consumers receive it by reference and observe changes via Subscribe.
type Manager struct {
	storage Storage
	auth    AuthClient
	log     zerolog.Logger

	mu           sync.Mutex
	status       Status
	accessToken  string
	refreshToken string
	user         *user.User

	subMu   sync.Mutex
	nextSub int
	subs    map[int]func(Snapshot)
}

// NewManager constructs a Manager with its collaborators. The session starts
// Anonymous until Restore or Login succeeds.
func NewManager(storage Storage, auth AuthClient, log zerolog.Logger) *Manager {
	return &Manager{
		storage: storage,
		auth:    auth,
		log:     log,
		status:  StatusAnonymous,
		subs:    make(map[int]func(Snapshot)),
	}
}

// State returns the current session snapshot.
func (m *Manager) State() Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.snapshotLocked()
}

func (m *Manager) snapshotLocked() Snapshot {
	return Snapshot{
		Status:       m.status,
		AccessToken:  m.accessToken,
		RefreshToken: m.refreshToken,
		User:         m.user,
	}
}

// Subscribe registers an observer called after every state change. The
// returned function cancels the subscription.
func (m *Manager) Subscribe(fn func(Snapshot)) (cancel func()) {
	m.subMu.Lock()
	id := m.nextSub
	m.nextSub++
	m.subs[id] = fn
	m.subMu.Unlock()
	return func() {
		m.subMu.Lock()
		delete(m.subs, id)
		m.subMu.Unlock()
	}
}

func (m *Manager) notify(snap Snapshot) {
	m.subMu.Lock()
	fns := make([]func(Snapshot), 0, len(m.subs))
	for _, fn := range m.subs {
		fns = append(fns, fn)
	}
	m.subMu.Unlock()
	for _, fn := range fns {
		fn(snap)
	}
}

// apply advances the status machine. It returns false, without mutating
// anything, when the event is illegal in the current status.
func (m *Manager) apply(ev Event) bool {
	m.mu.Lock()
	next, ok := Transition(m.status, ev)
	if !ok {
		m.mu.Unlock()
		return false
	}
	m.status = next
	snap := m.snapshotLocked()
	m.mu.Unlock()
	m.notify(snap)
	return true
}

// Restore attempts to resurrect a persisted session at startup. It never
// returns an error: any failure tears the persisted tokens down and leaves
// the session Anonymous. With no persisted token it makes no network call.
func (m *Manager) Restore(ctx context.Context) {
	access, refresh, err := m.storage.LoadTokens()
	if err != nil {
		m.log.Warn().Err(err).Msg("session restore: unable to read persisted tokens")
		if clearErr := m.storage.ClearTokens(); clearErr != nil {
			m.log.Warn().Err(clearErr).Msg("session restore: unable to clear persisted tokens")
		}
		return
	}
	if access == "" {
		return
	}

	profile, err := m.auth.GetProfile(ctx, access)
	if err != nil {
		m.log.Warn().Err(err).Msg("session restore: profile fetch failed, discarding tokens")
		if clearErr := m.storage.ClearTokens(); clearErr != nil {
			m.log.Warn().Err(clearErr).Msg("session restore: unable to clear persisted tokens")
		}
		return
	}

	m.mu.Lock()
	next, ok := Transition(m.status, EventRestoreSucceeded)
	if !ok {
		m.mu.Unlock()
		return
	}
	m.status = next
	m.accessToken = access
	m.refreshToken = refresh
	m.user = profile
	snap := m.snapshotLocked()
	m.mu.Unlock()
	m.notify(snap)
}

// Login authenticates with the remote service. Local validation fails closed
// before any request. On success the token pair is persisted and the profile
// fetched; on any failure the session reverts to Anonymous and the error is
// returned for the caller to display.
func (m *Manager) Login(ctx context.Context, email, password string) (*Token, error) {
	if err := asValidationError(validate.Struct(loginInput{Email: email, Password: password})); err != nil {
		return nil, err
	}
	if !m.apply(EventLoginStarted) {
		return nil, apperrors.Validation(apperrors.LayerDomain, "a session is already active")
	}

	tok, err := m.auth.Login(ctx, email, password)
	if err != nil {
		m.apply(EventLoginFailed)
		return nil, err
	}
	return m.adoptToken(ctx, tok)
}

// Signup registers a new account. The endpoint returns a token pair on
// success, so a successful signup leaves the client logged in.
func (m *Manager) Signup(ctx context.Context, email, name, password string) (*Token, error) {
	if err := asValidationError(validate.Struct(signupInput{Email: email, Name: name, Password: password})); err != nil {
		return nil, err
	}
	if !m.apply(EventLoginStarted) {
		return nil, apperrors.Validation(apperrors.LayerDomain, "a session is already active")
	}

	tok, err := m.auth.Signup(ctx, email, name, password)
	if err != nil {
		m.apply(EventLoginFailed)
		return nil, err
	}
	return m.adoptToken(ctx, tok)
}

// adoptToken persists a freshly issued token pair, fetches the profile, and
// promotes the status machine to Authenticated. Tokens are persisted if and
// only if the whole sequence succeeds.
func (m *Manager) adoptToken(ctx context.Context, tok *Token) (*Token, error) {
	if tok == nil || tok.AccessToken == "" {
		m.apply(EventLoginFailed)
		return nil, apperrors.New(apperrors.LayerDomain, apperrors.KindServer, "auth service returned no access token", nil)
	}

	if err := m.storage.SaveTokens(tok.AccessToken, tok.RefreshToken); err != nil {
		m.apply(EventLoginFailed)
		return nil, apperrors.New(apperrors.LayerStorage, apperrors.KindStorage, "unable to persist tokens", err)
	}

	profile, err := m.auth.GetProfile(ctx, tok.AccessToken)
	if err != nil {
		if clearErr := m.storage.ClearTokens(); clearErr != nil {
			m.log.Warn().Err(clearErr).Msg("login: unable to clear persisted tokens after profile failure")
		}
		m.apply(EventLoginFailed)
		return nil, err
	}

	m.mu.Lock()
	next, ok := Transition(m.status, EventLoginSucceeded)
	if !ok {
		// Torn down concurrently; drop the persisted pair again.
		m.mu.Unlock()
		if clearErr := m.storage.ClearTokens(); clearErr != nil {
			m.log.Warn().Err(clearErr).Msg("login: unable to clear persisted tokens after teardown")
		}
		return nil, apperrors.New(apperrors.LayerDomain, apperrors.KindInternal, "session torn down during login", nil)
	}
	m.status = next
	m.accessToken = tok.AccessToken
	m.refreshToken = tok.RefreshToken
	m.user = profile
	snap := m.snapshotLocked()
	m.mu.Unlock()
	m.notify(snap)
	return tok, nil
}

// Logout tears the local session down with guaranteed-cleanup semantics: the
// remote call is best effort, but the persisted tokens are deleted and the
// state reset regardless of its outcome.
func (m *Manager) Logout(ctx context.Context) error {
	snap := m.State()
	if snap.AccessToken != "" {
		if err := m.auth.Logout(ctx, snap.AccessToken); err != nil {
			m.log.Warn().Err(err).Msg("logout: remote call failed, tearing down locally anyway")
		}
	}

	clearErr := m.storage.ClearTokens()

	m.mu.Lock()
	m.status = StatusAnonymous
	m.accessToken = ""
	m.refreshToken = ""
	m.user = nil
	after := m.snapshotLocked()
	m.mu.Unlock()
	m.notify(after)

	if clearErr != nil {
		return apperrors.New(apperrors.LayerStorage, apperrors.KindStorage, "unable to delete persisted tokens", clearErr)
	}
	return nil
}

// DeleteAccount removes the account remotely, then logs out unconditionally.
// A remote failure propagates and leaves the session authenticated.
func (m *Manager) DeleteAccount(ctx context.Context) error {
	snap := m.State()
	if !snap.Authenticated() {
		return apperrors.New(apperrors.LayerDomain, apperrors.KindUnauthorized, "no active session", nil)
	}
	if err := m.auth.DeleteAccount(ctx, snap.AccessToken); err != nil {
		return err
	}
	return m.Logout(ctx)
}

// UpdateProfile applies a profile change remotely and swaps the in-memory
// user for the returned record. Token state is untouched.
func (m *Manager) UpdateProfile(ctx context.Context, update user.Update) (*user.User, error) {
	snap := m.State()
	if !snap.Authenticated() {
		return nil, apperrors.New(apperrors.LayerDomain, apperrors.KindUnauthorized, "no active session", nil)
	}
	updated, err := m.auth.UpdateProfile(ctx, snap.AccessToken, update)
	if err != nil {
		return nil, err
	}
	m.setUser(updated)
	return updated, nil
}

// RefreshProfile re-fetches the profile with the current token. A failure
// propagates but never forces a logout: only an observed 401 at the transport
// boundary expires the session.
func (m *Manager) RefreshProfile(ctx context.Context) (*user.User, error) {
	snap := m.State()
	if !snap.Authenticated() {
		return nil, apperrors.New(apperrors.LayerDomain, apperrors.KindUnauthorized, "no active session", nil)
	}
	profile, err := m.auth.GetProfile(ctx, snap.AccessToken)
	if err != nil {
		return nil, err
	}
	m.setUser(profile)
	return profile, nil
}

func (m *Manager) setUser(u *user.User) {
	m.mu.Lock()
	m.user = u
	snap := m.snapshotLocked()
	m.mu.Unlock()
	m.notify(snap)
}

// RefreshToken exchanges the stored refresh token for a new pair. The flow is
// explicit and caller-driven; no silent renewal happens anywhere. On failure
// the session stays Authenticated with its previous tokens.
func (m *Manager) RefreshToken(ctx context.Context) (*Token, error) {
	snap := m.State()
	if snap.RefreshToken == "" {
		return nil, apperrors.Validation(apperrors.LayerDomain, "no refresh token available")
	}
	if !m.apply(EventRefreshStarted) {
		return nil, apperrors.Validation(apperrors.LayerDomain, "refresh requires an authenticated session")
	}

	tok, err := m.auth.Refresh(ctx, snap.RefreshToken)
	if err != nil {
		m.apply(EventRefreshFailed)
		return nil, err
	}
	if tok == nil || tok.AccessToken == "" {
		m.apply(EventRefreshFailed)
		return nil, apperrors.New(apperrors.LayerDomain, apperrors.KindServer, "auth service returned no access token", nil)
	}
	if err := m.storage.SaveTokens(tok.AccessToken, tok.RefreshToken); err != nil {
		m.apply(EventRefreshFailed)
		return nil, apperrors.New(apperrors.LayerStorage, apperrors.KindStorage, "unable to persist tokens", err)
	}

	m.mu.Lock()
	next, ok := Transition(m.status, EventRefreshSucceeded)
	if ok {
		m.status = next
	}
	m.accessToken = tok.AccessToken
	m.refreshToken = tok.RefreshToken
	after := m.snapshotLocked()
	m.mu.Unlock()
	m.notify(after)
	return tok, nil
}

// Expire is the transport-boundary hook for an observed 401: the persisted
// tokens are deleted and the session is torn down to Anonymous via Expired.
// The in-memory pair is dropped in the same locked section as the Expired
// transition so no snapshot ever reports Expired with a live token.
func (m *Manager) Expire() {
	m.mu.Lock()
	next, ok := Transition(m.status, EventTokenRejected)
	if !ok {
		m.mu.Unlock()
		return
	}
	m.status = next
	m.accessToken = ""
	m.refreshToken = ""
	m.user = nil
	expired := m.snapshotLocked()
	m.mu.Unlock()
	m.notify(expired)

	if err := m.storage.ClearTokens(); err != nil {
		m.log.Warn().Err(err).Msg("expire: unable to clear persisted tokens")
	}

	m.mu.Lock()
	if next, ok := Transition(m.status, EventTornDown); ok {
		m.status = next
	}
	snap := m.snapshotLocked()
	m.mu.Unlock()
	m.notify(snap)
}

// AccessToken returns the current bearer token, or the empty string when no
// session is active.
func (m *Manager) AccessToken() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.accessToken
}
