// Package session owns the authenticated-identity state of the running
// client: the status machine, the token pair, and the user profile.
package session

import (
	"context"

	"github.com/expertchat/expertchat/internal/domain/user"
)

// Status is the session lifecycle state.
type Status string

const (
	StatusAnonymous      Status = "anonymous"
	StatusAuthenticating Status = "authenticating"
	StatusAuthenticated  Status = "authenticated"
	StatusRefreshing     Status = "refreshing"
	StatusExpired        Status = "expired"
)

// Event is a session lifecycle trigger fed to Transition.
type Event string

const (
	EventLoginStarted     Event = "login_started"
	EventLoginSucceeded   Event = "login_succeeded"
	EventLoginFailed      Event = "login_failed"
	EventRestoreSucceeded Event = "restore_succeeded"
	EventRefreshStarted   Event = "refresh_started"
	EventRefreshSucceeded Event = "refresh_succeeded"
	EventRefreshFailed    Event = "refresh_failed"
	EventTokenRejected    Event = "token_rejected"
	EventLoggedOut        Event = "logged_out"
	EventTornDown         Event = "torn_down"
)

// Transition is the pure state machine: given the current status and an
// event, it returns the next status and whether the transition is legal.
// Keeping it free of I/O makes the machine testable without any collaborator.
func Transition(s Status, ev Event) (Status, bool) {
	switch s {
	case StatusAnonymous:
		switch ev {
		case EventLoginStarted:
			return StatusAuthenticating, true
		case EventRestoreSucceeded:
			return StatusAuthenticated, true
		}
	case StatusAuthenticating:
		switch ev {
		case EventLoginSucceeded:
			return StatusAuthenticated, true
		case EventLoginFailed:
			return StatusAnonymous, true
		}
	case StatusAuthenticated:
		switch ev {
		case EventRefreshStarted:
			return StatusRefreshing, true
		case EventTokenRejected:
			return StatusExpired, true
		case EventLoggedOut:
			return StatusAnonymous, true
		}
	case StatusRefreshing:
		switch ev {
		case EventRefreshSucceeded, EventRefreshFailed:
			return StatusAuthenticated, true
		case EventTokenRejected:
			return StatusExpired, true
		case EventLoggedOut:
			return StatusAnonymous, true
		}
	case StatusExpired:
		switch ev {
		case EventTornDown:
			return StatusAnonymous, true
		case EventLoginStarted:
			return StatusAuthenticating, true
		}
	}
	return s, false
}

// Token is the auth payload returned by the login, signup, and refresh
// endpoints.
type Token struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type"`
	ExpiresIn    int64  `json:"expires_in"`
}

// Snapshot is an immutable view of the session handed to observers. The
// access token is non-empty only while the status is Authenticated or
// Refreshing.
type Snapshot struct {
	Status       Status
	AccessToken  string
	RefreshToken string
	User         *user.User
}

// Authenticated reports whether the snapshot carries a usable session.
func (s Snapshot) Authenticated() bool {
	return s.Status == StatusAuthenticated || s.Status == StatusRefreshing
}

// Storage persists the token pair between runs. Implementations must write
// and delete the pair atomically: both tokens or neither.
type Storage interface {
	SaveTokens(access, refresh string) error
	LoadTokens() (access, refresh string, err error)
	ClearTokens() error
}

// AuthClient is the remote auth and profile collaborator.
type AuthClient interface {
	Login(ctx context.Context, email, password string) (*Token, error)
	Signup(ctx context.Context, email, name, password string) (*Token, error)
	Logout(ctx context.Context, accessToken string) error
	Refresh(ctx context.Context, refreshToken string) (*Token, error)
	GetProfile(ctx context.Context, accessToken string) (*user.User, error)
	UpdateProfile(ctx context.Context, accessToken string, update user.Update) (*user.User, error)
	DeleteAccount(ctx context.Context, accessToken string) error
}
