package session

import "testing"

func TestTransition(t *testing.T) {
	tests := []struct {
		name   string
		from   Status
		event  Event
		want   Status
		wantOK bool
	}{
		{"login starts from anonymous", StatusAnonymous, EventLoginStarted, StatusAuthenticating, true},
		{"restore promotes anonymous", StatusAnonymous, EventRestoreSucceeded, StatusAuthenticated, true},
		{"login success", StatusAuthenticating, EventLoginSucceeded, StatusAuthenticated, true},
		{"login failure reverts", StatusAuthenticating, EventLoginFailed, StatusAnonymous, true},
		{"refresh starts from authenticated", StatusAuthenticated, EventRefreshStarted, StatusRefreshing, true},
		{"refresh success returns", StatusRefreshing, EventRefreshSucceeded, StatusAuthenticated, true},
		{"refresh failure keeps session", StatusRefreshing, EventRefreshFailed, StatusAuthenticated, true},
		{"401 expires authenticated", StatusAuthenticated, EventTokenRejected, StatusExpired, true},
		{"401 expires refreshing", StatusRefreshing, EventTokenRejected, StatusExpired, true},
		{"expired tears down", StatusExpired, EventTornDown, StatusAnonymous, true},
		{"expired allows re-login", StatusExpired, EventLoginStarted, StatusAuthenticating, true},
		{"logout from authenticated", StatusAuthenticated, EventLoggedOut, StatusAnonymous, true},

		{"no login while authenticated", StatusAuthenticated, EventLoginStarted, StatusAuthenticated, false},
		{"no login while authenticating", StatusAuthenticating, EventLoginStarted, StatusAuthenticating, false},
		{"no refresh while anonymous", StatusAnonymous, EventRefreshStarted, StatusAnonymous, false},
		{"no restore over live session", StatusAuthenticated, EventRestoreSucceeded, StatusAuthenticated, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := Transition(tt.from, tt.event)
			if got != tt.want || ok != tt.wantOK {
				t.Errorf("Transition(%v, %v) = (%v, %v), want (%v, %v)",
					tt.from, tt.event, got, ok, tt.want, tt.wantOK)
			}
		})
	}
}

func TestSnapshotAuthenticated(t *testing.T) {
	for _, status := range []Status{StatusAuthenticated, StatusRefreshing} {
		if !(Snapshot{Status: status}).Authenticated() {
			t.Errorf("Snapshot{%v}.Authenticated() = false, want true", status)
		}
	}
	for _, status := range []Status{StatusAnonymous, StatusAuthenticating, StatusExpired} {
		if (Snapshot{Status: status}).Authenticated() {
			t.Errorf("Snapshot{%v}.Authenticated() = true, want false", status)
		}
	}
}
