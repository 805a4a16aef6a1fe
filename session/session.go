// Package session holds the console's single source of truth for "who is
// logged in and with what token". One Manager exists per running console; it
// is constructor-injected into everything that needs identity, never reached
// through a global.
package session

import (
	"github.com/veridocs/go-kyc-console/users"
)

// State is the session's lifecycle position. The machine is long-running:
// there is no terminal state.
//
//	Uninitialized -> (Bootstrap) -> Anonymous | Authenticated
//	Anonymous     -> (Login ok)  -> Authenticated
//	Authenticated -> (Logout, refresh failure) -> Anonymous
//	Authenticated -> (refresh ok) -> Authenticated (tokens swapped)
type State int

const (
	StateUninitialized State = iota
	StateAnonymous
	StateAuthenticated
)

func (s State) String() string {
	switch s {
	case StateUninitialized:
		return "uninitialized"
	case StateAnonymous:
		return "anonymous"
	case StateAuthenticated:
		return "authenticated"
	}
	return "unknown"
}

// Route targets within the console shell.
const (
	LoginRoute        = "/login"
	LandingRoute      = "/dashboard"
	UnauthorizedRoute = "/unauthorized"
)

// Navigator is the console shell's routing surface. Login, logout and the
// guards redirect through it.
type Navigator interface {
	Navigate(target string)
}

// NavigatorFunc adapts a function to the Navigator interface.
type NavigatorFunc func(target string)

func (f NavigatorFunc) Navigate(target string) { f(target) }

// Snapshot is an atomic, read-only view of the session. The user is a copy;
// mutating it does not touch the session's grants.
type Snapshot struct {
	State       State
	User        *users.User
	AccessToken string
}

// Loading reports whether the initial bootstrap is still in progress.
func (s Snapshot) Loading() bool { return s.State == StateUninitialized }

// Authenticated reports whether a user is logged in.
func (s Snapshot) Authenticated() bool { return s.State == StateAuthenticated }
