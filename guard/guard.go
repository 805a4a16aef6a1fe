// Package guard decides whether the current session may render a protected
// view. The decision function is pure - same session state, same answer - and
// the redirect binding fires at most once per state change so a redirect can
// never re-trigger itself.
package guard

import (
	"sync"

	"github.com/veridocs/go-kyc-console/access"
	"github.com/veridocs/go-kyc-console/session"
)

// Requirements configures a guard. Empty slices pass; AllPermissions and
// AllRoles switch the corresponding check between all-of and any-of.
type Requirements struct {
	Permissions    []string
	Roles          []string
	AllPermissions bool
	AllRoles       bool

	// RedirectTarget overrides where an authenticated-but-unentitled user is
	// sent. Defaults to the unauthorized page, which is deliberately distinct
	// from the login page.
	RedirectTarget string
}

// Decision is the outcome of a guard evaluation.
type Decision int

const (
	// DecisionWait: bootstrap is still in progress; render nothing, decide later.
	DecisionWait Decision = iota
	// DecisionAllow: render the protected view.
	DecisionAllow
	// DecisionRedirectLogin: anonymous user, send to the login entry point.
	DecisionRedirectLogin
	// DecisionRedirectUnauthorized: authenticated but not entitled.
	DecisionRedirectUnauthorized
)

func (d Decision) String() string {
	switch d {
	case DecisionWait:
		return "wait"
	case DecisionAllow:
		return "allow"
	case DecisionRedirectLogin:
		return "redirect-login"
	case DecisionRedirectUnauthorized:
		return "redirect-unauthorized"
	}
	return "unknown"
}

// Check evaluates the requirements against a session snapshot.
func Check(snap session.Snapshot, req Requirements) Decision {
	if snap.Loading() {
		return DecisionWait
	}
	if !snap.Authenticated() {
		return DecisionRedirectLogin
	}

	permitted := access.HasAnyPermission(snap.User, req.Permissions)
	if req.AllPermissions {
		permitted = access.HasAllPermissions(snap.User, req.Permissions)
	}
	entitled := access.HasAnyRole(snap.User, req.Roles)
	if req.AllRoles {
		entitled = access.HasAllRoles(snap.User, req.Roles)
	}

	if !permitted || !entitled {
		return DecisionRedirectUnauthorized
	}
	return DecisionAllow
}

// Guard binds Requirements to a Navigator. Observe is called on every session
// state change; it navigates only when the decision actually changed, which
// keeps redirects from looping.
type Guard struct {
	req Requirements
	nav session.Navigator

	mu      sync.Mutex
	decided bool
	last    Decision
}

// New creates a Guard with the given requirements.
func New(req Requirements, nav session.Navigator) *Guard {
	return &Guard{req: req, nav: nav}
}

// Observe evaluates the snapshot, performs any redirect, and returns the
// decision. Side-effect-free beyond navigation.
func (g *Guard) Observe(snap session.Snapshot) Decision {
	decision := Check(snap, g.req)

	g.mu.Lock()
	repeated := g.decided && g.last == decision
	g.decided = true
	g.last = decision
	g.mu.Unlock()

	if repeated {
		return decision
	}

	switch decision {
	case DecisionRedirectLogin:
		g.nav.Navigate(session.LoginRoute)
	case DecisionRedirectUnauthorized:
		target := g.req.RedirectTarget
		if target == "" {
			target = session.UnauthorizedRoute
		}
		g.nav.Navigate(target)
	}
	return decision
}
