package guard_test

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/veridocs/go-kyc-console/guard"
	"github.com/veridocs/go-kyc-console/session"
	"github.com/veridocs/go-kyc-console/users"
)

func authenticatedSnap(u *users.User) session.Snapshot {
	return session.Snapshot{State: session.StateAuthenticated, User: u, AccessToken: "tok"}
}

func auditor() *users.User {
	return &users.User{
		ID:          "user-1",
		Username:    "testuser",
		Roles:       []string{"auditor"},
		Permissions: []string{"view:dashboard", "view:clients"},
	}
}

func TestCheck(t *testing.T) {
	t.Run("waits while bootstrap is in progress", func(t *testing.T) {
		snap := session.Snapshot{State: session.StateUninitialized}
		require.Equal(t, guard.DecisionWait, guard.Check(snap, guard.Requirements{}))
	})

	t.Run("anonymous user goes to login, not unauthorized", func(t *testing.T) {
		snap := session.Snapshot{State: session.StateAnonymous}
		decision := guard.Check(snap, guard.Requirements{Permissions: []string{"view:dashboard"}})
		require.Equal(t, guard.DecisionRedirectLogin, decision)
	})

	t.Run("entitled user is allowed", func(t *testing.T) {
		decision := guard.Check(authenticatedSnap(auditor()), guard.Requirements{
			Permissions:    []string{"view:dashboard"},
			AllPermissions: true,
		})
		require.Equal(t, guard.DecisionAllow, decision)
	})

	t.Run("no requirements allows any authenticated user", func(t *testing.T) {
		require.Equal(t, guard.DecisionAllow, guard.Check(authenticatedSnap(auditor()), guard.Requirements{}))
	})

	t.Run("missing role goes to unauthorized, not login", func(t *testing.T) {
		// Authenticated auditor hitting an administrador-only view.
		decision := guard.Check(authenticatedSnap(auditor()), guard.Requirements{
			Roles:    []string{"administrador"},
			AllRoles: true,
		})
		require.Equal(t, guard.DecisionRedirectUnauthorized, decision)
	})

	t.Run("any-of role requirement", func(t *testing.T) {
		req := guard.Requirements{Roles: []string{"administrador", "auditor"}}
		require.Equal(t, guard.DecisionAllow, guard.Check(authenticatedSnap(auditor()), req))
	})

	t.Run("all-of permissions requires the full set", func(t *testing.T) {
		req := guard.Requirements{
			Permissions:    []string{"view:dashboard", "approve:clients"},
			AllPermissions: true,
		}
		require.Equal(t, guard.DecisionRedirectUnauthorized, guard.Check(authenticatedSnap(auditor()), req))

		req.AllPermissions = false
		require.Equal(t, guard.DecisionAllow, guard.Check(authenticatedSnap(auditor()), req))
	})

	t.Run("deterministic for the same snapshot", func(t *testing.T) {
		snap := authenticatedSnap(auditor())
		req := guard.Requirements{Roles: []string{"administrador"}, AllRoles: true}
		first := guard.Check(snap, req)
		second := guard.Check(snap, req)
		require.Equal(t, first, second)
	})
}

type recordingNavigator struct {
	mu      sync.Mutex
	targets []string
}

func (n *recordingNavigator) Navigate(target string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.targets = append(n.targets, target)
}

func (n *recordingNavigator) all() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]string(nil), n.targets...)
}

func TestGuardObserve(t *testing.T) {
	t.Run("redirects anonymous to login once", func(t *testing.T) {
		nav := &recordingNavigator{}
		g := guard.New(guard.Requirements{Permissions: []string{"view:dashboard"}}, nav)

		snap := session.Snapshot{State: session.StateAnonymous}
		require.Equal(t, guard.DecisionRedirectLogin, g.Observe(snap))
		// Re-observing the same state must not redirect again.
		require.Equal(t, guard.DecisionRedirectLogin, g.Observe(snap))

		require.Equal(t, []string{session.LoginRoute}, nav.all())
	})

	t.Run("under-permissioned user lands on the unauthorized page", func(t *testing.T) {
		nav := &recordingNavigator{}
		g := guard.New(guard.Requirements{Roles: []string{"administrador"}, AllRoles: true}, nav)

		require.Equal(t, guard.DecisionRedirectUnauthorized, g.Observe(authenticatedSnap(auditor())))
		require.Equal(t, []string{session.UnauthorizedRoute}, nav.all())
	})

	t.Run("custom redirect target", func(t *testing.T) {
		nav := &recordingNavigator{}
		g := guard.New(guard.Requirements{
			Roles:          []string{"administrador"},
			RedirectTarget: "/denied",
		}, nav)

		g.Observe(authenticatedSnap(auditor()))
		require.Equal(t, []string{"/denied"}, nav.all())
	})

	t.Run("allow never navigates", func(t *testing.T) {
		nav := &recordingNavigator{}
		g := guard.New(guard.Requirements{}, nav)

		require.Equal(t, guard.DecisionAllow, g.Observe(authenticatedSnap(auditor())))
		require.Empty(t, nav.all())
	})

	t.Run("state change re-evaluates", func(t *testing.T) {
		nav := &recordingNavigator{}
		g := guard.New(guard.Requirements{}, nav)

		require.Equal(t, guard.DecisionWait, g.Observe(session.Snapshot{State: session.StateUninitialized}))
		require.Equal(t, guard.DecisionRedirectLogin, g.Observe(session.Snapshot{State: session.StateAnonymous}))
		require.Equal(t, guard.DecisionAllow, g.Observe(authenticatedSnap(auditor())))

		require.Equal(t, []string{session.LoginRoute}, nav.all())
	})
}
