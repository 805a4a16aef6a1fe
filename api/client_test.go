package api_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/veridocs/go-kyc-console/api"
	apperrors "github.com/veridocs/go-kyc-console/internal/errors"
)

// fakeAuthority stands in for the session manager on the client side of the
// refresh protocol.
type fakeAuthority struct {
	mu           sync.Mutex
	token        string
	refreshErr   error
	onRefresh    func(f *fakeAuthority)
	refreshCalls int
	logoutCalls  int
}

func (f *fakeAuthority) AccessToken() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.token
}

func (f *fakeAuthority) RefreshSession(ctx context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.refreshCalls++
	if f.refreshErr != nil {
		return f.refreshErr
	}
	if f.onRefresh != nil {
		f.onRefresh(f)
	}
	return nil
}

func (f *fakeAuthority) ForceLogout() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.logoutCalls++
}

func (f *fakeAuthority) counts() (refreshes, logouts int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.refreshCalls, f.logoutCalls
}

func newTestClient(t *testing.T, serverURL string, authority api.Authority) *api.Client {
	t.Helper()
	client, err := api.NewClient(serverURL)
	require.NoError(t, err)
	if authority != nil {
		client.Bind(authority)
	}
	return client
}

func TestBearerAttachment(t *testing.T) {
	var gotAuth, gotRequestID string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotRequestID = r.Header.Get("X-Request-Id")
		_ = json.NewEncoder(w).Encode(map[string]int{"count": 3})
	}))
	defer server.Close()

	t.Run("token present", func(t *testing.T) {
		client := newTestClient(t, server.URL, &fakeAuthority{token: "tok-123"})
		count, err := client.UnreadNotifications(context.Background())
		require.NoError(t, err)
		require.Equal(t, 3, count)
		require.Equal(t, "Bearer tok-123", gotAuth)
		require.NotEmpty(t, gotRequestID)
	})

	t.Run("no token means no header", func(t *testing.T) {
		client := newTestClient(t, server.URL, &fakeAuthority{})
		_, err := client.UnreadNotifications(context.Background())
		require.NoError(t, err)
		require.Empty(t, gotAuth)
	})
}

func TestUnauthorizedRetry(t *testing.T) {
	t.Run("401 then 200 returns payload with one refresh", func(t *testing.T) {
		var requests int
		var mu sync.Mutex
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			mu.Lock()
			requests++
			mu.Unlock()
			if r.Header.Get("Authorization") != "Bearer fresh" {
				w.WriteHeader(http.StatusUnauthorized)
				return
			}
			_ = json.NewEncoder(w).Encode(map[string]int{"count": 7})
		}))
		defer server.Close()

		authority := &fakeAuthority{
			token:     "stale",
			onRefresh: func(f *fakeAuthority) { f.token = "fresh" },
		}
		client := newTestClient(t, server.URL, authority)

		count, err := client.UnreadNotifications(context.Background())
		require.NoError(t, err)
		require.Equal(t, 7, count)

		refreshes, logouts := authority.counts()
		require.Equal(t, 1, refreshes)
		require.Equal(t, 0, logouts)
		require.Equal(t, 2, requests)
	})

	t.Run("401 twice triggers exactly one logout", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusUnauthorized)
		}))
		defer server.Close()

		authority := &fakeAuthority{
			token:     "stale",
			onRefresh: func(f *fakeAuthority) { f.token = "fresh" },
		}
		client := newTestClient(t, server.URL, authority)

		_, err := client.UnreadNotifications(context.Background())
		require.Error(t, err)
		require.ErrorIs(t, err, apperrors.ErrSessionExpired)

		refreshes, logouts := authority.counts()
		require.Equal(t, 1, refreshes)
		require.Equal(t, 1, logouts)
	})

	t.Run("refresh failure propagates without replay", func(t *testing.T) {
		var requests int
		var mu sync.Mutex
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			mu.Lock()
			requests++
			mu.Unlock()
			w.WriteHeader(http.StatusUnauthorized)
		}))
		defer server.Close()

		authority := &fakeAuthority{token: "stale", refreshErr: apperrors.ErrSessionExpired}
		client := newTestClient(t, server.URL, authority)

		_, err := client.UnreadNotifications(context.Background())
		require.ErrorIs(t, err, apperrors.ErrSessionExpired)
		require.Equal(t, 1, requests)
	})

	t.Run("anonymous 401 passes through untouched", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusUnauthorized)
		}))
		defer server.Close()

		authority := &fakeAuthority{}
		client := newTestClient(t, server.URL, authority)

		_, err := client.UnreadNotifications(context.Background())
		require.True(t, api.IsStatus(err, http.StatusUnauthorized))

		refreshes, logouts := authority.counts()
		require.Equal(t, 0, refreshes)
		require.Equal(t, 0, logouts)
	})
}

func TestOtherStatusCodesPassThrough(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"error":"document not found"}`))
	}))
	defer server.Close()

	authority := &fakeAuthority{token: "tok"}
	client := newTestClient(t, server.URL, authority)

	_, err := client.GetDocument(context.Background(), "doc-1")
	require.True(t, api.IsStatus(err, http.StatusNotFound))

	var statusErr *api.StatusError
	require.ErrorAs(t, err, &statusErr)
	require.Equal(t, "document not found", statusErr.Message)

	refreshes, _ := authority.counts()
	require.Equal(t, 0, refreshes)
}

func TestLoginEndpoint(t *testing.T) {
	t.Run("success decodes payload and sends no bearer", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			require.Equal(t, "/auth/login", r.URL.Path)
			require.Empty(t, r.Header.Get("Authorization"))

			var body map[string]string
			require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
			require.Equal(t, "testuser", body["username"])
			require.Equal(t, "password123", body["password"])

			_ = json.NewEncoder(w).Encode(map[string]any{
				"userId":       "user-1",
				"name":         "Test User",
				"email":        "test@example.com",
				"roles":        []string{"auditor"},
				"permissions":  []string{"view:dashboard"},
				"accessToken":  "access-token",
				"refreshToken": "refresh-token",
			})
		}))
		defer server.Close()

		client := newTestClient(t, server.URL, &fakeAuthority{token: "existing"})
		result, err := client.Login(context.Background(), "testuser", "password123")
		require.NoError(t, err)
		require.Equal(t, "user-1", result.UserID)
		require.Contains(t, result.Permissions, "view:dashboard")
	})

	t.Run("rejected login never triggers the refresh protocol", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusUnauthorized)
		}))
		defer server.Close()

		authority := &fakeAuthority{token: "existing"}
		client := newTestClient(t, server.URL, authority)

		_, err := client.Login(context.Background(), "testuser", "wrong")
		require.Error(t, err)

		refreshes, logouts := authority.counts()
		require.Equal(t, 0, refreshes)
		require.Equal(t, 0, logouts)
	})
}

func TestLogoutEndpoint(t *testing.T) {
	t.Run("sends the token it was handed, not the session's", func(t *testing.T) {
		var gotAuth string
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			require.Equal(t, "/auth/logout", r.URL.Path)
			gotAuth = r.Header.Get("Authorization")
			w.WriteHeader(http.StatusNoContent)
		}))
		defer server.Close()

		// The bound session has already been torn down and holds no token.
		authority := &fakeAuthority{}
		client := newTestClient(t, server.URL, authority)

		require.NoError(t, client.Logout(context.Background(), "parting-token"))
		require.Equal(t, "Bearer parting-token", gotAuth)

		refreshes, logouts := authority.counts()
		require.Equal(t, 0, refreshes)
		require.Equal(t, 0, logouts)
	})

	t.Run("server failure surfaces but stays typed", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		}))
		defer server.Close()

		client := newTestClient(t, server.URL, nil)
		err := client.Logout(context.Background(), "parting-token")
		require.True(t, api.IsStatus(err, http.StatusInternalServerError))
	})
}

func TestRefreshTokenEndpoint(t *testing.T) {
	t.Run("rotated refresh token", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			require.Equal(t, "/auth/refresh-token", r.URL.Path)
			var body map[string]string
			require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
			require.Equal(t, "old-refresh", body["refreshToken"])

			_ = json.NewEncoder(w).Encode(map[string]string{
				"accessToken":  "new-access",
				"refreshToken": "new-refresh",
			})
		}))
		defer server.Close()

		client := newTestClient(t, server.URL, nil)
		pair, err := client.RefreshToken(context.Background(), "old-refresh")
		require.NoError(t, err)
		require.Equal(t, "new-access", pair.AccessToken)
		require.NotNil(t, pair.RefreshToken)
		require.Equal(t, "new-refresh", *pair.RefreshToken)
	})

	t.Run("missing access token is an error", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_ = json.NewEncoder(w).Encode(map[string]string{})
		}))
		defer server.Close()

		client := newTestClient(t, server.URL, nil)
		_, err := client.RefreshToken(context.Background(), "old-refresh")
		require.Error(t, err)
	})
}

func TestListClientsPagination(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "2", r.URL.Query().Get("page"))
		require.Equal(t, "10", r.URL.Query().Get("pageSize"))
		_ = json.NewEncoder(w).Encode(map[string]any{
			"items":    []map[string]any{{"id": "client-1", "name": "Acme", "riskLevel": "high", "kycStatus": "pending"}},
			"total":    21,
			"page":     2,
			"pageSize": 10,
		})
	}))
	defer server.Close()

	client := newTestClient(t, server.URL, &fakeAuthority{token: "tok"})
	page, err := client.ListClients(context.Background(), 2, 10)
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	require.Equal(t, "Acme", page.Items[0].Name)
	require.Equal(t, 21, page.Total)
}
