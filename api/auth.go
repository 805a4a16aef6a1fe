package api

import (
	"context"
	"net/http"

	"github.com/pkg/errors"
)

// LoginResult is the payload of a successful POST /auth/login. The backend
// does not echo the username; the session fills it in from the submitted
// credentials.
type LoginResult struct {
	UserID       string   `json:"userId"`
	Name         string   `json:"name"`
	Email        string   `json:"email"`
	Roles        []string `json:"roles"`
	Permissions  []string `json:"permissions"`
	AccessToken  string   `json:"accessToken"`
	RefreshToken string   `json:"refreshToken"`
}

// TokenPair is the payload of a successful POST /auth/refresh-token. The
// refresh token is only present when the backend rotated it.
type TokenPair struct {
	AccessToken  string  `json:"accessToken"`
	RefreshToken *string `json:"refreshToken,omitempty"`
}

// Login exchanges credentials for a session. Any non-2xx status is a login
// failure; interpreting the cause is the session's job, not the caller's.
func (c *Client) Login(ctx context.Context, username, password string) (*LoginResult, error) {
	body := map[string]string{"username": username, "password": password}
	var result LoginResult
	if err := c.doUnguarded(ctx, http.MethodPost, "/auth/login", body, &result, ""); err != nil {
		return nil, errors.Wrap(err, "[Client.Login] POST /auth/login")
	}
	return &result, nil
}

// RefreshToken exchanges the refresh token for a fresh access token. The
// refresh token travels only to this endpoint, never on ordinary requests.
func (c *Client) RefreshToken(ctx context.Context, refreshToken string) (*TokenPair, error) {
	body := map[string]string{"refreshToken": refreshToken}
	var pair TokenPair
	if err := c.doUnguarded(ctx, http.MethodPost, "/auth/refresh-token", body, &pair, ""); err != nil {
		return nil, errors.Wrap(err, "[Client.RefreshToken] POST /auth/refresh-token")
	}
	if pair.AccessToken == "" {
		return nil, errors.New("[Client.RefreshToken] response missing accessToken")
	}
	return &pair, nil
}

// Logout asks the backend to invalidate the given access token server-side.
// The token is a parameter, not read from the session: local cleanup runs
// first, so the session no longer holds the token by the time this call goes
// out. Best effort; the caller's cleanup does not depend on the outcome.
func (c *Client) Logout(ctx context.Context, accessToken string) error {
	if err := c.doUnguarded(ctx, http.MethodPost, "/auth/logout", nil, nil, accessToken); err != nil {
		return errors.Wrap(err, "[Client.Logout] POST /auth/logout")
	}
	return nil
}

// ChangePassword is an ordinary guarded call following the bearer convention.
func (c *Client) ChangePassword(ctx context.Context, currentPassword, newPassword string) error {
	body := map[string]string{"currentPassword": currentPassword, "newPassword": newPassword}
	if err := c.do(ctx, http.MethodPost, "/auth/change-password", nil, body, nil); err != nil {
		return errors.Wrap(err, "[Client.ChangePassword] POST /auth/change-password")
	}
	return nil
}
