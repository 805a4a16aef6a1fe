// Package api is the console's only boundary to the remote KYC backend. The
// Client attaches the session's bearer token to every outgoing request,
// intercepts 401 responses, and drives the refresh-then-retry protocol.
// Response shapes for non-auth resources are the backend's business; they
// pass through here as typed payloads with no interpretation.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	apperrors "github.com/veridocs/go-kyc-console/internal/errors"
)

// Authority is the session-side contract the Client needs: the current bearer
// token, a way to rotate it after an unauthorized response, and a way to tear
// the session down when rotation cannot help. RefreshSession implementations
// must coalesce concurrent calls so a timer-driven refresh and a 401-driven
// refresh never race.
type Authority interface {
	AccessToken() string
	RefreshSession(ctx context.Context) error
	ForceLogout()
}

// StatusError is returned for any non-2xx response that is not handled by the
// 401 retry protocol. Feature code inspects the code and handles it locally.
type StatusError struct {
	StatusCode int
	Message    string
}

func (e *StatusError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("api: unexpected status %d", e.StatusCode)
	}
	return fmt.Sprintf("api: status %d: %s", e.StatusCode, e.Message)
}

// IsStatus reports whether err is a StatusError with the given code.
func IsStatus(err error, code int) bool {
	var statusErr *StatusError
	return errors.As(err, &statusErr) && statusErr.StatusCode == code
}

// Client is a JSON-over-HTTP client for the console API.
type Client struct {
	baseURL    string
	httpClient *http.Client
	log        zerolog.Logger
	authority  Authority
}

// ClientOption defines a function type to modify the Client instance.
type ClientOption func(*Client)

// WithHTTPClient overrides the underlying HTTP client (primarily for testing).
func WithHTTPClient(httpClient *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

// WithTimeout sets the per-request timeout on the underlying HTTP client.
func WithTimeout(timeout time.Duration) ClientOption {
	return func(c *Client) {
		c.httpClient.Timeout = timeout
	}
}

// WithLogger sets the logger used for request tracing.
func WithLogger(log zerolog.Logger) ClientOption {
	return func(c *Client) {
		c.log = log
	}
}

// NewClient creates a Client for the given API origin.
func NewClient(baseURL string, options ...ClientOption) (*Client, error) {
	if strings.TrimSpace(baseURL) == "" {
		return nil, errors.New("[NewClient] baseURL is required")
	}
	client := &Client{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		httpClient: &http.Client{Timeout: 30 * time.Second},
		log:        zerolog.Nop(),
	}
	for _, opt := range options {
		opt(client)
	}
	return client, nil
}

// Bind attaches the session authority. The session and the Client reference
// each other (the session logs in through the Client, the Client refreshes
// through the session), so the authority is bound after construction, during
// application composition, before any guarded call is made.
func (c *Client) Bind(authority Authority) {
	c.authority = authority
}

// do performs one JSON request against the API. When the request carried a
// bearer token and came back 401, the session is refreshed exactly once and
// the request replayed with the new token; a second 401 tears the session
// down and propagates a session-expired failure. Every other non-2xx status
// passes through as a *StatusError for the caller to handle.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, body any, out any) error {
	var payload []byte
	if body != nil {
		var err error
		payload, err = json.Marshal(body)
		if err != nil {
			return errors.Wrap(err, "[Client.do] marshal request body")
		}
	}

	retried := false
	for {
		token := ""
		if c.authority != nil {
			token = c.authority.AccessToken()
		}

		resp, err := c.send(ctx, method, path, query, payload, token)
		if err != nil {
			return err
		}

		if resp.StatusCode == http.StatusUnauthorized && token != "" {
			drain(resp)
			if retried {
				c.log.Warn().Str("path", path).Msg("request unauthorized after refresh, forcing logout")
				c.authority.ForceLogout()
				return errors.Wrap(apperrors.ErrSessionExpired, "[Client.do] unauthorized after retry")
			}
			retried = true
			if err := c.authority.RefreshSession(ctx); err != nil {
				// Refresh failure already tore the session down.
				return errors.Wrap(apperrors.ErrSessionExpired, "[Client.do] refresh after unauthorized")
			}
			continue
		}

		return decode(resp, out)
	}
}

// doUnguarded performs a single request outside the retry protocol. The auth
// endpoints use it: a 401 from /auth/login or /auth/refresh-token is a
// definitive answer, and routing it through the refresh-then-retry path would
// re-enter the refresh guard. The bearer token is passed explicitly rather
// than resolved through the authority - by the time logout reaches the wire
// the session has already been torn down locally.
func (c *Client) doUnguarded(ctx context.Context, method, path string, body any, out any, token string) error {
	var payload []byte
	if body != nil {
		var err error
		payload, err = json.Marshal(body)
		if err != nil {
			return errors.Wrap(err, "[Client.doUnguarded] marshal request body")
		}
	}
	resp, err := c.send(ctx, method, path, nil, payload, token)
	if err != nil {
		return err
	}
	return decode(resp, out)
}

func (c *Client) send(ctx context.Context, method, path string, query url.Values, payload []byte, token string) (*http.Response, error) {
	endpoint := c.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	var body io.Reader
	if payload != nil {
		body = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, endpoint, body)
	if err != nil {
		return nil, errors.Wrap(err, "[Client.send] http.NewRequestWithContext")
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-Id", uuid.New().String())
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	c.log.Debug().Str("method", method).Str("path", path).Msg("api request")
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, errors.Wrap(err, "[Client.send] httpClient.Do")
	}
	return resp, nil
}

func decode(resp *http.Response, out any) error {
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &StatusError{StatusCode: resp.StatusCode, Message: readErrorMessage(resp.Body)}
	}
	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return errors.Wrap(err, "[decode] invalid response body")
	}
	return nil
}

func readErrorMessage(body io.Reader) string {
	raw, _ := io.ReadAll(io.LimitReader(body, 512))
	var payload struct {
		Error   string `json:"error"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(raw, &payload); err == nil {
		if payload.Error != "" {
			return payload.Error
		}
		if payload.Message != "" {
			return payload.Message
		}
	}
	return strings.TrimSpace(string(raw))
}

func drain(resp *http.Response) {
	_, _ = io.Copy(io.Discard, resp.Body)
	_ = resp.Body.Close()
}
