package session

import (
	"context"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// startRefreshLoop begins proactive token renewal, replacing any running
// loop. The cadence is derived from the current token, so the loop restarts
// on every transition that may change it: login over an existing session and
// token rotation both reschedule rather than keep the old cadence.
func (m *Manager) startRefreshLoop() {
	m.mu.RLock()
	token := m.accessToken
	m.mu.RUnlock()

	m.loop.Cancel()
	interval := refreshIntervalFor(token, m.defaultRefreshInterval, m.minRefreshInterval, m.nowTime())
	m.loop.Start(interval, func(ctx context.Context) {
		if err := m.RefreshSession(ctx); err != nil {
			m.log.Debug().Err(err).Msg("scheduled refresh failed")
		}
	})
}

// refreshIntervalFor derives the refresh cadence from the access token's
// remaining lifetime: an eighth of it, which renews well before expiry. The
// token is decoded without signature verification - the console holds no
// keys and only needs the exp claim for scheduling, never for trust. Opaque
// tokens fall back to the configured default.
func refreshIntervalFor(accessToken string, fallback, min time.Duration, now time.Time) time.Duration {
	claims := jwt.RegisteredClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(accessToken, &claims); err != nil || claims.ExpiresAt == nil {
		return fallback
	}

	ttl := claims.ExpiresAt.Time.Sub(now)
	if ttl <= 0 {
		return min
	}
	interval := ttl / 8
	if interval < min {
		interval = min
	}
	return interval
}
