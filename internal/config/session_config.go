package config

import "time"

type SessionConfig interface {
	GetDefaultRefreshInterval() time.Duration
	GetMinRefreshInterval() time.Duration
	GetNotificationPollInterval() time.Duration
}

type Session struct{}

var _ SessionConfig = Session{}

// GetDefaultRefreshInterval is the refresh cadence used when the access
// token's lifetime cannot be read from the token itself. It assumes the
// backend's default one-hour token and refreshes at an eighth of that.
func (Session) GetDefaultRefreshInterval() time.Duration {
	return 7*time.Minute + 30*time.Second
}

func (Session) GetMinRefreshInterval() time.Duration {
	return 30 * time.Second
}

func (Session) GetNotificationPollInterval() time.Duration {
	return 30 * time.Second
}
