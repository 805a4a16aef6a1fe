package session

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/veridocs/go-kyc-console/internal/config"
	"github.com/veridocs/go-kyc-console/internal/poll"
)

// NotificationAPI is the slice of the console API the watcher consumes.
type NotificationAPI interface {
	UnreadNotifications(ctx context.Context) (int, error)
}

// NotificationWatcher polls the unread notification count on a fixed period
// while the session is authenticated. Like the refresh loop it has an
// explicit start/stop lifecycle; errors are logged and retried on the next
// tick rather than surfaced.
type NotificationWatcher struct {
	sess     *Manager
	api      NotificationAPI
	onCount  func(count int)
	interval time.Duration
	log      zerolog.Logger
	runner   *poll.Runner
}

// WatcherOption defines a function type to modify the NotificationWatcher.
type WatcherOption func(*NotificationWatcher)

// WithPollInterval overrides the polling period.
func WithPollInterval(interval time.Duration) WatcherOption {
	return func(w *NotificationWatcher) {
		w.interval = interval
	}
}

// WithWatcherLogger sets the watcher logger.
func WithWatcherLogger(log zerolog.Logger) WatcherOption {
	return func(w *NotificationWatcher) {
		w.log = log
	}
}

// NewNotificationWatcher creates a watcher that reports each fetched count
// through onCount.
func NewNotificationWatcher(sess *Manager, notificationAPI NotificationAPI, onCount func(count int), options ...WatcherOption) *NotificationWatcher {
	watcher := &NotificationWatcher{
		sess:     sess,
		api:      notificationAPI,
		onCount:  onCount,
		interval: config.Session{}.GetNotificationPollInterval(),
		log:      zerolog.Nop(),
	}
	for _, opt := range options {
		opt(watcher)
	}
	watcher.runner = poll.New(watcher.log)
	return watcher
}

// Start begins polling. Ticks while anonymous are skipped, not errors: the
// watcher may outlive a logout and pick up again after the next login.
func (w *NotificationWatcher) Start() {
	w.runner.Start(w.interval, func(ctx context.Context) {
		if w.sess.State() != StateAuthenticated {
			return
		}
		count, err := w.api.UnreadNotifications(ctx)
		if err != nil {
			w.log.Debug().Err(err).Msg("notification poll failed")
			return
		}
		w.onCount(count)
	})
}

// Stop halts polling and waits for an in-flight fetch to finish. Idempotent.
func (w *NotificationWatcher) Stop() {
	w.runner.Stop()
}
