package cmd

import (
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"github.com/veridocs/go-kyc-console/api"
	"github.com/veridocs/go-kyc-console/credentials"
	"github.com/veridocs/go-kyc-console/credentials/boltstore"
	"github.com/veridocs/go-kyc-console/credentials/memstore"
	"github.com/veridocs/go-kyc-console/internal/config"
	"github.com/veridocs/go-kyc-console/session"
)

const credentialsFile = "credentials.db"

// app wires the session core together: config, API client, credential store
// and the session manager. One app exists per invocation.
type app struct {
	cfg    config.Config
	log    zerolog.Logger
	client *api.Client
	sess   *session.Manager

	closeStore func() error
}

func newApp() (*app, error) {
	cfg := config.New()
	log := newLogger()

	client, err := api.NewClient(cfg.GetAPIBaseURL(),
		api.WithTimeout(cfg.GetRequestTimeout()),
		api.WithLogger(log),
	)
	if err != nil {
		return nil, errors.Wrap(err, "[newApp] api.NewClient")
	}

	store, closeStore := openStore(cfg, log)

	navigator := session.NavigatorFunc(func(target string) {
		log.Debug().Str("route", target).Msg("console navigation")
	})

	sess, err := session.NewManager(
		session.Deps{Store: store, API: client, Navigator: navigator},
		session.WithLogger(log),
	)
	if err != nil {
		return nil, errors.Wrap(err, "[newApp] session.NewManager")
	}

	client.Bind(sess)
	sess.Bootstrap()

	return &app{
		cfg:        cfg,
		log:        log,
		client:     client,
		sess:       sess,
		closeStore: closeStore,
	}, nil
}

func (a *app) close() {
	a.sess.Close()
	if a.closeStore != nil {
		if err := a.closeStore(); err != nil {
			a.log.Debug().Err(err).Msg("closing credential store")
		}
	}
}

// openStore opens the durable credential store, degrading to an in-memory
// one when the data folder cannot be used. The session then lives only for
// this invocation, which beats not running at all.
func openStore(cfg config.Config, log zerolog.Logger) (credentials.Store, func() error) {
	folder := cfg.GetDataFolder()
	if err := os.MkdirAll(folder, 0700); err != nil {
		log.Warn().Err(err).Str("folder", folder).Msg("data folder unavailable, session will not persist")
		return memstore.New(), nil
	}
	store, err := boltstore.Open(filepath.Join(folder, credentialsFile))
	if err != nil {
		log.Warn().Err(err).Msg("credential store unavailable, session will not persist")
		return memstore.New(), nil
	}
	return store, store.Close
}

func newLogger() zerolog.Logger {
	level := zerolog.WarnLevel
	if config.GetEnv("KYC_CONSOLE_LOG_LEVEL", "") != "" {
		if parsed, err := zerolog.ParseLevel(config.GetEnv("KYC_CONSOLE_LOG_LEVEL", "")); err == nil {
			level = parsed
		}
	}
	writer := zerolog.ConsoleWriter{Out: os.Stderr}
	return zerolog.New(writer).Level(level).With().Timestamp().Logger()
}
