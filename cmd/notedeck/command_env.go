package main

import (
	"context"
	"errors"
	"io"

	"notedeck/internal/app"
	"notedeck/internal/auth"
	"notedeck/internal/client"
	"notedeck/internal/config"
	"notedeck/internal/logging"
	"notedeck/internal/session"
	"notedeck/internal/store"
)

type envMode int

const (
	envModeCLI envMode = iota
	envModeUI
)

// commandEnv is what every command runs against: the effective config, the
// restored session and a client carrying its token.
type commandEnv struct {
	cfg     config.Config
	logger  logging.Logger
	session *session.Store
	client  *client.Client
	google  app.GoogleSignIn
	closers []func() error
}

type envFactory func(mode envMode) (*commandEnv, error)

func (e *commandEnv) Close() error {
	if e == nil {
		return nil
	}
	var errs []error
	for i := len(e.closers) - 1; i >= 0; i-- {
		if err := e.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	e.closers = nil
	return errors.Join(errs...)
}

func newCommandEnv(stderr io.Writer) envFactory {
	return func(mode envMode) (*commandEnv, error) {
		cfg, err := config.Load()
		if err != nil {
			return nil, err
		}
		env := &commandEnv{cfg: cfg}
		logger, closeLog := configureLogging(cfg, mode, stderr)
		env.logger = logger
		if closeLog != nil {
			env.closers = append(env.closers, closeLog)
		}

		repo, err := store.OpenFromConfig(cfg)
		if err != nil {
			_ = env.Close()
			return nil, err
		}
		env.closers = append(env.closers, repo.Close)
		env.session = session.NewStore(
			session.WithPersister(repo.Session()),
			session.WithLogger(logger.With(logging.F("component", "session"))),
		)
		state, err := env.session.Restore(context.Background())
		if err != nil {
			logger.Warn("restore session failed", logging.Err(err), logging.F("backend", repo.Backend()))
		}

		env.client, err = client.NewFromConfig(cfg, state.Token, logger)
		if err != nil {
			_ = env.Close()
			return nil, err
		}
		if cfg.GoogleConfigured() {
			provider, err := auth.NewGoogleProvider(cfg.Auth.GoogleClientID, cfg.Auth.GoogleClientSecret)
			if err != nil {
				logger.Warn("google sign-in unavailable", logging.Err(err))
			} else {
				env.google = provider
			}
		}
		return env, nil
	}
}

// configureLogging sends UI logs to a file in the data dir so they do not
// tear the alt screen. One-shot commands only report warnings on stderr.
func configureLogging(cfg config.Config, mode envMode, stderr io.Writer) (logging.Logger, func() error) {
	level := logging.ParseLevel(cfg.LogLevel())
	if mode != envModeUI {
		return logging.New(stderr, max(level, logging.Warn)), nil
	}
	paths, err := config.ResolvePaths()
	if err != nil {
		return logging.Nop(), nil
	}
	logger, file, err := logging.OpenFile(paths.UILog, level)
	if err != nil {
		return logging.Nop(), nil
	}
	return logger, file.Close
}

func (e *commandEnv) rebuildClient() error {
	c, err := client.NewFromConfig(e.cfg, e.session.State().Token, e.logger)
	if err != nil {
		return err
	}
	e.client = c
	return nil
}

func (e *commandEnv) requireSignIn() (session.State, error) {
	state := e.session.State()
	if !state.SignedIn() {
		return state, errNotSignedIn
	}
	return state, nil
}

var (
	errNotSignedIn = errors.New("not signed in; run notedeck signin first")
	errAdminOnly   = errors.New("admins only")
)
