package main

import (
	"flag"
	"io"

	"notedeck/internal/app"
	"notedeck/internal/logging"
	"notedeck/internal/session"
)

type uiRunner func(api app.API, store *session.Store, opts ...app.Option) error

type UICommand struct {
	stderr  io.Writer
	newEnv  envFactory
	runUI   uiRunner
	version string
}

func NewUICommand(stderr io.Writer, newEnv envFactory, runUI uiRunner, version string) *UICommand {
	return &UICommand{
		stderr:  stderr,
		newEnv:  newEnv,
		runUI:   runUI,
		version: version,
	}
}

func (c *UICommand) Run(args []string) error {
	fs := flag.NewFlagSet("ui", flag.ContinueOnError)
	fs.SetOutput(c.stderr)
	apiURL := fs.String("api", "", "override the backend base url")
	if err := fs.Parse(args); err != nil {
		return err
	}

	env, err := c.newEnv(envModeUI)
	if err != nil {
		return err
	}
	defer env.Close()
	if *apiURL != "" {
		env.cfg.API.BaseURL = *apiURL
		if err := env.rebuildClient(); err != nil {
			return err
		}
	}

	env.logger.Info("ui starting",
		logging.F("version", c.version),
		logging.F("api", env.client.BaseURL()),
		logging.F("credentials", env.client.CredentialPolicy()),
	)
	opts := []app.Option{app.WithConfig(env.cfg), app.WithLogger(env.logger)}
	if env.google != nil {
		opts = append(opts, app.WithGoogle(env.google))
	}
	return c.runUI(app.NewClientAPI(env.client), env.session, opts...)
}
