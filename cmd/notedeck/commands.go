package main

import (
	"io"
	"os"

	"notedeck/internal/app"
	"notedeck/internal/config"
)

type commandRunner interface {
	Run(args []string) error
}

type commandWiring struct {
	stdout  io.Writer
	stderr  io.Writer
	newEnv  envFactory
	runUI   uiRunner
	version string
}

func defaultCommandWiring(stdout, stderr io.Writer) commandWiring {
	if stdout == nil {
		stdout = os.Stdout
	}
	if stderr == nil {
		stderr = os.Stderr
	}
	return commandWiring{
		stdout:  stdout,
		stderr:  stderr,
		newEnv:  newCommandEnv(stderr),
		runUI:   app.Run,
		version: buildVersion(),
	}
}

func buildCommands(wiring commandWiring) map[string]commandRunner {
	return map[string]commandRunner{
		"ui":      NewUICommand(wiring.stderr, wiring.newEnv, wiring.runUI, wiring.version),
		"notes":   NewNotesCommand(wiring.stdout, wiring.stderr, wiring.newEnv),
		"show":    NewShowCommand(wiring.stdout, wiring.stderr, wiring.newEnv),
		"signin":  NewSignInCommand(wiring.stdout, wiring.stderr, wiring.newEnv),
		"signup":  NewSignUpCommand(wiring.stdout, wiring.stderr, wiring.newEnv),
		"signout": NewSignOutCommand(wiring.stdout, wiring.stderr, wiring.newEnv),
		"whoami":  NewWhoAmICommand(wiring.stdout, wiring.stderr, wiring.newEnv),
		"admin":   NewAdminCommand(wiring.stdout, wiring.stderr, wiring.newEnv),
		"config":  NewConfigCommand(wiring.stdout, wiring.stderr, config.Load),
	}
}
