package main

import (
	"errors"
	"flag"
	"fmt"
	"os"

	"notedeck/internal/app/sanitizer"
)

const usageText = `notedeck is a terminal client for the notes-sharing platform.

Usage:
  notedeck <command> [flags]

Commands:
  ui        run terminal UI
  notes     list approved notes
  show      show one note with its comments
  signin    sign in with email/password or Google
  signup    create an account
  signout   end the current session
  whoami    print the signed-in user
  admin     list, approve, reject or delete notes (admins only)
  config    print configuration (effective or defaults)
  version   print the build version
  help      show help

Flags:
  -h, --help      show help
  -v, --version   print the build version

Examples:
  notedeck notes --subject "Operating Systems" --semester 5
  notedeck show 65f1c0ffee
  notedeck signin --email ana@example.com --password secret1
  notedeck signin --google
  notedeck admin list --status pending
  notedeck admin approve 65f1c0ffee
  notedeck config --format json
`

func main() {
	os.Exit(run(os.Args[1:], defaultCommandWiring(os.Stdout, os.Stderr)))
}

// run returns the process exit code: 0 on success, 1 when a command fails
// and 2 for usage errors.
func run(args []string, wiring commandWiring) int {
	if len(args) == 0 {
		fmt.Fprint(wiring.stderr, usageText)
		return 0
	}
	name, rest := args[0], args[1:]
	switch name {
	case "-h", "--help", "help":
		fmt.Fprint(wiring.stdout, usageText)
		return 0
	case "-v", "--version", "version":
		fmt.Fprintf(wiring.stdout, "notedeck %s\n", wiring.version)
		return 0
	}
	runner, ok := buildCommands(wiring)[name]
	if !ok {
		fmt.Fprintf(wiring.stderr, "unknown command: %s\n\n%s", name, usageText)
		return 2
	}
	err := runner.Run(rest)
	switch {
	case err == nil, errors.Is(err, flag.ErrHelp):
		return 0
	case isUsageError(err):
		fmt.Fprintf(wiring.stderr, "%s: %v\n", name, err)
		return 2
	default:
		fmt.Fprintf(wiring.stderr, "%s error: %s\n", name, sanitizer.Line(err.Error()))
		return 1
	}
}
