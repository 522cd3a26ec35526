package main

import (
	"context"
	"encoding/json"
	"flag"
	"io"

	"notedeck/internal/types"
)

type NotesCommand struct {
	stdout io.Writer
	stderr io.Writer
	newEnv envFactory
}

func NewNotesCommand(stdout, stderr io.Writer, newEnv envFactory) *NotesCommand {
	return &NotesCommand{
		stdout: stdout,
		stderr: stderr,
		newEnv: newEnv,
	}
}

func (c *NotesCommand) Run(args []string) error {
	fs := flag.NewFlagSet("notes", flag.ContinueOnError)
	fs.SetOutput(c.stderr)
	var query types.NoteQuery
	fs.StringVar(&query.Search, "search", "", "free-text search")
	fs.StringVar(&query.Subject, "subject", "", "subject filter")
	fs.StringVar(&query.Course, "course", "", "course filter")
	fs.StringVar(&query.Semester, "semester", "", "semester filter")
	fs.StringVar(&query.College, "college", "", "college filter")
	asJSON := fs.Bool("json", false, "print notes as JSON")
	if err := fs.Parse(args); err != nil {
		return err
	}

	env, err := c.newEnv(envModeCLI)
	if err != nil {
		return err
	}
	defer env.Close()

	list, err := env.client.ListNotes(context.Background(), query)
	if err != nil {
		return err
	}
	if *asJSON {
		return writeJSON(c.stdout, list)
	}
	printNotes(c.stdout, list, false)
	return nil
}

type ShowCommand struct {
	stdout io.Writer
	stderr io.Writer
	newEnv envFactory
}

func NewShowCommand(stdout, stderr io.Writer, newEnv envFactory) *ShowCommand {
	return &ShowCommand{
		stdout: stdout,
		stderr: stderr,
		newEnv: newEnv,
	}
}

func (c *ShowCommand) Run(args []string) error {
	fs := flag.NewFlagSet("show", flag.ContinueOnError)
	fs.SetOutput(c.stderr)
	asJSON := fs.Bool("json", false, "print the note as JSON")
	if err := fs.Parse(args); err != nil {
		return err
	}
	id, err := requireArg(fs.Args(), "note id")
	if err != nil {
		return err
	}

	env, err := c.newEnv(envModeCLI)
	if err != nil {
		return err
	}
	defer env.Close()

	note, err := env.client.GetNote(context.Background(), id)
	if err != nil {
		return err
	}
	if *asJSON {
		return writeJSON(c.stdout, note)
	}
	printNote(c.stdout, note)
	return nil
}

func writeJSON(output io.Writer, value any) error {
	encoder := json.NewEncoder(output)
	encoder.SetIndent("", "  ")
	return encoder.Encode(value)
}
