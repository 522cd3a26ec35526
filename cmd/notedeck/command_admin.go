package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"strings"

	"notedeck/internal/notes"
	"notedeck/internal/types"
)

type AdminCommand struct {
	stdout io.Writer
	stderr io.Writer
	newEnv envFactory
}

func NewAdminCommand(stdout, stderr io.Writer, newEnv envFactory) *AdminCommand {
	return &AdminCommand{
		stdout: stdout,
		stderr: stderr,
		newEnv: newEnv,
	}
}

func (c *AdminCommand) Run(args []string) error {
	if len(args) == 0 {
		return usagef("admin requires a subcommand: list|approve|reject|delete")
	}
	switch args[0] {
	case "list":
		return c.runList(args[1:])
	case "approve":
		return c.runReview("approve", args[1:], true)
	case "reject":
		return c.runReview("reject", args[1:], false)
	case "delete":
		return c.runDelete(args[1:])
	default:
		return usagef("unknown admin subcommand: %s", args[0])
	}
}

func (c *AdminCommand) runList(args []string) error {
	fs := flag.NewFlagSet("admin list", flag.ContinueOnError)
	fs.SetOutput(c.stderr)
	search := fs.String("search", "", "match title, subject or uploader")
	college := fs.String("college", "", "exact college name")
	status := fs.String("status", string(types.ReviewStatusAll), "all|approved|pending")
	sortKey := fs.String("sort", string(notes.SortCreated), "title|subject|collegeName|approved|downloadCount|createdAt")
	asc := fs.Bool("asc", false, "sort ascending")
	if err := fs.Parse(args); err != nil {
		return err
	}
	reviewStatus, err := parseReviewStatus(*status)
	if err != nil {
		return err
	}

	env, err := c.adminEnv()
	if err != nil {
		return err
	}
	defer env.Close()

	corpus, err := env.client.AdminListNotes(context.Background())
	if err != nil {
		return err
	}
	rows := notes.AdminView(corpus,
		notes.AdminFilter{Search: *search, College: *college, Status: reviewStatus},
		notes.SortState{Key: notes.ParseSortKey(*sortKey), Desc: !*asc},
	)
	counts := notes.CountReviews(corpus)
	fmt.Fprintf(c.stdout, "%d notes • %d approved • %d pending\n", counts.Total, counts.Approved, counts.Pending)
	printNotes(c.stdout, rows, true)
	return nil
}

func (c *AdminCommand) runReview(name string, args []string, approved bool) error {
	fs := flag.NewFlagSet("admin "+name, flag.ContinueOnError)
	fs.SetOutput(c.stderr)
	if err := fs.Parse(args); err != nil {
		return err
	}
	id, err := requireArg(fs.Args(), "note id")
	if err != nil {
		return err
	}

	env, err := c.adminEnv()
	if err != nil {
		return err
	}
	defer env.Close()

	note, err := env.client.ReviewNote(context.Background(), id, approved)
	if err != nil {
		return err
	}
	fmt.Fprintf(c.stdout, "%s\t%s\n", note.ID, reviewStatus(note))
	return nil
}

func (c *AdminCommand) runDelete(args []string) error {
	fs := flag.NewFlagSet("admin delete", flag.ContinueOnError)
	fs.SetOutput(c.stderr)
	if err := fs.Parse(args); err != nil {
		return err
	}
	id, err := requireArg(fs.Args(), "note id")
	if err != nil {
		return err
	}

	env, err := c.adminEnv()
	if err != nil {
		return err
	}
	defer env.Close()

	if err := env.client.AdminDeleteNote(context.Background(), id); err != nil {
		return err
	}
	fmt.Fprintf(c.stdout, "%s\tdeleted\n", id)
	return nil
}

func (c *AdminCommand) adminEnv() (*commandEnv, error) {
	env, err := c.newEnv(envModeCLI)
	if err != nil {
		return nil, err
	}
	state, err := env.requireSignIn()
	if err == nil && !state.IsAdmin() {
		err = errAdminOnly
	}
	if err != nil {
		_ = env.Close()
		return nil, err
	}
	return env, nil
}

func parseReviewStatus(raw string) (types.ReviewStatus, error) {
	switch status := types.ReviewStatus(strings.ToLower(strings.TrimSpace(raw))); status {
	case "", types.ReviewStatusAll:
		return types.ReviewStatusAll, nil
	case types.ReviewStatusApproved, types.ReviewStatusPending:
		return status, nil
	default:
		return "", usagef("invalid status %q (use all|approved|pending)", raw)
	}
}
