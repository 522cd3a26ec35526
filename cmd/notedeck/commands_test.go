package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"strings"
	"testing"
	"time"

	"golang.org/x/oauth2"

	"notedeck/internal/app"
	"notedeck/internal/auth"
	"notedeck/internal/client"
	"notedeck/internal/config"
	"notedeck/internal/logging"
	"notedeck/internal/session"
	"notedeck/internal/testutil"
	"notedeck/internal/types"
)

type envHarness struct {
	backend  *testutil.Backend
	sessions *session.Store
	google   app.GoogleSignIn
	opened   int
	closed   int
}

func newEnvHarness(t *testing.T) *envHarness {
	t.Helper()
	return &envHarness{backend: testutil.NewBackend(t), sessions: session.NewStore()}
}

func (h *envHarness) factory() envFactory {
	return func(envMode) (*commandEnv, error) {
		h.opened++
		return &commandEnv{
			cfg:     config.DefaultConfig(),
			logger:  logging.Nop(),
			session: h.sessions,
			client:  client.NewWithBaseURL(h.backend.URL(), h.sessions.State().Token),
			google:  h.google,
			closers: []func() error{func() error { h.closed++; return nil }},
		}, nil
	}
}

func (h *envHarness) signIn(t *testing.T, user *types.User) {
	t.Helper()
	token := h.backend.AddUser(*user, "secret1")
	h.sessions.Dispatch(context.Background(), session.SignInSuccess(user, token))
}

func sampleNote(id, title string) types.Note {
	return types.Note{
		ID:          id,
		Title:       title,
		SubjectName: "Operating Systems",
		CourseName:  "BTech",
		Semester:    "5",
		CollegeName: "IIT",
		CreatedAt:   time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
		Approved:    true,
	}
}

func TestBuildCommandsRegistersEveryCommand(t *testing.T) {
	commands := buildCommands(commandWiring{stdout: &bytes.Buffer{}, stderr: &bytes.Buffer{}})
	for _, name := range []string{"ui", "notes", "show", "signin", "signup", "signout", "whoami", "admin", "config"} {
		if _, ok := commands[name]; !ok {
			t.Fatalf("expected %q command to be registered", name)
		}
	}
}

func TestNotesCommandPrintsListing(t *testing.T) {
	h := newEnvHarness(t)
	h.backend.AddNote(sampleNote("n1", "Deadlocks"))
	stdout := &bytes.Buffer{}
	cmd := NewNotesCommand(stdout, &bytes.Buffer{}, h.factory())

	if err := cmd.Run([]string{"--subject", "Operating Systems"}); err != nil {
		t.Fatalf("expected notes to succeed, got err=%v", err)
	}
	out := stdout.String()
	if !strings.Contains(out, "TITLE") || !strings.Contains(out, "DOWNLOADS") {
		t.Fatalf("expected header in output, got %q", out)
	}
	if !strings.Contains(out, "n1") || !strings.Contains(out, "Deadlocks") {
		t.Fatalf("expected note row in output, got %q", out)
	}
	calls := h.backend.Calls()
	last := calls[len(calls)-1]
	values, err := url.ParseQuery(last.Query)
	if err != nil {
		t.Fatalf("parse query: %v", err)
	}
	if values.Get("subject") != "Operating Systems" {
		t.Fatalf("expected subject filter on the wire, got %v", values)
	}
	if _, ok := values["college"]; !ok {
		t.Fatalf("expected empty college parameter to be sent, got %v", values)
	}
	if h.closed != h.opened {
		t.Fatalf("expected env closed, opened=%d closed=%d", h.opened, h.closed)
	}
}

func TestNotesCommandWritesJSON(t *testing.T) {
	h := newEnvHarness(t)
	h.backend.AddNote(sampleNote("n1", "Deadlocks"))
	stdout := &bytes.Buffer{}
	cmd := NewNotesCommand(stdout, &bytes.Buffer{}, h.factory())

	if err := cmd.Run([]string{"--json"}); err != nil {
		t.Fatalf("expected notes to succeed, got err=%v", err)
	}
	var decoded []types.Note
	if err := json.Unmarshal(stdout.Bytes(), &decoded); err != nil {
		t.Fatalf("decode output: %v", err)
	}
	if len(decoded) != 1 || decoded[0].ID != "n1" {
		t.Fatalf("unexpected notes: %#v", decoded)
	}
}

func TestShowCommandPrintsComments(t *testing.T) {
	h := newEnvHarness(t)
	note := sampleNote("n1", "Deadlocks")
	note.Comments = []types.Comment{{ID: "c1", User: "u2", Username: "ben", Text: "very clear", CommentedAt: time.Now()}}
	h.backend.AddNote(note)
	stdout := &bytes.Buffer{}
	cmd := NewShowCommand(stdout, &bytes.Buffer{}, h.factory())

	if err := cmd.Run([]string{"n1"}); err != nil {
		t.Fatalf("expected show to succeed, got err=%v", err)
	}
	out := stdout.String()
	for _, want := range []string{"Deadlocks", "Sem 5", "1 comment", "ben", "very clear"} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in output, got %q", want, out)
		}
	}
}

func TestShowCommandRequiresID(t *testing.T) {
	h := newEnvHarness(t)
	cmd := NewShowCommand(&bytes.Buffer{}, &bytes.Buffer{}, h.factory())

	if err := cmd.Run(nil); err == nil {
		t.Fatalf("expected missing id error")
	}
	if h.opened != 0 {
		t.Fatalf("expected no env for invalid args")
	}
}

func TestShowCommandReportsBackendMessage(t *testing.T) {
	h := newEnvHarness(t)
	h.backend.FailNext(http.MethodGet, "/api/uploading/get/n9", http.StatusNotFound, "Note not found")
	cmd := NewShowCommand(&bytes.Buffer{}, &bytes.Buffer{}, h.factory())

	err := cmd.Run([]string{"n9"})
	if got := client.Message(err, ""); got != "Note not found" {
		t.Fatalf("expected backend message, got err=%v", err)
	}
}

func TestSignInCommandStoresSession(t *testing.T) {
	h := newEnvHarness(t)
	h.backend.AddUser(types.User{ID: "u1", Username: "ana", Email: "ana@example.com"}, "secret1")
	stdout := &bytes.Buffer{}
	cmd := NewSignInCommand(stdout, &bytes.Buffer{}, h.factory())

	if err := cmd.Run([]string{"--email", "ana@example.com", "--password", "secret1"}); err != nil {
		t.Fatalf("expected sign-in to succeed, got err=%v", err)
	}
	state := h.sessions.State()
	if state.UserID() != "u1" || state.Token == "" {
		t.Fatalf("expected signed in u1 with a token, got %#v", state)
	}
	if got := stdout.String(); got != "Signed in as ana\n" {
		t.Fatalf("unexpected stdout: %q", got)
	}
}

func TestSignInCommandFailureKeepsSignedOut(t *testing.T) {
	h := newEnvHarness(t)
	h.backend.AddUser(types.User{ID: "u1", Username: "ana", Email: "ana@example.com"}, "secret1")
	cmd := NewSignInCommand(&bytes.Buffer{}, &bytes.Buffer{}, h.factory())

	err := cmd.Run([]string{"--email", "ana@example.com", "--password", "nope"})
	if err == nil || err.Error() != "Invalid credentials" {
		t.Fatalf("expected Invalid credentials, got %v", err)
	}
	state := h.sessions.State()
	if state.SignedIn() || state.Err != "Invalid credentials" || state.Loading {
		t.Fatalf("unexpected state after failure: %#v", state)
	}
}

func TestSignInCommandValidatesBeforeSending(t *testing.T) {
	h := newEnvHarness(t)
	cmd := NewSignInCommand(&bytes.Buffer{}, &bytes.Buffer{}, h.factory())

	if err := cmd.Run([]string{"--email", "ana", "--password", "x"}); err == nil {
		t.Fatalf("expected validation error")
	}
	if n := h.backend.CallCount(http.MethodPost, "/api/auth/signin"); n != 0 {
		t.Fatalf("expected no request, got %d", n)
	}
}

type fakeGoogle struct {
	profile *auth.GoogleProfile
	err     error
}

func (f fakeGoogle) Start(context.Context) (*oauth2.DeviceAuthResponse, error) {
	return &oauth2.DeviceAuthResponse{DeviceCode: "dev", UserCode: "ABCD-EFGH", VerificationURI: "https://www.google.com/device"}, nil
}

func (f fakeGoogle) Wait(context.Context, *oauth2.DeviceAuthResponse) (*auth.GoogleProfile, error) {
	return f.profile, f.err
}

func TestSignInCommandGooglePrintsDeviceCode(t *testing.T) {
	h := newEnvHarness(t)
	h.google = fakeGoogle{profile: &auth.GoogleProfile{Name: "Dana", Email: "dana@example.com"}}
	stdout := &bytes.Buffer{}
	cmd := NewSignInCommand(stdout, &bytes.Buffer{}, h.factory())

	if err := cmd.Run([]string{"--google"}); err != nil {
		t.Fatalf("expected google sign-in to succeed, got err=%v", err)
	}
	out := stdout.String()
	if !strings.Contains(out, "ABCD-EFGH") || !strings.Contains(out, "https://www.google.com/device") {
		t.Fatalf("expected device instructions, got %q", out)
	}
	if state := h.sessions.State(); state.CurrentUser == nil || state.CurrentUser.Email != "dana@example.com" {
		t.Fatalf("expected dana signed in, got %#v", state.CurrentUser)
	}
}

func TestSignInCommandGoogleWithoutClientFails(t *testing.T) {
	h := newEnvHarness(t)
	cmd := NewSignInCommand(&bytes.Buffer{}, &bytes.Buffer{}, h.factory())

	if err := cmd.Run([]string{"--google"}); !errors.Is(err, auth.ErrGoogleNotConfigured) {
		t.Fatalf("expected not configured error, got %v", err)
	}
}

func TestSignUpCommandCreatesAccount(t *testing.T) {
	h := newEnvHarness(t)
	stdout := &bytes.Buffer{}
	cmd := NewSignUpCommand(stdout, &bytes.Buffer{}, h.factory())

	if err := cmd.Run([]string{"--username", "carla", "--email", "carla@example.com", "--password", "secret1"}); err != nil {
		t.Fatalf("expected sign-up to succeed, got err=%v", err)
	}
	if state := h.sessions.State(); state.CurrentUser == nil || state.CurrentUser.Username != "carla" {
		t.Fatalf("expected carla signed in, got %#v", state.CurrentUser)
	}
}

func TestSignOutCommandClearsSession(t *testing.T) {
	h := newEnvHarness(t)
	h.signIn(t, &types.User{ID: "u1", Username: "ana", Email: "ana@example.com"})
	stdout := &bytes.Buffer{}
	cmd := NewSignOutCommand(stdout, &bytes.Buffer{}, h.factory())

	if err := cmd.Run(nil); err != nil {
		t.Fatalf("expected sign-out to succeed, got err=%v", err)
	}
	if h.sessions.State().SignedIn() || h.sessions.State().Token != "" {
		t.Fatalf("expected session cleared")
	}
	if n := h.backend.CallCount(http.MethodGet, "/api/auth/signout"); n != 1 {
		t.Fatalf("expected one sign-out request, got %d", n)
	}
	if got := stdout.String(); got != "Signed out\n" {
		t.Fatalf("unexpected stdout: %q", got)
	}
}

func TestSignOutCommandFailureKeepsSession(t *testing.T) {
	h := newEnvHarness(t)
	h.signIn(t, &types.User{ID: "u1", Username: "ana", Email: "ana@example.com"})
	h.backend.FailNext(http.MethodGet, "/api/auth/signout", http.StatusInternalServerError, "session store down")
	stdout := &bytes.Buffer{}
	cmd := NewSignOutCommand(stdout, &bytes.Buffer{}, h.factory())

	err := cmd.Run(nil)
	if got := client.Message(err, ""); got != "session store down" {
		t.Fatalf("expected backend message, got err=%v", err)
	}
	state := h.sessions.State()
	if !state.SignedIn() || state.Err != "session store down" {
		t.Fatalf("expected session kept with error, got %#v", state)
	}
	if stdout.Len() != 0 {
		t.Fatalf("expected nothing on stdout, got %q", stdout.String())
	}
}

func TestWhoAmICommand(t *testing.T) {
	h := newEnvHarness(t)
	cmd := NewWhoAmICommand(&bytes.Buffer{}, &bytes.Buffer{}, h.factory())
	if err := cmd.Run(nil); !errors.Is(err, errNotSignedIn) {
		t.Fatalf("expected not signed in error, got %v", err)
	}

	h.signIn(t, &types.User{ID: "a1", Username: "root", Email: "root@example.com", Role: types.RoleAdmin})
	stdout := &bytes.Buffer{}
	cmd = NewWhoAmICommand(stdout, &bytes.Buffer{}, h.factory())
	if err := cmd.Run(nil); err != nil {
		t.Fatalf("expected whoami to succeed, got err=%v", err)
	}
	if got := stdout.String(); got != "root <root@example.com>\nrole: admin\n" {
		t.Fatalf("unexpected stdout: %q", got)
	}
}

func TestWhoAmIStripsControlSequences(t *testing.T) {
	h := newEnvHarness(t)
	h.signIn(t, &types.User{ID: "u1", Username: "eve\x1b[2J", Email: "eve@example.com\x1b]52;c;aGk=\x07"})
	stdout := &bytes.Buffer{}
	cmd := NewWhoAmICommand(stdout, &bytes.Buffer{}, h.factory())

	if err := cmd.Run(nil); err != nil {
		t.Fatalf("expected whoami to succeed, got err=%v", err)
	}
	if got := stdout.String(); got != "eve <eve@example.com>\n" {
		t.Fatalf("unexpected stdout: %q", got)
	}
}

func TestShowCommandStripsFileURL(t *testing.T) {
	h := newEnvHarness(t)
	note := sampleNote("n1", "Deadlocks")
	note.FileURL = "https://files.example.com/n1\x1b]52;c;aGk=\x07.pdf"
	h.backend.AddNote(note)
	stdout := &bytes.Buffer{}
	cmd := NewShowCommand(stdout, &bytes.Buffer{}, h.factory())

	if err := cmd.Run([]string{"n1"}); err != nil {
		t.Fatalf("expected show to succeed, got err=%v", err)
	}
	if out := stdout.String(); strings.Contains(out, "\x1b") || !strings.Contains(out, "file: https://files.example.com/n1.pdf") {
		t.Fatalf("expected sanitized file url, got %q", out)
	}
}

func adminHarness(t *testing.T) *envHarness {
	t.Helper()
	h := newEnvHarness(t)
	h.signIn(t, &types.User{ID: "a1", Username: "root", Email: "root@example.com", Role: types.RoleAdmin})
	approved := sampleNote("n1", "Deadlocks")
	approved.Uploader = &types.Uploader{ID: "u1", Username: "ana"}
	pending := sampleNote("n2", "Paging")
	pending.Approved = false
	pending.CreatedAt = approved.CreatedAt.Add(24 * time.Hour)
	pending.Uploader = &types.Uploader{ID: "u2", Username: "ben"}
	h.backend.AddNote(approved)
	h.backend.AddNote(pending)
	return h
}

func TestAdminCommandRejectsNonAdmin(t *testing.T) {
	h := newEnvHarness(t)
	h.signIn(t, &types.User{ID: "u1", Username: "ana", Email: "ana@example.com"})
	cmd := NewAdminCommand(&bytes.Buffer{}, &bytes.Buffer{}, h.factory())

	if err := cmd.Run([]string{"list"}); !errors.Is(err, errAdminOnly) {
		t.Fatalf("expected admins only error, got %v", err)
	}
	if n := h.backend.CallCount(http.MethodGet, "/api/admin/notes"); n != 0 {
		t.Fatalf("expected no admin request, got %d", n)
	}
	if h.closed != h.opened {
		t.Fatalf("expected env closed on rejection")
	}
}

func TestAdminListFiltersPending(t *testing.T) {
	h := adminHarness(t)
	stdout := &bytes.Buffer{}
	cmd := NewAdminCommand(stdout, &bytes.Buffer{}, h.factory())

	if err := cmd.Run([]string{"list", "--status", "pending"}); err != nil {
		t.Fatalf("expected admin list to succeed, got err=%v", err)
	}
	out := stdout.String()
	if !strings.Contains(out, "2 notes • 1 approved • 1 pending") {
		t.Fatalf("expected counts over the whole corpus, got %q", out)
	}
	if !strings.Contains(out, "Paging") || strings.Contains(out, "Deadlocks") {
		t.Fatalf("expected only the pending note, got %q", out)
	}
	if !strings.Contains(out, "ben") {
		t.Fatalf("expected uploader column, got %q", out)
	}
}

func TestAdminListRejectsUnknownStatus(t *testing.T) {
	h := adminHarness(t)
	cmd := NewAdminCommand(&bytes.Buffer{}, &bytes.Buffer{}, h.factory())

	if err := cmd.Run([]string{"list", "--status", "maybe"}); err == nil {
		t.Fatalf("expected invalid status error")
	}
}

func TestAdminApproveAndDelete(t *testing.T) {
	h := adminHarness(t)
	stdout := &bytes.Buffer{}
	cmd := NewAdminCommand(stdout, &bytes.Buffer{}, h.factory())

	if err := cmd.Run([]string{"approve", "n2"}); err != nil {
		t.Fatalf("expected approve to succeed, got err=%v", err)
	}
	if !h.backend.Note("n2").Approved {
		t.Fatalf("expected n2 approved on the backend")
	}
	if got := stdout.String(); got != "n2\tapproved\n" {
		t.Fatalf("unexpected stdout: %q", got)
	}

	if err := cmd.Run([]string{"delete", "n1"}); err != nil {
		t.Fatalf("expected delete to succeed, got err=%v", err)
	}
	if n := h.backend.CallCount(http.MethodDelete, "/api/admin/notes/n1"); n != 1 {
		t.Fatalf("expected one delete request, got %d", n)
	}
}

func TestAdminCommandRequiresSubcommand(t *testing.T) {
	cmd := NewAdminCommand(&bytes.Buffer{}, &bytes.Buffer{}, newEnvHarness(t).factory())
	if err := cmd.Run(nil); err == nil {
		t.Fatalf("expected missing subcommand error")
	}
	if err := cmd.Run([]string{"purge"}); err == nil {
		t.Fatalf("expected unknown subcommand error")
	}
}

func TestConfigCommandDefaultTOML(t *testing.T) {
	stdout := &bytes.Buffer{}
	cmd := NewConfigCommand(stdout, &bytes.Buffer{}, func() (config.Config, error) {
		t.Fatalf("expected defaults without loading")
		return config.Config{}, nil
	})

	if err := cmd.Run([]string{"--default"}); err != nil {
		t.Fatalf("expected config to succeed, got err=%v", err)
	}
	out := stdout.String()
	if !strings.Contains(out, "[api]") || !strings.Contains(out, "base_url") || !strings.Contains(out, "http://localhost:3000") {
		t.Fatalf("expected api table in toml, got %q", out)
	}
}

func TestConfigCommandJSONMasksSecret(t *testing.T) {
	stdout := &bytes.Buffer{}
	cmd := NewConfigCommand(stdout, &bytes.Buffer{}, func() (config.Config, error) {
		cfg := config.DefaultConfig()
		cfg.Auth.GoogleClientID = "client"
		cfg.Auth.GoogleClientSecret = "hunter2"
		return cfg, nil
	})

	if err := cmd.Run([]string{"--format", "json"}); err != nil {
		t.Fatalf("expected config to succeed, got err=%v", err)
	}
	var decoded config.Config
	if err := json.Unmarshal(stdout.Bytes(), &decoded); err != nil {
		t.Fatalf("decode output: %v", err)
	}
	if decoded.Auth.GoogleClientID != "client" || decoded.Auth.GoogleClientSecret != "********" {
		t.Fatalf("unexpected auth section: %#v", decoded.Auth)
	}
}

func TestConfigCommandRejectsUnknownFormat(t *testing.T) {
	cmd := NewConfigCommand(&bytes.Buffer{}, &bytes.Buffer{}, nil)
	if err := cmd.Run([]string{"--default", "--format", "yaml"}); err == nil {
		t.Fatalf("expected invalid format error")
	}
}

func TestUICommandRunsWithRestoredSession(t *testing.T) {
	h := newEnvHarness(t)
	h.signIn(t, &types.User{ID: "u1", Username: "ana", Email: "ana@example.com"})
	var gotStore *session.Store
	var gotOpts int
	runUI := func(api app.API, store *session.Store, opts ...app.Option) error {
		if api == nil {
			t.Fatalf("expected api")
		}
		gotStore = store
		gotOpts = len(opts)
		return nil
	}
	cmd := NewUICommand(&bytes.Buffer{}, h.factory(), runUI, "test")

	if err := cmd.Run(nil); err != nil {
		t.Fatalf("expected ui to succeed, got err=%v", err)
	}
	if gotStore != h.sessions {
		t.Fatalf("expected the restored session store to be injected")
	}
	if gotOpts != 2 {
		t.Fatalf("expected config and logger options only, got %d", gotOpts)
	}
	if h.closed != 1 {
		t.Fatalf("expected env closed after ui exits")
	}
}
