package app

import (
	"context"
	"errors"
	"strings"
	"testing"

	"golang.org/x/oauth2"

	"notedeck/internal/auth"
	"notedeck/internal/testutil"
)

func signInThroughForm(t *testing.T, m *Model, email, password string) {
	t.Helper()
	drain(t, m, m.navigate(routeSignIn))
	typeText(m, email)
	press(m, "tab")
	typeText(m, password)
	drain(t, m, press(m, "enter"))
}

func TestSignInFailureShowsErrorUntilRouteChange(t *testing.T) {
	backend := testutil.NewBackend(t)
	backend.AddUser(*testUser("u1", "ana"), "secret1")
	m := newTestModel(t, backend, nil, "")

	signInThroughForm(t, m, "ana@example.com", "wrong-password")

	state := m.session.State()
	if state.CurrentUser != nil {
		t.Fatalf("expected no user after failed sign-in, got %#v", state.CurrentUser)
	}
	if state.Err != "Invalid credentials" {
		t.Fatalf("expected Invalid credentials, got %q", state.Err)
	}
	if state.Loading {
		t.Fatalf("expected loading cleared after failure")
	}
	if !m.showError {
		t.Fatalf("expected showError after failure")
	}
	if !strings.Contains(renderPlain(m), "Invalid credentials") {
		t.Fatalf("expected error in sign-in view")
	}

	press(m, "esc")
	m.navigate(routeBrowse)

	if m.showError {
		t.Fatalf("expected route change to hide the error")
	}
	if m.session.State().Err != "Invalid credentials" {
		t.Fatalf("expected stored error to survive the route change, got %q", m.session.State().Err)
	}
}

func TestSignInSuccessLandsOnBrowse(t *testing.T) {
	backend := testutil.NewBackend(t)
	backend.AddUser(*testUser("u1", "ana"), "secret1")
	m := newTestModel(t, backend, nil, "")

	signInThroughForm(t, m, "ana@example.com", "secret1")

	state := m.session.State()
	if state.UserID() != "u1" || state.Token == "" {
		t.Fatalf("expected signed in u1 with a token, got %#v", state)
	}
	if m.route != routeBrowse {
		t.Fatalf("expected browse route, got %s", m.route)
	}
	if m.authForm.value(authFieldPassword) != "" {
		t.Fatalf("expected form cleared after sign-in")
	}
}

func TestAdminSignInLandsOnAdminTable(t *testing.T) {
	backend := testutil.NewBackend(t)
	backend.AddUser(*testAdmin("a1", "root"), "secret1")
	backend.AddNote(approvedNote("n1", "Deadlocks"))
	m := newTestModel(t, backend, nil, "")

	signInThroughForm(t, m, "root@example.com", "secret1")

	if m.route != routeAdmin {
		t.Fatalf("expected admin route, got %s", m.route)
	}
	if !m.admin.loaded || len(m.admin.notes) != 1 {
		t.Fatalf("expected admin corpus loaded, got loaded=%v notes=%d", m.admin.loaded, len(m.admin.notes))
	}
}

func TestSignInValidationErrorNeverReachesBackend(t *testing.T) {
	backend := testutil.NewBackend(t)
	m := newTestModel(t, backend, nil, "")

	signInThroughForm(t, m, "not-an-email", "x")

	if got := m.session.State().Err; got != "email must be a valid email" {
		t.Fatalf("unexpected validation message %q", got)
	}
	if n := backend.CallCount("POST", "/api/auth/signin"); n != 0 {
		t.Fatalf("expected no request, got %d", n)
	}
}

func TestSignUpCreatesAccountAndSignsIn(t *testing.T) {
	backend := testutil.NewBackend(t)
	m := newTestModel(t, backend, nil, "")
	drain(t, m, m.navigate(routeSignIn))
	press(m, "esc")
	drain(t, m, press(m, "n"))
	if m.route != routeSignUp {
		t.Fatalf("expected sign-up route, got %s", m.route)
	}

	typeText(m, "carla")
	press(m, "tab")
	typeText(m, "carla@example.com")
	press(m, "tab")
	typeText(m, "secret1")
	drain(t, m, press(m, "enter"))

	state := m.session.State()
	if state.CurrentUser == nil || state.CurrentUser.Username != "carla" {
		t.Fatalf("expected carla signed in, got %#v", state.CurrentUser)
	}
	if m.route != routeBrowse {
		t.Fatalf("expected browse route, got %s", m.route)
	}
}

func TestAdminRouteRejectsNonAdmin(t *testing.T) {
	backend := testutil.NewBackend(t)
	user := testUser("u1", "ana")
	token := backend.AddUser(*user, "secret1")
	m := newTestModel(t, backend, user, token)

	m.navigate(routeAdmin)

	if m.route != routeBrowse {
		t.Fatalf("expected to stay on browse, got %s", m.route)
	}
	if m.toastText != "Admins only" {
		t.Fatalf("expected admins-only toast, got %q", m.toastText)
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

func TestGoogleSignInPostsProfile(t *testing.T) {
	backend := testutil.NewBackend(t)
	google := fakeGoogle{profile: &auth.GoogleProfile{Name: "Dana", Email: "dana@example.com", Picture: "https://example.com/d.png"}}
	m := newTestModel(t, backend, nil, "", WithGoogle(google))
	drain(t, m, m.navigate(routeSignIn))
	press(m, "esc")

	drain(t, m, press(m, "g"))

	if n := backend.CallCount("POST", "/api/auth/google"); n != 1 {
		t.Fatalf("expected one google sign-in post, got %d", n)
	}
	if state := m.session.State(); state.CurrentUser == nil || state.CurrentUser.Email != "dana@example.com" {
		t.Fatalf("expected dana signed in, got %#v", state.CurrentUser)
	}
	if m.requestInFlight(requestGoogle) {
		t.Fatalf("expected google scope released")
	}
}

func TestGoogleSignInFailureShowsError(t *testing.T) {
	backend := testutil.NewBackend(t)
	m := newTestModel(t, backend, nil, "", WithGoogle(fakeGoogle{err: errors.New("access denied")}))
	drain(t, m, m.navigate(routeSignIn))
	press(m, "esc")

	drain(t, m, press(m, "g"))

	if m.session.State().SignedIn() {
		t.Fatalf("expected to stay signed out")
	}
	if !m.showError || m.session.State().Err == "" {
		t.Fatalf("expected visible sign-in error, got showError=%v err=%q", m.showError, m.session.State().Err)
	}
}

func TestGoogleSignInWithoutClientShowsToast(t *testing.T) {
	backend := testutil.NewBackend(t)
	m := newTestModel(t, backend, nil, "")
	drain(t, m, m.navigate(routeSignIn))
	press(m, "esc")

	if cmd := press(m, "g"); cmd != nil {
		t.Fatalf("expected no command without a google client")
	}
	if m.toastLevel != toastLevelWarning || m.toastText == "" {
		t.Fatalf("expected warning toast, got %q", m.toastText)
	}
}
