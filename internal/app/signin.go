package app

import (
	"strings"

	"charm.land/bubbles/v2/textinput"
	tea "charm.land/bubbletea/v2"
	"golang.org/x/oauth2"

	"notedeck/internal/app/sanitizer"
	"notedeck/internal/client"
	"notedeck/internal/logging"
	"notedeck/internal/session"
)

const (
	authFieldUsername = iota
	authFieldEmail
	authFieldPassword
)

// authForm backs both the sign-in and sign-up screens. The username field
// only exists on sign-up.
type authForm struct {
	inputs []textinput.Model
	fields []int
	focus  int
	device *oauth2.DeviceAuthResponse
	width  int
}

func newAuthForm() *authForm {
	inputs := make([]textinput.Model, 3)
	for i := range inputs {
		input := textinput.New()
		input.Prompt = ""
		input.CharLimit = 256
		inputs[i] = input
	}
	inputs[authFieldUsername].Placeholder = "at least 3 characters"
	inputs[authFieldEmail].Placeholder = "you@example.com"
	inputs[authFieldPassword].Placeholder = "password"
	inputs[authFieldPassword].EchoMode = textinput.EchoPassword
	return &authForm{inputs: inputs, fields: []int{authFieldEmail, authFieldPassword}, focus: -1}
}

func (f *authForm) resize(width int) {
	f.width = width
	for i := range f.inputs {
		f.inputs[i].SetWidth(max(10, min(60, width-14)))
	}
}

func (f *authForm) focusFirst(r route) tea.Cmd {
	if r == routeSignUp {
		f.fields = []int{authFieldUsername, authFieldEmail, authFieldPassword}
	} else {
		f.fields = []int{authFieldEmail, authFieldPassword}
	}
	return f.focusIndex(0)
}

func (f *authForm) focusIndex(index int) tea.Cmd {
	f.blur()
	f.focus = (index + len(f.fields)) % len(f.fields)
	return f.inputs[f.fields[f.focus]].Focus()
}

func (f *authForm) blur() {
	for i := range f.inputs {
		f.inputs[i].Blur()
	}
	f.focus = -1
}

func (f *authForm) focused() bool {
	return f.focus >= 0
}

func (f *authForm) value(field int) string {
	return f.inputs[field].Value()
}

func (f *authForm) reset() {
	f.blur()
	for i := range f.inputs {
		f.inputs[i].SetValue("")
	}
	f.device = nil
}

func (f *authForm) helpText(r route) string {
	if f.focused() {
		return "tab next field • enter submit • esc done"
	}
	other := "n create an account"
	if r == routeSignUp {
		other = "n have an account? sign in"
	}
	return "tab edit fields • g google • " + other + " • 1 browse • q quit"
}

func (m *Model) handleAuthKey(msg tea.KeyPressMsg) tea.Cmd {
	f := m.authForm
	if f.focused() {
		switch msg.String() {
		case "esc":
			f.blur()
			return nil
		case "tab", "down":
			return f.focusIndex(f.focus + 1)
		case "shift+tab", "up":
			return f.focusIndex(f.focus - 1)
		case "enter":
			return m.submitAuth()
		case "ctrl+g":
			return m.startGoogleSignIn()
		}
		field := f.fields[f.focus]
		var cmd tea.Cmd
		f.inputs[field], cmd = f.inputs[field].Update(msg)
		return cmd
	}
	switch msg.String() {
	case "tab", "enter", "/":
		return f.focusIndex(0)
	case "g", "ctrl+g":
		return m.startGoogleSignIn()
	case "n":
		if m.route == routeSignUp {
			return m.navigate(routeSignIn)
		}
		return m.navigate(routeSignUp)
	case "esc":
		return m.navigate(routeBrowse)
	}
	return nil
}

func (m *Model) submitAuth() tea.Cmd {
	f := m.authForm
	if m.session.State().Loading {
		return nil
	}
	email := strings.TrimSpace(f.value(authFieldEmail))
	password := f.value(authFieldPassword)
	if m.route == routeSignUp {
		m.dispatch(session.SignUpStart())
		return signUpCmd(m.api, client.SignUpRequest{
			Username: strings.TrimSpace(f.value(authFieldUsername)),
			Email:    email,
			Password: password,
		})
	}
	m.dispatch(session.SignInStart())
	return signInCmd(m.api, client.SignInRequest{Email: email, Password: password})
}

func (m *Model) startGoogleSignIn() tea.Cmd {
	if m.google == nil {
		m.showWarningToast("Google sign-in is not configured")
		return nil
	}
	m.authForm.device = nil
	ctx, seq := m.beginRequest(requestGoogle)
	return googleStartCmd(m.google, ctx, seq)
}

func (m *Model) handleGoogleDevice(msg googleDeviceMsg) tea.Cmd {
	if !m.isLatestRequest(requestGoogle, msg.seq) {
		return nil
	}
	if msg.err != nil {
		m.settleRequest(requestGoogle, msg.seq)
		if !isAborted(msg.err) {
			m.reportError("google device code", msg.err, "Could not start Google sign-in")
		}
		return nil
	}
	m.authForm.device = msg.device
	m.logger.Info("google device code issued", logging.F("verification_uri", msg.device.VerificationURI))
	return googleWaitCmd(m.google, m.requests.context(requestGoogle), msg.seq, msg)
}

func (m *Model) handleGoogleProfile(msg googleProfileMsg) tea.Cmd {
	if !m.isLatestRequest(requestGoogle, msg.seq) {
		return nil
	}
	m.settleRequest(requestGoogle, msg.seq)
	m.authForm.device = nil
	if msg.err != nil {
		if isAborted(msg.err) {
			return nil
		}
		m.logger.Warn("google sign in failed", logging.Err(msg.err))
		m.dispatch(session.SignInFailure(errorMessage(msg.err, "Google sign-in failed")))
		m.showError = true
		return nil
	}
	m.dispatch(session.SignInStart())
	return googleSignInCmd(m.api, client.GoogleSignInRequest{
		Name:  msg.profile.Name,
		Email: msg.profile.Email,
		Photo: msg.profile.Picture,
	})
}

// handleAuthResult records the outcome in the session store. Admins land on
// the moderation table, everyone else on browse.
func (m *Model) handleAuthResult(msg authResultMsg) tea.Cmd {
	if msg.err != nil {
		fallback := "Sign in failed"
		if msg.flow == authFlowSignUp {
			fallback = "Sign up failed"
		}
		message := errorMessage(msg.err, fallback)
		m.logger.Warn("authentication failed", logging.F("flow", int(msg.flow)), logging.Err(msg.err))
		if msg.flow == authFlowSignUp {
			m.dispatch(session.SignUpFailure(message))
		} else {
			m.dispatch(session.SignInFailure(message))
		}
		m.showError = true
		return nil
	}
	var state session.State
	if msg.flow == authFlowSignUp {
		state = m.dispatch(session.SignUpSuccess(msg.result.User, msg.result.Token))
	} else {
		state = m.dispatch(session.SignInSuccess(msg.result.User, msg.result.Token))
	}
	m.authForm.reset()
	m.logger.Info("signed in", logging.F("user_id", state.UserID()), logging.F("admin", state.IsAdmin()))
	m.showInfoToast("Welcome, " + state.CurrentUser.DisplayName())
	if state.IsAdmin() {
		return tea.Batch(m.navigate(routeAdmin), m.fetchNotes())
	}
	return tea.Batch(m.navigate(routeBrowse), m.fetchNotes())
}

func (m *Model) renderAuth(width int) string {
	f := m.authForm
	state := m.session.State()
	title := "Sign in"
	if m.route == routeSignUp {
		title = "Create an account"
	}
	lines := []string{headerStyle.Render(title), ""}
	for i, field := range f.fields {
		lines = append(lines, fieldLine(authFieldLabel(field), f.inputs[field].View(), i == f.focus))
	}
	if state.Loading {
		lines = append(lines, "", m.loader.View()+" signing in")
	}
	if m.showError && state.Err != "" {
		lines = append(lines, "", errorStyle.Render(sanitizer.Line(state.Err)))
	}
	if f.device != nil {
		lines = append(lines, "",
			statusStyle.Render("Continue with Google"),
			"Open "+sanitizer.Line(f.device.VerificationURI)+" and enter code "+selectedStyle.Render(sanitizer.Line(f.device.UserCode)),
			helpStyle.Render("waiting for approval"),
		)
	} else if m.requestInFlight(requestGoogle) {
		lines = append(lines, "", m.loader.View()+" contacting Google")
	}
	return panelBorderStyle.Width(min(width-2, 72)).Render(strings.Join(lines, "\n"))
}

func authFieldLabel(field int) string {
	switch field {
	case authFieldUsername:
		return "Username"
	case authFieldEmail:
		return "Email"
	default:
		return "Password"
	}
}
