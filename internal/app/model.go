package app

import (
	"context"
	"strings"
	"time"

	"charm.land/bubbles/v2/spinner"
	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"notedeck/internal/app/sanitizer"
	"notedeck/internal/config"
	"notedeck/internal/logging"
	"notedeck/internal/session"
)

const (
	minContentWidth  = 40
	defaultCopied    = 2 * time.Second
	defaultOptionTTL = 5 * time.Minute
)

type route int

const (
	routeBrowse route = iota
	routeDetail
	routeProfile
	routeAdmin
	routeSignIn
	routeSignUp
)

func (r route) String() string {
	switch r {
	case routeBrowse:
		return "browse"
	case routeDetail:
		return "detail"
	case routeProfile:
		return "profile"
	case routeAdmin:
		return "admin"
	case routeSignIn:
		return "signin"
	case routeSignUp:
		return "signup"
	default:
		return "unknown"
	}
}

type Model struct {
	api       API
	google    GoogleSignIn
	clipboard Clipboard
	session   *session.Store
	logger    logging.Logger
	now       func() time.Time

	webBaseURL     string
	downloadsDir   string
	copiedDuration time.Duration
	optionTTL      time.Duration

	route     route
	showError bool
	width     int
	height    int
	status    string

	toastText  string
	toastLevel toastLevel
	toastUntil time.Time

	requests *requestTracker

	confirm *confirmDialog
	loader  spinner.Model

	browse   *browseView
	detail   *detailView
	profile  *profileView
	admin    *adminView
	authForm *authForm
}

type Option func(*Model)

func WithGoogle(google GoogleSignIn) Option {
	return func(m *Model) { m.google = google }
}

func WithClipboard(c Clipboard) Option {
	return func(m *Model) {
		if c != nil {
			m.clipboard = c
		}
	}
}

func WithLogger(logger logging.Logger) Option {
	return func(m *Model) {
		if logger != nil {
			m.logger = logger
		}
	}
}

func WithClock(now func() time.Time) Option {
	return func(m *Model) {
		if now != nil {
			m.now = now
		}
	}
}

func WithWebBaseURL(url string) Option {
	return func(m *Model) { m.webBaseURL = strings.TrimRight(strings.TrimSpace(url), "/") }
}

func WithDownloadsDir(dir string) Option {
	return func(m *Model) { m.downloadsDir = strings.TrimSpace(dir) }
}

func WithCopiedDuration(d time.Duration) Option {
	return func(m *Model) {
		if d > 0 {
			m.copiedDuration = d
		}
	}
}

func WithFilterOptionsTTL(d time.Duration) Option {
	return func(m *Model) { m.optionTTL = max(0, d) }
}

// WithConfig applies the [ui] and web settings of cfg.
func WithConfig(cfg config.Config) Option {
	return func(m *Model) {
		WithWebBaseURL(cfg.WebBaseURL())(m)
		WithCopiedDuration(cfg.CopiedDuration())(m)
		WithFilterOptionsTTL(cfg.FilterOptionsTTL())(m)
		if dir, err := cfg.DownloadsDir(); err == nil {
			WithDownloadsDir(dir)(m)
		}
	}
}

// NewModel builds the UI around api and the injected session store. A nil
// store starts signed out without persistence.
func NewModel(api API, store *session.Store, opts ...Option) Model {
	if store == nil {
		store = session.NewStore()
	}
	m := Model{
		api:            api,
		session:        store,
		logger:         logging.Nop(),
		clipboard:      newTerminalClipboard(),
		now:            time.Now,
		webBaseURL:     "http://localhost:5173",
		downloadsDir:   ".",
		copiedDuration: defaultCopied,
		optionTTL:      defaultOptionTTL,
		confirm:        &confirmDialog{},
		loader:         spinner.New(spinner.WithSpinner(spinner.Line), spinner.WithStyle(lipgloss.NewStyle())),
		requests:       newRequestTracker(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(&m)
		}
	}
	m.browse = newBrowseView(m.optionTTL)
	m.detail = newDetailView()
	m.profile = newProfileView()
	m.admin = newAdminView()
	m.authForm = newAuthForm()
	return m
}

func Run(api API, store *session.Store, opts ...Option) error {
	model := NewModel(api, store, opts...)
	_, err := tea.NewProgram(&model).Run()
	return err
}

func (m *Model) Init() tea.Cmd {
	cmds := []tea.Cmd{m.fetchNotes(), tickCmd()}
	if m.session.State().IsAdmin() {
		cmds = append(cmds, m.navigate(routeAdmin))
	}
	return tea.Batch(cmds...)
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)
		return m, nil
	case tea.KeyPressMsg:
		return m, m.handleKey(msg)
	case tea.MouseClickMsg:
		if choice, ok := m.confirm.handleClick(msg, max(minContentWidth, m.width)); ok {
			return m, m.resolveConfirm(choice)
		}
		return m, nil
	case tickMsg:
		m.handleTick(msg)
		return m, tickCmd()
	case notesMsg:
		return m, m.handleNotes(msg)
	case noteDetailMsg:
		m.handleNoteDetail(msg)
		return m, nil
	case likeMsg:
		return m, m.handleLike(msg)
	case downloadCountMsg:
		return m, m.handleDownloadCount(msg)
	case fileDownloadMsg:
		m.handleFileDownload(msg)
		return m, nil
	case commentAddedMsg:
		return m, m.handleCommentAdded(msg)
	case commentEditedMsg:
		m.handleCommentEdited(msg)
		return m, nil
	case commentDeletedMsg:
		m.handleCommentDeleted(msg)
		return m, nil
	case archiveMsg:
		m.handleArchive(msg)
		return m, nil
	case uploadsMsg:
		m.handleUploads(msg)
		return m, nil
	case archivedMsg:
		m.handleArchived(msg)
		return m, nil
	case uploadDeletedMsg:
		m.handleUploadDeleted(msg)
		return m, nil
	case archiveRemovedMsg:
		m.handleArchiveRemoved(msg)
		return m, nil
	case userUpdatedMsg:
		m.handleUserUpdated(msg)
		return m, nil
	case userDeletedMsg:
		return m, m.handleUserDeleted(msg)
	case signedOutMsg:
		return m, m.handleSignedOut(msg)
	case adminNotesMsg:
		m.handleAdminNotes(msg)
		return m, nil
	case reviewMsg:
		m.handleReview(msg)
		return m, nil
	case adminDeleteMsg:
		m.handleAdminDelete(msg)
		return m, nil
	case authResultMsg:
		return m, m.handleAuthResult(msg)
	case googleDeviceMsg:
		return m, m.handleGoogleDevice(msg)
	case googleProfileMsg:
		return m, m.handleGoogleProfile(msg)
	}
	return m, nil
}

func (m *Model) handleTick(msg tickMsg) {
	at := time.Time(msg)
	if m.toastText != "" && !m.toastActive(at) {
		m.clearToast()
	}
	if m.loading() {
		m.loader, _ = m.loader.Update(spinner.TickMsg{Time: at, ID: m.loader.ID()})
	}
}

func (m *Model) loading() bool {
	switch m.route {
	case routeBrowse:
		return m.requestInFlight(requestNotes)
	case routeDetail:
		return m.requestInFlight(requestDetail)
	case routeProfile:
		return m.requestInFlight(requestUploads) || m.requestInFlight(requestArchived)
	case routeAdmin:
		return m.requestInFlight(requestAdmin)
	case routeSignIn, routeSignUp:
		return m.session.State().Loading || m.requestInFlight(requestGoogle)
	}
	return false
}

func (m *Model) resize(width, height int) {
	m.width = width
	m.height = height
	contentWidth := max(minContentWidth, width)
	m.browse.resize(contentWidth)
	m.detail.resize(contentWidth)
	m.profile.resize(contentWidth)
	m.admin.resize(contentWidth)
	m.authForm.resize(contentWidth)
}

// navigate switches screens. Protected screens redirect to sign-in, and
// every real route change hides a previously shown sign-in error while
// keeping the stored error itself.
func (m *Model) navigate(to route) tea.Cmd {
	state := m.session.State()
	switch to {
	case routeProfile:
		if !state.SignedIn() {
			to = routeSignIn
		}
	case routeAdmin:
		if !state.SignedIn() {
			to = routeSignIn
		} else if !state.IsAdmin() {
			m.showWarningToast("Admins only")
			return nil
		}
	}
	from := m.route
	if from != to {
		m.leaveRoute(from)
		m.showError = false
	}
	m.route = to
	m.logger.Debug("navigate", logging.F("from", from.String()), logging.F("to", to.String()))
	switch to {
	case routeProfile:
		if from != to {
			return m.activateProfileTab(m.profile.tab)
		}
	case routeAdmin:
		if from != to {
			return m.fetchAdminNotes()
		}
	case routeSignIn, routeSignUp:
		return m.authForm.focusFirst(to)
	}
	return nil
}

func (m *Model) leaveRoute(from route) {
	switch from {
	case routeDetail:
		m.abortRequest(requestDetail)
		m.detail.stopComposing()
	case routeProfile:
		m.abortRequest(requestUploads)
		m.abortRequest(requestArchived)
		m.profile.cancelEdit()
	case routeAdmin:
		m.abortRequest(requestAdmin)
		m.admin.blurSearch()
		m.admin.modalID = ""
	case routeSignIn, routeSignUp:
		m.abortRequest(requestGoogle)
		m.authForm.device = nil
		m.authForm.blur()
	}
}

func (m *Model) inputFocused() bool {
	switch m.route {
	case routeBrowse:
		return m.browse.inputFocused()
	case routeDetail:
		return m.detail.composing()
	case routeProfile:
		return m.profile.step != profileStepView
	case routeAdmin:
		return m.admin.search.Focused()
	case routeSignIn, routeSignUp:
		return m.authForm.focused()
	}
	return false
}

func (m *Model) handleKey(msg tea.KeyPressMsg) tea.Cmd {
	if msg.String() == "ctrl+c" {
		return tea.Quit
	}
	if m.confirm.isOpen() {
		return m.resolveConfirm(m.confirm.handleKey(msg))
	}
	if !m.inputFocused() {
		switch msg.String() {
		case "q":
			return tea.Quit
		case "1":
			return m.navigate(routeBrowse)
		case "2":
			return m.navigate(routeProfile)
		case "3":
			return m.navigate(routeAdmin)
		case "0":
			if m.session.State().SignedIn() {
				return m.navigate(routeProfile)
			}
			return m.navigate(routeSignIn)
		}
	}
	switch m.route {
	case routeBrowse:
		return m.handleBrowseKey(msg)
	case routeDetail:
		return m.handleDetailKey(msg)
	case routeProfile:
		return m.handleProfileKey(msg)
	case routeAdmin:
		return m.handleAdminKey(msg)
	case routeSignIn, routeSignUp:
		return m.handleAuthKey(msg)
	}
	return nil
}

func (m *Model) resolveConfirm(choice confirmChoice) tea.Cmd {
	switch choice {
	case confirmDeclined:
		m.confirm.close()
		return nil
	case confirmPending:
		return nil
	}
	action := m.confirm.pending()
	m.confirm.close()
	switch action.kind {
	case confirmDeleteComment:
		return deleteCommentCmd(m.api, action.noteID, action.commentID)
	case confirmDeleteUpload:
		return deleteUploadCmd(m.api, action.noteID)
	case confirmDeleteAccount:
		userID := m.session.State().UserID()
		if userID == "" {
			return nil
		}
		m.dispatch(session.DeleteUserStart())
		return deleteUserCmd(m.api, userID)
	case confirmAdminDelete:
		return adminDeleteNoteCmd(m.api, action.noteID)
	}
	return nil
}

// requireSignIn redirects to the sign-in screen when nobody is signed in.
func (m *Model) requireSignIn() (tea.Cmd, bool) {
	if m.session.State().SignedIn() {
		return nil, true
	}
	return m.navigate(routeSignIn), false
}

func (m *Model) View() tea.View {
	width := max(minContentWidth, m.width)
	var body string
	switch m.route {
	case routeBrowse:
		body = m.renderBrowse(width)
	case routeDetail:
		body = m.renderDetail(width)
	case routeProfile:
		body = m.renderProfile(width)
	case routeAdmin:
		body = m.renderAdmin(width)
	case routeSignIn, routeSignUp:
		body = m.renderAuth(width)
	}

	if m.confirm.isOpen() {
		body = "\n" + m.confirm.render(width)
	}
	lines := []string{m.headerLine(width), body}
	if toast := m.toastLine(width); toast != "" {
		lines = append(lines, toast)
	}
	lines = append(lines, m.statusLine(width))

	v := tea.NewView(lipgloss.JoinVertical(lipgloss.Left, lines...))
	v.AltScreen = true
	v.MouseMode = tea.MouseModeCellMotion
	v.WindowTitle = "notedeck"
	return v
}

type headerTab struct {
	key   string
	label string
	route route
}

func (m *Model) headerLine(width int) string {
	state := m.session.State()
	tabs := []headerTab{
		{key: "1", label: "Browse", route: routeBrowse},
		{key: "2", label: "Profile", route: routeProfile},
	}
	if state.IsAdmin() {
		tabs = append(tabs, headerTab{key: "3", label: "Admin", route: routeAdmin})
	}
	parts := []string{headerStyle.Render("notedeck")}
	for _, tab := range tabs {
		label := tab.key + " " + tab.label
		active := m.route == tab.route || (tab.route == routeBrowse && m.route == routeDetail)
		if active {
			parts = append(parts, tabActiveStyle.Render(label))
		} else {
			parts = append(parts, tabStyle.Render(label))
		}
	}
	user := "0 sign in"
	if state.SignedIn() {
		user = sanitizer.Line(state.CurrentUser.DisplayName())
		if state.IsAdmin() {
			user += " (admin)"
		}
	}
	left := strings.Join(parts, " ")
	right := statusStyle.Render(user)
	gap := max(1, width-lipgloss.Width(left)-lipgloss.Width(right))
	return left + strings.Repeat(" ", gap) + right
}

func (m *Model) statusLine(width int) string {
	help := helpStyle.Render(m.helpText())
	status := m.status
	if m.loading() {
		status = strings.TrimSpace(m.loader.View() + " " + status)
	}
	if status == "" {
		return truncateToWidth(help, width)
	}
	line := help + "  " + statusStyle.Render(status)
	return truncateToWidth(line, width)
}

func (m *Model) helpText() string {
	if m.confirm.isOpen() {
		return "y confirm • n cancel • tab switch"
	}
	switch m.route {
	case routeBrowse:
		return m.browse.helpText()
	case routeDetail:
		return m.detail.helpText()
	case routeProfile:
		return m.profile.helpText()
	case routeAdmin:
		return m.admin.helpText()
	case routeSignIn, routeSignUp:
		return m.authForm.helpText(m.route)
	}
	return "q quit"
}

func (m *Model) dispatch(action session.Action) session.State {
	return m.session.Dispatch(context.Background(), action)
}
