package app

import (
	"strings"

	"charm.land/bubbles/v2/textinput"
	tea "charm.land/bubbletea/v2"

	"notedeck/internal/app/sanitizer"
	"notedeck/internal/client"
	"notedeck/internal/logging"
	"notedeck/internal/notes"
	"notedeck/internal/session"
	"notedeck/internal/types"
)

type profileTab int

const (
	profileTabProfile profileTab = iota
	profileTabUploads
	profileTabArchived
)

var profileTabs = []profileTab{profileTabProfile, profileTabUploads, profileTabArchived}

func (t profileTab) label() string {
	switch t {
	case profileTabUploads:
		return "My uploads"
	case profileTabArchived:
		return "Archived"
	default:
		return "Profile"
	}
}

type profileStep int

const (
	profileStepView profileStep = iota
	profileStepEdit
	profileStepVerify
)

const (
	profileFieldUsername = iota
	profileFieldEmail
	profileFieldPassword
	profileFieldAvatar
)

var profileFieldLabels = []string{"Username", "Email", "New password", "Avatar URL"}

// noteList is one independently fetched profile collection.
type noteList struct {
	notes  []*types.Note
	loaded bool
	err    string
	cursor int
}

func (l *noteList) current() *types.Note {
	if l.cursor < 0 || l.cursor >= len(l.notes) {
		return nil
	}
	return l.notes[l.cursor]
}

func (l *noteList) remove(id string) {
	l.notes = notes.RemoveByID(l.notes, id)
	if l.cursor >= len(l.notes) {
		l.cursor = max(0, len(l.notes)-1)
	}
}

type profileView struct {
	tab      profileTab
	step     profileStep
	fields   []textinput.Model
	focus    int
	current  textinput.Model
	uploads  noteList
	archived noteList
	width    int
}

func newProfileView() *profileView {
	fields := make([]textinput.Model, len(profileFieldLabels))
	for i := range fields {
		input := textinput.New()
		input.Prompt = ""
		input.CharLimit = 256
		fields[i] = input
	}
	fields[profileFieldPassword].EchoMode = textinput.EchoPassword
	fields[profileFieldPassword].Placeholder = "leave blank to keep"
	current := textinput.New()
	current.Prompt = ""
	current.EchoMode = textinput.EchoPassword
	current.Placeholder = "current password"
	return &profileView{fields: fields, current: current}
}

func (p *profileView) resize(width int) {
	p.width = width
	for i := range p.fields {
		p.fields[i].SetWidth(max(10, width-18))
	}
	p.current.SetWidth(max(10, width-18))
}

func (p *profileView) list() *noteList {
	switch p.tab {
	case profileTabUploads:
		return &p.uploads
	case profileTabArchived:
		return &p.archived
	}
	return nil
}

// beginEdit seeds the form from user. Nothing is sent until the verify step.
func (p *profileView) beginEdit(user *types.User) tea.Cmd {
	p.step = profileStepEdit
	p.fields[profileFieldUsername].SetValue(user.Username)
	p.fields[profileFieldEmail].SetValue(user.Email)
	p.fields[profileFieldPassword].SetValue("")
	p.fields[profileFieldAvatar].SetValue(user.Avatar)
	for i := range p.fields {
		p.fields[i].CursorEnd()
	}
	p.current.SetValue("")
	return p.focusField(profileFieldUsername)
}

func (p *profileView) focusField(index int) tea.Cmd {
	for i := range p.fields {
		p.fields[i].Blur()
	}
	p.focus = (index + len(p.fields)) % len(p.fields)
	return p.fields[p.focus].Focus()
}

func (p *profileView) cancelEdit() {
	p.step = profileStepView
	for i := range p.fields {
		p.fields[i].Blur()
		p.fields[i].SetValue("")
	}
	p.current.Blur()
	p.current.SetValue("")
}

// updateRequest holds only the fields that differ from user.
func (p *profileView) updateRequest(user *types.User) client.UpdateUserRequest {
	req := client.UpdateUserRequest{CurrentPassword: p.current.Value()}
	if value := strings.TrimSpace(p.fields[profileFieldUsername].Value()); value != "" && value != user.Username {
		req.Username = value
	}
	if value := strings.TrimSpace(p.fields[profileFieldEmail].Value()); value != "" && value != user.Email {
		req.Email = value
	}
	if value := p.fields[profileFieldPassword].Value(); value != "" {
		req.Password = value
	}
	if value := strings.TrimSpace(p.fields[profileFieldAvatar].Value()); value != user.Avatar {
		req.Avatar = value
	}
	return req
}

func (p *profileView) reset() {
	p.cancelEdit()
	p.tab = profileTabProfile
	p.uploads = noteList{}
	p.archived = noteList{}
}

func (p *profileView) helpText() string {
	switch p.step {
	case profileStepEdit:
		return "tab next field • enter save • esc discard"
	case profileStepVerify:
		return "enter confirm • esc discard"
	}
	switch p.tab {
	case profileTabUploads:
		return "j/k select • enter open • x delete • tab next tab • r refresh"
	case profileTabArchived:
		return "j/k select • enter open • x remove • tab next tab • r refresh"
	}
	return "e edit • o sign out • D delete account • tab next tab"
}

// activateProfileTab switches tab. Collections are refetched on every
// activation and never cached across switches.
func (m *Model) activateProfileTab(tab profileTab) tea.Cmd {
	p := m.profile
	if p.tab != tab {
		p.cancelEdit()
	}
	p.tab = tab
	userID := m.session.State().UserID()
	if userID == "" {
		return nil
	}
	switch tab {
	case profileTabUploads:
		ctx, seq := m.beginRequest(requestUploads)
		return fetchUploadsCmd(m.api, ctx, seq, userID)
	case profileTabArchived:
		ctx, seq := m.beginRequest(requestArchived)
		return fetchArchivedCmd(m.api, ctx, seq, userID)
	}
	return nil
}

func (m *Model) handleUploads(msg uploadsMsg) {
	m.applyProfileList(requestUploads, &m.profile.uploads, msg.seq, msg.notes, msg.err)
}

func (m *Model) handleArchived(msg archivedMsg) {
	m.applyProfileList(requestArchived, &m.profile.archived, msg.seq, msg.notes, msg.err)
}

func (m *Model) applyProfileList(scope requestKind, list *noteList, seq int, items []*types.Note, err error) {
	if !m.isLatestRequest(scope, seq) {
		m.logger.Debug("stale profile response discarded", logging.F("scope", scope), logging.F("seq", seq))
		return
	}
	m.settleRequest(scope, seq)
	if err != nil {
		if isAborted(err) {
			return
		}
		m.logger.Warn("profile list failed", logging.F("scope", scope), logging.Err(err))
		list.err = errorMessage(err, "Could not load notes")
		return
	}
	list.err = ""
	list.loaded = true
	list.notes = items
	if list.cursor >= len(items) {
		list.cursor = max(0, len(items)-1)
	}
}

func (m *Model) handleUploadDeleted(msg uploadDeletedMsg) {
	if msg.err != nil {
		m.reportError("delete upload", msg.err, "Could not delete note")
		return
	}
	m.profile.uploads.remove(msg.noteID)
	m.showInfoToast("Note deleted")
}

func (m *Model) handleArchiveRemoved(msg archiveRemovedMsg) {
	if msg.err != nil {
		m.reportError("remove archive", msg.err, "Could not remove from archive")
		return
	}
	m.profile.archived.remove(msg.noteID)
	m.showInfoToast("Removed from archive")
}

func (m *Model) handleUserUpdated(msg userUpdatedMsg) {
	if msg.err != nil {
		m.logger.Warn("update user failed", logging.Err(msg.err))
		message := errorMessage(msg.err, "Could not update profile")
		m.dispatch(session.UpdateUserFailure(message))
		m.showErrorToast(message)
		return
	}
	m.dispatch(session.UpdateUserSuccess(msg.user))
	m.profile.cancelEdit()
	m.showInfoToast("Profile updated")
}

func (m *Model) handleUserDeleted(msg userDeletedMsg) tea.Cmd {
	if msg.err != nil {
		m.logger.Warn("delete user failed", logging.Err(msg.err))
		message := errorMessage(msg.err, "Could not delete account")
		m.dispatch(session.DeleteUserFailure(message))
		m.showErrorToast(message)
		return nil
	}
	m.dispatch(session.DeleteUserSuccess())
	m.profile.reset()
	m.showInfoToast("Account deleted")
	return m.navigate(routeBrowse)
}

func (m *Model) handleSignedOut(msg signedOutMsg) tea.Cmd {
	if msg.err != nil {
		m.logger.Warn("sign out request failed", logging.Err(msg.err))
		message := errorMessage(msg.err, "Could not sign out")
		m.dispatch(session.SignOutFailure(message))
		m.showErrorToast(message)
		return nil
	}
	m.dispatch(session.SignOutSuccess())
	m.profile.reset()
	m.showInfoToast("Signed out")
	return tea.Batch(m.navigate(routeBrowse), m.fetchNotes())
}

func (m *Model) handleProfileKey(msg tea.KeyPressMsg) tea.Cmd {
	p := m.profile
	switch p.step {
	case profileStepEdit:
		return m.handleProfileEditKey(msg)
	case profileStepVerify:
		return m.handleProfileVerifyKey(msg)
	}
	switch msg.String() {
	case "tab", "]", "right":
		return m.activateProfileTab(profileTabs[(int(p.tab)+1)%len(profileTabs)])
	case "shift+tab", "[", "left":
		return m.activateProfileTab(profileTabs[(int(p.tab)+len(profileTabs)-1)%len(profileTabs)])
	case "esc":
		return m.navigate(routeBrowse)
	}
	user := m.session.State().CurrentUser
	if user == nil {
		return nil
	}
	if p.tab == profileTabProfile {
		switch msg.String() {
		case "e":
			return p.beginEdit(user)
		case "o":
			m.dispatch(session.SignOutStart())
			return signOutCmd(m.api)
		case "D":
			m.confirm.open(deleteAccountPrompt())
		}
		return nil
	}

	list := p.list()
	switch msg.String() {
	case "up", "k":
		if list.cursor > 0 {
			list.cursor--
		}
	case "down", "j":
		if list.cursor < len(list.notes)-1 {
			list.cursor++
		}
	case "r":
		return m.activateProfileTab(p.tab)
	case "enter":
		if note := list.current(); note != nil {
			return m.openDetail(note.ID)
		}
	case "x":
		note := list.current()
		if note == nil {
			return nil
		}
		if p.tab == profileTabUploads {
			m.confirm.open(deleteUploadPrompt(note))
			return nil
		}
		return removeArchiveCmd(m.api, note.ID)
	}
	return nil
}

func (m *Model) handleProfileEditKey(msg tea.KeyPressMsg) tea.Cmd {
	p := m.profile
	switch msg.String() {
	case "esc":
		p.cancelEdit()
		return nil
	case "tab", "down":
		return p.focusField(p.focus + 1)
	case "shift+tab", "up":
		return p.focusField(p.focus - 1)
	case "enter":
		for i := range p.fields {
			p.fields[i].Blur()
		}
		p.step = profileStepVerify
		p.current.SetValue("")
		return p.current.Focus()
	}
	var cmd tea.Cmd
	p.fields[p.focus], cmd = p.fields[p.focus].Update(msg)
	return cmd
}

func (m *Model) handleProfileVerifyKey(msg tea.KeyPressMsg) tea.Cmd {
	p := m.profile
	switch msg.String() {
	case "esc":
		p.cancelEdit()
		return nil
	case "enter":
		state := m.session.State()
		if state.CurrentUser == nil {
			p.cancelEdit()
			return nil
		}
		if strings.TrimSpace(p.current.Value()) == "" {
			m.showWarningToast("Enter your current password to save")
			return nil
		}
		req := p.updateRequest(state.CurrentUser)
		m.dispatch(session.UpdateUserStart())
		return updateUserCmd(m.api, state.UserID(), req)
	}
	var cmd tea.Cmd
	p.current, cmd = p.current.Update(msg)
	return cmd
}

func (m *Model) renderProfile(width int) string {
	p := m.profile
	tabs := make([]string, 0, len(profileTabs))
	for _, tab := range profileTabs {
		if tab == p.tab {
			tabs = append(tabs, tabActiveStyle.Render(tab.label()))
		} else {
			tabs = append(tabs, tabStyle.Render(tab.label()))
		}
	}
	lines := []string{strings.Join(tabs, " "), dividerStyle.Render(strings.Repeat("─", width))}
	switch p.tab {
	case profileTabProfile:
		lines = append(lines, m.renderProfileForm()...)
	case profileTabUploads:
		lines = append(lines, m.renderNoteList(&p.uploads, requestUploads, "You have not uploaded any notes yet.", width)...)
	case profileTabArchived:
		lines = append(lines, m.renderNoteList(&p.archived, requestArchived, "No archived notes.", width)...)
	}
	return strings.Join(lines, "\n")
}

func (m *Model) renderProfileForm() []string {
	p := m.profile
	state := m.session.State()
	user := state.CurrentUser
	if user == nil {
		return []string{helpStyle.Render("Sign in to see your profile.")}
	}
	var lines []string
	switch p.step {
	case profileStepView:
		lines = append(lines,
			fieldLine("Username", sanitizer.Line(user.Username), false),
			fieldLine("Email", sanitizer.Line(user.Email), false),
		)
		if user.Avatar != "" {
			lines = append(lines, fieldLine("Avatar", sanitizer.Line(user.Avatar), false))
		}
		if user.IsAdmin() {
			lines = append(lines, fieldLine("Role", "admin", false))
		}
		if !user.CreatedAt.IsZero() {
			lines = append(lines, fieldLine("Member since", user.CreatedAt.Format("Jan 2006"), false))
		}
	case profileStepEdit:
		for i, label := range profileFieldLabels {
			lines = append(lines, fieldLine(label, p.fields[i].View(), i == p.focus))
		}
	case profileStepVerify:
		lines = append(lines,
			statusStyle.Render("Confirm your current password to save these changes."),
			fieldLine("Current password", p.current.View(), true),
		)
	}
	if state.Loading {
		lines = append(lines, m.loader.View()+" saving")
	}
	return lines
}

func (m *Model) renderNoteList(list *noteList, scope requestKind, empty string, width int) []string {
	switch {
	case list.err != "":
		return []string{errorStyle.Render(list.err), helpStyle.Render("press r to retry")}
	case !list.loaded && m.requestInFlight(scope):
		return []string{m.loader.View() + " loading"}
	case len(list.notes) == 0:
		return []string{helpStyle.Render(empty)}
	}
	userID := m.session.State().UserID()
	lines := make([]string, 0, len(list.notes))
	for i, note := range list.notes {
		row := noteRow(note, userID, width-2)
		if !note.Approved && scope == requestUploads {
			row += " " + pendingBadgeStyle.Render("pending")
		}
		if i == list.cursor {
			row = selectedStyle.Render("▸ " + row)
		} else {
			row = "  " + row
		}
		lines = append(lines, row)
	}
	return lines
}
