package app

import (
	"fmt"
	"strings"
	"time"

	"charm.land/bubbles/v2/textinput"
	tea "charm.land/bubbletea/v2"
	"github.com/dustin/go-humanize"

	"notedeck/internal/app/sanitizer"
	"notedeck/internal/logging"
	"notedeck/internal/notes"
	"notedeck/internal/types"
)

const (
	browseFocusList        = -1
	browseFocusSearch      = 0
	inlineComments         = 5
	inlineDescriptionLines = 4
)

// browseView is the filterable note list with its inline detail panel.
// Focus index 0 is the search box and 1..n are the filter controls in
// types.FilterFields order.
type browseView struct {
	search     textinput.Model
	filters    []*AutocompleteInput
	focus      int
	query      types.NoteQuery
	notes      []*types.Note
	options    *notes.OptionCache
	loaded     bool
	err        string
	cursor     int
	selectedID string
	composer   textinput.Model
	composing  bool
	width      int
}

func newBrowseView(ttl time.Duration) *browseView {
	search := textinput.New()
	search.Prompt = ""
	search.Placeholder = "title, subject, description"
	filters := make([]*AutocompleteInput, 0, len(types.FilterFields))
	for _, field := range types.FilterFields {
		filters = append(filters, NewAutocompleteInput(field.Label(), "any "+strings.ToLower(field.Label())))
	}
	return &browseView{
		search:   search,
		filters:  filters,
		focus:    browseFocusList,
		options:  notes.NewOptionCache(ttl),
		composer: newComposer(),
	}
}

func newComposer() textinput.Model {
	composer := textinput.New()
	composer.Prompt = "> "
	composer.Placeholder = "Write a comment"
	composer.CharLimit = 2000
	return composer
}

func (b *browseView) resize(width int) {
	b.width = width
	b.search.SetWidth(max(10, width-12))
	for _, filter := range b.filters {
		filter.SetWidth(max(10, width-14))
	}
	b.composer.SetWidth(max(10, width-6))
}

func (b *browseView) inputFocused() bool {
	return b.focus != browseFocusList || b.composing
}

func (b *browseView) current() *types.Note {
	if b.cursor < 0 || b.cursor >= len(b.notes) {
		return nil
	}
	return b.notes[b.cursor]
}

func (b *browseView) selected() *types.Note {
	if b.selectedID == "" {
		return nil
	}
	return notes.FindByID(b.notes, b.selectedID)
}

func (b *browseView) setFocus(focus int) tea.Cmd {
	b.search.Blur()
	for _, filter := range b.filters {
		filter.Blur()
	}
	total := len(b.filters) + 1
	if focus >= total {
		focus = browseFocusList
	}
	if focus < browseFocusList {
		focus = total - 1
	}
	b.focus = focus
	switch {
	case focus == browseFocusSearch:
		return b.search.Focus()
	case focus > browseFocusSearch:
		return b.filters[focus-1].Focus()
	}
	return nil
}

func (b *browseView) applyOptions() {
	options := b.options.Options()
	for i, field := range types.FilterFields {
		b.filters[i].SetOptions(options.For(field))
	}
}

func (b *browseView) stopComposing() {
	b.composing = false
	b.composer.Blur()
	b.composer.SetValue("")
}

func (b *browseView) helpText() string {
	switch {
	case b.composing:
		return "enter post • esc cancel"
	case b.focus == browseFocusSearch:
		return "type to search • tab next filter • esc done"
	case b.focus > browseFocusSearch:
		return "type to narrow • ↑/↓ pick • enter select • ctrl+u clear • tab next • esc done"
	case b.selectedID != "":
		return "c comment • l like • d download • o open • esc close • q quit"
	}
	return "/ search • tab filters • x clear • enter preview • o open • l like • d download • q quit"
}

// fetchNotes lists notes for the current query on the notes scope,
// superseding any listing still in flight.
func (m *Model) fetchNotes() tea.Cmd {
	ctx, seq := m.beginRequest(requestNotes)
	return fetchNotesCmd(m.api, ctx, seq, m.browse.query)
}

func (m *Model) setQuery(query types.NoteQuery) tea.Cmd {
	m.browse.query = query
	return m.fetchNotes()
}

func (m *Model) clearFilters() tea.Cmd {
	b := m.browse
	b.search.SetValue("")
	for _, filter := range b.filters {
		filter.SetValue("")
	}
	return m.setQuery(types.NoteQuery{})
}

func (m *Model) handleNotes(msg notesMsg) tea.Cmd {
	if !m.isLatestRequest(requestNotes, msg.seq) {
		m.logger.Debug("stale notes response discarded", logging.F("seq", msg.seq))
		return nil
	}
	m.settleRequest(requestNotes, msg.seq)
	b := m.browse
	if msg.err != nil {
		if isAborted(msg.err) {
			return nil
		}
		m.logger.Warn("list notes failed", logging.Err(msg.err))
		b.err = errorMessage(msg.err, "Could not load notes")
		return nil
	}
	b.err = ""
	b.loaded = true
	b.notes = msg.notes
	if b.options.Observe(msg.notes) {
		b.applyOptions()
	}
	if b.cursor >= len(b.notes) {
		b.cursor = max(0, len(b.notes)-1)
	}
	if b.selectedID != "" && b.selected() == nil {
		b.selectedID = ""
		b.stopComposing()
	}
	return nil
}

func (m *Model) handleBrowseKey(msg tea.KeyPressMsg) tea.Cmd {
	b := m.browse
	if b.composing {
		return m.handleBrowseComposerKey(msg)
	}
	switch {
	case b.focus == browseFocusSearch:
		return m.handleBrowseSearchKey(msg)
	case b.focus > browseFocusSearch:
		return m.handleBrowseFilterKey(msg)
	}

	switch msg.String() {
	case "/":
		return b.setFocus(browseFocusSearch)
	case "tab":
		return b.setFocus(browseFocusSearch)
	case "shift+tab":
		return b.setFocus(len(b.filters))
	case "up", "k":
		if b.cursor > 0 {
			b.cursor--
		}
	case "down", "j":
		if b.cursor < len(b.notes)-1 {
			b.cursor++
		}
	case "enter":
		note := b.current()
		if note == nil {
			return nil
		}
		if b.selectedID == note.ID {
			b.selectedID = ""
		} else {
			b.selectedID = note.ID
		}
		b.stopComposing()
	case "esc":
		b.selectedID = ""
		b.stopComposing()
	case "o":
		if note := b.current(); note != nil {
			return m.openDetail(note.ID)
		}
	case "x":
		return m.clearFilters()
	case "r":
		return m.fetchNotes()
	case "l":
		if note := b.current(); note != nil {
			return m.likeNote(routeBrowse, note.ID)
		}
	case "d":
		if note := b.current(); note != nil {
			return m.downloadNote(routeBrowse, note)
		}
	case "c":
		note := b.current()
		if note == nil {
			return nil
		}
		if cmd, ok := m.requireSignIn(); !ok {
			return cmd
		}
		b.selectedID = note.ID
		b.composing = true
		return b.composer.Focus()
	}
	return nil
}

func (m *Model) handleBrowseSearchKey(msg tea.KeyPressMsg) tea.Cmd {
	b := m.browse
	switch msg.String() {
	case "tab":
		return b.setFocus(b.focus + 1)
	case "shift+tab":
		return b.setFocus(browseFocusList)
	case "esc", "enter":
		return b.setFocus(browseFocusList)
	}
	var cmd tea.Cmd
	b.search, cmd = b.search.Update(msg)
	if value := b.search.Value(); value != b.query.Search {
		query := b.query
		query.Search = value
		return tea.Batch(cmd, m.setQuery(query))
	}
	return cmd
}

func (m *Model) handleBrowseFilterKey(msg tea.KeyPressMsg) tea.Cmd {
	b := m.browse
	switch msg.String() {
	case "tab":
		return b.setFocus(b.focus + 1)
	case "shift+tab":
		return b.setFocus(b.focus - 1)
	case "esc":
		return b.setFocus(browseFocusList)
	}
	index := b.focus - 1
	filter := b.filters[index]
	event, cmd := filter.HandleKey(msg)
	switch event {
	case autocompleteSelected, autocompleteCleared:
		query := b.query.WithFilter(types.FilterFields[index], filter.Value())
		return tea.Batch(cmd, m.setQuery(query))
	}
	return cmd
}

func (m *Model) handleBrowseComposerKey(msg tea.KeyPressMsg) tea.Cmd {
	b := m.browse
	switch msg.String() {
	case "esc":
		b.stopComposing()
		return nil
	case "enter":
		note := b.selected()
		text := strings.TrimSpace(b.composer.Value())
		if note == nil {
			b.stopComposing()
			return nil
		}
		if text == "" {
			m.showWarningToast("Comment cannot be empty")
			return nil
		}
		return addCommentCmd(m.api, routeBrowse, note.ID, text)
	}
	var cmd tea.Cmd
	b.composer, cmd = b.composer.Update(msg)
	return cmd
}

func (m *Model) renderBrowse(width int) string {
	b := m.browse
	lines := []string{fieldLine("Search", b.search.View(), b.focus == browseFocusSearch)}
	for _, filter := range b.filters {
		lines = append(lines, filter.View(width))
	}
	summary := fmt.Sprintf("%d notes", len(b.notes))
	if !b.query.IsZero() {
		summary += " • filtered (x to clear)"
	}
	lines = append(lines, dividerStyle.Render(strings.Repeat("─", width)), statusStyle.Render(summary))

	switch {
	case b.err != "":
		lines = append(lines, errorStyle.Render(b.err), helpStyle.Render("press r to retry"))
	case !b.loaded && m.requestInFlight(requestNotes):
		lines = append(lines, m.loader.View()+" loading notes")
	case len(b.notes) == 0:
		lines = append(lines, helpStyle.Render("No notes match these filters."))
	}

	userID := m.session.State().UserID()
	for i, note := range b.notes {
		if note == nil {
			continue
		}
		row := noteRow(note, userID, width-2)
		if i == b.cursor && b.focus == browseFocusList && !b.composing {
			row = selectedStyle.Render("▸ " + row)
		} else {
			row = "  " + row
		}
		lines = append(lines, row)
		if note.ID == b.selectedID {
			lines = append(lines, indentBlock(m.inlinePanel(note, width-4), 2))
		}
	}
	return strings.Join(lines, "\n")
}

func fieldLine(label, input string, focused bool) string {
	if focused {
		return fieldFocusedStyle.Render(label+":") + " " + input
	}
	return fieldLabelStyle.Render(label+":") + " " + input
}

func noteRow(note *types.Note, userID string, width int) string {
	heart := "♡"
	if note.LikedBy(userID) {
		heart = likedStyle.Render("♥")
	}
	meta := strings.Join(nonEmpty(note.SubjectName, note.CourseName, semesterLabel(note.Semester), note.CollegeName), " · ")
	counts := fmt.Sprintf("%s %d  ⬇ %s  ✎ %d", heart, len(note.Likes), humanize.Comma(int64(note.DownloadCount)), len(note.Comments))
	title := truncateToWidth(sanitizer.Line(note.Title), max(10, width/2))
	line := noteTitleStyle.Render(title) + "  " + noteMetaStyle.Render(meta)
	return truncateToWidth(line, max(10, width-24)) + "  " + counts
}

func (m *Model) inlinePanel(note *types.Note, width int) string {
	b := m.browse
	lines := []string{}
	if desc := descriptionPreview(note.Description, max(20, width-4), inlineDescriptionLines); desc != "" {
		lines = append(lines, desc)
	}
	lines = append(lines, noteMetaStyle.Render(uploadedLine(note, m.now())))
	lines = append(lines, commentHeader(len(note.Comments)))
	start := max(0, len(note.Comments)-inlineComments)
	for _, comment := range note.Comments[start:] {
		lines = append(lines, commentLine(comment, m.now(), width-4))
	}
	if b.composing {
		lines = append(lines, b.composer.View())
	}
	return panelBorderStyle.Render(strings.Join(lines, "\n"))
}

func commentHeader(count int) string {
	if count == 1 {
		return headerStyle.Render("1 comment")
	}
	return headerStyle.Render(fmt.Sprintf("%d comments", count))
}

func commentLine(comment types.Comment, now time.Time, width int) string {
	author := sanitizer.Line(comment.Username)
	if strings.TrimSpace(author) == "" {
		author = types.AnonymousUsername
	}
	when := ""
	if !comment.CommentedAt.IsZero() {
		when = humanize.RelTime(comment.CommentedAt, now, "ago", "from now")
	}
	head := commentAuthorStyle.Render(author)
	if when != "" {
		head += " " + commentMetaStyle.Render(when)
	}
	return head + "\n  " + truncateToWidth(sanitizer.Line(comment.Text), max(10, width-2))
}

func uploadedLine(note *types.Note, now time.Time) string {
	parts := []string{}
	if name := sanitizer.Line(note.UploaderName()); name != "" {
		parts = append(parts, "by "+name)
	}
	if !note.CreatedAt.IsZero() {
		parts = append(parts, "uploaded "+humanize.RelTime(note.CreatedAt, now, "ago", "from now"))
	}
	if batch := strings.TrimSpace(sanitizer.Line(note.Batch)); batch != "" {
		parts = append(parts, "batch "+batch)
	}
	return strings.Join(parts, " • ")
}

func semesterLabel(semester string) string {
	semester = strings.TrimSpace(semester)
	if semester == "" {
		return ""
	}
	return "Sem " + semester
}

func nonEmpty(values ...string) []string {
	out := make([]string, 0, len(values))
	for _, value := range values {
		if value = strings.TrimSpace(sanitizer.Line(value)); value != "" {
			out = append(out, value)
		}
	}
	return out
}
