package app

import (
	"fmt"
	"strings"

	"charm.land/bubbles/v2/textinput"
	tea "charm.land/bubbletea/v2"
	"github.com/dustin/go-humanize"

	"notedeck/internal/app/sanitizer"
	"notedeck/internal/logging"
	"notedeck/internal/notes"
	"notedeck/internal/types"
)

// adminView caches the whole corpus once per visit. Everything the table
// shows is derived from that slice.
type adminView struct {
	notes   []*types.Note
	loaded  bool
	err     string
	filter  notes.AdminFilter
	sort    notes.SortState
	search  textinput.Model
	column  int
	cursor  int
	modalID string
	width   int
}

func newAdminView() *adminView {
	search := textinput.New()
	search.Prompt = ""
	search.Placeholder = "title, subject, uploader"
	return &adminView{
		filter: notes.AdminFilter{Status: types.ReviewStatusAll},
		sort:   notes.DefaultSortState(),
		search: search,
	}
}

func (a *adminView) resize(width int) {
	a.width = width
	a.search.SetWidth(max(10, width-12))
}

func (a *adminView) blurSearch() {
	a.search.Blur()
}

func (a *adminView) rows() []*types.Note {
	return notes.AdminView(a.notes, a.filter, a.sort)
}

func (a *adminView) current() *types.Note {
	rows := a.rows()
	if a.cursor < 0 || a.cursor >= len(rows) {
		return nil
	}
	return rows[a.cursor]
}

// target is the note the action keys apply to: the open modal if any,
// otherwise the highlighted row.
func (a *adminView) target() *types.Note {
	if a.modalID != "" {
		return notes.FindByID(a.notes, a.modalID)
	}
	return a.current()
}

func (a *adminView) clampCursor() {
	rows := len(a.rows())
	if a.cursor >= rows {
		a.cursor = max(0, rows-1)
	}
}

func (a *adminView) cycleCollege() {
	options := append([]string{""}, notes.CollegeOptions(a.notes)...)
	next := 0
	for i, option := range options {
		if option == a.filter.College {
			next = (i + 1) % len(options)
			break
		}
	}
	a.filter.College = options[next]
	a.cursor = 0
}

func (a *adminView) helpText() string {
	switch {
	case a.search.Focused():
		return "type to search • enter/esc done"
	case a.modalID != "":
		return "a approve • r reject • x delete • esc close"
	}
	return "/ search • c college • f status • h/l column • s sort • a approve • r reject • x delete • enter details • R reload"
}

func (m *Model) fetchAdminNotes() tea.Cmd {
	ctx, seq := m.beginRequest(requestAdmin)
	return fetchAdminNotesCmd(m.api, ctx, seq)
}

func (m *Model) handleAdminNotes(msg adminNotesMsg) {
	if !m.isLatestRequest(requestAdmin, msg.seq) {
		m.logger.Debug("stale admin response discarded", logging.F("seq", msg.seq))
		return
	}
	m.settleRequest(requestAdmin, msg.seq)
	a := m.admin
	if msg.err != nil {
		if isAborted(msg.err) {
			return
		}
		m.logger.Warn("admin list failed", logging.Err(msg.err))
		a.err = errorMessage(msg.err, "Could not load notes")
		return
	}
	a.err = ""
	a.loaded = true
	a.notes = msg.notes
	a.clampCursor()
	if a.modalID != "" && notes.FindByID(a.notes, a.modalID) == nil {
		a.modalID = ""
	}
}

// handleReview trusts the server echo and replaces the cached record.
func (m *Model) handleReview(msg reviewMsg) {
	if msg.err != nil {
		m.reportError("review note", msg.err, "Could not update note")
		return
	}
	a := m.admin
	if msg.note != nil {
		a.notes = notes.ReplaceByID(a.notes, msg.note)
		a.clampCursor()
		if msg.note.Approved {
			m.showInfoToast("Note approved")
		} else {
			m.showInfoToast("Note rejected")
		}
	}
}

func (m *Model) handleAdminDelete(msg adminDeleteMsg) {
	if msg.err != nil {
		m.reportError("delete note", msg.err, "Could not delete note")
		return
	}
	a := m.admin
	a.notes = notes.RemoveByID(a.notes, msg.noteID)
	if a.modalID == msg.noteID {
		a.modalID = ""
	}
	a.clampCursor()
	m.showInfoToast("Note deleted")
}

func (m *Model) handleAdminKey(msg tea.KeyPressMsg) tea.Cmd {
	a := m.admin
	if a.search.Focused() {
		switch msg.String() {
		case "enter", "esc", "tab":
			a.search.Blur()
			return nil
		}
		var cmd tea.Cmd
		a.search, cmd = a.search.Update(msg)
		a.filter.Search = a.search.Value()
		a.cursor = 0
		return cmd
	}

	switch msg.String() {
	case "a", "r":
		note := a.target()
		if note == nil {
			return nil
		}
		return reviewNoteCmd(m.api, note.ID, msg.String() == "a")
	case "x":
		note := a.target()
		if note == nil {
			return nil
		}
		m.confirm.open(adminDeletePrompt(note))
		return nil
	}
	if a.modalID != "" {
		if msg.String() == "esc" || msg.String() == "enter" {
			a.modalID = ""
		}
		return nil
	}

	keys := notes.SortKeys()
	switch msg.String() {
	case "/":
		return a.search.Focus()
	case "c":
		a.cycleCollege()
	case "f":
		a.filter.Status = a.filter.Status.Next()
		a.cursor = 0
	case "left", "h":
		a.column = (a.column + len(keys) - 1) % len(keys)
	case "right", "l":
		a.column = (a.column + 1) % len(keys)
	case "s":
		a.sort = a.sort.Toggle(keys[a.column])
	case "up", "k":
		if a.cursor > 0 {
			a.cursor--
		}
	case "down", "j":
		a.clampCursor()
		if a.cursor < len(a.rows())-1 {
			a.cursor++
		}
	case "enter":
		if note := a.current(); note != nil {
			a.modalID = note.ID
		}
	case "R":
		return m.fetchAdminNotes()
	case "esc":
		return m.navigate(routeBrowse)
	}
	return nil
}

type adminColumn struct {
	key   notes.SortKey
	width int
	cell  func(note *types.Note) string
}

func adminColumns(width int) []adminColumn {
	flexible := max(30, width-2-8-10-12-5)
	title := flexible * 2 / 5
	subject := flexible / 4
	college := flexible - title - subject
	return []adminColumn{
		{key: notes.SortTitle, width: title, cell: func(n *types.Note) string { return n.Title }},
		{key: notes.SortSubject, width: subject, cell: func(n *types.Note) string { return n.SubjectName }},
		{key: notes.SortCollege, width: college, cell: func(n *types.Note) string { return n.CollegeName }},
		{key: notes.SortApproved, width: 8, cell: reviewLabel},
		{key: notes.SortDownloads, width: 10, cell: func(n *types.Note) string { return humanize.Comma(int64(n.DownloadCount)) }},
		{key: notes.SortCreated, width: 12, cell: func(n *types.Note) string {
			if n.CreatedAt.IsZero() {
				return ""
			}
			return n.CreatedAt.Format("2006-01-02")
		}},
	}
}

func reviewLabel(note *types.Note) string {
	if note.Approved {
		return "approved"
	}
	return "pending"
}

func (m *Model) renderAdmin(width int) string {
	a := m.admin
	counts := notes.CountReviews(a.notes)
	college := sanitizer.Line(a.filter.College)
	if college == "" {
		college = "all"
	}
	lines := []string{
		headerStyle.Render("Moderation") + "  " + statusStyle.Render(fmt.Sprintf("%d total • %s %d • %s %d",
			counts.Total, approvedBadgeStyle.Render("approved"), counts.Approved, pendingBadgeStyle.Render("pending"), counts.Pending)),
		fieldLine("Search", a.search.View(), a.search.Focused()),
		fieldLabelStyle.Render("College:") + " " + college + "   " + fieldLabelStyle.Render("Status:") + " " + string(a.filter.Status),
		dividerStyle.Render(strings.Repeat("─", width)),
	}

	switch {
	case a.err != "":
		return strings.Join(append(lines, errorStyle.Render(a.err), helpStyle.Render("press R to retry")), "\n")
	case !a.loaded:
		return strings.Join(append(lines, m.loader.View()+" loading notes"), "\n")
	}

	columns := adminColumns(width)
	header := make([]string, 0, len(columns))
	for i, column := range columns {
		label := notes.SortLabel(column.key)
		if a.sort.Key == column.key {
			if a.sort.Desc {
				label += " ▼"
			} else {
				label += " ▲"
			}
		}
		cell := fitCell(label, column.width)
		if i == a.column {
			cell = selectedStyle.Render(cell)
		} else {
			cell = fieldLabelStyle.Render(cell)
		}
		header = append(header, cell)
	}
	lines = append(lines, "  "+strings.Join(header, " "))

	rows := a.rows()
	if len(rows) == 0 {
		lines = append(lines, helpStyle.Render("No notes match these filters."))
	}
	for i, note := range rows {
		cells := make([]string, 0, len(columns))
		for _, column := range columns {
			cell := fitCell(column.cell(note), column.width)
			if column.key == notes.SortApproved {
				if note.Approved {
					cell = approvedBadgeStyle.Render(cell)
				} else {
					cell = pendingBadgeStyle.Render(cell)
				}
			}
			cells = append(cells, cell)
		}
		row := strings.Join(cells, " ")
		if i == a.cursor {
			row = selectedStyle.Render("▸") + " " + row
		} else {
			row = "  " + row
		}
		lines = append(lines, row)
	}

	if modal := m.adminModal(width); modal != "" {
		lines = append(lines, "", modal)
	}
	return strings.Join(lines, "\n")
}

// adminModal reads the note from the cache by id, so it always shows the
// table's current copy.
func (m *Model) adminModal(width int) string {
	a := m.admin
	if a.modalID == "" {
		return ""
	}
	note := notes.FindByID(a.notes, a.modalID)
	if note == nil {
		return ""
	}
	status := pendingBadgeStyle.Render("pending")
	if note.Approved {
		status = approvedBadgeStyle.Render("approved")
	}
	lines := []string{
		noteTitleStyle.Render(sanitizer.Line(note.Title)) + "  " + status,
		noteMetaStyle.Render(strings.Join(nonEmpty(note.SubjectName, note.CourseName, semesterLabel(note.Semester), note.CollegeName), " · ")),
		noteMetaStyle.Render(uploadedLine(note, m.now())),
		fmt.Sprintf("%d likes • %s downloads • %d comments", len(note.Likes), humanize.Comma(int64(note.DownloadCount)), len(note.Comments)),
	}
	if note.FileURL != "" {
		lines = append(lines, fieldLabelStyle.Render("File:")+" "+truncateToWidth(sanitizer.Line(note.FileURL), max(10, width-12)))
	}
	if desc := renderDescription(note.Description, max(20, width-8)); desc != "" {
		lines = append(lines, "", desc)
	}
	lines = append(lines, "", helpStyle.Render("a approve • r reject • x delete • esc close"))
	return panelBorderStyle.Width(min(width-2, 100)).Render(strings.Join(lines, "\n"))
}
