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

type detailMode int

const (
	detailModeView detailMode = iota
	detailModeCompose
	detailModeEdit
)

type detailView struct {
	noteID      string
	note        *types.Note
	failed      bool
	errMsg      string
	cursor      int
	composer    textinput.Model
	mode        detailMode
	editingID   string
	copiedUntil time.Time
	width       int
}

func newDetailView() *detailView {
	return &detailView{composer: newComposer()}
}

func (d *detailView) resize(width int) {
	d.width = width
	d.composer.SetWidth(max(10, width-6))
}

func (d *detailView) reset(id string) {
	d.noteID = id
	d.note = nil
	d.failed = false
	d.errMsg = ""
	d.cursor = 0
	d.copiedUntil = time.Time{}
	d.stopComposing()
}

func (d *detailView) composing() bool {
	return d.mode != detailModeView
}

func (d *detailView) stopComposing() {
	d.mode = detailModeView
	d.editingID = ""
	d.composer.Blur()
	d.composer.SetValue("")
}

func (d *detailView) selectedComment() (types.Comment, bool) {
	if d.note == nil || d.cursor < 0 || d.cursor >= len(d.note.Comments) {
		return types.Comment{}, false
	}
	return d.note.Comments[d.cursor], true
}

func (d *detailView) helpText() string {
	switch d.mode {
	case detailModeCompose:
		return "enter post • esc cancel"
	case detailModeEdit:
		return "enter save • esc cancel"
	}
	if d.failed {
		return "r try again • esc back"
	}
	return "l like • d download • s share • a archive • c comment • j/k select • e edit • x delete • esc back"
}

func (m *Model) openDetail(id string) tea.Cmd {
	m.detail.reset(id)
	if cmd := m.navigate(routeDetail); cmd != nil {
		return tea.Batch(cmd, m.fetchDetail())
	}
	return m.fetchDetail()
}

func (m *Model) fetchDetail() tea.Cmd {
	if m.detail.noteID == "" {
		return nil
	}
	ctx, seq := m.beginRequest(requestDetail)
	return fetchNoteDetailCmd(m.api, ctx, seq, m.detail.noteID)
}

func (m *Model) handleNoteDetail(msg noteDetailMsg) {
	if !m.isLatestRequest(requestDetail, msg.seq) || msg.id != m.detail.noteID {
		m.logger.Debug("stale note response discarded", logging.F("seq", msg.seq), logging.F("note_id", msg.id))
		return
	}
	m.settleRequest(requestDetail, msg.seq)
	d := m.detail
	if msg.err != nil {
		if isAborted(msg.err) {
			return
		}
		m.logger.Warn("get note failed", logging.F("note_id", msg.id), logging.Err(msg.err))
		if d.note != nil && d.note.ID == msg.id {
			// refresh of a note already on screen
			m.showErrorToast(errorMessage(msg.err, "Could not refresh this note"))
			return
		}
		d.failed = true
		d.errMsg = errorMessage(msg.err, "Something went wrong loading this note.")
		return
	}
	d.failed = false
	d.errMsg = ""
	d.note = msg.note
	if d.cursor >= len(d.note.Comments) {
		d.cursor = max(0, len(d.note.Comments)-1)
	}
}

func (m *Model) likeNote(origin route, id string) tea.Cmd {
	if cmd, ok := m.requireSignIn(); !ok {
		return cmd
	}
	return toggleLikeCmd(m.api, origin, id)
}

// downloadNote saves the file and, independently, bumps the counter.
func (m *Model) downloadNote(origin route, note *types.Note) tea.Cmd {
	if note == nil {
		return nil
	}
	if cmd, ok := m.requireSignIn(); !ok {
		return cmd
	}
	cmds := []tea.Cmd{incrementDownloadCmd(m.api, origin, note.ID)}
	if strings.TrimSpace(note.FileURL) != "" {
		cmds = append(cmds, downloadFileCmd(m.api, note, m.downloadsDir))
	} else {
		m.showWarningToast("This note has no file attached")
	}
	return tea.Batch(cmds...)
}

func (m *Model) refetchOrigin(origin route) tea.Cmd {
	if origin == routeDetail {
		return m.fetchDetail()
	}
	return m.fetchNotes()
}

func (m *Model) handleLike(msg likeMsg) tea.Cmd {
	if msg.err != nil {
		m.reportError("like", msg.err, "Could not update like")
		return nil
	}
	return m.refetchOrigin(msg.origin)
}

func (m *Model) handleDownloadCount(msg downloadCountMsg) tea.Cmd {
	if msg.err != nil {
		m.reportError("increment download", msg.err, "Could not record download")
		return nil
	}
	return m.refetchOrigin(msg.origin)
}

func (m *Model) handleFileDownload(msg fileDownloadMsg) {
	if msg.err != nil {
		m.reportError("download file", msg.err, "Download failed")
		return
	}
	m.logger.Info("note downloaded", logging.F("note_id", msg.noteID), logging.F("path", msg.path))
	m.showInfoToast("Saved to " + msg.path)
}

func (m *Model) handleCommentAdded(msg commentAddedMsg) tea.Cmd {
	if msg.err != nil {
		m.reportError("add comment", msg.err, "Could not post comment")
		return nil
	}
	if msg.origin == routeBrowse {
		b := m.browse
		if note := notes.FindByID(b.notes, msg.noteID); note != nil {
			updated := note.Clone()
			updated.Comments = msg.result.Apply(note.Comments)
			b.notes = notes.ReplaceByID(b.notes, updated)
		}
		b.stopComposing()
		m.showInfoToast("Comment posted")
		return nil
	}
	d := m.detail
	if d.note == nil || d.note.ID != msg.noteID {
		return nil
	}
	updated := d.note.Clone()
	updated.Comments = msg.result.Apply(d.note.Comments)
	d.note = updated
	d.cursor = max(0, len(updated.Comments)-1)
	d.stopComposing()
	m.logger.Debug("comment added", logging.F("note_id", msg.noteID), logging.F("shape", msg.result.Kind.String()))
	return m.fetchDetail()
}

func (m *Model) handleCommentEdited(msg commentEditedMsg) {
	if msg.err != nil {
		m.reportError("edit comment", msg.err, "Could not edit comment")
		return
	}
	d := m.detail
	if d.note != nil && d.note.ID == msg.noteID {
		updated := d.note.Clone()
		updated.Comments, _ = notes.PatchCommentText(d.note.Comments, msg.commentID, msg.text)
		d.note = updated
	}
	d.stopComposing()
	m.showInfoToast("Comment updated")
}

func (m *Model) handleCommentDeleted(msg commentDeletedMsg) {
	if msg.err != nil {
		m.reportError("delete comment", msg.err, "Could not delete comment")
		return
	}
	d := m.detail
	if d.note != nil && d.note.ID == msg.noteID {
		updated := d.note.Clone()
		updated.Comments = notes.RemoveComment(d.note.Comments, msg.commentID)
		d.note = updated
		if d.cursor >= len(updated.Comments) {
			d.cursor = max(0, len(updated.Comments)-1)
		}
	}
	m.showInfoToast("Comment deleted")
}

func (m *Model) handleArchive(msg archiveMsg) {
	if msg.err != nil {
		m.reportError("archive note", msg.err, "Could not archive note")
		return
	}
	message := "Note archived"
	if msg.resp != nil && strings.TrimSpace(msg.resp.Message) != "" {
		message = msg.resp.Message
	}
	m.showInfoToast(message)
}

func (m *Model) shareLink(id string) string {
	return m.webBaseURL + "/notes/" + id
}

func (m *Model) handleDetailKey(msg tea.KeyPressMsg) tea.Cmd {
	d := m.detail
	if d.composing() {
		return m.handleDetailComposerKey(msg)
	}
	switch msg.String() {
	case "esc", "backspace":
		return m.navigate(routeBrowse)
	case "r":
		return m.fetchDetail()
	}
	if d.note == nil {
		return nil
	}
	userID := m.session.State().UserID()
	switch msg.String() {
	case "up", "k":
		if d.cursor > 0 {
			d.cursor--
		}
	case "down", "j":
		if d.cursor < len(d.note.Comments)-1 {
			d.cursor++
		}
	case "l":
		return m.likeNote(routeDetail, d.note.ID)
	case "d":
		return m.downloadNote(routeDetail, d.note)
	case "s":
		if m.copyWithStatus(m.shareLink(d.note.ID), "Link copied") {
			d.copiedUntil = m.now().Add(m.copiedDuration)
		}
	case "a":
		if cmd, ok := m.requireSignIn(); !ok {
			return cmd
		}
		return archiveNoteCmd(m.api, d.note.ID)
	case "c":
		if cmd, ok := m.requireSignIn(); !ok {
			return cmd
		}
		d.mode = detailModeCompose
		d.composer.SetValue("")
		return d.composer.Focus()
	case "e":
		comment, ok := d.selectedComment()
		if !ok || !comment.CanManage(userID) {
			return nil
		}
		d.mode = detailModeEdit
		d.editingID = comment.ID
		d.composer.SetValue(comment.Text)
		d.composer.CursorEnd()
		return d.composer.Focus()
	case "x":
		comment, ok := d.selectedComment()
		if !ok || !comment.CanManage(userID) {
			return nil
		}
		m.confirm.open(deleteCommentPrompt(d.note.ID, comment.ID))
	}
	return nil
}

func (m *Model) handleDetailComposerKey(msg tea.KeyPressMsg) tea.Cmd {
	d := m.detail
	switch msg.String() {
	case "esc":
		d.stopComposing()
		return nil
	case "enter":
		if d.note == nil {
			d.stopComposing()
			return nil
		}
		text := strings.TrimSpace(d.composer.Value())
		if text == "" {
			m.showWarningToast("Comment cannot be empty")
			return nil
		}
		if d.mode == detailModeEdit {
			return editCommentCmd(m.api, d.note.ID, d.editingID, text)
		}
		return addCommentCmd(m.api, routeDetail, d.note.ID, text)
	}
	var cmd tea.Cmd
	d.composer, cmd = d.composer.Update(msg)
	return cmd
}

func (m *Model) renderDetail(width int) string {
	d := m.detail
	if d.failed {
		return strings.Join([]string{
			"",
			errorStyle.Render("Something went wrong"),
			d.errMsg,
			"",
			helpStyle.Render("press r to try again"),
		}, "\n")
	}
	if d.note == nil {
		return m.loader.View() + " loading note"
	}
	note := d.note
	now := m.now()
	userID := m.session.State().UserID()

	heart := "♡"
	if note.LikedBy(userID) {
		heart = likedStyle.Render("♥")
	}
	lines := []string{
		noteTitleStyle.Render(sanitizer.Line(note.Title)),
		noteMetaStyle.Render(strings.Join(nonEmpty(note.SubjectName, note.CourseName, semesterLabel(note.Semester), note.CollegeName), " · ")),
		noteMetaStyle.Render(uploadedLine(note, now)),
		fmt.Sprintf("%s %d likes   ⬇ %s downloads", heart, len(note.Likes), humanize.Comma(int64(note.DownloadCount))),
	}
	if now.Before(d.copiedUntil) {
		lines = append(lines, copiedStyle.Render("Copied"))
	}
	if desc := renderDescription(note.Description, max(20, width-2)); desc != "" {
		lines = append(lines, "", desc)
	}
	lines = append(lines, "", commentHeader(len(note.Comments)))
	if len(note.Comments) == 0 {
		lines = append(lines, helpStyle.Render("No comments yet. Be the first to comment."))
	}
	for i, comment := range note.Comments {
		text := commentLine(comment, now, width-4)
		if comment.CanManage(userID) {
			text += "\n  " + helpStyle.Render("e edit • x delete")
		}
		if i == d.cursor {
			text = selectedStyle.Render("▸") + " " + text
		} else {
			text = "  " + text
		}
		lines = append(lines, text)
	}
	if d.composing() {
		label := "New comment"
		if d.mode == detailModeEdit {
			label = "Edit comment"
		}
		lines = append(lines, "", fieldFocusedStyle.Render(label), d.composer.View())
	}
	return strings.Join(lines, "\n")
}
