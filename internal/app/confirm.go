package app

import (
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	xansi "github.com/charmbracelet/x/ansi"

	"notedeck/internal/app/sanitizer"
	"notedeck/internal/types"
)

type confirmKind int

const (
	confirmDeleteComment confirmKind = iota + 1
	confirmDeleteUpload
	confirmDeleteAccount
	confirmAdminDelete
)

// confirmAction is what runs when the dialog is accepted.
type confirmAction struct {
	kind      confirmKind
	noteID    string
	commentID string
}

// confirmPrompt is a destructive action waiting for a yes.
type confirmPrompt struct {
	title  string
	body   string
	verb   string
	action confirmAction
}

func deleteCommentPrompt(noteID, commentID string) confirmPrompt {
	return confirmPrompt{
		title:  "Delete comment",
		body:   "Delete this comment? This cannot be undone.",
		verb:   "Delete",
		action: confirmAction{kind: confirmDeleteComment, noteID: noteID, commentID: commentID},
	}
}

func deleteUploadPrompt(note *types.Note) confirmPrompt {
	return confirmPrompt{
		title:  "Delete note",
		body:   fmt.Sprintf("Delete %q? This cannot be undone.", sanitizer.Line(note.Title)),
		verb:   "Delete",
		action: confirmAction{kind: confirmDeleteUpload, noteID: note.ID},
	}
}

func deleteAccountPrompt() confirmPrompt {
	return confirmPrompt{
		title:  "Delete account",
		body:   "Delete your account and all of its data? This cannot be undone.",
		verb:   "Delete",
		action: confirmAction{kind: confirmDeleteAccount},
	}
}

func adminDeletePrompt(note *types.Note) confirmPrompt {
	return confirmPrompt{
		title:  "Delete note",
		body:   fmt.Sprintf("Delete %q for everyone? This cannot be undone.", sanitizer.Line(note.Title)),
		verb:   "Delete",
		action: confirmAction{kind: confirmAdminDelete, noteID: note.ID},
	}
}

type confirmChoice int

const (
	confirmPending confirmChoice = iota
	confirmAccepted
	confirmDeclined
)

const (
	confirmMaxWidth = 60
	confirmMinWidth = 28
	// rows above the dialog: the header line and one blank line
	confirmTop = 2
)

// confirmDialog is modal: while open it takes every key and replaces the
// route body.
type confirmDialog struct {
	prompt   *confirmPrompt
	onCancel bool
}

func (d *confirmDialog) open(p confirmPrompt) {
	d.prompt = &p
	d.onCancel = false
}

func (d *confirmDialog) close() {
	d.prompt = nil
	d.onCancel = false
}

func (d *confirmDialog) isOpen() bool {
	return d.prompt != nil
}

// pending returns the action to run on accept; zero when closed.
func (d *confirmDialog) pending() confirmAction {
	if d.prompt == nil {
		return confirmAction{}
	}
	return d.prompt.action
}

func (d *confirmDialog) handleKey(msg tea.KeyPressMsg) confirmChoice {
	switch msg.String() {
	case "y":
		return confirmAccepted
	case "n", "esc", "q":
		return confirmDeclined
	case "tab", "left", "right", "h", "l":
		d.onCancel = !d.onCancel
	case "enter":
		if d.onCancel {
			return confirmDeclined
		}
		return confirmAccepted
	}
	return confirmPending
}

// handleClick maps a left click on the button row to a choice. Clicks
// elsewhere inside the box are swallowed; ok is false outside it.
func (d *confirmDialog) handleClick(msg tea.MouseClickMsg, screenWidth int) (confirmChoice, bool) {
	if !d.isOpen() || msg.Button != tea.MouseLeft {
		return confirmPending, false
	}
	x, width, height := d.geometry(screenWidth)
	if msg.X < x || msg.X >= x+width || msg.Y < confirmTop || msg.Y >= confirmTop+height {
		return confirmPending, false
	}
	if msg.Y != confirmTop+height-2 || msg.X == x || msg.X == x+width-1 {
		return confirmPending, true
	}
	if msg.X < x+width/2 {
		return confirmAccepted, true
	}
	return confirmDeclined, true
}

func (d *confirmDialog) geometry(screenWidth int) (x, width, height int) {
	p := d.prompt
	widest := max(xansi.StringWidth(p.title), xansi.StringWidth(p.body), len(p.verb)+len("Cancel")+10)
	width = min(confirmMaxWidth, max(confirmMinWidth, widest+4))
	if screenWidth > 0 {
		width = min(width, screenWidth)
	}
	// border + title + body + blank + buttons + border
	height = 5 + len(d.bodyLines(width-4))
	x = max(0, (screenWidth-width)/2)
	return x, width, height
}

func (d *confirmDialog) bodyLines(width int) []string {
	if d.prompt.body == "" {
		return nil
	}
	return strings.Split(xansi.Hardwrap(d.prompt.body, max(1, width), true), "\n")
}

func (d *confirmDialog) render(screenWidth int) string {
	if !d.isOpen() {
		return ""
	}
	x, width, _ := d.geometry(screenWidth)
	inner := max(1, width-4)
	row := func(style func(...string) string, text string) string {
		return style(" " + padToWidth(truncateToWidth(text, inner), inner) + " ")
	}
	lines := []string{row(contextMenuHeaderStyle.Render, d.prompt.title)}
	for _, line := range d.bodyLines(inner) {
		lines = append(lines, row(menuDropStyle.Render, line))
	}
	lines = append(lines, row(menuDropStyle.Render, ""))

	half := inner / 2
	accept := padToWidth("[y] "+d.prompt.verb, half)
	cancel := padToWidth("[n] Cancel", inner-half)
	if d.onCancel {
		accept, cancel = menuDropStyle.Render(accept), selectedStyle.Render(cancel)
	} else {
		accept, cancel = selectedStyle.Render(accept), menuDropStyle.Render(cancel)
	}
	lines = append(lines, menuDropStyle.Render(" ")+accept+cancel+menuDropStyle.Render(" "))

	return indentBlock(confirmDialogBorderStyle.Render(strings.Join(lines, "\n")), x)
}
