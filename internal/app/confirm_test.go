package app

import (
	"strings"
	"testing"

	tea "charm.land/bubbletea/v2"
	xansi "github.com/charmbracelet/x/ansi"

	"notedeck/internal/types"
)

func TestConfirmDialogWidthIsCapped(t *testing.T) {
	var d confirmDialog
	d.open(deleteUploadPrompt(&types.Note{ID: "n1", Title: strings.Repeat("operating-systems-unit-", 6)}))

	_, width, _ := d.geometry(200)
	if width != confirmMaxWidth {
		t.Fatalf("expected width %d, got %d", confirmMaxWidth, width)
	}
	_, narrow, _ := d.geometry(40)
	if narrow != 40 {
		t.Fatalf("expected width clamped to the screen, got %d", narrow)
	}
}

func TestConfirmDialogWrapsLongBody(t *testing.T) {
	var d confirmDialog
	d.open(deleteUploadPrompt(&types.Note{ID: "n1", Title: strings.Repeat("operating-systems-unit-", 6)}))

	plain := xansi.Strip(d.render(confirmMaxWidth))
	lines := strings.Split(plain, "\n")
	_, _, height := d.geometry(confirmMaxWidth)
	if len(lines) != height {
		t.Fatalf("expected %d rendered rows, got %d: %q", height, len(lines), plain)
	}
	for _, line := range lines {
		if w := xansi.StringWidth(line); w > confirmMaxWidth {
			t.Fatalf("expected rows within %d cells, got %d", confirmMaxWidth, w)
		}
	}
	if !strings.Contains(plain, "[y] Delete") || !strings.Contains(plain, "[n] Cancel") {
		t.Fatalf("expected both buttons, got %q", plain)
	}
}

func TestConfirmDialogClicksHitButtonRow(t *testing.T) {
	var d confirmDialog
	d.open(deleteCommentPrompt("n1", "c1"))
	x, width, height := d.geometry(120)
	buttons := confirmTop + height - 2

	if choice, ok := d.handleClick(tea.MouseClickMsg{Button: tea.MouseLeft, X: x + 2, Y: buttons}, 120); !ok || choice != confirmAccepted {
		t.Fatalf("expected accept, got ok=%v choice=%v", ok, choice)
	}
	if choice, ok := d.handleClick(tea.MouseClickMsg{Button: tea.MouseLeft, X: x + width - 3, Y: buttons}, 120); !ok || choice != confirmDeclined {
		t.Fatalf("expected decline, got ok=%v choice=%v", ok, choice)
	}
	if choice, ok := d.handleClick(tea.MouseClickMsg{Button: tea.MouseLeft, X: x + 2, Y: buttons + 1}, 120); !ok || choice != confirmPending {
		t.Fatalf("expected border click swallowed, got ok=%v choice=%v", ok, choice)
	}
	if _, ok := d.handleClick(tea.MouseClickMsg{Button: tea.MouseLeft, X: 0, Y: 0}, 120); ok {
		t.Fatalf("expected click outside the box to pass through")
	}
}

func TestConfirmDialogKeys(t *testing.T) {
	var d confirmDialog
	prompt := deleteCommentPrompt("n1", "c1")
	d.open(prompt)

	if got := d.pending(); got != prompt.action {
		t.Fatalf("expected pending %+v, got %+v", prompt.action, got)
	}
	if choice := d.handleKey(tea.KeyPressMsg{Code: tea.KeyTab}); choice != confirmPending {
		t.Fatalf("expected tab to only move focus")
	}
	if choice := d.handleKey(tea.KeyPressMsg{Code: tea.KeyEnter}); choice != confirmDeclined {
		t.Fatalf("expected enter on cancel to decline, got %v", choice)
	}
	if choice := d.handleKey(tea.KeyPressMsg{Text: "z", Code: 'z'}); choice != confirmPending {
		t.Fatalf("expected unrelated keys to do nothing")
	}
	if choice := d.handleKey(tea.KeyPressMsg{Text: "y", Code: 'y'}); choice != confirmAccepted {
		t.Fatalf("expected y to accept, got %v", choice)
	}

	d.close()
	if d.isOpen() || d.pending() != (confirmAction{}) {
		t.Fatalf("expected close to reset the dialog")
	}
}

func TestConfirmPromptTitlesAreSanitized(t *testing.T) {
	p := adminDeletePrompt(&types.Note{ID: "n1", Title: "Paging\x1b[31m"})
	if strings.Contains(p.body, "\x1b") || strings.Contains(p.body, `\x1b`) {
		t.Fatalf("expected escape removed from prompt body, got %q", p.body)
	}
	if p.action.kind != confirmAdminDelete || p.action.noteID != "n1" {
		t.Fatalf("unexpected action %+v", p.action)
	}
}
