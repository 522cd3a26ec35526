package app

import (
	"strings"

	"charm.land/bubbles/v2/textinput"
	tea "charm.land/bubbletea/v2"

	"notedeck/internal/app/sanitizer"
	"notedeck/internal/notes"
)

const autocompleteMaxRows = 6

type autocompleteEvent int

const (
	autocompleteNone autocompleteEvent = iota
	autocompleteSelected
	autocompleteCleared
)

// AutocompleteInput is a labelled text field with a dropdown of fixed
// options. Typing only narrows the dropdown; the committed value changes
// when an option is selected or the field is cleared.
type AutocompleteInput struct {
	label     string
	input     textinput.Model
	options   []string
	value     string
	open      bool
	highlight int
}

func NewAutocompleteInput(label, placeholder string) *AutocompleteInput {
	input := textinput.New()
	input.Prompt = ""
	input.Placeholder = placeholder
	return &AutocompleteInput{label: label, input: input}
}

func (a *AutocompleteInput) Label() string {
	return a.label
}

// Value is the committed filter value.
func (a *AutocompleteInput) Value() string {
	return a.value
}

func (a *AutocompleteInput) Buffer() string {
	return a.input.Value()
}

// SetValue resynchronises the buffer after the value changed elsewhere. The
// committed value is sent back to the backend as is; the buffer only ever
// holds printable text.
func (a *AutocompleteInput) SetValue(value string) {
	a.value = value
	a.input.SetValue(sanitizer.Line(value))
	a.input.CursorEnd()
	a.highlight = 0
}

func (a *AutocompleteInput) SetOptions(options []string) {
	a.options = append([]string(nil), options...)
	a.highlight = 0
}

func (a *AutocompleteInput) SetWidth(width int) {
	a.input.SetWidth(max(1, width))
}

func (a *AutocompleteInput) Focused() bool {
	return a.input.Focused()
}

func (a *AutocompleteInput) Open() bool {
	return a.open
}

func (a *AutocompleteInput) Focus() tea.Cmd {
	a.open = true
	a.highlight = 0
	return a.input.Focus()
}

// Blur is the terminal equivalent of clicking outside: the dropdown closes.
func (a *AutocompleteInput) Blur() {
	a.open = false
	a.input.Blur()
}

// Matches is the dropdown content for the current buffer.
func (a *AutocompleteInput) Matches() []string {
	return notes.MatchOptions(a.options, a.input.Value())
}

func (a *AutocompleteInput) HandleKey(msg tea.KeyPressMsg) (autocompleteEvent, tea.Cmd) {
	switch msg.String() {
	case "down", "ctrl+n":
		a.open = true
		if matches := a.Matches(); a.highlight < len(matches)-1 {
			a.highlight++
		}
		return autocompleteNone, nil
	case "up", "ctrl+p":
		if a.highlight > 0 {
			a.highlight--
		}
		return autocompleteNone, nil
	case "enter":
		matches := a.Matches()
		if !a.open || len(matches) == 0 {
			return autocompleteNone, nil
		}
		a.SetValue(matches[min(a.highlight, len(matches)-1)])
		a.open = false
		return autocompleteSelected, nil
	case "ctrl+u":
		a.SetValue("")
		a.open = true
		return autocompleteCleared, nil
	}
	before := a.input.Value()
	var cmd tea.Cmd
	a.input, cmd = a.input.Update(msg)
	if a.input.Value() != before {
		a.open = true
		a.highlight = 0
	}
	return autocompleteNone, cmd
}

func (a *AutocompleteInput) View(width int) string {
	label := fieldLabelStyle.Render(a.label + ":")
	if a.input.Focused() {
		label = fieldFocusedStyle.Render(a.label + ":")
	}
	lines := []string{label + " " + a.input.View()}
	if !a.open || !a.input.Focused() {
		return strings.Join(lines, "\n")
	}
	matches := a.Matches()
	if len(matches) == 0 {
		lines = append(lines, "  "+helpStyle.Render("no matches"))
		return strings.Join(lines, "\n")
	}
	start := 0
	if a.highlight >= autocompleteMaxRows {
		start = a.highlight - autocompleteMaxRows + 1
	}
	end := min(len(matches), start+autocompleteMaxRows)
	for i := start; i < end; i++ {
		row := "  " + truncateToWidth(sanitizer.Line(matches[i]), max(1, width-2))
		if i == a.highlight {
			row = dropdownHighlightStyle.Render(row)
		}
		lines = append(lines, row)
	}
	return strings.Join(lines, "\n")
}
