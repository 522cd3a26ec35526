package app

import (
	"strings"
	"time"

	"charm.land/lipgloss/v2"

	"notedeck/internal/app/sanitizer"
)

type toastLevel int

const (
	toastLevelInfo toastLevel = iota
	toastLevelWarning
	toastLevelError
)

// Errors stay up longest; a confirmation only needs a glance.
var toastLifetimes = map[toastLevel]time.Duration{
	toastLevelInfo:    3 * time.Second,
	toastLevelWarning: 4 * time.Second,
	toastLevelError:   6 * time.Second,
}

func (l toastLevel) lifetime() time.Duration {
	if d, ok := toastLifetimes[l]; ok {
		return d
	}
	return toastLifetimes[toastLevelInfo]
}

func (l toastLevel) glyph() string {
	switch l {
	case toastLevelWarning:
		return "!"
	case toastLevelError:
		return "✗"
	default:
		return "✓"
	}
}

func (l toastLevel) style() lipgloss.Style {
	switch l {
	case toastLevelWarning:
		return toastWarningStyle
	case toastLevelError:
		return toastErrorStyle
	default:
		return toastInfoStyle
	}
}

func (m *Model) showInfoToast(message string) {
	m.showToast(toastLevelInfo, message)
}

func (m *Model) showWarningToast(message string) {
	m.showToast(toastLevelWarning, message)
}

func (m *Model) showErrorToast(message string) {
	m.showToast(toastLevelError, message)
}

// showToast replaces whatever toast is up. Backend messages can span lines,
// so whitespace is collapsed to keep the toast on one row.
func (m *Model) showToast(level toastLevel, message string) {
	message = strings.Join(strings.Fields(sanitizer.Line(message)), " ")
	if message == "" {
		return
	}
	m.toastText = message
	m.toastLevel = level
	m.toastUntil = m.now().Add(level.lifetime())
}

func (m *Model) clearToast() {
	m.toastText = ""
	m.toastLevel = toastLevelInfo
	m.toastUntil = time.Time{}
}

func (m *Model) toastActive(at time.Time) bool {
	if m.toastText == "" {
		return false
	}
	if at.IsZero() {
		at = m.now()
	}
	return at.Before(m.toastUntil)
}

func (m *Model) toastLine(width int) string {
	if width <= 0 || !m.toastActive(m.now()) {
		return ""
	}
	text := m.toastLevel.glyph() + " " + truncateToWidth(m.toastText, max(1, width-6))
	return lipgloss.PlaceHorizontal(width, lipgloss.Right, m.toastLevel.style().Render(" "+text+" "))
}
