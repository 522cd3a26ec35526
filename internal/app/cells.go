package app

import (
	"strings"

	xansi "github.com/charmbracelet/x/ansi"
	"github.com/mattn/go-runewidth"

	"notedeck/internal/app/sanitizer"
)

// Width helpers. Styled text is measured with x/ansi so escape sequences
// count as zero cells; fitCell works on plain remote text only.

func padToWidth(text string, width int) string {
	gap := width - xansi.StringWidth(text)
	if gap <= 0 {
		return text
	}
	return text + strings.Repeat(" ", gap)
}

func truncateToWidth(text string, width int) string {
	switch {
	case width <= 0 || xansi.StringWidth(text) <= width:
		return text
	case width == 1:
		return "…"
	}
	return xansi.Truncate(text, width, "…")
}

// fitCell squeezes remote text into a table cell of exactly width cells.
func fitCell(text string, width int) string {
	if width <= 0 {
		return ""
	}
	text = strings.Join(strings.Fields(sanitizer.Line(text)), " ")
	return runewidth.FillRight(runewidth.Truncate(text, width, "…"), width)
}

func indentBlock(block string, spaces int) string {
	if spaces <= 0 {
		return block
	}
	prefix := strings.Repeat(" ", spaces)
	return prefix + strings.ReplaceAll(block, "\n", "\n"+prefix)
}
