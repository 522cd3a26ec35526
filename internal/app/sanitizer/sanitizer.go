// Package sanitizer strips terminal control sequences and control characters
// from text the backend hands us, so a crafted title or comment cannot move
// the cursor, recolor the screen or write the clipboard.
package sanitizer

import (
	"strings"

	"github.com/charmbracelet/x/ansi"
)

type Config struct {
	AllowNewlines      bool
	ReplaceNewlineWith string
	// TabWidth expands tabs to spaces. Zero drops them.
	TabWidth  int
	MaxLength int
}

type Sanitizer struct {
	config Config
	tab    string
}

func New(config Config) *Sanitizer {
	return &Sanitizer{config: config, tab: strings.Repeat(" ", max(0, config.TabWidth))}
}

// LineConfig suits table cells, titles and names.
func LineConfig() Config {
	return Config{ReplaceNewlineWith: " ", TabWidth: 1}
}

// BlockConfig suits descriptions and comment bodies.
func BlockConfig() Config {
	return Config{AllowNewlines: true, TabWidth: 4}
}

var (
	line  = New(LineConfig())
	block = New(BlockConfig())
)

func Line(input string) string {
	return line.Sanitize(input)
}

func Block(input string) string {
	return block.Sanitize(input)
}

func (s *Sanitizer) Sanitize(input string) string {
	if input == "" {
		return input
	}
	input = strings.ReplaceAll(input, "\r\n", "\n")
	input = ansi.Strip(input)

	var b strings.Builder
	b.Grow(len(input))
	count := 0
	for _, r := range input {
		if s.config.MaxLength > 0 && count >= s.config.MaxLength {
			break
		}
		switch {
		case r == '\n':
			if s.config.AllowNewlines {
				b.WriteRune(r)
			} else {
				b.WriteString(s.config.ReplaceNewlineWith)
			}
		case r == '\t':
			b.WriteString(s.tab)
		case r < 0x20 || r == 0x7f || (r >= 0x80 && r < 0xa0):
			continue
		default:
			b.WriteRune(r)
		}
		count++
	}
	return b.String()
}
