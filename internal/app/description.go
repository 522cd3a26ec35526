package app

import (
	"strings"
	"sync"

	"github.com/charmbracelet/glamour"
	glamouransi "github.com/charmbracelet/glamour/ansi"
	"github.com/charmbracelet/glamour/styles"
	xansi "github.com/charmbracelet/x/ansi"

	"notedeck/internal/app/sanitizer"
)

// Note descriptions are uploader-written markdown. Renderers are costly to
// build, so one is kept per wrap width.
var descriptions = &descriptionRenderer{byWidth: map[int]*glamour.TermRenderer{}}

type descriptionRenderer struct {
	mu      sync.Mutex
	byWidth map[int]*glamour.TermRenderer
}

func (r *descriptionRenderer) renderer(width int) (*glamour.TermRenderer, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if tr, ok := r.byWidth[width]; ok {
		return tr, nil
	}
	tr, err := glamour.NewTermRenderer(
		glamour.WithStyles(descriptionStyle()),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return nil, err
	}
	r.byWidth[width] = tr
	return tr, nil
}

// render never fails; markdown that cannot be rendered is shown as wrapped
// plain text.
func (r *descriptionRenderer) render(input string, width int) string {
	input = strings.TrimSpace(sanitizer.Block(input))
	if input == "" {
		return ""
	}
	if width <= 0 {
		width = 80
	}
	tr, err := r.renderer(width)
	if err != nil {
		return xansi.Wordwrap(input, width, "")
	}
	out, err := tr.Render(input)
	if err != nil {
		return xansi.Wordwrap(input, width, "")
	}
	// glamour pads lines to the wrap width; trailing blanks only add noise
	lines := strings.Split(strings.Trim(out, "\n"), "\n")
	for i, line := range lines {
		lines[i] = strings.TrimRight(line, " ")
	}
	return xansi.Hardwrap(strings.Join(lines, "\n"), width, true)
}

func renderDescription(input string, width int) string {
	return descriptions.render(input, width)
}

// descriptionPreview keeps the first maxLines rendered rows and marks the cut.
func descriptionPreview(input string, width, maxLines int) string {
	out := renderDescription(input, width)
	if out == "" || maxLines <= 0 {
		return out
	}
	lines := strings.Split(out, "\n")
	if len(lines) <= maxLines {
		return out
	}
	lines = lines[:maxLines]
	lines[maxLines-1] = truncateToWidth(lines[maxLines-1], max(1, width-1)) + "…"
	return strings.Join(lines, "\n")
}

func descriptionStyle() glamouransi.StyleConfig {
	cfg := styles.DarkStyleConfig
	zero := uint(0)
	cfg.Document.Margin = &zero
	cfg.Document.StylePrimitive.BlockPrefix = ""
	cfg.Document.StylePrimitive.BlockSuffix = ""
	// headings inside a description should not outshout the note title
	cfg.H1.StylePrimitive.Prefix = ""
	cfg.H1.StylePrimitive.Suffix = ""
	cfg.H1.StylePrimitive.BackgroundColor = nil
	faint := true
	grey := "245"
	cfg.BlockQuote.StylePrimitive.Faint = &faint
	cfg.BlockQuote.StylePrimitive.Color = &grey
	return cfg
}
