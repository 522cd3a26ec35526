package app

import (
	"strings"
	"testing"

	"github.com/charmbracelet/glamour"
	xansi "github.com/charmbracelet/x/ansi"
)

func TestDescriptionStyleHasNoDocumentMargins(t *testing.T) {
	cfg := descriptionStyle()
	if cfg.Document.StylePrimitive.BlockPrefix != "" || cfg.Document.StylePrimitive.BlockSuffix != "" {
		t.Fatalf("expected empty document prefix and suffix")
	}
	if cfg.Document.Margin == nil || *cfg.Document.Margin != 0 {
		t.Fatalf("expected document margin 0")
	}
	if cfg.H1.StylePrimitive.BackgroundColor != nil {
		t.Fatalf("expected h1 without a background band")
	}
}

func TestRenderDescriptionWrapsToWidth(t *testing.T) {
	text := strings.Repeat("normalisation ", 20)
	out := xansi.Strip(renderDescription(text, 30))
	if !strings.Contains(out, "normalisation") {
		t.Fatalf("expected description text, got %q", out)
	}
	for _, line := range strings.Split(out, "\n") {
		if w := xansi.StringWidth(line); w > 30 {
			t.Fatalf("expected lines within 30 cells, got %d: %q", w, line)
		}
	}
}

func TestRenderDescriptionEmpty(t *testing.T) {
	if out := renderDescription(" \n\t ", 40); out != "" {
		t.Fatalf("expected empty output, got %q", out)
	}
}

func TestRenderDescriptionReusesRendererPerWidth(t *testing.T) {
	r := &descriptionRenderer{byWidth: map[int]*glamour.TermRenderer{}}
	r.render("first", 40)
	r.render("second", 40)
	r.render("third", 50)
	if n := len(r.byWidth); n != 2 {
		t.Fatalf("expected one renderer per width, got %d", n)
	}
}

func TestDescriptionPreviewCutsLongText(t *testing.T) {
	text := strings.Repeat("paging tables and frames ", 30)
	out := xansi.Strip(descriptionPreview(text, 30, 2))
	lines := strings.Split(out, "\n")
	if len(lines) != 2 {
		t.Fatalf("expected two preview rows, got %d: %q", len(lines), out)
	}
	if !strings.HasSuffix(lines[1], "…") {
		t.Fatalf("expected ellipsis on the last row, got %q", lines[1])
	}
	if short := descriptionPreview("one line", 30, 2); !strings.Contains(xansi.Strip(short), "one line") || strings.Contains(short, "…") {
		t.Fatalf("expected short text untouched, got %q", short)
	}
}
