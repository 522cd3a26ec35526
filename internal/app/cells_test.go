package app

import (
	"testing"

	xansi "github.com/charmbracelet/x/ansi"
)

func TestTruncateToWidthCountsCellsNotBytes(t *testing.T) {
	cases := []struct {
		in    string
		width int
		want  string
	}{
		{"Deadlocks", 20, "Deadlocks"},
		{"Deadlocks", 5, "Dead…"},
		{"操作系统笔记", 5, "操作…"},
		{"Deadlocks", 1, "…"},
		{"Deadlocks", 0, "Deadlocks"},
	}
	for _, tc := range cases {
		if got := truncateToWidth(tc.in, tc.width); got != tc.want {
			t.Fatalf("truncateToWidth(%q, %d) = %q, want %q", tc.in, tc.width, got, tc.want)
		}
	}
}

func TestTruncateToWidthKeepsStyling(t *testing.T) {
	styled := noteTitleStyle.Render("Normal forms and keys")
	out := truncateToWidth(styled, 8)
	if w := xansi.StringWidth(out); w != 8 {
		t.Fatalf("expected 8 cells, got %d", w)
	}
	if xansi.Strip(out) != "Normal …" {
		t.Fatalf("unexpected text %q", xansi.Strip(out))
	}
}

func TestFitCellIsExactWidth(t *testing.T) {
	for _, in := range []string{"IIT", "Indian Institute of Technology", "multi\nline\ttext", ""} {
		if w := xansi.StringWidth(fitCell(in, 10)); w != 10 {
			t.Fatalf("fitCell(%q) width %d, want 10", in, w)
		}
	}
	if got := fitCell("multi\nline", 20); got[:10] != "multi line" {
		t.Fatalf("expected whitespace collapsed, got %q", got)
	}
}

func TestPadAndIndent(t *testing.T) {
	if got := padToWidth("ab", 4); got != "ab  " {
		t.Fatalf("unexpected pad %q", got)
	}
	if got := padToWidth("abcdef", 4); got != "abcdef" {
		t.Fatalf("expected no truncation when padding, got %q", got)
	}
	if got := indentBlock("a\nb", 2); got != "  a\n  b" {
		t.Fatalf("unexpected indent %q", got)
	}
}
