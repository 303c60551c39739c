package tui

import (
	"strings"
	"testing"

	"github.com/charmbracelet/glamour/styles"
	xansi "github.com/charmbracelet/x/ansi"
)

func TestMarkdownStyle_EnvOverride(t *testing.T) {
	for _, name := range []string{"light", "dark", "notty"} {
		t.Setenv("KANBAN_TUI_MD_STYLE", strings.ToUpper(name))
		if got := markdownStyle(); got != name {
			t.Fatalf("expected %s; got %q", name, got)
		}
	}
}

func TestMarkdownStyleConfig_LeavesSharedStylesAlone(t *testing.T) {
	t.Setenv("KANBAN_TUI_MD_STYLE", "dark")
	asciiProfile(t)

	before := styles.DarkStyleConfig.Document.Margin
	_ = renderCardMarkdown("# heading", 30)
	if styles.DarkStyleConfig.Document.Margin != before {
		t.Fatalf("expected the shared dark style to be untouched")
	}
}

func TestRenderCardMarkdown(t *testing.T) {
	t.Setenv("KANBAN_TUI_MD_STYLE", "dark")
	asciiProfile(t)

	if got := renderCardMarkdown("   \n", 20); got != "" {
		t.Fatalf("expected empty output for blank text, got %q", got)
	}

	out := xansi.Strip(renderCardMarkdown("**bold** and _soft_ words that wrap around", 12))
	if strings.Contains(out, "**") {
		t.Fatalf("expected emphasis markers to be rendered, got %q", out)
	}
	if strings.HasPrefix(out, "\n") || strings.HasSuffix(out, "\n") {
		t.Fatalf("expected trimmed output, got %q", out)
	}
	for _, ln := range strings.Split(out, "\n") {
		if w := xansi.StringWidth(strings.TrimRight(ln, " ")); w > 12 {
			t.Fatalf("line %q is %d wide, expected <= 12", ln, w)
		}
	}
}

func TestCardText_KeepsAtMostFourLines(t *testing.T) {
	t.Setenv("KANBAN_TUI_MD_STYLE", "dark")
	asciiProfile(t)

	out := cardText("one\n\ntwo\n\nthree\n\nfour\n\nfive\n\nsix", 20)
	lines := strings.Split(xansi.Strip(out), "\n")
	if len(lines) != maxCardLines {
		t.Fatalf("expected %d lines, got %d: %q", maxCardLines, len(lines), out)
	}
	if !strings.HasSuffix(lines[len(lines)-1], "…") {
		t.Fatalf("expected the last kept line to show truncation, got %q", lines[len(lines)-1])
	}
}
