package theme

import (
	"strings"
	"testing"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"

	"github.com/glabrego/threadfold/internal/thread"
)

func TestPlaceholderStyle_ByState(t *testing.T) {
	lipgloss.SetColorProfile(termenv.ANSI)
	th := Default()

	for _, state := range []thread.PlaceholderState{thread.StateIdle, thread.StateLoading, thread.StateError} {
		out := th.PlaceholderStyle(state).Render("→ More replies")
		if !strings.Contains(out, "\x1b[") {
			t.Fatalf("expected styled placeholder for %s, got %q", state, out)
		}
	}
	idle := th.PlaceholderStyle(thread.StateIdle).Render("x")
	failed := th.PlaceholderStyle(thread.StateError).Render("x")
	if idle == failed {
		t.Fatalf("expected idle and error styles to differ, both %q", idle)
	}
}

func TestDepthGuide_Cycles(t *testing.T) {
	lipgloss.SetColorProfile(termenv.ANSI)
	th := Default()

	n := len(th.DepthGuides)
	if n == 0 {
		t.Fatal("expected depth guide styles")
	}
	if th.DepthGuide(0).Render("│") != th.DepthGuide(n).Render("│") {
		t.Fatal("expected depth guides to cycle")
	}
	if got := (Theme{}).DepthGuide(3).Render("│"); got != "│" {
		t.Fatalf("expected plain guide without styles, got %q", got)
	}
}

func TestRenderActiveLine(t *testing.T) {
	lipgloss.SetColorProfile(termenv.ANSI)
	th := Default()

	if got := th.RenderActiveLine(false, "line"); got != "line" {
		t.Fatalf("expected inactive line unchanged, got %q", got)
	}
	if got := th.RenderActiveLine(true, "line"); !strings.Contains(got, "\x1b[") {
		t.Fatalf("expected styled active line, got %q", got)
	}
}
