package view

import (
	"errors"
	"strings"
	"testing"

	"github.com/charmbracelet/x/ansi"

	tuitheme "github.com/glabrego/threadfold/internal/tui/theme"
)

func TestToolbar(t *testing.T) {
	if got := Toolbar(false); !strings.Contains(got, "j/k move") {
		t.Fatalf("unexpected compact toolbar: %q", got)
	}
	if got := Toolbar(true); !strings.Contains(got, "R: resync") {
		t.Fatalf("unexpected help toolbar: %q", got)
	}
}

func TestFooter(t *testing.T) {
	th := tuitheme.Default()
	got := ansi.Strip(Footer(FooterInfo{Comments: 12, Open: 3, Placeholders: 2, Loading: 1, Resyncs: 4, Offline: true}, th))
	for _, want := range []string{"comments 12", "open 3", "more 2", "resyncs 4", "1 loading", "offline"} {
		if !strings.Contains(got, want) {
			t.Fatalf("expected %q in footer, got %q", want, got)
		}
	}
	got = ansi.Strip(Footer(FooterInfo{Comments: 1}, th))
	if strings.Contains(got, "loading") || strings.Contains(got, "offline") {
		t.Fatalf("expected no loading or offline marker, got %q", got)
	}
}

func TestMessage(t *testing.T) {
	th := tuitheme.Default()
	if got := ansi.Strip(Message(false, "", nil, th)); !strings.Contains(got, "state: idle | Ready") {
		t.Fatalf("unexpected idle message: %q", got)
	}
	if got := ansi.Strip(Message(true, "Loading replies", nil, th)); !strings.Contains(got, "state: loading | Loading replies") {
		t.Fatalf("unexpected loading message: %q", got)
	}
	if got := ansi.Strip(Message(false, "", errors.New("boom"), th)); !strings.Contains(got, "state: error | boom") {
		t.Fatalf("unexpected error message: %q", got)
	}
}

func TestHeader_Truncates(t *testing.T) {
	th := tuitheme.Default()
	got := ansi.Strip(Header("", "https://redlib.example/r/rust/comments/abc/title/", th, 20))
	if ansi.StringWidth(got) > 20 {
		t.Fatalf("expected header within 20 columns, got %q", got)
	}
	if !strings.HasPrefix(got, "threadfold") {
		t.Fatalf("expected default title, got %q", got)
	}
}
