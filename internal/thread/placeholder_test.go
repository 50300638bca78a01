package thread

import (
	"testing"

	"github.com/go-playground/assert/v2"
)

func TestExtractCommentID(t *testing.T) {
	tests := []struct {
		name string
		url  string
		want string
	}{
		{name: "trailing id", url: "https://redlib.example/r/rust/comments/abc/title/k3x9q2", want: "k3x9q2"},
		{name: "query", url: "https://redlib.example/r/rust/comments/abc/title/k3x9q2?context=3", want: "k3x9q2"},
		{name: "slash before query", url: "https://redlib.example/r/rust/comments/abc/title/k3x9q2/?context=3", want: "k3x9q2"},
		{name: "fragment", url: "https://redlib.example/r/rust/comments/abc/title/k3x9q2#c", want: "k3x9q2"},
		{name: "comments path", url: "/r/rust/comments/abc/title/k3x9q2/Extra", want: "k3x9q2"},
		{name: "no id", url: "https://redlib.example/", want: ""},
		{name: "empty", url: "", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, ExtractCommentID(tt.url), tt.want)
		})
	}
}

func TestPlaceholderState_String(t *testing.T) {
	assert.Equal(t, StateIdle.String(), "idle")
	assert.Equal(t, StateLoading.String(), "loading")
	assert.Equal(t, StateError.String(), "error")
}

func TestPlaceholder_RetryResetsLabel(t *testing.T) {
	s, p := liveWithPlaceholder(t, &fakeFetcher{})
	_, err := s.Begin(p)
	if err != nil {
		t.Fatalf("Begin returned error: %v", err)
	}
	p.fail(&LoadError{Kind: ErrNotFound})
	assert.Equal(t, p.State(), StateError)

	if _, err := s.Begin(p); err != nil {
		t.Fatalf("retry Begin returned error: %v", err)
	}
	assert.Equal(t, p.State(), StateLoading)
	assert.Equal(t, p.Label(), defaultPlaceholderLabel)
	assert.Equal(t, p.Err() == nil, true)
	assert.Equal(t, hasClass(p.Node(), classError), false)
	assert.Equal(t, p.Attempts(), 2)
}
