package tree

import (
	"strings"
	"testing"

	nethtml "golang.org/x/net/html"

	"github.com/glabrego/threadfold/internal/thread"
)

const baseURL = "https://redlib.example/r/rust/comments/abc/title/"

func comment(id string, replies ...string) string {
	return `<div id="` + id + `" class="comment">` +
		`<div class="comment_left"><p class="comment_score">3</p></div>` +
		`<details class="comment_right" open>` +
		`<summary class="comment_data"><a class="comment_author" href="/u/` + id + `">u/` + id + `</a></summary>` +
		`<div class="comment_body"><div class="md"><p>body of ` + id + `</p></div></div>` +
		`<blockquote class="replies">` + strings.Join(replies, "") + `</blockquote>` +
		`</details></div>`
}

func more(id string) string {
	return `<a class="deeper_replies" href="/r/rust/comments/abc/title/` + id + `">→ More replies</a>`
}

func page(topLevel ...string) string {
	var b strings.Builder
	b.WriteString(`<html><body><div class="comments">`)
	for _, c := range topLevel {
		b.WriteString(`<div class="thread">` + c + `</div>`)
	}
	b.WriteString(`</div></body></html>`)
	return b.String()
}

func newSession(t testing.TB, markup string) *thread.Session {
	t.Helper()
	doc, err := thread.ParseString(markup, baseURL)
	if err != nil {
		t.Fatalf("ParseString returned error: %v", err)
	}
	s := thread.NewSession(doc, nil)
	s.Resync()
	return s
}

func bodyText(body *nethtml.Node, _ int) []string {
	text := thread.TextContent(body)
	if text == "" {
		return nil
	}
	return []string{text}
}
