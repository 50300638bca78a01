package thread

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/antchfx/htmlquery"
	nethtml "golang.org/x/net/html"
)

const testBaseURL = "https://redlib.example/r/rust/comments/abc/title/"

func comment(id string, replies ...string) string {
	return `<div id="` + id + `" class="comment">` +
		`<div class="comment_left"><p class="comment_score">1</p><div class="line"></div></div>` +
		`<details class="comment_right" open>` +
		`<summary class="comment_data"><a class="comment_author" href="/u/someone">u/someone</a></summary>` +
		`<div class="comment_body"><div class="md"><p>body of ` + id + `</p></div></div>` +
		`<blockquote class="replies">` + strings.Join(replies, "") + `</blockquote>` +
		`</details></div>`
}

func leaf(id string) string {
	return `<div id="` + id + `" class="comment">` +
		`<details class="comment_right" open>` +
		`<summary class="comment_data">u/someone</summary>` +
		`<div class="comment_body"><p>body of ` + id + `</p></div>` +
		`</details></div>`
}

func more(id string) string {
	return `<a class="deeper_replies" href="/r/rust/comments/abc/title/` + id + `">→ More replies</a>`
}

func page(topLevel ...string) string {
	var b strings.Builder
	b.WriteString(`<html><head><title>thread</title></head><body><div id="post"></div><div class="comments">`)
	for _, c := range topLevel {
		b.WriteString(`<div class="thread">` + c + `</div>`)
	}
	b.WriteString(`</div></body></html>`)
	return b.String()
}

func mustParse(t *testing.T, markup string) *Document {
	t.Helper()
	doc, err := ParseString(markup, testBaseURL)
	if err != nil {
		t.Fatalf("ParseString returned error: %v", err)
	}
	return doc
}

func mustComment(t *testing.T, doc *Document, id string) *nethtml.Node {
	t.Helper()
	n := doc.CommentByID(id)
	if n == nil {
		t.Fatalf("comment %q not found", id)
	}
	return n
}

func render(t *testing.T, doc *Document) string {
	t.Helper()
	var buf bytes.Buffer
	if err := doc.Render(&buf); err != nil {
		t.Fatalf("Render returned error: %v", err)
	}
	return buf.String()
}

func controlsOf(n *nethtml.Node) []*nethtml.Node {
	return htmlquery.Find(n, xpathSummary+"/span["+classPredicate(classControl)+"]")
}

func directPlaceholders(replies *nethtml.Node) []*nethtml.Node {
	return htmlquery.Find(replies, "./a["+classPredicate(classPlaceholder)+"]")
}

func commentsWithID(container *nethtml.Node, id string) []*nethtml.Node {
	return htmlquery.Find(container, "./div["+classPredicate(classComment)+"][@id='"+id+"']")
}

type fakeFetcher struct {
	pages map[string]string
	errs  map[string]error
	calls []string
}

func (f *fakeFetcher) Fetch(_ context.Context, url string) (string, error) {
	f.calls = append(f.calls, url)
	if err, ok := f.errs[url]; ok {
		return "", err
	}
	markup, ok := f.pages[url]
	if !ok {
		return "", errors.New("unexpected url " + url)
	}
	return markup, nil
}
