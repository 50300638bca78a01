package tree

import (
	"strings"

	nethtml "golang.org/x/net/html"

	"github.com/glabrego/threadfold/internal/thread"
)

type RowKind string

const (
	RowComment     RowKind = "comment"
	RowBody        RowKind = "body"
	RowPlaceholder RowKind = "placeholder"
)

// Row is one screen line of the thread view. Node is the comment for
// comment and body rows and the link for placeholder rows.
type Row struct {
	Kind       RowKind
	Node       *nethtml.Node
	Depth      int
	Label      string
	Score      string
	Open       bool
	HasControl bool
	State      thread.PlaceholderState
}

// Selectable reports whether the cursor may rest on the row.
func (r Row) Selectable() bool {
	return r.Kind != RowBody
}

type Source interface {
	Document() *thread.Document
	Placeholder(node *nethtml.Node) *thread.Placeholder
}

type BuildOptions struct {
	Width      int
	HideBodies bool
	RenderBody func(body *nethtml.Node, width int) []string
}

// IndentWidth is the number of columns each nesting level takes.
const IndentWidth = 2

// BuildRows flattens the visible part of the thread. A closed comment
// contributes only its header; an open one adds its body and then its
// replies container in order, placeholders included. A comment without a
// control can never be opened, so its body is always shown.
func BuildRows(src Source, opts BuildOptions) []Row {
	if src == nil || src.Document() == nil {
		return nil
	}
	b := builder{src: src, opts: opts}
	for _, c := range src.Document().TopLevel() {
		b.comment(c, 0)
	}
	return b.rows
}

type builder struct {
	src  Source
	opts BuildOptions
	rows []Row
}

func (b *builder) comment(c *nethtml.Node, depth int) {
	open := thread.IsOpen(c)
	hasControl := thread.Control(c) != nil
	b.rows = append(b.rows, Row{
		Kind:       RowComment,
		Node:       c,
		Depth:      depth,
		Label:      thread.Author(c),
		Score:      thread.Score(c),
		Open:       open,
		HasControl: hasControl,
	})
	if !open && hasControl {
		return
	}
	if !b.opts.HideBodies && b.opts.RenderBody != nil {
		width := b.opts.Width - (depth+1)*IndentWidth
		for _, line := range b.opts.RenderBody(thread.Body(c), max(1, width)) {
			b.rows = append(b.rows, Row{Kind: RowBody, Node: c, Depth: depth + 1, Label: line})
		}
	}
	if !open {
		return
	}
	replies := thread.Replies(c)
	if replies == nil {
		return
	}
	for child := replies.FirstChild; child != nil; child = child.NextSibling {
		switch {
		case thread.IsComment(child):
			b.comment(child, depth+1)
		case thread.IsPlaceholder(child):
			b.placeholder(child, depth+1)
		}
	}
}

func (b *builder) placeholder(link *nethtml.Node, depth int) {
	row := Row{
		Kind:  RowPlaceholder,
		Node:  link,
		Depth: depth,
		Label: strings.TrimSpace(thread.TextContent(link)),
	}
	if p := b.src.Placeholder(link); p != nil {
		row.State = p.State()
	}
	b.rows = append(b.rows, row)
}

// IndexOf returns the row for node, preferring a selectable one, or -1.
func IndexOf(rows []Row, node *nethtml.Node) int {
	for i, row := range rows {
		if row.Node == node && row.Selectable() {
			return i
		}
	}
	return -1
}

// CommentFor walks up from node to the nearest row-bearing comment.
func CommentFor(node *nethtml.Node) *nethtml.Node {
	for cur := node; cur != nil; cur = cur.Parent {
		if thread.IsComment(cur) {
			return cur
		}
	}
	return nil
}
