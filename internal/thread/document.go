package thread

import (
	"fmt"
	"io"
	"net/url"
	"strings"

	nethtml "golang.org/x/net/html"
)

// Document is a parsed thread page. Its node tree is the live tree every
// other operation in this package mutates.
type Document struct {
	root *nethtml.Node
	base *url.URL
}

// Parse reads a thread page. baseURL is used to resolve relative
// placeholder links and may be empty.
func Parse(r io.Reader, baseURL string) (*Document, error) {
	root, err := nethtml.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("parse thread markup: %w", err)
	}
	doc := &Document{root: root}
	if strings.TrimSpace(baseURL) != "" {
		base, err := url.Parse(baseURL)
		if err != nil {
			return nil, fmt.Errorf("parse base URL %q: %w", baseURL, err)
		}
		doc.base = base
	}
	return doc, nil
}

// ParseString is Parse over an in-memory string.
func ParseString(markup, baseURL string) (*Document, error) {
	return Parse(strings.NewReader(markup), baseURL)
}

func (d *Document) BaseURL() string {
	if d.base == nil {
		return ""
	}
	return d.base.String()
}

// Render writes the current tree as HTML.
func (d *Document) Render(w io.Writer) error {
	if err := nethtml.Render(w, d.root); err != nil {
		return fmt.Errorf("render thread markup: %w", err)
	}
	return nil
}

// Comments returns every comment node in document order.
func (d *Document) Comments() []*nethtml.Node {
	return findAll(d.root, xpathAllComments)
}

// TopLevel returns the comments that are not nested in any replies container.
func (d *Document) TopLevel() []*nethtml.Node {
	all := d.Comments()
	out := make([]*nethtml.Node, 0, len(all))
	for _, c := range all {
		if IsTopLevel(c) {
			out = append(out, c)
		}
	}
	return out
}

// CommentByID finds the first comment with the given id.
func (d *Document) CommentByID(id string) *nethtml.Node {
	if id == "" {
		return nil
	}
	return findOne(d.root, xpathCommentByID(id))
}

// ResolveURL resolves href against the document URL, like an anchor's
// href property would in a browser.
func (d *Document) ResolveURL(href string) string {
	href = strings.TrimSpace(href)
	if d.base == nil || href == "" {
		return href
	}
	ref, err := url.Parse(href)
	if err != nil {
		return href
	}
	return d.base.ResolveReference(ref).String()
}

func IsComment(n *nethtml.Node) bool {
	return isElement(n, "div") && hasClass(n, classComment)
}

func CommentID(n *nethtml.Node) string {
	return attrValue(n, "id")
}

// IsTopLevel reports whether comment n sits outside every replies container.
func IsTopLevel(n *nethtml.Node) bool {
	for cur := n.Parent; cur != nil; cur = cur.Parent {
		if hasClass(cur, classReplies) {
			return false
		}
	}
	return true
}

// Depth counts the comments enclosing n.
func Depth(n *nethtml.Node) int {
	depth := 0
	for cur := n.Parent; cur != nil; cur = cur.Parent {
		if IsComment(cur) {
			depth++
		}
	}
	return depth
}

// Disclosure is the details element whose open attribute carries the
// comment's collapse state.
func Disclosure(n *nethtml.Node) *nethtml.Node { return findOne(n, xpathDisclosure) }

func Summary(n *nethtml.Node) *nethtml.Node { return findOne(n, xpathSummary) }

func Body(n *nethtml.Node) *nethtml.Node { return findOne(n, xpathBody) }

// Replies returns the comment's own replies container, or nil for a leaf.
func Replies(n *nethtml.Node) *nethtml.Node { return findOne(n, xpathReplies) }

// ChildComments returns the direct reply comments of n in reply order.
func ChildComments(n *nethtml.Node) []*nethtml.Node { return findAll(n, xpathChildComments) }

// Control returns the toggle control attached to n, if any.
func Control(n *nethtml.Node) *nethtml.Node { return findOne(n, xpathControl) }

// IsOpen reads the open state straight from the disclosure attribute.
func IsOpen(n *nethtml.Node) bool {
	return hasAttr(Disclosure(n), attrOpen)
}

// IsPlaceholder reports whether n is a "load more" link.
func IsPlaceholder(n *nethtml.Node) bool {
	return isElement(n, "a") && hasClass(n, classPlaceholder)
}

// Author is the display name in the comment header. Markup without an
// author link falls back to the header text.
func Author(n *nethtml.Node) string {
	if a := findOne(n, xpathAuthor); a != nil {
		return TextContent(a)
	}
	summary := Summary(n)
	if summary == nil {
		return ""
	}
	text := TextContent(summary)
	if control := Control(n); control != nil {
		text = strings.TrimSpace(strings.TrimPrefix(text, TextContent(control)))
	}
	return text
}

func Score(n *nethtml.Node) string {
	return TextContent(findOne(n, xpathScore))
}

// Permalink is the absolute URL of comment n: the header's timestamp
// link when there is one, otherwise the document URL plus the id.
func (d *Document) Permalink(n *nethtml.Node) string {
	if a := findOne(n, xpathCreated); a != nil {
		if href := attrValue(a, "href"); href != "" {
			return d.ResolveURL(href)
		}
	}
	id := CommentID(n)
	if id == "" || d.base == nil {
		return ""
	}
	return d.ResolveURL(id + "/")
}
