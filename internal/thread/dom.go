package thread

import (
	"fmt"
	"strings"

	"github.com/antchfx/htmlquery"
	nethtml "golang.org/x/net/html"
)

// Class markers and attributes of the redlib comment markup.
const (
	classThread      = "thread"
	classComment     = "comment"
	classDisclosure  = "comment_right"
	classReplies     = "replies"
	classBody        = "comment_body"
	classPlaceholder = "deeper_replies"
	classControl     = "expand-children"
	classLoading     = "ajax-loading"
	classError       = "ajax-error"

	attrOpen     = "open"
	attrExpanded = "data-expanded"
)

// classPredicate builds an XPath predicate matching one token of @class.
func classPredicate(class string) string {
	return fmt.Sprintf("contains(concat(' ', normalize-space(@class), ' '), ' %s ')", class)
}

var (
	xpathAllComments    = ".//div[" + classPredicate(classComment) + "]"
	xpathNestedComments = ".//div[" + classPredicate(classComment) + "][ancestor::*[" + classPredicate(classReplies) + "]]"
	xpathDisclosure     = "./details[" + classPredicate(classDisclosure) + "]"
	xpathSummary        = xpathDisclosure + "/summary"
	xpathControl        = xpathSummary + "/span[" + classPredicate(classControl) + "]"
	xpathReplies        = xpathDisclosure + "/blockquote[" + classPredicate(classReplies) + "]"
	xpathChildComments  = xpathReplies + "/div[" + classPredicate(classComment) + "]"
	xpathDirectComments = "./div[" + classPredicate(classComment) + "]"
	xpathBody           = xpathDisclosure + "/div[" + classPredicate(classBody) + "]"
	xpathPlaceholders   = ".//a[" + classPredicate(classPlaceholder) + "]"
	xpathAuthor         = xpathSummary + "//a[" + classPredicate("comment_author") + "]"
	xpathScore          = "./div[" + classPredicate("comment_left") + "]/p[" + classPredicate("comment_score") + "]"
	xpathCreated        = xpathSummary + "//a[" + classPredicate("created") + "]"
)

func xpathCommentByID(id string) string {
	return ".//div[" + classPredicate(classComment) + "][@id=" + xpathLiteral(id) + "]"
}

// xpathLiteral quotes s for use inside an XPath expression.
func xpathLiteral(s string) string {
	if !strings.Contains(s, "'") {
		return "'" + s + "'"
	}
	if !strings.Contains(s, `"`) {
		return `"` + s + `"`
	}
	parts := strings.Split(s, "'")
	return "concat('" + strings.Join(parts, "', \"'\", '") + "')"
}

func findAll(top *nethtml.Node, expr string) []*nethtml.Node {
	if top == nil {
		return nil
	}
	return htmlquery.Find(top, expr)
}

func findOne(top *nethtml.Node, expr string) *nethtml.Node {
	if top == nil {
		return nil
	}
	return htmlquery.FindOne(top, expr)
}

func isElement(n *nethtml.Node, tag string) bool {
	return n != nil && n.Type == nethtml.ElementNode && strings.EqualFold(n.Data, tag)
}

func getAttr(n *nethtml.Node, key string) (string, bool) {
	if n == nil {
		return "", false
	}
	for _, a := range n.Attr {
		if a.Namespace == "" && strings.EqualFold(a.Key, key) {
			return a.Val, true
		}
	}
	return "", false
}

func attrValue(n *nethtml.Node, key string) string {
	v, _ := getAttr(n, key)
	return v
}

func hasAttr(n *nethtml.Node, key string) bool {
	_, ok := getAttr(n, key)
	return ok
}

func setAttr(n *nethtml.Node, key, val string) {
	for i, a := range n.Attr {
		if a.Namespace == "" && strings.EqualFold(a.Key, key) {
			n.Attr[i].Val = val
			return
		}
	}
	n.Attr = append(n.Attr, nethtml.Attribute{Key: key, Val: val})
}

func removeAttr(n *nethtml.Node, key string) {
	out := n.Attr[:0]
	for _, a := range n.Attr {
		if a.Namespace == "" && strings.EqualFold(a.Key, key) {
			continue
		}
		out = append(out, a)
	}
	n.Attr = out
}

func hasClass(n *nethtml.Node, class string) bool {
	if n == nil || n.Type != nethtml.ElementNode {
		return false
	}
	for _, c := range strings.Fields(attrValue(n, "class")) {
		if c == class {
			return true
		}
	}
	return false
}

func addClass(n *nethtml.Node, class string) {
	if hasClass(n, class) {
		return
	}
	classes := strings.Fields(attrValue(n, "class"))
	setAttr(n, "class", strings.Join(append(classes, class), " "))
}

func removeClass(n *nethtml.Node, class string) {
	if !hasClass(n, class) {
		return
	}
	classes := strings.Fields(attrValue(n, "class"))
	kept := classes[:0]
	for _, c := range classes {
		if c != class {
			kept = append(kept, c)
		}
	}
	setAttr(n, "class", strings.Join(kept, " "))
}

// closest walks up from n (inclusive) to the first element carrying class.
func closest(n *nethtml.Node, tag, class string) *nethtml.Node {
	for cur := n; cur != nil; cur = cur.Parent {
		if cur.Type != nethtml.ElementNode {
			continue
		}
		if tag != "" && !strings.EqualFold(cur.Data, tag) {
			continue
		}
		if hasClass(cur, class) {
			return cur
		}
	}
	return nil
}

func setText(n *nethtml.Node, text string) {
	for c := n.FirstChild; c != nil; {
		next := c.NextSibling
		n.RemoveChild(c)
		c = next
	}
	n.AppendChild(&nethtml.Node{Type: nethtml.TextNode, Data: text})
}

func detach(n *nethtml.Node) {
	if n != nil && n.Parent != nil {
		n.Parent.RemoveChild(n)
	}
}

// cloneNode returns a detached deep copy of n.
func cloneNode(n *nethtml.Node) *nethtml.Node {
	if n == nil {
		return nil
	}
	clone := &nethtml.Node{
		Type:      n.Type,
		DataAtom:  n.DataAtom,
		Data:      n.Data,
		Namespace: n.Namespace,
		Attr:      make([]nethtml.Attribute, len(n.Attr)),
	}
	copy(clone.Attr, n.Attr)
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		clone.AppendChild(cloneNode(c))
	}
	return clone
}

// TextContent returns the whitespace-collapsed text below n.
func TextContent(n *nethtml.Node) string {
	if n == nil {
		return ""
	}
	return strings.Join(strings.Fields(htmlquery.InnerText(n)), " ")
}
