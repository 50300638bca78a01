package comment

import (
	"strings"

	"github.com/antchfx/htmlquery"
	nethtml "golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

const spoilerClass = "md-spoiler-text"

func (w *bodyWriter) text(s string) {
	if s == "" {
		return
	}
	// Keep the boundary spaces so adjacent text nodes stay separated.
	lead, trail := "", ""
	if strings.TrimLeft(s, " \t\r\n") != s {
		lead = " "
	}
	if strings.TrimRight(s, " \t\r\n") != s {
		trail = " "
	}
	s = collapseSpace(s)
	if s == "" {
		w.inline.WriteString(lead)
		return
	}
	switch {
	case w.bold > 0 && w.italic > 0:
		s = boldStyle.Inherit(italicStyle).Render(s)
	case w.bold > 0:
		s = boldStyle.Render(s)
	case w.italic > 0:
		s = italicStyle.Render(s)
	}
	w.inline.WriteString(lead + s + trail)
}

func (w *bodyWriter) inlineElement(n *nethtml.Node) {
	switch n.DataAtom {
	case atom.Br:
		w.inline.WriteString("\n")
	case atom.Strong, atom.B:
		w.bold++
		w.walk(n)
		w.bold--
	case atom.Em, atom.I:
		w.italic++
		w.walk(n)
		w.italic--
	case atom.A:
		w.inline.WriteString(linkText(w.inlineText(n), htmlquery.SelectAttr(n, "href")))
	case atom.Code, atom.Kbd, atom.Samp:
		if text := w.inlineText(n); text != "" {
			w.inline.WriteString(codeStyle.Render("`" + text + "`"))
		}
	case atom.Del, atom.S, atom.Strike:
		if text := w.inlineText(n); text != "" {
			w.inline.WriteString("~~" + text + "~~")
		}
	case atom.Sup:
		if text := w.inlineText(n); text != "" {
			w.inline.WriteString("^" + text)
		}
	case atom.Img:
		if w.opts.ShowImages {
			w.inline.WriteString(imageText(htmlquery.SelectAttr(n, "alt")))
		}
	case atom.Span:
		if hasClass(n, spoilerClass) {
			w.inline.WriteString(spoilerStyle.Render(w.inlineText(n)))
			return
		}
		w.walk(n)
	default:
		w.walk(n)
	}
}

// inlineText renders the children of n as a single collapsed line.
func (w *bodyWriter) inlineText(n *nethtml.Node) string {
	sub := w.child(w.width)
	sub.walk(n)
	return collapseSpace(sub.inline.String())
}

func linkText(text, href string) string {
	href = strings.TrimSpace(href)
	switch {
	case href == "":
		return text
	case text == "", strings.EqualFold(text, href):
		return href
	default:
		return text + " (" + href + ")"
	}
}

func imageText(alt string) string {
	alt = strings.TrimSpace(alt)
	if alt == "" {
		return imageLabel.Render("[image]")
	}
	return imageLabel.Render("[image: " + alt + "]")
}

func hasClass(n *nethtml.Node, class string) bool {
	for _, c := range strings.Fields(htmlquery.SelectAttr(n, "class")) {
		if c == class {
			return true
		}
	}
	return false
}
