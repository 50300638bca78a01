package comment

import (
	"fmt"
	"strings"

	"github.com/antchfx/htmlquery"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/charmbracelet/x/ansi"
	nethtml "golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

func (w *bodyWriter) walk(n *nethtml.Node) {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		switch c.Type {
		case nethtml.TextNode:
			w.text(c.Data)
		case nethtml.ElementNode:
			w.element(c)
		}
	}
}

func (w *bodyWriter) element(n *nethtml.Node) {
	switch n.DataAtom {
	case atom.Script, atom.Style, atom.Noscript:
	case atom.P, atom.Div:
		w.flush()
		w.walk(n)
		w.flush()
	case atom.H1, atom.H2, atom.H3, atom.H4, atom.H5, atom.H6:
		w.flush()
		w.block(w.heading(n))
	case atom.Blockquote:
		w.flush()
		w.block(w.quote(n))
	case atom.Ul, atom.Ol:
		w.flush()
		w.block(w.list(n, w.listDepth+1))
	case atom.Pre:
		w.flush()
		w.block(preformatted(n))
	case atom.Table:
		w.flush()
		w.block(w.table(n))
	case atom.Hr:
		w.flush()
		w.block([]string{strings.Repeat("─", min(w.width, 24))})
	default:
		w.inlineElement(n)
	}
}

func (w *bodyWriter) heading(n *nethtml.Node) []string {
	lines := wrap(w.inlineText(n), w.width)
	for i, line := range lines {
		lines[i] = headingStyle.Render(line)
	}
	return lines
}

func (w *bodyWriter) quote(n *nethtml.Node) []string {
	inner := w.child(w.width - 2).render(n)
	out := make([]string, len(inner))
	for i, line := range inner {
		if line != "" {
			out[i] = quotePrefix + quoteText.Render(line)
		}
	}
	return out
}

// list renders ul/ol at depth. Nested lists carry their own indent, so
// their lines are appended to the item unchanged.
func (w *bodyWriter) list(n *nethtml.Node, depth int) []string {
	ordered := n.DataAtom == atom.Ol
	indent := strings.Repeat("  ", depth-1)
	var lines []string
	index := 0
	for item := n.FirstChild; item != nil; item = item.NextSibling {
		if item.Type != nethtml.ElementNode || item.DataAtom != atom.Li {
			continue
		}
		index++
		marker := bulletFor(depth)
		if ordered {
			marker = fmt.Sprintf("%d. ", index)
		}
		first := indent + marker
		rest := indent + strings.Repeat(" ", ansi.StringWidth(marker))

		body := w.child(w.width - ansi.StringWidth(first))
		body.listDepth = depth
		var nested []*nethtml.Node
		for c := item.FirstChild; c != nil; c = c.NextSibling {
			if c.DataAtom == atom.Ul || c.DataAtom == atom.Ol {
				nested = append(nested, c)
				continue
			}
			if c.Type == nethtml.TextNode {
				body.text(c.Data)
			} else if c.Type == nethtml.ElementNode {
				body.element(c)
			}
		}
		body.flush()
		for i, line := range joinBlocks(body.blocks) {
			switch {
			case i == 0:
				lines = append(lines, first+line)
			case line == "":
				lines = append(lines, "")
			default:
				lines = append(lines, rest+line)
			}
		}
		for _, sub := range nested {
			lines = append(lines, w.list(sub, depth+1)...)
		}
	}
	return lines
}

func bulletFor(depth int) string {
	switch depth {
	case 1:
		return "• "
	case 2:
		return "◦ "
	default:
		return "▪ "
	}
}

func preformatted(n *nethtml.Node) []string {
	text := strings.ReplaceAll(htmlquery.InnerText(n), "\r\n", "\n")
	raw := strings.Split(text, "\n")
	out := make([]string, len(raw))
	for i, line := range raw {
		if line = strings.TrimRight(line, " \t"); line != "" {
			out[i] = "    " + line
		}
	}
	return trimBlankEdges(out)
}

// table draws a markdown table with a rounded border. A first row made of
// th cells becomes the header.
func (w *bodyWriter) table(n *nethtml.Node) []string {
	var header []string
	var rows [][]string
	for i, tr := range htmlquery.Find(n, ".//tr") {
		cells := htmlquery.Find(tr, "./th|./td")
		if len(cells) == 0 {
			continue
		}
		texts := make([]string, len(cells))
		for j, cell := range cells {
			texts[j] = w.inlineText(cell)
		}
		if i == 0 && htmlquery.FindOne(tr, "./th") != nil {
			header = texts
			continue
		}
		rows = append(rows, texts)
	}
	if header == nil && len(rows) == 0 {
		return nil
	}
	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(tableBorder).
		Rows(rows...)
	if header != nil {
		t = t.Headers(header...)
	}
	return strings.Split(strings.TrimRight(t.Render(), "\n"), "\n")
}
