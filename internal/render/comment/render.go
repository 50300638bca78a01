package comment

import (
	"html"
	"regexp"
	"strings"

	"github.com/antchfx/htmlquery"
	"github.com/charmbracelet/x/ansi"
	nethtml "golang.org/x/net/html"
)

var reHTTPURL = regexp.MustCompile(`https?://[^\s)]+`)

type Options struct {
	StyleLinks bool
	ShowImages bool
}

var DefaultOptions = Options{
	StyleLinks: true,
	ShowImages: true,
}

// bodyWriter walks a comment body. Inline content accumulates in inline
// until a block element flushes it into blocks; blocks are joined with
// one blank line.
type bodyWriter struct {
	width     int
	opts      Options
	listDepth int

	blocks [][]string
	inline strings.Builder

	bold   int
	italic int
}

// Lines renders a comment body element as wrapped terminal lines.
func Lines(body *nethtml.Node, width int) []string {
	return LinesWithOptions(body, width, DefaultOptions)
}

func LinesWithOptions(body *nethtml.Node, width int, opts Options) []string {
	if body == nil {
		return nil
	}
	w := newBodyWriter(width, opts)
	lines := w.render(body)
	if opts.StyleLinks {
		lines = styleLinks(lines)
	}
	return lines
}

// FromMarkup renders a standalone HTML fragment.
func FromMarkup(raw string, width int, opts Options) []string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	doc, err := htmlquery.Parse(strings.NewReader("<html><body>" + raw + "</body></html>"))
	if err != nil {
		return wrap(collapseSpace(html.UnescapeString(raw)), width)
	}
	body := htmlquery.FindOne(doc, "//body")
	if body == nil {
		return wrap(collapseSpace(html.UnescapeString(raw)), width)
	}
	return LinesWithOptions(body, width, opts)
}

func newBodyWriter(width int, opts Options) *bodyWriter {
	return &bodyWriter{width: max(1, width), opts: opts}
}

// child is a writer for nested content at a narrower width.
func (w *bodyWriter) child(width int) *bodyWriter {
	c := newBodyWriter(width, w.opts)
	c.listDepth = w.listDepth
	return c
}

func (w *bodyWriter) render(n *nethtml.Node) []string {
	w.walk(n)
	w.flush()
	return joinBlocks(w.blocks)
}

func (w *bodyWriter) flush() {
	raw := w.inline.String()
	w.inline.Reset()
	var lines []string
	for _, line := range strings.Split(raw, "\n") {
		line = collapseSpace(line)
		if line == "" {
			continue
		}
		lines = append(lines, wrap(line, w.width)...)
	}
	w.block(lines)
}

func (w *bodyWriter) block(lines []string) {
	if len(lines) > 0 {
		w.blocks = append(w.blocks, lines)
	}
}

func joinBlocks(blocks [][]string) []string {
	var out []string
	for i, b := range blocks {
		if i > 0 {
			out = append(out, "")
		}
		out = append(out, b...)
	}
	return out
}

func wrap(text string, width int) []string {
	if text == "" {
		return nil
	}
	if width < 1 {
		return []string{text}
	}
	lines := strings.Split(ansi.Wrap(text, width, ""), "\n")
	for i, line := range lines {
		lines[i] = strings.TrimSpace(line)
	}
	return lines
}

func collapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func styleLinks(lines []string) []string {
	if len(lines) == 0 {
		return nil
	}
	out := make([]string, len(lines))
	for i, line := range lines {
		out[i] = reHTTPURL.ReplaceAllStringFunc(line, func(m string) string {
			return linkStyle.Render(m)
		})
	}
	return out
}

func trimBlankEdges(lines []string) []string {
	start, end := 0, len(lines)
	for start < end && strings.TrimSpace(lines[start]) == "" {
		start++
	}
	for end > start && strings.TrimSpace(lines[end-1]) == "" {
		end--
	}
	return lines[start:end]
}
