package view

import (
	"strings"

	"github.com/charmbracelet/x/ansi"

	"github.com/glabrego/threadfold/internal/thread"
	tuitheme "github.com/glabrego/threadfold/internal/tui/theme"
	tuitree "github.com/glabrego/threadfold/internal/tui/tree"
)

type RowsInput struct {
	Rows   []tuitree.Row
	Start  int
	End    int
	Cursor int
	Width  int
	// Spinner is drawn in front of loading placeholders.
	Spinner string
}

func RenderRows(in RowsInput, th tuitheme.Theme) string {
	if len(in.Rows) == 0 || in.Start >= in.End || in.Start < 0 {
		return ""
	}
	end := min(in.End, len(in.Rows))
	var b strings.Builder
	for i := in.Start; i < end; i++ {
		b.WriteString(RenderRow(in.Rows[i], i == in.Cursor, in.Width, in.Spinner, th))
		b.WriteString("\n")
	}
	return b.String()
}

// RenderRow draws one row: depth guides, cursor marker and the row's own
// content, cut to width.
func RenderRow(row tuitree.Row, active bool, width int, spinner string, th tuitheme.Theme) string {
	marker := "  "
	if active {
		marker = "> "
	}
	var line string
	switch row.Kind {
	case tuitree.RowComment:
		line = indentGuides(row.Depth, th) + marker + commentHeader(row, th)
	case tuitree.RowBody:
		line = indentGuides(row.Depth, th) + "  " + th.Body.Render(row.Label)
	case tuitree.RowPlaceholder:
		label := row.Label
		if row.State == thread.StateLoading && spinner != "" {
			label = spinner + " " + label
		}
		line = indentGuides(row.Depth, th) + marker + th.PlaceholderStyle(row.State).Render(label)
	}
	line = truncateLine(line, width)
	if active {
		return th.RenderActiveLine(true, padLine(line, width))
	}
	return line
}

func commentHeader(row tuitree.Row, th tuitheme.Theme) string {
	parts := make([]string, 0, 3)
	if row.HasControl {
		label := thread.LabelCollapsed
		if row.Open {
			label = thread.LabelExpanded
		}
		parts = append(parts, th.Control.Render(label))
	}
	author := row.Label
	if author == "" {
		author = "[deleted]"
	}
	parts = append(parts, th.Author.Render(author))
	if row.Score != "" {
		parts = append(parts, th.Score.Render(row.Score))
	}
	return strings.Join(parts, " ")
}

func indentGuides(depth int, th tuitheme.Theme) string {
	if depth <= 0 {
		return ""
	}
	var b strings.Builder
	for d := 0; d < depth; d++ {
		b.WriteString(th.DepthGuide(d).Render("│"))
		b.WriteString(strings.Repeat(" ", tuitree.IndentWidth-1))
	}
	return b.String()
}

func truncateLine(line string, width int) string {
	if width <= 0 || ansi.StringWidth(line) <= width {
		return line
	}
	return ansi.Truncate(line, width, "…")
}

func padLine(line string, width int) string {
	gap := width - ansi.StringWidth(line)
	if gap <= 0 {
		return line
	}
	return line + strings.Repeat(" ", gap)
}
