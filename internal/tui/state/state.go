package state

import (
	nethtml "golang.org/x/net/html"

	tuitree "github.com/glabrego/threadfold/internal/tui/tree"
)

func ClampCursor(cursor, size int) int {
	if size <= 0 {
		return 0
	}
	if cursor >= size {
		return size - 1
	}
	if cursor < 0 {
		return 0
	}
	return cursor
}

func PageStep(height int, hasStatus bool) int {
	if height <= 0 {
		return 10
	}
	headerLines := 4
	if hasStatus {
		headerLines += 2
	}
	step := height - headerLines
	if step < 3 {
		step = 3
	}
	return step
}

func CenteredWindow(totalRows, cursor, height int) (int, int) {
	if totalRows <= 0 {
		return 0, 0
	}
	if height <= 0 || totalRows <= height {
		return 0, totalRows
	}
	cursor = ClampCursor(cursor, totalRows)
	start := cursor - height/2
	if start < 0 {
		start = 0
	}
	maxStart := totalRows - height
	if start > maxStart {
		start = maxStart
	}
	return start, start + height
}

// NextSelectable moves from cursor by step rows in the direction of its
// sign and lands on the nearest selectable row. When nothing selectable
// lies that way the cursor stays on the closest selectable row it has.
func NextSelectable(rows []tuitree.Row, cursor, step int) int {
	if len(rows) == 0 {
		return 0
	}
	dir := 1
	if step < 0 {
		dir = -1
		step = -step
	}
	if step == 0 {
		return SnapSelectable(rows, cursor)
	}
	target := ClampCursor(cursor+dir*step, len(rows))
	for i := target; i >= 0 && i < len(rows); i += dir {
		if rows[i].Selectable() {
			return i
		}
	}
	for i := target - dir; i >= 0 && i < len(rows); i -= dir {
		if rows[i].Selectable() {
			return i
		}
	}
	return ClampCursor(cursor, len(rows))
}

// SnapSelectable returns cursor if its row is selectable, else the nearest
// selectable row above it, else the nearest below.
func SnapSelectable(rows []tuitree.Row, cursor int) int {
	if len(rows) == 0 {
		return 0
	}
	cursor = ClampCursor(cursor, len(rows))
	for i := cursor; i >= 0; i-- {
		if rows[i].Selectable() {
			return i
		}
	}
	for i := cursor + 1; i < len(rows); i++ {
		if rows[i].Selectable() {
			return i
		}
	}
	return cursor
}

func FirstSelectable(rows []tuitree.Row) int {
	return NextSelectable(rows, -1, 1)
}

func LastSelectable(rows []tuitree.Row) int {
	return NextSelectable(rows, len(rows), -1)
}

// CursorForNode finds the row of node after a rebuild. If the node is no
// longer visible the cursor falls back to its nearest visible ancestor
// comment, then to fallback.
func CursorForNode(rows []tuitree.Row, node *nethtml.Node, fallback int) int {
	for cur := node; cur != nil; cur = cur.Parent {
		if idx := tuitree.IndexOf(rows, cur); idx >= 0 {
			return idx
		}
	}
	return SnapSelectable(rows, fallback)
}

// ParentRow returns the row of the comment that directly contains the row
// at cursor, or -1 for top-level rows.
func ParentRow(rows []tuitree.Row, cursor int) int {
	if cursor < 0 || cursor >= len(rows) {
		return -1
	}
	depth := rows[cursor].Depth
	for i := cursor - 1; i >= 0; i-- {
		if rows[i].Kind == tuitree.RowComment && rows[i].Depth < depth {
			return i
		}
	}
	return -1
}
