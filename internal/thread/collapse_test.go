package thread

import (
	"testing"

	"github.com/go-playground/assert/v2"
	nethtml "golang.org/x/net/html"
)

// deepThread is c1 > c11 > c111 > c1111, plus a second reply c12 > c121.
func deepThread(t *testing.T) *Document {
	t.Helper()
	doc := mustParse(t, page(
		comment("c1",
			comment("c11", comment("c111", comment("c1111"))),
			comment("c12", comment("c121")),
		),
	))
	for _, c := range doc.Comments() {
		AttachControl(c)
	}
	return doc
}

func assertControlMatches(t *testing.T, n *nethtml.Node) {
	t.Helper()
	control := Control(n)
	if control == nil {
		t.Fatalf("comment %s has no control", CommentID(n))
	}
	if ControlExpanded(control) != IsOpen(n) {
		t.Fatalf("control of %s disagrees with open state %v", CommentID(n), IsOpen(n))
	}
	if TextContent(control) != ControlLabel(IsOpen(n)) {
		t.Fatalf("control label of %s is %q", CommentID(n), TextContent(control))
	}
}

func TestToggle_CloseCollapsesWholeSubtree(t *testing.T) {
	doc := deepThread(t)
	root := mustComment(t, doc, "c1")
	for _, c := range doc.Comments() {
		setOpenAttr(c, true)
	}

	Toggle(root)

	assert.Equal(t, IsOpen(root), false)
	for _, c := range doc.Comments() {
		assert.Equal(t, IsOpen(c), false)
		assert.Equal(t, TextContent(Control(c)), LabelCollapsed)
		assertControlMatches(t, c)
	}
}

func TestToggle_OpenRevealsOneGeneration(t *testing.T) {
	doc := deepThread(t)
	root := mustComment(t, doc, "c1")
	for _, c := range doc.Comments() {
		setOpenAttr(c, true)
	}
	setOpenAttr(root, false)

	Toggle(root)

	want := map[string]bool{
		"c1": true, "c11": true, "c12": true,
		"c111": false, "c1111": false, "c121": false,
	}
	for id, open := range want {
		n := mustComment(t, doc, id)
		if IsOpen(n) != open {
			t.Fatalf("comment %s open=%v, want %v", id, IsOpen(n), open)
		}
		assertControlMatches(t, n)
	}
}

func TestToggle_OpenIgnoresPriorGrandchildState(t *testing.T) {
	doc := deepThread(t)
	c11 := mustComment(t, doc, "c11")
	SetOpen(c11, true)
	assert.Equal(t, IsOpen(mustComment(t, doc, "c111")), true)

	root := mustComment(t, doc, "c1")
	SetOpen(root, false)
	SetOpen(root, true)

	assert.Equal(t, IsOpen(c11), true)
	assert.Equal(t, IsOpen(mustComment(t, doc, "c111")), false)
	assert.Equal(t, IsOpen(mustComment(t, doc, "c1111")), false)
}

func TestSetOpen_IdempotentForSameTarget(t *testing.T) {
	for _, open := range []bool{true, false} {
		doc := deepThread(t)
		root := mustComment(t, doc, "c1")

		SetOpen(root, open)
		once := render(t, doc)
		SetOpen(root, open)
		twice := render(t, doc)

		if once != twice {
			t.Fatalf("SetOpen(%v) twice changed the tree", open)
		}
	}
}

func TestToggle_DepthBoundOnNestedNode(t *testing.T) {
	doc := deepThread(t)
	c11 := mustComment(t, doc, "c11")
	for _, c := range doc.Comments() {
		setOpenAttr(c, true)
	}
	SetOpen(c11, false)

	Toggle(c11)

	base := Depth(c11)
	for _, c := range doc.Comments() {
		if !IsOpen(c) {
			continue
		}
		if d := Depth(c); d > base+1 && isDescendant(c, c11) {
			t.Fatalf("comment %s at depth %d is open below %s", CommentID(c), d, CommentID(c11))
		}
	}
	assert.Equal(t, IsOpen(mustComment(t, doc, "c111")), true)
	assert.Equal(t, IsOpen(mustComment(t, doc, "c1111")), false)
}

func TestToggle_LeafWithoutControl(t *testing.T) {
	doc := mustParse(t, page(leaf("l1")))
	n := mustComment(t, doc, "l1")
	assert.Equal(t, AttachControl(n) == nil, true)

	Toggle(n)
	assert.Equal(t, IsOpen(n), false)
	Toggle(n)
	assert.Equal(t, IsOpen(n), true)
}

func isDescendant(n, ancestor *nethtml.Node) bool {
	for cur := n.Parent; cur != nil; cur = cur.Parent {
		if cur == ancestor {
			return true
		}
	}
	return false
}

func TestExpand_RevealsChildrenOfOpenComment(t *testing.T) {
	doc := mustParse(t, page(comment("c1", comment("c11", comment("c111")))))
	NewSession(doc, nil).Resync()
	c1 := mustComment(t, doc, "c1")
	c11 := mustComment(t, doc, "c11")
	assert.Equal(t, IsOpen(c1), true)
	assert.Equal(t, IsOpen(c11), false)

	Expand(c1)
	assert.Equal(t, IsOpen(c11), true)
	assert.Equal(t, IsOpen(mustComment(t, doc, "c111")), false)
}
