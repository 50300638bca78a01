package thread

import nethtml "golang.org/x/net/html"

const (
	LabelCollapsed = "[+++]"
	LabelExpanded  = "[---]"
)

func ControlLabel(open bool) string {
	if open {
		return LabelExpanded
	}
	return LabelCollapsed
}

// Toggle flips the open state of comment n.
//
// Closing collapses the entire subtree below n. Opening reveals exactly one
// generation: the direct replies become open and everything beneath them
// is forced closed.
func Toggle(n *nethtml.Node) {
	SetOpen(n, !IsOpen(n))
}

// SetOpen drives comment n to the given state, applying the same policy as
// Toggle. Repeated calls with the same target state leave the tree as the
// first call did.
func SetOpen(n *nethtml.Node, open bool) {
	if !open {
		CollapseSubtree(n)
		return
	}
	setOpenAttr(n, true)
	for _, child := range ChildComments(n) {
		setOpenAttr(child, true)
		for _, grandchild := range ChildComments(child) {
			CollapseSubtree(grandchild)
		}
	}
}

// CollapseSubtree closes n and every comment below it, resetting their
// controls to the collapsed glyph.
func CollapseSubtree(n *nethtml.Node) {
	setOpenAttr(n, false)
	for _, desc := range findAll(n, xpathAllComments) {
		setOpenAttr(desc, false)
	}
}

// setOpenAttr updates the disclosure attribute and the control of n in
// the same step so the two never disagree.
func setOpenAttr(n *nethtml.Node, open bool) {
	details := Disclosure(n)
	if details != nil {
		if open {
			setAttr(details, attrOpen, "")
		} else {
			removeAttr(details, attrOpen)
		}
	}
	if control := Control(n); control != nil {
		syncControl(control, open && details != nil)
	}
}

func syncControl(control *nethtml.Node, open bool) {
	setText(control, ControlLabel(open))
	if open {
		setAttr(control, attrExpanded, "true")
	} else {
		setAttr(control, attrExpanded, "false")
	}
}

// ControlExpanded reads the state a control currently advertises.
func ControlExpanded(control *nethtml.Node) bool {
	return attrValue(control, attrExpanded) == "true"
}

// Expand applies the open policy to n whatever its current state, so a
// comment that is already open has its direct replies revealed again.
func Expand(n *nethtml.Node) {
	SetOpen(n, true)
}
