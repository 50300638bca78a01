package thread

import nethtml "golang.org/x/net/html"

// Registry records which comment nodes have been initialized. It is keyed
// by node identity, so a clone carrying an already-seen id is still new.
// Entries are never removed; a registry lives as long as its document.
type Registry struct {
	seen map[*nethtml.Node]struct{}
}

func NewRegistry() *Registry {
	return &Registry{seen: make(map[*nethtml.Node]struct{})}
}

func (r *Registry) Seen(n *nethtml.Node) bool {
	_, ok := r.seen[n]
	return ok
}

func (r *Registry) Len() int { return len(r.seen) }

// EnsureInitialized attaches a toggle control to an unseen comment and
// records it. It returns false when n was already initialized.
func (r *Registry) EnsureInitialized(n *nethtml.Node) bool {
	if n == nil || r.Seen(n) {
		return false
	}
	AttachControl(n)
	r.seen[n] = struct{}{}
	return true
}

// AttachControl inserts the toggle control as the first child of the
// comment summary. Comments without a summary or without a replies
// container get none. An existing control is reused and resynced.
func AttachControl(n *nethtml.Node) *nethtml.Node {
	summary := Summary(n)
	if summary == nil || Replies(n) == nil {
		return nil
	}
	if control := Control(n); control != nil {
		syncControl(control, IsOpen(n))
		return control
	}
	control := &nethtml.Node{
		Type: nethtml.ElementNode,
		Data: "span",
		Attr: []nethtml.Attribute{{Key: "class", Val: classControl}},
	}
	syncControl(control, IsOpen(n))
	summary.InsertBefore(control, summary.FirstChild)
	return control
}
