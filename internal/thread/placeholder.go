package thread

import (
	"regexp"

	nethtml "golang.org/x/net/html"
)

type PlaceholderState int

const (
	StateIdle PlaceholderState = iota
	StateLoading
	StateError
)

func (s PlaceholderState) String() string {
	switch s {
	case StateLoading:
		return "loading"
	case StateError:
		return "error"
	default:
		return "idle"
	}
}

const defaultPlaceholderLabel = "→ More replies"

// Placeholder is a wired "load more" link standing in for an unfetched
// subtree. Once it leaves Idle it never returns there: a retry goes from
// Error straight back to Loading.
type Placeholder struct {
	node     *nethtml.Node
	url      string
	targetID string
	state    PlaceholderState
	err      *LoadError
	attempts int
	removed  bool
}

func newPlaceholder(node *nethtml.Node, resolvedURL string) *Placeholder {
	return &Placeholder{
		node:     node,
		url:      resolvedURL,
		targetID: ExtractCommentID(resolvedURL),
	}
}

func (p *Placeholder) Node() *nethtml.Node { return p.node }
func (p *Placeholder) URL() string { return p.url }
func (p *Placeholder) TargetID() string { return p.targetID }
func (p *Placeholder) State() PlaceholderState { return p.state }
func (p *Placeholder) Attempts() int { return p.attempts }
func (p *Placeholder) Attached() bool { return p.node.Parent != nil }
func (p *Placeholder) Label() string { return TextContent(p.node) }

// Err returns the failure of the last attempt while in the Error state.
func (p *Placeholder) Err() error {
	if p.err == nil {
		return nil
	}
	return p.err
}

func (p *Placeholder) begin() {
	if p.state == StateError {
		removeClass(p.node, classError)
		setText(p.node, defaultPlaceholderLabel)
	}
	p.state = StateLoading
	p.err = nil
	p.attempts++
	addClass(p.node, classLoading)
}

func (p *Placeholder) fail(err *LoadError) {
	p.state = StateError
	p.err = err
	removeClass(p.node, classLoading)
	addClass(p.node, classError)
	setText(p.node, "→ "+err.Error()+" (Click to retry)")
}

var commentIDPatterns = []*regexp.Regexp{
	regexp.MustCompile(`/([a-z0-9]+)(?:/?\?|$)`),
	regexp.MustCompile(`/([a-z0-9]+)(?:/?#|$)`),
	regexp.MustCompile(`/comments/[^/]+/[^/]+/([a-z0-9]+)`),
	regexp.MustCompile(`/([a-z0-9]+)$`),
}

// ExtractCommentID pulls the target comment id out of a placeholder URL.
// The first pattern that matches wins; "" means none did.
func ExtractCommentID(rawURL string) string {
	for _, re := range commentIDPatterns {
		if m := re.FindStringSubmatch(rawURL); m != nil {
			return m[1]
		}
	}
	return ""
}
