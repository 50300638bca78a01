package thread

import (
	"go.uber.org/zap"
	nethtml "golang.org/x/net/html"
)

// Session owns the per-page state: the live document, the identity
// registry and the table of wired placeholders. Every method must be
// called from the goroutine that owns the document; only Task.Run may run
// elsewhere.
type Session struct {
	doc          *Document
	registry     *Registry
	placeholders map[*nethtml.Node]*Placeholder
	fetcher      Fetcher
	signatures   []string
	logger       *zap.Logger
	resyncs      int
}

type Option func(*Session)

func WithLogger(logger *zap.Logger) Option {
	return func(s *Session) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithChallengeSignatures replaces the markers that identify a challenge
// page. An empty list keeps the defaults.
func WithChallengeSignatures(signatures []string) Option {
	return func(s *Session) {
		if len(signatures) > 0 {
			s.signatures = append([]string(nil), signatures...)
		}
	}
}

func NewSession(doc *Document, fetcher Fetcher, opts ...Option) *Session {
	s := &Session{
		doc:          doc,
		registry:     NewRegistry(),
		placeholders: make(map[*nethtml.Node]*Placeholder),
		fetcher:      fetcher,
		signatures:   append([]string(nil), DefaultChallengeSignatures...),
		logger:       zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Session) Document() *Document { return s.doc }

func (s *Session) Registry() *Registry { return s.registry }

// Resyncs counts completed Resync passes.
func (s *Session) Resyncs() int { return s.resyncs }

type ResyncStats struct {
	Collapsed   int
	Initialized int
	Wired       int
}

// Resync normalizes the whole document: every nested comment is closed,
// every comment not yet seen is initialized (top-level ones open) and
// every placeholder not yet wired is wired. Running it again on an
// unchanged tree changes nothing.
func (s *Session) Resync() ResyncStats {
	var stats ResyncStats
	for _, comment := range findAll(s.doc.root, xpathNestedComments) {
		setOpenAttr(comment, false)
		stats.Collapsed++
	}
	for _, comment := range s.doc.Comments() {
		if s.registry.Seen(comment) {
			continue
		}
		if IsTopLevel(comment) {
			setOpenAttr(comment, true)
		}
		if s.registry.EnsureInitialized(comment) {
			stats.Initialized++
		}
	}
	stats.Wired = s.WirePlaceholders(s.doc.root)
	s.resyncs++
	s.logger.Debug("resync pass",
		zap.Int("pass", s.resyncs),
		zap.Int("collapsed", stats.Collapsed),
		zap.Int("initialized", stats.Initialized),
		zap.Int("wired", stats.Wired),
	)
	return stats
}

// TreeMutated is the entry point for an external "tree changed" signal.
func (s *Session) TreeMutated() ResyncStats {
	return s.Resync()
}

// InitializeNewComment prepares a comment arriving from outside the live
// tree: it and every comment below it start closed, get a control and
// are registered. It returns the number of comments newly initialized.
func (s *Session) InitializeNewComment(n *nethtml.Node) int {
	if n == nil || s.registry.Seen(n) {
		return 0
	}
	CollapseSubtree(n)
	s.registry.EnsureInitialized(n)
	count := 1
	for _, desc := range findAll(n, xpathAllComments) {
		if s.registry.Seen(desc) {
			continue
		}
		CollapseSubtree(desc)
		s.registry.EnsureInitialized(desc)
		count++
	}
	return count
}

// AddToggle attaches the toggle control to n through the registry, so a
// comment never receives a second one.
func (s *Session) AddToggle(n *nethtml.Node) bool {
	return s.registry.EnsureInitialized(n)
}

// WirePlaceholders wires every placeholder in subtree that is not wired
// yet and returns how many were new.
func (s *Session) WirePlaceholders(subtree *nethtml.Node) int {
	if subtree == nil {
		return 0
	}
	links := findAll(subtree, xpathPlaceholders)
	if IsPlaceholder(subtree) {
		links = append([]*nethtml.Node{subtree}, links...)
	}
	wired := 0
	for _, link := range links {
		if _, ok := s.placeholders[link]; ok {
			continue
		}
		s.wire(link)
		wired++
	}
	return wired
}

// RemoveDuplicates runs the sibling normalizer on container.
func (s *Session) RemoveDuplicates(container *nethtml.Node) int {
	return Deduplicate(container, s.logger)
}

func (s *Session) wire(link *nethtml.Node) *Placeholder {
	if p, ok := s.placeholders[link]; ok {
		return p
	}
	p := newPlaceholder(link, s.doc.ResolveURL(attrValue(link, "href")))
	s.placeholders[link] = p
	return p
}

// Placeholder returns the wired placeholder for node, or nil.
func (s *Session) Placeholder(node *nethtml.Node) *Placeholder {
	return s.placeholders[node]
}

// Placeholders lists wired placeholders still in the tree, in document order.
func (s *Session) Placeholders() []*Placeholder {
	links := findAll(s.doc.root, xpathPlaceholders)
	out := make([]*Placeholder, 0, len(links))
	for _, link := range links {
		if p, ok := s.placeholders[link]; ok {
			out = append(out, p)
		}
	}
	return out
}

func (s *Session) removePlaceholder(p *Placeholder) {
	detach(p.node)
	delete(s.placeholders, p.node)
	p.removed = true
}
