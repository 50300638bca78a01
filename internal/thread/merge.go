package thread

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"
	nethtml "golang.org/x/net/html"
)

// Fetcher returns the raw markup behind a URL.
type Fetcher interface {
	Fetch(ctx context.Context, url string) (string, error)
}

var (
	ErrBusy        = errors.New("placeholder is already loading")
	ErrDetached    = errors.New("placeholder is not in a replies container")
	ErrStaleResult = errors.New("result does not belong to the current attempt")
)

// Task is one fetch for one placeholder. Run touches no DOM and may be
// executed on any goroutine; its Result goes back through Session.Apply.
type Task struct {
	owner       *Session
	placeholder *Placeholder
	container   *nethtml.Node
	url         string
	attempt     int
	fetcher     Fetcher
	signatures  []string
}

func (t Task) Placeholder() *Placeholder { return t.placeholder }

func (t Task) URL() string { return t.url }

// Result is the settled outcome of a Task.
type Result struct {
	task   Task
	Markup string
	Err    *LoadError
}

func (r Result) Placeholder() *Placeholder { return r.task.placeholder }

func (t Task) Run(ctx context.Context) Result {
	if t.fetcher == nil {
		return Result{task: t, Err: &LoadError{Kind: ErrNetwork, URL: t.url, Err: errors.New("no fetcher configured")}}
	}
	markup, err := t.fetcher.Fetch(ctx, t.url)
	if err != nil {
		return Result{task: t, Err: classify(t.url, err)}
	}
	if IsChallengePage(markup, t.signatures) {
		return Result{task: t, Err: &LoadError{Kind: ErrBlocked, URL: t.url}}
	}
	return Result{task: t, Markup: markup}
}

type MergeStats struct {
	Inserted   int
	Duplicates int
	Rewired    int
}

// Begin moves p into Loading and returns the fetch to run. A placeholder
// that is already loading, or that has no replies container around it,
// is refused.
func (s *Session) Begin(p *Placeholder) (Task, error) {
	if p == nil || p.removed {
		return Task{}, ErrDetached
	}
	if p.state == StateLoading {
		return Task{}, ErrBusy
	}
	container := closest(p.node, "blockquote", classReplies)
	if container == nil {
		s.logger.Error("could not find parent replies container", zap.String("url", p.url))
		return Task{}, ErrDetached
	}
	p.begin()
	return Task{
		owner:       s,
		placeholder: p,
		container:   container,
		url:         p.url,
		attempt:     p.attempts,
		fetcher:     s.fetcher,
		signatures:  s.signatures,
	}, nil
}

// Apply merges a settled Result into the live tree. A failure is recorded
// on the placeholder and also returned.
func (s *Session) Apply(res Result) (MergeStats, error) {
	p := res.task.placeholder
	if p == nil || res.task.owner != s {
		return MergeStats{}, ErrStaleResult
	}
	if p.removed || p.state != StateLoading || res.task.attempt != p.attempts {
		return MergeStats{}, ErrStaleResult
	}
	if res.Err != nil {
		s.failLoad(p, res.Err)
		return MergeStats{}, res.Err
	}
	stats, loadErr := s.merge(res.task, res.Markup)
	if loadErr != nil {
		s.failLoad(p, loadErr)
		return MergeStats{}, loadErr
	}
	s.logger.Info("merged replies",
		zap.String("target", p.targetID),
		zap.Int("inserted", stats.Inserted),
		zap.Int("duplicates", stats.Duplicates),
		zap.Int("rewired", stats.Rewired),
	)
	return stats, nil
}

// LoadMore runs Begin, the fetch and Apply back to back.
func (s *Session) LoadMore(ctx context.Context, p *Placeholder) (MergeStats, error) {
	task, err := s.Begin(p)
	if err != nil {
		return MergeStats{}, err
	}
	return s.Apply(task.Run(ctx))
}

func (s *Session) merge(task Task, markup string) (MergeStats, *LoadError) {
	var stats MergeStats
	p := task.placeholder

	fragment, err := nethtml.Parse(strings.NewReader(markup))
	if err != nil {
		return stats, unreadableFragment(task.url, err)
	}
	var target *nethtml.Node
	if p.targetID != "" {
		target = findOne(fragment, xpathCommentByID(p.targetID))
	}
	if target == nil {
		s.logger.Warn("comment not found in response", zap.String("id", p.targetID), zap.String("url", task.url))
		return stats, &LoadError{Kind: ErrNotFound, URL: task.url}
	}

	fetchedReplies := Replies(target)
	s.removePlaceholder(p)
	if fetchedReplies == nil {
		return stats, nil
	}

	for _, comment := range findAll(fetchedReplies, xpathDirectComments) {
		clone := cloneNode(comment)
		s.InitializeNewComment(clone)
		task.container.AppendChild(clone)
		stats.Inserted++
		s.logger.Debug("inserted comment", zap.String("id", CommentID(clone)), zap.Int("index", stats.Inserted))
	}

	stats.Duplicates = s.RemoveDuplicates(task.container)
	stats.Rewired = s.rewireNested(task.container, fetchedReplies, p.targetID)
	return stats, nil
}

// unreadableFragment reports a fragment that could not be parsed. It counts
// as a transport failure, not a missing comment.
func unreadableFragment(url string, err error) *LoadError {
	return &LoadError{Kind: ErrNetwork, URL: url, Err: fmt.Errorf("parse fragment: %w", err)}
}

// rewireNested carries the placeholders found in the fetched replies over
// to the matching comments of the merged tree and wires them.
func (s *Session) rewireNested(container, fetchedReplies *nethtml.Node, targetID string) int {
	rewired := 0
	for _, link := range findAll(fetchedReplies, xpathPlaceholders) {
		owner := closest(link, "div", classComment)
		if owner == nil {
			continue
		}
		ownerID := CommentID(owner)
		var liveReplies *nethtml.Node
		if ownerID == targetID {
			liveReplies = container
		} else {
			live := findOne(container, xpathCommentByID(ownerID))
			if live == nil {
				continue
			}
			liveReplies = Replies(live)
		}
		if liveReplies == nil {
			continue
		}

		href := attrValue(link, "href")
		if existing := placeholderWithHref(liveReplies, href); existing != nil {
			s.wire(existing)
			rewired++
			continue
		}
		clone := cloneNode(link)
		liveReplies.AppendChild(clone)
		s.wire(clone)
		rewired++
	}
	return rewired
}

func placeholderWithHref(replies *nethtml.Node, href string) *nethtml.Node {
	for c := replies.FirstChild; c != nil; c = c.NextSibling {
		if IsPlaceholder(c) && attrValue(c, "href") == href {
			return c
		}
	}
	return nil
}

func (s *Session) failLoad(p *Placeholder, err *LoadError) {
	p.fail(err)
	s.logger.Warn("loading replies failed",
		zap.String("url", p.url),
		zap.String("kind", KindName(err)),
		zap.Error(err),
	)
}
