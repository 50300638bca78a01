package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/glabrego/threadfold/internal/redlib"
	"github.com/glabrego/threadfold/internal/storage"
	"github.com/glabrego/threadfold/internal/thread"
)

type PageClient interface {
	Fetch(ctx context.Context, url string) (string, error)
}

type Repository interface {
	SavePage(ctx context.Context, page storage.Page) error
	LoadPage(ctx context.Context, url string) (storage.Page, error)
	RecordFetch(ctx context.Context, f storage.Fetch) (string, error)
	ListFetches(ctx context.Context, limit int) ([]storage.Fetch, error)
}

// ThreadPage is an opened thread document and where it came from.
type ThreadPage struct {
	URL       string
	Doc       *thread.Document
	FromCache bool
	FetchedAt time.Time
}

type Service struct {
	client     PageClient
	repo       Repository
	signatures []string
	nowFn      func() time.Time
	logger     *zap.Logger
}

type Option func(*Service)

func WithLogger(logger *zap.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

func WithChallengeSignatures(signatures []string) Option {
	return func(s *Service) {
		if len(signatures) > 0 {
			s.signatures = append([]string(nil), signatures...)
		}
	}
}

func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.nowFn = now
		}
	}
}

func NewService(client PageClient, repo Repository, opts ...Option) *Service {
	s := &Service{
		client:     client,
		repo:       repo,
		signatures: append([]string(nil), thread.DefaultChallengeSignatures...),
		nowFn:      time.Now,
		logger:     zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// OpenThread fetches and parses the thread page at url. The fetched markup
// is cached; when the fetch fails or hits a challenge page the cached copy
// is used instead, if there is one. With offline set only the cache is read.
func (s *Service) OpenThread(ctx context.Context, url string, offline bool) (ThreadPage, error) {
	if offline {
		return s.openCached(ctx, url)
	}

	body, err := s.Fetch(ctx, url)
	if err == nil && thread.IsChallengePage(body, s.signatures) {
		err = &thread.LoadError{Kind: thread.ErrBlocked, URL: url}
	}
	if err != nil {
		page, cacheErr := s.openCached(ctx, url)
		if cacheErr != nil {
			return ThreadPage{}, fmt.Errorf("open thread %s: %w", url, err)
		}
		s.logger.Warn("using cached thread page", zap.String("url", url), zap.Error(err))
		return page, nil
	}

	fetchedAt := s.nowFn().UTC()
	if s.repo != nil {
		if err := s.repo.SavePage(ctx, storage.Page{URL: url, Body: body, FetchedAt: fetchedAt}); err != nil {
			return ThreadPage{}, fmt.Errorf("save page to cache: %w", err)
		}
	}
	doc, err := thread.ParseString(body, url)
	if err != nil {
		return ThreadPage{}, err
	}
	return ThreadPage{URL: url, Doc: doc, FetchedAt: fetchedAt}, nil
}

func (s *Service) openCached(ctx context.Context, url string) (ThreadPage, error) {
	if s.repo == nil {
		return ThreadPage{}, fmt.Errorf("load page from cache: %w", storage.ErrPageNotCached)
	}
	page, err := s.repo.LoadPage(ctx, url)
	if err != nil {
		return ThreadPage{}, fmt.Errorf("load page from cache: %w", err)
	}
	doc, err := thread.ParseString(page.Body, url)
	if err != nil {
		return ThreadPage{}, err
	}
	return ThreadPage{URL: url, Doc: doc, FromCache: true, FetchedAt: page.FetchedAt}, nil
}

// Fetch implements thread.Fetcher. Every call lands in the fetch log; a
// failure to write the log is logged and otherwise ignored. A non-2xx
// response whose body is a challenge page fails as thread.ErrBlocked.
func (s *Service) Fetch(ctx context.Context, url string) (string, error) {
	if s.client == nil {
		return "", errors.New("no page client configured")
	}
	started := s.nowFn()
	body, err := s.client.Fetch(ctx, url)
	elapsed := s.nowFn().Sub(started)

	var statusErr *redlib.StatusError
	if errors.As(err, &statusErr) && thread.IsChallengePage(statusErr.Body, s.signatures) {
		err = &thread.LoadError{Kind: thread.ErrBlocked, URL: url, Err: err}
	}

	kind := thread.KindName(err)
	if err == nil && thread.IsChallengePage(body, s.signatures) {
		kind = thread.KindName(thread.ErrBlocked)
	}
	s.logger.Debug("fetched page",
		zap.String("url", url),
		zap.String("kind", kind),
		zap.Duration("elapsed", elapsed),
		zap.Int("bytes", len(body)),
	)
	if s.repo != nil {
		record := storage.Fetch{URL: url, Kind: kind, Duration: elapsed, Bytes: len(body), StartedAt: started}
		if _, recErr := s.repo.RecordFetch(ctx, record); recErr != nil {
			s.logger.Warn("record fetch failed", zap.String("url", url), zap.Error(recErr))
		}
	}
	return body, err
}

func (s *Service) History(ctx context.Context, limit int) ([]storage.Fetch, error) {
	if s.repo == nil {
		return nil, nil
	}
	fetches, err := s.repo.ListFetches(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("load fetch history: %w", err)
	}
	return fetches, nil
}
