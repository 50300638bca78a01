package app

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/glabrego/threadfold/internal/storage"
	"github.com/glabrego/threadfold/internal/thread"
)

const threadURL = "https://redlib.example/r/rust/comments/abc/title/"

const threadMarkup = `<html><body><div class="thread"><div id="c1" class="comment">` +
	`<details class="comment_right" open><summary>u/a</summary>` +
	`<div class="comment_body"><p>hello</p></div><blockquote class="replies"></blockquote>` +
	`</details></div></div></body></html>`

type fakeClient struct {
	pages map[string]string
	err   error
	calls int
}

func (f *fakeClient) Fetch(_ context.Context, url string) (string, error) {
	f.calls++
	if f.err != nil {
		return "", f.err
	}
	return f.pages[url], nil
}

type fakeRepo struct {
	pages     map[string]storage.Page
	fetches   []storage.Fetch
	saveErr   error
	recordErr error
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{pages: map[string]storage.Page{}}
}

func (f *fakeRepo) SavePage(_ context.Context, page storage.Page) error {
	if f.saveErr != nil {
		return f.saveErr
	}
	f.pages[page.URL] = page
	return nil
}

func (f *fakeRepo) LoadPage(_ context.Context, url string) (storage.Page, error) {
	page, ok := f.pages[url]
	if !ok {
		return storage.Page{}, storage.ErrPageNotCached
	}
	return page, nil
}

func (f *fakeRepo) RecordFetch(_ context.Context, fetch storage.Fetch) (string, error) {
	if f.recordErr != nil {
		return "", f.recordErr
	}
	f.fetches = append(f.fetches, fetch)
	return "id", nil
}

func (f *fakeRepo) ListFetches(_ context.Context, limit int) ([]storage.Fetch, error) {
	if limit < len(f.fetches) {
		return f.fetches[:limit], nil
	}
	return f.fetches, nil
}

func fixedClock() func() time.Time {
	now := time.Date(2026, 2, 1, 10, 0, 0, 0, time.UTC)
	return func() time.Time { return now }
}

func TestService_OpenThread_FetchesAndCaches(t *testing.T) {
	client := &fakeClient{pages: map[string]string{threadURL: threadMarkup}}
	repo := newFakeRepo()
	svc := NewService(client, repo, WithClock(fixedClock()))

	page, err := svc.OpenThread(context.Background(), threadURL, false)
	if err != nil {
		t.Fatalf("OpenThread returned error: %v", err)
	}
	if page.FromCache {
		t.Fatal("expected a live page")
	}
	if page.Doc.CommentByID("c1") == nil {
		t.Fatal("expected c1 in parsed document")
	}
	if page.Doc.BaseURL() != threadURL {
		t.Fatalf("unexpected base URL: %q", page.Doc.BaseURL())
	}
	if repo.pages[threadURL].Body != threadMarkup {
		t.Fatal("page was not cached")
	}
	if len(repo.fetches) != 1 || repo.fetches[0].Kind != "ok" {
		t.Fatalf("unexpected fetch log: %+v", repo.fetches)
	}
}

func TestService_OpenThread_FallsBackToCache(t *testing.T) {
	repo := newFakeRepo()
	repo.pages[threadURL] = storage.Page{URL: threadURL, Body: threadMarkup, FetchedAt: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)}
	svc := NewService(&fakeClient{err: errors.New("connection refused")}, repo)

	page, err := svc.OpenThread(context.Background(), threadURL, false)
	if err != nil {
		t.Fatalf("OpenThread returned error: %v", err)
	}
	if !page.FromCache {
		t.Fatal("expected cached page")
	}
	if len(repo.fetches) != 1 || repo.fetches[0].Kind != "network" {
		t.Fatalf("unexpected fetch log: %+v", repo.fetches)
	}
}

func TestService_OpenThread_ChallengeWithoutCache(t *testing.T) {
	client := &fakeClient{pages: map[string]string{threadURL: `<title>Just a moment...</title>`}}
	repo := newFakeRepo()
	svc := NewService(client, repo)

	_, err := svc.OpenThread(context.Background(), threadURL, false)
	if !errors.Is(err, thread.ErrBlocked) {
		t.Fatalf("expected ErrBlocked, got %v", err)
	}
	if _, ok := repo.pages[threadURL]; ok {
		t.Fatal("challenge page must not be cached")
	}
	if repo.fetches[0].Kind != "blocked" {
		t.Fatalf("unexpected fetch kind: %q", repo.fetches[0].Kind)
	}
}

func TestService_OpenThread_Offline(t *testing.T) {
	client := &fakeClient{}
	svc := NewService(client, newFakeRepo())

	_, err := svc.OpenThread(context.Background(), threadURL, true)
	if !errors.Is(err, storage.ErrPageNotCached) {
		t.Fatalf("expected ErrPageNotCached, got %v", err)
	}
	if client.calls != 0 {
		t.Fatalf("offline open must not fetch, got %d calls", client.calls)
	}
}

func TestService_Fetch_IgnoresRecordFailure(t *testing.T) {
	repo := newFakeRepo()
	repo.recordErr = errors.New("disk full")
	svc := NewService(&fakeClient{pages: map[string]string{threadURL: threadMarkup}}, repo)

	body, err := svc.Fetch(context.Background(), threadURL)
	if err != nil {
		t.Fatalf("Fetch returned error: %v", err)
	}
	if body != threadMarkup {
		t.Fatalf("unexpected body: %q", body)
	}
}

func TestService_History(t *testing.T) {
	repo := newFakeRepo()
	svc := NewService(&fakeClient{pages: map[string]string{threadURL: threadMarkup}}, repo)
	for i := 0; i < 3; i++ {
		if _, err := svc.Fetch(context.Background(), threadURL); err != nil {
			t.Fatalf("Fetch returned error: %v", err)
		}
	}

	fetches, err := svc.History(context.Background(), 2)
	if err != nil {
		t.Fatalf("History returned error: %v", err)
	}
	if len(fetches) != 2 {
		t.Fatalf("expected 2 fetches, got %d", len(fetches))
	}
}

func TestService_ImplementsFetcher(t *testing.T) {
	var _ thread.Fetcher = NewService(nil, nil)

	_, err := NewService(nil, nil).Fetch(context.Background(), threadURL)
	if err == nil {
		t.Fatal("expected error without a client")
	}
}
