package actions

import (
	"context"
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/glabrego/threadfold/internal/app"
	"github.com/glabrego/threadfold/internal/thread"
)

const DefaultFetchTimeout = 15 * time.Second

type ThreadService interface {
	OpenThread(ctx context.Context, url string, offline bool) (app.ThreadPage, error)
}

type FragmentResultMsg struct {
	Result   thread.Result
	Duration time.Duration
}

// SettledMsg fires once the settle delay after a page load has passed.
type SettledMsg struct {
	Pass int
}

type ThreadLoadedMsg struct {
	Page     app.ThreadPage
	Duration time.Duration
}

type ThreadLoadErrorMsg struct {
	Err      error
	Duration time.Duration
}

type OpenURLSuccessMsg struct {
	Status string
	Opened bool
}

type OpenURLErrorMsg struct {
	Err error
}

type ClearStatusMsg struct {
	Seq int
}

// FetchFragmentCmd runs the fetch half of a load. The result is applied to
// the document back in Update.
func FetchFragmentCmd(task thread.Task, timeout time.Duration) tea.Cmd {
	if timeout <= 0 {
		timeout = DefaultFetchTimeout
	}
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		start := time.Now()

		res := task.Run(ctx)
		return FragmentResultMsg{Result: res, Duration: time.Since(start)}
	}
}

func SettleCmd(delay time.Duration, pass int) tea.Cmd {
	if delay <= 0 {
		return func() tea.Msg { return SettledMsg{Pass: pass} }
	}
	return tea.Tick(delay, func(time.Time) tea.Msg {
		return SettledMsg{Pass: pass}
	})
}

func ReloadThreadCmd(service ThreadService, url string, offline bool, timeout time.Duration) tea.Cmd {
	if timeout <= 0 {
		timeout = DefaultFetchTimeout
	}
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		start := time.Now()

		page, err := service.OpenThread(ctx, url, offline)
		if err != nil {
			return ThreadLoadErrorMsg{Err: err, Duration: time.Since(start)}
		}
		return ThreadLoadedMsg{Page: page, Duration: time.Since(start)}
	}
}

func ClearStatusCmd(after time.Duration, seq int) tea.Cmd {
	return tea.Tick(after, func(time.Time) tea.Msg {
		return ClearStatusMsg{Seq: seq}
	})
}

func OpenURLCmd(url string, openFn, copyFn func(string) error) tea.Cmd {
	return func() tea.Msg {
		if openFn != nil {
			if err := openFn(url); err == nil {
				return OpenURLSuccessMsg{Status: "Opened permalink in browser", Opened: true}
			}
		}
		if copyFn != nil {
			if err := copyFn(url); err == nil {
				return OpenURLSuccessMsg{Status: "Could not open browser, permalink copied to clipboard", Opened: false}
			}
		}
		return OpenURLErrorMsg{Err: fmt.Errorf("could not open URL or copy to clipboard")}
	}
}

func CopyURLCmd(url string, copyFn func(string) error) tea.Cmd {
	return func() tea.Msg {
		if copyFn != nil {
			if err := copyFn(url); err == nil {
				return OpenURLSuccessMsg{Status: "Permalink copied to clipboard"}
			}
		}
		return OpenURLErrorMsg{Err: fmt.Errorf("could not copy URL to clipboard")}
	}
}
