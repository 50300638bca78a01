package view

import (
	"fmt"
	"strings"

	tuitheme "github.com/glabrego/threadfold/internal/tui/theme"
)

func Toolbar(showHelp bool) string {
	if showHelp {
		return "j/k/arrows: move | enter/space: toggle or load | l/right: expand | h/left: collapse or parent | g/G: top/bottom | pgup/pgdown: jump | R: resync | b: hide bodies | o: open permalink | y: copy permalink | ?: help | q: quit"
	}
	return "j/k move | enter toggle | l/h open/close | R resync | o open | ? help | q quit"
}

type FooterInfo struct {
	Comments     int
	Open         int
	Placeholders int
	Loading      int
	Resyncs      int
	Offline      bool
}

func Footer(info FooterInfo, th tuitheme.Theme) string {
	parts := []string{
		th.MetaLabel.Render("comments") + " " + th.MetaValue.Render(fmt.Sprintf("%d", info.Comments)),
		th.MetaLabel.Render("open") + " " + th.MetaValue.Render(fmt.Sprintf("%d", info.Open)),
		th.MetaLabel.Render("more") + " " + th.MetaValue.Render(fmt.Sprintf("%d", info.Placeholders)),
		th.MetaLabel.Render("resyncs") + " " + th.MetaValue.Render(fmt.Sprintf("%d", info.Resyncs)),
	}
	if info.Loading > 0 {
		parts = append(parts, th.StateLoad.Render(fmt.Sprintf("%d loading", info.Loading)))
	}
	if info.Offline {
		parts = append(parts, th.ModePill.Render("offline"))
	}
	return strings.Join(parts, " • ")
}

func Message(loading bool, status string, err error, th tuitheme.Theme) string {
	state := "idle"
	stateLabel := th.StateIdle.Render("state")
	if loading {
		state = "loading"
		stateLabel = th.StateLoad.Render("state")
	}
	main := "Ready"
	if status != "" {
		main = status
	}
	if err != nil {
		state = "error"
		stateLabel = th.StateWarn.Render("state")
		if status == "" {
			main = err.Error()
		}
	}
	return fmt.Sprintf("%s: %s | %s", stateLabel, state, th.MetaValue.Render(main))
}

func Header(title, url string, th tuitheme.Theme, width int) string {
	if title == "" {
		title = "threadfold"
	}
	line := th.Title.Render(title)
	if url != "" {
		line += " " + th.MetaLabel.Render(url)
	}
	return truncateLine(line, width)
}
