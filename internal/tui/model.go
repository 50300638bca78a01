package tui

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"
	nethtml "golang.org/x/net/html"

	rendercomment "github.com/glabrego/threadfold/internal/render/comment"
	"github.com/glabrego/threadfold/internal/thread"
	tuiactions "github.com/glabrego/threadfold/internal/tui/actions"
	tuiplatform "github.com/glabrego/threadfold/internal/tui/platform"
	tuistate "github.com/glabrego/threadfold/internal/tui/state"
	tuitheme "github.com/glabrego/threadfold/internal/tui/theme"
	tuitree "github.com/glabrego/threadfold/internal/tui/tree"
	tuiview "github.com/glabrego/threadfold/internal/tui/view"
)

// chromeLines is the number of lines View spends outside the row list.
const chromeLines = 6

// SessionFactory builds a fresh session for a reloaded document.
type SessionFactory func(doc *thread.Document) *thread.Session

type Model struct {
	session    *thread.Session
	newSession SessionFactory
	service    tuiactions.ThreadService
	url        string
	offline    bool

	keys    KeyMap
	theme   tuitheme.Theme
	spinner spinner.Model
	logger  *zap.Logger

	rows       []tuitree.Row
	cursor     int
	width      int
	height     int
	hideBodies bool
	showHelp   bool
	reloading  bool
	status     string
	statusID   int
	err        error

	settleDelay  time.Duration
	settlePass   int
	fetchTimeout time.Duration

	openURLFn  func(string) error
	copyURLFn  func(string) error
	renderBody func(body *nethtml.Node, width int) []string
}

type Option func(*Model)

func WithLogger(logger *zap.Logger) Option {
	return func(m *Model) {
		if logger != nil {
			m.logger = logger
		}
	}
}

func WithSettleDelay(d time.Duration) Option {
	return func(m *Model) { m.settleDelay = d }
}

func WithFetchTimeout(d time.Duration) Option {
	return func(m *Model) {
		if d > 0 {
			m.fetchTimeout = d
		}
	}
}

// WithReload enables reloading the page through service; each reload
// gets a new session from factory.
func WithReload(service tuiactions.ThreadService, url string, offline bool, factory SessionFactory) Option {
	return func(m *Model) {
		m.service = service
		m.url = url
		m.offline = offline
		m.newSession = factory
	}
}

func WithURLHandlers(openFn, copyFn func(string) error) Option {
	return func(m *Model) {
		m.openURLFn = openFn
		m.copyURLFn = copyFn
	}
}

func NewModel(session *thread.Session, opts ...Option) Model {
	s := spinner.New()
	s.Spinner = spinner.Dot
	m := Model{
		session:      session,
		keys:         DefaultKeyMap(),
		theme:        tuitheme.Default(),
		spinner:      s,
		logger:       zap.NewNop(),
		settleDelay:  time.Second,
		fetchTimeout: tuiactions.DefaultFetchTimeout,
		openURLFn:    tuiplatform.OpenURLInBrowser,
		copyURLFn:    tuiplatform.CopyURLToClipboard,
		renderBody:   rendercomment.Lines,
	}
	for _, opt := range opts {
		opt(&m)
	}
	m.settlePass = 1
	m.rebuildRows()
	m.cursor = tuistate.FirstSelectable(m.rows)
	return m
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(
		m.spinner.Tick,
		tuiactions.SettleCmd(m.settleDelay, m.settlePass),
	)
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.refreshRows(m.currentNode())
		return m, nil
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	case tea.KeyMsg:
		return m.handleKey(msg)
	case tuiactions.SettledMsg:
		if msg.Pass != m.settlePass || m.session == nil {
			return m, nil
		}
		anchor := m.currentNode()
		stats := m.session.Resync()
		m.logger.Debug("settle resync", zap.Int("pass", msg.Pass), zap.Int("initialized", stats.Initialized))
		m.refreshRows(anchor)
		return m, nil
	case tuiactions.FragmentResultMsg:
		return m.applyFragment(msg)
	case tuiactions.ThreadLoadedMsg:
		m.reloading = false
		if m.newSession == nil || msg.Page.Doc == nil {
			return m, nil
		}
		m.session = m.newSession(msg.Page.Doc)
		m.session.Resync()
		m.err = nil
		m.status = "Reloaded thread"
		if msg.Page.FromCache {
			m.status = "Reloaded thread from cache"
		}
		m.rebuildRows()
		m.cursor = tuistate.FirstSelectable(m.rows)
		m.settlePass++
		m.statusID++
		return m, tea.Batch(
			tuiactions.SettleCmd(m.settleDelay, m.settlePass),
			tuiactions.ClearStatusCmd(3*time.Second, m.statusID),
		)
	case tuiactions.ThreadLoadErrorMsg:
		m.reloading = false
		m.status = ""
		m.err = msg.Err
		return m, nil
	case tuiactions.OpenURLSuccessMsg:
		m.err = nil
		m.status = msg.Status
		m.statusID++
		return m, tuiactions.ClearStatusCmd(3*time.Second, m.statusID)
	case tuiactions.OpenURLErrorMsg:
		m.err = nil
		m.status = msg.Err.Error()
		m.statusID++
		return m, tuiactions.ClearStatusCmd(4*time.Second, m.statusID)
	case tuiactions.ClearStatusMsg:
		if msg.Seq == m.statusID {
			m.status = ""
		}
		return m, nil
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, m.keys.Help) {
		m.showHelp = !m.showHelp
		return m, nil
	}
	if m.showHelp {
		switch {
		case msg.String() == "esc":
			m.showHelp = false
		case key.Matches(msg, m.keys.Quit):
			return m, tea.Quit
		}
		return m, nil
	}

	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.Up):
		m.cursor = tuistate.NextSelectable(m.rows, m.cursor, -1)
	case key.Matches(msg, m.keys.Down):
		m.cursor = tuistate.NextSelectable(m.rows, m.cursor, 1)
	case key.Matches(msg, m.keys.PageUp):
		m.cursor = tuistate.NextSelectable(m.rows, m.cursor, -tuistate.PageStep(m.height, m.hasMessage()))
	case key.Matches(msg, m.keys.PageDown):
		m.cursor = tuistate.NextSelectable(m.rows, m.cursor, tuistate.PageStep(m.height, m.hasMessage()))
	case key.Matches(msg, m.keys.Home):
		m.cursor = tuistate.FirstSelectable(m.rows)
	case key.Matches(msg, m.keys.End):
		m.cursor = tuistate.LastSelectable(m.rows)
	case key.Matches(msg, m.keys.Toggle):
		return m.activateCurrent()
	case key.Matches(msg, m.keys.Expand):
		m.expandCurrent()
	case key.Matches(msg, m.keys.Collapse):
		m.collapseCurrent()
	case key.Matches(msg, m.keys.Resync):
		if m.session == nil {
			return m, nil
		}
		anchor := m.currentNode()
		stats := m.session.Resync()
		m.refreshRows(anchor)
		m.err = nil
		m.status = fmt.Sprintf("Resync: %d initialized, %d wired", stats.Initialized, stats.Wired)
		m.statusID++
		return m, tuiactions.ClearStatusCmd(3*time.Second, m.statusID)
	case key.Matches(msg, m.keys.Reload):
		if m.service == nil || m.reloading {
			return m, nil
		}
		m.reloading = true
		m.status = "Reloading thread..."
		m.err = nil
		return m, tuiactions.ReloadThreadCmd(m.service, m.url, m.offline, m.fetchTimeout)
	case key.Matches(msg, m.keys.HideBodies):
		anchor := m.currentNode()
		m.hideBodies = !m.hideBodies
		m.refreshRows(anchor)
	case key.Matches(msg, m.keys.Open):
		return m.openCurrentURL()
	case key.Matches(msg, m.keys.Copy):
		return m.copyCurrentURL()
	}
	return m, nil
}

// activateCurrent toggles the comment under the cursor, or starts loading
// the placeholder under it.
func (m Model) activateCurrent() (tea.Model, tea.Cmd) {
	row, ok := m.currentRow()
	if !ok {
		return m, nil
	}
	switch row.Kind {
	case tuitree.RowComment:
		if !row.HasControl {
			return m, nil
		}
		thread.Toggle(row.Node)
		m.refreshRows(row.Node)
		return m, nil
	case tuitree.RowPlaceholder:
		return m.loadPlaceholder(row.Node)
	}
	return m, nil
}

func (m Model) loadPlaceholder(node *nethtml.Node) (tea.Model, tea.Cmd) {
	p := m.session.Placeholder(node)
	if p == nil {
		p = m.wirePlaceholder(node)
	}
	task, err := m.session.Begin(p)
	if err != nil {
		if errors.Is(err, thread.ErrBusy) {
			m.status = "Already loading"
			return m, nil
		}
		m.status = ""
		m.err = err
		return m, nil
	}
	m.err = nil
	m.status = "Loading replies..."
	m.refreshRows(node)
	return m, tuiactions.FetchFragmentCmd(task, m.fetchTimeout)
}

// wirePlaceholder wires a placeholder link that appeared without a resync.
func (m Model) wirePlaceholder(node *nethtml.Node) *thread.Placeholder {
	m.session.WirePlaceholders(node)
	return m.session.Placeholder(node)
}

func (m Model) applyFragment(msg tuiactions.FragmentResultMsg) (tea.Model, tea.Cmd) {
	if m.session == nil {
		return m, nil
	}
	var node *nethtml.Node
	if p := msg.Result.Placeholder(); p != nil {
		node = p.Node()
	}
	anchor := m.currentNode()
	pos := tuitree.IndexOf(m.rows, node)

	stats, err := m.session.Apply(msg.Result)
	switch {
	case errors.Is(err, thread.ErrStaleResult):
		m.logger.Debug("dropped stale fragment result")
		return m, nil
	case err != nil:
		m.status = ""
		m.err = err
		m.refreshRows(anchor)
		return m, nil
	}

	m.err = nil
	m.status = fmt.Sprintf("Loaded %d replies in %dms", stats.Inserted-stats.Duplicates, msg.Duration.Milliseconds())
	if stats.Duplicates > 0 {
		m.status += fmt.Sprintf(" (%d duplicates dropped)", stats.Duplicates)
	}
	m.rebuildRows()
	if anchor != nil && anchor == node && pos >= 0 {
		// The merged replies take the placeholder's place.
		m.cursor = tuistate.SnapSelectable(m.rows, pos)
	} else {
		m.cursor = tuistate.CursorForNode(m.rows, anchor, m.cursor)
	}
	m.statusID++
	return m, tuiactions.ClearStatusCmd(3*time.Second, m.statusID)
}

func (m *Model) expandCurrent() {
	row, ok := m.currentRow()
	if !ok || row.Kind != tuitree.RowComment || !row.HasControl {
		return
	}
	if !row.Open {
		thread.Expand(row.Node)
		m.refreshRows(row.Node)
		return
	}
	next := tuistate.NextSelectable(m.rows, m.cursor, 1)
	if next != m.cursor && m.rows[next].Depth > row.Depth {
		m.cursor = next
	}
}

func (m *Model) collapseCurrent() {
	row, ok := m.currentRow()
	if !ok {
		return
	}
	if row.Kind == tuitree.RowComment && row.HasControl && row.Open {
		thread.SetOpen(row.Node, false)
		m.refreshRows(row.Node)
		return
	}
	if parent := tuistate.ParentRow(m.rows, m.cursor); parent >= 0 {
		m.cursor = parent
	}
}

func (m Model) openCurrentURL() (tea.Model, tea.Cmd) {
	url, err := m.currentURL()
	if err != nil {
		m.status = ""
		m.err = err
		return m, nil
	}
	return m, tuiactions.OpenURLCmd(url, m.openURLFn, m.copyURLFn)
}

func (m Model) copyCurrentURL() (tea.Model, tea.Cmd) {
	url, err := m.currentURL()
	if err != nil {
		m.status = ""
		m.err = err
		return m, nil
	}
	return m, tuiactions.CopyURLCmd(url, m.copyURLFn)
}

func (m Model) currentURL() (string, error) {
	row, ok := m.currentRow()
	if !ok || m.session == nil {
		return tuiplatform.ValidateURL("")
	}
	if row.Kind == tuitree.RowPlaceholder {
		if p := m.session.Placeholder(row.Node); p != nil {
			return tuiplatform.ValidateURL(p.URL())
		}
	}
	c := tuitree.CommentFor(row.Node)
	if c == nil {
		return tuiplatform.ValidateURL("")
	}
	return tuiplatform.ValidateURL(m.session.Document().Permalink(c))
}

func (m Model) currentRow() (tuitree.Row, bool) {
	if m.cursor < 0 || m.cursor >= len(m.rows) {
		return tuitree.Row{}, false
	}
	return m.rows[m.cursor], true
}

func (m Model) currentNode() *nethtml.Node {
	row, ok := m.currentRow()
	if !ok {
		return nil
	}
	return row.Node
}

func (m *Model) rebuildRows() {
	if m.session == nil {
		m.rows = nil
		return
	}
	m.rows = tuitree.BuildRows(m.session, tuitree.BuildOptions{
		Width:      m.contentWidth(),
		HideBodies: m.hideBodies,
		RenderBody: m.renderBody,
	})
}

// refreshRows rebuilds the rows and keeps the cursor on anchor, or on its
// nearest visible ancestor.
func (m *Model) refreshRows(anchor *nethtml.Node) {
	m.rebuildRows()
	m.cursor = tuistate.CursorForNode(m.rows, anchor, m.cursor)
}

func (m Model) contentWidth() int {
	if m.width <= 0 {
		return 80
	}
	return m.width
}

func (m Model) bodyHeight() int {
	if m.height <= 0 {
		return 0
	}
	return max(1, m.height-chromeLines)
}

func (m Model) hasMessage() bool {
	return m.status != "" || m.err != nil
}

func (m Model) loadingCount() int {
	if m.session == nil {
		return 0
	}
	count := 0
	for _, p := range m.session.Placeholders() {
		if p.State() == thread.StateLoading {
			count++
		}
	}
	return count
}

func (m Model) footerInfo() tuiview.FooterInfo {
	info := tuiview.FooterInfo{Offline: m.offline, Loading: m.loadingCount()}
	if m.session == nil {
		return info
	}
	comments := m.session.Document().Comments()
	info.Comments = len(comments)
	for _, c := range comments {
		if thread.IsOpen(c) {
			info.Open++
		}
	}
	info.Placeholders = len(m.session.Placeholders())
	info.Resyncs = m.session.Resyncs()
	return info
}

func (m Model) View() string {
	var b strings.Builder
	url := m.url
	if url == "" && m.session != nil {
		url = m.session.Document().BaseURL()
	}
	b.WriteString(tuiview.Header("threadfold", url, m.theme, m.width))
	b.WriteString("\n")
	b.WriteString(tuiview.Toolbar(m.showHelp))
	b.WriteString("\n")

	switch {
	case m.showHelp:
		b.WriteString(m.helpView())
	case len(m.rows) == 0:
		b.WriteString("No comments on this page.\n")
	default:
		start, end := tuistate.CenteredWindow(len(m.rows), m.cursor, m.bodyHeight())
		b.WriteString(tuiview.RenderRows(tuiview.RowsInput{
			Rows:    m.rows,
			Start:   start,
			End:     end,
			Cursor:  m.cursor,
			Width:   m.contentWidth(),
			Spinner: m.spinner.View(),
		}, m.theme))
	}
	b.WriteString("\n")
	b.WriteString(tuiview.Message(m.reloading || m.loadingCount() > 0, m.status, m.err, m.theme))
	b.WriteString("\n")
	b.WriteString(tuiview.Footer(m.footerInfo(), m.theme))
	b.WriteString("\n")
	return b.String()
}

func (m Model) helpView() string {
	var b strings.Builder
	b.WriteString("Help (? or esc to close)\n")
	for _, binding := range m.keys.helpBindings() {
		h := binding.Help()
		b.WriteString(fmt.Sprintf("  %-12s %s\n", h.Key, h.Desc))
	}
	return b.String()
}
