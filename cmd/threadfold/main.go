package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"github.com/glabrego/threadfold/internal/app"
	"github.com/glabrego/threadfold/internal/config"
	"github.com/glabrego/threadfold/internal/redlib"
	"github.com/glabrego/threadfold/internal/storage"
	"github.com/glabrego/threadfold/internal/thread"
	"github.com/glabrego/threadfold/internal/tui"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	var (
		configPath  string
		dbPath      string
		offline     bool
		settleDelay time.Duration
		logOutput   string
		dump        bool
		history     int
	)

	flagSet := pflag.NewFlagSet("threadfold", pflag.ContinueOnError)
	flagSet.StringVar(&configPath, "config", "", "path to a YAML config file (default: $THREADFOLD_CONFIG)")
	flagSet.StringVar(&dbPath, "db", "", "path to the sqlite page cache")
	flagSet.BoolVar(&offline, "offline", false, "read pages from the cache only")
	flagSet.DurationVar(&settleDelay, "settle-delay", 0, "delay before the follow-up resync")
	flagSet.StringVar(&logOutput, "log-output", "", "write JSON log records to this file")
	flagSet.BoolVar(&dump, "dump", false, "print the normalized page to stdout instead of starting the TUI")
	flagSet.IntVar(&history, "history", 0, "print the last N fetches and exit")
	flagSet.BoolP("help", "h", false, "show help")

	if err := flagSet.Parse(os.Args[1:]); err != nil {
		if err == pflag.ErrHelp {
			printHelp(flagSet)
			return nil
		}
		return err
	}
	if help, _ := flagSet.GetBool("help"); help {
		printHelp(flagSet)
		return nil
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("config error: %w", err)
	}
	if flagSet.Changed("db") {
		cfg.DBPath = dbPath
	}
	if flagSet.Changed("offline") {
		cfg.Offline = offline
	}
	if flagSet.Changed("settle-delay") {
		cfg.SettleDelay = settleDelay
	}
	if flagSet.Changed("log-output") {
		cfg.LogOutput = logOutput
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("config error: %w", err)
	}

	logger, err := newLogger(cfg.LogOutput)
	if err != nil {
		return fmt.Errorf("logger init error: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	repo, err := storage.NewRepository(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("storage init error: %w", err)
	}
	defer repo.Close()

	ctx, cancel := context.WithTimeout(context.Background(), cfg.HTTPTimeout+5*time.Second)
	defer cancel()

	if err := repo.Init(ctx); err != nil {
		return fmt.Errorf("storage schema error: %w", err)
	}

	client := redlib.NewClient(cfg.UserAgent, &http.Client{Timeout: cfg.HTTPTimeout})
	service := app.NewService(client, repo,
		app.WithLogger(logger),
		app.WithChallengeSignatures(cfg.ChallengeSignatures),
	)

	if flagSet.Changed("history") {
		return printHistory(ctx, service, history)
	}

	args := flagSet.Args()
	if len(args) != 1 {
		printHelp(flagSet)
		return fmt.Errorf("expected exactly one thread URL, got %d arguments", len(args))
	}
	url := args[0]

	page, err := service.OpenThread(ctx, url, cfg.Offline)
	if err != nil {
		return fmt.Errorf("cannot open thread: %w", err)
	}
	if page.FromCache {
		logger.Info("opened thread from cache", zap.String("url", url), zap.Time("fetched_at", page.FetchedAt))
	}

	newSession := func(doc *thread.Document) *thread.Session {
		return thread.NewSession(doc, service,
			thread.WithLogger(logger),
			thread.WithChallengeSignatures(cfg.ChallengeSignatures),
		)
	}
	session := newSession(page.Doc)
	session.Resync()

	if dump {
		// A second pass stands in for the settle-delay resync.
		session.Resync()
		return page.Doc.Render(os.Stdout)
	}

	model := tui.NewModel(session,
		tui.WithLogger(logger),
		tui.WithSettleDelay(cfg.SettleDelay),
		tui.WithFetchTimeout(cfg.HTTPTimeout),
		tui.WithReload(service, url, cfg.Offline, newSession),
	)
	program := tea.NewProgram(model, tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("tui error: %w", err)
	}
	return nil
}

// newLogger discards everything unless a log file is configured; the TUI
// owns the terminal.
func newLogger(output string) (*zap.Logger, error) {
	if output == "" {
		return zap.NewNop(), nil
	}
	zcfg := zap.NewProductionConfig()
	zcfg.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
	zcfg.OutputPaths = []string{output}
	zcfg.ErrorOutputPaths = []string{output}
	return zcfg.Build()
}

func printHistory(ctx context.Context, service *app.Service, limit int) error {
	fetches, err := service.History(ctx, limit)
	if err != nil {
		return fmt.Errorf("cannot read fetch log: %w", err)
	}
	rows := make([][]string, 0, len(fetches))
	for _, f := range fetches {
		rows = append(rows, []string{
			f.StartedAt.Local().Format(time.DateTime),
			f.Kind,
			f.Duration.Round(time.Millisecond).String(),
			fmt.Sprintf("%d", f.Bytes),
			f.URL,
		})
	}
	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers("STARTED", "KIND", "DURATION", "BYTES", "URL").
		Rows(rows...)
	_, err = fmt.Fprintln(os.Stdout, t.Render())
	return err
}

func printHelp(flagSet *pflag.FlagSet) {
	fmt.Fprintf(os.Stderr, `threadfold - browse a redlib comment thread with every reply chain folded.

Top-level comments start open and every nested reply starts closed.
Opening a comment reveals exactly one more generation; closing it folds
everything below. "More replies" links are fetched and merged in place.

Usage:
  threadfold [flags] <thread-url>
  threadfold --history 20

Flags:
`)
	flagSet.SetOutput(os.Stderr)
	flagSet.PrintDefaults()
}
