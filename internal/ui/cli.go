package ui

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/javiermolinar/vendas/internal/bizweek"
	"github.com/javiermolinar/vendas/internal/config"
	"github.com/javiermolinar/vendas/internal/db"
	"github.com/javiermolinar/vendas/internal/linker"
	"github.com/javiermolinar/vendas/internal/logging"
	"github.com/javiermolinar/vendas/internal/report"
	"github.com/javiermolinar/vendas/internal/scheduler"
	"github.com/javiermolinar/vendas/internal/throttle"
)

var (
	// Version is set at build time
	Version = "dev"
	// Commit is set at build time
	Commit = "none"
)

// App holds the CLI application state.
type App struct {
	config *config.Config
	root   *cobra.Command
	logger *slog.Logger
	loc    *time.Location
	cal    *bizweek.Calendar
	now    func() time.Time

	// Opened on first use by ensureRepo.
	repo    *db.SQLite
	reports *report.Service
	linker  *linker.Linker

	configPath string
	logLevel   string
	logFormat  string
	noColor    bool
}

// NewApp creates a new CLI application. A nil cfg is loaded from the
// --config path (or the default path) before each command runs.
func NewApp(cfg *config.Config) *App {
	a := &App{config: cfg, now: time.Now}

	a.root = &cobra.Command{
		Use:   "vendas",
		Short: "Weekly sales performance for SDRs, salespeople and supervisors",
		Long: `Vendas tracks meetings and sales and reports them per business week.

Business weeks run Wednesday through Tuesday in the configured timezone.
Week numbers count from the first Wednesday on or after January 1.`,
		SilenceUsage: true,
		PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
			return a.setup()
		},
	}

	flags := a.root.PersistentFlags()
	flags.StringVar(&a.configPath, "config", "", "Config file (default ~/.config/vendas/config.toml)")
	flags.StringVar(&a.logLevel, "log-level", "", "Log level: debug, info, warn, error")
	flags.StringVar(&a.logFormat, "log-format", "", "Log format: auto, console, json")
	flags.BoolVar(&a.noColor, "no-color", false, "Disable color output")

	a.root.AddCommand(a.versionCmd())
	a.root.AddCommand(a.configCmd())
	a.root.AddCommand(a.actorCmd())
	a.root.AddCommand(a.meetingCmd())
	a.root.AddCommand(a.saleCmd())
	a.root.AddCommand(a.outcomeCmd())
	a.root.AddCommand(a.recordsCmd())
	a.root.AddCommand(a.weekCmd())
	a.root.AddCommand(a.weeknumCmd())
	a.root.AddCommand(a.statsCmd())
	a.root.AddCommand(a.monthCmd())
	a.root.AddCommand(a.linkCmd())
	a.root.AddCommand(a.importCmd())
	a.root.AddCommand(a.dashCmd())

	return a
}

func (a *App) versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version number",
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "vendas %s (commit: %s)\n", Version, Commit)
		},
	}
}

// setup loads the config and builds the logger and calendar.
func (a *App) setup() error {
	if a.noColor {
		DisableColor()
	}

	if a.config == nil {
		path := a.configPath
		if path == "" {
			path = config.DefaultConfigPath()
		}
		cfg, err := config.LoadFrom(path)
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}
		a.config = cfg
	}

	if a.logLevel != "" {
		a.config.Log.Level = a.logLevel
	}
	if a.logFormat != "" {
		a.config.Log.Format = a.logFormat
	}
	format, err := logging.ParseFormat(a.config.Log.Format)
	if err != nil {
		return err
	}
	a.logger = logging.NewWithFormat(logging.ParseLogLevel(a.config.Log.Level), os.Stderr, format)

	loc, err := a.config.Location()
	if err != nil {
		return err
	}
	a.loc = loc
	a.cal = bizweek.New(loc)
	return nil
}

// ensureRepo opens the database and the services built on it.
func (a *App) ensureRepo() error {
	if a.repo != nil {
		return nil
	}

	path := a.config.Storage.DBPath
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating data directory: %w", err)
	}
	repo, err := db.New(path)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	a.logger.Debug("opened database", "path", path)

	plan, err := a.config.Plan()
	if err != nil {
		_ = repo.Close()
		return err
	}

	a.repo = repo
	a.reports = report.NewService(repo, a.cal, plan, a.config.ScoreRules(), report.Options{
		CacheSize: a.config.Cache.Size,
		Freshness: a.config.CacheFreshness(),
		Debounce:  a.config.RefreshDebounce(),
		Logger:    a.logger,
	})
	gate := throttle.NewGate(repo, a.config.LinkInterval(), throttle.WithClock(a.now))
	a.linker = linker.New(repo, gate, a.logger)
	return nil
}

func (a *App) scheduler() *scheduler.Scheduler {
	s := a.config.Schedule
	return scheduler.New(s.Workdays, s.DayStart, s.DayEnd)
}

// Close flushes pending invalidations and closes the database.
func (a *App) Close() error {
	if a.reports != nil {
		a.reports.Close()
	}
	if a.repo == nil {
		return nil
	}
	err := a.repo.Close()
	a.repo = nil
	return err
}

// Execute runs the CLI application.
func (a *App) Execute() error {
	return a.root.Execute()
}
