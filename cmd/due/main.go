// Package main is the entry point for the due application.
// It loads configuration, opens the task store and either starts the TUI
// or runs a one-shot subcommand.
package main

import (
	"fmt"
	"io"
	"os"
	"time"
	_ "time/tzdata" // deadlines need the reference zone even without system zoneinfo

	"due/internal/config"
	"due/internal/deadline"
	"due/internal/logging"
	"due/internal/notify"
	"due/internal/storage"
	"due/internal/ui"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
	"github.com/muesli/termenv"
	"github.com/spf13/cobra"
)

// Version information - set by GoReleaser during build
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

const longHelp = `due is a terminal task tracker built around deadlines.

Deadlines are typed as "DD HH": a day of the month and an hour on the
24-hour clock. The next matching date is picked automatically; a day that
already passed this month rolls into next month. Times are shown in the
configured timezone (America/Los_Angeles by default).

Run without a command to open the interactive list.

Data lives in ~/.due/ as plain JSON (override with DUE_DATA_DIR):
    tasks.json   - your tasks
    undo.json    - the state before the last change

Optional config file: ~/.config/due/config.yaml (or config.toml)`

func main() {
	os.Exit(newCLI(os.Stdin, os.Stdout, os.Stderr).execute(os.Args[1:]))
}

// cli holds what every command shares. Tests build one with buffers and a
// fixed clock.
type cli struct {
	stdin          io.Reader
	stdout, stderr io.Writer
	now            func() time.Time

	noColor bool
	verbose bool

	cfg      *config.Config
	logger   *log.Logger
	notifier notify.Notifier // nil picks the platform notifier
}

func newCLI(stdin io.Reader, stdout, stderr io.Writer) *cli {
	return &cli{
		stdin:  stdin,
		stdout: stdout,
		stderr: stderr,
		logger: logging.Discard(),
	}
}

// execute runs the command line and returns the process exit code.
func (c *cli) execute(args []string) int {
	root := c.rootCmd()
	root.SetArgs(args)
	root.SetIn(c.stdin)
	root.SetOut(c.stdout)
	root.SetErr(c.stderr)

	if err := root.Execute(); err != nil {
		fmt.Fprintln(c.stderr, "Error:", err)
		return 1
	}
	return 0
}

func (c *cli) rootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "due",
		Short:   "Track tasks by deadline",
		Long:    longHelp,
		Version: fmt.Sprintf("%s\n  commit: %s\n  built:  %s", version, commit, date),
		Args:    cobra.NoArgs,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return c.setup()
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runTUI()
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.SetVersionTemplate("due version {{.Version}}\n")

	cmd.PersistentFlags().BoolVar(&c.noColor, "no-color", false, "Disable colored output")
	cmd.PersistentFlags().BoolVarP(&c.verbose, "verbose", "V", false, "Log debug output to stderr")

	cmd.AddCommand(
		c.listCmd(),
		c.addCmd(),
		c.removeCmd(),
		c.updateCmd(),
		c.undoCmd(),
		c.backupCmd(),
		c.restoreCmd(),
		c.importCmd(),
		c.exportCmd(),
		c.notifyCmd(),
		c.configCmd(),
	)
	return cmd
}

// setup loads the configuration and prepares output for one-shot commands.
func (c *cli) setup() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	c.cfg = cfg

	if c.noColor {
		lipgloss.SetColorProfile(termenv.Ascii)
	}

	// Only problems reach stderr unless asked for more.
	opts := c.logOptions()
	opts.Level = "warn"
	if c.verbose {
		opts.Level = "debug"
	}
	c.logger = logging.New(c.stderr, opts)
	return nil
}

func (c *cli) logOptions() logging.Options {
	opts := logging.DefaultOptions()
	if c.cfg.Log.Level != "" {
		opts.Level = c.cfg.Log.Level
	}
	if c.cfg.Log.Format != "" {
		opts.Format = c.cfg.Log.Format
	}
	return opts
}

// openStore builds the resolver for the configured timezone and opens the
// task store with it.
func (c *cli) openStore() (*storage.Store, error) {
	resolver, err := deadline.LoadResolver(c.cfg.Timezone)
	if err != nil {
		return nil, err
	}

	store, err := storage.New(c.cfg.GetDataDir(),
		storage.WithResolver(resolver),
		storage.WithLogger(c.logger),
		storage.WithFiles(c.cfg.Files.Tasks, c.cfg.Files.Undo),
	)
	if err != nil {
		return nil, fmt.Errorf("initializing storage: %w", err)
	}
	if c.now != nil {
		store.SetNowFunc(c.now)
	}
	return store, nil
}

// runTUI starts the interactive list. The TUI owns the terminal, so logs
// go to a file instead of stderr.
func (c *cli) runTUI() error {
	logger, closer, err := logging.OpenFile(c.cfg.LogPath(), c.logOptions())
	if err != nil {
		fmt.Fprintf(c.stderr, "Warning: logging disabled: %v\n", err)
	} else {
		defer closer.Close()
		c.logger = logger
	}

	store, err := c.openStore()
	if err != nil {
		return err
	}

	c.logger.Info("starting", "version", version, "data_dir", store.DataDir(), "tasks", store.Len())
	if err := ui.Run(store, ui.NewStyles(c.cfg), ui.AppConfigFrom(c.cfg, c.logger)); err != nil {
		return fmt.Errorf("running app: %w", err)
	}
	return nil
}
