// Package main provides the CLI entry point for cursorrules.
package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/AntoineGS/cursorrules/internal/assets"
	"github.com/AntoineGS/cursorrules/internal/catalog"
	"github.com/AntoineGS/cursorrules/internal/config"
	"github.com/AntoineGS/cursorrules/internal/installer"
	"github.com/AntoineGS/cursorrules/internal/pathguard"
	"github.com/AntoineGS/cursorrules/internal/platform"
	"github.com/AntoineGS/cursorrules/internal/state"
	tmpl "github.com/AntoineGS/cursorrules/internal/template"
	"github.com/AntoineGS/cursorrules/internal/tui"
)

var version = "dev"

const (
	tagline     = "Install Cursor rule templates into your project"
	historyKeep = 500
)

// options holds every flag of one invocation.
type options struct {
	output      string
	root        string
	source      string
	osOverride  string
	only        []string
	interactive bool
	flat        bool
	dryRun      bool
	verbose     bool

	// outputSet is true when -o was given, even with an empty value.
	outputSet bool
	logger    *slog.Logger

	search string
	limit  int
}

// logFileName is the verbose log written while the menus own the terminal.
const logFileName = "cursorrules.log"

// logToFile reports whether verbose logs must go to a file instead of stderr.
var logToFile = func(opts *options) bool {
	return opts.interactive && tui.IsTerminal()
}

// logSink holds the verbose log file of one invocation, if any.
type logSink struct {
	path string
	file *os.File
}

func (l *logSink) create() (*os.File, error) {
	l.path = filepath.Join(os.TempDir(), logFileName)
	f, err := os.Create(l.path) //nolint:gosec // fixed name in the temp dir
	if err != nil {
		return nil, err
	}
	l.file = f

	return f, nil
}

// Close closes the log file. It is safe to call more than once.
func (l *logSink) Close() error {
	if l.file == nil {
		return nil
	}
	err := l.file.Close()
	l.file = nil

	return err
}

// streams are the process streams, replaced in tests.
type streams struct {
	in  io.Reader
	out io.Writer
	err io.Writer
}

func main() {
	os.Exit(run(os.Args[1:], streams{in: os.Stdin, out: os.Stdout, err: os.Stderr}))
}

// run executes the command line and returns the process exit code.
func run(args []string, s streams) int {
	cmd, sink := newRootCmd(s)
	cmd.SetArgs(args)

	if err := execute(cmd, sink); err != nil {
		fmt.Fprintln(s.err, tui.ErrorStyle.Render("Error: "+err.Error()))
		return 1
	}

	return 0
}

// execute runs cmd and closes the log file whether or not it failed.
func execute(cmd *cobra.Command, sink *logSink) error {
	defer sink.Close() //nolint:errcheck // nothing left to report to

	return cmd.Execute()
}

func newRootCmd(s streams) (*cobra.Command, *logSink) {
	opts := &options{}
	sink := &logSink{}

	rootCmd := &cobra.Command{
		Use:     "cursorrules",
		Version: version,
		Short:   tagline,
		Long:    longHelp(),
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			opts.outputSet = cmd.Flags().Changed("output")
			return runInstall(opts, s)
		},
		PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
			opts.logger = slog.Default()
			if !opts.verbose {
				return nil
			}

			var logWriter io.Writer = s.err
			// The menus own the terminal, so logs go to a file while they run
			if logToFile(opts) {
				if f, err := sink.create(); err == nil {
					logWriter = f
					fmt.Fprintf(s.err, "Verbose logs: %s\n", sink.path)
				}
			}

			opts.logger = slog.New(slog.NewTextHandler(logWriter, &slog.HandlerOptions{
				Level: slog.LevelDebug,
			}))
			slog.SetDefault(opts.logger)

			return nil
		},
		SilenceErrors: true,
		SilenceUsage:  true,
	}
	rootCmd.SetIn(s.in)
	rootCmd.SetOut(s.out)
	rootCmd.SetErr(s.err)

	flags := rootCmd.Flags()
	flags.StringVarP(&opts.output, "output", "o", "", "Destination directory (default <root>/.cursor)")
	flags.BoolVarP(&opts.interactive, "interactive", "i", false, "Choose rules by category before copying")
	flags.BoolVarP(&opts.flat, "flat", "f", false, "Copy rule folders directly into the destination, without rules/")
	flags.StringArrayVar(&opts.only, "only", nil, "Copy only rules matching this glob (repeatable)")
	flags.BoolVarP(&opts.dryRun, "dry-run", "n", false, "Show what would be copied without writing anything")

	persistent := rootCmd.PersistentFlags()
	persistent.StringVar(&opts.root, "root", "", "Project root (default: the working directory)")
	persistent.StringVar(&opts.source, "source", "", "Read rules from this directory instead of the bundled set")
	persistent.StringVar(&opts.osOverride, "os", "", "Override OS detection (linux, darwin or windows)")
	persistent.BoolVar(&opts.verbose, "verbose", false, "Enable verbose output")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List the available rules",
		Long:  `Display every rule grouped by category. --search ranks rules by a fuzzy match.`,
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			return runList(opts, s)
		},
	}
	listCmd.Flags().StringVar(&opts.search, "search", "", "Only show rules matching this fuzzy query")
	listCmd.Flags().StringArrayVar(&opts.only, "only", nil, "Only show rules matching this glob (repeatable)")

	verifyCmd := &cobra.Command{
		Use:   "verify",
		Short: "Check the front matter of every rule",
		Long: `Check that every rule starts with a YAML front matter block declaring
description, globs and alwaysApply, and contains the rule body sections.
Exits with status 1 when any rule has problems.`,
		Args: cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			return runVerify(opts, s)
		},
	}

	historyCmd := &cobra.Command{
		Use:   "history",
		Short: "Show recently installed rules",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			return runHistory(opts, s)
		},
	}
	historyCmd.Flags().IntVar(&opts.limit, "limit", 20, "Number of installs to show")

	rootCmd.AddCommand(listCmd, verifyCmd, historyCmd)

	return rootCmd, sink
}

func longHelp() string {
	const description = `cursorrules copies Cursor rule templates (.mdc files grouped into
standards, test and utils) into a project.

Without flags every rule is copied to <root>/.cursor/rules. Use -i to pick
rules by category first, or --only to copy rules matching a glob such as
"standards/*" or "test".

Defaults for output, source, flat and only may be set in
<root>/.cursorrules.yaml; flags override them.`

	engine, err := tmpl.NewEngine()
	if err != nil {
		return description
	}
	banner, err := engine.Banner(tmpl.BannerData{Name: "cursorrules", Version: version, Tagline: tagline})
	if err != nil {
		return description
	}

	return banner + "\n" + description
}

// environment is everything resolved from flags and the project file.
type environment struct {
	ctx     *config.Context
	project *config.ProjectConfig
	output  string
	source  string
	only    []string
	flat    bool
}

// loadEnvironment builds the invocation context. The working directory is
// read here and nowhere else.
func loadEnvironment(opts *options) (*environment, error) {
	root := opts.root
	if root == "" {
		wd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("getting working directory: %w", err)
		}
		root = wd
	}

	absRoot, err := filepath.Abs(config.ExpandPath(root))
	if err != nil {
		return nil, fmt.Errorf("resolving project root: %w", err)
	}

	plat := platform.Detect()
	if opts.osOverride != "" {
		osType, err := platform.Parse(opts.osOverride)
		if err != nil {
			return nil, err
		}
		plat = plat.WithOS(osType)
	}

	cfgCtx, err := config.NewContext(absRoot, plat)
	if err != nil {
		return nil, err
	}

	project, err := config.LoadProject(cfgCtx.ProjectRoot)
	if err != nil {
		return nil, err
	}
	if project.Path() != "" {
		opts.logger.Debug("loaded project config", slog.String("path", project.Path()))
	}

	env := &environment{
		ctx:     cfgCtx,
		project: project,
		output:  cfgCtx.DefaultDestination,
		source:  project.SourceDir(cfgCtx.ProjectRoot),
		only:    project.Only,
		flat:    opts.flat || project.Flat,
	}

	if project.Output != "" {
		env.output = project.Output
	}
	// An explicit -o always wins, so an empty value is rejected by the
	// path guard instead of falling back to the default.
	if opts.outputSet {
		env.output = opts.output
	}
	if opts.source != "" {
		env.source = opts.source
	}
	if len(opts.only) > 0 {
		env.only = opts.only
	}

	return env, nil
}

// openCatalog returns the rules tree on disk when a source is configured and
// the bundled rules otherwise.
func (e *environment) openCatalog(logger *slog.Logger) (*catalog.Catalog, error) {
	if e.source == "" {
		return catalog.New(assets.Rules()).WithLogger(logger), nil
	}

	source := config.ExpandPath(e.source)
	if !filepath.IsAbs(source) {
		source = filepath.Join(e.ctx.ProjectRoot, source)
	}

	cat, err := catalog.FromDir(source)
	if err != nil {
		return nil, err
	}

	return cat.WithLogger(logger), nil
}

// filteredCatalog applies the --only patterns to every scan.
type filteredCatalog struct {
	catalog *catalog.Catalog
	only    []string
}

func (f filteredCatalog) Scan() (catalog.Index, error) {
	idx, err := f.catalog.Scan()
	if err != nil {
		return nil, err
	}

	return idx.Filter(f.only)
}

// openHistory opens the install history. The history is optional: a failure
// is reported and the copy goes ahead without it.
func openHistory(s streams) *state.Store {
	path := config.HistoryPath()
	if path == "" {
		return nil
	}

	store, err := state.Open(path)
	if err != nil {
		fmt.Fprintf(s.err, "Warning: could not open install history: %v\n", err)
		return nil
	}

	return store
}

func runInstall(opts *options, s streams) error {
	env, err := loadEnvironment(opts)
	if err != nil {
		return err
	}

	guard, err := pathguard.New(env.ctx.ProjectRoot, env.ctx.Platform)
	if err != nil {
		return err
	}

	dest, err := guard.Validate(env.output)
	if err != nil {
		return err
	}

	cat, err := env.openCatalog(opts.logger)
	if err != nil {
		return err
	}
	scanner := filteredCatalog{catalog: cat, only: env.only}

	inst := installer.New(cat.FS(), s.out).WithLogger(opts.logger)
	inst.DryRun = opts.dryRun
	inst.Flat = env.flat

	if store := openHistory(s); store != nil {
		defer func() {
			if err := store.PruneHistory(historyKeep); err != nil {
				opts.logger.Debug("pruning install history", slog.Any("error", err))
			}
			_ = store.Close()
		}()
		inst = inst.WithHistory(store, env.ctx.Platform.OS)
	}

	if opts.dryRun {
		fmt.Fprintln(s.out, tui.WarningStyle.Render("=== DRY RUN MODE ==="))
	}

	if opts.interactive {
		ctrl := tui.NewControllerForTerminal(scanner, inst, guard, s.in, s.out).WithLogger(opts.logger)
		return runWithCancellation(s.out, func(ctx context.Context) error {
			summary, err := tui.Run(ctx, ctrl, dest, s.in)
			if err != nil {
				return err
			}
			opts.logger.Debug("selection finished", slog.String("status", summary.Status.String()))
			return nil
		})
	}

	return runWithCancellation(s.out, func(ctx context.Context) error {
		if len(env.only) == 0 {
			return inst.CopyAll(ctx, dest)
		}

		idx, err := scanner.Scan()
		if err != nil {
			return err
		}
		items := idx.Items()
		if len(items) == 0 {
			fmt.Fprintln(s.out, tui.WarningStyle.Render("No rules match --only"))
			return nil
		}

		return inst.CopySelected(ctx, dest, items)
	})
}

// runWithCancellation runs a context-aware function with signal-based cancellation.
// It sets up SIGINT/SIGTERM handling and cancels the context when a signal is received.
func runWithCancellation(out io.Writer, fn func(ctx context.Context) error) error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	go func() {
		select {
		case <-sigChan:
			fmt.Fprintln(out, "\nOperation canceled by user")
			cancel()
		case <-ctx.Done():
		}
	}()

	return fn(ctx)
}
