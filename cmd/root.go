// Package cmd implements the CLI command structure for tasklist.
package cmd

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/nibzard/tasklist/internal/config"
	"github.com/nibzard/tasklist/internal/logging"
	"github.com/nibzard/tasklist/internal/output"
	"github.com/nibzard/tasklist/internal/storage"
	"github.com/nibzard/tasklist/internal/store"
	"github.com/nibzard/tasklist/internal/todo"
	"github.com/nibzard/tasklist/internal/ui"
)

// Version is set via ldflags at build time.
var Version = "dev"

// now is the clock used for overdue markers.
var now = time.Now

// ErrMissingFields is returned by add when number or title is empty.
var ErrMissingFields = errors.New("number and title required")

// Run executes the tasklist CLI.
func Run(ctx context.Context, args []string) error {
	return run(ctx, args, os.Stdout, os.Stderr)
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	// Create a flag set for global options
	fs := flag.NewFlagSet("tasklist", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() {
		printUsage(fs, stderr)
	}
	help := fs.Bool("help", false, "Show help")
	fs.BoolVar(help, "h", false, "Show help")
	showVersion := fs.Bool("version", false, "Show version")
	fs.BoolVar(showVersion, "v", false, "Show version")

	// Global flags
	cws, err := config.LoadWithSources(fs, args)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	cfg := cws.Config
	if *help {
		printUsage(fs, stdout)
		return nil
	}
	if *showVersion {
		return versionCommand(stdout)
	}

	// Determine the subcommand
	// If no args or first arg is a flag, use "ls" as default
	subcommand := "ls"
	remainingArgs := fs.Args()
	if len(remainingArgs) > 0 {
		if !strings.HasPrefix(remainingArgs[0], "-") {
			subcommand = remainingArgs[0]
			remainingArgs = remainingArgs[1:]
		}
	}

	// Execute the subcommand
	switch subcommand {
	case "ls", "list":
		return withApp(cfg, stderr, func(a *app) error {
			return lsCommand(a, stdout, remainingArgs)
		})
	case "add":
		return withApp(cfg, stderr, func(a *app) error {
			return addCommand(a, stdout, remainingArgs)
		})
	case "rm", "delete":
		return withApp(cfg, stderr, func(a *app) error {
			return rmCommand(a, stdout, remainingArgs)
		})
	case "check", "toggle":
		return withApp(cfg, stderr, func(a *app) error {
			return checkCommand(a, stdout, remainingArgs)
		})
	case "mv", "move":
		return withApp(cfg, stderr, func(a *app) error {
			return mvCommand(a, stdout, remainingArgs)
		})
	case "tui":
		return tuiCommand(ctx, cfg, stdout, remainingArgs)
	case "doctor":
		return doctorCommand(cws, stdout, remainingArgs)
	case "init":
		return initCommand(stdout, remainingArgs)
	case "version":
		return versionCommand(stdout)
	case "help":
		printUsage(fs, stdout)
		return nil
	default:
		fmt.Fprintf(stderr, "Unknown command: %s\n", subcommand)
		printUsage(fs, stderr)
		return fmt.Errorf("unknown command: %s", subcommand)
	}
}

// app holds the opened backend and the loaded store for one command.
type app struct {
	cfg    *config.Config
	kv     storage.KV
	store  *store.Store
	logger *log.Logger
}

// openApp opens the configured backend and loads the task list. Log output
// goes to logOut.
func openApp(cfg *config.Config, logOut io.Writer) (*app, error) {
	logger := logging.NewFromConfig(logOut, cfg.LogLevel, cfg.LogFormat, cfg.LogTimestamps, cfg.LogCaller)

	kv, err := storage.Open(cfg.StorageOptions())
	if err != nil {
		return nil, fmt.Errorf("opening %s storage: %w", cfg.Backend, err)
	}
	logger.Debug("storage opened", "backend", cfg.Backend, "dir", cfg.DataDir, "namespace", cfg.Namespace)

	s := store.New(store.NewSlot(kv, cfg.StorageKey), store.WithLogger(logger))
	if err := s.Load(); err != nil {
		_ = kv.Close()
		return nil, err
	}
	return &app{cfg: cfg, kv: kv, store: s, logger: logger}, nil
}

func (a *app) Close() error {
	return a.kv.Close()
}

func withApp(cfg *config.Config, logOut io.Writer, fn func(*app) error) error {
	a, err := openApp(cfg, logOut)
	if err != nil {
		return err
	}
	defer func() {
		if err := a.Close(); err != nil {
			a.logger.Warn("closing storage failed", "err", err)
		}
	}()
	return fn(a)
}

// lsCommand prints the list, filtered by the optional search term. ls takes
// no flags, so a term such as "-04" is searched as written.
func lsCommand(a *app, w io.Writer, args []string) error {
	if len(args) > 0 && args[0] == "--" {
		args = args[1:]
	}

	term := strings.Join(args, " ")
	a.store.Search(term)
	view := a.store.FilteredView()

	if term != "" {
		output.FormatSearchHeader(w, term, len(view), a.store.Len())
	}
	if len(view) == 0 {
		output.FormatEmpty(w, term != "")
		return nil
	}
	today := now()
	for _, entry := range view {
		output.FormatTask(w, entry.Index+1, entry.Task, today)
	}
	return nil
}

// addCommand appends a task.
func addCommand(a *app, w io.Writer, args []string) error {
	fs := flag.NewFlagSet("tasklist add", flag.ContinueOnError)
	number := fs.String("number", "", "Task number")
	title := fs.String("title", "", "Task title (defaults to the remaining arguments)")
	due := fs.String("due", "", "Due date (YYYY-MM-DD)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if *title == "" {
		*title = strings.Join(fs.Args(), " ")
	} else if fs.NArg() > 0 {
		return fmt.Errorf("unexpected arguments: %v", fs.Args())
	}
	if *due != "" {
		if _, err := time.Parse(output.DateLayout, *due); err != nil {
			return fmt.Errorf("invalid due date %q (expected YYYY-MM-DD)", *due)
		}
	}

	if !a.store.Add(*number, *title, *due) {
		return ErrMissingFields
	}
	n := a.store.Len()
	output.FormatTask(w, n, a.store.Tasks()[n-1], now())
	return nil
}

// rmCommand deletes the task at a 1-based position.
func rmCommand(a *app, w io.Writer, args []string) error {
	positions, err := parsePositions("rm", args, 1)
	if err != nil {
		return err
	}
	pos := positions[0]
	if err := checkPosition(a.store, pos); err != nil {
		return err
	}

	task := a.store.Tasks()[pos-1]
	if err := a.store.Delete(pos - 1); err != nil {
		return err
	}
	fmt.Fprintf(w, "deleted: %s\n", output.NormalizeTitle(task.Title))
	return nil
}

// checkCommand toggles the task at a 1-based position.
func checkCommand(a *app, w io.Writer, args []string) error {
	positions, err := parsePositions("check", args, 1)
	if err != nil {
		return err
	}
	pos := positions[0]
	if err := checkPosition(a.store, pos); err != nil {
		return err
	}

	if err := a.store.ToggleCheck(pos - 1); err != nil {
		return err
	}
	output.FormatTask(w, pos, a.store.Tasks()[pos-1], now())
	return nil
}

// mvCommand moves a task between 1-based positions.
func mvCommand(a *app, w io.Writer, args []string) error {
	positions, err := parsePositions("mv", args, 2)
	if err != nil {
		return err
	}
	from, to := positions[0], positions[1]
	for _, pos := range positions {
		if err := checkPosition(a.store, pos); err != nil {
			return err
		}
	}

	if err := a.store.Move(from-1, to-1); err != nil {
		return err
	}
	output.FormatTask(w, to, a.store.Tasks()[to-1], now())
	return nil
}

// tuiCommand launches the TUI. Logs go to a file so they never reach the
// alternate screen.
func tuiCommand(ctx context.Context, cfg *config.Config, stdout io.Writer, args []string) error {
	fs := flag.NewFlagSet("tasklist tui", flag.ContinueOnError)
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() > 0 {
		return fmt.Errorf("unexpected arguments: %v", fs.Args())
	}
	if !ui.IsTTY(stdout) {
		return fmt.Errorf("tui requires a TTY")
	}

	logFile, err := logging.OpenFile(cfg.LogPath())
	if err != nil {
		return err
	}
	defer logFile.Close()

	return withApp(cfg, logFile, func(a *app) error {
		return ui.RunTUI(ctx, a.store)
	})
}

// doctorCommand reports config sources, backend reachability and snapshot
// validity. It never writes to the backend.
func doctorCommand(cws *config.ConfigWithSources, w io.Writer, args []string) error {
	fs := flag.NewFlagSet("tasklist doctor", flag.ContinueOnError)
	verbose := fs.Bool("v", false, "Verbose output")
	if err := fs.Parse(args); err != nil {
		return err
	}
	cfg := cws.Config

	fmt.Fprintln(w, "Tasklist Doctor")
	fmt.Fprintln(w, "===============")
	fmt.Fprintln(w)

	allOK := true

	// Config
	fmt.Fprintln(w, "Config:")
	if file := cws.GetConfigFile(); file != "" {
		fmt.Fprintf(w, "  File: %s\n", file)
	} else {
		fmt.Fprintln(w, "  File: (none, using defaults)")
	}
	values := map[string]string{
		"backend":        cfg.Backend,
		"data_dir":       cfg.DataDir,
		"namespace":      cfg.Namespace,
		"storage_key":    cfg.StorageKey,
		"log_level":      cfg.LogLevel,
		"log_format":     cfg.LogFormat,
		"log_timestamps": strconv.FormatBool(cfg.LogTimestamps),
		"log_caller":     strconv.FormatBool(cfg.LogCaller),
		"log_file":       cfg.LogPath(),
	}
	fields := make([]string, 0, len(values))
	for field := range values {
		fields = append(fields, field)
	}
	sort.Strings(fields)
	for _, field := range fields {
		fmt.Fprintf(w, "  %-15s %s (%s)\n", field, values[field], cws.Sources[field])
	}
	fmt.Fprintln(w)

	// Storage
	fmt.Fprintf(w, "Storage (%s):\n", cfg.Backend)
	kv, err := storage.Open(cfg.StorageOptions())
	if err != nil {
		fmt.Fprintf(w, "  ❌ Error: %v\n", err)
		fmt.Fprintln(w)
		fmt.Fprintln(w, "⚠️  Some checks failed.")
		return fmt.Errorf("doctor checks failed")
	}
	defer kv.Close()
	switch b := kv.(type) {
	case *storage.File:
		fmt.Fprintf(w, "  Directory: %s\n", b.Dir())
		fmt.Fprintf(w, "  Location: %s\n", b.Path(cfg.StorageKey))
	case *storage.SQLite:
		fmt.Fprintf(w, "  Location: %s (namespace %s)\n", b.Path(), cfg.Namespace)
	case *storage.Memory:
		fmt.Fprintln(w, "  ⚠️  Memory backend: tasks are not kept between runs")
	}
	fmt.Fprintln(w, "  ✅ OK")
	fmt.Fprintln(w)

	// Snapshot
	slot := store.NewSlot(kv, cfg.StorageKey)
	fmt.Fprintf(w, "Snapshot (key %q):\n", slot.Key())
	data, ok, err := slot.Raw()
	switch {
	case err != nil:
		fmt.Fprintf(w, "  ❌ Read error: %v\n", err)
		allOK = false
	case !ok:
		fmt.Fprintln(w, "  ⚠️  Not found (seed tasks are written on first use)")
	default:
		result := todo.Validate(data)
		if result.Valid {
			list, err := todo.Decode(data)
			if err != nil {
				fmt.Fprintf(w, "  ❌ Decode error: %v\n", err)
				allOK = false
				break
			}
			fmt.Fprintf(w, "  ✅ Valid (%d tasks)\n", len(list))
			if *verbose {
				today := now()
				for i, task := range list {
					output.FormatTask(w, i+1, task, today)
				}
			}
		} else {
			fmt.Fprintln(w, "  ❌ Validation failed (seed tasks replace it on next use):")
			for _, e := range result.Errors {
				fmt.Fprintf(w, "     - %v\n", e)
			}
			allOK = false
		}
	}
	fmt.Fprintln(w)

	if allOK {
		fmt.Fprintln(w, "✅ All checks passed!")
		return nil
	}
	fmt.Fprintln(w, "⚠️  Some checks failed.")
	return fmt.Errorf("doctor checks failed")
}

// initCommand writes an example project config file.
func initCommand(w io.Writer, args []string) error {
	fs := flag.NewFlagSet("tasklist init", flag.ContinueOnError)
	force := fs.Bool("force", false, "Overwrite an existing config file")
	if err := fs.Parse(args); err != nil {
		return err
	}
	path := "tasklist.toml"
	if fs.NArg() == 1 {
		path = fs.Arg(0)
	} else if fs.NArg() > 1 {
		return fmt.Errorf("unexpected arguments: %v", fs.Args()[1:])
	}

	if _, err := os.Stat(path); err == nil && !*force {
		fmt.Fprintf(w, "%s already exists (use -force to overwrite)\n", path)
		return nil
	}
	if err := os.WriteFile(path, []byte(config.ExampleConfig()), 0644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	fmt.Fprintf(w, "wrote %s\n", path)
	return nil
}

func versionCommand(w io.Writer) error {
	fmt.Fprintf(w, "tasklist version %s\n", Version)
	return nil
}

func printUsage(fs *flag.FlagSet, w io.Writer) {
	fmt.Fprintln(w, "Tasklist - an ordered to-do list in your terminal")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Usage:")
	fmt.Fprintln(w, "  tasklist [options] [command] [args]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Commands:")
	fmt.Fprintln(w, "  ls [term]            List tasks, optionally filtered (default command)")
	fmt.Fprintln(w, "  add [options] title  Add a task")
	fmt.Fprintln(w, "  rm <pos>             Delete the task at a position")
	fmt.Fprintln(w, "  check <pos>          Toggle the task at a position")
	fmt.Fprintln(w, "  mv <from> <to>       Move a task to another position")
	fmt.Fprintln(w, "  tui                  Launch terminal UI")
	fmt.Fprintln(w, "  doctor [-v]          Check config, storage and snapshot")
	fmt.Fprintln(w, "  init [path]          Write an example tasklist.toml")
	fmt.Fprintln(w, "  version              Show version information")
	fmt.Fprintln(w, "  help                 Show this help message")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Global Options:")
	fs.SetOutput(w)
	fs.PrintDefaults()
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Add Options (use with 'add' command):")
	fmt.Fprintln(w, "  -number string")
	fmt.Fprintln(w, "        Task number (required)")
	fmt.Fprintln(w, "  -title string")
	fmt.Fprintln(w, "        Task title (defaults to the remaining arguments)")
	fmt.Fprintln(w, "  -due string")
	fmt.Fprintln(w, "        Due date (YYYY-MM-DD)")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Positions are 1-based, as printed by 'ls'.")
}

// parsePositions parses exactly want 1-based positions.
func parsePositions(command string, args []string, want int) ([]int, error) {
	if len(args) != want {
		return nil, fmt.Errorf("%s: expected %d position argument(s), got %d", command, want, len(args))
	}
	out := make([]int, want)
	for i, arg := range args {
		pos, err := strconv.Atoi(strings.TrimSpace(arg))
		if err != nil {
			return nil, fmt.Errorf("%s: invalid position %q", command, arg)
		}
		out[i] = pos
	}
	return out, nil
}

func checkPosition(s *store.Store, pos int) error {
	if pos < 1 || pos > s.Len() {
		return fmt.Errorf("no task at position %d (have %d): %w", pos, s.Len(), store.ErrIndexOutOfRange)
	}
	return nil
}
