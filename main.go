package main

import (
	"context"
	"fmt"
	"os"

	"wenv/internal/backup"
	"wenv/internal/config"
	"wenv/internal/errors"
	"wenv/internal/fsys"
	"wenv/internal/logging"
	"wenv/internal/model"
	"wenv/internal/render"
	"wenv/internal/repair"
	"wenv/internal/store"
	"wenv/internal/tui"
	"wenv/internal/web"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog/log"
	"github.com/spf13/pflag"
	"github.com/tcnksm/go-latest"
)

func checkUpdate(currentVer string) {
	githubTag := &latest.GithubTag{
		Owner:      "wenv-tool",
		Repository: "wenv",
	}

	res, err := latest.Check(githubTag, currentVer)
	if err != nil {
		log.Debug().Err(err).Msg("Update check failed")
		return
	}

	if res.Outdated {
		fmt.Printf("\n✨ A new version is available: %s (you have %s)\n", res.Current, currentVer)
	} else {
		fmt.Printf("✅ You are using the latest version: %s\n", currentVer)
	}
}

// flags holds the parsed command-line options.
type flags struct {
	json, fix, write, dryRun *bool
	config, store, addr      *string
	tui, web                 *bool
	verbose                  *int
	logFile, version, update *bool
	help                     *bool
}

// defineFlags registers wenv's options. --web has no shorthand so that a
// mistyped --write never starts a server.
func defineFlags(fs *pflag.FlagSet) *flags {
	return &flags{
		json:    fs.BoolP("json", "j", false, "Output raw data as JSON"),
		fix:     fs.BoolP("fix", "f", false, "Compute the corrected value of a list variable"),
		write:   fs.Bool("write", false, "Commit the corrected value (turns off dry run)"),
		dryRun:  fs.Bool("dry-run", true, "Never write to the store"),
		config:  fs.StringP("config", "c", "", "Path to a config file"),
		store:   fs.String("store", "", "Store backend: file, registry or memory"),
		tui:     fs.BoolP("tui", "t", false, "Start the interactive view"),
		web:     fs.Bool("web", false, "Start Web Mode (local API)"),
		addr:    fs.String("addr", "localhost:8080", "Listen address for --web"),
		verbose: fs.CountP("verbose", "v", "Increase log verbosity (repeatable)"),
		logFile: fs.Bool("log-file", false, "Also write logs to the state directory"),
		version: fs.BoolP("version", "V", false, "Print version information"),
		update:  fs.BoolP("update", "u", false, "Check for the latest version"),
		help:    fs.BoolP("help", "h", false, "Show this help message"),
	}
}

// app bundles what every command needs.
type app struct {
	cfg     *config.Config
	store   store.Store
	service *repair.Service
	jsonOut bool
}

func main() {
	pflag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: wenv [options] [command] [args]\n\n")
		fmt.Fprintf(os.Stderr, "wenv inspects your persisted environment variables and repairs\n")
		fmt.Fprintf(os.Stderr, "list variables such as PATH.\n\n")
		fmt.Fprintf(os.Stderr, "Commands:\n")
		fmt.Fprintf(os.Stderr, "  list                 List every variable (default)\n")
		fmt.Fprintf(os.Stderr, "  show NAME            Print one variable, one list entry per line\n")
		fmt.Fprintf(os.Stderr, "  path [NAME]          Check each entry of a list variable\n")
		fmt.Fprintf(os.Stderr, "  set NAME VALUE       Write a variable\n")
		fmt.Fprintf(os.Stderr, "  restore [NAME] [ID]  Restore a value saved before a repair\n")
		fmt.Fprintf(os.Stderr, "  backups              List saved values\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		pflag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  wenv                      # List variables\n")
		fmt.Fprintf(os.Stderr, "  wenv path                 # Report broken PATH entries\n")
		fmt.Fprintf(os.Stderr, "  wenv path --fix           # Preview the corrected PATH\n")
		fmt.Fprintf(os.Stderr, "  wenv path --fix --write   # Commit it\n")
		fmt.Fprintf(os.Stderr, "  wenv --tui                # Interactive PATH view\n")
	}

	f := defineFlags(pflag.CommandLine)
	pflag.Parse()

	if *f.help {
		pflag.Usage()
		return
	}

	logging.SetupLogger(*f.verbose, *f.logFile)

	if *f.version {
		fmt.Printf("wenv version %s\n", model.Version)
		return
	}

	if *f.update {
		checkUpdate(model.Version)
		return
	}

	cfg, err := config.Load(*f.config)
	if err != nil {
		fail(err)
	}
	if *f.store != "" {
		cfg.Store.Backend = *f.store
	}
	if *f.write {
		cfg.Repair.DryRun = false
	} else if pflag.Lookup("dry-run").Changed {
		cfg.Repair.DryRun = *f.dryRun
	}

	a, err := newApp(cfg, *f.json)
	if err != nil {
		fail(err)
	}
	defer a.store.Close()

	args := pflag.Args()

	if *f.web {
		srv := web.NewServer(a.store, a.service, cfg.Path.Variable, cfg.Repair.DryRun)
		if err := srv.ListenAndServe(*f.addr); err != nil {
			fail(err)
		}
		return
	}

	if *f.tui {
		name := cfg.Path.Variable
		if len(args) > 1 && args[0] == "path" {
			name = args[1]
		}
		runTuiMode(a, name)
		return
	}

	if len(args) == 0 {
		args = []string{"list"}
	}
	if err := a.run(args, *f.fix); err != nil {
		fail(err)
	}
}

func newApp(cfg *config.Config, jsonOut bool) (*app, error) {
	s, err := store.Open(cfg.Store)
	if err != nil {
		return nil, err
	}

	opts := repair.Options{
		Delimiter: cfg.Path.Delimiter,
		Workers:   cfg.Path.Workers,
	}
	if cfg.Repair.Backup {
		opts.Backups = backup.Open(cfg.Repair.BackupPath)
	}
	checker := fsys.NewOSChecker(cfg.Path.Expand)

	return &app{
		cfg:     cfg,
		store:   s,
		service: repair.NewService(s, checker.Exists, opts),
		jsonOut: jsonOut,
	}, nil
}

func (a *app) run(args []string, fix bool) error {
	switch args[0] {
	case "list":
		return a.list()
	case "show":
		if len(args) < 2 {
			return errors.New(errors.ErrInternal, "usage: wenv show NAME")
		}
		return a.show(args[1])
	case "path":
		name := a.cfg.Path.Variable
		if len(args) > 1 {
			name = args[1]
		}
		return a.path(name, fix)
	case "set":
		if len(args) < 3 {
			return errors.New(errors.ErrInternal, "usage: wenv set NAME VALUE")
		}
		return a.set(args[1], args[2])
	case "restore":
		name, id := a.cfg.Path.Variable, ""
		if len(args) > 1 {
			name = args[1]
		}
		if len(args) > 2 {
			id = args[2]
		}
		return a.restore(name, id)
	case "backups":
		return a.backups()
	}
	pflag.Usage()
	return errors.Newf(errors.ErrInternal, "unknown command %q", args[0])
}

func (a *app) list() error {
	vars, err := a.store.Enumerate()
	if err != nil {
		return err
	}
	if a.jsonOut {
		return render.JSON(os.Stdout, vars)
	}
	return render.Variables(os.Stdout, vars, render.TerminalWidth(a.cfg.Display.MaxWidth))
}

func (a *app) show(name string) error {
	value, err := a.store.Get(name)
	if err != nil {
		return err
	}
	if a.jsonOut {
		return render.JSON(os.Stdout, model.Variable{Name: name, Value: value})
	}
	return render.Value(os.Stdout, name, value, a.cfg.Path.Delimiter)
}

func (a *app) path(name string, fix bool) error {
	ctx := context.Background()
	if !fix {
		report, err := a.service.Inspect(ctx, name)
		if err != nil {
			return err
		}
		if a.jsonOut {
			return render.JSON(os.Stdout, report)
		}
		fmt.Print(render.Report(report))
		return nil
	}

	plan, err := a.service.Plan(ctx, name)
	if err != nil {
		return err
	}
	res, applyErr := a.service.Apply(plan, a.cfg.Repair.DryRun)
	// The plan is still worth showing when the write failed.
	if a.jsonOut {
		if err := render.JSON(os.Stdout, res); err != nil {
			return err
		}
	} else {
		fmt.Print(render.Report(plan))
		if line := render.Outcome(res); line != "" && applyErr == nil {
			fmt.Println(line)
		}
	}
	return applyErr
}

func (a *app) set(name, value string) error {
	if err := a.store.Set(name, value); err != nil {
		return err
	}
	fmt.Printf("Set %s.\n", name)
	return nil
}

func (a *app) restore(name, id string) error {
	rec, err := a.service.Restore(name, id)
	if err != nil {
		return err
	}
	fmt.Printf("Restored %s from backup %s (%s).\n", rec.Variable, rec.ID, rec.CreatedAt.Local().Format("2006-01-02 15:04"))
	return nil
}

func (a *app) backups() error {
	if !a.cfg.Repair.Backup {
		return errors.New(errors.ErrBackupNotFound, "backups are disabled")
	}
	recs, err := backup.Open(a.cfg.Repair.BackupPath).List()
	if err != nil {
		return err
	}
	if a.jsonOut {
		return render.JSON(os.Stdout, recs)
	}
	if len(recs) == 0 {
		fmt.Println("No backups.")
		return nil
	}
	for _, r := range recs {
		fmt.Printf("%s  %s  %s\n", r.CreatedAt.Local().Format("2006-01-02 15:04"), r.ID, r.Variable)
	}
	return nil
}

func runTuiMode(a *app, name string) {
	m := tui.InitialModel(a.service, name, a.cfg.Repair.DryRun)
	p := tea.NewProgram(m, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		fmt.Printf("Alas, there's been an error: %v", err)
		os.Exit(1)
	}
}

func fail(err error) {
	log.Debug().Str("code", string(errors.GetCode(err))).Msg("Command failed")
	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	os.Exit(1)
}
