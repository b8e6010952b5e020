// Package cli provides the seqplan command-line interface.
//
// Commands are built with Cobra, one command per file. The [App] container
// wires configuration, persistence, the controller, and the printer
// together; commands only talk to the App, which keeps them thin and
// testable.
//
// Command failures return [ExitError] rather than calling os.Exit directly,
// so tests can assert on exit codes without process termination.
package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"seqplan/internal/config"
	"seqplan/internal/controller"
	"seqplan/internal/output"
	"seqplan/internal/sequence"
	"seqplan/internal/store"
)

// App holds the wired application dependencies shared by all commands.
type App struct {
	Config     *config.Config
	Store      *store.Store
	Controller *controller.Controller
	Printer    *output.Printer
}

// NewApp builds an [App] from the standard configuration search path,
// writing output to stdout.
func NewApp() (*App, error) {
	return NewAppWithWriter(os.Stdout)
}

// NewAppWithWriter builds an [App] writing output to the given writer.
//
// When the configuration names a step-sequence manifest, its agent bindings
// take priority over the config file's review step agents. Manifest
// validation still enforces the canonical review order.
func NewAppWithWriter(w io.Writer) (*App, error) {
	cfg, err := config.NewLoader().Load()
	if err != nil {
		return nil, err
	}

	if cfg.Run.ManifestPath != "" {
		m, err := sequence.ReadFromFile(cfg.Run.ManifestPath)
		if err != nil {
			return nil, err
		}
		for i, step := range cfg.Review.Steps {
			if agent := m.AgentFor("review", step.Name); agent != "" {
				cfg.Review.Steps[i].Agent = agent
			}
		}
	}

	st := store.NewStoreWithPath("", cfg.Run.Path)

	printer := output.NewPrinterWithWriter(w)
	printer.SetTruncateLength(cfg.Output.TruncateLength)
	printer.SetColorEnabled(cfg.Output.Color)

	return &App{
		Config:     cfg,
		Store:      st,
		Controller: controller.New(st, cfg),
		Printer:    printer,
	}, nil
}

// ExecuteResult carries the outcome of a CLI execution for callers that
// need the exit code without terminating the process.
type ExecuteResult struct {
	ExitCode int
	Err      error
}

// Execute runs the CLI with os.Args and returns the process exit code.
func Execute() int {
	app, err := NewApp()
	if err != nil {
		fmt.Fprintf(os.Stderr, "seqplan: %v\n", err)
		return 1
	}
	return Run(app, os.Args[1:]).ExitCode
}

// Run executes the root command with the given arguments against a wired App.
func Run(app *App, args []string) ExecuteResult {
	root := NewRootCommand(app)
	root.SetArgs(args)

	if err := root.Execute(); err != nil {
		if code, ok := IsExitError(err); ok {
			return ExecuteResult{ExitCode: code, Err: err}
		}
		return ExecuteResult{ExitCode: 1, Err: err}
	}
	return ExecuteResult{}
}

// NewRootCommand builds the root cobra command with all subcommands attached.
func NewRootCommand(app *App) *cobra.Command {
	root := &cobra.Command{
		Use:   "seqplan",
		Short: "Sequential planning workflow controller",
		Long: `seqplan sequences a task through planning, review, and execution phases.

Planning is step-based with forced reflection pauses. Review delegates to
four reviewer agents in fixed order (annotate, specify-contracts,
specify-tests, quality-review) and gates execution on the recorded verdict.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(
		newStepCommand(app),
		newBacktrackCommand(app),
		newVerdictCommand(app),
		newExecuteCommand(app),
		newStatusCommand(app),
		newNotesCommand(app),
		newAbortCommand(app),
	)
	return root
}

// fail prints the error with its remediation actions and returns an
// [ExitError] for the command to propagate.
func (a *App) fail(err error) error {
	a.Printer.Error(err, controller.Remediation(err))
	return NewExitError(1)
}
