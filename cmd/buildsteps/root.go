package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"github.com/systemstart/buildsteps/pkg/build"
	"github.com/systemstart/buildsteps/pkg/logging"
	"github.com/systemstart/buildsteps/pkg/processing"
	"github.com/systemstart/buildsteps/pkg/runner"
)

const (
	flagRecipe      = "recipe"
	flagRecipeShort = "f"
	flagEnvFile     = "env-file"
	flagLoggingType = "logging-type"
	flagLogLevel    = "log-level"

	defaultLoggingType = logging.Tint
	defaultLogLevel    = "info"
)

type rootFlags struct {
	recipe      string
	envFile     string
	loggingType string
	logLevel    string
	list        bool
	dryRun      bool
	insecure    bool
}

// usageError marks command line mistakes.
type usageError struct {
	err error
}

func (e *usageError) Error() string { return e.err.Error() }
func (e *usageError) Unwrap() error { return e.err }

// newRootCmd builds the root command. scannedRecipe is the --recipe value seen
// before parsing; cobra must agree with it.
func newRootCmd(engine *processing.Engine, scannedRecipe string) (*cobra.Command, error) {
	flags := &rootFlags{}
	values := func() build.Options { return build.NewOptions(nil) }

	cmd := &cobra.Command{
		Use:     "buildsteps [flags]",
		Short:   "Run the build steps declared in a recipe",
		Version: version,
		Args: func(cmd *cobra.Command, args []string) error {
			if err := cobra.NoArgs(cmd, args); err != nil {
				return &usageError{err: err}
			}
			return nil
		},
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if flags.recipe != scannedRecipe {
				return &usageError{err: fmt.Errorf("give the recipe as --%s PATH or -%s PATH", flagRecipe, flagRecipeShort)}
			}
			if engine == nil {
				return &usageError{err: fmt.Errorf("no recipe loaded, use --%s", flagRecipe)}
			}
			return runBuild(cmd.Context(), cmd.OutOrStdout(), engine, values(), flags)
		},
	}
	cmd.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return &usageError{err: err}
	})

	fs := cmd.Flags()
	fs.StringVarP(&flags.recipe, flagRecipe, flagRecipeShort, "", "recipe file (default: build.yaml found from the current directory)")
	fs.StringVar(&flags.envFile, flagEnvFile, "", "dotenv file to load (default: .env if present)")
	fs.StringVar(&flags.loggingType, flagLoggingType, defaultLoggingType, "logging type: "+strings.Join(logging.Types, ", "))
	fs.StringVar(&flags.logLevel, flagLogLevel, defaultLogLevel, "logging level: debug, info, warn, error")
	fs.BoolVar(&flags.list, "list", false, "list the recipe's steps and exit")
	fs.BoolVar(&flags.dryRun, "dry-run", false, "show which steps would run without running them")
	fs.BoolVar(&flags.insecure, "insecure-ignore-host-key", false, "accept unknown SSH host keys when no known_hosts file exists")

	// Registered before recipe options so -h cannot be taken.
	cmd.InitDefaultHelpFlag()

	if engine != nil {
		set, err := engine.Options()
		if err != nil {
			return nil, err
		}
		if err := set.Bind(fs); err != nil {
			return nil, err
		}
		values = set.Values
	}

	return cmd, nil
}

func runBuild(ctx context.Context, out io.Writer, engine *processing.Engine, opts build.Options, flags *rootFlags) error {
	bc := build.NewContext(build.EnvFromEnviron(os.Environ()), opts)

	if flags.list {
		enabled, err := engine.Enabled(opts)
		if err != nil {
			return err
		}
		return listSteps(out, engine.Registry(), enabled)
	}
	if flags.dryRun {
		plan, err := engine.Plan(bc)
		if err != nil {
			return err
		}
		return printPlan(out, plan)
	}

	transport := runner.NewSSHTransport()
	transport.InsecureIgnoreHostKey = flags.insecure
	bc.Runner = runner.New(transport)
	bc.Runner.Stdout = os.Stdout
	bc.Runner.Stderr = os.Stderr

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()
	return engine.Run(ctx, bc)
}

func listSteps(out io.Writer, reg *build.Registry, enabled build.EnabledSet) error {
	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "STEP\tKIND\tSELECTED\tCONDITIONS")
	for _, s := range reg.Steps() {
		selected := "no"
		if enabled.Has(s.Name) {
			selected = "yes"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", s.Name, stepKind(s), selected, conditionsString(s.Conditions))
	}
	return w.Flush()
}

func printPlan(out io.Writer, plan []build.PlanEntry) error {
	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "STEP\tACTION")
	for _, p := range plan {
		action := "run"
		switch {
		case !p.Enabled:
			action = "skip (disabled)"
		case !p.Eligible:
			action = "skip (condition)"
		}
		fmt.Fprintf(w, "%s\t%s\n", p.Step.Name, action)
	}
	return w.Flush()
}

func stepKind(s build.Step) string {
	switch {
	case !s.Optional:
		return "required"
	case s.DefaultEnabled:
		return "optional"
	default:
		return "optional, off by default"
	}
}

func conditionsString(conds []build.Condition) string {
	if len(conds) == 0 {
		return "-"
	}
	parts := make([]string, len(conds))
	for i, c := range conds {
		parts[i] = c.String()
	}
	return strings.Join(parts, " | ")
}
