package cli

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/brandon-tan-keysight/opentap/internal/config"
	"github.com/brandon-tan-keysight/opentap/internal/engine"
	"github.com/brandon-tan-keysight/opentap/internal/model"
	"github.com/brandon-tan-keysight/opentap/internal/params"
	"github.com/brandon-tan-keysight/opentap/internal/plan"
	"github.com/brandon-tan-keysight/opentap/internal/plugin"
	"github.com/brandon-tan-keysight/opentap/internal/results"
)

// runFlags holds the flag values for the run command.
// These are bound to cobra flags in NewRunCommand.
type runFlags struct {
	settings         string   // --settings: named settings profile
	search           []string // --search: plugin search directories
	metadata         []string // --metadata: key=value run metadata
	nonInteractive   bool     // --non-interactive: suppress prompting
	external         []string // -e/--external: strict overrides or parameter files
	tryExternal      []string // -t/--try-external: lenient overrides or parameter files
	listExternal     bool     // --list-external-parameters: listing-only mode
	results          string   // --results: listener selection
	ignoreLoadErrors bool     // --ignore-load-errors: lenient plan loading
}

// NewRunCommand creates the "run" cobra command.
func NewRunCommand() *cobra.Command {
	flags := &runFlags{}

	cmd := &cobra.Command{
		Use:   "run <test-plan>",
		Short: "Run a test plan",
		Long: `Load a previously authored test plan, apply external parameters, and
execute it. The process exit code encodes the outcome: 0 for a passing
run, 20 inconclusive, 30 fail, 50 for an aborted or errored run, and
60/70/80 for argument, load, and plugin errors respectively.

External parameters come in two flavors. Strict ones (-e) must name an
existing plan parameter or the run aborts before executing; lenient ones
(-t) are silently ignored when unmatched. An entry without an "=" is
always read as a bulk parameter file path (YAML, JSON/JSONC, or CSV).`,
		Example: `  # Run a plan as authored
  tap run nightly.yaml

  # Override parameters, strictly and leniently
  tap run nightly.yaml -e host=10.0.0.7 -t retries=2

  # Bulk parameter file plus plugin search directories
  tap run nightly.yaml -e params.csv --search ./plugins

  # Inspect the parameter surface without executing
  tap run nightly.yaml --list-external-parameters

  # Enable exactly the CSV and JSON result listeners
  tap run nightly.yaml --results CSV,JSON`,

		Args: cobra.ExactArgs(1),

		// RunE is used instead of Run so errors flow to the Execute
		// error handler in root.go, which owns exit-code mapping.
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRun(cmd, args[0], flags)
		},
	}

	// StringArrayVar (not StringSliceVar) for the repeatable flags: the
	// values are key=value pairs and file paths that may legitimately
	// contain commas, so cobra must not split them.
	cmd.Flags().StringVar(&flags.settings, "settings", "", "Settings profile name (loads settings/<name>.yaml)")
	cmd.Flags().StringArrayVar(&flags.search, "search", nil, "Plugin search directory; implies lenient plan loading (repeatable)")
	cmd.Flags().StringArrayVar(&flags.metadata, "metadata", nil, "Run metadata as key=value (repeatable)")
	cmd.Flags().BoolVar(&flags.nonInteractive, "non-interactive", false, "Never prompt for user input")
	cmd.Flags().StringArrayVarP(&flags.external, "external", "e", nil, "External parameter as name=value, or a parameter file path (repeatable)")
	cmd.Flags().StringArrayVarP(&flags.tryExternal, "try-external", "t", nil, "Like --external, but unknown parameter names are ignored (repeatable)")
	cmd.Flags().BoolVar(&flags.listExternal, "list-external-parameters", false, "List the plan's external parameters instead of running")
	cmd.Flags().StringVar(&flags.results, "results", "", "Comma-separated result listener names to exclusively enable")
	cmd.Flags().BoolVar(&flags.ignoreLoadErrors, "ignore-load-errors", false, "Turn plan load errors into warnings")

	return cmd
}

// runRun is the main orchestration function for the run command.
// Every transition fails fast: the first component to signal an error
// terminates the run with that error's exit code.
func runRun(cmd *cobra.Command, planPath string, flags *runFlags) error {
	ctx := cmd.Context()
	out := cmd.OutOrStdout()

	// Step 1: Settings profile. Profile values are defaults only; any
	// explicitly provided flag wins.
	resultsSpec, err := applyProfileDefaults(cmd, flags)
	if err != nil {
		return err
	}

	lenient := flags.ignoreLoadErrors

	// Step 2: Plugin search directories. Resolution is all-or-nothing, and
	// the implicit lenient-load shim applies only after the whole batch
	// resolved: an invalid directory aborts before lenient mode is set.
	pluginReg := plugin.NewRegistry()
	var discovery *plugin.Discovery
	if len(flags.search) > 0 {
		dirs, err := plugin.ResolveSearchDirs(flags.search)
		if err != nil {
			return err
		}
		lenient = true
		pluginReg.AddSearchDirs(dirs)

		// Fire-and-forget warm-up. Nothing below waits for discovery
		// unless the plan declares required capabilities.
		discovery = pluginReg.StartDiscovery(ctx)
		VerboseLog("plugin discovery started over %d directories", len(dirs))
	}

	// Step 3: Run metadata. Malformed entries warn and drop, never abort.
	metadata := params.ParseMetadata(flags.metadata)

	// Step 4: External parameter overrides and bulk file references.
	set := params.Resolve(flags.external, flags.tryExternal)

	// Step 5: Load the plan. The raw serialized form is cacheable only
	// when nothing will modify the plan after loading.
	cacheRaw := set.IsEmpty()
	tp, err := plan.LoadFile(planPath, cacheRaw, set.Merged(), lenient)
	if err != nil {
		return err
	}
	VerboseLog("loaded test plan %q with %d step(s)", tp.Name, len(tp.Steps))

	// Step 6: Strict channel re-validation. Lenient misses were already
	// silent no-ops during load.
	if unknown := tp.UnknownParameters(set.StrictNames()); len(unknown) > 0 {
		return model.NewCLIError(model.ExitArgumentError,
			fmt.Sprintf("unknown external parameter(s): %s", strings.Join(unknown, ", ")))
	}

	// Step 7: Bulk parameter files, after direct overrides, one file at a
	// time with per-file recovery.
	plan.ApplyImportFiles(tp, set.Files, plan.Importers())

	// Step 8: Result listener selection. Only when the flag (or a profile)
	// provided a selection at all; absence leaves the defaults untouched,
	// which is distinct from an empty selection disabling everything.
	reg := defaultRegistry(out)
	if resultsSpec != nil {
		if err := results.Select(reg, *resultsSpec, out); err != nil {
			return err
		}
	}

	// Step 9a: Listing-only mode loads but never executes.
	if flags.listExternal {
		printExternalParameters(out, tp)
		return nil
	}

	// Step 9b: Required plugin capabilities. This is the one point that
	// joins the discovery handle, and only because the plan demands an
	// answer before execution.
	if len(tp.Requires) > 0 {
		if discovery != nil {
			VerboseLog("waiting for plugin discovery to finish")
			discovery.Wait()
		}
		var missing []string
		for _, req := range tp.Requires {
			if !pluginReg.Provides(req) {
				missing = append(missing, req)
			}
		}
		if len(missing) > 0 {
			return model.NewCLIError(model.ExitPluginError,
				fmt.Sprintf("required plugin capability not found: %s", strings.Join(missing, ", ")))
		}
	}

	// Step 10: Execute and map the verdict. Non-zero verdict codes are
	// outcomes, not diagnostics, so they exit silently.
	verdict := engine.Run(ctx, tp, reg, engine.Options{
		Metadata:       metadata,
		NonInteractive: flags.nonInteractive,
	})
	VerboseLog("run verdict: %s", verdict)

	if code := model.ExitCodeForVerdict(verdict); code != model.ExitOK {
		return model.ExitWithCode(code)
	}
	return nil
}

// applyProfileDefaults loads the settings profile (if any) and merges its
// values under the explicit flags: a flag the user set keeps its value,
// everything else falls back to the profile.
//
// It returns the effective results selection. Nil means no selection was
// made anywhere, which leaves the registry's default enablement untouched;
// that is distinct from a pointer to the empty string, which disables
// every listener.
func applyProfileDefaults(cmd *cobra.Command, flags *runFlags) (*string, error) {
	var resultsSpec *string
	if cmd.Flags().Changed("results") {
		spec := flags.results
		resultsSpec = &spec
	}

	if flags.settings == "" {
		return resultsSpec, nil
	}

	cwd, err := os.Getwd()
	if err != nil {
		return nil, model.WrapCLIError(model.ExitRuntimeError, "failed to get current directory", err)
	}

	profile, err := config.LoadProfile(cwd, flags.settings)
	if err != nil {
		return nil, err
	}
	VerboseLog("applying settings profile %q", flags.settings)

	if !cmd.Flags().Changed("search") && len(profile.Search) > 0 {
		flags.search = profile.Search
	}
	// Profile metadata applies before flag metadata, so later (explicit)
	// records win wherever a sink keys them by name.
	if len(profile.Metadata) > 0 {
		flags.metadata = append(append([]string(nil), profile.Metadata...), flags.metadata...)
	}
	if resultsSpec == nil && profile.Results != nil {
		resultsSpec = profile.Results
	}
	flags.nonInteractive = flags.nonInteractive || profile.NonInteractive
	flags.ignoreLoadErrors = flags.ignoreLoadErrors || profile.IgnoreLoadErrors

	return resultsSpec, nil
}

// defaultRegistry builds the per-run listener registry: console output
// enabled, file reports available but disabled until selected.
func defaultRegistry(out io.Writer) *results.Registry {
	return results.NewRegistry(
		results.NewConsoleListener(out),
		results.NewJSONReportListener("results.json"),
		results.NewCSVReportListener("results.csv"),
	)
}

// printExternalParameters enumerates the plan's parameter surface: each
// parameter's resolved value (pipe-delimited selected set for multi-valued
// parameters) plus the available values where the plan enumerates them.
func printExternalParameters(w io.Writer, tp *plan.TestPlan) {
	fmt.Fprintf(w, "Listing %d external test plan parameter(s).\n", len(tp.Parameters))
	for _, p := range tp.Parameters {
		line := fmt.Sprintf("  %s = %s", p.Name, p.ResolvedValue())
		if len(p.Available) > 0 {
			line += fmt.Sprintf(" (available: %s)", strings.Join(p.Available, "|"))
		}
		fmt.Fprintln(w, line)
	}
}
