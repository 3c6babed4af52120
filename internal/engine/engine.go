package engine

import (
	"context"
	"errors"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/brandon-tan-keysight/opentap/internal/model"
	"github.com/brandon-tan-keysight/opentap/internal/output"
	"github.com/brandon-tan-keysight/opentap/internal/plan"
	"github.com/brandon-tan-keysight/opentap/internal/results"
)

// Options carries per-run settings that do not belong to the plan itself.
type Options struct {
	// Metadata annotates the run; it is forwarded to result listeners and
	// never influences execution.
	Metadata []model.MetadataRecord

	// NonInteractive suppresses interactive prompting in steps. It is
	// exported to step processes through the environment; the steps own
	// their prompting behavior, this layer only forwards the intent.
	NonInteractive bool
}

// nonInteractiveEnv is the environment variable steps use to detect that
// prompting is suppressed.
const nonInteractiveEnv = "OPENTAP_NON_INTERACTIVE"

// Run executes the plan's steps in order and returns the aggregate verdict.
//
// Step outcome classification:
//   - exit code 0: pass
//   - non-zero exit code: fail
//   - process could not start: error
//   - cancelled context: aborted (the step was killed by cancellation)
//
// A plan with no enabled steps completes inconclusive: nothing produced a
// definite result. Once the context is cancelled, remaining steps are
// skipped and the run verdict is at least aborted.
func Run(ctx context.Context, tp *plan.TestPlan, reg *results.Registry, opts Options) model.Verdict {
	start := time.Now()
	listeners := reg.Enabled()

	for _, l := range listeners {
		l.OnRunStart(tp.Name, opts.Metadata)
	}

	verdict := model.VerdictNotSet
	ran := 0

	for _, step := range tp.Steps {
		if !step.IsEnabled() {
			continue
		}
		if ctx.Err() != nil {
			verdict = model.WorstVerdict(verdict, model.VerdictAborted)
			break
		}

		res := runStep(ctx, tp, step, opts)
		ran++
		for _, l := range listeners {
			l.OnStepResult(res)
		}
		verdict = model.WorstVerdict(verdict, res.Verdict)
	}

	if ran == 0 && !verdict.WorseThan(model.VerdictNotSet) {
		verdict = model.VerdictInconclusive
	}

	elapsed := time.Since(start)
	for _, l := range listeners {
		if err := l.OnRunComplete(verdict, elapsed); err != nil {
			output.Logger.Warn("result listener failed to complete", "listener", l.Name(), "error", err)
		}
	}

	return verdict
}

// runStep executes a single step as a subprocess, capturing combined
// output and mapping the process outcome to a verdict.
func runStep(ctx context.Context, tp *plan.TestPlan, step plan.Step, opts Options) model.StepResult {
	res := model.StepResult{StepName: step.Name}
	start := time.Now()

	argv := expandArgs(tp, step.Command)
	if len(argv) == 0 || argv[0] == "" {
		res.Verdict = model.VerdictError
		res.Output = "step has no command"
		res.Duration = time.Since(start)
		return res
	}

	// #nosec G204 — argv comes from the authored plan, running it is the point
	cmd := exec.CommandContext(ctx, argv[0], argv[1:]...)

	var buf strings.Builder
	cmd.Stdout = &buf
	cmd.Stderr = &buf

	cmd.Env = os.Environ()
	if opts.NonInteractive {
		cmd.Env = append(cmd.Env, nonInteractiveEnv+"=1")
	}

	err := cmd.Run()
	res.Duration = time.Since(start)
	res.Output = buf.String()

	switch {
	case err == nil:
		res.Verdict = model.VerdictPass
	case ctx.Err() != nil:
		// The process died because the run was cancelled, not because the
		// step itself failed.
		res.Verdict = model.VerdictAborted
	case isExitError(err):
		res.Verdict = model.VerdictFail
	default:
		// The process never started (binary missing, permission denied).
		res.Verdict = model.VerdictError
		if res.Output == "" {
			res.Output = err.Error()
		}
	}

	return res
}

func isExitError(err error) bool {
	var exitErr *exec.ExitError
	return errors.As(err, &exitErr)
}

// expandArgs substitutes ${name} references in step arguments with the
// plan's resolved parameter values. Unknown references expand to the empty
// string, matching os.Expand semantics for unset names.
func expandArgs(tp *plan.TestPlan, args []string) []string {
	expanded := make([]string, len(args))
	for i, arg := range args {
		expanded[i] = os.Expand(arg, func(name string) string {
			if p := tp.Parameter(name); p != nil {
				return p.ResolvedValue()
			}
			return ""
		})
	}
	return expanded
}
