package model

import (
	"fmt"
	"strings"
)

// Verdict is the outcome of executing a test plan (or a single step of one).
// Verdicts form an ordered severity scale:
//
//	NotSet < Pass < Inconclusive < Fail < Aborted < Error
//
// The ordering matters beyond the named cases: anything strictly worse than
// Fail is treated as a runtime error when mapping to an exit code. Severity
// is expressed through an explicit function rather than the numeric values
// of the constants, so the exit-code contract does not silently depend on
// declaration order.
type Verdict string

const (
	// VerdictNotSet is the zero verdict: nothing has produced a result yet.
	VerdictNotSet Verdict = "not-set"

	// VerdictPass indicates the plan (or step) completed successfully.
	VerdictPass Verdict = "pass"

	// VerdictInconclusive indicates the run completed without producing a
	// definite pass or fail, e.g. a plan with no runnable steps.
	VerdictInconclusive Verdict = "inconclusive"

	// VerdictFail indicates at least one step produced a failing result.
	VerdictFail Verdict = "fail"

	// VerdictAborted indicates the run was cancelled before completion.
	VerdictAborted Verdict = "aborted"

	// VerdictError indicates the run itself broke down, e.g. a step could
	// not be started at all.
	VerdictError Verdict = "error"
)

// String returns the string representation of the Verdict.
// This satisfies fmt.Stringer for CLI output and report serialization.
func (v Verdict) String() string {
	return string(v)
}

// IsValid checks whether the Verdict is one of the defined scale points.
func (v Verdict) IsValid() bool {
	switch v {
	case VerdictNotSet, VerdictPass, VerdictInconclusive, VerdictFail, VerdictAborted, VerdictError:
		return true
	default:
		return false
	}
}

// Severity returns the position of the verdict on the badness scale.
// Higher is worse. The switch is deliberately explicit: the contract is
// the total order itself, not an incidental property of constant values.
func (v Verdict) Severity() int {
	switch v {
	case VerdictNotSet:
		return 0
	case VerdictPass:
		return 1
	case VerdictInconclusive:
		return 2
	case VerdictFail:
		return 3
	case VerdictAborted:
		return 4
	case VerdictError:
		return 5
	default:
		// Unknown verdicts are treated as worse than everything defined,
		// so they surface as runtime errors rather than silent passes.
		return 6
	}
}

// WorseThan reports whether v ranks strictly worse than other on the
// severity scale.
func (v Verdict) WorseThan(other Verdict) bool {
	return v.Severity() > other.Severity()
}

// ParseVerdict converts a string to a Verdict.
// Returns an error if the string does not match any scale point.
func ParseVerdict(s string) (Verdict, error) {
	v := Verdict(strings.ToLower(s))
	if !v.IsValid() {
		return "", fmt.Errorf("invalid verdict: %q (valid: not-set, pass, inconclusive, fail, aborted, error)", s)
	}
	return v, nil
}

// WorstVerdict returns the most severe verdict of the two.
// Used by the engine to aggregate step verdicts into a run verdict.
func WorstVerdict(a, b Verdict) Verdict {
	if b.WorseThan(a) {
		return b
	}
	return a
}

// ExitCodeForVerdict maps a final run verdict to a process exit code.
//
// The mapping is total and deterministic:
//   - Inconclusive maps to its dedicated exit code
//   - Fail maps to its dedicated exit code
//   - anything strictly worse than Fail (aborted, errored) is a runtime error
//   - anything else (pass or better) is success
//
// Note the third branch is an open-ended severity comparison, not an
// enumerated match: new scale points worse than Fail inherit the runtime
// error classification automatically.
func ExitCodeForVerdict(v Verdict) ExitCode {
	switch {
	case v == VerdictInconclusive:
		return ExitInconclusive
	case v == VerdictFail:
		return ExitFail
	case v.WorseThan(VerdictFail):
		return ExitRuntimeError
	default:
		return ExitOK
	}
}
