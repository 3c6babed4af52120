// Package engine executes a loaded test plan.
//
// Steps run sequentially as subprocesses (via os/exec) under the caller's
// context; cancellation is cooperative and forwarded, not interpreted. Each
// step's process outcome maps onto the verdict scale, and the run verdict
// is the worst step verdict, with an empty plan producing an inconclusive
// run. Enabled result listeners are notified per step and once at run
// completion.
//
// The engine never returns an error: everything that goes wrong during
// execution is expressed as a verdict, and the CLI layer maps verdicts to
// exit codes.
package engine
