// Package plugin resolves plugin search directories and discovers plugin
// packages inside them.
//
// Search path resolution is strict and all-or-nothing: every raw path must
// resolve to an existing directory, and the first invalid entry aborts the
// whole batch with an argument error before any directory is registered.
//
// Discovery itself is a best-effort background warm-up. It scans the
// registered directories for package manifests (*.plugin.yaml) on a
// goroutine; nothing in parameter or plan resolution waits for it. The
// orchestrator holds the returned handle and joins it only when the plan
// declares required capabilities that must be answered before execution.
package plugin
