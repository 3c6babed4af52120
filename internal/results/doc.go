// Package results defines result listeners: sinks that receive step results
// during a plan run, and the registry/selection machinery for enabling
// exactly the listeners a user asked for.
//
// The registry is an explicitly passed value with a lifecycle scoped to one
// run, not ambient global state. Membership is owned by whoever builds the
// registry (defaults plus any plugin-contributed listeners); this package
// only owns the mutable enabled flags and the selection rules.
//
// Built-in listeners: Console (human-readable progress, enabled by
// default), JSON and CSV report writers (disabled by default, enabled via
// --results).
package results
