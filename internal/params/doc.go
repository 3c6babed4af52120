// Package params normalizes the loosely-structured key/value input accepted
// by the run command into validated, structured form.
//
// Two concerns live here:
//
//   - External parameter resolution: repeatable strict (-e/--external) and
//     lenient (-t/--try-external) "name=value" flags, where an entry without
//     an "=" is always a bulk parameter file reference. Strict entries must
//     match a plan parameter after loading; lenient entries are optional.
//
//   - Run metadata parsing: repeatable --metadata "key=value" flags, where
//     malformed entries are dropped with a warning rather than aborting.
//
// Both are pure string normalization with no filesystem access; bulk files
// are resolved later by the plan package's importer registry.
package params
