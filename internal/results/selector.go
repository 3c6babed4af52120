package results

import (
	"fmt"
	"io"
	"strings"

	"github.com/brandon-tan-keysight/opentap/internal/model"
)

// Select enables exactly the listeners named in the comma-separated spec
// and disables every other listener in the registry.
//
// Selection rules:
//   - All listeners are disabled first, so selection is an idempotent
//     reset rather than an incremental toggle. An empty spec therefore
//     means "disable everything" and succeeds.
//   - Each requested name matches case-insensitively and may enable zero,
//     one, or multiple listeners (duplicate display names all enable).
//   - Requested names that matched nothing accumulate; if any exist, the
//     full enabled/disabled state of every listener is printed to w and
//     the call fails with an argument error. The matched listeners stay
//     enabled: partial success is applied, but the caller still sees the
//     complete picture before the abort.
//
// The returned error is a silent exit signal; the state dump printed here
// is the diagnostic.
func Select(reg *Registry, spec string, w io.Writer) error {
	for _, l := range reg.All() {
		l.SetEnabled(false)
	}

	var unknown []string
	for _, name := range strings.Split(spec, ",") {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}

		matches := reg.Find(name)
		if len(matches) == 0 {
			unknown = append(unknown, name)
			continue
		}
		for _, l := range matches {
			l.SetEnabled(true)
		}
	}

	if len(unknown) == 0 {
		return nil
	}

	printState(reg, unknown, w)
	return model.ExitWithCode(model.ExitArgumentError)
}

// printState writes the complete listener state, then the unmatched names.
// This runs on every unknown-name failure regardless of how many listeners
// did match, so the user always learns the full context.
func printState(reg *Registry, unknown []string, w io.Writer) {
	fmt.Fprintln(w, "Result listeners:")
	for _, l := range reg.All() {
		state := "disabled"
		if l.Enabled() {
			state = "enabled"
		}
		fmt.Fprintf(w, "  %-12s %s\n", l.Name(), state)
	}
	fmt.Fprintf(w, "Unknown result listener(s): %s\n", strings.Join(unknown, ", "))
}
