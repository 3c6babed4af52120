package results

import (
	"strings"
	"time"

	"github.com/brandon-tan-keysight/opentap/internal/model"
)

// Listener is a result sink. The engine notifies every enabled listener of
// each step result and of run completion; disabled listeners receive
// nothing.
type Listener interface {
	// Name is the display name users select the listener by. Names are
	// matched case-insensitively and need not be unique: multiple
	// listeners sharing a display name are all enabled by one selection.
	Name() string

	// Enabled reports whether the listener currently receives results.
	Enabled() bool

	// SetEnabled toggles result delivery.
	SetEnabled(enabled bool)

	// OnRunStart is called once before the first step executes.
	OnRunStart(planName string, metadata []model.MetadataRecord)

	// OnStepResult is called after each step completes.
	OnStepResult(res model.StepResult)

	// OnRunComplete is called once with the aggregate verdict. A returned
	// error (for example a report file that could not be written) is
	// logged by the engine and does not change the run verdict.
	OnRunComplete(verdict model.Verdict, elapsed time.Duration) error
}

// listenerState provides the mutable enabled flag shared by the built-in
// listeners. Embed it and supply Name plus the notification methods.
type listenerState struct {
	enabled bool
}

func (s *listenerState) Enabled() bool           { return s.enabled }
func (s *listenerState) SetEnabled(enabled bool) { s.enabled = enabled }

// Registry holds the result listeners available to one run.
type Registry struct {
	listeners []Listener
}

// NewRegistry creates a registry over the given listeners.
func NewRegistry(listeners ...Listener) *Registry {
	return &Registry{listeners: listeners}
}

// Add appends a listener, typically one contributed by a plugin.
func (r *Registry) Add(l Listener) {
	r.listeners = append(r.listeners, l)
}

// All returns every registered listener in registration order.
func (r *Registry) All() []Listener {
	return r.listeners
}

// Enabled returns the listeners that currently receive results.
func (r *Registry) Enabled() []Listener {
	var enabled []Listener
	for _, l := range r.listeners {
		if l.Enabled() {
			enabled = append(enabled, l)
		}
	}
	return enabled
}

// Find returns every listener whose name matches, case-insensitively.
// Zero, one, or several listeners may match a single name.
func (r *Registry) Find(name string) []Listener {
	var matches []Listener
	for _, l := range r.listeners {
		if strings.EqualFold(l.Name(), name) {
			matches = append(matches, l)
		}
	}
	return matches
}
