package plan

import "strings"

// TestPlan is a previously authored plan: an ordered list of steps plus the
// external parameter surface that callers may override at run time.
//
// The plan is constructed fresh per invocation and discarded after the run;
// nothing here persists between runs.
type TestPlan struct {
	// Name is the plan's display name. Defaults to the file name (without
	// extension) when the plan does not set one.
	Name string `yaml:"name" json:"name"`

	// Requires lists plugin capabilities that must be discovered before
	// the plan may execute. A missing capability is a plugin error.
	Requires []string `yaml:"requires,omitempty" json:"requires,omitempty"`

	// Includes lists paths of sub-plans to merge in, resolved relative to
	// the including plan's directory.
	Includes []string `yaml:"includes,omitempty" json:"includes,omitempty"`

	// Parameters is the external parameter surface.
	Parameters []*Parameter `yaml:"parameters,omitempty" json:"parameters,omitempty"`

	// Steps are executed sequentially by the engine.
	Steps []Step `yaml:"steps,omitempty" json:"steps,omitempty"`

	// raw holds the plan's serialized form, cached only when the plan was
	// loaded without any overrides or bulk files (the only case in which
	// the bytes still describe the plan that will run).
	raw []byte
}

// Parameter is one externally overridable plan value. A parameter is either
// single-valued (Value) or multi-valued (Values, a selected subset of
// Available).
type Parameter struct {
	// Name identifies the parameter for -e/-t overrides and listing.
	Name string `yaml:"name" json:"name"`

	// Value is the resolved value of a single-valued parameter.
	Value string `yaml:"value,omitempty" json:"value,omitempty"`

	// Values is the selected set of a multi-valued parameter. A non-nil
	// slice (even an empty one) marks the parameter as multi-valued.
	Values []string `yaml:"values,omitempty" json:"values,omitempty"`

	// Available enumerates the values a multi-valued parameter may select
	// from, when the plan declares such a set. Informational for listing;
	// the plan owns enforcement semantics.
	Available []string `yaml:"available,omitempty" json:"available,omitempty"`
}

// IsMultiValued reports whether the parameter carries a selected set
// rather than a single value.
func (p *Parameter) IsMultiValued() bool {
	return p.Values != nil || len(p.Available) > 0
}

// Set assigns an override to the parameter. For a multi-valued parameter
// the override value is split on commas into the selected set.
func (p *Parameter) Set(value string) {
	if p.IsMultiValued() {
		if value == "" {
			p.Values = []string{}
			return
		}
		p.Values = strings.Split(value, ",")
		return
	}
	p.Value = value
}

// ResolvedValue returns the parameter's value for listing and argv
// expansion: the single value, or the pipe-delimited selected set for a
// multi-valued parameter.
func (p *Parameter) ResolvedValue() string {
	if p.IsMultiValued() {
		return strings.Join(p.Values, "|")
	}
	return p.Value
}

// Step is one executable unit of the plan: a subprocess invocation.
type Step struct {
	// Name is the step's display name in results.
	Name string `yaml:"name" json:"name"`

	// Command is the argv to execute. Arguments may reference plan
	// parameters as ${name}; the engine expands them before running.
	Command []string `yaml:"command" json:"command"`

	// Enabled may disable the step without removing it from the plan.
	// Nil means enabled.
	Enabled *bool `yaml:"enabled,omitempty" json:"enabled,omitempty"`
}

// IsEnabled reports whether the step should execute.
func (s Step) IsEnabled() bool {
	return s.Enabled == nil || *s.Enabled
}

// Parameter returns the parameter with the given name, or nil.
func (tp *TestPlan) Parameter(name string) *Parameter {
	for _, p := range tp.Parameters {
		if p.Name == name {
			return p
		}
	}
	return nil
}

// SetParameter applies an override to the named parameter. It reports
// whether the parameter exists; an unknown name is a no-op, and whether
// that is an error is the caller's policy (strict vs lenient channel).
func (tp *TestPlan) SetParameter(name, value string) bool {
	p := tp.Parameter(name)
	if p == nil {
		return false
	}
	p.Set(value)
	return true
}

// UnknownParameters returns, in order, the given names that do not exist
// on the plan's parameter surface. Used to re-validate the strict override
// channel after the plan is loaded.
func (tp *TestPlan) UnknownParameters(names []string) []string {
	var unknown []string
	for _, name := range names {
		if tp.Parameter(name) == nil {
			unknown = append(unknown, name)
		}
	}
	return unknown
}

// Raw returns the plan's cached serialized form, or nil when the plan was
// loaded with overrides or bulk files applied.
func (tp *TestPlan) Raw() []byte {
	return tp.raw
}

// merge folds a loaded sub-plan into the including plan: steps and
// requirements append, and parameters are added only when the including
// plan does not already define the name (the outer plan wins).
func (tp *TestPlan) merge(sub *TestPlan) {
	for _, p := range sub.Parameters {
		if tp.Parameter(p.Name) == nil {
			tp.Parameters = append(tp.Parameters, p)
		}
	}
	tp.Steps = append(tp.Steps, sub.Steps...)
	for _, req := range sub.Requires {
		if !containsFold(tp.Requires, req) {
			tp.Requires = append(tp.Requires, req)
		}
	}
}

func containsFold(list []string, s string) bool {
	for _, v := range list {
		if strings.EqualFold(v, s) {
			return true
		}
	}
	return false
}
