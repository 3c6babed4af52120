package results

import (
	"fmt"
	"io"
	"time"

	"github.com/brandon-tan-keysight/opentap/internal/model"
)

// ConsoleListener prints step results and a run summary as human-readable
// text. It is the default sink and is enabled unless a --results selection
// excludes it.
type ConsoleListener struct {
	listenerState
	w     io.Writer
	steps int
}

// NewConsoleListener creates a console listener writing to w, enabled.
func NewConsoleListener(w io.Writer) *ConsoleListener {
	return &ConsoleListener{listenerState: listenerState{enabled: true}, w: w}
}

// Name returns the display name used by --results selection.
func (c *ConsoleListener) Name() string { return "Console" }

func (c *ConsoleListener) OnRunStart(planName string, metadata []model.MetadataRecord) {
	fmt.Fprintf(c.w, "Running test plan %q\n", planName)
	for _, m := range metadata {
		fmt.Fprintf(c.w, "  metadata %s=%s\n", m.Key, m.Value)
	}
}

func (c *ConsoleListener) OnStepResult(res model.StepResult) {
	c.steps++
	fmt.Fprintf(c.w, "  %-30s %-12s %s\n", res.StepName, res.Verdict, res.Duration.Round(time.Millisecond))
}

func (c *ConsoleListener) OnRunComplete(verdict model.Verdict, elapsed time.Duration) error {
	fmt.Fprintf(c.w, "Completed %d step(s) in %s, verdict: %s\n",
		c.steps, elapsed.Round(time.Millisecond), verdict)
	return nil
}
