package results

import (
	"encoding/csv"
	"os"
	"strconv"
	"time"

	"github.com/brandon-tan-keysight/opentap/internal/model"
)

// CSVReportListener writes one row per step result plus a trailing summary
// row. Disabled by default; enabled with --results CSV. The flat row format
// suits spreadsheet import and quick shell processing.
type CSVReportListener struct {
	listenerState
	path     string
	planName string
	steps    []model.StepResult
}

// NewCSVReportListener creates a CSV report listener writing to path.
func NewCSVReportListener(path string) *CSVReportListener {
	return &CSVReportListener{path: path}
}

// Name returns the display name used by --results selection.
func (c *CSVReportListener) Name() string { return "CSV" }

func (c *CSVReportListener) OnRunStart(planName string, metadata []model.MetadataRecord) {
	c.planName = planName
}

func (c *CSVReportListener) OnStepResult(res model.StepResult) {
	c.steps = append(c.steps, res)
}

func (c *CSVReportListener) OnRunComplete(verdict model.Verdict, elapsed time.Duration) error {
	f, err := os.Create(c.path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write([]string{"plan", "step", "verdict", "duration_ms"}); err != nil {
		return err
	}
	for _, res := range c.steps {
		row := []string{
			c.planName,
			res.StepName,
			res.Verdict.String(),
			strconv.FormatInt(res.Duration.Milliseconds(), 10),
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}
	// Summary row uses an empty step name so consumers can filter it out.
	if err := w.Write([]string{c.planName, "", verdict.String(), strconv.FormatInt(elapsed.Milliseconds(), 10)}); err != nil {
		return err
	}

	w.Flush()
	return w.Error()
}
