package results

import (
	"encoding/json"
	"os"
	"time"

	"github.com/brandon-tan-keysight/opentap/internal/model"
)

// JSONReportListener collects step results and writes a single structured
// JSON report when the run completes. Disabled by default; enabled with
// --results JSON.
type JSONReportListener struct {
	listenerState
	path     string
	planName string
	metadata []model.MetadataRecord
	steps    []model.StepResult
}

// jsonReport is the serialized report shape. Field names are part of the
// report format consumed by downstream tooling.
type jsonReport struct {
	Plan     string                 `json:"plan"`
	Verdict  model.Verdict          `json:"verdict"`
	Elapsed  string                 `json:"elapsed"`
	Metadata []model.MetadataRecord `json:"metadata,omitempty"`
	Steps    []model.StepResult     `json:"steps"`
}

// NewJSONReportListener creates a JSON report listener writing to path.
func NewJSONReportListener(path string) *JSONReportListener {
	return &JSONReportListener{path: path}
}

// Name returns the display name used by --results selection.
func (j *JSONReportListener) Name() string { return "JSON" }

func (j *JSONReportListener) OnRunStart(planName string, metadata []model.MetadataRecord) {
	j.planName = planName
	j.metadata = metadata
}

func (j *JSONReportListener) OnStepResult(res model.StepResult) {
	j.steps = append(j.steps, res)
}

func (j *JSONReportListener) OnRunComplete(verdict model.Verdict, elapsed time.Duration) error {
	report := jsonReport{
		Plan:     j.planName,
		Verdict:  verdict,
		Elapsed:  elapsed.String(),
		Metadata: j.metadata,
		Steps:    j.steps,
	}

	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(j.path, append(data, '\n'), 0o644)
}
