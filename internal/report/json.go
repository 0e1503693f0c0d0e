package report

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/google/uuid"

	xlog "github.com/streamqa/hlscheck/internal/log"
	"github.com/streamqa/hlscheck/internal/result"
)

// Summary counts verdicts across a batch.
type Summary struct {
	Passed   int `json:"passed"`
	Warnings int `json:"warnings"`
	Failed   int `json:"failed"`
}

// entry wraps a TestResult with the simplified flags the JSON report adds
// on top of the raw fields. The outer Status shadows the embedded verdict
// with the binary passed/failed view.
type entry struct {
	*result.TestResult

	AudioSilence bool   `json:"audio_silence"`
	VideoInLoop  bool   `json:"video_in_loop"`
	Status       string `json:"status"`
}

// Report is the JSON report document.
type Report struct {
	RunID         string    `json:"run_id"`
	TestTimestamp time.Time `json:"test_timestamp"`
	TotalStreams  int       `json:"total_streams"`
	Summary       Summary   `json:"summary"`
	Results       []entry   `json:"results"`
}

// Summarize tallies the verdicts of a batch.
func Summarize(results []*result.TestResult) Summary {
	var s Summary
	for _, res := range results {
		switch res.Status {
		case result.VerdictPass:
			s.Passed++
		case result.VerdictWarning:
			s.Warnings++
		default:
			s.Failed++
		}
	}
	return s
}

// NewReport assembles the JSON report for a batch with a fresh run ID.
func NewReport(results []*result.TestResult) Report {
	r := Report{
		RunID:         uuid.NewString(),
		TestTimestamp: time.Now(),
		TotalStreams:  len(results),
		Summary:       Summarize(results),
		Results:       make([]entry, 0, len(results)),
	}
	for _, res := range results {
		status := "failed"
		if res.Status == result.VerdictPass {
			status = "passed"
		}
		r.Results = append(r.Results, entry{
			TestResult:   res,
			AudioSilence: res.SilenceDetected,
			VideoInLoop:  res.MSNStatus == result.MSNLoop || res.MSNStatus == result.MSNFrozen,
			Status:       status,
		})
	}
	return r
}

// WriteJSON renders the report to w with indentation.
func WriteJSON(w io.Writer, results []*result.TestResult) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(NewReport(results)); err != nil {
		return fmt.Errorf("encode report: %w", err)
	}
	return nil
}

// SaveJSON writes the JSON report to path.
func SaveJSON(path string, results []*result.TestResult) error {
	f, err := os.Create(path) // #nosec G304 -- path is operator-chosen
	if err != nil {
		return fmt.Errorf("create report: %w", err)
	}
	defer func() { _ = f.Close() }()

	if err := WriteJSON(f, results); err != nil {
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close report: %w", err)
	}

	logger := xlog.WithComponent("report")
	logger.Info().Str("path", path).Msg("JSON report saved")
	return nil
}
