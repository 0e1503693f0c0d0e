// Package report renders batch results as CSV and JSON report files.
package report

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"time"

	xlog "github.com/streamqa/hlscheck/internal/log"
	"github.com/streamqa/hlscheck/internal/result"
)

// csvHeader is the fixed column set of the CSV report. Consumers depend on
// the exact names and order.
var csvHeader = []string{
	"HLS URL",
	"Status",
	"MSN Status",
	"Audio Silence",
	"Audio Distortion",
	"Black Frames",
	"Freeze Frames",
}

func yesNo(v bool) string {
	if v {
		return "YES"
	}
	return "NO"
}

// WriteCSV writes the CSV report to w, one row per result in batch order.
func WriteCSV(w *csv.Writer, results []*result.TestResult) error {
	if err := w.Write(csvHeader); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for _, res := range results {
		row := []string{
			res.URL,
			res.Status.Label(),
			res.MSNStatus.Label(),
			yesNo(res.SilenceDetected),
			yesNo(res.AudioDistortionDetected),
			yesNo(res.BlackFramesDetected),
			yesNo(res.FreezeFramesDetected),
		}
		if err := w.Write(row); err != nil {
			return fmt.Errorf("write row for %s: %w", res.URL, err)
		}
	}
	w.Flush()
	return w.Error()
}

// CSVFilename returns the timestamped report name, e.g.
// CDN_Test_Report_20260901_153000.csv.
func CSVFilename(now time.Time) string {
	return fmt.Sprintf("CDN_Test_Report_%s.csv", now.Format("20060102_150405"))
}

// SaveCSV writes the CSV report into dir, creating it if needed, and
// returns the file path.
func SaveCSV(dir string, results []*result.TestResult) (string, error) {
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return "", fmt.Errorf("create reports dir: %w", err)
	}
	path := filepath.Join(dir, CSVFilename(time.Now()))

	f, err := os.Create(path) // #nosec G304 -- path is operator-chosen
	if err != nil {
		return "", fmt.Errorf("create report: %w", err)
	}
	defer func() { _ = f.Close() }()

	if err := WriteCSV(csv.NewWriter(f), results); err != nil {
		return "", err
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("close report: %w", err)
	}

	logger := xlog.WithComponent("report")
	logger.Info().Str("path", path).Int("streams", len(results)).Msg("CSV report saved")
	return path, nil
}
