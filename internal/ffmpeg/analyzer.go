package ffmpeg

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/streamqa/hlscheck/internal/metrics"
)

// Detection marker substrings emitted by the ffmpeg filters. Absence of a
// marker means "not detected", not an error.
const (
	markerSilenceStart = "silence_start"
	markerBlackStart   = "black_start"
	markerFreezeStart  = "freeze_start"

	labelPeakDB   = "Peak level dB"
	labelDCOffset = "DC offset"
	labelRMSDB    = "RMS level dB"
)

// Analyzer drives ffmpeg/ffprobe over a bounded window of a segment.
type Analyzer struct {
	FFmpegPath  string
	FFprobePath string
	Runner      Runner

	// Window bounds how much of each segment is analyzed.
	Window time.Duration

	// Timeout bounds each ffmpeg invocation; it must exceed Window.
	Timeout time.Duration

	// BitrateTimeout bounds the ffprobe bitrate lookup.
	BitrateTimeout time.Duration
}

// New returns an Analyzer with the standard 60s window and matched timeouts.
func New(r Runner) *Analyzer {
	if r == nil {
		r = ExecRunner{}
	}
	return &Analyzer{
		FFmpegPath:     "ffmpeg",
		FFprobePath:    "ffprobe",
		Runner:         r,
		Window:         60 * time.Second,
		Timeout:        70 * time.Second,
		BitrateTimeout: 5 * time.Second,
	}
}

func (a *Analyzer) run(ctx context.Context, timeout time.Duration, name string, args ...string) ([]byte, []byte, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	return a.Runner.Run(ctx, name, args...)
}

func (a *Analyzer) windowSeconds() string {
	return strconv.Itoa(int(a.Window / time.Second))
}

// DetectSilence reports whether the silencedetect filter (noise floor
// -50dB, minimum duration 2s) flagged a silence interval in the segment.
func (a *Analyzer) DetectSilence(ctx context.Context, segmentURL string) (bool, error) {
	_, stderr, err := a.run(ctx, a.Timeout, a.FFmpegPath,
		"-i", segmentURL,
		"-af", "silencedetect=noise=-50dB:d=2.0",
		"-t", a.windowSeconds(),
		"-f", "null", "-",
	)
	if err != nil {
		metrics.RecordAnalyzerRun("silence", "error")
		return false, fmt.Errorf("silencedetect on %s: %w", segmentURL, err)
	}
	detected := strings.Contains(string(stderr), markerSilenceStart)
	metrics.RecordAnalyzerRun("silence", outcome(detected))
	return detected, nil
}

// AudioStats holds the readings scraped from the astats filter output.
type AudioStats struct {
	PeakDB   float64
	DCOffset float64
	RMSDB    float64

	HasPeak bool
	HasDC   bool
	HasRMS  bool
}

// Clipping reports a peak level at or near 0 dBFS.
func (s AudioStats) Clipping() bool {
	return s.HasPeak && s.PeakDB >= -0.1
}

// Corrupted reports a significant DC offset.
func (s AudioStats) Corrupted() bool {
	return s.HasDC && (s.DCOffset > 0.1 || s.DCOffset < -0.1)
}

// AbnormalLoudness reports an RMS level outside the -60..-3 dB range.
func (s AudioStats) AbnormalLoudness() bool {
	return s.HasRMS && (s.RMSDB > -3.0 || s.RMSDB < -60.0)
}

// Distorted reports whether any of the three metrics is out of range.
func (s AudioStats) Distorted() bool {
	return s.Clipping() || s.Corrupted() || s.AbnormalLoudness()
}

// Stats runs the astats filter over the segment and extracts peak level, DC
// offset and RMS level. The first occurrence of each label wins.
func (a *Analyzer) Stats(ctx context.Context, segmentURL string) (AudioStats, error) {
	_, stderr, err := a.run(ctx, a.Timeout, a.FFmpegPath,
		"-i", segmentURL,
		"-af", "astats=metadata=1:reset=1",
		"-t", a.windowSeconds(),
		"-f", "null", "-",
	)
	if err != nil {
		metrics.RecordAnalyzerRun("astats", "error")
		return AudioStats{}, fmt.Errorf("astats on %s: %w", segmentURL, err)
	}

	stats := parseAudioStats(string(stderr))
	metrics.RecordAnalyzerRun("astats", outcome(stats.Distorted()))
	return stats, nil
}

func parseAudioStats(output string) AudioStats {
	var stats AudioStats
	for _, line := range strings.Split(output, "\n") {
		switch {
		case !stats.HasPeak && strings.Contains(line, labelPeakDB):
			if v, ok := trailingFloat(line); ok {
				stats.PeakDB = v
				stats.HasPeak = true
			}
		case !stats.HasDC && strings.Contains(line, labelDCOffset):
			if v, ok := trailingFloat(line); ok {
				stats.DCOffset = v
				stats.HasDC = true
			}
		case !stats.HasRMS && strings.Contains(line, labelRMSDB):
			if v, ok := trailingFloat(line); ok {
				stats.RMSDB = v
				stats.HasRMS = true
			}
		}
	}
	return stats
}

// trailingFloat parses the numeric field after the last colon of a filter
// diagnostic line such as "[Parsed_astats_0 @ 0x...] Peak level dB: -1.5".
func trailingFloat(line string) (float64, bool) {
	idx := strings.LastIndex(line, ":")
	if idx < 0 || idx+1 >= len(line) {
		return 0, false
	}
	v, err := strconv.ParseFloat(strings.TrimSpace(line[idx+1:]), 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

// DetectBlackFrames reports whether the blackdetect filter (minimum
// duration 0.5s, pixel threshold 10%) flagged a black interval.
func (a *Analyzer) DetectBlackFrames(ctx context.Context, segmentURL string) (bool, error) {
	_, stderr, err := a.run(ctx, a.Timeout, a.FFmpegPath,
		"-i", segmentURL,
		"-vf", "blackdetect=d=0.5:pix_th=0.10",
		"-t", a.windowSeconds(),
		"-f", "null", "-",
	)
	if err != nil {
		metrics.RecordAnalyzerRun("blackdetect", "error")
		return false, fmt.Errorf("blackdetect on %s: %w", segmentURL, err)
	}
	detected := strings.Contains(string(stderr), markerBlackStart)
	metrics.RecordAnalyzerRun("blackdetect", outcome(detected))
	return detected, nil
}

// DetectFreeze reports whether the freezedetect filter (noise floor -60dB,
// minimum duration 2s) flagged a frozen interval.
func (a *Analyzer) DetectFreeze(ctx context.Context, segmentURL string) (bool, error) {
	_, stderr, err := a.run(ctx, a.Timeout, a.FFmpegPath,
		"-i", segmentURL,
		"-vf", "freezedetect=n=-60dB:d=2",
		"-t", a.windowSeconds(),
		"-f", "null", "-",
	)
	if err != nil {
		metrics.RecordAnalyzerRun("freezedetect", "error")
		return false, fmt.Errorf("freezedetect on %s: %w", segmentURL, err)
	}
	detected := strings.Contains(string(stderr), markerFreezeStart)
	metrics.RecordAnalyzerRun("freezedetect", outcome(detected))
	return detected, nil
}

// ProbeBitrate asks ffprobe for the first video stream's bit rate. reported
// is false when ffprobe printed nothing usable, which callers treat as
// inconclusive rather than invalid.
func (a *Analyzer) ProbeBitrate(ctx context.Context, segmentURL string) (bitrate int64, reported bool, err error) {
	stdout, _, err := a.run(ctx, a.BitrateTimeout, a.FFprobePath,
		"-v", "error",
		"-select_streams", "v:0",
		"-show_entries", "stream=bit_rate",
		"-of", "default=noprint_wrappers=1:nokey=1",
		segmentURL,
	)
	if err != nil {
		metrics.RecordAnalyzerRun("bitrate", "error")
		return 0, false, fmt.Errorf("ffprobe bitrate on %s: %w", segmentURL, err)
	}
	out := strings.TrimSpace(string(stdout))
	if out == "" {
		metrics.RecordAnalyzerRun("bitrate", "clean")
		return 0, false, nil
	}
	v, perr := strconv.ParseInt(out, 10, 64)
	if perr != nil {
		metrics.RecordAnalyzerRun("bitrate", "clean")
		return 0, false, nil
	}
	metrics.RecordAnalyzerRun("bitrate", outcome(v <= 0))
	return v, true, nil
}

func outcome(detected bool) string {
	if detected {
		return "detected"
	}
	return "clean"
}
