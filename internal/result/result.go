// Package result holds the per-stream test result model and the verdict
// aggregation policy that reduces collected findings to pass/warning/fail.
package result

import (
	"strings"
	"time"
)

// Verdict is the final outcome of one stream test.
type Verdict string

const (
	VerdictPass    Verdict = "pass"
	VerdictWarning Verdict = "warning"
	VerdictFail    Verdict = "fail"
)

// String implements fmt.Stringer.
func (v Verdict) String() string { return string(v) }

// Label returns the uppercase report label (PASS, WARNING, FAIL).
func (v Verdict) Label() string {
	switch v {
	case VerdictPass, VerdictWarning, VerdictFail:
		return strings.ToUpper(string(v))
	default:
		return "UNKNOWN"
	}
}

// MSNStatus classifies stream advancement from media-sequence-number deltas.
type MSNStatus string

const (
	// MSNPending means the monitor has not produced a classification yet.
	MSNPending MSNStatus = "pending"

	// MSNLive means the sequence number advanced during monitoring.
	MSNLive MSNStatus = "live"

	// MSNLoop means the sequence number did not change but too few samples
	// were taken to call the stream frozen.
	MSNLoop MSNStatus = "loop"

	// MSNFrozen means the sequence number did not change despite enough
	// samples.
	MSNFrozen MSNStatus = "frozen"

	// MSNError means monitoring failed or the sequence number regressed.
	MSNError MSNStatus = "error"
)

// String implements fmt.Stringer.
func (s MSNStatus) String() string { return string(s) }

// Label returns the uppercase report label.
func (s MSNStatus) Label() string {
	switch s {
	case MSNLive, MSNLoop, MSNFrozen, MSNError:
		return strings.ToUpper(string(s))
	default:
		return "UNKNOWN"
	}
}

// AudioStatus classifies the audio analysis outcome.
type AudioStatus string

const (
	AudioOK      AudioStatus = "ok"
	AudioMissing AudioStatus = "missing"
	AudioSilent  AudioStatus = "silent"
	AudioIssues  AudioStatus = "issues"
	AudioError   AudioStatus = "error"
)

// String implements fmt.Stringer.
func (s AudioStatus) String() string { return string(s) }

// Metadata carries optional channel information attached to a stream target.
type Metadata struct {
	ChannelName string `json:"channel_name,omitempty"`
	ChannelKey  string `json:"channel_key,omitempty"`
	Resolution  string `json:"resolution,omitempty"`
	StreamType  string `json:"type,omitempty"`
}

// TestResult is the complete outcome of testing one HLS stream. A result is
// owned by the worker that produced it; it becomes immutable once Finalize
// has set the verdict.
type TestResult struct {
	URL          string    `json:"url"`
	TestDuration float64   `json:"test_duration"`
	Timestamp    time.Time `json:"timestamp"`

	Status      Verdict     `json:"status"`
	MSNStatus   MSNStatus   `json:"msn_status"`
	AudioStatus AudioStatus `json:"audio_status"`

	ChannelName string `json:"channel_name,omitempty"`
	ChannelKey  string `json:"channel_key,omitempty"`
	Resolution  string `json:"resolution,omitempty"`
	StreamType  string `json:"stream_type,omitempty"`

	Summary string `json:"summary"`

	// MSN analysis
	InitialMSN    int     `json:"initial_msn"`
	FinalMSN      int     `json:"final_msn"`
	MSNIncrements int     `json:"msn_increments"`
	IncrementRate float64 `json:"increment_rate"` // increments per minute

	// Stream analysis
	StreamCount        int `json:"stream_count"`
	SegmentsAccessible int `json:"segments_accessible"`
	SegmentsTested     int `json:"segments_tested"`

	// Audio analysis
	AudioStreamsCount       int      `json:"audio_streams_count"`
	AudioCodecs             []string `json:"audio_codecs"`
	AudioSegmentsTested     int      `json:"audio_segments_tested"`
	AudioSegmentsAccessible int      `json:"audio_segments_accessible"`
	SilenceDetected         bool     `json:"silence_detected"`
	SilencePercentage       float64  `json:"silence_percentage"`
	AudioDistortionDetected bool     `json:"audio_distortion_detected"`

	// Video analysis
	BlackFramesDetected   bool    `json:"black_frames_detected"`
	BlackFramesPercentage float64 `json:"black_frames_percentage"`
	FreezeFramesDetected  bool    `json:"freeze_frames_detected"`
	VideoBitrateIssues    bool    `json:"video_bitrate_issues"`

	Issues       []string `json:"issues"`
	Warnings     []string `json:"warnings"`
	ErrorMessage string   `json:"error_message"`
}

// New builds a TestResult for the given stream with fresh issue containers
// and the pessimistic defaults the pipeline stages overwrite as they run.
func New(url string, meta Metadata) *TestResult {
	return &TestResult{
		URL:         url,
		Timestamp:   time.Now(),
		Status:      VerdictFail,
		MSNStatus:   MSNError,
		AudioStatus: AudioError,
		ChannelName: meta.ChannelName,
		ChannelKey:  meta.ChannelKey,
		Resolution:  meta.Resolution,
		StreamType:  meta.StreamType,
		AudioCodecs: []string{},
		Issues:      []string{},
		Warnings:    []string{},
	}
}

// AddIssue records a critical finding.
func (r *TestResult) AddIssue(msg string) {
	r.Issues = append(r.Issues, msg)
}

// AddWarning records a non-critical finding.
func (r *TestResult) AddWarning(msg string) {
	r.Warnings = append(r.Warnings, msg)
}
