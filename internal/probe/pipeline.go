package probe

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/streamqa/hlscheck/internal/ffmpeg"
	xlog "github.com/streamqa/hlscheck/internal/log"
	"github.com/streamqa/hlscheck/internal/result"
)

// Target is one stream to test, created from CLI input, a JSON collection
// or the deliveries API.
type Target struct {
	URL  string
	Meta result.Metadata
}

// Tester runs the full test pipeline against a single stream at a time. It
// is safe for concurrent use by multiple workers; all per-stream state
// lives in the TestResult.
type Tester struct {
	client   *Client
	analyzer *ffmpeg.Analyzer
	duration time.Duration

	// Overridable for deterministic tests.
	now   func() time.Time
	sleep func(time.Duration)
}

// NewTester wires a Tester. duration bounds the MSN monitoring phase.
func NewTester(client *Client, analyzer *ffmpeg.Analyzer, duration time.Duration) *Tester {
	return &Tester{
		client:   client,
		analyzer: analyzer,
		duration: duration,
		now:      time.Now,
		sleep:    time.Sleep,
	}
}

func (t *Tester) logger(streamURL, component string) zerolog.Logger {
	return xlog.WithStream(component, streamURL)
}

// Test runs the pipeline for one stream: resolve the manifest, probe
// segment accessibility, analyze audio and video quality, monitor the
// media sequence number, then reduce all findings to the final verdict.
// Stages run strictly sequentially; only a resolver failure is fatal.
func (t *Tester) Test(ctx context.Context, target Target) *result.TestResult {
	logger := t.logger(target.URL, "pipeline")
	logger.Info().Msg("testing stream")

	start := t.now()
	res := result.New(target.URL, target.Meta)
	res.MSNStatus = result.MSNPending

	rs, err := t.resolveStream(ctx, target.URL)
	if err != nil {
		// Unreachable streams keep the pessimistic defaults; the verdict
		// reduction never runs for them.
		res.MSNStatus = result.MSNError
		res.AddIssue(err.Error())
		res.Summary = "Failed to access stream"
		res.ErrorMessage = err.Error()
		res.TestDuration = t.now().Sub(start).Seconds()
		return res
	}
	res.StreamCount = rs.streamCount

	logger.Debug().Msg("testing segments")
	t.probeSegments(ctx, rs.mediaURL, res)

	logger.Debug().Msg("analyzing audio")
	t.analyzeAudio(ctx, target.URL, res)

	logger.Debug().Msg("analyzing video quality")
	t.analyzeVideo(ctx, rs.mediaURL, res)

	logger.Debug().Dur("duration", t.duration).Msg("monitoring MSN")
	t.monitorMSN(ctx, rs.mediaURL, t.duration, res)

	res.TestDuration = t.now().Sub(start).Seconds()
	res.Finalize()

	logger.Info().
		Str("verdict", res.Status.String()).
		Str("msn_status", res.MSNStatus.String()).
		Str("audio_status", res.AudioStatus.String()).
		Float64("elapsed_s", res.TestDuration).
		Msg("stream test complete")
	return res
}
