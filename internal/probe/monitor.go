package probe

import (
	"context"
	"regexp"
	"strconv"
	"time"

	"github.com/streamqa/hlscheck/internal/metrics"
	"github.com/streamqa/hlscheck/internal/result"
)

// msnPattern extracts the media sequence number from a raw media playlist.
var msnPattern = regexp.MustCompile(`#EXT-X-MEDIA-SEQUENCE:(\d+)`)

// maxMSNReadings caps the number of playlist samples per stream.
const maxMSNReadings = 15

// minReadingsForFrozen is the sample count at which an unchanged MSN is
// classified frozen rather than an ambiguous loop.
const minReadingsForFrozen = 5

type msnReading struct {
	at  time.Time
	msn int
}

// monitorMSN repeatedly re-fetches the media playlist and classifies the
// stream from the sequence-number delta between the first and last reading:
// advancing (live), unchanged (loop or frozen depending on sample count) or
// regressing (error). Fetch failures are skipped silently.
func (t *Tester) monitorMSN(ctx context.Context, mediaURL string, duration time.Duration, res *result.TestResult) {
	logger := t.logger(res.URL, "monitor")

	interval := duration / 10
	if interval < 2*time.Second {
		interval = 2 * time.Second
	}

	var readings []msnReading
	start := t.now()
	for t.now().Sub(start) < duration && len(readings) < maxMSNReadings {
		if body, err := t.client.Get(ctx, mediaURL); err == nil {
			if m := msnPattern.FindSubmatch(body); m != nil {
				msn, _ := strconv.Atoi(string(m[1]))
				readings = append(readings, msnReading{at: t.now(), msn: msn})
				metrics.MSNReadingsTotal.Inc()
				logger.Info().Int("msn", msn).Int("reading", len(readings)).Msg("MSN sample")
			}
		}
		if len(readings) < maxMSNReadings {
			t.sleep(interval)
		}
	}

	if len(readings) < 2 {
		res.MSNStatus = result.MSNError
		res.AddWarning("Insufficient MSN readings")
		return
	}

	first, last := readings[0], readings[len(readings)-1]
	res.InitialMSN = first.msn
	res.FinalMSN = last.msn
	res.MSNIncrements = last.msn - first.msn

	if span := last.at.Sub(first.at); span > 0 {
		res.IncrementRate = float64(res.MSNIncrements) / span.Seconds() * 60
	}

	switch {
	case res.MSNIncrements > 0:
		res.MSNStatus = result.MSNLive
		logger.Info().
			Int("increments", res.MSNIncrements).
			Float64("rate_per_min", res.IncrementRate).
			Msg("stream is advancing")
	case res.MSNIncrements == 0 && len(readings) >= minReadingsForFrozen:
		res.MSNStatus = result.MSNFrozen
		res.AddIssue("Stream appears frozen - MSN not updating")
	case res.MSNIncrements == 0:
		res.MSNStatus = result.MSNLoop
		res.AddWarning("Possible loop - MSN not changing")
	default:
		res.MSNStatus = result.MSNError
		res.AddIssue("MSN decreased - unusual behavior")
	}
}
