package probe

import (
	"context"
	"fmt"

	"github.com/streamqa/hlscheck/internal/result"
)

// analyzeVideo runs bitrate, black-frame and freeze detection over a sample
// of the resolved media playlist's segments. Every analyzer failure is
// inconclusive for that one measurement only.
func (t *Tester) analyzeVideo(ctx context.Context, mediaURL string, res *result.TestResult) {
	logger := t.logger(res.URL, "video")

	pl, err := t.client.GetPlaylist(ctx, mediaURL)
	if err != nil {
		res.AddWarning(fmt.Sprintf("Video analysis failed: %v", err))
		return
	}

	if len(pl.Segments) == 0 {
		res.AddWarning("No video segments for analysis")
		return
	}

	toTest := min(maxSegmentSample, len(pl.Segments))
	blackSegments := 0
	freezeDetected := false

	for _, seg := range pl.Segments[:toTest] {
		if !t.client.SegmentExists(ctx, seg.URI) {
			continue
		}

		if bitrate, reported, err := t.analyzer.ProbeBitrate(ctx, seg.URI); err == nil && reported && bitrate <= 0 {
			res.VideoBitrateIssues = true
			res.AddIssue(fmt.Sprintf("Invalid bitrate detected: %d bps", bitrate))
		}

		black, err := t.analyzer.DetectBlackFrames(ctx, seg.URI)
		if err != nil {
			logger.Debug().Err(err).Str("segment", seg.URI).Msg("black frame check inconclusive")
			continue
		}
		if black {
			blackSegments++
		}

		frozen, err := t.analyzer.DetectFreeze(ctx, seg.URI)
		if err != nil {
			logger.Debug().Err(err).Str("segment", seg.URI).Msg("freeze check inconclusive")
			continue
		}
		if frozen {
			freezeDetected = true
		}
	}

	if blackSegments > 0 {
		res.BlackFramesDetected = true
		res.BlackFramesPercentage = float64(blackSegments) / float64(toTest) * 100
		res.AddIssue(fmt.Sprintf("Black frames detected in %d/%d segments", blackSegments, toTest))
	}

	if freezeDetected {
		res.FreezeFramesDetected = true
		res.AddIssue("Freeze frames detected in video")
	}
}
