package probe

import (
	"context"
	"fmt"

	"github.com/streamqa/hlscheck/internal/result"
)

// maxSegmentSample bounds how many segments each stage samples.
const maxSegmentSample = 3

// probeSegments re-fetches the media playlist and checks that a small
// sample of segments is reachable. An empty segment list is critical but
// not fatal: later stages still run.
func (t *Tester) probeSegments(ctx context.Context, mediaURL string, res *result.TestResult) {
	logger := t.logger(res.URL, "segments")

	pl, err := t.client.GetPlaylist(ctx, mediaURL)
	if err != nil {
		res.AddWarning(fmt.Sprintf("Could not test segments: %v", err))
		return
	}

	if len(pl.Segments) == 0 {
		res.AddIssue("No segments found in playlist")
		return
	}

	toTest := min(maxSegmentSample, len(pl.Segments))
	accessible := 0
	for _, seg := range pl.Segments[:toTest] {
		if t.client.SegmentExists(ctx, seg.URI) {
			accessible++
		}
	}

	res.SegmentsTested = toTest
	res.SegmentsAccessible = accessible

	switch {
	case accessible == 0:
		res.AddIssue("No segments are accessible")
	case accessible < toTest:
		res.AddWarning(fmt.Sprintf("Only %d/%d segments accessible", accessible, toTest))
	default:
		logger.Debug().Int("segments", accessible).Msg("all test segments accessible")
	}
}
