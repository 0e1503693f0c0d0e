package probe

import (
	"context"
	"fmt"

	"github.com/streamqa/hlscheck/internal/hls"
	"github.com/streamqa/hlscheck/internal/result"
)

// analyzeAudio selects a representative audio rendition and delegates
// silence and distortion detection to the external analyzer. Dedicated
// audio renditions win over audio-bearing variants; a media playlist is
// assumed to carry its own audio.
func (t *Tester) analyzeAudio(ctx context.Context, streamURL string, res *result.TestResult) {
	logger := t.logger(res.URL, "audio")

	pl, err := t.client.GetPlaylist(ctx, streamURL)
	if err != nil {
		res.AudioStatus = result.AudioError
		res.AddWarning(fmt.Sprintf("Audio analysis failed: %v", err))
		return
	}

	var audioStreams []string
	if pl.IsMaster {
		for _, r := range pl.AudioRenditions() {
			audioStreams = append(audioStreams, r.URI)
		}
		if len(audioStreams) == 0 {
			for _, v := range pl.Variants {
				if codecs := hls.AudioCodecs(v.Codecs); len(codecs) > 0 {
					res.AudioCodecs = append(res.AudioCodecs, codecs...)
					audioStreams = append(audioStreams, v.URI)
				}
			}
		}
		if len(audioStreams) == 0 {
			if best := pl.MaxBandwidthVariant(); best != nil {
				audioStreams = append(audioStreams, best.URI)
			}
		}
	} else {
		// Media playlist: assume it contains audio.
		audioStreams = append(audioStreams, streamURL)
	}

	if len(audioStreams) == 0 {
		res.AudioStatus = result.AudioMissing
		res.AddIssue("No audio streams found")
		return
	}

	res.AudioStreamsCount = len(audioStreams)
	if len(res.AudioCodecs) > 0 {
		logger.Debug().Strs("codecs", res.AudioCodecs).Msg("audio codecs detected")
	}

	t.analyzeAudioQuality(ctx, audioStreams[0], res)
}

// analyzeAudioQuality runs the silence and statistics checks over a sample
// of the audio rendition's segments. Analyzer timeouts and failures skip
// the affected segment; they never abort the stream's test.
func (t *Tester) analyzeAudioQuality(ctx context.Context, audioURL string, res *result.TestResult) {
	logger := t.logger(res.URL, "audio")

	pl, err := t.client.GetPlaylist(ctx, audioURL)
	if err != nil {
		res.AudioStatus = result.AudioError
		res.AddWarning(fmt.Sprintf("Audio quality analysis failed: %v", err))
		return
	}

	if len(pl.Segments) == 0 {
		res.AudioStatus = result.AudioMissing
		res.AddWarning("No audio segments found")
		return
	}

	toTest := min(maxSegmentSample, len(pl.Segments))
	silent := 0
	distorted := 0
	accessible := 0

	for _, seg := range pl.Segments[:toTest] {
		if !t.client.SegmentExists(ctx, seg.URI) {
			continue
		}
		accessible++

		isSilent, err := t.analyzer.DetectSilence(ctx, seg.URI)
		if err != nil {
			logger.Debug().Err(err).Str("segment", seg.URI).Msg("silence check inconclusive")
			continue
		}
		if isSilent {
			silent++
		}

		stats, err := t.analyzer.Stats(ctx, seg.URI)
		if err != nil {
			logger.Debug().Err(err).Str("segment", seg.URI).Msg("stats check inconclusive")
			continue
		}
		if stats.Distorted() {
			distorted++
		}
	}

	res.AudioSegmentsTested = toTest
	res.AudioSegmentsAccessible = accessible

	if accessible == 0 {
		res.AudioStatus = result.AudioMissing
		res.AddIssue("No audio segments are accessible")
		return
	}

	res.SilencePercentage = float64(silent) / float64(toTest) * 100
	res.SilenceDetected = silent > 0
	if res.SilenceDetected {
		res.AudioStatus = result.AudioSilent
		res.AddIssue(fmt.Sprintf("Audio silence detected in %d/%d segments (%.1f%%)", silent, toTest, res.SilencePercentage))
	} else {
		res.AudioStatus = result.AudioOK
	}

	if distorted > 0 {
		res.AudioDistortionDetected = true
		pct := float64(distorted) / float64(toTest) * 100
		res.AddWarning(fmt.Sprintf("Audio distortion detected in %d/%d segments (%.1f%%)", distorted, toTest, pct))
	}
}
