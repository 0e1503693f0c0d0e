package ffmpeg

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeRunner returns canned output and records the argv it was given.
type fakeRunner struct {
	stdout string
	stderr string
	err    error

	name string
	args []string
}

func (f *fakeRunner) Run(_ context.Context, name string, args ...string) ([]byte, []byte, error) {
	f.name = name
	f.args = args
	return []byte(f.stdout), []byte(f.stderr), f.err
}

func TestDetectSilence(t *testing.T) {
	fake := &fakeRunner{stderr: "[silencedetect @ 0x1] silence_start: 3.5\n[silencedetect @ 0x1] silence_end: 8.1\n"}
	a := New(fake)

	detected, err := a.DetectSilence(context.Background(), "https://cdn.example.com/seg0.ts")
	require.NoError(t, err)
	assert.True(t, detected)
	assert.Equal(t, "ffmpeg", fake.name)
	assert.Contains(t, strings.Join(fake.args, " "), "silencedetect=noise=-50dB:d=2.0")
	assert.Contains(t, fake.args, "60")

	fake.stderr = "frame= 1500 fps=250\n"
	detected, err = a.DetectSilence(context.Background(), "https://cdn.example.com/seg0.ts")
	require.NoError(t, err)
	assert.False(t, detected)
}

func TestDetectSilencePropagatesRunnerError(t *testing.T) {
	fake := &fakeRunner{err: errors.New("signal: killed")}
	a := New(fake)
	_, err := a.DetectSilence(context.Background(), "https://cdn.example.com/seg0.ts")
	require.Error(t, err)
}

func TestStatsParsing(t *testing.T) {
	fake := &fakeRunner{stderr: `[Parsed_astats_0 @ 0x55] Channel: 1
[Parsed_astats_0 @ 0x55] DC offset: 0.000012
[Parsed_astats_0 @ 0x55] Peak level dB: -0.050000
[Parsed_astats_0 @ 0x55] RMS level dB: -14.370000
[Parsed_astats_0 @ 0x55] Channel: 2
[Parsed_astats_0 @ 0x55] Peak level dB: -3.100000
`}
	a := New(fake)

	stats, err := a.Stats(context.Background(), "https://cdn.example.com/seg0.ts")
	require.NoError(t, err)
	assert.InDelta(t, -0.05, stats.PeakDB, 1e-9) // first occurrence wins
	assert.InDelta(t, 0.000012, stats.DCOffset, 1e-9)
	assert.InDelta(t, -14.37, stats.RMSDB, 1e-9)
	assert.True(t, stats.Clipping())
	assert.False(t, stats.Corrupted())
	assert.False(t, stats.AbnormalLoudness())
	assert.True(t, stats.Distorted())
}

func TestAudioStatsThresholds(t *testing.T) {
	tests := []struct {
		name      string
		stats     AudioStats
		distorted bool
	}{
		{"clean", AudioStats{PeakDB: -6, DCOffset: 0.01, RMSDB: -18, HasPeak: true, HasDC: true, HasRMS: true}, false},
		{"clipping at boundary", AudioStats{PeakDB: -0.1, HasPeak: true}, true},
		{"just below clipping", AudioStats{PeakDB: -0.11, HasPeak: true}, false},
		{"negative dc offset", AudioStats{DCOffset: -0.2, HasDC: true}, true},
		{"dc offset at boundary", AudioStats{DCOffset: 0.1, HasDC: true}, false},
		{"too loud", AudioStats{RMSDB: -2.9, HasRMS: true}, true},
		{"too quiet", AudioStats{RMSDB: -60.1, HasRMS: true}, true},
		{"no readings", AudioStats{}, false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.distorted, tc.stats.Distorted())
		})
	}
}

func TestDetectBlackFramesAndFreeze(t *testing.T) {
	fake := &fakeRunner{stderr: "[blackdetect @ 0x1] black_start:0 black_end:2.4 black_duration:2.4\n"}
	a := New(fake)

	black, err := a.DetectBlackFrames(context.Background(), "https://cdn.example.com/seg0.ts")
	require.NoError(t, err)
	assert.True(t, black)
	assert.Contains(t, strings.Join(fake.args, " "), "blackdetect=d=0.5:pix_th=0.10")

	fake.stderr = "[freezedetect @ 0x2] lavfi.freezedetect.freeze_start: 1.0\n"
	frozen, err := a.DetectFreeze(context.Background(), "https://cdn.example.com/seg0.ts")
	require.NoError(t, err)
	assert.True(t, frozen)
	assert.Contains(t, strings.Join(fake.args, " "), "freezedetect=n=-60dB:d=2")
}

func TestProbeBitrate(t *testing.T) {
	fake := &fakeRunner{stdout: "2500000\n"}
	a := New(fake)

	bitrate, reported, err := a.ProbeBitrate(context.Background(), "https://cdn.example.com/seg0.ts")
	require.NoError(t, err)
	assert.True(t, reported)
	assert.Equal(t, int64(2500000), bitrate)
	assert.Equal(t, "ffprobe", fake.name)

	// Missing or non-numeric output is inconclusive, not an error.
	fake.stdout = "N/A\n"
	_, reported, err = a.ProbeBitrate(context.Background(), "https://cdn.example.com/seg0.ts")
	require.NoError(t, err)
	assert.False(t, reported)

	fake.stdout = ""
	_, reported, err = a.ProbeBitrate(context.Background(), "https://cdn.example.com/seg0.ts")
	require.NoError(t, err)
	assert.False(t, reported)
}
