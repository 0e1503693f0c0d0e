package probe

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/streamqa/hlscheck/internal/ffmpeg"
	"github.com/streamqa/hlscheck/internal/result"
)

// videoFixture serves a media playlist with three accessible segments.
func videoFixture(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/media.m3u8", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("#EXTM3U\n#EXTINF:6.0,\nv0.ts\n#EXTINF:6.0,\nv1.ts\n#EXTINF:6.0,\nv2.ts\n#EXTINF:6.0,\nv3.ts\n"))
	})
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) })
	return httptest.NewServer(mux)
}

func newVideoTester(runner *scriptedRunner) *Tester {
	return NewTester(NewClient(5*time.Second, 0), ffmpeg.New(runner), 30*time.Second)
}

func TestAnalyzeVideoClean(t *testing.T) {
	srv := videoFixture(t)
	defer srv.Close()

	tester := newVideoTester(&scriptedRunner{})
	res := result.New(srv.URL, result.Metadata{})
	tester.analyzeVideo(context.Background(), srv.URL+"/media.m3u8", res)

	assert.False(t, res.BlackFramesDetected)
	assert.False(t, res.FreezeFramesDetected)
	assert.False(t, res.VideoBitrateIssues)
	assert.Empty(t, res.Issues)
	assert.Empty(t, res.Warnings)
}

func TestAnalyzeVideoBlackFramesOverThresholdFails(t *testing.T) {
	srv := videoFixture(t)
	defer srv.Close()

	runner := &scriptedRunner{black: map[string]bool{"v0.ts": true}}
	tester := newVideoTester(runner)
	res := result.New(srv.URL, result.Metadata{})
	tester.analyzeVideo(context.Background(), srv.URL+"/media.m3u8", res)

	assert.True(t, res.BlackFramesDetected)
	assert.InDelta(t, 33.3, res.BlackFramesPercentage, 0.1)
	require.Len(t, res.Issues, 1)
	assert.Equal(t, "Black frames detected in 1/3 segments", res.Issues[0])

	res.AudioStatus = result.AudioOK
	res.MSNStatus = result.MSNLive
	res.Finalize()
	assert.Equal(t, result.VerdictFail, res.Status)
}

func TestAnalyzeVideoFreezeDetected(t *testing.T) {
	srv := videoFixture(t)
	defer srv.Close()

	runner := &scriptedRunner{freeze: map[string]bool{"v1.ts": true}}
	tester := newVideoTester(runner)
	res := result.New(srv.URL, result.Metadata{})
	tester.analyzeVideo(context.Background(), srv.URL+"/media.m3u8", res)

	assert.True(t, res.FreezeFramesDetected)
	require.Len(t, res.Issues, 1)
	assert.Equal(t, "Freeze frames detected in video", res.Issues[0])
}

func TestAnalyzeVideoInvalidBitrate(t *testing.T) {
	srv := videoFixture(t)
	defer srv.Close()

	runner := &scriptedRunner{bitrate: map[string]string{"v0.ts": "0\n"}}
	tester := newVideoTester(runner)
	res := result.New(srv.URL, result.Metadata{})
	tester.analyzeVideo(context.Background(), srv.URL+"/media.m3u8", res)

	assert.True(t, res.VideoBitrateIssues)
	require.NotEmpty(t, res.Issues)
	assert.Equal(t, "Invalid bitrate detected: 0 bps", res.Issues[0])
}

func TestAnalyzeVideoUnreportedBitrateIsInconclusive(t *testing.T) {
	srv := videoFixture(t)
	defer srv.Close()

	runner := &scriptedRunner{bitrate: map[string]string{"v0.ts": "N/A\n", "v1.ts": "N/A\n", "v2.ts": "N/A\n"}}
	tester := newVideoTester(runner)
	res := result.New(srv.URL, result.Metadata{})
	tester.analyzeVideo(context.Background(), srv.URL+"/media.m3u8", res)

	assert.False(t, res.VideoBitrateIssues)
	assert.Empty(t, res.Issues)
}

func TestAnalyzeVideoAnalyzerFailureSkipsMeasurement(t *testing.T) {
	srv := videoFixture(t)
	defer srv.Close()

	// blackdetect fails everywhere; the freeze check for those segments is
	// skipped too, so nothing is flagged.
	runner := &scriptedRunner{
		fail:   map[string]bool{"black": true},
		freeze: map[string]bool{"v0.ts": true},
	}
	tester := newVideoTester(runner)
	res := result.New(srv.URL, result.Metadata{})
	tester.analyzeVideo(context.Background(), srv.URL+"/media.m3u8", res)

	assert.False(t, res.BlackFramesDetected)
	assert.False(t, res.FreezeFramesDetected)
	assert.Empty(t, res.Issues)
}

func TestAnalyzeVideoFetchFailureIsWarningOnly(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close()

	tester := newVideoTester(&scriptedRunner{})
	res := result.New(srv.URL, result.Metadata{})
	tester.analyzeVideo(context.Background(), srv.URL+"/media.m3u8", res)

	assert.Empty(t, res.Issues)
	require.Len(t, res.Warnings, 1)
	assert.Contains(t, res.Warnings[0], "Video analysis failed")
}
