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
)

func newTestTester() *Tester {
	return NewTester(NewClient(5*time.Second, 0), ffmpeg.New(&scriptedRunner{}), 30*time.Second)
}

func TestResolveStreamInvalidURL(t *testing.T) {
	tester := newTestTester()
	for _, raw := range []string{"", "not a url", "ftp://example.com/a.m3u8", "/relative/path.m3u8", "example.com/no-scheme.m3u8"} {
		_, err := tester.resolveStream(context.Background(), raw)
		assert.ErrorIs(t, err, ErrInvalidURL, "url=%q", raw)
	}
}

func TestResolveStreamUnreachable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "gone", http.StatusNotFound)
	}))
	defer srv.Close()

	tester := newTestTester()
	_, err := tester.resolveStream(context.Background(), srv.URL+"/master.m3u8")
	assert.ErrorIs(t, err, ErrUnreachable)

	srv.Close()
	_, err = tester.resolveStream(context.Background(), srv.URL+"/master.m3u8")
	assert.ErrorIs(t, err, ErrUnreachable)
}

func TestResolveStreamNotAManifest(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("<html>definitely not HLS</html>"))
	}))
	defer srv.Close()

	tester := newTestTester()
	_, err := tester.resolveStream(context.Background(), srv.URL+"/master.m3u8")
	assert.ErrorIs(t, err, ErrNotAManifest)
}

func TestResolveStreamMasterSelectsMaxBandwidth(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`#EXTM3U
#EXT-X-STREAM-INF:BANDWIDTH=800000,RESOLUTION=640x360
low.m3u8
#EXT-X-STREAM-INF:BANDWIDTH=4200000,RESOLUTION=1920x1080
high.m3u8
#EXT-X-STREAM-INF:BANDWIDTH=2100000,RESOLUTION=1280x720
mid.m3u8
`))
	}))
	defer srv.Close()

	tester := newTestTester()
	rs, err := tester.resolveStream(context.Background(), srv.URL+"/master.m3u8")
	require.NoError(t, err)
	assert.Equal(t, 3, rs.streamCount)
	assert.Equal(t, srv.URL+"/high.m3u8", rs.mediaURL)
}

func TestResolveStreamMediaPlaylistRepresentsItself(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("#EXTM3U\n#EXT-X-MEDIA-SEQUENCE:10\n#EXTINF:6.0,\nseg10.ts\n"))
	}))
	defer srv.Close()

	tester := newTestTester()
	url := srv.URL + "/media.m3u8"
	rs, err := tester.resolveStream(context.Background(), url)
	require.NoError(t, err)
	assert.Equal(t, 1, rs.streamCount)
	assert.Equal(t, url, rs.mediaURL)
}

func TestResolveStreamLeadingWhitespaceTolerated(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("\n#EXTM3U\n#EXTINF:6.0,\nseg.ts\n"))
	}))
	defer srv.Close()

	tester := newTestTester()
	_, err := tester.resolveStream(context.Background(), srv.URL+"/media.m3u8")
	require.NoError(t, err)
}
