package probe

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/streamqa/hlscheck/internal/hls"
)

// Resolver failure classes. All of them are fatal for the stream's test.
var (
	ErrInvalidURL   = errors.New("invalid URL format")
	ErrUnreachable  = errors.New("cannot access manifest")
	ErrNotAManifest = errors.New("not a valid M3U8 file")
)

// resolved is the outcome of manifest resolution: the media playlist to
// test and how many renditions the master advertised.
type resolved struct {
	mediaURL    string
	streamCount int
}

// resolveStream validates the stream URL, fetches its manifest and selects
// the representative media playlist. For a master playlist that is the
// variant with the highest advertised bandwidth; a media playlist
// represents itself.
func (t *Tester) resolveStream(ctx context.Context, rawURL string) (resolved, error) {
	u, err := url.Parse(rawURL)
	if err != nil || !u.IsAbs() || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		return resolved{}, ErrInvalidURL
	}

	body, err := t.client.Get(ctx, rawURL)
	if err != nil {
		return resolved{}, fmt.Errorf("%w: %v", ErrUnreachable, err)
	}

	if !strings.HasPrefix(strings.TrimSpace(string(body)), "#EXTM3U") {
		return resolved{}, ErrNotAManifest
	}

	pl, err := hls.Parse(strings.NewReader(string(body)), u)
	if err != nil {
		return resolved{}, fmt.Errorf("manifest parsing error: %w", err)
	}

	if pl.IsMaster {
		best := pl.MaxBandwidthVariant()
		if best == nil {
			return resolved{}, fmt.Errorf("manifest parsing error: master playlist without variants")
		}
		return resolved{mediaURL: best.URI, streamCount: len(pl.Variants)}, nil
	}
	return resolved{mediaURL: rawURL, streamCount: 1}, nil
}
