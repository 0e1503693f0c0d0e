package hls

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"net/url"
	"strconv"
	"strings"
)

// ErrNotManifest is returned when the input does not start with #EXTM3U.
var ErrNotManifest = errors.New("not a valid M3U8 playlist")

// Parse reads an M3U8 playlist. When base is non-nil, segment, variant and
// rendition URIs are resolved against it.
func Parse(r io.Reader, base *url.URL) (*Playlist, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	pl := &Playlist{Live: true}

	// First non-blank line must be the playlist header.
	header := ""
	for scanner.Scan() {
		header = strings.TrimSpace(scanner.Text())
		if header != "" {
			break
		}
	}
	if header == "" {
		return nil, fmt.Errorf("empty playlist: %w", ErrNotManifest)
	}
	if header != "#EXTM3U" {
		return nil, fmt.Errorf("missing #EXTM3U header: %w", ErrNotManifest)
	}

	var (
		pendingSegment *Segment
		pendingVariant *Variant
	)

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		switch {
		case strings.HasPrefix(line, "#EXT-X-VERSION:"):
			if v, err := strconv.Atoi(strings.TrimPrefix(line, "#EXT-X-VERSION:")); err == nil {
				pl.Version = v
			}

		case strings.HasPrefix(line, "#EXT-X-TARGETDURATION:"):
			if v, err := strconv.Atoi(strings.TrimPrefix(line, "#EXT-X-TARGETDURATION:")); err == nil {
				pl.TargetDuration = v
			}

		case strings.HasPrefix(line, "#EXT-X-MEDIA-SEQUENCE:"):
			if v, err := strconv.Atoi(strings.TrimPrefix(line, "#EXT-X-MEDIA-SEQUENCE:")); err == nil {
				pl.MediaSequence = v
			}

		case line == "#EXT-X-ENDLIST":
			pl.Live = false

		case strings.HasPrefix(line, "#EXTINF:"):
			value := strings.TrimPrefix(line, "#EXTINF:")
			seg := &Segment{}
			parts := strings.SplitN(value, ",", 2)
			if d, err := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64); err == nil {
				seg.Duration = d
			}
			if len(parts) > 1 {
				seg.Title = parts[1]
			}
			pendingSegment = seg

		case strings.HasPrefix(line, "#EXT-X-STREAM-INF:"):
			attrs := parseAttributes(strings.TrimPrefix(line, "#EXT-X-STREAM-INF:"))
			v := &Variant{
				Codecs:     strings.Trim(attrs["CODECS"], `"`),
				Resolution: attrs["RESOLUTION"],
			}
			if b, err := strconv.Atoi(attrs["BANDWIDTH"]); err == nil {
				v.Bandwidth = b
			}
			pendingVariant = v

		case strings.HasPrefix(line, "#EXT-X-MEDIA:"):
			attrs := parseAttributes(strings.TrimPrefix(line, "#EXT-X-MEDIA:"))
			pl.Renditions = append(pl.Renditions, Rendition{
				Type:     attrs["TYPE"],
				GroupID:  strings.Trim(attrs["GROUP-ID"], `"`),
				Name:     strings.Trim(attrs["NAME"], `"`),
				URI:      resolveURI(base, strings.Trim(attrs["URI"], `"`)),
				Language: strings.Trim(attrs["LANGUAGE"], `"`),
				Channels: strings.Trim(attrs["CHANNELS"], `"`),
			})

		case strings.HasPrefix(line, "#"):
			// Unhandled tag, skip.

		default:
			// URI line completes the pending segment or variant.
			uri := resolveURI(base, line)
			switch {
			case pendingVariant != nil:
				pendingVariant.URI = uri
				pl.Variants = append(pl.Variants, *pendingVariant)
				pendingVariant = nil
				pl.IsMaster = true
			case pendingSegment != nil:
				pendingSegment.URI = uri
				pl.Segments = append(pl.Segments, *pendingSegment)
				pendingSegment = nil
			default:
				pl.Segments = append(pl.Segments, Segment{URI: uri})
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading playlist: %w", err)
	}

	return pl, nil
}

func resolveURI(base *url.URL, uri string) string {
	if uri == "" || base == nil {
		return uri
	}
	ref, err := url.Parse(uri)
	if err != nil {
		return uri
	}
	return base.ResolveReference(ref).String()
}

// parseAttributes splits an M3U8 attribute list such as
// BANDWIDTH=1280000,CODECS="avc1.42e00a,mp4a.40.2" into key/value pairs,
// honouring commas inside quoted values.
func parseAttributes(s string) map[string]string {
	attrs := make(map[string]string)

	var parts []string
	var current strings.Builder
	inQuotes := false
	for _, ch := range s {
		switch ch {
		case '"':
			inQuotes = !inQuotes
			current.WriteRune(ch)
		case ',':
			if inQuotes {
				current.WriteRune(ch)
			} else {
				parts = append(parts, current.String())
				current.Reset()
			}
		default:
			current.WriteRune(ch)
		}
	}
	if current.Len() > 0 {
		parts = append(parts, current.String())
	}

	for _, part := range parts {
		kv := strings.SplitN(strings.TrimSpace(part), "=", 2)
		if len(kv) == 2 {
			attrs[kv[0]] = kv[1]
		}
	}
	return attrs
}
