// Package hls parses HTTP Live Streaming playlists far enough to drive
// stream testing: variant selection, segment lists, media sequence numbers
// and alternative audio renditions.
package hls

import "strings"

// Playlist is a parsed M3U8 playlist, either a master (variant) playlist or
// a media playlist.
type Playlist struct {
	IsMaster       bool
	Live           bool // no #EXT-X-ENDLIST seen
	Version        int
	TargetDuration int
	MediaSequence  int
	Segments       []Segment
	Variants       []Variant
	Renditions     []Rendition
}

// Segment is a single media segment referenced by a media playlist. URI is
// absolute when the playlist was parsed with a base URL.
type Segment struct {
	URI      string
	Duration float64
	Title    string
}

// Variant is one EXT-X-STREAM-INF entry of a master playlist.
type Variant struct {
	URI        string
	Bandwidth  int
	Codecs     string
	Resolution string
}

// Rendition is one EXT-X-MEDIA entry (alternative audio, subtitles, ...).
type Rendition struct {
	Type     string // AUDIO, SUBTITLES, ...
	GroupID  string
	Name     string
	URI      string
	Language string
	Channels string
}

// MaxBandwidthVariant returns the variant with the highest advertised
// bandwidth, or nil for a media playlist. Ties keep the first encountered.
func (p *Playlist) MaxBandwidthVariant() *Variant {
	var best *Variant
	for i := range p.Variants {
		if best == nil || p.Variants[i].Bandwidth > best.Bandwidth {
			best = &p.Variants[i]
		}
	}
	return best
}

// AudioRenditions returns the EXT-X-MEDIA entries of type AUDIO that carry
// their own playlist URI.
func (p *Playlist) AudioRenditions() []Rendition {
	var out []Rendition
	for _, r := range p.Renditions {
		if r.Type == "AUDIO" && r.URI != "" {
			out = append(out, r)
		}
	}
	return out
}

// AudioCodecs filters the audio codec atoms (mp4a, ac-3, ec-3) out of a
// CODECS attribute value.
func AudioCodecs(codecs string) []string {
	var out []string
	for _, c := range strings.Split(codecs, ",") {
		c = strings.TrimSpace(c)
		if strings.Contains(c, "mp4a") || strings.Contains(c, "ac-3") || strings.Contains(c, "ec-3") {
			out = append(out, c)
		}
	}
	return out
}
