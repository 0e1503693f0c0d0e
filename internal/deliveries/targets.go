package deliveries

import (
	"sort"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws/arn"

	xlog "github.com/streamqa/hlscheck/internal/log"
	"github.com/streamqa/hlscheck/internal/probe"
	"github.com/streamqa/hlscheck/internal/result"
)

// HLSURL returns the testable playlist URL of a cname: the scheme is
// normalized to https and the playlist path is appended unless the cname
// already names one.
func HLSURL(cname string) string {
	if cname == "" {
		return ""
	}
	if !strings.HasPrefix(cname, "http") {
		cname = "https://" + cname
	}
	if !strings.HasSuffix(cname, ".m3u8") {
		cname += "/playlist.m3u8"
	}
	return cname
}

// FilterByAMGID returns the deliveries belonging to one AMG customer ID.
func FilterByAMGID(deliveries []Delivery, amgID string) []Delivery {
	var out []Delivery
	for _, d := range deliveries {
		if d.AMGID == amgID {
			out = append(out, d)
		}
	}
	return out
}

// Targets converts deliveries into stream test targets. A delivery's
// explicit stream URL wins; the cname conversion is the fallback.
// Deliveries with neither are skipped and duplicate URLs collapse to one
// target.
func Targets(deliveries []Delivery) []probe.Target {
	logger := xlog.WithComponent("deliveries")

	seen := make(map[string]struct{})
	var targets []probe.Target

	for _, d := range deliveries {
		streamURL := strings.TrimSpace(d.StreamURL)
		if streamURL == "" {
			streamURL = HLSURL(strings.TrimSpace(d.CName))
		}
		if streamURL == "" {
			logger.Warn().Str("feed", d.FeedName).Str("platform", d.Platform).
				Msg("delivery has neither stream_url nor cname, skipping")
			continue
		}
		if _, dup := seen[streamURL]; dup {
			continue
		}
		seen[streamURL] = struct{}{}

		targets = append(targets, probe.Target{
			URL: streamURL,
			Meta: result.Metadata{
				ChannelName: d.FeedName,
				ChannelKey:  d.FeedCode,
				StreamType:  d.Platform,
			},
		})
	}
	return targets
}

// FlowARNs extracts the unique MediaConnect flow ARNs referenced by the
// deliveries' previous destinations, sorted for stable output.
func FlowARNs(deliveries []Delivery) []string {
	seen := make(map[string]struct{})
	var arns []string
	for _, d := range deliveries {
		candidate := strings.TrimSpace(d.PrevDestinationID)
		if !IsFlowARN(candidate) {
			continue
		}
		if _, dup := seen[candidate]; dup {
			continue
		}
		seen[candidate] = struct{}{}
		arns = append(arns, candidate)
	}
	sort.Strings(arns)
	return arns
}

// IsFlowARN reports whether s is a MediaConnect flow ARN.
func IsFlowARN(s string) bool {
	parsed, err := arn.Parse(s)
	if err != nil {
		return false
	}
	return parsed.Service == "mediaconnect" && strings.HasPrefix(parsed.Resource, "flow:")
}

// FlowRegion returns the AWS region encoded in a flow ARN.
func FlowRegion(s string) (string, bool) {
	parsed, err := arn.Parse(s)
	if err != nil {
		return "", false
	}
	return parsed.Region, parsed.Region != ""
}
