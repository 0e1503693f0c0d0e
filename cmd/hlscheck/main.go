// hlscheck tests the quality of HLS streams: manifest resolution, segment
// accessibility, audio and video analysis via ffmpeg, and live-ness of the
// media sequence number.
//
// Usage:
//
//	hlscheck [flags] URL [URL...]
//	hlscheck [flags] -json-file streams.json
//	hlscheck [flags] -amg-id AMG001
//
// Exit codes:
//   - 0: all streams passed (warnings allowed)
//   - 1: at least one stream failed
//   - 2: usage or configuration error
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/streamqa/hlscheck/internal/config"
	"github.com/streamqa/hlscheck/internal/deliveries"
	"github.com/streamqa/hlscheck/internal/ffmpeg"
	xlog "github.com/streamqa/hlscheck/internal/log"
	"github.com/streamqa/hlscheck/internal/probe"
	"github.com/streamqa/hlscheck/internal/report"
	"github.com/streamqa/hlscheck/internal/result"
	"github.com/streamqa/hlscheck/internal/secrets"
)

var Version = "dev"

type options struct {
	configPath string
	jsonFile   string
	amgID      string
	output     string
	reportsDir string
	duration   time.Duration
	timeout    time.Duration
	workers    int
	console    bool
	version    bool

	urls []string
}

func parseArgs(args []string, stderr io.Writer) (*options, error) {
	fs := flag.NewFlagSet("hlscheck", flag.ContinueOnError)
	fs.SetOutput(stderr)

	opts := &options{}
	fs.StringVar(&opts.configPath, "config", "", "path to YAML configuration file")
	fs.StringVar(&opts.jsonFile, "json-file", "", "JSON file containing stream URLs and metadata")
	fs.StringVar(&opts.amgID, "amg-id", "", "fetch stream targets from the deliveries API for this AMG ID")
	fs.StringVar(&opts.output, "output", "", "save detailed JSON report to this file (CSV is always saved)")
	fs.StringVar(&opts.reportsDir, "reports-dir", "", "directory for CSV reports (overrides config)")
	fs.DurationVar(&opts.duration, "duration", 0, "MSN monitoring duration per stream (overrides config)")
	fs.DurationVar(&opts.timeout, "timeout", 0, "HTTP request timeout (overrides config)")
	fs.IntVar(&opts.workers, "workers", 0, "maximum parallel stream tests (overrides config)")
	fs.BoolVar(&opts.console, "console", false, "human-readable console logs instead of JSON")
	fs.BoolVar(&opts.version, "version", false, "print version and exit")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	opts.urls = fs.Args()

	if opts.version {
		return opts, nil
	}

	sources := 0
	if len(opts.urls) > 0 {
		sources++
	}
	if opts.jsonFile != "" {
		sources++
	}
	if opts.amgID != "" {
		sources++
	}
	if sources == 0 {
		return nil, fmt.Errorf("provide URLs as arguments, or use -json-file or -amg-id")
	}
	if sources > 1 {
		return nil, fmt.Errorf("URLs, -json-file and -amg-id are mutually exclusive")
	}
	return opts, nil
}

// streamList is the -json-file document format.
type streamList struct {
	StreamURLs []struct {
		StreamURL   string `json:"stream_url"`
		ChannelName string `json:"channel_name"`
		ChannelKey  string `json:"channel_key"`
		Resolution  string `json:"resolution"`
		Type        string `json:"type"`
	} `json:"stream_urls"`
}

func loadTargetsFromJSON(path string) ([]probe.Target, error) {
	data, err := os.ReadFile(path) // #nosec G304 -- path is operator-chosen
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	var doc streamList
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("invalid JSON format: %w", err)
	}
	if len(doc.StreamURLs) == 0 {
		return nil, fmt.Errorf("JSON file must contain a stream_urls array")
	}

	targets := make([]probe.Target, 0, len(doc.StreamURLs))
	for _, s := range doc.StreamURLs {
		if s.StreamURL == "" {
			continue
		}
		targets = append(targets, probe.Target{
			URL: s.StreamURL,
			Meta: result.Metadata{
				ChannelName: s.ChannelName,
				ChannelKey:  s.ChannelKey,
				Resolution:  s.Resolution,
				StreamType:  s.Type,
			},
		})
	}
	if len(targets) == 0 {
		return nil, fmt.Errorf("no stream_url entries found in %s", path)
	}
	return targets, nil
}

// loadTargetsFromAPI fetches deliveries for one AMG ID and converts them
// into test targets. The bearer token comes from config or Secrets Manager.
func loadTargetsFromAPI(ctx context.Context, cfg config.Config, amgID string) ([]probe.Target, error) {
	dc := cfg.Deliveries
	if dc.BaseURL == "" {
		return nil, fmt.Errorf("-amg-id requires deliveries.baseURL in the configuration")
	}

	token := dc.Token
	if token == "" {
		if dc.SecretARN == "" {
			return nil, fmt.Errorf("-amg-id requires deliveries.token or deliveries.secretARN")
		}
		region, _ := secrets.RegionOf(dc.SecretARN)
		resolver, err := secrets.NewResolver(ctx, region)
		if err != nil {
			return nil, err
		}
		token, err = resolver.Token(ctx, dc.SecretARN)
		if err != nil {
			return nil, err
		}
	}

	all, err := deliveries.New(dc.BaseURL, token).Deliveries(ctx, nil)
	if err != nil {
		return nil, err
	}
	filtered := deliveries.FilterByAMGID(all, amgID)
	if len(filtered) == 0 {
		return nil, fmt.Errorf("no deliveries found for AMG ID %q", amgID)
	}
	targets := deliveries.Targets(filtered)
	if len(targets) == 0 {
		return nil, fmt.Errorf("deliveries for %q have no usable stream URLs", amgID)
	}
	return targets, nil
}

func run(args []string, stdout, stderr io.Writer) int {
	opts, err := parseArgs(args, stderr)
	if err != nil {
		if err == flag.ErrHelp {
			return 2
		}
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 2
	}
	if opts.version {
		fmt.Fprintln(stdout, Version)
		return 0
	}

	cfg, err := config.Load(opts.configPath)
	if err != nil {
		fmt.Fprintf(stderr, "Configuration error: %v\n", err)
		return 2
	}
	if opts.duration > 0 {
		cfg.MonitorDuration = opts.duration
	}
	if opts.timeout > 0 {
		cfg.HTTPTimeout = opts.timeout
	}
	if opts.workers > 0 {
		cfg.Workers = opts.workers
	}
	if opts.reportsDir != "" {
		cfg.ReportsDir = opts.reportsDir
	}

	xlog.Configure(xlog.Config{Level: cfg.LogLevel, Output: stderr, Console: opts.console})
	logger := xlog.WithComponent("main")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var targets []probe.Target
	switch {
	case opts.jsonFile != "":
		targets, err = loadTargetsFromJSON(opts.jsonFile)
	case opts.amgID != "":
		targets, err = loadTargetsFromAPI(ctx, cfg, opts.amgID)
	default:
		for _, u := range opts.urls {
			targets = append(targets, probe.Target{URL: u})
		}
	}
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 2
	}

	analyzer := ffmpeg.New(nil)
	analyzer.FFmpegPath = cfg.FFmpegPath
	analyzer.FFprobePath = cfg.FFprobePath

	tester := probe.NewTester(probe.NewClient(cfg.HTTPTimeout, cfg.ProbeRate), analyzer, cfg.MonitorDuration)

	logger.Info().
		Int("streams", len(targets)).
		Int("workers", cfg.Workers).
		Dur("duration", cfg.MonitorDuration).
		Msg("starting stream tests")

	results := probe.RunBatch(ctx, tester, targets, cfg.Workers)

	summary := report.Summarize(results)
	logger.Info().
		Int("passed", summary.Passed).
		Int("warnings", summary.Warnings).
		Int("failed", summary.Failed).
		Msg("stream tests complete")

	if path, err := report.SaveCSV(cfg.ReportsDir, results); err != nil {
		fmt.Fprintf(stderr, "Error saving CSV report: %v\n", err)
	} else {
		fmt.Fprintf(stdout, "CSV report saved to: %s\n", path)
	}

	if opts.output != "" {
		if err := report.SaveJSON(opts.output, results); err != nil {
			fmt.Fprintf(stderr, "Error saving JSON report: %v\n", err)
		} else {
			fmt.Fprintf(stdout, "JSON report saved to: %s\n", opts.output)
		}
	}

	if summary.Failed > 0 {
		return 1
	}
	return 0
}

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}
