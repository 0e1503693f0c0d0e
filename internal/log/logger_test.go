package log

import (
	"testing"
)

func TestWithComponentAnnotates(t *testing.T) {
	l := WithComponent("monitor")
	// Logger must be usable without further configuration.
	l.Debug().Msg("component logger smoke test")
}

func TestWithStreamAnnotates(t *testing.T) {
	l := WithStream("resolver", "https://example.com/master.m3u8")
	l.Debug().Msg("stream logger smoke test")
}
