// Package ffmpeg invokes ffmpeg/ffprobe as external analyzers and scrapes
// their diagnostic output for the detection markers the test pipeline
// consumes. The marker strings and filter parameters are part of the
// behavioral contract and are fragile to analyzer version changes; keep them
// in this package only.
package ffmpeg

import (
	"bytes"
	"context"
	"os/exec"
)

// Runner executes an external command and returns captured stdout and
// stderr. ffmpeg writes its filter diagnostics to stderr, ffprobe its
// readings to stdout.
type Runner interface {
	Run(ctx context.Context, name string, args ...string) (stdout, stderr []byte, err error)
}

// ExecRunner runs commands via os/exec.
type ExecRunner struct{}

// Run executes the command, honouring context cancellation.
func (ExecRunner) Run(ctx context.Context, name string, args ...string) ([]byte, []byte, error) {
	cmd := exec.CommandContext(ctx, name, args...) // #nosec G204
	var outBuf, errBuf bytes.Buffer
	cmd.Stdout = &outBuf
	cmd.Stderr = &errBuf
	err := cmd.Run()
	return outBuf.Bytes(), errBuf.Bytes(), err
}
