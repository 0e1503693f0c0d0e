package result

import "fmt"

// Finalize reduces the accumulated findings to the final verdict. It is a
// pure function of the result's counters and flags: running it twice on an
// unchanged result yields the same verdict. No pipeline stage decides
// pass/fail on its own; this is the only place that does.
func (r *TestResult) Finalize() {
	critical := len(r.Issues)
	warnings := len(r.Warnings)

	switch r.AudioStatus {
	case AudioSilent, AudioMissing:
		critical++
	case AudioIssues:
		warnings++
	case AudioOK, AudioError:
		// No contribution beyond already-recorded findings.
	}

	if r.BlackFramesDetected && r.BlackFramesPercentage > 20 {
		critical++
	} else if r.BlackFramesDetected {
		warnings++
	}

	if r.FreezeFramesDetected {
		critical++
	}

	if r.AudioDistortionDetected {
		warnings++
	}

	switch {
	case critical > 0:
		r.Status = VerdictFail
		r.Summary = fmt.Sprintf("FAILED - %d critical issues", critical)
	case warnings > 0:
		r.Status = VerdictWarning
		r.Summary = fmt.Sprintf("WARNING - %d minor issues", warnings)
	default:
		r.Status = VerdictPass
		r.Summary = "PASSED - All checks successful"
	}

	if r.ErrorMessage == "" && len(r.Issues) > 0 {
		r.ErrorMessage = r.Issues[0]
	}
}
