package pipeline

import "strings"

// SummaryMarker is the instruction-formatting artifact instruct-tuned models
// tend to append after the summary. Everything before its first occurrence is
// the usable summary.
const SummaryMarker = "\n\n[INST]"

// ExtractSummary strips instruction-formatting artifacts from raw model
// output. It returns the exact prefix before the first marker occurrence and
// true, or the raw output unchanged and false when no marker is present.
func ExtractSummary(raw string) (string, bool) {
	if idx := strings.Index(raw, SummaryMarker); idx >= 0 {
		return raw[:idx], true
	}
	return raw, false
}
