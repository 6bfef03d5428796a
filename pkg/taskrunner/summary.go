package taskrunner

import (
	"fmt"
	"strings"

	"github.com/tabrun/tabrun/internal/runner"
)

// RenderSummaryLine returns the summary line printed after a run. Runs that
// never produced a plan render nothing.
func RenderSummaryLine(data runner.SummaryData) string {
	if data.TargetsPlanned == 0 {
		return ""
	}

	parts := []string{fmt.Sprintf("Summary: targets.planned=%d", data.TargetsPlanned)}
	parts = append(parts, fmt.Sprintf("targets.run=%d", data.TargetsRun))
	parts = append(parts, fmt.Sprintf("targets.skipped=%d", data.TargetsSkipped))
	parts = append(parts, fmt.Sprintf("actions=%d", data.ActionsExecuted))
	if data.Failed {
		parts = append(parts, "failed=true")
	}

	durationHuman := strings.TrimSpace(data.DurationHuman)
	if durationHuman == "" {
		durationHuman = "0s"
	}

	parts = append(parts, fmt.Sprintf("duration_human=%s", durationHuman))
	parts = append(parts, fmt.Sprintf("duration_ms=%d", data.DurationMilliseconds))

	return strings.Join(parts, " ")
}
