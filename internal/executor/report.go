package executor

import (
	"fmt"
	"strings"
	"time"

	utils "blacktask/internal/utils"

	"github.com/goccy/go-json"
)

const summaryErrorWidth = 120

// GenerateSummary renders one line per result followed by totals.
func GenerateSummary(results []TaskResult) string {
	var sb strings.Builder
	sb.WriteString("=== blacktask summary ===\n")

	passed := 0
	for _, r := range results {
		status := "FAIL"
		if r.Succeeded() {
			status = "PASS"
			passed++
		}
		fmt.Fprintf(&sb, "%s %s", status, r.Task)
		if r.Group != "" {
			fmt.Fprintf(&sb, " (%s)", r.Group)
		}
		fmt.Fprintf(&sb, " %s\n", r.Duration.Round(time.Millisecond))

		if r.Succeeded() {
			continue
		}
		detail := r.Error
		if last := utils.LastLine(r.Output); last != "" {
			detail += ": " + last
		}
		fmt.Fprintf(&sb, "     %s\n", utils.SafeTruncate(detail, summaryErrorWidth))
		if r.LogPath != "" {
			fmt.Fprintf(&sb, "     log: %s\n", r.LogPath)
		}
	}

	fmt.Fprintf(&sb, "%d tasks, %d passed, %d failed", len(results), passed, len(results)-passed)
	return sb.String()
}

// MarshalResults renders results as indented JSON.
func MarshalResults(results []TaskResult) ([]byte, error) {
	if results == nil {
		results = []TaskResult{}
	}
	return json.MarshalIndent(results, "", "  ")
}
