package journal

import (
	"fmt"
	"strings"
	"time"

	"github.com/rustyeddy/trendrunner/engine"
)

// FormatDayOrg renders one day of journal data as an Org-mode block for
// pasting into a trading diary. Entries become list items under a Log
// heading; STATE summaries go in a table so they can be sorted in Emacs.
func FormatDayOrg(day time.Time, entries []engine.TradeLogEntry, states []State) string {
	var b strings.Builder
	fmt.Fprintf(&b, "** Session log %s\n", day.UTC().Format(DayLayout))
	b.WriteString(":PROPERTIES:\n")
	fmt.Fprintf(&b, ":ENTRIES: %d\n", len(entries))
	fmt.Fprintf(&b, ":STATES: %d\n", len(states))
	b.WriteString(":END:\n")

	b.WriteString("\n*** Log\n")
	if len(entries) == 0 {
		b.WriteString("- (none)\n")
	}
	for _, e := range entries {
		fmt.Fprintf(&b, "- %s *%s* %s\n", e.Time.UTC().Format("15:04:05"), e.Type, oneLine.Replace(e.Detail))
	}

	b.WriteString("\n*** State\n")
	b.WriteString("| time | summary |\n|-\n")
	for _, s := range states {
		fmt.Fprintf(&b, "| %s | %s |\n", s.Time.UTC().Format("15:04:05"), strings.TrimPrefix(s.Line(), "STATE "))
	}

	b.WriteString("\n*** Review\n- \n")
	return b.String()
}
