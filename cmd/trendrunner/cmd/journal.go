package cmd

import (
	"fmt"
	"sort"
	"time"

	"github.com/rustyeddy/trendrunner/engine"
	"github.com/rustyeddy/trendrunner/format"
	"github.com/rustyeddy/trendrunner/journal"
	"github.com/spf13/cobra"
)

var journalCmd = &cobra.Command{
	Use:   "journal",
	Short: "Query the SQLite journal",
	Long: `Query and display records from the SQLite journal mirror
(journal.sqlite_path in the config).

Subcommands:
  today     - Show today's log (UTC)
  day       - Show the log for a specific UTC day
  sessions  - Count the runs recorded in the journal

Examples:
  trendrunner journal today -d journal.db
  trendrunner journal day 2024-01-15 --org`,
}

var journalTodayCmd = &cobra.Command{
	Use:   "today",
	Short: "Show today's log",
	Args:  cobra.NoArgs,
	RunE:  runJournalToday,
}

var journalDayCmd = &cobra.Command{
	Use:   "day <YYYY-MM-DD>",
	Short: "Show the log for a specific day",
	Args:  cobra.ExactArgs(1),
	RunE:  runJournalDay,
}

var journalSessionsCmd = &cobra.Command{
	Use:   "sessions",
	Short: "Count recorded runs",
	Args:  cobra.NoArgs,
	RunE:  runJournalSessions,
}

var (
	journalDBPath   string
	journalOrg      bool
	journalTick     float64
	journalMAPeriod int
)

func init() {
	rootCmd.AddCommand(journalCmd)
	journalCmd.AddCommand(journalTodayCmd)
	journalCmd.AddCommand(journalDayCmd)
	journalCmd.AddCommand(journalSessionsCmd)

	journalCmd.PersistentFlags().StringVarP(&journalDBPath, "db", "d", "./journal.db", "path to SQLite journal DB")
	journalCmd.PersistentFlags().BoolVar(&journalOrg, "org", false, "print as an Org-mode block")
	journalCmd.PersistentFlags().Float64Var(&journalTick, "tick", 0, "price tick used to pick display digits")
	journalCmd.PersistentFlags().IntVar(&journalMAPeriod, "ma-period", 30, "moving-average period shown in STATE lines")
}

func runJournalToday(cmd *cobra.Command, args []string) error {
	return showDay(cmd, time.Now().UTC().Format(journal.DayLayout))
}

func runJournalDay(cmd *cobra.Command, args []string) error {
	return showDay(cmd, args[0])
}

func showDay(cmd *cobra.Command, day string) error {
	start, end, err := dayBounds(day)
	if err != nil {
		return fmt.Errorf("date: %w", err)
	}

	j, err := journal.NewSQLite(journalDBPath, "")
	if err != nil {
		return fmt.Errorf("open db: %w", err)
	}
	defer j.Close()

	entries, err := j.ListEntriesBetween(start, end)
	if err != nil {
		return fmt.Errorf("query entries: %w", err)
	}
	states, err := j.ListStatesBetween(start, end)
	if err != nil {
		return fmt.Errorf("query states: %w", err)
	}

	digits := format.InferDigits(journalTick)
	for i := range states {
		states[i].Digits = digits
		states[i].MAPeriod = journalMAPeriod
	}

	out := cmd.OutOrStdout()
	if journalOrg {
		fmt.Fprint(out, journal.FormatDayOrg(start, entries, states))
		return nil
	}
	for _, line := range dayLines(entries, states) {
		fmt.Fprintln(out, line)
	}
	return nil
}

func runJournalSessions(cmd *cobra.Command, args []string) error {
	j, err := journal.NewSQLite(journalDBPath, "")
	if err != nil {
		return fmt.Errorf("open db: %w", err)
	}
	defer j.Close()

	n, err := j.CountSessions()
	if err != nil {
		return fmt.Errorf("count sessions: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%d sessions\n", n)
	return nil
}

// dayLines renders entries and states as log lines, interleaved by time.
// Entries sort before states written at the same instant.
func dayLines(entries []engine.TradeLogEntry, states []journal.State) []string {
	type stamped struct {
		t    time.Time
		line string
	}
	all := make([]stamped, 0, len(entries)+len(states))
	for _, e := range entries {
		all = append(all, stamped{e.Time, journal.EntryLine(e)})
	}
	for _, s := range states {
		all = append(all, stamped{s.Time, journal.StateLine(s)})
	}
	sort.SliceStable(all, func(i, k int) bool { return all[i].t.Before(all[k].t) })

	lines := make([]string, len(all))
	for i, s := range all {
		lines[i] = s.line
	}
	return lines
}

// dayBounds returns the UTC day [start, end) named by day.
func dayBounds(day string) (time.Time, time.Time, error) {
	t, err := time.ParseInLocation(journal.DayLayout, day, time.UTC)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	return t, t.Add(24 * time.Hour), nil
}
