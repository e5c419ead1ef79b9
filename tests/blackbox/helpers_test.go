//go:build blackbox

package blackbox

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

const replayScript = `time,price,ma,trend,position_amt,entry_price,pnl,total_profit,type,detail
2026-01-24T09:30:00Z,27000.0,,none,0,0,0,0,,
2026-01-24T09:45:00Z,27010.5,27001.2,long,0,0,0,0,signal,MA cross up
2026-01-24T10:00:00Z,27020.0,27003.4,long,0.01,27020,0,0,open,buy 0.01 @ 27020
2026-01-24T10:30:00Z,27040.0,27008.1,short,0,0,0,0.2,close,sell 0.01 @ 27040
`

const configTemplate = `exchange:
  symbol: BTCUSDT
  price_tick: 0.1
engine:
  replay_file: REPLAY
  replay_interval: 10ms
supervisor:
  state_schedule: "@every 1s"
  grace_delay: 200ms
journal:
  dir: LOGS
`

// workspace writes a replay script and config into a temp dir and returns
// the config path and the log dir.
func workspace(t *testing.T) (string, string) {
	t.Helper()

	dir := t.TempDir()
	replay := filepath.Join(dir, "replay.csv")
	logs := filepath.Join(dir, "logs")
	if err := os.WriteFile(replay, []byte(replayScript), 0o644); err != nil {
		t.Fatalf("write replay: %v", err)
	}

	cfg := strings.NewReplacer("REPLAY", replay, "LOGS", logs).Replace(configTemplate)
	path := filepath.Join(dir, "trendrunner.yaml")
	if err := os.WriteFile(path, []byte(cfg), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path, logs
}

// env returns the current environment without exchange credentials,
// plus extra.
func env(extra ...string) []string {
	var out []string
	for _, kv := range os.Environ() {
		if strings.HasPrefix(kv, "ASTER_") {
			continue
		}
		out = append(out, kv)
	}
	return append(out, extra...)
}

func todayLog(logs string) string {
	return filepath.Join(logs, time.Now().UTC().Format("2006-01-02")+".log")
}

func waitFor(t *testing.T, timeout time.Duration, cond func() bool) {
	t.Helper()

	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(20 * time.Millisecond)
	}
	t.Fatalf("condition not met within %s", timeout)
}

func count(s, sub string) int { return strings.Count(s, sub) }

func contains(s, sub string) bool { return strings.Contains(s, sub) }
