package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/rustyeddy/trendrunner/config"
	"github.com/rustyeddy/trendrunner/id"
	"github.com/rustyeddy/trendrunner/journal"
	"github.com/rustyeddy/trendrunner/logger"
	"github.com/rustyeddy/trendrunner/replay"
	"github.com/rustyeddy/trendrunner/supervisor"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the trend engine under supervision",
	Long: `Start the trend engine and keep its audit trail until SIGINT or SIGTERM.

Exchange credentials are read from ASTER_API_KEY and ASTER_API_SECRET,
after loading the env file if it exists. The run stops with exit code 1
if either is missing.

Trade-log entries are appended to <journal.dir>/YYYY-MM-DD.log, named by
the UTC start date. A STATE summary is written on supervisor.state_schedule.

Example:
  trendrunner run -c trendrunner.yaml`,
	Args: cobra.NoArgs,
	RunE: runRun,
}

var (
	runConfigPath string
	runEnvFile    string
)

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringVarP(&runConfigPath, "config", "c", "", "path to config file (defaults apply when omitted)")
	runCmd.Flags().StringVar(&runEnvFile, "env-file", ".env", "optional KEY=VALUE file loaded before reading credentials")
}

func runRun(cmd *cobra.Command, args []string) error {
	cfg := config.Default()
	if runConfigPath != "" {
		var err error
		if cfg, err = config.LoadFromFile(runConfigPath); err != nil {
			return err
		}
	}

	if err := config.LoadDotEnv(runEnvFile); err != nil {
		return err
	}
	cfg.ApplyEnv(os.Getenv)
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	creds, err := config.CredentialsFromEnv(os.Getenv)
	if err != nil {
		return err
	}

	log, err := logger.New(cfg.Log)
	if err != nil {
		return fmt.Errorf("build logger: %w", err)
	}
	defer log.Sync()

	rows, err := replay.Load(cfg.Engine.ReplayFile)
	if err != nil {
		return fmt.Errorf("load replay script: %w", err)
	}

	session := id.New()
	start := time.Now()
	j, err := openJournal(cfg, session, log, start)
	if err != nil {
		return err
	}
	defer func() {
		if err := j.Close(); err != nil {
			log.Error("close journal", zap.Error(err))
		}
	}()

	log.Info("journal open",
		zap.String("session", session),
		zap.String("file", journal.DailyPath(cfg.Journal.Dir, start)))

	sup, err := supervisor.New(supervisor.Options{
		Config:      cfg,
		Credentials: creds,
		Factory:     replay.Factory(rows, cfg.Engine.ReplayInterval),
		Journal:     j,
		Session:     session,
		Logger:      log,
	})
	if err != nil {
		return err
	}
	return sup.Run(cmd.Context())
}

// openJournal opens the daily log file and whichever mirrors cfg enables.
// Mirror write failures are logged, at most a few every ten seconds.
func openJournal(cfg *config.Config, session string, log *zap.Logger, start time.Time) (*journal.Tee, error) {
	daily, err := journal.OpenDaily(cfg.Journal.Dir, start)
	if err != nil {
		return nil, err
	}

	sometimes := &rate.Sometimes{First: 3, Interval: 10 * time.Second}
	tee := &journal.Tee{
		Primary: daily,
		OnMirrorError: func(err error) {
			sometimes.Do(func() { log.Warn("journal mirror write failed", zap.Error(err)) })
		},
	}

	if cfg.Journal.SQLitePath != "" {
		db, err := journal.NewSQLite(cfg.Journal.SQLitePath, session)
		if err != nil {
			_ = tee.Close()
			return nil, fmt.Errorf("open sqlite journal: %w", err)
		}
		tee.Mirrors = append(tee.Mirrors, db)
	}

	if cfg.Journal.CSVDir != "" {
		if err := os.MkdirAll(cfg.Journal.CSVDir, 0o755); err != nil {
			_ = tee.Close()
			return nil, fmt.Errorf("create csv dir: %w", err)
		}
		c, err := journal.NewCSV(
			filepath.Join(cfg.Journal.CSVDir, "entries.csv"),
			filepath.Join(cfg.Journal.CSVDir, "states.csv"),
			session,
		)
		if err != nil {
			_ = tee.Close()
			return nil, fmt.Errorf("open csv journal: %w", err)
		}
		tee.Mirrors = append(tee.Mirrors, c)
	}

	return tee, nil
}
