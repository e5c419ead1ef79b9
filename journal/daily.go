package journal

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/rustyeddy/trendrunner/engine"
)

// DayLayout names daily log files.
const DayLayout = "2006-01-02"

// DailyFile is the human-readable audit log: one append-only text file per
// UTC day of process start. A run that crosses midnight keeps writing to the
// file it opened.
type DailyFile struct {
	path string
	f    appendFile
}

// appendFile is the part of *os.File a DailyFile writes through.
type appendFile interface {
	io.WriteSeeker
	Truncate(size int64) error
	Close() error
}

// DailyPath returns dir/YYYY-MM-DD.log for the UTC date of day.
func DailyPath(dir string, day time.Time) string {
	return filepath.Join(dir, day.UTC().Format(DayLayout)+".log")
}

// OpenDaily creates dir if needed and opens the log file for start's UTC
// date in append mode.
func OpenDaily(dir string, start time.Time) (*DailyFile, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create log dir: %w", err)
	}
	path := DailyPath(dir, start)
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open log file: %w", err)
	}
	return &DailyFile{path: path, f: f}, nil
}

func (d *DailyFile) Path() string { return d.path }

func (d *DailyFile) RecordEntry(e engine.TradeLogEntry) error {
	return d.writeLine(EntryLine(e))
}

func (d *DailyFile) RecordState(s State) error {
	return d.writeLine(StateLine(s))
}

func (d *DailyFile) RecordNotice(n Notice) error {
	return d.writeLine(NoticeLine(n))
}

// writeLine issues a single write per line so an O_APPEND file never
// interleaves partial lines. A failed write is cut back to the previous
// end of file, so a retry of the same line leaves no fragment behind.
func (d *DailyFile) writeLine(line string) error {
	name := filepath.Base(d.path)
	end, err := d.f.Seek(0, io.SeekEnd)
	if err != nil {
		return fmt.Errorf("append %s: %w", name, err)
	}
	if _, err := io.WriteString(d.f, line+"\n"); err != nil {
		if terr := d.f.Truncate(end); terr != nil {
			err = errors.Join(err, fmt.Errorf("truncate: %w", terr))
		}
		return fmt.Errorf("append %s: %w", name, err)
	}
	return nil
}

func (d *DailyFile) Close() error {
	return d.f.Close()
}
