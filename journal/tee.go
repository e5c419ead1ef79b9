package journal

import (
	"errors"
	"fmt"

	"github.com/rustyeddy/trendrunner/engine"
)

// Tee writes every record to a primary journal and then to its mirrors.
//
// Only the primary's error is returned, and mirrors are skipped when the
// primary fails. A record that reached the primary is never reported as
// failed, so the Flusher cannot be made to write it there twice. Mirror
// failures, including panics, go to OnMirrorError instead.
type Tee struct {
	Primary       Journal
	Mirrors       []Journal
	OnMirrorError func(error)
}

func (t *Tee) RecordEntry(e engine.TradeLogEntry) error {
	if err := t.Primary.RecordEntry(e); err != nil {
		return err
	}
	for _, m := range t.Mirrors {
		t.mirror(func() error { return m.RecordEntry(e) })
	}
	return nil
}

func (t *Tee) RecordState(s State) error {
	if err := t.Primary.RecordState(s); err != nil {
		return err
	}
	for _, m := range t.Mirrors {
		t.mirror(func() error { return m.RecordState(s) })
	}
	return nil
}

func (t *Tee) RecordNotice(n Notice) error {
	if err := t.Primary.RecordNotice(n); err != nil {
		return err
	}
	for _, m := range t.Mirrors {
		t.mirror(func() error { return m.RecordNotice(n) })
	}
	return nil
}

// Close closes every journal and joins their errors.
func (t *Tee) Close() error {
	errs := []error{t.Primary.Close()}
	for _, m := range t.Mirrors {
		errs = append(errs, m.Close())
	}
	return errors.Join(errs...)
}

func (t *Tee) mirror(write func() error) {
	t.mirrorErr(func() (err error) {
		defer func() {
			if r := recover(); r != nil {
				err = fmt.Errorf("panic: %v", r)
			}
		}()
		return write()
	}())
}

func (t *Tee) mirrorErr(err error) {
	if err == nil || t.OnMirrorError == nil {
		return
	}
	t.OnMirrorError(fmt.Errorf("journal mirror: %w", err))
}
