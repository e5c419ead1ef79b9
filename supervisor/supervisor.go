// Package supervisor runs a trading engine headlessly: it persists the
// engine's trade log as it grows, writes periodic STATE summaries and
// shuts the engine down cleanly on SIGINT or SIGTERM.
package supervisor

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/rustyeddy/trendrunner/config"
	"github.com/rustyeddy/trendrunner/engine"
	"github.com/rustyeddy/trendrunner/exchange"
	"github.com/rustyeddy/trendrunner/format"
	"github.com/rustyeddy/trendrunner/journal"
)

// State is the supervisor's lifecycle phase.
type State int32

const (
	Uninitialized State = iota
	Starting
	Running
	Stopping
	Terminated
)

func (s State) String() string {
	switch s {
	case Uninitialized:
		return "uninitialized"
	case Starting:
		return "starting"
	case Running:
		return "running"
	case Stopping:
		return "stopping"
	case Terminated:
		return "terminated"
	default:
		return fmt.Sprintf("state(%d)", int32(s))
	}
}

var ErrAlreadyRun = errors.New("supervisor: Run called more than once")

// Options wires a Supervisor. Config, Factory and Journal are required.
type Options struct {
	Config      *config.Config
	Credentials config.Credentials
	Factory     engine.Factory
	Journal     journal.Journal
	Session     string
	Logger      *zap.Logger

	// Signals overrides SIGINT/SIGTERM delivery.
	Signals <-chan os.Signal
	// Ticks overrides the cron schedule that triggers STATE summaries.
	Ticks <-chan time.Time
	// Now stamps notices and scheduled ticks. Defaults to time.Now.
	Now func() time.Time
}

// Supervisor owns one engine for the life of one Run. All journal writes
// happen on Run's goroutine.
type Supervisor struct {
	cfg     *config.Config
	creds   config.Credentials
	factory engine.Factory
	journal journal.Journal
	session string
	log     *zap.Logger
	now     func() time.Time

	signals <-chan os.Signal
	ticks   <-chan time.Time

	state   atomic.Int32
	queue   *Queue
	flusher *journal.Flusher
	warn    *rate.Limiter
	digits  int

	eng    engine.Engine
	symbol string
	sched  *cron.Cron
}

func New(opts Options) (*Supervisor, error) {
	if opts.Config == nil {
		return nil, errors.New("supervisor: config is required")
	}
	if opts.Factory == nil {
		return nil, errors.New("supervisor: engine factory is required")
	}
	if opts.Journal == nil {
		return nil, errors.New("supervisor: journal is required")
	}

	policy, err := ParseOverflow(opts.Config.Supervisor.Overflow)
	if err != nil {
		return nil, err
	}

	s := &Supervisor{
		cfg:     opts.Config,
		creds:   opts.Credentials,
		factory: opts.Factory,
		journal: opts.Journal,
		session: opts.Session,
		log:     opts.Logger,
		now:     opts.Now,
		signals: opts.Signals,
		ticks:   opts.Ticks,
		queue:   NewQueue(opts.Config.Supervisor.QueueSize, policy),
		flusher: journal.NewFlusher(opts.Journal),
		warn:    rate.NewLimiter(rate.Every(10*time.Second), 1),
		digits:  format.InferDigits(opts.Config.Exchange.PriceTick),
	}
	if s.log == nil {
		s.log = zap.NewNop()
	}
	if s.now == nil {
		s.now = time.Now
	}
	return s, nil
}

func (s *Supervisor) State() State { return State(s.state.Load()) }

// Dropped returns how many engine updates the queue has discarded.
func (s *Supervisor) Dropped() int64 { return s.queue.Dropped() }

func (s *Supervisor) setState(st State) {
	prev := State(s.state.Swap(int32(st)))
	s.log.Debug("supervisor state", zap.Stringer("from", prev), zap.Stringer("to", st))
}

// Run starts the engine and services it until a termination signal or
// ctx cancellation, then waits out the grace delay and returns nil.
// Startup failures, including missing credentials, are returned before
// the engine is built or started.
func (s *Supervisor) Run(ctx context.Context) error {
	if !s.state.CompareAndSwap(int32(Uninitialized), int32(Starting)) {
		return ErrAlreadyRun
	}
	defer s.queue.Close()

	if s.signals == nil {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		defer signal.Stop(sigCh)
		s.signals = sigCh
	}

	if err := s.start(ctx); err != nil {
		s.setState(Terminated)
		return err
	}
	defer func() {
		if s.sched != nil {
			s.sched.Stop()
		}
	}()

	s.setState(Running)
	s.log.Info("engine running", zap.String("symbol", s.symbol), zap.Int("digits", s.digits))
	return s.loop(ctx)
}

func (s *Supervisor) start(ctx context.Context) error {
	if s.creds.APIKey == "" || s.creds.APISecret == "" {
		return config.ErrMissingCredentials
	}

	ad, err := exchange.New(exchange.Config{
		APIKey:    s.creds.APIKey,
		APISecret: s.creds.APISecret,
		Symbol:    s.cfg.Exchange.Symbol,
	})
	if err != nil {
		return fmt.Errorf("exchange adapter: %w", err)
	}
	s.symbol = ad.Symbol()

	eng, err := s.factory(ad)
	if err != nil {
		return fmt.Errorf("build engine: %w", err)
	}
	s.eng = eng
	eng.OnUpdate(s.enqueue)

	msg := fmt.Sprintf("starting trend engine (symbol=%s, kline=%s", s.symbol, s.cfg.Engine.KlineInterval)
	if s.session != "" {
		msg += ", session=" + s.session
	}
	if err := s.journal.RecordNotice(journal.Notice{Time: s.now(), Message: msg + ")"}); err != nil {
		return fmt.Errorf("write startup notice: %w", err)
	}

	if err := eng.Start(ctx); err != nil {
		return fmt.Errorf("start engine: %w", err)
	}

	if s.ticks == nil {
		if err := s.schedule(); err != nil {
			eng.Stop()
			return err
		}
	}
	return nil
}

// schedule arms the cron job that posts STATE ticks to the loop. A tick
// that arrives while the previous one is unread is dropped.
func (s *Supervisor) schedule() error {
	spec, err := config.ParseSchedule(s.cfg.Supervisor.StateSchedule)
	if err != nil {
		return fmt.Errorf("state schedule: %w", err)
	}

	ticks := make(chan time.Time, 1)
	s.sched = cron.New()
	s.sched.Schedule(spec, cron.FuncJob(func() {
		select {
		case ticks <- s.now():
		default:
		}
	}))
	s.sched.Start()
	s.ticks = ticks
	return nil
}

func (s *Supervisor) loop(ctx context.Context) error {
	var grace <-chan time.Time
	ctxDone := ctx.Done()

	for {
		select {
		case snap := <-s.queue.C():
			s.flush(snap)

		case t := <-s.ticks:
			if s.State() == Running {
				s.writeState(t)
			}

		case sig := <-s.signals:
			if s.shutdown(sig.String()) {
				grace = s.graceTimer()
			}

		case <-ctxDone:
			ctxDone = nil
			if s.shutdown(ctx.Err().Error()) {
				grace = s.graceTimer()
			}

		case <-grace:
			s.drain()
			s.setState(Terminated)
			s.log.Info("supervisor stopped",
				zap.Int("flushed", s.flusher.Cursor()),
				zap.Int64("dropped", s.queue.Dropped()))
			return nil
		}
	}
}

func (s *Supervisor) graceTimer() <-chan time.Time {
	return time.After(s.cfg.Supervisor.GraceDelay)
}

// shutdown moves Running to Stopping, writes the shutdown notice and stops
// the engine. It reports false if shutdown had already begun.
func (s *Supervisor) shutdown(reason string) bool {
	if !s.state.CompareAndSwap(int32(Running), int32(Stopping)) {
		s.log.Debug("shutdown already in progress", zap.String("reason", reason))
		return false
	}
	s.log.Info("stopping engine", zap.String("reason", reason))

	n := journal.Notice{Time: s.now(), Message: fmt.Sprintf("received %s, stopping engine", reason)}
	if err := s.journal.RecordNotice(n); err != nil {
		s.log.Error("write shutdown notice", zap.Error(err))
	}

	if s.sched != nil {
		s.sched.Stop()
	}
	s.eng.Stop()
	return true
}

// enqueue runs on the engine's goroutine.
func (s *Supervisor) enqueue(snap engine.Snapshot) {
	if s.queue.Push(snap) && s.warn.Allow() {
		s.log.Warn("update queue full, snapshot dropped",
			zap.Stringer("policy", s.queue.Policy()),
			zap.Int64("dropped", s.queue.Dropped()))
	}
}

// drain flushes whatever is still queued without waiting for more.
func (s *Supervisor) drain() {
	for {
		select {
		case snap := <-s.queue.C():
			s.flush(snap)
		default:
			return
		}
	}
}

func (s *Supervisor) flush(snap engine.Snapshot) {
	n, err := s.flusher.Flush(snap.TradeLog)
	if err != nil {
		s.log.Error("flush trade log",
			zap.Error(err),
			zap.Int("written", n),
			zap.Int("cursor", s.flusher.Cursor()),
			zap.Int("length", len(snap.TradeLog)))
		return
	}
	if n > 0 {
		s.log.Debug("flushed trade log", zap.Int("written", n), zap.Int("cursor", s.flusher.Cursor()))
	}
}

func (s *Supervisor) writeState(t time.Time) {
	snap := s.eng.Snapshot()
	if !snap.Ready {
		s.log.Debug("engine not ready, skipping state")
		return
	}

	st := journal.State{
		Time:        t,
		Symbol:      s.symbol,
		Digits:      s.digits,
		MAPeriod:    s.cfg.Engine.MAPeriod,
		Price:       snap.LastPrice,
		MA:          snap.MAValue,
		Trend:       snap.Trend,
		PositionAmt: snap.Position.PositionAmt,
		EntryPrice:  snap.Position.EntryPrice,
		PnL:         snap.PnL,
		TotalProfit: snap.TotalProfit,
		Trades:      snap.TotalTrades,
	}
	if err := s.journal.RecordState(st); err != nil {
		s.log.Error("write state", zap.Error(err))
	}
}
