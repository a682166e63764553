// Package scheduler drives the interpreter's tick loop on a single
// goroutine, using robfig/cron as the 1Hz tick source and a buffered
// command channel to serialize operator commands (pause, resume, confirm,
// skip, restart) against ticks instead of invoking them preemptively from
// another goroutine.
package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
)

// CommandKind enumerates the operator commands the scheduler serializes
// against ticks.
type CommandKind int

const (
	CommandPause CommandKind = iota
	CommandResume
	CommandConfirm
	CommandSkip
	CommandRestart
)

// Command is one operator request, with a reply channel the submitter
// blocks on so HTTP handlers can report the outcome.
type Command struct {
	Kind  CommandKind
	Reply chan error
}

// Runner is implemented by whatever owns the interpreter state the
// scheduler drives. Tick and each command handler run exclusively with
// respect to one another, on the scheduler's single worker goroutine.
type Runner interface {
	Tick()
	Pause() error
	Resume() error
	Confirm() error
	Skip() error
	Restart() error
}

// Scheduler owns a cron-driven tick source and a command queue, and runs
// both through a single worker goroutine so the interpreter it drives never
// observes concurrent calls.
type Scheduler struct {
	cron     *cron.Cron
	interval time.Duration
	runner   Runner

	commands chan Command

	mu      sync.Mutex
	paused  bool
	running bool

	ctx    context.Context
	cancel context.CancelFunc
}

// New builds a Scheduler that ticks runner every interval once Start is
// called.
func New(runner Runner, interval time.Duration) *Scheduler {
	ctx, cancel := context.WithCancel(context.Background())
	return &Scheduler{
		cron:     cron.New(),
		interval: interval,
		runner:   runner,
		commands: make(chan Command, 16),
		ctx:      ctx,
		cancel:   cancel,
	}
}

// Start registers the interval trigger, starts cron's own goroutine, and
// starts the single worker goroutine that serializes ticks against
// commands.
func (s *Scheduler) Start() error {
	spec := fmt.Sprintf("@every %s", s.interval.String())
	tickCh := make(chan struct{}, 1)

	if _, err := s.cron.AddFunc(spec, func() {
		select {
		case tickCh <- struct{}{}:
		default:
			// Previous tick signal still pending: the worker loop is
			// behind, drop this one rather than let the channel block the
			// cron goroutine.
		}
	}); err != nil {
		return fmt.Errorf("scheduler: failed to register tick trigger: %w", err)
	}

	s.mu.Lock()
	s.running = true
	s.mu.Unlock()

	s.cron.Start()
	go s.run(tickCh)
	return nil
}

// Stop halts the cron tick source and the worker loop.
func (s *Scheduler) Stop() {
	s.cancel()
	stopCtx := s.cron.Stop()
	<-stopCtx.Done()
}

// Submit enqueues a command and blocks for its result. It is safe to call
// concurrently from multiple HTTP handler goroutines.
func (s *Scheduler) Submit(kind CommandKind) error {
	reply := make(chan error, 1)
	cmd := Command{Kind: kind, Reply: reply}

	select {
	case s.commands <- cmd:
	case <-s.ctx.Done():
		return fmt.Errorf("scheduler: stopped")
	}

	select {
	case err := <-reply:
		return err
	case <-s.ctx.Done():
		return fmt.Errorf("scheduler: stopped")
	}
}

// run is the single worker loop: every iteration either processes one
// pending command or, if none is pending and the run isn't paused,
// processes one tick signal. Commands always take priority over ticks so
// pause/confirm/skip/restart never wait behind a backlog of ticks.
func (s *Scheduler) run(tickCh <-chan struct{}) {
	for {
		select {
		case <-s.ctx.Done():
			return
		case cmd := <-s.commands:
			cmd.Reply <- s.handle(cmd.Kind)
			continue
		default:
		}

		select {
		case <-s.ctx.Done():
			return
		case cmd := <-s.commands:
			cmd.Reply <- s.handle(cmd.Kind)
		case <-tickCh:
			s.mu.Lock()
			paused := s.paused
			s.mu.Unlock()
			if !paused {
				s.runner.Tick()
			}
		}
	}
}

func (s *Scheduler) handle(kind CommandKind) error {
	switch kind {
	case CommandPause:
		s.mu.Lock()
		s.paused = true
		s.mu.Unlock()
		return s.runner.Pause()
	case CommandResume:
		s.mu.Lock()
		s.paused = false
		s.mu.Unlock()
		return s.runner.Resume()
	case CommandConfirm:
		return s.runner.Confirm()
	case CommandSkip:
		return s.runner.Skip()
	case CommandRestart:
		return s.runner.Restart()
	default:
		return fmt.Errorf("scheduler: unknown command kind %d", kind)
	}
}
