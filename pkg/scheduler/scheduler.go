package scheduler

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// TickFunc runs one notifier pass and returns a loggable summary.
type TickFunc func(ctx context.Context) (interface{}, error)

// Loop drives a TickFunc on a fixed interval with at most one tick in
// flight. It is the in-process stand-in for an external cron trigger.
type Loop struct {
	name     string
	tick     TickFunc
	interval time.Duration
	logger   *zap.Logger

	ctx     context.Context
	cancel  context.CancelFunc
	wg      sync.WaitGroup
	mu      sync.Mutex
	started bool
}

// NewLoop builds a scheduler loop. Interval must be positive.
func NewLoop(name string, interval time.Duration, tick TickFunc, logger *zap.Logger) *Loop {
	if interval <= 0 {
		interval = time.Minute
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Loop{
		name:     name,
		tick:     tick,
		interval: interval,
		logger:   logger,
	}
}

// Start launches the loop goroutine. Safe to call once.
func (l *Loop) Start(ctx context.Context) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.started {
		return
	}
	l.ctx, l.cancel = context.WithCancel(ctx)
	l.wg.Add(1)
	go l.run()
	l.started = true
	l.logger.Sugar().Infow("scheduler started", "loop", l.name, "interval", l.interval.String())
}

// Stop signals the loop to exit and waits for the in-flight tick to finish.
func (l *Loop) Stop() {
	l.mu.Lock()
	if !l.started {
		l.mu.Unlock()
		return
	}
	l.cancel()
	l.mu.Unlock()
	l.wg.Wait()
	l.logger.Sugar().Infow("scheduler stopped", "loop", l.name)
}

// run executes ticks sequentially: one pass, then wait for stop or interval.
func (l *Loop) run() {
	defer l.wg.Done()

	timer := time.NewTimer(0) // first tick fires immediately
	defer timer.Stop()

	for {
		select {
		case <-l.ctx.Done():
			return
		case <-timer.C:
		}

		summary, err := l.tick(l.ctx)
		if err != nil {
			l.logger.Sugar().Errorw("scheduler tick failed", "loop", l.name, "error", err)
		} else {
			l.logger.Sugar().Infow("scheduler tick complete", "loop", l.name, "summary", summary)
		}

		timer.Reset(l.interval)
	}
}
