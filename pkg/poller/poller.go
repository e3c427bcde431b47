// Package poller drives the scrape loop on a fixed interval.
package poller

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/Gobusters/ectologger"

	"github.com/Ramsey-B/fern/pkg/models"
	"github.com/Ramsey-B/fern/pkg/redis"
	"github.com/Ramsey-B/fern/pkg/tracing"
)

var (
	// ErrPollerStopped is returned when the poller is stopped
	ErrPollerStopped = errors.New("poller stopped")

	// ErrPollerAlreadyRunning is returned when trying to start an already running poller
	ErrPollerAlreadyRunning = errors.New("poller already running")
)

const (
	// DefaultInterval is the default gap between scrape cycles
	DefaultInterval = 60 * time.Second

	// DefaultLockTTL is the default TTL for the distributed cycle lock
	DefaultLockTTL = 55 * time.Second
)

// CycleRunner executes one sync cycle
type CycleRunner interface {
	RunCycle(ctx context.Context) (*models.SyncResult, error)
}

// Config holds configuration for the poller
type Config struct {
	// SettlementID keys the distributed lock
	SettlementID string

	// Interval is how often to run a cycle
	Interval time.Duration

	// LockTTL is how long to hold the distributed lock
	LockTTL time.Duration
}

// Poller runs scrape cycles on a ticker. Overlap is prevented two ways:
// an in-process in-flight guard for slow cycles, and an optional
// distributed lock so multiple instances do not scrape the same
// settlement concurrently.
type Poller struct {
	runner CycleRunner
	locker *redis.Locker
	config Config
	logger ectologger.Logger

	inFlight atomic.Bool

	stopCh   chan struct{}
	stoppedC chan struct{}
	running  bool
	mu       sync.RWMutex
}

// New creates a poller. locker may be nil for single-instance deployments.
func New(runner CycleRunner, locker *redis.Locker, config Config, logger ectologger.Logger) *Poller {
	if config.Interval <= 0 {
		config.Interval = DefaultInterval
	}
	if config.LockTTL <= 0 {
		config.LockTTL = DefaultLockTTL
	}

	return &Poller{
		runner:   runner,
		locker:   locker,
		config:   config,
		logger:   logger,
		stopCh:   make(chan struct{}),
		stoppedC: make(chan struct{}),
	}
}

// Start starts the poll loop
func (p *Poller) Start(ctx context.Context) error {
	p.mu.Lock()
	if p.running {
		p.mu.Unlock()
		return ErrPollerAlreadyRunning
	}
	p.running = true
	p.mu.Unlock()

	ctx, span := tracing.StartSpan(ctx, "poller.Poller.Start")
	defer span.End()

	p.logger.WithContext(ctx).Infof("Starting poller: settlement_id=%s interval=%s",
		p.config.SettlementID, p.config.Interval)

	go p.pollLoop(ctx)

	return nil
}

// Stop stops the poller gracefully
func (p *Poller) Stop(ctx context.Context) error {
	p.mu.Lock()
	if !p.running {
		p.mu.Unlock()
		return nil
	}
	p.running = false
	p.mu.Unlock()

	p.logger.WithContext(ctx).Info("Stopping poller...")

	close(p.stopCh)

	select {
	case <-p.stoppedC:
		p.logger.WithContext(ctx).Info("Poller stopped gracefully")
	case <-ctx.Done():
		p.logger.WithContext(ctx).Warn("Poller shutdown timed out")
		return ctx.Err()
	}

	return nil
}

// IsRunning returns whether the poller is running
func (p *Poller) IsRunning() bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.running
}

// pollLoop runs a cycle immediately, then on every tick. Cycles run off
// the loop goroutine so a slow cycle delays nothing; the in-flight guard
// makes the overlapping tick a skip instead of a second cycle.
func (p *Poller) pollLoop(ctx context.Context) {
	defer close(p.stoppedC)

	ticker := time.NewTicker(p.config.Interval)
	defer ticker.Stop()

	go p.runOnce(ctx)

	for {
		select {
		case <-p.stopCh:
			p.logger.WithContext(ctx).Debug("Poller loop stopping")
			return
		case <-ticker.C:
			go p.runOnce(ctx)
		}
	}
}

// runOnce runs a single cycle unless one is already in flight
func (p *Poller) runOnce(ctx context.Context) {
	if !p.inFlight.CompareAndSwap(false, true) {
		p.logger.WithContext(ctx).Warn("Skipping scrape tick, previous cycle still running")
		return
	}
	defer p.inFlight.Store(false)

	ctx, span := tracing.StartSpan(ctx, "poller.Poller.runOnce")
	defer span.End()

	if p.locker != nil {
		err := p.locker.WithLock(ctx, p.config.SettlementID, p.config.LockTTL, func() error {
			_, err := p.runner.RunCycle(ctx)
			return err
		})
		if errors.Is(err, redis.ErrLockNotAcquired) {
			p.logger.WithContext(ctx).Debug("Another instance holds the scrape lock, skipping tick")
			return
		}
		if err != nil {
			p.logger.WithContext(ctx).WithError(err).Error("Scrape cycle failed")
		}
		return
	}

	if _, err := p.runner.RunCycle(ctx); err != nil {
		p.logger.WithContext(ctx).WithError(err).Error("Scrape cycle failed")
	}
}
