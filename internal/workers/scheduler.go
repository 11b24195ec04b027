// Package workers implements the bounded background scheduler (§10):
// demand refresh, cache warming, competitor refresh, expired-cache sweep,
// daily metric rollover, and loyalty expiry scan. Grounded on the
// teacher's waitlist.JobProcessor ticker-per-job shape, generalized to
// take an injected clock.Clock so tests can drive it without sleeping.
package workers

import (
	"context"
	"time"

	"hotelcore/internal/availability"
	"hotelcore/internal/hotels"
	"hotelcore/internal/loyalty"
	"hotelcore/internal/providers"
	"hotelcore/internal/shared/clock"
	"hotelcore/internal/shared/logger"

	"github.com/google/uuid"
)

// RealtimePublisher is satisfied by realtime.Hub. Kept local so this
// package never imports internal/realtime.
type RealtimePublisher interface {
	YieldDashboardUpdate(ctx context.Context, payload interface{})
	RevenueOptimizationUpdate(ctx context.Context, hotelID uuid.UUID, payload interface{})
	DemandSurgeAlert(ctx context.Context, hotelID uuid.UUID, payload interface{})
}

// CacheSweeper is the slice of cache.Service this scheduler needs.
type CacheSweeper interface {
	RunSweep(ctx context.Context)
}

// Config holds the scheduler's tick intervals. Defaults mirror the
// teacher's waitlist.DefaultJobConfig: frequent checks for time-sensitive
// work, daily for rollups.
type Config struct {
	DemandRefreshInterval    time.Duration
	CacheWarmInterval        time.Duration
	CompetitorRefreshInterval time.Duration
	CacheSweepInterval       time.Duration
	MetricRolloverInterval   time.Duration
	LoyaltyExpiryInterval    time.Duration
}

func DefaultConfig() Config {
	return Config{
		DemandRefreshInterval:     5 * time.Minute,
		CacheWarmInterval:         15 * time.Minute,
		CompetitorRefreshInterval: 1 * time.Hour,
		CacheSweepInterval:        10 * time.Minute,
		MetricRolloverInterval:    24 * time.Hour,
		LoyaltyExpiryInterval:     24 * time.Hour,
	}
}

// Scheduler owns every background job this core runs. All jobs share one
// injected clock so the whole scheduler can be driven deterministically
// in tests.
type Scheduler struct {
	cfg   Config
	clock clock.Clock

	hotels      hotels.Repository
	availability availability.Service
	competitor  providers.CompetitorProvider
	loyaltySvc  loyalty.Service
	cache       CacheSweeper
	hub         RealtimePublisher
	log         *logger.Logger

	done chan struct{}
}

func New(cfg Config, clk clock.Clock, hotelsRepo hotels.Repository, availabilitySvc availability.Service, competitor providers.CompetitorProvider, loyaltySvc loyalty.Service, cacheSvc CacheSweeper, hub RealtimePublisher, log *logger.Logger) *Scheduler {
	return &Scheduler{
		cfg:          cfg,
		clock:        clk,
		hotels:       hotelsRepo,
		availability: availabilitySvc,
		competitor:   competitor,
		loyaltySvc:   loyaltySvc,
		cache:        cacheSvc,
		hub:          hub,
		log:          log,
		done:         make(chan struct{}),
	}
}

// Start launches every job as its own goroutine, each on its own ticker.
func (s *Scheduler) Start(ctx context.Context) {
	s.log.Info("starting background workers")

	go s.runTicker(ctx, s.cfg.DemandRefreshInterval, s.refreshDemand)
	go s.runTicker(ctx, s.cfg.CacheWarmInterval, s.warmCache)
	go s.runTicker(ctx, s.cfg.CompetitorRefreshInterval, s.refreshCompetitorSignals)
	go s.runTicker(ctx, s.cfg.CacheSweepInterval, s.sweepCache)
	go s.runTicker(ctx, s.cfg.MetricRolloverInterval, s.rolloverMetrics)
	go s.runTicker(ctx, s.cfg.LoyaltyExpiryInterval, s.runLoyaltyExpiryScan)

	s.log.Info("background workers started")
}

func (s *Scheduler) Stop() {
	close(s.done)
}

func (s *Scheduler) runTicker(ctx context.Context, interval time.Duration, job func(ctx context.Context)) {
	ticker := s.clock.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C():
			job(ctx)
		case <-s.done:
			return
		case <-ctx.Done():
			return
		}
	}
}
