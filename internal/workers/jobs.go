package workers

import (
	"context"
	"time"
)

const (
	hotelPageSize  = 100
	warmLookaheadDays = 14
)

// refreshDemand re-derives the coarse demand level for every active hotel
// over the lookahead window, pushing a demand-surge-alert (§4.5) when any
// date is already near-sellout by the time this job runs (the Pricing
// Engine itself recomputes Level lazily on read; this job exists so a
// dashboard watcher sees a surge without needing to have queried a price
// first).
func (s *Scheduler) refreshDemand(ctx context.Context) {
	hotelList, err := s.hotels.List(ctx, hotelPageSize, 0)
	if err != nil {
		s.log.ErrorWithContext(ctx, "demand refresh: list hotels failed", err, nil)
		return
	}

	now := s.clock.Now()
	surging := 0
	for _, h := range hotelList {
		for day := 0; day < warmLookaheadDays; day++ {
			date := now.AddDate(0, 0, day)
			occ, err := s.availability.GetRealTimeOccupancy(ctx, h.ID, date)
			if err != nil {
				continue
			}
			if occ >= 0.95 {
				surging++
				s.hub.DemandSurgeAlert(ctx, h.ID, map[string]interface{}{
					"hotelId":       h.ID.String(),
					"date":          date.Format("2006-01-02"),
					"occupancyRate": occ,
					"signal":        "near-sellout",
				})
			}
		}
	}

	if surging > 0 {
		s.log.Info("demand refresh flagged near-sellout dates")
	}
}

// warmCache pre-populates the availability cache for every active hotel's
// near-term window, so the first guest-facing read after a cold start or
// an invalidation doesn't pay the full reconciliation cost.
func (s *Scheduler) warmCache(ctx context.Context) {
	hotelList, err := s.hotels.List(ctx, hotelPageSize, 0)
	if err != nil {
		s.log.ErrorWithContext(ctx, "cache warm: list hotels failed", err, nil)
		return
	}

	now := s.clock.Now()
	checkOut := now.AddDate(0, 0, warmLookaheadDays)
	for _, h := range hotelList {
		if _, err := s.availability.GetAvailability(ctx, h.ID, now, checkOut, h.Currency); err != nil {
			s.log.ErrorWithContext(ctx, "cache warm: availability failed", err, map[string]interface{}{"hotel_id": h.ID.String()})
		}
	}
}

// refreshCompetitorSignals pre-fetches each hotel's competitor price
// signal for today so the Pricing Engine's competitor factor reads a warm
// sample instead of triggering acquisition inline (§4.2).
func (s *Scheduler) refreshCompetitorSignals(ctx context.Context) {
	hotelList, err := s.hotels.List(ctx, hotelPageSize, 0)
	if err != nil {
		s.log.ErrorWithContext(ctx, "competitor refresh: list hotels failed", err, nil)
		return
	}

	now := s.clock.Now()
	for _, h := range hotelList {
		if _, err := s.competitor.Fetch(ctx, h.ID, now); err != nil {
			s.log.ErrorWithContext(ctx, "competitor refresh failed", err, map[string]interface{}{"hotel_id": h.ID.String()})
		}
	}
}

// sweepCache runs the Hybrid Cache's SCHEDULED invalidation strategy,
// draining keys marked for deferred purge instead of purged immediately
// (§4.1).
func (s *Scheduler) sweepCache(ctx context.Context) {
	s.cache.RunSweep(ctx)
}

// rolloverMetrics pushes a yield-dashboard-update carrying the rollover
// timestamp at the configured rollover interval (24h by default, counted
// from scheduler start). The Hub's counters are not part of the payload.
func (s *Scheduler) rolloverMetrics(ctx context.Context) {
	s.hub.YieldDashboardUpdate(ctx, map[string]interface{}{
		"rolloverAt": s.clock.Now().Format(time.RFC3339),
	})
}

// runLoyaltyExpiryScan delegates to the Loyalty Engine's own scan, which
// publishes expiry alerts and offsets expired balances (§4.7).
func (s *Scheduler) runLoyaltyExpiryScan(ctx context.Context) {
	expired, alerted, err := s.loyaltySvc.RunExpiryScan(ctx, s.clock.Now())
	if err != nil {
		s.log.ErrorWithContext(ctx, "loyalty expiry scan failed", err, nil)
		return
	}
	if expired > 0 || alerted > 0 {
		s.log.Info("loyalty expiry scan completed")
	}
}
