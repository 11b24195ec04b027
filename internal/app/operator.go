package app

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// HookResult is the structured result every operator hook returns,
// whether invoked from cmd/operator's CLI or the small HTTP surface
// cmd/server exposes for the same hooks.
type HookResult struct {
	OK       bool `json:"ok"`
	Affected int  `json:"affected"`
}

const operatorHorizonDays = 14

// WarmCache precomputes and populates availability for a hotel's next
// horizonDays, mirroring the scheduled warmCache job but on demand and
// for one hotel.
func (a *App) WarmCache(ctx context.Context, hotelID uuid.UUID, horizonDays int) (HookResult, error) {
	if horizonDays <= 0 {
		horizonDays = operatorHorizonDays
	}

	hotel, err := a.Hotels.Get(ctx, hotelID)
	if err != nil {
		return HookResult{}, fmt.Errorf("load hotel: %w", err)
	}

	now := time.Now()
	affected := 0
	for d := 0; d < horizonDays; d++ {
		checkIn := now.AddDate(0, 0, d)
		checkOut := checkIn.AddDate(0, 0, 1)
		if _, err := a.Availability.GetAvailability(ctx, hotelID, checkIn, checkOut, hotel.Currency); err != nil {
			continue
		}
		affected++
	}

	return HookResult{OK: true, Affected: affected}, nil
}

// FlushCacheTag invalidates every cache key matching the given pattern —
// the operator-hook equivalent of §4.1's tag-based invalidate.
func (a *App) FlushCacheTag(ctx context.Context, tag string) (HookResult, error) {
	if err := a.Cache.InvalidatePattern(ctx, tag); err != nil {
		return HookResult{}, fmt.Errorf("invalidate pattern %q: %w", tag, err)
	}
	return HookResult{OK: true, Affected: 1}, nil
}

// RecomputePricing forces a fresh Pricing Engine pass over every room in
// a hotel for the next horizonDays, bypassing the cached price.
func (a *App) RecomputePricing(ctx context.Context, hotelID uuid.UUID, horizonDays int) (HookResult, error) {
	if horizonDays <= 0 {
		horizonDays = operatorHorizonDays
	}

	roomList, err := a.Rooms.ListByHotel(ctx, hotelID)
	if err != nil {
		return HookResult{}, fmt.Errorf("list rooms: %w", err)
	}

	now := time.Now()
	affected := 0
	for _, room := range roomList {
		for d := 0; d < horizonDays; d++ {
			date := now.AddDate(0, 0, d)
			if _, err := a.Pricing.PriceForDate(ctx, hotelID, room.ID, date, d, nil, ""); err != nil {
				continue
			}
			affected++
		}
	}

	return HookResult{OK: true, Affected: affected}, nil
}

// RunLoyaltyExpiryScanNow triggers the daily expiry scanner immediately
// instead of waiting for the scheduler's next tick.
func (a *App) RunLoyaltyExpiryScanNow(ctx context.Context) (HookResult, error) {
	expired, alerted, err := a.LoyaltyService.RunExpiryScan(ctx, time.Now())
	if err != nil {
		return HookResult{}, fmt.Errorf("run expiry scan: %w", err)
	}
	return HookResult{OK: true, Affected: expired + alerted}, nil
}
