package hotels

import (
	"time"

	"hotelcore/internal/shared/config"
)

// EffectiveYield merges a hotel's YieldManagement overrides over the
// process-wide HotelDefaults. Never read the nested JSONB maps directly in
// a pricing hot path — always go through this so a hotel that hasn't set a
// particular override still gets a sane system default.
func EffectiveYield(h *Hotel, defaults config.HotelDefaults) config.HotelDefaults {
	eff := defaults

	y := h.YieldManagement.Data
	if len(y.SeasonalMultipliers) > 0 {
		eff.SeasonalMultipliers = y.SeasonalMultipliers
	}
	if len(y.DayOfWeekMultipliers) > 0 {
		eff.DayOfWeekMultipliers = y.DayOfWeekMultipliers
	}
	if len(y.OccupancyThresholds) > 0 {
		eff.OccupancyThresholds = y.OccupancyThresholds
	}
	if len(y.AdvanceBookingDiscounts) > 0 {
		eff.AdvanceBookingDiscounts = y.AdvanceBookingDiscounts
	}
	if len(y.LengthOfStayDiscounts) > 0 {
		eff.LengthOfStayDiscounts = y.LengthOfStayDiscounts
	}
	if y.MinPriceMultiplier > 0 {
		eff.MinPriceMultiplier = y.MinPriceMultiplier
	}
	if y.MaxPriceMultiplier > 0 {
		eff.MaxPriceMultiplier = y.MaxPriceMultiplier
	}
	if y.MaxDailyChangePercent > 0 {
		eff.MaxDailyChangePercent = y.MaxDailyChangePercent
	}

	return eff
}

// EffectiveCacheTTL resolves a category's TTL, falling back to process
// defaults when the hotel hasn't customized it.
func EffectiveCacheTTL(h *Hotel, category string, fallback time.Duration) time.Duration {
	if d, exists := h.CacheSettings.Data.CustomTTL[category]; exists {
		return d
	}
	return fallback
}
