package pricing

import (
	"testing"
	"time"

	"hotelcore/internal/demand"

	"github.com/stretchr/testify/assert"
)

var testOccupancyThresholds = map[string]float64{
	"VERY_LOW": 0.7, "LOW": 0.85, "MODERATE": 1.0,
	"HIGH": 1.15, "VERY_HIGH": 1.3, "CRITICAL": 1.5,
}

func TestDemandLevelMultiplierOrdering(t *testing.T) {
	veryLow := demandLevelMultiplier(demand.LevelVeryLow, testOccupancyThresholds)
	low := demandLevelMultiplier(demand.LevelLow, testOccupancyThresholds)
	moderate := demandLevelMultiplier(demand.LevelModerate, testOccupancyThresholds)
	high := demandLevelMultiplier(demand.LevelHigh, testOccupancyThresholds)
	veryHigh := demandLevelMultiplier(demand.LevelVeryHigh, testOccupancyThresholds)
	critical := demandLevelMultiplier(demand.LevelCritical, testOccupancyThresholds)

	assert.Less(t, veryLow, low)
	assert.Less(t, low, moderate)
	assert.Less(t, moderate, high)
	assert.Less(t, high, veryHigh)
	assert.Less(t, veryHigh, critical)
}

func TestDemandLevelMultiplierFallsBackWhenUnconfigured(t *testing.T) {
	assert.InDelta(t, 1.0, demandLevelMultiplier(demand.LevelHigh, nil), 0.0001)
}

func TestSeasonalMultiplierFallsBackWhenUnconfigured(t *testing.T) {
	assert.InDelta(t, 1.0, seasonalMultiplier(time.Date(2026, 7, 30, 0, 0, 0, 0, time.UTC), nil), 0.0001)
}

func TestSeasonalMultiplierBucketsPeakSummer(t *testing.T) {
	table := map[string]float64{"winter": 1.3, "shoulder": 1.0, "summer": 1.6}
	assert.InDelta(t, 1.6, seasonalMultiplier(time.Date(2026, 7, 12, 0, 0, 0, 0, time.UTC), table), 0.0001)
	assert.InDelta(t, 1.3, seasonalMultiplier(time.Date(2026, 1, 12, 0, 0, 0, 0, time.UTC), table), 0.0001)
	assert.InDelta(t, 1.0, seasonalMultiplier(time.Date(2026, 4, 12, 0, 0, 0, 0, time.UTC), table), 0.0001)
}

func TestDayOfWeekMultiplierUsesWeekdayName(t *testing.T) {
	table := map[string]float64{"friday": 1.15, "monday": 0.85}
	friday := time.Date(2026, 7, 31, 0, 0, 0, 0, time.UTC) // a Friday
	assert.InDelta(t, 1.15, dayOfWeekMultiplier(friday, table), 0.0001)
}

func TestWeeklyOccupancyMultiplierBuckets(t *testing.T) {
	assert.InDelta(t, 1.3, weeklyOccupancyMultiplier(0.95), 0.0001)
	assert.InDelta(t, 1.1, weeklyOccupancyMultiplier(0.70), 0.0001)
	assert.InDelta(t, 0.9, weeklyOccupancyMultiplier(0.10), 0.0001)
	assert.InDelta(t, 1.0, weeklyOccupancyMultiplier(0.5), 0.0001)
}

func TestCompetitorMultiplierIgnoresMissingSignal(t *testing.T) {
	assert.InDelta(t, 1.0, competitorMultiplier(100, 0), 0.0001)
}

func TestCompetitorMultiplierPullsDownWhenPricierThanMarket(t *testing.T) {
	assert.InDelta(t, 0.95, competitorMultiplier(130, 100), 0.0001)
}

func TestCompetitorMultiplierPushesUpWhenUnderpriced(t *testing.T) {
	assert.InDelta(t, 1.05, competitorMultiplier(100, 130), 0.0001)
}

func TestLoyaltyTierMultiplierRanksTiers(t *testing.T) {
	assert.Less(t, loyaltyTierMultiplier("PLATINUM"), loyaltyTierMultiplier("GOLD"))
	assert.Less(t, loyaltyTierMultiplier("GOLD"), loyaltyTierMultiplier("SILVER"))
	assert.InDelta(t, 1.0, loyaltyTierMultiplier(""), 0.0001)
}

func TestAdvanceBookingMultiplierBucketsLeadTime(t *testing.T) {
	table := map[string]float64{
		"90+": 0.8, "60-89": 0.85, "30-59": 0.9, "7-29": 0.95, "0-1": 1.1,
	}
	assert.InDelta(t, 1.1, advanceBookingMultiplier(1, table), 0.0001)
	assert.InDelta(t, 1.0, advanceBookingMultiplier(2, table), 0.0001) // no tier qualifies
	assert.InDelta(t, 0.95, advanceBookingMultiplier(10, table), 0.0001)
	assert.InDelta(t, 0.9, advanceBookingMultiplier(45, table), 0.0001)
	assert.InDelta(t, 0.85, advanceBookingMultiplier(65, table), 0.0001)
	assert.InDelta(t, 0.8, advanceBookingMultiplier(120, table), 0.0001)
}

func TestLengthOfStayMultiplierDiscountsLongerStays(t *testing.T) {
	table := map[string]float64{
		"14+": 0.8, "7-13": 0.85, "4-6": 0.9, "2-3": 0.95, "1": 1.0,
	}
	assert.InDelta(t, 0.8, lengthOfStayMultiplier(20, table), 0.0001)
	assert.InDelta(t, 0.85, lengthOfStayMultiplier(10, table), 0.0001)
	assert.InDelta(t, 1.0, lengthOfStayMultiplier(1, table), 0.0001)
}
