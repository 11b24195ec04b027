package loyalty

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestTierRankOrdering(t *testing.T) {
	assert.Less(t, tierRank(TierBronze), tierRank(TierSilver))
	assert.Less(t, tierRank(TierSilver), tierRank(TierGold))
	assert.Less(t, tierRank(TierGold), tierRank(TierPlatinum))
	assert.Less(t, tierRank(TierPlatinum), tierRank(TierDiamond))
}

func TestTierMultiplierMatchesDefaults(t *testing.T) {
	assert.InDelta(t, 1.0, tierMultiplier(TierBronze), 0.0001)
	assert.InDelta(t, 1.2, tierMultiplier(TierSilver), 0.0001)
	assert.InDelta(t, 1.5, tierMultiplier(TierGold), 0.0001)
	assert.InDelta(t, 2.0, tierMultiplier(TierPlatinum), 0.0001)
	assert.InDelta(t, 2.5, tierMultiplier(TierDiamond), 0.0001)
}

func TestValidateRedemptionEnforcesFloorsAndTier(t *testing.T) {
	assert.Error(t, validateRedemption(OptionDiscount, 50, TierBronze))
	assert.NoError(t, validateRedemption(OptionDiscount, 500, TierBronze))
	assert.Error(t, validateRedemption(OptionDiscount, 6000, TierBronze))

	assert.Error(t, validateRedemption(OptionUpgrade, 500, TierGold))
	assert.NoError(t, validateRedemption(OptionUpgrade, 1000, TierBronze))

	assert.Error(t, validateRedemption(OptionFreeNight, 5000, TierSilver))
	assert.NoError(t, validateRedemption(OptionFreeNight, 5000, TierGold))
}

func TestExpiryUrgencyBuckets(t *testing.T) {
	now := time.Date(2026, 7, 30, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, "critical", expiryUrgency(now, now.AddDate(0, 0, 5)))
	assert.Equal(t, "high", expiryUrgency(now, now.AddDate(0, 0, 10)))
	assert.Equal(t, "medium", expiryUrgency(now, now.AddDate(0, 0, 25)))
	assert.Equal(t, "low", expiryUrgency(now, now.AddDate(0, 0, 60)))
}
