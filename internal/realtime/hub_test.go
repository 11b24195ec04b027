package realtime

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestAutoJoinRoomsByRole(t *testing.T) {
	admin := Subscriber{UserID: uuid.New(), Role: RoleAdmin}
	rooms := autoJoinRooms(admin)
	assert.Contains(t, rooms, "admin")
	assert.Contains(t, rooms, "yield-admin")
	assert.Contains(t, rooms, "loyalty-admin")

	hotelID := uuid.New()
	receptionist := Subscriber{UserID: uuid.New(), Role: RoleReceptionist, HotelID: &hotelID}
	rooms = autoJoinRooms(receptionist)
	assert.Contains(t, rooms, "hotel:"+hotelID.String())
	assert.Contains(t, rooms, "pricing:"+hotelID.String())
	assert.Contains(t, rooms, "loyalty-hotel:"+hotelID.String())

	client := Subscriber{UserID: uuid.New(), Role: RoleClient}
	rooms = autoJoinRooms(client)
	assert.Contains(t, rooms, "clients")
	assert.Contains(t, rooms, "user:"+client.UserID.String())
}

func TestAutoJoinRoomsIncludesTierBenefitsUpToOwnTier(t *testing.T) {
	sub := Subscriber{UserID: uuid.New(), Role: RoleClient, Tier: TierGold}
	rooms := autoJoinRooms(sub)

	assert.Contains(t, rooms, "tier-benefits:BRONZE")
	assert.Contains(t, rooms, "tier-benefits:SILVER")
	assert.Contains(t, rooms, "tier-benefits:GOLD")
	assert.NotContains(t, rooms, "tier-benefits:PLATINUM")
	assert.NotContains(t, rooms, "tier-benefits:DIAMOND")
}

func TestAuthorizeAdminOnlyRooms(t *testing.T) {
	h := NewHub(nil)
	admin := Subscriber{UserID: uuid.New(), Role: RoleAdmin}
	client := Subscriber{UserID: uuid.New(), Role: RoleClient}

	assert.True(t, h.authorize(admin, "yield-admin"))
	assert.False(t, h.authorize(client, "yield-admin"))
}

func TestAuthorizeChainLoyaltyRequiresGoldOrAbove(t *testing.T) {
	h := NewHub(nil)
	bronze := Subscriber{UserID: uuid.New(), Role: RoleClient, Tier: TierBronze}
	gold := Subscriber{UserID: uuid.New(), Role: RoleClient, Tier: TierGold}

	assert.False(t, h.authorize(bronze, "chain-loyalty:summer2026"))
	assert.True(t, h.authorize(gold, "chain-loyalty:summer2026"))
}

func TestAuthorizeCrossHotelRequiresPlatinumOrAbove(t *testing.T) {
	h := NewHub(nil)
	gold := Subscriber{UserID: uuid.New(), Role: RoleClient, Tier: TierGold}
	platinum := Subscriber{UserID: uuid.New(), Role: RoleClient, Tier: TierPlatinum}
	hotelID := uuid.New()

	assert.False(t, h.authorize(gold, "cross-hotel:"+hotelID.String()))
	assert.True(t, h.authorize(platinum, "cross-hotel:"+hotelID.String()))
}

func TestAuthorizePricingRoomAllowsReceptionistOfSameHotelOnly(t *testing.T) {
	h := NewHub(nil)
	hotelID := uuid.New()
	otherHotelID := uuid.New()
	receptionist := Subscriber{UserID: uuid.New(), Role: RoleReceptionist, HotelID: &hotelID}

	assert.True(t, h.authorize(receptionist, "pricing:"+hotelID.String()))
	assert.False(t, h.authorize(receptionist, "pricing:"+otherHotelID.String()))
}

func TestEnqueueOfflineDropsOldestBeyondCap(t *testing.T) {
	h := NewHub(nil)
	userID := uuid.New()

	for i := 0; i < offlineQueueCap+10; i++ {
		h.enqueueOffline(userID, newOutboundEvent("loyalty-points-earned", i))
	}

	h.offlineMu.Lock()
	queued := h.offline[userID]
	h.offlineMu.Unlock()

	assert.Len(t, queued, offlineQueueCap)
}
