// Package constants centralizes Redis cache key prefixes, TTL tiers, and
// invalidation patterns for the hotel core.
// Pattern: hotelcore:{module}:{operation}:{identifier}:{params?}
package constants

import (
	"fmt"
	"time"
)

// ================== CACHE TTL DURATIONS ==================

const (
	TTLStaticLong   = 24 * time.Hour // longest static tier; no key below uses it
	TTLStaticMedium = 12 * time.Hour
	TTLStaticShort  = 6 * time.Hour
)

const (
	TTLSemiStaticLong   = 4 * time.Hour    // competitor price snapshots
	TTLSemiStaticMedium = 2 * time.Hour    // seasonal/day-of-week factor tables
	TTLSemiStaticShort  = 1 * time.Hour
	TTLSemiStaticQuick  = 15 * time.Minute
)

const (
	TTLDynamicMedium = 15 * time.Minute // demand samples
	TTLDynamicShort  = 5 * time.Minute  // computed price
	TTLDynamicQuick  = 2 * time.Minute  // availability snapshot
)

const (
	TTLRealtimeMedium = 1 * time.Minute  // occupancy gauge
	TTLRealtimeShort  = 30 * time.Second // live room-hold state
)

// ================== KEY PREFIXES ==================

const CachePrefix = "hotelcore"

// ================== HOTELS / ROOMS ==================

const (
	KeyHotelDetail = CachePrefix + ":hotel:detail:uuid:" // + hotel-id
	KeyRoomDetail  = CachePrefix + ":room:detail:uuid:"  // + room-id
	KeyRoomCatalog = CachePrefix + ":room:catalog:hotel:" // + hotel-id
)

const (
	TTLHotelDetail = TTLStaticMedium
	TTLRoomDetail  = TTLStaticShort
	TTLRoomCatalog = TTLStaticShort
)

// ================== AVAILABILITY ==================

const (
	KeyAvailability = CachePrefix + ":avail:" // + hotel-id:room-id:date
	KeyOccupancy    = CachePrefix + ":occupancy:" // + hotel-id:date
)

const (
	TTLAvailability = TTLDynamicQuick
	TTLOccupancy    = TTLRealtimeMedium
)

// ================== PRICING ==================

const (
	KeyPrice          = CachePrefix + ":price:"     // + hotel-id:room-id:date
	KeyCompetitorRate = CachePrefix + ":competitor:" // + hotel-id:date
)

const (
	TTLPrice          = TTLDynamicShort
	TTLCompetitorRate = TTLSemiStaticLong
)

// ================== DEMAND ==================

const (
	KeyDemand = CachePrefix + ":demand:" // + hotel-id:room-type:date
)

const TTLDemand = TTLDynamicMedium

// ================== LOYALTY ==================

const (
	KeyLoyaltyAccount = CachePrefix + ":loyalty:account:uuid:" // + user-id
)

const TTLLoyaltyAccount = TTLDynamicMedium

// ================== INVALIDATION PATTERNS ==================

const (
	PatternInvalidateHotelAll = CachePrefix + ":hotel:*"
	PatternInvalidateRoomAll  = CachePrefix + ":room:*"
	PatternInvalidateAvailAll = CachePrefix + ":avail:*"
	PatternInvalidatePriceAll = CachePrefix + ":price:*"
)

// ================== HELPERS ==================

func BuildAvailabilityKey(hotelID, roomID, date string) string {
	return KeyAvailability + hotelID + ":" + roomID + ":" + date
}

func BuildOccupancyKey(hotelID, date string) string {
	return KeyOccupancy + hotelID + ":" + date
}

func BuildPriceKey(hotelID, roomID, date string) string {
	return KeyPrice + hotelID + ":" + roomID + ":" + date
}

func BuildDemandKey(hotelID, roomType, date string) string {
	return KeyDemand + hotelID + ":" + roomType + ":" + date
}

func BuildRoomCatalogKey(hotelID string) string {
	return KeyRoomCatalog + hotelID
}

func BuildAvailabilityInvalidationPattern(hotelID, roomID string) string {
	return fmt.Sprintf("%s%s:%s:*", KeyAvailability, hotelID, roomID)
}
