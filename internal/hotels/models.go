package hotels

import (
	"time"

	"hotelcore/internal/shared/jsonb"

	"github.com/google/uuid"
)

// Coordinates is optional and only required when qrSettings demands a geo
// radius check (§3 invariant).
type Coordinates struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// QRSettings controls the hotel's in-room QR/contactless ordering surface.
// Carried from the distillation's data model even though this core doesn't
// implement QR ordering itself — it's a per-hotel config blob any future
// consumer of Hotel reads the same way.
type QRSettings struct {
	Enabled         bool            `json:"enabled"`
	SecurityLevel   string          `json:"securityLevel,omitempty"` // LOW, STANDARD, STRICT
	EnabledTypes    map[string]bool `json:"enabledTypes,omitempty"`  // "menu" -> true, "checkout" -> true ...
	ExpiryHours     int             `json:"expiryHours,omitempty"`
	RequiresGeofence bool           `json:"requiresGeofence,omitempty"`
	GeoRadiusMeters float64         `json:"geoRadiusMeters,omitempty"`
	MenuURL         string          `json:"menuUrl,omitempty"`
	CheckoutMode    string          `json:"checkoutMode,omitempty"`
}

// CacheSettings overrides the Hybrid Cache's default strategy/TTL table per
// hotel (§4.1).
type CacheSettings struct {
	Strategy          string                   `json:"strategy,omitempty"` // AGGRESSIVE, BALANCED, CONSERVATIVE
	CustomTTL         map[string]time.Duration `json:"customTTL,omitempty"`
	InvalidationStrategy string                `json:"invalidationStrategy,omitempty"` // IMMEDIATE, DELAYED, SCHEDULED, SMART
	WarmOnStartup     bool                     `json:"warmOnStartup"`
	WarmingPriorities []string                 `json:"warmingPriorities,omitempty"` // ordered: availability, pricing, analytics, hotelData
	InvalidationDelay time.Duration            `json:"invalidationDelay,omitempty"`
}

// RoomTypePricing is one room type's base price and pricing bounds inside a
// hotel's yieldManagement block.
type RoomTypePricing struct {
	BasePrice          float64 `json:"basePrice"`
	MinPriceMultiplier float64 `json:"minPriceMultiplier,omitempty"`
	MaxPriceMultiplier float64 `json:"maxPriceMultiplier,omitempty"`
}

// EventPricingRule is a one-off seasonal/event override applied when the
// priced date falls inside [From, Until] (§4.2's seasonalPricing escape
// hatch).
type EventPricingRule struct {
	Name       string    `json:"name"`
	From       time.Time `json:"from"`
	Until      time.Time `json:"until"`
	Multiplier float64   `json:"multiplier"`
}

// RevenueTarget is a per-period revenue goal the yield dashboard compares
// actuals against.
type RevenueTarget struct {
	Period string  `json:"period"` // "2026-07" or "2026-W30"
	Target float64 `json:"target"`
}

// YieldManagement overrides the Pricing Engine's default factor tables for
// this hotel (§4.2, §4.7).
type YieldManagement struct {
	Enabled                   bool                       `json:"enabled"`
	Strategy                  string                     `json:"strategy,omitempty"`
	RoomTypePricing           map[string]RoomTypePricing `json:"roomTypePricing,omitempty"`
	OccupancyThresholds       map[string]float64         `json:"occupancyThresholds,omitempty"`
	SeasonalMultipliers       map[string]float64         `json:"seasonalMultipliers,omitempty"`
	DayOfWeekMultipliers      map[string]float64         `json:"dayOfWeekMultipliers,omitempty"`
	AdvanceBookingDiscounts   map[string]float64         `json:"advanceBookingDiscounts,omitempty"`
	LengthOfStayDiscounts     map[string]float64         `json:"lengthOfStayDiscounts,omitempty"`
	EventPricing              []EventPricingRule         `json:"eventPricing,omitempty"`
	RevenueTargets            []RevenueTarget            `json:"revenueTargets,omitempty"`
	MinPriceMultiplier        float64                    `json:"minPriceMultiplier,omitempty"`
	MaxPriceMultiplier        float64                    `json:"maxPriceMultiplier,omitempty"`
	MaxDailyChangePercent     float64                    `json:"maxDailyChangePercent,omitempty"`
	CompetitorWeighting       float64                    `json:"competitorWeighting,omitempty"`
	RequiresApprovalAboveBase float64                    `json:"requiresApprovalAboveBase,omitempty"`
}

// PerformanceMetrics is a rolling snapshot the metric-rollover worker
// refreshes daily (§2 Background Workers).
type PerformanceMetrics struct {
	AverageDailyRate float64   `json:"averageDailyRate"`
	OccupancyRate    float64   `json:"occupancyRate"`
	RevPAR           float64   `json:"revPAR"`
	CacheHitRate     float64   `json:"cacheHitRate,omitempty"`
	QRUsageRate      float64   `json:"qrUsageRate,omitempty"`
	QRSuccessRate    float64   `json:"qrSuccessRate,omitempty"`
	HealthStatus     string    `json:"healthStatus,omitempty"` // HEALTHY, DEGRADED, CRITICAL
	Issues           []string  `json:"issues,omitempty"`
	Recommendations  []string  `json:"recommendations,omitempty"`
	LastRolloverAt   time.Time `json:"lastRolloverAt"`
}

type Hotel struct {
	ID       uuid.UUID `json:"id" gorm:"primaryKey;type:uuid;default:uuid_generate_v4()"`
	Name     string    `json:"name" gorm:"not null"`
	Timezone string    `json:"timezone" gorm:"not null;default:'UTC'"`
	Currency string    `json:"currency" gorm:"not null;default:'EUR'"`
	Stars    int       `json:"stars" gorm:"not null;default:3;check:stars between 1 and 5"`

	Coordinates jsonb.Field[Coordinates] `json:"coordinates" gorm:"type:jsonb"`

	QRSettings         jsonb.Field[QRSettings]         `json:"qrSettings" gorm:"type:jsonb"`
	CacheSettings      jsonb.Field[CacheSettings]      `json:"cacheSettings" gorm:"type:jsonb"`
	YieldManagement    jsonb.Field[YieldManagement]    `json:"yieldManagement" gorm:"type:jsonb"`
	PerformanceMetrics jsonb.Field[PerformanceMetrics] `json:"performanceMetrics" gorm:"type:jsonb"`

	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}

func (Hotel) TableName() string { return "hotels" }

// RequiresGeofenceCoordinates reports whether the §3 coordinates invariant
// applies: QR is enabled with geofencing, so the hotel needs coordinates on
// file. It does not check whether coordinates are present.
func (h *Hotel) RequiresGeofenceCoordinates() bool {
	return h.QRSettings.Data.Enabled && h.QRSettings.Data.RequiresGeofence
}
