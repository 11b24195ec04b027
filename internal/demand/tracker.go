// Package demand implements the Demand Tracker (§4.4): a short-TTL signal
// the Pricing Engine multiplies into its factor stack, rebuilt from live
// bookings whenever the cached sample expires rather than trusted to a
// stale aggregate (§9 Open Question 2).
package demand

import (
	"context"
	"fmt"
	"time"

	"hotelcore/internal/bookings"
	"hotelcore/internal/rooms"
	"hotelcore/internal/shared/constants"

	"hotelcore/pkg/cache"

	"github.com/google/uuid"
)

type Level string

const (
	LevelVeryLow  Level = "VERY_LOW"
	LevelLow      Level = "LOW"
	LevelModerate Level = "MODERATE"
	LevelHigh     Level = "HIGH"
	LevelVeryHigh Level = "VERY_HIGH"
	LevelCritical Level = "CRITICAL"
)

// Sample is the cached demand state for one (hotel, roomType, date).
type Sample struct {
	OccupancyRatio float64   `json:"occupancyRatio"`
	RecentViews    int64     `json:"recentViews"`
	RecentBookings int64     `json:"recentBookings"`
	ComputedAt     time.Time `json:"computedAt"`
}

// OccupancyThresholds maps the six demand levels onto the occupancy ratio
// that starts each bucket, read highest-first. Callers pass the hotel's
// effective table (§4.2/§4.7 per-hotel override over config.HotelDefaults).
type OccupancyThresholds map[string]float64

type Tracker interface {
	// Record accounts for a view or booking-attempt event used to compute
	// velocity, independent of the authoritative occupancy ratio.
	Record(ctx context.Context, hotelID uuid.UUID, roomType string, date time.Time, event string) error
	Level(ctx context.Context, hotelID uuid.UUID, roomType string, date time.Time, thresholds OccupancyThresholds) (Level, error)
	VelocityMultiplier(ctx context.Context, hotelID uuid.UUID, roomType string, date time.Time) (float64, error)
	// OccupancyRatio exposes the raw sample for callers (e.g. the Pricing
	// Engine's weekly-occupancy factor) that need more than the coarse Level.
	OccupancyRatio(ctx context.Context, hotelID uuid.UUID, roomType string, date time.Time) (float64, error)
}

type tracker struct {
	cache    cache.Service
	bookings bookings.Repository
	rooms    rooms.Repository
}

func NewTracker(hybridCache cache.Service, bookingsRepo bookings.Repository, roomsRepo rooms.Repository) Tracker {
	return &tracker{cache: hybridCache, bookings: bookingsRepo, rooms: roomsRepo}
}

func (t *tracker) Record(ctx context.Context, hotelID uuid.UUID, roomType string, date time.Time, event string) error {
	key := constants.BuildDemandKey(hotelID.String(), roomType, date.Format("2006-01-02")) + ":" + event
	if _, err := t.cache.Incr(ctx, key, constants.TTLDemand); err != nil {
		return fmt.Errorf("record demand event: %w", err)
	}
	return nil
}

// sample answers the occupancy ratio for one (hotel, roomType, date) as
// "bookings ∩ date / totalRoomsOfType" (§4.2), rebuilding it from live
// bookings on cache miss rather than trusting a stale aggregate.
func (t *tracker) sample(ctx context.Context, hotelID uuid.UUID, roomType string, date time.Time) (Sample, error) {
	cacheKey := constants.BuildDemandKey(hotelID.String(), roomType, date.Format("2006-01-02"))

	var cached Sample
	if hit, err := t.cache.Get(ctx, cacheKey, &cached); err == nil && hit {
		return cached, nil
	}

	allRooms, err := t.rooms.ListByHotel(ctx, hotelID)
	if err != nil {
		return Sample{}, fmt.Errorf("list rooms for demand sample: %w", err)
	}

	roomIDs := make(map[uuid.UUID]struct{})
	for _, r := range allRooms {
		if r.Type == roomType {
			roomIDs[r.ID] = struct{}{}
		}
	}
	if len(roomIDs) == 0 {
		return Sample{}, nil
	}

	active, err := t.bookings.ActiveForHotelOnDate(ctx, hotelID, date)
	if err != nil {
		return Sample{}, fmt.Errorf("active bookings for demand sample: %w", err)
	}

	booked := 0
	for _, b := range active {
		if _, ofType := roomIDs[b.RoomID]; ofType {
			booked++
		}
	}

	var views, bookingAttempts int64
	t.cache.Get(ctx, cacheKey+":views", &views)
	t.cache.Get(ctx, cacheKey+":bookingAttempts", &bookingAttempts)

	s := Sample{
		OccupancyRatio: float64(booked) / float64(len(roomIDs)),
		RecentViews:    views,
		RecentBookings: bookingAttempts,
		ComputedAt:     time.Now(),
	}

	if err := t.cache.Set(ctx, cacheKey, s, constants.TTLDemand); err != nil {
		return s, nil
	}

	return s, nil
}

func (t *tracker) OccupancyRatio(ctx context.Context, hotelID uuid.UUID, roomType string, date time.Time) (float64, error) {
	s, err := t.sample(ctx, hotelID, roomType, date)
	if err != nil {
		return 0, err
	}
	return s.OccupancyRatio, nil
}

// Level buckets the occupancy ratio through the hotel's occupancyThresholds
// table (§4.2, §4.4), checked from the highest bucket down so a ratio that
// clears VERY_HIGH isn't also caught by a lower one.
func (t *tracker) Level(ctx context.Context, hotelID uuid.UUID, roomType string, date time.Time, thresholds OccupancyThresholds) (Level, error) {
	s, err := t.sample(ctx, hotelID, roomType, date)
	if err != nil {
		return "", err
	}

	ordered := []struct {
		level Level
		key   string
	}{
		{LevelCritical, "CRITICAL"},
		{LevelVeryHigh, "VERY_HIGH"},
		{LevelHigh, "HIGH"},
		{LevelModerate, "MODERATE"},
		{LevelLow, "LOW"},
		{LevelVeryLow, "VERY_LOW"},
	}

	for _, bucket := range ordered {
		if threshold, ok := thresholds[bucket.key]; ok && s.OccupancyRatio >= threshold {
			return bucket.level, nil
		}
	}
	return LevelVeryLow, nil
}

// VelocityMultiplier folds recent view/booking-attempt velocity into a
// pricing factor in [0.95, 1.3125], on top of the coarse Level (§4.2, §4.4).
func (t *tracker) VelocityMultiplier(ctx context.Context, hotelID uuid.UUID, roomType string, date time.Time) (float64, error) {
	s, err := t.sample(ctx, hotelID, roomType, date)
	if err != nil {
		return 1.0, err
	}

	base := 1.0
	switch {
	case s.OccupancyRatio >= 0.90:
		base = 1.25
	case s.OccupancyRatio >= 0.70:
		base = 1.12
	case s.OccupancyRatio >= 0.40:
		base = 1.0
	default:
		base = 0.95
	}

	if s.RecentViews > 0 {
		conversion := float64(s.RecentBookings) / float64(s.RecentViews)
		if conversion > 0.3 {
			base *= 1.05
		}
	}

	return base, nil
}
