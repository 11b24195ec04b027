// Package availability implements the Availability Service (§4.3): answers
// "what is available at hotel H for [checkIn, checkOut)?" and keeps that
// answer fresh across booking mutations via cache invalidation.
package availability

import (
	"context"
	"fmt"
	"hash/fnv"
	"sync"
	"time"

	"hotelcore/internal/bookings"
	"hotelcore/internal/demand"
	"hotelcore/internal/hotels"
	"hotelcore/internal/pricing"
	"hotelcore/internal/providers"
	"hotelcore/internal/rooms"
	"hotelcore/internal/shared/config"
	"hotelcore/internal/shared/constants"
	"hotelcore/internal/shared/logger"

	"github.com/google/uuid"

	"hotelcore/pkg/cache"
)

// RoomTypeAvailability summarizes one room type's inventory for a stay.
type RoomTypeAvailability struct {
	Type          string     `json:"type"`
	TotalRooms    int        `json:"totalRooms"`
	BookedRooms   int        `json:"bookedRooms"`
	AvailableRooms int       `json:"availableRooms"`
	BasePrice     float64    `json:"basePrice"`
	CurrentPrice  float64    `json:"currentPrice"`
	DemandLevel   demand.Level `json:"demandLevel"`
}

// View is the full answer to getAvailability, cacheable as one unit.
type View struct {
	HotelID       uuid.UUID                        `json:"hotelId"`
	CheckIn       time.Time                         `json:"checkIn"`
	CheckOut      time.Time                         `json:"checkOut"`
	RoomTypes     map[string]RoomTypeAvailability   `json:"roomTypes"`
	OccupancyRate float64                           `json:"occupancyRate"`
	Currency      string                            `json:"currency"`
	FromCache     bool                              `json:"fromCache"`
}

type Service interface {
	GetAvailability(ctx context.Context, hotelID uuid.UUID, checkIn, checkOut time.Time, currency string) (View, error)
	// OnBookingChanged satisfies bookings.AvailabilityNotifier.
	OnBookingChanged(ctx context.Context, hotelID, roomID uuid.UUID, checkIn, checkOut time.Time) error
	GetRealTimeOccupancy(ctx context.Context, hotelID uuid.UUID, date time.Time) (float64, error)
}

const shardCount = 64

type service struct {
	hotels     hotels.Repository
	rooms      rooms.Repository
	bookings   bookings.Repository
	pricing    pricing.Engine
	demand     demand.Tracker
	currency   providers.CurrencyProvider
	cache      cache.Service
	defaults   config.HotelDefaults
	log        *logger.Logger

	shards [shardCount]sync.Mutex
}

func NewService(hotelsRepo hotels.Repository, roomsRepo rooms.Repository, bookingsRepo bookings.Repository, pricingEngine pricing.Engine, demandTracker demand.Tracker, currency providers.CurrencyProvider, hybridCache cache.Service, defaults config.HotelDefaults, log *logger.Logger) Service {
	return &service{
		hotels:   hotelsRepo,
		rooms:    roomsRepo,
		bookings: bookingsRepo,
		pricing:  pricingEngine,
		demand:   demandTracker,
		currency: currency,
		cache:    hybridCache,
		defaults: defaults,
		log:      log,
	}
}

// GetAvailability implements §4.3's cache-first read path.
func (s *service) GetAvailability(ctx context.Context, hotelID uuid.UUID, checkIn, checkOut time.Time, currency string) (View, error) {
	key := constants.BuildAvailabilityKey(hotelID.String(), "_", checkIn.Format("2006-01-02")+":"+checkOut.Format("2006-01-02"))

	var view View
	hit, err := s.cache.Get(ctx, key, &view)
	if err == nil && hit {
		view.FromCache = true
		return s.convertCurrency(ctx, view, currency)
	}

	view, err = s.reconcile(ctx, hotelID, checkIn, checkOut)
	if err != nil {
		return View{}, err
	}

	if err := s.cache.Set(ctx, key, view, constants.TTLAvailability); err != nil {
		s.log.ErrorWithContext(ctx, "cache availability view failed", err, map[string]interface{}{"hotel_id": hotelID.String()})
	}

	return s.convertCurrency(ctx, view, currency)
}

// reconcile recomputes the canonical availability view straight from the
// Store Gateway, never trusting a partially-stale cached aggregate.
func (s *service) reconcile(ctx context.Context, hotelID uuid.UUID, checkIn, checkOut time.Time) (View, error) {
	hotel, hotelErr := s.hotels.Get(ctx, hotelID)
	currency := "EUR"
	occupancyThresholds := s.defaults.OccupancyThresholds
	if hotelErr == nil {
		currency = hotel.Currency
		occupancyThresholds = hotels.EffectiveYield(hotel, s.defaults).OccupancyThresholds
	}

	allRooms, err := s.rooms.ListByHotel(ctx, hotelID)
	if err != nil {
		return View{}, fmt.Errorf("list rooms for availability: %w", err)
	}

	byType := make(map[string][]rooms.Room)
	for _, r := range allRooms {
		if r.Bookable() {
			byType[r.Type] = append(byType[r.Type], r)
		}
	}

	result := make(map[string]RoomTypeAvailability, len(byType))
	var totalRooms, totalAvailable int

	for roomType, roomsOfType := range byType {
		booked := 0
		for _, r := range roomsOfType {
			overlapping, err := s.bookings.OverlappingForRoom(ctx, r.ID, checkIn, checkOut)
			if err != nil {
				return View{}, fmt.Errorf("overlapping bookings for room %s: %w", r.ID, err)
			}
			if len(overlapping) > 0 {
				booked++
			}
		}

		available := len(roomsOfType) - booked
		if available < 0 {
			available = 0
		}

		level, err := s.demand.Level(ctx, hotelID, roomType, checkIn, demand.OccupancyThresholds(occupancyThresholds))
		if err != nil {
			level = demand.LevelLow
		}

		basePrice := 0.0
		currentPrice := 0.0
		if len(roomsOfType) > 0 {
			basePrice = roomsOfType[0].BasePrice
			if quote, err := s.pricing.PriceForDate(ctx, hotelID, roomsOfType[0].ID, checkIn, 0, nil, ""); err == nil {
				currentPrice = quote.Price
			} else {
				currentPrice = basePrice
			}
		}

		result[roomType] = RoomTypeAvailability{
			Type:           roomType,
			TotalRooms:     len(roomsOfType),
			BookedRooms:    booked,
			AvailableRooms: available,
			BasePrice:      basePrice,
			CurrentPrice:   currentPrice,
			DemandLevel:    level,
		}

		totalRooms += len(roomsOfType)
		totalAvailable += available
	}

	occupancy := 0.0
	if totalRooms > 0 {
		occupancy = 1 - float64(totalAvailable)/float64(totalRooms)
	}

	return View{
		HotelID:       hotelID,
		CheckIn:       checkIn,
		CheckOut:      checkOut,
		RoomTypes:     result,
		OccupancyRate: occupancy,
		Currency:      currency,
		FromCache:     false,
	}, nil
}

func (s *service) convertCurrency(ctx context.Context, view View, target string) (View, error) {
	if target == "" || target == view.Currency {
		return view, nil
	}
	for roomType, ta := range view.RoomTypes {
		converted, err := s.currency.Convert(ctx, ta.CurrentPrice, view.Currency, target)
		if err != nil {
			continue
		}
		ta.CurrentPrice = converted
		view.RoomTypes[roomType] = ta
	}
	view.Currency = target
	return view, nil
}

// OnBookingChanged implements §4.3: serialize on a lock sharded by (hotel,
// check-in date), invalidate dependent cache tags, update demand, and
// let the next GetAvailability call recompute + re-cache.
func (s *service) OnBookingChanged(ctx context.Context, hotelID, roomID uuid.UUID, checkIn, checkOut time.Time) error {
	lock := s.shardFor(hotelID, checkIn)
	lock.Lock()
	defer lock.Unlock()

	pattern := constants.BuildAvailabilityInvalidationPattern(hotelID.String(), "_")
	if err := s.cache.InvalidatePattern(ctx, pattern); err != nil {
		s.log.ErrorWithContext(ctx, "invalidate availability pattern failed", err, map[string]interface{}{"hotel_id": hotelID.String()})
	}

	occupancyKey := constants.BuildOccupancyKey(hotelID.String(), checkIn.Format("2006-01-02"))
	if err := s.cache.Invalidate(ctx, occupancyKey, cache.Immediate); err != nil {
		s.log.ErrorWithContext(ctx, "invalidate occupancy key failed", err, map[string]interface{}{"hotel_id": hotelID.String()})
	}

	roomType := ""
	if room, err := s.rooms.Get(ctx, roomID); err == nil {
		roomType = room.Type
	}

	for d := checkIn; d.Before(checkOut); d = d.AddDate(0, 0, 1) {
		if err := s.demand.Record(ctx, hotelID, roomType, d, "booking_changed"); err != nil {
			s.log.ErrorWithContext(ctx, "demand record on booking changed failed", err, map[string]interface{}{"hotel_id": hotelID.String()})
		}
	}

	return nil
}

// GetRealTimeOccupancy answers "what fraction of today's inventory is
// booked" as the aggregate OccupancyRate GetAvailability already computes
// over [date, date+1) — not a pass-through to the Demand Tracker, which is
// scoped per roomType rather than whole-hotel (§4.3).
func (s *service) GetRealTimeOccupancy(ctx context.Context, hotelID uuid.UUID, date time.Time) (float64, error) {
	view, err := s.GetAvailability(ctx, hotelID, date, date.AddDate(0, 0, 1), "")
	if err != nil {
		return 0, err
	}
	return view.OccupancyRate, nil
}

func (s *service) shardFor(hotelID uuid.UUID, date time.Time) *sync.Mutex {
	h := fnv.New32a()
	h.Write([]byte(hotelID.String()))
	h.Write([]byte(date.Format("2006-01-02")))
	return &s.shards[h.Sum32()%shardCount]
}
