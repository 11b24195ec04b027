// Package pricing implements the Dynamic Pricing Engine (§4.2): a pure
// function over an ordered adjustment stack, with its only side effects
// being cache reads/writes and calls to the injected currency/competitor
// provider contracts.
package pricing

import (
	"context"
	"fmt"
	"math"
	"time"

	"hotelcore/internal/demand"
	"hotelcore/internal/hotels"
	"hotelcore/internal/providers"
	"hotelcore/internal/rooms"
	"hotelcore/internal/shared/config"
	"hotelcore/internal/shared/constants"
	"hotelcore/internal/shared/logger"

	"hotelcore/pkg/cache"

	"github.com/google/uuid"
)

// Quote is the Pricing Engine's output for one (hotel, room, date).
type Quote struct {
	Price           float64 `json:"price"`
	Currency        string  `json:"currency"`
	ApprovalPending bool    `json:"approvalPending"`
	PreviousPrice   float64 `json:"previousPrice"`
}

// PromoCode is a named, bounded discount a caller can apply on top of the
// computed price (§4.2 edge case).
type PromoCode struct {
	Code           string
	DiscountPercent float64 // 0.1 = 10% off
	ValidUntil     time.Time
}

// EventPublisher is satisfied by the eventbus producer. Kept local so this
// package never imports internal/eventbus. Every recompute publishes,
// whether or not the price changed.
type EventPublisher interface {
	PublishPriceChanged(ctx context.Context, hotelID, roomID uuid.UUID, roomType string, price float64, currency string) error
}

type Engine interface {
	// PriceForDate computes a single night's price for (hotel, room, date),
	// applying every factor in the stack, clamping, and gating on the
	// approval threshold.
	PriceForDate(ctx context.Context, hotelID, roomID uuid.UUID, date time.Time, advanceBookingDays int, promo *PromoCode, loyaltyTier string) (Quote, error)

	// QuoteForStay prices every night of [checkIn, checkOut) and sums them,
	// applying the length-of-stay discount bucket once over the whole stay.
	// Satisfies bookings.PriceQuoter.
	QuoteForStay(ctx context.Context, hotelID, roomID uuid.UUID, checkIn, checkOut time.Time) (float64, string, error)
}

type engine struct {
	cache       cache.Service
	hotels      hotels.Repository
	rooms       rooms.Repository
	demand      demand.Tracker
	currency    providers.CurrencyProvider
	competitor  providers.CompetitorProvider
	defaults    config.HotelDefaults
	events      EventPublisher
	log         *logger.Logger
}

func NewEngine(hybridCache cache.Service, hotelsRepo hotels.Repository, roomsRepo rooms.Repository, demandTracker demand.Tracker, currency providers.CurrencyProvider, competitor providers.CompetitorProvider, defaults config.HotelDefaults, events EventPublisher, log *logger.Logger) Engine {
	return &engine{
		cache:      hybridCache,
		hotels:     hotelsRepo,
		rooms:      roomsRepo,
		demand:     demandTracker,
		currency:   currency,
		competitor: competitor,
		defaults:   defaults,
		events:     events,
		log:        log,
	}
}

func (e *engine) PriceForDate(ctx context.Context, hotelID, roomID uuid.UUID, date time.Time, advanceBookingDays int, promo *PromoCode, loyaltyTier string) (Quote, error) {
	hotel, err := e.hotels.Get(ctx, hotelID)
	if err != nil {
		return Quote{}, fmt.Errorf("load hotel for pricing: %w", err)
	}
	room, err := e.rooms.Get(ctx, roomID)
	if err != nil {
		return Quote{}, fmt.Errorf("load room for pricing: %w", err)
	}

	yieldCfg := hotels.EffectiveYield(hotel, e.defaults)

	price := room.BasePrice

	// 1. Demand factor (§4.4) — coarse level, then fine-grained velocity.
	// Both are scoped per roomType: a sold-out SUITE and an empty SIMPLE
	// room never share a blended demand level.
	level, err := e.demand.Level(ctx, hotelID, room.Type, date, demand.OccupancyThresholds(yieldCfg.OccupancyThresholds))
	if err != nil {
		return Quote{}, fmt.Errorf("demand level: %w", err)
	}
	price *= demandLevelMultiplier(level, yieldCfg.OccupancyThresholds)

	velocity, err := e.demand.VelocityMultiplier(ctx, hotelID, room.Type, date)
	if err != nil {
		return Quote{}, fmt.Errorf("demand velocity: %w", err)
	}
	price *= velocity

	// 2. Seasonal factor.
	price *= seasonalMultiplier(date, yieldCfg.SeasonalMultipliers)

	// 3. Day-of-week factor.
	price *= dayOfWeekMultiplier(date, yieldCfg.DayOfWeekMultipliers)

	// 4. Weekly occupancy factor: trailing-7-day average occupancy nudges
	// price independently of the single day's demand level.
	weeklyOcc, err := e.weeklyOccupancy(ctx, hotelID, room.Type, date)
	if err != nil {
		return Quote{}, fmt.Errorf("weekly occupancy: %w", err)
	}
	price *= weeklyOccupancyMultiplier(weeklyOcc)

	// 5. Competitor factor — skipped, not errored, when no signal exists.
	if signal, err := e.competitor.Fetch(ctx, hotelID, date); err == nil && signal.SampleSize > 0 {
		price *= competitorMultiplier(price, signal.MedianPrice)
	}

	// 6. Loyalty factor — members get a small discount baked into the
	// quoted price rather than only at redemption time.
	price *= loyaltyTierMultiplier(loyaltyTier)

	// 6b. Event factor — the first hotel event rule whose [From, Until]
	// range contains the priced date applies its multiplier.
	for _, rule := range hotel.YieldManagement.Data.EventPricing {
		if rule.Multiplier > 0 && !date.Before(rule.From) && !date.After(rule.Until) {
			price *= rule.Multiplier
			break
		}
	}

	// 7. Advance-booking adjustment — stacked multiplicatively with
	// everything above, per §9 Open Question 1 (kept as observed, not
	// silently corrected).
	price *= advanceBookingMultiplier(advanceBookingDays, yieldCfg.AdvanceBookingDiscounts)

	// 8. Last-minute premium: inside 48h, on top of the advance-booking
	// bucket (which itself would already be in the "0-1" bucket).
	if advanceBookingDays <= 1 {
		price *= e.defaults.LastMinutePremium
	}

	// 9. Promo code.
	if promo != nil && promo.Code != "" && time.Now().Before(promo.ValidUntil) {
		price *= 1 - promo.DiscountPercent
	}

	// 10. Per-room constraints, then hotel-wide clamp.
	constraints := room.PriceConstraints.Data
	if constraints.FloorPrice > 0 && price < constraints.FloorPrice {
		price = constraints.FloorPrice
	}
	if constraints.CeilingPrice > 0 && price > constraints.CeilingPrice {
		price = constraints.CeilingPrice
	}
	price = clamp(price, room.BasePrice*yieldCfg.MinPriceMultiplier, room.BasePrice*yieldCfg.MaxPriceMultiplier)

	// 11. Daily-change approval gate: if the computed price moves more than
	// MaxDailyChangePercent from yesterday's clamped price, hold at
	// yesterday's price and flag for approval instead of applying the jump
	// unreviewed (§9 Open Question 3).
	previous, havePrevious := e.previousPrice(ctx, hotelID, roomID, date)
	approvalPending := false
	if havePrevious && previous > 0 {
		change := math.Abs(price-previous) / previous
		if change > yieldCfg.MaxDailyChangePercent {
			approvalPending = true
			price = previous
		}
	}

	// 12. Currency conversion to the hotel's configured display currency.
	converted, err := e.currency.Convert(ctx, price, "EUR", hotel.Currency)
	if err != nil {
		return Quote{}, fmt.Errorf("currency conversion: %w", err)
	}

	quote := Quote{Price: round2(converted), Currency: hotel.Currency, ApprovalPending: approvalPending, PreviousPrice: previous}

	e.cachePrice(ctx, hotelID, roomID, date, quote)
	e.log.LogPriceRecomputed(ctx, hotelID.String(), roomID.String(), quote.Price, approvalPending)

	if e.events != nil {
		if err := e.events.PublishPriceChanged(ctx, hotelID, roomID, room.Type, quote.Price, quote.Currency); err != nil {
			e.log.ErrorWithContext(ctx, "publish price-changed failed", err, map[string]interface{}{"hotel_id": hotelID.String(), "room_id": roomID.String()})
		}
	}

	return quote, nil
}

func (e *engine) QuoteForStay(ctx context.Context, hotelID, roomID uuid.UUID, checkIn, checkOut time.Time) (float64, string, error) {
	nights := int(checkOut.Sub(checkIn).Hours() / 24)
	if nights <= 0 {
		return 0, "", fmt.Errorf("stay must be at least one night")
	}

	advanceDays := int(time.Until(checkIn).Hours() / 24)
	var total float64
	var currency string

	for i := 0; i < nights; i++ {
		date := checkIn.AddDate(0, 0, i)
		quote, err := e.PriceForDate(ctx, hotelID, roomID, date, advanceDays, nil, "")
		if err != nil {
			return 0, "", err
		}
		total += quote.Price
		currency = quote.Currency
	}

	total *= lengthOfStayMultiplier(nights, e.defaults.LengthOfStayDiscounts)

	return round2(total), currency, nil
}

func (e *engine) weeklyOccupancy(ctx context.Context, hotelID uuid.UUID, roomType string, date time.Time) (float64, error) {
	var sum float64
	for i := -6; i <= 0; i++ {
		ratio, err := e.demand.OccupancyRatio(ctx, hotelID, roomType, date.AddDate(0, 0, i))
		if err != nil {
			return 0, err
		}
		sum += ratio
	}
	return sum / 7, nil
}

func (e *engine) previousPrice(ctx context.Context, hotelID, roomID uuid.UUID, date time.Time) (float64, bool) {
	key := constants.BuildPriceKey(hotelID.String(), roomID.String(), date.AddDate(0, 0, -1).Format("2006-01-02"))
	var price float64
	hit, err := e.cache.Get(ctx, key, &price)
	if err != nil || !hit {
		return 0, false
	}
	return price, true
}

func (e *engine) cachePrice(ctx context.Context, hotelID, roomID uuid.UUID, date time.Time, quote Quote) {
	key := constants.BuildPriceKey(hotelID.String(), roomID.String(), date.Format("2006-01-02"))
	if err := e.cache.Set(ctx, key, quote.Price, constants.TTLPrice); err != nil {
		e.log.ErrorWithContext(ctx, "cache price failed", err, map[string]interface{}{"hotel_id": hotelID.String(), "room_id": roomID.String()})
	}
}

func clamp(v, min, max float64) float64 {
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
