package bookings

import (
	"context"
	"fmt"
	"time"

	"hotelcore/internal/rooms"
	"hotelcore/internal/shared/apperror"
	"hotelcore/internal/shared/logger"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// PriceQuoter is satisfied by the Pricing Engine. Kept as a local interface
// (not an import of internal/pricing) so this package doesn't need to know
// about the pricing module's own dependencies — it only needs a quote.
type PriceQuoter interface {
	QuoteForStay(ctx context.Context, hotelID, roomID uuid.UUID, checkIn, checkOut time.Time) (float64, string, error)
}

// AvailabilityNotifier is satisfied by the Availability Service.
type AvailabilityNotifier interface {
	OnBookingChanged(ctx context.Context, hotelID, roomID uuid.UUID, checkIn, checkOut time.Time) error
}

// RoomLookup is satisfied by rooms.Repository, narrowed to the one method
// this package needs to denormalize a booking's room type at creation.
type RoomLookup interface {
	Get(ctx context.Context, id uuid.UUID) (*rooms.Room, error)
}

// EventPublisher is satisfied by the eventbus producer.
type EventPublisher interface {
	PublishBookingChanged(ctx context.Context, hotelID, roomID, bookingID uuid.UUID, kind string) error
}

type Service interface {
	Create(ctx context.Context, hotelID, roomID, userID uuid.UUID, checkIn, checkOut time.Time) (*Booking, error)
	Cancel(ctx context.Context, bookingID uuid.UUID) error
}

type service struct {
	db           *gorm.DB
	repo         Repository
	rooms        RoomLookup
	pricing      PriceQuoter
	availability AvailabilityNotifier
	events       EventPublisher
	log          *logger.Logger
}

func NewService(db *gorm.DB, repo Repository, roomsRepo RoomLookup, pricing PriceQuoter, availability AvailabilityNotifier, events EventPublisher, log *logger.Logger) Service {
	return &service{db: db, repo: repo, rooms: roomsRepo, pricing: pricing, availability: availability, events: events, log: log}
}

// Create validates the stay, re-checks the overlap guard inside a
// transaction (the Availability Service's own lock only serializes
// concurrent callers within this process; the DB unique/overlap check is
// the cross-process backstop per §5), prices it, and persists it.
func (s *service) Create(ctx context.Context, hotelID, roomID, userID uuid.UUID, checkIn, checkOut time.Time) (*Booking, error) {
	if !checkIn.Before(checkOut) {
		return nil, apperror.Invalid("check-in must be before check-out")
	}
	if checkIn.Before(time.Now().Add(-24 * time.Hour)) {
		return nil, apperror.Invalid("check-in is too far in the past")
	}

	room, err := s.rooms.Get(ctx, roomID)
	if err != nil {
		return nil, fmt.Errorf("load room for booking: %w", err)
	}

	var booking *Booking
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		txRepo := s.repo.WithTx(tx)

		overlapping, err := txRepo.OverlappingForRoom(ctx, roomID, checkIn, checkOut)
		if err != nil {
			return err
		}
		if len(overlapping) > 0 {
			return apperror.Conflict("room is already booked for an overlapping range")
		}

		price, currency, err := s.pricing.QuoteForStay(ctx, hotelID, roomID, checkIn, checkOut)
		if err != nil {
			return fmt.Errorf("quote for stay: %w", err)
		}

		b := &Booking{
			ID:         uuid.New(),
			HotelID:    hotelID,
			RoomID:     roomID,
			RoomType:   room.Type,
			UserID:     userID,
			CheckIn:    checkIn,
			CheckOut:   checkOut,
			Status:     StatusConfirmed,
			TotalPrice: price,
			Currency:   currency,
		}
		if err := txRepo.Create(ctx, b); err != nil {
			return err
		}
		booking = b
		return nil
	})
	if err != nil {
		return nil, err
	}

	if err := s.availability.OnBookingChanged(ctx, hotelID, roomID, checkIn, checkOut); err != nil {
		s.log.ErrorWithContext(ctx, "availability notify failed after booking create", err, map[string]interface{}{"booking_id": booking.ID.String()})
	}
	if err := s.events.PublishBookingChanged(ctx, hotelID, roomID, booking.ID, "CREATED"); err != nil {
		s.log.ErrorWithContext(ctx, "event publish failed after booking create", err, map[string]interface{}{"booking_id": booking.ID.String()})
	}
	s.log.LogBookingCreated(ctx, booking.ID.String(), hotelID.String(), roomID.String())

	return booking, nil
}

func (s *service) Cancel(ctx context.Context, bookingID uuid.UUID) error {
	booking, err := s.repo.Get(ctx, bookingID)
	if err != nil {
		return err
	}

	if err := s.repo.Cancel(ctx, bookingID, time.Now()); err != nil {
		return err
	}

	if err := s.availability.OnBookingChanged(ctx, booking.HotelID, booking.RoomID, booking.CheckIn, booking.CheckOut); err != nil {
		s.log.ErrorWithContext(ctx, "availability notify failed after booking cancel", err, map[string]interface{}{"booking_id": bookingID.String()})
	}
	if err := s.events.PublishBookingChanged(ctx, booking.HotelID, booking.RoomID, bookingID, "CANCELLED"); err != nil {
		s.log.ErrorWithContext(ctx, "event publish failed after booking cancel", err, map[string]interface{}{"booking_id": bookingID.String()})
	}
	s.log.LogBookingCancelled(ctx, bookingID.String(), booking.HotelID.String())

	return nil
}
