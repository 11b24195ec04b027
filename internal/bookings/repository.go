package bookings

import (
	"context"
	"errors"
	"fmt"
	"time"

	"hotelcore/internal/shared/apperror"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Repository interface {
	Get(ctx context.Context, id uuid.UUID) (*Booking, error)
	Create(ctx context.Context, booking *Booking) error
	Cancel(ctx context.Context, id uuid.UUID, at time.Time) error
	OverlappingForRoom(ctx context.Context, roomID uuid.UUID, checkIn, checkOut time.Time) ([]Booking, error)
	ActiveForHotelOnDate(ctx context.Context, hotelID uuid.UUID, date time.Time) ([]Booking, error)
	WithTx(tx *gorm.DB) Repository
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	return &repository{db: tx}
}

func (r *repository) Get(ctx context.Context, id uuid.UUID) (*Booking, error) {
	var booking Booking
	err := r.db.WithContext(ctx).First(&booking, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperror.NotFound(fmt.Sprintf("booking %s not found", id))
	}
	if err != nil {
		return nil, fmt.Errorf("get booking: %w", err)
	}
	return &booking, nil
}

func (r *repository) Create(ctx context.Context, booking *Booking) error {
	if err := r.db.WithContext(ctx).Create(booking).Error; err != nil {
		return fmt.Errorf("create booking: %w", err)
	}
	return nil
}

func (r *repository) Cancel(ctx context.Context, id uuid.UUID, at time.Time) error {
	res := r.db.WithContext(ctx).Model(&Booking{}).
		Where("id = ? AND status IN ?", id, []Status{StatusPending, StatusConfirmed}).
		Updates(map[string]interface{}{"status": StatusCancelled, "cancelled_at": at})
	if res.Error != nil {
		return fmt.Errorf("cancel booking: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return apperror.Conflict("booking is not in a cancellable state")
	}
	return nil
}

// OverlappingForRoom returns every non-cancelled booking for roomID whose
// stay intersects [checkIn, checkOut) — used both for the overlap guard and
// for re-deriving a room's availability on cache miss (§4.3, §4.4).
func (r *repository) OverlappingForRoom(ctx context.Context, roomID uuid.UUID, checkIn, checkOut time.Time) ([]Booking, error) {
	var list []Booking
	err := r.db.WithContext(ctx).
		Where("room_id = ? AND status != ? AND check_in < ? AND check_out > ?", roomID, StatusCancelled, checkOut, checkIn).
		Find(&list).Error
	if err != nil {
		return nil, fmt.Errorf("overlapping bookings for room: %w", err)
	}
	return list, nil
}

// ActiveForHotelOnDate returns every non-cancelled booking covering date,
// across the whole hotel — the source for live occupancy/demand aggregation
// (§4.3, §4.4, §9 Open Question 2).
func (r *repository) ActiveForHotelOnDate(ctx context.Context, hotelID uuid.UUID, date time.Time) ([]Booking, error) {
	var list []Booking
	dayStart := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, date.Location())
	dayEnd := dayStart.AddDate(0, 0, 1)
	err := r.db.WithContext(ctx).
		Where("hotel_id = ? AND status != ? AND check_in < ? AND check_out > ?", hotelID, StatusCancelled, dayEnd, dayStart).
		Find(&list).Error
	if err != nil {
		return nil, fmt.Errorf("active bookings for hotel on date: %w", err)
	}
	return list, nil
}
