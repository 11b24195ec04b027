package bookings

import (
	"time"

	"github.com/google/uuid"
)

type Status string

const (
	StatusPending    Status = "PENDING"
	StatusConfirmed  Status = "CONFIRMED"
	StatusCheckedIn  Status = "CHECKED_IN"
	StatusCheckedOut Status = "CHECKED_OUT"
	StatusCancelled  Status = "CANCELLED"
	StatusCompleted  Status = "COMPLETED"
)

// Booking is keyed to a single room today rather than spec's
// rooms[{roomType,quantity}] line-item list — see DESIGN.md for why the
// multi-room rewrite was scoped out. RoomType is denormalized off the
// booked room at creation time. The Demand Tracker (§4.4) does not read
// it: it counts a booking toward a type by matching its RoomID against the
// hotel's current rooms of that type.
type Booking struct {
	ID          uuid.UUID  `json:"id" gorm:"primaryKey;type:uuid;default:uuid_generate_v4()"`
	HotelID     uuid.UUID  `json:"hotel_id" gorm:"not null;type:uuid;index"`
	RoomID      uuid.UUID  `json:"room_id" gorm:"not null;type:uuid;index"`
	RoomType    string     `json:"room_type" gorm:"not null"`
	UserID      uuid.UUID  `json:"user_id" gorm:"not null;type:uuid;index"`
	CheckIn     time.Time  `json:"check_in" gorm:"not null"`
	CheckOut    time.Time  `json:"check_out" gorm:"not null;check:check_out > check_in"`
	Status      Status     `json:"status" gorm:"not null;default:'CONFIRMED'"`
	TotalPrice  float64    `json:"total_price" gorm:"not null"`
	Currency    string     `json:"currency" gorm:"not null"`
	CreatedAt   time.Time  `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt   time.Time  `json:"updated_at" gorm:"autoUpdateTime"`
	CancelledAt *time.Time `json:"cancelled_at,omitempty" gorm:"default:null"`
}

func (Booking) TableName() string { return "bookings" }

// Nights returns the stay length; the Pricing Engine's length-of-stay
// discount bucket is keyed off this (§4.2).
func (b *Booking) Nights() int {
	return int(b.CheckOut.Sub(b.CheckIn).Hours() / 24)
}

// Overlaps reports whether [checkIn, checkOut) intersects this booking's
// range — the core predicate the Availability Service's overlap guard uses
// (§4.3, §3 invariants).
func (b *Booking) Overlaps(checkIn, checkOut time.Time) bool {
	return checkIn.Before(b.CheckOut) && b.CheckIn.Before(checkOut)
}
