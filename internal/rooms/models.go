package rooms

import (
	"time"

	"hotelcore/internal/shared/jsonb"

	"github.com/google/uuid"
)

type Status string

const (
	StatusAvailable  Status = "AVAILABLE"
	StatusOccupied   Status = "OCCUPIED"
	StatusMaintenance Status = "MAINTENANCE"
	StatusOutOfOrder Status = "OUT_OF_ORDER"
	StatusCleaning   Status = "CLEANING"
)

// ApprovalStatus gates whether a CurrentDynamicPrice is actually in effect
// (§3 invariant: valid iff now ∈ [validFrom, validUntil] AND approvalStatus
// ∈ {APPROVED, AUTO_APPROVED}).
type ApprovalStatus string

const (
	ApprovalPending      ApprovalStatus = "PENDING"
	ApprovalApproved     ApprovalStatus = "APPROVED"
	ApprovalRejected     ApprovalStatus = "REJECTED"
	ApprovalAutoApproved ApprovalStatus = "AUTO_APPROVED"
)

// maxPriceHistory/maxYieldSuggestions bound the two append-only lists below
// (§3 invariant: priceHistory ≤ 365, yieldSuggestions ≤ 30).
const (
	maxPriceHistory     = 365
	maxYieldSuggestions = 30
)

// Capacity is derived from Type on read (Room.Capacity), never stored or
// independently settable (§3: "capacity derived from type").
type Capacity struct {
	Adults   int `json:"adults"`
	Children int `json:"children"`
}

// DefaultCapacityForType returns the standard occupancy for each room type
// this core recognizes; an unrecognized type gets the SIMPLE default.
func DefaultCapacityForType(roomType string) Capacity {
	switch roomType {
	case "SUITE":
		return Capacity{Adults: 4, Children: 2}
	case "DOUBLE_CONFORT":
		return Capacity{Adults: 3, Children: 1}
	case "DOUBLE":
		return Capacity{Adults: 2, Children: 1}
	default: // SIMPLE
		return Capacity{Adults: 1, Children: 0}
	}
}

// CurrentDynamicPrice is a room's dynamic price with its validity window
// and approval status (§3). The Pricing Engine does not write this field;
// its quotes go to the price cache.
type CurrentDynamicPrice struct {
	Price          float64        `json:"price"`
	ValidFrom      time.Time      `json:"validFrom"`
	ValidUntil     time.Time      `json:"validUntil"`
	ApprovalStatus ApprovalStatus `json:"approvalStatus"`
}

// Valid implements the §3 dynamic-price-validity invariant.
func (p CurrentDynamicPrice) Valid(now time.Time) bool {
	if now.Before(p.ValidFrom) || now.After(p.ValidUntil) {
		return false
	}
	return p.ApprovalStatus == ApprovalApproved || p.ApprovalStatus == ApprovalAutoApproved
}

// PricePoint is one entry in a room's bounded price history.
type PricePoint struct {
	Price     float64   `json:"price"`
	Currency  string    `json:"currency"`
	Date      time.Time `json:"date"`
	RecordedAt time.Time `json:"recordedAt"`
}

// YieldSuggestion is a recommendation the analytics worker attaches to a
// room for operator review (e.g. "raise base price 5%").
type YieldSuggestion struct {
	Reason       string    `json:"reason"`
	SuggestedAt  time.Time `json:"suggestedAt"`
	CurrentValue float64   `json:"currentValue"`
	SuggestedValue float64 `json:"suggestedValue"`
}

// PriceConstraints bounds what the Pricing Engine may output for this room,
// on top of the hotel-wide min/max multiplier (§4.2).
type PriceConstraints struct {
	FloorPrice   float64 `json:"floorPrice,omitempty"`
	CeilingPrice float64 `json:"ceilingPrice,omitempty"`
}

// RoomHistory bundles the two bounded append-only lists so they share one
// JSONB column rather than two, keeping the row narrow.
type RoomHistory struct {
	PriceHistory    []PricePoint      `json:"priceHistory,omitempty"`
	YieldSuggestions []YieldSuggestion `json:"yieldSuggestions,omitempty"`
}

type Room struct {
	ID        uuid.UUID `json:"id" gorm:"primaryKey;type:uuid;default:uuid_generate_v4()"`
	HotelID   uuid.UUID `json:"hotel_id" gorm:"not null;type:uuid;index"`
	Number    string    `json:"number" gorm:"not null"`
	Type      string    `json:"type" gorm:"not null"` // SIMPLE, DOUBLE, DOUBLE_CONFORT, SUITE
	Status    Status    `json:"status" gorm:"not null;default:'AVAILABLE'"`
	BasePrice float64   `json:"base_price" gorm:"not null;check:base_price > 0"`

	PriceConstraints    jsonb.Field[PriceConstraints]    `json:"price_constraints" gorm:"type:jsonb"`
	CurrentDynamicPrice jsonb.Field[CurrentDynamicPrice] `json:"current_dynamic_price" gorm:"type:jsonb"`
	History             jsonb.Field[RoomHistory]         `json:"history" gorm:"type:jsonb"`

	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}

func (Room) TableName() string { return "rooms" }

func (r *Room) Bookable() bool {
	return r.Status == StatusAvailable
}

// Capacity is derived from Type, never independently stored (§3).
func (r *Room) Capacity() Capacity {
	return DefaultCapacityForType(r.Type)
}

// AppendPriceHistory pushes one entry onto the bounded price history,
// dropping the oldest when the cap is hit (§3 invariant).
func (r *Room) AppendPriceHistory(p PricePoint) {
	h := r.History.Data
	h.PriceHistory = append(h.PriceHistory, p)
	if len(h.PriceHistory) > maxPriceHistory {
		h.PriceHistory = h.PriceHistory[len(h.PriceHistory)-maxPriceHistory:]
	}
	r.History.Data = h
}

// AppendYieldSuggestion pushes one suggestion onto the bounded list,
// dropping the oldest when the cap is hit (§3 invariant).
func (r *Room) AppendYieldSuggestion(s YieldSuggestion) {
	h := r.History.Data
	h.YieldSuggestions = append(h.YieldSuggestions, s)
	if len(h.YieldSuggestions) > maxYieldSuggestions {
		h.YieldSuggestions = h.YieldSuggestions[len(h.YieldSuggestions)-maxYieldSuggestions:]
	}
	r.History.Data = h
}
