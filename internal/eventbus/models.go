// Package eventbus is the domain event outbox: booking-changed,
// price-changed, and loyalty-changed facts are published to Kafka after
// the owning transaction commits, and the realtime Hub's dispatcher
// consumes them so "fact happened" stays decoupled from "who needs to
// know" (§9).
package eventbus

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// EventType names the domain facts this bus carries. The realtime Hub's
// routing table (§4.5) keys off these exact strings.
type EventType string

const (
	EventBookingCreated   EventType = "booking.created"
	EventBookingCancelled EventType = "booking.cancelled"
	EventPriceChanged     EventType = "price.changed"
	EventLoyaltyChanged   EventType = "loyalty.changed"
)

// DomainEvent is the wire envelope for every fact this bus carries.
type DomainEvent struct {
	ID        uuid.UUID              `json:"id"`
	Type      EventType              `json:"type"`
	HotelID   *uuid.UUID             `json:"hotelId,omitempty"`
	UserID    *uuid.UUID             `json:"userId,omitempty"`
	Payload   map[string]interface{} `json:"payload"`
	CreatedAt time.Time              `json:"createdAt"`
}

// PartitionKey routes same-hotel (or same-user, for loyalty events) facts
// to the same partition so a consumer sees them in commit order.
func (e DomainEvent) PartitionKey() string {
	if e.HotelID != nil {
		return e.HotelID.String()
	}
	if e.UserID != nil {
		return e.UserID.String()
	}
	return e.ID.String()
}

func (e DomainEvent) ToJSON() ([]byte, error) {
	return json.Marshal(e)
}

func newEvent(eventType EventType, hotelID, userID *uuid.UUID, payload map[string]interface{}) DomainEvent {
	return DomainEvent{
		ID:        uuid.New(),
		Type:      eventType,
		HotelID:   hotelID,
		UserID:    userID,
		Payload:   payload,
		CreatedAt: time.Now(),
	}
}
