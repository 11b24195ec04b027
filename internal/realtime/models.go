// Package realtime implements the Pub/Sub Hub (§4.5) and Price-Watch
// subsystem (§4.6): authenticated, persistent, bidirectional channels
// routing domain events to interested subscribers with bounded,
// offline-tolerant queues.
package realtime

import (
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

// Role is the subscriber's authorization class, same vocabulary the REST
// JWT middleware already issues.
type Role string

const (
	RoleAdmin        Role = "ADMIN"
	RoleReceptionist Role = "RECEPTIONIST"
	RoleClient       Role = "CLIENT"
)

// Tier mirrors internal/loyalty.Tier's string vocabulary without importing
// that package, the same local-decoupling convention used for
// EventPublisher elsewhere in this module.
type Tier string

const (
	TierBronze   Tier = "BRONZE"
	TierSilver   Tier = "SILVER"
	TierGold     Tier = "GOLD"
	TierPlatinum Tier = "PLATINUM"
	TierDiamond  Tier = "DIAMOND"
)

var tierRank = map[Tier]int{
	TierBronze:   0,
	TierSilver:   1,
	TierGold:     2,
	TierPlatinum: 3,
	TierDiamond:  4,
}

func tierAtLeast(t Tier, min Tier) bool {
	return tierRank[t] >= tierRank[min]
}

// Subscriber is the authenticated identity resolved at connect time.
type Subscriber struct {
	UserID  uuid.UUID
	Role    Role
	HotelID *uuid.UUID // set for RECEPTIONIST
	Tier    Tier        // zero value "" for non-enrolled clients
}

// connection wraps one websocket socket with a buffered outbound queue so
// a single goroutine ever calls WriteMessage (gorilla forbids concurrent
// writers on one conn).
type connection struct {
	sessionID  uuid.UUID
	subscriber Subscriber
	conn       *websocket.Conn
	send       chan []byte
	rooms      map[string]struct{}
}

const (
	sendBuffer       = 64
	writeWait        = 10 * time.Second
	pongWait         = 60 * time.Second
	pingInterval     = (pongWait * 9) / 10
	offlineQueueCap  = 1000
	offlineQueueTTL  = 24 * time.Hour
	offlineRetryMax  = 3
	watchExpiryAfter = 30 * time.Minute
)

// outboundEvent is the tagged record every server->client message takes,
// per §6's "any bidirectional authenticated message channel" wire shape.
type outboundEvent struct {
	Type      string      `json:"type"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload,omitempty"`
}

func newOutboundEvent(eventType string, payload interface{}) outboundEvent {
	return outboundEvent{Type: eventType, Timestamp: time.Now(), Payload: payload}
}

// queuedEvent is held for an offline user, replayed on next connect.
type queuedEvent struct {
	event    outboundEvent
	enqueued time.Time
	attempts int
}

// priceWatch is one client's declared watch from §4.6.
type priceWatch struct {
	UserID         uuid.UUID
	HotelID        uuid.UUID
	RoomTypes      map[string]struct{}
	MaxPrice       float64
	AlertThreshold float64 // percentage drop, e.g. 10 == 10%
	lastPrice      map[string]float64
	lastSeen       time.Time
}

func (w *priceWatch) expired(now time.Time) bool {
	return now.Sub(w.lastSeen) > watchExpiryAfter
}

func (w *priceWatch) matches(roomType string) bool {
	if len(w.RoomTypes) == 0 {
		return true
	}
	_, ok := w.RoomTypes[roomType]
	return ok
}

func (w *priceWatch) shouldAlert(roomType string, newPrice float64) bool {
	if newPrice <= w.MaxPrice {
		return true
	}
	prev, ok := w.lastPrice[roomType]
	if !ok || prev <= 0 {
		return false
	}
	dropPct := (prev - newPrice) / prev * 100
	return dropPct >= w.AlertThreshold
}
