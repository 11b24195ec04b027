package realtime

import (
	"context"
	"fmt"
	"hash/fnv"
	"sync"
	"time"

	"hotelcore/internal/shared/logger"

	"github.com/google/uuid"
)

const roomShardCount = 32

// Hub maintains room membership and per-user direct addressing, and
// fans domain events out to connected (or queued, if offline) subscribers.
// Room access is sharded by a hash of the room name so fan-out traversal
// on one room never blocks a connect/disconnect touching another (§5).
type Hub struct {
	shards [roomShardCount]*roomShard

	usersMu sync.RWMutex
	users   map[uuid.UUID]*connection // userID -> active connection

	offlineMu sync.Mutex
	offline   map[uuid.UUID][]queuedEvent

	watchMu sync.Mutex
	watches map[uuid.UUID][]*priceWatch // userID -> watches

	metricsMu sync.Mutex
	metrics   Metrics

	log *logger.Logger
}

// Metrics is a point-in-time counter snapshot, read through Snapshot.
// Nothing in this core pushes it to yield-admin/loyalty-admin.
type Metrics struct {
	PriceUpdates         int64
	DemandAlerts         int64
	RevenueOptimizations int64
	LoyaltyEvents        int64
}

func (h *Hub) incrMetric(field *int64) {
	h.metricsMu.Lock()
	*field++
	h.metricsMu.Unlock()
}

func (h *Hub) Snapshot() Metrics {
	h.metricsMu.Lock()
	defer h.metricsMu.Unlock()
	return h.metrics
}

type roomShard struct {
	mu    sync.RWMutex
	rooms map[string]map[uuid.UUID]*connection // room -> sessionID -> connection
}

func newRoomShard() *roomShard {
	return &roomShard{rooms: make(map[string]map[uuid.UUID]*connection)}
}

func shardFor(room string) int {
	h := fnv.New32a()
	h.Write([]byte(room))
	return int(h.Sum32() % roomShardCount)
}

func NewHub(log *logger.Logger) *Hub {
	h := &Hub{
		users:   make(map[uuid.UUID]*connection),
		offline: make(map[uuid.UUID][]queuedEvent),
		watches: make(map[uuid.UUID][]*priceWatch),
		log:     log,
	}
	for i := range h.shards {
		h.shards[i] = newRoomShard()
	}
	return h
}

// join adds a connection to a room after an authorization check; denied
// joins never mutate membership (§4.5).
func (h *Hub) join(c *connection, room string) error {
	if !h.authorize(c.subscriber, room) {
		return fmt.Errorf("not authorized to join %s", room)
	}

	shard := h.shards[shardFor(room)]
	shard.mu.Lock()
	if shard.rooms[room] == nil {
		shard.rooms[room] = make(map[uuid.UUID]*connection)
	}
	shard.rooms[room][c.sessionID] = c
	shard.mu.Unlock()

	c.rooms[room] = struct{}{}
	return nil
}

func (h *Hub) leave(c *connection, room string) {
	shard := h.shards[shardFor(room)]
	shard.mu.Lock()
	if members, ok := shard.rooms[room]; ok {
		delete(members, c.sessionID)
		if len(members) == 0 {
			delete(shard.rooms, room)
		}
	}
	shard.mu.Unlock()
	delete(c.rooms, room)
}

func (h *Hub) leaveAll(c *connection) {
	for room := range c.rooms {
		h.leave(c, room)
	}
}

// authorize implements §4.5's per-room rule table.
func (h *Hub) authorize(s Subscriber, room string) bool {
	switch {
	case room == "clients" || room == "loyalty-members":
		return true
	case room == fmt.Sprintf("user:%s", s.UserID):
		return true
	case room == "admin", room == "yield-admin", room == "revenue-monitoring", room == "loyalty-admin", room == "loyalty-dashboard":
		return s.Role == RoleAdmin
	}

	var hotelID string
	if n, _ := fmt.Sscanf(room, "hotel:%s", &hotelID); n == 1 {
		return s.Role == RoleAdmin || (s.Role == RoleReceptionist && s.HotelID != nil && s.HotelID.String() == hotelID) || s.Role == RoleClient
	}
	if n, _ := fmt.Sscanf(room, "pricing:%s", &hotelID); n == 1 {
		return s.Role == RoleAdmin || (s.Role == RoleReceptionist && s.HotelID != nil && s.HotelID.String() == hotelID) || s.Role == RoleClient
	}
	if n, _ := fmt.Sscanf(room, "loyalty-hotel:%s", &hotelID); n == 1 {
		return s.Role == RoleAdmin || (s.Role == RoleReceptionist && s.HotelID != nil && s.HotelID.String() == hotelID)
	}
	if n, _ := fmt.Sscanf(room, "demand:%s", &hotelID); n == 1 {
		return s.Role == RoleAdmin || (s.Role == RoleReceptionist && s.HotelID != nil && s.HotelID.String() == hotelID)
	}

	var tierSuffix string
	if n, _ := fmt.Sscanf(room, "loyalty-tier:%s", &tierSuffix); n == 1 {
		return true
	}
	if n, _ := fmt.Sscanf(room, "tier-benefits:%s", &tierSuffix); n == 1 {
		return tierAtLeast(s.Tier, Tier(tierSuffix))
	}
	if n, _ := fmt.Sscanf(room, "chain-loyalty:%s", &tierSuffix); n == 1 {
		return tierAtLeast(s.Tier, TierGold)
	}
	if n, _ := fmt.Sscanf(room, "cross-hotel:%s", &hotelID); n == 1 {
		return tierAtLeast(s.Tier, TierPlatinum)
	}
	if n, _ := fmt.Sscanf(room, "campaign:%s", &hotelID); n == 1 {
		return true
	}

	return false
}

// broadcastRoom delivers an event to every live subscriber of room. It
// never blocks on a slow client: a full send buffer means the message is
// dropped for that connection rather than stalling the fan-out.
func (h *Hub) broadcastRoom(room string, ev outboundEvent) int {
	shard := h.shards[shardFor(room)]
	shard.mu.RLock()
	members := shard.rooms[room]
	recipients := make([]*connection, 0, len(members))
	for _, c := range members {
		recipients = append(recipients, c)
	}
	shard.mu.RUnlock()

	body, err := marshalEvent(ev)
	if err != nil {
		return 0
	}

	delivered := 0
	for _, c := range recipients {
		select {
		case c.send <- body:
			delivered++
		default:
		}
	}
	return delivered
}

// sendDirect delivers to one user's active session, or enqueues the event
// in their bounded offline queue (cap 1000, drop-oldest, up to 3 replay
// attempts) if they aren't connected.
func (h *Hub) sendDirect(userID uuid.UUID, ev outboundEvent) {
	h.usersMu.RLock()
	c, online := h.users[userID]
	h.usersMu.RUnlock()

	if online {
		body, err := marshalEvent(ev)
		if err == nil {
			select {
			case c.send <- body:
				return
			default:
			}
		}
	}

	h.enqueueOffline(userID, ev)
}

func (h *Hub) enqueueOffline(userID uuid.UUID, ev outboundEvent) {
	h.offlineMu.Lock()
	defer h.offlineMu.Unlock()

	q := h.offline[userID]
	q = append(q, queuedEvent{event: ev, enqueued: time.Now()})
	if len(q) > offlineQueueCap {
		q = q[len(q)-offlineQueueCap:]
	}
	h.offline[userID] = q
}

// replayOffline is called right after a user's connection is registered;
// it drains and resends their queued events, dropping any past TTL or
// past the retry cap.
func (h *Hub) replayOffline(c *connection) {
	h.offlineMu.Lock()
	queued := h.offline[c.subscriber.UserID]
	delete(h.offline, c.subscriber.UserID)
	h.offlineMu.Unlock()

	now := time.Now()
	for _, q := range queued {
		if now.Sub(q.enqueued) > offlineQueueTTL {
			continue
		}
		body, err := marshalEvent(q.event)
		if err != nil {
			continue
		}
		for attempt := 0; attempt < offlineRetryMax; attempt++ {
			sent := false
			select {
			case c.send <- body:
				sent = true
			default:
			}
			if sent {
				break
			}
		}
	}
}

func (h *Hub) registerConnection(c *connection) {
	h.usersMu.Lock()
	h.users[c.subscriber.UserID] = c
	h.usersMu.Unlock()
	h.replayOffline(c)
}

func (h *Hub) unregisterConnection(c *connection) {
	h.usersMu.Lock()
	if existing, ok := h.users[c.subscriber.UserID]; ok && existing.sessionID == c.sessionID {
		delete(h.users, c.subscriber.UserID)
	}
	h.usersMu.Unlock()
	h.leaveAll(c)
}

// autoJoinRooms implements §4.5's connect-time role-based room membership.
func autoJoinRooms(s Subscriber) []string {
	var rooms []string
	switch s.Role {
	case RoleAdmin:
		rooms = append(rooms, "admin", "yield-admin", "revenue-monitoring", "loyalty-admin", "loyalty-dashboard")
	case RoleReceptionist:
		if s.HotelID != nil {
			rooms = append(rooms, "hotel:"+s.HotelID.String(), "pricing:"+s.HotelID.String(), "loyalty-hotel:"+s.HotelID.String())
		}
	case RoleClient:
		rooms = append(rooms, "clients", "user:"+s.UserID.String())
	}

	if s.Tier != "" {
		rooms = append(rooms, "loyalty-members", "loyalty-tier:"+string(s.Tier))
		for t, rank := range tierRank {
			if rank <= tierRank[s.Tier] {
				rooms = append(rooms, "tier-benefits:"+string(t))
			}
		}
	}

	return rooms
}

func (h *Hub) Broadcast(ctx context.Context, eventType, room string, payload interface{}) int {
	return h.broadcastRoom(room, newOutboundEvent(eventType, payload))
}

func (h *Hub) BroadcastToUser(ctx context.Context, eventType string, userID uuid.UUID, payload interface{}) {
	h.sendDirect(userID, newOutboundEvent(eventType, payload))
}
