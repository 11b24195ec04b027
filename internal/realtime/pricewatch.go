package realtime

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// WatchRequest is the client-declared watch from §4.6's
// `watch-hotel-prices` control message.
type WatchRequest struct {
	HotelID        uuid.UUID
	RoomTypes      []string
	MaxPrice       float64
	AlertThreshold float64
}

// RegisterWatch adds or refreshes a price watch for userID. Watches expire
// 30 minutes after the user's last connect unless renewed.
func (h *Hub) RegisterWatch(userID uuid.UUID, req WatchRequest) {
	types := make(map[string]struct{}, len(req.RoomTypes))
	for _, t := range req.RoomTypes {
		types[t] = struct{}{}
	}

	w := &priceWatch{
		UserID:         userID,
		HotelID:        req.HotelID,
		RoomTypes:      types,
		MaxPrice:       req.MaxPrice,
		AlertThreshold: req.AlertThreshold,
		lastPrice:      make(map[string]float64),
		lastSeen:       time.Now(),
	}

	h.watchMu.Lock()
	defer h.watchMu.Unlock()
	h.watches[userID] = append(h.pruneExpiredLocked(userID), w)
}

// RenewWatches bumps lastSeen for all of a reconnecting user's watches.
func (h *Hub) RenewWatches(userID uuid.UUID) {
	h.watchMu.Lock()
	defer h.watchMu.Unlock()
	now := time.Now()
	for _, w := range h.watches[userID] {
		w.lastSeen = now
	}
}

func (h *Hub) pruneExpiredLocked(userID uuid.UUID) []*priceWatch {
	now := time.Now()
	kept := h.watches[userID][:0]
	for _, w := range h.watches[userID] {
		if !w.expired(now) {
			kept = append(kept, w)
		}
	}
	return kept
}

// checkPriceWatches implements §4.6: for every non-expired watch on
// (hotelID, roomType), alert if the new price clears the user's threshold.
func (h *Hub) checkPriceWatches(hotelID uuid.UUID, roomType string, newPrice float64) {
	h.watchMu.Lock()
	var toAlert []*priceWatch
	now := time.Now()
	for userID, watches := range h.watches {
		kept := watches[:0]
		for _, w := range watches {
			if w.expired(now) {
				continue
			}
			kept = append(kept, w)
			if w.HotelID != hotelID || !w.matches(roomType) {
				continue
			}
			if w.shouldAlert(roomType, newPrice) {
				toAlert = append(toAlert, w)
			}
			w.lastPrice[roomType] = newPrice
		}
		h.watches[userID] = kept
	}
	h.watchMu.Unlock()

	for _, w := range toAlert {
		h.BroadcastToUser(context.Background(), "price-alert", w.UserID, map[string]interface{}{
			"hotelId":  hotelID.String(),
			"roomType": roomType,
			"price":    newPrice,
		})
	}
}
