package realtime

import (
	"context"
	"fmt"

	"hotelcore/internal/eventbus"

	"github.com/google/uuid"
)

// Dispatch satisfies eventbus.Dispatcher: every domain fact consumed off
// Kafka is routed here and fanned into the room table §4.5 describes.
func (h *Hub) Dispatch(ctx context.Context, ev eventbus.DomainEvent) error {
	switch ev.Type {
	case eventbus.EventBookingCreated, eventbus.EventBookingCancelled:
		return h.dispatchBookingChanged(ctx, ev)
	case eventbus.EventPriceChanged:
		return h.dispatchPriceChanged(ctx, ev)
	case eventbus.EventLoyaltyChanged:
		return h.dispatchLoyaltyChanged(ctx, ev)
	default:
		return fmt.Errorf("unknown domain event type %q", ev.Type)
	}
}

func (h *Hub) dispatchBookingChanged(ctx context.Context, ev eventbus.DomainEvent) error {
	if ev.HotelID == nil {
		return fmt.Errorf("booking event missing hotel id")
	}
	hotelID := ev.HotelID.String()

	h.Broadcast(ctx, "availability-update", "hotel:"+hotelID, ev.Payload)
	h.Broadcast(ctx, "availability-update", "clients", ev.Payload)
	return nil
}

// dispatchPriceChanged implements the price-update broadcast plus the
// Price-Watch alert check against every user watching this (hotel,
// roomType) pair (§4.6).
func (h *Hub) dispatchPriceChanged(ctx context.Context, ev eventbus.DomainEvent) error {
	if ev.HotelID == nil {
		return fmt.Errorf("price event missing hotel id")
	}
	hotelID := *ev.HotelID

	h.incrMetric(&h.metrics.PriceUpdates)
	h.Broadcast(ctx, "price-update", "pricing:"+hotelID.String(), ev.Payload)
	h.Broadcast(ctx, "price-update", "hotel:"+hotelID.String(), ev.Payload)

	roomType, _ := ev.Payload["roomType"].(string)
	price, _ := ev.Payload["price"].(float64)
	h.checkPriceWatches(hotelID, roomType, price)

	return nil
}

func (h *Hub) dispatchLoyaltyChanged(ctx context.Context, ev eventbus.DomainEvent) error {
	if ev.UserID == nil {
		return fmt.Errorf("loyalty event missing user id")
	}
	userID := *ev.UserID

	h.incrMetric(&h.metrics.LoyaltyEvents)

	eventType, _ := ev.Payload["eventType"].(string)
	switch eventType {
	case "loyalty-tier-upgraded":
		newTier, _ := ev.Payload["toTier"].(string)
		h.BroadcastToUser(ctx, eventType, userID, ev.Payload)
		h.Broadcast(ctx, eventType, "loyalty-tier:"+newTier, ev.Payload)
		h.Broadcast(ctx, eventType, "loyalty-admin", ev.Payload)
	case "loyalty-points-earned":
		h.BroadcastToUser(ctx, eventType, userID, ev.Payload)
		h.Broadcast(ctx, eventType, "loyalty-admin", ev.Payload)
	case "loyalty-points-expiry-alert":
		h.BroadcastToUser(ctx, eventType, userID, ev.Payload)
	case "campaign-update":
		campaignID, _ := ev.Payload["campaignId"].(string)
		h.Broadcast(ctx, eventType, "campaign:"+campaignID, ev.Payload)
	case "campaign-opportunity":
		tier, _ := ev.Payload["tier"].(string)
		h.Broadcast(ctx, eventType, "loyalty-tier:"+tier, ev.Payload)
	case "hotel-campaign-notification":
		hotelID, _ := ev.Payload["hotelId"].(string)
		h.Broadcast(ctx, eventType, "loyalty-hotel:"+hotelID, ev.Payload)
	default:
		h.BroadcastToUser(ctx, eventType, userID, ev.Payload)
	}

	return nil
}

// DemandSurgeAlert lets the Demand Tracker (§4.4) push a direct broadcast
// without this package importing internal/demand.
func (h *Hub) DemandSurgeAlert(ctx context.Context, hotelID uuid.UUID, payload interface{}) {
	h.incrMetric(&h.metrics.DemandAlerts)
	h.Broadcast(ctx, "demand-surge-alert", "demand:"+hotelID.String(), payload)
	h.Broadcast(ctx, "demand-surge-alert", "hotel:"+hotelID.String(), payload)
	h.Broadcast(ctx, "demand-surge-alert", "yield-admin", payload)
}

// RevenueOptimizationUpdate is pushed by workers/analytics (§4.2).
func (h *Hub) RevenueOptimizationUpdate(ctx context.Context, hotelID uuid.UUID, payload interface{}) {
	h.incrMetric(&h.metrics.RevenueOptimizations)
	h.Broadcast(ctx, "revenue-optimization", "revenue-monitoring", payload)
	h.Broadcast(ctx, "revenue-optimization", "hotel:"+hotelID.String(), payload)
}

// YieldDashboardUpdate is pushed by the scheduled workers (§4.7/workers).
func (h *Hub) YieldDashboardUpdate(ctx context.Context, payload interface{}) {
	h.Broadcast(ctx, "yield-dashboard-update", "yield-admin", payload)
}

// CampaignBroadcast mirrors loyalty.Service.BroadcastCampaign's fan-out
// onto the room table (campaign-update / campaign-opportunity /
// hotel-campaign-notification).
func (h *Hub) CampaignBroadcast(ctx context.Context, eventType, room string, payload interface{}) {
	h.Broadcast(ctx, eventType, room, payload)
}
