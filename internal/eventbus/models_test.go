package eventbus

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestPartitionKeyPrefersHotelOverUser(t *testing.T) {
	hotelID := uuid.New()
	userID := uuid.New()

	ev := newEvent(EventPriceChanged, &hotelID, &userID, nil)
	assert.Equal(t, hotelID.String(), ev.PartitionKey())
}

func TestPartitionKeyFallsBackToUser(t *testing.T) {
	userID := uuid.New()

	ev := newEvent(EventLoyaltyChanged, nil, &userID, nil)
	assert.Equal(t, userID.String(), ev.PartitionKey())
}

func TestPartitionKeyFallsBackToEventID(t *testing.T) {
	ev := newEvent(EventBookingCreated, nil, nil, nil)
	assert.Equal(t, ev.ID.String(), ev.PartitionKey())
}

func TestToJSONRoundTrips(t *testing.T) {
	hotelID := uuid.New()
	ev := newEvent(EventBookingCreated, &hotelID, nil, map[string]interface{}{"kind": "created"})

	body, err := ev.ToJSON()
	assert.NoError(t, err)
	assert.Contains(t, string(body), "booking.created")
}
