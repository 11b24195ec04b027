package availability

import (
	"context"
	"testing"
	"time"

	"hotelcore/internal/bookings"
	"hotelcore/internal/demand"
	"hotelcore/internal/hotels"
	"hotelcore/internal/pricing"
	"hotelcore/internal/rooms"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type fakeHotelsRepo struct{ hotel hotels.Hotel }

func (f *fakeHotelsRepo) Get(ctx context.Context, id uuid.UUID) (*hotels.Hotel, error) {
	return &f.hotel, nil
}
func (f *fakeHotelsRepo) Create(ctx context.Context, h *hotels.Hotel) error { return nil }
func (f *fakeHotelsRepo) Update(ctx context.Context, h *hotels.Hotel) error { return nil }
func (f *fakeHotelsRepo) List(ctx context.Context, limit, offset int) ([]hotels.Hotel, error) {
	return nil, nil
}

type fakeRoomsRepo struct{ rooms []rooms.Room }

func (f *fakeRoomsRepo) Get(ctx context.Context, id uuid.UUID) (*rooms.Room, error) {
	for _, r := range f.rooms {
		if r.ID == id {
			return &r, nil
		}
	}
	return nil, nil
}
func (f *fakeRoomsRepo) ListByHotel(ctx context.Context, hotelID uuid.UUID) ([]rooms.Room, error) {
	return f.rooms, nil
}
func (f *fakeRoomsRepo) Create(ctx context.Context, r *rooms.Room) error { return nil }
func (f *fakeRoomsRepo) Update(ctx context.Context, r *rooms.Room) error { return nil }

type fakeBookingsRepo struct{ overlappingByRoom map[uuid.UUID][]bookings.Booking }

func (f *fakeBookingsRepo) Get(ctx context.Context, id uuid.UUID) (*bookings.Booking, error) {
	return nil, nil
}
func (f *fakeBookingsRepo) Create(ctx context.Context, b *bookings.Booking) error { return nil }
func (f *fakeBookingsRepo) Cancel(ctx context.Context, id uuid.UUID, at time.Time) error {
	return nil
}
func (f *fakeBookingsRepo) OverlappingForRoom(ctx context.Context, roomID uuid.UUID, checkIn, checkOut time.Time) ([]bookings.Booking, error) {
	return f.overlappingByRoom[roomID], nil
}
func (f *fakeBookingsRepo) ActiveForHotelOnDate(ctx context.Context, hotelID uuid.UUID, date time.Time) ([]bookings.Booking, error) {
	return nil, nil
}
func (f *fakeBookingsRepo) WithTx(tx *gorm.DB) bookings.Repository { return f }

type fakeDemand struct{}

func (fakeDemand) Record(ctx context.Context, hotelID uuid.UUID, roomType string, date time.Time, event string) error {
	return nil
}
func (fakeDemand) Level(ctx context.Context, hotelID uuid.UUID, roomType string, date time.Time, thresholds demand.OccupancyThresholds) (demand.Level, error) {
	return demand.LevelModerate, nil
}
func (fakeDemand) VelocityMultiplier(ctx context.Context, hotelID uuid.UUID, roomType string, date time.Time) (float64, error) {
	return 1.0, nil
}
func (fakeDemand) OccupancyRatio(ctx context.Context, hotelID uuid.UUID, roomType string, date time.Time) (float64, error) {
	return 0.5, nil
}

type fakePricing struct{}

func (fakePricing) PriceForDate(ctx context.Context, hotelID, roomID uuid.UUID, date time.Time, advanceBookingDays int, promo *pricing.PromoCode, loyaltyTier string) (pricing.Quote, error) {
	return pricing.Quote{Price: 120, Currency: "EUR"}, nil
}
func (fakePricing) QuoteForStay(ctx context.Context, hotelID, roomID uuid.UUID, checkIn, checkOut time.Time) (float64, string, error) {
	return 120, "EUR", nil
}

func TestShardForIsDeterministic(t *testing.T) {
	s := &service{}
	hotelID := uuid.New()
	date := time.Date(2026, 7, 30, 0, 0, 0, 0, time.UTC)

	a := s.shardFor(hotelID, date)
	b := s.shardFor(hotelID, date)
	assert.Same(t, a, b)
}

func TestReconcileComputesAvailableRoomsFromLiveBookings(t *testing.T) {
	hotelID := uuid.New()
	room1 := uuid.New()
	room2 := uuid.New()

	roomsRepo := &fakeRoomsRepo{rooms: []rooms.Room{
		{ID: room1, HotelID: hotelID, Type: "STANDARD", Status: rooms.StatusAvailable, BasePrice: 100},
		{ID: room2, HotelID: hotelID, Type: "STANDARD", Status: rooms.StatusAvailable, BasePrice: 100},
	}}
	bookingsRepo := &fakeBookingsRepo{overlappingByRoom: map[uuid.UUID][]bookings.Booking{
		room1: {{ID: uuid.New()}},
	}}

	svc := &service{
		hotels:   &fakeHotelsRepo{hotel: hotels.Hotel{ID: hotelID, Currency: "EUR"}},
		rooms:    roomsRepo,
		bookings: bookingsRepo,
		pricing:  fakePricing{},
		demand:   fakeDemand{},
	}

	checkIn := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	checkOut := checkIn.AddDate(0, 0, 2)

	view, err := svc.reconcile(context.Background(), hotelID, checkIn, checkOut)
	require.NoError(t, err)

	standard := view.RoomTypes["STANDARD"]
	assert.Equal(t, 2, standard.TotalRooms)
	assert.Equal(t, 1, standard.BookedRooms)
	assert.Equal(t, 1, standard.AvailableRooms)
	assert.InDelta(t, 0.5, view.OccupancyRate, 0.0001)
}
