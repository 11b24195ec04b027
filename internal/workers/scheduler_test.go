package workers

import (
	"context"
	"testing"
	"time"

	"hotelcore/internal/availability"
	"hotelcore/internal/hotels"
	"hotelcore/internal/loyalty"
	"hotelcore/internal/providers"
	"hotelcore/internal/shared/clock"
	"hotelcore/internal/shared/logger"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeHotelsRepo struct {
	hotelList []hotels.Hotel
}

func (f *fakeHotelsRepo) Get(ctx context.Context, id uuid.UUID) (*hotels.Hotel, error) { return nil, nil }
func (f *fakeHotelsRepo) Create(ctx context.Context, h *hotels.Hotel) error            { return nil }
func (f *fakeHotelsRepo) Update(ctx context.Context, h *hotels.Hotel) error            { return nil }
func (f *fakeHotelsRepo) List(ctx context.Context, limit, offset int) ([]hotels.Hotel, error) {
	return f.hotelList, nil
}

type fakeAvailability struct {
	occupancy         float64
	availabilityCalls int
}

func (f *fakeAvailability) GetAvailability(ctx context.Context, hotelID uuid.UUID, checkIn, checkOut time.Time, currency string) (availability.View, error) {
	f.availabilityCalls++
	return availability.View{HotelID: hotelID}, nil
}
func (f *fakeAvailability) OnBookingChanged(ctx context.Context, hotelID, roomID uuid.UUID, checkIn, checkOut time.Time) error {
	return nil
}
func (f *fakeAvailability) GetRealTimeOccupancy(ctx context.Context, hotelID uuid.UUID, date time.Time) (float64, error) {
	return f.occupancy, nil
}

type fakeCompetitor struct{ calls int }

func (f *fakeCompetitor) Fetch(ctx context.Context, hotelID uuid.UUID, date time.Time) (providers.CompetitorSignal, error) {
	f.calls++
	return providers.CompetitorSignal{}, nil
}

type fakeLoyalty struct {
	scanCalls            int
	expired, alerted     int
	err                  error
}

func (f *fakeLoyalty) Accrue(ctx context.Context, userID, bookingID uuid.UUID, totalPrice float64) (*loyalty.Transaction, error) {
	return nil, nil
}
func (f *fakeLoyalty) Redeem(ctx context.Context, userID uuid.UUID, option loyalty.RedemptionOption, points int64) (*loyalty.Transaction, error) {
	return nil, nil
}
func (f *fakeLoyalty) RunExpiryScan(ctx context.Context, now time.Time) (int, int, error) {
	f.scanCalls++
	return f.expired, f.alerted, f.err
}
func (f *fakeLoyalty) BroadcastCampaign(ctx context.Context, campaign *loyalty.Campaign) error {
	return nil
}

type fakeCache struct{ sweeps int }

func (f *fakeCache) RunSweep(ctx context.Context) { f.sweeps++ }

type fakeHub struct {
	revenueUpdates int
	yieldUpdates   int
	demandAlerts   int
}

func (f *fakeHub) YieldDashboardUpdate(ctx context.Context, payload interface{}) { f.yieldUpdates++ }
func (f *fakeHub) RevenueOptimizationUpdate(ctx context.Context, hotelID uuid.UUID, payload interface{}) {
	f.revenueUpdates++
}
func (f *fakeHub) DemandSurgeAlert(ctx context.Context, hotelID uuid.UUID, payload interface{}) {
	f.demandAlerts++
}

func TestWarmCacheCallsAvailabilityForEveryHotel(t *testing.T) {
	hotelID := uuid.New()
	repo := &fakeHotelsRepo{hotelList: []hotels.Hotel{{ID: hotelID, Currency: "EUR"}}}
	avail := &fakeAvailability{}
	clk := clock.NewManual(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))

	s := New(DefaultConfig(), clk, repo, avail, &fakeCompetitor{}, &fakeLoyalty{}, &fakeCache{}, &fakeHub{}, logger.New())
	s.warmCache(context.Background())

	assert.Equal(t, 1, avail.availabilityCalls)
}

func TestRefreshDemandFlagsNearSelloutDates(t *testing.T) {
	hotelID := uuid.New()
	repo := &fakeHotelsRepo{hotelList: []hotels.Hotel{{ID: hotelID, Currency: "EUR"}}}
	avail := &fakeAvailability{occupancy: 0.99}
	hub := &fakeHub{}
	clk := clock.NewManual(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))

	s := New(DefaultConfig(), clk, repo, avail, &fakeCompetitor{}, &fakeLoyalty{}, &fakeCache{}, hub, logger.New())
	s.refreshDemand(context.Background())

	assert.Equal(t, warmLookaheadDays, hub.demandAlerts)
}

func TestSweepCacheDelegatesToCacheService(t *testing.T) {
	cache := &fakeCache{}
	clk := clock.NewManual(time.Now())
	s := New(DefaultConfig(), clk, &fakeHotelsRepo{}, &fakeAvailability{}, &fakeCompetitor{}, &fakeLoyalty{}, cache, &fakeHub{}, logger.New())

	s.sweepCache(context.Background())

	require.Equal(t, 1, cache.sweeps)
}

func TestRolloverMetricsPushesYieldDashboardUpdate(t *testing.T) {
	hub := &fakeHub{}
	clk := clock.NewManual(time.Now())
	s := New(DefaultConfig(), clk, &fakeHotelsRepo{}, &fakeAvailability{}, &fakeCompetitor{}, &fakeLoyalty{}, &fakeCache{}, hub, logger.New())

	s.rolloverMetrics(context.Background())

	assert.Equal(t, 1, hub.yieldUpdates)
}

func TestRunLoyaltyExpiryScanDelegatesToLoyaltyService(t *testing.T) {
	loy := &fakeLoyalty{expired: 2, alerted: 3}
	clk := clock.NewManual(time.Now())
	s := New(DefaultConfig(), clk, &fakeHotelsRepo{}, &fakeAvailability{}, &fakeCompetitor{}, loy, &fakeCache{}, &fakeHub{}, logger.New())

	s.runLoyaltyExpiryScan(context.Background())

	assert.Equal(t, 1, loy.scanCalls)
}
