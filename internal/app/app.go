// Package app is the composition root shared by cmd/server and
// cmd/operator: both need the same wiring (store, cache, domain
// services, event bus) but only cmd/server also runs the Pub/Sub Hub,
// the Kafka consumer, and the background scheduler.
package app

import (
	"context"
	"fmt"

	"hotelcore/internal/availability"
	"hotelcore/internal/bookings"
	"hotelcore/internal/demand"
	"hotelcore/internal/eventbus"
	"hotelcore/internal/hotels"
	"hotelcore/internal/loyalty"
	"hotelcore/internal/pricing"
	"hotelcore/internal/providers"
	"hotelcore/internal/realtime"
	"hotelcore/internal/rooms"
	"hotelcore/internal/shared/clock"
	"hotelcore/internal/shared/config"
	"hotelcore/internal/shared/database"
	"hotelcore/internal/shared/logger"
	"hotelcore/internal/workers"
	"hotelcore/pkg/cache"
)

// App holds every wired dependency the two entrypoints share.
type App struct {
	Config *config.Config
	Log    *logger.Logger
	DB     *database.DB

	Cache cache.Service

	Hotels   hotels.Repository
	Rooms    rooms.Repository
	Bookings bookings.Repository
	Loyalty  loyalty.Repository

	Demand       demand.Tracker
	Pricing      pricing.Engine
	Availability availability.Service
	Currency     providers.CurrencyProvider
	Competitor   providers.CompetitorProvider

	BookingsService bookings.Service
	LoyaltyService  loyalty.Service

	Events *eventbus.KafkaProducer
	Hub    *realtime.Hub

	consumer  *eventbus.Consumer
	scheduler *workers.Scheduler
}

// Bootstrap wires every layer from config down to domain services. It
// does not start any background goroutine — callers decide what to run
// via Start.
func Bootstrap(cfg *config.Config) (*App, error) {
	log := logger.New()

	db, err := database.InitDB(cfg)
	if err != nil {
		return nil, fmt.Errorf("init db: %w", err)
	}

	hybridCache := cache.New(cache.NewRedisDriver(db.Redis), cache.Options{
		CompressionThreshold: cfg.Cache.CompressionThreshold,
		LocalCapacity:        cfg.Cache.LocalTierCapacity,
	})

	events, err := eventbus.NewKafkaProducer(cfg.Kafka, log)
	if err != nil {
		return nil, fmt.Errorf("init kafka producer: %w", err)
	}

	hotelsRepo := hotels.NewRepository(db.PostgreSQL)
	roomsRepo := rooms.NewRepository(db.PostgreSQL)
	bookingsRepo := bookings.NewRepository(db.PostgreSQL)
	loyaltyRepo := loyalty.NewRepository(db.PostgreSQL)

	demandTracker := demand.NewTracker(hybridCache, bookingsRepo, roomsRepo)
	currency := providers.NewStaticCurrencyProvider()
	competitor := providers.NoopCompetitorProvider{}

	pricingEngine := pricing.NewEngine(hybridCache, hotelsRepo, roomsRepo, demandTracker, currency, competitor, cfg.Hotel, events, log)
	availabilitySvc := availability.NewService(hotelsRepo, roomsRepo, bookingsRepo, pricingEngine, demandTracker, currency, hybridCache, cfg.Hotel, log)

	bookingsSvc := bookings.NewService(db.PostgreSQL, bookingsRepo, roomsRepo, pricingEngine, availabilitySvc, events, log)
	loyaltySvc := loyalty.NewService(db.PostgreSQL, loyaltyRepo, events, cfg.Hotel, log)

	hub := realtime.NewHub(log)

	return &App{
		Config:          cfg,
		Log:             log,
		DB:              db,
		Cache:           hybridCache,
		Hotels:          hotelsRepo,
		Rooms:           roomsRepo,
		Bookings:        bookingsRepo,
		Loyalty:         loyaltyRepo,
		Demand:          demandTracker,
		Pricing:         pricingEngine,
		Availability:    availabilitySvc,
		Currency:        currency,
		Competitor:      competitor,
		BookingsService: bookingsSvc,
		LoyaltyService:  loyaltySvc,
		Events:          events,
		Hub:             hub,
	}, nil
}

// Start launches the Kafka consumer (dispatching into the Hub) and the
// background scheduler. Only cmd/server calls this — cmd/operator runs
// one-shot hooks against the wired services directly.
func (a *App) Start(ctx context.Context) error {
	consumer, err := eventbus.NewConsumer(a.Config.Kafka, a.Hub, a.Log)
	if err != nil {
		return fmt.Errorf("init kafka consumer: %w", err)
	}
	consumer.Start(ctx)
	a.consumer = consumer

	a.scheduler = workers.New(workers.DefaultConfig(), clock.Real(), a.Hotels, a.Availability, a.Competitor, a.LoyaltyService, a.Cache, a.Hub, a.Log)
	a.scheduler.Start(ctx)

	return nil
}

// Close releases every held connection/resource, in reverse order of
// acquisition.
func (a *App) Close() error {
	if a.scheduler != nil {
		a.scheduler.Stop()
	}
	if a.consumer != nil {
		if err := a.consumer.Stop(); err != nil {
			a.Log.ErrorWithContext(context.Background(), "stop kafka consumer failed", err, nil)
		}
	}
	if a.Events != nil {
		if err := a.Events.Close(); err != nil {
			a.Log.ErrorWithContext(context.Background(), "close kafka producer failed", err, nil)
		}
	}
	return a.DB.Close()
}
