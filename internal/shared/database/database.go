package database

import (
	"context"
	"fmt"
	"log"
	"time"

	"hotelcore/internal/bookings"
	"hotelcore/internal/hotels"
	"hotelcore/internal/loyalty"
	"hotelcore/internal/rooms"
	"hotelcore/internal/shared/config"

	"github.com/redis/go-redis/v9"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// DB holds the process's storage connections.
type DB struct {
	PostgreSQL *gorm.DB
	Redis      *redis.Client
}

func InitDB(cfg *config.Config) (*DB, error) {
	pg, err := initPostgreSQL(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize PostgreSQL: %w", err)
	}
	if err := Migrate(pg); err != nil {
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	rdb, err := initRedis(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize Redis: %w", err)
	}

	return &DB{PostgreSQL: pg, Redis: rdb}, nil
}

func initPostgreSQL(cfg *config.Config) (*gorm.DB, error) {
	var gormLogger logger.Interface
	if cfg.IsDevelopment() {
		gormLogger = logger.Default.LogMode(logger.Info)
	} else {
		gormLogger = logger.Default.LogMode(logger.Silent)
	}

	gormConfig := &gorm.Config{
		Logger: gormLogger,
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
		PrepareStmt:                              true,
		DisableForeignKeyConstraintWhenMigrating: true,
	}

	db, err := gorm.Open(postgres.Open(cfg.Database.DSN), gormConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}

	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetMaxOpenConns(100)
	sqlDB.SetConnMaxLifetime(time.Hour)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := sqlDB.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	log.Println("PostgreSQL connected successfully")
	return db, nil
}

func initRedis(cfg *config.Config) (*redis.Client, error) {
	opts := &redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,

		PoolSize:     20,
		MinIdleConns: 5,

		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	}

	rdb := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	log.Println("Redis connected successfully")
	return rdb, nil
}

// Migrate runs auto-migration for the hotel core's persisted aggregates,
// followed by the concurrency-control constraints §3 requires.
func Migrate(db *gorm.DB) error {
	err := db.AutoMigrate(
		&hotels.Hotel{},
		&rooms.Room{},
		&bookings.Booking{},
		&loyalty.Account{},
		&loyalty.Transaction{},
		&loyalty.Campaign{},
	)
	if err != nil {
		return err
	}
	return migrateConstraints(db)
}

// migrateConstraints adds the unique room-number-per-hotel constraint and
// supporting indexes for availability/overlap queries.
func migrateConstraints(db *gorm.DB) error {
	if err := db.Exec(`
		ALTER TABLE rooms
		ADD CONSTRAINT IF NOT EXISTS unique_room_number_per_hotel
		UNIQUE (hotel_id, number);
	`).Error; err != nil {
		return err
	}

	if err := db.Exec(`
		CREATE INDEX CONCURRENTLY IF NOT EXISTS idx_bookings_room_dates
		ON bookings (room_id, check_in, check_out);
	`).Error; err != nil {
		return err
	}

	return db.Exec(`
		CREATE INDEX CONCURRENTLY IF NOT EXISTS idx_bookings_hotel_dates
		ON bookings (hotel_id, check_in, check_out);
	`).Error
}

func (db *DB) Close() error {
	var errs []error

	if db.PostgreSQL != nil {
		if sqlDB, err := db.PostgreSQL.DB(); err == nil {
			if err := sqlDB.Close(); err != nil {
				errs = append(errs, fmt.Errorf("failed to close PostgreSQL: %w", err))
			}
		}
	}

	if db.Redis != nil {
		if err := db.Redis.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close Redis: %w", err))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("errors closing databases: %v", errs)
	}

	log.Println("All database connections closed")
	return nil
}

func (db *DB) HealthCheck(ctx context.Context) error {
	if db.PostgreSQL != nil {
		sqlDB, err := db.PostgreSQL.DB()
		if err != nil {
			return fmt.Errorf("PostgreSQL health check failed: %w", err)
		}
		if err := sqlDB.PingContext(ctx); err != nil {
			return fmt.Errorf("PostgreSQL ping failed: %w", err)
		}
	}

	if db.Redis != nil {
		if err := db.Redis.Ping(ctx).Err(); err != nil {
			return fmt.Errorf("redis ping failed: %w", err)
		}
	}

	return nil
}

func (db *DB) GetRedis() *redis.Client    { return db.Redis }
func (db *DB) GetPostgreSQL() *gorm.DB    { return db.PostgreSQL }
