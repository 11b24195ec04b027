package hotels

import (
	"context"
	"errors"
	"fmt"

	"hotelcore/internal/shared/apperror"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Repository interface {
	Get(ctx context.Context, id uuid.UUID) (*Hotel, error)
	Create(ctx context.Context, hotel *Hotel) error
	Update(ctx context.Context, hotel *Hotel) error
	List(ctx context.Context, limit, offset int) ([]Hotel, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Get(ctx context.Context, id uuid.UUID) (*Hotel, error) {
	var hotel Hotel
	err := r.db.WithContext(ctx).First(&hotel, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperror.NotFound(fmt.Sprintf("hotel %s not found", id))
	}
	if err != nil {
		return nil, fmt.Errorf("get hotel: %w", err)
	}
	return &hotel, nil
}

func (r *repository) Create(ctx context.Context, hotel *Hotel) error {
	if err := r.db.WithContext(ctx).Create(hotel).Error; err != nil {
		return fmt.Errorf("create hotel: %w", err)
	}
	return nil
}

func (r *repository) Update(ctx context.Context, hotel *Hotel) error {
	if err := r.db.WithContext(ctx).Save(hotel).Error; err != nil {
		return fmt.Errorf("update hotel: %w", err)
	}
	return nil
}

func (r *repository) List(ctx context.Context, limit, offset int) ([]Hotel, error) {
	var hotels []Hotel
	if err := r.db.WithContext(ctx).Limit(limit).Offset(offset).Find(&hotels).Error; err != nil {
		return nil, fmt.Errorf("list hotels: %w", err)
	}
	return hotels, nil
}
