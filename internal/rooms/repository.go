package rooms

import (
	"context"
	"errors"
	"fmt"

	"hotelcore/internal/shared/apperror"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Repository interface {
	Get(ctx context.Context, id uuid.UUID) (*Room, error)
	ListByHotel(ctx context.Context, hotelID uuid.UUID) ([]Room, error)
	Create(ctx context.Context, room *Room) error
	Update(ctx context.Context, room *Room) error
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Get(ctx context.Context, id uuid.UUID) (*Room, error) {
	var room Room
	err := r.db.WithContext(ctx).First(&room, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperror.NotFound(fmt.Sprintf("room %s not found", id))
	}
	if err != nil {
		return nil, fmt.Errorf("get room: %w", err)
	}
	return &room, nil
}

func (r *repository) ListByHotel(ctx context.Context, hotelID uuid.UUID) ([]Room, error) {
	var list []Room
	if err := r.db.WithContext(ctx).Where("hotel_id = ?", hotelID).Find(&list).Error; err != nil {
		return nil, fmt.Errorf("list rooms by hotel: %w", err)
	}
	return list, nil
}

func (r *repository) Create(ctx context.Context, room *Room) error {
	if err := r.db.WithContext(ctx).Create(room).Error; err != nil {
		return fmt.Errorf("create room: %w", err)
	}
	return nil
}

func (r *repository) Update(ctx context.Context, room *Room) error {
	if err := r.db.WithContext(ctx).Save(room).Error; err != nil {
		return fmt.Errorf("update room: %w", err)
	}
	return nil
}
