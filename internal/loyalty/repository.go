package loyalty

import (
	"context"
	"errors"
	"time"

	"hotelcore/internal/shared/apperror"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Repository interface {
	GetAccount(ctx context.Context, userID uuid.UUID) (*Account, error)
	UpsertAccount(ctx context.Context, account *Account) error
	CreateTransaction(ctx context.Context, tx *Transaction) error
	TransactionsExpiringBetween(ctx context.Context, from, to time.Time) ([]Transaction, error)
	TransactionsExpiredAsOf(ctx context.Context, asOf time.Time) ([]Transaction, error)
	GetCampaign(ctx context.Context, id uuid.UUID) (*Campaign, error)
	ListActiveCampaigns(ctx context.Context, asOf time.Time) ([]Campaign, error)
	WithTx(tx *gorm.DB) Repository
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	return &repository{db: tx}
}

func (r *repository) GetAccount(ctx context.Context, userID uuid.UUID) (*Account, error) {
	var a Account
	if err := r.db.WithContext(ctx).First(&a, "user_id = ?", userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NotFound("loyalty account not found")
		}
		return nil, err
	}
	return &a, nil
}

// UpsertAccount enrolls the account on first touch (§3 state machine:
// ENROLLED on first transaction) or overwrites the existing row otherwise.
func (r *repository) UpsertAccount(ctx context.Context, account *Account) error {
	return r.db.WithContext(ctx).Save(account).Error
}

func (r *repository) CreateTransaction(ctx context.Context, tx *Transaction) error {
	if tx.ID == uuid.Nil {
		tx.ID = uuid.New()
	}
	return r.db.WithContext(ctx).Create(tx).Error
}

func (r *repository) TransactionsExpiringBetween(ctx context.Context, from, to time.Time) ([]Transaction, error) {
	var txs []Transaction
	err := r.db.WithContext(ctx).
		Where("status = ? AND points_amount > 0 AND expires_at BETWEEN ? AND ?", TransactionCompleted, from, to).
		Find(&txs).Error
	return txs, err
}

func (r *repository) TransactionsExpiredAsOf(ctx context.Context, asOf time.Time) ([]Transaction, error) {
	var txs []Transaction
	err := r.db.WithContext(ctx).
		Where("status = ? AND points_amount > 0 AND expires_at <= ?", TransactionCompleted, asOf).
		Find(&txs).Error
	return txs, err
}

func (r *repository) GetCampaign(ctx context.Context, id uuid.UUID) (*Campaign, error) {
	var c Campaign
	if err := r.db.WithContext(ctx).First(&c, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NotFound("campaign not found")
		}
		return nil, err
	}
	return &c, nil
}

func (r *repository) ListActiveCampaigns(ctx context.Context, asOf time.Time) ([]Campaign, error) {
	var campaigns []Campaign
	err := r.db.WithContext(ctx).
		Where("valid_from <= ? AND valid_until > ?", asOf, asOf).
		Find(&campaigns).Error
	return campaigns, err
}
