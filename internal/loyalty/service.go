package loyalty

import (
	"context"
	"fmt"
	"math"
	"time"

	"hotelcore/internal/shared/apperror"
	"hotelcore/internal/shared/config"
	"hotelcore/internal/shared/logger"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const pointExpiryMonths = 24

// EventPublisher is satisfied by the realtime Hub / eventbus producer.
// Kept local so this package never imports internal/realtime or
// internal/eventbus directly.
type EventPublisher interface {
	PublishLoyaltyEvent(ctx context.Context, eventType string, userID uuid.UUID, payload map[string]interface{}) error
}

type RedemptionOption string

const (
	OptionDiscount  RedemptionOption = "DISCOUNT"
	OptionUpgrade   RedemptionOption = "UPGRADE"
	OptionFreeNight RedemptionOption = "FREE_NIGHT"
)

type Service interface {
	Accrue(ctx context.Context, userID uuid.UUID, bookingID uuid.UUID, totalPrice float64) (*Transaction, error)
	Redeem(ctx context.Context, userID uuid.UUID, option RedemptionOption, points int64) (*Transaction, error)
	RunExpiryScan(ctx context.Context, now time.Time) (expired, alerted int, err error)
	BroadcastCampaign(ctx context.Context, campaign *Campaign) error
}

type service struct {
	db       *gorm.DB
	repo     Repository
	events   EventPublisher
	defaults config.HotelDefaults
	log      *logger.Logger
}

func NewService(db *gorm.DB, repo Repository, events EventPublisher, defaults config.HotelDefaults, log *logger.Logger) Service {
	return &service{db: db, repo: repo, events: events, defaults: defaults, log: log}
}

// Accrue implements §4.7: on a booking reaching COMPLETED, award points at
// the account's current tier multiplier, append the transaction, then
// re-evaluate tier.
func (s *service) Accrue(ctx context.Context, userID uuid.UUID, bookingID uuid.UUID, totalPrice float64) (*Transaction, error) {
	if totalPrice <= 0 {
		return nil, apperror.Invalid("total price must be positive to accrue points")
	}

	var tx *Transaction
	err := s.db.WithContext(ctx).Transaction(func(dbtx *gorm.DB) error {
		txRepo := s.repo.WithTx(dbtx)

		account, err := s.getOrEnroll(ctx, txRepo, userID)
		if err != nil {
			return err
		}

		points := int64(math.Round(totalPrice * tierMultiplier(account.Tier)))
		expiresAt := time.Now().AddDate(0, pointExpiryMonths, 0)

		t := &Transaction{
			ID:               uuid.New(),
			UserID:           userID,
			PointsAmount:     points,
			Reason:           ReasonAccrual,
			RelatedBookingID: &bookingID,
			Status:           TransactionCompleted,
			IssuedAt:         time.Now(),
			ExpiresAt:        &expiresAt,
		}
		if err := txRepo.CreateTransaction(ctx, t); err != nil {
			return fmt.Errorf("create accrual transaction: %w", err)
		}

		account.CurrentPoints += points
		account.LifetimePoints += points
		account.Status = AccountActive

		previousTier := account.Tier
		account.Tier = s.evaluateTier(account.LifetimePoints, previousTier)

		if err := txRepo.UpsertAccount(ctx, account); err != nil {
			return fmt.Errorf("persist account after accrual: %w", err)
		}

		tx = t

		if account.Tier != previousTier {
			s.emitTierUpgraded(ctx, userID, previousTier, account.Tier)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.LogLoyaltyTransaction(ctx, userID.String(), string(ReasonAccrual), int(tx.PointsAmount))
	if err := s.events.PublishLoyaltyEvent(ctx, "loyalty-points-earned", userID, map[string]interface{}{
		"points": tx.PointsAmount, "bookingId": bookingID,
	}); err != nil {
		s.log.ErrorWithContext(ctx, "publish loyalty-points-earned failed", err, map[string]interface{}{"user_id": userID.String()})
	}

	return tx, nil
}

// Redeem implements §4.7's three redemption options, atomically.
func (s *service) Redeem(ctx context.Context, userID uuid.UUID, option RedemptionOption, points int64) (*Transaction, error) {
	if points <= 0 {
		return nil, apperror.Invalid("redemption amount must be positive")
	}

	var tx *Transaction
	err := s.db.WithContext(ctx).Transaction(func(dbtx *gorm.DB) error {
		txRepo := s.repo.WithTx(dbtx)

		account, err := txRepo.GetAccount(ctx, userID)
		if err != nil {
			return err
		}

		if err := validateRedemption(option, points, account.Tier); err != nil {
			return err
		}
		if account.CurrentPoints < points {
			return apperror.Conflict("insufficient points for redemption")
		}

		t := &Transaction{
			ID:           uuid.New(),
			UserID:       userID,
			PointsAmount: -points,
			Reason:       ReasonRedeem,
			Status:       TransactionCompleted,
			IssuedAt:     time.Now(),
		}
		if err := txRepo.CreateTransaction(ctx, t); err != nil {
			return fmt.Errorf("create redemption transaction: %w", err)
		}

		account.CurrentPoints -= points
		if err := txRepo.UpsertAccount(ctx, account); err != nil {
			return fmt.Errorf("persist account after redemption: %w", err)
		}

		tx = t
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.LogLoyaltyTransaction(ctx, userID.String(), string(ReasonRedeem), int(-points))
	if err := s.events.PublishLoyaltyEvent(ctx, "loyalty-points-redeemed", userID, map[string]interface{}{
		"points": points, "option": option,
	}); err != nil {
		s.log.ErrorWithContext(ctx, "publish loyalty-points-redeemed failed", err, map[string]interface{}{"user_id": userID.String()})
	}

	return tx, nil
}

func validateRedemption(option RedemptionOption, points int64, tier Tier) error {
	switch option {
	case OptionDiscount:
		if points < 100 {
			return apperror.Invalid("discount redemption requires at least 100 points")
		}
		if points > 5000 {
			return apperror.Invalid("discount redemption capped at 5000 points")
		}
	case OptionUpgrade:
		if points < 1000 {
			return apperror.Invalid("upgrade redemption requires at least 1000 points")
		}
	case OptionFreeNight:
		if points < 5000 {
			return apperror.Invalid("free night redemption requires at least 5000 points")
		}
		if tierRank(tier) < tierRank(TierGold) {
			return apperror.Invalid("free night redemption requires GOLD tier or above")
		}
	default:
		return apperror.Invalid("unknown redemption option")
	}
	return nil
}

// RunExpiryScan implements the daily expiry scanner (§4.7): alerts for
// transactions nearing expiry, and offsetting EXPIRED entries for those
// already past it.
func (s *service) RunExpiryScan(ctx context.Context, now time.Time) (expired, alerted int, err error) {
	nearing, err := s.repo.TransactionsExpiringBetween(ctx, now, now.AddDate(0, 0, 90))
	if err != nil {
		return 0, 0, fmt.Errorf("list nearing-expiry transactions: %w", err)
	}
	for _, t := range nearing {
		urgency := expiryUrgency(now, *t.ExpiresAt)
		if err := s.events.PublishLoyaltyEvent(ctx, "loyalty-points-expiry-alert", t.UserID, map[string]interface{}{
			"points": t.PointsAmount, "expiresAt": t.ExpiresAt, "urgency": urgency,
		}); err != nil {
			s.log.ErrorWithContext(ctx, "publish expiry alert failed", err, map[string]interface{}{"user_id": t.UserID.String()})
			continue
		}
		alerted++
	}

	due, err := s.repo.TransactionsExpiredAsOf(ctx, now)
	if err != nil {
		return 0, alerted, fmt.Errorf("list expired transactions: %w", err)
	}
	for _, t := range due {
		if err := s.expireOne(ctx, t, now); err != nil {
			s.log.ErrorWithContext(ctx, "expire transaction failed", err, map[string]interface{}{"transaction_id": t.ID.String()})
			continue
		}
		expired++
	}

	return expired, alerted, nil
}

func (s *service) expireOne(ctx context.Context, t Transaction, now time.Time) error {
	return s.db.WithContext(ctx).Transaction(func(dbtx *gorm.DB) error {
		txRepo := s.repo.WithTx(dbtx)

		account, err := txRepo.GetAccount(ctx, t.UserID)
		if err != nil {
			return err
		}

		offset := &Transaction{
			ID:           uuid.New(),
			UserID:       t.UserID,
			PointsAmount: -t.PointsAmount,
			Reason:       ReasonExpiry,
			Status:       TransactionExpired,
			IssuedAt:     now,
		}
		if err := txRepo.CreateTransaction(ctx, offset); err != nil {
			return err
		}

		account.CurrentPoints -= t.PointsAmount
		if account.CurrentPoints < 0 {
			account.CurrentPoints = 0
		}
		// Tier never demotes solely from expiry (§9 open question, resolved).
		return txRepo.UpsertAccount(ctx, account)
	})
}

func expiryUrgency(now, expiresAt time.Time) string {
	remaining := expiresAt.Sub(now)
	switch {
	case remaining <= 7*24*time.Hour:
		return "critical"
	case remaining <= 14*24*time.Hour:
		return "high"
	case remaining <= 30*24*time.Hour:
		return "medium"
	default:
		return "low"
	}
}

// BroadcastCampaign fan-outs a campaign to its eligible tiers and targeted
// hotels (§4.7). Eligibility/targeting membership resolution lives in the
// Pub/Sub Hub; this just emits the semantic events.
func (s *service) BroadcastCampaign(ctx context.Context, campaign *Campaign) error {
	if err := s.events.PublishLoyaltyEvent(ctx, "campaign-update", uuid.Nil, map[string]interface{}{
		"campaignId": campaign.ID, "type": campaign.Type,
	}); err != nil {
		return fmt.Errorf("publish campaign-update: %w", err)
	}

	for _, tier := range campaign.EligibleTiers.Data {
		if err := s.events.PublishLoyaltyEvent(ctx, "campaign-opportunity", uuid.Nil, map[string]interface{}{
			"campaignId": campaign.ID, "tier": tier,
		}); err != nil {
			s.log.ErrorWithContext(ctx, "publish campaign-opportunity failed", err, map[string]interface{}{"tier": tier})
		}
	}

	for _, hotelID := range campaign.HotelIDs.Data {
		if err := s.events.PublishLoyaltyEvent(ctx, "hotel-campaign-notification", uuid.Nil, map[string]interface{}{
			"campaignId": campaign.ID, "hotelId": hotelID,
		}); err != nil {
			s.log.ErrorWithContext(ctx, "publish hotel-campaign-notification failed", err, map[string]interface{}{"hotel_id": hotelID.String()})
		}
	}

	return nil
}

func (s *service) getOrEnroll(ctx context.Context, repo Repository, userID uuid.UUID) (*Account, error) {
	account, err := repo.GetAccount(ctx, userID)
	if err == nil {
		return account, nil
	}
	if apperror.KindOf(err) != apperror.KindNotFound {
		return nil, err
	}
	account = &Account{
		UserID:         userID,
		Tier:           TierBronze,
		CurrentPoints:  0,
		LifetimePoints: 0,
		Status:         AccountEnrolled,
	}
	if err := repo.UpsertAccount(ctx, account); err != nil {
		return nil, fmt.Errorf("enroll account: %w", err)
	}
	return account, nil
}

func (s *service) evaluateTier(lifetimePoints int64, current Tier) Tier {
	next := current
	for _, candidate := range []Tier{TierSilver, TierGold, TierPlatinum, TierDiamond} {
		threshold, ok := s.defaults.LoyaltyTierThresholds[string(candidate)]
		if !ok {
			continue
		}
		if lifetimePoints >= int64(threshold) && tierRank(candidate) > tierRank(next) {
			next = candidate
		}
	}
	return next
}

func (s *service) emitTierUpgraded(ctx context.Context, userID uuid.UUID, from, to Tier) {
	if err := s.events.PublishLoyaltyEvent(ctx, "loyalty-tier-upgraded", userID, map[string]interface{}{
		"fromTier": from, "toTier": to,
	}); err != nil {
		s.log.ErrorWithContext(ctx, "publish loyalty-tier-upgraded failed", err, map[string]interface{}{"user_id": userID.String()})
	}
}

func tierMultiplier(tier Tier) float64 {
	switch tier {
	case TierDiamond:
		return 2.5
	case TierPlatinum:
		return 2.0
	case TierGold:
		return 1.5
	case TierSilver:
		return 1.2
	default:
		return 1.0
	}
}

func tierRank(tier Tier) int {
	switch tier {
	case TierDiamond:
		return 4
	case TierPlatinum:
		return 3
	case TierGold:
		return 2
	case TierSilver:
		return 1
	default:
		return 0
	}
}
