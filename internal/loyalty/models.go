// Package loyalty implements the Loyalty Engine (§4.7): point accrual, tier
// evaluation, expiry scanning, and campaign fan-out.
package loyalty

import (
	"time"

	"hotelcore/internal/shared/jsonb"

	"github.com/google/uuid"
)

type Tier string

const (
	TierBronze   Tier = "BRONZE"
	TierSilver   Tier = "SILVER"
	TierGold     Tier = "GOLD"
	TierPlatinum Tier = "PLATINUM"
	TierDiamond  Tier = "DIAMOND"
)

type AccountStatus string

const (
	AccountEnrolled  AccountStatus = "ENROLLED"
	AccountActive    AccountStatus = "ACTIVE"
	AccountSuspended AccountStatus = "SUSPENDED"
)

// Account is the per-user loyalty state (§3 LoyaltyAccount).
type Account struct {
	UserID         uuid.UUID     `json:"user_id" gorm:"primaryKey;type:uuid"`
	Tier           Tier          `json:"tier" gorm:"not null;default:'BRONZE'"`
	CurrentPoints  int64         `json:"current_points" gorm:"not null;default:0;check:current_points >= 0"`
	LifetimePoints int64         `json:"lifetime_points" gorm:"not null;default:0"`
	Status         AccountStatus `json:"status" gorm:"not null;default:'ENROLLED'"`
	EnrolledAt     time.Time     `json:"enrolled_at" gorm:"autoCreateTime"`
	UpdatedAt      time.Time     `json:"updated_at" gorm:"autoUpdateTime"`
}

func (Account) TableName() string { return "loyalty_accounts" }

type TransactionStatus string

const (
	TransactionCompleted TransactionStatus = "COMPLETED"
	TransactionReversed  TransactionStatus = "REVERSED"
	TransactionExpired   TransactionStatus = "EXPIRED"
)

type TransactionReason string

const (
	ReasonAccrual  TransactionReason = "ACCRUAL"
	ReasonRedeem   TransactionReason = "REDEEM"
	ReasonExpiry   TransactionReason = "EXPIRED"
	ReasonBonus    TransactionReason = "CAMPAIGN_BONUS"
	ReasonReversal TransactionReason = "REVERSAL"
)

// Transaction is append-only; a reversal or expiry is a new offsetting row,
// never an edit of an existing one (§3 lifecycle).
type Transaction struct {
	ID               uuid.UUID         `json:"id" gorm:"primaryKey;type:uuid;default:uuid_generate_v4()"`
	UserID           uuid.UUID         `json:"user_id" gorm:"not null;type:uuid;index"`
	PointsAmount     int64             `json:"points_amount" gorm:"not null"` // signed
	Reason           TransactionReason `json:"reason" gorm:"not null"`
	RelatedBookingID *uuid.UUID        `json:"related_booking_id,omitempty" gorm:"type:uuid"`
	Status           TransactionStatus `json:"status" gorm:"not null;default:'COMPLETED'"`
	IssuedAt         time.Time         `json:"issued_at" gorm:"not null;autoCreateTime"`
	ExpiresAt        *time.Time        `json:"expires_at,omitempty"`
}

func (Transaction) TableName() string { return "loyalty_transactions" }

type CampaignType string

const (
	CampaignBonusMultiplier CampaignType = "BONUS_MULTIPLIER"
	CampaignBonusPoints     CampaignType = "BONUS_POINTS"
	CampaignSpecialOffer    CampaignType = "SPECIAL_OFFER"
)

// Campaign targets a set of tiers (and optionally specific hotels) for a
// fan-out announcement over the Pub/Sub Hub (§4.7).
type Campaign struct {
	ID            uuid.UUID                  `json:"id" gorm:"primaryKey;type:uuid;default:uuid_generate_v4()"`
	EligibleTiers jsonb.Field[[]string]      `json:"eligible_tiers" gorm:"type:jsonb"`
	HotelIDs      jsonb.Field[[]uuid.UUID]   `json:"hotel_ids,omitempty" gorm:"type:jsonb"`
	Type          CampaignType               `json:"type" gorm:"not null"`
	ValidFrom     time.Time                  `json:"valid_from" gorm:"not null"`
	ValidUntil    time.Time                  `json:"valid_until" gorm:"not null"`
	CreatedAt     time.Time                  `json:"created_at" gorm:"autoCreateTime"`
}

func (Campaign) TableName() string { return "loyalty_campaigns" }

func (c *Campaign) Active(at time.Time) bool {
	return !at.Before(c.ValidFrom) && at.Before(c.ValidUntil)
}

func (c *Campaign) EligibleFor(tier Tier) bool {
	for _, t := range c.EligibleTiers.Data {
		if Tier(t) == tier {
			return true
		}
	}
	return false
}
