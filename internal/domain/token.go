package domain

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

type Token struct {
	ID        uint            `json:"id"`
	Value     string          `json:"-"`
	Balance   decimal.Decimal `json:"balance"`
	IsBlocked bool            `json:"is_blocked"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// NormalizeTokenValue is the canonical stored form; token lookups are case-insensitive.
func NormalizeTokenValue(value string) string {
	return strings.ToUpper(strings.TrimSpace(value))
}

type MutationReason string

const (
	MutationOrderPlaced      MutationReason = "order_placed"
	MutationOrderCancelled   MutationReason = "order_cancelled"
	MutationOrderRejected    MutationReason = "order_rejected"
	MutationRechargeApproved MutationReason = "recharge_approved"
	MutationRefundApproved   MutationReason = "refund_approved"
	MutationAdminAdjustment  MutationReason = "admin_adjustment"
)

// BalanceMutation is one journal entry of the token ledger. Delta is negative
// for debits.
type BalanceMutation struct {
	ID        uint            `json:"id"`
	TokenID   uint            `json:"token_id"`
	Delta     decimal.Decimal `json:"delta"`
	Reason    MutationReason  `json:"reason"`
	RefType   string          `json:"ref_type"`
	RefID     uint            `json:"ref_id"`
	CreatedAt time.Time       `json:"created_at"`
}

func (m BalanceMutation) IsDebit() bool {
	return m.Delta.IsNegative()
}

// Amount is the absolute value of Delta.
func (m BalanceMutation) Amount() decimal.Decimal {
	return m.Delta.Abs()
}
