package domain

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

type DiscountType string

const (
	DiscountPercentage DiscountType = "percentage"
	DiscountFixed      DiscountType = "fixed"
)

var hundred = decimal.NewFromInt(100)

type Coupon struct {
	ID            uint            `json:"id"`
	Code          string          `json:"code"`
	DiscountType  DiscountType    `json:"discount_type"`
	DiscountValue decimal.Decimal `json:"discount_value"`
	MaxUses       *int            `json:"max_uses,omitempty"`
	UsedCount     int             `json:"used_count"`
	ProductID     *uint           `json:"product_id,omitempty"`
	ExpiresAt     *time.Time      `json:"expires_at,omitempty"`
	IsActive      bool            `json:"is_active"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

func NormalizeCouponCode(code string) string {
	return strings.TrimSpace(code)
}

// AppliesTo reports whether the coupon may discount an order for productID at now.
func (c Coupon) AppliesTo(productID uint, now time.Time) bool {
	if !c.IsActive {
		return false
	}
	if c.ExpiresAt != nil && !now.Before(*c.ExpiresAt) {
		return false
	}
	if c.MaxUses != nil && c.UsedCount >= *c.MaxUses {
		return false
	}
	if c.ProductID != nil && *c.ProductID != productID {
		return false
	}
	return true
}

// Discount is never negative and never exceeds base.
func (c Coupon) Discount(base decimal.Decimal) decimal.Decimal {
	var discount decimal.Decimal
	switch c.DiscountType {
	case DiscountFixed:
		discount = c.DiscountValue
	case DiscountPercentage:
		discount = base.Mul(c.DiscountValue).Div(hundred)
	default:
		return decimal.Zero
	}

	discount = RoundMoney(discount)
	if discount.IsNegative() {
		return decimal.Zero
	}
	if discount.GreaterThan(base) {
		return base
	}
	return discount
}
