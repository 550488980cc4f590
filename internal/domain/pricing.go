package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// RoundMoney rounds to currency precision.
func RoundMoney(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}

type Quote struct {
	UnitPrice  decimal.Decimal `json:"unit_price"`
	Quantity   int             `json:"quantity"`
	Base       decimal.Decimal `json:"base_price"`
	Discount   decimal.Decimal `json:"discount_amount"`
	Total      decimal.Decimal `json:"total_price"`
	CouponCode *string         `json:"coupon_code,omitempty"`
}

// PriceOrder computes base = price × quantity and applies coupon when it is
// usable for the option's product; an unusable coupon leaves the price unchanged.
func PriceOrder(option ProductOption, quantity int, coupon *Coupon, now time.Time) Quote {
	unit := RoundMoney(option.Price)
	base := RoundMoney(unit.Mul(decimal.NewFromInt(int64(quantity))))

	q := Quote{
		UnitPrice: unit,
		Quantity:  quantity,
		Base:      base,
		Discount:  decimal.Zero,
		Total:     base,
	}

	if coupon != nil && coupon.AppliesTo(option.ProductID, now) {
		code := coupon.Code
		q.Discount = coupon.Discount(base)
		q.Total = base.Sub(q.Discount)
		q.CouponCode = &code
	}

	return q
}
