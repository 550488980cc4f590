package dao

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type Coupon struct {
	ID uint `gorm:"primaryKey"`

	Code          string          `gorm:"uniqueIndex:idx_coupons_code;size:64;not null"`
	DiscountType  string          `gorm:"size:16;not null"`
	DiscountValue decimal.Decimal `gorm:"type:decimal(20,2);not null"`
	MaxUses       *int
	UsedCount     int   `gorm:"not null;default:0"`
	ProductID     *uint `gorm:"index"`
	ExpiresAt     *time.Time
	IsActive      bool `gorm:"not null"`

	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
}

type CouponDAO struct {
	db *gorm.DB
}

func NewCouponDAO(db *gorm.DB) *CouponDAO {
	return &CouponDAO{
		db: db,
	}
}

func (d *CouponDAO) Insert(ctx context.Context, coupon Coupon) (Coupon, error) {
	result := d.db.WithContext(ctx).Create(&coupon)
	if result.Error != nil {
		if isUniqueViolation(result.Error, couponCodeIndex, "coupons.code") {
			return Coupon{}, ErrCouponExists
		}

		return Coupon{}, result.Error
	}

	return coupon, nil
}

func (d *CouponDAO) FindByCode(ctx context.Context, code string) (Coupon, error) {
	return d.findByCode(d.db.WithContext(ctx), code)
}

// FindByCodeForUpdate holds a row lock on the coupon until the transaction
// ends, so concurrent placements read used_count one at a time.
func (d *CouponDAO) FindByCodeForUpdate(ctx context.Context, code string) (Coupon, error) {
	return d.findByCode(forUpdate(d.db.WithContext(ctx), ""), code)
}

func (d *CouponDAO) findByCode(db *gorm.DB, code string) (Coupon, error) {
	var coupon Coupon

	result := db.First(&coupon, "code = ?", code)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return Coupon{}, ErrCouponNotFound
		}

		return Coupon{}, result.Error
	}

	return coupon, nil
}

// IncrementUsage bumps used_count unless the cap is already reached. It
// reports whether a use was recorded.
func (d *CouponDAO) IncrementUsage(ctx context.Context, code string) (bool, error) {
	result := d.db.WithContext(ctx).Model(&Coupon{}).
		Where("code = ? AND (max_uses IS NULL OR used_count < max_uses)", code).
		Updates(map[string]any{
			"used_count": gorm.Expr("used_count + 1"),
			"updated_at": time.Now(),
		})
	if result.Error != nil {
		return false, result.Error
	}

	return result.RowsAffected == 1, nil
}
