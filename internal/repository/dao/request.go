package dao

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const statusPending = "pending"

type RechargeRequest struct {
	ID uint `gorm:"primaryKey"`

	TokenID    uint            `gorm:"index;not null"`
	Amount     decimal.Decimal `gorm:"type:decimal(20,2);not null"`
	ProofImage string          `gorm:"not null"`
	Status     string          `gorm:"size:16;index;not null"`
	Note       string          `gorm:"type:text"`
	ReviewedAt *time.Time

	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
}

// RefundRequest allows one row per order number whatever its status.
type RefundRequest struct {
	ID uint `gorm:"primaryKey"`

	OrderNumber string              `gorm:"uniqueIndex:idx_refund_requests_order_number;size:32;not null"`
	OrderID     uint                `gorm:"not null"`
	TokenID     uint                `gorm:"index;not null"`
	Reason      string              `gorm:"type:text;not null"`
	Status      string              `gorm:"size:16;index;not null"`
	Amount      decimal.NullDecimal `gorm:"type:decimal(20,2)"`
	Note        string              `gorm:"type:text"`
	ReviewedAt  *time.Time

	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
}

type RechargeDAO struct {
	db *gorm.DB
}

func NewRechargeDAO(db *gorm.DB) *RechargeDAO {
	return &RechargeDAO{
		db: db,
	}
}

func (d *RechargeDAO) Insert(ctx context.Context, req RechargeRequest) (RechargeRequest, error) {
	result := d.db.WithContext(ctx).Create(&req)
	if result.Error != nil {
		return RechargeRequest{}, result.Error
	}

	return req, nil
}

func (d *RechargeDAO) FindByID(ctx context.Context, id uint) (RechargeRequest, error) {
	var req RechargeRequest

	result := d.db.WithContext(ctx).First(&req, id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return RechargeRequest{}, ErrRechargeNotFound
		}

		return RechargeRequest{}, result.Error
	}

	return req, nil
}

// Resolve flips a pending request; zero affected rows means it was already reviewed.
func (d *RechargeDAO) Resolve(ctx context.Context, id uint, status, note string, at time.Time) (int64, error) {
	result := d.db.WithContext(ctx).Model(&RechargeRequest{}).
		Where("id = ? AND status = ?", id, statusPending).
		Updates(map[string]any{
			"status":      status,
			"note":        note,
			"reviewed_at": at,
			"updated_at":  at,
		})
	if result.Error != nil {
		return 0, result.Error
	}

	return result.RowsAffected, nil
}

type RefundDAO struct {
	db *gorm.DB
}

func NewRefundDAO(db *gorm.DB) *RefundDAO {
	return &RefundDAO{
		db: db,
	}
}

func (d *RefundDAO) Insert(ctx context.Context, req RefundRequest) (RefundRequest, error) {
	result := d.db.WithContext(ctx).Create(&req)
	if result.Error != nil {
		if isUniqueViolation(result.Error, refundOrderIndex, "refund_requests.order_number") {
			return RefundRequest{}, ErrRefundExists
		}

		return RefundRequest{}, result.Error
	}

	return req, nil
}

func (d *RefundDAO) FindByID(ctx context.Context, id uint) (RefundRequest, error) {
	var req RefundRequest

	result := d.db.WithContext(ctx).First(&req, id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return RefundRequest{}, ErrRefundNotFound
		}

		return RefundRequest{}, result.Error
	}

	return req, nil
}

func (d *RefundDAO) FindByOrderNumber(ctx context.Context, number string) (RefundRequest, error) {
	var req RefundRequest

	result := d.db.WithContext(ctx).First(&req, "order_number = ?", number)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return RefundRequest{}, ErrRefundNotFound
		}

		return RefundRequest{}, result.Error
	}

	return req, nil
}

func (d *RefundDAO) Resolve(ctx context.Context, id uint, status, note string, amount decimal.NullDecimal, at time.Time) (int64, error) {
	result := d.db.WithContext(ctx).Model(&RefundRequest{}).
		Where("id = ? AND status = ?", id, statusPending).
		Updates(map[string]any{
			"status":      status,
			"note":        note,
			"amount":      amount,
			"reviewed_at": at,
			"updated_at":  at,
		})
	if result.Error != nil {
		return 0, result.Error
	}

	return result.RowsAffected, nil
}
