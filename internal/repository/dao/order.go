package dao

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Order struct {
	ID uint `gorm:"primaryKey"`

	// Null until the id is known; set in the same transaction as the insert.
	OrderNumber *string `gorm:"uniqueIndex:idx_orders_order_number;size:32"`

	TokenID           uint            `gorm:"index;not null"`
	ProductID         uint            `gorm:"not null"`
	ProductOptionID   uint            `gorm:"index;not null"`
	Quantity          int             `gorm:"not null"`
	UnitPrice         decimal.Decimal `gorm:"type:decimal(20,2);not null"`
	BasePrice         decimal.Decimal `gorm:"type:decimal(20,2);not null"`
	DiscountAmount    decimal.Decimal `gorm:"type:decimal(20,2);not null"`
	TotalPrice        decimal.Decimal `gorm:"type:decimal(20,2);not null"`
	CouponCode        *string         `gorm:"size:64"`
	DeliveryMode      string          `gorm:"size:32;not null"`
	Status            string          `gorm:"size:16;index;not null"`
	DeliveryFields    datatypes.JSON
	DeliveredContent  string  `gorm:"type:text"`
	OperatorNote      string  `gorm:"type:text"`
	DeviceFingerprint *string `gorm:"size:128"`

	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
}

type OrderDAO struct {
	db *gorm.DB
}

func NewOrderDAO(db *gorm.DB) *OrderDAO {
	return &OrderDAO{
		db: db,
	}
}

func (d *OrderDAO) Insert(ctx context.Context, order Order) (Order, error) {
	result := d.db.WithContext(ctx).Create(&order)
	if result.Error != nil {
		if isUniqueViolation(result.Error, activeOrderIndex, "orders.token_id") {
			return Order{}, ErrActiveOrderExists
		}

		return Order{}, result.Error
	}

	return order, nil
}

func (d *OrderDAO) SetOrderNumber(ctx context.Context, id uint, number string) error {
	result := d.db.WithContext(ctx).Model(&Order{}).
		Where("id = ?", id).
		Update("order_number", number)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrOrderNotFound
	}

	return nil
}

func (d *OrderDAO) FindByID(ctx context.Context, id uint) (Order, error) {
	var order Order

	result := d.db.WithContext(ctx).First(&order, id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return Order{}, ErrOrderNotFound
		}

		return Order{}, result.Error
	}

	return order, nil
}

func (d *OrderDAO) FindByNumber(ctx context.Context, number string) (Order, error) {
	var order Order

	result := d.db.WithContext(ctx).First(&order, "order_number = ?", number)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return Order{}, ErrOrderNotFound
		}

		return Order{}, result.Error
	}

	return order, nil
}

func (d *OrderDAO) FindActiveByToken(ctx context.Context, tokenID uint, statuses []string) (Order, error) {
	var order Order

	result := d.db.WithContext(ctx).
		Where("token_id = ? AND status IN ?", tokenID, statuses).
		Order("id DESC").
		First(&order)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return Order{}, ErrOrderNotFound
		}

		return Order{}, result.Error
	}

	return order, nil
}

// UpdateStatus moves the order to status only while it is in one of from.
// Zero affected rows means the guard lost.
func (d *OrderDAO) UpdateStatus(ctx context.Context, id uint, from []string, status string, fields map[string]any) (int64, error) {
	updates := map[string]any{
		"status":     status,
		"updated_at": time.Now(),
	}
	for k, v := range fields {
		updates[k] = v
	}

	result := d.db.WithContext(ctx).Model(&Order{}).
		Where("id = ? AND status IN ?", id, from).
		Updates(updates)
	if result.Error != nil {
		if isUniqueViolation(result.Error, activeOrderIndex, "orders.token_id") {
			return 0, ErrActiveOrderExists
		}

		return 0, result.Error
	}

	return result.RowsAffected, nil
}
