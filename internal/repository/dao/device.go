package dao

import (
	"context"
	"time"

	"gorm.io/gorm"
)

type DevicePurchase struct {
	ID uint `gorm:"primaryKey"`

	Fingerprint     string `gorm:"index:idx_device_purchases_lookup,priority:1;size:128;not null"`
	ProductOptionID uint   `gorm:"index:idx_device_purchases_lookup,priority:2;not null"`
	Quantity        int    `gorm:"not null"`
	OrderID         uint   `gorm:"index;not null"`

	CreatedAt time.Time `gorm:"not null"`
}

type DeviceDAO struct {
	db *gorm.DB
}

func NewDeviceDAO(db *gorm.DB) *DeviceDAO {
	return &DeviceDAO{
		db: db,
	}
}

func (d *DeviceDAO) Insert(ctx context.Context, purchase DevicePurchase) (DevicePurchase, error) {
	result := d.db.WithContext(ctx).Create(&purchase)
	if result.Error != nil {
		return DevicePurchase{}, result.Error
	}

	return purchase, nil
}

func (d *DeviceDAO) SumQuantity(ctx context.Context, fingerprint string, optionID uint) (int64, error) {
	var total int64

	result := d.db.WithContext(ctx).Model(&DevicePurchase{}).
		Where("fingerprint = ? AND product_option_id = ?", fingerprint, optionID).
		Select("COALESCE(SUM(quantity), 0)").
		Scan(&total)
	if result.Error != nil {
		return 0, result.Error
	}

	return total, nil
}
