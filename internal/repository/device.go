package repository

import (
	"context"
	"fmt"

	"github.com/yizeng/gab/gin/gorm/storefront/internal/domain"
	"github.com/yizeng/gab/gin/gorm/storefront/internal/repository/dao"
)

type DeviceDAO interface {
	Insert(ctx context.Context, purchase dao.DevicePurchase) (dao.DevicePurchase, error)
	SumQuantity(ctx context.Context, fingerprint string, optionID uint) (int64, error)
}

type DeviceRepository struct {
	dao DeviceDAO
}

func NewDeviceRepository(dao DeviceDAO) *DeviceRepository {
	return &DeviceRepository{
		dao: dao,
	}
}

func (r *DeviceRepository) Record(ctx context.Context, purchase domain.DevicePurchase) error {
	_, err := r.dao.Insert(ctx, dao.DevicePurchase{
		Fingerprint:     purchase.Fingerprint,
		ProductOptionID: purchase.ProductOptionID,
		Quantity:        purchase.Quantity,
		OrderID:         purchase.OrderID,
	})
	if err != nil {
		return fmt.Errorf("r.dao.Insert -> %w", err)
	}

	return nil
}

func (r *DeviceRepository) Purchased(ctx context.Context, fingerprint string, optionID uint) (int, error) {
	total, err := r.dao.SumQuantity(ctx, fingerprint, optionID)
	if err != nil {
		return 0, fmt.Errorf("r.dao.SumQuantity -> %w", err)
	}

	return int(total), nil
}
