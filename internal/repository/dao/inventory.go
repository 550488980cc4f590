package dao

import (
	"context"
	"time"

	"gorm.io/gorm"
)

// StockItem is one deliverable unit. ClaimKey is set when a placement
// reserves the row and stays set once the row is sold.
type StockItem struct {
	ID uint `gorm:"primaryKey"`

	ProductOptionID uint    `gorm:"index:idx_stock_items_available,priority:1;not null"`
	Content         string  `gorm:"type:text;not null"`
	IsSold          bool    `gorm:"index:idx_stock_items_available,priority:2;not null;default:false"`
	ClaimKey        *string `gorm:"index;size:36"`
	SoldToOrderID   *uint   `gorm:"index"`
	SoldAt          *time.Time

	CreatedAt time.Time `gorm:"not null"`
}

type InventoryDAO struct {
	db *gorm.DB
}

func NewInventoryDAO(db *gorm.DB) *InventoryDAO {
	return &InventoryDAO{
		db: db,
	}
}

func (d *InventoryDAO) InsertBatch(ctx context.Context, items []StockItem) ([]StockItem, error) {
	if len(items) == 0 {
		return nil, nil
	}

	result := d.db.WithContext(ctx).CreateInBatches(&items, 100)
	if result.Error != nil {
		return nil, result.Error
	}

	return items, nil
}

func (d *InventoryDAO) available(ctx context.Context, optionID uint) *gorm.DB {
	return d.db.WithContext(ctx).Model(&StockItem{}).
		Where("product_option_id = ? AND is_sold = ? AND claim_key IS NULL", optionID, false)
}

func (d *InventoryDAO) CountAvailable(ctx context.Context, optionID uint) (int64, error) {
	var count int64

	if err := d.available(ctx, optionID).Count(&count).Error; err != nil {
		return 0, err
	}

	return count, nil
}

// Claim stamps up to quantity available rows with key and returns the rows it
// actually won. Callers compare the length against quantity.
func (d *InventoryDAO) Claim(ctx context.Context, optionID uint, quantity int, key string) ([]StockItem, error) {
	var ids []uint

	result := forUpdate(d.available(ctx, optionID), "SKIP LOCKED").
		Order("id").
		Limit(quantity).
		Pluck("id", &ids)
	if result.Error != nil {
		return nil, result.Error
	}
	if len(ids) == 0 {
		return nil, nil
	}

	result = d.db.WithContext(ctx).Model(&StockItem{}).
		Where("id IN ? AND is_sold = ? AND claim_key IS NULL", ids, false).
		Update("claim_key", key)
	if result.Error != nil {
		return nil, result.Error
	}

	var items []StockItem
	result = d.db.WithContext(ctx).Where("claim_key = ?", key).Order("id").Find(&items)
	if result.Error != nil {
		return nil, result.Error
	}

	return items, nil
}

// MarkSold binds every row claimed under key to orderID.
func (d *InventoryDAO) MarkSold(ctx context.Context, key string, orderID uint, at time.Time) (int64, error) {
	result := d.db.WithContext(ctx).Model(&StockItem{}).
		Where("claim_key = ? AND is_sold = ?", key, false).
		Updates(map[string]any{
			"is_sold":          true,
			"sold_to_order_id": orderID,
			"sold_at":          at,
		})
	if result.Error != nil {
		return 0, result.Error
	}

	return result.RowsAffected, nil
}

func (d *InventoryDAO) FindByOrderID(ctx context.Context, orderID uint) ([]StockItem, error) {
	var items []StockItem

	result := d.db.WithContext(ctx).Where("sold_to_order_id = ?", orderID).Order("id").Find(&items)
	if result.Error != nil {
		return nil, result.Error
	}

	return items, nil
}
