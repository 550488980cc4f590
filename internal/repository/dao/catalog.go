package dao

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type ProductOption struct {
	ID uint `gorm:"primaryKey"`

	ProductID           uint            `gorm:"index;not null"`
	Name                string          `gorm:"not null"`
	Price               decimal.Decimal `gorm:"type:decimal(20,2);not null"`
	DeliveryMode        string          `gorm:"size:32;not null"`
	PurchaseLimit       *int
	MaxQuantityPerOrder *int
	IsActive            bool `gorm:"not null"`

	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
}

type CatalogDAO struct {
	db *gorm.DB
}

func NewCatalogDAO(db *gorm.DB) *CatalogDAO {
	return &CatalogDAO{
		db: db,
	}
}

func (d *CatalogDAO) Insert(ctx context.Context, option ProductOption) (ProductOption, error) {
	result := d.db.WithContext(ctx).Create(&option)
	if result.Error != nil {
		return ProductOption{}, result.Error
	}

	return option, nil
}

func (d *CatalogDAO) FindByID(ctx context.Context, id uint) (ProductOption, error) {
	var option ProductOption

	result := d.db.WithContext(ctx).First(&option, id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return ProductOption{}, ErrOptionNotFound
		}

		return ProductOption{}, result.Error
	}

	return option, nil
}
