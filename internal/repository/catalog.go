package repository

import (
	"context"
	"fmt"

	"github.com/yizeng/gab/gin/gorm/storefront/internal/domain"
	"github.com/yizeng/gab/gin/gorm/storefront/internal/repository/dao"
)

var ErrOptionNotFound = dao.ErrOptionNotFound

type CatalogDAO interface {
	Insert(ctx context.Context, option dao.ProductOption) (dao.ProductOption, error)
	FindByID(ctx context.Context, id uint) (dao.ProductOption, error)
}

type CatalogRepository struct {
	dao CatalogDAO
}

func NewCatalogRepository(dao CatalogDAO) *CatalogRepository {
	return &CatalogRepository{
		dao: dao,
	}
}

func (r *CatalogRepository) CreateOption(ctx context.Context, option domain.ProductOption) (domain.ProductOption, error) {
	created, err := r.dao.Insert(ctx, dao.ProductOption{
		ProductID:           option.ProductID,
		Name:                option.Name,
		Price:               domain.RoundMoney(option.Price),
		DeliveryMode:        string(option.DeliveryMode),
		PurchaseLimit:       option.PurchaseLimit,
		MaxQuantityPerOrder: option.MaxQuantityPerOrder,
		IsActive:            option.IsActive,
	})
	if err != nil {
		return domain.ProductOption{}, fmt.Errorf("r.dao.Insert -> %w", err)
	}

	return r.daoToDomain(created), nil
}

func (r *CatalogRepository) FindOption(ctx context.Context, id uint) (domain.ProductOption, error) {
	found, err := r.dao.FindByID(ctx, id)
	if err != nil {
		return domain.ProductOption{}, fmt.Errorf("r.dao.FindByID -> %w", err)
	}

	return r.daoToDomain(found), nil
}

func (r *CatalogRepository) daoToDomain(o dao.ProductOption) domain.ProductOption {
	return domain.ProductOption{
		ID:                  o.ID,
		ProductID:           o.ProductID,
		Name:                o.Name,
		Price:               domain.RoundMoney(o.Price),
		DeliveryMode:        domain.DeliveryMode(o.DeliveryMode),
		PurchaseLimit:       o.PurchaseLimit,
		MaxQuantityPerOrder: o.MaxQuantityPerOrder,
		IsActive:            o.IsActive,
		CreatedAt:           o.CreatedAt,
		UpdatedAt:           o.UpdatedAt,
	}
}
