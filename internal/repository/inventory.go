package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/yizeng/gab/gin/gorm/storefront/internal/domain"
	"github.com/yizeng/gab/gin/gorm/storefront/internal/repository/dao"
)

type InventoryDAO interface {
	InsertBatch(ctx context.Context, items []dao.StockItem) ([]dao.StockItem, error)
	CountAvailable(ctx context.Context, optionID uint) (int64, error)
	Claim(ctx context.Context, optionID uint, quantity int, key string) ([]dao.StockItem, error)
	MarkSold(ctx context.Context, key string, orderID uint, at time.Time) (int64, error)
	FindByOrderID(ctx context.Context, orderID uint) ([]dao.StockItem, error)
}

type InventoryRepository struct {
	dao InventoryDAO
}

func NewInventoryRepository(dao InventoryDAO) *InventoryRepository {
	return &InventoryRepository{
		dao: dao,
	}
}

func (r *InventoryRepository) AddStock(ctx context.Context, optionID uint, contents []string) ([]domain.StockItem, error) {
	rows := make([]dao.StockItem, len(contents))
	for i, content := range contents {
		rows[i] = dao.StockItem{ProductOptionID: optionID, Content: content}
	}

	created, err := r.dao.InsertBatch(ctx, rows)
	if err != nil {
		return nil, fmt.Errorf("r.dao.InsertBatch -> %w", err)
	}

	return r.daosToDomain(created), nil
}

func (r *InventoryRepository) CountAvailable(ctx context.Context, optionID uint) (int, error) {
	count, err := r.dao.CountAvailable(ctx, optionID)
	if err != nil {
		return 0, fmt.Errorf("r.dao.CountAvailable -> %w", err)
	}

	return int(count), nil
}

func (r *InventoryRepository) Claim(ctx context.Context, optionID uint, quantity int, key string) ([]domain.StockItem, error) {
	claimed, err := r.dao.Claim(ctx, optionID, quantity, key)
	if err != nil {
		return nil, fmt.Errorf("r.dao.Claim -> %w", err)
	}

	return r.daosToDomain(claimed), nil
}

func (r *InventoryRepository) MarkSold(ctx context.Context, key string, orderID uint, at time.Time) (int, error) {
	n, err := r.dao.MarkSold(ctx, key, orderID, at)
	if err != nil {
		return 0, fmt.Errorf("r.dao.MarkSold -> %w", err)
	}

	return int(n), nil
}

func (r *InventoryRepository) FindByOrder(ctx context.Context, orderID uint) ([]domain.StockItem, error) {
	found, err := r.dao.FindByOrderID(ctx, orderID)
	if err != nil {
		return nil, fmt.Errorf("r.dao.FindByOrderID -> %w", err)
	}

	return r.daosToDomain(found), nil
}

func (r *InventoryRepository) daosToDomain(rows []dao.StockItem) []domain.StockItem {
	items := make([]domain.StockItem, len(rows))
	for i, s := range rows {
		items[i] = domain.StockItem{
			ID:              s.ID,
			ProductOptionID: s.ProductOptionID,
			Content:         s.Content,
			IsSold:          s.IsSold,
			SoldToOrderID:   s.SoldToOrderID,
			SoldAt:          s.SoldAt,
			CreatedAt:       s.CreatedAt,
		}
	}

	return items
}
