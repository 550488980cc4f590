package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/yizeng/gab/gin/gorm/storefront/internal/repository/dao"
)

// Store hands out repositories bound to one gorm handle. Inside Transaction
// the handle is the transaction, and a nested Transaction is a savepoint.
type Store struct {
	db *gorm.DB
}

func NewStore(db *gorm.DB) *Store {
	return &Store{
		db: db,
	}
}

func (s *Store) Transaction(ctx context.Context, fn func(tx *Store) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(NewStore(tx))
	})
}

func (s *Store) Tokens() *TokenRepository {
	return NewTokenRepository(dao.NewTokenDAO(s.db))
}

func (s *Store) Catalog() *CatalogRepository {
	return NewCatalogRepository(dao.NewCatalogDAO(s.db))
}

func (s *Store) Inventory() *InventoryRepository {
	return NewInventoryRepository(dao.NewInventoryDAO(s.db))
}

func (s *Store) Coupons() *CouponRepository {
	return NewCouponRepository(dao.NewCouponDAO(s.db))
}

func (s *Store) Orders() *OrderRepository {
	return NewOrderRepository(dao.NewOrderDAO(s.db))
}

func (s *Store) Devices() *DeviceRepository {
	return NewDeviceRepository(dao.NewDeviceDAO(s.db))
}

func (s *Store) Recharges() *RechargeRepository {
	return NewRechargeRepository(dao.NewRechargeDAO(s.db))
}

func (s *Store) Refunds() *RefundRepository {
	return NewRefundRepository(dao.NewRefundDAO(s.db))
}

func (s *Store) Operators() *OperatorRepository {
	return NewOperatorRepository(dao.NewOperatorDAO(s.db))
}
