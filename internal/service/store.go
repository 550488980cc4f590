package service

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/yizeng/gab/gin/gorm/storefront/internal/domain"
	"github.com/yizeng/gab/gin/gorm/storefront/internal/repository"
)

// Store is the unit of work the engine runs against. Repositories obtained
// from the tx passed to Transaction's callback see and write only that
// transaction; calling Transaction on it opens a savepoint.
type Store interface {
	Transaction(ctx context.Context, fn func(tx Store) error) error
	Tokens() TokenRepository
	Catalog() CatalogRepository
	Inventory() InventoryRepository
	Coupons() CouponRepository
	Orders() OrderRepository
	Devices() DeviceRepository
	Recharges() RechargeRepository
	Refunds() RefundRepository
}

type TokenRepository interface {
	Create(ctx context.Context, token domain.Token) (domain.Token, error)
	FindByID(ctx context.Context, id uint) (domain.Token, error)
	FindByValue(ctx context.Context, value string) (domain.Token, error)
	Lock(ctx context.Context, id uint) error
	Apply(ctx context.Context, m domain.BalanceMutation) (domain.Token, error)
	SetBlocked(ctx context.Context, id uint, blocked bool) (domain.Token, error)
	ListMutations(ctx context.Context, tokenID uint, limit, offset int) ([]domain.BalanceMutation, error)
}

type CatalogRepository interface {
	CreateOption(ctx context.Context, option domain.ProductOption) (domain.ProductOption, error)
	FindOption(ctx context.Context, id uint) (domain.ProductOption, error)
}

type InventoryRepository interface {
	AddStock(ctx context.Context, optionID uint, contents []string) ([]domain.StockItem, error)
	CountAvailable(ctx context.Context, optionID uint) (int, error)
	Claim(ctx context.Context, optionID uint, quantity int, key string) ([]domain.StockItem, error)
	MarkSold(ctx context.Context, key string, orderID uint, at time.Time) (int, error)
	FindByOrder(ctx context.Context, orderID uint) ([]domain.StockItem, error)
}

type CouponRepository interface {
	Create(ctx context.Context, coupon domain.Coupon) (domain.Coupon, error)
	FindByCode(ctx context.Context, code string) (domain.Coupon, error)
	FindByCodeForUpdate(ctx context.Context, code string) (domain.Coupon, error)
	IncrementUsage(ctx context.Context, code string) (bool, error)
}

type OrderRepository interface {
	Create(ctx context.Context, order domain.Order, prefix string) (domain.Order, error)
	FindByID(ctx context.Context, id uint) (domain.Order, error)
	FindByNumber(ctx context.Context, number string) (domain.Order, error)
	FindActiveByToken(ctx context.Context, tokenID uint) (domain.Order, error)
	Transition(ctx context.Context, id uint, from []domain.OrderStatus, to domain.OrderStatus, patch domain.OrderPatch) (bool, error)
}

type DeviceRepository interface {
	Record(ctx context.Context, purchase domain.DevicePurchase) error
	Purchased(ctx context.Context, fingerprint string, optionID uint) (int, error)
}

type RechargeRepository interface {
	Create(ctx context.Context, req domain.RechargeRequest) (domain.RechargeRequest, error)
	FindByID(ctx context.Context, id uint) (domain.RechargeRequest, error)
	Resolve(ctx context.Context, id uint, status domain.RequestStatus, note string, at time.Time) (bool, error)
}

type RefundRepository interface {
	Create(ctx context.Context, req domain.RefundRequest) (domain.RefundRequest, error)
	FindByID(ctx context.Context, id uint) (domain.RefundRequest, error)
	FindByOrderNumber(ctx context.Context, number string) (domain.RefundRequest, error)
	Resolve(ctx context.Context, id uint, status domain.RequestStatus, note string, amount decimal.NullDecimal, at time.Time) (bool, error)
}

type gormStore struct {
	s *repository.Store
}

func NewGormStore(s *repository.Store) Store {
	return gormStore{s: s}
}

func (g gormStore) Transaction(ctx context.Context, fn func(tx Store) error) error {
	return g.s.Transaction(ctx, func(tx *repository.Store) error {
		return fn(gormStore{s: tx})
	})
}

func (g gormStore) Tokens() TokenRepository        { return g.s.Tokens() }
func (g gormStore) Catalog() CatalogRepository     { return g.s.Catalog() }
func (g gormStore) Inventory() InventoryRepository { return g.s.Inventory() }
func (g gormStore) Coupons() CouponRepository      { return g.s.Coupons() }
func (g gormStore) Orders() OrderRepository        { return g.s.Orders() }
func (g gormStore) Devices() DeviceRepository      { return g.s.Devices() }
func (g gormStore) Recharges() RechargeRepository  { return g.s.Recharges() }
func (g gormStore) Refunds() RefundRepository      { return g.s.Refunds() }
