package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/yizeng/gab/gin/gorm/storefront/internal/config"
	"github.com/yizeng/gab/gin/gorm/storefront/internal/db/dbtest"
	"github.com/yizeng/gab/gin/gorm/storefront/internal/domain"
	"github.com/yizeng/gab/gin/gorm/storefront/internal/repository"
	"github.com/yizeng/gab/gin/gorm/storefront/internal/repository/dao"
)

type recordingPublisher struct {
	mu     sync.Mutex
	events []domain.OrderEvent
}

func (p *recordingPublisher) Publish(event domain.OrderEvent) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
}

func (p *recordingPublisher) statuses() []domain.OrderStatus {
	p.mu.Lock()
	defer p.mu.Unlock()

	out := make([]domain.OrderStatus, len(p.events))
	for i, e := range p.events {
		out[i] = e.Status
	}
	return out
}

type fixture struct {
	db    *gorm.DB
	store Store
	svc   *FulfillmentService
	admin *AdminService
	pub   *recordingPublisher
	conf  *config.EngineConfig
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	db := dbtest.Open(t)
	conf := &config.EngineConfig{StoreTimeout: 5 * time.Second, OrderNumberPrefix: "ORD"}
	store := NewGormStore(repository.NewStore(db))
	pub := &recordingPublisher{}

	return &fixture{
		db:    db,
		store: store,
		svc:   NewFulfillmentService(store, conf, nil, pub),
		admin: NewAdminService(store, conf, nil),
		pub:   pub,
		conf:  conf,
	}
}

// withStore rebuilds the engine over a wrapped store.
func (f *fixture) withStore(store Store) *FulfillmentService {
	return NewFulfillmentService(store, f.conf, nil, f.pub)
}

func (f *fixture) token(t *testing.T, value, balance string) domain.Token {
	t.Helper()

	created, err := f.admin.CreateToken(context.Background(), value, money(balance))
	require.NoError(t, err)

	return created.Token
}

func (f *fixture) option(t *testing.T, productID uint, mode domain.DeliveryMode, price string, opts ...func(*domain.ProductOption)) domain.ProductOption {
	t.Helper()

	option := domain.ProductOption{
		ProductID:    productID,
		Name:         "option",
		Price:        money(price),
		DeliveryMode: mode,
		IsActive:     true,
	}
	for _, opt := range opts {
		opt(&option)
	}

	created, err := f.admin.CreateOption(context.Background(), option)
	require.NoError(t, err)

	return created
}

func (f *fixture) stock(t *testing.T, optionID uint, contents ...string) {
	t.Helper()

	_, err := f.admin.AddStock(context.Background(), optionID, contents)
	require.NoError(t, err)
}

func (f *fixture) balance(t *testing.T, value string) decimal.Decimal {
	t.Helper()

	token, err := f.svc.GetBalance(context.Background(), value)
	require.NoError(t, err)

	return token.Balance
}

func (f *fixture) countOrders(t *testing.T) int64 {
	t.Helper()

	var n int64
	require.NoError(t, f.db.Model(&dao.Order{}).Count(&n).Error)
	return n
}

func money(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func intPtr(n int) *int {
	return &n
}

func assertMoney(t *testing.T, want string, got decimal.Decimal) {
	t.Helper()
	assert.Equal(t, want, got.StringFixed(2))
}

func assertCode(t *testing.T, err error, want *domain.Error) *domain.Error {
	t.Helper()

	require.Error(t, err)
	require.ErrorIs(t, err, want)
	de, ok := domain.AsError(err)
	require.True(t, ok)

	return de
}

// faultStore wraps selected repositories, including those handed to
// transaction callbacks.
type faultStore struct {
	Store
	tokens  func(TokenRepository) TokenRepository
	orders  func(OrderRepository) OrderRepository
	coupons func(CouponRepository) CouponRepository
}

func (f faultStore) Transaction(ctx context.Context, fn func(tx Store) error) error {
	return f.Store.Transaction(ctx, func(tx Store) error {
		return fn(faultStore{Store: tx, tokens: f.tokens, orders: f.orders, coupons: f.coupons})
	})
}

func (f faultStore) Tokens() TokenRepository {
	if f.tokens != nil {
		return f.tokens(f.Store.Tokens())
	}
	return f.Store.Tokens()
}

func (f faultStore) Orders() OrderRepository {
	if f.orders != nil {
		return f.orders(f.Store.Orders())
	}
	return f.Store.Orders()
}

func (f faultStore) Coupons() CouponRepository {
	if f.coupons != nil {
		return f.coupons(f.Store.Coupons())
	}
	return f.Store.Coupons()
}

var errInjected = errors.New("injected failure")

type failingDebits struct {
	TokenRepository
}

func (r failingDebits) Apply(ctx context.Context, m domain.BalanceMutation) (domain.Token, error) {
	if m.IsDebit() {
		return domain.Token{}, errInjected
	}
	return r.TokenRepository.Apply(ctx, m)
}

type failingCouponUsage struct {
	CouponRepository
}

func (r failingCouponUsage) IncrementUsage(context.Context, string) (bool, error) {
	return false, errInjected
}

// staleCoupons reads every coupon as unused, as if another placement spent it
// between the read and the usage update.
type staleCoupons struct {
	CouponRepository
}

func (r staleCoupons) FindByCodeForUpdate(ctx context.Context, code string) (domain.Coupon, error) {
	coupon, err := r.CouponRepository.FindByCodeForUpdate(ctx, code)
	coupon.UsedCount = 0
	return coupon, err
}

// staleOrders reports the order as pending on its first read, as if an
// operator claimed it between the read and the guarded update.
type staleOrders struct {
	OrderRepository
	reads *int
}

func (r staleOrders) FindByID(ctx context.Context, id uint) (domain.Order, error) {
	order, err := r.OrderRepository.FindByID(ctx, id)
	*r.reads++
	if err == nil && *r.reads == 1 {
		order.Status = domain.OrderPending
	}
	return order, err
}
