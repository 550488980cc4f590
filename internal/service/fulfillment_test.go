package service

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yizeng/gab/gin/gorm/storefront/internal/domain"
)

func TestFulfillmentService_PlaceOrder_Manual(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.token(t, "tok-a", "50")
	option := f.option(t, 1, domain.DeliveryChat, "20")

	res, err := f.svc.PlaceOrder(ctx, PlaceOrderInput{
		TokenValue: "TOK-A",
		ProductID:  1,
		OptionID:   option.ID,
		Quantity:   2,
	})
	require.NoError(t, err)

	assert.Equal(t, "ORD00000001", res.Order.OrderNumber)
	assert.Equal(t, domain.OrderPending, res.Order.Status)
	assert.Equal(t, 2, res.Order.Quantity)
	assertMoney(t, "40.00", res.Order.TotalPrice)
	assertMoney(t, "40.00", res.Quote.Base)
	assertMoney(t, "10.00", res.NewBalance)
	assertMoney(t, "10.00", f.balance(t, "tok-a"))
	assert.Equal(t, []domain.OrderStatus{domain.OrderPending}, f.pub.statuses())

	active, err := f.svc.GetActiveOrder(ctx, "tok-a")
	require.NoError(t, err)
	assert.Equal(t, res.Order.ID, active.ID)

	t.Run("second placement is refused while the first is active", func(t *testing.T) {
		_, err := f.svc.PlaceOrder(ctx, PlaceOrderInput{
			TokenValue: "tok-a",
			ProductID:  1,
			OptionID:   option.ID,
		})

		de := assertCode(t, err, domain.ErrHasPendingOrder)
		assert.Equal(t, "ORD00000001", de.Details["order_number"])
		assertMoney(t, "10.00", f.balance(t, "tok-a"))
		assert.EqualValues(t, 1, f.countOrders(t))
	})
}

func TestFulfillmentService_PlaceOrder_Auto(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.token(t, "tok-a", "50")
	option := f.option(t, 7, domain.DeliveryAuto, "20")
	f.stock(t, option.ID, "code-1", "code-2", "code-3")
	cheaper := f.option(t, 7, domain.DeliveryAuto, "5")
	f.stock(t, cheaper.ID, "cheap-1")

	res, err := f.svc.PlaceOrder(ctx, PlaceOrderInput{
		TokenValue: "tok-a",
		ProductID:  7,
		OptionID:   option.ID,
		Quantity:   2,
	})
	require.NoError(t, err)

	assert.Equal(t, domain.OrderCompleted, res.Order.Status)
	assert.Equal(t, "code-1\ncode-2", res.Order.DeliveredContent)
	assertMoney(t, "10.00", res.NewBalance)

	sold, err := f.store.Inventory().FindByOrder(ctx, res.Order.ID)
	require.NoError(t, err)
	require.Len(t, sold, 2)
	for _, item := range sold {
		assert.True(t, item.IsSold)
		assert.NotNil(t, item.SoldAt)
	}

	available, err := f.store.Inventory().CountAvailable(ctx, option.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, available)

	token, err := f.svc.GetBalance(ctx, "tok-a")
	require.NoError(t, err)
	mutations, err := f.admin.ListMutations(ctx, token.ID, 0, 0)
	require.NoError(t, err)
	require.Len(t, mutations, 2)
	assert.Equal(t, domain.MutationOrderPlaced, mutations[0].Reason)
	assertMoney(t, "-40.00", mutations[0].Delta)
	assert.Equal(t, res.Order.ID, mutations[0].RefID)

	// A completed order does not block the next placement.
	next, err := f.svc.PlaceOrder(ctx, PlaceOrderInput{TokenValue: "tok-a", ProductID: 7, OptionID: cheaper.ID})
	require.NoError(t, err)
	assert.Equal(t, domain.OrderCompleted, next.Order.Status)
	assert.Equal(t, "cheap-1", next.Order.DeliveredContent)
	assertMoney(t, "5.00", next.NewBalance)
}

func TestFulfillmentService_PlaceOrder_ConcurrentStock(t *testing.T) {
	f := newFixture(t)

	f.token(t, "tok-a", "100")
	f.token(t, "tok-b", "100")
	option := f.option(t, 1, domain.DeliveryAuto, "5")
	f.stock(t, option.ID, "a", "b", "c")

	var (
		wg      sync.WaitGroup
		results [2]PlaceOrderResult
		errs    [2]error
	)
	for i, value := range []string{"tok-a", "tok-b"} {
		wg.Add(1)
		go func(i int, value string) {
			defer wg.Done()
			results[i], errs[i] = f.svc.PlaceOrder(context.Background(), PlaceOrderInput{
				TokenValue: value,
				ProductID:  1,
				OptionID:   option.ID,
				Quantity:   2,
			})
		}(i, value)
	}
	wg.Wait()

	var succeeded, failed int
	for i := range errs {
		if errs[i] == nil {
			succeeded++
			assert.Len(t, results[i].Order.DeliveredContent, len("a\nb"))
			continue
		}
		failed++
		de := assertCode(t, errs[i], domain.ErrInsufficientStock)
		assert.Equal(t, 1, de.Details["available"])
	}
	assert.Equal(t, 1, succeeded)
	assert.Equal(t, 1, failed)
	assert.EqualValues(t, 1, f.countOrders(t))
}

func TestFulfillmentService_PlaceOrder_Coupon(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.token(t, "tok-a", "100")
	f.token(t, "tok-b", "100")
	option := f.option(t, 3, domain.DeliveryAuto, "50")
	f.stock(t, option.ID, "x", "y")

	_, err := f.admin.CreateCoupon(ctx, domain.Coupon{
		Code:          "SAVE10",
		DiscountType:  domain.DiscountPercentage,
		DiscountValue: money("10"),
		MaxUses:       intPtr(1),
		IsActive:      true,
	})
	require.NoError(t, err)

	first, err := f.svc.PlaceOrder(ctx, PlaceOrderInput{
		TokenValue: "tok-a",
		ProductID:  3,
		OptionID:   option.ID,
		CouponCode: " SAVE10 ",
	})
	require.NoError(t, err)
	assertMoney(t, "5.00", first.Order.DiscountAmount)
	assertMoney(t, "45.00", first.Order.TotalPrice)
	require.NotNil(t, first.Order.CouponCode)
	assert.Equal(t, "SAVE10", *first.Order.CouponCode)
	assertMoney(t, "55.00", first.NewBalance)

	coupon, err := f.store.Coupons().FindByCode(ctx, "SAVE10")
	require.NoError(t, err)
	assert.Equal(t, 1, coupon.UsedCount)

	second, err := f.svc.PlaceOrder(ctx, PlaceOrderInput{
		TokenValue: "tok-b",
		ProductID:  3,
		OptionID:   option.ID,
		CouponCode: "SAVE10",
	})
	require.NoError(t, err)
	assertMoney(t, "50.00", second.Order.TotalPrice)
	assert.Nil(t, second.Order.CouponCode)

	coupon, err = f.store.Coupons().FindByCode(ctx, "SAVE10")
	require.NoError(t, err)
	assert.Equal(t, 1, coupon.UsedCount)
}

func TestFulfillmentService_PlaceOrder_ExhaustedCouponReadAsUsable(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.token(t, "tok-a", "100")
	f.token(t, "tok-b", "100")
	option := f.option(t, 3, domain.DeliveryAuto, "50")
	f.stock(t, option.ID, "x", "y")

	_, err := f.admin.CreateCoupon(ctx, domain.Coupon{
		Code:          "SAVE10",
		DiscountType:  domain.DiscountPercentage,
		DiscountValue: money("10"),
		MaxUses:       intPtr(1),
		IsActive:      true,
	})
	require.NoError(t, err)

	svc := f.withStore(faultStore{
		Store:   f.store,
		coupons: func(r CouponRepository) CouponRepository { return staleCoupons{r} },
	})

	first, err := svc.PlaceOrder(ctx, PlaceOrderInput{TokenValue: "tok-a", ProductID: 3, OptionID: option.ID, CouponCode: "SAVE10"})
	require.NoError(t, err)
	assertMoney(t, "45.00", first.Order.TotalPrice)

	second, err := svc.PlaceOrder(ctx, PlaceOrderInput{TokenValue: "tok-b", ProductID: 3, OptionID: option.ID, CouponCode: "SAVE10"})
	require.NoError(t, err)
	assertMoney(t, "50.00", second.Order.TotalPrice)
	assertMoney(t, "0.00", second.Order.DiscountAmount)
	assert.Nil(t, second.Order.CouponCode)
	assertMoney(t, "50.00", f.balance(t, "tok-b"))

	coupon, err := f.store.Coupons().FindByCode(ctx, "SAVE10")
	require.NoError(t, err)
	assert.Equal(t, 1, coupon.UsedCount)
}

func TestFulfillmentService_PlaceOrder_UnknownCouponIsIgnored(t *testing.T) {
	f := newFixture(t)

	f.token(t, "tok-a", "30")
	option := f.option(t, 1, domain.DeliveryManualText, "30")

	res, err := f.svc.PlaceOrder(context.Background(), PlaceOrderInput{
		TokenValue:     "tok-a",
		ProductID:      1,
		OptionID:       option.ID,
		CouponCode:     "NOPE",
		DeliveryFields: domain.DeliveryFields{Text: "my handle"},
	})
	require.NoError(t, err)
	assertMoney(t, "30.00", res.Order.TotalPrice)
	assertMoney(t, "0.00", res.NewBalance)
	assert.Nil(t, res.Order.CouponCode)
	assert.Equal(t, "my handle", res.Order.DeliveryFields.Text)
}

func TestFulfillmentService_PlaceOrder_Refusals(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.token(t, "rich", "1000")
	f.token(t, "poor", "5")
	blocked := f.token(t, "blocked", "1000")
	_, err := f.admin.SetTokenBlocked(ctx, blocked.ID, true)
	require.NoError(t, err)

	auto := f.option(t, 1, domain.DeliveryAuto, "10", func(o *domain.ProductOption) {
		o.MaxQuantityPerOrder = intPtr(3)
	})
	f.stock(t, auto.ID, "only-one")
	inactive := f.option(t, 1, domain.DeliveryAuto, "10", func(o *domain.ProductOption) {
		o.IsActive = false
	})
	emailPassword := f.option(t, 2, domain.DeliveryManualEmailPassword, "10")

	tests := []struct {
		name        string
		input       PlaceOrderInput
		wantErr     *domain.Error
		wantDetails map[string]any
	}{
		{
			name:    "unknown token",
			input:   PlaceOrderInput{TokenValue: "ghost", ProductID: 1, OptionID: auto.ID},
			wantErr: domain.ErrTokenNotFound,
		},
		{
			name:    "empty token",
			input:   PlaceOrderInput{TokenValue: "  ", ProductID: 1, OptionID: auto.ID},
			wantErr: domain.ErrTokenNotFound,
		},
		{
			name:    "blocked token",
			input:   PlaceOrderInput{TokenValue: "blocked", ProductID: 1, OptionID: auto.ID},
			wantErr: domain.ErrTokenBlocked,
		},
		{
			name:    "unknown option",
			input:   PlaceOrderInput{TokenValue: "rich", ProductID: 1, OptionID: 999},
			wantErr: domain.ErrOptionNotFound,
		},
		{
			name:    "inactive option",
			input:   PlaceOrderInput{TokenValue: "rich", ProductID: 1, OptionID: inactive.ID},
			wantErr: domain.ErrOptionNotFound,
		},
		{
			name:    "option of another product",
			input:   PlaceOrderInput{TokenValue: "rich", ProductID: 2, OptionID: auto.ID},
			wantErr: domain.ErrOptionNotFound,
		},
		{
			name:        "quantity above the per-order maximum",
			input:       PlaceOrderInput{TokenValue: "rich", ProductID: 1, OptionID: auto.ID, Quantity: 4},
			wantErr:     domain.ErrQuantityLimitExceeded,
			wantDetails: map[string]any{"max_quantity": 3},
		},
		{
			name:        "missing delivery fields",
			input:       PlaceOrderInput{TokenValue: "rich", ProductID: 2, OptionID: emailPassword.ID},
			wantErr:     domain.ErrMissingDeliveryFields,
			wantDetails: map[string]any{"fields": []string{"email", "password"}},
		},
		{
			name:        "insufficient balance",
			input:       PlaceOrderInput{TokenValue: "poor", ProductID: 1, OptionID: auto.ID},
			wantErr:     domain.ErrInsufficientBalance,
			wantDetails: map[string]any{"balance": "5.00", "total": "10.00"},
		},
		{
			name:        "insufficient stock",
			input:       PlaceOrderInput{TokenValue: "rich", ProductID: 1, OptionID: auto.ID, Quantity: 2},
			wantErr:     domain.ErrInsufficientStock,
			wantDetails: map[string]any{"available": 1},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := f.svc.PlaceOrder(ctx, tc.input)

			de := assertCode(t, err, tc.wantErr)
			for k, v := range tc.wantDetails {
				assert.Equal(t, v, de.Details[k], k)
			}
		})
	}

	assert.EqualValues(t, 0, f.countOrders(t))
	assertMoney(t, "1000.00", f.balance(t, "rich"))
	assertMoney(t, "5.00", f.balance(t, "poor"))
}

func TestFulfillmentService_PlaceOrder_DeviceLimit(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.token(t, "tok-a", "100")
	f.token(t, "tok-b", "100")
	option := f.option(t, 1, domain.DeliveryAuto, "1", func(o *domain.ProductOption) {
		o.PurchaseLimit = intPtr(2)
	})
	f.stock(t, option.ID, "1", "2", "3", "4")

	_, err := f.svc.PlaceOrder(ctx, PlaceOrderInput{
		TokenValue:        "tok-a",
		ProductID:         1,
		OptionID:          option.ID,
		Quantity:          2,
		DeviceFingerprint: "device-1",
	})
	require.NoError(t, err)

	_, err = f.svc.PlaceOrder(ctx, PlaceOrderInput{
		TokenValue:        "tok-b",
		ProductID:         1,
		OptionID:          option.ID,
		DeviceFingerprint: "device-1",
	})
	de := assertCode(t, err, domain.ErrPurchaseLimitReached)
	assert.Equal(t, 2, de.Details["limit"])
	assert.Equal(t, 2, de.Details["purchased"])

	// Purchases are counted per device.
	_, err = f.svc.PlaceOrder(ctx, PlaceOrderInput{
		TokenValue:        "tok-b",
		ProductID:         1,
		OptionID:          option.ID,
		DeviceFingerprint: "device-2",
	})
	require.NoError(t, err)
}

func TestFulfillmentService_PlaceOrder_DebitFailureRollsBack(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.token(t, "tok-a", "50")
	option := f.option(t, 1, domain.DeliveryAuto, "20")
	f.stock(t, option.ID, "code")

	svc := f.withStore(faultStore{
		Store:  f.store,
		tokens: func(r TokenRepository) TokenRepository { return failingDebits{r} },
	})

	_, err := svc.PlaceOrder(ctx, PlaceOrderInput{TokenValue: "tok-a", ProductID: 1, OptionID: option.ID})
	assertCode(t, err, domain.ErrBalanceDeductFailed)

	assert.EqualValues(t, 0, f.countOrders(t))
	assertMoney(t, "50.00", f.balance(t, "tok-a"))
	available, err := f.store.Inventory().CountAvailable(ctx, option.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, available)
	assert.Empty(t, f.pub.statuses())
}

func TestFulfillmentService_PlaceOrder_BestEffortFailureKeepsOrder(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.token(t, "tok-a", "50")
	option := f.option(t, 1, domain.DeliveryAuto, "20")
	f.stock(t, option.ID, "code")
	_, err := f.admin.CreateCoupon(ctx, domain.Coupon{
		Code:          "FIVE",
		DiscountType:  domain.DiscountFixed,
		DiscountValue: money("5"),
		IsActive:      true,
	})
	require.NoError(t, err)

	svc := f.withStore(faultStore{
		Store:   f.store,
		coupons: func(r CouponRepository) CouponRepository { return failingCouponUsage{r} },
	})

	res, err := svc.PlaceOrder(ctx, PlaceOrderInput{
		TokenValue: "tok-a",
		ProductID:  1,
		OptionID:   option.ID,
		CouponCode: "FIVE",
	})
	require.NoError(t, err)
	assertMoney(t, "15.00", res.Order.TotalPrice)
	assertMoney(t, "35.00", f.balance(t, "tok-a"))

	sold, err := f.store.Inventory().FindByOrder(ctx, res.Order.ID)
	require.NoError(t, err)
	assert.Len(t, sold, 1)

	coupon, err := f.store.Coupons().FindByCode(ctx, "FIVE")
	require.NoError(t, err)
	assert.Equal(t, 0, coupon.UsedCount)
}

func TestFulfillmentService_PlaceOrder_FreeOrderSkipsDebit(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	token := f.token(t, "tok-a", "0")
	option := f.option(t, 1, domain.DeliveryManualLink, "0")

	res, err := f.svc.PlaceOrder(ctx, PlaceOrderInput{
		TokenValue:     "tok-a",
		ProductID:      1,
		OptionID:       option.ID,
		DeliveryFields: domain.DeliveryFields{Link: "https://example.com/me"},
	})
	require.NoError(t, err)
	assertMoney(t, "0.00", res.NewBalance)

	mutations, err := f.admin.ListMutations(ctx, token.ID, 0, 0)
	require.NoError(t, err)
	assert.Empty(t, mutations)
}
