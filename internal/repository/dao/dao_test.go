package dao_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yizeng/gab/gin/gorm/storefront/internal/db/dbtest"
	"github.com/yizeng/gab/gin/gorm/storefront/internal/repository/dao"
)

func TestTokenDAO_Debit(t *testing.T) {
	ctx := context.Background()
	d := dao.NewTokenDAO(dbtest.Open(t))

	token, err := d.Insert(ctx, dao.Token{Value: "TOK", Balance: decimal.RequireFromString("10.50")})
	require.NoError(t, err)

	require.NoError(t, d.Debit(ctx, token.ID, decimal.RequireFromString("10.50")))

	err = d.Debit(ctx, token.ID, decimal.RequireFromString("0.01"))
	assert.ErrorIs(t, err, dao.ErrInsufficientFunds)

	found, err := d.FindByID(ctx, token.ID)
	require.NoError(t, err)
	assert.True(t, found.Balance.IsZero())

	require.NoError(t, d.Credit(ctx, token.ID, decimal.RequireFromString("3")))
	found, err = d.FindByValue(ctx, "TOK")
	require.NoError(t, err)
	assert.Equal(t, "3.00", found.Balance.StringFixed(2))

	assert.ErrorIs(t, d.Credit(ctx, 999, decimal.NewFromInt(1)), dao.ErrTokenNotFound)
	assert.NoError(t, d.Lock(ctx, token.ID))
}

func TestTokenDAO_Insert_Duplicate(t *testing.T) {
	ctx := context.Background()
	d := dao.NewTokenDAO(dbtest.Open(t))

	_, err := d.Insert(ctx, dao.Token{Value: "TOK"})
	require.NoError(t, err)

	_, err = d.Insert(ctx, dao.Token{Value: "TOK"})
	assert.ErrorIs(t, err, dao.ErrTokenExists)
}

func TestInventoryDAO_Claim(t *testing.T) {
	ctx := context.Background()
	d := dao.NewInventoryDAO(dbtest.Open(t))

	_, err := d.InsertBatch(ctx, []dao.StockItem{
		{ProductOptionID: 1, Content: "a"},
		{ProductOptionID: 1, Content: "b"},
		{ProductOptionID: 1, Content: "c"},
		{ProductOptionID: 2, Content: "other"},
	})
	require.NoError(t, err)

	first, err := d.Claim(ctx, 1, 2, "key-1")
	require.NoError(t, err)
	require.Len(t, first, 2)
	assert.Equal(t, "a", first[0].Content)
	assert.Equal(t, "b", first[1].Content)

	second, err := d.Claim(ctx, 1, 2, "key-2")
	require.NoError(t, err)
	require.Len(t, second, 1)
	assert.Equal(t, "c", second[0].Content)

	available, err := d.CountAvailable(ctx, 1)
	require.NoError(t, err)
	assert.Zero(t, available)

	none, err := d.Claim(ctx, 1, 1, "key-3")
	require.NoError(t, err)
	assert.Empty(t, none)

	n, err := d.MarkSold(ctx, "key-1", 42, time.Now())
	require.NoError(t, err)
	assert.EqualValues(t, 2, n)

	n, err = d.MarkSold(ctx, "key-1", 43, time.Now())
	require.NoError(t, err)
	assert.Zero(t, n)

	sold, err := d.FindByOrderID(ctx, 42)
	require.NoError(t, err)
	assert.Len(t, sold, 2)

	available, err = d.CountAvailable(ctx, 2)
	require.NoError(t, err)
	assert.EqualValues(t, 1, available)
}

func TestCouponDAO_IncrementUsage(t *testing.T) {
	ctx := context.Background()
	d := dao.NewCouponDAO(dbtest.Open(t))
	maxUses := 2

	_, err := d.Insert(ctx, dao.Coupon{
		Code:          "TWICE",
		DiscountType:  "fixed",
		DiscountValue: decimal.NewFromInt(1),
		MaxUses:       &maxUses,
		IsActive:      true,
	})
	require.NoError(t, err)

	for i := 0; i < maxUses; i++ {
		ok, err := d.IncrementUsage(ctx, "TWICE")
		require.NoError(t, err)
		assert.True(t, ok)
	}

	ok, err := d.IncrementUsage(ctx, "TWICE")
	require.NoError(t, err)
	assert.False(t, ok)

	found, err := d.FindByCode(ctx, "TWICE")
	require.NoError(t, err)
	assert.Equal(t, maxUses, found.UsedCount)

	locked, err := d.FindByCodeForUpdate(ctx, "TWICE")
	require.NoError(t, err)
	assert.Equal(t, found.ID, locked.ID)

	_, err = d.FindByCodeForUpdate(ctx, "NOPE")
	assert.ErrorIs(t, err, dao.ErrCouponNotFound)

	_, err = d.Insert(ctx, dao.Coupon{Code: "TWICE", DiscountType: "fixed", DiscountValue: decimal.NewFromInt(1)})
	assert.ErrorIs(t, err, dao.ErrCouponExists)

	_, err = d.FindByCode(ctx, "NOPE")
	assert.ErrorIs(t, err, dao.ErrCouponNotFound)
}

func TestCouponDAO_InactiveIsStored(t *testing.T) {
	ctx := context.Background()
	d := dao.NewCouponDAO(dbtest.Open(t))

	_, err := d.Insert(ctx, dao.Coupon{Code: "OFF", DiscountType: "fixed", DiscountValue: decimal.NewFromInt(1)})
	require.NoError(t, err)

	found, err := d.FindByCode(ctx, "OFF")
	require.NoError(t, err)
	assert.False(t, found.IsActive)
}

func newOrder(tokenID uint, status string) dao.Order {
	return dao.Order{
		TokenID:         tokenID,
		ProductID:       1,
		ProductOptionID: 1,
		Quantity:        1,
		UnitPrice:       decimal.NewFromInt(1),
		BasePrice:       decimal.NewFromInt(1),
		DiscountAmount:  decimal.Zero,
		TotalPrice:      decimal.NewFromInt(1),
		DeliveryMode:    "chat",
		Status:          status,
	}
}

func TestOrderDAO_OneActiveOrderPerToken(t *testing.T) {
	ctx := context.Background()
	d := dao.NewOrderDAO(dbtest.Open(t))

	first, err := d.Insert(ctx, newOrder(1, "pending"))
	require.NoError(t, err)

	_, err = d.Insert(ctx, newOrder(1, "in_progress"))
	assert.ErrorIs(t, err, dao.ErrActiveOrderExists)

	_, err = d.Insert(ctx, newOrder(1, "completed"))
	require.NoError(t, err)

	_, err = d.Insert(ctx, newOrder(2, "pending"))
	require.NoError(t, err)

	n, err := d.UpdateStatus(ctx, first.ID, []string{"pending"}, "cancelled", nil)
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)

	_, err = d.Insert(ctx, newOrder(1, "pending"))
	require.NoError(t, err)
}

func TestOrderDAO_UpdateStatus_Guarded(t *testing.T) {
	ctx := context.Background()
	d := dao.NewOrderDAO(dbtest.Open(t))

	order, err := d.Insert(ctx, newOrder(1, "in_progress"))
	require.NoError(t, err)
	require.NoError(t, d.SetOrderNumber(ctx, order.ID, "ORD00000001"))

	n, err := d.UpdateStatus(ctx, order.ID, []string{"pending"}, "cancelled", nil)
	require.NoError(t, err)
	assert.Zero(t, n)

	n, err = d.UpdateStatus(ctx, order.ID, []string{"pending", "in_progress"}, "completed", map[string]any{
		"delivered_content": "done",
	})
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)

	found, err := d.FindByNumber(ctx, "ORD00000001")
	require.NoError(t, err)
	assert.Equal(t, "completed", found.Status)
	assert.Equal(t, "done", found.DeliveredContent)

	_, err = d.FindByID(ctx, 999)
	assert.ErrorIs(t, err, dao.ErrOrderNotFound)
}

func TestDeviceDAO_SumQuantity(t *testing.T) {
	ctx := context.Background()
	d := dao.NewDeviceDAO(dbtest.Open(t))

	total, err := d.SumQuantity(ctx, "dev", 1)
	require.NoError(t, err)
	assert.Zero(t, total)

	for _, q := range []int{2, 3} {
		_, err = d.Insert(ctx, dao.DevicePurchase{Fingerprint: "dev", ProductOptionID: 1, Quantity: q, OrderID: 1})
		require.NoError(t, err)
	}
	_, err = d.Insert(ctx, dao.DevicePurchase{Fingerprint: "dev", ProductOptionID: 2, Quantity: 7, OrderID: 2})
	require.NoError(t, err)

	total, err = d.SumQuantity(ctx, "dev", 1)
	require.NoError(t, err)
	assert.EqualValues(t, 5, total)
}

func TestRefundDAO_OnePerOrder(t *testing.T) {
	ctx := context.Background()
	d := dao.NewRefundDAO(dbtest.Open(t))

	req, err := d.Insert(ctx, dao.RefundRequest{OrderNumber: "ORD1", OrderID: 1, TokenID: 1, Status: "pending"})
	require.NoError(t, err)

	_, err = d.Insert(ctx, dao.RefundRequest{OrderNumber: "ORD1", OrderID: 1, TokenID: 1, Status: "pending"})
	assert.ErrorIs(t, err, dao.ErrRefundExists)

	amount := decimal.NewNullDecimal(decimal.NewFromInt(4))
	n, err := d.Resolve(ctx, req.ID, "approved", "ok", amount, time.Now())
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)

	n, err = d.Resolve(ctx, req.ID, "rejected", "", decimal.NullDecimal{}, time.Now())
	require.NoError(t, err)
	assert.Zero(t, n)

	found, err := d.FindByOrderNumber(ctx, "ORD1")
	require.NoError(t, err)
	assert.Equal(t, "approved", found.Status)
	require.True(t, found.Amount.Valid)
	assert.Equal(t, "4.00", found.Amount.Decimal.StringFixed(2))
}
