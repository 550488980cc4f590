package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yizeng/gab/gin/gorm/storefront/internal/domain"
)

// placeManual leaves tok-a with balance 30 and a pending 20.00 order.
func placeManual(t *testing.T, f *fixture) domain.Order {
	t.Helper()

	f.token(t, "tok-a", "50")
	option := f.option(t, 1, domain.DeliveryManualLink, "20")

	res, err := f.svc.PlaceOrder(context.Background(), PlaceOrderInput{
		TokenValue:     "tok-a",
		ProductID:      1,
		OptionID:       option.ID,
		DeliveryFields: domain.DeliveryFields{Link: "https://example.com/profile"},
	})
	require.NoError(t, err)

	return res.Order
}

func TestFulfillmentService_CancelOrder(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	order := placeManual(t, f)

	res, err := f.svc.CancelOrder(ctx, "tok-a", order.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.OrderCancelled, res.Order.Status)
	assert.False(t, res.AlreadyCancelled)
	assertMoney(t, "20.00", res.RefundAmount)
	assertMoney(t, "50.00", res.NewBalance)

	t.Run("cancelling again does not refund twice", func(t *testing.T) {
		again, err := f.svc.CancelOrder(ctx, "tok-a", order.ID)
		require.NoError(t, err)
		assert.True(t, again.AlreadyCancelled)
		assertMoney(t, "0.00", again.RefundAmount)
		assertMoney(t, "50.00", again.NewBalance)
		assertMoney(t, "50.00", f.balance(t, "tok-a"))
	})

	t.Run("a cancelled order frees the token", func(t *testing.T) {
		_, err := f.svc.GetActiveOrder(ctx, "tok-a")
		assertCode(t, err, domain.ErrOrderNotFound)
	})

	assert.Equal(t, []domain.OrderStatus{domain.OrderPending, domain.OrderCancelled}, f.pub.statuses())
}

func TestFulfillmentService_CancelOrder_ForeignToken(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	order := placeManual(t, f)
	f.token(t, "tok-b", "0")

	_, err := f.svc.CancelOrder(ctx, "tok-b", order.ID)
	assertCode(t, err, domain.ErrOrderNotFound)

	_, err = f.svc.GetOrder(ctx, "tok-b", order.ID)
	assertCode(t, err, domain.ErrOrderNotFound)

	_, err = f.svc.CancelOrder(ctx, "tok-a", 999)
	assertCode(t, err, domain.ErrOrderNotFound)

	got, err := f.svc.GetOrder(ctx, "tok-a", order.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.OrderPending, got.Status)
}

func TestFulfillmentService_CancelOrder_AfterClaim(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	order := placeManual(t, f)

	claimed, err := f.svc.ClaimOrder(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.OrderInProgress, claimed.Order.Status)

	_, err = f.svc.CancelOrder(ctx, "tok-a", order.ID)
	assertCode(t, err, domain.ErrOrderInProgress)
	assertMoney(t, "30.00", f.balance(t, "tok-a"))

	_, err = f.svc.OperatorCancelOrder(ctx, order.ID, "too late")
	assertCode(t, err, domain.ErrOrderInProgress)
}

func TestFulfillmentService_CancelOrder_LosesRaceToClaim(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	order := placeManual(t, f)

	_, err := f.svc.ClaimOrder(ctx, order.ID)
	require.NoError(t, err)

	reads := 0
	svc := f.withStore(faultStore{
		Store:  f.store,
		orders: func(r OrderRepository) OrderRepository { return staleOrders{OrderRepository: r, reads: &reads} },
	})

	_, err = svc.CancelOrder(ctx, "tok-a", order.ID)
	assertCode(t, err, domain.ErrOrderInProgress)
	assert.Equal(t, 2, reads)
	assertMoney(t, "30.00", f.balance(t, "tok-a"))

	got, err := f.svc.FindOrder(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.OrderInProgress, got.Status)
}

func TestFulfillmentService_CompleteOrder(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	order := placeManual(t, f)

	_, err := f.svc.ClaimOrder(ctx, order.ID)
	require.NoError(t, err)

	res, err := f.svc.CompleteOrder(ctx, order.ID, "delivered to profile", "done")
	require.NoError(t, err)
	assert.Equal(t, domain.OrderCompleted, res.Order.Status)
	assert.Equal(t, "delivered to profile", res.Order.DeliveredContent)
	assert.Equal(t, "done", res.Order.OperatorNote)
	assertMoney(t, "0.00", res.RefundAmount)
	assertMoney(t, "30.00", res.NewBalance)

	t.Run("terminal orders cannot move", func(t *testing.T) {
		_, err := f.svc.RejectOrder(ctx, order.ID, "")
		de := assertCode(t, err, domain.ErrInvalidTransition)
		assert.Equal(t, domain.OrderCompleted, de.Details["status"])

		_, err = f.svc.CancelOrder(ctx, "tok-a", order.ID)
		assertCode(t, err, domain.ErrInvalidTransition)

		_, err = f.svc.ClaimOrder(ctx, order.ID)
		assertCode(t, err, domain.ErrInvalidTransition)
	})
}

func TestFulfillmentService_RejectOrder(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	order := placeManual(t, f)

	res, err := f.svc.RejectOrder(ctx, order.ID, "profile link is broken")
	require.NoError(t, err)
	assert.Equal(t, domain.OrderRejected, res.Order.Status)
	assert.Equal(t, "profile link is broken", res.Order.OperatorNote)
	assertMoney(t, "20.00", res.RefundAmount)
	assertMoney(t, "50.00", res.NewBalance)

	token, err := f.svc.GetBalance(ctx, "tok-a")
	require.NoError(t, err)
	mutations, err := f.admin.ListMutations(ctx, token.ID, 1, 0)
	require.NoError(t, err)
	require.Len(t, mutations, 1)
	assert.Equal(t, domain.MutationOrderRejected, mutations[0].Reason)
	assertMoney(t, "20.00", mutations[0].Delta)

	_, err = f.svc.RejectOrder(ctx, order.ID, "")
	assertCode(t, err, domain.ErrInvalidTransition)
	assertMoney(t, "50.00", f.balance(t, "tok-a"))
}

func TestFulfillmentService_OperatorCancelOrder(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	order := placeManual(t, f)

	res, err := f.svc.OperatorCancelOrder(ctx, order.ID, "out of stock upstream")
	require.NoError(t, err)
	assert.Equal(t, domain.OrderCancelled, res.Order.Status)
	assertMoney(t, "20.00", res.RefundAmount)
	assertMoney(t, "50.00", res.NewBalance)
}
