package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/yizeng/gab/gin/gorm/storefront/internal/config"
	"github.com/yizeng/gab/gin/gorm/storefront/internal/domain"
	"github.com/yizeng/gab/gin/gorm/storefront/internal/metrics"
	"github.com/yizeng/gab/gin/gorm/storefront/internal/repository"
)

const refTypeOrder = "order"

// Best-effort steps run after the debit; their failures never fail the order.
const (
	stepMarkStockSold  = "mark_stock_sold"
	stepCouponUsage    = "coupon_usage"
	stepDevicePurchase = "device_purchase"
)

type OrderPublisher interface {
	Publish(event domain.OrderEvent)
}

type FulfillmentService struct {
	store     Store
	conf      *config.EngineConfig
	metrics   *metrics.Metrics
	publisher OrderPublisher

	now      func() time.Time
	claimKey func() string
}

func NewFulfillmentService(store Store, conf *config.EngineConfig, m *metrics.Metrics, publisher OrderPublisher) *FulfillmentService {
	return &FulfillmentService{
		store:     store,
		conf:      conf,
		metrics:   m,
		publisher: publisher,
		now:       time.Now,
		claimKey:  uuid.NewString,
	}
}

func (s *FulfillmentService) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, s.conf.StoreTimeout)
}

// fail records coded refusals before handing err back.
func (s *FulfillmentService) fail(operation string, err error) error {
	if de, ok := domain.AsError(err); ok {
		s.metrics.Rejected(operation, string(de.Code))
	}

	return err
}

func (s *FulfillmentService) publish(order domain.Order) {
	if s.publisher == nil {
		return
	}
	s.publisher.Publish(order.Event(s.now()))
}

type PlaceOrderInput struct {
	TokenValue        string
	ProductID         uint
	OptionID          uint
	Quantity          int
	DeliveryFields    domain.DeliveryFields
	CouponCode        string
	DeviceFingerprint string
}

type PlaceOrderResult struct {
	Order      domain.Order    `json:"order"`
	Quote      domain.Quote    `json:"quote"`
	NewBalance decimal.Decimal `json:"new_balance"`
}

// PlaceOrder checks eligibility, reserves stock, records the order and debits
// the token in one transaction.
func (s *FulfillmentService) PlaceOrder(ctx context.Context, in PlaceOrderInput) (PlaceOrderResult, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	var (
		result  PlaceOrderResult
		tokenID uint
	)
	err := s.store.Transaction(ctx, func(tx Store) error {
		token, err := s.eligibleToken(ctx, tx, in.TokenValue)
		if err != nil {
			return err
		}
		tokenID = token.ID

		option, quantity, err := s.resolveOption(ctx, tx, in)
		if err != nil {
			return err
		}

		coupon, err := s.findCoupon(ctx, tx, in.CouponCode)
		if err != nil {
			return err
		}

		quote := domain.PriceOrder(option, quantity, coupon, s.now())
		if quote.CouponCode != nil && !s.reserveCoupon(ctx, tx, *quote.CouponCode) {
			quote = domain.PriceOrder(option, quantity, nil, s.now())
		}
		if token.Balance.LessThan(quote.Total) {
			return domain.ErrInsufficientBalance.
				With("balance", token.Balance.StringFixed(2)).
				With("total", quote.Total.StringFixed(2))
		}

		if err = s.checkDeviceLimit(ctx, tx, option, quantity, in.DeviceFingerprint); err != nil {
			return err
		}

		var (
			items []domain.StockItem
			key   string
		)
		if option.DeliveryMode.IsAuto() {
			available, err := tx.Inventory().CountAvailable(ctx, option.ID)
			if err != nil {
				return fmt.Errorf("tx.Inventory().CountAvailable -> %w", err)
			}
			if available < quantity {
				return domain.ErrInsufficientStock.With("available", available)
			}

			key = s.claimKey()
			items, err = tx.Inventory().Claim(ctx, option.ID, quantity, key)
			if err != nil {
				return fmt.Errorf("tx.Inventory().Claim -> %w", err)
			}
			if len(items) < quantity {
				return domain.ErrInsufficientStock.With("available", len(items))
			}
		}

		order := domain.Order{
			TokenID:         token.ID,
			ProductID:       option.ProductID,
			ProductOptionID: option.ID,
			Quantity:        quantity,
			UnitPrice:       quote.UnitPrice,
			BasePrice:       quote.Base,
			DiscountAmount:  quote.Discount,
			TotalPrice:      quote.Total,
			CouponCode:      quote.CouponCode,
			DeliveryMode:    option.DeliveryMode,
			Status:          option.DeliveryMode.InitialStatus(),
		}
		if option.DeliveryMode.IsAuto() {
			order.DeliveredContent = domain.JoinContents(items)
		} else {
			order.DeliveryFields = in.DeliveryFields
		}
		if fp := strings.TrimSpace(in.DeviceFingerprint); fp != "" {
			order.DeviceFingerprint = &fp
		}

		order, err = tx.Orders().Create(ctx, order, s.conf.OrderNumberPrefix)
		if err != nil {
			return fmt.Errorf("tx.Orders().Create -> %w", err)
		}

		balance := token.Balance
		if quote.Total.IsPositive() {
			debited, err := tx.Tokens().Apply(ctx, domain.BalanceMutation{
				TokenID: token.ID,
				Delta:   quote.Total.Neg(),
				Reason:  domain.MutationOrderPlaced,
				RefType: refTypeOrder,
				RefID:   order.ID,
			})
			if err != nil {
				zap.L().Error("order debit failed, rolling back placement",
					zap.Uint("tokenID", token.ID),
					zap.String("orderNumber", order.OrderNumber),
					zap.Error(err),
				)
				return domain.ErrBalanceDeductFailed.With("order_number", order.OrderNumber)
			}
			balance = debited.Balance
			s.metrics.BalanceMutated(string(domain.MutationOrderPlaced))
		}

		if key != "" {
			s.bestEffort(ctx, tx, stepMarkStockSold, orderField(order), func(sp Store) error {
				n, err := sp.Inventory().MarkSold(ctx, key, order.ID, s.now())
				if err != nil {
					return err
				}
				if n != len(items) {
					return fmt.Errorf("marked %d of %d claimed items sold", n, len(items))
				}
				return nil
			})
		}

		if order.DeviceFingerprint != nil {
			s.bestEffort(ctx, tx, stepDevicePurchase, orderField(order), func(sp Store) error {
				return sp.Devices().Record(ctx, domain.DevicePurchase{
					Fingerprint:     *order.DeviceFingerprint,
					ProductOptionID: option.ID,
					Quantity:        quantity,
					OrderID:         order.ID,
				})
			})
		}

		result = PlaceOrderResult{Order: order, Quote: quote, NewBalance: balance}
		return nil
	})
	if err != nil {
		if errors.Is(err, repository.ErrActiveOrderExists) {
			return PlaceOrderResult{}, s.fail("place_order", s.activeOrderConflict(ctx, tokenID))
		}
		return PlaceOrderResult{}, s.fail("place_order", err)
	}

	s.metrics.OrderPlaced(string(result.Order.DeliveryMode))
	s.publish(result.Order)

	return result, nil
}

// eligibleToken resolves the token and checks the blocked flag and the
// single-active-order rule.
func (s *FulfillmentService) eligibleToken(ctx context.Context, tx Store, value string) (domain.Token, error) {
	token, err := findToken(ctx, tx, value)
	if err != nil {
		return domain.Token{}, err
	}

	if err = tx.Tokens().Lock(ctx, token.ID); err != nil {
		return domain.Token{}, fmt.Errorf("tx.Tokens().Lock -> %w", err)
	}

	if token.IsBlocked {
		return domain.Token{}, domain.ErrTokenBlocked
	}

	active, err := tx.Orders().FindActiveByToken(ctx, token.ID)
	if err == nil {
		return domain.Token{}, domain.ErrHasPendingOrder.With("order_number", active.OrderNumber)
	}
	if !errors.Is(err, repository.ErrOrderNotFound) {
		return domain.Token{}, fmt.Errorf("tx.Orders().FindActiveByToken -> %w", err)
	}

	return token, nil
}

func (s *FulfillmentService) resolveOption(ctx context.Context, tx Store, in PlaceOrderInput) (domain.ProductOption, int, error) {
	option, err := tx.Catalog().FindOption(ctx, in.OptionID)
	if err != nil {
		if errors.Is(err, repository.ErrOptionNotFound) {
			return domain.ProductOption{}, 0, domain.ErrOptionNotFound
		}
		return domain.ProductOption{}, 0, fmt.Errorf("tx.Catalog().FindOption -> %w", err)
	}
	if !option.IsActive || option.ProductID != in.ProductID {
		return domain.ProductOption{}, 0, domain.ErrOptionNotFound
	}

	quantity, err := option.ResolveQuantity(in.Quantity)
	if err != nil {
		return domain.ProductOption{}, 0, err
	}

	if err = option.DeliveryMode.Validate(in.DeliveryFields); err != nil {
		return domain.ProductOption{}, 0, err
	}

	return option, quantity, nil
}

// findCoupon returns nil for an empty or unknown code; an unusable coupon is
// ignored by pricing, not refused.
func (s *FulfillmentService) findCoupon(ctx context.Context, tx Store, code string) (*domain.Coupon, error) {
	code = domain.NormalizeCouponCode(code)
	if code == "" {
		return nil, nil
	}

	coupon, err := tx.Coupons().FindByCodeForUpdate(ctx, code)
	if err != nil {
		if errors.Is(err, repository.ErrCouponNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("tx.Coupons().FindByCodeForUpdate -> %w", err)
	}

	return &coupon, nil
}

func (s *FulfillmentService) checkDeviceLimit(ctx context.Context, tx Store, option domain.ProductOption, quantity int, fingerprint string) error {
	fingerprint = strings.TrimSpace(fingerprint)
	if option.PurchaseLimit == nil || fingerprint == "" {
		return nil
	}

	purchased, err := tx.Devices().Purchased(ctx, fingerprint, option.ID)
	if err != nil {
		return fmt.Errorf("tx.Devices().Purchased -> %w", err)
	}
	if purchased+quantity > *option.PurchaseLimit {
		return domain.ErrPurchaseLimitReached.
			With("limit", *option.PurchaseLimit).
			With("purchased", purchased)
	}

	return nil
}

// reserveCoupon records one use of the quoted coupon before anything is
// charged. It reports false when the coupon hit its cap after it was read; the
// order is then priced without it. A failed update is logged and the discount
// stands.
func (s *FulfillmentService) reserveCoupon(ctx context.Context, tx Store, code string) bool {
	reserved := true
	s.bestEffort(ctx, tx, stepCouponUsage, zap.String("coupon", code), func(sp Store) error {
		ok, err := sp.Coupons().IncrementUsage(ctx, code)
		if err != nil {
			return err
		}
		if !ok {
			zap.L().Info("coupon exhausted during placement, pricing without it", zap.String("coupon", code))
			reserved = false
		}
		return nil
	})

	return reserved
}

func orderField(order domain.Order) zap.Field {
	return zap.String("orderNumber", order.OrderNumber)
}

func (s *FulfillmentService) bestEffort(ctx context.Context, tx Store, step string, ref zap.Field, fn func(sp Store) error) {
	if err := tx.Transaction(ctx, fn); err != nil {
		zap.L().Error("best-effort step failed",
			zap.String("step", step),
			ref,
			zap.Error(err),
		)
		s.metrics.BestEffortFailed(step)
	}
}

// activeOrderConflict reports a placement that lost the race against another
// placement for the same token.
func (s *FulfillmentService) activeOrderConflict(ctx context.Context, tokenID uint) error {
	active, err := s.store.Orders().FindActiveByToken(ctx, tokenID)
	if err != nil {
		zap.L().Warn("active order vanished after unique violation", zap.Uint("tokenID", tokenID), zap.Error(err))
		return domain.ErrHasPendingOrder
	}

	return domain.ErrHasPendingOrder.With("order_number", active.OrderNumber)
}

func findToken(ctx context.Context, tx Store, value string) (domain.Token, error) {
	if domain.NormalizeTokenValue(value) == "" {
		return domain.Token{}, domain.ErrTokenNotFound
	}

	token, err := tx.Tokens().FindByValue(ctx, value)
	if err != nil {
		if errors.Is(err, repository.ErrTokenNotFound) {
			return domain.Token{}, domain.ErrTokenNotFound
		}
		return domain.Token{}, fmt.Errorf("tx.Tokens().FindByValue -> %w", err)
	}

	return token, nil
}
