package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/yizeng/gab/gin/gorm/storefront/internal/domain"
	"github.com/yizeng/gab/gin/gorm/storefront/internal/repository"
)

type TransitionResult struct {
	Order            domain.Order    `json:"order"`
	AlreadyCancelled bool            `json:"already_cancelled,omitempty"`
	RefundAmount     decimal.Decimal `json:"refund_amount"`
	NewBalance       decimal.Decimal `json:"new_balance"`
}

// CancelOrder cancels a pending order owned by the token and refunds its total.
// Cancelling an already cancelled order succeeds without a second refund.
func (s *FulfillmentService) CancelOrder(ctx context.Context, tokenValue string, orderID uint) (TransitionResult, error) {
	return s.runTransition(ctx, "cancel_order", orderID, domain.OrderCancelled, domain.OrderPatch{},
		func(ctx context.Context, tx Store, order domain.Order) error {
			token, err := findToken(ctx, tx, tokenValue)
			if err != nil {
				return err
			}
			if order.TokenID != token.ID {
				return domain.ErrOrderNotFound
			}
			return nil
		})
}

func (s *FulfillmentService) OperatorCancelOrder(ctx context.Context, orderID uint, note string) (TransitionResult, error) {
	return s.runTransition(ctx, "operator_cancel_order", orderID, domain.OrderCancelled, notePatch(note), nil)
}

// ClaimOrder moves a pending order to in_progress; the customer can no longer cancel it.
func (s *FulfillmentService) ClaimOrder(ctx context.Context, orderID uint) (TransitionResult, error) {
	return s.runTransition(ctx, "claim_order", orderID, domain.OrderInProgress, domain.OrderPatch{}, nil)
}

func (s *FulfillmentService) CompleteOrder(ctx context.Context, orderID uint, content, note string) (TransitionResult, error) {
	patch := notePatch(note)
	if content != "" {
		patch.DeliveredContent = &content
	}

	return s.runTransition(ctx, "complete_order", orderID, domain.OrderCompleted, patch, nil)
}

func (s *FulfillmentService) RejectOrder(ctx context.Context, orderID uint, note string) (TransitionResult, error) {
	return s.runTransition(ctx, "reject_order", orderID, domain.OrderRejected, notePatch(note), nil)
}

func notePatch(note string) domain.OrderPatch {
	if note == "" {
		return domain.OrderPatch{}
	}

	return domain.OrderPatch{OperatorNote: &note}
}

type orderCheck func(ctx context.Context, tx Store, order domain.Order) error

// runTransition applies one state-machine move with a status-guarded update
// and, for cancel and reject, credits the stored order total back.
func (s *FulfillmentService) runTransition(ctx context.Context, operation string, orderID uint, to domain.OrderStatus, patch domain.OrderPatch, check orderCheck) (TransitionResult, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	var result TransitionResult
	err := s.store.Transaction(ctx, func(tx Store) error {
		order, err := findOrder(ctx, tx, orderID)
		if err != nil {
			return err
		}
		if check != nil {
			if err = check(ctx, tx, order); err != nil {
				return err
			}
		}

		if order.Status == domain.OrderCancelled && to == domain.OrderCancelled {
			result, err = s.settled(ctx, tx, order)
			result.AlreadyCancelled = true
			return err
		}
		if err = domain.CheckTransition(order.Status, to); err != nil {
			return err
		}

		moved, err := tx.Orders().Transition(ctx, order.ID, domain.SourcesOf(to), to, patch)
		if err != nil {
			return fmt.Errorf("tx.Orders().Transition -> %w", err)
		}
		if !moved {
			// Lost to a concurrent writer; report what it left behind.
			current, err := findOrder(ctx, tx, orderID)
			if err != nil {
				return err
			}
			if current.Status == domain.OrderCancelled && to == domain.OrderCancelled {
				result, err = s.settled(ctx, tx, current)
				result.AlreadyCancelled = true
				return err
			}
			if err = domain.CheckTransition(current.Status, to); err != nil {
				return err
			}
			return domain.ErrInvalidTransition.With("status", current.Status)
		}

		refund := decimal.Zero
		if domain.RefundsOnTransition(to) && order.TotalPrice.IsPositive() {
			reason := domain.MutationOrderCancelled
			if to == domain.OrderRejected {
				reason = domain.MutationOrderRejected
			}

			if _, err = tx.Tokens().Apply(ctx, domain.BalanceMutation{
				TokenID: order.TokenID,
				Delta:   order.TotalPrice,
				Reason:  reason,
				RefType: refTypeOrder,
				RefID:   order.ID,
			}); err != nil {
				return fmt.Errorf("tx.Tokens().Apply -> %w", err)
			}
			refund = order.TotalPrice
			s.metrics.BalanceMutated(string(reason))
		}

		current, err := findOrder(ctx, tx, orderID)
		if err != nil {
			return err
		}
		result, err = s.settled(ctx, tx, current)
		result.RefundAmount = refund
		return err
	})
	if err != nil {
		return TransitionResult{}, s.fail(operation, err)
	}

	if !result.AlreadyCancelled {
		s.metrics.OrderTransitioned(string(to))
		s.publish(result.Order)
		zap.L().Info("order transitioned",
			zap.String("operation", operation),
			zap.String("orderNumber", result.Order.OrderNumber),
			zap.String("status", string(result.Order.Status)),
		)
	}

	return result, nil
}

func (s *FulfillmentService) settled(ctx context.Context, tx Store, order domain.Order) (TransitionResult, error) {
	token, err := tx.Tokens().FindByID(ctx, order.TokenID)
	if err != nil {
		return TransitionResult{}, fmt.Errorf("tx.Tokens().FindByID -> %w", err)
	}

	return TransitionResult{Order: order, RefundAmount: decimal.Zero, NewBalance: token.Balance}, nil
}

func findOrder(ctx context.Context, tx Store, id uint) (domain.Order, error) {
	order, err := tx.Orders().FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrOrderNotFound) {
			return domain.Order{}, domain.ErrOrderNotFound
		}
		return domain.Order{}, fmt.Errorf("tx.Orders().FindByID -> %w", err)
	}

	return order, nil
}

// GetOrder returns the order only to the token that placed it.
func (s *FulfillmentService) GetOrder(ctx context.Context, tokenValue string, orderID uint) (domain.Order, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	token, err := findToken(ctx, s.store, tokenValue)
	if err != nil {
		return domain.Order{}, err
	}

	order, err := findOrder(ctx, s.store, orderID)
	if err != nil {
		return domain.Order{}, err
	}
	if order.TokenID != token.ID {
		return domain.Order{}, domain.ErrOrderNotFound
	}

	return order, nil
}

// FindOrder is the operator view of any order.
func (s *FulfillmentService) FindOrder(ctx context.Context, orderID uint) (domain.Order, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	return findOrder(ctx, s.store, orderID)
}

func (s *FulfillmentService) GetActiveOrder(ctx context.Context, tokenValue string) (domain.Order, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	token, err := findToken(ctx, s.store, tokenValue)
	if err != nil {
		return domain.Order{}, err
	}

	order, err := s.store.Orders().FindActiveByToken(ctx, token.ID)
	if err != nil {
		if errors.Is(err, repository.ErrOrderNotFound) {
			return domain.Order{}, domain.ErrOrderNotFound
		}
		return domain.Order{}, fmt.Errorf("s.store.Orders().FindActiveByToken -> %w", err)
	}

	return order, nil
}

func (s *FulfillmentService) GetBalance(ctx context.Context, tokenValue string) (domain.Token, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	return findToken(ctx, s.store, tokenValue)
}
