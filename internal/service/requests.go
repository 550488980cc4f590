package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/yizeng/gab/gin/gorm/storefront/internal/domain"
	"github.com/yizeng/gab/gin/gorm/storefront/internal/repository"
)

const (
	refTypeRecharge = "recharge"
	refTypeRefund   = "refund"
)

type RechargeSubmission struct {
	Request domain.RechargeRequest `json:"request"`
	// TokenValue is only set when the submission created the token.
	TokenValue string `json:"token,omitempty"`
}

// SubmitRecharge files a pending recharge. Without a token value a fresh token
// is created and its value returned once.
func (s *FulfillmentService) SubmitRecharge(ctx context.Context, tokenValue string, amount decimal.Decimal, proofImage string) (RechargeSubmission, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	amount = domain.RoundMoney(amount)
	if !amount.IsPositive() {
		return RechargeSubmission{}, s.fail("submit_recharge", domain.ErrInvalidAmount)
	}

	var submission RechargeSubmission
	err := s.store.Transaction(ctx, func(tx Store) error {
		var token domain.Token
		var err error
		if domain.NormalizeTokenValue(tokenValue) == "" {
			token, err = tx.Tokens().Create(ctx, domain.Token{Value: NewTokenValue()})
			if err != nil {
				return fmt.Errorf("tx.Tokens().Create -> %w", err)
			}
			submission.TokenValue = token.Value
		} else {
			token, err = findToken(ctx, tx, tokenValue)
			if err != nil {
				return err
			}
			if token.IsBlocked {
				return domain.ErrTokenBlocked
			}
		}

		submission.Request, err = tx.Recharges().Create(ctx, domain.RechargeRequest{
			TokenID:    token.ID,
			Amount:     amount,
			ProofImage: proofImage,
		})
		if err != nil {
			return fmt.Errorf("tx.Recharges().Create -> %w", err)
		}

		return nil
	})
	if err != nil {
		return RechargeSubmission{}, s.fail("submit_recharge", err)
	}

	return submission, nil
}

// NewTokenValue generates an unguessable token value in canonical form.
func NewTokenValue() string {
	return domain.NormalizeTokenValue(strings.ReplaceAll(uuid.NewString(), "-", ""))
}

type ReviewResult struct {
	RechargeRequest *domain.RechargeRequest `json:"recharge_request,omitempty"`
	RefundRequest   *domain.RefundRequest   `json:"refund_request,omitempty"`
	NewBalance      *decimal.Decimal        `json:"new_balance,omitempty"`
}

// ReviewRecharge approves or rejects a pending recharge exactly once. Approval
// credits the token before the status flips, inside the same transaction.
func (s *FulfillmentService) ReviewRecharge(ctx context.Context, requestID uint, action domain.ReviewAction, note string) (ReviewResult, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	if !action.IsValid() {
		return ReviewResult{}, s.fail("review_recharge", domain.ErrInvalidAction)
	}

	var result ReviewResult
	err := s.store.Transaction(ctx, func(tx Store) error {
		req, err := tx.Recharges().FindByID(ctx, requestID)
		if err != nil {
			if errors.Is(err, repository.ErrRechargeNotFound) {
				return domain.ErrRechargeNotFound
			}
			return fmt.Errorf("tx.Recharges().FindByID -> %w", err)
		}
		if req.Status != domain.RequestPending {
			return domain.ErrAlreadyProcessed.With("status", req.Status)
		}

		if action == domain.ActionApprove {
			token, err := tx.Tokens().Apply(ctx, domain.BalanceMutation{
				TokenID: req.TokenID,
				Delta:   req.Amount,
				Reason:  domain.MutationRechargeApproved,
				RefType: refTypeRecharge,
				RefID:   req.ID,
			})
			if err != nil {
				return fmt.Errorf("tx.Tokens().Apply -> %w", err)
			}
			result.NewBalance = &token.Balance
		}

		resolved, err := tx.Recharges().Resolve(ctx, req.ID, action.Status(), note, s.now())
		if err != nil {
			return fmt.Errorf("tx.Recharges().Resolve -> %w", err)
		}
		if !resolved {
			current, err := tx.Recharges().FindByID(ctx, requestID)
			if err != nil {
				return fmt.Errorf("tx.Recharges().FindByID -> %w", err)
			}
			return domain.ErrAlreadyProcessed.With("status", current.Status)
		}

		req, err = tx.Recharges().FindByID(ctx, requestID)
		if err != nil {
			return fmt.Errorf("tx.Recharges().FindByID -> %w", err)
		}
		result.RechargeRequest = &req

		return nil
	})
	if err != nil {
		return ReviewResult{}, s.fail("review_recharge", err)
	}

	if action == domain.ActionApprove {
		s.metrics.BalanceMutated(string(domain.MutationRechargeApproved))
	}
	s.metrics.RequestReviewed(refTypeRecharge, string(action.Status()))
	zap.L().Info("recharge reviewed",
		zap.Uint("requestID", requestID),
		zap.String("status", string(action.Status())),
	)

	return result, nil
}

// SubmitRefund files the single refund request allowed per order.
func (s *FulfillmentService) SubmitRefund(ctx context.Context, tokenValue, orderNumber, reason string) (domain.RefundRequest, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	orderNumber = strings.TrimSpace(orderNumber)

	var created domain.RefundRequest
	err := s.store.Transaction(ctx, func(tx Store) error {
		token, err := findToken(ctx, tx, tokenValue)
		if err != nil {
			return err
		}

		order, err := tx.Orders().FindByNumber(ctx, orderNumber)
		if err != nil {
			if errors.Is(err, repository.ErrOrderNotFound) {
				return domain.ErrOrderNotFound
			}
			return fmt.Errorf("tx.Orders().FindByNumber -> %w", err)
		}
		if order.TokenID != token.ID {
			return domain.ErrOrderNotFound
		}

		existing, err := tx.Refunds().FindByOrderNumber(ctx, orderNumber)
		if err == nil {
			return domain.ErrRefundExists.With("status", existing.Status)
		}
		if !errors.Is(err, repository.ErrRefundNotFound) {
			return fmt.Errorf("tx.Refunds().FindByOrderNumber -> %w", err)
		}

		if order.Status != domain.OrderCompleted {
			return domain.ErrOrderNotRefundable.With("status", order.Status)
		}

		created, err = tx.Refunds().Create(ctx, domain.RefundRequest{
			OrderNumber: order.OrderNumber,
			OrderID:     order.ID,
			TokenID:     token.ID,
			Reason:      reason,
		})
		if err != nil {
			return fmt.Errorf("tx.Refunds().Create -> %w", err)
		}

		return nil
	})
	if err != nil {
		if errors.Is(err, repository.ErrRefundExists) {
			return domain.RefundRequest{}, s.fail("submit_refund", s.refundConflict(ctx, orderNumber))
		}
		return domain.RefundRequest{}, s.fail("submit_refund", err)
	}

	return created, nil
}

func (s *FulfillmentService) refundConflict(ctx context.Context, orderNumber string) error {
	existing, err := s.store.Refunds().FindByOrderNumber(ctx, orderNumber)
	if err != nil {
		return domain.ErrRefundExists
	}

	return domain.ErrRefundExists.With("status", existing.Status)
}

// ReviewRefund approves or rejects a pending refund. Approval credits amount,
// defaulting to the order total; the order's own status is left unchanged.
func (s *FulfillmentService) ReviewRefund(ctx context.Context, requestID uint, action domain.ReviewAction, note string, amount *decimal.Decimal) (ReviewResult, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	if !action.IsValid() {
		return ReviewResult{}, s.fail("review_refund", domain.ErrInvalidAction)
	}

	var result ReviewResult
	err := s.store.Transaction(ctx, func(tx Store) error {
		req, err := tx.Refunds().FindByID(ctx, requestID)
		if err != nil {
			if errors.Is(err, repository.ErrRefundNotFound) {
				return domain.ErrRefundNotFound
			}
			return fmt.Errorf("tx.Refunds().FindByID -> %w", err)
		}
		if req.Status != domain.RequestPending {
			return domain.ErrAlreadyProcessed.With("status", req.Status)
		}

		granted := decimal.NullDecimal{}
		if action == domain.ActionApprove {
			order, err := findOrder(ctx, tx, req.OrderID)
			if err != nil {
				return err
			}

			credit := order.TotalPrice
			if amount != nil {
				credit = domain.RoundMoney(*amount)
			}
			if !credit.IsPositive() || credit.GreaterThan(order.TotalPrice) {
				return domain.ErrInvalidAmount.With("max", order.TotalPrice.StringFixed(2))
			}

			token, err := tx.Tokens().Apply(ctx, domain.BalanceMutation{
				TokenID: req.TokenID,
				Delta:   credit,
				Reason:  domain.MutationRefundApproved,
				RefType: refTypeRefund,
				RefID:   req.ID,
			})
			if err != nil {
				return fmt.Errorf("tx.Tokens().Apply -> %w", err)
			}
			result.NewBalance = &token.Balance
			granted = decimal.NewNullDecimal(credit)
		}

		resolved, err := tx.Refunds().Resolve(ctx, req.ID, action.Status(), note, granted, s.now())
		if err != nil {
			return fmt.Errorf("tx.Refunds().Resolve -> %w", err)
		}
		if !resolved {
			current, err := tx.Refunds().FindByID(ctx, requestID)
			if err != nil {
				return fmt.Errorf("tx.Refunds().FindByID -> %w", err)
			}
			return domain.ErrAlreadyProcessed.With("status", current.Status)
		}

		req, err = tx.Refunds().FindByID(ctx, requestID)
		if err != nil {
			return fmt.Errorf("tx.Refunds().FindByID -> %w", err)
		}
		result.RefundRequest = &req

		return nil
	})
	if err != nil {
		return ReviewResult{}, s.fail("review_refund", err)
	}

	if action == domain.ActionApprove {
		s.metrics.BalanceMutated(string(domain.MutationRefundApproved))
	}
	s.metrics.RequestReviewed(refTypeRefund, string(action.Status()))
	zap.L().Info("refund reviewed",
		zap.Uint("requestID", requestID),
		zap.String("status", string(action.Status())),
	)

	return result, nil
}
