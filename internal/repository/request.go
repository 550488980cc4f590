package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/yizeng/gab/gin/gorm/storefront/internal/domain"
	"github.com/yizeng/gab/gin/gorm/storefront/internal/repository/dao"
)

var (
	ErrRechargeNotFound = dao.ErrRechargeNotFound
	ErrRefundNotFound   = dao.ErrRefundNotFound
	ErrRefundExists     = dao.ErrRefundExists
)

type RechargeDAO interface {
	Insert(ctx context.Context, req dao.RechargeRequest) (dao.RechargeRequest, error)
	FindByID(ctx context.Context, id uint) (dao.RechargeRequest, error)
	Resolve(ctx context.Context, id uint, status, note string, at time.Time) (int64, error)
}

type RechargeRepository struct {
	dao RechargeDAO
}

func NewRechargeRepository(dao RechargeDAO) *RechargeRepository {
	return &RechargeRepository{
		dao: dao,
	}
}

func (r *RechargeRepository) Create(ctx context.Context, req domain.RechargeRequest) (domain.RechargeRequest, error) {
	created, err := r.dao.Insert(ctx, dao.RechargeRequest{
		TokenID:    req.TokenID,
		Amount:     domain.RoundMoney(req.Amount),
		ProofImage: req.ProofImage,
		Status:     string(domain.RequestPending),
	})
	if err != nil {
		return domain.RechargeRequest{}, fmt.Errorf("r.dao.Insert -> %w", err)
	}

	return rechargeDaoToDomain(created), nil
}

func (r *RechargeRepository) FindByID(ctx context.Context, id uint) (domain.RechargeRequest, error) {
	found, err := r.dao.FindByID(ctx, id)
	if err != nil {
		return domain.RechargeRequest{}, fmt.Errorf("r.dao.FindByID -> %w", err)
	}

	return rechargeDaoToDomain(found), nil
}

// Resolve reports false when the request was no longer pending.
func (r *RechargeRepository) Resolve(ctx context.Context, id uint, status domain.RequestStatus, note string, at time.Time) (bool, error) {
	n, err := r.dao.Resolve(ctx, id, string(status), note, at)
	if err != nil {
		return false, fmt.Errorf("r.dao.Resolve -> %w", err)
	}

	return n == 1, nil
}

func rechargeDaoToDomain(r dao.RechargeRequest) domain.RechargeRequest {
	return domain.RechargeRequest{
		ID:         r.ID,
		TokenID:    r.TokenID,
		Amount:     domain.RoundMoney(r.Amount),
		ProofImage: r.ProofImage,
		Status:     domain.RequestStatus(r.Status),
		Note:       r.Note,
		ReviewedAt: r.ReviewedAt,
		CreatedAt:  r.CreatedAt,
		UpdatedAt:  r.UpdatedAt,
	}
}

type RefundDAO interface {
	Insert(ctx context.Context, req dao.RefundRequest) (dao.RefundRequest, error)
	FindByID(ctx context.Context, id uint) (dao.RefundRequest, error)
	FindByOrderNumber(ctx context.Context, number string) (dao.RefundRequest, error)
	Resolve(ctx context.Context, id uint, status, note string, amount decimal.NullDecimal, at time.Time) (int64, error)
}

type RefundRepository struct {
	dao RefundDAO
}

func NewRefundRepository(dao RefundDAO) *RefundRepository {
	return &RefundRepository{
		dao: dao,
	}
}

func (r *RefundRepository) Create(ctx context.Context, req domain.RefundRequest) (domain.RefundRequest, error) {
	created, err := r.dao.Insert(ctx, dao.RefundRequest{
		OrderNumber: req.OrderNumber,
		OrderID:     req.OrderID,
		TokenID:     req.TokenID,
		Reason:      req.Reason,
		Status:      string(domain.RequestPending),
	})
	if err != nil {
		return domain.RefundRequest{}, fmt.Errorf("r.dao.Insert -> %w", err)
	}

	return refundDaoToDomain(created), nil
}

func (r *RefundRepository) FindByID(ctx context.Context, id uint) (domain.RefundRequest, error) {
	found, err := r.dao.FindByID(ctx, id)
	if err != nil {
		return domain.RefundRequest{}, fmt.Errorf("r.dao.FindByID -> %w", err)
	}

	return refundDaoToDomain(found), nil
}

func (r *RefundRepository) FindByOrderNumber(ctx context.Context, number string) (domain.RefundRequest, error) {
	found, err := r.dao.FindByOrderNumber(ctx, number)
	if err != nil {
		return domain.RefundRequest{}, fmt.Errorf("r.dao.FindByOrderNumber -> %w", err)
	}

	return refundDaoToDomain(found), nil
}

func (r *RefundRepository) Resolve(ctx context.Context, id uint, status domain.RequestStatus, note string, amount decimal.NullDecimal, at time.Time) (bool, error) {
	n, err := r.dao.Resolve(ctx, id, string(status), note, amount, at)
	if err != nil {
		return false, fmt.Errorf("r.dao.Resolve -> %w", err)
	}

	return n == 1, nil
}

func refundDaoToDomain(r dao.RefundRequest) domain.RefundRequest {
	amount := r.Amount
	if amount.Valid {
		amount.Decimal = domain.RoundMoney(amount.Decimal)
	}

	return domain.RefundRequest{
		ID:          r.ID,
		OrderNumber: r.OrderNumber,
		OrderID:     r.OrderID,
		TokenID:     r.TokenID,
		Reason:      r.Reason,
		Status:      domain.RequestStatus(r.Status),
		Amount:      amount,
		Note:        r.Note,
		ReviewedAt:  r.ReviewedAt,
		CreatedAt:   r.CreatedAt,
		UpdatedAt:   r.UpdatedAt,
	}
}
