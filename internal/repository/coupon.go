package repository

import (
	"context"
	"fmt"

	"github.com/yizeng/gab/gin/gorm/storefront/internal/domain"
	"github.com/yizeng/gab/gin/gorm/storefront/internal/repository/dao"
)

var (
	ErrCouponNotFound = dao.ErrCouponNotFound
	ErrCouponExists   = dao.ErrCouponExists
)

type CouponDAO interface {
	Insert(ctx context.Context, coupon dao.Coupon) (dao.Coupon, error)
	FindByCode(ctx context.Context, code string) (dao.Coupon, error)
	FindByCodeForUpdate(ctx context.Context, code string) (dao.Coupon, error)
	IncrementUsage(ctx context.Context, code string) (bool, error)
}

type CouponRepository struct {
	dao CouponDAO
}

func NewCouponRepository(dao CouponDAO) *CouponRepository {
	return &CouponRepository{
		dao: dao,
	}
}

func (r *CouponRepository) Create(ctx context.Context, coupon domain.Coupon) (domain.Coupon, error) {
	created, err := r.dao.Insert(ctx, dao.Coupon{
		Code:          domain.NormalizeCouponCode(coupon.Code),
		DiscountType:  string(coupon.DiscountType),
		DiscountValue: domain.RoundMoney(coupon.DiscountValue),
		MaxUses:       coupon.MaxUses,
		ProductID:     coupon.ProductID,
		ExpiresAt:     coupon.ExpiresAt,
		IsActive:      coupon.IsActive,
	})
	if err != nil {
		return domain.Coupon{}, fmt.Errorf("r.dao.Insert -> %w", err)
	}

	return r.daoToDomain(created), nil
}

func (r *CouponRepository) FindByCode(ctx context.Context, code string) (domain.Coupon, error) {
	found, err := r.dao.FindByCode(ctx, domain.NormalizeCouponCode(code))
	if err != nil {
		return domain.Coupon{}, fmt.Errorf("r.dao.FindByCode -> %w", err)
	}

	return r.daoToDomain(found), nil
}

func (r *CouponRepository) FindByCodeForUpdate(ctx context.Context, code string) (domain.Coupon, error) {
	found, err := r.dao.FindByCodeForUpdate(ctx, domain.NormalizeCouponCode(code))
	if err != nil {
		return domain.Coupon{}, fmt.Errorf("r.dao.FindByCodeForUpdate -> %w", err)
	}

	return r.daoToDomain(found), nil
}

func (r *CouponRepository) IncrementUsage(ctx context.Context, code string) (bool, error) {
	ok, err := r.dao.IncrementUsage(ctx, code)
	if err != nil {
		return false, fmt.Errorf("r.dao.IncrementUsage -> %w", err)
	}

	return ok, nil
}

func (r *CouponRepository) daoToDomain(c dao.Coupon) domain.Coupon {
	return domain.Coupon{
		ID:            c.ID,
		Code:          c.Code,
		DiscountType:  domain.DiscountType(c.DiscountType),
		DiscountValue: domain.RoundMoney(c.DiscountValue),
		MaxUses:       c.MaxUses,
		UsedCount:     c.UsedCount,
		ProductID:     c.ProductID,
		ExpiresAt:     c.ExpiresAt,
		IsActive:      c.IsActive,
		CreatedAt:     c.CreatedAt,
		UpdatedAt:     c.UpdatedAt,
	}
}
