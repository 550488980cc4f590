package request

import (
	"time"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/shopspring/decimal"

	"github.com/yizeng/gab/gin/gorm/storefront/internal/domain"
)

type CreateTokenRequest struct {
	Value          string          `json:"value"`
	InitialBalance decimal.Decimal `json:"initial_balance" swaggertype:"string" example:"100.00"`
}

func (req *CreateTokenRequest) Validate() error {
	return validation.ValidateStruct(
		req,
		validation.Field(&req.Value, validation.Length(0, 128)),
		validation.Field(&req.InitialBalance, validation.By(nonNegativeDecimal)),
	)
}

type BlockTokenRequest struct {
	Blocked *bool `json:"blocked"`
}

func (req *BlockTokenRequest) Validate() error {
	return validation.ValidateStruct(
		req,
		validation.Field(&req.Blocked, validation.NotNil),
	)
}

type CreateOptionRequest struct {
	ProductID           uint                `json:"product_id"`
	Name                string              `json:"name"`
	Price               decimal.Decimal     `json:"price" swaggertype:"string" example:"20.00"`
	DeliveryMode        domain.DeliveryMode `json:"delivery_mode"`
	PurchaseLimit       *int                `json:"purchase_limit"`
	MaxQuantityPerOrder *int                `json:"max_quantity_per_order"`
	IsActive            *bool               `json:"is_active"`
}

func (req *CreateOptionRequest) Validate() error {
	return validation.ValidateStruct(
		req,
		validation.Field(&req.ProductID, validation.Required),
		validation.Field(&req.Name, validation.Required, validation.Length(1, 200)),
		validation.Field(&req.Price, validation.By(nonNegativeDecimal)),
		validation.Field(&req.DeliveryMode, validation.Required),
		validation.Field(&req.PurchaseLimit, validation.NilOrNotEmpty, validation.Min(1)),
		validation.Field(&req.MaxQuantityPerOrder, validation.NilOrNotEmpty, validation.Min(1)),
	)
}

func (req *CreateOptionRequest) Option() domain.ProductOption {
	active := true
	if req.IsActive != nil {
		active = *req.IsActive
	}

	return domain.ProductOption{
		ProductID:           req.ProductID,
		Name:                req.Name,
		Price:               req.Price,
		DeliveryMode:        req.DeliveryMode,
		PurchaseLimit:       req.PurchaseLimit,
		MaxQuantityPerOrder: req.MaxQuantityPerOrder,
		IsActive:            active,
	}
}

type AddStockRequest struct {
	Contents []string `json:"contents"`
}

func (req *AddStockRequest) Validate() error {
	return validation.ValidateStruct(
		req,
		validation.Field(&req.Contents, validation.Required, validation.Length(1, 1000)),
	)
}

type CreateCouponRequest struct {
	Code          string              `json:"code"`
	DiscountType  domain.DiscountType `json:"discount_type"`
	DiscountValue decimal.Decimal     `json:"discount_value" swaggertype:"string" example:"10"`
	MaxUses       *int                `json:"max_uses"`
	ProductID     *uint               `json:"product_id"`
	ExpiresAt     *time.Time          `json:"expires_at"`
	IsActive      *bool               `json:"is_active"`
}

func (req *CreateCouponRequest) Validate() error {
	return validation.ValidateStruct(
		req,
		validation.Field(&req.Code, validation.Required, validation.By(validCouponCode)),
		validation.Field(&req.DiscountType, validation.Required,
			validation.In(domain.DiscountPercentage, domain.DiscountFixed)),
		validation.Field(&req.DiscountValue, validation.By(positiveDecimal)),
		validation.Field(&req.MaxUses, validation.NilOrNotEmpty, validation.Min(1)),
		validation.Field(&req.ExpiresAt, validation.By(inFuture)),
	)
}

func (req *CreateCouponRequest) Coupon() domain.Coupon {
	active := true
	if req.IsActive != nil {
		active = *req.IsActive
	}

	return domain.Coupon{
		Code:          req.Code,
		DiscountType:  req.DiscountType,
		DiscountValue: req.DiscountValue,
		MaxUses:       req.MaxUses,
		ProductID:     req.ProductID,
		ExpiresAt:     req.ExpiresAt,
		IsActive:      active,
	}
}
