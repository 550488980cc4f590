package request

import (
	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/shopspring/decimal"

	"github.com/yizeng/gab/gin/gorm/storefront/internal/domain"
)

type SubmitRechargeRequest struct {
	// Token is optional; a new token is issued when empty.
	Token      string          `json:"token"`
	Amount     decimal.Decimal `json:"amount" swaggertype:"string" example:"25.00"`
	ProofImage string          `json:"proof_image"`
}

func (req *SubmitRechargeRequest) Validate() error {
	return validation.ValidateStruct(
		req,
		validation.Field(&req.ProofImage, validation.Required, validation.Length(1, 2048)),
	)
}

type ReviewRequest struct {
	Action domain.ReviewAction `json:"action"`
	Note   string              `json:"note"`
	// Amount overrides the refunded amount; ignored for recharges.
	Amount *decimal.Decimal `json:"amount,omitempty" swaggertype:"string" example:"12.50"`
}

func (req *ReviewRequest) Validate() error {
	return validation.ValidateStruct(
		req,
		validation.Field(&req.Action, validation.Required),
		validation.Field(&req.Note, validation.Length(0, 1000)),
	)
}
