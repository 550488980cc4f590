package request

import (
	validation "github.com/go-ozzo/ozzo-validation"

	"github.com/yizeng/gab/gin/gorm/storefront/internal/domain"
)

type PlaceOrderRequest struct {
	Token             string                `json:"token"`
	ProductID         uint                  `json:"product_id"`
	OptionID          uint                  `json:"option_id"`
	Quantity          int                   `json:"quantity"` // 0 or omitted buys one
	DeliveryFields    domain.DeliveryFields `json:"delivery_fields"`
	CouponCode        string                `json:"coupon_code"`
	DeviceFingerprint string                `json:"device_fingerprint"`
}

// Validate checks shape only; eligibility and delivery-field rules are the
// engine's, so their refusals keep their codes.
func (req *PlaceOrderRequest) Validate() error {
	return validation.ValidateStruct(
		req,
		validation.Field(&req.Token, validation.Required, validation.Length(1, 128)),
		validation.Field(&req.ProductID, validation.Required),
		validation.Field(&req.OptionID, validation.Required),
		validation.Field(&req.Quantity, validation.Min(0)),
		validation.Field(&req.CouponCode, validation.Length(0, 64)),
		validation.Field(&req.DeviceFingerprint, validation.Length(0, 255)),
	)
}

type CancelOrderRequest struct {
	Token string `json:"token"`
}

func (req *CancelOrderRequest) Validate() error {
	return validation.ValidateStruct(
		req,
		validation.Field(&req.Token, validation.Required),
	)
}

type CompleteOrderRequest struct {
	Content string `json:"content"`
	Note    string `json:"note"`
}

func (req *CompleteOrderRequest) Validate() error {
	return validation.ValidateStruct(
		req,
		validation.Field(&req.Note, validation.Length(0, 1000)),
	)
}

type NoteRequest struct {
	Note string `json:"note"`
}

func (req *NoteRequest) Validate() error {
	return validation.ValidateStruct(
		req,
		validation.Field(&req.Note, validation.Length(0, 1000)),
	)
}

type SubmitRefundRequest struct {
	Token       string `json:"token"`
	OrderNumber string `json:"order_number"`
	Reason      string `json:"reason"`
}

func (req *SubmitRefundRequest) Validate() error {
	return validation.ValidateStruct(
		req,
		validation.Field(&req.Token, validation.Required),
		validation.Field(&req.OrderNumber, validation.Required, validation.Length(1, 64)),
		validation.Field(&req.Reason, validation.Length(0, 1000)),
	)
}
