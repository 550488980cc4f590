package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type RequestStatus string

const (
	RequestPending  RequestStatus = "pending"
	RequestApproved RequestStatus = "approved"
	RequestRejected RequestStatus = "rejected"
)

type ReviewAction string

const (
	ActionApprove ReviewAction = "approve"
	ActionReject  ReviewAction = "reject"
)

func (a ReviewAction) IsValid() bool {
	return a == ActionApprove || a == ActionReject
}

func (a ReviewAction) Status() RequestStatus {
	if a == ActionApprove {
		return RequestApproved
	}
	return RequestRejected
}

// RechargeRequest asks an operator to credit Amount after checking the proof image.
type RechargeRequest struct {
	ID         uint            `json:"id"`
	TokenID    uint            `json:"-"`
	Amount     decimal.Decimal `json:"amount"`
	ProofImage string          `json:"proof_image"`
	Status     RequestStatus   `json:"status"`
	Note       string          `json:"note,omitempty"`
	ReviewedAt *time.Time      `json:"reviewed_at,omitempty"`
	CreatedAt  time.Time       `json:"created_at"`
	UpdatedAt  time.Time       `json:"updated_at"`
}

// RefundRequest references its order by number; Amount is set once approved.
type RefundRequest struct {
	ID          uint                `json:"id"`
	OrderNumber string              `json:"order_number"`
	OrderID     uint                `json:"order_id"`
	TokenID     uint                `json:"-"`
	Reason      string              `json:"reason"`
	Status      RequestStatus       `json:"status"`
	Amount      decimal.NullDecimal `json:"amount"`
	Note        string              `json:"note,omitempty"`
	ReviewedAt  *time.Time          `json:"reviewed_at,omitempty"`
	CreatedAt   time.Time           `json:"created_at"`
	UpdatedAt   time.Time           `json:"updated_at"`
}
