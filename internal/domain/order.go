package domain

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

type OrderStatus string

const (
	OrderPending    OrderStatus = "pending"
	OrderInProgress OrderStatus = "in_progress"
	OrderCompleted  OrderStatus = "completed"
	OrderRejected   OrderStatus = "rejected"
	OrderCancelled  OrderStatus = "cancelled"
)

// ActiveOrderStatuses are the non-terminal statuses; a token holds at most one
// order in any of them.
var ActiveOrderStatuses = []OrderStatus{OrderPending, OrderInProgress}

func (s OrderStatus) IsTerminal() bool {
	return s == OrderCompleted || s == OrderRejected || s == OrderCancelled
}

func (s OrderStatus) IsActive() bool {
	return s == OrderPending || s == OrderInProgress
}

var orderTransitions = map[OrderStatus][]OrderStatus{
	OrderPending:    {OrderInProgress, OrderCancelled, OrderCompleted, OrderRejected},
	OrderInProgress: {OrderCompleted, OrderRejected},
}

// SourcesOf lists the statuses from which to is reachable.
func SourcesOf(to OrderStatus) []OrderStatus {
	var from []OrderStatus
	for src, targets := range orderTransitions {
		for _, t := range targets {
			if t == to {
				from = append(from, src)
			}
		}
	}
	return from
}

func CanTransition(from, to OrderStatus) bool {
	for _, t := range orderTransitions[from] {
		if t == to {
			return true
		}
	}
	return false
}

// CheckTransition maps a disallowed move to its reported error.
func CheckTransition(from, to OrderStatus) error {
	if CanTransition(from, to) {
		return nil
	}
	if from == OrderInProgress && to == OrderCancelled {
		return ErrOrderInProgress.With("status", from)
	}
	return ErrInvalidTransition.With("status", from).With("target", to)
}

// RefundsOnTransition reports whether moving into to returns the order total
// to the token.
func RefundsOnTransition(to OrderStatus) bool {
	return to == OrderCancelled || to == OrderRejected
}

type Order struct {
	ID                uint            `json:"id"`
	OrderNumber       string          `json:"order_number"`
	TokenID           uint            `json:"-"`
	ProductID         uint            `json:"product_id"`
	ProductOptionID   uint            `json:"product_option_id"`
	Quantity          int             `json:"quantity"`
	UnitPrice         decimal.Decimal `json:"unit_price"`
	BasePrice         decimal.Decimal `json:"base_price"`
	DiscountAmount    decimal.Decimal `json:"discount_amount"`
	TotalPrice        decimal.Decimal `json:"total_price"`
	CouponCode        *string         `json:"coupon_code,omitempty"`
	DeliveryMode      DeliveryMode    `json:"delivery_mode"`
	Status            OrderStatus     `json:"status"`
	DeliveryFields    DeliveryFields  `json:"-"`
	DeliveredContent  string          `json:"delivered_content,omitempty"`
	OperatorNote      string          `json:"operator_note,omitempty"`
	DeviceFingerprint *string         `json:"-"`
	CreatedAt         time.Time       `json:"created_at"`
	UpdatedAt         time.Time       `json:"updated_at"`
}

func FormatOrderNumber(prefix string, id uint) string {
	return fmt.Sprintf("%s%08d", prefix, id)
}

// OrderPatch carries the fields written together with a status change.
type OrderPatch struct {
	DeliveredContent *string
	OperatorNote     *string
}

// OrderEvent is published after a committed status change.
type OrderEvent struct {
	OrderID     uint        `json:"order_id"`
	OrderNumber string      `json:"order_number"`
	Status      OrderStatus `json:"status"`
	At          time.Time   `json:"at"`
}

func (o Order) Event(at time.Time) OrderEvent {
	return OrderEvent{OrderID: o.ID, OrderNumber: o.OrderNumber, Status: o.Status, At: at}
}
