package domain

import "errors"

type Code string

const (
	CodeTokenNotFound         Code = "TOKEN_NOT_FOUND"
	CodeTokenBlocked          Code = "TOKEN_BLOCKED"
	CodeHasPendingOrder       Code = "HAS_PENDING_ORDER"
	CodeOptionNotFound        Code = "OPTION_NOT_FOUND"
	CodeQuantityLimitExceeded Code = "QUANTITY_LIMIT_EXCEEDED"
	CodeMissingDeliveryFields Code = "MISSING_DELIVERY_FIELDS"
	CodeInsufficientBalance   Code = "INSUFFICIENT_BALANCE"
	CodePurchaseLimitReached  Code = "PURCHASE_LIMIT_REACHED"
	CodeInsufficientStock     Code = "INSUFFICIENT_STOCK"
	CodeBalanceDeductFailed   Code = "BALANCE_DEDUCT_FAILED"
	CodeOrderNotFound         Code = "ORDER_NOT_FOUND"
	CodeOrderInProgress       Code = "ORDER_IN_PROGRESS"
	CodeInvalidTransition     Code = "INVALID_TRANSITION"
	CodeRechargeNotFound      Code = "RECHARGE_NOT_FOUND"
	CodeRefundNotFound        Code = "REFUND_NOT_FOUND"
	CodeAlreadyProcessed      Code = "ALREADY_PROCESSED"
	CodeRefundExists          Code = "REFUND_EXISTS"
	CodeOrderNotRefundable    Code = "ORDER_NOT_REFUNDABLE"
	CodeInvalidAmount         Code = "INVALID_AMOUNT"
	CodeInvalidAction         Code = "INVALID_ACTION"
	CodeTokenExists           Code = "TOKEN_EXISTS"
	CodeCouponExists          Code = "COUPON_EXISTS"
	CodeInvalidDeliveryMode   Code = "INVALID_DELIVERY_MODE"
)

// Error is a failure carrying a stable machine-readable code. Two errors match
// under errors.Is when their codes are equal, whatever their details.
type Error struct {
	Code    Code
	Message string
	Details map[string]any
}

func NewError(code Code, message string) *Error {
	return &Error{Code: code, Message: message}
}

func (e *Error) Error() string {
	return string(e.Code) + ": " + e.Message
}

func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}

	return t.Code == e.Code
}

// With returns a copy of e with key set in its details.
func (e *Error) With(key string, value any) *Error {
	details := make(map[string]any, len(e.Details)+1)
	for k, v := range e.Details {
		details[k] = v
	}
	details[key] = value

	return &Error{Code: e.Code, Message: e.Message, Details: details}
}

// AsError extracts the first *Error in err's chain.
func AsError(err error) (*Error, bool) {
	var de *Error
	if errors.As(err, &de) {
		return de, true
	}

	return nil, false
}

var (
	ErrTokenNotFound         = NewError(CodeTokenNotFound, "token not found")
	ErrTokenBlocked          = NewError(CodeTokenBlocked, "token is blocked")
	ErrHasPendingOrder       = NewError(CodeHasPendingOrder, "token already has an active order")
	ErrOptionNotFound        = NewError(CodeOptionNotFound, "product option not found")
	ErrQuantityLimitExceeded = NewError(CodeQuantityLimitExceeded, "quantity exceeds the per-order maximum")
	ErrMissingDeliveryFields = NewError(CodeMissingDeliveryFields, "delivery fields required by this option are missing")
	ErrInsufficientBalance   = NewError(CodeInsufficientBalance, "insufficient balance")
	ErrPurchaseLimitReached  = NewError(CodePurchaseLimitReached, "device purchase limit reached")
	ErrInsufficientStock     = NewError(CodeInsufficientStock, "insufficient stock")
	ErrBalanceDeductFailed   = NewError(CodeBalanceDeductFailed, "balance deduction failed")
	ErrOrderNotFound         = NewError(CodeOrderNotFound, "order not found")
	ErrOrderInProgress       = NewError(CodeOrderInProgress, "order is already being processed")
	ErrInvalidTransition     = NewError(CodeInvalidTransition, "order status transition not allowed")
	ErrRechargeNotFound      = NewError(CodeRechargeNotFound, "recharge request not found")
	ErrRefundNotFound        = NewError(CodeRefundNotFound, "refund request not found")
	ErrAlreadyProcessed      = NewError(CodeAlreadyProcessed, "request already processed")
	ErrRefundExists          = NewError(CodeRefundExists, "a refund request already exists for this order")
	ErrOrderNotRefundable    = NewError(CodeOrderNotRefundable, "order cannot be refunded")
	ErrInvalidAmount         = NewError(CodeInvalidAmount, "invalid amount")
	ErrInvalidAction         = NewError(CodeInvalidAction, "action must be approve or reject")
	ErrTokenExists           = NewError(CodeTokenExists, "token already exists")
	ErrCouponExists          = NewError(CodeCouponExists, "coupon code already exists")
	ErrInvalidDeliveryMode   = NewError(CodeInvalidDeliveryMode, "unknown delivery mode")
)
