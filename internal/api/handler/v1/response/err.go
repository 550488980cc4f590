package response

import (
	"fmt"
	"net/http"

	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/yizeng/gab/gin/gorm/storefront/internal/domain"
)

// Err is the JSON error body. Code is stable and machine-readable.
type Err struct {
	Err            error          `json:"-"`
	HTTPStatusCode int            `json:"-"`
	Code           string         `json:"code"`
	Message        string         `json:"message"`
	Details        map[string]any `json:"details,omitempty"`
}

func (e *Err) Error() string {
	return fmt.Sprintf("%s: %v", e.Code, e.Err)
}

func RenderErr(ctx *gin.Context, e *Err) {
	if e.HTTPStatusCode >= http.StatusInternalServerError {
		zap.L().Error("request failed",
			zap.String("requestID", requestid.Get(ctx)),
			zap.String("path", ctx.FullPath()),
			zap.Error(e.Err),
		)
	}

	ctx.AbortWithStatusJSON(e.HTTPStatusCode, e)
}

func ErrBadRequest(err error) *Err {
	return &Err{
		Err:            err,
		HTTPStatusCode: http.StatusBadRequest,
		Code:           "BAD_REQUEST",
		Message:        err.Error(),
	}
}

func ErrNotFound(resource, key string, value any) *Err {
	return &Err{
		Err:            fmt.Errorf("%s with %s %v not found", resource, key, value),
		HTTPStatusCode: http.StatusNotFound,
		Code:           "NOT_FOUND",
		Message:        fmt.Sprintf("%s not found", resource),
		Details:        map[string]any{key: value},
	}
}

func ErrUnauthorized(err error) *Err {
	return &Err{
		Err:            err,
		HTTPStatusCode: http.StatusUnauthorized,
		Code:           "UNAUTHORIZED",
		Message:        "missing or invalid credentials",
	}
}

func ErrWrongCredentials(err error) *Err {
	return &Err{
		Err:            err,
		HTTPStatusCode: http.StatusUnauthorized,
		Code:           "WRONG_CREDENTIALS",
		Message:        "email or password is incorrect",
	}
}

func ErrPermissionDenied(err error) *Err {
	return &Err{
		Err:            err,
		HTTPStatusCode: http.StatusForbidden,
		Code:           "PERMISSION_DENIED",
		Message:        err.Error(),
	}
}

func ErrTooManyRequests() *Err {
	return &Err{
		Err:            fmt.Errorf("rate limit exceeded"),
		HTTPStatusCode: http.StatusTooManyRequests,
		Code:           "TOO_MANY_REQUESTS",
		Message:        "too many requests, slow down",
	}
}

func ErrInternalServerError(err error) *Err {
	return &Err{
		Err:            err,
		HTTPStatusCode: http.StatusInternalServerError,
		Code:           "INTERNAL",
		Message:        "something went wrong",
	}
}

var domainStatus = map[domain.Code]int{
	domain.CodeTokenNotFound:         http.StatusNotFound,
	domain.CodeOptionNotFound:        http.StatusNotFound,
	domain.CodeOrderNotFound:         http.StatusNotFound,
	domain.CodeRechargeNotFound:      http.StatusNotFound,
	domain.CodeRefundNotFound:        http.StatusNotFound,
	domain.CodeTokenBlocked:          http.StatusForbidden,
	domain.CodeInsufficientBalance:   http.StatusPaymentRequired,
	domain.CodeHasPendingOrder:       http.StatusConflict,
	domain.CodeOrderInProgress:       http.StatusConflict,
	domain.CodeInvalidTransition:     http.StatusConflict,
	domain.CodeAlreadyProcessed:      http.StatusConflict,
	domain.CodeRefundExists:          http.StatusConflict,
	domain.CodeOrderNotRefundable:    http.StatusConflict,
	domain.CodeTokenExists:           http.StatusConflict,
	domain.CodeCouponExists:          http.StatusConflict,
	domain.CodeQuantityLimitExceeded: http.StatusUnprocessableEntity,
	domain.CodePurchaseLimitReached:  http.StatusUnprocessableEntity,
	domain.CodeInsufficientStock:     http.StatusUnprocessableEntity,
	domain.CodeMissingDeliveryFields: http.StatusBadRequest,
	domain.CodeInvalidAmount:         http.StatusBadRequest,
	domain.CodeInvalidAction:         http.StatusBadRequest,
	domain.CodeInvalidDeliveryMode:   http.StatusBadRequest,
	domain.CodeBalanceDeductFailed:   http.StatusInternalServerError,
}

// FromDomain renders coded engine failures with their code and details; any
// other error is an internal error.
func FromDomain(err error) *Err {
	de, ok := domain.AsError(err)
	if !ok {
		return ErrInternalServerError(err)
	}

	status, ok := domainStatus[de.Code]
	if !ok {
		status = http.StatusBadRequest
	}

	return &Err{
		Err:            err,
		HTTPStatusCode: status,
		Code:           string(de.Code),
		Message:        de.Message,
		Details:        de.Details,
	}
}
