package response

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/yizeng/gab/gin/gorm/storefront/internal/domain"
)

func TestFromDomain(t *testing.T) {
	tests := []struct {
		err        error
		wantStatus int
		wantCode   string
	}{
		{err: domain.ErrTokenNotFound, wantStatus: http.StatusNotFound, wantCode: "TOKEN_NOT_FOUND"},
		{err: domain.ErrTokenBlocked, wantStatus: http.StatusForbidden, wantCode: "TOKEN_BLOCKED"},
		{err: domain.ErrInsufficientBalance, wantStatus: http.StatusPaymentRequired, wantCode: "INSUFFICIENT_BALANCE"},
		{err: domain.ErrHasPendingOrder, wantStatus: http.StatusConflict, wantCode: "HAS_PENDING_ORDER"},
		{err: domain.ErrInsufficientStock, wantStatus: http.StatusUnprocessableEntity, wantCode: "INSUFFICIENT_STOCK"},
		{err: domain.ErrMissingDeliveryFields, wantStatus: http.StatusBadRequest, wantCode: "MISSING_DELIVERY_FIELDS"},
		{err: fmt.Errorf("wrapped -> %w", domain.ErrAlreadyProcessed), wantStatus: http.StatusConflict, wantCode: "ALREADY_PROCESSED"},
		{err: errors.New("boom"), wantStatus: http.StatusInternalServerError, wantCode: "INTERNAL"},
	}

	for _, tc := range tests {
		t.Run(tc.wantCode, func(t *testing.T) {
			e := FromDomain(tc.err)
			assert.Equal(t, tc.wantStatus, e.HTTPStatusCode)
			assert.Equal(t, tc.wantCode, e.Code)
		})
	}
}

func TestFromDomain_KeepsDetails(t *testing.T) {
	e := FromDomain(domain.ErrInsufficientStock.With("available", 1))

	assert.Equal(t, map[string]any{"available": 1}, e.Details)
	assert.Equal(t, "insufficient stock", e.Message)
}
