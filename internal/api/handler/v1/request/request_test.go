package request

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/yizeng/gab/gin/gorm/storefront/internal/domain"
)

func TestValidatePassword(t *testing.T) {
	assert.NoError(t, ValidatePassword("hunter22x"))
	assert.ErrorIs(t, ValidatePassword("short1"), errInvalidPassword)
	assert.ErrorIs(t, ValidatePassword("lettersonly"), errInvalidPassword)
	assert.ErrorIs(t, ValidatePassword("1234567890"), errInvalidPassword)
}

func TestCreateCouponRequest_Code(t *testing.T) {
	tests := map[string]bool{
		"SAVE10":    true,
		"black_fri": true,
		"a-b-c":     true,
		"ab":        false,
		"-SAVE":     false,
		"SAVE_":     false,
		"SA--VE":    false,
		"SAVE 10":   false,
	}

	for code, valid := range tests {
		t.Run(code, func(t *testing.T) {
			req := CreateCouponRequest{
				Code:          code,
				DiscountType:  domain.DiscountPercentage,
				DiscountValue: decimal.NewFromInt(10),
			}
			err := req.Validate()
			if valid {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}
}

func TestCreateCouponRequest_Validate(t *testing.T) {
	past := time.Now().Add(-time.Hour)
	zero := 0

	tests := []struct {
		name string
		req  CreateCouponRequest
	}{
		{name: "unknown type", req: CreateCouponRequest{Code: "SAVE10", DiscountType: "bogo", DiscountValue: decimal.NewFromInt(1)}},
		{name: "zero value", req: CreateCouponRequest{Code: "SAVE10", DiscountType: domain.DiscountFixed}},
		{name: "expired", req: CreateCouponRequest{Code: "SAVE10", DiscountType: domain.DiscountFixed, DiscountValue: decimal.NewFromInt(1), ExpiresAt: &past}},
		{name: "zero max uses", req: CreateCouponRequest{Code: "SAVE10", DiscountType: domain.DiscountFixed, DiscountValue: decimal.NewFromInt(1), MaxUses: &zero}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Error(t, tc.req.Validate())
		})
	}
}

func TestCreateOptionRequest(t *testing.T) {
	req := CreateOptionRequest{ProductID: 1, Name: "Gift card", Price: decimal.NewFromInt(20), DeliveryMode: domain.DeliveryAuto}
	assert.NoError(t, req.Validate())
	assert.True(t, req.Option().IsActive)

	inactive := false
	req.IsActive = &inactive
	assert.False(t, req.Option().IsActive)

	req.Price = decimal.NewFromInt(-1)
	assert.Error(t, req.Validate())
}

func TestPlaceOrderRequest_Validate(t *testing.T) {
	assert.NoError(t, (&PlaceOrderRequest{Token: "tok", ProductID: 1, OptionID: 2}).Validate())
	assert.Error(t, (&PlaceOrderRequest{ProductID: 1, OptionID: 2}).Validate())
	assert.Error(t, (&PlaceOrderRequest{Token: "tok", ProductID: 1}).Validate())
	assert.NoError(t, (&PlaceOrderRequest{Token: "tok", ProductID: 1, OptionID: 2, Quantity: 0}).Validate())
	assert.Error(t, (&PlaceOrderRequest{Token: "tok", ProductID: 1, OptionID: 2, Quantity: -1}).Validate())
}

func TestBlockTokenRequest_Validate(t *testing.T) {
	blocked := false
	assert.NoError(t, (&BlockTokenRequest{Blocked: &blocked}).Validate())
	assert.Error(t, (&BlockTokenRequest{}).Validate())
}

func TestCreateOperatorRequest_Validate(t *testing.T) {
	req := CreateOperatorRequest{Email: " ops@example.com ", Name: " Ops ", Password: "hunter22x"}
	assert.NoError(t, req.Validate())
	assert.Equal(t, "ops@example.com", req.Email)
	assert.Equal(t, "Ops", req.Name)

	assert.Error(t, (&CreateOperatorRequest{Email: "ops@example.com", Password: "hunter22x"}).Validate())
	assert.ErrorIs(t, (&CreateOperatorRequest{Email: "ops@example.com", Name: "Ops", Password: "password"}).Validate(), errInvalidPassword)
}
