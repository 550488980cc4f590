package response

import (
	"github.com/shopspring/decimal"

	"github.com/yizeng/gab/gin/gorm/storefront/internal/domain"
)

type LoginResponse struct {
	Token    string          `json:"token"`
	Operator domain.Operator `json:"operator"`
}

type BalanceResponse struct {
	Balance   decimal.Decimal `json:"balance" swaggertype:"string" example:"30.00"`
	IsBlocked bool            `json:"is_blocked"`
}

type StockResponse struct {
	Added int                `json:"added"`
	Items []domain.StockItem `json:"items"`
}

type HealthResponse struct {
	Status string `json:"status"`
}
