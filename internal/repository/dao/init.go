package dao

import (
	"fmt"

	"gorm.io/gorm"
)

const (
	activeOrderIndex = "idx_orders_one_active_per_token"
	orderNumberIndex = "idx_orders_order_number"
	tokenValueIndex  = "idx_tokens_value"
	couponCodeIndex  = "idx_coupons_code"
	refundOrderIndex = "idx_refund_requests_order_number"
	operatorEmail    = "idx_operators_email"
)

func models() []any {
	return []any{
		&Operator{},
		&Token{},
		&BalanceMutation{},
		&ProductOption{},
		&StockItem{},
		&Coupon{},
		&Order{},
		&DevicePurchase{},
		&RechargeRequest{},
		&RefundRequest{},
	}
}

func InitTables(db *gorm.DB) error {
	if err := db.AutoMigrate(models()...); err != nil {
		return err
	}

	// At most one pending or in_progress order per token.
	stmt := fmt.Sprintf(
		"CREATE UNIQUE INDEX IF NOT EXISTS %s ON orders (token_id) WHERE status IN ('pending', 'in_progress')",
		activeOrderIndex,
	)
	return db.Exec(stmt).Error
}

func DropTables(db *gorm.DB) error {
	if isPostgres(db) {
		db.Exec("SET CONSTRAINTS ALL DEFERRED;")
		defer db.Exec("SET CONSTRAINTS ALL IMMEDIATE;")
	}

	for _, model := range models() {
		if err := db.Migrator().DropTable(model); err != nil {
			return err
		}
	}

	return nil
}
