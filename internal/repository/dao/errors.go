package dao

import (
	"errors"
	"strings"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	ErrTokenNotFound     = errors.New("token not found")
	ErrTokenExists       = errors.New("token already exists")
	ErrInsufficientFunds = errors.New("balance guard rejected debit")
	ErrOptionNotFound    = errors.New("product option not found")
	ErrOrderNotFound     = errors.New("order not found")
	ErrActiveOrderExists = errors.New("token already has an active order")
	ErrCouponNotFound    = errors.New("coupon not found")
	ErrCouponExists      = errors.New("coupon already exists")
	ErrRechargeNotFound  = errors.New("recharge request not found")
	ErrRefundNotFound    = errors.New("refund request not found")
	ErrRefundExists      = errors.New("refund request already exists")
	ErrOperatorNotFound  = errors.New("operator not found")
	ErrOperatorExists    = errors.New("operator already exists")
)

const dialectPostgres = "postgres"

// isUniqueViolation matches a unique-constraint failure on postgres by
// constraint name, and on sqlite by the "table.column" it names.
func isUniqueViolation(err error, constraint, column string) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == pgerrcode.UniqueViolation && pgErr.ConstraintName == constraint
	}

	msg := err.Error()
	return strings.Contains(msg, "UNIQUE constraint failed") && strings.Contains(msg, column)
}

func isPostgres(db *gorm.DB) bool {
	return db.Dialector.Name() == dialectPostgres
}

// forUpdate adds a row lock where the dialect supports one.
func forUpdate(db *gorm.DB, options string) *gorm.DB {
	if !isPostgres(db) {
		return db
	}

	return db.Clauses(clause.Locking{Strength: "UPDATE", Options: options})
}
