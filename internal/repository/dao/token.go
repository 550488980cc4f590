package dao

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type Token struct {
	ID uint `gorm:"primaryKey"`

	Value     string          `gorm:"uniqueIndex:idx_tokens_value;size:128;not null"`
	Balance   decimal.Decimal `gorm:"type:decimal(20,2);not null;default:0"`
	IsBlocked bool            `gorm:"not null;default:false"`

	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
}

// BalanceMutation is append-only; every balance change writes exactly one row.
type BalanceMutation struct {
	ID      uint            `gorm:"primaryKey"`
	TokenID uint            `gorm:"index;not null"`
	Delta   decimal.Decimal `gorm:"type:decimal(20,2);not null"`
	Reason  string          `gorm:"size:32;not null"`
	RefType string          `gorm:"size:32;not null"`
	RefID   uint            `gorm:"not null"`

	CreatedAt time.Time `gorm:"not null"`
}

type TokenDAO struct {
	db *gorm.DB
}

func NewTokenDAO(db *gorm.DB) *TokenDAO {
	return &TokenDAO{
		db: db,
	}
}

func (d *TokenDAO) Insert(ctx context.Context, token Token) (Token, error) {
	result := d.db.WithContext(ctx).Create(&token)
	if result.Error != nil {
		if isUniqueViolation(result.Error, tokenValueIndex, "tokens.value") {
			return Token{}, ErrTokenExists
		}

		return Token{}, result.Error
	}

	return token, nil
}

func (d *TokenDAO) FindByID(ctx context.Context, id uint) (Token, error) {
	var token Token

	result := d.db.WithContext(ctx).First(&token, id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return Token{}, ErrTokenNotFound
		}

		return Token{}, result.Error
	}

	return token, nil
}

func (d *TokenDAO) FindByValue(ctx context.Context, value string) (Token, error) {
	var token Token

	result := d.db.WithContext(ctx).First(&token, "value = ?", value)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return Token{}, ErrTokenNotFound
		}

		return Token{}, result.Error
	}

	return token, nil
}

// Lock takes a row lock on the token for the rest of the transaction. It is a
// no-op on dialects without SELECT ... FOR UPDATE.
func (d *TokenDAO) Lock(ctx context.Context, id uint) error {
	if !isPostgres(d.db) {
		return nil
	}

	var token Token
	result := forUpdate(d.db.WithContext(ctx), "").Select("id").First(&token, id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return ErrTokenNotFound
		}

		return result.Error
	}

	return nil
}

// Debit subtracts amount only while the balance covers it.
func (d *TokenDAO) Debit(ctx context.Context, id uint, amount decimal.Decimal) error {
	result := d.db.WithContext(ctx).Model(&Token{}).
		Where("id = ? AND balance >= ?", id, amount).
		Updates(map[string]any{
			"balance":    gorm.Expr("balance - ?", amount),
			"updated_at": time.Now(),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrInsufficientFunds
	}

	return nil
}

func (d *TokenDAO) Credit(ctx context.Context, id uint, amount decimal.Decimal) error {
	result := d.db.WithContext(ctx).Model(&Token{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"balance":    gorm.Expr("balance + ?", amount),
			"updated_at": time.Now(),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrTokenNotFound
	}

	return nil
}

func (d *TokenDAO) SetBlocked(ctx context.Context, id uint, blocked bool) error {
	result := d.db.WithContext(ctx).Model(&Token{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"is_blocked": blocked,
			"updated_at": time.Now(),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrTokenNotFound
	}

	return nil
}

func (d *TokenDAO) InsertMutation(ctx context.Context, mutation BalanceMutation) (BalanceMutation, error) {
	result := d.db.WithContext(ctx).Create(&mutation)
	if result.Error != nil {
		return BalanceMutation{}, result.Error
	}

	return mutation, nil
}

func (d *TokenDAO) FindMutations(ctx context.Context, tokenID uint, limit, offset int) ([]BalanceMutation, error) {
	var mutations []BalanceMutation

	result := d.db.WithContext(ctx).
		Where("token_id = ?", tokenID).
		Order("id DESC").
		Limit(limit).
		Offset(offset).
		Find(&mutations)
	if result.Error != nil {
		return nil, result.Error
	}

	return mutations, nil
}
