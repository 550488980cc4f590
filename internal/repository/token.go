package repository

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/yizeng/gab/gin/gorm/storefront/internal/domain"
	"github.com/yizeng/gab/gin/gorm/storefront/internal/repository/dao"
)

var (
	ErrTokenNotFound     = dao.ErrTokenNotFound
	ErrTokenExists       = dao.ErrTokenExists
	ErrInsufficientFunds = dao.ErrInsufficientFunds
)

type TokenDAO interface {
	Insert(ctx context.Context, token dao.Token) (dao.Token, error)
	FindByID(ctx context.Context, id uint) (dao.Token, error)
	FindByValue(ctx context.Context, value string) (dao.Token, error)
	Lock(ctx context.Context, id uint) error
	Debit(ctx context.Context, id uint, amount decimal.Decimal) error
	Credit(ctx context.Context, id uint, amount decimal.Decimal) error
	SetBlocked(ctx context.Context, id uint, blocked bool) error
	InsertMutation(ctx context.Context, mutation dao.BalanceMutation) (dao.BalanceMutation, error)
	FindMutations(ctx context.Context, tokenID uint, limit, offset int) ([]dao.BalanceMutation, error)
}

type TokenRepository struct {
	dao TokenDAO
}

func NewTokenRepository(dao TokenDAO) *TokenRepository {
	return &TokenRepository{
		dao: dao,
	}
}

func (r *TokenRepository) Create(ctx context.Context, token domain.Token) (domain.Token, error) {
	created, err := r.dao.Insert(ctx, dao.Token{
		Value:     domain.NormalizeTokenValue(token.Value),
		Balance:   domain.RoundMoney(token.Balance),
		IsBlocked: token.IsBlocked,
	})
	if err != nil {
		return domain.Token{}, fmt.Errorf("r.dao.Insert -> %w", err)
	}

	return r.daoToDomain(created), nil
}

func (r *TokenRepository) FindByID(ctx context.Context, id uint) (domain.Token, error) {
	found, err := r.dao.FindByID(ctx, id)
	if err != nil {
		return domain.Token{}, fmt.Errorf("r.dao.FindByID -> %w", err)
	}

	return r.daoToDomain(found), nil
}

func (r *TokenRepository) FindByValue(ctx context.Context, value string) (domain.Token, error) {
	found, err := r.dao.FindByValue(ctx, domain.NormalizeTokenValue(value))
	if err != nil {
		return domain.Token{}, fmt.Errorf("r.dao.FindByValue -> %w", err)
	}

	return r.daoToDomain(found), nil
}

func (r *TokenRepository) Lock(ctx context.Context, id uint) error {
	if err := r.dao.Lock(ctx, id); err != nil {
		return fmt.Errorf("r.dao.Lock -> %w", err)
	}

	return nil
}

// Apply changes the balance by m.Delta and journals m. A debit that the
// balance cannot cover fails with ErrInsufficientFunds.
func (r *TokenRepository) Apply(ctx context.Context, m domain.BalanceMutation) (domain.Token, error) {
	amount := domain.RoundMoney(m.Amount())

	if m.IsDebit() {
		if err := r.dao.Debit(ctx, m.TokenID, amount); err != nil {
			return domain.Token{}, fmt.Errorf("r.dao.Debit -> %w", err)
		}
	} else {
		if err := r.dao.Credit(ctx, m.TokenID, amount); err != nil {
			return domain.Token{}, fmt.Errorf("r.dao.Credit -> %w", err)
		}
	}

	_, err := r.dao.InsertMutation(ctx, dao.BalanceMutation{
		TokenID: m.TokenID,
		Delta:   domain.RoundMoney(m.Delta),
		Reason:  string(m.Reason),
		RefType: m.RefType,
		RefID:   m.RefID,
	})
	if err != nil {
		return domain.Token{}, fmt.Errorf("r.dao.InsertMutation -> %w", err)
	}

	return r.FindByID(ctx, m.TokenID)
}

func (r *TokenRepository) SetBlocked(ctx context.Context, id uint, blocked bool) (domain.Token, error) {
	if err := r.dao.SetBlocked(ctx, id, blocked); err != nil {
		return domain.Token{}, fmt.Errorf("r.dao.SetBlocked -> %w", err)
	}

	return r.FindByID(ctx, id)
}

func (r *TokenRepository) ListMutations(ctx context.Context, tokenID uint, limit, offset int) ([]domain.BalanceMutation, error) {
	found, err := r.dao.FindMutations(ctx, tokenID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("r.dao.FindMutations -> %w", err)
	}

	mutations := make([]domain.BalanceMutation, len(found))
	for i, m := range found {
		mutations[i] = domain.BalanceMutation{
			ID:        m.ID,
			TokenID:   m.TokenID,
			Delta:     domain.RoundMoney(m.Delta),
			Reason:    domain.MutationReason(m.Reason),
			RefType:   m.RefType,
			RefID:     m.RefID,
			CreatedAt: m.CreatedAt,
		}
	}

	return mutations, nil
}

func (r *TokenRepository) daoToDomain(t dao.Token) domain.Token {
	return domain.Token{
		ID:        t.ID,
		Value:     t.Value,
		Balance:   domain.RoundMoney(t.Balance),
		IsBlocked: t.IsBlocked,
		CreatedAt: t.CreatedAt,
		UpdatedAt: t.UpdatedAt,
	}
}
