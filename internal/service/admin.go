package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/yizeng/gab/gin/gorm/storefront/internal/config"
	"github.com/yizeng/gab/gin/gorm/storefront/internal/domain"
	"github.com/yizeng/gab/gin/gorm/storefront/internal/metrics"
	"github.com/yizeng/gab/gin/gorm/storefront/internal/repository"
)

const (
	refTypeAdmin        = "admin"
	defaultMutationPage = 50
	maxMutationPage     = 200
)

// AdminService is the catalog and token glue operators use to stock the store.
type AdminService struct {
	store   Store
	conf    *config.EngineConfig
	metrics *metrics.Metrics
}

func NewAdminService(store Store, conf *config.EngineConfig, m *metrics.Metrics) *AdminService {
	return &AdminService{
		store:   store,
		conf:    conf,
		metrics: m,
	}
}

type CreatedToken struct {
	Token domain.Token `json:"token"`
	Value string       `json:"value"`
}

// CreateToken issues a token, generating its value when none is given. A
// positive initial balance is journaled as an admin adjustment.
func (s *AdminService) CreateToken(ctx context.Context, value string, initial decimal.Decimal) (CreatedToken, error) {
	ctx, cancel := context.WithTimeout(ctx, s.conf.StoreTimeout)
	defer cancel()

	value = domain.NormalizeTokenValue(value)
	if value == "" {
		value = NewTokenValue()
	}
	initial = domain.RoundMoney(initial)
	if initial.IsNegative() {
		return CreatedToken{}, domain.ErrInvalidAmount
	}

	var created CreatedToken
	err := s.store.Transaction(ctx, func(tx Store) error {
		token, err := tx.Tokens().Create(ctx, domain.Token{Value: value})
		if err != nil {
			if errors.Is(err, repository.ErrTokenExists) {
				return domain.ErrTokenExists
			}
			return fmt.Errorf("tx.Tokens().Create -> %w", err)
		}

		if initial.IsPositive() {
			token, err = tx.Tokens().Apply(ctx, domain.BalanceMutation{
				TokenID: token.ID,
				Delta:   initial,
				Reason:  domain.MutationAdminAdjustment,
				RefType: refTypeAdmin,
				RefID:   token.ID,
			})
			if err != nil {
				return fmt.Errorf("tx.Tokens().Apply -> %w", err)
			}
			s.metrics.BalanceMutated(string(domain.MutationAdminAdjustment))
		}

		created = CreatedToken{Token: token, Value: token.Value}
		return nil
	})
	if err != nil {
		return CreatedToken{}, err
	}

	return created, nil
}

func (s *AdminService) SetTokenBlocked(ctx context.Context, tokenID uint, blocked bool) (domain.Token, error) {
	ctx, cancel := context.WithTimeout(ctx, s.conf.StoreTimeout)
	defer cancel()

	token, err := s.store.Tokens().SetBlocked(ctx, tokenID, blocked)
	if err != nil {
		if errors.Is(err, repository.ErrTokenNotFound) {
			return domain.Token{}, domain.ErrTokenNotFound
		}
		return domain.Token{}, fmt.Errorf("s.store.Tokens().SetBlocked -> %w", err)
	}

	return token, nil
}

// ListMutations pages through a token's journal, newest first.
func (s *AdminService) ListMutations(ctx context.Context, tokenID uint, limit, offset int) ([]domain.BalanceMutation, error) {
	ctx, cancel := context.WithTimeout(ctx, s.conf.StoreTimeout)
	defer cancel()

	if limit <= 0 {
		limit = defaultMutationPage
	}
	if limit > maxMutationPage {
		limit = maxMutationPage
	}
	if offset < 0 {
		offset = 0
	}

	if _, err := s.store.Tokens().FindByID(ctx, tokenID); err != nil {
		if errors.Is(err, repository.ErrTokenNotFound) {
			return nil, domain.ErrTokenNotFound
		}
		return nil, fmt.Errorf("s.store.Tokens().FindByID -> %w", err)
	}

	mutations, err := s.store.Tokens().ListMutations(ctx, tokenID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("s.store.Tokens().ListMutations -> %w", err)
	}

	return mutations, nil
}

func (s *AdminService) CreateOption(ctx context.Context, option domain.ProductOption) (domain.ProductOption, error) {
	ctx, cancel := context.WithTimeout(ctx, s.conf.StoreTimeout)
	defer cancel()

	if !option.DeliveryMode.IsValid() {
		return domain.ProductOption{}, domain.ErrInvalidDeliveryMode.With("delivery_mode", option.DeliveryMode)
	}
	if option.Price.IsNegative() {
		return domain.ProductOption{}, domain.ErrInvalidAmount
	}

	created, err := s.store.Catalog().CreateOption(ctx, option)
	if err != nil {
		return domain.ProductOption{}, fmt.Errorf("s.store.Catalog().CreateOption -> %w", err)
	}

	return created, nil
}

// AddStock appends one stock item per non-blank line of content.
func (s *AdminService) AddStock(ctx context.Context, optionID uint, contents []string) ([]domain.StockItem, error) {
	ctx, cancel := context.WithTimeout(ctx, s.conf.StoreTimeout)
	defer cancel()

	var lines []string
	for _, c := range contents {
		if c = strings.TrimSpace(c); c != "" {
			lines = append(lines, c)
		}
	}

	var added []domain.StockItem
	err := s.store.Transaction(ctx, func(tx Store) error {
		if _, err := tx.Catalog().FindOption(ctx, optionID); err != nil {
			if errors.Is(err, repository.ErrOptionNotFound) {
				return domain.ErrOptionNotFound
			}
			return fmt.Errorf("tx.Catalog().FindOption -> %w", err)
		}

		var err error
		added, err = tx.Inventory().AddStock(ctx, optionID, lines)
		if err != nil {
			return fmt.Errorf("tx.Inventory().AddStock -> %w", err)
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	return added, nil
}

func (s *AdminService) CreateCoupon(ctx context.Context, coupon domain.Coupon) (domain.Coupon, error) {
	ctx, cancel := context.WithTimeout(ctx, s.conf.StoreTimeout)
	defer cancel()

	if coupon.DiscountValue.IsNegative() {
		return domain.Coupon{}, domain.ErrInvalidAmount
	}

	created, err := s.store.Coupons().Create(ctx, coupon)
	if err != nil {
		if errors.Is(err, repository.ErrCouponExists) {
			return domain.Coupon{}, domain.ErrCouponExists
		}
		return domain.Coupon{}, fmt.Errorf("s.store.Coupons().Create -> %w", err)
	}

	return created, nil
}
