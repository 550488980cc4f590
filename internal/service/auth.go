package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/yizeng/gab/gin/gorm/storefront/internal/domain"
	"github.com/yizeng/gab/gin/gorm/storefront/internal/repository"
)

var (
	ErrOperatorExists   = repository.ErrOperatorExists
	ErrOperatorNotFound = repository.ErrOperatorNotFound
	ErrWrongPassword    = errors.New("wrong password")
)

type OperatorRepository interface {
	Create(ctx context.Context, operator domain.Operator) (domain.Operator, error)
	FindByEmail(ctx context.Context, email string) (domain.Operator, error)
}

type AuthService struct {
	repo OperatorRepository
}

func NewAuthService(repo OperatorRepository) *AuthService {
	return &AuthService{
		repo: repo,
	}
}

func (s *AuthService) CreateOperator(ctx context.Context, operator domain.Operator) (domain.Operator, error) {
	hash, err := HashPassword(operator.Password)
	if err != nil {
		return domain.Operator{}, err
	}
	operator.Password = hash
	operator.Email = strings.ToLower(strings.TrimSpace(operator.Email))

	created, err := s.repo.Create(ctx, operator)
	if err != nil {
		return domain.Operator{}, fmt.Errorf("s.repo.Create -> %w", err)
	}

	return created, nil
}

func (s *AuthService) Login(ctx context.Context, email, password string) (domain.Operator, error) {
	operator, err := s.repo.FindByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		if errors.Is(err, repository.ErrOperatorNotFound) {
			return domain.Operator{}, ErrOperatorNotFound
		}

		return domain.Operator{}, fmt.Errorf("s.repo.FindByEmail -> %w", err)
	}

	if err = bcrypt.CompareHashAndPassword([]byte(operator.Password), []byte(password)); err != nil {
		return domain.Operator{}, ErrWrongPassword
	}

	return operator, nil
}

func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}

	return string(hash), nil
}
