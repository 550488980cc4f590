package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yizeng/gab/gin/gorm/storefront/internal/db/dbtest"
	"github.com/yizeng/gab/gin/gorm/storefront/internal/domain"
	"github.com/yizeng/gab/gin/gorm/storefront/internal/repository"
)

func TestAuthService_Login(t *testing.T) {
	ctx := context.Background()
	svc := NewAuthService(repository.NewStore(dbtest.Open(t)).Operators())

	created, err := svc.CreateOperator(ctx, domain.Operator{
		Email:    " Ops@Example.com ",
		Password: "hunter22",
		Name:     "Ops",
	})
	require.NoError(t, err)
	assert.Equal(t, "ops@example.com", created.Email)
	assert.NotEqual(t, "hunter22", created.Password)

	_, err = svc.CreateOperator(ctx, domain.Operator{Email: "ops@example.com", Password: "x"})
	assert.ErrorIs(t, err, ErrOperatorExists)

	tests := []struct {
		name     string
		email    string
		password string
		wantErr  error
	}{
		{name: "valid credentials", email: "OPS@example.com", password: "hunter22"},
		{name: "wrong password", email: "ops@example.com", password: "hunter2", wantErr: ErrWrongPassword},
		{name: "unknown operator", email: "nobody@example.com", password: "hunter22", wantErr: ErrOperatorNotFound},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			operator, err := svc.Login(ctx, tc.email, tc.password)
			if tc.wantErr != nil {
				assert.ErrorIs(t, err, tc.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, created.ID, operator.ID)
		})
	}
}
