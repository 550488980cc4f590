package jwthelper

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateAndParse(t *testing.T) {
	key := []byte("secret")

	signed, err := GenerateToken(key, 7, "curl/8", time.Hour)
	require.NoError(t, err)

	claims, err := ParseToken(key, signed)
	require.NoError(t, err)
	assert.Equal(t, uint(7), claims.OperatorID)
	assert.Equal(t, "curl/8", claims.UserAgent)
	assert.Equal(t, "7", claims.Subject)
}

func TestParseToken_Rejects(t *testing.T) {
	key := []byte("secret")

	expired, err := GenerateToken(key, 7, "", -time.Minute)
	require.NoError(t, err)

	otherKey, err := GenerateToken([]byte("other"), 7, "", time.Hour)
	require.NoError(t, err)

	noOperator, err := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{Issuer: issuer},
	}).SignedString(key)
	require.NoError(t, err)

	wrongAlg, err := jwt.NewWithClaims(jwt.SigningMethodHS512, Claims{
		OperatorID:       7,
		RegisteredClaims: jwt.RegisteredClaims{Issuer: issuer},
	}).SignedString(key)
	require.NoError(t, err)

	tests := map[string]string{
		"expired":     expired,
		"wrong key":   otherKey,
		"no operator": noOperator,
		"wrong alg":   wrongAlg,
		"garbage":     "not-a-jwt",
	}
	for name, token := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := ParseToken(key, token)
			assert.ErrorIs(t, err, ErrInvalidToken)
		})
	}
}
