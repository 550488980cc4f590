package middleware

import (
	"errors"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/yizeng/gab/gin/gorm/storefront/internal/api/handler/v1/response"
	"github.com/yizeng/gab/gin/gorm/storefront/internal/pkg/jwthelper"
)

// OperatorIDKey is the gin context key holding the authenticated operator's id.
const OperatorIDKey = "operatorID"

var errMissingBearer = errors.New("missing bearer token")

type Authenticator struct {
	key []byte
}

func NewAuthenticator(key string) *Authenticator {
	return &Authenticator{key: []byte(key)}
}

func (a *Authenticator) VerifyJWT() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		header := ctx.GetHeader("Authorization")
		tokenString, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || strings.TrimSpace(tokenString) == "" {
			response.RenderErr(ctx, response.ErrUnauthorized(errMissingBearer))
			return
		}

		claims, err := jwthelper.ParseToken(a.key, strings.TrimSpace(tokenString))
		if err != nil {
			response.RenderErr(ctx, response.ErrUnauthorized(err))
			return
		}

		ctx.Set(OperatorIDKey, claims.OperatorID)
		ctx.Next()
	}
}

// OperatorID returns the id set by VerifyJWT, or 0 outside an authenticated route.
func OperatorID(ctx *gin.Context) uint {
	return ctx.GetUint(OperatorIDKey)
}
