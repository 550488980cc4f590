package v1

import (
	"fmt"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/yizeng/gab/gin/gorm/storefront/internal/api/handler/v1/response"
)

const (
	tokenHeader       = "X-Token"
	fingerprintHeader = "X-Device-Fingerprint"
)

// pathID parses a numeric path parameter, rendering 400 when it is not one.
func pathID(ctx *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(ctx.Param(name), 10, 32)
	if err != nil || id == 0 {
		response.RenderErr(ctx, response.ErrBadRequest(fmt.Errorf("invalid %s %q", name, ctx.Param(name))))
		return 0, false
	}

	return uint(id), true
}

// bind decodes the JSON body into req and runs its validation.
func bind(ctx *gin.Context, req interface{ Validate() error }) bool {
	if err := ctx.ShouldBindJSON(req); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return false
	}

	if err := req.Validate(); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return false
	}

	return true
}

func headerToken(ctx *gin.Context) (string, bool) {
	token := ctx.GetHeader(tokenHeader)
	if token == "" {
		response.RenderErr(ctx, response.ErrBadRequest(fmt.Errorf("missing %s header", tokenHeader)))
		return "", false
	}

	return token, true
}

// bindOptional is bind for requests whose body may be omitted entirely.
func bindOptional(ctx *gin.Context, req interface{ Validate() error }) bool {
	if ctx.Request.ContentLength == 0 {
		return true
	}

	return bind(ctx, req)
}
