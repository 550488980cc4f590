package v1

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/yizeng/gab/gin/gorm/storefront/internal/api/handler/v1/request"
	"github.com/yizeng/gab/gin/gorm/storefront/internal/api/handler/v1/response"
	"github.com/yizeng/gab/gin/gorm/storefront/internal/domain"
	"github.com/yizeng/gab/gin/gorm/storefront/internal/service"
)

type AdminService interface {
	CreateToken(ctx context.Context, value string, initial decimal.Decimal) (service.CreatedToken, error)
	SetTokenBlocked(ctx context.Context, tokenID uint, blocked bool) (domain.Token, error)
	ListMutations(ctx context.Context, tokenID uint, limit, offset int) ([]domain.BalanceMutation, error)
	CreateOption(ctx context.Context, option domain.ProductOption) (domain.ProductOption, error)
	AddStock(ctx context.Context, optionID uint, contents []string) ([]domain.StockItem, error)
	CreateCoupon(ctx context.Context, coupon domain.Coupon) (domain.Coupon, error)
}

type AdminHandler struct {
	svc AdminService
}

func NewAdminHandler(svc AdminService) *AdminHandler {
	return &AdminHandler{
		svc: svc,
	}
}

// HandleCreateToken godoc
// @Summary      Issue a token
// @Tags         admin
// @Accept       json
// @Produce      json
// @Param        request  body      request.CreateTokenRequest true "request body"
// @Success      201      {object}  service.CreatedToken
// @Failure      400      {object}  response.Err
// @Failure      409      {object}  response.Err
// @Router       /admin/tokens [post]
// @Security BearerAuth
func (h *AdminHandler) HandleCreateToken(ctx *gin.Context) {
	var req request.CreateTokenRequest
	if !bindOptional(ctx, &req) {
		return
	}

	created, err := h.svc.CreateToken(ctx.Request.Context(), req.Value, req.InitialBalance)
	if err != nil {
		response.RenderErr(ctx, response.FromDomain(err))
		return
	}

	ctx.JSON(http.StatusCreated, created)
}

// HandleBlockToken godoc
// @Summary      Block or unblock a token
// @Tags         admin
// @Accept       json
// @Produce      json
// @Param        tokenID  path      int true "token ID"
// @Param        request  body      request.BlockTokenRequest true "request body"
// @Success      200      {object}  domain.Token
// @Failure      404      {object}  response.Err
// @Router       /admin/tokens/{tokenID}/block [post]
// @Security BearerAuth
func (h *AdminHandler) HandleBlockToken(ctx *gin.Context) {
	tokenID, ok := pathID(ctx, "tokenID")
	if !ok {
		return
	}
	var req request.BlockTokenRequest
	if !bind(ctx, &req) {
		return
	}

	token, err := h.svc.SetTokenBlocked(ctx.Request.Context(), tokenID, *req.Blocked)
	if err != nil {
		response.RenderErr(ctx, response.FromDomain(err))
		return
	}

	ctx.JSON(http.StatusOK, token)
}

// HandleListMutations godoc
// @Summary      List a token's balance journal, newest first
// @Tags         admin
// @Produce      json
// @Param        tokenID  path      int true  "token ID"
// @Param        limit    query     int false "page size (default 50)"
// @Param        offset   query     int false "offset (default 0)"
// @Success      200      {array}   domain.BalanceMutation
// @Failure      404      {object}  response.Err
// @Router       /admin/tokens/{tokenID}/mutations [get]
// @Security BearerAuth
func (h *AdminHandler) HandleListMutations(ctx *gin.Context) {
	tokenID, ok := pathID(ctx, "tokenID")
	if !ok {
		return
	}
	limit, _ := strconv.Atoi(ctx.DefaultQuery("limit", "0"))
	offset, _ := strconv.Atoi(ctx.DefaultQuery("offset", "0"))

	mutations, err := h.svc.ListMutations(ctx.Request.Context(), tokenID, limit, offset)
	if err != nil {
		response.RenderErr(ctx, response.FromDomain(err))
		return
	}

	ctx.JSON(http.StatusOK, mutations)
}

// HandleCreateOption godoc
// @Summary      Create a product option
// @Tags         admin
// @Accept       json
// @Produce      json
// @Param        request  body      request.CreateOptionRequest true "request body"
// @Success      201      {object}  domain.ProductOption
// @Failure      400      {object}  response.Err
// @Router       /admin/options [post]
// @Security BearerAuth
func (h *AdminHandler) HandleCreateOption(ctx *gin.Context) {
	var req request.CreateOptionRequest
	if !bind(ctx, &req) {
		return
	}

	option, err := h.svc.CreateOption(ctx.Request.Context(), req.Option())
	if err != nil {
		response.RenderErr(ctx, response.FromDomain(err))
		return
	}

	ctx.JSON(http.StatusCreated, option)
}

// HandleAddStock godoc
// @Summary      Add deliverable stock rows to an auto option
// @Tags         admin
// @Accept       json
// @Produce      json
// @Param        optionID  path      int true "option ID"
// @Param        request   body      request.AddStockRequest true "request body"
// @Success      201       {object}  response.StockResponse
// @Failure      400       {object}  response.Err
// @Failure      404       {object}  response.Err
// @Router       /admin/options/{optionID}/stock [post]
// @Security BearerAuth
func (h *AdminHandler) HandleAddStock(ctx *gin.Context) {
	optionID, ok := pathID(ctx, "optionID")
	if !ok {
		return
	}
	var req request.AddStockRequest
	if !bind(ctx, &req) {
		return
	}

	items, err := h.svc.AddStock(ctx.Request.Context(), optionID, req.Contents)
	if err != nil {
		response.RenderErr(ctx, response.FromDomain(err))
		return
	}

	ctx.JSON(http.StatusCreated, response.StockResponse{
		Added: len(items),
		Items: items,
	})
}

// HandleCreateCoupon godoc
// @Summary      Create a coupon
// @Tags         admin
// @Accept       json
// @Produce      json
// @Param        request  body      request.CreateCouponRequest true "request body"
// @Success      201      {object}  domain.Coupon
// @Failure      400      {object}  response.Err
// @Failure      409      {object}  response.Err
// @Router       /admin/coupons [post]
// @Security BearerAuth
func (h *AdminHandler) HandleCreateCoupon(ctx *gin.Context) {
	var req request.CreateCouponRequest
	if !bind(ctx, &req) {
		return
	}

	coupon, err := h.svc.CreateCoupon(ctx.Request.Context(), req.Coupon())
	if err != nil {
		response.RenderErr(ctx, response.FromDomain(err))
		return
	}

	ctx.JSON(http.StatusCreated, coupon)
}
