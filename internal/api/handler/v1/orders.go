package v1

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yizeng/gab/gin/gorm/storefront/internal/api/handler/v1/request"
	"github.com/yizeng/gab/gin/gorm/storefront/internal/api/handler/v1/response"
	"github.com/yizeng/gab/gin/gorm/storefront/internal/domain"
	"github.com/yizeng/gab/gin/gorm/storefront/internal/service"
)

type OrderService interface {
	PlaceOrder(ctx context.Context, in service.PlaceOrderInput) (service.PlaceOrderResult, error)
	GetOrder(ctx context.Context, tokenValue string, orderID uint) (domain.Order, error)
	GetActiveOrder(ctx context.Context, tokenValue string) (domain.Order, error)
	GetBalance(ctx context.Context, tokenValue string) (domain.Token, error)
	CancelOrder(ctx context.Context, tokenValue string, orderID uint) (service.TransitionResult, error)
}

type OrderHandler struct {
	svc OrderService
}

func NewOrderHandler(svc OrderService) *OrderHandler {
	return &OrderHandler{
		svc: svc,
	}
}

// HandlePlaceOrder godoc
// @Summary      Place an order
// @Description  Prices the option, reserves stock for auto delivery and debits the token, all or nothing.
// @Tags         orders
// @Accept       json
// @Produce      json
// @Param        request  body      request.PlaceOrderRequest true "request body"
// @Success      201      {object}  service.PlaceOrderResult
// @Failure      400      {object}  response.Err
// @Failure      402      {object}  response.Err
// @Failure      403      {object}  response.Err
// @Failure      404      {object}  response.Err
// @Failure      409      {object}  response.Err
// @Failure      422      {object}  response.Err
// @Failure      500      {object}  response.Err
// @Router       /orders [post]
func (h *OrderHandler) HandlePlaceOrder(ctx *gin.Context) {
	var req request.PlaceOrderRequest
	if !bind(ctx, &req) {
		return
	}

	fingerprint := req.DeviceFingerprint
	if fingerprint == "" {
		fingerprint = ctx.GetHeader(fingerprintHeader)
	}

	result, err := h.svc.PlaceOrder(ctx.Request.Context(), service.PlaceOrderInput{
		TokenValue:        req.Token,
		ProductID:         req.ProductID,
		OptionID:          req.OptionID,
		Quantity:          req.Quantity,
		DeliveryFields:    req.DeliveryFields,
		CouponCode:        req.CouponCode,
		DeviceFingerprint: fingerprint,
	})
	if err != nil {
		response.RenderErr(ctx, response.FromDomain(err))
		return
	}

	ctx.JSON(http.StatusCreated, result)
}

// HandleGetActiveOrder godoc
// @Summary      Get the token's active order
// @Tags         orders
// @Produce      json
// @Param        X-Token  header    string true "token value"
// @Success      200      {object}  domain.Order
// @Failure      404      {object}  response.Err
// @Router       /orders/active [get]
func (h *OrderHandler) HandleGetActiveOrder(ctx *gin.Context) {
	token, ok := headerToken(ctx)
	if !ok {
		return
	}

	order, err := h.svc.GetActiveOrder(ctx.Request.Context(), token)
	if err != nil {
		response.RenderErr(ctx, response.FromDomain(err))
		return
	}

	ctx.JSON(http.StatusOK, order)
}

// HandleGetOrder godoc
// @Summary      Get an order placed by the token
// @Tags         orders
// @Produce      json
// @Param        orderID  path      int    true "order ID"
// @Param        X-Token  header    string true "token value"
// @Success      200      {object}  domain.Order
// @Failure      400      {object}  response.Err
// @Failure      404      {object}  response.Err
// @Router       /orders/{orderID} [get]
func (h *OrderHandler) HandleGetOrder(ctx *gin.Context) {
	orderID, ok := pathID(ctx, "orderID")
	if !ok {
		return
	}
	token, ok := headerToken(ctx)
	if !ok {
		return
	}

	order, err := h.svc.GetOrder(ctx.Request.Context(), token, orderID)
	if err != nil {
		response.RenderErr(ctx, response.FromDomain(err))
		return
	}

	ctx.JSON(http.StatusOK, order)
}

// HandleCancelOrder godoc
// @Summary      Cancel a pending order
// @Description  Refunds the order total once. Cancelling an already cancelled order reports already_cancelled.
// @Tags         orders
// @Accept       json
// @Produce      json
// @Param        orderID  path      int    true "order ID"
// @Param        request  body      request.CancelOrderRequest true "request body"
// @Success      200      {object}  service.TransitionResult
// @Failure      404      {object}  response.Err
// @Failure      409      {object}  response.Err
// @Router       /orders/{orderID}/cancel [post]
func (h *OrderHandler) HandleCancelOrder(ctx *gin.Context) {
	orderID, ok := pathID(ctx, "orderID")
	if !ok {
		return
	}
	var req request.CancelOrderRequest
	if !bind(ctx, &req) {
		return
	}

	result, err := h.svc.CancelOrder(ctx.Request.Context(), req.Token, orderID)
	if err != nil {
		response.RenderErr(ctx, response.FromDomain(err))
		return
	}

	ctx.JSON(http.StatusOK, result)
}

// HandleGetBalance godoc
// @Summary      Get the token balance
// @Tags         tokens
// @Produce      json
// @Param        X-Token  header    string true "token value"
// @Success      200      {object}  response.BalanceResponse
// @Failure      404      {object}  response.Err
// @Router       /tokens/balance [get]
func (h *OrderHandler) HandleGetBalance(ctx *gin.Context) {
	value, ok := headerToken(ctx)
	if !ok {
		return
	}

	token, err := h.svc.GetBalance(ctx.Request.Context(), value)
	if err != nil {
		response.RenderErr(ctx, response.FromDomain(err))
		return
	}

	ctx.JSON(http.StatusOK, response.BalanceResponse{
		Balance:   token.Balance,
		IsBlocked: token.IsBlocked,
	})
}
