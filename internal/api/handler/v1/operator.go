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

type OperatorOrderService interface {
	FindOrder(ctx context.Context, orderID uint) (domain.Order, error)
	ClaimOrder(ctx context.Context, orderID uint) (service.TransitionResult, error)
	CompleteOrder(ctx context.Context, orderID uint, content, note string) (service.TransitionResult, error)
	RejectOrder(ctx context.Context, orderID uint, note string) (service.TransitionResult, error)
	OperatorCancelOrder(ctx context.Context, orderID uint, note string) (service.TransitionResult, error)
}

// OperatorOrderHandler serves the fulfilment actions of signed-in operators.
type OperatorOrderHandler struct {
	svc OperatorOrderService
}

func NewOperatorOrderHandler(svc OperatorOrderService) *OperatorOrderHandler {
	return &OperatorOrderHandler{
		svc: svc,
	}
}

func (h *OperatorOrderHandler) render(ctx *gin.Context, result service.TransitionResult, err error) {
	if err != nil {
		response.RenderErr(ctx, response.FromDomain(err))
		return
	}

	ctx.JSON(http.StatusOK, result)
}

// HandleGetOrder godoc
// @Summary      Get any order
// @Tags         admin
// @Produce      json
// @Param        orderID  path      int true "order ID"
// @Success      200      {object}  domain.Order
// @Failure      404      {object}  response.Err
// @Router       /admin/orders/{orderID} [get]
// @Security BearerAuth
func (h *OperatorOrderHandler) HandleGetOrder(ctx *gin.Context) {
	orderID, ok := pathID(ctx, "orderID")
	if !ok {
		return
	}

	order, err := h.svc.FindOrder(ctx.Request.Context(), orderID)
	if err != nil {
		response.RenderErr(ctx, response.FromDomain(err))
		return
	}

	ctx.JSON(http.StatusOK, order)
}

// HandleClaimOrder godoc
// @Summary      Start working on a pending order
// @Tags         admin
// @Produce      json
// @Param        orderID  path      int true "order ID"
// @Success      200      {object}  service.TransitionResult
// @Failure      404      {object}  response.Err
// @Failure      409      {object}  response.Err
// @Router       /admin/orders/{orderID}/claim [post]
// @Security BearerAuth
func (h *OperatorOrderHandler) HandleClaimOrder(ctx *gin.Context) {
	orderID, ok := pathID(ctx, "orderID")
	if !ok {
		return
	}

	result, err := h.svc.ClaimOrder(ctx.Request.Context(), orderID)
	h.render(ctx, result, err)
}

// HandleCompleteOrder godoc
// @Summary      Complete an order with its delivered content
// @Tags         admin
// @Accept       json
// @Produce      json
// @Param        orderID  path      int true "order ID"
// @Param        request  body      request.CompleteOrderRequest true "request body"
// @Success      200      {object}  service.TransitionResult
// @Failure      404      {object}  response.Err
// @Failure      409      {object}  response.Err
// @Router       /admin/orders/{orderID}/complete [post]
// @Security BearerAuth
func (h *OperatorOrderHandler) HandleCompleteOrder(ctx *gin.Context) {
	orderID, ok := pathID(ctx, "orderID")
	if !ok {
		return
	}
	var req request.CompleteOrderRequest
	if !bind(ctx, &req) {
		return
	}

	result, err := h.svc.CompleteOrder(ctx.Request.Context(), orderID, req.Content, req.Note)
	h.render(ctx, result, err)
}

// HandleRejectOrder godoc
// @Summary      Reject an order and refund it
// @Tags         admin
// @Accept       json
// @Produce      json
// @Param        orderID  path      int true "order ID"
// @Param        request  body      request.NoteRequest true "request body"
// @Success      200      {object}  service.TransitionResult
// @Failure      404      {object}  response.Err
// @Failure      409      {object}  response.Err
// @Router       /admin/orders/{orderID}/reject [post]
// @Security BearerAuth
func (h *OperatorOrderHandler) HandleRejectOrder(ctx *gin.Context) {
	orderID, ok := pathID(ctx, "orderID")
	if !ok {
		return
	}
	var req request.NoteRequest
	if !bindOptional(ctx, &req) {
		return
	}

	result, err := h.svc.RejectOrder(ctx.Request.Context(), orderID, req.Note)
	h.render(ctx, result, err)
}

// HandleCancelOrder godoc
// @Summary      Cancel a pending order on the customer's behalf
// @Tags         admin
// @Accept       json
// @Produce      json
// @Param        orderID  path      int true "order ID"
// @Param        request  body      request.NoteRequest true "request body"
// @Success      200      {object}  service.TransitionResult
// @Failure      404      {object}  response.Err
// @Failure      409      {object}  response.Err
// @Router       /admin/orders/{orderID}/cancel [post]
// @Security BearerAuth
func (h *OperatorOrderHandler) HandleCancelOrder(ctx *gin.Context) {
	orderID, ok := pathID(ctx, "orderID")
	if !ok {
		return
	}
	var req request.NoteRequest
	if !bindOptional(ctx, &req) {
		return
	}

	result, err := h.svc.OperatorCancelOrder(ctx.Request.Context(), orderID, req.Note)
	h.render(ctx, result, err)
}
