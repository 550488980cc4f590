package v1

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/yizeng/gab/gin/gorm/storefront/internal/api/handler/v1/request"
	"github.com/yizeng/gab/gin/gorm/storefront/internal/api/handler/v1/response"
	"github.com/yizeng/gab/gin/gorm/storefront/internal/domain"
	"github.com/yizeng/gab/gin/gorm/storefront/internal/service"
)

type RequestService interface {
	SubmitRecharge(ctx context.Context, tokenValue string, amount decimal.Decimal, proofImage string) (service.RechargeSubmission, error)
	ReviewRecharge(ctx context.Context, requestID uint, action domain.ReviewAction, note string) (service.ReviewResult, error)
	SubmitRefund(ctx context.Context, tokenValue, orderNumber, reason string) (domain.RefundRequest, error)
	ReviewRefund(ctx context.Context, requestID uint, action domain.ReviewAction, note string, amount *decimal.Decimal) (service.ReviewResult, error)
}

// RequestHandler serves recharge and refund requests: customers submit them,
// operators review them.
type RequestHandler struct {
	svc RequestService
}

func NewRequestHandler(svc RequestService) *RequestHandler {
	return &RequestHandler{
		svc: svc,
	}
}

// HandleSubmitRecharge godoc
// @Summary      Request a balance recharge
// @Description  Without a token a new one is issued and returned once in the response.
// @Tags         requests
// @Accept       json
// @Produce      json
// @Param        request  body      request.SubmitRechargeRequest true "request body"
// @Success      201      {object}  service.RechargeSubmission
// @Failure      400      {object}  response.Err
// @Failure      403      {object}  response.Err
// @Failure      404      {object}  response.Err
// @Router       /recharges [post]
func (h *RequestHandler) HandleSubmitRecharge(ctx *gin.Context) {
	var req request.SubmitRechargeRequest
	if !bind(ctx, &req) {
		return
	}

	submission, err := h.svc.SubmitRecharge(ctx.Request.Context(), req.Token, req.Amount, req.ProofImage)
	if err != nil {
		response.RenderErr(ctx, response.FromDomain(err))
		return
	}

	ctx.JSON(http.StatusCreated, submission)
}

// HandleSubmitRefund godoc
// @Summary      Request a refund of a completed order
// @Tags         requests
// @Accept       json
// @Produce      json
// @Param        request  body      request.SubmitRefundRequest true "request body"
// @Success      201      {object}  domain.RefundRequest
// @Failure      400      {object}  response.Err
// @Failure      404      {object}  response.Err
// @Failure      409      {object}  response.Err
// @Router       /refunds [post]
func (h *RequestHandler) HandleSubmitRefund(ctx *gin.Context) {
	var req request.SubmitRefundRequest
	if !bind(ctx, &req) {
		return
	}

	refund, err := h.svc.SubmitRefund(ctx.Request.Context(), req.Token, req.OrderNumber, req.Reason)
	if err != nil {
		response.RenderErr(ctx, response.FromDomain(err))
		return
	}

	ctx.JSON(http.StatusCreated, refund)
}

// HandleReviewRecharge godoc
// @Summary      Approve or reject a recharge
// @Tags         admin
// @Accept       json
// @Produce      json
// @Param        requestID  path      int true "recharge request ID"
// @Param        request    body      request.ReviewRequest true "request body"
// @Success      200        {object}  service.ReviewResult
// @Failure      400        {object}  response.Err
// @Failure      404        {object}  response.Err
// @Failure      409        {object}  response.Err
// @Router       /admin/recharges/{requestID}/review [post]
// @Security BearerAuth
func (h *RequestHandler) HandleReviewRecharge(ctx *gin.Context) {
	requestID, ok := pathID(ctx, "requestID")
	if !ok {
		return
	}
	var req request.ReviewRequest
	if !bind(ctx, &req) {
		return
	}

	result, err := h.svc.ReviewRecharge(ctx.Request.Context(), requestID, req.Action, req.Note)
	if err != nil {
		response.RenderErr(ctx, response.FromDomain(err))
		return
	}

	ctx.JSON(http.StatusOK, result)
}

// HandleReviewRefund godoc
// @Summary      Approve or reject a refund
// @Description  Approval credits amount, defaulting to the order total.
// @Tags         admin
// @Accept       json
// @Produce      json
// @Param        requestID  path      int true "refund request ID"
// @Param        request    body      request.ReviewRequest true "request body"
// @Success      200        {object}  service.ReviewResult
// @Failure      400        {object}  response.Err
// @Failure      404        {object}  response.Err
// @Failure      409        {object}  response.Err
// @Router       /admin/refunds/{requestID}/review [post]
// @Security BearerAuth
func (h *RequestHandler) HandleReviewRefund(ctx *gin.Context) {
	requestID, ok := pathID(ctx, "requestID")
	if !ok {
		return
	}
	var req request.ReviewRequest
	if !bind(ctx, &req) {
		return
	}

	result, err := h.svc.ReviewRefund(ctx.Request.Context(), requestID, req.Action, req.Note, req.Amount)
	if err != nil {
		response.RenderErr(ctx, response.FromDomain(err))
		return
	}

	ctx.JSON(http.StatusOK, result)
}
