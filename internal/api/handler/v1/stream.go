package v1

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/yizeng/gab/gin/gorm/storefront/internal/api/handler/v1/response"
	"github.com/yizeng/gab/gin/gorm/storefront/internal/domain"
)

const refreshTimeout = 5 * time.Second

type OrderReader interface {
	GetOrder(ctx context.Context, tokenValue string, orderID uint) (domain.Order, error)
}

type OrderStreamer interface {
	Serve(conn *websocket.Conn, snapshot domain.OrderEvent, refresh func() (domain.OrderEvent, error)) error
}

// StreamHandler pushes an order's status changes to its owner over a websocket.
type StreamHandler struct {
	orders   OrderReader
	streamer OrderStreamer
	upgrader websocket.Upgrader
}

// NewStreamHandler accepts any origin when allowedOrigins is empty.
func NewStreamHandler(orders OrderReader, streamer OrderStreamer, allowedOrigins []string) *StreamHandler {
	allowed := make(map[string]bool, len(allowedOrigins))
	for _, origin := range allowedOrigins {
		allowed[origin] = true
	}

	return &StreamHandler{
		orders:   orders,
		streamer: streamer,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				if len(allowed) == 0 || origin == "" {
					return true
				}
				if allowed[origin] {
					return true
				}
				u, err := url.Parse(origin)
				return err == nil && u.Host == r.Host
			},
		},
	}
}

// HandleStream godoc
// @Summary      Stream order status updates
// @Description  Sends the current status, then every change until the order settles.
// @Tags         orders
// @Produce      json
// @Param        orderID  path      int    true "order ID"
// @Param        token    query     string true "token value"
// @Success      101      {object}  domain.OrderEvent
// @Failure      400      {object}  response.Err
// @Failure      404      {object}  response.Err
// @Router       /orders/{orderID}/stream [get]
func (h *StreamHandler) HandleStream(ctx *gin.Context) {
	orderID, ok := pathID(ctx, "orderID")
	if !ok {
		return
	}
	token := ctx.Query("token")
	if token == "" {
		token = ctx.GetHeader(tokenHeader)
	}
	if token == "" {
		response.RenderErr(ctx, response.ErrBadRequest(fmt.Errorf("missing token")))
		return
	}

	// Ownership is checked before the upgrade so refusals are plain HTTP errors.
	order, err := h.orders.GetOrder(ctx.Request.Context(), token, orderID)
	if err != nil {
		response.RenderErr(ctx, response.FromDomain(err))
		return
	}

	conn, err := h.upgrader.Upgrade(ctx.Writer, ctx.Request, nil)
	if err != nil {
		// The upgrader has already written the HTTP error.
		zap.L().Debug("websocket upgrade failed", zap.Uint("orderID", orderID), zap.Error(err))
		return
	}

	refresh := func() (domain.OrderEvent, error) {
		readCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx.Request.Context()), refreshTimeout)
		defer cancel()

		current, err := h.orders.GetOrder(readCtx, token, orderID)
		if err != nil {
			return domain.OrderEvent{}, err
		}
		return current.Event(time.Now()), nil
	}

	if err = h.streamer.Serve(conn, order.Event(time.Now()), refresh); err != nil {
		zap.L().Error("failed to start order stream", zap.Uint("orderID", orderID), zap.Error(err))
		_ = conn.Close()
	}
}
