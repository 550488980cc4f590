package notify

import (
	"encoding/json"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/yizeng/gab/gin/gorm/storefront/internal/domain"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = pongWait * 9 / 10
)

type client struct {
	hub  *Hub
	conn *websocket.Conn
	sub  *Subscriber
}

// Serve streams the order's status events over conn, starting with snapshot.
// refresh, when not nil, re-reads the order once the subscription is in place
// so a change committed in between is not missed. Serve returns immediately;
// the connection is closed when the order settles, the peer goes away or the
// hub stops.
func (h *Hub) Serve(conn *websocket.Conn, snapshot domain.OrderEvent, refresh func() (domain.OrderEvent, error)) error {
	initial, err := json.Marshal(snapshot)
	if err != nil {
		return err
	}

	c := &client{hub: h, conn: conn}
	if snapshot.Status.IsTerminal() {
		// Nothing more will happen to the order; send the snapshot and close.
		c.sub = &Subscriber{orderID: snapshot.OrderID, send: make(chan []byte, 1)}
		c.sub.send <- initial
		close(c.sub.send)
	} else {
		c.sub = h.Subscribe(snapshot.OrderID, initial)
		if refresh != nil {
			current, err := refresh()
			switch {
			case err != nil:
				zap.L().Warn("notify: order re-read failed", zap.Uint("orderID", snapshot.OrderID), zap.Error(err))
			case current.Status != snapshot.Status:
				h.Resync(c.sub, current)
			}
		}
	}

	go c.writePump()
	go c.readPump()

	return nil
}

func (c *client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.sub.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// readPump only watches for the peer going away; inbound messages are ignored.
func (c *client) readPump() {
	defer func() {
		c.hub.Unsubscribe(c.sub)
		c.conn.Close()
	}()

	c.conn.SetReadLimit(512)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure, websocket.CloseAbnormalClosure) {
				zap.L().Debug("notify: websocket closed", zap.Uint("orderID", c.sub.orderID), zap.Error(err))
			}
			return
		}
	}
}
