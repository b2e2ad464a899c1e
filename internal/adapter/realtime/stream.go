package realtime

import (
	"context"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/labstack/echo/v4"
)

const writeTimeout = 5 * time.Second

type StreamHandler struct {
	hub            *Hub
	originPatterns []string
}

func NewStreamHandler(hub *Hub, originPatterns []string) *StreamHandler {
	return &StreamHandler{hub: hub, originPatterns: originPatterns}
}

// Stream upgrades to a websocket and forwards change signals until either
// side goes away. Clients only ever read.
func (h *StreamHandler) Stream(c echo.Context) error {
	opts := &websocket.AcceptOptions{}
	if len(h.originPatterns) > 0 {
		opts.OriginPatterns = h.originPatterns
	}
	conn, err := websocket.Accept(c.Response(), c.Request(), opts)
	if err != nil {
		// Accept already wrote the response
		return nil
	}
	ctx, cancel := context.WithCancel(c.Request().Context())
	defer cancel()
	sub := h.hub.Subscribe(64)
	defer h.hub.Unsubscribe(sub)

	_ = wsjson.Write(ctx, conn, Ready())
	readErr := make(chan error, 1)
	go func() {
		for {
			if _, _, err := conn.Read(ctx); err != nil {
				readErr <- err
				return
			}
		}
	}()
	for {
		select {
		case <-ctx.Done():
			_ = conn.Close(websocket.StatusNormalClosure, "closed")
			return nil
		case <-readErr:
			_ = conn.Close(websocket.StatusNormalClosure, "closed")
			return nil
		case msg, ok := <-sub:
			if !ok {
				_ = conn.Close(websocket.StatusNormalClosure, "closed")
				return nil
			}
			writeCtx, cancelWrite := context.WithTimeout(ctx, writeTimeout)
			err := wsjson.Write(writeCtx, conn, msg)
			cancelWrite()
			if err != nil {
				_ = conn.Close(websocket.StatusNormalClosure, "write_failed")
				return nil
			}
		}
	}
}
