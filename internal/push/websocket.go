package push

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
)

const writeTimeout = 5 * time.Second

// WebSocketChannel is a Channel over a browser WebSocket. The client only
// listens; anything it sends is discarded.
type WebSocketChannel struct {
	conn *websocket.Conn
}

// Accept upgrades the request. originPatterns lists extra allowed origins
// besides the request host.
func Accept(w http.ResponseWriter, r *http.Request, originPatterns []string) (*WebSocketChannel, error) {
	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{OriginPatterns: originPatterns})
	if err != nil {
		return nil, fmt.Errorf("accepting websocket: %w", err)
	}
	return &WebSocketChannel{conn: conn}, nil
}

func (c *WebSocketChannel) Send(ctx context.Context, msg Message) error {
	ctx, cancel := context.WithTimeout(ctx, writeTimeout)
	defer cancel()
	return wsjson.Write(ctx, c.conn, msg)
}

func (c *WebSocketChannel) Close() error {
	return c.conn.Close(websocket.StatusNormalClosure, "")
}

// Wait blocks until the client disconnects or ctx is done.
func (c *WebSocketChannel) Wait(ctx context.Context) {
	<-c.conn.CloseRead(ctx).Done()
}
