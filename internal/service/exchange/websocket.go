package exchange

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/zhouzirui/mnchat/internal/model/chat"
)

// WSClient performs one exchange per websocket connection: dial, write the
// request frame, read the reply frame, close.
type WSClient struct {
	dialer *websocket.Dialer
	logger *zap.Logger
}

// NewWSClient wraps dialer, or websocket.DefaultDialer when nil.
func NewWSClient(dialer *websocket.Dialer, logger *zap.Logger) *WSClient {
	if dialer == nil {
		dialer = websocket.DefaultDialer
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &WSClient{dialer: dialer, logger: logger}
}

// Exchange sends req over a fresh connection to endpoint. A reply frame with
// status "error" is reported as a failure.
func (c *WSClient) Exchange(ctx context.Context, endpoint string, req chat.Request) (chat.Reply, error) {
	conn, resp, err := c.dialer.DialContext(ctx, endpoint, nil)
	if err != nil {
		if resp != nil && resp.StatusCode != http.StatusSwitchingProtocols {
			return chat.Reply{}, &RequestError{Endpoint: endpoint, Status: resp.StatusCode, Err: ErrUnexpectedStatus}
		}
		return chat.Reply{}, &RequestError{Endpoint: endpoint, Err: err}
	}
	defer conn.Close()

	// Unblock ReadMessage when the caller gives up.
	stop := make(chan struct{})
	defer close(stop)
	go func() {
		select {
		case <-ctx.Done():
			_ = conn.Close()
		case <-stop:
		}
	}()

	if deadline, ok := ctx.Deadline(); ok {
		_ = conn.SetWriteDeadline(deadline)
		_ = conn.SetReadDeadline(deadline)
	}

	payload, err := encodeRequest(req)
	if err != nil {
		return chat.Reply{}, &RequestError{Endpoint: endpoint, Err: err}
	}
	if err := conn.WriteMessage(websocket.TextMessage, payload); err != nil {
		return chat.Reply{}, &RequestError{Endpoint: endpoint, Err: c.cause(ctx, err)}
	}

	_, data, err := conn.ReadMessage()
	if err != nil {
		return chat.Reply{}, &RequestError{Endpoint: endpoint, Err: c.cause(ctx, err)}
	}

	reply, err := decodeReply(data)
	if err != nil {
		return chat.Reply{}, &RequestError{Endpoint: endpoint, Err: err}
	}

	closeMsg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")
	_ = conn.WriteControl(websocket.CloseMessage, closeMsg, time.Now().Add(time.Second))

	if reply.Status == chat.StatusError {
		c.logger.Debug("backend returned error frame", zap.String("endpoint", endpoint), zap.String("reason", reply.Text()))
		return chat.Reply{}, &RequestError{
			Endpoint: endpoint,
			Status:   http.StatusInternalServerError,
			Err:      fmt.Errorf("%w: %s", ErrRemote, reply.Text()),
		}
	}
	return reply, nil
}

func (c *WSClient) cause(ctx context.Context, err error) error {
	if ctxErr := ctx.Err(); ctxErr != nil {
		return errors.Join(ctxErr, err)
	}
	return err
}
