// Package exchange sends a chat request to a backend endpoint and returns its reply.
package exchange

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/bytedance/sonic"
	"go.uber.org/zap"

	"github.com/zhouzirui/mnchat/internal/model/chat"
)

var (
	// ErrUnexpectedStatus marks a reply whose HTTP status was outside 2xx.
	ErrUnexpectedStatus = errors.New("unexpected status")
	// ErrRemote marks an error frame sent back by a websocket backend.
	ErrRemote = errors.New("backend reported an error")
)

// Exchanger performs one request/reply round trip with a chat backend.
type Exchanger interface {
	Exchange(ctx context.Context, endpoint string, req chat.Request) (chat.Reply, error)
}

// RequestError is the single failure type of an exchange. Status is set when
// the backend answered with a failure status; otherwise Err carries the
// transport or decoding cause.
type RequestError struct {
	Endpoint string
	Status   int
	Err      error
}

func (e *RequestError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("exchange with %s: %v %d", e.Endpoint, e.Err, e.Status)
	}
	return fmt.Sprintf("exchange with %s: %v", e.Endpoint, e.Err)
}

func (e *RequestError) Unwrap() error { return e.Err }

// Mux routes ws:// and wss:// endpoints to a websocket exchanger and
// everything else to HTTP.
type Mux struct {
	HTTP Exchanger
	WS   Exchanger
}

// NewMux returns a Mux backed by default HTTP and websocket clients.
func NewMux(logger *zap.Logger) *Mux {
	return &Mux{
		HTTP: NewHTTPClient(nil, logger),
		WS:   NewWSClient(nil, logger),
	}
}

// Exchange dispatches on the endpoint scheme.
func (m *Mux) Exchange(ctx context.Context, endpoint string, req chat.Request) (chat.Reply, error) {
	if isWebSocket(endpoint) {
		return m.WS.Exchange(ctx, endpoint, req)
	}
	return m.HTTP.Exchange(ctx, endpoint, req)
}

func isWebSocket(endpoint string) bool {
	u, err := url.Parse(strings.TrimSpace(endpoint))
	if err != nil {
		return false
	}
	switch strings.ToLower(u.Scheme) {
	case "ws", "wss":
		return true
	default:
		return false
	}
}

func encodeRequest(req chat.Request) ([]byte, error) {
	if req.History == nil {
		req.History = []chat.Turn{}
	}
	return sonic.Marshal(req)
}

// decodeReply accepts any JSON document. Objects contribute their response,
// message and status fields; other shapes decode to an empty reply.
func decodeReply(data []byte) (chat.Reply, error) {
	var raw any
	if err := sonic.Unmarshal(data, &raw); err != nil {
		return chat.Reply{}, fmt.Errorf("decode reply: %w", err)
	}

	obj, ok := raw.(map[string]any)
	if !ok {
		return chat.Reply{}, nil
	}

	return chat.Reply{
		Response: stringField(obj, "response"),
		Message:  stringField(obj, "message"),
		Status:   stringField(obj, "status"),
	}, nil
}

func stringField(obj map[string]any, key string) string {
	switch v := obj[key].(type) {
	case nil:
		return ""
	case string:
		return v
	case bool:
		if !v {
			return ""
		}
		return "true"
	case float64:
		if v == 0 {
			return ""
		}
		return strconv.FormatFloat(v, 'f', -1, 64)
	default:
		text, err := sonic.MarshalString(v)
		if err != nil {
			return ""
		}
		return text
	}
}
