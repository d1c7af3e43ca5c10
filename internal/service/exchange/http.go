package exchange

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/zhouzirui/mnchat/internal/model/chat"
)

// maxReplyBytes bounds how much of a reply body is read.
const maxReplyBytes = 4 << 20

// HTTPClient posts chat requests as JSON.
type HTTPClient struct {
	client *http.Client
	logger *zap.Logger
}

// NewHTTPClient wraps client, or http.DefaultClient when nil.
func NewHTTPClient(client *http.Client, logger *zap.Logger) *HTTPClient {
	if client == nil {
		client = http.DefaultClient
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &HTTPClient{client: client, logger: logger}
}

// Exchange posts req to endpoint. Any non-2xx status is a failure regardless
// of the body.
func (c *HTTPClient) Exchange(ctx context.Context, endpoint string, req chat.Request) (chat.Reply, error) {
	body, err := encodeRequest(req)
	if err != nil {
		return chat.Reply{}, &RequestError{Endpoint: endpoint, Err: err}
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return chat.Reply{}, &RequestError{Endpoint: endpoint, Err: err}
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.client.Do(httpReq)
	if err != nil {
		c.logger.Debug("chat request failed", zap.String("endpoint", endpoint), zap.Error(err))
		return chat.Reply{}, &RequestError{Endpoint: endpoint, Err: err}
	}
	defer resp.Body.Close()

	c.logger.Debug("chat response received",
		zap.String("endpoint", endpoint),
		zap.Int("status", resp.StatusCode),
		zap.Duration("elapsed", time.Since(start)),
	)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxReplyBytes))
		return chat.Reply{}, &RequestError{Endpoint: endpoint, Status: resp.StatusCode, Err: ErrUnexpectedStatus}
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxReplyBytes))
	if err != nil {
		return chat.Reply{}, &RequestError{Endpoint: endpoint, Err: err}
	}

	reply, err := decodeReply(data)
	if err != nil {
		return chat.Reply{}, &RequestError{Endpoint: endpoint, Err: err}
	}
	return reply, nil
}
