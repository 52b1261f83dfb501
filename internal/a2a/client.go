// Package a2a implements the request/response message protocol spoken
// between negotiating agents.
package a2a

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/humuhimi/hedera-hackathon-ai-theme-sub000/internal/httpclient"
)

const (
	ProtocolVersion = "2.0"
	MethodSend      = "message/send"

	// DefaultTimeout bounds one round trip. There is deliberately no retry:
	// resending with stale context could restate a superseded offer.
	DefaultTimeout = 30 * time.Second

	RoleUser  = "user"
	RoleAgent = "agent"
)

// ErrUnreachable marks a timeout or transport failure talking to the
// counterparty, distinguishable from a protocol-level error.
var ErrUnreachable = errors.New("counterparty unreachable")

// Part is one payload fragment of a message. Only text parts are used.
type Part struct {
	Kind string `json:"kind"`
	Text string `json:"text"`
}

// Message is the negotiable payload inside a request or reply.
type Message struct {
	MessageID string `json:"messageId"`
	Role      string `json:"role"`
	Parts     []Part `json:"parts"`
}

// Request is the wire envelope sent to a counterparty's endpoint.
type Request struct {
	ProtocolVersion string `json:"protocolVersion"`
	Method          string `json:"method"`
	Params          struct {
		Message Message `json:"message"`
	} `json:"params"`
	ID int64 `json:"id"`
}

// Response mirrors Request with the counterparty's message under result.
type Response struct {
	ProtocolVersion string   `json:"protocolVersion,omitempty"`
	Result          *Message `json:"result,omitempty"`
	Error           *struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error,omitempty"`
	ID int64 `json:"id"`
}

// Reply is the decoded counterparty turn.
type Reply struct {
	MessageID string
	Text      string
}

// Client performs single request/response exchanges with agent endpoints.
type Client struct {
	http   *httpclient.Client
	nextID atomic.Int64
}

func NewClient(timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Client{
		http: httpclient.NewClientWithRetry("a2a", timeout, httpclient.NoRetryConfig()),
	}
}

// Send delivers one text message to endpoint and returns the counterparty's
// reply. Timeouts and transport failures surface as ErrUnreachable.
func (c *Client) Send(ctx context.Context, endpoint, role, text string) (Reply, error) {
	req := Request{
		ProtocolVersion: ProtocolVersion,
		Method:          MethodSend,
		ID:              c.nextID.Add(1),
	}
	req.Params.Message = Message{
		MessageID: uuid.NewString(),
		Role:      role,
		Parts:     []Part{{Kind: "text", Text: text}},
	}

	var resp Response
	if err := c.http.PostJSON(ctx, endpoint, req, &resp); err != nil {
		var httpErr *httpclient.HTTPError
		if errors.As(err, &httpErr) {
			return Reply{}, fmt.Errorf("a2a send: %w", err)
		}
		return Reply{}, fmt.Errorf("%w: %v", ErrUnreachable, err)
	}

	if resp.Error != nil {
		return Reply{}, fmt.Errorf("a2a error %d: %s", resp.Error.Code, resp.Error.Message)
	}
	if resp.Result == nil || len(resp.Result.Parts) == 0 {
		return Reply{}, errors.New("a2a reply missing text part")
	}

	return Reply{
		MessageID: resp.Result.MessageID,
		Text:      resp.Result.Parts[0].Text,
	}, nil
}
