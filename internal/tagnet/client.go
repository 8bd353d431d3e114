package tagnet

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"sync"
	"time"

	"go.nanomsg.org/mangos/v3"
	"go.nanomsg.org/mangos/v3/protocol/req"

	"github.com/Amir23156/BottleAsec/internal/tag"
)

// DefaultTimeout is used when Dial gets a non-positive timeout.
const DefaultTimeout = time.Second

// Client is a tag.Store backed by a remote Server. It keeps at most one
// request outstanding.
type Client struct {
	mu   sync.Mutex
	sock mangos.Socket
}

var _ tag.Store = (*Client)(nil)

// Dial connects a REQ socket to addr. The connection is made in the
// background; requests sent before the server is up time out as stale reads.
func Dial(addr string, timeout time.Duration) (*Client, error) {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	sock, err := req.NewSocket()
	if err != nil {
		return nil, fmt.Errorf("failed to create REQ socket: %w", err)
	}
	for opt, v := range map[string]interface{}{
		mangos.OptionRecvDeadline: timeout,
		mangos.OptionSendDeadline: timeout,
	} {
		if err := sock.SetOption(opt, v); err != nil {
			sock.Close()
			return nil, fmt.Errorf("failed to set %s: %w", opt, err)
		}
	}
	if err := sock.DialOptions(addr, map[string]interface{}{mangos.OptionDialAsynch: true}); err != nil {
		sock.Close()
		return nil, fmt.Errorf("failed to dial %s: %w", addr, err)
	}
	return &Client{sock: sock}, nil
}

// Read fetches a tag value from the server.
func (c *Client) Read(ctx context.Context, id tag.ID) (float64, error) {
	rep, err := c.call(ctx, request{Op: OpRead, Tag: id})
	if err != nil {
		return 0, &tag.TransportError{Op: OpRead, Tag: id, Err: err}
	}
	return rep.Value, nil
}

// Write sets a tag value on the server.
func (c *Client) Write(ctx context.Context, id tag.ID, value float64) error {
	// JSON has no NaN or Inf
	if math.IsNaN(value) || math.IsInf(value, 0) {
		return &tag.TransportError{Op: OpWrite, Tag: id, Err: tag.ErrWriteRejected}
	}
	if _, err := c.call(ctx, request{Op: OpWrite, Tag: id, Value: value}); err != nil {
		return &tag.TransportError{Op: OpWrite, Tag: id, Err: err}
	}
	return nil
}

// Close closes the socket.
func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.sock.Close()
}

func (c *Client) call(ctx context.Context, r request) (reply, error) {
	if err := ctx.Err(); err != nil {
		return reply{}, err
	}

	data, err := json.Marshal(r)
	if err != nil {
		return reply{}, fmt.Errorf("failed to encode request: %w", err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.sock.Send(data); err != nil {
		return reply{}, transportErr(err)
	}
	msg, err := c.sock.Recv()
	if err != nil {
		return reply{}, transportErr(err)
	}

	rep, err := decodeReply(msg)
	if err != nil {
		return reply{}, err
	}
	if err := tag.FromCode(rep.Code); err != nil {
		return reply{}, err
	}
	return rep, nil
}

// transportErr maps socket timeouts to a stale read
func transportErr(err error) error {
	if errors.Is(err, mangos.ErrRecvTimeout) || errors.Is(err, mangos.ErrSendTimeout) {
		return fmt.Errorf("%w: %v", tag.ErrStaleRead, err)
	}
	return err
}
