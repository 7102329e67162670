package daemon

import (
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"os"
	"sync/atomic"
	"time"
)

// ErrDaemonUnavailable means the socket does not exist or refused the
// connection. Callers treat this as "daemon not running" and fall back
// to direct file access rather than surfacing an error.
var ErrDaemonUnavailable = errors.New("daemon is not running")

// ErrDaemonTimeout means the daemon accepted the connection but did not
// answer within the client's deadline. Unlike ErrDaemonUnavailable this
// is worth reporting.
var ErrDaemonTimeout = errors.New("daemon did not respond in time")

// Client calls the daemon over the framed Unix socket. One connection
// per call; the CLI is short-lived and the dial cost is negligible
// against the file scan it avoids.
type Client struct {
	socketPath string
	timeout    time.Duration
	nextID     atomic.Int64
}

// NewClient creates a client for the given socket path.
func NewClient(socketPath string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Client{socketPath: socketPath, timeout: timeout}
}

// Available reports whether the daemon socket exists.
func (c *Client) Available() bool {
	info, err := os.Stat(c.socketPath)
	return err == nil && info.Mode()&os.ModeSocket != 0
}

// Call sends one request and decodes the result into out (when out is
// non-nil). An RPC-level error comes back as *RPCError.
func (c *Client) Call(method string, params any, out any) error {
	conn, err := net.DialTimeout("unix", c.socketPath, c.timeout)
	if err != nil {
		return fmt.Errorf("%w: %s", ErrDaemonUnavailable, c.socketPath)
	}
	defer conn.Close()
	conn.SetDeadline(time.Now().Add(c.timeout))

	req := Request{
		JSONRPC: "2.0",
		ID:      c.nextID.Add(1),
		Method:  method,
	}
	if params != nil {
		raw, err := json.Marshal(params)
		if err != nil {
			return fmt.Errorf("encode params: %w", err)
		}
		req.Params = raw
	}

	payload, err := json.Marshal(req)
	if err != nil {
		return fmt.Errorf("encode request: %w", err)
	}
	if err := WriteFrame(conn, payload); err != nil {
		return wrapIOErr(err)
	}

	body, err := ReadFrame(conn, MaxFrameSize)
	if err != nil {
		return wrapIOErr(err)
	}

	var resp struct {
		JSONRPC string          `json:"jsonrpc"`
		ID      any             `json:"id"`
		Result  json.RawMessage `json:"result"`
		Error   *RPCError       `json:"error"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	if resp.Error != nil {
		return resp.Error
	}
	if out != nil && len(resp.Result) > 0 {
		if err := json.Unmarshal(resp.Result, out); err != nil {
			return fmt.Errorf("decode result: %w", err)
		}
	}
	return nil
}

// Ping checks liveness with a cheap read-only call.
func (c *Client) Ping() error {
	return c.Call("list_tasks", map[string]any{"status": "inbox"}, nil)
}

func wrapIOErr(err error) error {
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return ErrDaemonTimeout
	}
	return fmt.Errorf("%w: %v", ErrDaemonUnavailable, err)
}
