// Package mcp exposes the vault over the Model Context Protocol. Tools
// proxy to the daemon when it is running and fall back to an in-process
// dispatcher otherwise, so agents get the same methods either way.
package mcp

import (
	"encoding/json"
	"errors"
	"fmt"

	"aio/internal/daemon"
)

// Invoker routes one RPC method call. Implementations are the daemon
// socket client and the in-process dispatcher.
type Invoker interface {
	Invoke(method string, params any) (json.RawMessage, error)
}

// ClientInvoker calls a running daemon over its socket.
type ClientInvoker struct {
	Client *daemon.Client
}

func (c *ClientInvoker) Invoke(method string, params any) (json.RawMessage, error) {
	var out json.RawMessage
	if err := c.Client.Call(method, params, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// LocalInvoker dispatches in-process against a local cache and store.
type LocalInvoker struct {
	Dispatcher *daemon.Dispatcher
}

func (l *LocalInvoker) Invoke(method string, params any) (json.RawMessage, error) {
	raw, err := json.Marshal(params)
	if err != nil {
		return nil, fmt.Errorf("encode params: %w", err)
	}
	resp := l.Dispatcher.Dispatch(daemon.Request{JSONRPC: "2.0", ID: 0, Method: method, Params: raw})
	if resp.Error != nil {
		return nil, resp.Error
	}
	return json.Marshal(resp.Result)
}

// Fallback tries the daemon first and falls back to the local invoker
// when the daemon is unreachable.
type Fallback struct {
	Primary   Invoker
	Secondary Invoker
}

func (f *Fallback) Invoke(method string, params any) (json.RawMessage, error) {
	result, err := f.Primary.Invoke(method, params)
	if err != nil && errors.Is(err, daemon.ErrDaemonUnavailable) {
		return f.Secondary.Invoke(method, params)
	}
	return result, err
}
