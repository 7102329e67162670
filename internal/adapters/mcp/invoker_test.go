package mcp

import (
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	"aio/internal/daemon"
)

type stubInvoker struct {
	result json.RawMessage
	err    error
	calls  int
}

func (s *stubInvoker) Invoke(method string, params any) (json.RawMessage, error) {
	s.calls++
	return s.result, s.err
}

func TestFallbackUsesPrimaryResult(t *testing.T) {
	primary := &stubInvoker{result: json.RawMessage(`{"count":1}`)}
	secondary := &stubInvoker{}
	f := &Fallback{Primary: primary, Secondary: secondary}

	result, err := f.Invoke("list_tasks", nil)
	if err != nil {
		t.Fatalf("Invoke: %v", err)
	}
	if string(result) != `{"count":1}` {
		t.Errorf("result = %s", result)
	}
	if secondary.calls != 0 {
		t.Error("secondary was called although primary succeeded")
	}
}

func TestFallbackSwitchesWhenDaemonUnavailable(t *testing.T) {
	primary := &stubInvoker{err: fmt.Errorf("%w: /tmp/nope.sock", daemon.ErrDaemonUnavailable)}
	secondary := &stubInvoker{result: json.RawMessage(`{"count":0}`)}
	f := &Fallback{Primary: primary, Secondary: secondary}

	result, err := f.Invoke("list_tasks", nil)
	if err != nil {
		t.Fatalf("Invoke: %v", err)
	}
	if string(result) != `{"count":0}` {
		t.Errorf("result = %s", result)
	}
	if secondary.calls != 1 {
		t.Errorf("secondary calls = %d, want 1", secondary.calls)
	}
}

func TestFallbackKeepsRPCErrors(t *testing.T) {
	// An RPC-level error means the daemon answered; falling back would
	// run the mutation twice.
	rpcErr := &daemon.RPCError{Code: daemon.CodeTaskNotFound, Message: "no task found matching: ZZZZ"}
	primary := &stubInvoker{err: rpcErr}
	secondary := &stubInvoker{}
	f := &Fallback{Primary: primary, Secondary: secondary}

	_, err := f.Invoke("complete_task", map[string]any{"query": "ZZZZ"})
	if !errors.Is(err, error(rpcErr)) {
		t.Fatalf("Invoke error = %v, want the RPC error back", err)
	}
	if secondary.calls != 0 {
		t.Error("secondary was called on an RPC error")
	}
}
