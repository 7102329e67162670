package daemon

import (
	"errors"
	"path/filepath"
	"testing"
	"time"

	"aio/internal/domain"
)

func TestClientAvailable(t *testing.T) {
	missing := NewClient(filepath.Join(t.TempDir(), "nope.sock"), time.Second)
	if missing.Available() {
		t.Error("Available() = true for a missing socket")
	}

	server, _, _ := startTestSocketServer(t)
	client := NewClient(server.Path(), time.Second)
	if !client.Available() {
		t.Error("Available() = false for a live socket")
	}
}

func TestClientCallUnavailable(t *testing.T) {
	client := NewClient(filepath.Join(t.TempDir(), "nope.sock"), time.Second)

	err := client.Call("list_tasks", nil, nil)
	if !errors.Is(err, ErrDaemonUnavailable) {
		t.Fatalf("Call error = %v, want ErrDaemonUnavailable", err)
	}
}

func TestClientCallDecodesResult(t *testing.T) {
	server, d, repo := startTestSocketServer(t)
	seedTask(repo, "AB22", "Ship release", domain.StatusNext, nil)
	if err := d.ctx.Cache.Refresh(); err != nil {
		t.Fatalf("Refresh: %v", err)
	}

	client := NewClient(server.Path(), 5*time.Second)
	var result struct {
		Task struct {
			ID     string `json:"id"`
			Status string `json:"status"`
		} `json:"task"`
	}
	if err := client.Call("get_task", map[string]any{"id": "ab22"}, &result); err != nil {
		t.Fatalf("Call: %v", err)
	}
	if result.Task.ID != "AB22" || result.Task.Status != "next" {
		t.Errorf("result = %+v", result.Task)
	}
}

func TestClientCallSurfacesRPCError(t *testing.T) {
	server, _, _ := startTestSocketServer(t)
	client := NewClient(server.Path(), 5*time.Second)

	err := client.Call("get_task", map[string]any{"id": "ZZZZ"}, nil)
	var rpcErr *RPCError
	if !errors.As(err, &rpcErr) {
		t.Fatalf("Call error = %T, want *RPCError", err)
	}
	if rpcErr.Code != CodeTaskNotFound {
		t.Errorf("code = %d, want %d", rpcErr.Code, CodeTaskNotFound)
	}
}

func TestClientPing(t *testing.T) {
	server, _, _ := startTestSocketServer(t)
	client := NewClient(server.Path(), 5*time.Second)

	if err := client.Ping(); err != nil {
		t.Fatalf("Ping: %v", err)
	}
}
