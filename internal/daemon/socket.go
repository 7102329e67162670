package daemon

import (
	"context"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"os"
	"path/filepath"
	"sync"
)

// MaxFrameSize caps one framed message. A frame declaring more than
// this closes the connection before any body bytes are read.
const MaxFrameSize = 10 * 1024 * 1024

// SocketServer serves the dispatcher over a Unix socket. Each message
// is a 4-byte big-endian length followed by that many bytes of JSON.
type SocketServer struct {
	path       string
	dispatcher *Dispatcher
	logger     *slog.Logger

	mu       sync.Mutex
	listener net.Listener
	cancel   context.CancelFunc
	conns    sync.WaitGroup
}

// NewSocketServer creates a socket server; Start binds it.
func NewSocketServer(path string, dispatcher *Dispatcher, logger *slog.Logger) *SocketServer {
	if logger == nil {
		logger = slog.Default()
	}
	return &SocketServer{path: path, dispatcher: dispatcher, logger: logger}
}

// Start binds the socket with owner-only permissions and begins
// accepting connections. A stale socket file from a dead process is
// removed first.
func (s *SocketServer) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.listener != nil {
		return fmt.Errorf("socket server already running")
	}

	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("create socket directory: %w", err)
	}
	if err := os.Remove(s.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove stale socket: %w", err)
	}

	listener, err := net.Listen("unix", s.path)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", s.path, err)
	}
	if err := os.Chmod(s.path, 0o600); err != nil {
		listener.Close()
		return fmt.Errorf("restrict socket permissions: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	s.listener = listener
	s.cancel = cancel

	go s.acceptLoop(ctx, listener)
	s.logger.Info("socket server listening", "path", s.path)
	return nil
}

// Stop closes the listener, cancels every open connection, waits for
// them to unwind, and removes the socket file. Idempotent.
func (s *SocketServer) Stop() error {
	s.mu.Lock()
	listener := s.listener
	cancel := s.cancel
	s.listener = nil
	s.cancel = nil
	s.mu.Unlock()

	if listener == nil {
		return nil
	}

	cancel()
	err := listener.Close()
	s.conns.Wait()
	if rmErr := os.Remove(s.path); rmErr != nil && !os.IsNotExist(rmErr) && err == nil {
		err = rmErr
	}
	return err
}

// Running reports whether the server is accepting connections.
func (s *SocketServer) Running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.listener != nil
}

// Path returns the socket path.
func (s *SocketServer) Path() string { return s.path }

func (s *SocketServer) acceptLoop(ctx context.Context, listener net.Listener) {
	for {
		conn, err := listener.Accept()
		if err != nil {
			return // listener closed
		}
		s.conns.Add(1)
		go func() {
			defer s.conns.Done()
			s.serveConn(ctx, conn)
		}()
	}
}

// serveConn loops: read one frame, dispatch, write one frame. A
// protocol violation closes only this connection.
func (s *SocketServer) serveConn(ctx context.Context, conn net.Conn) {
	defer conn.Close()

	// Close the connection when the server shuts down so blocked reads
	// return.
	stop := context.AfterFunc(ctx, func() { conn.Close() })
	defer stop()

	for {
		body, err := ReadFrame(conn, MaxFrameSize)
		if err != nil {
			if !errors.Is(err, io.EOF) && ctx.Err() == nil {
				s.logger.Debug("connection closed", "error", err)
			}
			return
		}

		response := s.handleFrame(body)
		payload, err := json.Marshal(response)
		if err != nil {
			s.logger.Error("marshal response", "error", err)
			return
		}
		if err := WriteFrame(conn, payload); err != nil {
			return
		}
	}
}

func (s *SocketServer) handleFrame(body []byte) Response {
	var req Request
	if err := json.Unmarshal(body, &req); err != nil {
		return errorResponse(nil, &RPCError{Code: CodeParseError, Message: "parse error: " + err.Error()})
	}
	return s.dispatcher.Dispatch(req)
}

// ReadFrame reads one length-prefixed message. A declared length above
// max is an error and the body is never read.
func ReadFrame(r io.Reader, max uint32) ([]byte, error) {
	var header [4]byte
	if _, err := io.ReadFull(r, header[:]); err != nil {
		return nil, err
	}
	length := binary.BigEndian.Uint32(header[:])
	if length > max {
		return nil, fmt.Errorf("frame of %d bytes exceeds limit of %d", length, max)
	}
	body := make([]byte, length)
	if _, err := io.ReadFull(r, body); err != nil {
		return nil, fmt.Errorf("read frame body: %w", err)
	}
	return body, nil
}

// WriteFrame writes one length-prefixed message as a single buffer so a
// response is never partially visible on the wire.
func WriteFrame(w io.Writer, body []byte) error {
	buf := make([]byte, 4+len(body))
	binary.BigEndian.PutUint32(buf[:4], uint32(len(body)))
	copy(buf[4:], body)
	_, err := w.Write(buf)
	return err
}
