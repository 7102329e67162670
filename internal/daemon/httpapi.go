package daemon

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
)

// HTTPServer is a REST façade over the dispatcher for clients that
// prefer HTTP, such as the note editor's plugin.
type HTTPServer struct {
	addr       string
	dispatcher *Dispatcher
	health     func() map[string]any
	logger     *slog.Logger

	mu     sync.Mutex
	server *http.Server
}

// NewHTTPServer creates an HTTP server. health supplies the health
// endpoint's body without going through the dispatcher.
func NewHTTPServer(addr string, dispatcher *Dispatcher, health func() map[string]any, logger *slog.Logger) *HTTPServer {
	if logger == nil {
		logger = slog.Default()
	}
	return &HTTPServer{addr: addr, dispatcher: dispatcher, health: health, logger: logger}
}

// Start binds the listener and serves in the background.
func (s *HTTPServer) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.server != nil {
		return fmt.Errorf("http server already running")
	}

	listener, err := net.Listen("tcp", s.addr)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", s.addr, err)
	}

	s.server = &http.Server{Handler: s.router()}
	go func() {
		if err := s.server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("http server stopped", "error", err)
		}
	}()

	s.logger.Info("http server listening", "addr", s.addr)
	return nil
}

// Stop shuts the server down, allowing in-flight requests a short grace
// period. Idempotent.
func (s *HTTPServer) Stop() error {
	s.mu.Lock()
	server := s.server
	s.server = nil
	s.mu.Unlock()

	if server == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return server.Shutdown(ctx)
}

// Running reports whether the server is serving.
func (s *HTTPServer) Running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.server != nil
}

func (s *HTTPServer) router() *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())

	api := router.Group("/api/v1")
	{
		api.GET("/health", s.handleHealth)
		api.POST("/rpc", s.handleRawRPC)

		api.GET("/tasks", s.rpcQuery("list_tasks", "status", "project", "include_completed"))
		api.POST("/tasks", s.rpcBody("add_task"))
		api.GET("/tasks/:id", s.handleGetTask)
		api.POST("/tasks/:id/complete", s.taskAction("complete_task"))
		api.POST("/tasks/:id/start", s.taskAction("start_task"))
		api.POST("/tasks/:id/defer", s.taskAction("defer_task"))
		api.POST("/tasks/:id/delegate", s.taskAction("delegate_task"))
		api.POST("/tasks/:id/archive", s.taskAction("archive_task"))

		api.GET("/projects", s.rpcQuery("list_projects", "status"))
		api.POST("/projects", s.rpcBody("create_project"))
		api.POST("/projects/:id/archive", s.taskAction("archive_project"))

		api.GET("/people", s.rpcQuery("list_people"))
		api.POST("/people", s.rpcBody("create_person"))
		api.POST("/people/:id/archive", s.taskAction("archive_person"))

		api.GET("/dashboard", s.rpcQuery("get_dashboard"))

		api.GET("/context-packs", s.rpcQuery("list_context_packs", "category"))
		api.POST("/context-packs", s.rpcBody("create_context_pack"))
	}

	return router
}

func (s *HTTPServer) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"ok": true, "data": s.health()})
}

// handleRawRPC accepts a full JSON-RPC envelope and returns a full
// response, for clients that want symmetry with the socket transport.
func (s *HTTPServer) handleRawRPC(c *gin.Context) {
	var req Request
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse(nil, &RPCError{
			Code:    CodeParseError,
			Message: "parse error: " + err.Error(),
		}))
		return
	}
	c.JSON(http.StatusOK, s.dispatcher.Dispatch(req))
}

func (s *HTTPServer) handleGetTask(c *gin.Context) {
	s.call(c, "get_task", map[string]any{"id": c.Param("id")})
}

// taskAction maps POST /tasks/:id/<action> onto the query-addressed
// mutation methods, merging any JSON body fields in as extra params.
func (s *HTTPServer) taskAction(method string) gin.HandlerFunc {
	return func(c *gin.Context) {
		params := map[string]any{"query": c.Param("id")}
		mergeBody(c, params)
		s.call(c, method, params)
	}
}

// rpcQuery maps a GET route onto an RPC method, lifting the named query
// parameters into params.
func (s *HTTPServer) rpcQuery(method string, keys ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		params := map[string]any{}
		for _, key := range keys {
			if v := c.Query(key); v != "" {
				if key == "include_completed" {
					params[key] = v == "true" || v == "1"
					continue
				}
				params[key] = v
			}
		}
		s.call(c, method, params)
	}
}

// rpcBody maps a POST route onto an RPC method with the JSON body as
// params.
func (s *HTTPServer) rpcBody(method string) gin.HandlerFunc {
	return func(c *gin.Context) {
		params := map[string]any{}
		mergeBody(c, params)
		s.call(c, method, params)
	}
}

func mergeBody(c *gin.Context, params map[string]any) {
	var body map[string]any
	if err := c.ShouldBindJSON(&body); err == nil {
		for k, v := range body {
			params[k] = v
		}
	}
}

// call dispatches one RPC and writes the REST envelope with the HTTP
// status derived from the error code.
func (s *HTTPServer) call(c *gin.Context, method string, params map[string]any) {
	raw, err := json.Marshal(params)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"ok":    false,
			"error": gin.H{"code": "INTERNAL_ERROR", "message": "encode params"},
		})
		return
	}

	resp := s.dispatcher.Dispatch(Request{JSONRPC: "2.0", ID: 0, Method: method, Params: raw})
	if resp.Error != nil {
		c.JSON(httpStatus(resp.Error.Code), gin.H{
			"ok": false,
			"error": gin.H{
				"code":    CodeName(resp.Error.Code),
				"message": resp.Error.Message,
			},
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "data": resp.Result})
}

// httpStatus maps RPC error codes onto HTTP statuses.
func httpStatus(code int) int {
	switch code {
	case CodeTaskNotFound, CodeProjectNotFound, CodePersonNotFound,
		CodeContextPackNotFound, CodeVaultNotFound, CodeMethodNotFound:
		return http.StatusNotFound
	case CodeAmbiguousMatch, CodeContextPackExists:
		return http.StatusConflict
	case CodeInvalidParams, CodeInvalidRequest, CodeParseError, CodeInvalidDate:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
