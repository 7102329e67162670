package daemon

import (
	"encoding/json"
	"errors"

	"aio/internal/application"
)

// JSON-RPC 2.0 envelope types shared by the socket and HTTP transports.

// Request is one incoming call.
type Request struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      any             `json:"id"`
	Method  string          `json:"method"`
	Params  json.RawMessage `json:"params,omitempty"`
}

// Response is the reply to one Request, echoing its ID.
type Response struct {
	JSONRPC string    `json:"jsonrpc"`
	ID      any       `json:"id"`
	Result  any       `json:"result,omitempty"`
	Error   *RPCError `json:"error,omitempty"`
}

// RPCError is the error member of a failed Response.
type RPCError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

func (e *RPCError) Error() string { return e.Message }

// Standard JSON-RPC codes.
const (
	CodeParseError     = -32700
	CodeInvalidRequest = -32600
	CodeMethodNotFound = -32601
	CodeInvalidParams  = -32602
	CodeInternalError  = -32603
)

// Domain codes.
const (
	CodeTaskNotFound        = -32001
	CodeAmbiguousMatch      = -32002
	CodeVaultNotFound       = -32003
	CodeInvalidDate         = -32004
	CodeVaultNotInitialized = -32005
	CodeProjectNotFound     = -32006
	CodePersonNotFound      = -32007
	CodeContextPackNotFound = -32008
	CodeContextPackExists   = -32009
	CodeFileOutsideVault    = -32010
)

var codeNames = map[int]string{
	CodeParseError:          "PARSE_ERROR",
	CodeInvalidRequest:      "INVALID_REQUEST",
	CodeMethodNotFound:      "METHOD_NOT_FOUND",
	CodeInvalidParams:       "INVALID_PARAMS",
	CodeInternalError:       "INTERNAL_ERROR",
	CodeTaskNotFound:        "TASK_NOT_FOUND",
	CodeAmbiguousMatch:      "AMBIGUOUS_MATCH",
	CodeVaultNotFound:       "VAULT_NOT_FOUND",
	CodeInvalidDate:         "INVALID_DATE",
	CodeVaultNotInitialized: "VAULT_NOT_INITIALIZED",
	CodeProjectNotFound:     "PROJECT_NOT_FOUND",
	CodePersonNotFound:      "PERSON_NOT_FOUND",
	CodeContextPackNotFound: "CONTEXT_PACK_NOT_FOUND",
	CodeContextPackExists:   "CONTEXT_PACK_EXISTS",
	CodeFileOutsideVault:    "FILE_OUTSIDE_VAULT",
}

// CodeName returns the stable string name for an error code, for clients
// that key on names rather than numbers.
func CodeName(code int) string {
	if name, ok := codeNames[code]; ok {
		return name
	}
	return "INTERNAL_ERROR"
}

// errorToRPC maps a handler error onto a protocol error. Domain errors
// translate to their codes; anything unrecognized becomes an internal
// error with a generic message.
func errorToRPC(err error) *RPCError {
	var rpcErr *RPCError
	if errors.As(err, &rpcErr) {
		return rpcErr
	}

	var (
		taskNotFound    *application.TaskNotFoundError
		ambiguous       *application.AmbiguousMatchError
		projectNotFound *application.ProjectNotFoundError
		personNotFound  *application.PersonNotFoundError
		packNotFound    *application.ContextPackNotFoundError
		packExists      *application.ContextPackExistsError
		outsideVault    *application.FileOutsideVaultError
		invalidDate     *application.InvalidDateError
		vaultNotFound   *application.VaultNotFoundError
		notInitialized  *application.VaultNotInitializedError
	)

	switch {
	case errors.As(err, &taskNotFound):
		return &RPCError{Code: CodeTaskNotFound, Message: err.Error()}
	case errors.As(err, &ambiguous):
		return &RPCError{Code: CodeAmbiguousMatch, Message: err.Error(), Data: map[string]any{"matches": ambiguous.Matches}}
	case errors.As(err, &projectNotFound):
		return &RPCError{Code: CodeProjectNotFound, Message: err.Error()}
	case errors.As(err, &personNotFound):
		return &RPCError{Code: CodePersonNotFound, Message: err.Error()}
	case errors.As(err, &packNotFound):
		return &RPCError{Code: CodeContextPackNotFound, Message: err.Error()}
	case errors.As(err, &packExists):
		return &RPCError{Code: CodeContextPackExists, Message: err.Error()}
	case errors.As(err, &outsideVault):
		return &RPCError{Code: CodeFileOutsideVault, Message: err.Error()}
	case errors.As(err, &invalidDate):
		return &RPCError{Code: CodeInvalidDate, Message: err.Error()}
	case errors.As(err, &vaultNotFound):
		return &RPCError{Code: CodeVaultNotFound, Message: err.Error()}
	case errors.As(err, &notInitialized):
		return &RPCError{Code: CodeVaultNotInitialized, Message: err.Error()}
	case errors.Is(err, application.ErrNotFound):
		return &RPCError{Code: CodeTaskNotFound, Message: err.Error()}
	default:
		return &RPCError{Code: CodeInternalError, Message: "internal error"}
	}
}

// successResponse builds a Response echoing the request ID.
func successResponse(id, result any) Response {
	return Response{JSONRPC: "2.0", ID: id, Result: result}
}

// errorResponse builds a failed Response echoing the request ID.
func errorResponse(id any, rpcErr *RPCError) Response {
	return Response{JSONRPC: "2.0", ID: id, Error: rpcErr}
}
