package rpc

import (
	"context"
	"errors"
	"fmt"

	"github.com/qfs-dev/qfs/internal/qerrors"
)

// Standard and QFS-specific JSON-RPC error codes.
const (
	ErrCodeNotFound      = -32001
	ErrCodeNoEmbeddings  = -32002
	ErrCodeTimeout       = -32003
	ErrCodeSchemaTooNew  = -32004
	ErrCodeDatabase      = -32005
	ErrCodeInvalidRequest = -32600
	ErrCodeMethodNotFound = -32601
	ErrCodeInvalidParams  = -32602
	ErrCodeInternalError  = -32603
)

// ToolError is an MCP-shaped error: a numeric code plus a human message.
type ToolError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func (e *ToolError) Error() string {
	return fmt.Sprintf("rpc error %d: %s", e.Code, e.Message)
}

// MapError converts a qerrors.Error (or any error) into a ToolError,
// preserving the tagged-sum Kind distinctions from spec §7.
func MapError(err error) *ToolError {
	if err == nil {
		return nil
	}

	var qe *qerrors.Error
	if errors.As(err, &qe) {
		return mapQErr(qe)
	}

	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return &ToolError{Code: ErrCodeTimeout, Message: "request timed out"}
	case errors.Is(err, context.Canceled):
		return &ToolError{Code: ErrCodeTimeout, Message: "request was canceled"}
	default:
		return &ToolError{Code: ErrCodeInternalError, Message: err.Error()}
	}
}

func mapQErr(qe *qerrors.Error) *ToolError {
	switch qe.Kind {
	case qerrors.NotFound:
		return &ToolError{Code: ErrCodeNotFound, Message: qe.Message}
	case qerrors.InvalidQuery:
		return &ToolError{Code: ErrCodeInvalidParams, Message: qe.Message}
	case qerrors.NoEmbeddings:
		return &ToolError{Code: ErrCodeNoEmbeddings, Message: qe.Message}
	case qerrors.SchemaTooNew:
		return &ToolError{Code: ErrCodeSchemaTooNew, Message: qe.Message}
	case qerrors.Database:
		return &ToolError{Code: ErrCodeDatabase, Message: qe.Message}
	default:
		return &ToolError{Code: ErrCodeInternalError, Message: qe.Message}
	}
}

// NewInvalidParamsError builds an invalid-params ToolError with a custom message.
func NewInvalidParamsError(msg string) *ToolError {
	return &ToolError{Code: ErrCodeInvalidParams, Message: msg}
}

// NewMethodNotFoundError builds a method-not-found ToolError for an unknown tool name.
func NewMethodNotFoundError(name string) *ToolError {
	return &ToolError{Code: ErrCodeMethodNotFound, Message: fmt.Sprintf("tool %q not found", name)}
}
