package common

import (
	"context"
	"errors"
	"fmt"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// AppError represents application-specific errors
type AppError struct {
	Code    string
	Message string
	Cause   error
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

// Error codes carried by AppError.
const (
	CodeDocumentRead  = "DOCUMENT_READ"
	CodeEmptyDocument = "EMPTY_DOCUMENT"
	CodeConfig        = "CONFIG_ERROR"
)

// Common application errors
var (
	ErrInvalidInput = errors.New("invalid input")
	ErrNotFound     = errors.New("resource not found")
	ErrDatabase     = errors.New("database error")

	// ErrDocumentRead: the document cannot be opened or a page cannot be decoded.
	ErrDocumentRead = errors.New("document cannot be read")
	// ErrEmptyDocument: the document opens but no page yields text.
	ErrEmptyDocument = errors.New("document has no extractable text")
)

// Error constructors
func NewAppError(code, message string, cause error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

// DocumentReadError wraps a renderer failure for path. errors.Is(err, ErrDocumentRead) holds
// and the renderer error stays in the message.
func DocumentReadError(path string, err error) error {
	return NewAppError(CodeDocumentRead, fmt.Sprintf("%s: %v", path, err), ErrDocumentRead)
}

// EmptyDocumentError reports a document without text.
func EmptyDocumentError(path string) error {
	return NewAppError(CodeEmptyDocument, path, ErrEmptyDocument)
}

// IsDocumentError reports whether err is one of the two document-level failures.
func IsDocumentError(err error) bool {
	return errors.Is(err, ErrDocumentRead) || errors.Is(err, ErrEmptyDocument)
}

// gRPC error helpers
func InvalidArgumentError(message string) error {
	return status.Error(codes.InvalidArgument, message)
}

func FailedPreconditionError(message string) error {
	return status.Error(codes.FailedPrecondition, message)
}

func InternalError(message string) error {
	return status.Error(codes.Internal, message)
}

func InvalidArgumentErrorf(format string, args ...interface{}) error {
	return InvalidArgumentError(fmt.Sprintf(format, args...))
}

func InternalErrorf(format string, args ...interface{}) error {
	return InternalError(fmt.Sprintf(format, args...))
}

// StatusFromError maps an extraction error to a gRPC status. Document failures are the
// caller's precondition; anything unrecognised is reported as internal without detail.
func StatusFromError(err error) error {
	if err == nil {
		return nil
	}
	if _, ok := status.FromError(err); ok {
		return err
	}
	switch {
	case IsDocumentError(err):
		return FailedPreconditionError(err.Error())
	case errors.Is(err, ErrInvalidInput):
		return InvalidArgumentError(err.Error())
	case errors.Is(err, context.DeadlineExceeded):
		return status.Error(codes.DeadlineExceeded, "extraction timed out")
	case errors.Is(err, context.Canceled):
		return status.Error(codes.Canceled, "extraction cancelled")
	default:
		return InternalError("extraction failed")
	}
}
