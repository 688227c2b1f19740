package apperror

import (
	"errors"
	"fmt"
)

// Kind classifies an application error so the HTTP layer can map it to the
// right response category. Client kinds come from bad or un-decodable input;
// capability kinds come from a failing external service.
type Kind int

const (
	// KindIngestion: a recognized file could not be extracted, or nothing
	// decodable was uploaded. Client-caused.
	KindIngestion Kind = iota
	// KindIndexBuild: the embedding / index-construction capability failed.
	KindIndexBuild
	// KindModelInvocation: the chat completion capability failed, either on
	// condensation or on the final answer.
	KindModelInvocation
)

func (k Kind) String() string {
	switch k {
	case KindIngestion:
		return "ingestion"
	case KindIndexBuild:
		return "index_build"
	case KindModelInvocation:
		return "model_invocation"
	default:
		return "unknown"
	}
}

// ClientCaused reports whether the caller, not a backing service, is at fault.
func (k Kind) ClientCaused() bool {
	return k == KindIngestion
}

// AppError carries a kind, a user-safe message and the underlying cause.
// The cause is for logs only and never leaks into the HTTP response.
type AppError struct {
	Kind    Kind
	Message string
	Cause   error
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

func New(kind Kind, message string, cause error) *AppError {
	return &AppError{Kind: kind, Message: message, Cause: cause}
}

func Ingestion(message string, cause error) *AppError {
	return New(KindIngestion, message, cause)
}

func IndexBuild(message string, cause error) *AppError {
	return New(KindIndexBuild, message, cause)
}

func ModelInvocation(message string, cause error) *AppError {
	return New(KindModelInvocation, message, cause)
}

// As extracts an AppError from an error chain.
func As(err error) (*AppError, bool) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}
