package common

import (
	"errors"
	"fmt"

	"github.com/rotisserie/eris"
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

// Failure classes. Only ErrProcessing and ErrPersistence ever reach callers of
// the pipeline and the sinks; model failures are recovered inside the pipeline.
var (
	ErrInvalidInput = eris.New("invalid input")
	ErrProcessing   = eris.New("processing failed")
	ErrPersistence  = eris.New("persistence failed")
	ErrModel        = eris.New("model call failed")
)

// Error constructors
func NewAppError(code, message string, cause error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

// ToStatus maps a failure class onto a gRPC status for transport layers.
func ToStatus(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, ErrInvalidInput):
		return status.Error(codes.InvalidArgument, err.Error())
	case errors.Is(err, ErrPersistence):
		return status.Error(codes.Unavailable, err.Error())
	default:
		return status.Error(codes.Internal, err.Error())
	}
}
