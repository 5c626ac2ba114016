// AngelaMos | 2026
// errors.go

package core

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	ErrNotFound              = errors.New("resource not found")
	ErrDuplicateKey          = errors.New("duplicate key")
	ErrForbidden             = errors.New("forbidden")
	ErrUnauthorized          = errors.New("unauthorized")
	ErrInvalidInput          = errors.New("invalid input")
	ErrTokenExpired          = errors.New("token expired")
	ErrTokenInvalid          = errors.New("token invalid")
	ErrTokenRevoked          = errors.New("token revoked")
	ErrOperationNotPermitted = errors.New("operation not permitted")
	ErrSendFailed            = errors.New("mail send failed")
	ErrRateLimited           = errors.New("rate limited")
)

type AppError struct {
	Err        error  `json:"-"`
	Message    string `json:"message"`
	StatusCode int    `json:"-"`
	Code       string `json:"code"`
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func NewAppError(err error, message string, statusCode int, code string) *AppError {
	return &AppError{
		Err:        err,
		Message:    message,
		StatusCode: statusCode,
		Code:       code,
	}
}

// NotPermitted wraps ErrOperationNotPermitted with a caller-facing reason.
// The reason survives errors.As so handlers can surface it verbatim.
func NotPermitted(reason string) error {
	return &AppError{
		Err:        ErrOperationNotPermitted,
		Message:    reason,
		StatusCode: http.StatusConflict,
		Code:       "OPERATION_NOT_PERMITTED",
	}
}

// NotFoundf wraps ErrNotFound with a caller-facing reason.
func NotFoundf(format string, args ...any) error {
	return &AppError{
		Err:        ErrNotFound,
		Message:    fmt.Sprintf(format, args...),
		StatusCode: http.StatusNotFound,
		Code:       "NOT_FOUND",
	}
}

func NotFoundError(resource string) *AppError {
	return NewAppError(
		ErrNotFound,
		fmt.Sprintf("%s not found", resource),
		http.StatusNotFound,
		"NOT_FOUND",
	)
}

func DuplicateError(field string) *AppError {
	return NewAppError(
		ErrDuplicateKey,
		fmt.Sprintf("%s already exists", field),
		http.StatusConflict,
		"DUPLICATE",
	)
}

func UnauthorizedError(message string) *AppError {
	if message == "" {
		message = "unauthorized"
	}
	return NewAppError(
		ErrUnauthorized,
		message,
		http.StatusUnauthorized,
		"UNAUTHORIZED",
	)
}

func ForbiddenError(message string) *AppError {
	if message == "" {
		message = "forbidden"
	}
	return NewAppError(ErrForbidden, message, http.StatusForbidden, "FORBIDDEN")
}

func ValidationError(message string) *AppError {
	return NewAppError(
		ErrInvalidInput,
		message,
		http.StatusBadRequest,
		"VALIDATION_ERROR",
	)
}

func SendError(err error) *AppError {
	switch {
	case err == nil:
		err = ErrSendFailed
	case !errors.Is(err, ErrSendFailed):
		err = fmt.Errorf("%w: %w", ErrSendFailed, err)
	}
	return NewAppError(
		err,
		"failed to deliver email",
		http.StatusBadGateway,
		"MAIL_SEND_FAILED",
	)
}

func TokenExpiredError() *AppError {
	return NewAppError(
		ErrTokenExpired,
		"token has expired",
		http.StatusUnauthorized,
		"TOKEN_EXPIRED",
	)
}

func TokenInvalidError() *AppError {
	return NewAppError(
		ErrTokenInvalid,
		"token is invalid",
		http.StatusUnauthorized,
		"TOKEN_INVALID",
	)
}

func TokenRevokedError() *AppError {
	return NewAppError(
		ErrTokenRevoked,
		"token has been revoked",
		http.StatusUnauthorized,
		"TOKEN_REVOKED",
	)
}

func RateLimitedError(retryAfterSecs int) *AppError {
	return NewAppError(
		ErrRateLimited,
		fmt.Sprintf("Rate limit exceeded. Retry after %d seconds.", retryAfterSecs),
		http.StatusTooManyRequests,
		"RATE_LIMITED",
	)
}
