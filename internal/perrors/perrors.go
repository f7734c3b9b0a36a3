package perrors

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"runtime"
)

type ErrCode struct {
	Code   string `json:"code"`
	Status int    `json:"status"`
}

var (
	ErrCodeInvalidRequest        ErrCode = ErrCode{"invalid_request", http.StatusBadRequest}
	ErrCodeInternalServer                = ErrCode{"internal_server_error", http.StatusInternalServerError}
	ErrCodeNotFound                      = ErrCode{"not_found", http.StatusNotFound}
	ErrCodeConflict                      = ErrCode{"conflict", http.StatusConflict}
	ErrCodeUnauthorized                  = ErrCode{"unauthorized", http.StatusForbidden}
	ErrCodeAuthenticationExpired         = ErrCode{"authentication_expired", http.StatusUnauthorized}
	ErrCodeInvalidCredentials            = ErrCode{"invalid_credentials", http.StatusUnauthorized}
	ErrCodeValidationFailed              = ErrCode{"validation_failed", http.StatusBadRequest}
	ErrCodeLimitReached                  = ErrCode{"limit_reached", http.StatusUnprocessableEntity}
	ErrCodeRegistrationFailed            = ErrCode{"registration_failed", http.StatusBadRequest}
	ErrCodeNetworkFailure                = ErrCode{"network_failure", http.StatusServiceUnavailable}
	ErrCodeMethodNotAllowed              = ErrCode{"method_not_allowed", http.StatusMethodNotAllowed}
	ErrCodeNotConfirmed                  = ErrCode{"not_confirmed", 0}
	ErrCodeSubmissionInFlight            = ErrCode{"submission_in_flight", 0}
)

type Err struct {
	Message    string                   `json:"-"`
	Err        string                   `json:"error"`
	Code       ErrCode                  `json:"code"`
	Stacktrace []string                 `json:"-"`
	Args       []map[string]interface{} `json:"args"`
	Cause      error                    `json:"-"`
}

func (e Err) Error() string {
	return e.Err
}

func (e Err) Unwrap() error {
	return e.Cause
}

func (e Err) HttpStatus() int {
	return e.Code.Status
}

func (e Err) Print(ctx context.Context) {
	args := []any{slog.Any("error", e.Error()), slog.String("code", e.Code.Code)}
	if len(e.Args) > 0 {
		for k, v := range e.Args[0] {
			args = append(args, slog.Any(k, v))
		}
	}
	args = append(args, slog.Any("stacktrace", e.Stacktrace))
	slog.ErrorContext(ctx, e.Message, args...)
}

func New(code ErrCode, msg string, err error, args ...map[string]interface{}) error {
	pc := make([]uintptr, 20)
	count := runtime.Callers(1, pc)
	frames := runtime.CallersFrames(pc[:count])

	var stacktrace []string
	for frame, hasMore := frames.Next(); hasMore; frame, hasMore = frames.Next() {
		stacktrace = append(stacktrace, fmt.Sprintf("%s:%d", frame.File, frame.Line))
	}

	errString := "error missing"
	if err != nil {
		errString = err.Error()
	}

	return Err{
		Code:       code,
		Message:    msg,
		Err:        errString,
		Stacktrace: stacktrace,
		Args:       args,
		Cause:      err,
	}
}

func NewErrInvalidRequest(msg string, err error, args ...map[string]interface{}) error {
	return New(ErrCodeInvalidRequest, msg, err, args...)
}

func NewErrInternalServerError(msg string, err error, args ...map[string]interface{}) error {
	return New(ErrCodeInternalServer, msg, err, args...)
}

// Denied is the error returned when the authorization policy rejects an action.
func Denied(action, kind string) error {
	msg := fmt.Sprintf("You are not authorized to %s %s", action, kind)
	return New(ErrCodeUnauthorized, msg, errors.New(msg), map[string]interface{}{
		"action": action,
		"kind":   kind,
	})
}

// FromStatus maps a non-2xx API response onto the error taxonomy. The server
// message is kept verbatim when present, otherwise fallback is used.
// authenticated tells whether the request carried a session token, which
// decides between an expired session and rejected credentials on 401.
func FromStatus(status int, serverMessage, fallback string, authenticated bool) error {
	text := serverMessage
	if text == "" {
		text = fallback
	}

	var code ErrCode
	switch {
	case status == http.StatusBadRequest || status == http.StatusUnprocessableEntity:
		code = ErrCodeValidationFailed
	case status == http.StatusUnauthorized && authenticated:
		code = ErrCodeAuthenticationExpired
	case status == http.StatusUnauthorized:
		code = ErrCodeInvalidCredentials
	case status == http.StatusForbidden:
		code = ErrCodeUnauthorized
	case status == http.StatusNotFound:
		code = ErrCodeNotFound
	case status == http.StatusConflict:
		code = ErrCodeConflict
	case status == http.StatusMethodNotAllowed:
		code = ErrCodeMethodNotAllowed
	default:
		code = ErrCodeInternalServer
	}

	return New(code, fallback, errors.New(text), map[string]interface{}{"status": status})
}

// CodeOf returns the code of the outermost Err in the chain.
func CodeOf(err error) (ErrCode, bool) {
	var perr Err
	if errors.As(err, &perr) {
		return perr.Code, true
	}
	return ErrCode{}, false
}

// Is reports whether any Err in the chain carries code.
func Is(err error, code ErrCode) bool {
	for err != nil {
		var perr Err
		if !errors.As(err, &perr) {
			return false
		}
		if perr.Code.Code == code.Code {
			return true
		}
		err = perr.Cause
	}
	return false
}
