package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies an error by who caused it and how the caller should react.
type Kind string

const (
	KindValidation     Kind = "validation"
	KindNotFound       Kind = "not_found"
	KindCapacity       Kind = "capacity"
	KindAuthentication Kind = "authentication"
	KindConflict       Kind = "conflict"
	KindUpstream       Kind = "upstream"
	KindConfiguration  Kind = "configuration"
	KindPartialFailure Kind = "partial_failure"
	KindInternal       Kind = "internal"
)

// Response codes returned to API clients.
const (
	CodeValidation           = "VALIDATION_ERROR"
	CodeNotFound             = "NOT_FOUND"
	CodeNoSeats              = "NO_SEATS_AVAILABLE"
	CodeSignatureMismatch    = "SIGNATURE_MISMATCH"
	CodeInvalidTransition    = "INVALID_STATUS_TRANSITION"
	CodeGatewayError         = "GATEWAY_ERROR"
	CodeGatewayNotConfigured = "GATEWAY_NOT_CONFIGURED"
	CodeRegistrationNotSaved = "REGISTRATION_NOT_SAVED"
	CodeRefundNotRecorded    = "REFUND_NOT_RECORDED"
	CodeUnavailable          = "SERVICE_UNAVAILABLE"
	CodeInternal             = "INTERNAL_ERROR"
)

// Error is the application error carried from services to handlers.
type Error struct {
	Kind    Kind
	Code    string
	Message string

	// UpstreamCode and UpstreamDescription are set for gateway failures.
	UpstreamCode        string
	UpstreamDescription string

	// Details is echoed to the client, e.g. order and payment ids that
	// support staff need for reconciliation.
	Details map[string]string

	Err error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// WithDetail returns e with key set in Details.
func (e *Error) WithDetail(key, value string) *Error {
	if e.Details == nil {
		e.Details = make(map[string]string)
	}
	e.Details[key] = value
	return e
}

func Validation(format string, args ...any) *Error {
	return &Error{Kind: KindValidation, Code: CodeValidation, Message: fmt.Sprintf(format, args...)}
}

func NotFound(format string, args ...any) *Error {
	return &Error{Kind: KindNotFound, Code: CodeNotFound, Message: fmt.Sprintf(format, args...)}
}

func NoSeats(eventID int64) *Error {
	return &Error{Kind: KindCapacity, Code: CodeNoSeats, Message: fmt.Sprintf("no seats available for event %d", eventID)}
}

func SignatureMismatch() *Error {
	return &Error{Kind: KindAuthentication, Code: CodeSignatureMismatch, Message: "payment signature verification failed"}
}

func InvalidTransition(from, to string) *Error {
	return &Error{
		Kind:    KindConflict,
		Code:    CodeInvalidTransition,
		Message: fmt.Sprintf("registration cannot move from %s to %s", from, to),
	}
}

func Upstream(code, description string, err error) *Error {
	return &Error{
		Kind:                KindUpstream,
		Code:                CodeGatewayError,
		Message:             "payment gateway request failed",
		UpstreamCode:        code,
		UpstreamDescription: description,
		Err:                 err,
	}
}

func Configuration(format string, args ...any) *Error {
	return &Error{Kind: KindConfiguration, Code: CodeGatewayNotConfigured, Message: fmt.Sprintf(format, args...)}
}

func PartialFailure(code, message string, err error) *Error {
	return &Error{Kind: KindPartialFailure, Code: code, Message: message, Err: err}
}

func Unavailable(format string, args ...any) *Error {
	return &Error{Kind: KindInternal, Code: CodeUnavailable, Message: fmt.Sprintf(format, args...)}
}

func Internal(message string, err error) *Error {
	return &Error{Kind: KindInternal, Code: CodeInternal, Message: message, Err: err}
}

// As extracts an *Error from the chain.
func As(err error) (*Error, bool) {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// IsKind reports whether err carries an *Error of the given kind.
func IsKind(err error, kind Kind) bool {
	appErr, ok := As(err)
	return ok && appErr.Kind == kind
}

// HTTPStatus maps an error to the status code the API answers with.
// Errors outside the taxonomy are internal.
func HTTPStatus(err error) int {
	appErr, ok := As(err)
	if !ok {
		return http.StatusInternalServerError
	}

	switch appErr.Kind {
	case KindValidation, KindCapacity, KindAuthentication:
		return http.StatusBadRequest
	case KindNotFound:
		return http.StatusNotFound
	case KindConflict:
		return http.StatusConflict
	case KindUpstream:
		return http.StatusBadGateway
	case KindInternal:
		if appErr.Code == CodeUnavailable {
			return http.StatusServiceUnavailable
		}
		return http.StatusInternalServerError
	default:
		return http.StatusInternalServerError
	}
}
