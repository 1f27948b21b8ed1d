package common

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

//
// Base Types
//

type ErrorCode string

type StandardError interface {
	error
	HasCode(codes ...ErrorCode) bool
	CodeChain() string
	DeepestMessage() string
	GetCode() ErrorCode
	GetCause() error
	Base() *BaseError
}

type BaseError struct {
	Code    ErrorCode              `json:"code"`
	Message string                 `json:"message"`
	Cause   error                  `json:"cause,omitempty"`
	Details map[string]interface{} `json:"details,omitempty"`
}

var _ StandardError = (*BaseError)(nil)

func (e *BaseError) Unwrap() error {
	return e.Cause
}

func (e *BaseError) Error() string {
	var detailsStr string
	if len(e.Details) > 0 {
		parts := make([]string, 0, len(e.Details))
		for k, v := range e.Details {
			parts = append(parts, fmt.Sprintf("%s=%v", k, v))
		}
		sort.Strings(parts)
		detailsStr = " (" + strings.Join(parts, " ") + ")"
	}

	if e.Cause == nil {
		return fmt.Sprintf("%s: %s%s", e.Code, e.Message, detailsStr)
	}

	return fmt.Sprintf("%s: %s%s -> %s", e.Code, e.Message, detailsStr, e.Cause.Error())
}

func (e *BaseError) Base() *BaseError {
	return e
}

func (e *BaseError) GetCode() ErrorCode {
	return e.Code
}

func (e *BaseError) GetCause() error {
	return e.Cause
}

func (e *BaseError) CodeChain() string {
	if e.Cause != nil {
		if be, ok := e.Cause.(StandardError); ok {
			return fmt.Sprintf("%s <- %s", e.Code, be.CodeChain())
		}
	}

	return string(e.Code)
}

func (e *BaseError) DeepestMessage() string {
	if e.Cause != nil {
		if be, ok := e.Cause.(StandardError); ok {
			return be.DeepestMessage()
		}
		return e.Cause.Error()
	}

	return e.Message
}

func (e *BaseError) HasCode(codes ...ErrorCode) bool {
	for _, code := range codes {
		if e.Code == code {
			return true
		}
	}

	if e.Cause != nil {
		if be, ok := e.Cause.(StandardError); ok {
			return be.HasCode(codes...)
		}
	}

	return false
}

// HasErrorCode reports whether err, or any StandardError in its cause chain,
// carries one of the given codes.
func HasErrorCode(err error, codes ...ErrorCode) bool {
	if err == nil {
		return false
	}
	var se StandardError
	if errors.As(err, &se) {
		return se.HasCode(codes...)
	}
	return false
}

func ErrorSummary(err error) string {
	if err == nil {
		return ""
	}
	if se, ok := err.(StandardError); ok {
		return fmt.Sprintf("%s: %s", se.CodeChain(), se.DeepestMessage())
	}
	return err.Error()
}

//
// Configuration
//

const ErrCodeInvalidConfig ErrorCode = "ErrInvalidConfig"

type ErrInvalidConfig struct{ BaseError }

var NewErrInvalidConfig = func(message string) error {
	return &ErrInvalidConfig{
		BaseError{
			Code:    ErrCodeInvalidConfig,
			Message: message,
		},
	}
}

const ErrCodeInvalidConnectorDriver ErrorCode = "ErrInvalidConnectorDriver"

type ErrInvalidConnectorDriver struct{ BaseError }

var NewErrInvalidConnectorDriver = func(driver string) error {
	return &ErrInvalidConnectorDriver{
		BaseError{
			Code:    ErrCodeInvalidConnectorDriver,
			Message: "invalid history connector driver",
			Details: map[string]interface{}{
				"driver": driver,
			},
		},
	}
}

const ErrCodeRecordNotFound ErrorCode = "ErrRecordNotFound"

type ErrRecordNotFound struct{ BaseError }

var NewErrRecordNotFound = func(key, driver string) error {
	return &ErrRecordNotFound{
		BaseError{
			Code:    ErrCodeRecordNotFound,
			Message: "record not found",
			Details: map[string]interface{}{
				"key":    key,
				"driver": driver,
			},
		},
	}
}

//
// Fixtures
//

const ErrCodeFixtureInvalid ErrorCode = "ErrFixtureInvalid"

type ErrFixtureInvalid struct{ BaseError }

var NewErrFixtureInvalid = func(network, message string, cause error) error {
	return &ErrFixtureInvalid{
		BaseError{
			Code:    ErrCodeFixtureInvalid,
			Message: message,
			Cause:   cause,
			Details: map[string]interface{}{
				"network": network,
			},
		},
	}
}

const ErrCodeNetworkFixturesNotFound ErrorCode = "ErrNetworkFixturesNotFound"

type ErrNetworkFixturesNotFound struct{ BaseError }

var NewErrNetworkFixturesNotFound = func(network string) error {
	return &ErrNetworkFixturesNotFound{
		BaseError{
			Code:    ErrCodeNetworkFixturesNotFound,
			Message: "no fixtures loaded for network",
			Details: map[string]interface{}{
				"network": network,
			},
		},
	}
}

//
// Providers
//

const ErrCodeVendorNotFound ErrorCode = "ErrVendorNotFound"

type ErrVendorNotFound struct{ BaseError }

var NewErrVendorNotFound = func(vendor, providerId string, supported []string) error {
	return &ErrVendorNotFound{
		BaseError{
			Code:    ErrCodeVendorNotFound,
			Message: "vendor not found for provider",
			Details: map[string]interface{}{
				"vendor":    vendor,
				"provider":  providerId,
				"supported": supported,
			},
		},
	}
}

const ErrCodeUnsupportedOperation ErrorCode = "ErrUnsupportedOperation"

// ErrUnsupportedOperation is the one error kind the harness treats as an
// expected answer: a backend declaring it cannot serve an operation at all.
type ErrUnsupportedOperation struct {
	BaseError
	Operation string `json:"operation"`
}

var NewErrUnsupportedOperation = func(operation string, provider string) error {
	return &ErrUnsupportedOperation{
		BaseError: BaseError{
			Code:    ErrCodeUnsupportedOperation,
			Message: "unsupported operation",
			Details: map[string]interface{}{
				"operation": operation,
				"provider":  provider,
			},
		},
		Operation: operation,
	}
}

// AsUnsupportedOperation extracts the unsupported-operation error from err's
// chain, if any.
func AsUnsupportedOperation(err error) (*ErrUnsupportedOperation, bool) {
	var uoe *ErrUnsupportedOperation
	if errors.As(err, &uoe) {
		return uoe, true
	}
	return nil, false
}

const ErrCodeEndpointTransportFailure ErrorCode = "ErrEndpointTransportFailure"

type ErrEndpointTransportFailure struct{ BaseError }

var NewErrEndpointTransportFailure = func(endpoint string, cause error) error {
	return &ErrEndpointTransportFailure{
		BaseError{
			Code:    ErrCodeEndpointTransportFailure,
			Message: "failure when sending request to remote endpoint",
			Cause:   cause,
			Details: map[string]interface{}{
				"endpoint": endpoint,
			},
		},
	}
}

const ErrCodeEndpointRequestTimeout ErrorCode = "ErrEndpointRequestTimeout"

type ErrEndpointRequestTimeout struct{ BaseError }

var NewErrEndpointRequestTimeout = func(cause error) error {
	return &ErrEndpointRequestTimeout{
		BaseError{
			Code:    ErrCodeEndpointRequestTimeout,
			Message: "remote endpoint request timeout",
			Cause:   cause,
		},
	}
}

const ErrCodeEndpointCapacityExceeded ErrorCode = "ErrEndpointCapacityExceeded"

type ErrEndpointCapacityExceeded struct{ BaseError }

var NewErrEndpointCapacityExceeded = func(cause error) error {
	return &ErrEndpointCapacityExceeded{
		BaseError{
			Code:    ErrCodeEndpointCapacityExceeded,
			Message: "remote endpoint capacity exceeded",
			Cause:   cause,
		},
	}
}

const ErrCodeEndpointServerSideException ErrorCode = "ErrEndpointServerSideException"

type ErrEndpointServerSideException struct{ BaseError }

var NewErrEndpointServerSideException = func(cause error, details map[string]interface{}) error {
	return &ErrEndpointServerSideException{
		BaseError{
			Code:    ErrCodeEndpointServerSideException,
			Message: "an internal error on remote endpoint",
			Cause:   cause,
			Details: details,
		},
	}
}

const ErrCodeEndpointUnauthorized ErrorCode = "ErrEndpointUnauthorized"

type ErrEndpointUnauthorized struct{ BaseError }

var NewErrEndpointUnauthorized = func(cause error) error {
	return &ErrEndpointUnauthorized{
		BaseError{
			Code:    ErrCodeEndpointUnauthorized,
			Message: "remote endpoint responded with Unauthorized",
			Cause:   cause,
		},
	}
}

const ErrCodeJsonRpcException ErrorCode = "ErrJsonRpcException"

type ErrJsonRpcException struct {
	BaseError
	RpcCode int `json:"rpcCode"`
}

var NewErrJsonRpcException = func(rpcCode int, message string, data interface{}) error {
	var details map[string]interface{}
	if data != nil {
		details = map[string]interface{}{
			"data": data,
		}
	}
	return &ErrJsonRpcException{
		BaseError: BaseError{
			Code:    ErrCodeJsonRpcException,
			Message: message,
			Details: details,
		},
		RpcCode: rpcCode,
	}
}

const ErrCodeMalformedResponse ErrorCode = "ErrMalformedResponse"

type ErrMalformedResponse struct{ BaseError }

var NewErrMalformedResponse = func(method string, cause error) error {
	return &ErrMalformedResponse{
		BaseError{
			Code:    ErrCodeMalformedResponse,
			Message: "could not decode response from remote endpoint",
			Cause:   cause,
			Details: map[string]interface{}{
				"method": method,
			},
		},
	}
}

//
// Conformance
//

const ErrCodeFieldMismatch ErrorCode = "ErrFieldMismatch"

// ErrFieldMismatch names the first field whose live value differs from the
// golden value.
type ErrFieldMismatch struct {
	BaseError
	Field    string `json:"field"`
	Expected string `json:"expected"`
	Actual   string `json:"actual"`
}

var NewErrFieldMismatch = func(field string, expected, actual interface{}) error {
	exp, act := RenderValue(expected), RenderValue(actual)
	return &ErrFieldMismatch{
		BaseError: BaseError{
			Code:    ErrCodeFieldMismatch,
			Message: fmt.Sprintf("%s: expected %s, got %s", field, exp, act),
		},
		Field:    field,
		Expected: exp,
		Actual:   act,
	}
}

const ErrCodeShapeInvariant ErrorCode = "ErrShapeInvariant"

type ErrShapeInvariant struct {
	BaseError
	Field string `json:"field"`
}

var NewErrShapeInvariant = func(field, message string) error {
	return &ErrShapeInvariant{
		BaseError: BaseError{
			Code:    ErrCodeShapeInvariant,
			Message: fmt.Sprintf("%s: %s", field, message),
		},
		Field: field,
	}
}

const ErrCodeUnexpectedSuccess ErrorCode = "ErrUnexpectedSuccess"

type ErrUnexpectedSuccess struct{ BaseError }

var NewErrUnexpectedSuccess = func(operation string) error {
	return &ErrUnexpectedSuccess{
		BaseError{
			Code:    ErrCodeUnexpectedSuccess,
			Message: "operation listed as unsupported returned a result",
			Details: map[string]interface{}{
				"operation": operation,
			},
		},
	}
}

const ErrCodeWrongErrorKind ErrorCode = "ErrWrongErrorKind"

type ErrWrongErrorKind struct{ BaseError }

var NewErrWrongErrorKind = func(operation string, cause error) error {
	return &ErrWrongErrorKind{
		BaseError{
			Code:    ErrCodeWrongErrorKind,
			Message: "expected unsupported-operation error",
			Cause:   cause,
			Details: map[string]interface{}{
				"operation": operation,
			},
		},
	}
}

//
// Runner
//

const ErrCodeFailsafeConfiguration ErrorCode = "ErrFailsafeConfiguration"

type ErrFailsafeConfiguration struct{ BaseError }

var NewErrFailsafeConfiguration = func(cause error, details map[string]interface{}) error {
	return &ErrFailsafeConfiguration{
		BaseError{
			Code:    ErrCodeFailsafeConfiguration,
			Message: "failed to configure failsafe policy",
			Cause:   cause,
			Details: details,
		},
	}
}

const ErrCodeFailsafeTimeoutExceeded ErrorCode = "ErrFailsafeTimeoutExceeded"

type ErrFailsafeTimeoutExceeded struct{ BaseError }

var NewErrFailsafeTimeoutExceeded = func(cause error, timeout string) error {
	return &ErrFailsafeTimeoutExceeded{
		BaseError{
			Code:    ErrCodeFailsafeTimeoutExceeded,
			Message: "failsafe timeout policy exceeded",
			Cause:   cause,
			Details: map[string]interface{}{
				"timeout": timeout,
			},
		},
	}
}

const ErrCodeFailsafeRetryExceeded ErrorCode = "ErrFailsafeRetryExceeded"

type ErrFailsafeRetryExceeded struct{ BaseError }

var NewErrFailsafeRetryExceeded = func(cause error, attempts int) error {
	return &ErrFailsafeRetryExceeded{
		BaseError{
			Code:    ErrCodeFailsafeRetryExceeded,
			Message: "failsafe retry policy exceeded",
			Cause:   cause,
			Details: map[string]interface{}{
				"attempts": attempts,
			},
		},
	}
}

//
// Run lifecycle
//

const ErrCodeRunNotActive ErrorCode = "ErrRunNotActive"

type ErrRunNotActive struct{ BaseError }

var NewErrRunNotActive = func(action string) error {
	return &ErrRunNotActive{
		BaseError{
			Code:    ErrCodeRunNotActive,
			Message: "run statistics are not between start and end",
			Details: map[string]interface{}{
				"action": action,
			},
		},
	}
}

const ErrCodeRunAlreadyActive ErrorCode = "ErrRunAlreadyActive"

type ErrRunAlreadyActive struct{ BaseError }

var NewErrRunAlreadyActive = func(name string) error {
	return &ErrRunAlreadyActive{
		BaseError{
			Code:    ErrCodeRunAlreadyActive,
			Message: "a run is already in progress on this collector",
			Details: map[string]interface{}{
				"run": name,
			},
		},
	}
}
