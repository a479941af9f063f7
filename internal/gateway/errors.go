package gateway

import "fmt"

// ErrorKind discriminates the gateway failure taxonomy. Expected failure
// paths flow through *GatewayError values rather than ad-hoc errors so the
// façade can map each kind to a caller-visible code.
type ErrorKind int

const (
	// KindInvalidIdentifier: a user/task identifier failed UUID validation.
	// The only kind that crosses the façade as a Go error, before any I/O.
	KindInvalidIdentifier ErrorKind = iota

	// KindConnectionFailed: dial/DNS failure, no HTTP response obtained.
	KindConnectionFailed

	// KindTimeout: deadline exceeded before a response arrived.
	KindTimeout

	// KindUpstreamHTTP: the round trip completed with an error status.
	KindUpstreamHTTP

	// KindMalformedResponse: upstream returned something the gateway
	// cannot interpret, or a call was misconfigured (missing template
	// parameter).
	KindMalformedResponse
)

func (k ErrorKind) String() string {
	switch k {
	case KindInvalidIdentifier:
		return "invalid_identifier"
	case KindConnectionFailed:
		return "connection_failed"
	case KindTimeout:
		return "timeout"
	case KindUpstreamHTTP:
		return "upstream_http_error"
	case KindMalformedResponse:
		return "malformed_response"
	default:
		return "unknown"
	}
}

// GatewayError is the typed failure surfaced by the gateway pipeline.
type GatewayError struct {
	Kind    ErrorKind
	Message string

	// Retryable records transport-level classification. It stays set on
	// errors surfaced after retry exhaustion so callers can decide whether
	// a "try again later" message is appropriate.
	Retryable bool

	// Field/Value are set for KindInvalidIdentifier.
	Field string
	Value string

	// StatusCode/BusinessCode are set for KindUpstreamHTTP. BusinessCode
	// is the upstream body's own code when it carries one, 0 otherwise.
	StatusCode   int
	BusinessCode int

	// Err is the underlying cause, if any.
	Err error
}

func (e *GatewayError) Error() string {
	switch e.Kind {
	case KindInvalidIdentifier:
		return fmt.Sprintf("invalid identifier %s=%q", e.Field, e.Value)
	case KindUpstreamHTTP:
		return fmt.Sprintf("upstream returned %d: %s", e.StatusCode, e.Message)
	default:
		if e.Err != nil {
			return fmt.Sprintf("%s: %v", e.Kind, e.Err)
		}
		return fmt.Sprintf("%s: %s", e.Kind, e.Message)
	}
}

func (e *GatewayError) Unwrap() error { return e.Err }

func invalidIdentifier(field, value string) *GatewayError {
	if value == "" {
		value = "<empty>"
	}
	return &GatewayError{Kind: KindInvalidIdentifier, Field: field, Value: value}
}

func connectionFailed(err error) *GatewayError {
	return &GatewayError{Kind: KindConnectionFailed, Retryable: true, Err: err}
}

func timeoutError(err error) *GatewayError {
	return &GatewayError{Kind: KindTimeout, Retryable: true, Err: err}
}

func upstreamHTTP(status, businessCode int, message string) *GatewayError {
	return &GatewayError{
		Kind:         KindUpstreamHTTP,
		StatusCode:   status,
		BusinessCode: businessCode,
		Message:      message,
	}
}

func malformedResponse(message string, err error) *GatewayError {
	return &GatewayError{Kind: KindMalformedResponse, Message: message, Err: err}
}
