package onoffice

import "fmt"

// ConnectionError means the CRM could not be reached at the transport
// level. The caller decides whether to retry; the client never does.
type ConnectionError struct {
	Err error
}

func (e *ConnectionError) Error() string {
	return fmt.Sprintf("onoffice: connection failed: %v", e.Err)
}

func (e *ConnectionError) Unwrap() error { return e.Err }

// ProviderError is a structured error status returned by the CRM,
// either at the transport level, in the top-level status envelope, or
// in the nested per-action status envelope.
type ProviderError struct {
	Code    int
	Message string
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("onoffice: provider error %d: %s", e.Code, e.Message)
}
