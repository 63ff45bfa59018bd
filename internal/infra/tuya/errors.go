package tuya

import "fmt"

// TransportError wraps a failure to reach the service or to read its
// reply off the wire.
type TransportError struct {
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("tuya: transport: %v", e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// EncodingError wraps a failure to convert a response body from the
// service's charset into text.
type EncodingError struct {
	Err error
}

func (e *EncodingError) Error() string {
	return fmt.Sprintf("tuya: decoding response text: %v", e.Err)
}

func (e *EncodingError) Unwrap() error { return e.Err }

// DecodeError wraps a response body that did not match any shape the
// service is known to produce.
type DecodeError struct {
	Err error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("tuya: unexpected response: %v", e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

// APIError is a failure reported by the service itself, carrying its
// message or result code verbatim.
type APIError struct {
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("tuya: service error: %s", e.Message)
}

// preview truncates a response body for inclusion in error messages.
func preview(body []byte) string {
	const max = 120
	if len(body) <= max {
		return string(body)
	}
	return string(body[:max]) + "..."
}
