package gateway

import "encoding/json"

type (
	// Envelope is the outward JSON shape for the wrapped route family.
	// Exactly one of Data/Error is set.
	Envelope struct {
		Success bool            `json:"success"`
		Data    json.RawMessage `json:"data,omitempty"`
		Error   *EnvelopeError  `json:"error,omitempty"`
	}

	// EnvelopeError carries the caller-visible error. Code is omitted
	// entirely when the backend supplied none.
	EnvelopeError struct {
		Message string `json:"message"`
		Code    string `json:"code,omitempty"`
	}

	// PassthroughError is the failure shape of the PR route family, which
	// echoes backend payloads raw instead of wrapping them.
	PassthroughError struct {
		Error string `json:"error"`
		Code  string `json:"code,omitempty"`
	}
)

// OK wraps a backend payload in a success envelope.
func OK(data json.RawMessage) Envelope {
	return Envelope{Success: true, Data: data}
}

// Fail wraps a message/code pair in a failure envelope.
func Fail(message, code string) Envelope {
	return Envelope{Success: false, Error: &EnvelopeError{Message: message, Code: code}}
}
