package proxy

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
)

// Kind classifies where a forward failure originated.
type Kind int

const (
	KindUnknown Kind = iota
	// KindNetwork: the backend could not be reached at all.
	KindNetwork
	// KindTimeout: the outbound call exceeded its deadline.
	KindTimeout
	// KindBackend: the backend answered non-2xx with a structured error body.
	KindBackend
	// KindMalformed: the backend answered, but the body was not usable JSON.
	KindMalformed
)

// Error is the structured failure raised by a Backend forward. It always
// carries an HTTP status and a message; Code is set only when the backend
// supplied a machine-readable code in its error body.
type Error struct {
	Kind    Kind
	Status  int
	Message string
	Code    string
	cause   error
}

func (e *Error) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("backend error %d (%s): %s", e.Status, e.Code, e.Message)
	}
	return fmt.Sprintf("backend error %d: %s", e.Status, e.Message)
}

func (e *Error) Unwrap() error { return e.cause }

// Descriptor is the normalized {status, message, code} triple handed to the
// route layer. Code == "" means the backend supplied none and the field must
// be omitted from any outward JSON.
type Descriptor struct {
	Status  int
	Message string
	Code    string
}

const unknownMessage = "Unknown error"

// Normalize converts any failure from an outbound call into a well-formed
// Descriptor. It never panics, whatever it is given.
func Normalize(err error) Descriptor {
	if err == nil {
		return Descriptor{Status: http.StatusInternalServerError, Message: unknownMessage}
	}

	var be *Error
	if errors.As(err, &be) {
		d := Descriptor{Status: be.Status, Message: be.Message, Code: be.Code}
		if d.Status == 0 {
			d.Status = defaultStatus(be.Kind)
		}
		if d.Message == "" {
			d.Message = unknownMessage
		}
		return d
	}

	// Raw transport errors that never went through the forwarder.
	if errors.Is(err, context.DeadlineExceeded) {
		return Descriptor{Status: http.StatusGatewayTimeout, Message: "backend request timed out"}
	}
	var ne net.Error
	if errors.As(err, &ne) {
		if ne.Timeout() {
			return Descriptor{Status: http.StatusGatewayTimeout, Message: "backend request timed out"}
		}
		return Descriptor{Status: http.StatusBadGateway, Message: "backend unreachable"}
	}

	msg := err.Error()
	if msg == "" {
		msg = unknownMessage
	}
	return Descriptor{Status: http.StatusInternalServerError, Message: msg}
}

func defaultStatus(k Kind) int {
	switch k {
	case KindNetwork, KindMalformed:
		return http.StatusBadGateway
	case KindTimeout:
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}
