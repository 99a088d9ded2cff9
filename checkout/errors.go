package checkout

import (
	"errors"
	"fmt"
)

// ErrUnsupportedPaymentMethod is returned when the merchant account has no
// configuration for the requested payment method.
var ErrUnsupportedPaymentMethod = errors.New("unsupported payment method")

// NetworkError is a failure before any HTTP status was observed: the request
// could not be sent, or the response could not be read.
type NetworkError struct {
	URL string
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("sending request to %s: %v", e.URL, e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

// APIError is a structured non-2xx response from the processor.
type APIError struct {
	Status       uint16  `json:"status"`
	ErrorCode    string  `json:"errorCode"`
	Message      string  `json:"message"`
	ErrorType    string  `json:"errorType"`
	PSPReference *string `json:"pspReference,omitempty"`
}

func (e *APIError) Error() string {
	if e.PSPReference != nil {
		return fmt.Sprintf("api error status=%d code=%s type=%s psp=%s: %s", e.Status, e.ErrorCode, e.ErrorType, *e.PSPReference, e.Message)
	}
	return fmt.Sprintf("api error status=%d code=%s type=%s: %s", e.Status, e.ErrorCode, e.ErrorType, e.Message)
}

// SerializationError is a response body, on the success or error path, that
// does not match the expected schema. Body is the raw text received.
type SerializationError struct {
	Status int
	Body   string
	Err    error
}

func (e *SerializationError) Error() string {
	return fmt.Sprintf("could not decode response (status=%d): %v: %s", e.Status, e.Err, e.Body)
}

func (e *SerializationError) Unwrap() error { return e.Err }

// Retryable reports whether the call that produced err may be sent again.
// Only transport failures qualify: a decode failure or API error would be
// reproduced by the same request.
func Retryable(err error) bool {
	var ne *NetworkError
	return errors.As(err, &ne)
}
