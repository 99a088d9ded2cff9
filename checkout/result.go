package checkout

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/alovak/cardflow-checkout/checkout/models"
	"github.com/alovak/cardflow-checkout/internal/exactjson"
)

// DecodeResult turns a status and body received from the processor into
// either a decoded success body, an *APIError, or a *SerializationError.
// The 2xx range is the only branch point.
func DecodeResult(status int, body string, decode func([]byte) error) error {
	if status < 200 || status >= 300 {
		apiErr, err := parseAPIError(body)
		if err != nil {
			return &SerializationError{Status: status, Body: body, Err: err}
		}
		return apiErr
	}

	if err := decode([]byte(body)); err != nil {
		return &SerializationError{Status: status, Body: body, Err: err}
	}
	return nil
}

// DecodePaymentResult decodes the result of a /payments or /payments/details call.
func DecodePaymentResult(status int, body string) (models.Response, error) {
	var resp models.Response
	err := DecodeResult(status, body, func(data []byte) error {
		var err error
		resp, err = models.DecodeResponse(data)
		return err
	})
	if err != nil {
		return nil, err
	}
	return resp, nil
}

func parseAPIError(body string) (*APIError, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal([]byte(body), &fields); err != nil {
		return nil, fmt.Errorf("parsing api error: %w", err)
	}
	if fields == nil {
		return nil, errors.New("parsing api error: body is null")
	}
	for _, name := range []string{"status", "errorCode", "message", "errorType"} {
		if raw, ok := fields[name]; !ok || string(raw) == "null" {
			return nil, fmt.Errorf("parsing api error: field %q is missing", name)
		}
	}

	apiErr := &APIError{}
	if err := exactjson.Unmarshal([]byte(body), apiErr); err != nil {
		return nil, fmt.Errorf("parsing api error: %w", err)
	}
	return apiErr, nil
}
