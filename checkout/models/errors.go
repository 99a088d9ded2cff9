package models

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/alovak/cardflow-checkout/internal/exactjson"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

var errMissingField = errors.New("required field is missing")

// UnknownVariantError is returned when a wire discriminant (resultCode,
// paymentMethodType, action type, eventCode) is outside the vocabulary known to
// this version. The payload may still be well-formed under a newer schema.
type UnknownVariantError struct {
	Field    string
	Tag      string
	Expected []string
}

func (e *UnknownVariantError) Error() string {
	return fmt.Sprintf("unknown %s %q, expected one of: %s", e.Field, e.Tag, strings.Join(e.Expected, ", "))
}

// MalformedFieldError is returned when a recognized variant is missing a
// required field or a field has the wrong shape.
type MalformedFieldError struct {
	Variant string
	Field   string
	Err     error
}

func (e *MalformedFieldError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("malformed %s: %v", e.Variant, e.Err)
	}
	return fmt.Sprintf("malformed %s: field %q: %v", e.Variant, e.Field, e.Err)
}

func (e *MalformedFieldError) Unwrap() error { return e.Err }

// UnknownCodeError is returned when a refusal reason code is not in the table.
type UnknownCodeError struct {
	Code string
}

func (e *UnknownCodeError) Error() string {
	return fmt.Sprintf("unknown refusal reason code %q", e.Code)
}

// ConversionError is returned when a decimal amount cannot be expressed as an
// unsigned 64-bit minor-unit value.
type ConversionError struct {
	Amount string
	Reason string
}

func (e *ConversionError) Error() string {
	return fmt.Sprintf("could not convert %q to minor units: %s", e.Amount, e.Reason)
}

// IsUnknown reports whether err carries an unknown discriminant or code.
func IsUnknown(err error) bool {
	var uv *UnknownVariantError
	var uc *UnknownCodeError
	return errors.As(err, &uv) || errors.As(err, &uc)
}

func unknownVariant[V any](field, tag string, known map[string]V) *UnknownVariantError {
	expected := maps.Keys(known)
	slices.Sort(expected)
	return &UnknownVariantError{Field: field, Tag: tag, Expected: expected}
}

// splitObject decodes a JSON object into its raw members.
func splitObject(variant string, data []byte) (map[string]json.RawMessage, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return nil, &MalformedFieldError{Variant: variant, Err: err}
	}
	if fields == nil {
		return nil, &MalformedFieldError{Variant: variant, Err: errors.New("expected a JSON object, got null")}
	}
	return fields, nil
}

// readTag extracts a string discriminant from an already split object.
func readTag(variant string, fields map[string]json.RawMessage, field string) (string, error) {
	raw, ok := fields[field]
	if !ok || isNull(raw) {
		return "", &MalformedFieldError{Variant: variant, Field: field, Err: errMissingField}
	}
	var tag string
	if err := json.Unmarshal(raw, &tag); err != nil {
		return "", &MalformedFieldError{Variant: variant, Field: field, Err: err}
	}
	return tag, nil
}

// decodeFields checks the required members are present and non-null, then
// decodes the members into v, binding keys exactly. Unknown-discriminant errors raised by nested decoders
// are returned unchanged so callers can tell them apart from malformed data.
func decodeFields(variant string, fields map[string]json.RawMessage, v any, required ...string) error {
	for _, name := range required {
		if raw, ok := fields[name]; !ok || isNull(raw) {
			return &MalformedFieldError{Variant: variant, Field: name, Err: errMissingField}
		}
	}
	data, err := json.Marshal(fields)
	if err != nil {
		return &MalformedFieldError{Variant: variant, Err: err}
	}
	if err := exactjson.Unmarshal(data, v); err != nil {
		if IsUnknown(err) {
			return err
		}
		var mf *MalformedFieldError
		if errors.As(err, &mf) {
			return err
		}
		var te *json.UnmarshalTypeError
		if errors.As(err, &te) {
			return &MalformedFieldError{Variant: variant, Field: te.Field, Err: err}
		}
		return &MalformedFieldError{Variant: variant, Err: err}
	}
	return nil
}

func isNull(raw json.RawMessage) bool {
	return len(raw) == 0 || string(raw) == "null"
}
