// Package webhook decodes the processor's asynchronous notifications.
//
// Every notification item is discriminated by its eventCode. AUTHORISATION
// items are decoded in full; every other known event code decodes to a
// Marker that only records the event happened. An event code outside the
// vocabulary fails the item rather than being coerced into a catch-all.
package webhook

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/alovak/cardflow-checkout/checkout/models"
	"github.com/alovak/cardflow-checkout/internal/exactjson"
)

// Webhook is one delivery from the processor.
type Webhook struct {
	Live              string
	NotificationItems []Item
}

// IsLive reports whether the delivery comes from the live platform.
func (w Webhook) IsLive() bool {
	return w.Live == "true"
}

// Item is a single notification request item.
type Item interface {
	EventCode() EventCode
}

type AdditionalData struct {
	HMACSignature string `json:"hmacSignature"`
}

// Authorisation informs about the outcome of a payment request through Success.
type Authorisation struct {
	AdditionalData      AdditionalData `json:"additionalData"`
	Success             string         `json:"success"`
	EventDate           string         `json:"eventDate"`
	MerchantAccountCode string         `json:"merchantAccountCode"`
	PSPReference        string         `json:"pspReference"`
	MerchantReference   string         `json:"merchantReference"`
	Amount              models.Amount  `json:"amount"`
}

func (Authorisation) EventCode() EventCode { return EventAuthorisation }

// Succeeded reports whether the payment was authorised.
func (a Authorisation) Succeeded() bool {
	return a.Success == "true"
}

// Marker records that an event without a decoded payload occurred.
type Marker struct {
	Code EventCode
}

func (m Marker) EventCode() EventCode { return m.Code }

// ItemError reports which notification item failed to decode.
type ItemError struct {
	Index int
	Err   error
}

func (e *ItemError) Error() string {
	return fmt.Sprintf("notification item %d: %v", e.Index, e.Err)
}

func (e *ItemError) Unwrap() error { return e.Err }

// wrapperKey is the envelope the processor's standard webhooks put around
// every item. Bare items are accepted too.
const wrapperKey = "NotificationRequestItem"

// Decode decodes a webhook delivery. Items keep their order.
func Decode(data []byte) (Webhook, error) {
	var envelope struct {
		Live              *string           `json:"live"`
		NotificationItems []json.RawMessage `json:"notificationItems"`
	}
	if err := exactjson.Unmarshal(data, &envelope); err != nil {
		return Webhook{}, &models.MalformedFieldError{Variant: "webhook", Err: err}
	}
	if envelope.Live == nil {
		return Webhook{}, &models.MalformedFieldError{Variant: "webhook", Field: "live", Err: errors.New("required field is missing")}
	}
	if envelope.NotificationItems == nil {
		return Webhook{}, &models.MalformedFieldError{Variant: "webhook", Field: "notificationItems", Err: errors.New("required field is missing")}
	}

	w := Webhook{
		Live:              *envelope.Live,
		NotificationItems: make([]Item, 0, len(envelope.NotificationItems)),
	}
	for i, raw := range envelope.NotificationItems {
		item, err := DecodeItem(raw)
		if err != nil {
			return Webhook{}, &ItemError{Index: i, Err: err}
		}
		w.NotificationItems = append(w.NotificationItems, item)
	}
	return w, nil
}

// DecodeItem decodes one notification item, bare or wrapped in its
// NotificationRequestItem envelope.
func DecodeItem(data []byte) (Item, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return nil, &models.MalformedFieldError{Variant: "notification item", Err: err}
	}
	if inner, ok := fields[wrapperKey]; ok && len(fields) == 1 {
		data = inner
		fields = nil
		if err := json.Unmarshal(data, &fields); err != nil {
			return nil, &models.MalformedFieldError{Variant: "notification item", Err: err}
		}
	}
	if fields == nil {
		return nil, &models.MalformedFieldError{Variant: "notification item", Err: errors.New("expected a JSON object, got null")}
	}

	raw, ok := fields["eventCode"]
	if !ok || string(raw) == "null" {
		return nil, &models.MalformedFieldError{Variant: "notification item", Field: "eventCode", Err: errors.New("required field is missing")}
	}
	var code EventCode
	if err := json.Unmarshal(raw, &code); err != nil {
		if models.IsUnknown(err) {
			return nil, err
		}
		return nil, &models.MalformedFieldError{Variant: "notification item", Field: "eventCode", Err: err}
	}

	if code == EventAuthorisation {
		return decodeAuthorisation(fields, data)
	}
	return Marker{Code: code}, nil
}

var authorisationFields = []string{
	"additionalData", "success", "eventDate", "merchantAccountCode",
	"pspReference", "merchantReference", "amount",
}

func decodeAuthorisation(fields map[string]json.RawMessage, data []byte) (Item, error) {
	for _, name := range authorisationFields {
		if raw, ok := fields[name]; !ok || string(raw) == "null" {
			return nil, &models.MalformedFieldError{Variant: string(EventAuthorisation), Field: name, Err: errors.New("required field is missing")}
		}
	}

	var a Authorisation
	if err := exactjson.Unmarshal(data, &a); err != nil {
		var mf *models.MalformedFieldError
		if errors.As(err, &mf) {
			return nil, err
		}
		return nil, &models.MalformedFieldError{Variant: string(EventAuthorisation), Err: err}
	}

	var additional map[string]json.RawMessage
	if err := json.Unmarshal(fields["additionalData"], &additional); err != nil {
		return nil, &models.MalformedFieldError{Variant: string(EventAuthorisation), Field: "additionalData", Err: err}
	}
	if raw, ok := additional["hmacSignature"]; !ok || string(raw) == "null" {
		return nil, &models.MalformedFieldError{Variant: string(EventAuthorisation), Field: "additionalData.hmacSignature", Err: errors.New("required field is missing")}
	}
	return a, nil
}
