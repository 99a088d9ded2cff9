package models

import (
	"encoding/json"
)

// Action is a shopper interaction the caller must drive before the payment
// can complete. It is discriminated by paymentMethodType on the wire.
type Action interface {
	PaymentMethodType() string
	isAction()
}

// Scheme is the card scheme action, further discriminated by type.
type Scheme interface {
	Type() string
	isScheme()
}

const (
	PaymentMethodScheme = "scheme"
	PaymentMethodSwish  = "swish"
	PaymentMethodVipps  = "vipps"

	SchemeTypeRedirect = "redirect"
	SchemeTypeThreeDS2 = "threeDS2"
)

var (
	actionTags = map[string]struct{}{PaymentMethodScheme: {}, PaymentMethodSwish: {}, PaymentMethodVipps: {}}
	schemeTags = map[string]struct{}{SchemeTypeRedirect: {}, SchemeTypeThreeDS2: {}}
)

type SchemeAction struct {
	Scheme Scheme
}

func (SchemeAction) PaymentMethodType() string { return PaymentMethodScheme }
func (SchemeAction) isAction()                 {}

// SchemeRedirect sends the shopper to the issuer's legacy 3-D Secure page.
type SchemeRedirect struct {
	URL    string             `json:"url"`
	Method string             `json:"method"`
	Data   SchemeRedirectData `json:"data"`
}

type SchemeRedirectData struct {
	MD      string  `json:"MD"`
	PaReq   string  `json:"PaReq"`
	TermURL *string `json:"TermUrl,omitempty"`
}

func (SchemeRedirect) Type() string { return SchemeTypeRedirect }
func (SchemeRedirect) isScheme()    {}

// SchemeThreeDS2 carries the opaque 3DS2 fingerprint or challenge token.
type SchemeThreeDS2 struct {
	PaymentData string `json:"paymentData"`
	Subtype     string `json:"subtype"`
	Token       string `json:"token"`
}

func (SchemeThreeDS2) Type() string { return SchemeTypeThreeDS2 }
func (SchemeThreeDS2) isScheme()    {}

type SwishAction struct {
	QRCodeData  string `json:"qrCodeData"`
	Type        string `json:"type"`
	PaymentData string `json:"paymentData"`
	URL         string `json:"url"`
}

func (SwishAction) PaymentMethodType() string { return PaymentMethodSwish }
func (SwishAction) isAction()                 {}

type VippsAction struct {
	Method string `json:"method"`
	URL    string `json:"url"`
	Type   string `json:"type"`
}

func (VippsAction) PaymentMethodType() string { return PaymentMethodVipps }
func (VippsAction) isAction()                 {}

// DecodeAction decodes an action object. Unknown paymentMethodType or scheme
// type values fail with *UnknownVariantError.
func DecodeAction(data []byte) (Action, error) {
	fields, err := splitObject("action", data)
	if err != nil {
		return nil, err
	}
	tag, err := readTag("action", fields, "paymentMethodType")
	if err != nil {
		return nil, err
	}

	switch tag {
	case PaymentMethodScheme:
		scheme, err := decodeScheme(fields)
		if err != nil {
			return nil, err
		}
		return SchemeAction{Scheme: scheme}, nil
	case PaymentMethodSwish:
		var a SwishAction
		if err := decodeFields("swish action", fields, &a, "qrCodeData", "type", "paymentData", "url"); err != nil {
			return nil, err
		}
		return a, nil
	case PaymentMethodVipps:
		var a VippsAction
		if err := decodeFields("vipps action", fields, &a, "method", "url", "type"); err != nil {
			return nil, err
		}
		return a, nil
	default:
		return nil, unknownVariant("paymentMethodType", tag, actionTags)
	}
}

func decodeScheme(fields map[string]json.RawMessage) (Scheme, error) {
	tag, err := readTag("scheme action", fields, "type")
	if err != nil {
		return nil, err
	}

	switch tag {
	case SchemeTypeRedirect:
		var s SchemeRedirect
		if err := decodeFields("scheme redirect", fields, &s, "url", "method", "data"); err != nil {
			return nil, err
		}
		return s, nil
	case SchemeTypeThreeDS2:
		var s SchemeThreeDS2
		if err := decodeFields("scheme threeDS2", fields, &s, "paymentData", "subtype", "token"); err != nil {
			return nil, err
		}
		return s, nil
	default:
		return nil, unknownVariant("scheme type", tag, schemeTags)
	}
}

func (d *SchemeRedirectData) UnmarshalJSON(data []byte) error {
	fields, err := splitObject("redirect data", data)
	if err != nil {
		return err
	}
	type plain SchemeRedirectData
	var p plain
	if err := decodeFields("redirect data", fields, &p, "MD", "PaReq"); err != nil {
		return err
	}
	*d = SchemeRedirectData(p)
	return nil
}

func (a SchemeAction) MarshalJSON() ([]byte, error) {
	switch s := a.Scheme.(type) {
	case SchemeRedirect:
		return json.Marshal(struct {
			PaymentMethodType string `json:"paymentMethodType"`
			Type              string `json:"type"`
			SchemeRedirect
		}{PaymentMethodScheme, SchemeTypeRedirect, s})
	case SchemeThreeDS2:
		return json.Marshal(struct {
			PaymentMethodType string `json:"paymentMethodType"`
			Type              string `json:"type"`
			SchemeThreeDS2
		}{PaymentMethodScheme, SchemeTypeThreeDS2, s})
	default:
		return nil, &UnknownVariantError{Field: "scheme type", Tag: "<nil>", Expected: []string{SchemeTypeRedirect, SchemeTypeThreeDS2}}
	}
}

func (a SwishAction) MarshalJSON() ([]byte, error) {
	type plain SwishAction
	return json.Marshal(struct {
		PaymentMethodType string `json:"paymentMethodType"`
		plain
	}{PaymentMethodSwish, plain(a)})
}

func (a VippsAction) MarshalJSON() ([]byte, error) {
	type plain VippsAction
	return json.Marshal(struct {
		PaymentMethodType string `json:"paymentMethodType"`
		plain
	}{PaymentMethodVipps, plain(a)})
}
