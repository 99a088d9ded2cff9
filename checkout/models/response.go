package models

import (
	"encoding/json"
	"errors"
)

// ResultCode is the processor's discriminant naming the state of a payment.
type ResultCode string

const (
	ResultAuthenticationFinished    ResultCode = "AuthenticationFinished"
	ResultAuthenticationNotRequired ResultCode = "AuthenticationNotRequired"
	ResultAuthorised                ResultCode = "Authorised"
	ResultCancelled                 ResultCode = "Cancelled"
	ResultChallengeShopper          ResultCode = "ChallengeShopper"
	ResultError                     ResultCode = "Error"
	ResultIdentifyShopper           ResultCode = "IdentifyShopper"
	ResultPartiallyAuthorised       ResultCode = "PartiallyAuthorised"
	ResultPending                   ResultCode = "Pending"
	ResultPresentToShopper          ResultCode = "PresentToShopper"
	ResultReceived                  ResultCode = "Received"
	ResultRedirectShopper           ResultCode = "RedirectShopper"
	ResultRefused                   ResultCode = "Refused"
)

var resultCodes = map[string]struct{}{
	string(ResultAuthenticationFinished):    {},
	string(ResultAuthenticationNotRequired): {},
	string(ResultAuthorised):                {},
	string(ResultCancelled):                 {},
	string(ResultChallengeShopper):          {},
	string(ResultError):                     {},
	string(ResultIdentifyShopper):           {},
	string(ResultPartiallyAuthorised):       {},
	string(ResultPending):                   {},
	string(ResultPresentToShopper):          {},
	string(ResultReceived):                  {},
	string(ResultRedirectShopper):           {},
	string(ResultRefused):                   {},
}

// Response is the outcome of one payment attempt. Exactly one variant is
// returned by DecodeResponse; each carries only the fields meaningful for it.
type Response interface {
	ResultCode() ResultCode
	isResponse()
}

type AuthenticationFinished struct{}

type AuthenticationNotRequired struct{}

// Authorised is the final success state.
type Authorised struct {
	AdditionalData    *CardAdditionalData `json:"additionalData,omitempty"`
	PSPReference      string              `json:"pspReference"`
	MerchantReference string              `json:"merchantReference"`
}

type Cancelled struct {
	RefusalReason *RefusalReason `json:"refusalReasonCode,omitempty"`
	PSPReference  string         `json:"pspReference"`
}

type ChallengeShopper struct {
	Action Action `json:"action"`
}

type IdentifyShopper struct {
	Action Action `json:"action"`
}

type Pending struct {
	Action Action `json:"action"`
}

type RedirectShopper struct {
	Action Action `json:"action"`
}

type PartiallyAuthorised struct{}

type PresentToShopper struct{}

type Received struct{}

// ErrorResult is the "Error" result code: the processor failed the payment.
type ErrorResult struct {
	RefusalReason RefusalReason `json:"refusalReasonCode"`
	PSPReference  string        `json:"pspReference"`
}

type Refused struct {
	RefusalReason RefusalReason `json:"refusalReasonCode"`
	PSPReference  string        `json:"pspReference"`
}

func (AuthenticationFinished) ResultCode() ResultCode    { return ResultAuthenticationFinished }
func (AuthenticationNotRequired) ResultCode() ResultCode { return ResultAuthenticationNotRequired }
func (Authorised) ResultCode() ResultCode                { return ResultAuthorised }
func (Cancelled) ResultCode() ResultCode                 { return ResultCancelled }
func (ChallengeShopper) ResultCode() ResultCode          { return ResultChallengeShopper }
func (IdentifyShopper) ResultCode() ResultCode           { return ResultIdentifyShopper }
func (Pending) ResultCode() ResultCode                   { return ResultPending }
func (RedirectShopper) ResultCode() ResultCode           { return ResultRedirectShopper }
func (PartiallyAuthorised) ResultCode() ResultCode       { return ResultPartiallyAuthorised }
func (PresentToShopper) ResultCode() ResultCode          { return ResultPresentToShopper }
func (Received) ResultCode() ResultCode                  { return ResultReceived }
func (ErrorResult) ResultCode() ResultCode               { return ResultError }
func (Refused) ResultCode() ResultCode                   { return ResultRefused }

func (AuthenticationFinished) isResponse()    {}
func (AuthenticationNotRequired) isResponse() {}
func (Authorised) isResponse()                {}
func (Cancelled) isResponse()                 {}
func (ChallengeShopper) isResponse()          {}
func (IdentifyShopper) isResponse()           {}
func (Pending) isResponse()                   {}
func (RedirectShopper) isResponse()           {}
func (PartiallyAuthorised) isResponse()       {}
func (PresentToShopper) isResponse()          {}
func (Received) isResponse()                  {}
func (ErrorResult) isResponse()               {}
func (Refused) isResponse()                   {}

// DecodeResponse decodes a payment result. The variant is chosen by
// resultCode and only that variant's fields are read; an unknown resultCode
// fails with *UnknownVariantError and a missing or mistyped field of the
// chosen variant with *MalformedFieldError.
func DecodeResponse(data []byte) (Response, error) {
	fields, err := splitObject("response", data)
	if err != nil {
		return nil, err
	}
	tag, err := readTag("response", fields, "resultCode")
	if err != nil {
		return nil, err
	}

	switch ResultCode(tag) {
	case ResultAuthenticationFinished:
		return AuthenticationFinished{}, nil
	case ResultAuthenticationNotRequired:
		return AuthenticationNotRequired{}, nil
	case ResultAuthorised:
		var r Authorised
		if err := decodeFields(tag, fields, &r, "pspReference", "merchantReference"); err != nil {
			return nil, err
		}
		return r, nil
	case ResultCancelled:
		var r Cancelled
		if err := decodeFields(tag, fields, &r, "pspReference"); err != nil {
			return nil, err
		}
		return r, nil
	case ResultChallengeShopper:
		action, err := actionField(tag, fields)
		if err != nil {
			return nil, err
		}
		return ChallengeShopper{Action: action}, nil
	case ResultIdentifyShopper:
		action, err := actionField(tag, fields)
		if err != nil {
			return nil, err
		}
		return IdentifyShopper{Action: action}, nil
	case ResultPending:
		action, err := actionField(tag, fields)
		if err != nil {
			return nil, err
		}
		return Pending{Action: action}, nil
	case ResultRedirectShopper:
		action, err := actionField(tag, fields)
		if err != nil {
			return nil, err
		}
		return RedirectShopper{Action: action}, nil
	case ResultPartiallyAuthorised:
		return PartiallyAuthorised{}, nil
	case ResultPresentToShopper:
		return PresentToShopper{}, nil
	case ResultReceived:
		return Received{}, nil
	case ResultError:
		var r ErrorResult
		if err := decodeFields(tag, fields, &r, "refusalReasonCode", "pspReference"); err != nil {
			return nil, err
		}
		return r, nil
	case ResultRefused:
		var r Refused
		if err := decodeFields(tag, fields, &r, "refusalReasonCode", "pspReference"); err != nil {
			return nil, err
		}
		return r, nil
	default:
		return nil, unknownVariant("resultCode", tag, resultCodes)
	}
}

func actionField(variant string, fields map[string]json.RawMessage) (Action, error) {
	raw, ok := fields["action"]
	if !ok || isNull(raw) {
		return nil, &MalformedFieldError{Variant: variant, Field: "action", Err: errMissingField}
	}
	return DecodeAction(raw)
}

// EncodeResponse returns the wire form of r, including its resultCode.
// Absent optional fields stay absent.
func EncodeResponse(r Response) ([]byte, error) {
	if r == nil {
		return nil, errors.New("nil response")
	}
	body, err := json.Marshal(r)
	if err != nil {
		return nil, err
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(body, &fields); err != nil {
		return nil, err
	}
	code, err := json.Marshal(r.ResultCode())
	if err != nil {
		return nil, err
	}
	fields["resultCode"] = code
	return json.Marshal(fields)
}

// IsFinal reports whether r ends the payment: no further call can change it.
func IsFinal(r Response) bool {
	switch r.(type) {
	case Authorised, Cancelled, ErrorResult, Refused:
		return true
	}
	return false
}

// RequiredAction returns the action the caller must drive next, if any.
func RequiredAction(r Response) (Action, bool) {
	switch v := r.(type) {
	case ChallengeShopper:
		return v.Action, true
	case IdentifyShopper:
		return v.Action, true
	case Pending:
		return v.Action, true
	case RedirectShopper:
		return v.Action, true
	}
	return nil, false
}
