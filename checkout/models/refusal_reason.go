package models

import (
	"encoding/json"
	"fmt"
)

// RefusalReason is why a payment was refused, cancelled or errored. On the
// wire it is always the processor's numeric code as a string ("2", "46").
// See https://docs.adyen.com/development-resources/refusal-reasons/
type RefusalReason int

const (
	RefusedReason RefusalReason = iota + 1
	Referral
	AcquirerError
	BlockedCard
	ExpiredCard
	InvalidAmount
	InvalidCardNumber
	IssuerUnavailable
	NotSupported
	ThreeDNotAuthenticated
	NotEnoughBalance
	AcquirerFraud
	CancelledReason
	ShopperCancelled
	InvalidPin
	PinTriesExceeded
	PinValidationNotPossible
	Fraud
	NotSubmitted
	FraudCancelled
	TransactionNotPermitted
	CvcDeclined
	RestrictedCard
	RevocationOfAuth
	DeclinedNonGeneric
	WithdrawalAmountExceeded
	WithdrawalCountExceeded
	IssuerSuspectedFraud
	AvsDeclined
	CardRequiresOnlinePin
	NoCheckingAccountAvailable
	NoSavingsAccountAvailable
	MobilePinRequired
	ContactlessFallback
	AuthenticationRequired
	RReqNotReceived
	CurrentAidInPenaltyBox
	CvmRequiredRestartPayment
	ThreeDsAuthenticationError
	TransactionBlockedByAdyen
)

// refusalReasonTable is the processor's code table. Codes are owned by the
// processor and have gaps (13, 30, 43-45); they are never derived from the
// constant's position.
var refusalReasonTable = []struct {
	reason RefusalReason
	code   string
	name   string
}{
	{RefusedReason, "2", "Refused"},
	{Referral, "3", "Referral"},
	{AcquirerError, "4", "Acquirer Error"},
	{BlockedCard, "5", "Blocked Card"},
	{ExpiredCard, "6", "Expired Card"},
	{InvalidAmount, "7", "Invalid Amount"},
	{InvalidCardNumber, "8", "Invalid Card Number"},
	{IssuerUnavailable, "9", "Issuer Unavailable"},
	{NotSupported, "10", "Not supported"},
	{ThreeDNotAuthenticated, "11", "3D Not Authenticated"},
	{NotEnoughBalance, "12", "Not enough balance"},
	{AcquirerFraud, "14", "Acquirer Fraud"},
	{CancelledReason, "15", "Cancelled"},
	{ShopperCancelled, "16", "Shopper Cancelled"},
	{InvalidPin, "17", "Invalid Pin"},
	{PinTriesExceeded, "18", "Pin tries exceeded"},
	{PinValidationNotPossible, "19", "Pin validation not possible"},
	{Fraud, "20", "FRAUD"},
	{NotSubmitted, "21", "Not Submitted"},
	{FraudCancelled, "22", "FRAUD-CANCELLED"},
	{TransactionNotPermitted, "23", "Transaction Not Permitted"},
	{CvcDeclined, "24", "CVC Declined"},
	{RestrictedCard, "25", "Restricted Card"},
	{RevocationOfAuth, "26", "Revocation Of Auth"},
	{DeclinedNonGeneric, "27", "Declined Non Generic"},
	{WithdrawalAmountExceeded, "28", "Withdrawal amount exceeded"},
	{WithdrawalCountExceeded, "29", "Withdrawal count exceeded"},
	{IssuerSuspectedFraud, "31", "Issuer Suspected Fraud"},
	{AvsDeclined, "32", "AVS Declined"},
	{CardRequiresOnlinePin, "33", "Card requires online pin"},
	{NoCheckingAccountAvailable, "34", "No checking account available on Card"},
	{NoSavingsAccountAvailable, "35", "No savings account available on Card"},
	{MobilePinRequired, "36", "Mobile PIN required"},
	{ContactlessFallback, "37", "Contactless fallback"},
	{AuthenticationRequired, "38", "Authentication required"},
	{RReqNotReceived, "39", "RReq not received from DS"},
	{CurrentAidInPenaltyBox, "40", "Current AID is in Penalty Box"},
	{CvmRequiredRestartPayment, "41", "CVM Required Restart Payment"},
	{ThreeDsAuthenticationError, "42", "3DS Authentication Error"},
	{TransactionBlockedByAdyen, "46", "Transaction blocked by Adyen to prevent excessive retry fees"},
}

var (
	refusalCodes   = make(map[RefusalReason]string, len(refusalReasonTable))
	refusalNames   = make(map[RefusalReason]string, len(refusalReasonTable))
	refusalReasons = make(map[string]RefusalReason, len(refusalReasonTable))
)

func init() {
	for _, row := range refusalReasonTable {
		refusalCodes[row.reason] = row.code
		refusalNames[row.reason] = row.name
		refusalReasons[row.code] = row.reason
	}
}

// RefusalReasons returns every defined reason in code order.
func RefusalReasons() []RefusalReason {
	out := make([]RefusalReason, 0, len(refusalReasonTable))
	for _, row := range refusalReasonTable {
		out = append(out, row.reason)
	}
	return out
}

// ParseRefusalReason maps a processor code to its reason. Codes outside the
// table fail with *UnknownCodeError; callers must not guess a reason.
func ParseRefusalReason(code string) (RefusalReason, error) {
	reason, ok := refusalReasons[code]
	if !ok {
		return 0, &UnknownCodeError{Code: code}
	}
	return reason, nil
}

// Code returns the processor's code, or "" for a value outside the table.
func (r RefusalReason) Code() string {
	return refusalCodes[r]
}

func (r RefusalReason) Valid() bool {
	_, ok := refusalCodes[r]
	return ok
}

// String returns the processor's human readable description.
func (r RefusalReason) String() string {
	if name, ok := refusalNames[r]; ok {
		return name
	}
	return fmt.Sprintf("RefusalReason(%d)", int(r))
}

func (r RefusalReason) MarshalJSON() ([]byte, error) {
	code, ok := refusalCodes[r]
	if !ok {
		return nil, fmt.Errorf("refusal reason %d has no code", int(r))
	}
	return json.Marshal(code)
}

func (r *RefusalReason) UnmarshalJSON(data []byte) error {
	var code string
	if err := json.Unmarshal(data, &code); err != nil {
		return &MalformedFieldError{Variant: "refusal reason", Err: fmt.Errorf("code must be a string: %w", err)}
	}
	reason, err := ParseRefusalReason(code)
	if err != nil {
		return err
	}
	*r = reason
	return nil
}
