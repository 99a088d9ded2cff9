package models

import (
	"time"

	"github.com/alovak/cardflow-checkout/internal/expiry"
)

// CardAdditionalData is the card summary returned with an Authorised result
// when the merchant account is configured to include it.
type CardAdditionalData struct {
	CardHolderName string `json:"cardHolderName"`
	IssuerCountry  string `json:"issuerCountry"`
	CardSummary    string `json:"cardSummary"`
	// ExpiryDate is formatted M/yyyy.
	ExpiryDate    string `json:"expiryDate"`
	PaymentMethod string `json:"paymentMethod"`
	// RecurringDetailReference is set when the card was stored for later use.
	RecurringDetailReference *string `json:"recurring.recurringDetailReference,omitempty"`
}

func (c *CardAdditionalData) UnmarshalJSON(data []byte) error {
	fields, err := splitObject("additionalData", data)
	if err != nil {
		return err
	}
	type plain CardAdditionalData
	var p plain
	if err := decodeFields("additionalData", fields, &p,
		"cardHolderName", "issuerCountry", "cardSummary", "expiryDate", "paymentMethod"); err != nil {
		return err
	}
	*c = CardAdditionalData(p)
	return nil
}

// CardOnFile is a stored card the shopper can be charged with again.
type CardOnFile struct {
	HolderName               string `json:"holderName"`
	IssuerCountry            string `json:"issuerCountry"`
	CardSummary              string `json:"cardSummary"`
	ExpiryDate               string `json:"expiryDate"`
	Type                     string `json:"type"`
	RecurringDetailReference string `json:"recurringDetailReference"`
}

// CardOnFileFrom returns the stored card described by data, or nil when the
// card was not stored.
func CardOnFileFrom(data *CardAdditionalData) *CardOnFile {
	if data == nil || data.RecurringDetailReference == nil || *data.RecurringDetailReference == "" {
		return nil
	}
	return &CardOnFile{
		HolderName:               data.CardHolderName,
		IssuerCountry:            data.IssuerCountry,
		CardSummary:              data.CardSummary,
		ExpiryDate:               data.ExpiryDate,
		Type:                     data.PaymentMethod,
		RecurringDetailReference: *data.RecurringDetailReference,
	}
}

// IsExpired reports whether the card can no longer be charged at the given time.
func (c CardOnFile) IsExpired(at time.Time) (bool, error) {
	return expiry.IsExpired(c.ExpiryDate, at, nil)
}

// RenewalDue reports whether the card expires within the given number of days.
func (c CardOnFile) RenewalDue(at time.Time, days int) (bool, error) {
	return expiry.RenewalDue(c.ExpiryDate, at, nil, days)
}

// BrowserInfo is required for native 3-D Secure 2 on web channels.
type BrowserInfo struct {
	UserAgent      string `json:"userAgent"`
	AcceptHeader   string `json:"acceptHeader"`
	Language       string `json:"language"`
	ColorDepth     int    `json:"colorDepth"`
	ScreenHeight   int    `json:"screenHeight"`
	ScreenWidth    int    `json:"screenWidth"`
	TimeZoneOffset int    `json:"timeZoneOffset"`
	JavaEnabled    bool   `json:"javaEnabled"`
}

// RefundResult is the processor's acknowledgement of a refund request. The
// refund itself completes asynchronously and is reported by a REFUND webhook.
type RefundResult struct {
	PSPReference string `json:"pspReference"`
	Status       string `json:"status"`
}

func (r *RefundResult) UnmarshalJSON(data []byte) error {
	fields, err := splitObject("refund result", data)
	if err != nil {
		return err
	}
	type plain RefundResult
	var p plain
	if err := decodeFields("refund result", fields, &p, "pspReference", "status"); err != nil {
		return err
	}
	*r = RefundResult(p)
	return nil
}
