package checkout

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/alovak/cardflow-checkout/checkout/models"
)

type ApplePaySessionRequest struct {
	CountryCode     string
	Amount          models.Amount
	Channel         string
	DisplayName     string
	DomainName      string
	MerchantAccount string
}

type paymentMethodsRequest struct {
	MerchantAccount string        `json:"merchantAccount"`
	CountryCode     string        `json:"countryCode"`
	Amount          models.Amount `json:"amount"`
	Channel         string        `json:"channel"`
}

type paymentMethodsResponse struct {
	PaymentMethods []struct {
		Type          string `json:"type"`
		Configuration *struct {
			MerchantID string `json:"merchantId"`
		} `json:"configuration"`
	} `json:"paymentMethods"`
}

type applePaySessionRequest struct {
	DisplayName        string `json:"displayName"`
	DomainName         string `json:"domainName"`
	MerchantIdentifier string `json:"merchantIdentifier"`
}

// MakeApplePaySession looks up the merchant's Apple Pay identifier and opens
// a payment session with it. It returns the opaque session data for the
// Apple Pay JS API, or ErrUnsupportedPaymentMethod when Apple Pay is not
// configured for the account.
// https://docs.adyen.com/payment-methods/apple-pay/api-only/
func (g *Gateway) MakeApplePaySession(ctx context.Context, req ApplePaySessionRequest) (string, error) {
	if req.MerchantAccount == "" {
		return "", errors.New("merchant account is required")
	}

	var methods paymentMethodsResponse
	err := g.post(ctx, "/paymentMethods", paymentMethodsRequest{
		MerchantAccount: req.MerchantAccount,
		CountryCode:     req.CountryCode,
		Amount:          req.Amount,
		Channel:         req.Channel,
	}, func(data []byte) error {
		return json.Unmarshal(data, &methods)
	})
	if err != nil {
		return "", fmt.Errorf("listing payment methods: %w", err)
	}

	var merchantID string
	for _, m := range methods.PaymentMethods {
		if m.Type == "applepay" && m.Configuration != nil {
			merchantID = m.Configuration.MerchantID
			break
		}
	}
	if merchantID == "" {
		return "", ErrUnsupportedPaymentMethod
	}

	var session struct {
		Data *string `json:"data"`
	}
	err = g.post(ctx, "/applePay/sessions", applePaySessionRequest{
		DisplayName:        req.DisplayName,
		DomainName:         req.DomainName,
		MerchantIdentifier: merchantID,
	}, func(data []byte) error {
		if err := json.Unmarshal(data, &session); err != nil {
			return err
		}
		if session.Data == nil {
			return errors.New("session data is missing")
		}
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("creating apple pay session: %w", err)
	}
	return *session.Data, nil
}
