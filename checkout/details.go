package checkout

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"

	"github.com/alovak/cardflow-checkout/checkout/models"
)

type paymentDetails struct {
	ThreeDSResult  string `json:"threeDSResult,omitempty"`
	RedirectResult string `json:"redirectResult,omitempty"`
}

type detailsRequest struct {
	Details paymentDetails `json:"details"`
}

// SetPaymentDetails submits the result of a native 3-D Secure 2 challenge.
func (g *Gateway) SetPaymentDetails(ctx context.Context, threeDSResult string) (models.Response, error) {
	if threeDSResult == "" {
		return nil, errors.New("threeDSResult is required")
	}
	return g.postPayment(ctx, "/payments/details", detailsRequest{Details: paymentDetails{ThreeDSResult: threeDSResult}})
}

// SetRedirectResult submits the redirectResult the shopper returned with.
func (g *Gateway) SetRedirectResult(ctx context.Context, redirectResult string) (models.Response, error) {
	if redirectResult == "" {
		return nil, errors.New("redirectResult is required")
	}
	return g.postPayment(ctx, "/payments/details", detailsRequest{Details: paymentDetails{RedirectResult: redirectResult}})
}

type refundRequest struct {
	Amount          models.Amount `json:"amount"`
	Reference       string        `json:"reference"`
	MerchantAccount string        `json:"merchantAccount"`
}

// Refund requests a (partial) refund of an authorised payment. The refund
// is confirmed later by a REFUND notification.
// https://docs.adyen.com/online-payments/refund/
func (g *Gateway) Refund(ctx context.Context, pspReference string, amount models.Amount, reference, merchantAccount string) (models.RefundResult, error) {
	if pspReference == "" {
		return models.RefundResult{}, errors.New("psp reference is required")
	}
	if err := requireReference(reference, merchantAccount); err != nil {
		return models.RefundResult{}, err
	}

	var result models.RefundResult
	path := fmt.Sprintf("/payments/%s/refunds", url.PathEscape(pspReference))
	err := g.post(ctx, path, refundRequest{Amount: amount, Reference: reference, MerchantAccount: merchantAccount}, func(data []byte) error {
		return json.Unmarshal(data, &result)
	})
	if err != nil {
		return models.RefundResult{}, err
	}
	return result, nil
}
