package checkout_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/alovak/cardflow-checkout/checkout"
	"github.com/alovak/cardflow-checkout/checkout/models"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var testLogger = slog.New(slog.NewTextHandler(io.Discard, nil))

type recorded struct {
	path    string
	headers http.Header
	body    map[string]any
}

// stubProcessor serves canned responses per path and records what it received.
func stubProcessor(t *testing.T, responses map[string]string) (*checkout.Gateway, *[]recorded) {
	t.Helper()

	var calls []recorded
	srv := httptest.NewTLSServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		calls = append(calls, recorded{path: r.URL.Path, headers: r.Header.Clone(), body: body})

		resp, ok := responses[r.URL.Path]
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			w.Write([]byte(`{"status":404,"errorCode":"000","message":"not found","errorType":"validation"}`))
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(resp))
	}))
	t.Cleanup(srv.Close)

	gw, err := checkout.NewGateway(testLogger, &checkout.Config{
		APIKey:     "test-key",
		BaseURL:    srv.URL,
		HTTPClient: srv.Client(),
	})
	require.NoError(t, err)

	return gw, &calls
}

func TestGatewayPayments(t *testing.T) {
	ctx := context.Background()
	amount := models.Amount{Value: 1000, Currency: models.NOK}

	t.Run("google pay with native 3DS", func(t *testing.T) {
		gw, calls := stubProcessor(t, map[string]string{
			"/v71/payments": `{"resultCode":"Authorised","pspReference":"P1","merchantReference":"order-1"}`,
		})

		resp, err := gw.PayWithGooglePay(ctx, checkout.GooglePayPayment{
			Amount:           amount,
			GooglePayToken:   "token",
			Reference:        "order-1",
			ShopperReference: "shopper-1",
			ReturnURL:        "https://shop.example/return",
			MerchantAccount:  "ShopNO",
			Channel:          "Web",
			ThreeDSPreferred: true,
		})
		require.NoError(t, err)
		require.Equal(t, models.Authorised{PSPReference: "P1", MerchantReference: "order-1"}, resp)

		require.Len(t, *calls, 1)
		call := (*calls)[0]
		require.Equal(t, "test-key", call.headers.Get("x-API-key"))
		require.Equal(t, "application/json", call.headers.Get("Content-Type"))
		require.Equal(t, "application/json", call.headers.Get("Accept"))

		require.Equal(t, map[string]any{"value": float64(1000), "currency": "NOK"}, call.body["amount"])
		require.Equal(t, map[string]any{"type": "googlepay", "googlePayToken": "token"}, call.body["paymentMethod"])
		require.Equal(t, map[string]any{
			"threeDSRequestData":    map[string]any{"nativeThreeDS": "preferred"},
			"attemptAuthentication": "always",
		}, call.body["authenticationData"])
		require.Equal(t, "Ecommerce", call.body["shopperInteraction"])
		require.Equal(t, "Web", call.body["channel"])
		require.NotContains(t, call.body, "browserInfo")
		require.NotContains(t, call.body, "shopperEmail")
	})

	t.Run("card on file without 3DS", func(t *testing.T) {
		gw, calls := stubProcessor(t, map[string]string{
			"/v71/payments": `{"resultCode":"Refused","refusalReasonCode":"6","pspReference":"P2"}`,
		})

		resp, err := gw.PayWithCardOnFile(ctx, checkout.CardOnFilePayment{
			Amount:                amount,
			Reference:             "order-2",
			ShopperReference:      "shopper-1",
			StoredPaymentMethodID: "8415718415172204",
			ReturnURL:             "https://shop.example/return",
			MerchantAccount:       "ShopNO",
		})
		require.NoError(t, err)
		require.Equal(t, models.Refused{RefusalReason: models.ExpiredCard, PSPReference: "P2"}, resp)

		body := (*calls)[0].body
		require.Equal(t, "ContAuth", body["shopperInteraction"])
		require.Equal(t, "UnscheduledCardOnFile", body["recurringProcessingModel"])
		require.NotContains(t, body, "authenticationData")
	})

	t.Run("new card on file returns the stored card", func(t *testing.T) {
		gw, calls := stubProcessor(t, map[string]string{
			"/v71/payments": `{
				"resultCode":"Authorised","pspReference":"P3","merchantReference":"order-3",
				"additionalData":{"cardHolderName":"Kari Nordmann","issuerCountry":"NO","cardSummary":"1111",
					"expiryDate":"3/2030","paymentMethod":"visa","recurring.recurringDetailReference":"R1"}
			}`,
		})

		resp, card, err := gw.PayWithNewCardOnFile(ctx, checkout.NewCardOnFilePayment{
			Amount:           amount,
			Reference:        "order-3",
			ShopperReference: "shopper-1",
			Card:             checkout.EncryptedCard{Number: "enc-n", ExpiryMonth: "enc-m", ExpiryYear: "enc-y", SecurityCode: "enc-c"},
			ReturnURL:        "https://shop.example/return",
			MerchantAccount:  "ShopNO",
		})
		require.NoError(t, err)
		require.True(t, models.IsFinal(resp))
		require.NotNil(t, card)
		require.Equal(t, "R1", card.RecurringDetailReference)
		require.Equal(t, "Kari Nordmann", card.HolderName)

		body := (*calls)[0].body
		require.Equal(t, true, body["storePaymentMethod"])
		require.NotContains(t, body["paymentMethod"], "holderName")
	})

	t.Run("new card on file needing a challenge has no stored card yet", func(t *testing.T) {
		gw, _ := stubProcessor(t, map[string]string{
			"/v71/payments": `{"resultCode":"IdentifyShopper","action":{"paymentMethodType":"scheme","type":"threeDS2","paymentData":"pd","subtype":"fingerprint","token":"tok"}}`,
		})

		resp, card, err := gw.PayWithNewCardOnFile(ctx, checkout.NewCardOnFilePayment{
			Amount:           amount,
			Reference:        "order-4",
			ShopperReference: "shopper-1",
			ReturnURL:        "https://shop.example/return",
			MerchantAccount:  "ShopNO",
			ThreeDSPreferred: true,
		})
		require.NoError(t, err)
		require.Nil(t, card)

		action, ok := models.RequiredAction(resp)
		require.True(t, ok)
		require.Equal(t, "scheme", action.PaymentMethodType())
	})

	t.Run("swish and vipps", func(t *testing.T) {
		gw, calls := stubProcessor(t, map[string]string{
			"/v71/payments": `{"resultCode":"Pending","action":{"paymentMethodType":"swish","type":"qrCode","qrCodeData":"qr","paymentData":"pd","url":"swish://x"}}`,
		})

		resp, err := gw.PayWithSwish(ctx, checkout.SwishPayment{Amount: models.Amount{Value: 100, Currency: models.SEK}, Reference: "order-5", ReturnURL: "https://shop.example/return", MerchantAccount: "ShopSE"})
		require.NoError(t, err)
		require.IsType(t, models.Pending{}, resp)

		_, err = gw.PayWithVipps(ctx, checkout.VippsPayment{Amount: amount, Reference: "order-6", ReturnURL: "https://shop.example/return", MerchantAccount: "ShopNO", Channel: "Web", TelephoneNumber: "+4712345678"})
		require.NoError(t, err)

		require.Len(t, *calls, 2)
		require.Equal(t, map[string]any{"type": "swish"}, (*calls)[0].body["paymentMethod"])
		require.Equal(t, map[string]any{"type": "vipps", "telephoneNumber": "+4712345678"}, (*calls)[1].body["paymentMethod"])
	})

	t.Run("requests without reference are not sent", func(t *testing.T) {
		gw, calls := stubProcessor(t, nil)

		_, err := gw.PayWithApplePay(ctx, checkout.ApplePayPayment{Amount: amount, ApplePayToken: "t", MerchantAccount: "ShopNO"})
		require.Error(t, err)

		_, err = gw.PayWithApplePay(ctx, checkout.ApplePayPayment{Amount: amount, ApplePayToken: "t", Reference: "order-7"})
		require.Error(t, err)
		require.Empty(t, *calls)
	})
}

func TestGatewayDetailsAndRefund(t *testing.T) {
	ctx := context.Background()

	gw, calls := stubProcessor(t, map[string]string{
		"/v71/payments/details":    `{"resultCode":"Authorised","pspReference":"P1","merchantReference":"order-1"}`,
		"/v71/payments/P1/refunds": `{"merchantAccount":"ShopNO","paymentPspReference":"P1","pspReference":"R1","reference":"refund-1","status":"received"}`,
	})

	resp, err := gw.SetPaymentDetails(ctx, "eyJ0cmFuc1N0YXR1cyI6IlkifQ==")
	require.NoError(t, err)
	require.Equal(t, models.ResultAuthorised, resp.ResultCode())

	_, err = gw.SetRedirectResult(ctx, "X6XtfGC3!Y...")
	require.NoError(t, err)

	result, err := gw.Refund(ctx, "P1", models.Amount{Value: 500, Currency: models.NOK}, "refund-1", "ShopNO")
	require.NoError(t, err)
	require.Equal(t, models.RefundResult{PSPReference: "R1", Status: "received"}, result)

	require.Len(t, *calls, 3)
	require.Equal(t, map[string]any{"threeDSResult": "eyJ0cmFuc1N0YXR1cyI6IlkifQ=="}, (*calls)[0].body["details"])
	require.Equal(t, map[string]any{"redirectResult": "X6XtfGC3!Y..."}, (*calls)[1].body["details"])
	require.Equal(t, "refund-1", (*calls)[2].body["reference"])

	t.Run("unknown payment is reported as an api error", func(t *testing.T) {
		_, err := gw.Refund(ctx, "UNKNOWN", models.Amount{Value: 500, Currency: models.NOK}, "refund-2", "ShopNO")

		var apiErr *checkout.APIError
		require.ErrorAs(t, err, &apiErr)
		require.Equal(t, uint16(404), apiErr.Status)
	})
}

func TestMakeApplePaySession(t *testing.T) {
	ctx := context.Background()
	req := checkout.ApplePaySessionRequest{
		CountryCode:     "NO",
		Amount:          models.Amount{Value: 1000, Currency: models.NOK},
		Channel:         "Web",
		DisplayName:     "Shop",
		DomainName:      "shop.example",
		MerchantAccount: "ShopNO",
	}

	t.Run("opens a session with the configured merchant id", func(t *testing.T) {
		gw, calls := stubProcessor(t, map[string]string{
			"/v71/paymentMethods":    `{"paymentMethods":[{"type":"scheme"},{"type":"applepay","configuration":{"merchantId":"merchant.example","merchantName":"Shop"}}]}`,
			"/v71/applePay/sessions": `{"data":"eyJlcG9jaFRpbWVzdGFtcCI6MTY..."}`,
		})

		data, err := gw.MakeApplePaySession(ctx, req)
		require.NoError(t, err)
		require.Equal(t, "eyJlcG9jaFRpbWVzdGFtcCI6MTY...", data)
		require.Equal(t, "merchant.example", (*calls)[1].body["merchantIdentifier"])
	})

	t.Run("apple pay not configured", func(t *testing.T) {
		gw, calls := stubProcessor(t, map[string]string{
			"/v71/paymentMethods": `{"paymentMethods":[{"type":"scheme"},{"type":"applepay"}]}`,
		})

		_, err := gw.MakeApplePaySession(ctx, req)
		require.ErrorIs(t, err, checkout.ErrUnsupportedPaymentMethod)
		require.Len(t, *calls, 1)
	})
}

type mockTransport struct {
	mock.Mock
}

func (m *mockTransport) Post(ctx context.Context, url string, body []byte) (int, string, error) {
	args := m.Called(ctx, url, body)
	return args.Int(0), args.String(1), args.Error(2)
}

func TestGatewayTransportFailure(t *testing.T) {
	transport := &mockTransport{}
	netErr := &checkout.NetworkError{URL: "https://checkout-test.adyen.com/v71/payments/details", Err: errors.New("connection refused")}
	transport.On("Post", mock.Anything, "https://checkout-test.adyen.com/v71/payments/details", mock.Anything).Return(0, "", netErr)

	gw, err := checkout.NewGatewayWithTransport(testLogger, &checkout.Config{APIKey: "k"}, transport)
	require.NoError(t, err)

	_, err = gw.SetRedirectResult(context.Background(), "rr")
	require.ErrorIs(t, err, netErr)
	require.True(t, checkout.Retryable(err))
	transport.AssertExpectations(t)
}

func TestGatewayWithoutLogger(t *testing.T) {
	transport := &mockTransport{}
	transport.On("Post", mock.Anything, "https://checkout-test.adyen.com/v71/payments/details", mock.Anything).
		Return(200, `{"resultCode":"Received"}`, nil)

	gw, err := checkout.NewGatewayWithTransport(nil, &checkout.Config{APIKey: "k"}, transport)
	require.NoError(t, err)

	resp, err := gw.SetRedirectResult(context.Background(), "rr")
	require.NoError(t, err)
	require.Equal(t, models.Received{}, resp)
}

func TestHTTPTransport(t *testing.T) {
	t.Run("refuses plain http", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			t.Fatal("request must not be sent")
		}))
		defer srv.Close()

		_, _, err := checkout.NewHTTPTransport("k", srv.Client()).Post(context.Background(), srv.URL+"/v71/payments", []byte(`{}`))

		var netErr *checkout.NetworkError
		require.ErrorAs(t, err, &netErr)
	})

	t.Run("closed server is a network error", func(t *testing.T) {
		srv := httptest.NewTLSServer(http.NotFoundHandler())
		client := srv.Client()
		url := srv.URL
		srv.Close()

		_, _, err := checkout.NewHTTPTransport("k", client).Post(context.Background(), url+"/v71/payments", []byte(`{}`))

		var netErr *checkout.NetworkError
		require.ErrorAs(t, err, &netErr)
		require.True(t, checkout.Retryable(err))
	})
}

func TestConfig(t *testing.T) {
	base, err := checkout.TestEnvironment.BaseURL()
	require.NoError(t, err)
	require.Equal(t, "https://checkout-test.adyen.com", base)

	base, err = checkout.LiveEnvironment("1797a841fbb37ca7-AdyenDemo").BaseURL()
	require.NoError(t, err)
	require.Equal(t, "https://1797a841fbb37ca7-AdyenDemo-checkout-live.adyenpayments.com/checkout", base)

	_, err = checkout.LiveEnvironment("").BaseURL()
	require.Error(t, err)

	_, err = checkout.NewGateway(testLogger, &checkout.Config{})
	require.Error(t, err, "api key is required")

	t.Run("from env", func(t *testing.T) {
		t.Setenv("CHECKOUT_API_KEY", "key")
		t.Setenv("CHECKOUT_ENVIRONMENT", "live")
		t.Setenv("CHECKOUT_LIVE_URL_PREFIX", "prefix")
		t.Setenv("CHECKOUT_TIMEOUT", "15s")

		cfg, err := checkout.ConfigFromEnv()
		require.NoError(t, err)
		require.Equal(t, "key", cfg.APIKey)
		require.Equal(t, checkout.LiveEnvironment("prefix"), cfg.Environment)
		require.Equal(t, "15s", cfg.Timeout.String())

		t.Setenv("CHECKOUT_ENVIRONMENT", "staging")
		_, err = checkout.ConfigFromEnv()
		require.Error(t, err)
	})
}
