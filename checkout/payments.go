package checkout

import (
	"context"
	"errors"

	"github.com/alovak/cardflow-checkout/checkout/models"
)

const (
	shopperInteractionEcommerce = "Ecommerce"
	shopperInteractionContAuth  = "ContAuth"
	unscheduledCardOnFile       = "UnscheduledCardOnFile"
)

type threeDSRequestData struct {
	NativeThreeDS string `json:"nativeThreeDS"`
}

type authenticationData struct {
	ThreeDSRequestData    threeDSRequestData `json:"threeDSRequestData"`
	AttemptAuthentication string             `json:"attemptAuthentication"`
}

// nativeThreeDS asks for native 3-D Secure 2 when preferred is set.
func nativeThreeDS(preferred bool) *authenticationData {
	if !preferred {
		return nil
	}
	return &authenticationData{
		ThreeDSRequestData:    threeDSRequestData{NativeThreeDS: "preferred"},
		AttemptAuthentication: "always",
	}
}

type paymentMethod struct {
	Type                  string `json:"type"`
	ApplePayToken         string `json:"applePayToken,omitempty"`
	GooglePayToken        string `json:"googlePayToken,omitempty"`
	StoredPaymentMethodID string `json:"storedPaymentMethodId,omitempty"`
	EncryptedCardNumber   string `json:"encryptedCardNumber,omitempty"`
	EncryptedExpiryMonth  string `json:"encryptedExpiryMonth,omitempty"`
	EncryptedExpiryYear   string `json:"encryptedExpiryYear,omitempty"`
	EncryptedSecurityCode string `json:"encryptedSecurityCode,omitempty"`
	HolderName            string `json:"holderName,omitempty"`
	TelephoneNumber       string `json:"telephoneNumber,omitempty"`
}

type paymentRequest struct {
	Amount                   models.Amount       `json:"amount"`
	Reference                string              `json:"reference"`
	PaymentMethod            paymentMethod       `json:"paymentMethod"`
	AuthenticationData       *authenticationData `json:"authenticationData,omitempty"`
	ShopperReference         string              `json:"shopperReference,omitempty"`
	ShopperInteraction       string              `json:"shopperInteraction,omitempty"`
	RecurringProcessingModel string              `json:"recurringProcessingModel,omitempty"`
	StorePaymentMethod       bool                `json:"storePaymentMethod,omitempty"`
	ReturnURL                string              `json:"returnUrl"`
	MerchantAccount          string              `json:"merchantAccount"`
	ShopperEmail             string              `json:"shopperEmail,omitempty"`
	ShopperIP                string              `json:"shopperIP,omitempty"`
	Channel                  string              `json:"channel,omitempty"`
	Origin                   string              `json:"origin,omitempty"`
	BrowserInfo              *models.BrowserInfo `json:"browserInfo,omitempty"`
}

func (g *Gateway) pay(ctx context.Context, req paymentRequest) (models.Response, error) {
	if err := requireReference(req.Reference, req.MerchantAccount); err != nil {
		return nil, err
	}
	return g.postPayment(ctx, "/payments", req)
}

type ApplePayPayment struct {
	Amount          models.Amount
	ApplePayToken   string
	Reference       string
	ReturnURL       string
	MerchantAccount string
}

// PayWithApplePay charges an Apple Pay token.
// https://docs.adyen.com/payment-methods/apple-pay/api-only/
func (g *Gateway) PayWithApplePay(ctx context.Context, p ApplePayPayment) (models.Response, error) {
	return g.pay(ctx, paymentRequest{
		Amount:          p.Amount,
		Reference:       p.Reference,
		PaymentMethod:   paymentMethod{Type: "applepay", ApplePayToken: p.ApplePayToken},
		ReturnURL:       p.ReturnURL,
		MerchantAccount: p.MerchantAccount,
	})
}

type GooglePayPayment struct {
	Amount           models.Amount
	GooglePayToken   string
	Reference        string
	ShopperReference string
	ReturnURL        string
	MerchantAccount  string

	Channel      string
	BrowserInfo  *models.BrowserInfo
	ShopperEmail string
	ShopperIP    string
	Origin       string
	// ThreeDSPreferred requests native 3-D Secure 2 authentication.
	ThreeDSPreferred bool
}

// PayWithGooglePay charges a Google Pay token.
// https://docs.adyen.com/payment-methods/google-pay/api-only/
func (g *Gateway) PayWithGooglePay(ctx context.Context, p GooglePayPayment) (models.Response, error) {
	return g.pay(ctx, paymentRequest{
		Amount:             p.Amount,
		Reference:          p.Reference,
		PaymentMethod:      paymentMethod{Type: "googlepay", GooglePayToken: p.GooglePayToken},
		AuthenticationData: nativeThreeDS(p.ThreeDSPreferred),
		ShopperReference:   p.ShopperReference,
		ShopperInteraction: shopperInteractionEcommerce,
		ReturnURL:          p.ReturnURL,
		MerchantAccount:    p.MerchantAccount,
		ShopperEmail:       p.ShopperEmail,
		ShopperIP:          p.ShopperIP,
		Channel:            p.Channel,
		Origin:             p.Origin,
		BrowserInfo:        p.BrowserInfo,
	})
}

type CardOnFilePayment struct {
	Amount                models.Amount
	Reference             string
	ShopperReference      string
	StoredPaymentMethodID string
	ReturnURL             string
	MerchantAccount       string
}

// PayWithCardOnFile charges a stored card without the shopper present.
func (g *Gateway) PayWithCardOnFile(ctx context.Context, p CardOnFilePayment) (models.Response, error) {
	if p.StoredPaymentMethodID == "" {
		return nil, errors.New("stored payment method id is required")
	}
	return g.pay(ctx, paymentRequest{
		Amount:                   p.Amount,
		Reference:                p.Reference,
		PaymentMethod:            paymentMethod{Type: "scheme", StoredPaymentMethodID: p.StoredPaymentMethodID},
		ShopperReference:         p.ShopperReference,
		ShopperInteraction:       shopperInteractionContAuth,
		RecurringProcessingModel: unscheduledCardOnFile,
		ReturnURL:                p.ReturnURL,
		MerchantAccount:          p.MerchantAccount,
	})
}

// EncryptedCard holds card fields encrypted by the processor's client side
// library. Raw card numbers never pass through this package.
type EncryptedCard struct {
	Number       string
	ExpiryMonth  string
	ExpiryYear   string
	SecurityCode string
	HolderName   string
}

type NewCardOnFilePayment struct {
	Amount           models.Amount
	Reference        string
	ShopperReference string
	Card             EncryptedCard
	ReturnURL        string
	MerchantAccount  string

	Channel          string
	Origin           string
	BrowserInfo      *models.BrowserInfo
	ThreeDSPreferred bool
}

// PayWithNewCardOnFile charges a new card and asks the processor to store it.
// The stored card is returned when the payment is Authorised and the
// response carries a recurring detail reference; otherwise it is nil.
func (g *Gateway) PayWithNewCardOnFile(ctx context.Context, p NewCardOnFilePayment) (models.Response, *models.CardOnFile, error) {
	resp, err := g.pay(ctx, paymentRequest{
		Amount:    p.Amount,
		Reference: p.Reference,
		PaymentMethod: paymentMethod{
			Type:                  "scheme",
			EncryptedCardNumber:   p.Card.Number,
			EncryptedExpiryMonth:  p.Card.ExpiryMonth,
			EncryptedExpiryYear:   p.Card.ExpiryYear,
			EncryptedSecurityCode: p.Card.SecurityCode,
			HolderName:            p.Card.HolderName,
		},
		AuthenticationData:       nativeThreeDS(p.ThreeDSPreferred),
		ShopperReference:         p.ShopperReference,
		ShopperInteraction:       shopperInteractionEcommerce,
		RecurringProcessingModel: unscheduledCardOnFile,
		StorePaymentMethod:       true,
		ReturnURL:                p.ReturnURL,
		MerchantAccount:          p.MerchantAccount,
		Channel:                  p.Channel,
		Origin:                   p.Origin,
		BrowserInfo:              p.BrowserInfo,
	})
	if err != nil {
		return nil, nil, err
	}

	var card *models.CardOnFile
	if authorised, ok := resp.(models.Authorised); ok {
		card = models.CardOnFileFrom(authorised.AdditionalData)
	}
	return resp, card, nil
}

type SwishPayment struct {
	Amount          models.Amount
	Reference       string
	ReturnURL       string
	MerchantAccount string
}

// PayWithSwish starts a Swish payment; the result is Pending with a QR code action.
func (g *Gateway) PayWithSwish(ctx context.Context, p SwishPayment) (models.Response, error) {
	return g.pay(ctx, paymentRequest{
		Amount:          p.Amount,
		Reference:       p.Reference,
		PaymentMethod:   paymentMethod{Type: "swish"},
		ReturnURL:       p.ReturnURL,
		MerchantAccount: p.MerchantAccount,
	})
}

type VippsPayment struct {
	Amount          models.Amount
	Reference       string
	ReturnURL       string
	MerchantAccount string
	Channel         string
	TelephoneNumber string
}

// PayWithVipps starts a Vipps payment; the result redirects the shopper to the Vipps app.
// https://docs.adyen.com/payment-methods/vipps/api-only/
func (g *Gateway) PayWithVipps(ctx context.Context, p VippsPayment) (models.Response, error) {
	return g.pay(ctx, paymentRequest{
		Amount:          p.Amount,
		Reference:       p.Reference,
		PaymentMethod:   paymentMethod{Type: "vipps", TelephoneNumber: p.TelephoneNumber},
		ReturnURL:       p.ReturnURL,
		MerchantAccount: p.MerchantAccount,
		Channel:         p.Channel,
	})
}
