package webhook_test

import (
	"strings"
	"testing"

	"github.com/alovak/cardflow-checkout/checkout/models"
	"github.com/alovak/cardflow-checkout/checkout/webhook"
	"github.com/stretchr/testify/require"
)

const authorisationItem = `{
	"eventCode": "AUTHORISATION",
	"additionalData": {"hmacSignature": "coqCmt/IZ4E3CzPvMY8zTjQVL5hYJUiBRg8UU+iCWo0="},
	"success": "true",
	"eventDate": "2023-04-17T10:02:55+02:00",
	"merchantAccountCode": "ShopNO",
	"pspReference": "X",
	"merchantReference": "Y",
	"amount": {"value": 1000, "currency": "EUR"},
	"paymentMethod": "visa"
}`

func TestDecode(t *testing.T) {
	w, err := webhook.Decode([]byte(`{"live":"false","notificationItems":[` + authorisationItem + `,{"eventCode":"REFUND","pspReference":"Z"}]}`))
	require.NoError(t, err)
	require.Equal(t, "false", w.Live)
	require.False(t, w.IsLive())
	require.Len(t, w.NotificationItems, 2)

	require.Equal(t, webhook.Authorisation{
		AdditionalData:      webhook.AdditionalData{HMACSignature: "coqCmt/IZ4E3CzPvMY8zTjQVL5hYJUiBRg8UU+iCWo0="},
		Success:             "true",
		EventDate:           "2023-04-17T10:02:55+02:00",
		MerchantAccountCode: "ShopNO",
		PSPReference:        "X",
		MerchantReference:   "Y",
		Amount:              models.Amount{Value: 1000, Currency: models.EUR},
	}, w.NotificationItems[0])
	require.True(t, w.NotificationItems[0].(webhook.Authorisation).Succeeded())

	require.Equal(t, webhook.Marker{Code: webhook.EventRefund}, w.NotificationItems[1])
	require.Equal(t, webhook.EventRefund, w.NotificationItems[1].EventCode())
}

func TestDecode_WrappedItems(t *testing.T) {
	w, err := webhook.Decode([]byte(`{"live":"true","notificationItems":[{"NotificationRequestItem":` + authorisationItem + `}]}`))
	require.NoError(t, err)
	require.True(t, w.IsLive())
	require.Equal(t, webhook.EventAuthorisation, w.NotificationItems[0].EventCode())
}

func TestDecode_KeysAreCaseSensitive(t *testing.T) {
	item := strings.TrimSuffix(authorisationItem, "}") + `, "PSPReference": "Z", "MerchantReference": "W"}`

	w, err := webhook.Decode([]byte(`{"live":"false","notificationItems":[` + item + `]}`))
	require.NoError(t, err)

	a := w.NotificationItems[0].(webhook.Authorisation)
	require.Equal(t, "X", a.PSPReference)
	require.Equal(t, "Y", a.MerchantReference)
}

func TestDecode_EveryMarker(t *testing.T) {
	codes := webhook.EventCodes()
	require.Len(t, codes, 34)

	for _, code := range codes {
		if code == webhook.EventAuthorisation {
			continue
		}
		item, err := webhook.DecodeItem([]byte(`{"eventCode":"` + string(code) + `"}`))
		require.NoError(t, err, code)
		require.Equal(t, webhook.Marker{Code: code}, item)
	}
}

func TestDecode_Failures(t *testing.T) {
	t.Run("unknown event code fails the item", func(t *testing.T) {
		_, err := webhook.Decode([]byte(`{"live":"false","notificationItems":[{"eventCode":"REFUND"},{"eventCode":"DISPUTE_OPENED"}]}`))

		var itemErr *webhook.ItemError
		require.ErrorAs(t, err, &itemErr)
		require.Equal(t, 1, itemErr.Index)

		var unknown *models.UnknownVariantError
		require.ErrorAs(t, err, &unknown)
		require.Equal(t, "DISPUTE_OPENED", unknown.Tag)
		require.Equal(t, "eventCode", unknown.Field)
	})

	t.Run("event codes are case sensitive", func(t *testing.T) {
		_, err := webhook.DecodeItem([]byte(`{"eventCode":"Authorisation"}`))
		require.True(t, models.IsUnknown(err))
	})

	malformed := map[string]string{
		"not json":                        `live=false`,
		"missing live":                    `{"notificationItems":[]}`,
		"missing items":                   `{"live":"false"}`,
		"item missing event code":         `{"live":"false","notificationItems":[{"pspReference":"X"}]}`,
		"null event code":                 `{"live":"false","notificationItems":[{"eventCode":null}]}`,
		"numeric event code":              `{"live":"false","notificationItems":[{"eventCode":1}]}`,
		"authorisation without amount":    `{"live":"false","notificationItems":[{"eventCode":"AUTHORISATION","additionalData":{"hmacSignature":"s"},"success":"true","eventDate":"d","merchantAccountCode":"m","pspReference":"X","merchantReference":"Y"}]}`,
		"authorisation without signature": `{"live":"false","notificationItems":[{"eventCode":"AUTHORISATION","additionalData":{},"success":"true","eventDate":"d","merchantAccountCode":"m","pspReference":"X","merchantReference":"Y","amount":{"value":1,"currency":"EUR"}}]}`,
		"live with wrong case":            `{"Live":"false","notificationItems":[]}`,
		"authorisation with bad amount":   `{"live":"false","notificationItems":[{"eventCode":"AUTHORISATION","additionalData":{"hmacSignature":"s"},"success":"true","eventDate":"d","merchantAccountCode":"m","pspReference":"X","merchantReference":"Y","amount":{"value":1}}]}`,
	}
	for name, body := range malformed {
		t.Run(name, func(t *testing.T) {
			_, err := webhook.Decode([]byte(body))

			var mf *models.MalformedFieldError
			require.ErrorAs(t, err, &mf)
			require.False(t, models.IsUnknown(err))
		})
	}
}
