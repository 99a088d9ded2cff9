package receiver_test

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	checkout "github.com/alovak/cardflow-checkout/checkout/models"
	"github.com/alovak/cardflow-checkout/receiver"
	"github.com/alovak/cardflow-checkout/receiver/models"
	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"
)

const delivery = `{
	"live": "false",
	"notificationItems": [
		{"NotificationRequestItem": {
			"eventCode": "AUTHORISATION",
			"additionalData": {"hmacSignature": "coqCmt/IZ4E3CzPvMY8zTjQVL5hYJUiBRg8UU+iCWo0="},
			"success": "true",
			"eventDate": "2023-04-17T10:02:55+02:00",
			"merchantAccountCode": "ShopNO",
			"pspReference": "8816817891580351",
			"merchantReference": "order-1",
			"amount": {"value": 12500, "currency": "NOK"}
		}},
		{"NotificationRequestItem": {"eventCode": "REPORT_AVAILABLE"}}
	]
}`

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newRouter() chi.Router {
	logger := discardLogger()
	svc := receiver.NewService(logger, receiver.NewRepository(), nil)

	router := chi.NewRouter()
	receiver.NewAPI(logger, svc).AppendRoutes(router)
	return router
}

func post(router http.Handler, body string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/notifications/", bytes.NewBufferString(body))
	router.ServeHTTP(w, req)
	return w
}

func TestAPI(t *testing.T) {
	router := newRouter()

	t.Run("accept delivery", func(t *testing.T) {
		w := post(router, delivery)

		require.Equal(t, http.StatusOK, w.Code)
		require.Equal(t, "[accepted]", w.Body.String())
	})

	t.Run("redelivery is accepted again", func(t *testing.T) {
		w := post(router, delivery)

		require.Equal(t, http.StatusOK, w.Code)
		require.Equal(t, "[accepted]", w.Body.String())
	})

	t.Run("list notifications of a payment", func(t *testing.T) {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/notifications/8816817891580351", nil)
		router.ServeHTTP(w, req)

		require.Equal(t, http.StatusOK, w.Code)

		var notifications []models.Notification
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &notifications))

		// the redelivered item was not stored twice
		require.Len(t, notifications, 1)
		n := notifications[0]
		require.NotEmpty(t, n.ID)
		require.Equal(t, "AUTHORISATION", n.EventCode)
		require.Equal(t, "order-1", n.MerchantReference)
		require.Equal(t, "ShopNO", n.MerchantAccount)
		require.NotNil(t, n.Success)
		require.True(t, *n.Success)
		require.Equal(t, &checkout.Amount{Value: 12500, Currency: checkout.NOK}, n.Amount)
		require.False(t, n.Live)
	})

	t.Run("unknown payment", func(t *testing.T) {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/notifications/unknown", nil)
		router.ServeHTTP(w, req)

		require.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestAPI_RejectsMalformedDelivery(t *testing.T) {
	router := newRouter()

	for name, body := range map[string]string{
		"not json":          `{`,
		"missing items":     `{"live":"false"}`,
		"unknown event":     `{"live":"false","notificationItems":[{"eventCode":"SOMETHING_NEW"}]}`,
		"authorisation gap": `{"live":"false","notificationItems":[{"eventCode":"AUTHORISATION","pspReference":"X"}]}`,
	} {
		t.Run(name, func(t *testing.T) {
			w := post(router, body)

			require.Equal(t, http.StatusBadRequest, w.Code)
			require.NotEqual(t, "[accepted]", w.Body.String())
		})
	}
}
