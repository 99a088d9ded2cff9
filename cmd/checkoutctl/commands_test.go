package main

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func run(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()

	cmd := rootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(args)

	err := cmd.Execute()
	return out.String(), err
}

func TestMinorUnits(t *testing.T) {
	out, err := run(t, "", "minor-units", "12.505", "NOK")
	require.NoError(t, err)
	require.Equal(t, "1250\n", out)

	out, err = run(t, "", "minor-units", "1999", "ISK")
	require.NoError(t, err)
	require.Equal(t, "1999\n", out)

	out, err = run(t, "", "minor-units", "--reverse", "1250", "EUR")
	require.NoError(t, err)
	require.Equal(t, "12.50\n", out)

	_, err = run(t, "", "minor-units", "--", "-1", "SEK")
	require.Error(t, err)

	_, err = run(t, "", "minor-units", "10", "USD")
	require.Error(t, err)
}

func TestDecodeResponse(t *testing.T) {
	out, err := run(t, `{"resultCode":"Refused","refusalReasonCode":"24","pspReference":"X"}`, "decode-response")
	require.NoError(t, err)

	var summary responseSummary
	require.NoError(t, json.Unmarshal([]byte(out), &summary))
	require.Equal(t, "Refused", string(summary.ResultCode))
	require.True(t, summary.Final)
	require.Equal(t, "CVC Declined", summary.RefusalReason)
	require.Empty(t, summary.Action)

	out, err = run(t, `{"resultCode":"RedirectShopper","action":{"paymentMethodType":"vipps","method":"GET","url":"https://vipps.example","type":"redirect"}}`, "decode-response", "-")
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal([]byte(out), &summary))
	require.False(t, summary.Final)
	require.Equal(t, "vipps", summary.Action)

	_, err = run(t, `{"resultCode":"Teleported"}`, "decode-response")
	require.Error(t, err)
}

func TestDecodeWebhook(t *testing.T) {
	body := `{"live":"true","notificationItems":[{"eventCode":"AUTHORISATION","additionalData":{"hmacSignature":"s"},"success":"true","eventDate":"2023-04-17T10:02:55+02:00","merchantAccountCode":"ShopDK","pspReference":"P","merchantReference":"R","amount":{"value":995,"currency":"DKK"}},{"eventCode":"CAPTURE"}]}`

	out, err := run(t, body, "decode-webhook")
	require.NoError(t, err)

	var decoded struct {
		Live  bool          `json:"live"`
		Items []itemSummary `json:"items"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &decoded))
	require.True(t, decoded.Live)
	require.Len(t, decoded.Items, 2)
	require.Equal(t, "P", decoded.Items[0].PSPReference)
	require.Equal(t, "9.95 DKK", decoded.Items[0].Amount)
	require.True(t, *decoded.Items[0].Success)
	require.Equal(t, "CAPTURE", string(decoded.Items[1].EventCode))
	require.Nil(t, decoded.Items[1].Success)
}

func TestDetails_NeedsResult(t *testing.T) {
	_, err := run(t, "", "details")
	require.ErrorContains(t, err, "--redirect-result")
}
