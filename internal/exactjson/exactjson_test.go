package exactjson_test

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/alovak/cardflow-checkout/internal/exactjson"
	"github.com/stretchr/testify/require"
)

type upper string

func (u *upper) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	*u = upper(strings.ToUpper(s))
	return nil
}

type Base struct {
	ID string `json:"id"`
}

type line struct {
	SKU string `json:"sku"`
}

type order struct {
	Base
	TermURL  *string `json:"TermUrl,omitempty"`
	Customer struct {
		Name string `json:"name"`
	} `json:"customer"`
	Lines   []line `json:"lines"`
	Note    upper  `json:"note"`
	Skipped string `json:"-"`
	Plain   string
}

func TestUnmarshal(t *testing.T) {
	var o order
	err := exactjson.Unmarshal([]byte(`{
		"id": "1",
		"ID": "2",
		"termurl": "https://shop.example",
		"customer": {"NAME": "x"},
		"lines": [{"sku": "a"}, {"SKU": "b"}],
		"note": "hi",
		"Skipped": "no",
		"plain": "lower",
		"Plain": "exact"
	}`), &o)
	require.NoError(t, err)

	require.Equal(t, "1", o.ID)
	require.Nil(t, o.TermURL)
	require.Empty(t, o.Customer.Name)
	require.Equal(t, []line{{SKU: "a"}, {}}, o.Lines)
	require.Equal(t, upper("HI"), o.Note)
	require.Empty(t, o.Skipped)
	require.Equal(t, "exact", o.Plain)
}

func TestUnmarshal_ExactKeysStillBind(t *testing.T) {
	var o order
	require.NoError(t, exactjson.Unmarshal([]byte(`{"TermUrl":"u","customer":{"name":"n"}}`), &o))
	require.Equal(t, "u", *o.TermURL)
	require.Equal(t, "n", o.Customer.Name)
}

func TestUnmarshal_TypeErrorsSurface(t *testing.T) {
	var o order
	err := exactjson.Unmarshal([]byte(`{"lines":"oops"}`), &o)

	var te *json.UnmarshalTypeError
	require.ErrorAs(t, err, &te)
	require.Equal(t, "lines", te.Field)

	require.Error(t, exactjson.Unmarshal([]byte(`{`), &o))
}
