package share

import (
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"quickinvoice/internal/core/id"
	"quickinvoice/internal/core/types"
	"quickinvoice/internal/domain/order"
)

func TestNormalizePhone(t *testing.T) {
	tests := map[string]string{
		"024-412 3456":      "0244123456",
		"+233 (24) 412-3456": "233244123456",
		"0244123456":        "0244123456",
		"":                  "",
		"call me":           "",
		"٠١٢ 024":           "024",
		"024\t412\n3456":    "0244123456",
	}

	for in, want := range tests {
		got := NormalizePhone(in)
		assert.Equal(t, want, got, "input %q", in)
		assert.Equal(t, got, NormalizePhone(got), "idempotent for %q", in)
	}
}

func testOrder() *order.Order {
	o := &order.Order{
		OrderNumber:   "INV-0007",
		CustomerName:  "Kofi Mensah",
		CustomerPhone: "024-412 3456",
		Total:         types.MustMoney("65"),
	}
	o.ID = id.MustParse("0194f1c2-7b3a-7c00-8000-000000000001")
	return o
}

func TestBuilder_Message(t *testing.T) {
	b := NewBuilder("https://app.quickinvoice.gh/", types.DefaultCurrency())

	msg := b.Message(testOrder())

	assert.Equal(t,
		"*Invoice #INV-0007*\n\nHi Kofi Mensah,\n\nYour invoice is ready! Total: GH¢65.00\n\n"+
			"View your invoice: https://app.quickinvoice.gh/orders/0194f1c2-7b3a-7c00-8000-000000000001\n\n"+
			"Thank you for your business!",
		msg)
}

func TestBuilder_Build(t *testing.T) {
	b := NewBuilder("https://app.quickinvoice.gh", types.Currency{Symbol: "GH₵"})
	o := testOrder()

	s := b.Build(o)

	require.True(t, strings.HasPrefix(s.ContactLink, "https://wa.me/0244123456?text="))
	assert.NotContains(t, s.ContactLink, " ")
	assert.NotContains(t, s.ContactLink, "+")
	assert.Contains(t, s.ContactLink, "%20")

	u, err := url.Parse(s.ContactLink)
	require.NoError(t, err)
	assert.Equal(t, "wa.me", u.Host)
	assert.Equal(t, "/0244123456", u.Path)
	assert.Equal(t, s.Message, u.Query().Get("text"))
	assert.Contains(t, s.Message, "GH₵65.00")
}

func TestContactLink_EscapesReservedCharacters(t *testing.T) {
	link := ContactLink("0244123456", "Tom & Jerry: 1+1=2?")

	u, err := url.Parse(link)
	require.NoError(t, err)
	assert.Equal(t, "Tom & Jerry: 1+1=2?", u.Query().Get("text"))
}

func TestContactLink_EmptyPhone(t *testing.T) {
	assert.Equal(t, "https://wa.me/?text=hi", ContactLink("n/a", "hi"))
}
