// Package share composes the customer-facing invoice message and chat link.
package share

import (
	"fmt"
	"net/url"
	"strings"

	"quickinvoice/internal/core/types"
	"quickinvoice/internal/domain/order"
)

// ContactBaseURL is the chat deep-link scheme; the normalized phone follows it.
const ContactBaseURL = "https://wa.me/"

// Share is a ready-to-send message and the link that opens it for the customer.
type Share struct {
	Message     string `json:"message"`
	ContactLink string `json:"contactLink"`
}

// Builder formats share messages for one deployment.
type Builder struct {
	// BaseURL is the public app origin used for the order link, without trailing slash.
	BaseURL  string
	Currency types.Currency
}

// NewBuilder creates a Builder.
func NewBuilder(baseURL string, currency types.Currency) *Builder {
	if currency.Symbol == "" {
		currency = types.DefaultCurrency()
	}
	return &Builder{
		BaseURL:  strings.TrimRight(baseURL, "/"),
		Currency: currency,
	}
}

// Build never fails; an empty or malformed phone yields a link without a recipient.
func (b *Builder) Build(o *order.Order) Share {
	msg := b.Message(o)
	return Share{
		Message:     msg,
		ContactLink: ContactLink(o.CustomerPhone, msg),
	}
}

// Message renders the invoice message template.
func (b *Builder) Message(o *order.Order) string {
	return fmt.Sprintf(
		"*Invoice #%s*\n\nHi %s,\n\nYour invoice is ready! Total: %s\n\nView your invoice: %s\n\nThank you for your business!",
		o.OrderNumber,
		o.CustomerName,
		b.Currency.Format(o.Total),
		b.OrderURL(o),
	)
}

// OrderURL is the reference link to the order in the app.
func (b *Builder) OrderURL(o *order.Order) string {
	return b.BaseURL + "/orders/" + url.PathEscape(o.ID.String())
}

// ContactLink composes https://wa.me/<digits>?text=<message>.
// Spaces are encoded as %20, not '+'.
func ContactLink(phone, message string) string {
	text := strings.ReplaceAll(url.QueryEscape(message), "+", "%20")
	return ContactBaseURL + NormalizePhone(phone) + "?text=" + text
}

// NormalizePhone keeps only ASCII decimal digits. It is idempotent.
func NormalizePhone(phone string) string {
	var b strings.Builder
	b.Grow(len(phone))
	for i := 0; i < len(phone); i++ {
		if c := phone[i]; c >= '0' && c <= '9' {
			b.WriteByte(c)
		}
	}
	return b.String()
}
