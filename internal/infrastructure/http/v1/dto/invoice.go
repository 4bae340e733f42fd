package dto

import (
	"github.com/samber/lo"

	"quickinvoice/internal/domain/invoice"
)

// ShareResponse carries everything the client needs to send an invoice.
type ShareResponse struct {
	OrderNumber    string   `json:"orderNumber"`
	Message        string   `json:"message"`
	ContactLink    string   `json:"contactLink"`
	Filename       string   `json:"filename"`
	InvoiceDataURL string   `json:"invoiceDataUrl"`
	Summary        string   `json:"summary"`
	Warnings       []string `json:"warnings,omitempty"`
}

// FromInvoice converts a generated invoice to the share response.
func FromInvoice(res *invoice.Result) ShareResponse {
	return ShareResponse{
		OrderNumber:    res.Model.OrderNumber,
		Message:        res.Share.Message,
		ContactLink:    res.Share.ContactLink,
		Filename:       res.Filename,
		InvoiceDataURL: res.DataURL,
		Summary:        res.Summary,
		Warnings: lo.Map(res.Warnings, func(w invoice.IntegrityWarning, _ int) string {
			return w.String()
		}),
	}
}
