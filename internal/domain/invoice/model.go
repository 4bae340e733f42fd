// Package invoice builds the logical invoice document for an order and
// coordinates rendering it.
package invoice

import (
	"time"

	"quickinvoice/internal/core/types"
	"quickinvoice/internal/domain/order"
)

// Align is the horizontal alignment of a table column.
type Align string

const (
	AlignLeft   Align = "L"
	AlignCenter Align = "C"
	AlignRight  Align = "R"
)

// DocumentModel is the renderer-independent content of an invoice.
// Every string in it is final display text; renderers only lay it out.
type DocumentModel struct {
	OrderID     string
	OrderNumber string

	// RenderedAt is the only time input; it drives expiry checks and the footer stamp.
	RenderedAt    time.Time
	PremiumActive bool

	// ProductName is the default brand, used for the header and watermark.
	ProductName string

	Header  Header
	Parties Parties
	Table   Table
	Summary Summary
	Notes   *Notes // nil when the order has no notes
	Footer  Footer
}

// Header is the identity block at the top of every page.
type Header struct {
	BusinessName string
	InvoiceLine  string // "Invoice: INV-0001"
	DateLine     string // "Date: 14 Mar 2025"

	Status         order.Status
	StatusLabel    string
	StatusSeverity order.Severity
}

// Parties holds the customer block and the optional seller block.
type Parties struct {
	BillTo Party
	From   *Party // nil unless premium-active with contact details
}

// Party is a heading with display lines beneath it.
type Party struct {
	Heading string
	Lines   []string
}

// Column describes one table column. Width is a fraction of the content width.
type Column struct {
	Title string
	Width float64
	Align Align
}

// Row is one line item, pre-formatted, in input order.
type Row struct {
	Cells []string

	Name      string
	Quantity  int
	UnitPrice types.Money
	LineTotal types.Money
}

// Table is the line-item table.
type Table struct {
	Columns []Column
	Rows    []Row
}

// SummaryLine is a label/amount pair in the totals block.
type SummaryLine struct {
	Label    string
	Amount   types.Money
	Text     string
	Emphasis bool
}

// Summary holds the totals block. Lines are the displayed rows; Total is the
// authoritative persisted total. Computed* are the independent recomputation.
type Summary struct {
	Lines []SummaryLine

	Subtotal    types.Money
	DeliveryFee types.Money
	Total       types.Money

	ComputedSubtotal types.Money
	ComputedTotal    types.Money
}

// Notes is the wrapped free-text block.
type Notes struct {
	Heading string
	Lines   []string
}

// Footer appears at the bottom of every page.
type Footer struct {
	Watermark string // empty when premium-active
	Generated string
}

// HasWatermark reports whether the footer carries product branding.
func (f Footer) HasWatermark() bool {
	return f.Watermark != ""
}

// Filename returns the artifact filename for the given extension: INV-0001.pdf.
func (m *DocumentModel) Filename(ext string) string {
	return m.OrderNumber + "." + ext
}

// Texts returns every display string in the model, keyed by where it appears.
// Renderers use it to check glyph coverage before drawing anything.
func (m *DocumentModel) Texts() []FieldText {
	out := []FieldText{
		{"header.businessName", m.Header.BusinessName},
		{"header.invoice", m.Header.InvoiceLine},
		{"header.date", m.Header.DateLine},
		{"header.status", m.Header.StatusLabel},
	}

	appendParty := func(prefix string, p Party) {
		out = append(out, FieldText{prefix + ".heading", p.Heading})
		for _, l := range p.Lines {
			out = append(out, FieldText{prefix, l})
		}
	}
	appendParty("parties.billTo", m.Parties.BillTo)
	if m.Parties.From != nil {
		appendParty("parties.from", *m.Parties.From)
	}

	for _, c := range m.Table.Columns {
		out = append(out, FieldText{"table.header", c.Title})
	}
	for _, r := range m.Table.Rows {
		for _, c := range r.Cells {
			out = append(out, FieldText{"table.row", c})
		}
	}

	for _, l := range m.Summary.Lines {
		out = append(out, FieldText{"summary", l.Label}, FieldText{"summary", l.Text})
	}

	if m.Notes != nil {
		out = append(out, FieldText{"notes.heading", m.Notes.Heading})
		for _, l := range m.Notes.Lines {
			out = append(out, FieldText{"notes", l})
		}
	}

	out = append(out,
		FieldText{"footer.watermark", m.Footer.Watermark},
		FieldText{"footer.generated", m.Footer.Generated},
	)
	return out
}

// FieldText is a display string and the model field it came from.
type FieldText struct {
	Field string
	Text  string
}
