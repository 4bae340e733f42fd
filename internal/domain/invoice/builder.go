package invoice

import (
	"fmt"
	"strconv"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/mitchellh/go-wordwrap"
	"github.com/samber/lo"

	"quickinvoice/internal/core/types"
	"quickinvoice/internal/domain/order"
	"quickinvoice/internal/domain/seller"
)

// Options tunes the display text of built documents.
type Options struct {
	// ProductName is the default business name and the watermark brand.
	ProductName string

	// FallbackSellerName is shown in the From block when the seller has no business name.
	FallbackSellerName string

	Currency types.Currency

	// NotesWidth is the column width, in characters, notes are wrapped to.
	NotesWidth uint

	DateLayout      string
	TimestampLayout string
	Location        *time.Location
}

// DefaultOptions returns the stock QuickInvoice layout text.
func DefaultOptions() Options {
	return Options{
		ProductName:        "QuickInvoice GH",
		FallbackSellerName: "My Business",
		Currency:           types.DefaultCurrency(),
		NotesWidth:         90,
		DateLayout:         "02 Jan 2006",
		TimestampLayout:    "02 Jan 2006 15:04 MST",
		Location:           time.UTC,
	}
}

func (o Options) withDefaults() Options {
	def := DefaultOptions()
	if o.ProductName == "" {
		o.ProductName = def.ProductName
	}
	if o.FallbackSellerName == "" {
		o.FallbackSellerName = def.FallbackSellerName
	}
	if o.Currency.Symbol == "" {
		o.Currency = def.Currency
	}
	if o.NotesWidth == 0 {
		o.NotesWidth = def.NotesWidth
	}
	if o.DateLayout == "" {
		o.DateLayout = def.DateLayout
	}
	if o.TimestampLayout == "" {
		o.TimestampLayout = def.TimestampLayout
	}
	if o.Location == nil {
		o.Location = def.Location
	}
	return o
}

// Column proportions of the item table: name, quantity, unit price, line total.
var tableColumns = []Column{
	{Title: "Item", Width: 0.44, Align: AlignLeft},
	{Title: "Qty", Width: 0.14, Align: AlignCenter},
	{Title: "Price", Width: 0.21, Align: AlignRight},
	{Title: "Total", Width: 0.21, Align: AlignRight},
}

// Build assembles the invoice for o. It performs no I/O and reads no clock:
// the same inputs always yield the same model.
//
// The persisted subtotal and total are authoritative. When they disagree with
// the recomputation from items and delivery fee the model still uses them and
// the mismatch is returned as warnings.
func Build(o *order.Order, s *seller.Seller, renderedAt time.Time, opts Options) (*DocumentModel, []IntegrityWarning) {
	opts = opts.withDefaults()
	money := opts.Currency.Format
	premium := s.IsPremiumActive(renderedAt)

	m := &DocumentModel{
		OrderID:       o.ID.String(),
		OrderNumber:   o.OrderNumber,
		RenderedAt:    renderedAt,
		PremiumActive: premium,
		ProductName:   opts.ProductName,
	}

	// Header
	businessName := opts.ProductName
	if premium && strings.TrimSpace(s.BusinessName) != "" {
		businessName = strings.TrimSpace(s.BusinessName)
	}
	m.Header = Header{
		BusinessName:   businessName,
		InvoiceLine:    "Invoice: " + o.OrderNumber,
		DateLine:       "Date: " + o.CreatedAt.In(opts.Location).Format(opts.DateLayout),
		Status:         o.Status,
		StatusLabel:    o.Status.Label(),
		StatusSeverity: o.Status.Severity(),
	}

	// Parties
	m.Parties.BillTo = Party{
		Heading: "Bill To:",
		Lines:   []string{o.CustomerName, o.CustomerPhone},
	}
	if premium && s.HasContact() {
		from := Party{
			Heading: "From:",
			Lines:   []string{lo.CoalesceOrEmpty(strings.TrimSpace(s.BusinessName), opts.FallbackSellerName)},
		}
		if phone := strings.TrimSpace(s.Phone); phone != "" {
			from.Lines = append(from.Lines, phone)
		}
		if momo := strings.TrimSpace(s.MobileMoneyNumber); momo != "" {
			from.Lines = append(from.Lines, "MoMo: "+momo)
		}
		m.Parties.From = &from
	}

	// Table
	m.Table = Table{
		Columns: append([]Column(nil), tableColumns...),
		Rows: lo.Map(o.Items, func(item order.LineItem, _ int) Row {
			lineTotal := item.Total()
			return Row{
				Cells: []string{
					item.Name,
					strconv.Itoa(item.Quantity),
					money(item.UnitPrice),
					money(lineTotal),
				},
				Name:      item.Name,
				Quantity:  item.Quantity,
				UnitPrice: item.UnitPrice,
				LineTotal: lineTotal,
			}
		}),
	}

	// Summary
	computedSubtotal := types.Round2(types.Sum(lo.Map(m.Table.Rows, func(r Row, _ int) types.Money {
		return r.LineTotal
	})...))
	computedTotal := order.ComputeTotal(computedSubtotal, o.DeliveryFee)

	m.Summary = Summary{
		Subtotal:         o.Subtotal,
		DeliveryFee:      o.DeliveryFee,
		Total:            o.Total,
		ComputedSubtotal: computedSubtotal,
		ComputedTotal:    computedTotal,
	}
	m.Summary.Lines = append(m.Summary.Lines, SummaryLine{
		Label: "Subtotal:", Amount: o.Subtotal, Text: money(o.Subtotal),
	})
	if o.DeliveryFee.IsPositive() {
		m.Summary.Lines = append(m.Summary.Lines, SummaryLine{
			Label: "Delivery Fee:", Amount: o.DeliveryFee, Text: money(o.DeliveryFee),
		})
	}
	m.Summary.Lines = append(m.Summary.Lines, SummaryLine{
		Label: "TOTAL:", Amount: o.Total, Text: money(o.Total), Emphasis: true,
	})

	// Notes
	if strings.TrimSpace(o.Notes) != "" {
		m.Notes = &Notes{
			Heading: "Notes:",
			Lines:   WrapNotes(o.Notes, opts.NotesWidth),
		}
	}

	// Footer
	if !premium {
		m.Footer.Watermark = "Created with " + opts.ProductName
	}
	m.Footer.Generated = "Generated on " + renderedAt.In(opts.Location).Format(opts.TimestampLayout)

	return m, checkIntegrity(o, computedSubtotal, computedTotal)
}

// WrapNotes wraps text at width characters. Words longer than width are kept whole.
func WrapNotes(text string, width uint) []string {
	return lo.Map(wrapNotes(text, width), func(l noteLine, _ int) string { return l.Text })
}

// noteLine is one wrapped line and the characters its trailing break consumed.
type noteLine struct {
	Text  string
	Break string
}

// wrapNotes walks text against the go-wordwrap output to recover the
// whitespace dropped at each break. Concatenating Text+Break of every line
// reproduces text byte for byte.
func wrapNotes(text string, width uint) []noteLine {
	wrapped := wordwrap.WrapString(strings.ReplaceAll(text, "\r\n", "\n"), width)

	var (
		lines []noteLine
		line  strings.Builder
		i     int
	)
	for j := 0; j < len(wrapped); j++ {
		c := wrapped[j]
		if c != '\n' {
			if i >= len(text) || text[i] != c {
				return splitLines(text)
			}
			line.WriteByte(c)
			i++
			continue
		}

		// A break: the whitespace run it replaced, plus the newline if it was one.
		start := i
		for i < len(text) {
			r, size := utf8.DecodeRuneInString(text[i:])
			if r == '\n' || r == '\u00a0' || !unicode.IsSpace(r) {
				break
			}
			i += size
		}
		if i < len(text) && text[i] == '\n' {
			i++
		}
		lines = append(lines, noteLine{Text: line.String(), Break: text[start:i]})
		line.Reset()
	}
	return append(lines, noteLine{Text: line.String(), Break: text[i:]})
}

// splitLines breaks only at the newlines already in text.
func splitLines(text string) []noteLine {
	parts := strings.Split(text, "\n")
	return lo.Map(parts, func(p string, idx int) noteLine {
		if idx == len(parts)-1 {
			return noteLine{Text: p}
		}
		return noteLine{Text: p, Break: "\n"}
	})
}

func checkIntegrity(o *order.Order, computedSubtotal, computedTotal types.Money) []IntegrityWarning {
	var warnings []IntegrityWarning

	if !o.Subtotal.Equal(computedSubtotal) {
		warnings = append(warnings, IntegrityWarning{
			OrderNumber: o.OrderNumber,
			Field:       "subtotal",
			Persisted:   o.Subtotal,
			Computed:    computedSubtotal,
		})
	}
	if !o.Total.Equal(computedTotal) {
		warnings = append(warnings, IntegrityWarning{
			OrderNumber: o.OrderNumber,
			Field:       "total",
			Persisted:   o.Total,
			Computed:    computedTotal,
		})
	}

	return warnings
}

// IntegrityWarning reports a persisted amount that disagrees with its recomputation.
// It is not a rendering failure.
type IntegrityWarning struct {
	OrderNumber string      `json:"orderNumber"`
	Field       string      `json:"field"`
	Persisted   types.Money `json:"persisted"`
	Computed    types.Money `json:"computed"`
}

func (w IntegrityWarning) String() string {
	return fmt.Sprintf("%s: persisted %s %s differs from computed %s",
		w.OrderNumber, w.Field, w.Persisted.StringFixed(2), w.Computed.StringFixed(2))
}
