package render

import (
	"errors"
	"fmt"
	"strings"

	"quickinvoice/internal/domain/invoice"
)

// TextRenderer renders the plain-text invoice summary used in chat messages.
type TextRenderer struct{}

// NewTextRenderer creates a TextRenderer.
func NewTextRenderer() *TextRenderer { return &TextRenderer{} }

// Render implements invoice.SummaryRenderer.
func (TextRenderer) Render(m *invoice.DocumentModel) (string, error) {
	if m == nil {
		return "", errors.New("render: nil document model")
	}

	var b strings.Builder
	line := func(s string) {
		b.WriteString(s)
		b.WriteByte('\n')
	}

	line(m.Header.BusinessName)
	line(m.Header.InvoiceLine)
	line(m.Header.DateLine)
	line("Status: " + m.Header.StatusLabel)
	line("")

	line(partyLine(m.Parties.BillTo))
	if m.Parties.From != nil {
		line(partyLine(*m.Parties.From))
	}
	line("")

	line("Items:")
	for _, r := range m.Table.Rows {
		line(fmt.Sprintf("- %s x%s @ %s = %s", r.Cells[0], r.Cells[1], r.Cells[2], r.Cells[3]))
	}
	line("")

	for _, s := range m.Summary.Lines {
		line(s.Label + " " + s.Text)
	}

	if m.Notes != nil {
		line("")
		line(m.Notes.Heading)
		for _, n := range m.Notes.Lines {
			line(n)
		}
	}

	line("")
	if m.Footer.HasWatermark() {
		line(m.Footer.Watermark)
	}
	b.WriteString(m.Footer.Generated)

	return b.String(), nil
}

func partyLine(p invoice.Party) string {
	return p.Heading + " " + strings.Join(p.Lines, ", ")
}

var _ invoice.SummaryRenderer = TextRenderer{}
var _ invoice.Renderer = (*PDFRenderer)(nil)
