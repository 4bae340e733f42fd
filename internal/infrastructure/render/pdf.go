// Package render lays out invoice document models as printable artifacts.
package render

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"strings"
	"unicode/utf8"

	"github.com/go-pdf/fpdf"
	"golang.org/x/text/encoding/charmap"

	"quickinvoice/internal/domain/invoice"
	"quickinvoice/internal/domain/order"
)

// ErrUnrenderableGlyph is returned when model text contains a character the
// document font has no glyph for.
var ErrUnrenderableGlyph = errors.New("unrenderable glyph")

// GlyphError names the offending character and where it appeared.
type GlyphError struct {
	Field string
	Rune  rune
}

func (e *GlyphError) Error() string {
	return fmt.Sprintf("%s: %q (U+%04X) in %s", ErrUnrenderableGlyph, e.Rune, e.Rune, e.Field)
}

func (e *GlyphError) Unwrap() error { return ErrUnrenderableGlyph }

// PDFOptions configures the PDF layout backend.
type PDFOptions struct {
	// FontPath optionally points to a UTF-8 TrueType font. Without it the
	// built-in Helvetica is used, which covers Windows-1252 only.
	FontPath string
}

type rgb struct{ r, g, b int }

var (
	colorPrimary  = rgb{34, 197, 94}
	colorDark     = rgb{31, 41, 55}
	colorMuted    = rgb{156, 163, 175}
	colorStripe   = rgb{243, 244, 246}
	colorWhite    = rgb{255, 255, 255}
	severityColor = map[order.Severity]rgb{
		order.SeverityWarning: {234, 179, 8},
		order.SeveritySuccess: {34, 197, 94},
		order.SeverityInfo:    {59, 130, 246},
	}
)

// A4 portrait layout, millimetres.
const (
	marginLeft   = 20.0
	marginRight  = 20.0
	headerBottom = 48.0 // content starts below the header divider
	footerTop    = 278.0

	tableHeaderHeight = 8.0
	rowLineHeight     = 5.0
	rowPadding        = 1.5
	notesLineHeight   = 4.5
	summaryRowHeight  = 7.0
	cellInset         = 1.5
)

// PDFRenderer renders invoices as A4 PDF documents with fpdf.
// It holds no per-render state and is safe for concurrent use.
type PDFRenderer struct {
	font []byte
}

// NewPDFRenderer loads the optional font once so Render does no file I/O.
func NewPDFRenderer(opts PDFOptions) (*PDFRenderer, error) {
	r := &PDFRenderer{}
	if opts.FontPath != "" {
		font, err := os.ReadFile(opts.FontPath)
		if err != nil {
			return nil, fmt.Errorf("read font %s: %w", opts.FontPath, err)
		}
		r.font = font
	}
	return r, nil
}

// ContentType implements invoice.Renderer.
func (r *PDFRenderer) ContentType() string { return "application/pdf" }

// Extension implements invoice.Renderer.
func (r *PDFRenderer) Extension() string { return "pdf" }

// Render lays out m. Output depends only on m: the document dates are pinned
// to m.RenderedAt and resource catalogs are emitted in sorted order.
func (r *PDFRenderer) Render(m *invoice.DocumentModel) ([]byte, error) {
	if m == nil {
		return nil, errors.New("render: nil document model")
	}

	enc, family, err := r.textEncoding(m)
	if err != nil {
		return nil, err
	}

	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetCreationDate(m.RenderedAt)
	pdf.SetModificationDate(m.RenderedAt)
	pdf.SetCatalogSort(true)
	pdf.SetCompression(true)
	pdf.SetTitle(m.Header.InvoiceLine, true)
	pdf.SetAuthor(m.Header.BusinessName, true)
	pdf.SetCreator(m.ProductName, true)
	pdf.SetMargins(marginLeft, headerBottom, marginRight)
	pdf.SetAutoPageBreak(false, 0)
	pdf.AliasNbPages("{nb}")

	if r.font != nil {
		pdf.AddUTF8FontFromBytes(family, "", r.font)
		pdf.AddUTF8FontFromBytes(family, "B", r.font)
	}

	l := &layout{pdf: pdf, m: m, enc: enc, family: family}
	pdf.SetHeaderFunc(l.header)
	pdf.SetFooterFunc(l.footer)

	pdf.AddPage()
	l.parties()
	l.table()
	l.summary()
	l.notes()

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("render pdf: %w", err)
	}
	return buf.Bytes(), nil
}

// textEncoding selects the font family and verifies every model string can be drawn with it.
func (r *PDFRenderer) textEncoding(m *invoice.DocumentModel) (func(string) string, string, error) {
	if r.font != nil {
		for _, ft := range m.Texts() {
			if !utf8.ValidString(ft.Text) {
				return nil, "", &GlyphError{Field: ft.Field, Rune: utf8.RuneError}
			}
		}
		return func(s string) string { return s }, "invoice", nil
	}

	for _, ft := range m.Texts() {
		for _, c := range ft.Text {
			if _, ok := charmap.Windows1252.EncodeRune(c); !ok || c == utf8.RuneError {
				return nil, "", &GlyphError{Field: ft.Field, Rune: c}
			}
		}
	}

	encoder := charmap.Windows1252.NewEncoder()
	return func(s string) string {
		out, err := encoder.String(s)
		if err != nil {
			// Unreachable after the coverage check above.
			return s
		}
		return out
	}, "Helvetica", nil
}

// layout draws one document. It is created per Render call.
type layout struct {
	pdf    *fpdf.Fpdf
	m      *invoice.DocumentModel
	enc    func(string) string
	family string
}

func (l *layout) font(style string, size float64, c rgb) {
	l.pdf.SetFont(l.family, style, size)
	l.pdf.SetTextColor(c.r, c.g, c.b)
}

func (l *layout) contentWidth() float64 {
	w, _ := l.pdf.GetPageSize()
	return w - marginLeft - marginRight
}

// header is drawn on every page by fpdf.
func (l *layout) header() {
	pdf := l.pdf
	h := l.m.Header
	right := marginLeft + l.contentWidth()

	l.font("B", 24, colorPrimary)
	pdf.SetXY(marginLeft, 16)
	pdf.CellFormat(l.contentWidth()-40, 10, l.enc(h.BusinessName), "", 0, "L", false, 0, "")

	l.font("", 10, colorDark)
	pdf.SetXY(marginLeft, 30)
	pdf.CellFormat(100, 5, l.enc(h.InvoiceLine), "", 2, "L", false, 0, "")
	pdf.CellFormat(100, 5, l.enc(h.DateLine), "", 0, "L", false, 0, "")

	badge, ok := severityColor[h.StatusSeverity]
	if !ok {
		badge = colorDark
	}
	l.font("B", 12, badge)
	pdf.SetXY(right-60, 30)
	pdf.CellFormat(60, 6, l.enc(h.StatusLabel), "", 0, "R", false, 0, "")

	if pdf.PageNo() > 1 {
		l.font("", 8, colorMuted)
		pdf.SetXY(right-60, 36)
		pdf.CellFormat(60, 4, l.enc("(continued)"), "", 0, "R", false, 0, "")
	}

	pdf.SetDrawColor(colorMuted.r, colorMuted.g, colorMuted.b)
	pdf.SetLineWidth(0.2)
	pdf.Line(marginLeft, 44, right, 44)

	pdf.SetXY(marginLeft, headerBottom)
}

// footer is drawn on every page by fpdf.
func (l *layout) footer() {
	pdf := l.pdf
	f := l.m.Footer
	w := l.contentWidth()

	l.font("", 8, colorMuted)
	if f.HasWatermark() {
		pdf.SetXY(marginLeft, 281)
		pdf.CellFormat(w, 4, l.enc(f.Watermark), "", 0, "C", false, 0, "")
	}
	pdf.SetXY(marginLeft, 286)
	pdf.CellFormat(w, 4, l.enc(f.Generated), "", 0, "C", false, 0, "")
	pdf.SetXY(marginLeft, 286)
	pdf.CellFormat(w, 4, fmt.Sprintf("Page %d of {nb}", pdf.PageNo()), "", 0, "R", false, 0, "")
}

// ensureSpace starts a new page when h millimetres do not fit above the footer.
// Returns true if a page was added.
func (l *layout) ensureSpace(h float64) bool {
	if l.pdf.GetY()+h <= footerTop {
		return false
	}
	l.pdf.AddPage()
	return true
}

func (l *layout) parties() {
	pdf := l.pdf
	top := headerBottom + 6

	drawParty := func(p invoice.Party, x float64) float64 {
		pdf.SetXY(x, top)
		l.font("B", 11, colorDark)
		pdf.CellFormat(70, 6, l.enc(p.Heading), "", 2, "L", false, 0, "")
		l.font("", 10, colorDark)
		for _, line := range p.Lines {
			for _, wrapped := range l.wrap(line, 70) {
				pdf.CellFormat(70, 5, l.enc(wrapped), "", 2, "L", false, 0, "")
			}
		}
		return pdf.GetY()
	}

	bottom := drawParty(l.m.Parties.BillTo, marginLeft)
	if from := l.m.Parties.From; from != nil {
		bottom = max(bottom, drawParty(*from, marginLeft+110))
	}

	pdf.SetXY(marginLeft, bottom+8)
}

func (l *layout) columnWidths() []float64 {
	total := l.contentWidth()
	widths := make([]float64, len(l.m.Table.Columns))
	for i, c := range l.m.Table.Columns {
		widths[i] = c.Width * total
	}
	return widths
}

func (l *layout) tableHeader(widths []float64) {
	pdf := l.pdf
	pdf.SetFillColor(colorPrimary.r, colorPrimary.g, colorPrimary.b)
	l.font("B", 10, colorWhite)
	pdf.SetX(marginLeft)
	for i, c := range l.m.Table.Columns {
		pdf.CellFormat(widths[i], tableHeaderHeight, l.enc(c.Title), "", 0, string(c.Align), true, 0, "")
	}
	pdf.Ln(tableHeaderHeight)
}

// table draws the item rows, continuing on new pages with the column header repeated.
func (l *layout) table() {
	pdf := l.pdf
	widths := l.columnWidths()
	cols := l.m.Table.Columns

	l.ensureSpace(tableHeaderHeight + rowLineHeight + 2*rowPadding)
	l.tableHeader(widths)

	for i, row := range l.m.Table.Rows {
		l.font("", 9, colorDark)

		cells := make([][]string, len(row.Cells))
		lines := 1
		for j, text := range row.Cells {
			cells[j] = l.wrap(text, widths[j]-2*cellInset)
			lines = max(lines, len(cells[j]))
		}
		height := float64(lines)*rowLineHeight + 2*rowPadding

		if l.ensureSpace(height) {
			l.tableHeader(widths)
			l.font("", 9, colorDark)
		}

		y := pdf.GetY()
		if i%2 == 1 {
			pdf.SetFillColor(colorStripe.r, colorStripe.g, colorStripe.b)
			pdf.Rect(marginLeft, y, l.contentWidth(), height, "F")
		}

		x := marginLeft
		for j, text := range cells {
			for k, line := range text {
				pdf.SetXY(x+cellInset, y+rowPadding+float64(k)*rowLineHeight)
				pdf.CellFormat(widths[j]-2*cellInset, rowLineHeight, l.enc(line), "", 0, string(cols[j].Align), false, 0, "")
			}
			x += widths[j]
		}
		pdf.SetXY(marginLeft, y+height)
	}

	pdf.SetY(pdf.GetY() + 8)
}

func (l *layout) summary() {
	pdf := l.pdf
	lines := l.m.Summary.Lines
	l.ensureSpace(float64(len(lines))*summaryRowHeight + 4)

	labelX := marginLeft + l.contentWidth() - 60
	for _, line := range lines {
		y := pdf.GetY()
		if line.Emphasis {
			pdf.SetDrawColor(colorMuted.r, colorMuted.g, colorMuted.b)
			pdf.Line(labelX, y+1, marginLeft+l.contentWidth(), y+1)
			pdf.SetY(y + 2)
			l.font("B", 12, colorDark)
		} else {
			l.font("", 10, colorDark)
		}
		pdf.SetX(labelX)
		pdf.CellFormat(30, summaryRowHeight, l.enc(line.Label), "", 0, "L", false, 0, "")
		pdf.CellFormat(30, summaryRowHeight, l.enc(line.Text), "", 1, "R", false, 0, "")
	}

	pdf.SetY(pdf.GetY() + 8)
}

func (l *layout) notes() {
	n := l.m.Notes
	if n == nil {
		return
	}
	pdf := l.pdf
	w := l.contentWidth()

	l.ensureSpace(2 * notesLineHeight)
	l.font("", 9, colorMuted)
	pdf.SetX(marginLeft)
	pdf.CellFormat(w, notesLineHeight+1, l.enc(n.Heading), "", 1, "L", false, 0, "")

	l.font("", 9, colorDark)
	for _, line := range n.Lines {
		for _, wrapped := range l.wrap(line, w) {
			if l.ensureSpace(notesLineHeight) {
				l.font("", 9, colorDark)
			}
			pdf.SetX(marginLeft)
			pdf.CellFormat(w, notesLineHeight, l.enc(wrapped), "", 1, "L", false, 0, "")
		}
	}
}

// wrap splits s into lines no wider than width in the current font.
// Words are kept whole where they fit; longer words are split between runes.
// Joining the result with the removed spaces reproduces s.
func (l *layout) wrap(s string, width float64) []string {
	fits := func(t string) bool { return l.pdf.GetStringWidth(l.enc(t)) <= width }
	if s == "" || fits(s) {
		return []string{s}
	}

	var (
		lines   []string
		current string
	)
	for _, word := range strings.Split(s, " ") {
		candidate := word
		if current != "" {
			candidate = current + " " + word
		}
		if fits(candidate) {
			current = candidate
			continue
		}
		if current != "" {
			lines = append(lines, current)
			current = ""
		}
		for !fits(word) {
			cut := l.fitPrefix(word, width)
			lines = append(lines, word[:cut])
			word = word[cut:]
		}
		current = word
	}
	return append(lines, current)
}

// fitPrefix returns the byte length of the longest rune prefix of word that fits,
// always at least one rune.
func (l *layout) fitPrefix(word string, width float64) int {
	cut := 0
	for i, c := range word {
		next := i + utf8.RuneLen(c)
		if cut > 0 && l.pdf.GetStringWidth(l.enc(word[:next])) > width {
			break
		}
		cut = next
	}
	return cut
}
