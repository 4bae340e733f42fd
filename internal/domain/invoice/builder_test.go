package invoice

import (
	"context"
	"math/rand"
	"strings"
	"testing"
	"time"

	"github.com/samber/lo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"quickinvoice/internal/core/types"
	"quickinvoice/internal/domain/order"
	"quickinvoice/internal/domain/seller"
)

var renderedAt = time.Date(2025, 3, 15, 9, 30, 0, 0, time.UTC)

func sampleOrder() *order.Order {
	o := order.NewOrder("seller-1", "Kofi Mensah", "024-412 3456", []order.LineItem{
		{Name: "Rice", Quantity: 2, UnitPrice: types.MustMoney("15.00")},
		{Name: "Oil", Quantity: 1, UnitPrice: types.MustMoney("30.00")},
	}, types.MustMoney("5.00"), time.Date(2025, 3, 14, 10, 0, 0, 0, time.UTC))
	o.OrderNumber = "INV-0001"
	return o
}

func premiumSeller() *seller.Seller {
	expires := renderedAt.Add(30 * 24 * time.Hour)
	return &seller.Seller{
		ID:                    "seller-1",
		SubscriptionTier:      seller.TierPremium,
		SubscriptionExpiresAt: &expires,
		BusinessName:          "Ama Foods",
		Phone:                 "0201234567",
		MobileMoneyNumber:     "0551234567",
	}
}

func TestBuild_PremiumSeller(t *testing.T) {
	m, warnings := Build(sampleOrder(), premiumSeller(), renderedAt, DefaultOptions())

	assert.Empty(t, warnings)
	assert.True(t, m.PremiumActive)
	assert.Equal(t, "Ama Foods", m.Header.BusinessName)
	assert.False(t, m.Footer.HasWatermark())
	assert.Equal(t, "Generated on 15 Mar 2025 09:30 UTC", m.Footer.Generated)

	require.NotNil(t, m.Parties.From)
	assert.Equal(t, "From:", m.Parties.From.Heading)
	assert.Equal(t, []string{"Ama Foods", "0201234567", "MoMo: 0551234567"}, m.Parties.From.Lines)
}

func TestBuild_FreeSeller(t *testing.T) {
	s := premiumSeller()
	s.SubscriptionTier = seller.TierFree

	m, _ := Build(sampleOrder(), s, renderedAt, DefaultOptions())

	assert.False(t, m.PremiumActive)
	assert.Equal(t, "QuickInvoice GH", m.Header.BusinessName)
	assert.Equal(t, "Created with QuickInvoice GH", m.Footer.Watermark)
	assert.Nil(t, m.Parties.From)
}

func TestBuild_NoSeller(t *testing.T) {
	m, _ := Build(sampleOrder(), nil, renderedAt, DefaultOptions())

	assert.Equal(t, "QuickInvoice GH", m.Header.BusinessName)
	assert.True(t, m.Footer.HasWatermark())
	assert.Nil(t, m.Parties.From)
}

func TestBuild_PremiumIffActive(t *testing.T) {
	expiries := []*time.Time{
		nil,
		ptr(renderedAt.Add(-time.Hour)),
		ptr(renderedAt),
		ptr(renderedAt.Add(time.Nanosecond)),
		ptr(renderedAt.Add(365 * 24 * time.Hour)),
	}

	for _, tier := range []seller.Tier{seller.TierFree, seller.TierPremium} {
		for _, exp := range expiries {
			s := premiumSeller()
			s.SubscriptionTier = tier
			s.SubscriptionExpiresAt = exp

			active := tier == seller.TierPremium && exp != nil && exp.After(renderedAt)
			m, _ := Build(sampleOrder(), s, renderedAt, DefaultOptions())

			assert.Equal(t, active, m.PremiumActive)
			assert.Equal(t, active, m.Parties.From != nil, "From block")
			assert.Equal(t, !active, m.Footer.HasWatermark(), "watermark")
		}
	}
}

func TestBuild_PremiumWithoutContact(t *testing.T) {
	s := premiumSeller()
	s.BusinessName, s.Phone, s.MobileMoneyNumber = "", "", ""

	m, _ := Build(sampleOrder(), s, renderedAt, DefaultOptions())

	assert.True(t, m.PremiumActive)
	assert.Equal(t, "QuickInvoice GH", m.Header.BusinessName)
	assert.Nil(t, m.Parties.From)
	assert.False(t, m.Footer.HasWatermark())
}

func TestBuild_FromBlockFallbackName(t *testing.T) {
	s := premiumSeller()
	s.BusinessName = ""
	s.MobileMoneyNumber = ""

	m, _ := Build(sampleOrder(), s, renderedAt, DefaultOptions())

	require.NotNil(t, m.Parties.From)
	assert.Equal(t, []string{"My Business", "0201234567"}, m.Parties.From.Lines)
}

func TestBuild_HeaderAndStatus(t *testing.T) {
	o := sampleOrder()
	o.Status = order.StatusPaid

	m, _ := Build(o, nil, renderedAt, DefaultOptions())

	assert.Equal(t, "Invoice: INV-0001", m.Header.InvoiceLine)
	assert.Equal(t, "Date: 14 Mar 2025", m.Header.DateLine)
	assert.Equal(t, "PAID", m.Header.StatusLabel)
	assert.Equal(t, order.SeveritySuccess, m.Header.StatusSeverity)
	assert.Equal(t, "INV-0001.pdf", m.Filename("pdf"))
}

func TestBuild_Table(t *testing.T) {
	m, _ := Build(sampleOrder(), nil, renderedAt, DefaultOptions())

	require.Len(t, m.Table.Columns, 4)
	sum := 0.0
	for _, c := range m.Table.Columns {
		sum += c.Width
	}
	assert.InDelta(t, 1.0, sum, 1e-9)

	require.Len(t, m.Table.Rows, 2)
	assert.Equal(t, []string{"Rice", "2", "GH¢15.00", "GH¢30.00"}, m.Table.Rows[0].Cells)
	assert.Equal(t, []string{"Oil", "1", "GH¢30.00", "GH¢30.00"}, m.Table.Rows[1].Cells)
}

func TestBuild_TablePreservesInputOrder(t *testing.T) {
	o := sampleOrder()
	o.Items = []order.LineItem{
		{Name: "Zobo", Quantity: 1, UnitPrice: types.MustMoney("1")},
		{Name: "Apple", Quantity: 1, UnitPrice: types.MustMoney("9")},
		{Name: "Milo", Quantity: 1, UnitPrice: types.MustMoney("5")},
	}
	o.Recalculate()

	m, _ := Build(o, nil, renderedAt, DefaultOptions())

	names := make([]string, 0, len(m.Table.Rows))
	for _, r := range m.Table.Rows {
		names = append(names, r.Name)
	}
	assert.Equal(t, []string{"Zobo", "Apple", "Milo"}, names)
}

func TestBuild_Summary(t *testing.T) {
	m, _ := Build(sampleOrder(), nil, renderedAt, DefaultOptions())

	require.Len(t, m.Summary.Lines, 3)
	assert.Equal(t, "Subtotal:", m.Summary.Lines[0].Label)
	assert.Equal(t, "GH¢60.00", m.Summary.Lines[0].Text)
	assert.Equal(t, "Delivery Fee:", m.Summary.Lines[1].Label)
	assert.Equal(t, "GH¢5.00", m.Summary.Lines[1].Text)
	assert.Equal(t, "TOTAL:", m.Summary.Lines[2].Label)
	assert.Equal(t, "GH¢65.00", m.Summary.Lines[2].Text)
	assert.True(t, m.Summary.Lines[2].Emphasis)
}

func TestBuild_SummaryWithoutDeliveryFee(t *testing.T) {
	o := sampleOrder()
	o.DeliveryFee = types.Zero()
	o.Recalculate()

	m, warnings := Build(o, nil, renderedAt, DefaultOptions())

	assert.Empty(t, warnings)
	require.Len(t, m.Summary.Lines, 2)
	assert.Equal(t, "Subtotal:", m.Summary.Lines[0].Label)
	assert.Equal(t, "TOTAL:", m.Summary.Lines[1].Label)
	assert.Equal(t, "GH¢60.00", m.Summary.Lines[1].Text)
}

func TestBuild_IntegrityWarning(t *testing.T) {
	o := sampleOrder()
	o.Total = types.MustMoney("70.00") // tampered in storage

	m, warnings := Build(o, nil, renderedAt, DefaultOptions())

	require.Len(t, warnings, 1)
	assert.Equal(t, "total", warnings[0].Field)
	assert.Equal(t, "70.00", warnings[0].Persisted.StringFixed(2))
	assert.Equal(t, "65.00", warnings[0].Computed.StringFixed(2))
	assert.Contains(t, warnings[0].String(), "INV-0001")

	// The authoritative persisted total is rendered, not "fixed".
	assert.Equal(t, "GH¢70.00", m.Summary.Lines[len(m.Summary.Lines)-1].Text)
	assert.Equal(t, "65.00", m.Summary.ComputedTotal.StringFixed(2))
}

func TestBuild_WholeCentOrdersNeverWarn(t *testing.T) {
	rng := rand.New(rand.NewSource(7<<32 | 11))

	for i := 0; i < 200; i++ {
		items := make([]order.LineItem, 1+rng.Intn(6))
		for j := range items {
			items[j] = order.LineItem{
				Name:      "item",
				Quantity:  1 + rng.Intn(50),
				UnitPrice: types.MoneyFromCents(rng.Int63n(1_000_000)),
			}
		}
		o := order.NewOrder("seller-1", "Kofi", "0244123456", items, types.MoneyFromCents(rng.Int63n(2000)), renderedAt)
		require.NoError(t, o.Validate(context.Background()))

		m, warnings := Build(o, nil, renderedAt, DefaultOptions())
		assert.Empty(t, warnings, "order %d", i)

		lineSum := types.Sum(lo.Map(m.Table.Rows, func(r Row, _ int) types.Money { return r.LineTotal })...)
		assert.True(t, lineSum.Equal(o.Subtotal), "order %d: lines %s subtotal %s", i, lineSum, o.Subtotal)
	}
}

func TestBuild_IntegrityWarningSubtotal(t *testing.T) {
	o := sampleOrder()
	o.Subtotal = types.MustMoney("59.99")

	_, warnings := Build(o, nil, renderedAt, DefaultOptions())

	require.Len(t, warnings, 1)
	assert.Equal(t, "subtotal", warnings[0].Field)
}

func TestBuild_Notes(t *testing.T) {
	o := sampleOrder()
	m, _ := Build(o, nil, renderedAt, DefaultOptions())
	assert.Nil(t, m.Notes)

	o.Notes = strings.Repeat("Deliver to the blue gate near the market. ", 6) + "Supercalifragilisticexpialidocious-long-token-" + strings.Repeat("x", 120)
	opts := DefaultOptions()
	opts.NotesWidth = 40
	m, _ = Build(o, nil, renderedAt, opts)

	require.NotNil(t, m.Notes)
	assert.Equal(t, "Notes:", m.Notes.Heading)
	assert.Greater(t, len(m.Notes.Lines), 1)

	// Wrapping only replaces break spaces; every word survives in order.
	assert.Equal(t, strings.Fields(o.Notes), strings.Fields(strings.Join(m.Notes.Lines, " ")))
}

func TestBuild_Deterministic(t *testing.T) {
	a, _ := Build(sampleOrder(), premiumSeller(), renderedAt, DefaultOptions())
	b, _ := Build(sampleOrder(), premiumSeller(), renderedAt, DefaultOptions())

	// IDs differ between the two orders; everything else is identical.
	a.OrderID, b.OrderID = "", ""
	assert.Equal(t, a, b)
}

func TestWrapNotes_KeepsParagraphs(t *testing.T) {
	lines := WrapNotes("line one\r\nline two", 80)
	assert.Equal(t, []string{"line one", "line two"}, lines)
}

func rebuild(lines []noteLine) string {
	var b strings.Builder
	for _, l := range lines {
		b.WriteString(l.Text)
		b.WriteString(l.Break)
	}
	return b.String()
}

func TestWrapNotes_KeepsBreakWhitespace(t *testing.T) {
	text := "Deliver to gate 3.   Call first.\tThanks"

	lines := wrapNotes(text, 20)

	require.Len(t, lines, 2)
	assert.Equal(t, noteLine{Text: "Deliver to gate 3.", Break: "   "}, lines[0])
	assert.Equal(t, noteLine{Text: "Call first.\tThanks"}, lines[1])
	assert.Equal(t, text, rebuild(lines))
	assert.Equal(t, []string{"Deliver to gate 3.", "Call first.\tThanks"}, WrapNotes(text, 20))
}

func TestWrapNotes_RebuildsInput(t *testing.T) {
	rng := rand.New(rand.NewSource(3<<32 | 5))
	words := []string{"Rice", "deliver", "gate", "Accra-Tema", "call", "x", "Supercalifragilistic", "GH¢5", "café"}
	gaps := []string{" ", "  ", "   ", "\t", " \t ", "\n", "\r\n", " \n", "\n\n", "\u00a0"}

	for i := 0; i < 300; i++ {
		var b strings.Builder
		if rng.Intn(4) == 0 {
			b.WriteString(gaps[rng.Intn(len(gaps))])
		}
		for n := 1 + rng.Intn(25); n > 0; n-- {
			b.WriteString(words[rng.Intn(len(words))])
			b.WriteString(gaps[rng.Intn(len(gaps))])
		}
		text := b.String()
		width := uint(5 + rng.Intn(40))

		lines := wrapNotes(text, width)
		require.Equal(t, text, rebuild(lines), "width %d", width)
		for _, l := range lines {
			assert.NotContains(t, l.Text, "\n")
		}
	}
}

func TestDataURL(t *testing.T) {
	assert.Equal(t, "data:application/pdf;filename=INV-0001.pdf;base64,JVBERg==",
		DataURL("application/pdf", "INV-0001.pdf", []byte("%PDF")))
}

func ptr[T any](v T) *T { return &v }
