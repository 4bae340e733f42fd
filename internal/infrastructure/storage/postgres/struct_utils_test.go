package postgres

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"quickinvoice/internal/core/entity"
)

type mockDocument struct {
	entity.BaseDocument
	Number  string `db:"order_number"`
	Name    string `db:"customer_name"`
	Ignored string `db:"-"`
	NoTag   string
}

func TestExtractDBColumns_EmbeddedFirst(t *testing.T) {
	cols := ExtractDBColumns[mockDocument]()

	assert.Equal(t, []string{"id", "version", "created_at", "updated_at", "order_number", "customer_name"}, cols)
}

func TestExtractDBColumns_Pointer(t *testing.T) {
	assert.Equal(t, ExtractDBColumns[mockDocument](), ExtractDBColumns[*mockDocument]())
}

func TestStructToMap(t *testing.T) {
	now := time.Date(2025, 3, 14, 10, 0, 0, 0, time.UTC)
	doc := &mockDocument{
		BaseDocument: entity.NewBaseDocument(now),
		Number:       "INV-0001",
		Name:         "Kofi",
		Ignored:      "x",
		NoTag:        "y",
	}

	m := StructToMap(doc)

	assert.Len(t, m, 6)
	assert.Equal(t, doc.ID, m["id"])
	assert.Equal(t, 1, m["version"])
	assert.Equal(t, now, m["created_at"])
	assert.Equal(t, "INV-0001", m["order_number"])
	assert.Equal(t, "Kofi", m["customer_name"])
	assert.NotContains(t, m, "-")
}

func TestStructToMap_NonStruct(t *testing.T) {
	assert.Nil(t, StructToMap(42))
	assert.Nil(t, StructToMap((*mockDocument)(nil)))
}

func TestPickColumns(t *testing.T) {
	data := map[string]any{"id": 1, "version": 2, "status": "paid", "extra": true}

	got := PickColumns(data, []string{"id", "version", "status", "missing"}, "id")

	assert.Equal(t, map[string]any{"version": 2, "status": "paid"}, got)
}
