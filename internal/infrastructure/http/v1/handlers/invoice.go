package handlers

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"quickinvoice/internal/domain/invoice"
	"quickinvoice/internal/infrastructure/http/v1/dto"
)

// HeaderIntegrityWarnings reports how many persisted totals disagreed with their recomputation.
const HeaderIntegrityWarnings = "X-Integrity-Warnings"

// InvoiceHandler serves generated invoices.
type InvoiceHandler struct {
	*BaseHandler
	service *invoice.Service
	clock   func() time.Time
}

// NewInvoiceHandler creates a new invoice handler.
func NewInvoiceHandler(base *BaseHandler, service *invoice.Service, clock func() time.Time) *InvoiceHandler {
	if clock == nil {
		clock = time.Now
	}
	return &InvoiceHandler{BaseHandler: base, service: service, clock: clock}
}

func (h *InvoiceHandler) generate(c *gin.Context) (*invoice.Result, bool) {
	orderID, ok := h.ParseID(c)
	if !ok {
		return nil, false
	}

	res, err := h.service.Generate(c.Request.Context(), h.SellerID(c), orderID, h.clock())
	if err != nil {
		h.Error(c, err)
		return nil, false
	}

	if n := len(res.Warnings); n > 0 {
		c.Header(HeaderIntegrityWarnings, strconv.Itoa(n))
	}
	return res, true
}

// Download handles GET /orders/:id/invoice.pdf
func (h *InvoiceHandler) Download(c *gin.Context) {
	res, ok := h.generate(c)
	if !ok {
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", res.Filename))
	c.Header("Cache-Control", "no-store")
	c.Data(http.StatusOK, res.ContentType, res.Document)
}

// Share handles POST /orders/:id/share
func (h *InvoiceHandler) Share(c *gin.Context) {
	res, ok := h.generate(c)
	if !ok {
		return
	}

	h.OK(c, dto.FromInvoice(res))
}
