package handlers

import (
	"github.com/gin-gonic/gin"

	"quickinvoice/internal/domain/order"
	"quickinvoice/internal/infrastructure/http/v1/dto"
)

// OrderHandler handles order endpoints.
type OrderHandler struct {
	*BaseHandler
	service *order.Service
}

// NewOrderHandler creates a new order handler.
func NewOrderHandler(base *BaseHandler, service *order.Service) *OrderHandler {
	return &OrderHandler{BaseHandler: base, service: service}
}

// Create handles POST /orders
func (h *OrderHandler) Create(c *gin.Context) {
	var req dto.CreateOrderRequest
	if !h.BindJSON(c, &req) {
		return
	}

	o, err := h.service.Create(c.Request.Context(), h.SellerID(c), req.ToInput())
	if err != nil {
		h.Error(c, err)
		return
	}

	h.Created(c, dto.FromOrder(o))
}

// Get handles GET /orders/:id
func (h *OrderHandler) Get(c *gin.Context) {
	orderID, ok := h.ParseID(c)
	if !ok {
		return
	}

	o, err := h.service.GetByID(c.Request.Context(), h.SellerID(c), orderID)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.FromOrder(o))
}

// List handles GET /orders
func (h *OrderHandler) List(c *gin.Context) {
	var q dto.OrderListQuery
	if !h.BindQuery(c, &q) {
		return
	}

	filter := order.ListFilter{
		ListFilter: q.ToFilter(),
		SellerID:   h.SellerID(c),
	}
	if q.Status != "" {
		status, err := order.ParseStatus(q.Status)
		if err != nil {
			h.Error(c, err)
			return
		}
		filter.Status = &status
	}

	res, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.NewListResponse(res, dto.FromOrder))
}

// UpdateStatus handles PATCH /orders/:id/status
func (h *OrderHandler) UpdateStatus(c *gin.Context) {
	orderID, ok := h.ParseID(c)
	if !ok {
		return
	}

	var req dto.UpdateStatusRequest
	if !h.BindJSON(c, &req) {
		return
	}

	next, err := order.ParseStatus(req.Status)
	if err != nil {
		h.Error(c, err)
		return
	}

	o, err := h.service.UpdateStatus(c.Request.Context(), h.SellerID(c), orderID, next)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.FromOrder(o))
}

// Delete handles DELETE /orders/:id
func (h *OrderHandler) Delete(c *gin.Context) {
	orderID, ok := h.ParseID(c)
	if !ok {
		return
	}

	if err := h.service.Delete(c.Request.Context(), h.SellerID(c), orderID); err != nil {
		h.Error(c, err)
		return
	}

	h.NoContent(c)
}

// Stats handles GET /orders/stats
func (h *OrderHandler) Stats(c *gin.Context) {
	stats, err := h.service.Stats(c.Request.Context(), h.SellerID(c))
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.FromStats(stats))
}
