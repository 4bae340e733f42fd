package handlers

import (
	"time"

	"github.com/gin-gonic/gin"

	"quickinvoice/internal/domain/seller"
	"quickinvoice/internal/infrastructure/http/v1/dto"
)

// SellerHandler handles the seller profile endpoints.
type SellerHandler struct {
	*BaseHandler
	service *seller.Service
	clock   func() time.Time
}

// NewSellerHandler creates a new seller handler.
func NewSellerHandler(base *BaseHandler, service *seller.Service, clock func() time.Time) *SellerHandler {
	if clock == nil {
		clock = time.Now
	}
	return &SellerHandler{BaseHandler: base, service: service, clock: clock}
}

// Get handles GET /seller
func (h *SellerHandler) Get(c *gin.Context) {
	s, err := h.service.Get(c.Request.Context(), h.SellerID(c))
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.FromSeller(s, h.clock()))
}

// Update handles PUT /seller
func (h *SellerHandler) Update(c *gin.Context) {
	var req dto.UpdateSellerRequest
	if !h.BindJSON(c, &req) {
		return
	}

	s, err := h.service.UpdateProfile(c.Request.Context(), h.SellerID(c), req.ToInput())
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.FromSeller(s, h.clock()))
}
