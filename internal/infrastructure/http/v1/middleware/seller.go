package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"quickinvoice/internal/core/apperror"
	appctx "quickinvoice/internal/core/context"
)

// HeaderSellerID carries the authenticated seller, set by the upstream gateway.
const HeaderSellerID = "X-Seller-ID"

// Seller scopes the request to the seller named in X-Seller-ID.
// Requests without it are rejected before reaching a handler.
func Seller() gin.HandlerFunc {
	return func(c *gin.Context) {
		sellerID := strings.TrimSpace(c.GetHeader(HeaderSellerID))
		if sellerID == "" {
			_ = c.Error(apperror.NewUnauthorized("seller identity is required").
				WithDetail("header", HeaderSellerID))
			c.Abort()
			return
		}

		c.Request = c.Request.WithContext(appctx.WithSellerID(c.Request.Context(), sellerID))
		c.Set("seller_id", sellerID)

		c.Next()
	}
}
