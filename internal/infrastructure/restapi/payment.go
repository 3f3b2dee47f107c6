package restapi

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Aifred-zkorp/wallet-exposure-advisor/internal/infrastructure/configloader"
)

// paymentHeader carries the client's payment proof. Verification against the
// payment network is a boundary concern; the core report logic never sees it.
const paymentHeader = "X-Payment"

// PaymentRequired rejects unpaid requests with 402 when payment is enabled.
// The response tells the client where to pay and how much.
func PaymentRequired(cfg configloader.PaymentConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !cfg.Enabled {
			c.Next()
			return
		}
		if c.GetHeader(paymentHeader) == "" {
			c.AbortWithStatusJSON(http.StatusPaymentRequired, gin.H{
				"error":    "payment required",
				"payTo":    cfg.ReceivingAddress,
				"priceUsd": cfg.PriceUSD,
			})
			return
		}
		c.Next()
	}
}
