package middleware

import (
	"net/http"

	"checked-ledger/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// AuditLog writes one audit event per successful balance-changing request.
// Events go to the given logger, which is tagged as the audit component.
func AuditLog(log zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		status := c.Writer.Status()
		if status < 200 || status >= 300 {
			return
		}
		if c.Request.Method != http.MethodPost {
			return
		}

		action, resourceType := mapRouteToAction(c.FullPath())
		if action == "" {
			return
		}

		log.Info().
			Str("action", action).
			Str("resource_type", resourceType).
			Str("wallet_id", c.Param("id")).
			Str("request_id", c.GetString(response.CtxRequestID)).
			Str("client_ip", c.ClientIP()).
			Int("status", status).
			Msg("audit")
	}
}

func mapRouteToAction(route string) (string, string) {
	switch route {
	case "/api/v1/wallets":
		return "CREATE_WALLET", "wallet"
	case "/api/v1/wallets/:id/topup":
		return "TOPUP", "wallet"
	case "/api/v1/wallets/:id/rewards":
		return "REWARD", "wallet"
	case "/api/v1/wallets/:id/payments":
		return "PAYMENT", "transaction"
	case "/api/v1/wallets/:id/refunds":
		return "REFUND", "transaction"
	}
	return "", ""
}
