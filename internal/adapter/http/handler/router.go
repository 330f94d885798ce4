package handler

import (
	"checked-ledger/internal/adapter/http/middleware"
	redisStore "checked-ledger/internal/adapter/storage/redis"
	"checked-ledger/internal/core/ports"
	"checked-ledger/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// RouterDeps holds all dependencies needed to set up routes.
type RouterDeps struct {
	LedgerSvc      ports.LedgerService
	WalletSvc      ports.WalletService
	RateSvc        ports.RateService
	RateLimitStore *redisStore.RateLimitStore // nil = rate limiting disabled
	HealthCheckers []ports.HealthChecker
	Logger         zerolog.Logger
}

// SetupRouter initialises the Gin engine with all routes and middleware.
func SetupRouter(deps RouterDeps) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()

	// Global middleware
	r.Use(middleware.Recovery(deps.Logger))
	r.Use(middleware.RequestID())
	r.Use(middleware.RequestLogger(deps.Logger))
	r.Use(middleware.MaxBodySize(1 << 20)) // 1 MB request body limit
	r.Use(middleware.AuditLog(logger.Component(deps.Logger, "audit")))

	// Health check (pings PostgreSQL and Redis)
	r.GET("/health", HealthCheck(deps.HealthCheckers...))

	// Swagger documentation
	swagger := r.Group("/swagger")
	{
		swagger.GET("", SwaggerUI)
		swagger.GET("/spec", SwaggerSpec)
	}

	rules := middleware.DefaultRateLimitRules()

	// Helper: return rate limiter middleware if store is available, else noop.
	rl := func(group string) gin.HandlerFunc {
		if deps.RateLimitStore == nil {
			return func(c *gin.Context) { c.Next() }
		}
		rule, ok := rules[group]
		if !ok {
			return func(c *gin.Context) { c.Next() }
		}
		return middleware.RateLimiter(deps.RateLimitStore, group, rule, deps.Logger)
	}

	v1 := r.Group("/api/v1")

	walletHandler := NewWalletHandler(deps.WalletSvc, deps.LedgerSvc)
	paymentHandler := NewPaymentHandler(deps.LedgerSvc)

	v1.POST("/wallets", rl("wallets_create"), walletHandler.Create)
	wallets := v1.Group("/wallets/:id")
	{
		wallets.GET("/balance", rl("wallets_read"), walletHandler.GetBalance)
		wallets.GET("/transactions", rl("wallets_read"), walletHandler.ListTransactions)
		wallets.POST("/topup", rl("wallets_topup"), walletHandler.Topup)
		wallets.POST("/rewards", rl("wallets_rewards"), walletHandler.AccrueReward)
		wallets.POST("/payments", rl("payments"), paymentHandler.ProcessPayment)
		wallets.POST("/refunds", rl("payments_refund"), paymentHandler.ProcessRefund)
	}

	rateHandler := NewRateHandler(deps.RateSvc)
	v1.GET("/rates/quote", rl("rates"), rateHandler.Quote)

	return r
}
