package handler

import (
	"context"
	"net/http"
	"time"

	"checked-ledger/internal/core/ports"

	"github.com/gin-gonic/gin"
)

// healthPingTimeout bounds each dependency ping.
const healthPingTimeout = 2 * time.Second

type depStatus struct {
	Status  string `json:"status"`
	Latency string `json:"latency"`
	Error   string `json:"error,omitempty"`
}

// HealthCheck pings every dependency and reports "healthy" (200) or
// "degraded" (503) with a per-dependency breakdown.
func HealthCheck(checkers ...ports.HealthChecker) gin.HandlerFunc {
	return func(c *gin.Context) {
		deps := make(map[string]depStatus, len(checkers))
		allHealthy := true

		for _, checker := range checkers {
			st := ping(c.Request.Context(), checker)
			if st.Status != "healthy" {
				allHealthy = false
			}
			deps[checker.Name()] = st
		}

		status, httpCode := "healthy", http.StatusOK
		if !allHealthy {
			status, httpCode = "degraded", http.StatusServiceUnavailable
		}

		c.JSON(httpCode, gin.H{
			"status":       status,
			"dependencies": deps,
		})
	}
}

func ping(ctx context.Context, checker ports.HealthChecker) depStatus {
	ctx, cancel := context.WithTimeout(ctx, healthPingTimeout)
	defer cancel()

	start := time.Now()
	err := checker.Ping(ctx)
	st := depStatus{Status: "healthy", Latency: time.Since(start).String()}
	if err != nil {
		st.Status = "unhealthy"
		st.Error = err.Error()
	}
	return st
}
