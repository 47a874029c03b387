package delivery

import (
	"log"
	"math"
	"net/http"
	"time"

	"improtango-backend/internal/ratelimit/usecase"
	"improtango-backend/pkg/apperr"
	"improtango-backend/pkg/response"

	"github.com/didip/tollbooth/v6"
	"github.com/didip/tollbooth/v6/limiter"
	"github.com/gin-gonic/gin"
)

// IPThrottle limits POST requests per client address before they reach the
// per-email limiter. The address comes from gin's ClientIP, so forwarding
// headers count only when the engine trusts the peer as a proxy.
type IPThrottle struct {
	lmt        *limiter.Limiter
	retryAfter int
}

// NewIPThrottle returns nil when rps <= 0, which disables throttling.
func NewIPThrottle(rps float64) *IPThrottle {
	if rps <= 0 {
		return nil
	}

	lmt := tollbooth.NewLimiter(rps, &limiter.ExpirableOptions{DefaultExpirationTTL: time.Hour})
	lmt.SetBurst(1)

	return &IPThrottle{
		lmt:        lmt,
		retryAfter: int(math.Ceil(1 / rps)),
	}
}

// Handler returns the middleware; flow selects the wording of the 429 body.
func (t *IPThrottle) Handler(flow apperr.Flow) gin.HandlerFunc {
	if t == nil {
		return func(c *gin.Context) { c.Next() }
	}

	return func(c *gin.Context) {
		if c.Request.Method != http.MethodPost {
			c.Next()
			return
		}
		if httpErr := tollbooth.LimitByKeys(t.lmt, []string{c.ClientIP()}); httpErr != nil {
			log.Printf("[RateLimit] Throttled %s %s from %s", c.Request.Method, c.Request.URL.Path, c.ClientIP())
			response.Error(c, apperr.RateLimited(t.retryAfter), flow)
			c.Abort()
			return
		}
		c.Next()
	}
}

type RateLimitHandler struct {
	limiter usecase.Limiter
}

func NewRateLimitHandler(l usecase.Limiter) *RateLimitHandler {
	return &RateLimitHandler{limiter: l}
}

// GetStats returns decision counters and the active policy.
// GET /api/admin/rate-limit/stats
func (h *RateLimitHandler) GetStats(c *gin.Context) {
	stats, err := h.limiter.Stats(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": gin.H{"kind": "internal", "message": err.Error()}})
		return
	}

	p := h.limiter.Policy()
	c.JSON(http.StatusOK, gin.H{
		"stats": stats,
		"policy": gin.H{
			"window_seconds": int(p.Window.Seconds()),
			"max":            p.Max,
		},
	})
}
