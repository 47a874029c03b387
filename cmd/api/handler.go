package api

import (
	"log"
	"net/http"

	contactDelivery "improtango-backend/internal/contact/delivery"
	contactUsecase "improtango-backend/internal/contact/usecase"
	newsletterDelivery "improtango-backend/internal/newsletter/delivery"
	newsletterUsecase "improtango-backend/internal/newsletter/usecase"
	ratelimitDelivery "improtango-backend/internal/ratelimit/delivery"
	ratelimitUsecase "improtango-backend/internal/ratelimit/usecase"
	"improtango-backend/pkg/config"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	config            *config.Config
	newsletterHandler *newsletterDelivery.NewsletterHandler
	contactHandler    *contactDelivery.ContactHandler
	rateLimitHandler  *ratelimitDelivery.RateLimitHandler
}

func NewHandler(cfg *config.Config, newsletterUc newsletterUsecase.NewsletterUsecase, contactUc contactUsecase.ContactUsecase, limiter ratelimitUsecase.Limiter) *Handler {
	return &Handler{
		config:            cfg,
		newsletterHandler: newsletterDelivery.NewNewsletterHandler(newsletterUc),
		contactHandler:    contactDelivery.NewContactHandler(contactUc),
		rateLimitHandler:  ratelimitDelivery.NewRateLimitHandler(limiter),
	}
}

func (h *Handler) allowedOrigin(origin string) string {
	for _, o := range h.config.CORSOrigins {
		if o == "*" {
			if origin != "" {
				return origin
			}
			return "*"
		}
		if o == origin {
			return origin
		}
	}
	return ""
}

func (h *Handler) cors() gin.HandlerFunc {
	return func(c *gin.Context) {
		origin := c.Request.Header.Get("Origin")
		if allowed := h.allowedOrigin(origin); allowed != "" {
			c.Writer.Header().Set("Access-Control-Allow-Origin", allowed)
			c.Writer.Header().Set("Vary", "Origin")
		}

		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, Accept-Language, Authorization, accept, origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}

// Router builds the engine with middleware and routes.
func (h *Handler) Router() *gin.Engine {
	if h.config.GinMode != "" {
		gin.SetMode(h.config.GinMode)
	}
	r := gin.New()
	// ClientIP reads forwarding headers only from these peers
	if err := r.SetTrustedProxies(h.config.TrustedProxies); err != nil {
		log.Printf("[API] Invalid TRUSTED_PROXIES %v: %v", h.config.TrustedProxies, err)
	}
	r.Use(gin.Logger(), gin.Recovery())
	r.Use(h.cors())

	SetupRoutes(r, h)
	return r
}

func (h *Handler) Start(addr string) error {
	return h.Router().Run(addr)
}
