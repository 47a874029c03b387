package api

import (
	"log"
	"net/http"

	ratelimitDelivery "improtango-backend/internal/ratelimit/delivery"
	"improtango-backend/pkg/apperr"

	"github.com/gin-gonic/gin"
)

func SetupRoutes(r *gin.Engine, h *Handler) {
	throttle := ratelimitDelivery.NewIPThrottle(h.config.RateLimit.IPRPS)

	api := r.Group("/api")
	{
		api.GET("/health", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{"status": "ok"})
		})

		newsletter := api.Group("/newsletter")
		{
			newsletter.POST("/subscribe", throttle.Handler(apperr.FlowNewsletter), h.newsletterHandler.Subscribe)
			newsletter.POST("/unsubscribe", throttle.Handler(apperr.FlowUnsubscribe), h.newsletterHandler.Unsubscribe)
			newsletter.GET("/subscription", h.newsletterHandler.CheckSubscription)
		}

		api.POST("/contact", throttle.Handler(apperr.FlowContact), h.contactHandler.SendContactMessage)

		// admin routes exist only when credentials are configured
		if h.config.AdminUser == "" || h.config.AdminPass == "" {
			log.Printf("[API] ADMIN_USER/ADMIN_PASS not set, admin routes disabled")
			return
		}
		admin := api.Group("/admin", gin.BasicAuth(gin.Accounts{h.config.AdminUser: h.config.AdminPass}))
		{
			admin.GET("/newsletter/subscribers", h.newsletterHandler.ListSubscribers)
			admin.POST("/newsletter/welcome-email", h.newsletterHandler.SendWelcomeEmail)
			admin.POST("/newsletter/admin-notification", h.newsletterHandler.SendAdminNotification)
			admin.POST("/newsletter/unsubscribe-notification", h.newsletterHandler.SendUnsubscribeNotification)
			admin.GET("/contact/submissions", h.contactHandler.ListSubmissions)
			admin.GET("/rate-limit/stats", h.rateLimitHandler.GetStats)
		}
	}
}
