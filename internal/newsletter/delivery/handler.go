package delivery

import (
	"net/http"

	"improtango-backend/internal/newsletter/dto"
	"improtango-backend/internal/newsletter/usecase"
	"improtango-backend/pkg/apperr"
	"improtango-backend/pkg/response"

	"github.com/gin-gonic/gin"
)

// NewsletterHandler handles newsletter HTTP requests
type NewsletterHandler struct {
	newsletterUsecase usecase.NewsletterUsecase
}

func NewNewsletterHandler(newsletterUsecase usecase.NewsletterUsecase) *NewsletterHandler {
	return &NewsletterHandler{newsletterUsecase: newsletterUsecase}
}

// Subscribe
// POST /api/newsletter/subscribe
func (h *NewsletterHandler) Subscribe(c *gin.Context) {
	var req dto.EmailRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, apperr.FlowNewsletter)
		return
	}

	resp, err := h.newsletterUsecase.SubscribeAndNotify(c.Request.Context(), req.Email)
	if err != nil {
		response.Error(c, err, apperr.FlowNewsletter)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// Unsubscribe
// POST /api/newsletter/unsubscribe
func (h *NewsletterHandler) Unsubscribe(c *gin.Context) {
	var req dto.EmailRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, apperr.FlowUnsubscribe)
		return
	}

	resp, err := h.newsletterUsecase.UnsubscribeAndNotify(c.Request.Context(), req.Email)
	if err != nil {
		response.Error(c, err, apperr.FlowUnsubscribe)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// CheckSubscription
// GET /api/newsletter/subscription?email=
func (h *NewsletterHandler) CheckSubscription(c *gin.Context) {
	status, err := h.newsletterUsecase.CheckSubscription(c.Request.Context(), c.Query("email"))
	if err != nil {
		response.Error(c, err, apperr.FlowUnsubscribe)
		return
	}
	c.JSON(http.StatusOK, status)
}

// ListSubscribers
// GET /api/admin/newsletter/subscribers
func (h *NewsletterHandler) ListSubscribers(c *gin.Context) {
	subs, err := h.newsletterUsecase.List(c.Request.Context())
	if err != nil {
		response.Error(c, err, apperr.FlowNewsletter)
		return
	}
	c.JSON(http.StatusOK, dto.SubscribersResponse{Subscribers: subs, Total: len(subs)})
}

// SendWelcomeEmail
// POST /api/admin/newsletter/welcome-email
func (h *NewsletterHandler) SendWelcomeEmail(c *gin.Context) {
	var req dto.EmailRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, apperr.FlowNewsletter)
		return
	}
	if err := h.newsletterUsecase.SendWelcomeEmail(c.Request.Context(), req.Email); err != nil {
		response.Error(c, err, apperr.FlowNewsletter)
		return
	}
	c.JSON(http.StatusOK, dto.NotificationResult{Success: true})
}

// SendAdminNotification
// POST /api/admin/newsletter/admin-notification
func (h *NewsletterHandler) SendAdminNotification(c *gin.Context) {
	var req dto.EmailRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, apperr.FlowNewsletter)
		return
	}
	if err := h.newsletterUsecase.SendAdminNotification(c.Request.Context(), req.Email); err != nil {
		response.Error(c, err, apperr.FlowNewsletter)
		return
	}
	c.JSON(http.StatusOK, dto.NotificationResult{Success: true})
}

// SendUnsubscribeNotification always answers 200; failures are in the body.
// POST /api/admin/newsletter/unsubscribe-notification
func (h *NewsletterHandler) SendUnsubscribeNotification(c *gin.Context) {
	var req dto.EmailRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, apperr.FlowUnsubscribe)
		return
	}
	c.JSON(http.StatusOK, h.newsletterUsecase.SendUnsubscribeNotification(c.Request.Context(), req.Email))
}
