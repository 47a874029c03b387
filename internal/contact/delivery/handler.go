package delivery

import (
	"net/http"
	"strconv"

	"improtango-backend/internal/contact/dto"
	"improtango-backend/internal/contact/usecase"
	"improtango-backend/pkg/apperr"
	"improtango-backend/pkg/response"

	"github.com/gin-gonic/gin"
)

// ContactHandler handles contact form HTTP requests
type ContactHandler struct {
	contactUsecase usecase.ContactUsecase
}

func NewContactHandler(contactUsecase usecase.ContactUsecase) *ContactHandler {
	return &ContactHandler{contactUsecase: contactUsecase}
}

// SendContactMessage
// POST /api/contact
func (h *ContactHandler) SendContactMessage(c *gin.Context) {
	var req dto.ContactRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, apperr.FlowContact)
		return
	}

	resp, err := h.contactUsecase.SendContactMessage(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err, apperr.FlowContact)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// ListSubmissions
// GET /api/admin/contact/submissions?status=failed&limit=50&offset=0
func (h *ContactHandler) ListSubmissions(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

	subs, total, err := h.contactUsecase.ListSubmissions(c.Request.Context(), c.Query("status"), limit, offset)
	if err != nil {
		response.Error(c, err, apperr.FlowContact)
		return
	}
	c.JSON(http.StatusOK, dto.SubmissionsResponse{Submissions: subs, Total: total})
}
