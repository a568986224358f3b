package v1

import (
	"net/http"

	"jazzcoasters-backend/internal/delivery/http/response"
	"jazzcoasters-backend/internal/domain"
	"jazzcoasters-backend/pkg/security"

	"github.com/gin-gonic/gin"
)

const maxContactBodyBytes = 64 << 10

type ContactHandler struct {
	contactUC domain.ContactUsecase
}

// NewContactHandler registers the contact routes (public, no auth required)
func NewContactHandler(public *gin.RouterGroup, contactUC domain.ContactUsecase) {
	handler := &ContactHandler{
		contactUC: contactUC,
	}

	public.POST("/contact", handler.SubmitContact)
}

// SubmitContact godoc
// @Summary      Submit booking inquiry
// @Description  Validates a booking inquiry, filters bots and abuse, then emails the band and a receipt to the submitter.
// @Tags         contact
// @Accept       json
// @Produce      json
// @Param        inquiry  body      domain.InquiryInput  true  "Booking inquiry"
// @Success      200      {object}  response.Response
// @Failure      400      {object}  response.Response
// @Failure      403      {object}  response.Response
// @Failure      429      {object}  response.Response
// @Failure      500      {object}  response.Response
// @Failure      502      {object}  response.Response
// @Router       /contact [post]
func (h *ContactHandler) SubmitContact(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxContactBodyBytes)

	meta := domain.RequestMeta{
		RequestID:     response.RequestID(c),
		ClientIP:      security.ClientIP(c.GetHeader("X-Forwarded-For"), c.GetHeader("X-Real-IP")),
		Origin:        c.GetHeader("Origin"),
		Referer:       c.GetHeader("Referer"),
		Host:          c.Request.Host,
		ForwardedHost: c.GetHeader("X-Forwarded-Host"),
		UserAgent:     c.GetHeader("User-Agent"),
	}

	var req domain.InquiryInput
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(h.contactUC.RejectMalformed(c.Request.Context(), meta, err))
		return
	}

	result, err := h.contactUC.SubmitInquiry(c.Request.Context(), meta, &req)
	if err != nil {
		c.Error(err)
		return
	}

	response.Success(c, http.StatusOK, result.Message, nil)
}
