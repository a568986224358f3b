package v1

import (
	"net/http"

	"jazzcoasters-backend/internal/delivery/http/response"
	"jazzcoasters-backend/internal/domain"

	"github.com/gin-gonic/gin"
)

type ShowHandler struct {
	showUC domain.ShowUsecase
}

func NewShowHandler(public *gin.RouterGroup, showUC domain.ShowUsecase) {
	handler := &ShowHandler{showUC: showUC}

	public.GET("/shows", handler.ListShows)
}

// ListShows godoc
// @Summary      List upcoming shows
// @Description  Upcoming performances from the band's public calendar feed, soonest first.
// @Tags         shows
// @Produce      json
// @Success      200  {object}  response.Response{data=[]domain.ShowEvent}
// @Failure      501  {object}  response.Response
// @Failure      502  {object}  response.Response
// @Router       /shows [get]
func (h *ShowHandler) ListShows(c *gin.Context) {
	shows, err := h.showUC.UpcomingShows(c.Request.Context())
	if err != nil {
		c.Error(err)
		return
	}

	c.Header("Cache-Control", "public, max-age=300")
	response.Success(c, http.StatusOK, "", shows)
}
