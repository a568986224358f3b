package v1

import (
	"net/http"

	"jazzcoasters-backend/internal/delivery/http/response"
	"jazzcoasters-backend/internal/domain"

	"github.com/gin-gonic/gin"
)

type InstagramHandler struct {
	instagramUC domain.InstagramUsecase
}

func NewInstagramHandler(public *gin.RouterGroup, instagramUC domain.InstagramUsecase) {
	handler := &InstagramHandler{instagramUC: instagramUC}

	public.GET("/instagram", handler.RecentMedia)
}

// RecentMedia godoc
// @Summary      Recent Instagram posts
// @Description  Proxies the band's latest Instagram media. Serves a placeholder grid with fallback=true when the Graph API is unavailable.
// @Tags         instagram
// @Produce      json
// @Success      200  {object}  response.Response{data=domain.InstagramFeed}
// @Failure      501  {object}  response.Response
// @Router       /instagram [get]
func (h *InstagramHandler) RecentMedia(c *gin.Context) {
	feed, err := h.instagramUC.RecentMedia(c.Request.Context())
	if err != nil {
		c.Error(err)
		return
	}

	if !feed.Fallback {
		c.Header("Cache-Control", "public, max-age=900")
	}
	response.Success(c, http.StatusOK, "", feed)
}
