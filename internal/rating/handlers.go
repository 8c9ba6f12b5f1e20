// Package rating - Rating HTTP Handlers
// HTTP handlers cho rating API endpoints
// Endpoints:
//   - POST /manga/:id/rating    - submit/update the caller's 1-5 rating
//   - GET  /manga/:id/ratings   - aggregate stats (+ caller's own rating)
//   - DELETE /manga/:id/rating  - remove the caller's rating
package rating

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"mangahub/internal/auth"
	"mangahub/pkg/models"
)

type Handler struct {
	svc Service
}

func NewHandler(svc Service) *Handler {
	return &Handler{svc: svc}
}

func writeAppErr(c *gin.Context, err error) {
	if appErr, ok := err.(*models.AppError); ok {
		c.JSON(appErr.StatusCode, models.NewErrorResponse(appErr.Code, appErr.Message, appErr.Details))
		return
	}
	c.JSON(http.StatusInternalServerError, models.NewErrorResponse(models.ErrCodeInternal, "unexpected error", nil))
}

func (h *Handler) RateManga(c *gin.Context) {
	claims := auth.GetCurrentClaims(c)
	if claims == nil {
		c.JSON(http.StatusUnauthorized, models.NewErrorResponse(models.ErrCodeUnauthorized, "authentication required", nil))
		return
	}

	mangaID := c.Param("id")
	var req models.RateMangaRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest,
			models.NewErrorResponse(models.ErrCodeBadRequest, "invalid JSON body", map[string]interface{}{"error": err.Error()}))
		return
	}

	rating, err := h.svc.Rate(c.Request.Context(), claims.UserID, mangaID, req)
	if err != nil {
		writeAppErr(c, err)
		return
	}

	c.JSON(http.StatusOK, models.NewSuccessResponse(rating, "rating submitted"))
}

func (h *Handler) GetRatingStats(c *gin.Context) {
	mangaID := c.Param("id")

	forUserID := ""
	if claims := auth.GetCurrentClaims(c); claims != nil {
		forUserID = claims.UserID
	}

	stats, err := h.svc.GetStats(c.Request.Context(), mangaID, forUserID)
	if err != nil {
		writeAppErr(c, err)
		return
	}

	c.JSON(http.StatusOK, models.NewSuccessResponse(stats, "rating stats"))
}

func (h *Handler) DeleteRating(c *gin.Context) {
	claims := auth.GetCurrentClaims(c)
	if claims == nil {
		c.JSON(http.StatusUnauthorized, models.NewErrorResponse(models.ErrCodeUnauthorized, "authentication required", nil))
		return
	}

	mangaID := c.Param("id")
	if err := h.svc.DeleteRating(c.Request.Context(), claims.UserID, mangaID); err != nil {
		writeAppErr(c, err)
		return
	}

	c.JSON(http.StatusOK, models.NewSuccessResponse(gin.H{"manga_id": mangaID, "removed": true}, "rating removed"))
}
