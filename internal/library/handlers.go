package library

import (
	"net/http"
	"strconv"

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

// AddToLibrary handles POST /users/library. The gateway layer is
// responsible for the library_add UDP-bus side effect after this succeeds
// (spec §4.5's side-effect contract) — this handler only performs the write.
func (h *Handler) AddToLibrary(c *gin.Context) {
	claims := auth.GetCurrentClaims(c)
	if claims == nil {
		c.JSON(http.StatusUnauthorized, models.NewErrorResponse(models.ErrCodeUnauthorized, "unauthorized", nil))
		return
	}

	var req models.AddToLibraryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest,
			models.NewErrorResponse(models.ErrCodeBadRequest, "invalid JSON body", map[string]interface{}{"error": err.Error()}))
		return
	}

	entry, err := h.svc.Add(c.Request.Context(), claims.UserID, req)
	if err != nil {
		writeAppErr(c, err)
		return
	}

	c.JSON(http.StatusCreated, models.NewSuccessResponse(entry, "added to library"))
}

// RemoveFromLibrary handles DELETE /users/library/:manga_id.
func (h *Handler) RemoveFromLibrary(c *gin.Context) {
	claims := auth.GetCurrentClaims(c)
	if claims == nil {
		c.JSON(http.StatusUnauthorized, models.NewErrorResponse(models.ErrCodeUnauthorized, "unauthorized", nil))
		return
	}

	mangaID := c.Param("manga_id")
	if err := h.svc.Remove(c.Request.Context(), claims.UserID, mangaID); err != nil {
		writeAppErr(c, err)
		return
	}

	c.JSON(http.StatusOK, models.NewSuccessResponse(gin.H{"manga_id": mangaID, "removed": true}, "removed from library"))
}

// GetLibrary handles GET /users/library.
func (h *Handler) GetLibrary(c *gin.Context) {
	claims := auth.GetCurrentClaims(c)
	if claims == nil {
		c.JSON(http.StatusUnauthorized, models.NewErrorResponse(models.ErrCodeUnauthorized, "unauthorized", nil))
		return
	}

	var filter models.LibraryFilterRequest
	filter.Status = c.Query("status")
	if v, err := strconv.Atoi(c.Query("limit")); err == nil {
		filter.Limit = v
	}
	if v, err := strconv.Atoi(c.Query("offset")); err == nil {
		filter.Offset = v
	}

	list, err := h.svc.List(c.Request.Context(), claims.UserID, filter)
	if err != nil {
		writeAppErr(c, err)
		return
	}

	c.JSON(http.StatusOK, models.NewSuccessResponse(list, "user library"))
}

// GetLibraryStats handles GET /users/library/stats.
func (h *Handler) GetLibraryStats(c *gin.Context) {
	claims := auth.GetCurrentClaims(c)
	if claims == nil {
		c.JSON(http.StatusUnauthorized, models.NewErrorResponse(models.ErrCodeUnauthorized, "unauthorized", nil))
		return
	}

	stats, err := h.svc.Stats(c.Request.Context(), claims.UserID)
	if err != nil {
		writeAppErr(c, err)
		return
	}

	c.JSON(http.StatusOK, models.NewSuccessResponse(stats, "library stats"))
}
