package chapter

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
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

// ListChapters handles GET /manga/:id/chapters.
func (h *Handler) ListChapters(c *gin.Context) {
	mangaID := c.Param("id")
	limit, offset := 50, 0
	if v, err := strconv.Atoi(c.Query("limit")); err == nil {
		limit = v
	}
	if v, err := strconv.Atoi(c.Query("offset")); err == nil {
		offset = v
	}

	resp, err := h.svc.List(c.Request.Context(), mangaID, limit, offset)
	if err != nil {
		writeAppErr(c, err)
		return
	}

	c.JSON(http.StatusOK, models.NewSuccessResponse(resp, "chapter list"))
}

// GetChapterPages handles GET /chapters/:chapter_id/pages.
func (h *Handler) GetChapterPages(c *gin.Context) {
	chapterID := c.Param("chapter_id")
	ch, err := h.svc.GetPages(c.Request.Context(), chapterID)
	if err != nil {
		writeAppErr(c, err)
		return
	}

	c.JSON(http.StatusOK, models.NewSuccessResponse(ch, "chapter pages"))
}

// CreateChapter handles the admin-only POST /manga/:id/chapters. Side-effect
// fan-out (notifying the UDP bus of the release) is the gateway's job.
func (h *Handler) CreateChapter(c *gin.Context) {
	mangaID := c.Param("id")
	var req models.CreateChapterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest,
			models.NewErrorResponse(models.ErrCodeBadRequest, "invalid JSON body", map[string]interface{}{"error": err.Error()}))
		return
	}

	ch, err := h.svc.Create(c.Request.Context(), mangaID, req)
	if err != nil {
		writeAppErr(c, err)
		return
	}

	c.JSON(http.StatusCreated, models.NewSuccessResponse(ch, "chapter created"))
}
