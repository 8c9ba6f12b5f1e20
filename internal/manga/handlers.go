package manga

import (
	"net/http"
	"strconv"
	"strings"

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

func (h *Handler) ListManga(c *gin.Context) {
	var req models.MangaSearchRequest
	req.Query = c.Query("q")
	req.Status = c.Query("status")
	req.Type = c.Query("type")
	req.SortBy = c.Query("sort_by")
	req.Order = c.Query("order")
	if genres := c.Query("genres"); genres != "" {
		req.Genres = strings.Split(genres, ",")
	}

	if limitStr := c.Query("limit"); limitStr != "" {
		if v, err := strconv.Atoi(limitStr); err == nil {
			req.Limit = v
		}
	}
	if offsetStr := c.Query("offset"); offsetStr != "" {
		if v, err := strconv.Atoi(offsetStr); err == nil {
			req.Offset = v
		}
	}

	resp, err := h.svc.List(c.Request.Context(), req)
	if err != nil {
		writeAppErr(c, err)
		return
	}

	c.JSON(http.StatusOK, models.NewSuccessResponse(resp, "manga list"))
}

func (h *Handler) GetManga(c *gin.Context) {
	id := c.Param("id")
	m, err := h.svc.GetByID(c.Request.Context(), id)
	if err != nil {
		writeAppErr(c, err)
		return
	}
	c.JSON(http.StatusOK, models.NewSuccessResponse(m, "manga details"))
}

func (h *Handler) Popular(c *gin.Context) {
	limit := 20
	if v, err := strconv.Atoi(c.Query("limit")); err == nil {
		limit = v
	}
	manga, err := h.svc.Popular(c.Request.Context(), limit)
	if err != nil {
		writeAppErr(c, err)
		return
	}
	c.JSON(http.StatusOK, models.NewSuccessResponse(manga, "popular manga"))
}

func (h *Handler) Stats(c *gin.Context) {
	stats, err := h.svc.Stats(c.Request.Context())
	if err != nil {
		writeAppErr(c, err)
		return
	}
	c.JSON(http.StatusOK, models.NewSuccessResponse(stats, "catalog stats"))
}

// CreateManga is the admin-only catalog entry point. Side-effect fan-out
// (notifying the UDP bus of the new title) is the gateway's responsibility,
// not this handler's — it only performs the write and returns the result.
func (h *Handler) CreateManga(c *gin.Context) {
	var req models.CreateMangaRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest,
			models.NewErrorResponse(models.ErrCodeBadRequest, "invalid JSON body", map[string]interface{}{"error": err.Error()}))
		return
	}

	m, err := h.svc.Create(c.Request.Context(), req)
	if err != nil {
		writeAppErr(c, err)
		return
	}

	c.JSON(http.StatusCreated, models.NewSuccessResponse(m, "manga created"))
}
