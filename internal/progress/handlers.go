package progress

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

// UpdateProgress handles PUT /users/progress. The gateway is responsible
// for the C2 (TCP bus) broadcast, the C4 chat projection and, when a
// library status is given, the C3 trigger after this succeeds (spec §4.5's
// side-effect contract) — this handler only persists the new position.
func (h *Handler) UpdateProgress(c *gin.Context) {
	claims := auth.GetCurrentClaims(c)
	if claims == nil {
		c.JSON(http.StatusUnauthorized, models.NewErrorResponse(models.ErrCodeUnauthorized, "unauthorized", nil))
		return
	}

	var req models.UpdateProgressRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest,
			models.NewErrorResponse(models.ErrCodeBadRequest, "invalid JSON body", map[string]interface{}{"error": err.Error()}))
		return
	}

	record, err := h.svc.Update(c.Request.Context(), claims.UserID, req)
	if err != nil {
		writeAppErr(c, err)
		return
	}

	c.JSON(http.StatusOK, models.NewSuccessResponse(record, "reading progress updated"))
}

// UpdateProgressBatch handles PUT /users/progress/batch.
func (h *Handler) UpdateProgressBatch(c *gin.Context) {
	claims := auth.GetCurrentClaims(c)
	if claims == nil {
		c.JSON(http.StatusUnauthorized, models.NewErrorResponse(models.ErrCodeUnauthorized, "unauthorized", nil))
		return
	}

	var req models.UpdateProgressBatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest,
			models.NewErrorResponse(models.ErrCodeBadRequest, "invalid JSON body", map[string]interface{}{"error": err.Error()}))
		return
	}

	records, err := h.svc.UpdateBatch(c.Request.Context(), claims.UserID, req)
	if err != nil {
		writeAppErr(c, err)
		return
	}

	c.JSON(http.StatusOK, models.NewSuccessResponse(records, "reading progress updated"))
}

// GetProgress handles GET /users/progress.
func (h *Handler) GetProgress(c *gin.Context) {
	claims := auth.GetCurrentClaims(c)
	if claims == nil {
		c.JSON(http.StatusUnauthorized, models.NewErrorResponse(models.ErrCodeUnauthorized, "unauthorized", nil))
		return
	}

	list, err := h.svc.List(c.Request.Context(), claims.UserID)
	if err != nil {
		writeAppErr(c, err)
		return
	}

	c.JSON(http.StatusOK, models.NewSuccessResponse(list, "reading progress"))
}
