package gateway

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"mangahub/internal/auth"
	"mangahub/internal/chapter"
	"mangahub/internal/library"
	"mangahub/internal/manga"
	"mangahub/internal/progress"
	"mangahub/internal/websocket"
	"mangahub/pkg/models"
)

// Handlers holds the gateway's own side-effect-triggering wrappers around
// the domain services. Unlike the domain packages' own Handler types,
// these call the Service interfaces directly so a successful store
// mutation can be followed by the C2/C3 admin triggers and the C4 chat
// projection the domain handlers deliberately don't perform (spec §4.5 /
// §7's side-effect contract).
type Handlers struct {
	manga       manga.Service
	chapter     chapter.Service
	library     library.Service
	progress    progress.Service
	triggers    *Triggers
	chat        *websocket.Hub
	tcpSessions *TCPSessionManager
}

func NewHandlers(mangaSvc manga.Service, chapterSvc chapter.Service, librarySvc library.Service, progressSvc progress.Service, triggers *Triggers, chat *websocket.Hub, tcpSessions *TCPSessionManager) *Handlers {
	return &Handlers{
		manga:       mangaSvc,
		chapter:     chapterSvc,
		library:     librarySvc,
		progress:    progressSvc,
		triggers:    triggers,
		chat:        chat,
		tcpSessions: tcpSessions,
	}
}

func writeAppErr(c *gin.Context, err error) {
	if appErr, ok := err.(*models.AppError); ok {
		c.JSON(appErr.StatusCode, models.NewErrorResponse(appErr.Code, appErr.Message, appErr.Details))
		return
	}
	c.JSON(http.StatusInternalServerError, models.NewErrorResponse(models.ErrCodeInternal, "unexpected error", nil))
}

// UpdateProgress handles PUT /users/progress. On success it fires the C2
// admin trigger, a C4 chat-room projection for the manga's room, and (when
// the request also carries a library status) a C3 library_add trigger —
// the one REST intent that can legitimately touch all three buses.
func (h *Handlers) UpdateProgress(c *gin.Context) {
	claims := auth.GetCurrentClaims(c)
	if claims == nil {
		c.JSON(http.StatusUnauthorized, models.NewErrorResponse(models.ErrCodeUnauthorized, "unauthorized", nil))
		return
	}

	var req models.UpdateProgressRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.NewErrorResponse(models.ErrCodeValidation, "invalid request body", nil))
		return
	}

	record, err := h.progress.Update(c.Request.Context(), claims.UserID, req)
	if err != nil {
		writeAppErr(c, err)
		return
	}

	c.JSON(http.StatusOK, models.NewSuccessResponse(record, "reading progress updated"))

	title := req.MangaID
	if m, mErr := h.manga.GetByID(c.Request.Context(), req.MangaID); mErr == nil {
		title = m.Title
	}

	now := time.Now().Unix()
	h.triggers.ProgressAsync(models.ProgressFrame{
		UserID:     claims.UserID,
		Username:   claims.Username,
		MangaTitle: title,
		Chapter:    record.CurrentChapter,
		Timestamp:  now,
	})

	room := "manga:" + req.MangaID
	h.chat.BroadcastProgressUpdate(room, claims.UserID, claims.Username, record.CurrentChapter)

	if req.Status != "" {
		h.triggers.NotificationAsync(models.NotificationFrame{
			Type:      models.NotificationTypeLibraryAdd,
			MangaID:   req.MangaID,
			Message:   claims.Username + " marked " + title + " as " + req.Status,
			Timestamp: now,
		})
	}
}

// AddToLibrary handles POST /users/library, firing a C3 library_add
// trigger after a successful write.
func (h *Handlers) AddToLibrary(c *gin.Context) {
	claims := auth.GetCurrentClaims(c)
	if claims == nil {
		c.JSON(http.StatusUnauthorized, models.NewErrorResponse(models.ErrCodeUnauthorized, "unauthorized", nil))
		return
	}

	var req models.AddToLibraryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.NewErrorResponse(models.ErrCodeValidation, "invalid request body", nil))
		return
	}

	entry, err := h.library.Add(c.Request.Context(), claims.UserID, req)
	if err != nil {
		writeAppErr(c, err)
		return
	}

	c.JSON(http.StatusCreated, models.NewSuccessResponse(entry, "added to library"))

	h.triggers.NotificationAsync(models.NotificationFrame{
		Type:      models.NotificationTypeLibraryAdd,
		MangaID:   req.MangaID,
		Message:   claims.Username + " added a manga to their library",
		Timestamp: time.Now().Unix(),
	})
}

// RemoveFromLibrary handles DELETE /users/library/:manga_id, firing a C3
// library_remove trigger after a successful removal.
func (h *Handlers) RemoveFromLibrary(c *gin.Context) {
	claims := auth.GetCurrentClaims(c)
	if claims == nil {
		c.JSON(http.StatusUnauthorized, models.NewErrorResponse(models.ErrCodeUnauthorized, "unauthorized", nil))
		return
	}

	mangaID := c.Param("manga_id")
	if err := h.library.Remove(c.Request.Context(), claims.UserID, mangaID); err != nil {
		writeAppErr(c, err)
		return
	}

	c.JSON(http.StatusOK, models.NewSuccessResponse(gin.H{"manga_id": mangaID, "removed": true}, "removed from library"))

	h.triggers.NotificationAsync(models.NotificationFrame{
		Type:      models.NotificationTypeLibraryRemove,
		MangaID:   mangaID,
		Message:   claims.Username + " removed a manga from their library",
		Timestamp: time.Now().Unix(),
	})
}

// CreateManga handles POST /manga (admin-only), firing a C3 manga_update
// trigger after a successful catalog write.
func (h *Handlers) CreateManga(c *gin.Context) {
	var req models.CreateMangaRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.NewErrorResponse(models.ErrCodeValidation, "invalid request body", nil))
		return
	}

	m, err := h.manga.Create(c.Request.Context(), req)
	if err != nil {
		writeAppErr(c, err)
		return
	}

	c.JSON(http.StatusCreated, models.NewSuccessResponse(m, "manga created"))

	h.triggers.NotificationAsync(models.NotificationFrame{
		Type:      models.NotificationTypeMangaUpdate,
		MangaID:   m.ID,
		Message:   "new manga added: " + m.Title,
		Timestamp: time.Now().Unix(),
	})
}

// CreateChapter handles POST /manga/:id/chapters (admin-only), firing a C3
// chapter_release trigger and a C4 projection into the manga's room after a
// successful release.
func (h *Handlers) CreateChapter(c *gin.Context) {
	mangaID := c.Param("id")

	var req models.CreateChapterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.NewErrorResponse(models.ErrCodeValidation, "invalid request body", nil))
		return
	}

	ch, err := h.chapter.Create(c.Request.Context(), mangaID, req)
	if err != nil {
		writeAppErr(c, err)
		return
	}

	c.JSON(http.StatusCreated, models.NewSuccessResponse(ch, "chapter released"))

	message := "a new chapter has been released"
	if m, mErr := h.manga.GetByID(c.Request.Context(), mangaID); mErr == nil {
		message = m.Title + " chapter " + formatChapterNumber(ch.Number) + " released"
	}

	h.triggers.NotificationAsync(models.NotificationFrame{
		Type:      models.NotificationTypeChapterRelease,
		MangaID:   mangaID,
		Message:   message,
		Timestamp: time.Now().Unix(),
	})

	h.chat.BroadcastNotification("manga:"+mangaID, models.NotificationTypeChapterRelease, message)
}

// Logout handles POST /auth/logout. Its only job is dropping the caller's
// per-user TCP session (spec §6) so a stale subscription doesn't keep
// receiving progress frames for a user who's signed out; the JWT itself
// isn't revoked server-side.
func (h *Handlers) Logout(c *gin.Context) {
	claims := auth.GetCurrentClaims(c)
	if claims == nil {
		c.JSON(http.StatusUnauthorized, models.NewErrorResponse(models.ErrCodeUnauthorized, "unauthorized", nil))
		return
	}

	h.tcpSessions.DisconnectUser(claims.UserID)

	c.JSON(http.StatusOK, models.NewSuccessResponse(gin.H{"logged_out": true}, "session closed"))
}

func formatChapterNumber(n float64) string {
	if n == float64(int64(n)) {
		return strconv.FormatInt(int64(n), 10)
	}
	return strconv.FormatFloat(n, 'f', -1, 64)
}
