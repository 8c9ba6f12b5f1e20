package gateway

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"mangahub/internal/auth"
	"mangahub/internal/chapter"
	"mangahub/internal/library"
	"mangahub/internal/manga"
	"mangahub/internal/progress"
	"mangahub/internal/rating"
	"mangahub/internal/websocket"
	"mangahub/pkg/cache"
	"mangahub/pkg/config"
	"mangahub/pkg/logger"
	"mangahub/pkg/models"
)

// RouterDeps collects everything NewRouter needs to mount C5's full
// HTTP surface: the REST front door, the WebSocket upgrade, and the SSE
// bridge (spec §4.5, §6).
type RouterDeps struct {
	Config config.CORSConfig

	Auth     auth.Service
	Manga    manga.Service
	Chapter  chapter.Service
	Library  library.Service
	Progress progress.Service
	Rating   rating.Service

	RateLimiter *cache.RateLimiter
	Triggers    *Triggers
	ChatHub     *websocket.Hub
	SSE         *SSEHandler
}

// NewRouter wires every route the gateway serves. Routes whose mutation
// fires a cross-bus side effect (progress update, library add/remove,
// manga/chapter create) mount this package's own Handlers wrapper (see
// handlers.go); every other route, including the rating mutations and the
// batch progress update, mounts the domain package's own Handler directly
// and fires no trigger.
func NewRouter(deps RouterDeps) *gin.Engine {
	r := gin.New()
	r.Use(logger.GinLogger(), logger.Recovery())
	r.Use(CORS(deps.Config))
	if deps.RateLimiter != nil {
		r.Use(RateLimit(deps.RateLimiter))
	}

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":            "ok",
			"sse_progress":      deps.SSE.progressHub.ClientCount(),
			"sse_notifications": deps.SSE.notificationsHub.ClientCount(),
			"tcp_sessions":      deps.SSE.tcpSessions.ActiveUsers(),
		})
	})

	mangaHandler := manga.NewHandler(deps.Manga)
	chapterHandler := chapter.NewHandler(deps.Chapter)
	ratingHandler := rating.NewHandler(deps.Rating)
	libraryHandler := library.NewHandler(deps.Library)
	progressHandler := progress.NewHandler(deps.Progress)
	wsHandler := websocket.NewHandler(deps.ChatHub, deps.Auth)
	gatewayHandlers := NewHandlers(deps.Manga, deps.Chapter, deps.Library, deps.Progress, deps.Triggers, deps.ChatHub, deps.SSE.tcpSessions)

	authHandler := auth.NewHandler(deps.Auth)
	authGroup := r.Group("/auth")
	{
		authGroup.POST("/register", authHandler.Register)
		authGroup.POST("/login", authHandler.Login)
		authGroup.POST("/refresh", auth.JWTMiddleware(deps.Auth), authHandler.Refresh)
		authGroup.GET("/me", auth.JWTMiddleware(deps.Auth), authHandler.Me)
		authGroup.POST("/logout", auth.JWTMiddleware(deps.Auth), gatewayHandlers.Logout)
	}

	mangaGroup := r.Group("/manga")
	mangaGroup.Use(auth.OptionalJWTMiddleware(deps.Auth))
	{
		mangaGroup.GET("", mangaHandler.ListManga)
		mangaGroup.GET("/popular", mangaHandler.Popular)
		mangaGroup.GET("/stats", mangaHandler.Stats)
		mangaGroup.GET("/:id", mangaHandler.GetManga)
		mangaGroup.GET("/:id/chapters", chapterHandler.ListChapters)
		mangaGroup.GET("/:id/ratings", ratingHandler.GetRatingStats)
		mangaGroup.POST("/:id/rating", ratingHandler.RateManga)
		mangaGroup.DELETE("/:id/rating", ratingHandler.DeleteRating)

		admin := mangaGroup.Group("")
		admin.Use(auth.JWTMiddleware(deps.Auth), RequireAdmin())
		admin.POST("", gatewayHandlers.CreateManga)
		admin.POST("/:id/chapters", gatewayHandlers.CreateChapter)
	}

	r.GET("/chapters/:chapter_id/pages", auth.OptionalJWTMiddleware(deps.Auth), chapterHandler.GetChapterPages)

	users := r.Group("/users")
	users.Use(auth.JWTMiddleware(deps.Auth))
	{
		users.POST("/library", gatewayHandlers.AddToLibrary)
		users.DELETE("/library/:manga_id", gatewayHandlers.RemoveFromLibrary)
		users.GET("/library", libraryHandler.GetLibrary)
		users.GET("/library/stats", libraryHandler.GetLibraryStats)

		users.PUT("/progress", gatewayHandlers.UpdateProgress)
		users.PUT("/progress/batch", progressHandler.UpdateProgressBatch)
		users.GET("/progress", progressHandler.GetProgress)
	}

	r.GET("/ws/chat", wsHandler.ServeWS)
	r.GET("/rooms/:room_id", auth.JWTMiddleware(deps.Auth), wsHandler.GetRoomInfo)

	sse := r.Group("/sse")
	sse.Use(auth.JWTMiddleware(deps.Auth))
	{
		sse.GET("/progress", deps.SSE.StreamProgress)
		sse.GET("/notifications", deps.SSE.StreamNotifications)
	}

	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, models.NewErrorResponse(models.ErrCodeNotFound, "route not found", nil))
	})

	return r
}
