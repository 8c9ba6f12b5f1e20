package udp

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"mangahub/pkg/logger"
	"mangahub/pkg/models"
)

// AdminServer is the thin HTTP listener co-located with the UDP bus that
// accepts event-injection POSTs from the gateway (spec §4.3's admin port).
type AdminServer struct {
	Addr   string
	bus    *Server
	engine *gin.Engine
}

func NewAdminServer(addr string, bus *Server) *AdminServer {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	a := &AdminServer{Addr: addr, bus: bus, engine: r}
	r.POST("/trigger", a.handleTrigger)
	return a
}

func (a *AdminServer) handleTrigger(c *gin.Context) {
	var notification models.NotificationFrame
	if err := c.ShouldBindJSON(&notification); err != nil {
		logger.Admin("udp", "/trigger", http.StatusBadRequest, err)
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "invalid notification"})
		return
	}

	a.bus.Trigger(notification)
	logger.Admin("udp", "/trigger", http.StatusAccepted, nil)
	c.JSON(http.StatusAccepted, gin.H{"success": true})
}

func (a *AdminServer) Start() error {
	return a.engine.Run(a.Addr)
}
