package tcp

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"mangahub/pkg/logger"
	"mangahub/pkg/models"
)

// AdminServer is the thin HTTP listener co-located with the TCP bus that
// accepts event-injection POSTs from the gateway (spec §4.2's admin port).
// Admin-port failures are logged and swallowed — they must never abort the
// REST/gRPC intent that triggered them (spec §7).
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
	var frame models.ProgressFrame
	if err := c.ShouldBindJSON(&frame); err != nil {
		logger.Admin("tcp", "/trigger", http.StatusBadRequest, err)
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "invalid progress frame"})
		return
	}

	a.bus.Trigger(frame)
	logger.Admin("tcp", "/trigger", http.StatusAccepted, nil)
	c.JSON(http.StatusAccepted, gin.H{"success": true})
}

func (a *AdminServer) Start() error {
	return a.engine.Run(a.Addr)
}
