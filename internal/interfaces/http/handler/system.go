package handler

import (
	"runtime"
	"time"

	"github.com/gin-gonic/gin"
)

// Pingable is anything the health check can probe
type Pingable interface {
	Ping() error
}

// SystemHandler handles health and liveness endpoints
type SystemHandler struct {
	BaseHandler
	db        Pingable
	startTime time.Time
}

// NewSystemHandler creates a new SystemHandler. db may be nil when the
// connector runs without a database.
func NewSystemHandler(db Pingable) *SystemHandler {
	return &SystemHandler{
		db:        db,
		startTime: time.Now(),
	}
}

// RegisterRoutes registers system routes
func (h *SystemHandler) RegisterRoutes(rg *gin.RouterGroup) {
	system := rg.Group("/system")
	{
		system.GET("/health", h.Health)
		system.GET("/info", h.Info)
	}
}

// healthResponse reports component liveness
type healthResponse struct {
	Status   string `json:"status"`
	Database string `json:"database,omitempty"`
}

// Health reports service and database liveness
func (h *SystemHandler) Health(c *gin.Context) {
	resp := healthResponse{Status: "ok"}
	if h.db != nil {
		resp.Database = "ok"
		if err := h.db.Ping(); err != nil {
			resp.Status = "degraded"
			resp.Database = "unreachable"
		}
	}
	h.Success(c, resp)
}

// infoResponse carries basic build/runtime information
type infoResponse struct {
	Name      string `json:"name"`
	GoVersion string `json:"go_version"`
	Uptime    string `json:"uptime"`
}

// Info returns basic service information
func (h *SystemHandler) Info(c *gin.Context) {
	h.Success(c, infoResponse{
		Name:      "optilog-connector",
		GoVersion: runtime.Version(),
		Uptime:    time.Since(h.startTime).Round(time.Second).String(),
	})
}
