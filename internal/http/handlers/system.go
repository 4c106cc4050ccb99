package handlers

import (
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"
)

// AppInfo is the public client configuration served by /api/config.
type AppInfo struct {
	Name         string `json:"app_name"`
	Version      string `json:"version"`
	PrimaryColor string `json:"primary_color"`
	Backend      string `json:"backend"`
}

// DefaultAppInfo matches the web client's built-in settings.
var DefaultAppInfo = AppInfo{Name: "浙里游", Version: "1.0.0", PrimaryColor: "#4CD1C4"}

var (
	routerMu sync.RWMutex
	router   *gin.Engine
)

// SetRouter stores the active gin engine for later inspection (e.g., /api/routes).
func SetRouter(r *gin.Engine) {
	routerMu.Lock()
	defer routerMu.Unlock()
	router = r
}

func (a *API) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok", "backend": a.App.Backend})
}

// GET /api/config
func (a *API) Config(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"success": true, "data": a.App})
}

func Routes(c *gin.Context) {
	routerMu.RLock()
	r := router
	routerMu.RUnlock()
	if r == nil {
		RespondError(c, http.StatusServiceUnavailable, "router is not ready", nil)
		return
	}

	routes := r.Routes()
	out := make([]gin.H, 0, len(routes))
	for _, rt := range routes {
		out = append(out, gin.H{
			"method":  rt.Method,
			"path":    rt.Path,
			"handler": rt.Handler,
		})
	}
	c.JSON(http.StatusOK, gin.H{"routes": out})
}
