package server

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/ngenohkevin/sysinfo-agent/internal/node"
	"github.com/ngenohkevin/sysinfo-agent/internal/report"
)

// Version is the agent version reported by the health check
const Version = "1.0.0"

// Reporter produces a system report
type Reporter interface {
	Collect() report.Report
}

// Handlers holds all HTTP handlers
type Handlers struct {
	reporter Reporter
	nodes    *node.Registry
}

// NewHandlers creates a new handlers instance
func NewHandlers(reporter Reporter, nodes *node.Registry) *Handlers {
	return &Handlers{
		reporter: reporter,
		nodes:    nodes,
	}
}

// RegisterRoutes attaches the agent routes to r
func RegisterRoutes(r gin.IRouter, h *Handlers) {
	r.GET("/health", h.HealthCheck)

	r.POST("/sysinfo/check", h.CheckSystemInfo)

	r.GET("/nodes", h.ListNodes)
	r.POST("/nodes/:id/execute", h.ExecuteNode)
}

// HealthCheck handles GET /health
func (h *Handlers) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "ok",
		"timestamp": time.Now().UTC(),
		"version":   Version,
	})
}

// CheckSystemInfo handles POST /sysinfo/check. Query failures surface as
// sentinel values in the report, never as an error status. PureJSON keeps
// characters such as < and & in platform strings unescaped.
func (h *Handlers) CheckSystemInfo(c *gin.Context) {
	start := time.Now()
	info := h.reporter.Collect()
	reportDuration.Observe(time.Since(start).Seconds())

	c.PureJSON(http.StatusOK, info)
}

// ListNodes handles GET /nodes
func (h *Handlers) ListNodes(c *gin.Context) {
	defs := h.nodes.List()
	c.JSON(http.StatusOK, gin.H{
		"nodes": defs,
		"total": len(defs),
	})
}

// ExecuteNode handles POST /nodes/:id/execute
func (h *Handlers) ExecuteNode(c *gin.Context) {
	id := c.Param("id")

	out, err := h.nodes.Execute(c.Request.Context(), id)
	if errors.Is(err, node.ErrNodeNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	if err != nil {
		nodeExecutions.WithLabelValues(id, "error").Inc()
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	nodeExecutions.WithLabelValues(id, "ok").Inc()
	c.PureJSON(http.StatusOK, out)
}
