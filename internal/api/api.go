// Package api serves the computation pipeline over HTTP.
package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"dev.helix.quantum/internal/config"
	"dev.helix.quantum/internal/models"
	"dev.helix.quantum/internal/service"
)

// Handler wires the shared service into gin routes.
type Handler struct {
	svc    *service.Service
	logger *logrus.Logger
}

// NewHandler creates an API handler around the shared service.
func NewHandler(svc *service.Service, logger *logrus.Logger) *Handler {
	if logger == nil {
		logger = logrus.New()
	}
	return &Handler{svc: svc, logger: logger}
}

// Router builds the gin engine with all routes registered.
func Router(svc *service.Service, cfg *config.Config, logger *logrus.Logger) *gin.Engine {
	if cfg != nil && cfg.Server.Mode != "" {
		gin.SetMode(cfg.Server.Mode)
	}
	r := gin.New()
	r.Use(gin.Recovery())

	h := NewHandler(svc, logger)

	r.GET("/health", h.Health)
	r.GET("/metrics", gin.WrapH(svc.Metrics().Handler()))

	v1 := r.Group("/v1")
	v1.POST("/compute", h.Compute)
	v1.GET("/backends", h.Backends)
	v1.GET("/operations", h.Operations)
	v1.GET("/operations/:name", h.OperationInfo)

	return r
}

// ComputeRequest is the POST /v1/compute body.
type ComputeRequest struct {
	Query string `json:"query" binding:"required"`
	Shots int    `json:"shots"`
}

// ComputeResponse carries the rendered report for one computation.
type ComputeResponse struct {
	RequestID string `json:"request_id"`
	Report    string `json:"report"`
}

// Compute runs a natural-language computation.
// POST /v1/compute
func (h *Handler) Compute(c *gin.Context) {
	var req ComputeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing required parameter: query"})
		return
	}

	requestID := uuid.New().String()
	h.logger.WithFields(logrus.Fields{
		"request_id": requestID,
		"shots":      req.Shots,
	}).Info("Compute request")

	report := h.svc.QuantumCompute(c.Request.Context(), req.Query, req.Shots)
	c.JSON(http.StatusOK, ComputeResponse{RequestID: requestID, Report: report})
}

// Backends lists remote backends or the local-only notice.
// GET /v1/backends
func (h *Handler) Backends(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"backends": h.svc.ListBackends(c.Request.Context())})
}

// Operations lists the supported operation kinds.
// GET /v1/operations
func (h *Handler) Operations(c *gin.Context) {
	ops := models.AllOperations
	names := make([]string, 0, len(ops))
	for _, op := range ops {
		names = append(names, string(op))
	}
	c.JSON(http.StatusOK, gin.H{"operations": names, "count": len(names)})
}

// OperationInfo describes one operation kind.
// GET /v1/operations/:name
func (h *Handler) OperationInfo(c *gin.Context) {
	name := c.Param("name")
	info := h.svc.CircuitInfo(name)
	if _, ok := models.ParseOperationType(name); !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": info})
		return
	}
	c.JSON(http.StatusOK, gin.H{"operation": name, "info": info})
}

// Health reports liveness.
// GET /health
func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "healthy", "service": "quantumd"})
}
