package api

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"photo-marketplace/internal/models"
	"photo-marketplace/internal/service"
	"photo-marketplace/internal/util"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Handler contains HTTP handlers
type Handler struct {
	ledger       *service.LedgerService
	entitlements *service.EntitlementService
	previews     *service.PreviewService
	payouts      *service.PayoutService
}

// NewHandler creates a new HTTP handler
func NewHandler(
	ledger *service.LedgerService,
	entitlements *service.EntitlementService,
	previews *service.PreviewService,
	payouts *service.PayoutService,
) *Handler {
	return &Handler{
		ledger:       ledger,
		entitlements: entitlements,
		previews:     previews,
		payouts:      payouts,
	}
}

// SetupRoutes sets up HTTP routes
func (h *Handler) SetupRoutes(router *gin.Engine) {
	router.Use(gin.Recovery())
	router.Use(prometheusMiddleware())
	router.Use(gin.Logger())

	router.GET("/health", h.healthCheck)
	router.GET("/ready", h.readinessCheck)

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	v1 := router.Group("/api/v1")
	{
		v1.POST("/orders", h.createOrder)
		v1.GET("/orders/:id", h.getOrder)
		v1.POST("/payments/webhook", h.paymentWebhook)
		v1.GET("/photos/:id/access", h.resolveAccess)
		v1.GET("/photos/:id/view", h.viewPhoto)
		v1.GET("/payouts", h.listPayouts)
		v1.POST("/payouts/compute", h.computePayouts)
	}
}

// viewerFromRequest reads the identity the upstream provider attached to the
// request. Trusted verbatim; the provider authenticates, we only decide.
func viewerFromRequest(c *gin.Context) models.Viewer {
	return models.Viewer{
		UserID: c.GetHeader("X-User-ID"),
		Role:   models.Role(c.GetHeader("X-User-Role")),
	}
}

// healthCheck handles health check requests
func (h *Handler) healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "healthy",
		"time":   time.Now().Unix(),
	})
}

// readinessCheck handles readiness check requests
func (h *Handler) readinessCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ready",
		"time":   time.Now().Unix(),
	})
}

// createOrder handles order creation
func (h *Handler) createOrder(c *gin.Context) {
	var req service.CreateOrderRequest

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request body",
			"details": err.Error(),
		})
		return
	}

	order, lines, err := h.ledger.CreateOrder(c.Request.Context(), &req)
	if err != nil {
		if errors.Is(err, models.ErrValidation) {
			c.JSON(http.StatusBadRequest, gin.H{
				"error":   "Invalid order",
				"details": err.Error(),
			})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to create order",
			"details": err.Error(),
		})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"order": order,
		"lines": lines,
	})
}

// getOrder handles get order by ID
func (h *Handler) getOrder(c *gin.Context) {
	order, lines, err := h.ledger.GetOrder(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{
			"error":   "Order not found",
			"details": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"order": order,
		"lines": lines,
	})
}

// paymentWebhook applies a payment-gateway event to the ledger. Dropped
// events (replays, stale sequence numbers, terminal orders) return 200 so
// the gateway stops retrying them; only validation problems and outages
// surface as errors.
func (h *Handler) paymentWebhook(c *gin.Context) {
	var ev models.PaymentEvent
	if err := c.ShouldBindJSON(&ev); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid webhook body",
			"details": err.Error(),
		})
		return
	}

	order, err := h.ledger.ApplyPaymentEvent(c.Request.Context(), &ev)
	if err != nil {
		switch {
		case errors.Is(err, models.ErrConflict):
			c.JSON(http.StatusOK, gin.H{"dropped": true, "reason": err.Error()})
		case errors.Is(err, models.ErrValidation):
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid event", "details": err.Error()})
		case errors.Is(err, models.ErrNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Order not found"})
		case errors.Is(err, models.ErrUnavailable):
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Retry later", "details": err.Error()})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to apply event", "details": err.Error()})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"order": order})
}

// resolveAccess answers what the requesting viewer may do with a photo
func (h *Handler) resolveAccess(c *gin.Context) {
	viewer := viewerFromRequest(c)
	level := h.entitlements.ResolveAccess(c.Request.Context(), viewer, c.Param("id"))

	c.JSON(http.StatusOK, gin.H{
		"photo_id":     c.Param("id"),
		"access_level": level,
	})
}

// viewPhoto resolves access and returns the rendering the viewer is allowed
// to receive. Protected views never carry the original URL.
func (h *Handler) viewPhoto(c *gin.Context) {
	viewer := viewerFromRequest(c)
	photoID := c.Param("id")

	level := h.entitlements.ResolveAccess(c.Request.Context(), viewer, photoID)
	if level == models.AccessNone {
		c.JSON(http.StatusNotFound, gin.H{"error": "Photo not found"})
		return
	}

	photo, err := h.ledger.GetPhoto(c.Request.Context(), photoID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Photo not found"})
		return
	}

	c.JSON(http.StatusOK, h.previews.RenderPreview(photo, level))
}

// listPayouts returns payout records; admin only
func (h *Handler) listPayouts(c *gin.Context) {
	if viewerFromRequest(c).Role != models.RoleAdmin {
		c.JSON(http.StatusForbidden, gin.H{"error": "Admin role required"})
		return
	}

	records, err := h.payouts.ListPayouts(c.Request.Context(), c.Query("status"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list payouts", "details": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"payouts": records})
}

// computePayouts triggers a payout batch for an explicit period; admin only
func (h *Handler) computePayouts(c *gin.Context) {
	if viewerFromRequest(c).Role != models.RoleAdmin {
		c.JSON(http.StatusForbidden, gin.H{"error": "Admin role required"})
		return
	}

	var period models.PayoutPeriod
	if err := c.ShouldBindJSON(&period); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid period", "details": err.Error()})
		return
	}

	records, err := h.payouts.ComputePayouts(c.Request.Context(), period)
	if err != nil {
		if errors.Is(err, models.ErrValidation) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid period", "details": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Payout computation failed", "details": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"payouts": records})
}

// prometheusMiddleware collects HTTP metrics
func prometheusMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		duration := time.Since(start).Seconds()
		status := strconv.Itoa(c.Writer.Status())

		util.HTTPRequestDuration.WithLabelValues(
			c.Request.Method,
			c.FullPath(),
			status,
		).Observe(duration)

		util.HTTPRequestsTotal.WithLabelValues(
			c.Request.Method,
			c.FullPath(),
			status,
		).Inc()
	}
}
