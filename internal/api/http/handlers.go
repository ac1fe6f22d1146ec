package http

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/wms-platform/exception-service/internal/application"
	"github.com/wms-platform/exception-service/internal/domain"
	"github.com/wms-platform/exception-service/pkg/logging"
)

// Handlers holds the operational HTTP handlers for the exception service
type Handlers struct {
	service   *application.ExceptionService
	scheduler *application.Scheduler
	orders    domain.OrderRepository
	logger    *logging.Logger
}

// NewHandlers creates a new Handlers instance
func NewHandlers(
	service *application.ExceptionService,
	scheduler *application.Scheduler,
	orders domain.OrderRepository,
	logger *logging.Logger,
) *Handlers {
	return &Handlers{
		service:   service,
		scheduler: scheduler,
		orders:    orders,
		logger:    logger.WithComponent("http"),
	}
}

// TriggerSweep handles POST /api/v1/sweeps
//
// Runs a reconciliation sweep immediately, outside the scheduler cadence.
// The sweep itself never fails the request; per-order problems are logged
// and counted, matching the scheduled path.
func (h *Handlers) TriggerSweep(c *gin.Context) {
	started := time.Now().UTC()
	h.logger.Info("Manual reconciliation sweep requested")

	h.service.HandleExceptions(c.Request.Context())

	c.JSON(http.StatusOK, gin.H{
		"status":     "completed",
		"startedAt":  started,
		"durationMs": time.Since(started).Milliseconds(),
	})
}

// TriggerCompletionProcessing handles POST /api/v1/pick-completions/process
func (h *Handlers) TriggerCompletionProcessing(c *gin.Context) {
	started := time.Now().UTC()
	h.logger.Info("Manual pick-completion processing requested")

	h.service.ProcessCompletedPicks(c.Request.Context())

	c.JSON(http.StatusOK, gin.H{
		"status":     "completed",
		"startedAt":  started,
		"durationMs": time.Since(started).Milliseconds(),
	})
}

// SchedulerStatus handles GET /api/v1/scheduler
func (h *Handlers) SchedulerStatus(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"running": h.scheduler.IsRunning(),
	})
}

// ListOrders handles GET /api/v1/orders
//
// Filters accept the WMS numeric identifiers (statusId, typeId) so
// operators can paste ids straight from WMS tooling.
func (h *Handlers) ListOrders(c *gin.Context) {
	var params domain.SearchParameters

	if raw := c.Query("statusId"); raw != "" {
		id, err := strconv.Atoi(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "statusId must be numeric"})
			return
		}
		status, ok := domain.StatusByID(id)
		if !ok {
			c.JSON(http.StatusBadRequest, gin.H{"error": "unknown statusId " + raw})
			return
		}
		params.Statuses = []domain.Status{status}
	}

	if raw := c.Query("typeId"); raw != "" {
		id, err := strconv.Atoi(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "typeId must be numeric"})
			return
		}
		orderType, ok := domain.TypeByID(id)
		if !ok {
			c.JSON(http.StatusBadRequest, gin.H{"error": "unknown typeId " + raw})
			return
		}
		params.Types = []domain.Type{orderType}
	}

	orders, err := h.orders.Find(c.Request.Context(), params)
	if err != nil {
		h.logger.WithError(err).Error("Failed to list orders")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list orders"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"orders": orders,
		"count":  len(orders),
	})
}

// GetOrderItem handles GET /api/v1/orders/:orderNumber/items/:itemId
func (h *Handlers) GetOrderItem(c *gin.Context) {
	orderNumber, err := strconv.Atoi(c.Param("orderNumber"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "orderNumber must be numeric"})
		return
	}

	orders, err := h.orders.Find(c.Request.Context(), domain.SearchParameters{
		OrderNumbers: []int{orderNumber},
	})
	if err != nil {
		h.logger.WithError(err).Error("Failed to load order", "orderNumber", orderNumber)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load order"})
		return
	}
	if len(orders) == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "order not found"})
		return
	}

	item := orders[0].Item(c.Param("itemId"))
	if item == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "item not found"})
		return
	}

	c.JSON(http.StatusOK, item)
}
