package handlers

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/imrishuroy/go-payout-settlement/internal/orders"
	"github.com/imrishuroy/go-payout-settlement/internal/polling"
	"github.com/imrishuroy/go-payout-settlement/internal/validation"
)

// OrderRegistry is the subset of orders.Store used by the handlers.
type OrderRegistry interface {
	Register(ctx context.Context, orderID string) (*orders.Order, error)
	Get(ctx context.Context, orderID string) (*orders.Order, error)
}

// Publisher enqueues monitoring jobs.
type Publisher interface {
	PublishJSON(ctx context.Context, payload interface{}, attributes map[string]string) (string, error)
}

// Verifier runs the settlement check against the provider.
type Verifier interface {
	VerifySettlement(ctx context.Context, orderID string) (polling.Verification, error)
}

// HandlerConfig groups dependencies for the orders handler.
type HandlerConfig struct {
	Orders    OrderRegistry
	Publisher Publisher
	Verifier  Verifier
	Logger    *zap.Logger

	// DefaultOptions is what request overrides are applied onto.
	DefaultOptions polling.Options
	// DefaultDeadline is reported back when the request sets none.
	DefaultDeadline time.Duration
}

// RegisterOrdersRoutes registers routes for the order monitoring API.
func RegisterOrdersRoutes(r *gin.Engine, cfg HandlerConfig) {
	v := validation.New()
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	r.POST("/orders/:order_id/monitor", func(c *gin.Context) {
		ctx := c.Request.Context()

		orderID, ok := orderIDParam(c)
		if !ok {
			return
		}

		var req validation.MonitorRequest
		if err := validation.BindAndValidate(c, &req, v); err != nil {
			// BindAndValidate already wrote a 400
			return
		}

		opts := req.Options.ToOptions(cfg.DefaultOptions)
		if err := opts.Validate(); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_polling_options", "msg": err.Error()})
			return
		}

		order, err := cfg.Orders.Register(ctx, orderID)
		if err != nil {
			logger.Error("register order failed", zap.String("order_id", orderID), zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "register_failed", "detail": err.Error()})
			return
		}

		correlationID := c.GetHeader("X-Request-Id")
		if correlationID == "" {
			correlationID = uuid.NewString()
		}

		msg := validation.MonitorMessage{
			OrderID:       orderID,
			OrderDBID:     order.OrderDBID,
			Options:       req.Options,
			DeadlineMs:    req.DeadlineMs,
			CorrelationID: correlationID,
			Metadata:      req.Metadata,
		}
		attrs := map[string]string{
			"order_id":       orderID,
			"correlation_id": correlationID,
		}

		messageID, err := cfg.Publisher.PublishJSON(ctx, msg, attrs)
		if err != nil {
			logger.Error("enqueue monitor job failed", zap.String("order_id", orderID), zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "enqueue_failed", "detail": err.Error()})
			return
		}

		logger.Info("monitor job enqueued",
			zap.String("order_id", orderID),
			zap.String("message_id", messageID),
			zap.String("correlation_id", correlationID),
		)
		c.JSON(http.StatusAccepted, gin.H{
			"order_id":       orderID,
			"order_db_id":    order.OrderDBID,
			"status":         order.Status,
			"message_id":     messageID,
			"correlation_id": correlationID,
			"deadline_ms":    msg.Deadline(cfg.DefaultDeadline).Milliseconds(),
		})
	})

	r.GET("/orders/:order_id", func(c *gin.Context) {
		orderID, ok := orderIDParam(c)
		if !ok {
			return
		}
		order, err := cfg.Orders.Get(c.Request.Context(), orderID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "lookup_failed", "detail": err.Error()})
			return
		}
		if order == nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "order_not_found"})
			return
		}
		c.JSON(http.StatusOK, order)
	})

	r.GET("/orders/:order_id/verification", func(c *gin.Context) {
		orderID, ok := orderIDParam(c)
		if !ok {
			return
		}

		res, err := cfg.Verifier.VerifySettlement(c.Request.Context(), orderID)
		switch {
		case err != nil:
			status := http.StatusBadGateway
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				status = http.StatusGatewayTimeout
			}
			c.JSON(status, gin.H{"error": "status_fetch_failed", "verified": false, "reason": res.Reason})
		case !res.Verified:
			c.JSON(http.StatusConflict, res)
		default:
			c.JSON(http.StatusOK, res)
		}
	})
}

func orderIDParam(c *gin.Context) (string, bool) {
	id := strings.TrimSpace(c.Param("order_id"))
	if id == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing_order_id"})
		return "", false
	}
	return id, true
}
