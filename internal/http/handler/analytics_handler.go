package handler

import (
	"context"
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/qrtrail/qrtrail/internal/app/service"
	"go.uber.org/zap"
)

// AnalyticsDeps groups dependencies required by the analytics handler.
type AnalyticsDeps struct {
	Logger     *zap.Logger
	Aggregator *service.AnalyticsAggregator
}

// AnalyticsHandler exposes ownership-checked analytics queries.
type AnalyticsHandler struct {
	logger     *zap.Logger
	aggregator *service.AnalyticsAggregator
}

// NewAnalyticsHandler creates an analytics handler with the provided dependencies.
func NewAnalyticsHandler(deps AnalyticsDeps) *AnalyticsHandler {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AnalyticsHandler{
		logger:     logger,
		aggregator: deps.Aggregator,
	}
}

// Register wires analytics routes onto the provided router.
func (h *AnalyticsHandler) Register(router fiber.Router) {
	router.Get("/analytics", h.Analytics)
}

// Analytics handles GET /analytics?qrCodeId=&userId=.
func (h *AnalyticsHandler) Analytics(c *fiber.Ctx) error {
	qrCodeID := c.Query("qrCodeId")
	userID := c.Query("userId")
	if qrCodeID == "" || userID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "qrCodeId and userId are required",
		})
	}

	ctx := c.UserContext()
	if ctx == nil {
		ctx = context.Background()
	}

	analytics, err := h.aggregator.Aggregate(ctx, qrCodeID, userID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidRequest):
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "qrCodeId and userId are required",
			})
		case errors.Is(err, service.ErrForbidden):
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
				"error": "qr code belongs to another user",
			})
		case errors.Is(err, service.ErrNotFound):
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "qr code not found",
			})
		default:
			h.logger.Error("failed to aggregate analytics",
				zap.Error(err), zap.String("qr_code_id", qrCodeID))
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "internal server error",
			})
		}
	}

	return c.JSON(analytics)
}
