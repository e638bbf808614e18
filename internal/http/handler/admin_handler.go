package handler

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/qrtrail/qrtrail/internal/app/repository"
	"github.com/qrtrail/qrtrail/internal/app/service"
	"go.uber.org/zap"
)

// AdminDeps groups dependencies required by the admin handler.
type AdminDeps struct {
	Logger     *zap.Logger
	Cleanup    *service.CleanupService
	GuestStats repository.GuestStatsRepository
}

// AdminHandler exposes the manual cleanup trigger and guest-code stats.
type AdminHandler struct {
	logger     *zap.Logger
	cleanup    *service.CleanupService
	guestStats repository.GuestStatsRepository
}

// NewAdminHandler creates an admin handler with the provided dependencies.
func NewAdminHandler(deps AdminDeps) *AdminHandler {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AdminHandler{
		logger:     logger,
		cleanup:    deps.Cleanup,
		guestStats: deps.GuestStats,
	}
}

// Register wires admin routes onto the provided router. Non-POST methods on
// /cleanup get a 405 from the router.
func (h *AdminHandler) Register(router fiber.Router) {
	router.Post("/cleanup", h.Cleanup)
	router.Get("/guest-stats", h.GuestStats)
}

// Cleanup handles POST /cleanup: one on-demand pass of the shared cleanup
// routine. Failures surface here so the caller can retry.
func (h *AdminHandler) Cleanup(c *fiber.Ctx) error {
	ctx := c.UserContext()
	if ctx == nil {
		ctx = context.Background()
	}

	result, err := h.cleanup.Run(ctx)
	if err != nil {
		h.logger.Error("manual cleanup failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "cleanup failed",
		})
	}

	return c.JSON(result)
}

// GuestStats handles GET /guest-stats.
func (h *AdminHandler) GuestStats(c *fiber.Ctx) error {
	ctx := c.UserContext()
	if ctx == nil {
		ctx = context.Background()
	}

	stats, err := h.guestStats.Stats(ctx, time.Now().UTC())
	if err != nil {
		h.logger.Error("failed to load guest stats", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "internal server error",
		})
	}

	return c.JSON(stats)
}
