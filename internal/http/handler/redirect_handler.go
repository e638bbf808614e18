package handler

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/qrtrail/qrtrail/internal/app/service"
	"go.uber.org/zap"
)

// RedirectDeps groups dependencies required by the redirect handler.
type RedirectDeps struct {
	Logger   *zap.Logger
	Resolver *service.Resolver
	Scans    *service.ScanPublisher
}

// RedirectHandler implements the scan resolution flow: resolve, redirect,
// record in the background.
type RedirectHandler struct {
	logger   *zap.Logger
	resolver *service.Resolver
	scans    *service.ScanPublisher
}

// NewRedirectHandler creates a redirect handler with the provided dependencies.
func NewRedirectHandler(deps RedirectDeps) *RedirectHandler {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RedirectHandler{
		logger:   logger,
		resolver: deps.Resolver,
		scans:    deps.Scans,
	}
}

// Register wires redirect routes onto the provided router.
func (h *RedirectHandler) Register(router fiber.Router) {
	router.Get("/", h.Health)
	router.Get("/health", h.Health)
	router.Get("/r/:shortId", h.Resolve)
}

// Health is a simple root endpoint so we know the service is running.
func (h *RedirectHandler) Health(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"service": "qrtrail",
		"status":  "ok",
		"time":    time.Now().UTC().Format(time.RFC3339),
	})
}

// Resolve handles GET /r/:shortId. The redirect is sent as soon as a
// destination is known; geolocation and persistence run detached.
func (h *RedirectHandler) Resolve(c *fiber.Ctx) error {
	shortID := c.Params("shortId")

	ctx := c.UserContext()
	if ctx == nil {
		ctx = context.Background()
	}

	code, err := h.resolver.Resolve(ctx, shortID)
	if err != nil {
		return h.resolveError(c, shortID, err)
	}

	destination, err := h.resolver.Destination(code)
	if err != nil {
		if errors.Is(err, service.ErrUnprocessable) {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "destination unresolvable",
			})
		}
		h.logger.Error("failed to derive destination", zap.Error(err), zap.String("id", code.ID))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "internal server error",
		})
	}

	if h.scans != nil {
		userAgent := c.Get(fiber.HeaderUserAgent)
		capture := service.ScanCapture{
			QRCodeID:  code.ID,
			IPAddress: clientIP(c),
			UserAgent: userAgent,
			Referrer:  c.Get(fiber.HeaderReferer),
			Device:    service.ClassifyDevice(userAgent),
		}
		go h.scans.Dispatch(capture)
	}

	h.logger.Debug("redirecting scan",
		zap.String("short_id", shortID),
		zap.String("destination", destination))
	return c.Redirect(destination, fiber.StatusFound)
}

func (h *RedirectHandler) resolveError(c *fiber.Ctx, shortID string, err error) error {
	switch {
	case errors.Is(err, service.ErrInvalidRequest):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid qr code identifier",
		})
	case errors.Is(err, service.ErrNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "qr code not found",
		})
	case errors.Is(err, service.ErrGone):
		return c.Status(fiber.StatusGone).JSON(fiber.Map{
			"error": "qr code is no longer active",
		})
	default:
		h.logger.Error("failed to resolve qr code", zap.Error(err), zap.String("short_id", shortID))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "internal server error",
		})
	}
}

// clientIP picks the single address used for geolocation: first entry of the
// forwarding header if present, else the real-ip header, else the connection.
func clientIP(c *fiber.Ctx) string {
	if forwarded := c.Get(fiber.HeaderXForwardedFor); forwarded != "" {
		first, _, _ := strings.Cut(forwarded, ",")
		return strings.TrimSpace(first)
	}
	if realIP := c.Get("X-Real-IP"); realIP != "" {
		return strings.TrimSpace(realIP)
	}
	return c.IP()
}
