package handler

import (
	"context"
	"errors"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/Nishanthpaka11/TinyLink/internal/app/repository"
	"github.com/Nishanthpaka11/TinyLink/internal/app/service"
	infraprom "github.com/Nishanthpaka11/TinyLink/internal/infra/prometheus"
)

// RedirectDeps groups dependencies required by the redirect handler.
type RedirectDeps struct {
	Logger         *zap.Logger
	LinkService    service.LinkService
	ClickPublisher *service.ClickPublisher
}

// RedirectHandler serves GET /:code, the hot path of the service.
type RedirectHandler struct {
	logger         *zap.Logger
	linkService    service.LinkService
	clickPublisher *service.ClickPublisher
}

// NewRedirectHandler creates a redirect handler with the provided dependencies.
func NewRedirectHandler(deps RedirectDeps) *RedirectHandler {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RedirectHandler{
		logger:         logger,
		linkService:    deps.LinkService,
		clickPublisher: deps.ClickPublisher,
	}
}

// Register wires the catch-all redirect route. Must be registered after
// every other route.
func (h *RedirectHandler) Register(router fiber.Router) {
	router.Get("/:code", h.Redirect)
}

// Redirect handles GET /:code with a 302 to the stored URL. The click
// counter is incremented by the registry in the same store operation
// that resolves the target, so the count moves exactly once per
// accepted request.
func (h *RedirectHandler) Redirect(c *fiber.Ctx) error {
	code := c.Params("code")

	target, err := h.linkService.Redirect(requestContext(c), code)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrReservedCode),
			errors.Is(err, repository.ErrLinkNotFound):
			infraprom.RedirectMisses.Inc()
			return c.SendStatus(fiber.StatusNotFound)
		default:
			h.logger.Error("failed to resolve redirect", zap.Error(err), zap.String("code", code))
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "internal server error",
			})
		}
	}

	if h.clickPublisher != nil {
		go h.publishClickEvent(code, c.IP(), c.Get("User-Agent"))
	}

	infraprom.RedirectsServed.Inc()
	h.logger.Debug("redirecting short link", zap.String("code", code), zap.String("target", target))
	return c.Redirect(target, fiber.StatusFound)
}

func (h *RedirectHandler) publishClickEvent(code, ip, userAgent string) {
	if err := h.clickPublisher.Publish(context.Background(), code, ip, userAgent); err != nil {
		h.logger.Error("failed to publish click event", zap.Error(err), zap.String("code", code))
	}
}
