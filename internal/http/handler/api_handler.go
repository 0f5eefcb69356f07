package handler

import (
	"context"
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/Nishanthpaka11/TinyLink/internal/app/model"
	"github.com/Nishanthpaka11/TinyLink/internal/app/repository"
	"github.com/Nishanthpaka11/TinyLink/internal/app/service"
	"github.com/Nishanthpaka11/TinyLink/internal/app/validate"
	infraprom "github.com/Nishanthpaka11/TinyLink/internal/infra/prometheus"
)

const apiVersion = "1.0"

// APIDeps groups dependencies required by API handlers.
type APIDeps struct {
	Logger      *zap.Logger
	LinkService service.LinkService
	Postgres    *pgxpool.Pool
}

// APIHandler implements the management API endpoints.
type APIHandler struct {
	logger      *zap.Logger
	linkService service.LinkService
	pool        *pgxpool.Pool
}

// NewAPIHandler creates an API handler with the provided dependencies.
func NewAPIHandler(deps APIDeps) *APIHandler {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &APIHandler{
		logger:      logger,
		linkService: deps.LinkService,
		pool:        deps.Postgres,
	}
}

// Register wires API routes onto the provided router.
func (h *APIHandler) Register(router fiber.Router) {
	router.Get("/healthz", h.Health)
	router.Get("/ping", h.Ping)
	router.Get("/readyz", h.Ready)

	api := router.Group("/api")
	{
		links := api.Group("/links")
		{
			links.Post("/", h.CreateLink)
			links.Get("/", h.ListLinks)
			links.Get("/:code", h.GetLink)
			links.Delete("/:code", h.DeleteLink)
		}
	}
}

// Health handles GET /healthz.
func (h *APIHandler) Health(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"ok":      true,
		"version": apiVersion,
	})
}

// Ping handles GET /ping.
func (h *APIHandler) Ping(c *fiber.Ctx) error {
	return c.SendString("pong")
}

// Ready handles GET /readyz and reports whether the database answers.
func (h *APIHandler) Ready(c *fiber.Ctx) error {
	dbUp := false
	if h.pool != nil {
		pingCtx, cancel := context.WithTimeout(requestContext(c), 2*time.Second)
		defer cancel()
		dbUp = h.pool.Ping(pingCtx) == nil
	}

	status := fiber.StatusOK
	if !dbUp {
		status = fiber.StatusServiceUnavailable
	}
	return c.Status(status).JSON(fiber.Map{
		"ready":    dbUp,
		"database": dbUp,
	})
}

// CreateLinkRequest represents the request body for creating a link.
type CreateLinkRequest struct {
	URL  string `json:"url"`
	Code string `json:"code,omitempty"`
}

// CreateLink handles POST /api/links
func (h *APIHandler) CreateLink(c *fiber.Ctx) error {
	var req CreateLinkRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid request body",
		})
	}

	if req.URL == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "url is required",
		})
	}

	link, err := h.linkService.CreateLink(requestContext(c), req.URL, req.Code)
	if err != nil {
		return h.createError(c, err)
	}

	infraprom.LinksCreated.Inc()
	return c.Status(fiber.StatusCreated).JSON(link)
}

func (h *APIHandler) createError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, validate.ErrInvalidURL),
		errors.Is(err, validate.ErrInvalidCode),
		errors.Is(err, service.ErrDomainUnreachable):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": rootMessage(err),
		})
	case errors.Is(err, repository.ErrCodeTaken):
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"error": repository.ErrCodeTaken.Error(),
		})
	default:
		h.logger.Error("failed to create link", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "internal server error",
		})
	}
}

// ListLinks handles GET /api/links
func (h *APIHandler) ListLinks(c *fiber.Ctx) error {
	links, err := h.linkService.ListLinks(requestContext(c))
	if err != nil {
		h.logger.Error("failed to list links", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "internal server error",
		})
	}

	if links == nil {
		links = []model.Link{}
	}
	return c.JSON(links)
}

// GetLink handles GET /api/links/:code
func (h *APIHandler) GetLink(c *fiber.Ctx) error {
	code := c.Params("code")

	link, err := h.linkService.GetStats(requestContext(c), code)
	if err != nil {
		if errors.Is(err, repository.ErrLinkNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "link not found",
			})
		}
		h.logger.Error("failed to get link", zap.Error(err), zap.String("code", code))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "internal server error",
		})
	}

	return c.JSON(link)
}

// DeleteLink handles DELETE /api/links/:code
func (h *APIHandler) DeleteLink(c *fiber.Ctx) error {
	code := c.Params("code")

	if err := h.linkService.DeleteLink(requestContext(c), code); err != nil {
		if errors.Is(err, repository.ErrLinkNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "link not found",
			})
		}
		h.logger.Error("failed to delete link", zap.Error(err), zap.String("code", code))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "internal server error",
		})
	}

	return c.SendStatus(fiber.StatusNoContent)
}

// requestContext returns the request-scoped context, falling back to
// Background when Fiber has none attached.
func requestContext(c *fiber.Ctx) context.Context {
	if ctx := c.UserContext(); ctx != nil {
		return ctx
	}
	return context.Background()
}

// rootMessage unwraps to the sentinel's message so clients see "invalid
// url" rather than the wrapped chain.
func rootMessage(err error) string {
	for {
		unwrapped := errors.Unwrap(err)
		if unwrapped == nil {
			return err.Error()
		}
		err = unwrapped
	}
}
