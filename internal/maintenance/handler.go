package maintenance

import (
	"time"

	"github.com/gofiber/fiber/v2"
)

type Handler struct {
	repo  Repository
	cache *Cache
}

func NewHandler(repo Repository, cache *Cache) *Handler {
	return &Handler{repo: repo, cache: cache}
}

func (h *Handler) RegisterAdminRoutes(router fiber.Router) {
	router.Get("/maintenance", h.get)
	router.Put("/maintenance", h.set)
}

func (h *Handler) get(c *fiber.Ctx) error {
	s, err := h.repo.Get()
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": err.Error()})
	}
	return c.JSON(s)
}

type setRequest struct {
	Enabled bool   `json:"enabled"`
	Message string `json:"message"`
}

func (h *Handler) set(c *fiber.Ctx) error {
	payload := new(setRequest)
	if err := c.BodyParser(payload); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": err.Error()})
	}

	s := Settings{
		Enabled:   payload.Enabled,
		Message:   payload.Message,
		UpdatedAt: time.Now().UTC().Format(time.RFC3339),
	}
	if err := h.repo.Set(s); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": err.Error()})
	}
	h.cache.Invalidate()
	return c.JSON(s)
}
