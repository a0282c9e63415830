package returns

import (
	"errors"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/stepkart/stepkart-backend/internal/order"
	"github.com/stepkart/stepkart-backend/internal/user"
)

// Handler exposes return requests publicly (guests return too, identified by
// order code plus email) and resolution on the admin router.
type Handler struct {
	service   *Service
	jwtSecret string
}

func NewHandler(s *Service, jwtSecret string) *Handler {
	return &Handler{service: s, jwtSecret: jwtSecret}
}

func (h *Handler) RegisterPublicRoutes(app *fiber.App) {
	app.Post("/api/returns", h.request)
}

func (h *Handler) RegisterAdminRoutes(router fiber.Router) {
	router.Get("/returns", h.list)
	router.Get("/returns/:id<[0-9]+>", h.get)
	router.Patch("/returns/:id<[0-9]+>/status", h.resolve)
}

type requestPayload struct {
	OrderRef string       `json:"orderRef"`
	Email    string       `json:"email"`
	Type     string       `json:"type"`
	Items    []order.Item `json:"items"`
	Reason   string       `json:"reason"`
}

func (h *Handler) request(c *fiber.Ctx) error {
	payload := new(requestPayload)
	if err := c.BodyParser(payload); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": err.Error()})
	}
	if payload.OrderRef == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "orderRef is required"})
	}

	in := RequestInput{
		OrderRef:   payload.OrderRef,
		GuestEmail: payload.Email,
		Type:       payload.Type,
		Items:      payload.Items,
		Reason:     payload.Reason,
	}
	if id, ok := user.OptionalUserID(c, h.jwtSecret); ok {
		in.UserID = id
		in.GuestEmail = ""
	}

	ret, err := h.service.Request(in)
	if err != nil {
		switch {
		case errors.Is(err, order.ErrNotFound):
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": err.Error()})
		case errors.Is(err, ErrNotOwner):
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"message": err.Error()})
		case errors.Is(err, ErrNotDelivered), errors.Is(err, ErrWindowClosed),
			errors.Is(err, ErrEmptyItems), errors.Is(err, ErrItemsMismatch),
			errors.Is(err, ErrBadType):
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": err.Error()})
		default:
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": err.Error()})
		}
	}
	return c.Status(fiber.StatusCreated).JSON(ret)
}

func (h *Handler) list(c *fiber.Ctx) error {
	if raw := c.Query("orderId"); raw != "" {
		orderID, err := strconv.Atoi(raw)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "invalid orderId"})
		}
		out, err := h.service.ListByOrder(orderID)
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": err.Error()})
		}
		return c.JSON(out)
	}

	out, err := h.service.List()
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": err.Error()})
	}
	return c.JSON(out)
}

func (h *Handler) get(c *fiber.Ctx) error {
	id, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "invalid id"})
	}
	ret, err := h.service.Get(id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": err.Error()})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": err.Error()})
	}
	return c.JSON(ret)
}

type resolvePayload struct {
	Status  string `json:"status"`
	Note    string `json:"note"`
	Restock bool   `json:"restock"`
}

func (h *Handler) resolve(c *fiber.Ctx) error {
	id, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "invalid id"})
	}
	payload := new(resolvePayload)
	if err := c.BodyParser(payload); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": err.Error()})
	}
	if payload.Status == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "status is required"})
	}

	ret, err := h.service.Resolve(id, payload.Status, payload.Note, payload.Restock)
	if err != nil {
		switch {
		case errors.Is(err, ErrNotFound):
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": err.Error()})
		case errors.Is(err, ErrBadTransition):
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{"message": err.Error()})
		default:
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": err.Error()})
		}
	}
	return c.JSON(ret)
}
