package payment

import (
	"encoding/json"
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/stripe/stripe-go/v78"
	"github.com/stripe/stripe-go/v78/webhook"

	"github.com/stepkart/stepkart-backend/internal/order"
)

// Handler exposes intent creation publicly (guests pay too) and the gateway
// webhook. The webhook authenticates via the gateway signature, not a JWT.
type Handler struct {
	service       *Service
	webhookSecret string
}

func NewHandler(s *Service, webhookSecret string) *Handler {
	return &Handler{service: s, webhookSecret: webhookSecret}
}

func (h *Handler) RegisterPublicRoutes(app *fiber.App) {
	app.Post("/api/payments/create-intent", h.createIntent)
	app.Post("/api/payments/webhook", h.handleWebhook)
}

type createIntentRequest struct {
	OrderRef string `json:"orderRef"`
}

func (h *Handler) createIntent(c *fiber.Ctx) error {
	payload := new(createIntentRequest)
	if err := c.BodyParser(payload); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": err.Error()})
	}
	if payload.OrderRef == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "orderRef is required"})
	}

	res, err := h.service.CreateIntent(payload.OrderRef)
	if err != nil {
		switch {
		case errors.Is(err, order.ErrNotFound):
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": err.Error()})
		case errors.Is(err, ErrAlreadyPaid), errors.Is(err, ErrZeroAmount):
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": err.Error()})
		default:
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": err.Error()})
		}
	}
	return c.JSON(res)
}

func (h *Handler) handleWebhook(c *fiber.Ctx) error {
	event, err := webhook.ConstructEvent(c.Body(), c.Get("Stripe-Signature"), h.webhookSecret)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "invalid signature"})
	}

	var intent stripe.PaymentIntent
	if err := json.Unmarshal(event.Data.Raw, &intent); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "malformed event payload"})
	}

	orderCode := intent.Metadata["order_code"]
	if orderCode == "" {
		// event from some other flow; acknowledge so the gateway stops retrying
		return c.SendStatus(fiber.StatusOK)
	}

	if err := h.service.ApplyGatewayEvent(string(event.Type), intent.ID, orderCode); err != nil {
		if errors.Is(err, order.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": err.Error()})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": err.Error()})
	}
	return c.SendStatus(fiber.StatusOK)
}
