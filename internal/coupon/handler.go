package coupon

import (
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/stepkart/stepkart-backend/internal/user"
)

// Handler exposes the reservation endpoints publicly (guests apply coupons
// too) and the coupon CRUD on the admin router.

type Handler struct {
	service   *Service
	jwtSecret string
}

func NewHandler(s *Service, jwtSecret string) *Handler {
	return &Handler{service: s, jwtSecret: jwtSecret}
}

func (h *Handler) RegisterPublicRoutes(app *fiber.App) {
	app.Post("/api/coupons/apply", h.apply)
	app.Post("/api/coupons/remove", h.remove)
	app.Post("/api/coupons/validate", h.validate)
}

func (h *Handler) RegisterAdminRoutes(router fiber.Router) {
	router.Get("/coupons", h.listCoupons)
	router.Post("/coupons", h.createCoupon)
	router.Put("/coupons/:id<[0-9]+>", h.updateCoupon)
	router.Delete("/coupons/:id<[0-9]+>", h.deleteCoupon)
}

type applyRequest struct {
	Code       string  `json:"code"`
	CartTotal  float64 `json:"cartTotal"`
	GuestEmail string  `json:"guestEmail"`
}

// requester resolves the caller to a user id or falls back to the guest
// email in the payload.
func (h *Handler) requester(c *fiber.Ctx, guestEmail string) (Requester, bool) {
	if id, ok := user.OptionalUserID(c, h.jwtSecret); ok {
		return Requester{UserID: id}, true
	}
	if guestEmail != "" {
		return Requester{GuestEmail: guestEmail}, true
	}
	return Requester{}, false
}

func statusForError(err error) int {
	switch err {
	case ErrNotFound:
		return fiber.StatusNotFound
	case ErrExpired, ErrUsageLimitReached, ErrMinOrderNotMet, ErrFirstTimeOnly:
		return fiber.StatusBadRequest
	default:
		return fiber.StatusInternalServerError
	}
}

func (h *Handler) apply(c *fiber.Ctx) error {
	payload := new(applyRequest)
	if err := c.BodyParser(payload); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": err.Error()})
	}
	if payload.Code == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "code is required"})
	}
	if payload.CartTotal < 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "cartTotal must be non-negative"})
	}

	req, ok := h.requester(c, payload.GuestEmail)
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "guestEmail is required for guest checkout"})
	}

	discount, res, err := h.service.Apply(payload.Code, payload.CartTotal, req)
	if err != nil {
		return c.Status(statusForError(err)).JSON(fiber.Map{"message": err.Error()})
	}

	return c.JSON(fiber.Map{
		"code":      res.Code,
		"discount":  discount,
		"expiresAt": res.ExpiresAt,
	})
}

func (h *Handler) remove(c *fiber.Ctx) error {
	payload := new(applyRequest)
	if err := c.BodyParser(payload); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": err.Error()})
	}
	if payload.Code == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "code is required"})
	}

	req, ok := h.requester(c, payload.GuestEmail)
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "guestEmail is required for guest checkout"})
	}

	if err := h.service.Remove(payload.Code, req); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": err.Error()})
	}
	return c.SendStatus(fiber.StatusOK)
}

func (h *Handler) validate(c *fiber.Ctx) error {
	payload := new(applyRequest)
	if err := c.BodyParser(payload); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": err.Error()})
	}
	if payload.Code == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "code is required"})
	}

	req, ok := h.requester(c, payload.GuestEmail)
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "guestEmail is required for guest checkout"})
	}

	cp, discount, err := h.service.Validate(payload.Code, payload.CartTotal, req)
	if err != nil {
		return c.Status(statusForError(err)).JSON(fiber.Map{"message": err.Error()})
	}

	return c.JSON(fiber.Map{
		"code":         cp.Code,
		"discountType": cp.DiscountType,
		"discount":     discount,
	})
}

func (h *Handler) listCoupons(c *fiber.Ctx) error {
	coupons, err := h.service.List()
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": err.Error()})
	}
	return c.JSON(coupons)
}

func (h *Handler) createCoupon(c *fiber.Ctx) error {
	payload := new(Coupon)
	if err := c.BodyParser(payload); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": err.Error()})
	}
	payload.Active = true

	created, err := h.service.Create(*payload)
	if err != nil {
		if err == ErrCodeExists {
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{"message": err.Error()})
		}
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": err.Error()})
	}
	return c.Status(fiber.StatusCreated).JSON(created)
}

func (h *Handler) updateCoupon(c *fiber.Ctx) error {
	id, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "invalid id"})
	}
	payload := new(Coupon)
	if err := c.BodyParser(payload); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": err.Error()})
	}

	updated, err := h.service.Update(id, *payload)
	if err != nil {
		if err == ErrNotFound {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": err.Error()})
		}
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": err.Error()})
	}
	return c.JSON(updated)
}

func (h *Handler) deleteCoupon(c *fiber.Ctx) error {
	id, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "invalid id"})
	}
	if err := h.service.Delete(id); err != nil {
		if err == ErrNotFound {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": err.Error()})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": err.Error()})
	}
	return c.SendStatus(fiber.StatusOK)
}
