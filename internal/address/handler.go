package address

import (
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/stepkart/stepkart-backend/internal/user"
)

// Handler delegates address operations to the address service.

type Handler struct {
	service *Service
}

func NewHandler(s *Service) *Handler {
	return &Handler{service: s}
}

func (h *Handler) RegisterProtectedRoutes(app *fiber.App) {
	app.Get("/api/addresses", h.getAddresses)
	app.Post("/api/addresses", h.addAddress)
	app.Patch("/api/addresses/:id", h.updateAddress)
	app.Delete("/api/addresses/:id", h.deleteAddress)
}

type addressRequest struct {
	Name       string `json:"name"`
	Phone      string `json:"phone"`
	Line1      string `json:"line1"`
	Line2      string `json:"line2"`
	City       string `json:"city"`
	State      string `json:"state"`
	PostalCode string `json:"postalCode"`
}

func (h *Handler) getAddresses(c *fiber.Ctx) error {
	userID, err := user.GetUserIDFromCtx(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "unauthorized"})
	}

	addrs, err := h.service.GetAddresses(userID)
	if err != nil {
		switch err {
		case ErrNotFound:
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": "not found"})
		default:
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": err.Error()})
		}
	}

	return c.JSON(addrs)
}

func (h *Handler) addAddress(c *fiber.Ctx) error {
	payload := new(addressRequest)
	if err := c.BodyParser(payload); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": err.Error()})
	}
	userID, err := user.GetUserIDFromCtx(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "unauthorized"})
	}

	a := Address{
		UserID:     userID,
		Name:       payload.Name,
		Phone:      payload.Phone,
		Line1:      payload.Line1,
		Line2:      payload.Line2,
		City:       payload.City,
		State:      payload.State,
		PostalCode: payload.PostalCode,
	}
	if !a.Complete() {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "line1, city, postalCode and phone are required"})
	}

	created, err := h.service.AddAddress(a)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": err.Error()})
	}
	return c.Status(fiber.StatusCreated).JSON(created)
}

func (h *Handler) updateAddress(c *fiber.Ctx) error {
	addressID, err := strconv.Atoi(c.Params("id"))
	if err != nil || addressID <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "invalid addressId"})
	}
	payload := new(addressRequest)
	if err := c.BodyParser(payload); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": err.Error()})
	}
	userID, err := user.GetUserIDFromCtx(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "unauthorized"})
	}

	a := Address{
		AddressID:  addressID,
		UserID:     userID,
		Name:       payload.Name,
		Phone:      payload.Phone,
		Line1:      payload.Line1,
		Line2:      payload.Line2,
		City:       payload.City,
		State:      payload.State,
		PostalCode: payload.PostalCode,
	}
	if !a.Complete() {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "line1, city, postalCode and phone are required"})
	}

	updated, err := h.service.UpdateAddress(a)
	if err != nil {
		switch err {
		case ErrNotFound:
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": "not found"})
		default:
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": err.Error()})
		}
	}
	return c.JSON(updated)
}

func (h *Handler) deleteAddress(c *fiber.Ctx) error {
	addressID, err := strconv.Atoi(c.Params("id"))
	if err != nil || addressID <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "invalid addressId"})
	}
	userID, err := user.GetUserIDFromCtx(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "unauthorized"})
	}
	if err := h.service.DeleteAddress(userID, addressID); err != nil {
		switch err {
		case ErrNotFound:
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": "not found"})
		default:
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": err.Error()})
		}
	}
	return c.SendStatus(fiber.StatusOK)
}
