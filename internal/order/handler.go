package order

import (
	"errors"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/stepkart/stepkart-backend/internal/address"
	"github.com/stepkart/stepkart-backend/internal/user"
)

// Handler exposes placement and lookup publicly (guest checkout) and the
// status/search operations on the admin router. Authenticated order history
// sits behind the JWT middleware.

type Handler struct {
	service   *Service
	jwtSecret string
}

func NewHandler(s *Service, jwtSecret string) *Handler {
	return &Handler{service: s, jwtSecret: jwtSecret}
}

func (h *Handler) RegisterPublicRoutes(app *fiber.App) {
	app.Post("/api/orders", h.place)
	app.Get("/api/orders/track/:ref", h.track)
}

func (h *Handler) RegisterProtectedRoutes(app *fiber.App) {
	app.Get("/api/orders", h.listMine)
	app.Get("/api/orders/:ref", h.get)
}

func (h *Handler) RegisterAdminRoutes(router fiber.Router) {
	router.Get("/orders", h.search)
	router.Patch("/orders/update-status/:ref", h.updateStatus)
}

type placeRequest struct {
	Guest *GuestInfo `json:"guest"`

	Items []Item `json:"items"`

	Subtotal float64 `json:"subtotal"`
	Tax      float64 `json:"tax"`
	Shipping float64 `json:"shipping"`
	Discount float64 `json:"discount"`
	Total    float64 `json:"total"`

	CouponCode string `json:"couponCode"`

	AddressID       int              `json:"addressId"`
	ShippingAddress *address.Address `json:"shippingAddress"`
}

func (h *Handler) place(c *fiber.Ctx) error {
	payload := new(placeRequest)
	if err := c.BodyParser(payload); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": err.Error()})
	}

	in := PlaceInput{
		Guest:      payload.Guest,
		Items:      payload.Items,
		Subtotal:   payload.Subtotal,
		Tax:        payload.Tax,
		Shipping:   payload.Shipping,
		Discount:   payload.Discount,
		Total:      payload.Total,
		CouponCode: payload.CouponCode,
		AddressID:  payload.AddressID,
		Address:    payload.ShippingAddress,
	}
	if id, ok := user.OptionalUserID(c, h.jwtSecret); ok {
		in.UserID = id
		in.Guest = nil
	}

	created, err := h.service.Place(in)
	if err != nil {
		switch {
		case errors.Is(err, ErrEmptyItems), errors.Is(err, ErrBadQuantity),
			errors.Is(err, ErrNegativeAmount), errors.Is(err, ErrTotalsMismatch),
			errors.Is(err, ErrGuestEmail), errors.Is(err, ErrUnknownRequester),
			errors.Is(err, ErrAddressRequired):
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": err.Error()})
		default:
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": err.Error()})
		}
	}
	return c.Status(fiber.StatusCreated).JSON(created)
}

// track is the guest-facing lookup: order code plus the guest email must
// match. Registered users use the authenticated route instead.
func (h *Handler) track(c *fiber.Ctx) error {
	email := c.Query("email")
	if email == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "email is required"})
	}

	ord, err := h.service.Get(c.Params("ref"))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": err.Error()})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": err.Error()})
	}
	if ord.Guest == nil || ord.Guest.Email != email {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"message": "order does not belong to this email"})
	}
	return c.JSON(ord)
}

func (h *Handler) listMine(c *fiber.Ctx) error {
	userID, err := user.GetUserIDFromCtx(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "unauthorized"})
	}
	orders, err := h.service.ListByUser(userID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": err.Error()})
	}
	return c.JSON(orders)
}

func (h *Handler) get(c *fiber.Ctx) error {
	userID, err := user.GetUserIDFromCtx(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "unauthorized"})
	}

	ord, err := h.service.Get(c.Params("ref"))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": err.Error()})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": err.Error()})
	}
	if ord.UserID != userID && !user.IsAdminFromCtx(c) {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"message": "order does not belong to this user"})
	}
	return c.JSON(ord)
}

type updateStatusRequest struct {
	Status  string   `json:"status"`
	Carrier *Carrier `json:"carrier"`
}

func (h *Handler) updateStatus(c *fiber.Ctx) error {
	payload := new(updateStatusRequest)
	if err := c.BodyParser(payload); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": err.Error()})
	}
	if payload.Status == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "status is required"})
	}

	updated, err := h.service.UpdateStatus(c.Params("ref"), payload.Status, "admin", payload.Carrier)
	if err != nil {
		switch {
		case errors.Is(err, ErrNotFound):
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": err.Error()})
		case errors.Is(err, ErrUnknownStatus):
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": err.Error()})
		default:
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": err.Error()})
		}
	}
	return c.JSON(updated)
}

func (h *Handler) search(c *fiber.Ctx) error {
	q := SearchQuery{
		Status:        c.Query("status"),
		PaymentStatus: c.Query("paymentStatus"),
		CodePrefix:    c.Query("codePrefix"),
		CreatedFrom:   c.Query("createdFrom"),
		CreatedTo:     c.Query("createdTo"),
	}
	if raw := c.Query("userId"); raw != "" {
		id, err := strconv.Atoi(raw)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "invalid userId"})
		}
		q.UserID = id
	}

	orders, err := h.service.Search(q)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": err.Error()})
	}
	return c.JSON(orders)
}
