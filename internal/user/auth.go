package user

import (
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v4"
)

// GetUserIDFromCtx extracts the user_id claim from the JWT token stored in
// `c.Locals("user")` by the JWT middleware. Several packages need this, so it
// is exported here for reuse.
func GetUserIDFromCtx(c *fiber.Ctx) (int, error) {
	u := c.Locals("user")
	if u == nil {
		return 0, fiber.ErrUnauthorized
	}
	tok, ok := u.(*jwt.Token)
	if !ok {
		return 0, fiber.ErrUnauthorized
	}
	claims, ok := tok.Claims.(jwt.MapClaims)
	if !ok {
		return 0, fiber.ErrUnauthorized
	}
	return userIDFromClaims(claims)
}

// IsAdminFromCtx reports whether the JWT in the request carries the admin
// role claim.
func IsAdminFromCtx(c *fiber.Ctx) bool {
	u := c.Locals("user")
	tok, ok := u.(*jwt.Token)
	if !ok {
		return false
	}
	claims, ok := tok.Claims.(jwt.MapClaims)
	if !ok {
		return false
	}
	role, _ := claims["role"].(string)
	return role == RoleAdmin
}

// RequireAdmin guards admin console routes. It runs after the JWT middleware
// so an invalid token is already rejected with 401; a valid non-admin token
// gets 403.
func RequireAdmin(c *fiber.Ctx) error {
	if !IsAdminFromCtx(c) {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"message": "admin access required"})
	}
	return c.Next()
}

// OptionalUserID resolves the authenticated user on routes that also accept
// guests. It parses a bearer token directly since guest-capable routes sit
// outside the JWT middleware. A missing or invalid token means guest.
func OptionalUserID(c *fiber.Ctx, secret string) (int, bool) {
	if id, err := GetUserIDFromCtx(c); err == nil {
		return id, true
	}

	auth := c.Get("Authorization")
	if !strings.HasPrefix(auth, "Bearer ") {
		return 0, false
	}

	tok, err := jwt.Parse(strings.TrimPrefix(auth, "Bearer "), func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return []byte(secret), nil
	})
	if err != nil || !tok.Valid {
		return 0, false
	}
	claims, ok := tok.Claims.(jwt.MapClaims)
	if !ok {
		return 0, false
	}
	id, err := userIDFromClaims(claims)
	if err != nil {
		return 0, false
	}
	return id, true
}

func userIDFromClaims(claims jwt.MapClaims) (int, error) {
	raw, ok := claims["user_id"]
	if !ok {
		return 0, fiber.ErrUnauthorized
	}
	switch v := raw.(type) {
	case float64:
		return int(v), nil
	case int:
		return v, nil
	case int64:
		return int(v), nil
	case string:
		id, err := strconv.Atoi(v)
		if err != nil {
			return 0, fiber.ErrUnauthorized
		}
		return id, nil
	default:
		return 0, fiber.ErrUnauthorized
	}
}
