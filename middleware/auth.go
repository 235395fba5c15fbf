package middleware

import (
	"github.com/anjiri1684/tutor_marketplace/apperr"
	"github.com/anjiri1684/tutor_marketplace/models"
	"github.com/anjiri1684/tutor_marketplace/services"
	"github.com/gofiber/fiber/v2"
	jwtware "github.com/gofiber/jwt/v3"
	"github.com/golang-jwt/jwt/v4"
)

// IdentityKey is the Locals key holding the caller's *services.Identity.
const IdentityKey = "identity"

// Protected verifies the bearer token and stores the caller's identity.
func Protected(secret string) fiber.Handler {
	return jwtware.New(jwtware.Config{
		SigningKey:     []byte(secret),
		SuccessHandler: storeIdentity,
		ErrorHandler:   jwtError,
	})
}

func storeIdentity(c *fiber.Ctx) error {
	token, ok := c.Locals("user").(*jwt.Token)
	if !ok {
		return apperr.Unauthorized("invalid or expired token")
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return apperr.Unauthorized("invalid or expired token")
	}
	identity, err := services.IdentityFromClaims(claims)
	if err != nil {
		return err
	}
	c.Locals(IdentityKey, identity)
	return c.Next()
}

func jwtError(c *fiber.Ctx, err error) error {
	if err.Error() == "Missing or malformed JWT" {
		return apperr.Unauthorized("missing or malformed token")
	}
	return apperr.Unauthorized("invalid or expired token")
}

// RequireRole admits callers whose token carries one of roles.
func RequireRole(roles ...models.Role) fiber.Handler {
	return func(c *fiber.Ctx) error {
		identity := CurrentUser(c)
		if identity == nil {
			return apperr.Unauthorized("authentication required")
		}
		for _, role := range roles {
			if identity.Role == role {
				return c.Next()
			}
		}
		return apperr.Forbidden("%s access required", roles[0])
	}
}

// CurrentUser returns the identity stored by Protected, or nil.
func CurrentUser(c *fiber.Ctx) *services.Identity {
	identity, _ := c.Locals(IdentityKey).(*services.Identity)
	return identity
}

// SetCurrentUser stores identity for handlers that authenticate without
// Protected, such as the websocket upgrade.
func SetCurrentUser(c *fiber.Ctx, identity *services.Identity) {
	c.Locals(IdentityKey, identity)
}
