package api

import (
	"net/http"
	"strings"

	"github.com/gofiber/fiber/v2"

	"eshopperz/identity"
)

const (
	claimsLocal     = "claims"
	sessionTokenKey = "token"
)

// Authenticate validates the bearer token, falling back to the one stored in
// the session cookie, and stores the claims in the request locals.
func (s *Server) Authenticate(c *fiber.Ctx) error {
	token := bearerToken(c)

	if token == "" {
		sess, err := s.sessions.Get(c)
		if err != nil {
			return err
		}
		token, _ = sess.Get(sessionTokenKey).(string)
	}

	if token == "" {
		return fiber.NewError(http.StatusUnauthorized, "missing token")
	}

	claims, err := s.tokens.Validate(token)
	if err != nil {
		return fiber.NewError(http.StatusUnauthorized, err.Error())
	}

	c.Locals(claimsLocal, claims)

	return c.Next()
}

func bearerToken(c *fiber.Ctx) string {
	const prefix = "Bearer "
	h := c.Get(fiber.HeaderAuthorization)
	if len(h) > len(prefix) && strings.EqualFold(h[:len(prefix)], prefix) {
		return strings.TrimSpace(h[len(prefix):])
	}
	return ""
}

// RequireRole must run after Authenticate.
func RequireRole(role string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		claims := claimsFrom(c)
		if claims == nil {
			return fiber.NewError(http.StatusUnauthorized, "missing token")
		}
		if !claims.HasRole(role) {
			return fiber.NewError(http.StatusForbidden, "requires role "+role)
		}
		return c.Next()
	}
}

func claimsFrom(c *fiber.Ctx) *identity.Claims {
	claims, _ := c.Locals(claimsLocal).(*identity.Claims)
	return claims
}
