package auth

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/campus-desk/pqrs-service/internal/domain"
)

const identityKey = "caller_identity"

// Identity is the caller asserted by a bearer token.
type Identity struct {
	UserID      string
	DisplayName string
	Role        domain.Role
}

// IdentityMiddleware extracts the caller identity from a bearer token when
// one is presented. It never rejects a request: authentication enforcement
// belongs to the gateway in front of this service.
type IdentityMiddleware struct {
	tokens *TokenManager
}

// NewIdentityMiddleware constructs the middleware. tokens may be nil when no
// secret is configured; extraction is then disabled.
func NewIdentityMiddleware(tokens *TokenManager) *IdentityMiddleware {
	return &IdentityMiddleware{tokens: tokens}
}

// Handle parses an Authorization header if present and stores the identity.
func (m *IdentityMiddleware) Handle(c *fiber.Ctx) error {
	if m.tokens == nil {
		return c.Next()
	}
	header := c.Get("Authorization")
	if header == "" {
		return c.Next()
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return c.Next()
	}
	claims, err := m.tokens.ParseToken(parts[1])
	if err != nil {
		return c.Next()
	}
	c.Locals(identityKey, &Identity{
		UserID:      claims.Subject,
		DisplayName: claims.DisplayName,
		Role:        claims.Role,
	})
	return c.Next()
}

// IdentityFromContext retrieves the asserted caller, if any.
func IdentityFromContext(c *fiber.Ctx) (*Identity, bool) {
	val := c.Locals(identityKey)
	if val == nil {
		return nil, false
	}
	identity, ok := val.(*Identity)
	return identity, ok
}
