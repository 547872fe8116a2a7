package middleware

import (
	"github.com/gofiber/fiber/v2"

	"github.com/noah-isme/coursehub-api/pkg/token"
)

// TokenParser validates signed access tokens.
type TokenParser interface {
	Parse(tokenString string) (*token.Claims, error)
}

// JWTProtected returns a middleware that only accepts bearer tokens from the
// Authorization header.
func JWTProtected(tokens TokenParser) fiber.Handler {
	return WithAuth(tokens, AuthOptions{})
}
