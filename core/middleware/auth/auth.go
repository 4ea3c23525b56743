package auth

import (
	"crypto/sha256"
	"crypto/subtle"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/keyauth"
)

// Header is the request header holding the API key.
const Header = "X-API-Key"

// Config holds the auth middleware settings.
type Config struct {
	// ApiKey is the expected key. When empty every request is allowed.
	ApiKey string
}

// New returns a keyauth middleware that rejects requests without a matching
// API key in Header.
func New(cfg Config) fiber.Handler {
	expected := sha256.Sum256([]byte(cfg.ApiKey))

	return keyauth.New(keyauth.Config{
		Next: func(*fiber.Ctx) bool {
			return cfg.ApiKey == ""
		},
		KeyLookup: "header:" + Header,
		Validator: func(_ *fiber.Ctx, key string) (bool, error) {
			got := sha256.Sum256([]byte(key))
			if subtle.ConstantTimeCompare(got[:], expected[:]) != 1 {
				return false, keyauth.ErrMissingOrMalformedAPIKey
			}
			return true, nil
		},
		ErrorHandler: func(c *fiber.Ctx, _ error) error {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "invalid or missing API key",
			})
		},
	})
}
