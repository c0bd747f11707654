package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"talentbridge/recruiting-api/internal/apperror"
	"talentbridge/recruiting-api/internal/models"
	"talentbridge/recruiting-api/internal/security"
)

const userLocalKey = "user"

// UserLoader resolves the account behind a token.
type UserLoader interface {
	LoadUser(c *fiber.Ctx, id uint) (*models.User, error)
}

type UserLoaderFunc func(c *fiber.Ctx, id uint) (*models.User, error)

func (f UserLoaderFunc) LoadUser(c *fiber.Ctx, id uint) (*models.User, error) {
	return f(c, id)
}

// JWT authenticates the bearer token and stores the user in the request locals.
func JWT(tokens *security.JWTProvider, users UserLoader) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get(fiber.HeaderAuthorization)
		if authHeader == "" || !strings.HasPrefix(authHeader, "Bearer ") {
			return apperror.New(apperror.CodeUnauthorized, "missing bearer token", nil)
		}

		claims, err := tokens.Parse(strings.TrimPrefix(authHeader, "Bearer "))
		if err != nil {
			return apperror.New(apperror.CodeUnauthorized, "invalid token", err)
		}

		user, err := users.LoadUser(c, claims.UserID)
		if err != nil {
			if apperror.Is(err, apperror.CodeNotFound) {
				return apperror.New(apperror.CodeUnauthorized, "unknown account", err)
			}
			return err
		}

		c.Locals(userLocalKey, user)
		return c.Next()
	}
}

// CurrentUser returns the authenticated user, or nil on public routes.
func CurrentUser(c *fiber.Ctx) *models.User {
	user, _ := c.Locals(userLocalKey).(*models.User)
	return user
}

func RequireRole(roles ...models.Role) fiber.Handler {
	return func(c *fiber.Ctx) error {
		user := CurrentUser(c)
		if user == nil {
			return apperror.New(apperror.CodeUnauthorized, "authentication required", nil)
		}
		for _, role := range roles {
			if user.Role == role {
				return c.Next()
			}
		}
		return apperror.Forbidden("your account type cannot use this endpoint")
	}
}
