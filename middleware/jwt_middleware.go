package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"bplcommander/models"
	"bplcommander/utils"
)

// Protected authenticates the bearer token, loads the user and stores it in
// the request locals. A deactivated user fails with 401 regardless of the
// token's validity.
func Protected(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get("Authorization")
		if authHeader == "" {
			return utils.NewUnauthorizedError("Authorization required")
		}

		tokenParts := strings.Split(authHeader, " ")
		if len(tokenParts) != 2 || tokenParts[0] != "Bearer" {
			return utils.NewUnauthorizedError("Invalid authorization format")
		}

		claims, err := utils.ParseJWTToken(tokenParts[1])
		if err != nil {
			return utils.NewUnauthorizedError("Invalid or expired token")
		}

		var user models.User
		if err := db.First(&user, claims.UserID).Error; err != nil {
			return utils.NewUnauthorizedError("User not found")
		}

		if !user.IsActive {
			return utils.NewUnauthorizedError("Account is deactivated")
		}

		c.Locals("user", &user)
		c.Locals("userID", user.ID)

		return c.Next()
	}
}

// CurrentUser returns the authenticated user placed in locals by Protected.
func CurrentUser(c *fiber.Ctx) *models.User {
	user, _ := c.Locals("user").(*models.User)
	return user
}
