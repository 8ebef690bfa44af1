package security

import (
	"net/http"

	"github.com/labstack/echo/v5"
	"golang.org/x/crypto/bcrypt"
)

const AdminTokenHeader = "X-Admin-Token"

// HashAdminToken returns the bcrypt hash to configure as ADMIN_TOKEN_HASH.
func HashAdminToken(token string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(token), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// RequireAdminToken rejects requests whose X-Admin-Token does not match the
// bcrypt hash. An empty hash leaves the routes open.
func RequireAdminToken(hash string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		if hash == "" {
			return next
		}
		return func(c echo.Context) error {
			token := c.Request().Header.Get(AdminTokenHeader)
			if token == "" {
				return c.JSON(http.StatusUnauthorized, map[string]string{
					"error": "Admin token required",
				})
			}
			if bcrypt.CompareHashAndPassword([]byte(hash), []byte(token)) != nil {
				return c.JSON(http.StatusForbidden, map[string]string{
					"error": "Invalid admin token",
				})
			}
			return next(c)
		}
	}
}
