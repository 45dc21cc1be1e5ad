package utils

import (
	"net/http"

	"delivery-marketplace/internal/models"

	"github.com/labstack/echo/v4"
)

// SessionContextKey is where the auth middleware stores the models.Session.
const SessionContextKey = "session"

// ExtractSession returns the authenticated session of the request.
func ExtractSession(c echo.Context) (models.Session, error) {
	s, ok := c.Get(SessionContextKey).(models.Session)
	if !ok || s.CustomerID == "" {
		return models.Session{}, echo.NewHTTPError(http.StatusUnauthorized, "missing session")
	}
	return s, nil
}
