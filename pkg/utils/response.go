package utils

import (
	"errors"
	"net/http"
	"strconv"

	"delivery-marketplace/internal/models"

	"github.com/labstack/echo/v4"
)

const (
	defaultPage  = 1
	defaultLimit = 20
	maxLimit     = 100
)

// RespondWithJSON writes payload with the given status code.
func RespondWithJSON(c echo.Context, code int, payload interface{}) error {
	return c.JSON(code, payload)
}

// RespondWithError writes a models.ErrorResponse.
func RespondWithError(c echo.Context, code int, message string) error {
	return c.JSON(code, models.ErrorResponse{Message: message})
}

// HandleServiceError maps service errors to HTTP responses. Unknown errors are
// logged and reported as 500 without leaking their text.
func HandleServiceError(c echo.Context, err error) error {
	var verr *models.ValidationError
	if errors.As(err, &verr) {
		return c.JSON(http.StatusUnprocessableEntity, models.ErrorResponse{
			Message: "validation failed",
			Details: verr.Reasons,
		})
	}

	switch {
	case errors.Is(err, models.ErrNotFound):
		return RespondWithError(c, http.StatusNotFound, models.ErrNotFound.Error())
	case errors.Is(err, models.ErrConflict):
		return RespondWithError(c, http.StatusConflict, models.ErrConflict.Error())
	case errors.Is(err, models.ErrInvalidCredentials):
		return RespondWithError(c, http.StatusUnauthorized, models.ErrInvalidCredentials.Error())
	case errors.Is(err, models.ErrInvalidItem), errors.Is(err, models.ErrZeroQuantityDelta):
		return RespondWithError(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, models.ErrCartEmpty):
		return RespondWithError(c, http.StatusConflict, models.ErrCartEmpty.Error())
	case errors.Is(err, models.ErrInvalidTransition):
		return RespondWithError(c, http.StatusConflict, models.ErrInvalidTransition.Error())
	case errors.Is(err, models.ErrOrderCannotBeCancelled):
		return RespondWithError(c, http.StatusConflict, models.ErrOrderCannotBeCancelled.Error())
	case errors.Is(err, models.ErrSubmissionInProgress):
		return RespondWithError(c, http.StatusConflict, models.ErrSubmissionInProgress.Error())
	case errors.Is(err, models.ErrSubmissionFailed), errors.Is(err, models.ErrVendorUnavailable):
		return RespondWithError(c, http.StatusBadGateway, err.Error())
	}

	c.Logger().Errorf("unhandled service error: %v", err)
	return RespondWithError(c, http.StatusInternalServerError, "internal server error")
}

// GetPageLimit reads ?page= and ?limit= with sane bounds.
func GetPageLimit(c echo.Context) (int, int) {
	page, err := strconv.Atoi(c.QueryParam("page"))
	if err != nil || page < 1 {
		page = defaultPage
	}
	limit, err := strconv.Atoi(c.QueryParam("limit"))
	if err != nil || limit < 1 {
		limit = defaultLimit
	}
	if limit > maxLimit {
		limit = maxLimit
	}
	return page, limit
}
