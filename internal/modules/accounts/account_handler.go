package accounts

import (
	"net/http"

	"delivery-marketplace/internal/models"
	"delivery-marketplace/pkg/utils"

	"github.com/labstack/echo/v4"
)

type Handler struct {
	service ServiceInterface
}

func NewHandler(service ServiceInterface) *Handler {
	return &Handler{service: service}
}

func (h *Handler) Signup(c echo.Context) error {
	var req models.SignupRequest
	if err := c.Bind(&req); err != nil {
		return utils.RespondWithError(c, http.StatusBadRequest, "Invalid request body")
	}
	if err := utils.GetValidator().Validate(req); err != nil {
		return utils.HandleServiceError(c, models.NewValidationError(utils.ValidationReasons(err)))
	}

	authResponse, err := h.service.Signup(c.Request().Context(), req)
	if err != nil {
		return utils.HandleServiceError(c, err)
	}

	return utils.RespondWithJSON(c, http.StatusCreated, authResponse)
}

func (h *Handler) Login(c echo.Context) error {
	var req models.LoginRequest
	if err := c.Bind(&req); err != nil {
		return utils.RespondWithError(c, http.StatusBadRequest, "Invalid request body")
	}
	if err := utils.GetValidator().Validate(req); err != nil {
		return utils.HandleServiceError(c, models.NewValidationError(utils.ValidationReasons(err)))
	}

	authResponse, err := h.service.Login(c.Request().Context(), req)
	if err != nil {
		return utils.HandleServiceError(c, err)
	}

	return utils.RespondWithJSON(c, http.StatusOK, authResponse)
}

func (h *Handler) Logout(c echo.Context) error {
	session, err := utils.ExtractSession(c)
	if err != nil {
		return err
	}
	if err := h.service.Logout(c.Request().Context(), session.CustomerID); err != nil {
		return utils.HandleServiceError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *Handler) Me(c echo.Context) error {
	session, err := utils.ExtractSession(c)
	if err != nil {
		return err
	}
	account, err := h.service.GetAccount(c.Request().Context(), session.CustomerID)
	if err != nil {
		return utils.HandleServiceError(c, err)
	}
	return utils.RespondWithJSON(c, http.StatusOK, account)
}
