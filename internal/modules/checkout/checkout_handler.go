package checkout

import (
	"errors"
	"net/http"

	"delivery-marketplace/internal/models"
	"delivery-marketplace/pkg/utils"

	"github.com/labstack/echo/v4"
)

// Handler handles HTTP requests for the checkout flow.
type Handler struct {
	svc ServiceInterface
}

// NewHandler creates a new checkout handler.
func NewHandler(svc ServiceInterface) *Handler {
	return &Handler{svc: svc}
}

// ConfirmResponse is returned by POST /checkout/confirm.
type ConfirmResponse struct {
	Message      string                    `json:"message,omitempty"`
	Confirmation *models.OrderConfirmation `json:"confirmation,omitempty"`
	Session      *models.CheckoutView      `json:"session"`
}

func (h *Handler) GetCheckout(c echo.Context) error {
	session, err := utils.ExtractSession(c)
	if err != nil {
		return err
	}
	view, err := h.svc.View(c.Request().Context(), session.CustomerID)
	if err != nil {
		return utils.HandleServiceError(c, err)
	}
	return utils.RespondWithJSON(c, http.StatusOK, view)
}

func (h *Handler) Start(c echo.Context) error {
	session, err := utils.ExtractSession(c)
	if err != nil {
		return err
	}
	view, err := h.svc.ProceedToCheckout(c.Request().Context(), session.CustomerID)
	if err != nil {
		return utils.HandleServiceError(c, err)
	}
	return utils.RespondWithJSON(c, http.StatusOK, view)
}

// ReportLocation takes the device geolocation result, either coordinates or
// an error code. A failed geolocation is not an HTTP error.
func (h *Handler) ReportLocation(c echo.Context) error {
	session, err := utils.ExtractSession(c)
	if err != nil {
		return err
	}

	var report models.LocationReport
	if err := c.Bind(&report); err != nil {
		return utils.RespondWithError(c, http.StatusBadRequest, "Invalid request body")
	}

	view, err := h.svc.ResolveLocation(c.Request().Context(), session.CustomerID, ReportedLocation(report))
	if err != nil {
		return utils.HandleServiceError(c, err)
	}
	return utils.RespondWithJSON(c, http.StatusOK, view)
}

func (h *Handler) ProceedToPayment(c echo.Context) error {
	session, err := utils.ExtractSession(c)
	if err != nil {
		return err
	}
	view, err := h.svc.ProceedToPayment(c.Request().Context(), session.CustomerID)
	if err != nil {
		return utils.HandleServiceError(c, err)
	}
	return utils.RespondWithJSON(c, http.StatusOK, view)
}

func (h *Handler) SubmitPayment(c echo.Context) error {
	session, err := utils.ExtractSession(c)
	if err != nil {
		return err
	}

	var details models.PaymentDetails
	if err := c.Bind(&details); err != nil {
		return utils.RespondWithError(c, http.StatusBadRequest, "Invalid request body")
	}

	view, err := h.svc.SubmitPayment(c.Request().Context(), session.CustomerID, details)
	if err != nil {
		return utils.HandleServiceError(c, err)
	}
	return utils.RespondWithJSON(c, http.StatusOK, view)
}

// Confirm places the order. A failed submission answers 502 with the session,
// which is back on the payment step with its cart intact.
func (h *Handler) Confirm(c echo.Context) error {
	session, err := utils.ExtractSession(c)
	if err != nil {
		return err
	}

	conf, view, err := h.svc.Confirm(c.Request().Context(), session.CustomerID)
	if err != nil {
		if errors.Is(err, models.ErrSubmissionFailed) && view != nil {
			return utils.RespondWithJSON(c, http.StatusBadGateway, ConfirmResponse{
				Message: view.SubmissionError,
				Session: view,
			})
		}
		return utils.HandleServiceError(c, err)
	}
	return utils.RespondWithJSON(c, http.StatusCreated, ConfirmResponse{Confirmation: conf, Session: view})
}

func (h *Handler) CancelConfirm(c echo.Context) error {
	session, err := utils.ExtractSession(c)
	if err != nil {
		return err
	}
	if !h.svc.CancelSubmission(session.CustomerID) {
		return utils.RespondWithError(c, http.StatusNotFound, "no order submission in progress")
	}
	return c.NoContent(http.StatusAccepted)
}

func (h *Handler) BackToCart(c echo.Context) error {
	session, err := utils.ExtractSession(c)
	if err != nil {
		return err
	}
	view, err := h.svc.BackToCart(c.Request().Context(), session.CustomerID)
	if err != nil {
		return utils.HandleServiceError(c, err)
	}
	return utils.RespondWithJSON(c, http.StatusOK, view)
}
