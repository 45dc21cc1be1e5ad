package orders

import (
	"net/http"

	"delivery-marketplace/pkg/utils"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

// Handler handles HTTP requests for orders.
type Handler struct {
	svc ServiceInterface
}

// NewHandler creates a new order handler.
func NewHandler(svc ServiceInterface) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) ListMyOrders(c echo.Context) error {
	session, err := utils.ExtractSession(c)
	if err != nil {
		return err
	}

	page, limit := utils.GetPageLimit(c)
	orders, total, err := h.svc.ListCustomerOrders(c.Request().Context(), session.CustomerID, page, limit)
	if err != nil {
		return utils.RespondWithError(c, http.StatusInternalServerError, "Failed to retrieve orders")
	}

	return utils.RespondWithJSON(c, http.StatusOK, map[string]interface{}{"orders": orders, "total": total})
}

func (h *Handler) GetOrderDetails(c echo.Context) error {
	session, err := utils.ExtractSession(c)
	if err != nil {
		return err
	}

	orderID := c.Param("orderId")
	if _, err := uuid.Parse(orderID); err != nil {
		return utils.RespondWithError(c, http.StatusBadRequest, "Invalid order ID")
	}

	order, err := h.svc.GetOrderDetails(c.Request().Context(), orderID, session.CustomerID)
	if err != nil {
		return utils.HandleServiceError(c, err)
	}

	return utils.RespondWithJSON(c, http.StatusOK, order)
}

func (h *Handler) CancelOrder(c echo.Context) error {
	session, err := utils.ExtractSession(c)
	if err != nil {
		return err
	}

	orderID := c.Param("orderId")
	if _, err := uuid.Parse(orderID); err != nil {
		return utils.RespondWithError(c, http.StatusBadRequest, "Invalid order ID")
	}

	if err := h.svc.CancelOrder(c.Request().Context(), orderID, session.CustomerID); err != nil {
		return utils.HandleServiceError(c, err)
	}

	return c.NoContent(http.StatusNoContent)
}
