package cart

import (
	"net/http"
	"time"

	"delivery-marketplace/internal/models"
	"delivery-marketplace/pkg/utils"

	"github.com/labstack/echo/v4"
)

// Handler handles HTTP requests for the customer's cart.
type Handler struct {
	carts *Registry
	now   func() time.Time
}

// NewHandler creates a new cart handler.
func NewHandler(carts *Registry) *Handler {
	return &Handler{carts: carts, now: time.Now}
}

func (h *Handler) GetCart(c echo.Context) error {
	session, err := utils.ExtractSession(c)
	if err != nil {
		return err
	}
	return utils.RespondWithJSON(c, http.StatusOK, h.carts.For(session.CustomerID).View())
}

func (h *Handler) AddItem(c echo.Context) error {
	session, err := utils.ExtractSession(c)
	if err != nil {
		return err
	}

	var req models.AddItemRequest
	if err := c.Bind(&req); err != nil {
		return utils.RespondWithError(c, http.StatusBadRequest, "Invalid request body")
	}
	if err := utils.GetValidator().Validate(req); err != nil {
		return utils.HandleServiceError(c, models.NewValidationError(utils.ValidationReasons(err)))
	}

	item := models.LineItem{
		ID:        string(req.ID),
		VendorID:  string(req.VendorID),
		Title:     req.Title,
		Price:     *req.Price,
		PhotoURLs: req.PhotoURLs,
		Variant:   models.VariantImmediate,
	}
	store := h.carts.For(session.CustomerID)
	if err := store.AddOrUpdate(c.Request().Context(), item, req.QuantityDelta); err != nil {
		return utils.HandleServiceError(c, err)
	}

	return utils.RespondWithJSON(c, http.StatusOK, store.View())
}

func (h *Handler) AddPreOrder(c echo.Context) error {
	session, err := utils.ExtractSession(c)
	if err != nil {
		return err
	}

	var req models.PreOrderRequest
	if err := c.Bind(&req); err != nil {
		return utils.RespondWithError(c, http.StatusBadRequest, "Invalid request body")
	}
	if req.ID == "" {
		return utils.HandleServiceError(c, models.NewValidationError([]string{"id is required"}))
	}
	if result := ValidatePreOrder(req.PreOrderForm, h.now()); !result.Valid {
		return utils.HandleServiceError(c, result.Err())
	}

	item, err := NewPreOrderItem(req)
	if err != nil {
		return utils.HandleServiceError(c, err)
	}
	store := h.carts.For(session.CustomerID)
	if err := store.PutPreOrder(c.Request().Context(), item); err != nil {
		return utils.HandleServiceError(c, err)
	}

	return utils.RespondWithJSON(c, http.StatusCreated, store.View())
}

func (h *Handler) ClearCart(c echo.Context) error {
	session, err := utils.ExtractSession(c)
	if err != nil {
		return err
	}
	h.carts.For(session.CustomerID).Clear(c.Request().Context())
	return c.NoContent(http.StatusNoContent)
}
